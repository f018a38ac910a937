package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// commandRequest is the POST /commands/{devEui} body. Either a raw value or
// a named action must be given; the action form exists for dashboards that
// speak in valve terms.
type commandRequest struct {
	Value  *int   `json:"value,omitempty"`
	Action string `json:"action,omitempty"`
	FPort  *int   `json:"fPort,omitempty"`
}

// commandResponse reports the coerced value and port actually enqueued.
type commandResponse struct {
	DevEUI string `json:"devEui"`
	Value  int    `json:"value"`
	FPort  int    `json:"fPort"`
	Status string `json:"status"`
}

// handleSendCommand enqueues a one-byte downlink for a device.
func (s *Server) handleSendCommand(w http.ResponseWriter, r *http.Request) {
	devEUI := chi.URLParam(r, "devEui")

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	value, ok := resolveCommandValue(req)
	if !ok {
		writeBadRequest(w, "either value or action (OPEN, CLOSE, ON, OFF) is required")
		return
	}

	v, port, err := s.sync.SendCommand(r.Context(), devEUI, value, req.FPort)
	if err != nil {
		writeSyncError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, commandResponse{
		DevEUI: devEUI,
		Value:  v,
		FPort:  port,
		Status: "queued",
	})
}

// resolveCommandValue maps the request onto a numeric command. A raw value
// wins over an action when both are present.
func resolveCommandValue(req commandRequest) (int, bool) {
	if req.Value != nil {
		return *req.Value, true
	}
	switch strings.ToUpper(req.Action) {
	case "OPEN", "ON":
		return 1, true
	case "CLOSE", "OFF":
		return 0, true
	}
	return 0, false
}
