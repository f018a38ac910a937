package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mariemm1/IoTIrrigation/internal/device"
)

// handleListReadings returns the latest readings for a device, newest first.
// An optional limit query parameter caps the result.
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	devEUI := device.NormalizeEUI(chi.URLParam(r, "devEui"))
	if devEUI == "" {
		writeBadRequest(w, "devEui is required")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	readings, err := s.store.Latest(r.Context(), devEUI, limit)
	if err != nil {
		writeInternalError(w, "failed to query readings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"readings": readings, "count": len(readings)})
}

// handleReadingsRange returns readings in an inclusive RFC3339 time window
// given by the from and to query parameters.
func (s *Server) handleReadingsRange(w http.ResponseWriter, r *http.Request) {
	devEUI := device.NormalizeEUI(chi.URLParam(r, "devEui"))
	if devEUI == "" {
		writeBadRequest(w, "devEui is required")
		return
	}

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		writeBadRequest(w, "from must be an RFC3339 timestamp")
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		writeBadRequest(w, "to must be an RFC3339 timestamp")
		return
	}
	if to.Before(from) {
		writeBadRequest(w, "to must not precede from")
		return
	}

	readings, err := s.store.Between(r.Context(), devEUI, from, to)
	if err != nil {
		writeInternalError(w, "failed to query readings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"readings": readings, "count": len(readings)})
}
