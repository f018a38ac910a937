package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mariemm1/IoTIrrigation/internal/auth"
	"github.com/mariemm1/IoTIrrigation/internal/device"
)

// adoptRequest is the POST /devices body. Name, description, status, and
// position come from the network server and telemetry, not from the caller.
type adoptRequest struct {
	DevEUI         string `json:"devEui"`
	OrganizationID string `json:"organizationId"`
	UserID         string `json:"userId"`
}

// handleListDevices returns the registry scoped to the caller: admins see
// everything (optionally filtered by organization_id), users see the
// devices they registered.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := claimsFrom(ctx)

	var (
		devices []device.Device
		err     error
	)
	switch {
	case claims.Role == auth.RoleAdmin:
		switch {
		case r.URL.Query().Get("organization_id") != "":
			devices, err = s.sync.ListByOrganization(ctx, r.URL.Query().Get("organization_id"))
		case r.URL.Query().Get("user_id") != "":
			devices, err = s.sync.ListByOwner(ctx, r.URL.Query().Get("user_id"))
		default:
			devices, err = s.sync.ListAll(ctx)
		}
	default:
		devices, err = s.sync.ListByOwner(ctx, claims.Subject)
	}
	if err != nil {
		writeInternalError(w, "failed to list devices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleAdoptDevice registers a device that already exists on the network
// server. Non-admin callers always adopt for their own account.
func (s *Server) handleAdoptDevice(w http.ResponseWriter, r *http.Request) {
	var req adoptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	claims := claimsFrom(r.Context())
	if claims.Role != auth.RoleAdmin || req.UserID == "" {
		req.UserID = claims.Subject
	}

	d := &device.Device{
		DevEUI:         req.DevEUI,
		OrganizationID: req.OrganizationID,
		UserID:         req.UserID,
	}
	adopted, err := s.sync.Adopt(r.Context(), d)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, adopted)
}

// handleGetDevice returns a device by registry ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	d, err := s.sync.GetByID(r.Context(), id)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	if !s.canAccessDevice(claimsFrom(r.Context()), d) {
		writeForbidden(w, "device belongs to another account")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleGetDeviceByEUI returns a device by EUI in any spelling.
func (s *Server) handleGetDeviceByEUI(w http.ResponseWriter, r *http.Request) {
	devEUI := chi.URLParam(r, "devEui")

	d, err := s.sync.GetByDevEUI(r.Context(), devEUI)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	if !s.canAccessDevice(claimsFrom(r.Context()), d) {
		writeForbidden(w, "device belongs to another account")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handlePeekRemote returns a device's live state straight from the network
// server, without touching the registry.
func (s *Server) handlePeekRemote(w http.ResponseWriter, r *http.Request) {
	devEUI := chi.URLParam(r, "devEui")

	d, err := s.sync.PeekRemote(r.Context(), devEUI)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleReviseDevice applies a patch to an adopted device.
func (s *Server) handleReviseDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch device.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	existing, err := s.sync.GetByID(r.Context(), id)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	if !s.canAccessDevice(claimsFrom(r.Context()), existing) {
		writeForbidden(w, "device belongs to another account")
		return
	}

	revised, err := s.sync.Revise(r.Context(), id, patch)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, revised)
}

// handleDeleteDevice removes a device from the registry.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.sync.GetByID(r.Context(), id)
	if err != nil {
		writeSyncError(w, err)
		return
	}
	if !s.canAccessDevice(claimsFrom(r.Context()), existing) {
		writeForbidden(w, "device belongs to another account")
		return
	}

	if err := s.sync.Delete(r.Context(), id); err != nil {
		writeSyncError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// canAccessDevice reports whether the caller may act on a device: admins
// always, users when they registered it or share its organization.
func (s *Server) canAccessDevice(claims *auth.CustomClaims, d *device.Device) bool {
	if claims == nil {
		return false
	}
	if claims.Role == auth.RoleAdmin {
		return true
	}
	if d.UserID == claims.Subject {
		return true
	}
	return claims.OrganizationID != "" && d.OrganizationID == claims.OrganizationID
}
