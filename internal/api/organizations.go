package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mariemm1/IoTIrrigation/internal/organization"
)

// organizationRequest is the create/update body for an organization.
type organizationRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
	Description  string `json:"description"`
}

// handleListOrganizations returns all organizations ordered by name.
func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.orgs.List(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list organizations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"organizations": orgs, "count": len(orgs)})
}

// handleCreateOrganization registers a new organization.
func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	org := &organization.Organization{
		Name:         req.Name,
		Address:      req.Address,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Description:  req.Description,
	}
	if err := s.orgs.Create(r.Context(), org); err != nil {
		writeOrganizationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

// handleGetOrganization returns a single organization by ID.
func (s *Server) handleGetOrganization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	org, err := s.orgs.GetByID(r.Context(), id)
	if err != nil {
		writeOrganizationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// handleUpdateOrganization replaces the stored fields of an organization.
func (s *Server) handleUpdateOrganization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req organizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	org, err := s.orgs.GetByID(r.Context(), id)
	if err != nil {
		writeOrganizationError(w, err)
		return
	}

	org.Name = req.Name
	org.Address = req.Address
	org.ContactEmail = req.ContactEmail
	org.ContactPhone = req.ContactPhone
	org.Description = req.Description
	if err := s.orgs.Update(r.Context(), org); err != nil {
		writeOrganizationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// handleDeleteOrganization removes an organization.
func (s *Server) handleDeleteOrganization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.orgs.Delete(r.Context(), id); err != nil {
		writeOrganizationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeOrganizationError maps organization sentinels onto HTTP statuses.
func writeOrganizationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, organization.ErrNotFound):
		writeNotFound(w, "organization not found")
	case errors.Is(err, organization.ErrNameTaken):
		writeError(w, http.StatusConflict, ErrCodeConflict, "organization name already taken")
	case errors.Is(err, organization.ErrInvalidName):
		writeBadRequest(w, "organization name is required")
	default:
		writeInternalError(w, "organization operation failed")
	}
}
