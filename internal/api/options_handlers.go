package api

import (
	"net/http"

	"encoding/json/v2"

	"github.com/go-chi/chi/v5"

	"github.com/dwinston/pushpickup/internal/http/response"
)

// handleGetOption returns a named option catalog, e.g. the legal game types.
func (s *Server) handleGetOption(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	option, err := s.optionsService.GetOption(r.Context(), name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, option, s.logger)
}

// UpdateOptionRequest replaces an option catalog's values.
type UpdateOptionRequest struct {
	Values []string `json:"values"`
}

// handleUpdateOption replaces an option catalog. Admin only.
func (s *Server) handleUpdateOption(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req UpdateOptionRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	option, err := s.optionsService.UpdateOption(r.Context(), getUserID(r.Context()), name, req.Values)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, option, s.logger)
}
