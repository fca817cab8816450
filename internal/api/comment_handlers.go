package api

import (
	"net/http"

	"encoding/json/v2"

	"github.com/go-chi/chi/v5"

	"github.com/dwinston/pushpickup/internal/domain"
	"github.com/dwinston/pushpickup/internal/http/response"
)

// AddCommentRequest carries a comment message.
type AddCommentRequest struct {
	Message string `json:"message"`
}

// handleAddComment appends a comment to the game's thread.
func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	var req AddCommentRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	comment, err := s.commentService.AddComment(r.Context(), getUserID(r.Context()), gameID, req.Message)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, comment, s.logger)
}

// handleRemoveComment deletes a comment matched structurally. The full
// comment record travels in the body because comments have no IDs.
func (s *Server) handleRemoveComment(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	var comment domain.Comment
	if err := json.UnmarshalRead(r.Body, &comment); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	removed, err := s.commentService.RemoveComment(r.Context(), getUserID(r.Context()), gameID, comment)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]bool{"removed": removed}, s.logger)
}
