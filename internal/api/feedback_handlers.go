package api

import (
	"net/http"

	"encoding/json/v2"

	"github.com/dwinston/pushpickup/internal/http/response"
	"github.com/dwinston/pushpickup/internal/service"
)

// handleSendFeedback forwards feedback to the support inbox. No auth
// required; a valid token makes the sender's address the reply-to.
func (s *Server) handleSendFeedback(w http.ResponseWriter, r *http.Request) {
	var req service.FeedbackRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	if err := s.feedbackService.SendFeedback(r.Context(), getUserID(r.Context()), req); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
