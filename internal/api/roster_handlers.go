package api

import (
	"net/http"

	"encoding/json/v2"

	"github.com/go-chi/chi/v5"

	"github.com/dwinston/pushpickup/internal/http/response"
)

// AddSelfRequest carries an optional display name for the roster entry.
type AddSelfRequest struct {
	Name string `json:"name"`
}

// handleAddSelf puts the requester on the game's roster.
func (s *Server) handleAddSelf(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	var req AddSelfRequest
	if r.ContentLength > 0 {
		if err := json.UnmarshalRead(r.Body, &req); err != nil {
			response.BadRequest(w, "Invalid request body", s.logger)
			return
		}
	}

	joined, err := s.rosterService.AddSelf(r.Context(), getUserID(r.Context()), gameID, req.Name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, map[string]bool{"joined": joined}, s.logger)
}

// AddFriendsRequest lists the friends the requester is bringing.
type AddFriendsRequest struct {
	Names []string `json:"names"`
}

// handleAddFriends adds account-less roster entries sponsored by the requester.
func (s *Server) handleAddFriends(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	var req AddFriendsRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	game, err := s.rosterService.AddFriends(r.Context(), getUserID(r.Context()), gameID, req.Names)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, game, s.logger)
}

// RenamePlayerRequest renames one of the requester's roster entries.
type RenamePlayerRequest struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// handleRenamePlayer changes the display name on a roster entry.
func (s *Server) handleRenamePlayer(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	var req RenamePlayerRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	game, err := s.rosterService.RenamePlayer(r.Context(), getUserID(r.Context()), gameID, req.OldName, req.NewName)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, game, s.logger)
}

// handlePullPlayer removes the requester's roster entries with the given name.
func (s *Server) handlePullPlayer(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	name := r.URL.Query().Get("name")
	if name == "" {
		response.BadRequest(w, "Player name is required", s.logger)
		return
	}

	game, err := s.rosterService.PullPlayer(r.Context(), getUserID(r.Context()), gameID, name)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, game, s.logger)
}

// handleLeaveGame removes the requester and all the friends they brought.
func (s *Server) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")

	if err := s.rosterService.LeaveGame(r.Context(), getUserID(r.Context()), gameID); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
