package api

import (
	"net/http"

	"encoding/json/v2"

	"github.com/go-chi/chi/v5"

	"github.com/dwinston/pushpickup/internal/http/response"
	"github.com/dwinston/pushpickup/internal/service"
)

// handleListGames returns upcoming games ordered by start time.
func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	params := parsePaginationParams(r)

	result, err := s.gameService.ListGames(r.Context(), params)
	if err != nil {
		s.logger.Error("Failed to list games", "error", err)
		response.InternalError(w, "Failed to retrieve games", s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleGetGame returns a single game with its roster and comments.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Game ID is required", s.logger)
		return
	}

	game, err := s.gameService.GetGame(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, game, s.logger)
}

// handleAddGame creates a new game with the requester as organizer.
func (s *Server) handleAddGame(w http.ResponseWriter, r *http.Request) {
	var req service.GameRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	game, err := s.gameService.AddGame(r.Context(), getUserID(r.Context()), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, game, s.logger)
}

// handleEditGame updates a game's details.
func (s *Server) handleEditGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req service.GameRequest
	if err := json.UnmarshalRead(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body", s.logger)
		return
	}

	game, err := s.gameService.EditGame(r.Context(), getUserID(r.Context()), id, req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, game, s.logger)
}

// handleCancelGame removes a game permanently and notifies its players.
func (s *Server) handleCancelGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.gameService.CancelGame(r.Context(), getUserID(r.Context()), id); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.NoContent(w)
}
