package api

import (
	"net/http"
	"strconv"

	"github.com/dwinston/pushpickup/internal/http/response"
	"github.com/dwinston/pushpickup/internal/search"
)

// handleSearchGames runs a full text and filter query over the game index.
func (s *Server) handleSearchGames(w http.ResponseWriter, r *http.Request) {
	params := search.DefaultSearchParams()
	q := r.URL.Query()

	params.Query = q.Get("q")
	if types, ok := q["type"]; ok {
		params.Types = types
	}
	if statuses, ok := q["status"]; ok {
		params.Statuses = statuses
	}
	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 && limit <= 100 {
			params.Limit = limit
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}
	if v := q.Get("sort"); v != "" {
		params.SortBy = v
	}
	if v := q.Get("order"); v != "" {
		params.SortOrder = v
	}

	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	if lngErr == nil && latErr == nil {
		params.Longitude = lng
		params.Latitude = lat
		if radius, err := strconv.ParseFloat(q.Get("radius_km"), 64); err == nil && radius > 0 {
			params.RadiusKm = radius
		}
	}

	result, err := s.searchService.Search(r.Context(), params)
	if err != nil {
		s.logger.Error("Game search failed", "error", err, "query", params.Query)
		response.InternalError(w, "Search failed", s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleNearbyGames returns upcoming games around a point, nearest first.
func (s *Server) handleNearbyGames(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	lng, lngErr := strconv.ParseFloat(q.Get("lng"), 64)
	lat, latErr := strconv.ParseFloat(q.Get("lat"), 64)
	if lngErr != nil || latErr != nil {
		response.BadRequest(w, "lng and lat query parameters are required", s.logger)
		return
	}

	radiusKm := 10.0
	if v := q.Get("radius_km"); v != "" {
		if radius, err := strconv.ParseFloat(v, 64); err == nil && radius > 0 {
			radiusKm = radius
		}
	}

	result, err := s.searchService.Nearby(r.Context(), lng, lat, radiusKm)
	if err != nil {
		s.logger.Error("Nearby game search failed", "error", err)
		response.InternalError(w, "Search failed", s.logger)
		return
	}

	response.Success(w, result, s.logger)
}

// handleReindex rebuilds the search index from the store.
func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	count, err := s.searchService.Reindex(r.Context())
	if err != nil {
		s.logger.Error("Reindex failed", "error", err)
		response.InternalError(w, "Reindex failed", s.logger)
		return
	}

	response.Success(w, map[string]int{"indexed": count}, s.logger)
}
