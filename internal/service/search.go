package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dwinston/pushpickup/internal/search"
	"github.com/dwinston/pushpickup/internal/store"
)

// SearchService provides game discovery over the Bleve index.
type SearchService struct {
	index  *search.SearchIndex
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a query against the game index.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}
	return result, nil
}

// Nearby returns upcoming games within radiusKm of a point, nearest first.
func (s *SearchService) Nearby(ctx context.Context, lng, lat, radiusKm float64) (*search.SearchResult, error) {
	params := search.DefaultSearchParams()
	params.Longitude = lng
	params.Latitude = lat
	params.RadiusKm = radiusKm
	params.SortBy = "distance"
	return s.Search(ctx, params)
}

// Reindex rebuilds the game index from the store. Used at startup to bring
// the index in line after a mapping change, and exposed to admins.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	games, err := s.store.ListGames(ctx)
	if err != nil {
		return 0, fmt.Errorf("list games: %w", err)
	}

	docs := make([]*search.GameDocument, 0, len(games))
	for _, game := range games {
		docs = append(docs, search.GameToDocument(game))
	}

	if err := s.index.IndexDocuments(docs); err != nil {
		return 0, fmt.Errorf("index games: %w", err)
	}

	s.logger.Info("search reindex complete", "games", len(docs))
	return len(docs), nil
}
