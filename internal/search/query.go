package search

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/blevesearch/bleve/v2"
	bleveSearch "github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a search query.
type SearchParams struct {
	Query string   // User's free-text query (location name, note)
	Types []string // Game types to include (empty = all)

	// Filters
	Statuses []string // Filter by game status ("proposed", "on")

	// Geo filter: games within RadiusKm of (Longitude, Latitude).
	// Active when RadiusKm > 0.
	Longitude float64
	Latitude  float64
	RadiusKm  float64

	// Start-time window. Zero values leave the bound open.
	StartsAfter  time.Time
	StartsBefore time.Time

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "starts_at", "distance", "recent", "relevance"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool // Include type/status facet counts in results
	Highlight     bool // Include match highlighting
}

// DefaultSearchParams returns sensible defaults: upcoming games first.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		Offset:        0,
		SortBy:        "starts_at",
		SortOrder:     "asc",
		StartsAfter:   time.Now(),
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets,omitempty"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID           string            `json:"id"`
	Score        float64           `json:"score"`
	Type         string            `json:"type"`
	Status       string            `json:"status"`
	LocationName string            `json:"location_name,omitempty"`
	StartsAt     int64             `json:"starts_at"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// SearchFacets contains facet counts.
type SearchFacets struct {
	Types    []FacetCount `json:"types,omitempty"`
	Statuses []FacetCount `json:"statuses,omitempty"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Build the query
	searchQuery := buildSearchQuery(params)

	// Create search request
	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	// Add sorting
	addSorting(searchRequest, params)

	// Add facets
	if params.IncludeFacets {
		searchRequest.AddFacet("type", bleve.NewFacetRequest("type", 20))
		searchRequest.AddFacet("status", bleve.NewFacetRequest("status", 2))
	}

	// Add highlighting
	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("location_name")
		searchRequest.Highlight.AddField("note")
	}

	// Request stored fields
	searchRequest.Fields = []string{
		"id", "type", "status", "location_name", "starts_at",
	}

	// Execute search
	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	// Convert results
	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		// Extract stored fields
		if t, ok := hit.Fields["type"].(string); ok {
			searchHit.Type = t
		}
		if st, ok := hit.Fields["status"].(string); ok {
			searchHit.Status = st
		}
		if n, ok := hit.Fields["location_name"].(string); ok {
			searchHit.LocationName = n
		}
		if sa, ok := hit.Fields["starts_at"].(float64); ok {
			searchHit.StartsAt = int64(sa)
		}

		// Extract highlights
		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	// Extract facets
	if params.IncludeFacets {
		result.Facets = extractFacets(searchResult)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Main text query over location name and organizer's note.
	// Location name gets the boost: "dolores park" should rank a game at
	// Dolores Park above one whose note merely mentions it.
	if params.Query != "" {
		textQueries := []query.Query{}

		nameMatch := bleve.NewMatchQuery(params.Query)
		nameMatch.SetField("location_name")
		nameMatch.SetBoost(3.0)
		textQueries = append(textQueries, nameMatch)

		noteMatch := bleve.NewMatchQuery(params.Query)
		noteMatch.SetField("note")
		textQueries = append(textQueries, noteMatch)

		// Add fuzzy matching for typo tolerance on location name
		fuzzyQuery := bleve.NewFuzzyQuery(params.Query)
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("location_name")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Combine with OR (match any field)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Game type filter (exact match, OR across types)
	if len(params.Types) > 0 {
		typeQueries := make([]query.Query, len(params.Types))
		for i, t := range params.Types {
			tq := bleve.NewTermQuery(t)
			tq.SetField("type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	// Status filter
	if len(params.Statuses) > 0 {
		statusQueries := make([]query.Query, len(params.Statuses))
		for i, st := range params.Statuses {
			sq := bleve.NewTermQuery(st)
			sq.SetField("status")
			statusQueries[i] = sq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(statusQueries...))
	}

	// Geo distance filter
	if params.RadiusKm > 0 {
		distance := fmt.Sprintf("%fkm", params.RadiusKm)
		geoQuery := bleve.NewGeoDistanceQuery(params.Longitude, params.Latitude, distance)
		geoQuery.SetField("location")
		queries = append(queries, geoQuery)
	}

	// Start-time window filter
	if !params.StartsAfter.IsZero() || !params.StartsBefore.IsZero() {
		min := float64(params.StartsAfter.Unix())
		max := math.MaxFloat64
		if params.StartsAfter.IsZero() {
			min = 0
		}
		if !params.StartsBefore.IsZero() {
			max = float64(params.StartsBefore.Unix())
		}
		rangeQuery := bleve.NewNumericRangeQuery(&min, &max)
		rangeQuery.SetField("starts_at")
		queries = append(queries, rangeQuery)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case "starts_at":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-starts_at"})
		} else {
			req.SortBy([]string{"starts_at"})
		}
	case "distance":
		// Nearest first. Falls back to start time when no origin was given.
		if params.RadiusKm <= 0 {
			req.SortBy([]string{"starts_at"})
			return
		}
		req.SortByCustom(bleveSearch.SortOrder{
			&bleveSearch.SortGeoDistance{
				Field: "location",
				Lon:   params.Longitude,
				Lat:   params.Latitude,
				Unit:  "km",
			},
		})
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	default:
		// Relevance (score) is default - Bleve handles this
		req.SortBy([]string{"-_score"})
	}
}

// extractFacets converts Bleve facets to our format.
func extractFacets(result *bleve.SearchResult) SearchFacets {
	facets := SearchFacets{}

	if typeFacet, ok := result.Facets["type"]; ok {
		for _, term := range typeFacet.Terms.Terms() {
			facets.Types = append(facets.Types, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	if statusFacet, ok := result.Facets["status"]; ok {
		for _, term := range statusFacet.Terms.Terms() {
			facets.Statuses = append(facets.Statuses, FacetCount{
				Value: term.Term,
				Count: term.Count,
			})
		}
	}

	return facets
}
