package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for game documents.
//
// The mapping is designed with these priorities:
//  1. Fast full-text search on location names and organizer notes
//  2. Exact keyword matching for game type and status filters
//  3. Geo-distance queries on the game location
//  4. Numeric range queries on the start time
func buildIndexMapping() mapping.IndexMapping {
	// Create the index mapping
	indexMapping := bleve.NewIndexMapping()

	// Use English analyzer as default for text fields
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	// Create document mapping
	docMapping := bleve.NewDocumentMapping()

	// --- Text fields (full-text searchable) ---

	// Location name - primary search target, boosted in queries
	locationNameFieldMapping := bleve.NewTextFieldMapping()
	locationNameFieldMapping.Analyzer = en.AnalyzerName
	locationNameFieldMapping.Store = true
	locationNameFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("location_name", locationNameFieldMapping)

	// Organizer's note - searchable
	noteFieldMapping := bleve.NewTextFieldMapping()
	noteFieldMapping.Analyzer = en.AnalyzerName
	noteFieldMapping.Store = false
	docMapping.AddFieldMappingsAt("note", noteFieldMapping)

	// --- Keyword fields (exact match, facetable) ---

	// Game type - for filtering by sport
	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	typeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("type", typeFieldMapping)

	// Status - proposed/on filter
	statusFieldMapping := bleve.NewTextFieldMapping()
	statusFieldMapping.Analyzer = keyword.Name
	statusFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("status", statusFieldMapping)

	// ID - stored but not analyzed
	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// --- Geo field ---

	// Game location - for distance queries and sorting
	locationFieldMapping := bleve.NewGeoPointFieldMapping()
	locationFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("location", locationFieldMapping)

	// --- Numeric fields (range queries, sorting) ---

	// Start time - for "upcoming games" windows
	startsAtFieldMapping := bleve.NewNumericFieldMapping()
	startsAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("starts_at", startsAtFieldMapping)

	// Timestamp - for sorting by recency
	createdAtFieldMapping := bleve.NewNumericFieldMapping()
	createdAtFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("created_at", createdAtFieldMapping)

	// Register the document mapping
	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
