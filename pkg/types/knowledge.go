// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RelationSharesConcepts is the only relationship type the graph builder emits.
const RelationSharesConcepts = "shares_concepts"

// Quality score baselines assigned at ingestion time. The centrality pass
// overwrites them.
const (
	QualityFileBaseline      = 0.8
	QualitySyntheticBaseline = 0.85
)

// Document is the atomic indexed unit of the knowledge base.
type Document struct {
	// SourceID identifies the origin: a file path, a path suffixed with
	// "#partN" for a chunk, or "<virtual>/name" for seeded text.
	SourceID string `json:"source_id" yaml:"source_id"`

	// Name is the display name (file name or synthetic name).
	Name string `json:"name" yaml:"name"`

	// Category is a caller-supplied label such as "knowledge" or "docs".
	Category string `json:"category" yaml:"category"`

	// Snippet holds the first 2000 characters of the content.
	Snippet string `json:"snippet" yaml:"snippet"`

	// FullContent is the complete text used for indexing.
	FullContent string `json:"full_content" yaml:"full_content"`

	// QualityScore lies in [0.7, 1.0] once centrality has run.
	QualityScore float64 `json:"quality_score" yaml:"quality_score"`

	// ConceptTags are computed once at ingestion: at most 12, sorted, title-cased.
	ConceptTags []string `json:"concept_tags" yaml:"concept_tags"`
}

// Relationship is an edge between two documents that share a concept tag.
type Relationship struct {
	SourceID string `json:"source" yaml:"source"`
	TargetID string `json:"target" yaml:"target"`
	Type     string `json:"type" yaml:"type"`
	Concept  string `json:"concept" yaml:"concept"`
}

// Stats summarises the knowledge base. It is persisted with the snapshot so
// a restored process can report the last known relationship count before
// the graph is rebuilt.
type Stats struct {
	Documents     int            `json:"documents" yaml:"documents"`
	Relationships int            `json:"relationships" yaml:"relationships"`
	Concepts      int            `json:"concepts" yaml:"concepts"`
	Categories    map[string]int `json:"categories" yaml:"categories"`
}
