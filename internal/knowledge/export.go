// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kgraph/pkg/types"
)

// ExportDocument is the exported form of a document. Full content is left
// out to keep the file readable.
type ExportDocument struct {
	SourceID     string   `json:"source_id" yaml:"source_id"`
	Name         string   `json:"name" yaml:"name"`
	Category     string   `json:"category" yaml:"category"`
	QualityScore float64  `json:"quality_score" yaml:"quality_score"`
	ConceptTags  []string `json:"concept_tags" yaml:"concept_tags"`
	Snippet      string   `json:"snippet" yaml:"snippet"`
}

// Export is the top-level structure written by ExportYAML and ExportJSON.
type Export struct {
	ExportedAt    string               `json:"exported_at" yaml:"exported_at"`
	Stats         types.Stats          `json:"stats" yaml:"stats"`
	Documents     []ExportDocument     `json:"documents" yaml:"documents"`
	Relationships []types.Relationship `json:"relationships" yaml:"relationships"`
}

// ExportYAML writes the knowledge base to <knowledge_dir>/index/export.yaml
// and returns the path written.
func (b *Base) ExportYAML() (string, error) {
	data, err := yaml.Marshal(b.export())
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return b.writeExport("export.yaml", data)
}

// ExportJSON writes the knowledge base to <knowledge_dir>/index/export.json
// and returns the path written.
func (b *Base) ExportJSON() (string, error) {
	data, err := json.MarshalIndent(b.export(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return b.writeExport("export.json", data)
}

func (b *Base) writeExport(name string, data []byte) (string, error) {
	dir := filepath.Join(b.knowledgeDir, indexDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating index directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func (b *Base) export() Export {
	docs := make([]ExportDocument, len(b.docs))
	for i, d := range b.docs {
		docs[i] = ExportDocument{
			SourceID:     d.SourceID,
			Name:         d.Name,
			Category:     d.Category,
			QualityScore: d.QualityScore,
			ConceptTags:  d.ConceptTags,
			Snippet:      d.Snippet,
		}
	}
	rels := b.rels
	if rels == nil {
		rels = []types.Relationship{}
	}
	return Export{
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		Stats:         b.Stats(),
		Documents:     docs,
		Relationships: rels,
	}
}
