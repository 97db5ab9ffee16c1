// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kgraph/pkg/types"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	b, dir := testBase(t, Options{})
	path := writeFile(t, dir, "big.txt", "Kubernetes "+patterned(ChunkThreshold+100))
	if _, err := b.IngestFile(path, "knowledge"); err != nil {
		t.Fatal(err)
	}
	b.IngestText("Kubernetes and Redis seed", "vision", "seed.txt")
	b.IngestText("plain text with no tags", "vision", "plain.txt")
	b.Reindex(context.Background())

	if err := b.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := b.Documents()
	wantStats := b.Stats()

	restored := NewBase(types.KnowledgeBaseConfig{KnowledgeDir: b.KnowledgeDir()}, Options{})
	if !restored.Load() {
		t.Fatal("Load returned false for a fresh snapshot")
	}

	got := restored.Documents()
	if len(got) != len(want) {
		t.Fatalf("restored %d documents, want %d", len(got), len(want))
	}
	for i := range want {
		if !documentsEqual(got[i], want[i]) {
			t.Errorf("document %d differs:\n got  %+v\n want %+v", i, docSummary(got[i]), docSummary(want[i]))
		}
	}

	gotStats := restored.Stats()
	if gotStats.Documents != wantStats.Documents || gotStats.Relationships != wantStats.Relationships ||
		gotStats.Concepts != wantStats.Concepts || len(gotStats.Categories) != len(wantStats.Categories) {
		t.Errorf("stats = %+v, want %+v", gotStats, wantStats)
	}

	if restored.lexical.Built() || restored.dense.Built() {
		t.Error("indexes must not be restored")
	}
	if len(restored.Relationships()) != 0 {
		t.Error("relationships must not be restored")
	}
	if restored.SavedAt().IsZero() {
		t.Error("saved_at not recorded")
	}
	if time.Since(restored.SavedAt()) > time.Minute {
		t.Errorf("saved_at = %v, too old", restored.SavedAt())
	}
}

func documentsEqual(a, b types.Document) bool {
	return a.SourceID == b.SourceID && a.Name == b.Name && a.Category == b.Category &&
		a.Snippet == b.Snippet && a.FullContent == b.FullContent &&
		a.QualityScore == b.QualityScore && strings.Join(a.ConceptTags, "\x00") == strings.Join(b.ConceptTags, "\x00") &&
		len(a.ConceptTags) == len(b.ConceptTags)
}

func docSummary(d types.Document) string {
	return d.SourceID + " " + d.Name + " " + strings.Join(d.ConceptTags, ",")
}

func TestSaveOverwritesPreviousSnapshot(t *testing.T) {
	b, _ := testBase(t, Options{})
	b.IngestText("first", "docs", "a")
	b.IngestText("second", "docs", "b")
	if err := b.Save(); err != nil {
		t.Fatal(err)
	}

	b2 := NewBase(types.KnowledgeBaseConfig{KnowledgeDir: b.KnowledgeDir()}, Options{})
	b2.IngestText("only", "docs", "c")
	if err := b2.Save(); err != nil {
		t.Fatal(err)
	}

	b3 := NewBase(types.KnowledgeBaseConfig{KnowledgeDir: b.KnowledgeDir()}, Options{})
	b3.Load()
	if b3.Len() != 1 || b3.Documents()[0].Name != "c" {
		t.Errorf("got %d documents, want only c", b3.Len())
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	var out bytes.Buffer
	b, _ := testBase(t, Options{Output: &out})

	if b.Load() {
		t.Error("Load returned true without a snapshot")
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
	if out.Len() != 0 {
		t.Errorf("missing snapshot should be silent, got %q", out.String())
	}
	if _, err := os.Stat(b.SnapshotPath()); !os.IsNotExist(err) {
		t.Error("Load must not create the snapshot file")
	}
}

func TestLoadCorruptSnapshot(t *testing.T) {
	var out bytes.Buffer
	b, _ := testBase(t, Options{Output: &out})
	b.IngestText("Kubernetes", "docs", "kept-in-memory")

	if err := os.MkdirAll(filepath.Dir(b.SnapshotPath()), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b.SnapshotPath(), []byte(strings.Repeat("not a database ", 100)), 0o644); err != nil {
		t.Fatal(err)
	}

	if b.Load() {
		t.Error("Load returned true for a corrupt snapshot")
	}
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want an empty store", b.Len())
	}
	if !strings.Contains(out.String(), "warning:") {
		t.Errorf("expected a warning, got %q", out.String())
	}
	if got := b.Search(context.Background(), "kubernetes", 5); len(got) != 0 {
		t.Errorf("search after failed load returned %d documents", len(got))
	}
}

func TestSaveUnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "knowledge")
	if err := os.WriteFile(blocker, []byte("file, not dir"), 0o644); err != nil {
		t.Fatal(err)
	}
	b := NewBase(types.KnowledgeBaseConfig{KnowledgeDir: blocker}, Options{})
	b.IngestText("text", "docs", "a")

	if err := b.Save(); err == nil {
		t.Error("expected an error when the index directory cannot be created")
	}
}

// --- export ---

func TestExportYAMLAndJSON(t *testing.T) {
	b, _ := testBase(t, Options{})
	b.IngestText("Kubernetes cluster notes", "docs", "A")
	b.IngestText("Kubernetes operator notes", "docs", "B")
	b.Reindex(context.Background())

	yamlPath, err := b.ExportYAML()
	if err != nil {
		t.Fatalf("ExportYAML: %v", err)
	}
	if filepath.Base(yamlPath) != "export.yaml" {
		t.Errorf("path = %s", yamlPath)
	}
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML Export
	if err := yaml.Unmarshal(data, &fromYAML); err != nil {
		t.Fatalf("parsing export.yaml: %v", err)
	}

	jsonPath, err := b.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	data, err = os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON Export
	if err := json.Unmarshal(data, &fromJSON); err != nil {
		t.Fatalf("parsing export.json: %v", err)
	}

	for name, exp := range map[string]Export{"yaml": fromYAML, "json": fromJSON} {
		if len(exp.Documents) != 2 {
			t.Errorf("%s: %d documents, want 2", name, len(exp.Documents))
		}
		if len(exp.Relationships) != 1 || exp.Relationships[0].Concept != "Kubernetes" {
			t.Errorf("%s: relationships = %+v", name, exp.Relationships)
		}
		if exp.Stats.Documents != 2 {
			t.Errorf("%s: stats.documents = %d", name, exp.Stats.Documents)
		}
		if math.Abs(exp.Documents[0].QualityScore-0.75) > 1e-9 {
			t.Errorf("%s: quality = %v, want 0.75", name, exp.Documents[0].QualityScore)
		}
	}
	if strings.Contains(string(data), "full_content") {
		t.Error("export must not include full content")
	}
}
