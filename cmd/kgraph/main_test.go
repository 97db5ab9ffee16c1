// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kgraph/internal/secrets"
	"github.com/pdiddy/kgraph/pkg/types"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		secrets secrets.Secrets
		check   func(t *testing.T, cfg types.KnowledgeBaseConfig)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, cfg types.KnowledgeBaseConfig) {
				assert.Equal(t, "knowledge", cfg.KnowledgeDir)
				assert.Equal(t, 10, cfg.MaxResults)
				assert.Equal(t, int64(5_000_000), cfg.MaxFileBytes)
				assert.True(t, cfg.Fuzzy)
				assert.Equal(t, types.BackendNative, cfg.Extraction.Backend)
				assert.Equal(t, types.EmbeddingNone, cfg.Embedding.Provider)
				assert.Equal(t, 30*time.Second, cfg.Embedding.Timeout)
			},
		},
		{
			name: "overrides",
			set: map[string]any{
				keyKnowledgeDir: "kb",
				keyFuzzy:        false,
				keyBackend:      "markitdown",
				keyRuntime:      "podman",
				keyProvider:     "ollama",
				keyModel:        "mxbai-embed-large",
				keyTimeout:      "5s",
			},
			check: func(t *testing.T, cfg types.KnowledgeBaseConfig) {
				assert.Equal(t, "kb", cfg.KnowledgeDir)
				assert.False(t, cfg.Fuzzy)
				assert.Equal(t, types.BackendMarkitdown, cfg.Extraction.Backend)
				assert.Equal(t, "podman", cfg.Extraction.Runtime)
				assert.Equal(t, types.EmbeddingOllama, cfg.Embedding.Provider)
				assert.Equal(t, "mxbai-embed-large", cfg.Embedding.Model)
				assert.Equal(t, 5*time.Second, cfg.Embedding.Timeout)
			},
		},
		{
			name:    "secret fills an empty api key",
			secrets: secrets.Secrets{secrets.KeyOpenAI: "sk-secret"},
			check: func(t *testing.T, cfg types.KnowledgeBaseConfig) {
				assert.Equal(t, "sk-secret", cfg.Embedding.APIKey)
			},
		},
		{
			name:    "configured api key wins over secret",
			set:     map[string]any{keyAPIKey: "sk-config"},
			secrets: secrets.Secrets{secrets.KeyOpenAI: "sk-secret"},
			check: func(t *testing.T, cfg types.KnowledgeBaseConfig) {
				assert.Equal(t, "sk-config", cfg.Embedding.APIKey)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			setDefaults()
			for k, v := range tt.set {
				viper.Set(k, v)
			}
			old := loadedSecrets
			loadedSecrets = tt.secrets
			t.Cleanup(func() { loadedSecrets = old })

			tt.check(t, loadConfig())
		})
	}
}

func sampleHits() []types.Document {
	return []types.Document{
		{
			SourceID:     "docs/redis-tuning-guide-for-production-clusters.md",
			Name:         "redis-tuning-guide-for-production-clusters.md",
			Category:     "docs",
			Snippet:      "Redis   tuning\nnotes",
			QualityScore: 0.75,
			ConceptTags:  []string{"Cache", "Eviction", "Memory", "Redis", "Sentinel", "Tuning"},
		},
		{
			SourceID:     "<virtual>/seed.txt",
			Name:         "seed.txt",
			Category:     "seed",
			QualityScore: 0.7,
		},
	}
}

func TestFormatSearchOutputTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatSearchOutput(&buf, toSearchResults(sampleHits()), false, true))

	out := buf.String()
	assert.Contains(t, out, "redis-tuning-guide-for-prod...")
	assert.Contains(t, out, "Cache, Eviction, Memory, Redis, Sentinel\n")
	assert.NotContains(t, out, "Tuning\n")
	assert.Contains(t, out, "      Redis tuning notes\n")
	assert.Contains(t, out, "0.75")
	assert.True(t, strings.HasSuffix(out, "\n2 results\n"))
}

func TestFormatSearchOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatSearchOutput(&buf, toSearchResults(sampleHits()), true, false))

	var got []searchResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "docs", got[0].Category)
	assert.Empty(t, got[0].Snippet)
	assert.Equal(t, "<virtual>/seed.txt", got[1].SourceID)
}

func TestFormatSearchOutputEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, formatSearchOutput(&buf, nil, false, false))
	assert.Equal(t, "No results found.\n", buf.String())

	buf.Reset()
	require.NoError(t, formatSearchOutput(&buf, nil, true, false))
	assert.Equal(t, "[]\n", buf.String())
}

func TestFormatStats(t *testing.T) {
	s := types.Stats{
		Documents:     3,
		Relationships: 2,
		Concepts:      4,
		Categories:    map[string]int{"repo": 2, "docs": 1},
	}

	var buf bytes.Buffer
	require.NoError(t, formatStats(&buf, s, time.Time{}, false, false))
	out := buf.String()
	assert.Contains(t, out, "Documents:     3\n")
	assert.Contains(t, out, "Embeddings:    false\n")
	assert.NotContains(t, out, "Saved:")
	assert.Less(t, strings.Index(out, "docs"), strings.Index(out, "repo"))

	buf.Reset()
	require.NoError(t, formatStats(&buf, s, time.Now(), true, true))
	var got types.Stats
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, s, got)
}

func TestTopCounts(t *testing.T) {
	got := topCounts(map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}, 3)
	assert.Equal(t, []ranked{{"c", 5}, {"a", 2}, {"b", 2}}, got)
	assert.Len(t, topCounts(map[string]int{"a": 1}, 0), 1)
}

func TestPrintGraph(t *testing.T) {
	docs := []types.Document{
		{SourceID: "a", Name: "a.md", QualityScore: 0.8},
		{SourceID: "b", Name: "b.md", QualityScore: 0.75},
		{SourceID: "c", Name: "c.md", QualityScore: 0.75},
	}
	rels := []types.Relationship{
		{SourceID: "a", TargetID: "b", Type: types.RelationSharesConcepts, Concept: "Redis"},
		{SourceID: "a", TargetID: "c", Type: types.RelationSharesConcepts, Concept: "Redis"},
		{SourceID: "a", TargetID: "c", Type: types.RelationSharesConcepts, Concept: "Cache"},
	}

	var buf bytes.Buffer
	printGraph(&buf, docs, rels, 1)
	out := buf.String()
	assert.Contains(t, out, "3 documents, 3 relationships")
	assert.Contains(t, out, "a.md")
	assert.Contains(t, out, "3 edges  quality 0.80")
	assert.NotContains(t, out, "b.md")
	assert.Contains(t, out, "Redis")
	assert.NotContains(t, out, "Cache")
}

func TestDigestPath(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	write("main.go", "package main\n\nfunc main() {}\n")
	write("notes.md", "Redis caches sessions.")
	write(".git/HEAD", "ref: refs/heads/main")

	got := digestPath(dir)
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], "# main.go\n- func main(...)"))
	assert.Equal(t, "# notes.md\n- Redis caches sessions.", got[1])

	single := digestPath(filepath.Join(dir, "notes.md"))
	assert.Equal(t, []string{"# notes.md\n- Redis caches sessions."}, single)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}

func TestQueryFileSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redis.yaml")
	saved := QueryFile{
		Query:   "redis tuning",
		Config:  QueryFileConfig{Limit: 5, Fuzzy: true},
		Results: toSearchResults(sampleHits()),
		Summary: QuerySummary{Total: 2, Documents: 9, Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	require.NoError(t, WriteQueryFile(path, saved))

	got, err := ReadQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, "redis tuning", got.Query)
	assert.Equal(t, 5, got.Config.Limit)
	require.Len(t, got.Results, 2)
	assert.Equal(t, "Redis   tuning\nnotes", got.Results[0].Snippet)
	assert.True(t, saved.Summary.Timestamp.Equal(got.Summary.Timestamp))

	var buf bytes.Buffer
	require.NoError(t, formatSearchOutput(&buf, got.Results, false, false))
	assert.Contains(t, buf.String(), "seed.txt")

	_, err = ReadQueryFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading query file")
}

// testCommand returns a command carrying the flags the run functions read.
func testCommand(category string) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("category", category, "")
	cmd.Flags().String("name", "", "")
	cmd.SetContext(context.Background())
	return cmd
}

func TestGatherKeepsSyntheticDocuments(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	viper.Reset()
	t.Cleanup(viper.Reset)
	setDefaults()
	viper.Set(keyQuiet, true)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("Redis notes for the cache tier."), 0o644))

	seed := testCommand("seed")
	require.NoError(t, seed.Flags().Set("name", "seed.txt"))
	require.NoError(t, runSeed(seed, []string{"Seeded Redis idea"}))

	for i := 0; i < 2; i++ {
		require.NoError(t, runGather(testCommand("gather"), nil))
	}

	b := openBase(testCommand(""))
	var names []string
	for _, d := range b.Documents() {
		names = append(names, d.Name)
	}
	assert.ElementsMatch(t, []string{"seed.txt", "notes.md"}, names)
}
