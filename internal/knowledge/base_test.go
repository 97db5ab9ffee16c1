// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/kgraph/internal/fuzzy"
	"github.com/pdiddy/kgraph/pkg/types"
)

func seedCorpus(b *Base) {
	b.IngestText("Kubernetes schedules containers across cluster nodes.", "docs", "k8s.md")
	b.IngestText("Redis caches hot keys in memory for fast lookups.", "docs", "redis.md")
	b.IngestText("Postgres stores relational data with strong consistency.", "docs", "pg.md")
}

func names(docs []types.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Name
	}
	return out
}

// --- search ---

func TestSearchEmptyStore(t *testing.T) {
	b, _ := testBase(t, Options{})
	got := b.Search(context.Background(), "anything", 5)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearchLexical(t *testing.T) {
	b, _ := testBase(t, Options{})
	seedCorpus(b)

	got := b.Search(context.Background(), "redis memory", 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "redis.md", got[0].Name)
}

func TestSearchNeverExceedsLimit(t *testing.T) {
	b, _ := testBase(t, Options{})
	for i := 0; i < 15; i++ {
		b.IngestText("shared words about clusters", "docs", strings.Repeat("n", i+1))
	}

	for _, k := range []int{1, 3, 14, 15, 40} {
		got := b.Search(context.Background(), "clusters", k)
		assert.LessOrEqual(t, len(got), k)
	}
	assert.Len(t, b.Search(context.Background(), "clusters", 0), defaultMaxResults)
}

func TestSearchTiesKeepIngestionOrder(t *testing.T) {
	b, _ := testBase(t, Options{})
	b.IngestText("identical body text", "docs", "first")
	b.IngestText("identical body text", "docs", "second")
	b.IngestText("identical body text", "docs", "third")

	got := b.Search(context.Background(), "identical body", 3)
	assert.Equal(t, []string{"first", "second", "third"}, names(got))
}

func TestSearchNoMatchReturnsEmpty(t *testing.T) {
	b, _ := testBase(t, Options{})
	seedCorpus(b)

	got := b.Search(context.Background(), "zzz qqq", 5)
	assert.Empty(t, got)
}

func TestSearchUnknownTermsSkipFallback(t *testing.T) {
	// A built lexical index scores unknown terms as zero, so the fuzzy
	// matcher never sees the near miss.
	b, _ := testBase(t, Options{Matcher: fuzzy.New()})
	seedCorpus(b)

	assert.Empty(t, b.Search(context.Background(), "kubernetez", 5))
}

func TestSearchFallbackTokenOverlap(t *testing.T) {
	var out bytes.Buffer
	b, _ := testBase(t, Options{Output: &out})
	// Tokens shorter than three characters never reach the lexical vocabulary.
	b.IngestText("go is ok", "docs", "short")
	b.IngestText("an ox", "docs", "other")

	got := b.Search(context.Background(), "go ok", 5)
	require.Len(t, got, 1)
	assert.Equal(t, "short", got[0].Name)
	assert.Contains(t, out.String(), "lexical index build failed")
}

func TestSearchFallbackFuzzy(t *testing.T) {
	b, _ := testBase(t, Options{Matcher: fuzzy.New()})
	b.IngestText("go is ok", "docs", "short")
	b.IngestText("zz", "docs", "other")

	got := b.Search(context.Background(), "go", 5)
	require.NotEmpty(t, got)
	assert.Equal(t, "short", got[0].Name)
}

type stubEncoder struct {
	vectors map[string][]float32
	err     error
}

func (s stubEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := s.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0, 0}
		}
	}
	return out, nil
}

func TestSearchDenseAndLexicalUseMax(t *testing.T) {
	b, _ := testBase(t, Options{})
	seedCorpus(b)
	docs := b.Documents()

	enc := stubEncoder{vectors: map[string][]float32{}}
	enc.vectors[docs[1].FullContent] = []float32{1, 0, 0}
	enc.vectors[docs[2].FullContent] = []float32{0, 1, 0}
	enc.vectors["database"] = []float32{0, 1, 0}

	b, _ = testBase(t, Options{Encoder: enc})
	require.True(t, b.EmbeddingsAvailable())
	seedCorpus(b)

	// "database" is not in the lexical vocabulary; only the dense index scores it.
	got := b.Search(context.Background(), "database", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "pg.md", got[0].Name)

	got = b.Search(context.Background(), "redis", 1)
	require.Len(t, got, 1)
	assert.Equal(t, "redis.md", got[0].Name)
}

func TestSearchEncoderFailureDegrades(t *testing.T) {
	var out bytes.Buffer
	b, _ := testBase(t, Options{Output: &out, Encoder: stubEncoder{err: errors.New("model offline")}})
	seedCorpus(b)

	got := b.Search(context.Background(), "postgres", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "pg.md", got[0].Name)
	assert.Contains(t, out.String(), "embedding index build failed")
}

// countingEncoder fails every call and counts them.
type countingEncoder struct{ calls int }

func (c *countingEncoder) Encode(context.Context, []string) ([][]float32, error) {
	c.calls++
	return nil, errors.New("model offline")
}

func TestSearchDoesNotRetryFailedBuild(t *testing.T) {
	var out bytes.Buffer
	enc := &countingEncoder{}
	b, _ := testBase(t, Options{Output: &out, Encoder: enc})
	// No ASCII letters, so the lexical vocabulary is empty as well.
	b.IngestText("12345 67890", "docs", "digits.txt")

	for i := 0; i < 3; i++ {
		b.Search(context.Background(), "12345", 3)
	}
	assert.Equal(t, 1, enc.calls)
	assert.Equal(t, 1, strings.Count(out.String(), "lexical index build failed"))

	b.IngestText("24680 13579", "docs", "more.txt")
	b.Search(context.Background(), "24680", 3)
	assert.Equal(t, 2, enc.calls)
}

func TestSearchRebuildsAfterIngest(t *testing.T) {
	b, _ := testBase(t, Options{})
	seedCorpus(b)
	require.NotEmpty(t, b.Search(context.Background(), "redis", 3))

	b.IngestText("Terraform provisions cloud infrastructure.", "docs", "tf.md")
	got := b.Search(context.Background(), "terraform", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "tf.md", got[0].Name)
}

// --- graph and centrality ---

func TestRebuildGraphAndCentrality(t *testing.T) {
	b, _ := testBase(t, Options{})
	b.IngestText("Kubernetes notes", "docs", "A")
	b.IngestText("More Kubernetes notes", "docs", "B")
	b.IngestText("unrelated lowercase text", "docs", "C")

	b.RebuildGraph()
	rels := b.Relationships()
	require.Len(t, rels, 1)
	assert.Equal(t, types.Relationship{
		SourceID: "<virtual>/A",
		TargetID: "<virtual>/B",
		Type:     types.RelationSharesConcepts,
		Concept:  "Kubernetes",
	}, rels[0])
	assert.Equal(t, 1, b.Stats().Relationships)

	b.RecomputeCentrality()
	docs := b.Documents()
	assert.InDelta(t, 0.75, docs[0].QualityScore, 1e-9)
	assert.InDelta(t, 0.75, docs[1].QualityScore, 1e-9)
	assert.InDelta(t, 0.7, docs[2].QualityScore, 1e-9)
}

func TestRebuildGraphReplacesEdges(t *testing.T) {
	b, _ := testBase(t, Options{})
	b.IngestText("Kubernetes", "docs", "A")
	b.IngestText("Kubernetes", "docs", "B")
	b.RebuildGraph()
	b.RebuildGraph()
	assert.Len(t, b.Relationships(), 1)
}

func TestCentralitySaturates(t *testing.T) {
	b, _ := testBase(t, Options{})
	for i := 0; i < 9; i++ {
		b.IngestText("Kubernetes cluster", "docs", strings.Repeat("d", i+1))
	}
	b.Reindex(context.Background())

	for _, d := range b.Documents() {
		assert.InDelta(t, 1.0, d.QualityScore, 1e-9, d.Name)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	b, _ := testBase(t, Options{})
	b.IngestText("Kubernetes", "docs", "A")

	docs := b.Documents()
	docs[0].QualityScore = 0.1
	assert.InDelta(t, types.QualitySyntheticBaseline, b.Documents()[0].QualityScore, 1e-9)

	s := b.Stats()
	s.Categories["docs"] = 99
	assert.Equal(t, 1, b.Stats().Categories["docs"])
}
