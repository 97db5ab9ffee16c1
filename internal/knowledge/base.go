// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge holds the document store: ingestion, hybrid search,
// the concept relationship graph, centrality scoring, and the on-disk
// snapshot.
//
// A Base is single-owner state. Nothing in this package locks; callers
// serialise access.
package knowledge

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/kgraph/internal/fuzzy"
	"github.com/pdiddy/kgraph/internal/graph"
	"github.com/pdiddy/kgraph/internal/index"
	"github.com/pdiddy/kgraph/internal/rank"
	"github.com/pdiddy/kgraph/pkg/types"
)

const (
	defaultMaxResults   = 10
	defaultMaxFileBytes = 5_000_000
)

// TextExtractor resolves office and PDF files to plain text. It returns an
// empty string when the file cannot be read.
type TextExtractor interface {
	ExtractText(path string) string
}

// Options carries the optional collaborators of a Base. Any field may be
// left nil.
type Options struct {
	// Output receives progress and warning lines. Nil discards them.
	Output io.Writer

	// Extractor handles .docx and .pdf files.
	Extractor TextExtractor

	// Encoder enables the dense embedding index.
	Encoder index.Encoder

	// Matcher enables fuzzy fallback scoring.
	Matcher fuzzy.Matcher
}

// Base is the knowledge store.
type Base struct {
	knowledgeDir string
	maxResults   int
	maxFileBytes int64

	out       io.Writer
	extractor TextExtractor
	matcher   fuzzy.Matcher

	docs  []types.Document
	rels  []types.Relationship
	stats types.Stats

	// tags is the distinct concept set behind stats.Concepts, built on
	// the first add after a full refresh.
	tags map[string]struct{}

	lexical *index.Lexical
	dense   *index.Dense

	// attempted is set by Build and cleared by invalidate, so a failing
	// index is not rebuilt on every query.
	attempted bool
}

// NewBase creates an empty knowledge base rooted at cfg.KnowledgeDir.
// Call Load to restore a previous snapshot.
func NewBase(cfg types.KnowledgeBaseConfig, opts Options) *Base {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	maxFileBytes := cfg.MaxFileBytes
	if maxFileBytes <= 0 {
		maxFileBytes = defaultMaxFileBytes
	}
	out := opts.Output
	if out == nil {
		out = io.Discard
	}

	b := &Base{
		knowledgeDir: cfg.KnowledgeDir,
		maxResults:   maxResults,
		maxFileBytes: maxFileBytes,
		out:          out,
		extractor:    opts.Extractor,
		matcher:      opts.Matcher,
		lexical:      index.NewLexical(),
		dense:        index.NewDense(opts.Encoder),
	}
	b.refreshStats()
	return b
}

// KnowledgeDir returns the directory holding the snapshot.
func (b *Base) KnowledgeDir() string { return b.knowledgeDir }

// MaxFileBytes returns the configured per-file size limit for tree walks.
func (b *Base) MaxFileBytes() int64 { return b.maxFileBytes }

// Len returns the number of documents.
func (b *Base) Len() int { return len(b.docs) }

// Documents returns a copy of the documents in insertion order.
func (b *Base) Documents() []types.Document {
	out := make([]types.Document, len(b.docs))
	copy(out, b.docs)
	return out
}

// Relationships returns a copy of the current relationship set.
func (b *Base) Relationships() []types.Relationship {
	out := make([]types.Relationship, len(b.rels))
	copy(out, b.rels)
	return out
}

// Stats returns the current summary statistics.
func (b *Base) Stats() types.Stats {
	s := b.stats
	s.Categories = make(map[string]int, len(b.stats.Categories))
	for k, v := range b.stats.Categories {
		s.Categories[k] = v
	}
	return s
}

// EmbeddingsAvailable reports whether a dense encoder was supplied.
func (b *Base) EmbeddingsAvailable() bool { return b.dense.Available() }

// Build rebuilds both search indexes from the full document set. Failures
// are reported on the output writer and leave the failing index unbuilt,
// so search falls back to snippet matching.
func (b *Base) Build(ctx context.Context) {
	b.attempted = true
	texts := make([]string, len(b.docs))
	for i, d := range b.docs {
		texts[i] = d.FullContent
	}

	if err := b.lexical.Build(texts); err != nil {
		fmt.Fprintf(b.out, "warning: lexical index build failed: %v\n", err)
	}
	if b.dense.Available() {
		if err := b.dense.Build(ctx, texts); err != nil {
			fmt.Fprintf(b.out, "warning: embedding index build failed: %v\n", err)
		}
	}
}

// Search returns at most limit documents ranked against query. A limit
// below 1 uses the configured default. Indexes are built on first use
// after the document set changes.
func (b *Base) Search(ctx context.Context, query string, limit int) []types.Document {
	if limit < 1 {
		limit = b.maxResults
	}
	if len(b.docs) == 0 {
		return []types.Document{}
	}
	if !b.attempted {
		b.Build(ctx)
	}

	snippets := make([]string, len(b.docs))
	for i, d := range b.docs {
		snippets[i] = d.Snippet
	}

	r := rank.New(b.matcher, b.out, b.lexical, b.dense)
	hits := r.Rank(ctx, query, snippets, limit)

	out := make([]types.Document, len(hits))
	for i, h := range hits {
		out[i] = b.docs[h.Doc]
	}
	return out
}

// RebuildGraph replaces the relationship set with edges between documents
// that share a concept tag.
func (b *Base) RebuildGraph() {
	b.rels = graph.Relationships(b.docs)
	b.refreshStats()
}

// RecomputeCentrality overwrites every document's quality score from its
// degree in the current relationship set.
func (b *Base) RecomputeCentrality() {
	deg := graph.Degrees(b.rels)
	for i := range b.docs {
		b.docs[i].QualityScore = graph.QualityScore(deg[b.docs[i].SourceID])
	}
}

// Reindex runs the full refresh pipeline: indexes, graph, centrality.
func (b *Base) Reindex(ctx context.Context) {
	b.Build(ctx)
	b.RebuildGraph()
	b.RecomputeCentrality()
}

// invalidate drops both indexes after the document set changes.
func (b *Base) invalidate() {
	b.attempted = false
	b.lexical.Reset()
	b.dense.Reset()
}

func (b *Base) refreshStats() {
	cats := make(map[string]int)
	for _, d := range b.docs {
		cats[d.Category]++
	}
	b.tags = nil
	b.stats = types.Stats{
		Documents:     len(b.docs),
		Relationships: len(b.rels),
		Concepts:      graph.Concepts(b.docs),
		Categories:    cats,
	}
}
