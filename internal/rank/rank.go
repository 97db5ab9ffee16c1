// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank fuses per-index similarity scores into a single ranking.
//
// Every source (lexical, dense) is asked for one similarity per document.
// The final score of a document is the highest score any source gave it.
// When no source can score the query, each snippet is scored directly,
// either by a fuzzy matcher or by the share of query words it contains.
package rank

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/kgraph/internal/fuzzy"
)

// Source produces one similarity per indexed document, in index order.
// A nil slice means the source has nothing to say about the query.
type Source interface {
	Name() string
	Similarities(ctx context.Context, query string) ([]float64, error)
}

// Hit is a ranked document position with its fused score.
type Hit struct {
	Doc   int
	Score float64
}

// Ranker combines sources with an optional fuzzy matcher.
type Ranker struct {
	sources []Source
	matcher fuzzy.Matcher
	out     io.Writer
}

// New returns a Ranker. matcher may be nil; out receives warnings and may
// be nil to discard them.
func New(matcher fuzzy.Matcher, out io.Writer, sources ...Source) *Ranker {
	if out == nil {
		out = io.Discard
	}
	return &Ranker{sources: sources, matcher: matcher, out: out}
}

// Rank scores snippets against query and returns at most limit hits in
// descending score order. Ties keep snippet order. Documents scoring zero
// or less are dropped.
func (r *Ranker) Rank(ctx context.Context, query string, snippets []string, limit int) []Hit {
	if len(snippets) == 0 || limit < 1 {
		return nil
	}

	scores := make([]float64, len(snippets))
	observed := false
	for _, src := range r.sources {
		sims, err := src.Similarities(ctx, query)
		if err != nil {
			fmt.Fprintf(r.out, "warning: %s search failed: %v\n", src.Name(), err)
			continue
		}
		if sims == nil {
			continue
		}
		if len(sims) != len(snippets) {
			fmt.Fprintf(r.out, "warning: %s index is stale (%d of %d documents), ignoring\n",
				src.Name(), len(sims), len(snippets))
			continue
		}
		observed = true
		for i, s := range sims {
			if s > scores[i] {
				scores[i] = s
			}
		}
	}

	if !observed {
		q := strings.ToLower(query)
		for i, snip := range snippets {
			scores[i] = r.fallback(q, strings.ToLower(snip))
		}
	}

	hits := make([]Hit, 0, len(snippets))
	for i, s := range scores {
		if s > 0 {
			hits = append(hits, Hit{Doc: i, Score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// fallback scores a lowercased snippet against a lowercased query.
func (r *Ranker) fallback(query, snippet string) float64 {
	if r.matcher != nil {
		return r.matcher.Ratio(query, snippet)
	}
	return TokenOverlap(query, snippet)
}

// TokenOverlap returns the fraction of whitespace-separated words of
// query that occur as substrings of snippet. An empty query scores 0.
func TokenOverlap(query, snippet string) float64 {
	words := strings.Fields(query)
	if len(words) == 0 {
		return 0
	}
	hit := 0
	for _, w := range words {
		if strings.Contains(snippet, w) {
			hit++
		}
	}
	return float64(hit) / float64(len(words))
}
