// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index holds the two transient search indexes built over the
// knowledge base: a TF-IDF lexical index and an optional dense embedding
// index. Neither is persisted; both are rebuilt in full from the document
// store.
package index

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

const (
	// MaxFeatures caps the lexical vocabulary size.
	MaxFeatures = 20000

	// LexicalTextLimit is the number of characters of each document that
	// the lexical index sees.
	LexicalTextLimit = 10000
)

// ErrEmptyVocabulary is returned by Build when a non-empty corpus yields
// no tokens at all.
var ErrEmptyVocabulary = errors.New("empty vocabulary")

var featurePattern = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9_\-]{2,}\b`)

// Lexical is a TF-IDF index over unigram and bigram features with
// L2-normalised rows.
type Lexical struct {
	built bool
	vocab map[string]int
	idf   []float64
	rows  []map[int]float64
}

// NewLexical returns an unbuilt lexical index.
func NewLexical() *Lexical {
	return &Lexical{}
}

// Name identifies the index in log lines.
func (l *Lexical) Name() string { return "lexical" }

// Built reports whether Build has completed successfully.
func (l *Lexical) Built() bool { return l.built }

// Len returns the number of indexed documents.
func (l *Lexical) Len() int { return len(l.rows) }

// Reset discards the index.
func (l *Lexical) Reset() {
	*l = Lexical{}
}

// Build replaces the index with one fitted to corpus. An empty corpus
// produces an empty, built index.
func (l *Lexical) Build(corpus []string) error {
	l.Reset()
	if len(corpus) == 0 {
		l.built = true
		return nil
	}

	docs := make([][]string, len(corpus))
	freq := make(map[string]int)
	for i, text := range corpus {
		docs[i] = features(truncateRunes(text, LexicalTextLimit))
		for _, f := range docs[i] {
			freq[f]++
		}
	}
	if len(freq) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(freq))
	for f := range freq {
		terms = append(terms, f)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > MaxFeatures {
		terms = terms[:MaxFeatures]
	}

	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}

	counts := make([]map[int]float64, len(docs))
	df := make([]int, len(terms))
	for i, fs := range docs {
		counts[i] = countFeatures(fs, vocab)
		for col := range counts[i] {
			df[col]++
		}
	}

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for col, d := range df {
		idf[col] = math.Log((1+n)/(1+float64(d))) + 1
	}

	for _, row := range counts {
		for col, c := range row {
			row[col] = c * idf[col]
		}
		normalize(row)
	}

	l.vocab = vocab
	l.idf = idf
	l.rows = counts
	l.built = true
	return nil
}

// Similarities returns the cosine similarity of query to every indexed
// document, in index order. It returns nil when the index is unbuilt or
// empty. A query sharing no features with the vocabulary scores zero
// everywhere.
func (l *Lexical) Similarities(_ context.Context, query string) ([]float64, error) {
	if !l.built || len(l.rows) == 0 {
		return nil, nil
	}

	scores := make([]float64, len(l.rows))
	q := countFeatures(features(query), l.vocab)
	if len(q) == 0 {
		return scores, nil
	}
	for col, c := range q {
		q[col] = c * l.idf[col]
	}
	normalize(q)

	for i, row := range l.rows {
		var dot float64
		for col, w := range q {
			dot += w * row[col]
		}
		scores[i] = dot
	}
	return scores, nil
}

// features lowercases text and returns its unigrams followed by its
// space-joined bigrams.
func features(text string) []string {
	tokens := featurePattern.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, 2*len(tokens)-1)
	out = append(out, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

func countFeatures(fs []string, vocab map[string]int) map[int]float64 {
	row := make(map[int]float64)
	for _, f := range fs {
		if col, ok := vocab[f]; ok {
			row[col]++
		}
	}
	return row
}

func normalize(row map[int]float64) {
	var sum float64
	for _, w := range row {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for col := range row {
		row[col] /= norm
	}
}

// truncateRunes returns the first n characters of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
