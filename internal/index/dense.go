// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// DenseTextLimit is the number of characters of each document sent to the
// encoder.
const DenseTextLimit = 2000

// Encoder turns texts into fixed-width vectors. Implementations live in
// internal/embed.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Dense is the optional embedding index. Availability is fixed when the
// index is created: a nil encoder yields an index that never builds.
type Dense struct {
	enc     Encoder
	built   bool
	vectors [][]float64
	norms   []float64
}

// NewDense returns an embedding index backed by enc, which may be nil.
func NewDense(enc Encoder) *Dense {
	return &Dense{enc: enc}
}

// Name identifies the index in log lines.
func (d *Dense) Name() string { return "dense" }

// Available reports whether an encoder was supplied.
func (d *Dense) Available() bool { return d.enc != nil }

// Built reports whether Build has completed successfully.
func (d *Dense) Built() bool { return d.built }

// Len returns the number of indexed documents.
func (d *Dense) Len() int { return len(d.vectors) }

// Reset discards the vectors but keeps the encoder.
func (d *Dense) Reset() {
	d.built = false
	d.vectors = nil
	d.norms = nil
}

// Build encodes the leading DenseTextLimit characters of each text. It is
// a no-op without an encoder. All vectors must share one width.
func (d *Dense) Build(ctx context.Context, texts []string) error {
	d.Reset()
	if d.enc == nil {
		return nil
	}
	if len(texts) == 0 {
		d.built = true
		return nil
	}

	inputs := make([]string, len(texts))
	for i, t := range texts {
		inputs[i] = truncateRunes(t, DenseTextLimit)
	}
	raw, err := d.enc.Encode(ctx, inputs)
	if err != nil {
		return fmt.Errorf("encoding %d documents: %w", len(texts), err)
	}
	if len(raw) != len(texts) {
		return fmt.Errorf("encoder returned %d vectors for %d documents", len(raw), len(texts))
	}

	width := len(raw[0])
	vectors := make([][]float64, len(raw))
	norms := make([]float64, len(raw))
	for i, v := range raw {
		if len(v) != width || width == 0 {
			return fmt.Errorf("vector %d has width %d, want %d", i, len(v), width)
		}
		vectors[i] = widen(v)
		norms[i] = floats.Norm(vectors[i], 2)
	}

	d.vectors = vectors
	d.norms = norms
	d.built = true
	return nil
}

// Similarities returns the cosine similarity of the encoded query to every
// indexed vector. It returns nil when the index is unbuilt. A query
// vector of zero length scores zero everywhere.
func (d *Dense) Similarities(ctx context.Context, query string) ([]float64, error) {
	if !d.built || d.enc == nil || len(d.vectors) == 0 {
		return nil, nil
	}

	raw, err := d.enc.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("encoder returned %d vectors for one query", len(raw))
	}
	q := widen(raw[0])
	if len(q) != len(d.vectors[0]) {
		return nil, fmt.Errorf("query vector has width %d, want %d", len(q), len(d.vectors[0]))
	}
	scores := make([]float64, len(d.vectors))
	qn := floats.Norm(q, 2)
	if qn == 0 {
		return scores, nil
	}

	for i, v := range d.vectors {
		if d.norms[i] == 0 {
			continue
		}
		scores[i] = floats.Dot(q, v) / (qn * d.norms[i])
	}
	return scores, nil
}

func widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
