// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns office and PDF files into plain text for
// ingestion. Backends are pluggable: a native reader for .docx, the
// pdftotext tool for PDFs, or the markitdown container image for both.
package convert

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pdiddy/kgraph/internal/container"
	"github.com/pdiddy/kgraph/pkg/types"
)

// Converter transforms a file into plain text. Different backends
// (docx, pdftotext, markitdown) implement this interface.
type Converter interface {
	// Convert reads the file at path and returns its text content.
	Convert(path string) (string, error)
}

// Extractor routes files to a Converter by extension. It never fails:
// any conversion error becomes an empty result and a warning line.
type Extractor struct {
	converters map[string]Converter
	w          io.Writer
}

// NewExtractor creates an Extractor with no converters. Register adds them.
func NewExtractor(w io.Writer) *Extractor {
	if w == nil {
		w = io.Discard
	}
	return &Extractor{converters: make(map[string]Converter), w: w}
}

// Register associates ext (for example ".pdf") with c.
func (e *Extractor) Register(ext string, c Converter) {
	e.converters[strings.ToLower(ext)] = c
}

// Supports reports whether a converter is registered for path's extension.
func (e *Extractor) Supports(path string) bool {
	_, ok := e.converters[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ExtractText returns the text of path, or "" when no converter handles
// the extension or conversion fails.
func (e *Extractor) ExtractText(path string) string {
	c, ok := e.converters[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return ""
	}
	text, err := c.Convert(path)
	if err != nil {
		fmt.Fprintf(e.w, "warning: extracting %s: %v\n", filepath.Base(path), err)
		return ""
	}
	return text
}

// New builds the Extractor selected by cfg. The markitdown backend needs
// a working container runtime and the markitdown image; when either is
// missing it reports a warning and falls back to the native backend.
func New(cfg types.ExtractionConfig, w io.Writer) *Extractor {
	e := NewExtractor(w)

	if cfg.Backend == types.BackendMarkitdown {
		md, err := markitdownFromRuntime(cfg.Runtime)
		if err == nil {
			for _, ext := range md.Extensions() {
				e.Register(ext, md)
			}
			return e
		}
		fmt.Fprintf(e.w, "warning: markitdown backend unavailable, using native: %v\n", err)
	}

	e.Register(".docx", NewDocxConverter())
	e.Register(".pdf", NewPdftotextConverter())
	return e
}

func markitdownFromRuntime(preferred string) (*MarkitdownConverter, error) {
	rt, err := container.DetectRuntime(preferred)
	if err != nil {
		return nil, err
	}
	return NewMarkitdownConverter(rt)
}
