// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/kgraph/pkg/types"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "nomic-embed-text"
)

// Ollama encodes text through a local Ollama server, one request per text.
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
	w       io.Writer
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllama creates an Ollama client. Empty BaseURL and Model take the
// server's usual defaults.
func NewOllama(cfg types.EmbeddingConfig, w io.Writer) *Ollama {
	base := cfg.BaseURL
	if base == "" {
		base = defaultOllamaURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOllamaModel
	}
	return &Ollama{
		baseURL: strings.TrimRight(base, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
		w:       w,
	}
}

// Encode returns one vector per text.
func (o *Ollama) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for i, text := range texts {
		var resp ollamaResponse
		err := postJSON(ctx, o.client, o.baseURL+"/api/embeddings", nil,
			ollamaRequest{Model: o.model, Prompt: text}, &resp, o.w)
		if err != nil {
			return nil, fmt.Errorf("ollama embedding %d/%d: %w", i+1, len(texts), err)
		}
		if len(resp.Embedding) == 0 {
			return nil, fmt.Errorf("ollama returned an empty embedding for text %d (model %s)", i+1, o.model)
		}
		out = append(out, resp.Embedding)
	}
	return out, nil
}

func (o *Ollama) probe(ctx context.Context) error {
	if err := getStatus(ctx, o.client, o.baseURL+"/api/tags", nil, o.w); err != nil {
		return fmt.Errorf("ollama not reachable: %w", err)
	}
	return nil
}
