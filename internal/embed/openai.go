// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package embed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/kgraph/pkg/types"
)

const (
	defaultOpenAIURL   = "https://api.openai.com/v1"
	defaultOpenAIModel = "text-embedding-3-small"
	// openAIBatchSize is the number of inputs sent per request.
	openAIBatchSize = 64
)

// ErrMissingAPIKey is returned when the OpenAI provider has no key.
var ErrMissingAPIKey = errors.New("openai embeddings need an API key (embedding.api_key or .secrets/openai-api-key)")

// OpenAI encodes text through an OpenAI-compatible /embeddings endpoint
// in batches.
type OpenAI struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	w       io.Writer
}

type openAIRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewOpenAI creates an OpenAI-compatible client. It fails without an API key.
func NewOpenAI(cfg types.EmbeddingConfig, w io.Writer) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenAIURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAI{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		client:  &http.Client{Timeout: timeoutOrDefault(cfg.Timeout)},
		w:       w,
	}, nil
}

func (o *OpenAI) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + o.apiKey}
}

// Encode returns one vector per text, preserving input order.
func (o *OpenAI) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for start := 0; start < len(texts); start += openAIBatchSize {
		end := min(start+openAIBatchSize, len(texts))
		batch := texts[start:end]

		var resp openAIResponse
		err := postJSON(ctx, o.client, o.baseURL+"/embeddings", o.headers(),
			openAIRequest{Model: o.model, Input: batch}, &resp, o.w)
		if err != nil {
			return nil, fmt.Errorf("openai embeddings %d-%d: %w", start+1, end, err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("openai returned %d embeddings for %d inputs", len(resp.Data), len(batch))
		}
		for _, d := range resp.Data {
			if d.Index < 0 || d.Index >= len(batch) {
				return nil, fmt.Errorf("openai returned out-of-range index %d", d.Index)
			}
			out[start+d.Index] = d.Embedding
		}
	}
	return out, nil
}

func (o *OpenAI) probe(ctx context.Context) error {
	if err := getStatus(ctx, o.client, o.baseURL+"/models", o.headers(), o.w); err != nil {
		return fmt.Errorf("openai endpoint not reachable: %w", err)
	}
	return nil
}
