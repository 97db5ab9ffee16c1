// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package embed provides HTTP clients that turn text into dense vectors
// for the embedding index. Two providers are supported: a local Ollama
// server and any OpenAI-compatible /embeddings endpoint.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/kgraph/internal/httputil"
	"github.com/pdiddy/kgraph/internal/index"
	"github.com/pdiddy/kgraph/pkg/types"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 3
	// errorBodyLimit bounds how much of a failed response is quoted in errors.
	errorBodyLimit = 512
)

// New returns the encoder selected by cfg, or nil when the provider is
// disabled, misconfigured, or does not answer its probe. The probe runs
// once here; callers treat a nil encoder as "no embedding capability".
func New(ctx context.Context, cfg types.EmbeddingConfig, w io.Writer) index.Encoder {
	if w == nil {
		w = io.Discard
	}

	var (
		enc interface {
			index.Encoder
			probe(ctx context.Context) error
		}
		err error
	)
	switch cfg.Provider {
	case "", types.EmbeddingNone:
		return nil
	case types.EmbeddingOllama:
		enc = NewOllama(cfg, w)
	case types.EmbeddingOpenAI:
		enc, err = NewOpenAI(cfg, w)
	default:
		err = fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	if err == nil {
		err = enc.probe(ctx)
	}
	if err != nil {
		fmt.Fprintf(w, "warning: embeddings disabled: %v\n", err)
		return nil
	}
	return enc
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultTimeout
	}
	return d
}

// postJSON sends payload to url and decodes a 2xx JSON response into out.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload, out any, w io.Writer) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return do(ctx, client, req, out, w)
}

// getStatus issues a GET and fails unless the server answers 2xx.
func getStatus(ctx context.Context, client *http.Client, url string, headers map[string]string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return do(ctx, client, req, nil, w)
}

func do(ctx context.Context, client *http.Client, req *http.Request, out any, w io.Writer) error {
	resp, err := httputil.DoWithRetry(ctx, client, req, maxRetries, w)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Redacted(), resp.Status, bytes.TrimSpace(snippet))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Redacted(), err)
	}
	return nil
}
