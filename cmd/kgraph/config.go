// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/kgraph/internal/convert"
	"github.com/pdiddy/kgraph/internal/embed"
	"github.com/pdiddy/kgraph/internal/fuzzy"
	"github.com/pdiddy/kgraph/internal/knowledge"
	"github.com/pdiddy/kgraph/internal/secrets"
	"github.com/pdiddy/kgraph/pkg/types"
)

const (
	defaultKnowledgeDir = "knowledge"
	defaultBackend      = types.BackendNative
)

// Viper keys. Nested keys map to KGRAPH_EMBEDDING_PROVIDER and so on.
const (
	keyKnowledgeDir = "knowledge_dir"
	keyMaxResults   = "max_results"
	keyMaxFileBytes = "max_file_bytes"
	keyFuzzy        = "fuzzy"
	keyQuiet        = "quiet"
	keyBackend      = "extraction.backend"
	keyRuntime      = "extraction.runtime"
	keyProvider     = "embedding.provider"
	keyBaseURL      = "embedding.base_url"
	keyModel        = "embedding.model"
	keyAPIKey       = "embedding.api_key"
	keyTimeout      = "embedding.timeout"
)

func setDefaults() {
	viper.SetDefault(keyKnowledgeDir, defaultKnowledgeDir)
	viper.SetDefault(keyMaxResults, 10)
	viper.SetDefault(keyMaxFileBytes, 5_000_000)
	viper.SetDefault(keyFuzzy, true)
	viper.SetDefault(keyBackend, string(defaultBackend))
	viper.SetDefault(keyProvider, string(types.EmbeddingNone))
	viper.SetDefault(keyTimeout, 30*time.Second)
}

// loadConfig assembles the knowledge base configuration from flags,
// environment, and config file in viper's precedence order. Secrets only
// fill values left empty.
func loadConfig() types.KnowledgeBaseConfig {
	return types.KnowledgeBaseConfig{
		KnowledgeDir: viper.GetString(keyKnowledgeDir),
		MaxResults:   viper.GetInt(keyMaxResults),
		MaxFileBytes: viper.GetInt64(keyMaxFileBytes),
		Fuzzy:        viper.GetBool(keyFuzzy),
		Extraction: types.ExtractionConfig{
			Backend: types.ConversionBackend(viper.GetString(keyBackend)),
			Runtime: viper.GetString(keyRuntime),
		},
		Embedding: types.EmbeddingConfig{
			Provider: types.EmbeddingProvider(viper.GetString(keyProvider)),
			BaseURL:  viper.GetString(keyBaseURL),
			Model:    viper.GetString(keyModel),
			APIKey:   secretDefault(secrets.KeyOpenAI, viper.GetString(keyAPIKey)),
			Timeout:  viper.GetDuration(keyTimeout),
		},
	}
}

func quiet() bool { return viper.GetBool(keyQuiet) }

// progress returns the writer for progress and warning lines.
func progress() io.Writer {
	if quiet() {
		return io.Discard
	}
	return os.Stdout
}

// openBase builds a knowledge base and restores the last snapshot.
func openBase(cmd *cobra.Command) *knowledge.Base {
	b := newBase(cmd)
	b.Load()
	return b
}

// newBase builds an empty knowledge base with the configured collaborators.
func newBase(cmd *cobra.Command) *knowledge.Base {
	cfg := loadConfig()
	w := progress()

	opts := knowledge.Options{
		Output:    w,
		Extractor: convert.New(cfg.Extraction, w),
		Encoder:   embed.New(cmd.Context(), cfg.Embedding, w),
	}
	if cfg.Fuzzy {
		opts.Matcher = fuzzy.New()
	}

	return knowledge.NewBase(cfg, opts)
}

// commit refreshes indexes, graph, and quality scores, then saves.
func commit(cmd *cobra.Command, b *knowledge.Base) error {
	b.Reindex(cmd.Context())
	return b.Save()
}
