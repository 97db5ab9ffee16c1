package types

import "time"

// ConversionBackend identifies the tool used to turn office and PDF files
// into plain text.
type ConversionBackend string

const (
	// BackendNative reads .docx directly and shells out to pdftotext for PDFs.
	BackendNative ConversionBackend = "native"
	// BackendMarkitdown pipes files through the markitdown container image.
	BackendMarkitdown ConversionBackend = "markitdown"
)

// ExtractionConfig holds settings for the text-extraction collaborator.
type ExtractionConfig struct {
	// Backend selects the converter: native or markitdown.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// Runtime pins the container runtime for markitdown ("docker" or
	// "podman"). Empty tries docker, then podman.
	Runtime string `json:"runtime,omitempty" yaml:"runtime,omitempty"`
}

// EmbeddingProvider names the service that produces dense vectors.
type EmbeddingProvider string

const (
	EmbeddingNone   EmbeddingProvider = "none"
	EmbeddingOllama EmbeddingProvider = "ollama"
	EmbeddingOpenAI EmbeddingProvider = "openai"
)

// EmbeddingConfig holds settings for the optional embedding collaborator.
type EmbeddingConfig struct {
	// Provider selects the backend. Empty or "none" disables the embedding index.
	Provider EmbeddingProvider `json:"provider" yaml:"provider"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the embedding model identifier (e.g. "nomic-embed-text").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against OpenAI-compatible endpoints.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds each HTTP request (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// KnowledgeBaseConfig holds settings for the knowledge base.
type KnowledgeBaseConfig struct {
	// KnowledgeDir is the base directory for knowledge (contains index/).
	KnowledgeDir string `json:"knowledge_dir" yaml:"knowledge_dir"`

	// MaxResults is the default search limit (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MaxFileBytes skips larger files during tree ingestion (default 5 MB).
	MaxFileBytes int64 `json:"max_file_bytes" yaml:"max_file_bytes"`

	// Fuzzy enables the fuzzy matcher for fallback scoring.
	Fuzzy bool `json:"fuzzy" yaml:"fuzzy"`

	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Embedding  EmbeddingConfig  `json:"embedding" yaml:"embedding"`
}
