package embedder

import (
	"context"
	"errors"
	"os"
)

// Common errors
var (
	ErrMissingAPIKey  = errors.New("missing API key")
	ErrProviderFailed = errors.New("embedding provider failed")
)

// Environment variables consulted when Config fields are empty
const (
	EnvAPIKey  = "OPENAI_API_KEY"
	EnvAPIBase = "OPENAI_API_BASE"
)

const (
	// DefaultModel is the embedding model used when none is configured.
	DefaultModel = "text-embedding-3-small"

	// Dimension is the vector width produced by the default model and
	// expected by the vector store.
	Dimension = 1536

	// ConcurrentRequests bounds in-flight embedding calls per batch.
	ConcurrentRequests = 10

	// DefaultCacheSize is the in-memory LRU capacity in vectors.
	DefaultCacheSize = 10000
)

// Embedder generates one embedding vector per text.
type Embedder interface {
	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the model name requests are issued with.
	Model() string

	// Dimension returns the vector width this embedder produces.
	Dimension() int
}

// Config holds provider configuration. Empty fields fall back to
// environment variables and package defaults.
type Config struct {
	Model   string
	APIKey  string
	APIBase string
}

// withEnvDefaults fills empty fields from the environment and applies the
// default model. It never validates; a missing key only matters once a
// provider is actually constructed.
func (c Config) withEnvDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv(EnvAPIKey)
	}
	if c.APIBase == "" {
		c.APIBase = os.Getenv(EnvAPIBase)
	}
	return c
}
