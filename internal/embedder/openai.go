package embedder

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Embedder against the OpenAI embeddings API or
// any compatible endpoint reachable through a custom base URL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider builds a provider from cfg, falling back to the
// OPENAI_API_KEY and OPENAI_API_BASE environment variables.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	cfg = cfg.withEnvDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: set %s or pass an explicit key", ErrMissingAPIKey, EnvAPIKey)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIBase != "" {
		clientConfig.BaseURL = cfg.APIBase
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}, nil
}

// Embed requests a single embedding. Errors come back unwrapped so callers
// can classify them for retry.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", ErrProviderFailed)
	}
	return resp.Data[0].Embedding, nil
}

func (p *OpenAIProvider) Model() string {
	return p.model
}

func (p *OpenAIProvider) Dimension() int {
	return Dimension
}

// IsTransient classifies provider errors for retry. Rate limits are
// transient; transport failures and timeouts surface as non-API errors and
// are treated as transient too. Every other API error, such as invalid
// credentials, is permanent.
func IsTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return true
		}
		return fmt.Sprint(apiErr.Code) == "rate_limit_exceeded"
	}
	return true
}
