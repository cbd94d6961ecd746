package embedder

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Svring/galatea-sub000/pkg/types"
)

// Statistics summarizes one embedding pass.
type Statistics struct {
	Requested     int      // Entities that needed an embedding
	Embedded      int      // Vectors obtained from the provider
	CacheHits     int      // Vectors served from cache
	Failed        int      // Entities left without an embedding
	ErrorMessages []string // One message per failure
}

// Generator fills in missing entity embeddings. The provider is built
// lazily: a batch with nothing to embed never touches credentials.
type Generator struct {
	cfg      Config
	provider Embedder
	cache    *Cache
	retry    RetryConfig
	logger   *slog.Logger
}

// NewGenerator returns a Generator that constructs an OpenAI provider from
// cfg on first use. store may be nil to run without a persistent cache.
func NewGenerator(cfg Config, store CacheStore, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		cfg:    cfg.withEnvDefaults(),
		cache:  NewCache(DefaultCacheSize, store, logger),
		retry:  DefaultRetryConfig(),
		logger: logger,
	}
}

// NewGeneratorWithProvider returns a Generator using the given provider
// directly. Used by tests and offline verification.
func NewGeneratorWithProvider(provider Embedder, store CacheStore, logger *slog.Logger) *Generator {
	g := NewGenerator(Config{Model: provider.Model()}, store, logger)
	g.provider = provider
	return g
}

func (g *Generator) model() string {
	if g.provider != nil {
		return g.provider.Model()
	}
	return g.cfg.Model
}

func (g *Generator) ensureProvider() error {
	if g.provider != nil {
		return nil
	}
	provider, err := NewOpenAIProvider(g.cfg)
	if err != nil {
		return err
	}
	g.provider = provider
	return nil
}

// EmbedText computes the embedding for a single piece of text, sharing the
// batch path's cache and retry policy. Used for query embedding.
func (g *Generator) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is empty", ErrProviderFailed)
	}

	hash := ComputeHash(g.model(), text)
	if vec, ok := g.cache.Get(ctx, hash); ok {
		return vec, nil
	}

	if err := g.ensureProvider(); err != nil {
		return nil, err
	}

	vec, err := retryWithBackoff(ctx, g.retry, IsTransient, func() ([]float32, error) {
		return g.provider.Embed(ctx, text)
	})
	if err != nil {
		return nil, err
	}

	g.cache.Put(ctx, hash, g.model(), vec)
	return vec, nil
}

// Generate fills the Embedding field of every entity that lacks one and
// has a non-blank snippet, writing results back by index. Individual
// failures are logged and counted; the batch keeps going. The returned
// statistics are valid even when an error is returned.
func (g *Generator) Generate(ctx context.Context, entities []types.Entity) (*Statistics, error) {
	stats := &Statistics{}

	var needs []int
	for i := range entities {
		if entities[i].HasEmbedding() {
			continue
		}
		if strings.TrimSpace(entities[i].Context.Snippet) == "" {
			continue
		}
		needs = append(needs, i)
	}
	stats.Requested = len(needs)
	if len(needs) == 0 {
		g.logger.Info("no entities require embedding generation")
		return stats, nil
	}

	model := g.model()
	var pending []int
	for _, idx := range needs {
		hash := ComputeHash(model, entities[idx].Context.Snippet)
		if vec, ok := g.cache.Get(ctx, hash); ok {
			entities[idx].Embedding = vec
			stats.CacheHits++
			continue
		}
		pending = append(pending, idx)
	}
	if len(pending) == 0 {
		g.logger.Info("all embeddings served from cache", "count", stats.CacheHits)
		return stats, nil
	}

	if err := g.ensureProvider(); err != nil {
		return stats, err
	}

	g.logger.Info("generating embeddings",
		"count", len(pending),
		"model", model,
		"concurrency", ConcurrentRequests)

	results := make([][]float32, len(pending))
	failures := make([]error, len(pending))

	var eg errgroup.Group
	eg.SetLimit(ConcurrentRequests)
	for slot, idx := range pending {
		text := entities[idx].Context.Snippet
		eg.Go(func() error {
			vec, err := retryWithBackoff(ctx, g.retry, IsTransient, func() ([]float32, error) {
				return g.provider.Embed(ctx, text)
			})
			if err != nil {
				failures[slot] = err
				return nil
			}
			results[slot] = vec
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	for slot, idx := range pending {
		if vec := results[slot]; vec != nil {
			entities[idx].Embedding = vec
			stats.Embedded++
			g.cache.Put(ctx, ComputeHash(model, entities[idx].Context.Snippet), model, vec)
			continue
		}
		stats.Failed++
		g.logger.Warn("embedding generation failed",
			"entity", entities[idx].Name,
			"error", failures[slot])
		stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", entities[idx].Name, failures[slot]))
	}

	g.logger.Info("finished generating embeddings",
		"embedded", stats.Embedded,
		"cache_hits", stats.CacheHits,
		"failed", stats.Failed)
	return stats, nil
}

// GenerateFile reads an entity JSON file, fills in missing embeddings, and
// writes the enriched list to outputPath. An empty input logs a notice and
// writes nothing.
func (g *Generator) GenerateFile(ctx context.Context, inputPath, outputPath string) (*Statistics, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", inputPath, err)
	}

	var entities []types.Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("decoding entities from %s: %w", inputPath, err)
	}
	if len(entities) == 0 {
		g.logger.Info("no entities found in input file", "path", inputPath)
		return &Statistics{}, nil
	}

	stats, err := g.Generate(ctx, entities)
	if err != nil {
		return stats, err
	}

	out, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return stats, fmt.Errorf("encoding entities: %w", err)
	}
	if err := os.WriteFile(outputPath, out, 0o644); err != nil {
		return stats, fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return stats, nil
}
