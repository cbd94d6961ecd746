// Package embedder generates vector embeddings for extracted code entities.
//
// The Generator is the main entry point: it scans an entity slice for
// missing embeddings, serves what it can from cache, and fans the rest out
// to the OpenAI embeddings API with bounded concurrency.
//
// # Basic Usage
//
//	g := embedder.NewGenerator(embedder.Config{}, nil, logger)
//
//	stats, err := g.Generate(ctx, entities)
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("embedded %d, cache hits %d, failed %d\n",
//	    stats.Embedded, stats.CacheHits, stats.Failed)
//
// Entities that already carry an embedding, or whose snippet is blank, are
// skipped. Results are written back into the slice by index, so input
// order is preserved regardless of completion order.
//
// # Configuration
//
// Config fields fall back to environment variables:
//
//	Config{
//	    Model:   "text-embedding-3-small", // default
//	    APIKey:  "...",                    // else OPENAI_API_KEY
//	    APIBase: "...",                    // else OPENAI_API_BASE
//	}
//
// The provider is constructed lazily. A batch with nothing left to embed
// succeeds without credentials; missing keys only fail once real API work
// exists.
//
// # Retry
//
// Each embedding call retries transient failures with exponential backoff:
// 500ms initial delay doubling up to 30s, within a total budget of about
// two minutes per call. Rate limits (HTTP 429 or code rate_limit_exceeded)
// and transport errors are transient; other API errors, such as invalid
// credentials, fail immediately. An entity whose retries are exhausted is
// logged and left without an embedding; the rest of the batch proceeds.
//
// # Caching
//
// Vectors are cached in an LRU keyed by a hash of model and snippet text,
// optionally backed by a persistent CacheStore (see internal/storage).
// Store failures degrade to cache misses with a warning.
package embedder
