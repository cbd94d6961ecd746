package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ComputeHash keys a cache entry by model and snippet text, so switching
// models never serves stale vectors.
func ComputeHash(model, text string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// CacheStore is an optional persistent layer behind the in-memory cache.
type CacheStore interface {
	// Get returns the vector for hash, reporting whether it was found.
	Get(ctx context.Context, hash string) ([]float32, bool, error)

	// Put stores the vector under hash.
	Put(ctx context.Context, hash, model string, vector []float32) error
}

// Cache is an LRU of embedding vectors keyed by content hash, optionally
// backed by a persistent store. Store failures degrade to cache misses with
// a warning; they never fail the embedding pass.
type Cache struct {
	mem    *lru.Cache[string, []float32]
	store  CacheStore
	logger *slog.Logger
}

// NewCache creates a cache with LRU eviction. store may be nil.
func NewCache(maxLen int, store CacheStore, logger *slog.Logger) *Cache {
	if maxLen <= 0 {
		maxLen = DefaultCacheSize
	}
	mem, err := lru.New[string, []float32](maxLen)
	if err != nil {
		// Only possible with a non-positive size, which is guarded above.
		mem, _ = lru.New[string, []float32](DefaultCacheSize)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{mem: mem, store: store, logger: logger}
}

// Get retrieves a copy of the vector for hash, consulting memory first and
// the persistent store second. Copies prevent caller mutations from
// reaching cached values.
func (c *Cache) Get(ctx context.Context, hash string) ([]float32, bool) {
	if vec, ok := c.mem.Get(hash); ok {
		return copyVector(vec), true
	}
	if c.store == nil {
		return nil, false
	}

	vec, ok, err := c.store.Get(ctx, hash)
	if err != nil {
		c.logger.Warn("embedding cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	c.mem.Add(hash, vec)
	return copyVector(vec), true
}

// Put stores the vector in memory and, when configured, the persistent
// store.
func (c *Cache) Put(ctx context.Context, hash, model string, vector []float32) {
	c.mem.Add(hash, vector)
	if c.store == nil {
		return
	}
	if err := c.store.Put(ctx, hash, model, vector); err != nil {
		c.logger.Warn("embedding cache write failed", "error", err)
	}
}

// Len returns the number of vectors held in memory.
func (c *Cache) Len() int {
	return c.mem.Len()
}

// Purge empties the in-memory cache. The persistent store is untouched.
func (c *Cache) Purge() {
	c.mem.Purge()
}

func copyVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
