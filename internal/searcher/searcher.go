package searcher

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Svring/galatea-sub000/pkg/types"
)

var (
	ErrEmptyQuery      = errors.New("query cannot be empty")
	ErrEmptyCollection = errors.New("collection name cannot be empty")
)

const (
	// DefaultLimit is the result count used when the request leaves it unset
	DefaultLimit = 10

	// MaxLimit caps the result count of a single query
	MaxLimit = 100

	// DefaultCacheTTL is how long cached responses stay valid
	DefaultCacheTTL = 1 * time.Hour

	// cacheSize bounds the number of cached responses
	cacheSize = 1000
)

// QueryEmbedder turns query text into a vector. Satisfied by
// *embedder.Generator.
type QueryEmbedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher returns the entities nearest a query vector. Satisfied by
// *vectorstore.Store.
type VectorSearcher interface {
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]types.Entity, error)
}

// QueryRequest contains parameters for one semantic query
type QueryRequest struct {
	Query      string
	Collection string
	Limit      int
	UseCache   bool // Whether to use the query cache
	CacheTTL   time.Duration
}

// QueryResponse contains query results and metadata
type QueryResponse struct {
	Results      []types.Entity
	TotalResults int
	Duration     time.Duration
	CacheHit     bool
}

// cacheEntry represents a cached query response with expiration time
type cacheEntry struct {
	response  *QueryResponse
	expiresAt time.Time
}

// Searcher answers semantic queries against an indexed collection.
type Searcher struct {
	embedder QueryEmbedder
	store    VectorSearcher
	cache    *lru.Cache[[32]byte, *cacheEntry]
	cacheMu  sync.RWMutex
	logger   *slog.Logger
}

// NewSearcher creates a new Searcher instance
func NewSearcher(embedder QueryEmbedder, store VectorSearcher, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}

	// Cache automatically evicts least recently used entries
	cache, err := lru.New[[32]byte, *cacheEntry](cacheSize)
	if err != nil {
		// This should never happen with a valid size parameter
		panic(fmt.Sprintf("failed to create LRU cache: %v", err))
	}

	return &Searcher{
		embedder: embedder,
		store:    store,
		cache:    cache,
		logger:   logger,
	}
}

// Query embeds the request text and returns the entities closest to it,
// best match first. A query against an empty collection returns an empty
// result list, not an error.
func (s *Searcher) Query(ctx context.Context, req QueryRequest) (*QueryResponse, error) {
	startTime := time.Now()

	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	if req.UseCache {
		if cached := s.checkCache(req); cached != nil {
			cached.CacheHit = true
			cached.Duration = time.Since(startTime)
			return cached, nil
		}
	}

	vector, err := s.embedder.EmbedText(ctx, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.store.Search(ctx, req.Collection, vector, req.Limit)
	if err != nil {
		return nil, err
	}

	response := &QueryResponse{
		Results:      results,
		TotalResults: len(results),
		Duration:     time.Since(startTime),
	}

	if req.UseCache && len(response.Results) > 0 {
		s.storeInCache(req, response)
	}

	return response, nil
}

// InvalidateCache drops every cached response. Called after reindexing.
func (s *Searcher) InvalidateCache() {
	s.cacheMu.Lock()
	s.cache.Purge()
	s.cacheMu.Unlock()
}

// validateRequest ensures the query request is valid, filling defaults
func (s *Searcher) validateRequest(req *QueryRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return ErrEmptyQuery
	}

	if req.Collection == "" {
		return ErrEmptyCollection
	}

	if req.Limit <= 0 {
		req.Limit = DefaultLimit
	}

	if req.Limit > MaxLimit {
		req.Limit = MaxLimit
	}

	if req.CacheTTL == 0 {
		req.CacheTTL = DefaultCacheTTL
	}

	return nil
}

// checkCache returns a copy of the cached response, or nil on a miss
func (s *Searcher) checkCache(req QueryRequest) *QueryResponse {
	hash := computeQueryHash(req)
	now := time.Now()

	s.cacheMu.RLock()
	entry, found := s.cache.Get(hash)

	if !found {
		s.cacheMu.RUnlock()
		return nil
	}

	// Check expiry while holding the read lock to avoid a race with Purge
	if now.After(entry.expiresAt) {
		s.cacheMu.RUnlock()

		// Removing the expired entry needs the write lock
		s.cacheMu.Lock()
		s.cache.Remove(hash)
		s.cacheMu.Unlock()
		return nil
	}

	// Copy while still holding the read lock so the entry cannot change
	// mid-copy
	response := copyQueryResponse(entry.response)
	s.cacheMu.RUnlock()

	return response
}

// storeInCache saves a query response to the cache
func (s *Searcher) storeInCache(req QueryRequest, response *QueryResponse) {
	hash := computeQueryHash(req)
	expiresAt := time.Now().Add(req.CacheTTL)

	// Deep copy so later mutation of the returned response cannot leak in
	entry := &cacheEntry{
		response:  copyQueryResponse(response),
		expiresAt: expiresAt,
	}

	s.cacheMu.Lock()
	s.cache.Add(hash, entry)
	s.cacheMu.Unlock()
}

// copyQueryResponse creates a deep copy of a QueryResponse
func copyQueryResponse(src *QueryResponse) *QueryResponse {
	if src == nil {
		return nil
	}

	dst := &QueryResponse{
		TotalResults: src.TotalResults,
		Duration:     src.Duration,
		CacheHit:     src.CacheHit,
		Results:      make([]types.Entity, len(src.Results)),
	}
	for i := range src.Results {
		dst.Results[i] = src.Results[i].Clone()
	}

	return dst
}

// computeQueryHash computes a unique hash for a query request
func computeQueryHash(req QueryRequest) [32]byte {
	var data strings.Builder
	data.WriteString(req.Query)
	data.WriteString("|")
	data.WriteString(req.Collection)
	data.WriteString("|")
	data.WriteString(strconv.Itoa(req.Limit))

	return sha256.Sum256([]byte(data.String()))
}
