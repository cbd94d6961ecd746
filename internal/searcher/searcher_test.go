package searcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Svring/galatea-sub000/pkg/types"
)

type stubEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (s *stubEmbedder) EmbedText(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

type stubStore struct {
	results       []types.Entity
	err           error
	calls         int
	gotCollection string
	gotLimit      int
}

func (s *stubStore) Search(_ context.Context, collection string, _ []float32, limit int) ([]types.Entity, error) {
	s.calls++
	s.gotCollection = collection
	s.gotLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func resultEntity(name string) types.Entity {
	return types.Entity{
		Name:      name,
		Signature: "fn " + name + "()",
		Kind:      types.KindFunction,
		Line:      1,
		LineFrom:  1,
		LineTo:    2,
		Context: types.Context{
			FilePath: "src/lib.rs",
			FileName: "lib.rs",
			Snippet:  "fn " + name + "() {}",
		},
	}
}

func newTestSearcher(embedder *stubEmbedder, store *stubStore) *Searcher {
	return NewSearcher(embedder, store, nil)
}

func TestQuery_EmbedsAndSearches(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2}}
	store := &stubStore{results: []types.Entity{resultEntity("greet"), resultEntity("parse")}}
	s := newTestSearcher(embedder, store)

	resp, err := s.Query(context.Background(), QueryRequest{
		Query:      "greeting function",
		Collection: "code_index",
		Limit:      5,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalResults)
	assert.Equal(t, "greet", resp.Results[0].Name)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, "code_index", store.gotCollection)
	assert.Equal(t, 5, store.gotLimit)
	assert.Equal(t, 1, embedder.calls)
}

func TestQuery_EmptyQueryRejected(t *testing.T) {
	s := newTestSearcher(&stubEmbedder{}, &stubStore{})

	for _, query := range []string{"", "   ", "\n\t"} {
		_, err := s.Query(context.Background(), QueryRequest{
			Query:      query,
			Collection: "code_index",
		})
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
}

func TestQuery_EmptyCollectionRejected(t *testing.T) {
	s := newTestSearcher(&stubEmbedder{}, &stubStore{})

	_, err := s.Query(context.Background(), QueryRequest{Query: "anything"})
	assert.ErrorIs(t, err, ErrEmptyCollection)
}

func TestQuery_LimitDefaults(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.5}}
	store := &stubStore{}
	s := newTestSearcher(embedder, store)

	_, err := s.Query(context.Background(), QueryRequest{
		Query:      "anything",
		Collection: "code_index",
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, store.gotLimit)

	_, err = s.Query(context.Background(), QueryRequest{
		Query:      "anything",
		Collection: "code_index",
		Limit:      10000,
	})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, store.gotLimit)
}

func TestQuery_EmptyCollectionGivesEmptyResults(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.5}}
	store := &stubStore{results: []types.Entity{}}
	s := newTestSearcher(embedder, store)

	resp, err := s.Query(context.Background(), QueryRequest{
		Query:      "anything at all",
		Collection: "empty_index",
	})

	require.NoError(t, err)
	assert.NotNil(t, resp.Results)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.TotalResults)
}

func TestQuery_EmbedderErrorPropagates(t *testing.T) {
	embedder := &stubEmbedder{err: errors.New("provider down")}
	store := &stubStore{}
	s := newTestSearcher(embedder, store)

	_, err := s.Query(context.Background(), QueryRequest{
		Query:      "anything",
		Collection: "code_index",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed query")
	assert.Equal(t, 0, store.calls)
}

func TestQuery_StoreErrorPropagates(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.5}}
	store := &stubStore{err: errors.New("connection refused")}
	s := newTestSearcher(embedder, store)

	_, err := s.Query(context.Background(), QueryRequest{
		Query:      "anything",
		Collection: "code_index",
	})
	assert.Error(t, err)
}

func TestQuery_CacheHit(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.5}}
	store := &stubStore{results: []types.Entity{resultEntity("greet")}}
	s := newTestSearcher(embedder, store)

	req := QueryRequest{
		Query:      "greeting function",
		Collection: "code_index",
		UseCache:   true,
	}

	first, err := s.Query(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := s.Query(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Results, second.Results)

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, 1, embedder.calls)
}

func TestQuery_CacheExpiry(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.5}}
	store := &stubStore{results: []types.Entity{resultEntity("greet")}}
	s := newTestSearcher(embedder, store)

	req := QueryRequest{
		Query:      "greeting function",
		Collection: "code_index",
		UseCache:   true,
		CacheTTL:   time.Nanosecond,
	}

	_, err := s.Query(context.Background(), req)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)

	resp, err := s.Query(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, 2, store.calls)
}

func TestQuery_CachedResponseIsIsolated(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.5}}
	store := &stubStore{results: []types.Entity{resultEntity("greet")}}
	s := newTestSearcher(embedder, store)

	req := QueryRequest{
		Query:      "greeting function",
		Collection: "code_index",
		UseCache:   true,
	}

	first, err := s.Query(context.Background(), req)
	require.NoError(t, err)

	// Callers mutating their copy must not poison the cache
	first.Results[0].Name = "mutated"

	second, err := s.Query(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "greet", second.Results[0].Name)
}

func TestQuery_EmptyResponsesNotCached(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.5}}
	store := &stubStore{results: []types.Entity{}}
	s := newTestSearcher(embedder, store)

	req := QueryRequest{
		Query:      "nothing matches",
		Collection: "code_index",
		UseCache:   true,
	}

	_, err := s.Query(context.Background(), req)
	require.NoError(t, err)
	_, err = s.Query(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, store.calls)
}

func TestInvalidateCache(t *testing.T) {
	embedder := &stubEmbedder{vector: []float32{0.5}}
	store := &stubStore{results: []types.Entity{resultEntity("greet")}}
	s := newTestSearcher(embedder, store)

	req := QueryRequest{
		Query:      "greeting function",
		Collection: "code_index",
		UseCache:   true,
	}

	_, err := s.Query(context.Background(), req)
	require.NoError(t, err)

	s.InvalidateCache()

	resp, err := s.Query(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, 2, store.calls)
}

func TestComputeQueryHash_Distinguishes(t *testing.T) {
	base := QueryRequest{Query: "q", Collection: "c", Limit: 10}

	differentQuery := base
	differentQuery.Query = "other"
	differentCollection := base
	differentCollection.Collection = "other"
	differentLimit := base
	differentLimit.Limit = 20

	baseHash := computeQueryHash(base)
	assert.NotEqual(t, baseHash, computeQueryHash(differentQuery))
	assert.NotEqual(t, baseHash, computeQueryHash(differentCollection))
	assert.NotEqual(t, baseHash, computeQueryHash(differentLimit))
	assert.Equal(t, baseHash, computeQueryHash(base))
}
