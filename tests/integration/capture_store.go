package integration

import (
	"context"
	"sync"

	"github.com/Svring/galatea-sub000/pkg/types"
)

// CaptureStore records upserted entities in memory instead of talking to
// a live Qdrant instance.
type CaptureStore struct {
	mu          sync.Mutex
	collections []string
	entities    []types.Entity
}

// NewCaptureStore creates an empty capture store.
func NewCaptureStore() *CaptureStore {
	return &CaptureStore{}
}

// EnsureCollection records the collection name.
func (c *CaptureStore) EnsureCollection(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.collections = append(c.collections, name)
	return nil
}

// Upsert stores every embedded entity and returns the count, mirroring
// how the real store skips entities without embeddings.
func (c *CaptureStore) Upsert(ctx context.Context, collection string, entities []types.Entity) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for i := range entities {
		if entities[i].HasEmbedding() {
			c.entities = append(c.entities, entities[i].Clone())
			count++
		}
	}
	return count, nil
}

// Collections returns the ensured collection names.
func (c *CaptureStore) Collections() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.collections...)
}

// Entities returns a copy of everything upserted so far.
func (c *CaptureStore) Entities() []types.Entity {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]types.Entity, 0, len(c.entities))
	for i := range c.entities {
		out = append(out, c.entities[i].Clone())
	}
	return out
}
