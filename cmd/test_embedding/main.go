package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Svring/galatea-sub000/internal/embedder"
	"github.com/Svring/galatea-sub000/internal/pipeline"
	"github.com/Svring/galatea-sub000/internal/storage"
	"github.com/Svring/galatea-sub000/pkg/types"
)

// MockEmbedder provides a deterministic embedder for offline testing
type MockEmbedder struct {
	dimension int
	calls     int
}

func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls++
	vector := make([]float32, m.dimension)
	for i := range vector {
		vector[i] = 0.1 * float32(i%7)
	}
	return vector, nil
}

func (m *MockEmbedder) Model() string  { return "mock-v1" }
func (m *MockEmbedder) Dimension() int { return m.dimension }

// captureStore records upserted entities instead of talking to Qdrant
type captureStore struct {
	collections []string
	entities    []types.Entity
}

func (c *captureStore) EnsureCollection(ctx context.Context, name string) error {
	c.collections = append(c.collections, name)
	return nil
}

func (c *captureStore) Upsert(ctx context.Context, collection string, entities []types.Entity) (int, error) {
	count := 0
	for _, e := range entities {
		if e.HasEmbedding() {
			c.entities = append(c.entities, e)
			count++
		}
	}
	return count, nil
}

func main() {
	fmt.Println("Testing embedding integration...")

	// Create temp directory for test
	tmpDir, err := os.MkdirTemp("", "codescout-test-*")
	if err != nil {
		log.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create a simple test Rust file
	testFile := filepath.Join(tmpDir, "lib.rs")
	testCode := `/// Adds two numbers.
pub fn add(a: i32, b: i32) -> i32 {
    a + b
}

/// A point in 2D space.
pub struct Point {
    pub x: f64,
    pub y: f64,
}
`
	if err := os.WriteFile(testFile, []byte(testCode), 0644); err != nil {
		log.Fatalf("Failed to write test file: %v", err)
	}

	// Persistent embedding cache backed by SQLite
	cache, err := storage.NewSQLiteStore(filepath.Join(tmpDir, "cache.db"))
	if err != nil {
		log.Fatalf("Failed to create cache: %v", err)
	}
	defer cache.Close()

	mockEmb := NewMockEmbedder(1536)
	gen := embedder.NewGeneratorWithProvider(mockEmb, cache, nil)
	store := &captureStore{}
	pipe := pipeline.New(gen, store, nil)

	opts := pipeline.Options{
		Root:       tmpDir,
		Extensions: []string{"rs"},
	}

	ctx := context.Background()
	stats, err := pipe.BuildIndex(ctx, opts, "test_index")
	if err != nil {
		log.Fatalf("Failed to build index: %v", err)
	}

	// Print statistics
	fmt.Printf("\nIndexing Statistics:\n")
	fmt.Printf("  Files Found: %d\n", stats.FilesFound)
	fmt.Printf("  Files Parsed: %d\n", stats.FilesParsed)
	fmt.Printf("  Files Failed: %d\n", stats.FilesFailed)
	fmt.Printf("  Entities Extracted: %d\n", stats.EntitiesExtracted)
	fmt.Printf("  Embeddings Created: %d\n", stats.EmbeddingsCreated)
	fmt.Printf("  Embeddings Cached: %d\n", stats.EmbeddingsCached)
	fmt.Printf("  Embeddings Failed: %d\n", stats.EmbeddingsFailed)
	fmt.Printf("  Points Upserted: %d\n", stats.PointsUpserted)
	fmt.Printf("  Duration: %v\n", stats.Duration)

	if len(stats.ErrorMessages) > 0 {
		fmt.Printf("\nErrors:\n")
		for _, msg := range stats.ErrorMessages {
			fmt.Printf("  - %s\n", msg)
		}
	}

	cached, err := cache.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count cached embeddings: %v", err)
	}
	firstRunCalls := mockEmb.calls

	// A second run over the same tree must be served from the cache
	stats2, err := pipe.BuildIndex(ctx, opts, "test_index")
	if err != nil {
		log.Fatalf("Failed to rebuild index: %v", err)
	}

	fmt.Printf("\nVerification:\n")
	fmt.Printf("  Points upserted: %d\n", len(store.entities))
	fmt.Printf("  Embeddings in cache: %d\n", cached)
	fmt.Printf("  Provider calls, first run: %d\n", firstRunCalls)
	fmt.Printf("  Provider calls, second run: %d\n", mockEmb.calls-firstRunCalls)
	fmt.Printf("  Cache hits, second run: %d\n", stats2.EmbeddingsCached)

	switch {
	case len(store.entities) == 0:
		fmt.Println("\n✗ FAILURE: No embeddings were upserted!")
		os.Exit(1)
	case cached == 0:
		fmt.Println("\n✗ FAILURE: Nothing was written to the embedding cache!")
		os.Exit(1)
	case mockEmb.calls != firstRunCalls:
		fmt.Println("\n✗ FAILURE: Second run hit the provider instead of the cache!")
		os.Exit(1)
	default:
		fmt.Println("\n✓ SUCCESS: Embeddings were generated, cached and upserted!")
	}
}
