package integration

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"sync/atomic"
)

// MockEmbedder provides a fake embedder for testing.
// It generates deterministic vectors based on text hash.
type MockEmbedder struct {
	dimension int
	calls     atomic.Int64
}

// NewMockEmbedder creates a new mock embedder
func NewMockEmbedder(dimension int) *MockEmbedder {
	return &MockEmbedder{dimension: dimension}
}

// Embed generates a deterministic unit vector from the text hash.
func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.calls.Add(1)

	hash := sha256.Sum256([]byte(text))
	vector := make([]float32, m.dimension)

	// Use hash bytes to generate pseudo-random but deterministic floats
	for i := 0; i < m.dimension; i++ {
		idx := (i * 4) % 32
		val := binary.BigEndian.Uint32(hash[idx : idx+4])
		// Normalize to [-1, 1]
		vector[i] = (float32(val)/float32(1<<32))*2 - 1
	}

	// Normalize to unit length
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum > 0 {
		magnitude := float32(1.0 / math.Sqrt(sum))
		for i := range vector {
			vector[i] *= magnitude
		}
	}

	return vector, nil
}

// Model returns the model name
func (m *MockEmbedder) Model() string { return "mock-v1" }

// Dimension returns the embedding dimension
func (m *MockEmbedder) Dimension() int { return m.dimension }

// Calls reports how many times the provider was invoked.
func (m *MockEmbedder) Calls() int { return int(m.calls.Load()) }
