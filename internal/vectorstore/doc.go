// Package vectorstore persists embedded entities in Qdrant and retrieves
// them by vector similarity.
//
// # Basic Usage
//
//	store, err := vectorstore.NewStore("localhost:6334", logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.EnsureCollection(ctx, "code_index"); err != nil {
//	    log.Fatal(err)
//	}
//	written, err := store.Upsert(ctx, "code_index", entities)
//
//	matches, err := store.Search(ctx, "code_index", queryVector, 10)
//
// # Storage Model
//
// Each embedded entity becomes one point: a random UUID, the embedding
// vector, and a payload mirroring the entity's JSON form (minus the
// vector itself). Collections are created with 1536-dimension cosine
// distance, matching the embedder's output. Every upsert writes new
// points; rebuilding an index into the same collection should start from
// a fresh collection.
package vectorstore
