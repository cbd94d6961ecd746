// Package storage provides a persistent SQLite-backed cache for embedding
// vectors, keyed by the model-scoped content hash produced by the embedder
// package.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStore("/path/to/embeddings.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	if err := store.Put(ctx, hash, "text-embedding-3-small", vector); err != nil {
//	    log.Fatal(err)
//	}
//
//	vector, found, err := store.Get(ctx, hash)
//
// # Build Modes
//
// Two SQLite drivers are supported, selected by build tags:
//
//   - Default (or -tags purego): modernc.org/sqlite, a pure-Go driver that
//     needs no CGO toolchain.
//   - -tags cgosqlite: github.com/mattn/go-sqlite3, the CGO driver.
//
// Both modes share the same schema and on-disk format, so databases are
// interchangeable between builds.
//
// # Schema Migrations
//
// The schema is versioned with semver and migrated automatically when a
// store is opened. Vectors are stored as little-endian float32 BLOBs with
// the dimension recorded alongside; rows that fail to decode are reported
// as ErrCorruptVector rather than returned as bogus cache hits.
package storage
