package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrCorruptVector is returned when a stored blob cannot be decoded.
	ErrCorruptVector = errors.New("corrupt vector blob")
)

// SQLiteStore persists embedding vectors keyed by content hash. It backs
// the in-memory cache in internal/embedder so repeated indexing runs skip
// paid API calls.
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore opens or creates the cache database at dbPath and applies
// pending migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get returns the vector stored under hash, reporting whether it exists.
func (s *SQLiteStore) Get(ctx context.Context, hash string) ([]float32, bool, error) {
	var blob []byte
	var dimension int
	err := s.db.QueryRowContext(ctx,
		"SELECT vector, dimension FROM embeddings WHERE hash = ?", hash,
	).Scan(&blob, &dimension)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading embedding %s: %w", hash, err)
	}

	if len(blob)%4 != 0 {
		return nil, false, fmt.Errorf("%w: %d bytes for hash %s", ErrCorruptVector, len(blob), hash)
	}
	vector := deserializeVector(blob)
	if len(vector) != dimension {
		return nil, false, fmt.Errorf("%w: dimension %d but %d floats for hash %s",
			ErrCorruptVector, dimension, len(vector), hash)
	}
	return vector, true, nil
}

// Put stores or replaces the vector under hash.
func (s *SQLiteStore) Put(ctx context.Context, hash, model string, vector []float32) error {
	query := `
		INSERT INTO embeddings (hash, model, dimension, vector)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(hash) DO UPDATE SET
			model = excluded.model,
			dimension = excluded.dimension,
			vector = excluded.vector
	`
	if _, err := s.db.ExecContext(ctx, query, hash, model, len(vector), serializeVector(vector)); err != nil {
		return fmt.Errorf("storing embedding %s: %w", hash, err)
	}
	return nil
}

// Count returns the number of cached vectors.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting embeddings: %w", err)
	}
	return count, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
