package newsthreads

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// EmbeddingStore caches document embeddings in SQLite, keyed by document ID
// and embedding model.
type EmbeddingStore struct {
	db *sql.DB
}

// OpenEmbeddingStore opens (and creates if needed) the embedding cache at path.
func OpenEmbeddingStore(path string) (*EmbeddingStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS embeddings (
		doc_id TEXT NOT NULL,
		model TEXT NOT NULL,
		language TEXT NOT NULL,
		site_name TEXT NOT NULL,
		embedding_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (doc_id, model)
	);
	CREATE INDEX IF NOT EXISTS idx_language ON embeddings(language);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create embeddings table: %w", err)
	}

	return &EmbeddingStore{db: db}, nil
}

// Close closes the underlying database.
func (s *EmbeddingStore) Close() error {
	return s.db.Close()
}

// Get returns the cached embedding of docID for model. The boolean is false
// when nothing is cached.
func (s *EmbeddingStore) Get(ctx context.Context, docID, model string) ([]float32, bool, error) {
	var embeddingJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT embedding_json FROM embeddings WHERE doc_id = ? AND model = ?",
		docID, model).Scan(&embeddingJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query embedding for %s: %w", docID, err)
	}

	var embedding []float32
	if err := json.Unmarshal([]byte(embeddingJSON), &embedding); err != nil {
		return nil, false, fmt.Errorf("failed to parse embedding for %s: %w", docID, err)
	}
	return embedding, true, nil
}

// Put stores the embedding of doc for model, replacing any previous value.
func (s *EmbeddingStore) Put(ctx context.Context, doc Document, model string, embedding []float32) error {
	embeddingJSON, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	insertSQL := `
	INSERT OR REPLACE INTO embeddings (doc_id, model, language, site_name, embedding_json)
	VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, insertSQL, doc.ID, model, doc.Language, doc.SiteName, string(embeddingJSON)); err != nil {
		return fmt.Errorf("failed to insert embedding: %w", err)
	}
	return nil
}

// Count returns the number of cached embeddings for model.
func (s *EmbeddingStore) Count(ctx context.Context, model string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings WHERE model = ?", model).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
