package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by PostgresSource.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Schema creates the documents table.
const Schema = `CREATE TABLE IF NOT EXISTS taxonomy_documents (
	name        text PRIMARY KEY,
	document    jsonb NOT NULL,
	updated_at  timestamptz NOT NULL DEFAULT now()
)`

const (
	listDocuments = `SELECT name FROM taxonomy_documents ORDER BY name`
	fetchDocument = `SELECT document FROM taxonomy_documents WHERE name = $1`
	putDocument   = `INSERT INTO taxonomy_documents (name, document, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`
	resetDocuments = `DELETE FROM taxonomy_documents`
)

// PostgresSource reads documents from the taxonomy_documents table.
type PostgresSource struct {
	db DBTX
}

// NewPostgresSource creates a source over db.
func NewPostgresSource(db DBTX) *PostgresSource {
	return &PostgresSource{db: db}
}

// EnsureSchema creates the documents table if it is missing.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create taxonomy_documents: %w", err)
	}
	return nil
}

// List returns every stored document name.
func (s *PostgresSource) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, listDocuments)
	if err != nil {
		return nil, fmt.Errorf("list taxonomy documents: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan taxonomy document name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list taxonomy documents: %w", err)
	}
	return names, nil
}

// Fetch returns the stored JSON for name.
func (s *PostgresSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(ctx, fetchDocument, name).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch taxonomy document %s: %w", name, err)
	}
	return data, nil
}

// Put stores or replaces a document. Running taxonomies are not affected
// until the next process start.
func (s *PostgresSource) Put(ctx context.Context, name string, document []byte) error {
	if name == "" {
		return errors.New("document name is required")
	}
	if _, err := s.db.Exec(ctx, putDocument, name, document, time.Now().UTC()); err != nil {
		return fmt.Errorf("store taxonomy document %s: %w", name, err)
	}
	return nil
}

// Reset deletes every stored document and returns how many were removed.
func (s *PostgresSource) Reset(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, resetDocuments)
	if err != nil {
		return 0, fmt.Errorf("reset taxonomy documents: %w", err)
	}
	return tag.RowsAffected(), nil
}
