package store

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// Document is one stored JSON document.
type Document struct {
	ID   string
	Data []byte
}

// Backend is a key-value document store grouped into collections.
type Backend interface {
	// Name identifies the backend in logs and results.
	Name() string

	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) ([]byte, error)

	// List returns every document of a collection ordered by ID. An unknown
	// collection is empty, not an error.
	List(ctx context.Context, collection string) ([]Document, error)

	// Put inserts or replaces documents atomically.
	Put(ctx context.Context, collection string, docs ...Document) error
}

func (s *Store) Name() string { return "sqlite" }

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = ? AND id = ?`, collection, id,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(data), nil
}

func (s *Store) List(ctx context.Context, collection string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Data: []byte(data)})
	}
	return docs, rows.Err()
}

func (s *Store) Put(ctx context.Context, collection string, docs ...Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO documents (collection, id, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.ExecContext(ctx, collection, d.ID, string(d.Data)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
