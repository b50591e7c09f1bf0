// Package sqlitestore provides a SQLite-backed store.Store. Every document is
// one row of the documents table with its fields serialised as JSON; range
// queries are pushed down to the primary key index.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/goliatone/go-roster/pkg/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	key TEXT PRIMARY KEY,
	fields TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// Store implements store.Store on a single SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and migrates) the database at path. Use ":memory:" for a
// throwaway database; the pool is pinned to one connection so the in-memory
// database is shared by every call.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{`PRAGMA journal_mode=WAL`, `PRAGMA busy_timeout=5000`} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlitestore: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitestore: migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (store.Fields, bool, error) {
	if err := store.ValidateKey(key); err != nil {
		return nil, false, err
	}
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT fields FROM documents WHERE key = ?`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("sqlitestore: get %q: %w", key, err)
	}
	fields, err := decodeFields(raw)
	if err != nil {
		return nil, false, fmt.Errorf("sqlitestore: decode %q: %w", key, err)
	}
	return fields, true, nil
}

func (s *Store) Put(ctx context.Context, key string, fields store.Fields) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if fields == nil {
		fields = store.Fields{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("sqlitestore: encode %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (key, fields, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at`,
		key, string(raw), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlitestore: put %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := store.ValidateKey(key); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlitestore: delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, r store.Range) ([]store.Document, error) {
	query := `SELECT key, fields FROM documents WHERE 1 = 1`
	args := []any{}
	if r.From != "" {
		query += ` AND key >= ?`
		args = append(args, r.From)
	}
	if r.To != "" {
		query += ` AND key < ?`
		args = append(args, r.To)
	}
	query += ` ORDER BY key ASC`
	if r.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, r.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlitestore: query: %w", err)
	}
	defer rows.Close()

	var docs []store.Document
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("sqlitestore: scan: %w", err)
		}
		fields, err := decodeFields(raw)
		if err != nil {
			return nil, fmt.Errorf("sqlitestore: decode %q: %w", key, err)
		}
		docs = append(docs, store.Document{Key: key, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlitestore: query: %w", err)
	}
	return docs, nil
}

func decodeFields(raw string) (store.Fields, error) {
	var fields store.Fields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = store.Fields{}
	}
	return fields, nil
}
