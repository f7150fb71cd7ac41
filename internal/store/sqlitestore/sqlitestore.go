// Package sqlitestore keeps records as JSON documents in a SQLite table.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/glebarez/go-sqlite"

	"github.com/idilsaglam/todonotes/internal/store"
)

// DefaultFileName is used when no path is configured.
const DefaultFileName = "todos.db"

const tableName = "todo"

var _ store.Backend = (*Store)(nil)

// Store is a store.Backend over a single SQLite table.
type Store struct {
	db      *sql.DB
	pending store.Changeset
}

// Open creates or opens the database at path and ensures the table exists.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultFileName
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s, err := NewStoreWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewStoreWithDB configures db and ensures the table exists.
func NewStoreWithDB(db *sql.DB) (*Store, error) {
	// SQLite has one writer; a single connection also keeps :memory: databases intact.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` (key TEXT PRIMARY KEY, data jsonb NOT NULL)", tableName)
	if _, err := db.Exec(create); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &Store{db: db}, nil
}

// Ping checks if the database connection is alive
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection. Unsaved changes are dropped.
func (s *Store) Close() error {
	s.pending.Reset()
	return s.db.Close()
}

// Count returns the number of committed rows.
func (s *Store) Count(ctx context.Context) (uint64, error) {
	var c uint64
	row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM `%s`", tableName))
	if err := row.Scan(&c); err != nil {
		return 0, store.Wrap("count", err)
	}
	return c, nil
}

// FetchAll returns committed rows in insertion order with staged changes applied.
func (s *Store) FetchAll(ctx context.Context) ([]store.Record, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT key, data FROM `%s` ORDER BY rowid", tableName))
	if err != nil {
		return nil, store.Wrap("fetch", err)
	}
	defer rows.Close()

	var recs []store.Record
	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, store.Wrap("fetch", err)
		}
		rec := store.Record{Key: key}
		if err := json.Unmarshal([]byte(data), &rec.Fields); err != nil {
			return nil, store.Wrap("fetch", fmt.Errorf("decode %s: %w", key, err))
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("fetch", err)
	}
	return s.pending.Apply(recs), nil
}

func (s *Store) Insert(_ context.Context, rec store.Record) error {
	_, err := s.pending.Insert(rec)
	return store.Wrap("insert", err)
}

func (s *Store) Update(_ context.Context, rec store.Record) error {
	return store.Wrap("update", s.pending.Update(rec))
}

func (s *Store) Delete(_ context.Context, rec store.Record) error {
	return store.Wrap("delete", s.pending.Delete(rec.Key))
}

// Rollback discards staged changes.
func (s *Store) Rollback() { s.pending.Reset() }

// Save commits staged changes in one transaction. On failure the
// transaction is rolled back and the changes stay staged.
func (s *Store) Save(ctx context.Context) (err error) {
	if s.pending.Empty() {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.Wrap("save", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, rec := range s.pending.Inserts() {
		data, err := json.Marshal(rec.Fields)
		if err != nil {
			return store.Wrap("save", err)
		}
		q := fmt.Sprintf("INSERT INTO `%s` (key, data) VALUES (?, ?)", tableName)
		if _, err := tx.ExecContext(ctx, q, rec.Key, string(data)); err != nil {
			return store.Wrap("save", fmt.Errorf("insert %s: %w", rec.Key, err))
		}
	}
	for _, rec := range s.pending.Updates() {
		data, err := json.Marshal(rec.Fields)
		if err != nil {
			return store.Wrap("save", err)
		}
		q := fmt.Sprintf("UPDATE `%s` SET data = ? WHERE key = ?", tableName)
		if _, err := tx.ExecContext(ctx, q, string(data), rec.Key); err != nil {
			return store.Wrap("save", fmt.Errorf("update %s: %w", rec.Key, err))
		}
	}
	for _, key := range s.pending.Deletes() {
		q := fmt.Sprintf("DELETE FROM `%s` WHERE key = ?", tableName)
		if _, err := tx.ExecContext(ctx, q, key); err != nil {
			return store.Wrap("save", fmt.Errorf("delete %s: %w", key, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return store.Wrap("save", fmt.Errorf("failed to commit transaction: %w", err))
	}
	s.pending.Reset()
	return nil
}
