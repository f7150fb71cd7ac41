package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/idilsaglam/todonotes/internal/store"
)

// JSON-backed storage. Single file, human-readable, portable.
// No locking; fine for a local single-user tool.

// DefaultFileName is used when no path is configured.
const DefaultFileName = "todos.json"

var _ store.Backend = (*Store)(nil)

// Store keeps records in one JSON file.
type Store struct {
	path    string
	pending store.Changeset
}

// Open returns a store for path. The file is created on first Save.
func Open(path string) (*Store, error) {
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		path = filepath.Join(wd, DefaultFileName)
	}
	return &Store{path: path}, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

func (s *Store) load() ([]store.Record, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []store.Record{}, nil
		}
		return nil, fmt.Errorf("read file: %w", err)
	}
	var recs []store.Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return recs, nil
}

func (s *Store) FetchAll(ctx context.Context) ([]store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap("fetch", err)
	}
	recs, err := s.load()
	if err != nil {
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

// Save rewrites the file with the staged changes applied. On failure the
// changes stay staged.
func (s *Store) Save(ctx context.Context) error {
	if s.pending.Empty() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return store.Wrap("save", err)
	}
	recs, err := s.load()
	if err != nil {
		return store.Wrap("save", err)
	}
	if err := s.write(s.pending.Apply(recs)); err != nil {
		return store.Wrap("save", err)
	}
	s.pending.Reset()
	return nil
}

func (s *Store) write(recs []store.Record) error {
	b, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".todos-*.json")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Close discards anything not saved.
func (s *Store) Close() error {
	s.pending.Reset()
	return nil
}
