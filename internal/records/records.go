// Package records keeps the ordered in-memory list of todo items in step
// with a persistent backend.
//
// Every operation runs to completion on the caller's goroutine: fetch (when
// needed), mutate the backend, save, then mutate the in-memory list and
// notify subscribers. A Store is not safe for concurrent use.
package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todonotes/internal/model"
	"github.com/idilsaglam/todonotes/internal/store"
)

// Persisted field names.
const (
	FieldID      = "id"
	FieldTitle   = "title"
	FieldMessage = "msg"
	FieldTime    = "time"
	FieldDay     = "day"
)

// ErrNotFound is returned when no persisted record has the requested id.
var ErrNotFound = errors.New("item not found")

// Store owns the item list and mirrors every mutation to a backend.
type Store struct {
	backend store.Backend
	logger  *log.Logger

	items   []model.Item
	loadErr error

	subs    map[int]func([]model.Item)
	nextSub int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger failures are reported to.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New loads every persisted record from backend. It never fails: a fetch
// error leaves the list empty and invalid records are skipped. Either is
// logged and reported by LoadErr.
func New(ctx context.Context, backend store.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		logger:  log.Default(),
		subs:    map[int]func([]model.Item){},
	}
	for _, o := range opts {
		o(s)
	}
	s.items, s.loadErr = s.load(ctx)
	return s
}

// LoadErr returns the error from the most recent load, if any.
func (s *Store) LoadErr() error { return s.loadErr }

// Items returns a copy of the current list.
func (s *Store) Items() []model.Item {
	out := make([]model.Item, len(s.items))
	copy(out, s.items)
	return out
}

// Subscribe registers fn to receive the list after every change. fn runs
// synchronously on the mutating call. The returned func unregisters it.
func (s *Store) Subscribe(fn func([]model.Item)) (cancel func()) {
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() { delete(s.subs, id) }
}

func (s *Store) notify() {
	for _, fn := range s.subs {
		fn(s.Items())
	}
}

// Reload replaces the list with what the backend holds now.
func (s *Store) Reload(ctx context.Context) error {
	s.items, s.loadErr = s.load(ctx)
	s.notify()
	return s.loadErr
}

func (s *Store) load(ctx context.Context) ([]model.Item, error) {
	recs, err := s.backend.FetchAll(ctx)
	if err != nil {
		s.logger.Error("load failed", "err", err)
		return []model.Item{}, fmt.Errorf("load: %w", err)
	}

	items := make([]model.Item, 0, len(recs))
	var errs []error
	for _, rec := range recs {
		it, err := itemFromRecord(rec)
		if err != nil {
			s.logger.Warn("skipping invalid record", "key", rec.Key, "err", err)
			errs = append(errs, err)
			continue
		}
		items = append(items, it)
	}
	if len(errs) > 0 {
		return items, fmt.Errorf("load: %w", errors.Join(errs...))
	}
	return items, nil
}

// Add persists a new item created at ts and appends it to the list.
// If persisting fails the list is left unchanged.
func (s *Store) Add(ctx context.Context, title, message string, ts time.Time) (model.Item, error) {
	it := model.NewItem(title, message, ts)

	if err := s.commit(ctx, func() error {
		return s.backend.Insert(ctx, recordFromItem(it))
	}); err != nil {
		s.logger.Error("add failed", "id", it.ID, "err", err)
		return model.Item{}, fmt.Errorf("add: %w", err)
	}

	s.items = append(s.items, it)
	s.notify()
	return it, nil
}

// Delete removes the first persisted record whose id matches, then the
// first matching item in the list. An empty id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	recs, err := s.backend.FetchAll(ctx)
	if err != nil {
		s.logger.Error("delete failed", "id", id, "err", err)
		return fmt.Errorf("delete: %w", err)
	}

	rec, ok := findFirst(recs, id)
	if !ok {
		s.logger.Warn("delete: no such item", "id", id)
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	if err := s.commit(ctx, func() error {
		return s.backend.Delete(ctx, rec)
	}); err != nil {
		s.logger.Error("delete failed", "id", id, "err", err)
		return fmt.Errorf("delete: %w", err)
	}

	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.notify()
	return nil
}

// Update overwrites title and message of every item with id. The
// timestamp is accepted for symmetry with Add and is not used.
func (s *Store) Update(ctx context.Context, id, title, message string, _ time.Time) error {
	recs, err := s.backend.FetchAll(ctx)
	if err != nil {
		s.logger.Error("update failed", "id", id, "err", err)
		return fmt.Errorf("update: %w", err)
	}

	var matches []store.Record
	for _, rec := range recs {
		if rid, err := rec.String(FieldID); err == nil && rid == id {
			matches = append(matches, rec)
		}
	}
	if len(matches) == 0 {
		s.logger.Warn("update: no such item", "id", id)
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}

	if err := s.commit(ctx, func() error {
		for _, rec := range matches {
			rec.Set(FieldTitle, title)
			rec.Set(FieldMessage, message)
			if err := s.backend.Update(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		s.logger.Error("update failed", "id", id, "err", err)
		return fmt.Errorf("update: %w", err)
	}

	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Title = title
			s.items[i].Message = message
		}
	}
	s.notify()
	return nil
}

// commit stages changes with fn and saves them. Nothing stays staged on failure.
func (s *Store) commit(ctx context.Context, stage func() error) error {
	if err := stage(); err != nil {
		s.backend.Rollback()
		return err
	}
	if err := s.backend.Save(ctx); err != nil {
		s.backend.Rollback()
		return err
	}
	return nil
}

func findFirst(recs []store.Record, id string) (store.Record, bool) {
	for _, rec := range recs {
		if rid, err := rec.String(FieldID); err == nil && rid == id {
			return rec, true
		}
	}
	return store.Record{}, false
}

func itemFromRecord(rec store.Record) (model.Item, error) {
	var it model.Item
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{FieldID, &it.ID},
		{FieldTitle, &it.Title},
		{FieldMessage, &it.Message},
		{FieldTime, &it.Time},
		{FieldDay, &it.Day},
	} {
		v, err := rec.String(f.name)
		if err != nil {
			return model.Item{}, err
		}
		*f.dst = v
	}
	return it, nil
}

func recordFromItem(it model.Item) store.Record {
	return store.NewRecord(map[string]any{
		FieldID:      it.ID,
		FieldTitle:   it.Title,
		FieldMessage: it.Message,
		FieldTime:    it.Time,
		FieldDay:     it.Day,
	})
}
