package records

import (
	"context"
	"errors"

	"github.com/idilsaglam/todonotes/internal/store"
)

var errDisk = errors.New("disk full")

// fakeBackend is an in-memory store.Backend with per-operation failures.
type fakeBackend struct {
	committed []store.Record
	pending   store.Changeset

	failFetch  bool
	failInsert bool
	failUpdate bool
	failDelete bool
	failSave   bool

	saves     int
	rollbacks int
}

func (f *fakeBackend) FetchAll(context.Context) ([]store.Record, error) {
	if f.failFetch {
		return nil, store.Wrap("fetch", errDisk)
	}
	return f.pending.Apply(f.committed), nil
}

func (f *fakeBackend) Insert(_ context.Context, rec store.Record) error {
	if f.failInsert {
		return store.Wrap("insert", errDisk)
	}
	_, err := f.pending.Insert(rec)
	return store.Wrap("insert", err)
}

func (f *fakeBackend) Update(_ context.Context, rec store.Record) error {
	if f.failUpdate {
		return store.Wrap("update", errDisk)
	}
	return store.Wrap("update", f.pending.Update(rec))
}

func (f *fakeBackend) Delete(_ context.Context, rec store.Record) error {
	if f.failDelete {
		return store.Wrap("delete", errDisk)
	}
	return store.Wrap("delete", f.pending.Delete(rec.Key))
}

func (f *fakeBackend) Save(context.Context) error {
	if f.failSave {
		return store.Wrap("save", errDisk)
	}
	f.committed = f.pending.Apply(f.committed)
	f.pending.Reset()
	f.saves++
	return nil
}

func (f *fakeBackend) Rollback() {
	f.pending.Reset()
	f.rollbacks++
}

func (f *fakeBackend) Close() error { return nil }

// seed commits a well-formed record for each id.
func (f *fakeBackend) seed(ids ...string) {
	for _, id := range ids {
		f.committed = append(f.committed, store.NewRecord(map[string]any{
			FieldID:      id,
			FieldTitle:   "title " + id,
			FieldMessage: "msg " + id,
			FieldTime:    "09:00 AM",
			FieldDay:     "01/01/20",
		}))
	}
}
