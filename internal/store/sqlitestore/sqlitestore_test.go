package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todonotes/internal/store"
)

func helperTempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test-todo.db")
}

func helperOpenStore(t *testing.T, path string) *Store {
	t.Helper()

	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func helperInsert(t *testing.T, s *Store, key, title string) {
	t.Helper()
	err := s.Insert(context.Background(), store.Record{Key: key, Fields: map[string]any{"id": key, "title": title}})
	require.NoError(t, err)
}

func TestOpen(t *testing.T) {
	s := helperOpenStore(t, helperTempPath(t))
	require.NoError(t, s.Ping(context.Background()))

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestInsertIsStagedUntilSave(t *testing.T) {
	ctx := context.Background()
	s := helperOpenStore(t, helperTempPath(t))

	helperInsert(t, s, "k1", "first")

	recs, err := s.FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing committed before Save")

	require.NoError(t, s.Save(ctx))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := helperTempPath(t)

	s, err := Open(path)
	require.NoError(t, err)
	helperInsert(t, s, "k1", "first")
	helperInsert(t, s, "k2", "second")
	helperInsert(t, s, "k3", "third")
	require.NoError(t, s.Save(ctx))
	require.NoError(t, s.Close())

	s = helperOpenStore(t, path)
	recs, err := s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "k1", recs[0].Key)
	assert.Equal(t, "k3", recs[2].Key)
	title, err := recs[1].String("title")
	require.NoError(t, err)
	assert.Equal(t, "second", title)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := helperOpenStore(t, helperTempPath(t))

	helperInsert(t, s, "k1", "first")
	helperInsert(t, s, "k2", "second")
	require.NoError(t, s.Save(ctx))

	recs, err := s.FetchAll(ctx)
	require.NoError(t, err)

	recs[1].Set("title", "changed")
	require.NoError(t, s.Update(ctx, recs[1]))
	require.NoError(t, s.Delete(ctx, recs[0]))
	require.NoError(t, s.Save(ctx))

	recs, err = s.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "k2", recs[0].Key)
	title, _ := recs[0].String("title")
	assert.Equal(t, "changed", title)
}

func TestSaveDuplicateKeyRollsBack(t *testing.T) {
	ctx := context.Background()
	s := helperOpenStore(t, helperTempPath(t))

	helperInsert(t, s, "k1", "first")
	require.NoError(t, s.Save(ctx))

	helperInsert(t, s, "k2", "second")
	helperInsert(t, s, "k1", "clash")
	err := s.Save(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrStore)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "k2 must be rolled back with the failed insert")
}

func TestClosedStoreErrors(t *testing.T) {
	s, err := Open(helperTempPath(t))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.FetchAll(context.Background())
	assert.ErrorIs(t, err, store.ErrStore)
}
