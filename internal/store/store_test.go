package store

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "bladedeck.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	_, err := Open("  ")
	require.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	rec := Record{
		ID:        NewID(),
		Data:      []byte(`{"version":1}`),
		Phase:     "combat",
		Wave:      2,
		Turn:      5,
		Score:     300,
		UpdatedAt: now,
	}
	require.NoError(t, s.Save(ctx, rec))

	got, err := s.Load(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Data, got.Data)
	assert.Equal(t, "combat", got.Phase)
	assert.Equal(t, 2, got.Wave)
	assert.Equal(t, 5, got.Turn)
	assert.Equal(t, 300, got.Score)
	assert.True(t, got.CreatedAt.Equal(now))
	assert.True(t, got.UpdatedAt.Equal(now))
}

func TestSaveReplacesButKeepsCreation(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()
	first := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)
	id := NewID()

	require.NoError(t, s.Save(ctx, Record{ID: id, Data: []byte("a"), Wave: 1, UpdatedAt: first}))
	require.NoError(t, s.Save(ctx, Record{ID: id, Data: []byte("b"), Wave: 3, UpdatedAt: later}))

	got, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), got.Data)
	assert.Equal(t, 3, got.Wave)
	assert.True(t, got.CreatedAt.Equal(first), "created_at = %v", got.CreatedAt)
	assert.True(t, got.UpdatedAt.Equal(later), "updated_at = %v", got.UpdatedAt)
}

func TestSaveValidates(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()
	assert.Error(t, s.Save(ctx, Record{Data: []byte("x")}))
	assert.Error(t, s.Save(ctx, Record{ID: "a"}))
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	_, err := s.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()
	id := NewID()
	require.NoError(t, s.Save(ctx, Record{ID: id, Data: []byte("x")}))
	require.NoError(t, s.Delete(ctx, id))

	_, err := s.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Delete(ctx, id), "deleting twice is fine")
}

func TestListNewestFirst(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 3, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "new", "mid"} {
		offset := []time.Duration{0, 2 * time.Hour, time.Hour}[i]
		require.NoError(t, s.Save(ctx, Record{ID: id, Data: []byte("x"), UpdatedAt: base.Add(offset)}))
	}

	got, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Empty(t, got[0].Data)

	_, err = s.List(ctx, 0)
	assert.Error(t, err)
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Save(ctx, Record{ID: "a", Data: []byte("x")}), context.Canceled)
	_, err := s.Load(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNilStore(t *testing.T) {
	t.Parallel()

	var s *Store
	assert.NoError(t, s.Close())
	assert.Error(t, s.Save(context.Background(), Record{ID: "a", Data: []byte("x")}))
}

func TestMigrationsApplyOnce(t *testing.T) {
	t.Parallel()

	s := openTempStore(t)
	ctx := context.Background()
	fsys := fstest.MapFS{
		"0001_a.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE extra (id INTEGER);\n-- +migrate Down\nDROP TABLE extra;\n")},
		"notes.txt":  {Data: []byte("ignored")},
	}
	require.NoError(t, applyMigrations(ctx, s.sqlDB, fsys))
	require.NoError(t, applyMigrations(ctx, s.sqlDB, fsys), "a second run must skip applied files")

	var n int
	require.NoError(t, s.sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n))
	assert.Equal(t, 2, n, "the embedded migration plus the test one")
}

func TestUpMigration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "\nA;\n", upMigration("-- +migrate Up\nA;\n-- +migrate Down\nB;"))
	assert.Equal(t, "A;", upMigration("A;"))
	assert.Equal(t, "\nA;", upMigration("-- +migrate Up\nA;"))
}
