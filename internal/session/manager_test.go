package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/peterkuimelis/bladedeck/internal/game"
	"github.com/peterkuimelis/bladedeck/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *store.Store, *observer.ObservedLogs) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	core, logs := observer.New(zap.DebugLevel)
	return NewManager(st, baseConfig(t), zap.New(core)), st, logs
}

func TestManagerSaveAndResume(t *testing.T) {
	ctx := context.Background()
	m, st, _ := newTestManager(t)

	s, err := m.Start(game.Config{})
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	require.NoError(t, s.Battle.StartCombat(ctx))
	require.NoError(t, s.Battle.EndTurn(ctx))
	require.NoError(t, m.Save(ctx, s))

	rec, err := st.Load(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "combat", rec.Phase)
	assert.Equal(t, 1, rec.Wave)
	assert.Equal(t, 2, rec.Turn)

	resumed, restored, err := m.Resume(ctx, s.ID, game.Config{})
	require.NoError(t, err)
	assert.True(t, restored)
	assert.Equal(t, s.ID, resumed.ID)
	resumed.Battle.View(func(snap game.Snapshot) {
		assert.Equal(t, 2, snap.Game.Turn)
		assert.Len(t, snap.Game.Enemies, 2)
	})

	list, err := m.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, s.ID, list[0].ID)
}

func TestManagerResumeMissingStartsFresh(t *testing.T) {
	m, _, _ := newTestManager(t)

	s, restored, err := m.Resume(context.Background(), "nobody", game.Config{})
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Equal(t, "nobody", s.ID)
	assert.Equal(t, game.PhaseRunning, s.Battle.Phase())
}

func TestManagerDiscardsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	m, st, logs := newTestManager(t)
	require.NoError(t, st.Save(ctx, store.Record{ID: "broken", Data: []byte(`{"version":1,"player":{}}`)}))

	s, restored, err := m.Resume(ctx, "broken", game.Config{})
	require.NoError(t, err)
	assert.False(t, restored)
	assert.Equal(t, "broken", s.ID)
	assert.Equal(t, game.PhaseRunning, s.Battle.Phase())

	_, err = st.Load(ctx, "broken")
	assert.ErrorIs(t, err, store.ErrNotFound, "the corrupt snapshot is deleted")
	assert.Equal(t, 1, logs.FilterMessage("discarding corrupt snapshot").Len())
}

func TestManagerDelete(t *testing.T) {
	ctx := context.Background()
	m, st, _ := newTestManager(t)
	s, err := m.Start(game.Config{})
	require.NoError(t, err)
	require.NoError(t, m.Save(ctx, s))
	require.NoError(t, m.Delete(ctx, s.ID))

	_, err = st.Load(ctx, s.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestManagerUsesLoadout(t *testing.T) {
	m, _, _ := newTestManager(t)
	_, err := m.Start(game.Config{Loadout: 5})
	assert.Error(t, err, "the test content has a single loadout")
}

func TestOpen(t *testing.T) {
	m, st, err := Open(filepath.Join(t.TempDir(), "open.db"), baseConfig(t), nil)
	require.NoError(t, err)
	defer st.Close()

	s, err := m.Start(game.Config{})
	require.NoError(t, err)
	require.NoError(t, m.Save(context.Background(), s))

	_, _, err = Open(filepath.Join(t.TempDir(), "missing", "dir", "open.db"), baseConfig(t), nil)
	assert.Error(t, err)
}
