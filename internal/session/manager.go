package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/peterkuimelis/bladedeck/internal/game"
	"github.com/peterkuimelis/bladedeck/internal/store"
)

// Store is the persistence a Manager needs. *store.Store satisfies it.
type Store interface {
	Save(ctx context.Context, rec store.Record) error
	Load(ctx context.Context, id string) (store.Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit int) ([]store.Record, error)
}

// Session is a battle and the ID it is saved under.
type Session struct {
	ID     string
	Battle *game.Battle
}

// Manager starts, saves and resumes battles.
type Manager struct {
	store  Store
	base   game.Config
	logger *zap.Logger
	now    func() time.Time
}

// NewManager returns a manager saving to st. base supplies the content and
// defaults every battle is created with.
func NewManager(st Store, base game.Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if base.Zap == nil {
		base.Zap = logger
	}
	return &Manager{store: st, base: base, logger: logger, now: time.Now}
}

// config overlays per-battle collaborators on the base config.
func (m *Manager) config(cfg game.Config) game.Config {
	out := m.base
	if cfg.Logger != nil {
		out.Logger = cfg.Logger
	}
	if cfg.Presenter != nil {
		out.Presenter = cfg.Presenter
	}
	if cfg.Source != nil {
		out.Source = cfg.Source
	}
	if cfg.Seed != 0 {
		out.Seed = cfg.Seed
	}
	if cfg.Loadout != 0 {
		out.Loadout = cfg.Loadout
	}
	if cfg.Zap != nil {
		out.Zap = cfg.Zap
	}
	if cfg.HitInterval != 0 {
		out.HitInterval = cfg.HitInterval
	}
	return out
}

// Start creates a fresh battle under a new ID.
func (m *Manager) Start(cfg game.Config) (*Session, error) {
	return m.start(store.NewID(), cfg)
}

func (m *Manager) start(id string, cfg game.Config) (*Session, error) {
	b, err := game.NewBattle(m.config(cfg))
	if err != nil {
		return nil, fmt.Errorf("start battle: %w", err)
	}
	m.logger.Info("battle started", zap.String("session_id", id))
	return &Session{ID: id, Battle: b}, nil
}

// Resume restores the battle saved under id. A missing snapshot starts a
// fresh battle under the same ID; a corrupt one is deleted first. restored
// reports whether the saved battle was used.
func (m *Manager) Resume(ctx context.Context, id string, cfg game.Config) (s *Session, restored bool, err error) {
	rec, err := m.store.Load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		s, err := m.start(id, cfg)
		return s, false, err
	}
	if err != nil {
		return nil, false, fmt.Errorf("load session: %w", err)
	}

	b, err := Restore(m.config(cfg), rec.Data)
	if err != nil {
		if !errors.Is(err, ErrCorruptSnapshot) {
			return nil, false, err
		}
		m.logger.Warn("discarding corrupt snapshot", zap.String("session_id", id), zap.Error(err))
		if err := m.store.Delete(ctx, id); err != nil {
			return nil, false, fmt.Errorf("delete corrupt session: %w", err)
		}
		s, err := m.start(id, cfg)
		return s, false, err
	}
	m.logger.Info("battle resumed", zap.String("session_id", id), zap.String("phase", b.Phase().String()))
	return &Session{ID: id, Battle: b}, true, nil
}

// Save writes the session's current state.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	data, err := Encode(s.Battle)
	if err != nil {
		return err
	}
	rec := store.Record{ID: s.ID, Data: data, UpdatedAt: m.now()}
	s.Battle.View(func(snap game.Snapshot) {
		rec.Phase = snap.Game.Phase.String()
		rec.Wave = snap.Game.CurrentWave
		rec.Turn = snap.Game.Turn
		rec.Score = snap.Game.Score
	})
	if err := m.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	m.logger.Debug("battle saved", zap.String("session_id", s.ID), zap.Int("bytes", len(data)))
	return nil
}

// Delete forgets a saved session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// List returns summaries of the most recently saved sessions.
func (m *Manager) List(ctx context.Context, limit int) ([]store.Record, error) {
	return m.store.List(ctx, limit)
}

// Open opens the SQLite store at dbPath and returns a manager saving to it.
// Closing the returned store is the caller's job.
func Open(dbPath string, base game.Config, logger *zap.Logger) (*Manager, *store.Store, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	return NewManager(st, base, logger), st, nil
}
