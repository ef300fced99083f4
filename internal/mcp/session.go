package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	bdnet "github.com/peterkuimelis/bladedeck/internal/net"

	"github.com/peterkuimelis/bladedeck/internal/game"
	"github.com/peterkuimelis/bladedeck/internal/session"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Session  string              `json:"session"`
	Restored bool                `json:"restored,omitempty"`
	Events   []bdnet.EventView   `json:"events"`
	State    *bdnet.StateView    `json:"state,omitempty"`
	Commands []bdnet.CommandView `json:"commands"`
	GameOver bool                `json:"game_over"`
	Score    int                 `json:"score,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// GameSession holds the battle driven by this MCP process.
type GameSession struct {
	session *session.Session
	manager *session.Manager
	logger  *zap.Logger

	mu       sync.Mutex
	events   []bdnet.EventView
	restored bool
}

// NewGameSession starts a battle with the given loadout, or resumes the
// saved battle when id is non-empty.
func NewGameSession(ctx context.Context, m *session.Manager, logger *zap.Logger, loadout int, id string) (*GameSession, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	gs := &GameSession{manager: m, logger: logger}
	cfg := game.Config{Presenter: NewMCPPresenter(gs), Loadout: loadout}

	var err error
	if id != "" {
		gs.session, gs.restored, err = m.Resume(ctx, id, cfg)
	} else {
		gs.session, err = m.Start(cfg)
	}
	if err != nil {
		return nil, err
	}
	return gs, nil
}

// ID returns the session ID the battle is saved under.
func (s *GameSession) ID() string {
	return s.session.ID
}

// appendEvent adds an event to the session's event log. Thread-safe.
func (s *GameSession) appendEvent(ev bdnet.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

// drainEvents returns all accumulated events and clears the buffer.
func (s *GameSession) drainEvents() []bdnet.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	if events == nil {
		events = []bdnet.EventView{}
	}
	return events
}

// execute runs one command. A refused command leaves the battle untouched
// and is reported as an error; an accepted one is saved.
func (s *GameSession) execute(ctx context.Context, cmd game.Command) (*ToolResponse, error) {
	if err := s.session.Battle.Execute(ctx, cmd); err != nil {
		return nil, err
	}
	if err := s.save(ctx); err != nil {
		s.logger.Warn("autosave failed", zap.String("session_id", s.ID()), zap.Error(err))
	}
	return s.respond(), nil
}

func (s *GameSession) save(ctx context.Context) error {
	return s.manager.Save(ctx, s.session)
}

// command resolves a numbered menu entry to its command.
func (s *GameSession) command(index int) (game.Command, error) {
	cmds := s.session.Battle.Commands()
	if index < 0 || index >= len(cmds) {
		return game.Command{}, fmt.Errorf("invalid index %d. Must be 0-%d", index, len(cmds)-1)
	}
	return cmds[index], nil
}

// respond builds a ToolResponse with the accumulated events and the
// current state.
func (s *GameSession) respond() *ToolResponse {
	b := s.session.Battle
	resp := &ToolResponse{
		Session:  s.ID(),
		Restored: s.restored,
		Events:   s.drainEvents(),
		Commands: bdnet.BuildCommandViews(b.Commands()),
	}
	b.View(func(snap game.Snapshot) {
		resp.State = bdnet.BuildStateView(snap)
		resp.GameOver = snap.Game.Phase == game.PhaseGameOver
		resp.Score = snap.Game.Score
	})
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
