package mcp

import (
	"context"

	"github.com/peterkuimelis/bladedeck/internal/game"
	"github.com/peterkuimelis/bladedeck/internal/log"
	"github.com/peterkuimelis/bladedeck/internal/net"
)

// MCPPresenter implements game.Presenter by buffering events on the
// session until the next tool response drains them. Beats are not paced;
// an agent reads the whole resolution at once.
type MCPPresenter struct {
	session *GameSession
}

// NewMCPPresenter creates a presenter feeding the given session.
func NewMCPPresenter(session *GameSession) *MCPPresenter {
	return &MCPPresenter{session: session}
}

// Notify implements game.Presenter.
func (p *MCPPresenter) Notify(ctx context.Context, event log.GameEvent) error {
	p.session.appendEvent(*net.NewEventView(event))
	return nil
}

// Beat implements game.Presenter.
func (p *MCPPresenter) Beat(ctx context.Context, beat game.Beat) error {
	return ctx.Err()
}
