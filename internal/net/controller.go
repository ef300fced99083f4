package net

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/peterkuimelis/bladedeck/internal/game"
	"github.com/peterkuimelis/bladedeck/internal/log"
)

// NetworkPresenter implements game.Presenter over a connection. Events are
// pushed to the client as they happen; beats are paced locally.
type NetworkPresenter struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	pace game.SleepPresenter
	mu   sync.Mutex
}

// NewNetworkPresenter creates a presenter for the given connection. echo,
// if non-nil, also receives every event.
func NewNetworkPresenter(conn net.Conn, echo log.EventLogger) *NetworkPresenter {
	return &NetworkPresenter{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
		pace: game.SleepPresenter{Events: echo},
	}
}

// send sends a server message to the client.
func (np *NetworkPresenter) send(msg ServerMessage) error {
	np.mu.Lock()
	defer np.mu.Unlock()
	if err := np.enc.Encode(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	return nil
}

// recv reads a client message. Only the host loop reads.
func (np *NetworkPresenter) recv() (ClientMessage, error) {
	var msg ClientMessage
	err := np.dec.Decode(&msg)
	return msg, err
}

// sendState sends the battle's state and its legal commands.
func (np *NetworkPresenter) sendState(b *game.Battle) error {
	cmds := b.Commands()
	var sv *StateView
	b.View(func(s game.Snapshot) {
		sv = BuildStateView(s)
	})
	return np.send(ServerMessage{Type: MsgState, State: sv, Commands: BuildCommandViews(cmds)})
}

// Notify implements game.Presenter.
func (np *NetworkPresenter) Notify(ctx context.Context, event log.GameEvent) error {
	_ = np.pace.Notify(ctx, event)
	return np.send(ServerMessage{Type: MsgNotify, Event: NewEventView(event)})
}

// Beat implements game.Presenter.
func (np *NetworkPresenter) Beat(ctx context.Context, beat game.Beat) error {
	return np.pace.Beat(ctx, beat)
}
