package net

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"

	"go.uber.org/zap"

	"github.com/peterkuimelis/bladedeck/internal/game"
	"github.com/peterkuimelis/bladedeck/internal/log"
	"github.com/peterkuimelis/bladedeck/internal/session"
)

// Host runs battles for connected clients. Each connection plays one
// session; the session is saved after every accepted command and when the
// client leaves.
type Host struct {
	Manager *session.Manager
	Logger  *zap.Logger
	Events  log.EventLogger // optional local echo of every event
}

func (h *Host) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// ServeConn reads the client's join message, then plays its session until
// the battle ends or the client quits.
func (h *Host) ServeConn(ctx context.Context, conn net.Conn) error {
	np := NewNetworkPresenter(conn, h.Events)
	join, err := np.recv()
	if err != nil {
		return fmt.Errorf("read join message: %w", err)
	}
	if join.Type != MsgJoin {
		_ = np.send(ServerMessage{Type: MsgRejected, Message: "expected a join message"})
		return fmt.Errorf("expected join message, got %q", join.Type)
	}
	return h.play(ctx, np, join)
}

// Play plays a session for a client that already chose it, e.g. from the
// query string of a WebSocket upgrade.
func (h *Host) Play(ctx context.Context, conn net.Conn, join ClientMessage) error {
	return h.play(ctx, NewNetworkPresenter(conn, h.Events), join)
}

func (h *Host) play(ctx context.Context, np *NetworkPresenter, join ClientMessage) error {
	cfg := game.Config{Presenter: np, Loadout: join.Loadout}
	var (
		s        *session.Session
		restored bool
		err      error
	)
	if join.Session != "" {
		s, restored, err = h.Manager.Resume(ctx, join.Session, cfg)
	} else {
		s, err = h.Manager.Start(cfg)
	}
	if err != nil {
		_ = np.send(ServerMessage{Type: MsgRejected, Message: err.Error()})
		return err
	}

	logger := h.logger().With(zap.String("session_id", s.ID))
	logger.Info("player joined", zap.Bool("restored", restored), zap.Int("loadout", join.Loadout))
	if err := np.send(ServerMessage{Type: MsgWelcome, Session: s.ID, Restored: restored}); err != nil {
		return err
	}

	save := func() {
		// The connection may already be gone; saving must not depend on it.
		if err := h.Manager.Save(context.WithoutCancel(ctx), s); err != nil {
			logger.Warn("save failed", zap.Error(err))
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			save()
			return err
		}

		if s.Battle.Phase() == game.PhaseGameOver {
			save()
			var score, wave int
			s.Battle.View(func(snap game.Snapshot) {
				score = snap.Game.Score
				wave = snap.Game.CurrentWave
			})
			logger.Info("battle over", zap.Int("score", score), zap.Int("wave", wave))
			return np.send(ServerMessage{Type: MsgGameOver, Score: score, Wave: wave})
		}

		if err := np.sendState(s.Battle); err != nil {
			save()
			return err
		}

		msg, err := np.recv()
		if err != nil {
			save()
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				logger.Info("player left")
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case MsgQuit:
			save()
			logger.Info("player quit")
			return nil

		case MsgCommand:
			if msg.Command == nil {
				if err := np.send(ServerMessage{Type: MsgRejected, Message: "command message without a command"}); err != nil {
					return err
				}
				continue
			}
			if err := s.Battle.Execute(ctx, *msg.Command); err != nil {
				if !game.IsRejected(err) {
					logger.Warn("command failed", zap.Stringer("command", msg.Command.Type), zap.Error(err))
				}
				if err := np.send(ServerMessage{Type: MsgRejected, Message: err.Error()}); err != nil {
					return err
				}
				continue
			}
			save()

		default:
			if err := np.send(ServerMessage{Type: MsgRejected, Message: fmt.Sprintf("unknown message type %q", msg.Type)}); err != nil {
				return err
			}
		}
	}
}

// Server hosts one player over TCP.
type Server struct {
	Host *Host
	Port string
}

// Run starts the server, waits for a client to join, then plays its session.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()

	fmt.Printf("Waiting for player on port %s...\n", s.Port)

	// Accept exactly one connection
	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	defer conn.Close()

	fmt.Printf("Player connected from %s\n", conn.RemoteAddr())

	if s.Host.Events == nil {
		s.Host.Events = log.NewTextLogger(os.Stdout)
	}
	return s.Host.ServeConn(ctx, conn)
}

// Solo plays a session in this terminal over an in-memory pipe.
func Solo(ctx context.Context, h *Host, loadout int, sessionID string) error {
	clientConn, serverConn := net.Pipe()

	errCh := make(chan error, 1)
	go func() {
		defer serverConn.Close()
		errCh <- h.ServeConn(ctx, serverConn)
	}()

	client := NewClient(clientConn, os.Stdin, os.Stdout)
	err := client.Join(loadout, sessionID)
	if err == nil {
		err = client.RunREPL(ctx)
	}
	clientConn.Close()
	return errors.Join(err, <-errCh)
}
