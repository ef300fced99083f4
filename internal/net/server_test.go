package net

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/peterkuimelis/bladedeck/internal/game"
	"github.com/peterkuimelis/bladedeck/internal/session"
	"github.com/peterkuimelis/bladedeck/internal/store"
)

const testContent = `
starting_weapon: Sword
starting_deck:
  - name: Slash
    count: 6
cards:
  Sword:
    kind: weapon
    weapon:
      attack: 5
      reach: single
      durability: 10
      draw_attack: {multiplier: 1, reach: single}
  Slash:
    kind: skill
    skill: {kind: attack, reach: weapon, mana_cost: 1}
enemies:
  rat:
    max_hp: 30
    actions:
      - {name: Bite, damage: 2, delay: 2}
waves:
  - enemies: [rat, rat]
`

func newTestHost(t *testing.T) (*Host, *store.Store) {
	t.Helper()
	content, err := game.ParseContent([]byte(testContent))
	if err != nil {
		t.Fatalf("parse content: %v", err)
	}
	st, err := store.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	m := session.NewManager(st, game.Config{Content: content, Seed: 1, NoShuffle: true}, nil)
	return &Host{Manager: m}, st
}

// testPeer is the client side of a piped connection.
type testPeer struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	done chan error
}

func connect(t *testing.T, h *Host) *testPeer {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	clientConn.SetDeadline(time.Now().Add(5 * time.Second))
	p := &testPeer{
		conn: clientConn,
		enc:  json.NewEncoder(clientConn),
		dec:  json.NewDecoder(clientConn),
		done: make(chan error, 1),
	}
	go func() {
		defer serverConn.Close()
		p.done <- h.ServeConn(context.Background(), serverConn)
	}()
	t.Cleanup(func() { clientConn.Close() })
	return p
}

func (p *testPeer) send(t *testing.T, msg ClientMessage) {
	t.Helper()
	if err := p.enc.Encode(msg); err != nil {
		t.Fatalf("send %s: %v", msg.Type, err)
	}
}

// until reads messages until one of the given type arrives, returning it and
// the events notified on the way.
func (p *testPeer) until(t *testing.T, typ string) (ServerMessage, []*EventView) {
	t.Helper()
	var events []*EventView
	for {
		var msg ServerMessage
		if err := p.dec.Decode(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", typ, err)
		}
		if msg.Type == MsgNotify {
			events = append(events, msg.Event)
		}
		if msg.Type == typ {
			return msg, events
		}
	}
}

func (p *testPeer) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-p.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("host did not return")
		return nil
	}
}

func findCommand(t *testing.T, msg ServerMessage, typ game.CommandType) game.Command {
	t.Helper()
	for _, cv := range msg.Commands {
		if cv.Command.Type == typ {
			return cv.Command
		}
	}
	t.Fatalf("no %s command offered in %s", typ, msg.State.Phase)
	return game.Command{}
}

func TestHostPlaysSession(t *testing.T) {
	h, st := newTestHost(t)
	p := connect(t, h)

	p.send(t, ClientMessage{Type: MsgJoin})
	welcome, _ := p.until(t, MsgWelcome)
	if welcome.Session == "" || welcome.Restored {
		t.Fatalf("welcome = %+v, want a new session", welcome)
	}

	msg, _ := p.until(t, MsgState)
	if msg.State.Phase != "running" {
		t.Fatalf("phase = %s, want running", msg.State.Phase)
	}
	start := findCommand(t, msg, game.CommandStartCombat)
	p.send(t, ClientMessage{Type: MsgCommand, Command: &start})

	msg, events := p.until(t, MsgState)
	if msg.State.Phase != "combat" {
		t.Fatalf("phase = %s, want combat", msg.State.Phase)
	}
	if len(events) == 0 {
		t.Error("starting combat notified no events")
	}
	if len(msg.State.Enemies) != 2 {
		t.Fatalf("enemies = %d, want 2", len(msg.State.Enemies))
	}
	if got := msg.State.Enemies[0].Next; got != "Bite" {
		t.Errorf("next enemy action = %q, want Bite", got)
	}
	if len(msg.State.Player.Hand) != 5 {
		t.Errorf("hand = %v, want 5 cards", msg.State.Player.Hand)
	}

	// Slash has two legal targets, so the host asks for one.
	use := findCommand(t, msg, game.CommandUseCard)
	p.send(t, ClientMessage{Type: MsgCommand, Command: &use})
	msg, _ = p.until(t, MsgState)
	if msg.State.Targeting != "Slash" {
		t.Fatalf("targeting = %q, want Slash", msg.State.Targeting)
	}
	target := findCommand(t, msg, game.CommandSelectTarget)
	p.send(t, ClientMessage{Type: MsgCommand, Command: &target})
	msg, _ = p.until(t, MsgState)
	if msg.State.Enemies[0].HP >= msg.State.Enemies[0].MaxHP {
		t.Errorf("enemy hp = %d, want damage", msg.State.Enemies[0].HP)
	}

	p.send(t, ClientMessage{Type: MsgQuit})
	if err := p.wait(t); err != nil {
		t.Fatalf("host returned %v", err)
	}

	rec, err := st.Load(context.Background(), welcome.Session)
	if err != nil {
		t.Fatalf("load saved session: %v", err)
	}
	if rec.Phase != "combat" || rec.Turn != 1 {
		t.Errorf("saved phase %s turn %d, want combat turn 1", rec.Phase, rec.Turn)
	}
}

func TestHostResumesSession(t *testing.T) {
	h, _ := newTestHost(t)

	p := connect(t, h)
	p.send(t, ClientMessage{Type: MsgJoin})
	welcome, _ := p.until(t, MsgWelcome)
	msg, _ := p.until(t, MsgState)
	start := findCommand(t, msg, game.CommandStartCombat)
	p.send(t, ClientMessage{Type: MsgCommand, Command: &start})
	msg, _ = p.until(t, MsgState)
	end := findCommand(t, msg, game.CommandEndTurn)
	p.send(t, ClientMessage{Type: MsgCommand, Command: &end})
	p.until(t, MsgState)
	p.conn.Close()
	if err := p.wait(t); err != nil {
		t.Fatalf("host returned %v after disconnect", err)
	}

	p = connect(t, h)
	p.send(t, ClientMessage{Type: MsgJoin, Session: welcome.Session})
	resumed, _ := p.until(t, MsgWelcome)
	if !resumed.Restored || resumed.Session != welcome.Session {
		t.Fatalf("welcome = %+v, want restored %s", resumed, welcome.Session)
	}
	msg, _ = p.until(t, MsgState)
	if msg.State.Phase != "combat" || msg.State.Turn != 2 {
		t.Errorf("resumed phase %s turn %d, want combat turn 2", msg.State.Phase, msg.State.Turn)
	}
}

func TestHostRejectsBadInput(t *testing.T) {
	h, _ := newTestHost(t)
	p := connect(t, h)
	p.send(t, ClientMessage{Type: MsgJoin})
	p.until(t, MsgState)

	// Combat has not started yet.
	bad := game.Command{Type: game.CommandEndTurn}
	p.send(t, ClientMessage{Type: MsgCommand, Command: &bad})
	rejected, _ := p.until(t, MsgRejected)
	if rejected.Message == "" {
		t.Error("rejection without a message")
	}
	msg, _ := p.until(t, MsgState)
	if msg.State.Phase != "running" {
		t.Errorf("phase = %s after a rejected command", msg.State.Phase)
	}

	p.send(t, ClientMessage{Type: MsgCommand})
	p.until(t, MsgRejected)
	p.until(t, MsgState)
	p.send(t, ClientMessage{Type: "dance"})
	p.until(t, MsgRejected)
	p.until(t, MsgState)

	p.send(t, ClientMessage{Type: MsgQuit})
	if err := p.wait(t); err != nil {
		t.Fatalf("host returned %v", err)
	}
}

func TestHostRejectsUnknownLoadout(t *testing.T) {
	h, _ := newTestHost(t)
	p := connect(t, h)
	p.send(t, ClientMessage{Type: MsgJoin, Loadout: 4})
	p.until(t, MsgRejected)
	if err := p.wait(t); err == nil {
		t.Fatal("expected an error for a missing loadout")
	}
}

func TestHostRequiresJoin(t *testing.T) {
	h, _ := newTestHost(t)
	p := connect(t, h)
	p.send(t, ClientMessage{Type: MsgQuit})
	p.until(t, MsgRejected)
	if err := p.wait(t); err == nil {
		t.Fatal("expected an error without a join message")
	}
}

func TestBuildCommandViews(t *testing.T) {
	cmds := []game.Command{
		{Type: game.CommandEndTurn, Desc: "End turn"},
		{Type: game.CommandPause},
	}
	views := BuildCommandViews(cmds)
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	if views[1].Index != 1 || views[1].Desc != "pause" {
		t.Errorf("views[1] = %+v", views[1])
	}
}
