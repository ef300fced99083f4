package net

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
)

// Client connects to a battle host and provides a terminal REPL.
type Client struct {
	conn net.Conn
	enc  *json.Encoder
	dec  *json.Decoder
	in   *bufio.Reader
	out  io.Writer
}

// NewClient wraps a connection to a host. Choices are read from in and the
// battle is rendered to out.
func NewClient(conn net.Conn, in io.Reader, out io.Writer) *Client {
	return &Client{
		conn: conn,
		enc:  json.NewEncoder(conn),
		dec:  json.NewDecoder(conn),
		in:   bufio.NewReader(in),
		out:  out,
	}
}

// Connect connects to a host, sends the loadout choice, and runs the REPL.
// A non-empty sessionID resumes that session.
func Connect(ctx context.Context, addr string, loadout int, sessionID string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	client := NewClient(conn, os.Stdin, os.Stdout)
	if err := client.Join(loadout, sessionID); err != nil {
		return err
	}
	fmt.Println("Connected! Waiting for the battle to start...")
	return client.RunREPL(ctx)
}

// Join sends the handshake.
func (c *Client) Join(loadout int, sessionID string) error {
	if err := c.enc.Encode(ClientMessage{Type: MsgJoin, Loadout: loadout, Session: sessionID}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}
	return nil
}

// RunREPL reads server messages and handles them interactively. Entering
// "q" saves and leaves the session.
func (c *Client) RunREPL(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var msg ServerMessage
		if err := c.dec.Decode(&msg); err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case MsgWelcome:
			if msg.Restored {
				fmt.Fprintf(c.out, "Resumed session %s\n", msg.Session)
			} else {
				fmt.Fprintf(c.out, "Session %s\n", msg.Session)
			}

		case MsgNotify:
			c.renderEvent(msg.Event)

		case MsgState:
			c.renderState(msg.State)
			c.renderCommands(msg.Commands)
			idx, ok := c.readChoice(len(msg.Commands))
			if !ok {
				if err := c.enc.Encode(ClientMessage{Type: MsgQuit}); err != nil {
					return fmt.Errorf("send quit: %w", err)
				}
				fmt.Fprintln(c.out, "Saved. Bye.")
				return nil
			}
			cmd := msg.Commands[idx].Command
			if err := c.enc.Encode(ClientMessage{Type: MsgCommand, Command: &cmd}); err != nil {
				return fmt.Errorf("send command: %w", err)
			}

		case MsgRejected:
			fmt.Fprintf(c.out, "! %s\n", msg.Message)

		case MsgGameOver:
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintln(c.out, "          GAME OVER")
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			fmt.Fprintf(c.out, "Wave %d, score %d\n", msg.Wave, msg.Score)
			fmt.Fprintln(c.out, "═══════════════════════════════════")
			return nil
		}
	}
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	// Format like the TextLogger
	phase := ev.Phase
	for len(phase) < 9 {
		phase += " "
	}
	fmt.Fprintf(c.out, "W%-2d T%-3d %s| %s\n", ev.Wave, ev.Turn, phase, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}
	out := c.out
	p := sv.Player

	fmt.Fprintln(out)
	fmt.Fprintln(out, "╔══════════════════════════════════════════════════════╗")
	for _, e := range sv.Enemies {
		line := fmt.Sprintf("║  #%d %s  HP %d/%d", e.ID, e.Name, e.HP, e.MaxHP)
		if e.Defense > 0 {
			line += fmt.Sprintf("  DEF %d", e.Defense)
		}
		if e.Next != "" {
			line += fmt.Sprintf("  next: %s in %d", e.Next, e.Delay)
		}
		if len(e.Status) > 0 {
			line += "  [" + strings.Join(e.Status, ", ") + "]"
		}
		fmt.Fprintln(out, line)
	}
	if len(sv.Enemies) > 0 {
		fmt.Fprintln(out, "║──────────────────────────────────────────────────────")
	}

	weapon := p.Weapon
	if weapon == "" {
		weapon = "bare hands"
	}
	fmt.Fprintf(out, "║  YOU  HP %d/%d  Mana %d/%d  Shield %d  Lv %d  Gold %d\n",
		p.HP, p.MaxHP, p.Mana, p.MaxMana, p.Shield, p.Level, p.Gold)
	fmt.Fprintf(out, "║  Weapon: %s  Deck: %d  Discard: %d\n", weapon, p.DeckCount, p.DiscardCount)
	if len(p.Buffs) > 0 {
		fmt.Fprintf(out, "║  Buffs: %s\n", strings.Join(p.Buffs, ", "))
	}
	if len(p.CountEffects) > 0 {
		fmt.Fprintf(out, "║  Pending: %s\n", strings.Join(p.CountEffects, ", "))
	}
	fmt.Fprintln(out, "╚══════════════════════════════════════════════════════╝")

	turnInfo := fmt.Sprintf("Wave %d | Turn %d | %s | Score %d", sv.Wave, sv.Turn, sv.Phase, sv.Score)
	if p.ExchangeMode {
		turnInfo += " | Exchange armed"
	}
	if sv.Targeting != "" {
		turnInfo += " | Choose a target for " + sv.Targeting
	}
	fmt.Fprintln(out, turnInfo)

	if len(p.Hand) > 0 {
		fmt.Fprintf(out, "\nHand: ")
		for i, name := range p.Hand {
			fmt.Fprintf(out, "[%d] %s  ", i+1, name)
		}
		fmt.Fprintln(out)
	}
}

func (c *Client) renderCommands(cmds []CommandView) {
	fmt.Fprintln(c.out, "\nCommands:")
	for _, cv := range cmds {
		fmt.Fprintf(c.out, "  %d) %s\n", cv.Index+1, cv.Desc)
	}
	fmt.Fprintln(c.out, "  q) save and quit")
}

// readChoice returns a 0-indexed choice, or false when the player quits or
// input ends.
func (c *Client) readChoice(count int) (int, bool) {
	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "q" || (err != nil && line == "") {
			return 0, false
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > count {
			fmt.Fprintf(c.out, "Enter a number between 1 and %d, or q\n", count)
			if err != nil {
				return 0, false
			}
			continue
		}
		return n - 1, true
	}
}
