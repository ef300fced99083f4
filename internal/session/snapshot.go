// Package session saves and restores battles as versioned JSON snapshots.
// A snapshot is accepted whole or not at all: any missing, malformed or
// inconsistent part makes it corrupt.
package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/peterkuimelis/bladedeck/internal/game"
)

// Version is the snapshot format this package writes and accepts.
const Version = 1

// ErrCorruptSnapshot wraps every reason a snapshot is refused.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Document is the on-disk shape of a snapshot.
type Document struct {
	Version     int               `json:"version"`
	Player      *game.PlayerState `json:"player"`
	Game        *game.GameState   `json:"game"`
	Selection   *game.Selection   `json:"selection"`
	NextID      int               `json:"next_id"`
	ResumePhase game.Phase        `json:"resume_phase"`
}

// Arrays that must be present and non-null, per object.
var (
	requiredTop    = []string{"version", "player", "game", "next_id"}
	requiredPlayer = []string{"hand", "deck", "discard", "buffs", "count_effects", "passives"}
	requiredGame   = []string{"enemies", "rewards", "passive_choices"}
	requiredEnemy  = []string{"actions", "pattern", "bleed", "poison"}
)

// Encode serializes the battle's current state.
func Encode(b *game.Battle) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	b.View(func(s game.Snapshot) {
		data, err = json.Marshal(Document{
			Version:     Version,
			Player:      s.Player,
			Game:        s.Game,
			Selection:   s.Selection,
			NextID:      s.NextID,
			ResumePhase: s.ResumePhase,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses and validates a snapshot.
func Decode(data []byte) (game.Snapshot, error) {
	if err := checkShape(data); err != nil {
		return game.Snapshot{}, err
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return game.Snapshot{}, corrupt("%v", err)
	}
	if err := validate(&doc); err != nil {
		return game.Snapshot{}, err
	}
	return game.Snapshot{
		Player:      doc.Player,
		Game:        doc.Game,
		Selection:   doc.Selection,
		NextID:      doc.NextID,
		ResumePhase: doc.ResumePhase,
	}, nil
}

// Restore decodes a snapshot and rebuilds its battle. cfg supplies the
// content and collaborators.
func Restore(cfg game.Config, data []byte) (*game.Battle, error) {
	snap, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return game.RestoreBattle(cfg, snap)
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrCorruptSnapshot}, args...)...)
}

// checkShape verifies required keys before decoding, since a missing array
// and an empty one decode the same.
func checkShape(data []byte) error {
	top, err := object(data, "snapshot")
	if err != nil {
		return err
	}
	if err := requireKeys(top, "snapshot", requiredTop, false); err != nil {
		return err
	}
	player, err := object(top["player"], "player")
	if err != nil {
		return err
	}
	if err := requireKeys(player, "player", requiredPlayer, true); err != nil {
		return err
	}
	gs, err := object(top["game"], "game")
	if err != nil {
		return err
	}
	if err := requireKeys(gs, "game", requiredGame, true); err != nil {
		return err
	}
	var enemies []json.RawMessage
	if err := json.Unmarshal(gs["enemies"], &enemies); err != nil {
		return corrupt("game.enemies: %v", err)
	}
	for i, raw := range enemies {
		name := fmt.Sprintf("game.enemies[%d]", i)
		e, err := object(raw, name)
		if err != nil {
			return err
		}
		if err := requireKeys(e, name, requiredEnemy, true); err != nil {
			return err
		}
	}
	return nil
}

func object(data []byte, name string) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, corrupt("%s: %v", name, err)
	}
	if m == nil {
		return nil, corrupt("%s is null", name)
	}
	return m, nil
}

func requireKeys(m map[string]json.RawMessage, name string, keys []string, arrays bool) error {
	for _, k := range keys {
		raw, ok := m[k]
		if !ok {
			return corrupt("%s.%s is missing", name, k)
		}
		raw = bytes.TrimSpace(raw)
		if bytes.Equal(raw, []byte("null")) {
			return corrupt("%s.%s is null", name, k)
		}
		if arrays && (len(raw) == 0 || raw[0] != '[') {
			return corrupt("%s.%s is not an array", name, k)
		}
	}
	return nil
}
