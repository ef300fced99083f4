package net

import "github.com/peterkuimelis/bladedeck/internal/game"

// Message types for the JSON protocol over TCP and WebSocket.

// Server → client message types.
const (
	MsgWelcome  = "welcome"
	MsgNotify   = "notify"
	MsgState    = "state"
	MsgRejected = "rejected"
	MsgGameOver = "game_over"
)

// Client → server message types.
const (
	MsgJoin    = "join"
	MsgCommand = "command"
	MsgQuit    = "quit"
)

// --- Server → Client messages ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "welcome"
	Session  string `json:"session,omitempty"`
	Restored bool   `json:"restored,omitempty"`

	// For "notify"
	Event *EventView `json:"event,omitempty"`

	// For "state"
	State    *StateView    `json:"state,omitempty"`
	Commands []CommandView `json:"commands,omitempty"`

	// For "rejected"
	Message string `json:"message,omitempty"`

	// For "game_over"
	Score int `json:"score,omitempty"`
	Wave  int `json:"wave,omitempty"`
}

// EventView is a simplified battle event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Turn    int    `json:"turn"`
	Wave    int    `json:"wave"`
	Phase   string `json:"phase"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Target  int    `json:"target,omitempty"`
	Amount  int    `json:"amount,omitempty"`
	Details string `json:"details"`
}

// CommandView is a numbered command choice.
type CommandView struct {
	Index   int          `json:"index"`
	Desc    string       `json:"desc"`
	Command game.Command `json:"command"`
}

// StateView is the battle as the player sees it.
type StateView struct {
	Phase          string      `json:"phase"`
	Wave           int         `json:"wave"`
	Turn           int         `json:"turn"`
	Score          int         `json:"score"`
	Player         PlayerView  `json:"player"`
	Enemies        []EnemyView `json:"enemies"`
	Targeting      string      `json:"targeting,omitempty"` // card awaiting a target
	Rewards        []string    `json:"rewards,omitempty"`
	PassiveChoices []string    `json:"passive_choices,omitempty"`
}

// PlayerView shows the player's side of the battle.
type PlayerView struct {
	HP           int      `json:"hp"`
	MaxHP        int      `json:"max_hp"`
	Mana         int      `json:"mana"`
	MaxMana      int      `json:"max_mana"`
	Shield       int      `json:"shield"`
	Level        int      `json:"level"`
	Exp          int      `json:"exp"`
	Gold         int      `json:"gold"`
	Weapon       string   `json:"weapon,omitempty"`
	Hand         []string `json:"hand"`
	DeckCount    int      `json:"deck_count"`
	DiscardCount int      `json:"discard_count"`
	Buffs        []string `json:"buffs,omitempty"`
	CountEffects []string `json:"count_effects,omitempty"`
	Passives     []string `json:"passives,omitempty"`
	ExchangeMode bool     `json:"exchange_mode,omitempty"`
}

// EnemyView describes one enemy in roster order.
type EnemyView struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	HP      int      `json:"hp"`
	MaxHP   int      `json:"max_hp"`
	Defense int      `json:"defense"`
	Next    string   `json:"next,omitempty"`
	Delay   int      `json:"delay"`
	Status  []string `json:"status,omitempty"`
	Boss    bool     `json:"boss,omitempty"`
}

// --- Client → Server messages ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"`

	// For "command"
	Command *game.Command `json:"command,omitempty"`

	// For "join" (initial handshake)
	Loadout int    `json:"loadout,omitempty"`
	Session string `json:"session,omitempty"` // resume this session when set
}
