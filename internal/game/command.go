package game

import (
	"context"
	"fmt"
)

// --- Commands ---

type CommandType int

const (
	CommandUseCard CommandType = iota
	CommandSelectTarget
	CommandCancelTargeting
	CommandEndTurn
	CommandToggleExchange
	CommandChooseReward
	CommandSkipReward
	CommandChoosePassive
	CommandNextWave
	CommandStartCombat
	CommandPause
	CommandResume
)

var commandNames = []string{
	"use_card", "select_target", "cancel_targeting", "end_turn", "toggle_exchange",
	"choose_reward", "skip_reward", "choose_passive", "next_wave", "start_combat",
	"pause", "resume",
}

func (c CommandType) String() string               { return enumString(commandNames, int(c)) }
func (c CommandType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
func (c *CommandType) UnmarshalText(b []byte) error {
	v, err := parseEnum("command", commandNames, b)
	*c = CommandType(v)
	return err
}

// Command is one player input with everything needed to execute it.
// Index is the hand, reward or passive position; Target is an enemy ID.
type Command struct {
	Type   CommandType `json:"type"`
	Index  int         `json:"index,omitempty"`
	Target int         `json:"target,omitempty"`
	Desc   string      `json:"desc,omitempty"` // human-readable description
}

func (c Command) String() string {
	if c.Desc != "" {
		return c.Desc
	}
	return c.Type.String()
}

// Execute dispatches a command to the matching battle operation.
func (b *Battle) Execute(ctx context.Context, cmd Command) error {
	switch cmd.Type {
	case CommandUseCard:
		return b.UseCard(ctx, cmd.Index)
	case CommandSelectTarget:
		return b.SelectTarget(ctx, cmd.Target)
	case CommandCancelTargeting:
		return b.CancelTargeting(ctx)
	case CommandEndTurn:
		return b.EndTurn(ctx)
	case CommandToggleExchange:
		return b.ToggleExchangeMode(ctx)
	case CommandChooseReward:
		return b.ChooseReward(ctx, cmd.Index)
	case CommandSkipReward:
		return b.SkipReward(ctx)
	case CommandChoosePassive:
		return b.ChoosePassive(ctx, cmd.Index)
	case CommandNextWave:
		return b.NextWave(ctx)
	case CommandStartCombat:
		return b.StartCombat(ctx)
	case CommandPause:
		return b.Pause(ctx)
	case CommandResume:
		return b.Resume(ctx)
	default:
		return fmt.Errorf("unknown command %d", cmd.Type)
	}
}

// Commands lists the commands the player can issue right now, in menu
// order. Commands that would be rejected for lack of mana or durability are
// still listed; the battle explains the rejection.
func (b *Battle) Commands() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()

	p := b.Player
	gs := b.State
	var cmds []Command
	passives := func() {
		for i, k := range gs.PassiveChoices {
			cmds = append(cmds, Command{Type: CommandChoosePassive, Index: i, Desc: "Learn " + k.String()})
		}
	}

	switch gs.Phase {
	case PhaseGameOver:
		return nil
	case PhasePaused:
		return []Command{{Type: CommandResume, Desc: "Resume"}}
	case PhaseRunning, PhaseEvent:
		passives()
		cmds = append(cmds,
			Command{Type: CommandStartCombat, Desc: fmt.Sprintf("Start wave %d", gs.CurrentWave)},
			Command{Type: CommandPause, Desc: "Pause"})
	case PhaseVictory:
		for i, c := range gs.Rewards {
			cmds = append(cmds, Command{Type: CommandChooseReward, Index: i, Desc: "Take " + c.DisplayString()})
		}
		if len(gs.Rewards) > 0 {
			cmds = append(cmds, Command{Type: CommandSkipReward, Desc: "Skip rewards"})
		}
		passives()
		cmds = append(cmds,
			Command{Type: CommandNextWave, Desc: "Continue to the next wave"},
			Command{Type: CommandPause, Desc: "Pause"})
	case PhaseCombat:
		if b.Selection != nil {
			for _, e := range gs.legalTargets() {
				cmds = append(cmds, Command{
					Type:   CommandSelectTarget,
					Target: e.ID,
					Desc:   fmt.Sprintf("Target %s (%d/%d HP)", e.Name, e.HP, e.MaxHP),
				})
			}
			return append(cmds, Command{Type: CommandCancelTargeting, Desc: "Cancel targeting"})
		}
		verb := "Use"
		if p.ExchangeMode {
			verb = "Exchange"
		}
		for i, c := range p.Hand {
			cmds = append(cmds, Command{Type: CommandUseCard, Index: i, Desc: verb + " " + c.DisplayString()})
		}
		if !p.ExchangeUsed {
			desc := "Exchange a card"
			if p.ExchangeMode {
				desc = "Stop exchanging"
			}
			cmds = append(cmds, Command{Type: CommandToggleExchange, Desc: desc})
		}
		passives()
		cmds = append(cmds,
			Command{Type: CommandEndTurn, Desc: "End turn"},
			Command{Type: CommandPause, Desc: "Pause"})
	}
	return cmds
}
