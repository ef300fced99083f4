package net

import (
	"fmt"

	"github.com/peterkuimelis/bladedeck/internal/game"
	"github.com/peterkuimelis/bladedeck/internal/log"
)

// BuildStateView creates a StateView from a battle snapshot.
func BuildStateView(s game.Snapshot) *StateView {
	p := s.Player
	gs := s.Game
	sv := &StateView{
		Phase:   gs.Phase.String(),
		Wave:    gs.CurrentWave,
		Turn:    gs.Turn,
		Score:   gs.Score,
		Enemies: []EnemyView{},
	}

	sv.Player = PlayerView{
		HP:           p.HP,
		MaxHP:        p.MaxHP,
		Mana:         p.Mana,
		MaxMana:      p.MaxMana,
		Shield:       p.Defense,
		Level:        p.Level,
		Exp:          p.Exp,
		Gold:         p.Gold,
		Hand:         []string{},
		DeckCount:    len(p.Deck),
		DiscardCount: len(p.Discard),
		ExchangeMode: p.ExchangeMode,
	}
	if p.Sword != nil {
		sv.Player.Weapon = p.Sword.DisplayString()
	}
	for _, c := range p.Hand {
		sv.Player.Hand = append(sv.Player.Hand, c.DisplayString())
	}
	for _, b := range p.Buffs {
		sv.Player.Buffs = append(sv.Player.Buffs, fmt.Sprintf("%s (%d)", b.Name, b.Duration))
	}
	for i, c := range p.CountEffects {
		desc := fmt.Sprintf("%s %s in %d", c.Kind, c.Name, c.Remaining)
		if i > 0 {
			desc += " (waiting)"
		}
		sv.Player.CountEffects = append(sv.Player.CountEffects, desc)
	}
	for _, ps := range p.Passives {
		sv.Player.Passives = append(sv.Player.Passives, fmt.Sprintf("%s %d", ps.Kind, ps.Level))
	}

	for _, e := range gs.Enemies {
		ev := EnemyView{
			ID:      e.ID,
			Name:    e.Name,
			HP:      e.HP,
			MaxHP:   e.MaxHP,
			Defense: e.Defense,
			Boss:    e.Boss,
		}
		if head := e.Head(); head != nil {
			ev.Next = head.Name
			ev.Delay = head.CurrentDelay
		}
		if e.Stun > 0 {
			ev.Status = append(ev.Status, fmt.Sprintf("stun %d", e.Stun))
		}
		if e.Taunt {
			ev.Status = append(ev.Status, fmt.Sprintf("taunt %d", e.TauntDuration))
		}
		for _, st := range e.Bleed {
			ev.Status = append(ev.Status, fmt.Sprintf("bleed %d/%d", st.Damage, st.Duration))
		}
		for _, st := range e.Poison {
			ev.Status = append(ev.Status, fmt.Sprintf("poison %d/%d", st.Damage, st.Duration))
		}
		sv.Enemies = append(sv.Enemies, ev)
	}

	if sel := s.Selection; sel != nil {
		if sel.Weapon && p.Sword != nil {
			sv.Targeting = p.Sword.Name
		} else if i := p.FindInHand(sel.CardID); i >= 0 {
			sv.Targeting = p.Hand[i].Name
		}
	}
	for _, c := range gs.Rewards {
		sv.Rewards = append(sv.Rewards, c.DisplayString())
	}
	for _, k := range gs.PassiveChoices {
		sv.PassiveChoices = append(sv.PassiveChoices, k.String())
	}
	return sv
}

// BuildCommandViews numbers the battle's legal commands.
func BuildCommandViews(cmds []game.Command) []CommandView {
	views := make([]CommandView, len(cmds))
	for i, c := range cmds {
		views[i] = CommandView{Index: i, Desc: c.String(), Command: c}
	}
	return views
}

// NewEventView converts a battle event for the wire.
func NewEventView(ev log.GameEvent) *EventView {
	return &EventView{
		Seq:     ev.Seq,
		Turn:    ev.Turn,
		Wave:    ev.Wave,
		Phase:   ev.Phase,
		Type:    ev.Type.String(),
		Card:    ev.Card,
		Target:  ev.Target,
		Amount:  ev.Amount,
		Details: ev.Details,
	}
}
