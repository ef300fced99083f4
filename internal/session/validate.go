package session

import (
	"github.com/peterkuimelis/bladedeck/internal/game"
)

// validate checks the invariants a live battle always holds.
func validate(doc *Document) error {
	if doc.Version != Version {
		return corrupt("version %d, want %d", doc.Version, Version)
	}
	if doc.NextID < 0 {
		return corrupt("next_id %d is negative", doc.NextID)
	}
	ids := idSet{max: doc.NextID, seen: make(map[int]string)}
	gs := doc.Game
	if err := validateGame(gs, doc.ResumePhase); err != nil {
		return err
	}
	if err := validatePlayer(doc.Player, gs.Phase, &ids); err != nil {
		return err
	}
	for i, c := range gs.Rewards {
		if err := ids.card(c, "reward", i); err != nil {
			return err
		}
	}
	for i, e := range gs.Enemies {
		if err := validateEnemy(e, i, &ids); err != nil {
			return err
		}
	}
	return validateSelection(doc.Selection, doc.Player, gs.Phase)
}

// idSet tracks instance IDs; cards, enemies and count effects share one
// counter so no two may collide.
type idSet struct {
	max  int
	seen map[int]string
}

func (s *idSet) add(id int, what string) error {
	if id <= 0 || id > s.max {
		return corrupt("%s has id %d outside 1..%d", what, id, s.max)
	}
	if prev, ok := s.seen[id]; ok {
		return corrupt("%s reuses id %d of %s", what, id, prev)
	}
	s.seen[id] = what
	return nil
}

func (s *idSet) card(c *game.Card, pile string, i int) error {
	if c == nil {
		return corrupt("%s[%d] is null", pile, i)
	}
	if err := c.Validate(); err != nil {
		return corrupt("%s[%d]: %v", pile, i, err)
	}
	return s.add(c.ID, c.Name)
}

func validateGame(gs *game.GameState, resume game.Phase) error {
	if gs.Turn < 0 {
		return corrupt("turn %d is negative", gs.Turn)
	}
	if gs.CurrentWave < 1 {
		return corrupt("wave %d is not positive", gs.CurrentWave)
	}
	if gs.Score < 0 {
		return corrupt("score %d is negative", gs.Score)
	}
	if gs.Phase == game.PhasePaused && (resume == game.PhasePaused || resume == game.PhaseGameOver) {
		return corrupt("paused battle cannot resume to %s", resume)
	}
	if gs.Phase == game.PhaseCombat && len(gs.Enemies) == 0 {
		return corrupt("combat without enemies")
	}
	seen := make(map[game.PassiveKind]bool)
	for _, k := range gs.PassiveChoices {
		if seen[k] {
			return corrupt("passive %s offered twice", k)
		}
		seen[k] = true
	}
	return nil
}

func validatePlayer(p *game.PlayerState, phase game.Phase, ids *idSet) error {
	if p.MaxHP <= 0 || p.HP < 0 || p.HP > p.MaxHP {
		return corrupt("player hp %d/%d out of range", p.HP, p.MaxHP)
	}
	if p.HP == 0 && phase != game.PhaseGameOver {
		return corrupt("player has no hp while %s", phase)
	}
	if p.MaxMana < 0 || p.Mana < 0 || p.Mana > p.MaxMana {
		return corrupt("player mana %d/%d out of range", p.Mana, p.MaxMana)
	}
	if p.Defense < 0 || p.Gold < 0 || p.Exp < 0 || p.Level < 1 {
		return corrupt("player counters out of range")
	}
	if p.Sword != nil {
		if p.Sword.Kind != game.CardWeapon {
			return corrupt("equipped card %q is not a weapon", p.Sword.Name)
		}
		if err := ids.card(p.Sword, "sword", 0); err != nil {
			return err
		}
	}
	for _, pile := range []struct {
		name  string
		cards []*game.Card
	}{{"hand", p.Hand}, {"deck", p.Deck}, {"discard", p.Discard}} {
		for i, c := range pile.cards {
			if err := ids.card(c, pile.name, i); err != nil {
				return err
			}
		}
	}
	for i, b := range p.Buffs {
		if b.Duration < 0 {
			return corrupt("buff %d has negative duration", i)
		}
	}
	for i, c := range p.CountEffects {
		if c == nil {
			return corrupt("count_effects[%d] is null", i)
		}
		if c.Remaining < 1 || c.Elapsed < 0 {
			return corrupt("count effect %q has remaining %d elapsed %d", c.Name, c.Remaining, c.Elapsed)
		}
		if err := ids.add(c.ID, "count effect "+c.Name); err != nil {
			return err
		}
	}
	learned := make(map[game.PassiveKind]bool)
	for _, ps := range p.Passives {
		if ps.Level < 1 || ps.Level > ps.Kind.MaxLevel() {
			return corrupt("passive %s at level %d", ps.Kind, ps.Level)
		}
		if learned[ps.Kind] {
			return corrupt("passive %s listed twice", ps.Kind)
		}
		learned[ps.Kind] = true
	}
	return nil
}

func validateEnemy(e *game.Enemy, i int, ids *idSet) error {
	if e == nil {
		return corrupt("enemies[%d] is null", i)
	}
	if e.MaxHP <= 0 || e.HP < 0 || e.HP > e.MaxHP {
		return corrupt("enemy %q hp %d/%d out of range", e.Name, e.HP, e.MaxHP)
	}
	if e.Defense < 0 || e.Stun < 0 || e.TauntDuration < 0 || e.SummonCooldown < 0 {
		return corrupt("enemy %q counters out of range", e.Name)
	}
	if len(e.Actions) == 0 || len(e.Pattern) == 0 {
		return corrupt("enemy %q has no actions", e.Name)
	}
	for j, a := range e.Actions {
		if a == nil {
			return corrupt("enemy %q action %d is null", e.Name, j)
		}
		if a.Slot < 0 || a.Slot >= len(e.Pattern) {
			return corrupt("enemy %q action %q has slot %d outside its pattern", e.Name, a.Name, a.Slot)
		}
		if a.HitCount < 0 || a.Delay < 0 {
			return corrupt("enemy %q action %q out of range", e.Name, a.Name)
		}
	}
	for _, stacks := range [][]game.Status{e.Bleed, e.Poison} {
		for _, s := range stacks {
			if s.Duration <= 0 {
				return corrupt("enemy %q has an expired status stack", e.Name)
			}
		}
	}
	return ids.add(e.ID, "enemy "+e.Name)
}

func validateSelection(sel *game.Selection, p *game.PlayerState, phase game.Phase) error {
	if sel == nil {
		return nil
	}
	if phase != game.PhaseCombat && phase != game.PhasePaused {
		return corrupt("target selection pending while %s", phase)
	}
	if sel.ManaPaid < 0 {
		return corrupt("target selection paid %d mana", sel.ManaPaid)
	}
	if sel.Weapon {
		if p.Sword == nil || p.Sword.ID != sel.CardID {
			return corrupt("target selection references weapon %d which is not equipped", sel.CardID)
		}
		return nil
	}
	if p.FindInHand(sel.CardID) < 0 {
		return corrupt("target selection references card %d which is not in hand", sel.CardID)
	}
	return nil
}
