package game

// HitEffects are the atomic status changes one strike applies to an enemy.
// Weapon on-hit effects, draw-attacks and skill effects all go through
// ResolveEffects so the rules live in one place.
type HitEffects struct {
	Bleed          *Status
	Poison         *Status
	ArmorReduction int
	DelayIncrease  int
	Stun           int
	Cancel         bool // rotate the armed action away without running it
}

// Empty reports whether applying fx would change nothing.
func (fx HitEffects) Empty() bool {
	return fx.Bleed == nil && fx.Poison == nil && fx.ArmorReduction == 0 &&
		fx.DelayIncrease == 0 && fx.Stun == 0 && !fx.Cancel
}

// EffectReport describes what ResolveEffects changed.
type EffectReport struct {
	BleedAdded   bool
	PoisonAdded  bool
	ArmorReduced int
	DelayAdded   int
	Stunned      int
	Cancelled    string // name of the cancelled action
}

// ResolveEffects applies fx to a live enemy. Bleed and poison append new
// stacks, armor reduction is permanent and floors at 0, delay increases
// land on the armed action.
func ResolveEffects(e *Enemy, fx HitEffects) EffectReport {
	var r EffectReport
	if e == nil || !e.Alive() {
		return r
	}
	if fx.Bleed != nil && fx.Bleed.Damage > 0 && fx.Bleed.Duration > 0 {
		e.Bleed = append(e.Bleed, *fx.Bleed)
		r.BleedAdded = true
	}
	if fx.Poison != nil && fx.Poison.Damage > 0 && fx.Poison.Duration > 0 {
		e.Poison = append(e.Poison, *fx.Poison)
		r.PoisonAdded = true
	}
	if fx.ArmorReduction > 0 {
		before := e.Defense
		e.Defense -= fx.ArmorReduction
		if e.Defense < 0 {
			e.Defense = 0
		}
		r.ArmorReduced = before - e.Defense
	}
	if fx.Stun > 0 {
		e.Stun += fx.Stun
		r.Stunned = fx.Stun
	}
	if fx.Cancel {
		if head := e.Head(); head != nil {
			r.Cancelled = head.Name
			e.Rotate()
		}
	}
	if fx.DelayIncrease != 0 {
		if head := e.Head(); head != nil {
			head.CurrentDelay += fx.DelayIncrease
			r.DelayAdded = fx.DelayIncrease
		}
	}
	return r
}

// tickStatuses deals one round of bleed then poison damage, ignoring
// defense, and drops expired stacks. Returns the damage per status.
func tickStatuses(e *Enemy) (bleed, poison int) {
	bleed, e.Bleed = tickStacks(e, e.Bleed)
	poison, e.Poison = tickStacks(e, e.Poison)
	return bleed, poison
}

func tickStacks(e *Enemy, stacks []Status) (int, []Status) {
	total := 0
	kept := stacks[:0]
	for _, s := range stacks {
		e.HP -= s.Damage
		total += s.Damage
		s.Duration--
		if s.Duration > 0 {
			kept = append(kept, s)
		}
	}
	return total, kept
}

// effects converts a weapon's persistent on-hit effects.
func (o OnHit) effects() HitEffects {
	return HitEffects{
		Bleed:          o.Bleed,
		Poison:         o.Poison,
		ArmorReduction: o.ArmorBreak,
		DelayIncrease:  o.DelayIncrease,
	}
}

// effects converts a draw-attack's per-hit effects.
func (d DrawAttack) effects() HitEffects {
	return HitEffects{
		Bleed:          d.Bleed,
		Poison:         d.Poison,
		ArmorReduction: d.ArmorReduction,
		DelayIncrease:  d.DelayIncrease,
		Cancel:         d.SkillCancel,
	}
}

// skillEffects converts a skill effect into the enemy-side part it applies
// once per struck target after the hits land.
func skillEffects(eff *Effect) HitEffects {
	if eff == nil {
		return HitEffects{}
	}
	switch eff.Kind {
	case EffectStun:
		return HitEffects{Stun: eff.Value}
	case EffectBleed:
		return HitEffects{Bleed: &Status{Damage: eff.Value, Duration: eff.Duration}}
	case EffectPoison:
		return HitEffects{Poison: &Status{Damage: eff.Value, Duration: eff.Duration}}
	case EffectArmorBreaker:
		return HitEffects{ArmorReduction: eff.Value}
	case EffectDelayUp:
		return HitEffects{DelayIncrease: eff.Value}
	case EffectBladeGrab:
		return HitEffects{Cancel: true}
	default:
		return HitEffects{}
	}
}
