package game

import (
	"math"

	"github.com/peterkuimelis/bladedeck/internal/log"
)

// Flow-read stage tables, indexed by ticks elapsed while armed.
var (
	flowDefenseScale = [5]float64{1.0, 1.25, 1.5, 1.75, 2.0}
	flowCounterScale = [5]float64{1.0, 1.5, 2.0, 2.5, 3.0}
)

const counterReflectRatio = 0.5

func (c *CountEffect) stage() int {
	switch {
	case c.Elapsed < 0:
		return 0
	case c.Elapsed >= len(flowDefenseScale):
		return len(flowDefenseScale) - 1
	default:
		return c.Elapsed
	}
}

// defenseScale returns the parry multiplier of a counter stance.
func (c *CountEffect) defenseScale() float64 {
	m := c.DefenseMultiplier
	if m <= 0 {
		m = 1
	}
	if c.Kind == CountFlowRead {
		m *= flowDefenseScale[c.stage()]
	}
	return m
}

// counterScale returns the counter-attack multiplier of a counter stance.
func (c *CountEffect) counterScale() float64 {
	m := c.CounterMultiplier
	if m <= 0 {
		m = 1
	}
	if c.Kind == CountFlowRead {
		m *= flowCounterScale[c.stage()]
	}
	return m
}

// IsCounter reports whether the effect is a counter stance of either family.
func (c *CountEffect) IsCounter() bool {
	return c.Kind == CountCounter || c.Kind == CountFlowRead
}

// activeCountEffect returns the head of the FIFO, the only live entry.
func (p *PlayerState) activeCountEffect() *CountEffect {
	if len(p.CountEffects) == 0 {
		return nil
	}
	return p.CountEffects[0]
}

func (p *PlayerState) removeCountEffect(id int) {
	for i, c := range p.CountEffects {
		if c.ID == id {
			p.CountEffects = append(p.CountEffects[:i], p.CountEffects[i+1:]...)
			return
		}
	}
}

// registerCountEffect appends an effect behind any already waiting.
func (b *Battle) registerCountEffect(c *CountEffect) {
	c.ID = b.newID()
	c.IsNew = true
	if c.Remaining < 1 {
		c.Remaining = 1
	}
	b.Player.CountEffects = append(b.Player.CountEffects, c)
	b.emit(log.NewCountEffectAddEvent(c.Name, c.Remaining))
}

// registerCharge snapshots a charge skill's formula. Damage is computed at
// payoff from whatever weapon is equipped then.
func (b *Battle) registerCharge(card *Card, target *Enemy) {
	s := card.Skill
	c := &CountEffect{
		Kind:          CountCharge,
		Name:          card.Name,
		Remaining:     s.Effect.Duration,
		Multiplier:    s.AttackMultiplier,
		HitMultiplier: s.AttackCount,
		Reach:         s.Reach,
	}
	if target != nil {
		c.TargetID = target.ID
	}
	b.registerCountEffect(c)
}

// registerCounter arms a counter stance from a defense skill.
func (b *Battle) registerCounter(card *Card, kind CountKind) {
	eff := card.Skill.Effect
	b.registerCountEffect(&CountEffect{
		Kind:              kind,
		Name:              card.Name,
		Remaining:         eff.Duration,
		DefenseMultiplier: eff.DefenseMultiplier,
		CounterAttack:     eff.CounterAttack,
		CounterMultiplier: eff.CounterMultiplier,
		ConsumeOnSuccess:  eff.ConsumeOnSuccess,
	})
}

// tickCountEffects advances the FIFO by one non-swift action. Only the head
// counts down, and not on the tick of the resolution that registered it.
// Every entry's new flag is consumed by this tick.
func (b *Battle) tickCountEffects() {
	p := b.Player
	head := p.activeCountEffect()
	if head == nil {
		return
	}
	headWasNew := head.IsNew
	for _, c := range p.CountEffects {
		c.IsNew = false
	}
	if headWasNew {
		return
	}
	head.Remaining--
	head.Elapsed++
	if head.Remaining > 0 {
		return
	}
	p.removeCountEffect(head.ID)
	switch head.Kind {
	case CountCharge:
		b.emit(log.NewCountEffectResolveEvent(head.Name, "unleashed"))
		b.payoffCharge(head)
	default:
		b.emit(log.NewCountEffectResolveEvent(head.Name, "expired"))
	}
}

// payoffCharge strikes with the weapon equipped right now.
func (b *Battle) payoffCharge(c *CountEffect) {
	weapon := b.weapon()
	weaponHits := 1
	if weapon != nil && weapon.AttackCount > 0 {
		weaponHits = weapon.AttackCount
	}
	mult := c.HitMultiplier
	if mult < 1 {
		mult = 1
	}
	base := b.State.FindEnemy(c.TargetID)
	if base == nil || !base.Alive() || !b.isLegalTarget(base) {
		base = nil
	}
	b.strike(&strike{
		name:       c.Name,
		multiplier: c.Multiplier,
		hits:       weaponHits * mult,
		tier:       ResolveReach(c.Reach, weapon),
		base:       base,
		beat:       BeatCountEffect,
	})
}

// parryRate returns the chance to parry the next hit and, when a counter
// stance is live, the stance that supplied it.
func (b *Battle) parryRate() (int, *CountEffect) {
	weaponParry := 0
	if w := b.weapon(); w != nil {
		weaponParry = w.ParryRate
	}
	var rate int
	var counter *CountEffect
	if head := b.Player.activeCountEffect(); head != nil && head.IsCounter() {
		counter = head
		rate = int(math.Floor(float64(weaponParry) * head.defenseScale()))
	} else {
		rate = weaponParry + b.Player.BuffTotal(BuffParry)
	}
	if rate > 100 {
		rate = 100
	}
	return rate, counter
}

// counterStrike answers a parried hit from a counter stance.
func (b *Battle) counterStrike(e *Enemy, c *CountEffect, incoming int) {
	if c.CounterAttack {
		atk := b.Rules.BareHandAttack
		if w := b.weapon(); w != nil {
			atk = w.Attack
		}
		dmg := int(math.Floor(float64(atk)*c.counterScale() + float64(incoming)*counterReflectRatio))
		if dmg > 0 {
			e.HP -= dmg
			b.emit(log.NewCounterEvent(e.ID, e.Name, dmg))
			if !e.Alive() {
				b.kill(e)
			}
		}
	}
	if c.ConsumeOnSuccess {
		b.Player.removeCountEffect(c.ID)
		b.emit(log.NewCountEffectResolveEvent(c.Name, "spent"))
	}
}
