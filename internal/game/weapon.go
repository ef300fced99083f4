package game

import (
	"go.uber.org/zap"

	"github.com/peterkuimelis/bladedeck/internal/log"
)

// weapon returns the equipped weapon, or nil when bare-handed.
func (b *Battle) weapon() *Weapon {
	if b.Player.Sword == nil {
		return nil
	}
	return b.Player.Sword.Weapon
}

// equip puts a weapon card in hand position. The previous weapon goes to the
// discard pile with whatever durability it has left.
func (b *Battle) equip(card *Card) {
	p := b.Player
	if old := p.Sword; old != nil {
		p.SendToDiscard(old)
	}
	p.Sword = card
	b.emit(log.NewEquipEvent(card.Name, card.Weapon.CurrentDurability))
	b.zap.Debug("weapon equipped", zap.Int("card_id", card.ID), zap.String("card", card.Name))
}

// equipFromHand equips a weapon from hand and performs its draw-attack,
// asking for a target when the choice matters. Swift: nothing ticks.
func (b *Battle) equipFromHand(card *Card) {
	b.Player.RemoveFromHand(card)
	b.equip(card)
	b.emitHand()

	if len(b.State.legalTargets()) == 0 {
		return
	}
	tier := ResolveReach(card.Weapon.DrawAttack.Reach, card.Weapon)
	if b.needsTarget(tier) {
		b.Selection = &Selection{CardID: card.ID, Weapon: true}
		b.emit(log.NewTargetingStartEvent(card.Name, len(b.State.legalTargets())))
		return
	}
	b.drawAttack(card, b.defaultTarget())
}

// drawAttack performs the strike a weapon makes on being drawn.
func (b *Battle) drawAttack(card *Card, target *Enemy) {
	w := card.Weapon
	da := w.DrawAttack
	name := da.Name
	if name == "" {
		name = card.Name
	}
	b.emit(log.NewDrawAttackEvent(card.Name, name))
	mult := da.Multiplier
	if mult <= 0 {
		mult = 1
	}
	b.strike(&strike{
		name:        name,
		multiplier:  mult,
		hits:        1,
		tier:        ResolveReach(da.Reach, w),
		base:        target,
		beat:        BeatDrawAttack,
		crit:        da.Critical,
		critMult:    da.CritMultiplier,
		ignoreArmor: da.Pierce,
		perHit:      da.effects(),
	})
	if da.DurabilityCost > 0 && b.Player.Sword == card {
		b.wearWeapon(da.DurabilityCost)
	}
	b.emitStats()
}

// wearWeapon takes durability off the equipped weapon, breaking it at 0.
func (b *Battle) wearWeapon(n int) {
	card := b.Player.Sword
	if card == nil || n <= 0 {
		return
	}
	w := card.Weapon
	w.CurrentDurability -= n
	if w.CurrentDurability < 0 {
		w.CurrentDurability = 0
	}
	if w.CurrentDurability == 0 {
		b.breakWeapon()
	}
}

// breakWeapon destroys the equipped weapon. Calling it bare-handed is a
// no-op, so a weapon is only ever lost once.
func (b *Battle) breakWeapon() {
	card := b.Player.Sword
	if card == nil {
		return
	}
	card.Weapon.CurrentDurability = 0
	b.Player.Sword = nil
	b.emit(log.NewWeaponBrokenEvent(card.Name))
	b.zap.Debug("weapon broken", zap.Int("card_id", card.ID), zap.String("card", card.Name))
}

// sharpen restores durability up to the weapon's maximum.
func (b *Battle) sharpen(n int) {
	card := b.Player.Sword
	if card == nil || n <= 0 {
		return
	}
	w := card.Weapon
	w.CurrentDurability += n
	if w.CurrentDurability > w.Durability {
		w.CurrentDurability = w.Durability
	}
	b.message("%s sharpened (%d/%d)", card.Name, w.CurrentDurability, w.Durability)
}
