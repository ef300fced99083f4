package game

import (
	"math"

	"github.com/peterkuimelis/bladedeck/internal/log"
)

// resolveSupport applies a defense, buff, draw or utility skill. These never
// ask for a target; enemy-side effects land on the front-most legal enemy.
func (b *Battle) resolveSupport(card *Card, target *Enemy) {
	p := b.Player
	s := card.Skill
	eff := s.Effect
	if eff == nil {
		eff = &Effect{}
	}
	if target == nil {
		target = b.defaultTarget()
	}

	switch eff.Kind {
	case EffectCountDefense:
		b.registerCounter(card, CountCounter)
	case EffectFlowRead:
		b.registerCounter(card, CountFlowRead)
	case EffectFocus:
		b.addBuff(Buff{Kind: BuffFocus, Name: card.Name, Multiplier: eff.Multiplier, Duration: eff.Duration})
	case EffectAttackUp:
		b.addBuff(Buff{Kind: BuffAttack, Name: card.Name, Value: eff.Value, Duration: eff.Duration})
	case EffectParryUp:
		b.addBuff(Buff{Kind: BuffParry, Name: card.Name, Value: eff.Value, Duration: eff.Duration})
	case EffectDraw:
		n := eff.Value
		if n < 1 {
			n = 1
		}
		b.draw(n)
	case EffectSharpen:
		b.sharpen(eff.Value)
	case EffectSheathe:
		p.Defense += eff.Value
	case EffectTaunt:
		b.provoke(target, eff.Value)
	case EffectLifesteal:
		b.heal(eff.Value)
	case EffectSearchSword:
		b.searchSword()
	case EffectGraveRecall:
		b.graveRecall()
	case EffectGraveEquip:
		b.graveEquip()
	case EffectGraveDrawTop:
		b.graveDrawTop()
	case EffectStun, EffectBleed, EffectPoison, EffectArmorBreaker, EffectDelayUp, EffectBladeGrab:
		if target != nil {
			b.reportEffects(target, ResolveEffects(target, skillEffects(eff)))
		}
	case EffectNone:
		if s.Kind == SkillDefense {
			b.raiseShield(s, eff)
		}
	}
}

// raiseShield grants a plain defense skill's shield: its effect value, or
// the weapon's attack scaled by the skill multiplier.
func (b *Battle) raiseShield(s *Skill, eff *Effect) {
	shield := eff.Value
	if shield <= 0 {
		atk := b.Rules.BareHandAttack
		if w := b.weapon(); w != nil {
			atk = w.Attack
		}
		shield = int(math.Floor(float64(atk) * s.AttackMultiplier))
	}
	if shield > 0 {
		b.Player.Defense += shield
	}
}

func (b *Battle) addBuff(buff Buff) {
	if buff.Duration < 1 {
		buff.Duration = 1
	}
	b.Player.Buffs = append(b.Player.Buffs, buff)
	b.message("%s takes hold (%s, %d)", buff.Name, buff.Kind, buff.Duration)
}

// searchSword moves the top-most weapon in the deck to the hand.
func (b *Battle) searchSword() {
	p := b.Player
	for i := len(p.Deck) - 1; i >= 0; i-- {
		if c := p.Deck[i]; c.Kind == CardWeapon {
			p.RemoveFromDeck(c)
			p.Hand = append(p.Hand, c)
			b.emit(log.NewDrawEvent(c.Name))
			return
		}
	}
	b.message("No weapon left in the deck")
}

// graveRecall shuffles the discard pile back into the deck.
func (b *Battle) graveRecall() {
	p := b.Player
	if len(p.Discard) == 0 {
		return
	}
	p.Deck = append(p.Deck, p.Discard...)
	p.Discard = p.Discard[:0]
	ShuffleCards(p.Deck, b.rng)
	b.emit(log.NewShuffleEvent(len(p.Deck)))
}

// graveEquip equips the most recently discarded weapon and lets it perform
// its draw-attack on the front-most enemy.
func (b *Battle) graveEquip() {
	p := b.Player
	for i := len(p.Discard) - 1; i >= 0; i-- {
		c := p.Discard[i]
		if c.Kind != CardWeapon || c.Weapon.CurrentDurability <= 0 {
			continue
		}
		p.RemoveFromDiscard(c)
		b.equip(c)
		if target := b.defaultTarget(); target != nil {
			b.drawAttack(c, target)
		}
		return
	}
	b.message("No weapon to recover")
}

// graveDrawTop returns the most recent discard to the hand.
func (b *Battle) graveDrawTop() {
	p := b.Player
	if len(p.Discard) == 0 {
		return
	}
	c := p.Discard[len(p.Discard)-1]
	p.Discard = p.Discard[:len(p.Discard)-1]
	p.Hand = append(p.Hand, c)
	b.emit(log.NewDrawEvent(c.Name))
}
