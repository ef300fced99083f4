package game

import (
	"context"
	"testing"

	"github.com/peterkuimelis/bladedeck/internal/log"
)

// stock gives cards battle IDs without placing them anywhere.
func stock(b *Battle, cards ...*Card) []*Card {
	for _, c := range cards {
		c.ID = b.newID()
	}
	return cards
}

func inPile(pile []*Card, c *Card) bool {
	for _, x := range pile {
		if x.ID == c.ID {
			return true
		}
	}
	return false
}

func twoDummies(b *Battle) []*Enemy {
	return []*Enemy{makeEnemy(b, "Left", 30, 0), makeEnemy(b, "Right", 30, 0)}
}

func TestSharpenCardRestoresDurability(t *testing.T) {
	b, logger := newTestBattle(t, twoDummies)
	blade := weaponCard("Blade", 5, 1, 10)
	blade.Weapon.CurrentDurability = 4
	wield(b, blade)
	whetstone := effectCard("Whetstone", SkillSpecial, 0, Effect{Kind: EffectSharpen, Value: 4})
	whetstone.Skill.Swift = true
	give(b, whetstone)

	mustUse(t, b, 0)
	if b.Selection != nil {
		t.Fatal("a sharpen card should not ask for a target")
	}
	if d := blade.Weapon.CurrentDurability; d != 8 {
		t.Errorf("durability = %d, want 8", d)
	}
	if n := len(logger.EventsOfType(log.EventDamage)); n != 0 {
		t.Errorf("sharpening dealt %d hits", n)
	}
	if !inPile(b.Player.Discard, whetstone) {
		t.Error("the whetstone should be discarded")
	}
}

func TestSharpenCardWithWornWeapon(t *testing.T) {
	b, _ := newTestBattle(t, twoDummies)
	blade := weaponCard("Blade", 5, 1, 10)
	blade.Weapon.CurrentDurability = 0
	wield(b, blade)
	give(b, effectCard("Whetstone", SkillSpecial, 0, Effect{Kind: EffectSharpen, Value: 3}))

	mustUse(t, b, 0)
	if d := blade.Weapon.CurrentDurability; d != 3 {
		t.Errorf("durability = %d, want 3", d)
	}
}

func TestSearchSwordCard(t *testing.T) {
	b, logger := newTestBattle(t, twoDummies)
	blade := weaponCard("Blade", 5, 1, 10)
	wield(b, blade)
	spare := weaponCard("Spare", 4, 1, 8)
	filler := attackCard("Slash", 1, 1)
	b.Player.Deck = append(b.Player.Deck, stock(b, spare, filler)...)
	give(b, effectCard("Armory Search", SkillSpecial, 1, Effect{Kind: EffectSearchSword}))
	before := b.Player.CardCount()

	mustUse(t, b, 0)
	if !inPile(b.Player.Hand, spare) {
		t.Fatal("the weapon should be in hand")
	}
	if len(b.Player.Deck) != 1 || b.Player.Deck[0] != filler {
		t.Errorf("deck = %v, want only the filler", b.Player.Deck)
	}
	if got := b.Player.CardCount(); got != before {
		t.Errorf("card count %d -> %d", before, got)
	}
	if d := blade.Weapon.CurrentDurability; d != 10 {
		t.Errorf("searching wore the weapon to %d", d)
	}
	if n := len(logger.EventsOfType(log.EventDamage)); n != 0 {
		t.Errorf("searching dealt %d hits", n)
	}
}

func TestGraveEquipCard(t *testing.T) {
	var enemy *Enemy
	b, _ := newTestBattle(t, func(b *Battle) []*Enemy {
		enemy = makeEnemy(b, "Dummy", 50, 0)
		return []*Enemy{enemy}
	})
	blade := weaponCard("Blade", 5, 1, 10)
	wield(b, blade)
	old := weaponCard("Old Sword", 7, 1, 10)
	old.Weapon.CurrentDurability = 6
	b.Player.Discard = append(b.Player.Discard, stock(b, old)...)
	recall := effectCard("Recall", SkillSpecial, 1, Effect{Kind: EffectGraveEquip})
	give(b, recall)
	before := b.Player.CardCount()

	mustUse(t, b, 0)
	if b.Player.Sword != old {
		t.Fatalf("sword = %v, want Old Sword", b.Player.Sword)
	}
	if !inPile(b.Player.Discard, blade) || !inPile(b.Player.Discard, recall) {
		t.Error("the replaced weapon and the card should be discarded")
	}
	if inPile(b.Player.Discard, old) {
		t.Error("the recovered weapon is still in the discard")
	}
	if got := b.Player.CardCount(); got != before {
		t.Errorf("card count %d -> %d", before, got)
	}
	if enemy.HP != 43 {
		t.Errorf("enemy hp = %d, want 43 after the draw-attack", enemy.HP)
	}
}

func TestGraveRecallCard(t *testing.T) {
	b, _ := newTestBattle(t, twoDummies)
	b.Player.Deck = append(b.Player.Deck, stock(b, attackCard("Slash", 1, 1))...)
	b.Player.Discard = append(b.Player.Discard, stock(b, attackCard("Slash", 1, 1), attackCard("Slash", 1, 1))...)
	recall := effectCard("Second Wind", SkillSpecial, 0, Effect{Kind: EffectGraveRecall})
	give(b, recall)
	before := b.Player.CardCount()

	mustUse(t, b, 0)
	if len(b.Player.Deck) != 3 {
		t.Errorf("deck = %d cards, want 3", len(b.Player.Deck))
	}
	if len(b.Player.Discard) != 1 || b.Player.Discard[0] != recall {
		t.Errorf("discard should hold only the used card, got %v", b.Player.Discard)
	}
	if got := b.Player.CardCount(); got != before {
		t.Errorf("card count %d -> %d", before, got)
	}
}

func TestGraveDrawTopCard(t *testing.T) {
	b, _ := newTestBattle(t, twoDummies)
	bottom := attackCard("Slash", 1, 1)
	top := attackCard("Thrust", 1, 1)
	b.Player.Discard = append(b.Player.Discard, stock(b, bottom, top)...)
	give(b, effectCard("Scavenge", SkillSpecial, 0, Effect{Kind: EffectGraveDrawTop}))
	before := b.Player.CardCount()

	mustUse(t, b, 0)
	if len(b.Player.Hand) != 1 || b.Player.Hand[0] != top {
		t.Fatalf("hand = %v, want the top discard", b.Player.Hand)
	}
	if !inPile(b.Player.Discard, bottom) || inPile(b.Player.Discard, top) {
		t.Error("only the top discard should leave the pile")
	}
	if got := b.Player.CardCount(); got != before {
		t.Errorf("card count %d -> %d", before, got)
	}
}

func TestDrawCards(t *testing.T) {
	b, logger := newTestBattle(t, twoDummies)
	wield(b, weaponCard("Blade", 5, 1, 10))
	b.Player.Deck = append(b.Player.Deck, stock(b, attackCard("A", 1, 1), attackCard("B", 1, 1), attackCard("C", 1, 1))...)
	give(b,
		effectCard("Study", SkillSpecial, 0, Effect{Kind: EffectDraw, Value: 2}),
		effectCard("Insight", SkillDraw, 0, Effect{Kind: EffectDraw, Value: 1}),
	)

	mustUse(t, b, 0)
	if b.Selection != nil {
		t.Fatal("a draw card should not ask for a target")
	}
	if len(b.Player.Hand) != 3 || len(b.Player.Deck) != 1 {
		t.Fatalf("hand %d deck %d, want 3 and 1", len(b.Player.Hand), len(b.Player.Deck))
	}
	mustUse(t, b, 0)
	if len(b.Player.Hand) != 3 || len(b.Player.Deck) != 0 {
		t.Errorf("hand %d deck %d, want 3 and 0", len(b.Player.Hand), len(b.Player.Deck))
	}
	if n := len(logger.EventsOfType(log.EventDamage)); n != 0 {
		t.Errorf("drawing dealt %d hits", n)
	}
}

// A self-targeted effect on an attack skill applies after the strike.
func TestAttackSkillDrawsAfterStrike(t *testing.T) {
	var enemy *Enemy
	b, logger := newTestBattle(t, func(b *Battle) []*Enemy {
		enemy = makeEnemy(b, "Dummy", 50, 0)
		return []*Enemy{enemy}
	})
	wield(b, weaponCard("Blade", 5, 1, 10))
	b.Player.Deck = append(b.Player.Deck, stock(b, attackCard("Slash", 1, 1))...)
	give(b, effectCard("Quick Cut", SkillAttack, 1, Effect{Kind: EffectDraw, Value: 1}))

	mustUse(t, b, 0)
	if got := len(damageEvents(logger, enemy.ID)); got != 1 {
		t.Errorf("expected 1 hit, got %d", got)
	}
	if len(b.Player.Hand) != 1 || b.Player.Hand[0].Name != "Slash" {
		t.Errorf("hand = %v, want the drawn Slash", b.Player.Hand)
	}
}

func TestDestroyWeaponCard(t *testing.T) {
	var enemy *Enemy
	b, logger := newTestBattle(t, func(b *Battle) []*Enemy {
		enemy = makeEnemy(b, "Golem", 100, 0)
		return []*Enemy{enemy}
	})
	blade := weaponCard("Blade", 5, 1, 10)
	blade.Weapon.CurrentDurability = 6
	wield(b, blade)
	give(b, effectCard("Shatter Strike", SkillSpecial, 2, Effect{Kind: EffectDestroyWeapon, Value: 2}))
	before := b.Player.CardCount()

	mustUse(t, b, 0)
	if enemy.HP != 83 {
		t.Errorf("enemy hp = %d, want 83: 5 attack + 2 x 6 durability", enemy.HP)
	}
	if b.Player.Sword != nil {
		t.Error("the weapon should be destroyed")
	}
	if n := len(logger.EventsOfType(log.EventWeaponBroken)); n != 1 {
		t.Errorf("weapon broke %d times, want 1", n)
	}
	if got := b.Player.CardCount(); got != before-1 {
		t.Errorf("card count %d -> %d, want exactly one card lost", before, got)
	}
}

func TestBladeGrabCancelsArmedAction(t *testing.T) {
	var enemy *Enemy
	b, _ := newTestBattle(t, func(b *Battle) []*Enemy {
		enemy = makeEnemy(b, "Duelist", 50, 0, action("Lunge", 4, 5), action("Feint", 1, 5))
		return []*Enemy{enemy}
	})
	wield(b, weaponCard("Blade", 5, 1, 10))
	grab := effectCard("Blade Grab", SkillSpecial, 1, Effect{Kind: EffectBladeGrab})
	grab.Skill.Swift = true
	give(b, grab)

	mustUse(t, b, 0)
	if enemy.HP != 45 {
		t.Errorf("enemy hp = %d, want 45", enemy.HP)
	}
	if head := enemy.Head(); head == nil || head.Name != "Feint" {
		t.Errorf("armed action = %v, want Feint", head)
	}
}

// Hits that find every target dead cost no durability.
func TestNoWearAfterTargetsDie(t *testing.T) {
	var weak, strong *Enemy
	b, logger := newTestBattle(t, func(b *Battle) []*Enemy {
		weak = makeEnemy(b, "Weak", 5, 0)
		strong = makeEnemy(b, "Strong", 100, 0)
		return []*Enemy{weak, strong}
	})
	blade := weaponCard("Blade", 10, 3, 10)
	wield(b, blade)
	give(b, attackCard("Flurry", 1, 1))

	mustUse(t, b, 0)
	if err := b.SelectTarget(context.Background(), weak.ID); err != nil {
		t.Fatalf("SelectTarget: %v", err)
	}
	if weak.Alive() {
		t.Fatal("the weak enemy should be dead")
	}
	if got := len(damageEvents(logger, weak.ID)); got != 1 {
		t.Errorf("expected 1 landed hit, got %d", got)
	}
	if len(damageEvents(logger, strong.ID)) != 0 {
		t.Error("single reach should not spill onto the other enemy")
	}
	if d := blade.Weapon.CurrentDurability; d != 9 {
		t.Errorf("durability = %d, want 9", d)
	}
}
