package game

import (
	"context"
	"testing"

	"github.com/peterkuimelis/bladedeck/internal/log"
)

// fixedSource is a Source that replays scripted values. Once a script runs
// out, Intn returns n-1 (shuffles keep their order, parry rolls below 100%
// fail) and Float64 returns 0.5 (gold variance 1.0, drops fail).
type fixedSource struct {
	ints   []int
	floats []float64
}

func (s *fixedSource) Intn(n int) int {
	if len(s.ints) == 0 {
		return n - 1
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		v = n - 1
	}
	return v
}

func (s *fixedSource) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.5
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

// recordingPresenter keeps every beat it is asked to stage.
type recordingPresenter struct {
	beats  []Beat
	events []log.GameEvent
}

func (p *recordingPresenter) Notify(_ context.Context, ev log.GameEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPresenter) Beat(_ context.Context, beat Beat) error {
	p.beats = append(p.beats, beat)
	return nil
}

// --- Card and enemy helpers ---

func weaponCard(name string, attack, attackCount, durability int) *Card {
	return &Card{
		Name: name,
		Kind: CardWeapon,
		Weapon: &Weapon{
			Attack:            attack,
			AttackCount:       attackCount,
			Reach:             ReachSingle,
			Durability:        durability,
			CurrentDurability: durability,
			DrawAttack:        DrawAttack{Name: name + " Draw", Multiplier: 1, Reach: ReachSingle},
		},
	}
}

func attackCard(name string, mult float64, mana int) *Card {
	return &Card{
		Name: name,
		Kind: CardSkill,
		Skill: &Skill{
			Kind:             SkillAttack,
			AttackMultiplier: mult,
			AttackCount:      1,
			Reach:            ReachWeapon,
			ManaCost:         mana,
		},
	}
}

func effectCard(name string, kind SkillKind, mana int, eff Effect) *Card {
	return &Card{
		Name: name,
		Kind: CardSkill,
		Skill: &Skill{
			Kind:             kind,
			AttackMultiplier: 1,
			AttackCount:      1,
			Reach:            ReachWeapon,
			ManaCost:         mana,
			Effect:           &eff,
		},
	}
}

// waitCard is a free non-swift skill with no effect on the board.
func waitCard() *Card {
	return effectCard("Breathe", SkillBuff, 0, Effect{Kind: EffectAttackUp, Value: 0, Duration: 1})
}

func swiftCard() *Card {
	c := effectCard("Quickstep", SkillBuff, 0, Effect{Kind: EffectAttackUp, Value: 0, Duration: 1})
	c.Skill.Swift = true
	return c
}

func action(name string, damage, delay int) EnemyAction {
	return EnemyAction{Name: name, Damage: damage, HitCount: 1, Delay: delay}
}

// makeEnemy builds a live enemy with its action queue armed.
func makeEnemy(b *Battle, name string, hp, defense int, actions ...EnemyAction) *Enemy {
	if len(actions) == 0 {
		actions = []EnemyAction{action("Idle", 0, 99)}
	}
	e := &Enemy{
		ID:      b.newID(),
		Name:    name,
		HP:      hp,
		MaxHP:   hp,
		Defense: defense,
		Pattern: actions,
		Bleed:   []Status{},
		Poison:  []Status{},
	}
	for i := range e.Pattern {
		e.Pattern[i].Slot = i
		e.Actions = append(e.Actions, e.armed(i))
	}
	return e
}

func testContent() *Content {
	c := &Content{
		Cards: map[string]*Card{
			"Practice Sword": weaponCard("Practice Sword", 5, 1, 10),
			"Slash":          attackCard("Slash", 1, 1),
			"Whetstone":      effectCard("Whetstone", SkillSpecial, 1, Effect{Kind: EffectSharpen, Value: 3}),
		},
		Enemies: map[string]*Enemy{
			"dummy": {Name: "Dummy", MaxHP: 30, Pattern: []EnemyAction{action("Swipe", 3, 2)}},
			"imp":   {Name: "Imp", MaxHP: 8, Pattern: []EnemyAction{action("Scratch", 1, 1)}},
		},
		Waves:          []Wave{{Enemies: []string{"dummy"}}, {Enemies: []string{"dummy", "imp"}}},
		StartingWeapon: "Practice Sword",
		StartingDeck:   []CardEntry{{Name: "Slash", Count: 6}, {Name: "Whetstone", Count: 2}},
		RewardPool:     []string{"Slash", "Whetstone"},
	}
	if err := c.Validate(); err != nil {
		panic(err)
	}
	return c
}

// newTestBattle returns a battle already in combat on turn 1, with an empty
// hand, bare hands and the given enemies.
func newTestBattle(t *testing.T, setup func(b *Battle) []*Enemy) (*Battle, *log.MemoryLogger) {
	t.Helper()
	logger := log.NewMemoryLogger()
	b, err := NewBattle(Config{
		Content:   testContent(),
		Logger:    logger,
		Source:    &fixedSource{},
		NoShuffle: true,
	})
	if err != nil {
		t.Fatalf("NewBattle: %v", err)
	}
	b.Player.Deck = b.Player.Deck[:0]
	b.Player.Sword = nil
	b.phase.Force(PhaseCombat)
	b.State.Turn = 1
	if setup != nil {
		b.State.Enemies = append(b.State.Enemies, setup(b)...)
	}
	return b, logger
}

// give puts cards in the player's hand with fresh IDs.
func give(b *Battle, cards ...*Card) {
	for _, c := range cards {
		c.ID = b.newID()
		b.Player.Hand = append(b.Player.Hand, c)
	}
}

// wield equips a weapon card without a draw-attack.
func wield(b *Battle, c *Card) {
	c.ID = b.newID()
	b.Player.Sword = c
}

func mustUse(t *testing.T, b *Battle, index int) {
	t.Helper()
	if err := b.UseCard(context.Background(), index); err != nil {
		t.Fatalf("UseCard(%d): %v", index, err)
	}
}

func damageEvents(logger *log.MemoryLogger, target int) []log.GameEvent {
	var out []log.GameEvent
	for _, e := range logger.EventsOfType(log.EventDamage) {
		if e.Target == target {
			out = append(out, e)
		}
	}
	return out
}
