package game

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/peterkuimelis/bladedeck/internal/log"
)

// kill awards a defeated enemy and drops it from the roster. Calling it for
// an enemy already removed does nothing.
func (b *Battle) kill(e *Enemy) {
	if b.State.FindEnemy(e.ID) == nil {
		return
	}
	if e.HP > 0 {
		e.HP = 0
	}
	p := b.Player
	b.State.Score += e.MaxHP * 10
	if !e.Summoned {
		p.Exp += e.MaxHP / 2
	}
	gold := b.goldDrop(e)
	p.Gold += gold
	b.State.RemoveEnemy(e.ID)
	b.emit(log.NewEnemyKilledEvent(e.ID, e.Name, gold))
	b.zap.Debug("enemy killed",
		zap.Int("enemy_id", e.ID),
		zap.String("enemy", e.Name),
		zap.Int("gold", gold))

	chance := b.Rules.DropChance
	if e.Boss {
		chance = b.Rules.BossDropChance
	}
	if len(b.content.RewardPool) > 0 && b.rng.Float64() < chance {
		key := b.content.RewardPool[b.rng.Intn(len(b.content.RewardPool))]
		if card, err := b.content.NewCard(key, b.newID()); err == nil {
			p.Deck = append(p.Deck, card)
			b.message("%s dropped %s", e.Name, card.Name)
		}
	}
	b.checkLevelUp()
}

// goldDrop rolls the gold for a kill: base scaled by boss status and a
// ±30% variance, at least 1.
func (b *Battle) goldDrop(e *Enemy) int {
	base := e.MaxHP / b.Rules.GoldDivisor
	if base < 1 {
		base = 1
	}
	mult := 1.0
	if e.Boss {
		mult = 3
	}
	variance := 0.7 + 0.6*b.rng.Float64()
	gold := int(math.Floor(float64(base) * mult * variance))
	if gold < 1 {
		gold = 1
	}
	return gold
}

// checkLevelUp levels the player while experience allows and offers passives.
func (b *Battle) checkLevelUp() {
	p := b.Player
	leveled := false
	for p.Exp >= p.Level*b.Rules.ExpPerLevel {
		p.Exp -= p.Level * b.Rules.ExpPerLevel
		p.Level++
		leveled = true
		b.emit(log.NewLevelUpEvent(p.Level))
	}
	if leveled && len(b.State.PassiveChoices) == 0 {
		b.offerPassives()
	}
}

// offerPassives picks up to PassiveChoices passives not yet at their cap.
func (b *Battle) offerPassives() {
	var pool []PassiveKind
	for _, k := range AllPassives() {
		if b.Player.PassiveLevel(k) < k.MaxLevel() {
			pool = append(pool, k)
		}
	}
	for i := len(pool) - 1; i > 0; i-- {
		j := b.rng.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	if len(pool) > b.Rules.PassiveChoices {
		pool = pool[:b.Rules.PassiveChoices]
	}
	if len(pool) == 0 {
		return
	}
	b.State.PassiveChoices = pool
	names := make([]string, len(pool))
	for i, k := range pool {
		names[i] = k.String()
	}
	b.emit(log.NewSkillSelectShownEvent(names))
}

// ChoosePassive learns (or levels) the offered passive at index i.
func (b *Battle) ChoosePassive(ctx context.Context, i int) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if b.State.Phase == PhaseGameOver {
		return reject(ErrIllegalPhase, "The run is over")
	}
	if i < 0 || i >= len(b.State.PassiveChoices) {
		return reject(ErrNoReward, "No such passive")
	}
	kind := b.State.PassiveChoices[i]
	b.State.PassiveChoices = b.State.PassiveChoices[:0]
	b.learnPassive(kind)
	return nil
}

func (b *Battle) learnPassive(kind PassiveKind) {
	p := b.Player
	found := false
	for i := range p.Passives {
		if p.Passives[i].Kind == kind {
			if p.Passives[i].Level < kind.MaxLevel() {
				p.Passives[i].Level++
			}
			found = true
		}
	}
	if !found {
		p.Passives = append(p.Passives, Passive{Kind: kind, Level: 1})
	}
	switch kind {
	case PassiveVitality:
		p.MaxHP += 5
		p.HP += 5
	case PassiveMeditation:
		p.MaxMana++
	}
	b.message("Learned %s (level %d)", kind, p.PassiveLevel(kind))
	b.emitStats()
}

// waveClear ends a won fight: statuses and stances are cleared, every card
// returns to the deck and rewards are offered.
func (b *Battle) waveClear() {
	p := b.Player
	b.Selection = nil
	b.phase.Transition(PhaseVictory)
	p.CountEffects = p.CountEffects[:0]
	p.Buffs = p.Buffs[:0]
	p.Defense = 0
	p.ExchangeMode = false
	p.MergePiles(b.rng)
	b.emit(log.NewCombatEndEvent("victory"))
	b.emit(log.NewWaveClearedEvent(b.State.CurrentWave, b.State.Score))
	b.zap.Info("wave cleared", zap.Int("wave", b.State.CurrentWave), zap.Int("score", b.State.Score))

	b.State.Rewards = b.State.Rewards[:0]
	pool := b.content.RewardPool
	for i := 0; i < b.Rules.RewardChoices && len(pool) > 0; i++ {
		card, err := b.content.NewCard(pool[b.rng.Intn(len(pool))], b.newID())
		if err != nil {
			continue
		}
		b.State.Rewards = append(b.State.Rewards, card)
	}
	if len(b.State.Rewards) > 0 {
		names := make([]string, len(b.State.Rewards))
		for i, c := range b.State.Rewards {
			names[i] = c.Name
		}
		b.emit(log.NewRewardShownEvent(names))
	}
}

// ChooseReward adds the reward at index i to the deck.
func (b *Battle) ChooseReward(ctx context.Context, i int) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if b.State.Phase != PhaseVictory {
		return reject(ErrIllegalPhase, "No rewards to claim")
	}
	if i < 0 || i >= len(b.State.Rewards) {
		return reject(ErrNoReward, fmt.Sprintf("No reward at position %d", i))
	}
	card := b.State.Rewards[i]
	b.State.Rewards = b.State.Rewards[:0]
	b.Player.Deck = append(b.Player.Deck, card)
	b.message("Added %s to the deck", card.Name)
	return nil
}

// SkipReward declines every offered reward.
func (b *Battle) SkipReward(ctx context.Context) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if b.State.Phase != PhaseVictory {
		return reject(ErrIllegalPhase, "No rewards to skip")
	}
	b.State.Rewards = b.State.Rewards[:0]
	return nil
}

// NextWave leaves the victory screen for the road to the next fight.
func (b *Battle) NextWave(ctx context.Context) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if b.State.Phase != PhaseVictory {
		return reject(ErrIllegalPhase, "The wave is not cleared")
	}
	b.State.Rewards = b.State.Rewards[:0]
	b.State.CurrentWave++
	b.State.Turn = 0
	b.phase.Transition(PhaseRunning)
	return nil
}
