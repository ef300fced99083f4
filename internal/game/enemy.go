package game

import (
	"go.uber.org/zap"

	"github.com/peterkuimelis/bladedeck/internal/log"
)

// armed returns a fresh copy of pattern slot i with its delay reset.
func (e *Enemy) armed(i int) *EnemyAction {
	a := e.Pattern[i].clone()
	a.Slot = i
	a.CurrentDelay = a.Delay
	return a
}

// Rotate moves the head action to the back of the queue with its delay
// reset. Bosses re-instantiate the action from their pattern instead.
func (e *Enemy) Rotate() {
	e.rotateWithDelay(-1)
}

// rotateWithDelay rotates like Rotate; a non-negative delay overrides the
// base delay of the rearmed action.
func (e *Enemy) rotateWithDelay(delay int) {
	head := e.Head()
	if head == nil {
		return
	}
	e.Actions = e.Actions[1:]
	next := head
	if e.Boss && head.Slot >= 0 && head.Slot < len(e.Pattern) {
		next = e.armed(head.Slot)
	}
	next.CurrentDelay = next.Delay
	if delay >= 0 {
		next.CurrentDelay = delay
	}
	e.Actions = append(e.Actions, next)
}

// IsTaunting reports whether the enemy currently forces targeting.
func (e *Enemy) IsTaunting() bool {
	return e.Alive() && e.Taunt
}

// legalTargets returns the enemies the player may pick: the taunting ones
// if any taunt, otherwise every live enemy.
func (gs *GameState) legalTargets() []*Enemy {
	live := gs.LiveEnemies()
	var taunting []*Enemy
	for _, e := range live {
		if e.IsTaunting() {
			taunting = append(taunting, e)
		}
	}
	if len(taunting) > 0 {
		return taunting
	}
	return live
}

// advanceEnemies counts every armed action down by one and runs the ready
// ones in roster order. Stops as soon as the player falls.
func (b *Battle) advanceEnemies() {
	roster := append([]*Enemy(nil), b.State.Enemies...)
	for _, e := range roster {
		if head := e.Head(); head != nil && e.Alive() {
			head.CurrentDelay--
		}
	}
	for _, e := range roster {
		if b.Player.HP <= 0 {
			return
		}
		if !e.Alive() || b.State.FindEnemy(e.ID) == nil {
			continue
		}
		if head := e.Head(); head != nil && head.CurrentDelay <= 0 {
			b.executeEnemy(e)
		}
	}
}

// executeEnemy runs the enemy's armed action and rearms it.
func (b *Battle) executeEnemy(e *Enemy) {
	action := e.Head()
	b.emit(log.NewEnemyActionEvent(e.ID, e.Name, action.Name))
	b.zap.Debug("enemy action",
		zap.Int("enemy_id", e.ID),
		zap.String("enemy", e.Name),
		zap.String("action", action.Name))

	if e.Stun > 0 {
		e.Stun--
		b.message("%s is stunned and loses %s", e.Name, action.Name)
		e.Rotate()
		return
	}

	if action.Effect != nil && action.Effect.Kind == EnemyEffectSummon {
		b.summon(e, action)
		return
	}

	q := &stepQueue{}
	hits := action.HitCount
	if hits < 1 {
		hits = 1
	}
	for i := 0; i < hits; i++ {
		beat := &Beat{Kind: BeatEnemyHit, Index: i, Source: e.Name}
		if i > 0 {
			beat.Delay = b.hitInterval
		}
		q.push(beat, func() {
			if b.Player.HP <= 0 || !e.Alive() {
				return
			}
			b.incoming(e, action)
		})
	}
	b.run(q)

	if !e.Alive() {
		return
	}
	if b.Player.HP > 0 && action.Effect != nil {
		b.enemyEffect(e, action.Effect)
	}
	e.Rotate()
}

// enemyEffect applies a non-summon action effect after the hits.
func (b *Battle) enemyEffect(e *Enemy, eff *EnemyEffect) {
	switch eff.Kind {
	case EnemyEffectTaunt:
		e.Taunt = true
		e.TauntDuration = eff.Duration
		if e.TauntDuration < 1 {
			e.TauntDuration = 1
		}
		b.message("%s taunts", e.Name)
	case EnemyEffectHeal:
		e.HP += eff.Value
		if e.HP > e.MaxHP {
			e.HP = e.MaxHP
		}
		b.message("%s recovers %d HP", e.Name, eff.Value)
	case EnemyEffectArmorUp:
		e.Defense += eff.Value
		b.message("%s hardens (defense %d)", e.Name, e.Defense)
	case EnemyEffectRust:
		if b.Player.Sword != nil {
			b.message("%s corrodes %s", e.Name, b.Player.Sword.Name)
			b.wearWeapon(eff.Value)
		}
	}
}

// summon spawns reinforcements when the cooldown and roster allow it.
// A blocked summon rotates like any other action.
func (b *Battle) summon(e *Enemy, action *EnemyAction) {
	eff := action.Effect
	room := b.Rules.MaxEnemies - len(b.State.LiveEnemies())
	if e.SummonCooldown > 0 || room <= 0 {
		b.message("%s calls for help, but none come", e.Name)
		e.Rotate()
		return
	}
	count := eff.Value
	if count < 1 {
		count = 1
	}
	if count > room {
		count = room
	}
	for i := 0; i < count; i++ {
		minion, err := b.content.NewEnemy(eff.Summon, b.newID(), 1)
		if err != nil {
			b.zap.Warn("summon failed", zap.String("summon", eff.Summon), zap.Error(err))
			break
		}
		minion.Summoned = true
		b.State.Enemies = append(b.State.Enemies, minion)
		b.emit(log.NewSummonEvent(minion.ID, e.Name, minion.Name))
	}
	e.SummonCooldown = eff.Cooldown
	delay := action.Delay
	if eff.Cooldown > delay {
		delay = eff.Cooldown
	}
	e.rotateWithDelay(delay)
}

// incoming resolves one enemy hit against the player: parry roll, then
// shield, then hp.
func (b *Battle) incoming(e *Enemy, action *EnemyAction) {
	p := b.Player
	rate, counter := b.parryRate()
	if rate > 0 && b.rng.Intn(100) < rate {
		b.emit(log.NewParryEvent(e.Name, rate))
		if counter != nil {
			b.counterStrike(e, counter, action.Damage)
		}
		return
	}
	dmg := action.Damage
	absorbed := dmg
	if absorbed > p.Defense {
		absorbed = p.Defense
	}
	p.Defense -= absorbed
	p.HP -= dmg - absorbed
	if p.HP < 0 {
		p.HP = 0
	}
	b.emit(log.NewPlayerDamageEvent(e.Name, dmg-absorbed, p.HP))
	b.emitStats()
}

// tickStatuses runs bleed and poison on every live enemy.
func (b *Battle) tickStatuses() {
	q := &stepQueue{}
	for _, e := range append([]*Enemy(nil), b.State.Enemies...) {
		if len(e.Bleed) == 0 && len(e.Poison) == 0 {
			continue
		}
		q.push(&Beat{Kind: BeatStatusTick, Source: e.Name}, func() {
			if !e.Alive() {
				return
			}
			bleed, poison := tickStatuses(e)
			if bleed > 0 {
				b.emit(log.NewStatusTickEvent(e.ID, e.Name, "bleed", bleed))
			}
			if poison > 0 {
				b.emit(log.NewStatusTickEvent(e.ID, e.Name, "poison", poison))
			}
			if !e.Alive() {
				b.kill(e)
			}
		})
	}
	b.run(q)
}
