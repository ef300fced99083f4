package game

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/peterkuimelis/bladedeck/internal/log"
)

// DamageInput is everything one hit's damage depends on.
type DamageInput struct {
	Attack              int // weapon (or bare-hand) attack plus buffs and flat bonuses
	Multiplier          float64
	Focus               float64
	CritMultiplier      float64
	Critical            bool
	CritRespectsDefense bool
	IgnoreArmor         bool
	Defense             int // target armor
	Pierce              int // weapon pierce plus skill pierce
}

// ComputeDamage applies the damage formula. Armor-respecting hits never
// deal less than 1.
func ComputeDamage(in DamageInput) int {
	scale := in.Multiplier
	if in.Focus > 0 {
		scale *= in.Focus
	}
	if in.Critical {
		scale *= in.CritMultiplier
	}
	base := int(math.Floor(float64(in.Attack) * scale))
	if base < 0 {
		base = 0
	}
	if in.IgnoreArmor || (in.Critical && !in.CritRespectsDefense) {
		return base
	}
	effective := in.Defense - in.Pierce
	if effective < 0 {
		effective = 0
	}
	dmg := base - effective
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

// isCritical evaluates a crit condition against the target as it stands.
func isCritical(cond CritCondition, e *Enemy) bool {
	switch cond {
	case CritAlways:
		return true
	case CritDelayOne:
		head := e.Head()
		return head != nil && head.CurrentDelay == 1
	case CritStunned:
		return e.Stun > 0
	case CritBleeding:
		return len(e.Bleed) > 0
	case CritPoisoned:
		return len(e.Poison) > 0
	case CritLowHP:
		return e.HP*2 <= e.MaxHP
	case CritTaunting:
		return e.Taunt
	default:
		return false
	}
}

// strike describes one attack resolution: a skill, a draw-attack or a
// charge payoff.
type strike struct {
	name                string
	multiplier          float64
	hits                int
	tier                Reach
	base                *Enemy
	beat                BeatKind
	crit                CritCondition
	critMult            float64
	critRespectsDefense bool
	ignoreArmor         bool
	pierce              int
	bonus               int
	useDurability       bool
	perfectCast         bool
	focus               bool
	perHit              HitEffects
}

type strikeResult struct {
	executed int
	dealt    int
	struck   []*Enemy
}

// strike resolves an attack hit by hit. Crits are decided for every target
// before the first hit lands; each hit's damage, statuses and durability
// are applied at that hit's step. A hit with no target left alive costs
// no durability.
func (b *Battle) strike(s *strike) strikeResult {
	var res strikeResult
	p := b.Player
	weapon := b.weapon()
	atk := b.Rules.BareHandAttack
	weaponPierce := 0
	var onHit HitEffects
	if weapon != nil {
		atk = weapon.Attack
		weaponPierce = weapon.Pierce
		onHit = weapon.OnHit.effects()
	}
	atk += p.BuffTotal(BuffAttack) + s.bonus

	base := s.base
	if base == nil {
		base = b.defaultTarget()
	}
	targets := SelectTargets(s.tier, b.State.LiveEnemies(), base)
	if len(targets) == 0 {
		return res
	}

	executed := s.hits
	if weapon != nil && s.useDurability && !s.perfectCast && executed > weapon.CurrentDurability {
		executed = weapon.CurrentDurability
	}
	if executed <= 0 {
		return res
	}

	focus := 1.0
	if s.focus {
		focus = b.consumeFocus()
	}
	critMult := s.critMult
	if critMult <= 0 {
		critMult = b.Rules.CritMultiplier
	}
	critMult += 0.25 * float64(p.PassiveLevel(PassiveKeenEdge))
	crits := make(map[int]bool, len(targets))
	for _, t := range targets {
		crits[t.ID] = isCritical(s.crit, t)
	}

	q := &stepQueue{}
	for i := 0; i < executed; i++ {
		beat := &Beat{Kind: s.beat, Index: i, Source: s.name}
		if i > 0 {
			beat.Delay = b.hitInterval
		}
		q.push(beat, func() {
			landed := false
			for _, t := range targets {
				if !t.Alive() {
					continue
				}
				landed = true
				crit := crits[t.ID]
				dmg := ComputeDamage(DamageInput{
					Attack:              atk,
					Multiplier:          s.multiplier,
					Focus:               focus,
					CritMultiplier:      critMult,
					Critical:            crit,
					CritRespectsDefense: s.critRespectsDefense,
					IgnoreArmor:         s.ignoreArmor,
					Defense:             t.Defense,
					Pierce:              weaponPierce + s.pierce,
				})
				t.HP -= dmg
				res.dealt += dmg
				b.emit(log.NewDamageEvent(t.ID, t.Name, dmg, crit))
				ResolveEffects(t, onHit)
				if !s.perHit.Empty() {
					b.reportEffects(t, ResolveEffects(t, s.perHit))
				}
				if !t.Alive() {
					b.kill(t)
				}
			}
			if landed && weapon != nil && s.useDurability && !s.perfectCast {
				b.wearWeapon(1)
			}
		})
	}
	b.run(q)

	if weapon != nil && s.useDurability && s.perfectCast && p.Sword != nil && p.Sword.Weapon == weapon {
		b.wearWeapon(weapon.CurrentDurability)
	}
	res.executed = executed
	res.struck = targets
	return res
}

// consumeFocus multiplies and removes every focus buff.
func (b *Battle) consumeFocus() float64 {
	p := b.Player
	m := 1.0
	kept := p.Buffs[:0]
	for _, buff := range p.Buffs {
		if buff.Kind == BuffFocus {
			if buff.Multiplier > 0 {
				m *= buff.Multiplier
			}
			continue
		}
		kept = append(kept, buff)
	}
	p.Buffs = kept
	return m
}

// tickBuffs counts every buff down by one non-swift action.
func (b *Battle) tickBuffs() {
	p := b.Player
	kept := p.Buffs[:0]
	for _, buff := range p.Buffs {
		buff.Duration--
		if buff.Duration > 0 {
			kept = append(kept, buff)
		}
	}
	p.Buffs = kept
}

// tick is what every non-swift action costs: the count-effect queue and
// every armed enemy action advance once, then buffs wear off.
func (b *Battle) tick() {
	b.tickCountEffects()
	if len(b.State.LiveEnemies()) == 0 || b.Player.HP <= 0 {
		return
	}
	b.advanceEnemies()
	if b.Player.HP <= 0 {
		return
	}
	b.tickBuffs()
}

// --- Targeting ---

func (b *Battle) defaultTarget() *Enemy {
	legal := b.State.legalTargets()
	if len(legal) == 0 {
		return nil
	}
	return legal[0]
}

func (b *Battle) isLegalTarget(e *Enemy) bool {
	for _, t := range b.State.legalTargets() {
		if t.ID == e.ID {
			return true
		}
	}
	return false
}

// needsTarget reports whether an offensive action at the given tier must
// wait for the player to pick a target.
func (b *Battle) needsTarget(tier Reach) bool {
	return tier != ReachAll && len(b.State.legalTargets()) > 1
}

// --- Card pipeline ---

// UseCard plays the card at the given hand position: a weapon is equipped,
// a skill passes the gate and either resolves or waits for a target.
func (b *Battle) UseCard(ctx context.Context, index int) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := b.requireCombat(); err != nil {
		return err
	}
	p := b.Player
	if index < 0 || index >= len(p.Hand) {
		return reject(ErrCardIndex, fmt.Sprintf("No card at position %d", index))
	}
	card := p.Hand[index]

	if p.ExchangeMode {
		if p.ExchangeUsed {
			return reject(ErrExchangeUsed, "Already exchanged a card this turn")
		}
		b.exchange(card)
		return nil
	}

	if card.Kind == CardWeapon {
		b.equipFromHand(card)
		b.settle()
		return nil
	}

	s := card.Skill
	if p.Mana < s.ManaCost {
		return reject(ErrInsufficientMana, fmt.Sprintf("%s needs %d mana", card.Name, s.ManaCost))
	}
	charge := s.IsCharge()
	strikes := s.Strikes() && !charge
	if strikes {
		if w := b.weapon(); w != nil && w.CurrentDurability <= 0 {
			return reject(ErrNoDurability, fmt.Sprintf("%s is worn out", p.Sword.Name))
		}
	}
	p.Mana -= s.ManaCost

	if strikes && b.needsTarget(ResolveReach(s.Reach, b.weapon())) {
		b.Selection = &Selection{CardID: card.ID, ManaPaid: s.ManaCost}
		b.emit(log.NewTargetingStartEvent(card.Name, len(b.State.legalTargets())))
		b.emitStats()
		return nil
	}
	b.resolveSkill(card, b.defaultTarget(), s.ManaCost)
	return nil
}

// SelectTarget completes a pending targeting with the chosen enemy.
func (b *Battle) SelectTarget(ctx context.Context, enemyID int) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if b.State.Phase != PhaseCombat {
		return reject(ErrNotCombat, "Not in combat")
	}
	sel := b.Selection
	if sel == nil {
		return reject(ErrNoTargeting, "Nothing to target")
	}
	e := b.State.FindEnemy(enemyID)
	if e == nil || !e.Alive() || !b.isLegalTarget(e) {
		return reject(ErrIllegalTarget, "That enemy cannot be targeted")
	}
	b.Selection = nil

	p := b.Player
	if sel.Weapon {
		if p.Sword != nil && p.Sword.ID == sel.CardID {
			b.drawAttack(p.Sword, e)
		}
		b.settle()
		return nil
	}
	idx := p.FindInHand(sel.CardID)
	if idx < 0 {
		p.Mana += sel.ManaPaid
		return reject(ErrUnknownCard, "The card is no longer in hand")
	}
	b.resolveSkill(p.Hand[idx], e, sel.ManaPaid)
	return nil
}

// CancelTargeting aborts a pending targeting and refunds its mana.
func (b *Battle) CancelTargeting(ctx context.Context) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	sel := b.Selection
	if sel == nil {
		return reject(ErrNoTargeting, "Nothing to cancel")
	}
	b.Selection = nil
	b.Player.Mana += sel.ManaPaid
	name := fmt.Sprintf("card %d", sel.CardID)
	if sel.Weapon && b.Player.Sword != nil {
		name = b.Player.Sword.Name
	} else if idx := b.Player.FindInHand(sel.CardID); idx >= 0 {
		name = b.Player.Hand[idx].Name
	}
	b.emit(log.NewTargetingCancelEvent(name, sel.ManaPaid))
	b.emitStats()
	return nil
}

// exchange discards a card and draws a replacement. Swift.
func (b *Battle) exchange(card *Card) {
	p := b.Player
	p.RemoveFromHand(card)
	p.SendToDiscard(card)
	p.ExchangeUsed = true
	p.ExchangeMode = false
	b.message("Exchanged %s", card.Name)
	b.draw(1)
	b.emitHand()
}

// resolveSkill runs a skill that has passed the gate. Mana is already paid.
func (b *Battle) resolveSkill(card *Card, target *Enemy, manaPaid int) {
	p := b.Player
	s := card.Skill
	kind := s.EffectKind()

	switch {
	case kind == EffectChargeAttack:
		p.RemoveFromHand(card)
		b.emit(log.NewCardUsedEvent(card.Name, manaPaid))
		b.registerCharge(card, target)
	case s.Strikes():
		if !b.resolveAttack(card, target, manaPaid) {
			p.Mana += manaPaid
			b.message("%s has no hits left to give", card.Name)
			b.emitStats()
			return
		}
	default:
		p.RemoveFromHand(card)
		b.emit(log.NewCardUsedEvent(card.Name, manaPaid))
		b.resolveSupport(card, target)
	}

	b.placeUsedCard(card)
	p.LastSkillKind = s.Kind
	p.SkillsThisTurn++
	b.emitHand()
	b.emitStats()
	b.zap.Debug("skill resolved",
		zap.Int("card_id", card.ID),
		zap.String("card", card.Name),
		zap.Bool("swift", s.Swift))

	if b.settle() {
		return
	}
	if !s.Swift {
		b.tick()
		b.settle()
	}
}

// placeUsedCard sends a resolved skill to its destination.
func (b *Battle) placeUsedCard(card *Card) {
	p := b.Player
	switch {
	case card.Skill.EffectKind() == EffectSheathe:
		p.Hand = append(p.Hand, card)
	case card.Skill.Consumable || card.Mirage:
		b.message("%s vanishes", card.Name)
	default:
		p.SendToDiscard(card)
	}
}

// skillHits returns the hits an offensive skill requests.
func (b *Battle) skillHits(s *Skill) int {
	p := b.Player
	weaponHits := 1
	if w := b.weapon(); w != nil && w.AttackCount > 0 {
		weaponHits = w.AttackCount
	}
	count := s.AttackCount
	if count < 1 {
		count = 1
	}
	hits := weaponHits * count
	switch s.EffectKind() {
	case EffectFollowUp:
		if p.SkillsThisTurn > 0 && p.LastSkillKind == SkillAttack {
			hits += s.Effect.Value
		}
	case EffectBladeDance:
		hits += p.WeaponsInHand()
	}
	return hits
}

// resolveAttack strikes with an attack or special skill. A self-targeted
// effect on an attack skill applies after the strike. It reports false,
// having changed nothing, when not a single hit can be executed.
func (b *Battle) resolveAttack(card *Card, target *Enemy, manaPaid int) bool {
	p := b.Player
	s := card.Skill
	eff := s.Effect
	kind := s.EffectKind()
	weapon := b.weapon()

	hits := b.skillHits(s)
	destroy := kind == EffectDestroyWeapon && weapon != nil
	useDurability := weapon != nil && !destroy
	perfect := useDurability && p.HasPassive(PassivePerfectCast) && hits > weapon.CurrentDurability
	if useDurability && !perfect && min(hits, weapon.CurrentDurability) <= 0 {
		return false
	}

	p.RemoveFromHand(card)
	b.emit(log.NewCardUsedEvent(card.Name, manaPaid))

	st := &strike{
		name:                card.Name,
		multiplier:          s.AttackMultiplier,
		hits:                hits,
		tier:                ResolveReach(s.Reach, weapon),
		base:                target,
		beat:                BeatHit,
		crit:                s.Critical,
		critMult:            s.CritMultiplier,
		critRespectsDefense: s.CritRespectsDefense,
		ignoreArmor:         s.Piercing || kind == EffectArmorBreaker,
		useDurability:       useDurability,
		perfectCast:         perfect,
		focus:               true,
	}
	if kind == EffectPierce {
		if eff.Value > 0 {
			st.pierce = eff.Value
		} else {
			st.ignoreArmor = true
		}
	}
	if destroy {
		st.bonus = eff.Value * weapon.CurrentDurability
	}
	res := b.strike(st)

	fx := skillEffects(eff)
	for _, t := range res.struck {
		if !t.Alive() || fx.Empty() {
			continue
		}
		b.reportEffects(t, ResolveEffects(t, fx))
	}
	switch kind {
	case EffectLifesteal:
		heal := int(math.Floor(float64(res.dealt) * eff.Multiplier))
		b.heal(heal)
	case EffectTaunt:
		b.provoke(target, eff.Value)
	}
	if kind.SelfTargeted() {
		b.resolveSupport(card, target)
	}

	if destroy && p.Sword != nil {
		b.message("%s shatters", p.Sword.Name)
		b.breakWeapon()
	} else if s.DurabilityCost > 0 {
		b.wearWeapon(s.DurabilityCost)
	}
	return true
}

func (b *Battle) heal(amount int) {
	if amount <= 0 {
		return
	}
	p := b.Player
	p.HP += amount
	if p.HP > p.MaxHP {
		p.HP = p.MaxHP
	}
	b.message("Player recovers %d HP", amount)
}

// provoke draws the target's next action in to fire on the next tick and
// raises the player's shield.
func (b *Battle) provoke(target *Enemy, shield int) {
	if target == nil {
		target = b.defaultTarget()
	}
	if target != nil && target.Alive() {
		if head := target.Head(); head != nil {
			head.CurrentDelay = 1
		}
	}
	b.Player.Defense += shield
}

// reportEffects turns an effect report into player-facing messages.
func (b *Battle) reportEffects(e *Enemy, r EffectReport) {
	if r.Stunned > 0 {
		b.message("%s is stunned (%d)", e.Name, e.Stun)
	}
	if r.BleedAdded {
		b.message("%s bleeds", e.Name)
	}
	if r.PoisonAdded {
		b.message("%s is poisoned", e.Name)
	}
	if r.ArmorReduced > 0 {
		b.message("%s loses %d defense", e.Name, r.ArmorReduced)
	}
	if r.DelayAdded != 0 {
		b.message("%s is delayed by %d", e.Name, r.DelayAdded)
	}
	if r.Cancelled != "" {
		b.message("%s loses %s", e.Name, r.Cancelled)
	}
}
