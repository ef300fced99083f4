package game

import "fmt"

// --- Enums ---
//
// Every enum marshals as its lower-case name so content YAML and session
// snapshots share one spelling.

func enumString(names []string, v int) string {
	if v >= 0 && v < len(names) {
		return names[v]
	}
	return "unknown"
}

func parseEnum(kind string, names []string, text []byte) (int, error) {
	for i, n := range names {
		if n == string(text) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, text)
}

type Phase int

const (
	PhaseRunning Phase = iota
	PhaseCombat
	PhaseVictory
	PhaseEvent
	PhasePaused
	PhaseGameOver
)

var phaseNames = []string{"running", "combat", "victory", "event", "paused", "gameOver"}

func (p Phase) String() string               { return enumString(phaseNames, int(p)) }
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p *Phase) UnmarshalText(b []byte) error {
	v, err := parseEnum("phase", phaseNames, b)
	*p = Phase(v)
	return err
}

// ParsePhase returns the phase with the given name.
func ParsePhase(name string) (Phase, error) {
	v, err := parseEnum("phase", phaseNames, []byte(name))
	return Phase(v), err
}

// Reach is either a fixed range tier (single..all) or a reference to the
// equipped weapon's tier.
type Reach int

const (
	ReachSingle Reach = iota
	ReachDouble
	ReachTriple
	ReachAll
	ReachWeapon
	ReachDoubleWeapon
)

var reachNames = []string{"single", "double", "triple", "all", "weapon", "double_weapon"}

func (r Reach) String() string               { return enumString(reachNames, int(r)) }
func (r Reach) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
func (r *Reach) UnmarshalText(b []byte) error {
	v, err := parseEnum("reach", reachNames, b)
	*r = Reach(v)
	return err
}

// IsTier reports whether r is a concrete range tier.
func (r Reach) IsTier() bool {
	return r >= ReachSingle && r <= ReachAll
}

type CardKind int

const (
	CardWeapon CardKind = iota
	CardSkill
)

var cardKindNames = []string{"weapon", "skill"}

func (k CardKind) String() string               { return enumString(cardKindNames, int(k)) }
func (k CardKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *CardKind) UnmarshalText(b []byte) error {
	v, err := parseEnum("card kind", cardKindNames, b)
	*k = CardKind(v)
	return err
}

type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityLegendary
)

var rarityNames = []string{"common", "uncommon", "rare", "legendary"}

func (r Rarity) String() string               { return enumString(rarityNames, int(r)) }
func (r Rarity) MarshalText() ([]byte, error) { return []byte(r.String()), nil }
func (r *Rarity) UnmarshalText(b []byte) error {
	v, err := parseEnum("rarity", rarityNames, b)
	*r = Rarity(v)
	return err
}

type SkillKind int

const (
	SkillAttack SkillKind = iota
	SkillDefense
	SkillBuff
	SkillDraw
	SkillSpecial
)

var skillKindNames = []string{"attack", "defense", "buff", "draw", "special"}

func (k SkillKind) String() string               { return enumString(skillKindNames, int(k)) }
func (k SkillKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *SkillKind) UnmarshalText(b []byte) error {
	v, err := parseEnum("skill kind", skillKindNames, b)
	*k = SkillKind(v)
	return err
}


type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectPierce
	EffectChargeAttack
	EffectStun
	EffectBleed
	EffectPoison
	EffectLifesteal
	EffectArmorBreaker
	EffectDraw
	EffectTaunt
	EffectCountDefense
	EffectFlowRead
	EffectFocus
	EffectSharpen
	EffectFollowUp
	EffectBladeDance
	EffectSheathe
	EffectSearchSword
	EffectGraveRecall
	EffectGraveEquip
	EffectGraveDrawTop
	EffectBladeGrab
	EffectDestroyWeapon
	EffectDelayUp
	EffectAttackUp
	EffectParryUp
)

var effectKindNames = []string{
	"none", "pierce", "charge_attack", "stun", "bleed", "poison", "lifesteal",
	"armor_breaker", "draw", "taunt", "count_defense", "flow_read", "focus",
	"sharpen", "follow_up", "blade_dance", "sheathe", "search_sword",
	"grave_recall", "grave_equip", "grave_draw_top", "blade_grab",
	"destroy_weapon", "delay_up", "attack_up", "parry_up",
}

func (k EffectKind) String() string               { return enumString(effectKindNames, int(k)) }

// SelfTargeted reports whether the effect acts on the player's own weapon,
// piles or buffs instead of on an enemy.
func (k EffectKind) SelfTargeted() bool {
	switch k {
	case EffectDraw, EffectFocus, EffectSharpen, EffectSheathe, EffectSearchSword,
		EffectGraveRecall, EffectGraveEquip, EffectGraveDrawTop, EffectAttackUp,
		EffectParryUp, EffectCountDefense, EffectFlowRead:
		return true
	}
	return false
}
func (k EffectKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *EffectKind) UnmarshalText(b []byte) error {
	v, err := parseEnum("effect", effectKindNames, b)
	*k = EffectKind(v)
	return err
}

// CritCondition names the board state that turns a hit into a critical hit.
type CritCondition int

const (
	CritNone CritCondition = iota
	CritAlways
	CritDelayOne // target's next action has exactly 1 delay remaining
	CritStunned
	CritBleeding
	CritPoisoned
	CritLowHP // target at or below half hp
	CritTaunting
)

var critNames = []string{"none", "always", "delay_one", "stunned", "bleeding", "poisoned", "low_hp", "taunting"}

func (c CritCondition) String() string               { return enumString(critNames, int(c)) }
func (c CritCondition) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
func (c *CritCondition) UnmarshalText(b []byte) error {
	v, err := parseEnum("critical condition", critNames, b)
	*c = CritCondition(v)
	return err
}

type BuffKind int

const (
	BuffAttack BuffKind = iota
	BuffParry
	BuffFocus
)

var buffKindNames = []string{"attack", "parry", "focus"}

func (k BuffKind) String() string               { return enumString(buffKindNames, int(k)) }
func (k BuffKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *BuffKind) UnmarshalText(b []byte) error {
	v, err := parseEnum("buff", buffKindNames, b)
	*k = BuffKind(v)
	return err
}

type CountKind int

const (
	CountCharge CountKind = iota
	CountCounter
	CountFlowRead
)

var countKindNames = []string{"charge", "counter", "flow_read"}

func (k CountKind) String() string               { return enumString(countKindNames, int(k)) }
func (k CountKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *CountKind) UnmarshalText(b []byte) error {
	v, err := parseEnum("count effect", countKindNames, b)
	*k = CountKind(v)
	return err
}

type EnemyEffectKind int

const (
	EnemyEffectNone EnemyEffectKind = iota
	EnemyEffectTaunt
	EnemyEffectSummon
	EnemyEffectHeal
	EnemyEffectArmorUp
	EnemyEffectRust
)

var enemyEffectNames = []string{"none", "taunt", "summon", "heal", "armor_up", "rust"}

func (k EnemyEffectKind) String() string               { return enumString(enemyEffectNames, int(k)) }
func (k EnemyEffectKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *EnemyEffectKind) UnmarshalText(b []byte) error {
	v, err := parseEnum("enemy effect", enemyEffectNames, b)
	*k = EnemyEffectKind(v)
	return err
}

type PassiveKind int

const (
	PassivePerfectCast PassiveKind = iota
	PassiveVitality
	PassiveMeditation
	PassiveKeenEdge
	PassiveIronSkin
)

var passiveNames = []string{"perfect_cast", "vitality", "meditation", "keen_edge", "iron_skin"}

func (k PassiveKind) String() string               { return enumString(passiveNames, int(k)) }
func (k PassiveKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }
func (k *PassiveKind) UnmarshalText(b []byte) error {
	v, err := parseEnum("passive", passiveNames, b)
	*k = PassiveKind(v)
	return err
}

// MaxLevel returns the level cap of a passive.
func (k PassiveKind) MaxLevel() int {
	switch k {
	case PassivePerfectCast:
		return 1
	case PassiveKeenEdge, PassiveIronSkin:
		return 3
	default:
		return 5
	}
}

// AllPassives lists every passive in offer order.
func AllPassives() []PassiveKind {
	return []PassiveKind{PassivePerfectCast, PassiveVitality, PassiveMeditation, PassiveKeenEdge, PassiveIronSkin}
}

// --- Cards ---

// Status is one bleed or poison stack. Stacks never merge.
type Status struct {
	Damage   int `json:"damage" yaml:"damage"`
	Duration int `json:"duration" yaml:"duration"`
}

// OnHit lists the effects a weapon applies on every landed hit.
type OnHit struct {
	Bleed         *Status `json:"bleed,omitempty" yaml:"bleed"`
	Poison        *Status `json:"poison,omitempty" yaml:"poison"`
	ArmorBreak    int     `json:"armor_break,omitempty" yaml:"armor_break"`
	DelayIncrease int     `json:"delay_increase,omitempty" yaml:"delay_increase"`
}

// DrawAttack is the strike a weapon performs when equipped mid-combat.
type DrawAttack struct {
	Name           string        `json:"name" yaml:"name"`
	Multiplier     float64       `json:"multiplier" yaml:"multiplier"`
	Reach          Reach         `json:"reach" yaml:"reach"`
	DurabilityCost int           `json:"durability_cost" yaml:"durability_cost"`
	Critical       CritCondition `json:"critical,omitempty" yaml:"critical"`
	CritMultiplier float64       `json:"crit_multiplier,omitempty" yaml:"crit_multiplier"`
	Pierce         bool          `json:"pierce,omitempty" yaml:"pierce"`
	Bleed          *Status       `json:"bleed,omitempty" yaml:"bleed"`
	Poison         *Status       `json:"poison,omitempty" yaml:"poison"`
	ArmorReduction int           `json:"armor_reduction,omitempty" yaml:"armor_reduction"`
	DelayIncrease  int           `json:"delay_increase,omitempty" yaml:"delay_increase"`
	SkillCancel    bool          `json:"skill_cancel,omitempty" yaml:"skill_cancel"`
}

type Weapon struct {
	Attack            int        `json:"attack" yaml:"attack"`
	AttackCount       int        `json:"attack_count" yaml:"attack_count"`
	Reach             Reach      `json:"reach" yaml:"reach"`
	ParryRate         int        `json:"parry_rate" yaml:"parry_rate"`
	Pierce            int        `json:"pierce" yaml:"pierce"`
	Durability        int        `json:"durability" yaml:"durability"`
	CurrentDurability int        `json:"current_durability" yaml:"-"`
	Category          string     `json:"category,omitempty" yaml:"category"`
	DrawAttack        DrawAttack `json:"draw_attack" yaml:"draw_attack"`
	OnHit             OnHit      `json:"on_hit" yaml:"on_hit"`
}

// Effect is the tagged effect a skill carries. Which fields matter depends on Kind.
type Effect struct {
	Kind              EffectKind `json:"kind" yaml:"kind"`
	Value             int        `json:"value,omitempty" yaml:"value"`
	Duration          int        `json:"duration,omitempty" yaml:"duration"`
	Multiplier        float64    `json:"multiplier,omitempty" yaml:"multiplier"`
	DefenseMultiplier float64    `json:"defense_multiplier,omitempty" yaml:"defense_multiplier"`
	CounterAttack     bool       `json:"counter_attack,omitempty" yaml:"counter_attack"`
	CounterMultiplier float64    `json:"counter_multiplier,omitempty" yaml:"counter_multiplier"`
	ConsumeOnSuccess  bool       `json:"consume_on_success,omitempty" yaml:"consume_on_success"`
}

type Skill struct {
	Kind                SkillKind     `json:"kind" yaml:"kind"`
	AttackMultiplier    float64       `json:"attack_multiplier" yaml:"attack_multiplier"`
	AttackCount         int           `json:"attack_count" yaml:"attack_count"`
	Reach               Reach         `json:"reach" yaml:"reach"`
	ManaCost            int           `json:"mana_cost" yaml:"mana_cost"`
	DurabilityCost      int           `json:"durability_cost,omitempty" yaml:"durability_cost"`
	Effect              *Effect       `json:"effect,omitempty" yaml:"effect"`
	Swift               bool          `json:"swift,omitempty" yaml:"swift"`
	Consumable          bool          `json:"consumable,omitempty" yaml:"consumable"`
	Piercing            bool          `json:"piercing,omitempty" yaml:"piercing"`
	Critical            CritCondition `json:"critical,omitempty" yaml:"critical"`
	CritMultiplier      float64       `json:"crit_multiplier,omitempty" yaml:"crit_multiplier"`
	CritRespectsDefense bool          `json:"crit_respects_defense,omitempty" yaml:"crit_respects_defense"`
}

// EffectKind returns the kind of the skill's effect, or EffectNone.
func (s *Skill) EffectKind() EffectKind {
	if s.Effect == nil {
		return EffectNone
	}
	return s.Effect.Kind
}

// Strikes reports whether playing the skill swings at enemies. A special
// skill with a self-targeted effect does not.
func (s *Skill) Strikes() bool {
	switch s.Kind {
	case SkillAttack:
		return true
	case SkillSpecial:
		return !s.EffectKind().SelfTargeted()
	}
	return false
}

// IsCharge reports whether playing the skill registers a charge attack.
func (s *Skill) IsCharge() bool {
	return s.EffectKind() == EffectChargeAttack
}

// Card is a weapon or a skill. Exactly one of Weapon/Skill is set, matching Kind.
// Cards are identified by ID, never by value.
type Card struct {
	ID     int      `json:"id" yaml:"-"`
	Name   string   `json:"name" yaml:"name"`
	Kind   CardKind `json:"kind" yaml:"kind"`
	Rarity Rarity   `json:"rarity" yaml:"rarity"`
	Mirage bool     `json:"mirage,omitempty" yaml:"mirage"`
	Weapon *Weapon  `json:"weapon,omitempty" yaml:"weapon"`
	Skill  *Skill   `json:"skill,omitempty" yaml:"skill"`
}

func (c *Card) String() string {
	if c == nil {
		return "(none)"
	}
	return c.Name
}

// DisplayString returns a human-readable description for views and logs.
func (c *Card) DisplayString() string {
	if c == nil {
		return "(none)"
	}
	switch c.Kind {
	case CardWeapon:
		w := c.Weapon
		return fmt.Sprintf("%s (ATK %d x%d, %s, dur %d/%d)", c.Name, w.Attack, w.AttackCount, w.Reach, w.CurrentDurability, w.Durability)
	case CardSkill:
		s := c.Skill
		return fmt.Sprintf("%s (%s, mana %d, x%.2f)", c.Name, s.Kind, s.ManaCost, s.AttackMultiplier)
	default:
		return c.Name
	}
}

// Validate checks that the card's payload matches its kind.
func (c *Card) Validate() error {
	switch c.Kind {
	case CardWeapon:
		if c.Weapon == nil || c.Skill != nil {
			return fmt.Errorf("card %q: weapon card must carry only a weapon", c.Name)
		}
		w := c.Weapon
		if w.Durability < 0 || w.CurrentDurability < 0 || w.CurrentDurability > w.Durability {
			return fmt.Errorf("card %q: durability %d/%d out of range", c.Name, w.CurrentDurability, w.Durability)
		}
		if !w.Reach.IsTier() {
			return fmt.Errorf("card %q: weapon reach must be a tier, got %s", c.Name, w.Reach)
		}
	case CardSkill:
		if c.Skill == nil || c.Weapon != nil {
			return fmt.Errorf("card %q: skill card must carry only a skill", c.Name)
		}
		if c.Skill.ManaCost < 0 {
			return fmt.Errorf("card %q: negative mana cost", c.Name)
		}
	default:
		return fmt.Errorf("card %q: unknown kind %d", c.Name, c.Kind)
	}
	return nil
}

// Clone returns a deep copy of the card carrying the given instance ID.
func (c *Card) Clone(id int) *Card {
	out := *c
	out.ID = id
	if c.Weapon != nil {
		w := *c.Weapon
		w.DrawAttack.Bleed = cloneStatus(c.Weapon.DrawAttack.Bleed)
		w.DrawAttack.Poison = cloneStatus(c.Weapon.DrawAttack.Poison)
		w.OnHit.Bleed = cloneStatus(c.Weapon.OnHit.Bleed)
		w.OnHit.Poison = cloneStatus(c.Weapon.OnHit.Poison)
		out.Weapon = &w
	}
	if c.Skill != nil {
		s := *c.Skill
		if c.Skill.Effect != nil {
			e := *c.Skill.Effect
			s.Effect = &e
		}
		out.Skill = &s
	}
	return &out
}

func cloneStatus(s *Status) *Status {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// --- Enemies ---

type EnemyEffect struct {
	Kind     EnemyEffectKind `json:"kind" yaml:"kind"`
	Value    int             `json:"value,omitempty" yaml:"value"`
	Duration int             `json:"duration,omitempty" yaml:"duration"`
	Summon   string          `json:"summon,omitempty" yaml:"summon"`
	Cooldown int             `json:"cooldown,omitempty" yaml:"cooldown"`
}

// EnemyAction is one entry of an enemy's scripted cycle. Only the head of the
// queue counts down; CurrentDelay may go negative and is then ready.
type EnemyAction struct {
	Name         string       `json:"name" yaml:"name"`
	Damage       int          `json:"damage" yaml:"damage"`
	HitCount     int          `json:"hit_count" yaml:"hit_count"`
	Delay        int          `json:"delay" yaml:"delay"`
	CurrentDelay int          `json:"current_delay" yaml:"-"`
	Effect       *EnemyEffect `json:"effect,omitempty" yaml:"effect"`
	Slot         int          `json:"slot" yaml:"-"` // index into the owner's pattern
}

func (a *EnemyAction) clone() *EnemyAction {
	out := *a
	if a.Effect != nil {
		e := *a.Effect
		out.Effect = &e
	}
	return &out
}

type Enemy struct {
	ID             int            `json:"id" yaml:"-"`
	Name           string         `json:"name" yaml:"name"`
	HP             int            `json:"hp" yaml:"-"`
	MaxHP          int            `json:"max_hp" yaml:"max_hp"`
	Defense        int            `json:"defense" yaml:"defense"`
	Actions        []*EnemyAction `json:"actions" yaml:"-"`
	Pattern        []EnemyAction  `json:"pattern" yaml:"actions"`
	Stun           int            `json:"stun" yaml:"-"`
	Bleed          []Status       `json:"bleed" yaml:"-"`
	Poison         []Status       `json:"poison" yaml:"-"`
	Taunt          bool           `json:"taunt" yaml:"-"`
	TauntDuration  int            `json:"taunt_duration" yaml:"-"`
	SummonCooldown int            `json:"summon_cooldown" yaml:"-"`
	Boss           bool           `json:"boss,omitempty" yaml:"boss"`
	Summoned       bool           `json:"summoned,omitempty" yaml:"-"`
}

func (e *Enemy) String() string {
	if e == nil {
		return "(none)"
	}
	return e.Name
}

// Alive reports whether the enemy still has hp.
func (e *Enemy) Alive() bool {
	return e.HP > 0
}

// Head returns the armed action, or nil for an enemy without actions.
func (e *Enemy) Head() *EnemyAction {
	if len(e.Actions) == 0 {
		return nil
	}
	return e.Actions[0]
}

// --- Player-side state ---

type Buff struct {
	Kind       BuffKind `json:"kind"`
	Name       string   `json:"name"`
	Value      int      `json:"value,omitempty"`
	Multiplier float64  `json:"multiplier,omitempty"`
	Duration   int      `json:"duration"`
}

// CountEffect is a registered charge attack or counter stance. The list on
// the player is FIFO: only the head counts down and only the head is live.
type CountEffect struct {
	ID        int       `json:"id"`
	Kind      CountKind `json:"kind"`
	Name      string    `json:"name"`
	Remaining int       `json:"remaining"`
	IsNew     bool      `json:"is_new"`
	Elapsed   int       `json:"elapsed"`

	// charge snapshot: a formula, never a damage value
	Multiplier    float64 `json:"multiplier,omitempty"`
	HitMultiplier int     `json:"hit_multiplier,omitempty"`
	Reach         Reach   `json:"reach"`
	TargetID      int     `json:"target_id,omitempty"`

	// counter stance
	DefenseMultiplier float64 `json:"defense_multiplier,omitempty"`
	CounterAttack     bool    `json:"counter_attack,omitempty"`
	CounterMultiplier float64 `json:"counter_multiplier,omitempty"`
	ConsumeOnSuccess  bool    `json:"consume_on_success,omitempty"`
}

type Passive struct {
	Kind  PassiveKind `json:"kind"`
	Level int         `json:"level"`
}
