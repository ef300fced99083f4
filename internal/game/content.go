package game

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Rules holds the balance numbers a battle runs with.
type Rules struct {
	StartingHP     int     `yaml:"starting_hp" json:"starting_hp"`
	StartingMana   int     `yaml:"starting_mana" json:"starting_mana"`
	HandSize       int     `yaml:"hand_size" json:"hand_size"`
	MaxEnemies     int     `yaml:"max_enemies" json:"max_enemies"`
	BareHandAttack int     `yaml:"bare_hand_attack" json:"bare_hand_attack"`
	CritMultiplier float64 `yaml:"crit_multiplier" json:"crit_multiplier"`
	GoldDivisor    int     `yaml:"gold_divisor" json:"gold_divisor"`
	DropChance     float64 `yaml:"drop_chance" json:"drop_chance"`
	BossDropChance float64 `yaml:"boss_drop_chance" json:"boss_drop_chance"`
	ExpPerLevel    int     `yaml:"exp_per_level" json:"exp_per_level"`
	RewardChoices  int     `yaml:"reward_choices" json:"reward_choices"`
	PassiveChoices int     `yaml:"passive_choices" json:"passive_choices"`
	LoopScaling    float64 `yaml:"loop_scaling" json:"loop_scaling"`
}

// DefaultRules returns the stock balance.
func DefaultRules() Rules {
	return Rules{
		StartingHP:     80,
		StartingMana:   3,
		HandSize:       5,
		MaxEnemies:     4,
		BareHandAttack: 2,
		CritMultiplier: 1.5,
		GoldDivisor:    5,
		DropChance:     0.1,
		BossDropChance: 0.5,
		ExpPerLevel:    20,
		RewardChoices:  3,
		PassiveChoices: 3,
		LoopScaling:    1.5,
	}
}

// fillDefaults replaces unset (zero) fields with their defaults.
func (r *Rules) fillDefaults() {
	d := DefaultRules()
	if r.StartingHP <= 0 {
		r.StartingHP = d.StartingHP
	}
	if r.StartingMana <= 0 {
		r.StartingMana = d.StartingMana
	}
	if r.HandSize <= 0 {
		r.HandSize = d.HandSize
	}
	if r.MaxEnemies <= 0 {
		r.MaxEnemies = d.MaxEnemies
	}
	if r.BareHandAttack <= 0 {
		r.BareHandAttack = d.BareHandAttack
	}
	if r.CritMultiplier <= 0 {
		r.CritMultiplier = d.CritMultiplier
	}
	if r.GoldDivisor <= 0 {
		r.GoldDivisor = d.GoldDivisor
	}
	if r.ExpPerLevel <= 0 {
		r.ExpPerLevel = d.ExpPerLevel
	}
	if r.RewardChoices <= 0 {
		r.RewardChoices = d.RewardChoices
	}
	if r.PassiveChoices <= 0 {
		r.PassiveChoices = d.PassiveChoices
	}
	if r.LoopScaling <= 0 {
		r.LoopScaling = d.LoopScaling
	}
}

// CardEntry represents a card and its count in the starting deck.
type CardEntry struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// Loadout is a named starting weapon and deck.
type Loadout struct {
	Name   string      `yaml:"name"`
	Weapon string      `yaml:"weapon"`
	Cards  []CardEntry `yaml:"cards"`
}

// Wave lists the enemy templates spawned together.
type Wave struct {
	Enemies []string `yaml:"enemies"`
}

// Content is the catalog of card and enemy templates a battle draws from.
// Templates are never handed out directly; NewCard and NewEnemy clone them.
type Content struct {
	Rules          Rules             `yaml:"rules"`
	Cards          map[string]*Card  `yaml:"cards"`
	Enemies        map[string]*Enemy `yaml:"enemies"`
	Waves          []Wave            `yaml:"waves"`
	StartingWeapon string            `yaml:"starting_weapon"`
	StartingDeck   []CardEntry       `yaml:"starting_deck"`
	Loadouts       []Loadout         `yaml:"loadouts"`
	RewardPool     []string          `yaml:"reward_pool"`
}

// LoadContent reads and validates a YAML content file.
func LoadContent(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseContent(data)
}

// ParseContent parses and validates YAML content.
func ParseContent(data []byte) (*Content, error) {
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse content YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate fills rule defaults and checks cross references.
func (c *Content) Validate() error {
	c.Rules.fillDefaults()
	for key, card := range c.Cards {
		if card.Name == "" {
			card.Name = key
		}
		if card.Weapon != nil {
			if card.Weapon.AttackCount <= 0 {
				card.Weapon.AttackCount = 1
			}
			card.Weapon.CurrentDurability = card.Weapon.Durability
		}
		if s := card.Skill; s != nil {
			if s.AttackCount <= 0 {
				s.AttackCount = 1
			}
			if s.Strikes() && s.AttackMultiplier <= 0 {
				s.AttackMultiplier = 1
			}
			if s.IsCharge() && s.Effect.Duration <= 0 {
				return fmt.Errorf("card %q: charge attack needs a duration", key)
			}
		}
		if err := card.Validate(); err != nil {
			return err
		}
	}
	for key, e := range c.Enemies {
		if e.Name == "" {
			e.Name = key
		}
		if e.MaxHP <= 0 {
			return fmt.Errorf("enemy %q: max_hp must be positive", key)
		}
		if len(e.Pattern) == 0 {
			return fmt.Errorf("enemy %q: needs at least one action", key)
		}
		for _, a := range e.Pattern {
			if a.Effect != nil && a.Effect.Kind == EnemyEffectSummon {
				if _, ok := c.Enemies[a.Effect.Summon]; !ok {
					return fmt.Errorf("enemy %q: summons unknown enemy %q", key, a.Effect.Summon)
				}
			}
		}
	}
	if len(c.Waves) == 0 {
		return fmt.Errorf("content has no waves")
	}
	for i, w := range c.Waves {
		if len(w.Enemies) == 0 {
			return fmt.Errorf("wave %d is empty", i+1)
		}
		for _, name := range w.Enemies {
			if _, ok := c.Enemies[name]; !ok {
				return fmt.Errorf("wave %d: unknown enemy %q", i+1, name)
			}
		}
	}
	if err := c.validateLoadout(c.defaultLoadout()); err != nil {
		return err
	}
	for _, l := range c.Loadouts {
		if err := c.validateLoadout(l); err != nil {
			return fmt.Errorf("loadout %q: %w", l.Name, err)
		}
	}
	for _, name := range c.RewardPool {
		if _, ok := c.Cards[name]; !ok {
			return fmt.Errorf("reward pool: unknown card %q", name)
		}
	}
	return nil
}

func (c *Content) validateLoadout(l Loadout) error {
	if l.Weapon != "" {
		if card, ok := c.Cards[l.Weapon]; !ok || card.Kind != CardWeapon {
			return fmt.Errorf("starting weapon %q is not a weapon card", l.Weapon)
		}
	}
	for _, entry := range l.Cards {
		if _, ok := c.Cards[entry.Name]; !ok {
			return fmt.Errorf("starting deck: unknown card %q", entry.Name)
		}
	}
	return nil
}

func (c *Content) defaultLoadout() Loadout {
	return Loadout{Name: "Standard", Weapon: c.StartingWeapon, Cards: c.StartingDeck}
}

// AllLoadouts returns the default loadout followed by the named ones.
func (c *Content) AllLoadouts() []Loadout {
	return append([]Loadout{c.defaultLoadout()}, c.Loadouts...)
}

// LoadoutByNumber returns the Nth loadout (1-indexed); 1 is the default
// starting weapon and deck.
func (c *Content) LoadoutByNumber(n int) (Loadout, error) {
	all := c.AllLoadouts()
	if n < 1 || n > len(all) {
		return Loadout{}, fmt.Errorf("loadout %d not found (have %d loadouts)", n, len(all))
	}
	return all[n-1], nil
}

// NewCard instantiates a card template with the given instance ID.
func (c *Content) NewCard(key string, id int) (*Card, error) {
	tmpl, ok := c.Cards[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCard, key)
	}
	card := tmpl.Clone(id)
	if card.Weapon != nil {
		card.Weapon.CurrentDurability = card.Weapon.Durability
	}
	return card, nil
}

// NewEnemy instantiates an enemy template with its action queue armed.
// hpScale multiplies max hp for looped waves.
func (c *Content) NewEnemy(key string, id int, hpScale float64) (*Enemy, error) {
	tmpl, ok := c.Enemies[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEnemy, key)
	}
	e := &Enemy{
		ID:      id,
		Name:    tmpl.Name,
		MaxHP:   tmpl.MaxHP,
		Defense: tmpl.Defense,
		Boss:    tmpl.Boss,
		Bleed:   []Status{},
		Poison:  []Status{},
	}
	if hpScale > 1 {
		e.MaxHP = int(float64(e.MaxHP) * hpScale)
	}
	e.HP = e.MaxHP
	e.Pattern = make([]EnemyAction, len(tmpl.Pattern))
	for i, a := range tmpl.Pattern {
		e.Pattern[i] = *a.clone()
		e.Pattern[i].Slot = i
	}
	for i := range e.Pattern {
		e.Actions = append(e.Actions, e.armed(i))
	}
	return e, nil
}

// CardNames returns the template keys in sorted order.
func (c *Content) CardNames() []string {
	names := make([]string, 0, len(c.Cards))
	for k := range c.Cards {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// WaveAt returns the enemies of the given 1-based wave and the hp scale to
// apply. Past the last wave the list loops, each loop scaling hp further.
func (c *Content) WaveAt(wave int) ([]string, float64) {
	if wave < 1 {
		wave = 1
	}
	idx := (wave - 1) % len(c.Waves)
	loops := (wave - 1) / len(c.Waves)
	scale := 1.0
	for i := 0; i < loops; i++ {
		scale *= c.Rules.LoopScaling
	}
	return c.Waves[idx].Enemies, scale
}
