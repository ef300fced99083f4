package game

import (
	"errors"
	"strings"
	"testing"
)

const sampleContent = `
rules:
  hand_size: 4
starting_weapon: Spear
starting_deck:
  - name: Jab
    count: 3
cards:
  Spear:
    kind: weapon
    weapon:
      attack: 7
      reach: double
      durability: 9
      draw_attack:
        multiplier: 1.2
        reach: all
        bleed: {damage: 2, duration: 2}
  Jab:
    kind: skill
    skill:
      kind: attack
      reach: double_weapon
      mana_cost: 1
      critical: low_hp
enemies:
  rat:
    max_hp: 10
    actions:
      - {name: Bite, damage: 2, delay: 1}
waves:
  - enemies: [rat, rat]
loadouts:
  - name: Pikeman
    weapon: Spear
    cards:
      - name: Jab
        count: 5
`

func TestParseContent(t *testing.T) {
	c, err := ParseContent([]byte(sampleContent))
	if err != nil {
		t.Fatalf("ParseContent: %v", err)
	}
	if c.Rules.HandSize != 4 || c.Rules.StartingHP != 80 {
		t.Errorf("rules = %+v, want hand 4 and default hp", c.Rules)
	}
	spear := c.Cards["Spear"]
	if spear.Name != "Spear" || spear.Kind != CardWeapon {
		t.Fatalf("spear = %+v", spear)
	}
	w := spear.Weapon
	if w.Reach != ReachDouble || w.AttackCount != 1 || w.CurrentDurability != 9 {
		t.Errorf("weapon = %+v", w)
	}
	if w.DrawAttack.Reach != ReachAll || w.DrawAttack.Bleed == nil || w.DrawAttack.Bleed.Damage != 2 {
		t.Errorf("draw attack = %+v", w.DrawAttack)
	}
	jab := c.Cards["Jab"].Skill
	if jab.Reach != ReachDoubleWeapon || jab.Critical != CritLowHP || jab.AttackMultiplier != 1 {
		t.Errorf("skill = %+v", jab)
	}
	rat := c.Enemies["rat"]
	if rat.Name != "rat" || len(rat.Pattern) != 1 || rat.Pattern[0].Delay != 1 {
		t.Errorf("enemy = %+v", rat)
	}
}

func TestParseContentErrors(t *testing.T) {
	tests := []struct {
		name    string
		replace [2]string
		want    string
	}{
		{"unknown reach", [2]string{"reach: double\n", "reach: quadruple\n"}, "unknown reach"},
		{"unknown wave enemy", [2]string{"[rat, rat]", "[rat, bat]"}, "unknown enemy"},
		{"unknown deck card", [2]string{"name: Jab", "name: Hook"}, "unknown card"},
		{"starting weapon must be a weapon", [2]string{"weapon: Spear", "weapon: Jab"}, "is not a weapon"},
		{"weapon reach must be a tier", [2]string{"reach: double\n", "reach: weapon\n"}, "must be a tier"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := strings.Replace(sampleContent, tt.replace[0], tt.replace[1], 1)
			_, err := ParseContent([]byte(data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestNewCardClones(t *testing.T) {
	c := testContent()
	a, err := c.NewCard("Practice Sword", 1)
	if err != nil {
		t.Fatalf("NewCard: %v", err)
	}
	b, _ := c.NewCard("Practice Sword", 2)
	a.Weapon.CurrentDurability = 1
	if b.Weapon.CurrentDurability != 10 || c.Cards["Practice Sword"].Weapon.CurrentDurability != 10 {
		t.Error("instances must not share weapon state")
	}
	if _, err := c.NewCard("Excalibur", 3); !errors.Is(err, ErrUnknownCard) {
		t.Errorf("unknown card err = %v", err)
	}
}

func TestShippedContent(t *testing.T) {
	c, err := LoadContent("../../content.yaml")
	if err != nil {
		t.Fatalf("LoadContent: %v", err)
	}
	for i := range c.AllLoadouts() {
		b, err := NewBattle(Config{Content: c, Loadout: i + 1, Source: &fixedSource{}})
		if err != nil {
			t.Fatalf("NewBattle loadout %d: %v", i+1, err)
		}
		if b.Player.Sword == nil || len(b.Player.Deck) == 0 {
			t.Fatalf("loadout %d: expected a starting weapon and deck", i+1)
		}
	}
	for _, name := range c.RewardPool {
		if _, err := c.NewCard(name, 1); err != nil {
			t.Errorf("reward %s: %v", name, err)
		}
	}
	for name, strikes := range map[string]bool{
		"Whetstone":      false,
		"Armory Search":  false,
		"Recall":         false,
		"Shatter Strike": true,
	} {
		if got := c.Cards[name].Skill.Strikes(); got != strikes {
			t.Errorf("%s strikes = %v, want %v", name, got, strikes)
		}
	}
}

func TestLoadoutByNumber(t *testing.T) {
	c, err := ParseContent([]byte(sampleContent))
	if err != nil {
		t.Fatalf("ParseContent: %v", err)
	}
	first, err := c.LoadoutByNumber(1)
	if err != nil || first.Weapon != "Spear" || first.Cards[0].Count != 3 {
		t.Errorf("loadout 1 = %+v, %v; want the starting deck", first, err)
	}
	second, err := c.LoadoutByNumber(2)
	if err != nil || second.Name != "Pikeman" {
		t.Errorf("loadout 2 = %+v, %v", second, err)
	}
	if _, err := c.LoadoutByNumber(3); err == nil {
		t.Error("expected an error for a missing loadout")
	}

	b, err := NewBattle(Config{Content: c, Loadout: 2, Source: &fixedSource{}})
	if err != nil {
		t.Fatalf("NewBattle: %v", err)
	}
	if len(b.Player.Deck) != 5 || b.Player.Sword.Name != "Spear" {
		t.Errorf("deck %d sword %v, want 5 and Spear", len(b.Player.Deck), b.Player.Sword)
	}
}
