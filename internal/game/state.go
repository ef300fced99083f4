package game

// Source is the randomness a battle consumes. *math/rand.Rand satisfies it;
// tests inject fixed sequences.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// PlayerState represents the player's entire combat-relevant state.
type PlayerState struct {
	HP      int `json:"hp"`
	MaxHP   int `json:"max_hp"`
	Mana    int `json:"mana"`
	MaxMana int `json:"max_mana"`
	Defense int `json:"defense"` // per-turn shield

	Sword   *Card   `json:"sword"` // nil = bare-handed
	Hand    []*Card `json:"hand"`
	Deck    []*Card `json:"deck"` // top of deck is last element (pop from end)
	Discard []*Card `json:"discard"`

	Buffs        []Buff         `json:"buffs"`
	CountEffects []*CountEffect `json:"count_effects"`
	Passives     []Passive      `json:"passives"`

	Level int `json:"level"`
	Exp   int `json:"exp"`
	Gold  int `json:"gold"`

	ExchangeMode   bool      `json:"exchange_mode"`
	ExchangeUsed   bool      `json:"exchange_used"`
	LastSkillKind  SkillKind `json:"last_skill_kind"`
	SkillsThisTurn int       `json:"skills_this_turn"`
}

// NewPlayerState returns a fresh player with empty piles.
func NewPlayerState(r Rules) *PlayerState {
	return &PlayerState{
		HP:           r.StartingHP,
		MaxHP:        r.StartingHP,
		Mana:         r.StartingMana,
		MaxMana:      r.StartingMana,
		Hand:         []*Card{},
		Deck:         []*Card{},
		Discard:      []*Card{},
		Buffs:        []Buff{},
		CountEffects: []*CountEffect{},
		Passives:     []Passive{},
		Level:        1,
	}
}

// CardCount returns |hand| + |deck| + |discard| + (1 if a weapon is equipped).
func (p *PlayerState) CardCount() int {
	n := len(p.Hand) + len(p.Deck) + len(p.Discard)
	if p.Sword != nil {
		n++
	}
	return n
}

// DrawCard removes the top card from the deck and adds it to the hand.
// Returns nil if the deck is empty.
func (p *PlayerState) DrawCard() *Card {
	if len(p.Deck) == 0 {
		return nil
	}
	card := p.Deck[len(p.Deck)-1]
	p.Deck = p.Deck[:len(p.Deck)-1]
	p.Hand = append(p.Hand, card)
	return card
}

// Draw draws up to n cards. When the deck runs dry the discard pile is
// shuffled into it; when both are empty drawing stops early and the cards
// drawn so far are returned.
func (p *PlayerState) Draw(n int, rng Source) (drawn []*Card, reshuffled bool) {
	for i := 0; i < n; i++ {
		if len(p.Deck) == 0 {
			if len(p.Discard) == 0 {
				return drawn, reshuffled
			}
			p.Deck = append(p.Deck, p.Discard...)
			p.Discard = p.Discard[:0]
			ShuffleCards(p.Deck, rng)
			reshuffled = true
		}
		drawn = append(drawn, p.DrawCard())
	}
	return drawn, reshuffled
}

// ShuffleDeck randomizes the deck order.
func (p *PlayerState) ShuffleDeck(rng Source) {
	ShuffleCards(p.Deck, rng)
}

// ShuffleCards performs a Fisher-Yates shuffle in place.
func ShuffleCards(cards []*Card, rng Source) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// RemoveFromHand removes a card from the hand by instance ID.
func (p *PlayerState) RemoveFromHand(card *Card) bool {
	var ok bool
	p.Hand, ok = removeCard(p.Hand, card.ID)
	return ok
}

// RemoveFromDeck removes a card from the deck by instance ID.
func (p *PlayerState) RemoveFromDeck(card *Card) bool {
	var ok bool
	p.Deck, ok = removeCard(p.Deck, card.ID)
	return ok
}

// RemoveFromDiscard removes a card from the discard pile by instance ID.
func (p *PlayerState) RemoveFromDiscard(card *Card) bool {
	var ok bool
	p.Discard, ok = removeCard(p.Discard, card.ID)
	return ok
}

func removeCard(pile []*Card, id int) ([]*Card, bool) {
	for i, c := range pile {
		if c.ID == id {
			return append(pile[:i], pile[i+1:]...), true
		}
	}
	return pile, false
}

// SendToDiscard moves a card on top of the discard pile.
func (p *PlayerState) SendToDiscard(card *Card) {
	p.Discard = append(p.Discard, card)
}

// FindInHand returns the hand index of the card with the given ID, or -1.
func (p *PlayerState) FindInHand(id int) int {
	for i, c := range p.Hand {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// MergePiles moves hand and discard into the deck and shuffles it. The
// equipped weapon stays equipped.
func (p *PlayerState) MergePiles(rng Source) {
	p.Deck = append(p.Deck, p.Hand...)
	p.Deck = append(p.Deck, p.Discard...)
	p.Hand = p.Hand[:0]
	p.Discard = p.Discard[:0]
	ShuffleCards(p.Deck, rng)
}

// WeaponsInHand counts the weapon cards in hand.
func (p *PlayerState) WeaponsInHand() int {
	n := 0
	for _, c := range p.Hand {
		if c.Kind == CardWeapon {
			n++
		}
	}
	return n
}

// PassiveLevel returns the level of a passive, 0 if not learned.
func (p *PlayerState) PassiveLevel(kind PassiveKind) int {
	for _, ps := range p.Passives {
		if ps.Kind == kind {
			return ps.Level
		}
	}
	return 0
}

// HasPassive reports whether a passive has been learned.
func (p *PlayerState) HasPassive(kind PassiveKind) bool {
	return p.PassiveLevel(kind) > 0
}

// BuffTotal sums the values of all buffs of a kind.
func (p *PlayerState) BuffTotal(kind BuffKind) int {
	total := 0
	for _, b := range p.Buffs {
		if b.Kind == kind {
			total += b.Value
		}
	}
	return total
}

// GameState tracks the battle-level counters and the enemy roster.
type GameState struct {
	Phase          Phase         `json:"phase"`
	Turn           int           `json:"turn"`
	Score          int           `json:"score"`
	CurrentWave    int           `json:"current_wave"`
	Enemies        []*Enemy      `json:"enemies"` // order is targeting order
	Rewards        []*Card       `json:"rewards"`
	PassiveChoices []PassiveKind `json:"passive_choices"`
}

// NewGameState returns a state in the running phase before wave 1.
func NewGameState() *GameState {
	return &GameState{
		Phase:          PhaseRunning,
		CurrentWave:    1,
		Enemies:        []*Enemy{},
		Rewards:        []*Card{},
		PassiveChoices: []PassiveKind{},
	}
}

// LiveEnemies returns the enemies with hp remaining, in roster order.
func (gs *GameState) LiveEnemies() []*Enemy {
	var out []*Enemy
	for _, e := range gs.Enemies {
		if e.Alive() {
			out = append(out, e)
		}
	}
	return out
}

// FindEnemy returns the enemy with the given instance ID, or nil.
func (gs *GameState) FindEnemy(id int) *Enemy {
	for _, e := range gs.Enemies {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// EnemyIndex returns the roster index of the enemy with the given ID, or -1.
func (gs *GameState) EnemyIndex(id int) int {
	for i, e := range gs.Enemies {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// RemoveEnemy drops an enemy from the roster.
func (gs *GameState) RemoveEnemy(id int) {
	for i, e := range gs.Enemies {
		if e.ID == id {
			gs.Enemies = append(gs.Enemies[:i], gs.Enemies[i+1:]...)
			return
		}
	}
}

// Selection is an in-flight targeting choice. Mana has already been paid.
type Selection struct {
	CardID   int  `json:"card_id"`
	ManaPaid int  `json:"mana_paid"`
	Weapon   bool `json:"weapon"` // draw-attack of a just-equipped weapon
}
