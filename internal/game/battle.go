package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/peterkuimelis/bladedeck/internal/log"
)

// Config holds configuration for creating a new battle.
type Config struct {
	Content     *Content
	Loadout     int    // 1-indexed loadout number (0 for the default)
	Rules       *Rules // overrides Content.Rules when set
	Logger      log.EventLogger
	Zap         *zap.Logger
	Presenter   Presenter
	Seed        int64  // RNG seed (0 for random)
	Source      Source // overrides Seed when set
	NoShuffle   bool   // skip deck shuffles (for deterministic tests)
	HitInterval time.Duration
}

// Snapshot exposes the whole mutable graph of a battle.
type Snapshot struct {
	Player      *PlayerState
	Game        *GameState
	Selection   *Selection
	NextID      int
	ResumePhase Phase
}

// Battle owns one player's run: the player, the enemy roster, the phase and
// any in-flight targeting. Commands are serialized; a command arriving while
// another resolves is rejected with ErrBusy.
type Battle struct {
	mu sync.Mutex

	Player    *PlayerState
	State     *GameState
	Selection *Selection
	Rules     Rules

	content     *Content
	phase       *PhaseMachine
	logger      log.EventLogger
	zap         *zap.Logger
	presenter   Presenter
	rng         Source
	noShuffle   bool
	hitInterval time.Duration
	nextID      int
	ctx         context.Context
}

// NewBattle creates a battle in the running phase with the content's
// starting deck and weapon.
func NewBattle(cfg Config) (*Battle, error) {
	if cfg.Content == nil {
		return nil, fmt.Errorf("battle needs content")
	}
	b := newBattle(cfg)
	b.Player = NewPlayerState(b.Rules)
	b.State = NewGameState()
	b.phase = b.newPhaseMachine(PhaseRunning, PhaseRunning)

	loadout, err := cfg.Content.LoadoutByNumber(max(cfg.Loadout, 1))
	if err != nil {
		return nil, err
	}
	for _, entry := range loadout.Cards {
		count := entry.Count
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			card, err := cfg.Content.NewCard(entry.Name, b.newID())
			if err != nil {
				return nil, err
			}
			b.Player.Deck = append(b.Player.Deck, card)
		}
	}
	if loadout.Weapon != "" {
		card, err := cfg.Content.NewCard(loadout.Weapon, b.newID())
		if err != nil {
			return nil, err
		}
		b.Player.Sword = card
	}
	return b, nil
}

// RestoreBattle rebuilds a battle around a validated snapshot.
func RestoreBattle(cfg Config, s Snapshot) (*Battle, error) {
	if cfg.Content == nil {
		return nil, fmt.Errorf("battle needs content")
	}
	if s.Player == nil || s.Game == nil {
		return nil, fmt.Errorf("restore battle: incomplete snapshot")
	}
	b := newBattle(cfg)
	b.Player = s.Player
	b.State = s.Game
	b.Selection = s.Selection
	b.nextID = s.NextID
	b.phase = b.newPhaseMachine(s.Game.Phase, s.ResumePhase)
	return b, nil
}

func newBattle(cfg Config) *Battle {
	rules := cfg.Content.Rules
	if cfg.Rules != nil {
		rules = *cfg.Rules
	}
	rules.fillDefaults()

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewMemoryLogger()
	}
	zl := cfg.Zap
	if zl == nil {
		zl = zap.NewNop()
	}
	presenter := cfg.Presenter
	if presenter == nil {
		presenter = NopPresenter{}
	}
	rng := cfg.Source
	if rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}
	return &Battle{
		Rules:       rules,
		content:     cfg.Content,
		logger:      logger,
		zap:         zl,
		presenter:   presenter,
		rng:         rng,
		noShuffle:   cfg.NoShuffle,
		hitInterval: cfg.HitInterval,
		ctx:         context.Background(),
	}
}

func (b *Battle) newPhaseMachine(initial, resumeTo Phase) *PhaseMachine {
	pm := NewPhaseMachine(initial)
	pm.resumeTo = resumeTo
	pm.OnChange = func(from, to Phase) {
		b.State.Phase = to
		b.emit(log.NewPhaseChangeEvent(from.String(), to.String()))
	}
	return pm
}

// begin acquires the battle for one command.
func (b *Battle) begin(ctx context.Context) (func(), error) {
	if !b.mu.TryLock() {
		return nil, reject(ErrBusy, "Wait for the current action to finish")
	}
	b.ctx = ctx
	return b.mu.Unlock, nil
}

func (b *Battle) newID() int {
	b.nextID++
	return b.nextID
}

// emit stamps an event with the battle's counters and publishes it.
func (b *Battle) emit(ev log.GameEvent) {
	ev.Turn = b.State.Turn
	ev.Wave = b.State.CurrentWave
	ev.Phase = b.State.Phase.String()
	b.logger.Log(ev)
	if err := b.presenter.Notify(b.ctx, ev); err != nil {
		b.zap.Debug("presenter notify failed", zap.String("event", ev.Type.String()), zap.Error(err))
	}
}

func (b *Battle) message(format string, args ...any) {
	b.emit(log.NewMessageEvent(fmt.Sprintf(format, args...)))
}

func (b *Battle) emitStats() {
	p := b.Player
	b.emit(log.NewStatsChangedEvent(p.HP, p.Mana, p.Defense))
}

func (b *Battle) emitHand() {
	b.emit(log.NewHandChangedEvent(len(b.Player.Hand)))
}

// Logger returns the battle's event log.
func (b *Battle) Logger() log.EventLogger {
	return b.logger
}

// Content returns the catalog the battle spawns from.
func (b *Battle) Content() *Content {
	return b.content
}

// Phase returns the current phase.
func (b *Battle) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.State.Phase
}

// View calls fn with the live state once no resolution is running. fn must
// not retain or mutate what it is given.
func (b *Battle) View(fn func(s Snapshot)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(Snapshot{
		Player:      b.Player,
		Game:        b.State,
		Selection:   b.Selection,
		NextID:      b.nextID,
		ResumePhase: b.phase.ResumeTo(),
	})
}

// --- Phase and turn flow ---

// StartCombat spawns the current wave and begins the first player turn.
func (b *Battle) StartCombat(ctx context.Context) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if cur := b.State.Phase; cur != PhaseRunning && cur != PhaseEvent {
		return reject(ErrIllegalPhase, fmt.Sprintf("Cannot start combat while %s", cur))
	}
	if err := b.spawnWave(); err != nil {
		return err
	}
	p := b.Player
	p.CountEffects = p.CountEffects[:0]
	p.Buffs = p.Buffs[:0]
	p.ExchangeMode = false
	b.Selection = nil
	b.State.Turn = 0
	if !b.noShuffle {
		p.ShuffleDeck(b.rng)
		b.emit(log.NewShuffleEvent(len(p.Deck)))
	}
	b.phase.Transition(PhaseCombat)
	b.emit(log.NewCombatStartEvent(b.State.CurrentWave, len(b.State.Enemies)))
	b.zap.Info("combat started",
		zap.Int("wave", b.State.CurrentWave),
		zap.Int("enemies", len(b.State.Enemies)))
	b.startTurn()
	return nil
}

func (b *Battle) spawnWave() error {
	names, scale := b.content.WaveAt(b.State.CurrentWave)
	b.State.Enemies = b.State.Enemies[:0]
	for _, name := range names {
		if len(b.State.Enemies) >= b.Rules.MaxEnemies {
			break
		}
		e, err := b.content.NewEnemy(name, b.newID(), scale)
		if err != nil {
			return fmt.Errorf("spawn wave %d: %w", b.State.CurrentWave, err)
		}
		b.State.Enemies = append(b.State.Enemies, e)
	}
	return nil
}

// startTurn opens a player turn: fresh shield and mana, hand refilled.
func (b *Battle) startTurn() {
	p := b.Player
	b.State.Turn++
	p.Defense = 2 * p.PassiveLevel(PassiveIronSkin)
	p.Mana = p.MaxMana
	p.ExchangeUsed = false
	p.ExchangeMode = false
	p.SkillsThisTurn = 0
	b.emit(log.NewTurnStartEvent(b.State.Turn))

	if need := b.Rules.HandSize - len(p.Hand); need > 0 {
		b.draw(need)
	}
	b.emitStats()
}

// draw draws n cards, reshuffling the discard when the deck runs dry.
func (b *Battle) draw(n int) []*Card {
	drawn, reshuffled := b.Player.Draw(n, b.rng)
	if reshuffled {
		b.emit(log.NewShuffleEvent(len(b.Player.Deck) + len(drawn)))
	}
	for _, c := range drawn {
		b.emit(log.NewDrawEvent(c.Name))
	}
	if len(drawn) > 0 {
		b.emitHand()
	}
	return drawn
}

// EndTurn waits: enemies and count effects tick once, statuses tick, and a
// new player turn begins.
func (b *Battle) EndTurn(ctx context.Context) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := b.requireCombat(); err != nil {
		return err
	}
	b.emit(log.NewTurnEndEvent(b.State.Turn))
	b.tick()
	if b.settle() {
		return nil
	}
	b.tickStatuses()
	if b.settle() {
		return nil
	}
	for _, e := range b.State.Enemies {
		if e.Taunt {
			e.TauntDuration--
			if e.TauntDuration <= 0 {
				e.Taunt = false
				e.TauntDuration = 0
			}
		}
		if e.SummonCooldown > 0 {
			e.SummonCooldown--
		}
	}
	b.startTurn()
	return nil
}

// requireCombat rejects commands outside an idle combat turn.
func (b *Battle) requireCombat() error {
	if b.State.Phase != PhaseCombat {
		return reject(ErrNotCombat, "Not in combat")
	}
	if b.Selection != nil {
		return reject(ErrTargeting, "Choose a target first")
	}
	return nil
}

// settle resolves the end of a fight. It reports whether combat is over.
func (b *Battle) settle() bool {
	switch {
	case b.State.Phase == PhaseGameOver:
		return true
	case b.Player.HP <= 0:
		b.gameOver()
		return true
	case b.State.Phase == PhaseCombat && len(b.State.LiveEnemies()) == 0:
		b.waveClear()
		return true
	default:
		return b.State.Phase != PhaseCombat
	}
}

func (b *Battle) gameOver() {
	b.Selection = nil
	b.phase.Force(PhaseGameOver)
	b.emit(log.NewCombatEndEvent("defeat"))
	b.emit(log.NewGameOverEvent(b.State.Score))
	b.zap.Info("game over", zap.Int("score", b.State.Score), zap.Int("wave", b.State.CurrentWave))
}

// ToggleExchangeMode arms or disarms the once-per-turn card exchange.
func (b *Battle) ToggleExchangeMode(ctx context.Context) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := b.requireCombat(); err != nil {
		return err
	}
	if b.Player.ExchangeUsed {
		return reject(ErrExchangeUsed, "Already exchanged a card this turn")
	}
	b.Player.ExchangeMode = !b.Player.ExchangeMode
	b.emitHand()
	return nil
}

// Pause suspends the current phase.
func (b *Battle) Pause(ctx context.Context) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if !b.phase.Pause() {
		return reject(ErrIllegalPhase, fmt.Sprintf("Cannot pause while %s", b.State.Phase))
	}
	return nil
}

// Resume returns to the phase active before Pause.
func (b *Battle) Resume(ctx context.Context) error {
	unlock, err := b.begin(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if !b.phase.Resume() {
		return reject(ErrIllegalPhase, "Not paused")
	}
	return nil
}

// Transition requests a phase change through the transition table.
func (b *Battle) Transition(to Phase) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase.Transition(to)
}
