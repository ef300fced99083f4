package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// EventLogger is the interface for logging battle events.
type EventLogger interface {
	Log(event GameEvent)
	Events() []GameEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event GameEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]GameEvent, len(l.events))
	copy(out, l.events)
	return out
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	var result []GameEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return GameEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event GameEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e GameEvent) string {
	phase := e.Phase
	// Pad phase to 9 chars for alignment
	for len(phase) < 9 {
		phase += " "
	}
	return fmt.Sprintf("W%-2d T%-3d %s| %s", e.Wave, e.Turn, phase, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []GameEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---
// Turn, Wave and Phase are stamped by the emitting battle.

func NewPhaseChangeEvent(from, to string) GameEvent {
	return GameEvent{
		Type:    EventPhaseChange,
		Details: fmt.Sprintf("Phase %s → %s", from, to),
	}
}

func NewCombatStartEvent(wave, enemies int) GameEvent {
	return GameEvent{
		Type:    EventCombatStart,
		Amount:  enemies,
		Details: fmt.Sprintf("=== Wave %d: %d enemies ===", wave, enemies),
	}
}

func NewCombatEndEvent(reason string) GameEvent {
	return GameEvent{
		Type:    EventCombatEnd,
		Details: fmt.Sprintf("Combat ends (%s)", reason),
	}
}

func NewTurnStartEvent(turn int) GameEvent {
	return GameEvent{
		Type:    EventTurnStart,
		Amount:  turn,
		Details: fmt.Sprintf("--- Turn %d ---", turn),
	}
}

func NewTurnEndEvent(turn int) GameEvent {
	return GameEvent{
		Type:    EventTurnEnd,
		Amount:  turn,
		Details: fmt.Sprintf("Turn %d ends", turn),
	}
}

func NewHandChangedEvent(handSize int) GameEvent {
	return GameEvent{
		Type:    EventHandChanged,
		Amount:  handSize,
		Details: fmt.Sprintf("Hand now holds %d cards", handSize),
	}
}

func NewStatsChangedEvent(hp, mana, defense int) GameEvent {
	return GameEvent{
		Type:    EventStatsChanged,
		Amount:  hp,
		Details: fmt.Sprintf("HP %d, mana %d, shield %d", hp, mana, defense),
	}
}

func NewDrawEvent(cardName string) GameEvent {
	return GameEvent{
		Type:    EventDraw,
		Card:    cardName,
		Details: fmt.Sprintf("Player draws %s", cardName),
	}
}

func NewShuffleEvent(deckSize int) GameEvent {
	return GameEvent{
		Type:    EventShuffle,
		Amount:  deckSize,
		Details: fmt.Sprintf("Deck shuffled (%d cards)", deckSize),
	}
}

func NewCardUsedEvent(cardName string, manaCost int) GameEvent {
	return GameEvent{
		Type:    EventCardUsed,
		Card:    cardName,
		Amount:  manaCost,
		Details: fmt.Sprintf("Player uses %s (mana %d)", cardName, manaCost),
	}
}

func NewTargetingStartEvent(cardName string, candidates int) GameEvent {
	return GameEvent{
		Type:    EventTargetingStart,
		Card:    cardName,
		Amount:  candidates,
		Details: fmt.Sprintf("Choose a target for %s (%d candidates)", cardName, candidates),
	}
}

func NewTargetingCancelEvent(cardName string, refund int) GameEvent {
	return GameEvent{
		Type:    EventTargetingCancel,
		Card:    cardName,
		Amount:  refund,
		Details: fmt.Sprintf("Targeting for %s cancelled (%d mana returned)", cardName, refund),
	}
}

func NewEquipEvent(cardName string, durability int) GameEvent {
	return GameEvent{
		Type:    EventEquip,
		Card:    cardName,
		Amount:  durability,
		Details: fmt.Sprintf("Player equips %s (durability %d)", cardName, durability),
	}
}

func NewWeaponBrokenEvent(cardName string) GameEvent {
	return GameEvent{
		Type:    EventWeaponBroken,
		Card:    cardName,
		Details: fmt.Sprintf("%s breaks", cardName),
	}
}

func NewDrawAttackEvent(cardName, attackName string) GameEvent {
	return GameEvent{
		Type:    EventDrawAttack,
		Card:    cardName,
		Details: fmt.Sprintf("%s draw attack: %s", cardName, attackName),
	}
}

func NewDamageEvent(target int, targetName string, amount int, critical bool) GameEvent {
	details := fmt.Sprintf("%s takes %d damage", targetName, amount)
	if critical {
		details += " (critical)"
	}
	return GameEvent{
		Type:    EventDamage,
		Target:  target,
		Amount:  amount,
		Details: details,
	}
}

func NewPlayerDamageEvent(source string, amount, hp int) GameEvent {
	return GameEvent{
		Type:    EventDamage,
		Amount:  amount,
		Details: fmt.Sprintf("Player takes %d damage from %s (HP %d)", amount, source, hp),
	}
}

func NewParryEvent(source string, rate int) GameEvent {
	return GameEvent{
		Type:    EventParry,
		Amount:  rate,
		Details: fmt.Sprintf("Player parries %s (%d%%)", source, rate),
	}
}

func NewCounterEvent(target int, targetName string, amount int) GameEvent {
	return GameEvent{
		Type:    EventCounter,
		Target:  target,
		Amount:  amount,
		Details: fmt.Sprintf("Counter strikes %s for %d", targetName, amount),
	}
}

func NewEnemyActionEvent(enemy int, enemyName, actionName string) GameEvent {
	return GameEvent{
		Type:    EventEnemyAction,
		Target:  enemy,
		Details: fmt.Sprintf("%s uses %s", enemyName, actionName),
	}
}

func NewEnemyKilledEvent(enemy int, enemyName string, gold int) GameEvent {
	return GameEvent{
		Type:    EventEnemyKilled,
		Target:  enemy,
		Amount:  gold,
		Details: fmt.Sprintf("%s is defeated (%d gold)", enemyName, gold),
	}
}

func NewSummonEvent(enemy int, summonerName, summoned string) GameEvent {
	return GameEvent{
		Type:    EventSummon,
		Target:  enemy,
		Details: fmt.Sprintf("%s summons %s", summonerName, summoned),
	}
}

func NewStatusTickEvent(enemy int, enemyName, status string, amount int) GameEvent {
	return GameEvent{
		Type:    EventStatusTick,
		Target:  enemy,
		Amount:  amount,
		Details: fmt.Sprintf("%s suffers %d %s damage", enemyName, amount, status),
	}
}

func NewCountEffectAddEvent(name string, delay int) GameEvent {
	return GameEvent{
		Type:    EventCountEffectAdd,
		Card:    name,
		Amount:  delay,
		Details: fmt.Sprintf("%s readied (%d)", name, delay),
	}
}

func NewCountEffectResolveEvent(name, outcome string) GameEvent {
	return GameEvent{
		Type:    EventCountEffectResolve,
		Card:    name,
		Details: fmt.Sprintf("%s %s", name, outcome),
	}
}

func NewRewardShownEvent(names []string) GameEvent {
	return GameEvent{
		Type:    EventRewardShown,
		Amount:  len(names),
		Details: fmt.Sprintf("Rewards: %s", strings.Join(names, ", ")),
	}
}

func NewSkillSelectShownEvent(names []string) GameEvent {
	return GameEvent{
		Type:    EventSkillSelectShown,
		Amount:  len(names),
		Details: fmt.Sprintf("Choose a passive: %s", strings.Join(names, ", ")),
	}
}

func NewLevelUpEvent(level int) GameEvent {
	return GameEvent{
		Type:    EventLevelUp,
		Amount:  level,
		Details: fmt.Sprintf("Player reaches level %d", level),
	}
}

func NewWaveClearedEvent(wave, score int) GameEvent {
	return GameEvent{
		Type:    EventWaveCleared,
		Amount:  score,
		Details: fmt.Sprintf("Wave %d cleared (score %d)", wave, score),
	}
}

func NewGameOverEvent(score int) GameEvent {
	return GameEvent{
		Type:    EventGameOver,
		Amount:  score,
		Details: fmt.Sprintf("Game over (score %d)", score),
	}
}

func NewMessageEvent(message string) GameEvent {
	return GameEvent{
		Type:    EventMessage,
		Details: message,
	}
}
