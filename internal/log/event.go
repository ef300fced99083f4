package log

// EventType enumerates all observable battle events.
type EventType int

const (
	EventPhaseChange EventType = iota
	EventCombatStart
	EventCombatEnd
	EventTurnStart
	EventTurnEnd
	EventHandChanged
	EventStatsChanged
	EventDraw
	EventShuffle
	EventCardUsed
	EventTargetingStart
	EventTargetingCancel
	EventEquip
	EventWeaponBroken
	EventDrawAttack
	EventDamage
	EventParry
	EventCounter
	EventEnemyAction
	EventEnemyKilled
	EventSummon
	EventStatusTick
	EventCountEffectAdd
	EventCountEffectResolve
	EventRewardShown
	EventSkillSelectShown
	EventLevelUp
	EventWaveCleared
	EventGameOver
	EventMessage
)

func (e EventType) String() string {
	switch e {
	case EventPhaseChange:
		return "PhaseChange"
	case EventCombatStart:
		return "CombatStart"
	case EventCombatEnd:
		return "CombatEnd"
	case EventTurnStart:
		return "TurnStart"
	case EventTurnEnd:
		return "TurnEnd"
	case EventHandChanged:
		return "HandChanged"
	case EventStatsChanged:
		return "StatsChanged"
	case EventDraw:
		return "Draw"
	case EventShuffle:
		return "Shuffle"
	case EventCardUsed:
		return "CardUsed"
	case EventTargetingStart:
		return "TargetingStart"
	case EventTargetingCancel:
		return "TargetingCancel"
	case EventEquip:
		return "Equip"
	case EventWeaponBroken:
		return "WeaponBroken"
	case EventDrawAttack:
		return "DrawAttack"
	case EventDamage:
		return "Damage"
	case EventParry:
		return "Parry"
	case EventCounter:
		return "Counter"
	case EventEnemyAction:
		return "EnemyAction"
	case EventEnemyKilled:
		return "EnemyKilled"
	case EventSummon:
		return "Summon"
	case EventStatusTick:
		return "StatusTick"
	case EventCountEffectAdd:
		return "CountEffectAdd"
	case EventCountEffectResolve:
		return "CountEffectResolve"
	case EventRewardShown:
		return "RewardShown"
	case EventSkillSelectShown:
		return "SkillSelectShown"
	case EventLevelUp:
		return "LevelUp"
	case EventWaveCleared:
		return "WaveCleared"
	case EventGameOver:
		return "GameOver"
	case EventMessage:
		return "Message"
	default:
		return "Unknown"
	}
}

// GameEvent represents a single observable event in a battle.
type GameEvent struct {
	Seq     int       // monotonic sequence number
	Turn    int       // which turn (1-based, 0 outside combat)
	Wave    int       // current wave
	Phase   string    // phase name at emission time
	Type    EventType // event type
	Card    string    // card name (if applicable)
	Target  int       // enemy instance ID (0 = player or none)
	Amount  int       // damage, heal, count... (type dependent)
	Details string    // human-readable detail string
}
