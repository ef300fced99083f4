package game

import "errors"

var (
	ErrBusy             = errors.New("a resolution is in progress")
	ErrNotCombat        = errors.New("not in combat")
	ErrTargeting        = errors.New("a target must be chosen first")
	ErrNoTargeting      = errors.New("no target selection pending")
	ErrCardIndex        = errors.New("no card at that hand position")
	ErrInsufficientMana = errors.New("not enough mana")
	ErrNoDurability     = errors.New("weapon has no durability")
	ErrIllegalTarget    = errors.New("illegal target")
	ErrExchangeUsed     = errors.New("exchange already used this turn")
	ErrNoReward         = errors.New("no such reward")
	ErrIllegalPhase     = errors.New("not allowed in this phase")
	ErrUnknownCard      = errors.New("unknown card")
	ErrUnknownEnemy     = errors.New("unknown enemy")
)

// RejectedError is a player action the battle refused. Nothing was mutated;
// Message is the text shown to the player.
type RejectedError struct {
	Reason  error
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return e.Reason.Error()
	}
	return e.Message
}

func (e *RejectedError) Unwrap() error { return e.Reason }

func reject(reason error, message string) error {
	return &RejectedError{Reason: reason, Message: message}
}

// IsRejected reports whether err is a rejected player action.
func IsRejected(err error) bool {
	var re *RejectedError
	return errors.As(err, &re)
}
