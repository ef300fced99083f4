package game

import (
	"context"
	"errors"

	"github.com/looplab/fsm"
)

// phaseTable lists the legal destinations of every non-terminal phase.
// Staying in place is always legal; gameOver has no way out.
var phaseTable = map[Phase][]Phase{
	PhaseRunning: {PhaseRunning, PhaseCombat, PhaseEvent, PhasePaused, PhaseGameOver},
	PhaseCombat:  {PhaseCombat, PhaseVictory, PhasePaused, PhaseGameOver},
	PhaseVictory: {PhaseVictory, PhaseRunning, PhasePaused, PhaseGameOver},
	PhaseEvent:   {PhaseEvent, PhaseRunning, PhaseCombat, PhasePaused, PhaseGameOver},
	PhasePaused:  {PhaseRunning, PhaseCombat, PhaseVictory, PhaseEvent, PhasePaused, PhaseGameOver},
}

// phaseEvents turns the table into one fsm event per destination phase,
// named after the destination.
func phaseEvents() fsm.Events {
	sources := make(map[Phase][]string)
	for from, dests := range phaseTable {
		for _, to := range dests {
			sources[to] = append(sources[to], from.String())
		}
	}
	var events fsm.Events
	for to := PhaseRunning; to <= PhaseGameOver; to++ {
		if len(sources[to]) == 0 {
			continue
		}
		events = append(events, fsm.EventDesc{Name: to.String(), Src: sources[to], Dst: to.String()})
	}
	return events
}

// PhaseMachine governs the battle phase. Illegal transitions are ignored and
// reported through the boolean result.
type PhaseMachine struct {
	fsm      *fsm.FSM
	resumeTo Phase

	// OnChange, if set, observes every accepted change of phase.
	OnChange func(from, to Phase)
}

// NewPhaseMachine returns a machine sitting in the given phase.
func NewPhaseMachine(initial Phase) *PhaseMachine {
	pm := &PhaseMachine{resumeTo: PhaseRunning}
	pm.fsm = fsm.NewFSM(initial.String(), phaseEvents(), fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			pm.changed(e.Src, e.Dst)
		},
	})
	return pm
}

func (pm *PhaseMachine) changed(src, dst string) {
	if pm.OnChange == nil {
		return
	}
	from, _ := ParsePhase(src)
	to, _ := ParsePhase(dst)
	pm.OnChange(from, to)
}

// Current returns the active phase.
func (pm *PhaseMachine) Current() Phase {
	p, _ := ParsePhase(pm.fsm.Current())
	return p
}

// CanTransition reports whether Transition(to) would be accepted.
func (pm *PhaseMachine) CanTransition(to Phase) bool {
	for _, d := range phaseTable[pm.Current()] {
		if d == to {
			return true
		}
	}
	return false
}

// Transition moves to the given phase if the table allows it.
func (pm *PhaseMachine) Transition(to Phase) bool {
	err := pm.fsm.Event(context.Background(), to.String())
	if err == nil {
		return true
	}
	var noTransition fsm.NoTransitionError
	return errors.As(err, &noTransition)
}

// Force sets the phase unconditionally. Used for game over and resets.
func (pm *PhaseMachine) Force(to Phase) {
	from := pm.fsm.Current()
	pm.fsm.SetState(to.String())
	if from != to.String() {
		pm.changed(from, to.String())
	}
}

// Pause enters the paused phase, remembering where to resume.
func (pm *PhaseMachine) Pause() bool {
	cur := pm.Current()
	if cur == PhasePaused {
		return true
	}
	if !pm.Transition(PhasePaused) {
		return false
	}
	pm.resumeTo = cur
	return true
}

// Resume returns to the phase that was active before Pause.
func (pm *PhaseMachine) Resume() bool {
	if pm.Current() != PhasePaused {
		return false
	}
	return pm.Transition(pm.resumeTo)
}

// ResumeTo returns the phase Resume would restore.
func (pm *PhaseMachine) ResumeTo() Phase {
	return pm.resumeTo
}
