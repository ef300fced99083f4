package game

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/peterkuimelis/bladedeck/internal/log"
)

// BeatKind names what a presentation beat stages.
type BeatKind int

const (
	BeatHit BeatKind = iota
	BeatDrawAttack
	BeatEnemyAction
	BeatEnemyHit
	BeatCountEffect
	BeatStatusTick
)

func (k BeatKind) String() string {
	switch k {
	case BeatHit:
		return "hit"
	case BeatDrawAttack:
		return "draw_attack"
	case BeatEnemyAction:
		return "enemy_action"
	case BeatEnemyHit:
		return "enemy_hit"
	case BeatCountEffect:
		return "count_effect"
	case BeatStatusTick:
		return "status_tick"
	default:
		return "unknown"
	}
}

// Beat is a presentation pause the engine awaits before applying the next
// mutation.
type Beat struct {
	Kind   BeatKind
	Index  int // hit index within a multi-hit sequence
	Delay  time.Duration
	Source string
}

// Presenter is the rendering collaborator. It observes events and stages
// beats; it never touches battle state.
type Presenter interface {
	Notify(ctx context.Context, event log.GameEvent) error
	Beat(ctx context.Context, beat Beat) error
}

// NopPresenter ignores everything. Used by tests and headless play.
type NopPresenter struct{}

func (NopPresenter) Notify(context.Context, log.GameEvent) error { return nil }
func (NopPresenter) Beat(context.Context, Beat) error            { return nil }

// SleepPresenter waits out each beat's delay, honouring cancellation.
type SleepPresenter struct {
	// Events, if non-nil, receives every notification.
	Events log.EventLogger
}

func (p SleepPresenter) Notify(_ context.Context, event log.GameEvent) error {
	if p.Events != nil {
		p.Events.Log(event)
	}
	return nil
}

func (SleepPresenter) Beat(ctx context.Context, beat Beat) error {
	if beat.Delay <= 0 {
		return nil
	}
	t := time.NewTimer(beat.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// step is one unit of a resolution: an optional beat, then a mutation.
type step struct {
	beat  *Beat
	apply func()
}

// stepQueue runs a resolution strictly in order. Steps may not be skipped
// or reordered once the resolution has passed its gate.
type stepQueue struct {
	steps []step
}

func (q *stepQueue) push(beat *Beat, apply func()) {
	q.steps = append(q.steps, step{beat: beat, apply: apply})
}

// run drains the queue. A failing or cancelled presenter only loses the
// pacing; every mutation still applies.
func (b *Battle) run(q *stepQueue) {
	for len(q.steps) > 0 {
		s := q.steps[0]
		q.steps = q.steps[1:]
		if s.beat != nil {
			if err := b.presenter.Beat(b.ctx, *s.beat); err != nil {
				b.zap.Debug("presenter beat failed", zap.String("beat", s.beat.Kind.String()), zap.Error(err))
			}
		}
		s.apply()
	}
}
