package animate

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/schedule"
)

// Phase marks which part of a sequence is on screen
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLift
	PhaseRotate
	PhaseDrop
	PhaseWrap  // Book wrapper expanding or collapsing
	PhaseCover // Cover swinging open or shut
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLift:
		return "lift"
	case PhaseRotate:
		return "rotate"
	case PhaseDrop:
		return "drop"
	case PhaseWrap:
		return "wrap"
	case PhaseCover:
		return "cover"
	default:
		return "unknown"
	}
}

// Operation is the handle of one animator run
type Operation struct {
	ID   string
	Kind string

	token     *schedule.Token
	err       error
	done      bool
	cancelled bool
}

// Cancelled reports whether the run ended early because it was cancelled
func (o *Operation) Cancelled() bool {
	return o.cancelled
}

// Done reports whether the run has finished, early or not
func (o *Operation) Done() bool {
	return o.done
}

// Animator runs at most one timed sequence at a time. Starting any run
// cancels the one before it.
type Animator struct {
	sched   schedule.Scheduler
	timings domain.Timings
	logger  *slog.Logger

	current *Operation
	phase   Phase
	onPhase func(Phase)
}

// New creates an animator. Timings are read afresh at the start of every run.
func New(sched schedule.Scheduler, timings domain.Timings, logger *slog.Logger) *Animator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Animator{
		sched:   sched,
		timings: timings,
		logger:  logger,
	}
}

// OnPhase registers a hook called whenever the phase marker changes
func (a *Animator) OnPhase(fn func(Phase)) {
	a.onPhase = fn
}

// Phase returns the current phase marker
func (a *Animator) Phase() Phase {
	return a.phase
}

// Current returns the outstanding operation, or nil
func (a *Animator) Current() *Operation {
	if a.current == nil || a.current.done {
		return nil
	}
	return a.current
}

// Last returns the most recently started operation, finished or not
func (a *Animator) Last() *Operation {
	return a.current
}

// Cancel stops the outstanding operation, if any. An operation parked
// between RunOpenSequence and FinishOpenSequence is finished here.
func (a *Animator) Cancel() {
	op := a.current
	if op == nil || op.done {
		return
	}
	op.token.Cancel()
	if !op.done {
		op.cancelled = true
		a.finish(op)
	}
}

// RunFlip plays lift, rotate and drop in sequence. onMidpoint fires once,
// partway into rotate, unless the run is cancelled first. done receives nil
// when the run completes or is cancelled, and onMidpoint's error otherwise.
func (a *Animator) RunFlip(dir domain.Direction, onMidpoint func() error, done func(error)) *Operation {
	op := a.begin("flip")
	d := ReadDurations(a.timings)
	a.logger.Debug("flip started", "op", op.ID, "direction", dir.String())

	reported := false
	finish := func() {
		a.finish(op)
		if done != nil && !reported {
			reported = true
			done(op.err)
		}
	}

	a.setPhase(op, PhaseLift)
	a.wait(op, d.Lift+d.SafetyMargin, func() {
		a.setPhase(op, PhaseRotate)

		midpointFired := false
		midpoint := func() {
			if midpointFired || op.token.Cancelled() {
				return
			}
			midpointFired = true
			if err := onMidpoint(); err != nil {
				op.err = err
				op.token.Cancel()
			}
		}
		timer := a.sched.After(d.SwapDelay(dir), midpoint)

		a.wait(op, d.Rotate+d.SafetyMargin, func() {
			// The swap must happen even when configured later than the rotation
			if timer.Stop() {
				midpoint()
				if op.token.Cancelled() {
					finish()
					return
				}
			}
			a.setPhase(op, PhaseDrop)
			a.wait(op, d.Drop+d.SafetyMargin, finish, finish)
		}, finish)
	}, finish)

	return op
}

// RunOpenSequence plays the wrapper expansion. done is told whether the run
// was cancelled; when it was not, the caller measures and paginates and then
// calls FinishOpenSequence with the same operation.
func (a *Animator) RunOpenSequence(done func(op *Operation, cancelled bool)) *Operation {
	op := a.begin("open")
	d := ReadDurations(a.timings)

	a.setPhase(op, PhaseWrap)
	a.wait(op, d.Wrap+d.SafetyMargin, func() {
		done(op, false)
	}, func() {
		a.finish(op)
		done(op, true)
	})
	return op
}

// FinishOpenSequence plays the cover reveal for an operation started by
// RunOpenSequence. A stale operation resolves immediately as cancelled.
func (a *Animator) FinishOpenSequence(op *Operation, done func(cancelled bool)) {
	if op == nil || op != a.current || op.token.Cancelled() {
		if op != nil && !op.done {
			op.cancelled = true
			op.done = true
		}
		done(true)
		return
	}
	d := ReadDurations(a.timings)

	a.setPhase(op, PhaseCover)
	a.wait(op, d.Cover+d.SafetyMargin, func() {
		a.finish(op)
		done(false)
	}, func() {
		a.finish(op)
		done(true)
	})
}

// RunCloseSequence swings the cover shut and collapses the wrapper
func (a *Animator) RunCloseSequence(done func(cancelled bool)) *Operation {
	op := a.begin("close")
	d := ReadDurations(a.timings)

	cancelled := func() {
		a.finish(op)
		done(true)
	}

	a.setPhase(op, PhaseCover)
	a.wait(op, d.Cover+d.SafetyMargin, func() {
		a.setPhase(op, PhaseWrap)
		a.wait(op, d.Wrap+d.SafetyMargin, func() {
			a.finish(op)
			done(false)
		}, cancelled)
	}, cancelled)
	return op
}

// begin cancels whatever is outstanding and starts a fresh operation
func (a *Animator) begin(kind string) *Operation {
	if prev := a.current; prev != nil && !prev.done {
		a.logger.Debug("superseding operation", "op", prev.ID, "kind", prev.Kind)
		a.Cancel()
	}
	op := &Operation{
		ID:    uuid.New().String(),
		Kind:  kind,
		token: schedule.NewToken(),
	}
	a.current = op
	return op
}

// wait resolves to next after d, or to stop if op is cancelled first.
// Cancellation is a normal early exit, not an error.
func (a *Animator) wait(op *Operation, d time.Duration, next, stop func()) {
	schedule.Wait(a.sched, op.token, d, func(cancelled bool) {
		if cancelled {
			op.cancelled = op.err == nil
			stop()
			return
		}
		next()
	})
}

func (a *Animator) finish(op *Operation) {
	if op.done {
		return
	}
	op.done = true
	if a.current == op {
		a.setPhase(op, PhaseIdle)
	}
	a.logger.Debug("operation finished", "op", op.ID, "kind", op.Kind, "cancelled", op.cancelled)
}

func (a *Animator) setPhase(op *Operation, p Phase) {
	if a.current != op || a.phase == p {
		return
	}
	a.phase = p
	if a.onPhase != nil {
		a.onPhase(p)
	}
}
