// Package schedule provides the cooperative timing primitives the flip engine
// runs on: timers, display frames, background work and cancellation tokens.
//
// Every callback handed to a Scheduler runs on the scheduler's owning loop,
// never concurrently with another callback. Engine state therefore needs no
// locks as long as it is only touched from those callbacks.
package schedule

import "time"

// DefaultFrameInterval is one display frame at 60Hz
const DefaultFrameInterval = 16 * time.Millisecond

// Timer is a pending callback that can be withdrawn
type Timer interface {
	// Stop prevents the callback from running. It reports whether the
	// callback was still pending.
	Stop() bool
}

// Scheduler runs callbacks on a single cooperative loop
type Scheduler interface {
	Now() time.Time

	// After runs fn once d has elapsed
	After(d time.Duration, fn func()) Timer

	// Frame runs fn on the next display frame
	Frame(fn func()) Timer

	// Async runs work off the loop, then runs done back on the loop
	Async(work func(), done func())
}

// Wait calls done exactly once: with cancelled=false when d has elapsed, or
// with cancelled=true as soon as tok is cancelled, whichever comes first.
// A token that is already cancelled resolves immediately.
func Wait(s Scheduler, tok *Token, d time.Duration, done func(cancelled bool)) {
	if tok.Cancelled() {
		done(true)
		return
	}

	settled := false
	timer := s.After(d, func() {
		if settled {
			return
		}
		settled = true
		tok.OnCancel(nil)
		done(false)
	})
	tok.OnCancel(func() {
		if settled {
			return
		}
		settled = true
		timer.Stop()
		done(true)
	})
}
