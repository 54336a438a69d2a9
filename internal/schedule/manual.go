package schedule

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler driven by Advance. Time only moves when
// the caller says so, which makes animation sequences testable without sleeps.
//
// Manual is not safe for concurrent use; Async runs its work inline.
type Manual struct {
	FrameInterval time.Duration

	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	due     time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewManual creates a manual scheduler starting at the Unix epoch
func NewManual() *Manual {
	return &Manual{
		FrameInterval: DefaultFrameInterval,
		now:           time.Unix(0, 0),
	}
}

func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) After(d time.Duration, fn func()) Timer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{due: m.now.Add(d), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (m *Manual) Frame(fn func()) Timer {
	return m.After(m.FrameInterval, fn)
}

func (m *Manual) Async(work func(), done func()) {
	work()
	m.After(0, done)
}

// Advance moves time forward by d, firing every timer that falls due on the
// way in due order. Timers scheduled by callbacks fire too if they fall due
// before the target time.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.due
		t.fired = true
		t.fn()
	}
	m.now = target
}

// Frames advances time by n frame intervals, one frame at a time
func (m *Manual) Frames(n int) {
	for i := 0; i < n; i++ {
		m.Advance(m.FrameInterval)
	}
}

// Flush runs timers until none are pending. It gives up after limit callbacks
// so a self-rescheduling loop cannot hang a test; it returns false in that case.
func (m *Manual) Flush(limit int) bool {
	for i := 0; i < limit; i++ {
		m.prune()
		if len(m.timers) == 0 {
			return true
		}
		m.sortTimers()
		t := m.timers[0]
		if t.due.After(m.now) {
			m.now = t.due
		}
		t.fired = true
		t.fn()
	}
	m.prune()
	return len(m.timers) == 0
}

// Pending returns the number of timers that have neither fired nor been stopped
func (m *Manual) Pending() int {
	m.prune()
	return len(m.timers)
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	m.prune()
	if len(m.timers) == 0 {
		return nil
	}
	m.sortTimers()
	if t := m.timers[0]; !t.due.After(target) {
		return t
	}
	return nil
}

func (m *Manual) sortTimers() {
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due.Equal(m.timers[j].due) {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due.Before(m.timers[j].due)
	})
}

func (m *Manual) prune() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(m.timers); i++ {
		m.timers[i] = nil
	}
	m.timers = live
}
