package schedule

import (
	"sync"
	"time"
)

// FiredMsg is posted to the UI loop when a Loop callback is due. The loop owner
// must hand it back to Loop.Dispatch from its update goroutine.
type FiredMsg struct {
	id uint64
}

// Loop is a Scheduler for an event loop such as a Bubble Tea program. Real
// timers fire on their own goroutines; Loop only posts a FiredMsg, and the
// callback itself runs when the loop dispatches that message.
type Loop struct {
	frame time.Duration

	mu      sync.Mutex
	send    func(msg any)
	seq     uint64
	pending map[uint64]func()
}

// NewLoop creates a loop scheduler. Attach must be called before any timer fires.
func NewLoop(frame time.Duration) *Loop {
	if frame <= 0 {
		frame = DefaultFrameInterval
	}
	return &Loop{
		frame:   frame,
		pending: make(map[uint64]func()),
	}
}

// Attach sets the function used to post messages to the event loop
func (l *Loop) Attach(send func(msg any)) {
	l.mu.Lock()
	l.send = send
	l.mu.Unlock()
}

func (l *Loop) Now() time.Time {
	return time.Now()
}

func (l *Loop) After(d time.Duration, fn func()) Timer {
	id := l.register(fn)
	t := time.AfterFunc(d, func() { l.post(id) })
	return &loopTimer{loop: l, id: id, timer: t}
}

func (l *Loop) Frame(fn func()) Timer {
	return l.After(l.frame, fn)
}

func (l *Loop) Async(work func(), done func()) {
	id := l.register(done)
	go func() {
		work()
		l.post(id)
	}()
}

// Dispatch runs the callback a FiredMsg refers to. Stopped callbacks are skipped.
func (l *Loop) Dispatch(msg FiredMsg) {
	if fn := l.take(msg.id); fn != nil {
		fn()
	}
}

func (l *Loop) register(fn func()) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.pending[l.seq] = fn
	return l.seq
}

func (l *Loop) take(id uint64) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn := l.pending[id]
	delete(l.pending, id)
	return fn
}

func (l *Loop) post(id uint64) {
	l.mu.Lock()
	send := l.send
	l.mu.Unlock()
	if send != nil {
		send(FiredMsg{id: id})
	}
}

type loopTimer struct {
	loop  *Loop
	id    uint64
	timer *time.Timer
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	return t.loop.take(t.id) != nil
}
