package animate

import (
	"math"
	"time"

	"github.com/mmcdole/leaf/internal/schedule"
)

// MinTweenDuration is the shortest gesture resolution, however little
// angle remains
const MinTweenDuration = 150 * time.Millisecond

// EaseInOut is a cubic ease-in-out curve over t in [0,1]
func EaseInOut(t float64) float64 {
	t = clamp01(t)
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

// TweenDuration scales a full half-turn duration by the angular distance
// left to cover, never going below MinTweenDuration.
func TweenDuration(from, to float64, halfTurn time.Duration) time.Duration {
	d := time.Duration(float64(halfTurn) * math.Abs(to-from) / 180)
	return max(d, MinTweenDuration)
}

// Tween interpolates an angle across display frames. Starting a new run
// cancels the previous one.
type Tween struct {
	sched   schedule.Scheduler
	token   *schedule.Token
	running bool
}

// NewTween creates an angle interpolator
func NewTween(sched schedule.Scheduler) *Tween {
	return &Tween{sched: sched}
}

// Run eases from one angle to another over duration, calling step with the
// angle on every frame. The last step always lands exactly on to. done is
// called once, with cancelled=true if Cancel or another Run cut it short.
func (tw *Tween) Run(from, to float64, duration time.Duration, step func(angle float64), done func(cancelled bool)) {
	tw.Cancel()
	tok := schedule.NewToken()
	tw.token = tok
	tw.running = true

	start := tw.sched.Now()
	var timer schedule.Timer
	var tick func()
	tick = func() {
		if tok.Cancelled() {
			return
		}
		progress := 1.0
		if duration > 0 {
			progress = float64(tw.sched.Now().Sub(start)) / float64(duration)
		}
		if progress >= 1 {
			tok.OnCancel(nil)
			tw.running = false
			step(to)
			done(false)
			return
		}
		step(from + (to-from)*EaseInOut(progress))
		timer = tw.sched.Frame(tick)
	}

	tok.OnCancel(func() {
		if timer != nil {
			timer.Stop()
		}
		if tw.token == tok {
			tw.running = false
		}
		done(true)
	})
	timer = tw.sched.Frame(tick)
}

// Cancel stops the running interpolation, if any
func (tw *Tween) Cancel() {
	tw.token.Cancel()
}

// Running reports whether an interpolation is in progress
func (tw *Tween) Running() bool {
	return tw.running
}

func clamp01(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
