// Package gesture turns continuous pointer drags into page flips. A drag
// proposes a flip; releasing it past the halfway angle commits the flip,
// anywhere else cancels it.
package gesture

import (
	"log/slog"
	"math"

	"github.com/mmcdole/leaf/internal/animate"
	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/lifecycle"
	"github.com/mmcdole/leaf/internal/render"
	"github.com/mmcdole/leaf/internal/schedule"
)

// CommitAngle is the threshold a released gesture must exceed to commit
const CommitAngle = 90.0

// MapAngle converts a horizontal offset within a reference width into a leaf
// rotation in [0,180]. A next gesture starts from the right edge, a prev
// gesture from the left.
func MapAngle(dir domain.Direction, x, width float64) float64 {
	if width <= 0 {
		return 0
	}
	ratio := x / width
	angle := ratio * 180
	if dir == domain.Next {
		angle = (1 - ratio) * 180
	}
	return math.Max(0, math.Min(180, angle))
}

// ShadowIntensity peaks when the leaf stands upright and vanishes flat
func ShadowIntensity(angle float64) float64 {
	return math.Max(0, math.Sin(angle/180*math.Pi))
}

// Commits reports whether a released gesture at angle completes the flip.
// Exactly 90 degrees cancels.
func Commits(angle float64) bool {
	return angle > CommitAngle
}

// Gesture is the state of one drag, from start until it resolves
type Gesture struct {
	Direction domain.Direction
	Angle     float64
	Shadow    float64
	Origin    domain.Rect
	From      int // Index shown when the drag began
	Target    int // Index the drag proposes
	Resolving bool
}

// Controller layers drag handling on top of the lifecycle machine. It is
// confined to the scheduler loop.
type Controller struct {
	machine  *lifecycle.Machine
	renderer *render.Renderer
	cursor   domain.Cursor
	tween    *animate.Tween
	sched    schedule.Scheduler
	timings  domain.Timings
	signal   domain.Signal
	logger   *slog.Logger

	gesture *Gesture
	pending *float64
	frame   schedule.Timer
}

// Config bundles the collaborators of a Controller
type Config struct {
	Machine   *lifecycle.Machine
	Renderer  *render.Renderer
	Cursor    domain.Cursor
	Scheduler schedule.Scheduler
	Timings   domain.Timings
	Signal    domain.Signal
	Logger    *slog.Logger
}

// NewController creates a gesture controller
func NewController(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		machine:  cfg.Machine,
		renderer: cfg.Renderer,
		cursor:   cfg.Cursor,
		tween:    animate.NewTween(cfg.Scheduler),
		sched:    cfg.Scheduler,
		timings:  cfg.Timings,
		signal:   cfg.Signal,
		logger:   logger,
	}
}

// Active reports whether a drag is in progress or resolving
func (c *Controller) Active() bool {
	return c.gesture != nil
}

// Gesture returns a copy of the current drag state
func (c *Controller) Gesture() (Gesture, bool) {
	if c.gesture == nil {
		return Gesture{}, false
	}
	return *c.gesture, true
}

// Start begins a drag. It is rejected, returning false with no side effects,
// while the book is busy, not open, or has no page in the requested
// direction. A missing slot or content source is an error; the lifecycle is
// reset to Opened in that case.
func (c *Controller) Start(dir domain.Direction, origin domain.Rect) (bool, error) {
	if c.gesture != nil || c.machine.IsBusy() || !c.machine.IsOpened() {
		return false, nil
	}

	current := c.cursor.CurrentIndex()
	var target int
	switch dir {
	case domain.Next:
		target = current + c.cursor.Step()
		if target > c.cursor.MaxIndex() {
			return false, nil
		}
	case domain.Prev:
		if current <= 0 {
			return false, nil
		}
		target = max(0, current-c.cursor.Step())
	}

	if !c.machine.TransitionTo(lifecycle.Flipping) {
		return false, nil
	}

	single := c.cursor.SinglePage()
	err := c.renderer.PrepareBuffer(target, single)
	if err == nil {
		err = c.renderer.PrepareTransitionSurfaces(current, target, dir, single)
	}
	if err != nil {
		c.logger.Error("gesture start failed", "error", err)
		c.machine.Reset(lifecycle.Opened)
		return false, err
	}

	c.gesture = &Gesture{
		Direction: dir,
		Origin:    origin,
		From:      current,
		Target:    target,
	}
	c.logger.Debug("gesture started", "direction", dir.String(), "from", current, "target", target)
	return true, nil
}

// Move feeds a pointer sample. Samples are applied at most once per frame;
// a newer sample replaces one still waiting for its frame.
func (c *Controller) Move(x float64) {
	if c.gesture == nil || c.gesture.Resolving {
		return
	}
	c.pending = &x
	if c.frame == nil {
		c.frame = c.sched.Frame(c.flush)
	}
}

// End releases the drag and animates it to completion or back to rest
func (c *Controller) End() {
	g := c.gesture
	if g == nil || g.Resolving {
		return
	}
	if c.frame != nil {
		c.frame.Stop()
		c.flush()
	}

	g.Resolving = true
	commit := Commits(g.Angle)
	to := 0.0
	if commit {
		to = 180
	}

	d := animate.ReadDurations(c.timings)
	duration := animate.TweenDuration(g.Angle, to, d.Rotate)
	c.logger.Debug("gesture released", "angle", g.Angle, "commit", commit, "duration", duration)

	c.tween.Run(g.Angle, to, duration, c.setAngle, func(cancelled bool) {
		c.resolve(commit && !cancelled)
	})
}

// Cancel abandons the drag immediately with no index change
func (c *Controller) Cancel() {
	if c.gesture == nil {
		return
	}
	if c.frame != nil {
		c.frame.Stop()
		c.frame = nil
		c.pending = nil
	}
	if c.gesture.Resolving {
		c.tween.Cancel()
		return
	}
	c.resolve(false)
}

func (c *Controller) flush() {
	c.frame = nil
	if c.pending == nil || c.gesture == nil {
		return
	}
	x := *c.pending
	c.pending = nil
	g := c.gesture
	c.setAngle(MapAngle(g.Direction, x-g.Origin.X, g.Origin.Width))
}

func (c *Controller) setAngle(angle float64) {
	if c.gesture == nil {
		return
	}
	c.gesture.Angle = angle
	c.gesture.Shadow = ShadowIntensity(angle)
}

// resolve finishes the gesture. Whatever happened, the lifecycle returns to
// Opened and the gesture state is cleared.
func (c *Controller) resolve(commit bool) {
	g := c.gesture
	if g == nil {
		return
	}

	if commit {
		c.renderer.SwapActiveAndBuffer()
		c.cursor.Commit(g.Target)
		if c.signal != nil {
			if err := c.signal.Play("flip"); err != nil {
				c.logger.Warn("flip signal failed", "error", err)
			}
		}
	}
	c.renderer.ClearTransition()

	c.gesture = nil
	c.pending = nil
	if c.machine.State() == lifecycle.Flipping {
		c.machine.TransitionTo(lifecycle.Opened)
	}
	c.logger.Debug("gesture resolved", "commit", commit, "index", c.cursor.CurrentIndex())
}
