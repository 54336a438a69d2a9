// Package navigation performs discrete flips: keyboard and button presses,
// and direct jumps to a page.
package navigation

import (
	"log/slog"

	"github.com/mmcdole/leaf/internal/animate"
	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/lifecycle"
	"github.com/mmcdole/leaf/internal/render"
)

// Book opens and closes the cover. A flip past either end of a closed or
// first-page book is delegated to it.
type Book interface {
	Open(startIndex int) error
	Close() error
}

// Controller turns flip and jump requests into animated transitions. It
// is confined to the scheduler loop.
type Controller struct {
	machine  *lifecycle.Machine
	renderer *render.Renderer
	animator *animate.Animator
	cursor   domain.Cursor
	book     Book
	signal   domain.Signal
	logger   *slog.Logger
}

// Config bundles the collaborators of a Controller
type Config struct {
	Machine  *lifecycle.Machine
	Renderer *render.Renderer
	Animator *animate.Animator
	Cursor   domain.Cursor
	Book     Book
	Signal   domain.Signal
	Logger   *slog.Logger
}

// NewController creates a navigation controller
func NewController(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		machine:  cfg.Machine,
		renderer: cfg.Renderer,
		animator: cfg.Animator,
		cursor:   cfg.Cursor,
		book:     cfg.Book,
		signal:   cfg.Signal,
		logger:   logger,
	}
}

// Flip turns one view in dir. A next flip on a closed book opens it and a
// prev flip from the first page closes it. Otherwise the flip is rejected,
// returning false with no side effects, while the book is busy, not open, or
// at the end in dir.
func (c *Controller) Flip(dir domain.Direction) (bool, error) {
	current := c.cursor.CurrentIndex()

	if c.machine.State() == lifecycle.Closed && dir == domain.Next {
		if c.book == nil {
			return false, nil
		}
		return true, c.book.Open(current)
	}
	if c.machine.IsOpened() && current == 0 && dir == domain.Prev {
		if c.book == nil {
			return false, nil
		}
		return true, c.book.Close()
	}

	if !c.ready() {
		return false, nil
	}

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
	return c.run(dir, current, target)
}

// JumpTo flips directly to target, clamped into the book. Jumping to the
// current index is a no-op.
func (c *Controller) JumpTo(target int) (bool, error) {
	if !c.ready() {
		return false, nil
	}
	current := c.cursor.CurrentIndex()
	target = max(0, min(target, c.cursor.MaxIndex()))
	if target == current {
		return false, nil
	}

	dir := domain.Next
	if target < current {
		dir = domain.Prev
	}
	return c.run(dir, current, target)
}

func (c *Controller) ready() bool {
	return c.machine.IsOpened() && !c.machine.IsBusy()
}

func (c *Controller) run(dir domain.Direction, current, target int) (bool, error) {
	if !c.machine.TransitionTo(lifecycle.Flipping) {
		return false, nil
	}

	single := c.cursor.SinglePage()
	err := c.renderer.PrepareBuffer(target, single)
	if err == nil {
		err = c.renderer.PrepareTransitionSurfaces(current, target, dir, single)
	}
	if err != nil {
		c.logger.Error("flip failed", "direction", dir.String(), "error", err)
		c.machine.Reset(lifecycle.Opened)
		return false, err
	}

	if c.signal != nil {
		if err := c.signal.Play("flip"); err != nil {
			c.logger.Warn("flip signal failed", "error", err)
		}
	}

	c.animator.RunFlip(dir, func() error {
		c.renderer.SwapActiveAndBuffer()
		c.cursor.Commit(target)
		return nil
	}, func(err error) {
		if err != nil {
			c.logger.Error("flip animation failed", "error", err)
		}
		c.renderer.ClearTransition()
		if c.machine.State() == lifecycle.Flipping {
			c.machine.TransitionTo(lifecycle.Opened)
		}
	})
	return true, nil
}
