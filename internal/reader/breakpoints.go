package reader

// DefaultNarrowWidth is the terminal width below which the book shows one
// page at a time
const DefaultNarrowWidth = 100

// Breakpoints tracks which layout mode the current width falls into. One
// tracker is constructed per program and handed to everything that needs it.
type Breakpoints struct {
	narrowWidth int
	width       int
	narrow      bool
	subs        observers[bool]
}

// NewBreakpoints creates a tracker. A non-positive narrowWidth uses
// DefaultNarrowWidth.
func NewBreakpoints(narrowWidth int) *Breakpoints {
	if narrowWidth <= 0 {
		narrowWidth = DefaultNarrowWidth
	}
	return &Breakpoints{narrowWidth: narrowWidth}
}

// Update records a new width and reports whether the mode flipped.
// Subscribers are notified on a flip. The tracker starts in spread mode.
func (b *Breakpoints) Update(width int) bool {
	b.width = width
	narrow := width < b.narrowWidth
	changed := narrow != b.narrow
	b.narrow = narrow
	if changed {
		b.subs.notify(narrow)
	}
	return changed
}

// Width returns the last recorded width
func (b *Breakpoints) Width() int {
	return b.width
}

// Narrow reports whether single-page mode is in effect
func (b *Breakpoints) Narrow() bool {
	return b.narrow
}

// Step is the number of pages one flip advances
func (b *Breakpoints) Step() int {
	if b.narrow {
		return 1
	}
	return 2
}

// Subscribe registers fn for mode changes and returns an idempotent unsubscribe
func (b *Breakpoints) Subscribe(fn func(narrow bool)) func() {
	return b.subs.add(fn)
}
