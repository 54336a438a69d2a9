package adapter

import (
	"io"
	"sync"
)

// Bell rings the terminal bell for reader cues when enabled
type Bell struct {
	mu      sync.Mutex
	out     io.Writer
	enabled func() bool
	cues    map[string]bool
}

// NewBell creates a bell writing to out. enabled is consulted on every cue,
// so a reloaded config takes effect immediately.
func NewBell(out io.Writer, enabled func() bool) *Bell {
	return &Bell{
		out:     out,
		enabled: enabled,
		cues:    map[string]bool{"flip": true, "open": true, "close": true},
	}
}

// Play implements domain.Signal. Unknown cues are ignored.
func (b *Bell) Play(name string) error {
	if b == nil || b.out == nil || !b.cues[name] {
		return nil
	}
	if b.enabled != nil && !b.enabled() {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.out, "\a")
	return err
}
