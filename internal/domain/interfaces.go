package domain

import (
	"context"
	"time"
)

// Paginator is the content pipeline. It lays sanitized content out into pages.
type Paginator interface {
	Paginate(ctx context.Context, raw string, geom Geometry) (*PaginationResult, error)
}

// Sanitizer cleans raw content before it reaches pagination
type Sanitizer interface {
	Sanitize(raw string) string
}

// Timings looks up named durations. ok is false when the name is unset and
// the caller should use its default.
type Timings interface {
	Duration(name string) (d time.Duration, ok bool)
}

// Signal emits fire-and-forget cues such as flip and open sounds
type Signal interface {
	Play(name string) error
}

// PositionStore persists the last read page per book
type PositionStore interface {
	LoadPosition(bookID string) (int, bool)
	SavePosition(bookID string, index int) error
}

// Cursor is the reader's page position as seen by the flip controllers
type Cursor interface {
	CurrentIndex() int
	Step() int
	SinglePage() bool
	MaxIndex() int

	// Commit moves the position to index and announces the change
	Commit(index int)
}
