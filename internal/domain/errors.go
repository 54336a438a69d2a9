package domain

import "errors"

// Sentinel errors for engine operations
var (
	// ErrSlotMissing indicates a viewport role has no handle
	ErrSlotMissing = errors.New("viewport slot missing")

	// ErrNoContent indicates no pagination result has been installed
	ErrNoContent = errors.New("no paginated content")

	// ErrEmptyContent indicates pagination produced no pages
	ErrEmptyContent = errors.New("content has no pages")

	// ErrPageOutOfRange indicates a page index outside the book
	ErrPageOutOfRange = errors.New("page index out of range")

	// ErrSuperseded indicates a pagination was replaced by a newer one
	// before it finished
	ErrSuperseded = errors.New("pagination superseded")

	// ErrInvalidGeometry indicates a page too small to lay text out in
	ErrInvalidGeometry = errors.New("invalid page geometry")
)
