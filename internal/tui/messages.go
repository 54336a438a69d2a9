package tui

import (
	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/reader"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ContentLoadedMsg carries the raw book text read from disk
type ContentLoadedMsg struct {
	Raw string
}

// FileChangedMsg signals that the book file changed on disk
type FileChangedMsg struct{}

// ConfigChangedMsg signals that the config file was reloaded
type ConfigChangedMsg struct{}

// IndexChangedMsg signals a committed page move
type IndexChangedMsg struct {
	Index int
}

// ChapterChangedMsg signals that the view entered another chapter
type ChapterChangedMsg struct {
	Change reader.ChapterChange
}

// PaginatedMsg signals that new content was installed
type PaginatedMsg struct {
	Pages    int
	Chapters []domain.Chapter
}

// ReaderErrMsg carries an error reported by the reader outside a command
type ReaderErrMsg struct {
	Err error
}

// ImagesLaunchedMsg signals that images were handed to the viewer
type ImagesLaunchedMsg struct {
	Count int
}

// TickMsg advances the spinner
type TickMsg struct{}

// FrameMsg repaints a running animation
type FrameMsg struct{}

// ClearStatusMsg clears the status bar message
type ClearStatusMsg struct{}

// StatusMsg sets a temporary status message
type StatusMsg struct {
	Message string
	IsError bool
}
