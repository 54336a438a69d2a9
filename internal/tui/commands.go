package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ContentLoader reads book text from disk
type ContentLoader interface {
	Load(ctx context.Context, path string) (string, error)
}

// ImageOpener hands image references to an external viewer
type ImageOpener interface {
	Launch(refs []string) error
}

// LoadContentCmd reads the book file in the background
func LoadContentCmd(loader ContentLoader, path string) tea.Cmd {
	return func() tea.Msg {
		raw, err := loader.Load(context.Background(), path)
		if err != nil {
			return ErrMsg{Err: err, Context: "Failed to read book"}
		}
		return ContentLoadedMsg{Raw: raw}
	}
}

// OpenImagesCmd launches the viewer for refs
func OpenImagesCmd(opener ImageOpener, refs []string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.Launch(refs); err != nil {
			return ErrMsg{Err: err, Context: "Failed to open images"}
		}
		return ImagesLaunchedMsg{Count: len(refs)}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// FrameCmd returns a command that requests an animation repaint
func FrameCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return FrameMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
