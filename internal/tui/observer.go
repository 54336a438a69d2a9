package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/reader"
)

// ChannelObserver adapts reader notifications to a channel for Bubble Tea.
// Notifications fire inside Update, so they are queued rather than applied.
type ChannelObserver struct {
	ch chan tea.Msg
}

// NewChannelObserver creates an observer with room for size queued messages
func NewChannelObserver(size int) *ChannelObserver {
	return &ChannelObserver{ch: make(chan tea.Msg, size)}
}

// Attach subscribes to every reader notification
func (o *ChannelObserver) Attach(r *reader.Service) {
	r.OnIndexChanged(func(index int) { o.send(IndexChangedMsg{Index: index}) })
	r.OnChapterChanged(func(c reader.ChapterChange) { o.send(ChapterChangedMsg{Change: c}) })
	r.OnPaginated(func(res *domain.PaginationResult) {
		o.send(PaginatedMsg{Pages: res.PageCount, Chapters: res.Chapters})
	})
	r.OnError(func(err error) { o.send(ReaderErrMsg{Err: err}) })
}

// send queues msg (non-blocking if full)
func (o *ChannelObserver) send(msg tea.Msg) {
	select {
	case o.ch <- msg:
	default: // Non-blocking if channel full
	}
}

// Listen returns a command that delivers the next queued message
func (o *ChannelObserver) Listen() tea.Cmd {
	return func() tea.Msg {
		return <-o.ch
	}
}
