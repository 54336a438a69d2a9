// Package testutil provides in-memory collaborators for engine tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/leaf/internal/domain"
)

// StripSource is a synthetic content strip. Every page cell reads "p<page>"
// on its first line so tests can tell which page a surface shows.
type StripSource struct {
	Pages      int
	PageWidth  int
	PageHeight int
	PageImages map[int][]string
}

func (s *StripSource) Width() int  { return s.Pages * s.PageWidth }
func (s *StripSource) Height() int { return s.PageHeight }

func (s *StripSource) Line(y int) string {
	var b strings.Builder
	for p := 0; p < s.Pages; p++ {
		cell := fmt.Sprintf("p%d", p)
		if y > 0 {
			cell = fmt.Sprintf("%d.%d", p, y)
		}
		if len(cell) > s.PageWidth {
			cell = cell[:s.PageWidth]
		}
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", s.PageWidth-len(cell)))
	}
	return b.String()
}

func (s *StripSource) Images(page int) []string {
	return s.PageImages[page]
}

// Book returns a pagination result of pages pages, 8x4 cells each, with a
// chapter starting every chapterEvery pages (no chapters if zero).
func Book(pages, chapterEvery int) *domain.PaginationResult {
	src := &StripSource{Pages: pages, PageWidth: 8, PageHeight: 4}
	res := &domain.PaginationResult{
		PageCount:  pages,
		PageWidth:  src.PageWidth,
		PageHeight: src.PageHeight,
		Source:     src,
	}
	if chapterEvery > 0 {
		for p := 0; p < pages; p += chapterEvery {
			res.Chapters = append(res.Chapters, domain.Chapter{
				Title: fmt.Sprintf("Chapter %d", len(res.Chapters)+1),
				Page:  p,
			})
		}
	}
	return res
}

// RecordingSlot is a domain.Slot that remembers every surface it was given
type RecordingSlot struct {
	Name     string
	Current  domain.Surface
	Replaced int
	Width    int
	Height   int
}

func (s *RecordingSlot) Replace(surface domain.Surface) {
	s.Current = surface
	s.Replaced++
}

func (s *RecordingSlot) Clear() {
	s.Current = domain.BlankSurface(s.Width, s.Height)
}

func (s *RecordingSlot) Size() (int, int) {
	return s.Width, s.Height
}

// Slots returns a recording slot for every role
func Slots() map[domain.SlotRole]domain.Slot {
	slots := make(map[domain.SlotRole]domain.Slot, len(domain.SlotRoles))
	for _, role := range domain.SlotRoles {
		slots[role] = &RecordingSlot{Name: role.String(), Current: domain.Surface{Page: -1}}
	}
	return slots
}

// PageIn returns the page index shown by a slot, -1 for blank
func PageIn(slot domain.Slot) int {
	rs, ok := slot.(*RecordingSlot)
	if !ok || rs.Current.IsBlank() {
		return -1
	}
	return rs.Current.Page
}

// Timings is a fixed domain.Timings
type Timings map[string]time.Duration

func (t Timings) Duration(name string) (time.Duration, bool) {
	d, ok := t[name]
	return d, ok
}

// Signals records every played cue
type Signals struct {
	Played []string
	Err    error
}

func (s *Signals) Play(name string) error {
	s.Played = append(s.Played, name)
	return s.Err
}

// NullLogger discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Cursor is an in-memory domain.Cursor that records commits
type Cursor struct {
	Index   int
	Stride  int
	Single  bool
	Max     int
	Commits []int
}

func (c *Cursor) CurrentIndex() int { return c.Index }
func (c *Cursor) SinglePage() bool  { return c.Single }
func (c *Cursor) MaxIndex() int     { return c.Max }

func (c *Cursor) Step() int {
	if c.Stride == 0 {
		return 2
	}
	return c.Stride
}

func (c *Cursor) Commit(index int) {
	c.Index = index
	c.Commits = append(c.Commits, index)
}
