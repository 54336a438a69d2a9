package tui

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/lifecycle"
	"github.com/mmcdole/leaf/internal/reader"
	"github.com/mmcdole/leaf/internal/render"
	"github.com/mmcdole/leaf/internal/schedule"
	"github.com/mmcdole/leaf/internal/testutil"
)

type bookPaginator struct {
	pages int
}

func (p bookPaginator) Paginate(context.Context, string, domain.Geometry) (*domain.PaginationResult, error) {
	return testutil.Book(p.pages, 4), nil
}

type memBookmarks struct {
	marks map[string][]int
}

func (b *memBookmarks) Bookmarks(book string) []int {
	return b.marks[book]
}

func (b *memBookmarks) ToggleBookmark(book string, index int) (bool, error) {
	marks := b.marks[book]
	if i := slices.Index(marks, index); i >= 0 {
		b.marks[book] = slices.Delete(marks, i, i+1)
		return false, nil
	}
	marks = append(marks, index)
	slices.Sort(marks)
	b.marks[book] = marks
	return true, nil
}

type harness struct {
	m      Model
	sched  *schedule.Manual
	reader *reader.Service
	marks  *memBookmarks
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sched := schedule.NewManual()
	r := reader.New(reader.Config{
		BookID:    "book.md",
		Slots:     render.NewPanes(),
		Scheduler: sched,
		Timings: testutil.Timings{
			"lift": 20 * time.Millisecond, "rotate": 60 * time.Millisecond, "drop": 20 * time.Millisecond,
			"wrap": 20 * time.Millisecond, "cover": 40 * time.Millisecond,
		},
		Paginator: bookPaginator{pages: 10},
		Logger:    testutil.NullLogger(),
	})
	marks := &memBookmarks{marks: map[string][]int{}}
	m := NewModel(Options{
		Reader:    r,
		Bookmarks: marks,
		Logger:    testutil.NullLogger(),
		BookPath:  "book.md",
		Title:     "Test Book",
		AutoOpen:  true,
	})
	h := &harness{m: m, sched: sched, reader: r, marks: marks}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 41})
	return h
}

// send delivers msg and returns the resulting command
func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	return cmd
}

// settle runs scheduler callbacks and queued reader notifications until
// both are idle
func (h *harness) settle(t *testing.T) {
	t.Helper()
	for i := 0; i < 20; i++ {
		if !h.sched.Flush(1000) {
			t.Fatal("scheduler did not go idle")
		}
		if !h.drain() {
			return
		}
	}
	t.Fatal("notifications did not go idle")
}

func (h *harness) drain() bool {
	delivered := false
	for {
		select {
		case msg := <-h.m.observer.ch:
			h.send(msg)
			delivered = true
		default:
			return delivered
		}
	}
}

func (h *harness) key(s string) tea.Cmd {
	switch s {
	case "enter":
		return h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.send(tea.KeyMsg{Type: tea.KeyEsc})
	default:
		return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	}
}

// status runs cmd and applies the status message it produces
func (h *harness) status(t *testing.T, cmd tea.Cmd) string {
	t.Helper()
	if cmd == nil {
		t.Fatal("no command returned")
	}
	raw := cmd()
	msg, ok := raw.(StatusMsg)
	if !ok {
		t.Fatalf("command produced %T, want StatusMsg", raw)
	}
	h.send(msg)
	return h.m.StatusMsg
}

func (h *harness) open(t *testing.T) {
	t.Helper()
	h.send(ContentLoadedMsg{Raw: "text"})
	h.settle(t)
	if !h.reader.IsOpened() {
		t.Fatalf("book not opened, state %v", h.reader.Machine().State())
	}
}

func TestContentLoadOpensBook(t *testing.T) {
	h := newHarness(t)
	if !strings.Contains(h.m.View(), "Test Book") {
		t.Error("closed view does not show the cover title")
	}

	h.open(t)
	view := h.m.View()
	if !strings.Contains(view, "p0") || !strings.Contains(view, "p1") {
		t.Errorf("open view does not show the first spread:\n%s", view)
	}
	if got := len(h.m.Palette.Results()); got != 3 {
		t.Errorf("palette has %d chapters, want 3", got)
	}
}

func TestReloadDuringFirstLoadStillOpensBook(t *testing.T) {
	h := newHarness(t)
	h.send(ContentLoadedMsg{Raw: "partial"})
	h.send(ContentLoadedMsg{Raw: "complete"})
	h.settle(t)

	if !h.reader.IsOpened() {
		t.Fatalf("book not opened, state %v", h.reader.Machine().State())
	}

	// Later reloads leave the reading state alone
	h.key("enter")
	h.settle(t)
	h.send(ContentLoadedMsg{Raw: "edited"})
	h.settle(t)
	if h.reader.Machine().State() != lifecycle.Closed {
		t.Errorf("reload reopened the book: %v", h.reader.Machine().State())
	}
}

func TestKeyFlipsPage(t *testing.T) {
	h := newHarness(t)
	h.open(t)

	h.key("l")
	if h.reader.Machine().State() != lifecycle.Flipping {
		t.Fatalf("state = %v, want flipping", h.reader.Machine().State())
	}
	h.sched.Advance(50 * time.Millisecond)
	if h.m.View() == "" {
		t.Error("empty view mid-flip")
	}
	h.settle(t)

	if got := h.reader.CurrentIndex(); got != 2 {
		t.Fatalf("index = %d, want 2", got)
	}
	view := h.m.View()
	if !strings.Contains(view, "p2") || !strings.Contains(view, "p3") {
		t.Errorf("view does not show the second spread:\n%s", view)
	}

	h.key("h")
	h.settle(t)
	if got := h.reader.CurrentIndex(); got != 0 {
		t.Errorf("index after prev = %d, want 0", got)
	}
}

func TestChapterKeys(t *testing.T) {
	h := newHarness(t)
	h.open(t)

	if got := h.status(t, h.key("[")); got != "First chapter" {
		t.Errorf("status = %q", got)
	}

	h.key("]")
	h.settle(t)
	if got := h.reader.CurrentIndex(); got != 4 {
		t.Fatalf("index = %d, want chapter 2 at 4", got)
	}
	if h.m.chapter.Chapter.Title != "Chapter 2" {
		t.Errorf("footer chapter = %q", h.m.chapter.Chapter.Title)
	}
}

func TestChapterPaletteJumps(t *testing.T) {
	h := newHarness(t)
	h.open(t)

	h.key(":")
	if !h.m.Palette.IsVisible() {
		t.Fatal("palette not shown")
	}
	h.key("3")
	if got := h.m.Palette.Results(); len(got) != 1 || got[0].Chapter.Title != "Chapter 3" {
		t.Fatalf("results = %+v", got)
	}
	h.key("enter")
	h.settle(t)

	if h.m.Palette.IsVisible() {
		t.Error("palette still shown")
	}
	if got := h.reader.CurrentIndex(); got != 8 {
		t.Errorf("index = %d, want 8", got)
	}
}

func TestBookmarks(t *testing.T) {
	h := newHarness(t)
	h.open(t)

	if got := h.status(t, h.key("m")); got != "Bookmarked page 1" {
		t.Errorf("status = %q", got)
	}
	h.key("G")
	h.settle(t)
	if got := h.reader.CurrentIndex(); got != 8 {
		t.Fatalf("index = %d, want 8", got)
	}

	// Wraps around to the only bookmark
	h.key("'")
	h.settle(t)
	if got := h.reader.CurrentIndex(); got != 0 {
		t.Errorf("index = %d, want 0", got)
	}
	if got := h.status(t, h.key("m")); got != "Removed bookmark on page 1" {
		t.Errorf("status = %q", got)
	}
}

func TestMouseDragTurnsPage(t *testing.T) {
	h := newHarness(t)
	h.open(t)

	rect := h.m.bookRect()
	y := int(rect.Y + rect.Height/2)
	right := int(rect.X+rect.Width) - 1

	h.send(tea.MouseMsg{X: right, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if !h.reader.Gesture().Active() {
		t.Fatal("press on the right page did not start a gesture")
	}
	h.send(tea.MouseMsg{X: int(rect.X) + 5, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	h.sched.Frames(1)
	if g, _ := h.reader.Gesture().Gesture(); g.Angle <= 90 {
		t.Fatalf("angle = %v after dragging across", g.Angle)
	}
	if h.m.View() == "" {
		t.Error("empty view mid-gesture")
	}

	h.send(tea.MouseMsg{X: int(rect.X) + 5, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	h.settle(t)
	if got := h.reader.CurrentIndex(); got != 2 {
		t.Errorf("index = %d, want 2", got)
	}
}

func TestEscapeCancelsGesture(t *testing.T) {
	h := newHarness(t)
	h.open(t)

	rect := h.m.bookRect()
	h.send(tea.MouseMsg{X: int(rect.X) + 1, Y: int(rect.Y) + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	// First page: nothing to turn back to
	if h.reader.Gesture().Active() {
		t.Fatal("gesture started with no previous page")
	}

	h.send(tea.MouseMsg{X: int(rect.X+rect.Width) - 1, Y: int(rect.Y) + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.key("esc")
	h.settle(t)
	if h.reader.Gesture().Active() || h.reader.CurrentIndex() != 0 || !h.reader.IsOpened() {
		t.Errorf("gesture not cancelled cleanly: index %d state %v", h.reader.CurrentIndex(), h.reader.Machine().State())
	}
}

func TestEnterClosesAndReopens(t *testing.T) {
	h := newHarness(t)
	h.open(t)

	h.key("enter")
	h.settle(t)
	if h.reader.Machine().State() != lifecycle.Closed {
		t.Fatalf("state = %v, want closed", h.reader.Machine().State())
	}
	h.key("enter")
	h.settle(t)
	if !h.reader.IsOpened() {
		t.Errorf("state = %v, want opened", h.reader.Machine().State())
	}
}

func TestHelpToggle(t *testing.T) {
	h := newHarness(t)
	h.key("?")
	if h.m.State != StateHelp || !strings.Contains(h.m.View(), "next page") {
		t.Fatal("help not shown")
	}
	h.key("x")
	if h.m.State != StateReading {
		t.Error("any key did not close help")
	}
}

func TestHelpShowsLastOperation(t *testing.T) {
	h := newHarness(t)
	h.open(t)

	h.key("?")
	op := h.reader.Animator().Last()
	if op == nil || op.Kind != "open" {
		t.Fatalf("last operation = %+v, want the open sequence", op)
	}
	if view := h.m.View(); !strings.Contains(view, "last open "+op.ID[:8]) {
		t.Errorf("help does not name operation %s:\n%s", op.ID, view)
	}
}
