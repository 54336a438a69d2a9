// Package reader wires the flip engine into a book: it owns the lifecycle
// machine, the renderer and both flip controllers, loads and paginates
// content, tracks the reading position and chapter, and notifies observers.
package reader

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmcdole/leaf/internal/animate"
	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/gesture"
	"github.com/mmcdole/leaf/internal/lifecycle"
	"github.com/mmcdole/leaf/internal/navigation"
	"github.com/mmcdole/leaf/internal/render"
	"github.com/mmcdole/leaf/internal/schedule"
)

// Page chrome around the text of one page: border and padding on each side
// horizontally, border plus the header and footer rows vertically.
const (
	PageChromeWidth  = 4
	PageChromeHeight = 4

	minPageWidth  = 10
	minPageHeight = 3
)

// PageGeometry computes the text area of one page for a terminal of the
// given size
func PageGeometry(width, height int, single bool) domain.Geometry {
	box := width
	if !single {
		box = width / 2
	}
	return domain.Geometry{
		PageWidth:  max(minPageWidth, box-PageChromeWidth),
		PageHeight: max(minPageHeight, height-PageChromeHeight),
		SinglePage: single,
	}
}

// ChapterChange describes the chapter now containing the reading position
type ChapterChange struct {
	Index   int // Position in the chapter list, -1 before the first chapter
	Chapter domain.Chapter
}

// Config holds the collaborators of a Service
type Config struct {
	BookID      string
	Width       int // Initial terminal size
	Height      int
	Slots       map[domain.SlotRole]domain.Slot
	CacheLimit  int
	ImageLimit  int
	Scheduler   schedule.Scheduler
	Timings     domain.Timings
	Paginator   domain.Paginator
	Sanitizer   domain.Sanitizer
	Breakpoints *Breakpoints
	Positions   domain.PositionStore
	Signal      domain.Signal
	Logger      *slog.Logger
}

// Service is the reader facade. Everything it owns is confined to the
// scheduler loop.
type Service struct {
	bookID      string
	sched       schedule.Scheduler
	paginator   domain.Paginator
	sanitizer   domain.Sanitizer
	breakpoints *Breakpoints
	positions   domain.PositionStore
	signal      domain.Signal
	logger      *slog.Logger

	machine  *lifecycle.Machine
	renderer *render.Renderer
	animator *animate.Animator
	nav      *navigation.Controller
	gesture  *gesture.Controller

	content  string
	geom     domain.Geometry
	index    int
	chapter  int
	loading  bool
	loadSeq  int
	deferred *domain.PaginationResult
	stale    bool

	// Opening sequence bookkeeping: reveal waits for content, revealed is
	// set once the spread under the cover has been rendered
	reveal   func()
	revealed bool

	indexObs      observers[int]
	chapterObs    observers[ChapterChange]
	paginationObs observers[*domain.PaginationResult]
	errorObs      observers[error]
}

// New creates a closed reader with no content
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	breakpoints := cfg.Breakpoints
	if breakpoints == nil {
		breakpoints = NewBreakpoints(DefaultNarrowWidth)
	}

	s := &Service{
		bookID:      cfg.BookID,
		sched:       cfg.Scheduler,
		paginator:   cfg.Paginator,
		sanitizer:   cfg.Sanitizer,
		breakpoints: breakpoints,
		positions:   cfg.Positions,
		signal:      cfg.Signal,
		logger:      logger,
		machine:     lifecycle.New(),
		chapter:     -1,
	}
	s.renderer = render.New(cfg.Slots, render.Options{
		CacheLimit: cfg.CacheLimit,
		ImageLimit: cfg.ImageLimit,
		Logger:     logger,
	})
	s.animator = animate.New(cfg.Scheduler, cfg.Timings, logger)
	s.nav = navigation.NewController(navigation.Config{
		Machine:  s.machine,
		Renderer: s.renderer,
		Animator: s.animator,
		Cursor:   s,
		Book:     s,
		Signal:   cfg.Signal,
		Logger:   logger,
	})
	s.gesture = gesture.NewController(gesture.Config{
		Machine:   s.machine,
		Renderer:  s.renderer,
		Cursor:    s,
		Scheduler: cfg.Scheduler,
		Timings:   cfg.Timings,
		Signal:    cfg.Signal,
		Logger:    logger,
	})

	s.machine.Subscribe(s.onStateChange)
	breakpoints.Subscribe(s.onBreakpoint)
	if cfg.Width > 0 && cfg.Height > 0 {
		s.Resize(cfg.Width, cfg.Height)
	}
	return s
}

// Machine exposes the lifecycle state for display
func (s *Service) Machine() *lifecycle.Machine { return s.machine }

// Renderer exposes the slot assignment for display
func (s *Service) Renderer() *render.Renderer { return s.renderer }

// Animator exposes the phase marker for display
func (s *Service) Animator() *animate.Animator { return s.animator }

// Gesture exposes the drag controller
func (s *Service) Gesture() *gesture.Controller { return s.gesture }

// Breakpoints returns the layout tracker the reader follows
func (s *Service) Breakpoints() *Breakpoints { return s.breakpoints }

// IsBusy reports whether an open, close or flip is in flight
func (s *Service) IsBusy() bool { return s.machine.IsBusy() }

// IsOpened reports whether the book is open and idle
func (s *Service) IsOpened() bool { return s.machine.IsOpened() }

// Loading reports whether pagination is in progress
func (s *Service) Loading() bool { return s.loading }

// CacheSize is the number of materialized pages held
func (s *Service) CacheSize() int { return s.renderer.CacheSize() }

// TotalPages is the page count of the installed content
func (s *Service) TotalPages() int { return s.renderer.TotalPages() }

// Content returns the installed pagination, or nil
func (s *Service) Content() *domain.PaginationResult { return s.renderer.Content() }

// CurrentIndex is the index of the leftmost visible page
func (s *Service) CurrentIndex() int { return s.index }

// Step is the number of pages one flip advances
func (s *Service) Step() int { return s.breakpoints.Step() }

// SinglePage reports whether one page is shown at a time
func (s *Service) SinglePage() bool { return s.breakpoints.Narrow() }

// MaxIndex is the largest valid current index in the present layout
func (s *Service) MaxIndex() int { return s.renderer.MaxIndex(s.SinglePage()) }

// Commit moves the reading position to index
func (s *Service) Commit(index int) { s.setIndex(index) }

// Chapter returns the chapter containing the current index
func (s *Service) Chapter() (ChapterChange, bool) {
	res := s.renderer.Content()
	if res == nil || s.chapter < 0 || s.chapter >= len(res.Chapters) {
		return ChapterChange{Index: -1}, false
	}
	return ChapterChange{Index: s.chapter, Chapter: res.Chapters[s.chapter]}, true
}

// SavedPosition returns the last persisted index for this book
func (s *Service) SavedPosition() (int, bool) {
	if s.positions == nil || s.bookID == "" {
		return 0, false
	}
	return s.positions.LoadPosition(s.bookID)
}

// OnIndexChanged registers fn for reading position changes
func (s *Service) OnIndexChanged(fn func(index int)) func() { return s.indexObs.add(fn) }

// OnChapterChanged registers fn for moves into a different chapter
func (s *Service) OnChapterChanged(fn func(ChapterChange)) func() { return s.chapterObs.add(fn) }

// OnPaginated registers fn for newly installed content
func (s *Service) OnPaginated(fn func(*domain.PaginationResult)) func() {
	return s.paginationObs.add(fn)
}

// OnError registers fn for failures of operations that completed
// asynchronously
func (s *Service) OnError(fn func(error)) func() { return s.errorObs.add(fn) }

// Flip turns one view in dir, opening or closing the book at either end
func (s *Service) Flip(dir domain.Direction) (bool, error) { return s.nav.Flip(dir) }

// JumpTo flips directly to index
func (s *Service) JumpTo(index int) (bool, error) { return s.nav.JumpTo(index) }

// Load sanitizes raw and paginates it in the background. done, if not nil,
// is always called once: with nil when the content was installed, with
// domain.ErrSuperseded when a newer load or layout replaced it first, or with
// the pagination error. A failed load leaves the installed content and the
// current view untouched.
func (s *Service) Load(ctx context.Context, raw string, done func(error)) {
	clean := raw
	if s.sanitizer != nil {
		clean = s.sanitizer.Sanitize(raw)
	}
	s.content = clean
	s.paginate(ctx, func(err error) {
		if err != nil && !errors.Is(err, domain.ErrSuperseded) {
			s.errorObs.notify(err)
		}
		if done != nil {
			done(err)
		}
	})
}

// Resize lays the book out for a terminal of the given size. Content is
// repaginated when the page geometry changes.
func (s *Service) Resize(width, height int) {
	s.breakpoints.Update(width)
	geom := PageGeometry(width, height, s.breakpoints.Narrow())
	if geom == s.geom {
		return
	}
	s.geom = geom
	s.repaginate()
}

// Geometry returns the page geometry content is paginated for
func (s *Service) Geometry() domain.Geometry {
	return s.geom
}

// Open runs the opening sequence and shows the spread at startIndex,
// clamped into the book. It is a no-op unless the book is closed.
func (s *Service) Open(startIndex int) error {
	if !s.machine.Fire(lifecycle.EventOpen) {
		return nil
	}
	if s.content == "" && s.renderer.Content() == nil {
		s.machine.Fire(lifecycle.EventFailure)
		return domain.ErrNoContent
	}
	if err := s.renderer.ValidateSlots(); err != nil {
		s.machine.Fire(lifecycle.EventFailure)
		return err
	}

	s.play("open")
	s.reveal = nil
	s.revealed = false
	s.animator.RunOpenSequence(func(op *animate.Operation, cancelled bool) {
		if cancelled {
			s.machine.Fire(lifecycle.EventFailure)
			return
		}
		s.reveal = func() {
			if err := s.showAt(startIndex); err != nil {
				s.abortOpen(err)
				s.errorObs.notify(err)
				return
			}
			s.revealed = true
			s.animator.FinishOpenSequence(op, func(cancelled bool) {
				if cancelled {
					s.machine.Fire(lifecycle.EventFailure)
					return
				}
				s.machine.Fire(lifecycle.EventOpened)
			})
		}

		if s.renderer.Content() != nil && !s.stale && !s.loading {
			s.continueOpen()
			return
		}
		if s.loading && !s.stale {
			// A load already in flight carries the content; its install
			// continues the open
			return
		}
		s.paginate(context.Background(), func(err error) {
			if err != nil && !errors.Is(err, domain.ErrSuperseded) {
				s.errorObs.notify(err)
			}
		})
	})
	return nil
}

// continueOpen renders the spread of a parked opening sequence and starts
// the cover reveal
func (s *Service) continueOpen() {
	reveal := s.reveal
	if reveal == nil {
		return
	}
	s.reveal = nil
	reveal()
}

// abortOpen fails a parked opening sequence
func (s *Service) abortOpen(err error) {
	s.reveal = nil
	s.logger.Error("open failed", "error", err)
	s.animator.Cancel()
	s.machine.Fire(lifecycle.EventFailure)
}

// Close runs the closing sequence. It is a no-op unless the book is open
// and idle.
func (s *Service) Close() error {
	if !s.machine.Fire(lifecycle.EventClose) {
		return nil
	}
	if err := s.renderer.Validate(); err != nil {
		s.machine.Fire(lifecycle.EventFailure)
		return err
	}

	s.play("close")
	s.animator.RunCloseSequence(func(cancelled bool) {
		if cancelled {
			s.machine.Fire(lifecycle.EventFailure)
			return
		}
		s.machine.Fire(lifecycle.EventClosed)
	})
	return nil
}

// showAt renders the spread at index, clamped into the book, and makes it
// the reading position
func (s *Service) showAt(index int) error {
	index = max(0, min(index, s.MaxIndex()))
	if err := s.renderer.RenderSpread(index, s.SinglePage()); err != nil {
		return err
	}
	s.setIndex(index)
	return nil
}

func (s *Service) setIndex(index int) {
	if index != s.index {
		s.index = index
		s.indexObs.notify(index)
		s.savePosition()
	}
	s.updateChapter()
}

func (s *Service) updateChapter() {
	res := s.renderer.Content()
	if res == nil {
		return
	}
	ch := res.ChapterAt(s.index)
	if ch == s.chapter {
		return
	}
	s.chapter = ch
	change := ChapterChange{Index: ch}
	if ch >= 0 {
		change.Chapter = res.Chapters[ch]
	}
	s.chapterObs.notify(change)
}

func (s *Service) savePosition() {
	if s.positions == nil || s.bookID == "" {
		return
	}
	if err := s.positions.SavePosition(s.bookID, s.index); err != nil {
		s.logger.Warn("failed to save position", "book", s.bookID, "index", s.index, "error", err)
	}
}

// repaginate lays the loaded content out again for the current geometry.
// While closed it only marks the content stale; Open paginates it.
func (s *Service) repaginate() {
	if s.content == "" {
		return
	}
	if s.machine.State() == lifecycle.Closed || s.machine.State() == lifecycle.Opening {
		s.stale = true
		return
	}
	s.paginate(context.Background(), func(err error) {
		if err != nil {
			s.errorObs.notify(err)
		}
	})
}

// paginate runs the paginator off the loop. Only the latest request is
// installed; an earlier one finishing late reports domain.ErrSuperseded.
func (s *Service) paginate(ctx context.Context, done func(error)) {
	if s.paginator == nil {
		if s.reveal != nil {
			s.abortOpen(domain.ErrNoContent)
		}
		done(domain.ErrNoContent)
		return
	}

	s.loadSeq++
	seq := s.loadSeq
	s.loading = true
	wasStale := s.stale
	s.stale = false
	content, geom := s.content, s.geom

	var res *domain.PaginationResult
	var err error
	s.sched.Async(func() {
		res, err = s.paginator.Paginate(ctx, content, geom)
	}, func() {
		if seq != s.loadSeq {
			done(domain.ErrSuperseded)
			return
		}
		s.loading = false
		if err == nil && (res == nil || res.PageCount == 0) {
			err = domain.ErrEmptyContent
		}
		if err != nil {
			s.logger.Error("pagination failed", "error", err)
			s.stale = s.stale || wasStale
			if s.reveal != nil {
				if s.renderer.Content() != nil && !s.stale {
					s.continueOpen()
				} else {
					s.abortOpen(err)
				}
			}
			done(err)
			return
		}
		s.install(res)
		done(nil)
	})
}

// install swaps in new content. A flip or close in flight keeps its
// surfaces, as does an opening sequence whose spread is already under the
// cover; the content is installed once the machine settles. An opening
// sequence still waiting for content continues with this one.
func (s *Service) install(res *domain.PaginationResult) {
	switch s.machine.State() {
	case lifecycle.Flipping, lifecycle.Closing:
		s.deferred = res
		return
	case lifecycle.Opening:
		if s.revealed {
			s.deferred = res
			return
		}
	}
	s.deferred = nil

	s.renderer.SetContent(res)
	s.chapter = -1
	s.logger.Info("content paginated", "pages", res.PageCount, "chapters", len(res.Chapters),
		"page_width", res.PageWidth, "page_height", res.PageHeight)

	if s.machine.State() == lifecycle.Opened {
		if err := s.showAt(s.index); err != nil {
			s.errorObs.notify(err)
		}
	} else {
		s.index = max(0, min(s.index, s.MaxIndex()))
		s.updateChapter()
	}
	s.paginationObs.notify(res)

	if s.machine.State() == lifecycle.Opening {
		s.continueOpen()
	}
}

func (s *Service) onStateChange(from, to lifecycle.State) {
	s.logger.Debug("lifecycle", "from", from.String(), "to", to.String())
	switch {
	case s.deferred != nil && (to == lifecycle.Opened || to == lifecycle.Closed):
		s.install(s.deferred)
	case s.stale && to == lifecycle.Opened:
		s.repaginate()
	}
}

func (s *Service) onBreakpoint(narrow bool) {
	s.logger.Info("layout changed", "single_page", narrow, "width", s.breakpoints.Width())
}

func (s *Service) play(name string) {
	if s.signal == nil {
		return
	}
	if err := s.signal.Play(name); err != nil {
		s.logger.Warn("signal failed", "signal", name, "error", err)
	}
}
