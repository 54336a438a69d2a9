package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/leaf/internal/animate"
	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/gesture"
	"github.com/mmcdole/leaf/internal/lifecycle"
	"github.com/mmcdole/leaf/internal/reader"
	"github.com/mmcdole/leaf/internal/schedule"
	"github.com/mmcdole/leaf/internal/search"
	"github.com/mmcdole/leaf/internal/tui/components"
	"github.com/mmcdole/leaf/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateReading ApplicationState = iota
	StateHelp
)

const (
	// Vertical layout: single footer line
	ChromeHeight = 1

	// Repaint interval while an animation runs
	FrameInterval = 33 * time.Millisecond

	statusTimeout = 4 * time.Second
)

// Dispatcher runs scheduler callbacks posted to the program
type Dispatcher interface {
	Dispatch(msg schedule.FiredMsg)
}

// BookmarkStore persists bookmarked pages
type BookmarkStore interface {
	Bookmarks(book string) []int
	ToggleBookmark(book string, index int) (bool, error)
}

// surfaceHolder is a slot the view can read back
type surfaceHolder interface {
	Surface() domain.Surface
	SetSize(width, height int)
}

// animState tracks the animator phase for interpolation. It is shared by
// every copy of the model.
type animState struct {
	phase   animate.Phase
	started time.Time
	framing bool // A FrameCmd is outstanding
	now     func() time.Time
}

// Options configures a Model
type Options struct {
	Reader     *reader.Service
	Dispatcher Dispatcher
	Observer   *ChannelObserver
	Loader     ContentLoader
	Images     ImageOpener
	Bookmarks  BookmarkStore
	Timings    domain.Timings
	Logger     *slog.Logger

	BookPath     string
	Title        string
	StartPage    int    // Index opened once the first pagination lands
	ChapterQuery string // Overrides StartPage with the best matching chapter
	AutoOpen     bool
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	Reader     *reader.Service
	dispatcher Dispatcher
	observer   *ChannelObserver
	loader     ContentLoader
	images     ImageOpener
	bookmarks  BookmarkStore
	timings    domain.Timings
	logger     *slog.Logger

	// UI Components
	Palette components.ChapterPalette
	Help    help.Model

	// Book
	BookPath     string
	Title        string
	startPage    int
	chapterQuery string
	openPending  *bool
	chapter      reader.ChapterChange

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int

	anim *animState
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	observer := opts.Observer
	if observer == nil {
		observer = NewChannelObserver(64)
	}
	observer.Attach(opts.Reader)

	h := help.New()
	h.ShowAll = true
	h.Styles.FullKey = styles.HelpKeyStyle
	h.Styles.FullDesc = styles.HelpDescStyle
	h.Styles.ShortKey = styles.HelpKeyStyle
	h.Styles.ShortDesc = styles.HelpDescStyle

	m := Model{
		State:      StateReading,
		Reader:     opts.Reader,
		dispatcher: opts.Dispatcher,
		observer:   observer,
		loader:     opts.Loader,
		images:     opts.Images,
		bookmarks:  opts.Bookmarks,
		timings:    opts.Timings,
		logger:     logger,
		Palette: components.NewChapterPalette(components.PaletteKeys{
			Up:     Keys.Up,
			Down:   Keys.Down,
			Select: Keys.Select,
			Cancel: Keys.Escape,
		}),
		Help:         h,
		BookPath:     opts.BookPath,
		Title:        opts.Title,
		startPage:    opts.StartPage,
		chapterQuery: opts.ChapterQuery,
		openPending:  &opts.AutoOpen,
		chapter:      reader.ChapterChange{Index: -1},
		anim:         &animState{now: time.Now},
	}

	anim := m.anim
	opts.Reader.Animator().OnPhase(func(p animate.Phase) {
		anim.phase = p
		anim.started = anim.now()
	})
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.observer.Listen(),
		TickCmd(100 * time.Millisecond),
	}
	if m.loader != nil && m.BookPath != "" {
		cmds = append(cmds, LoadContentCmd(m.loader, m.BookPath))
	}
	return tea.Batch(cmds...)
}

// openBookMsg asks the model to open the book after the first pagination
type openBookMsg struct{}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Reader.Resize(msg.Width, msg.Height-ChromeHeight)
		m.sizePanes()
		return m, m.animate()

	case schedule.FiredMsg:
		if m.dispatcher != nil {
			m.dispatcher.Dispatch(msg)
		}
		return m, m.animate()

	case FrameMsg:
		m.anim.framing = false
		return m, m.animate()

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(100 * time.Millisecond)

	case ContentLoadedMsg:
		// Whichever load installs content first opens the book
		observer, pending := m.observer, m.openPending
		m.Reader.Load(context.Background(), msg.Raw, func(err error) {
			if err != nil || !*pending {
				return
			}
			*pending = false
			observer.send(openBookMsg{})
		})
		return m, nil

	case openBookMsg:
		return m, m.openBook()

	case FileChangedMsg:
		if m.loader == nil {
			return m, nil
		}
		return m, tea.Batch(statusCmd("Reloading "+m.Title+"...", false), LoadContentCmd(m.loader, m.BookPath))

	case ConfigChangedMsg:
		return m, statusCmd("Configuration reloaded", false)

	case IndexChangedMsg:
		return m, m.observer.Listen()

	case ChapterChangedMsg:
		m.chapter = msg.Change
		return m, m.observer.Listen()

	case PaginatedMsg:
		m.Palette.SetChapters(msg.Chapters)
		m.sizePanes()
		return m, m.observer.Listen()

	case ReaderErrMsg:
		return m, tea.Batch(statusCmd(msg.Err.Error(), true), m.observer.Listen())

	case ImagesLaunchedMsg:
		noun := "image"
		if msg.Count != 1 {
			noun = "images"
		}
		return m, statusCmd(fmt.Sprintf("Opened %d %s", msg.Count, noun), false)

	case ErrMsg:
		m.logger.Error("command failed", "error", msg.Err, "context", msg.Context)
		return m, statusCmd(msg.Error(), true)

	case StatusMsg:
		m.StatusMsg = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd(statusTimeout)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Palette.IsVisible() {
		var cmd tea.Cmd
		var chosen *domain.Chapter
		m.Palette, cmd, chosen = m.Palette.Update(msg)
		if chosen != nil {
			return m, tea.Batch(cmd, m.jump(chosen.Page))
		}
		return m, cmd
	}

	if m.State == StateHelp {
		// Press any key to return
		m.State = StateReading
		return m, nil
	}

	r := m.Reader
	switch {
	case key.Matches(msg, Keys.Quit):
		r.Gesture().Cancel()
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		r.Gesture().Cancel()
		return m, m.animate()

	case key.Matches(msg, Keys.Next):
		return m, m.flip(domain.Next)

	case key.Matches(msg, Keys.Prev):
		return m, m.flip(domain.Prev)

	case key.Matches(msg, Keys.First):
		return m, m.jump(0)

	case key.Matches(msg, Keys.Last):
		return m, m.jump(r.MaxIndex())

	case key.Matches(msg, Keys.NextChapter):
		if page, ok := m.adjacentChapter(domain.Next); ok {
			return m, m.jump(page)
		}
		return m, statusCmd("Last chapter", false)

	case key.Matches(msg, Keys.PrevChapter):
		if page, ok := m.adjacentChapter(domain.Prev); ok {
			return m, m.jump(page)
		}
		return m, statusCmd("First chapter", false)

	case key.Matches(msg, Keys.Toggle):
		return m, m.toggleOpen()

	case key.Matches(msg, Keys.Chapters):
		if content := r.Content(); content == nil || len(content.Chapters) == 0 {
			return m, statusCmd("No chapters", false)
		}
		m.Palette.Show(m.chapter.Index)
		return m, nil

	case key.Matches(msg, Keys.Bookmark):
		return m, m.toggleBookmark()

	case key.Matches(msg, Keys.NextBookmark):
		return m, m.nextBookmark()

	case key.Matches(msg, Keys.Images):
		return m, m.openImages()
	}

	return m, nil
}

func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	g := m.Reader.Gesture()

	switch msg.Button {
	case tea.MouseButtonWheelDown:
		return m, m.flip(domain.Next)
	case tea.MouseButtonWheelUp:
		return m, m.flip(domain.Prev)
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !m.Reader.IsOpened() {
			return m, nil
		}
		rect := m.bookRect()
		if !inside(rect, msg.X, msg.Y) {
			return m, nil
		}
		dir := domain.Prev
		if float64(msg.X) >= rect.X+rect.Width/2 {
			dir = domain.Next
		}
		if _, err := g.Start(dir, rect); err != nil {
			return m, statusCmd(err.Error(), true)
		}
		return m, m.animate()

	case tea.MouseActionMotion:
		if g.Active() {
			g.Move(float64(msg.X))
		}
		return m, nil

	case tea.MouseActionRelease:
		if g.Active() {
			g.End()
		}
		return m, m.animate()
	}
	return m, nil
}

func inside(r domain.Rect, x, y int) bool {
	fx, fy := float64(x), float64(y)
	return fx >= r.X && fx < r.X+r.Width && fy >= r.Y && fy < r.Y+r.Height
}

func (m Model) flip(dir domain.Direction) tea.Cmd {
	ok, err := m.Reader.Flip(dir)
	if err != nil {
		return statusCmd(err.Error(), true)
	}
	if !ok && dir == domain.Next && m.Reader.IsOpened() && m.Reader.CurrentIndex() >= m.Reader.MaxIndex() {
		return statusCmd("End of book", false)
	}
	return m.animate()
}

func (m Model) jump(index int) tea.Cmd {
	if _, err := m.Reader.JumpTo(index); err != nil {
		return statusCmd(err.Error(), true)
	}
	return m.animate()
}

func (m Model) toggleOpen() tea.Cmd {
	var err error
	switch m.Reader.Machine().State() {
	case lifecycle.Opened:
		err = m.Reader.Close()
	case lifecycle.Closed:
		err = m.Reader.Open(m.Reader.CurrentIndex())
	}
	if err != nil {
		return statusCmd(err.Error(), true)
	}
	return m.animate()
}

// openBook opens the book at the requested start once content is paginated
func (m Model) openBook() tea.Cmd {
	start := m.startPage
	var status tea.Cmd
	if m.chapterQuery != "" {
		var chapters []domain.Chapter
		if content := m.Reader.Content(); content != nil {
			chapters = content.Chapters
		}
		if c, ok := search.Best(chapters, m.chapterQuery); ok {
			start = c.Page
		} else {
			status = statusCmd(fmt.Sprintf("No chapter matches %q", m.chapterQuery), true)
		}
	}
	if err := m.Reader.Open(start); err != nil {
		return statusCmd(err.Error(), true)
	}
	return tea.Batch(status, m.animate())
}

// adjacentChapter finds the start page of the chapter after or before the
// current view
func (m Model) adjacentChapter(dir domain.Direction) (int, bool) {
	content := m.Reader.Content()
	if content == nil {
		return 0, false
	}
	current := m.Reader.CurrentIndex()
	last := current + m.Reader.Step() - 1
	if dir == domain.Next {
		for _, c := range content.Chapters {
			if c.Page > last {
				return c.Page, true
			}
		}
		return 0, false
	}
	for i := len(content.Chapters) - 1; i >= 0; i-- {
		if c := content.Chapters[i]; c.Page < current {
			return c.Page, true
		}
	}
	return 0, false
}

func (m Model) toggleBookmark() tea.Cmd {
	if m.bookmarks == nil || !m.Reader.IsOpened() {
		return nil
	}
	index := m.Reader.CurrentIndex()
	added, err := m.bookmarks.ToggleBookmark(m.BookPath, index)
	if err != nil {
		return statusCmd("Failed to save bookmark: "+err.Error(), true)
	}
	if added {
		return statusCmd(fmt.Sprintf("Bookmarked page %d", index+1), false)
	}
	return statusCmd(fmt.Sprintf("Removed bookmark on page %d", index+1), false)
}

func (m Model) nextBookmark() tea.Cmd {
	if m.bookmarks == nil {
		return nil
	}
	marks := m.bookmarks.Bookmarks(m.BookPath)
	if len(marks) == 0 {
		return statusCmd("No bookmarks", false)
	}
	current := m.Reader.CurrentIndex()
	target := marks[0]
	for _, mark := range marks {
		if mark > current {
			target = mark
			break
		}
	}
	return m.jump(target)
}

// marked reports whether page carries a bookmark
func (m Model) marked(page int) bool {
	if m.bookmarks == nil || page < 0 {
		return false
	}
	for _, mark := range m.bookmarks.Bookmarks(m.BookPath) {
		if mark == page {
			return true
		}
	}
	return false
}

// visibleImages collects the image references on the pages in view
func (m Model) visibleImages() []string {
	content := m.Reader.Content()
	if content == nil || !m.Reader.IsOpened() {
		return nil
	}
	var refs []string
	index := m.Reader.CurrentIndex()
	for page := index; page < index+m.Reader.Step() && page < content.PageCount; page++ {
		refs = append(refs, content.Source.Images(page)...)
	}
	return refs
}

func (m Model) openImages() tea.Cmd {
	if m.images == nil {
		return nil
	}
	refs := m.visibleImages()
	if len(refs) == 0 {
		return statusCmd("No images on this page", false)
	}
	return OpenImagesCmd(m.images, refs)
}

// statusCmd shows a message in the footer until it times out
func statusCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Message: text, IsError: isErr}
	}
}

// animating reports whether the view changes without input
func (m Model) animating() bool {
	return m.Reader.IsBusy() || m.Reader.Gesture().Active()
}

// animate schedules a repaint while an animation runs
func (m Model) animate() tea.Cmd {
	if !m.animating() || m.anim.framing {
		return nil
	}
	m.anim.framing = true
	return FrameCmd(FrameInterval)
}

// progress is how far the current animator phase has run, in [0,1]
func (m Model) progress() float64 {
	d := animate.ReadDurations(m.timings)
	var total time.Duration
	switch m.anim.phase {
	case animate.PhaseLift:
		total = d.Lift
	case animate.PhaseRotate:
		total = d.Rotate
	case animate.PhaseDrop:
		total = d.Drop
	case animate.PhaseWrap:
		total = d.Wrap
	case animate.PhaseCover:
		total = d.Cover
	default:
		return 1
	}
	if total <= 0 {
		return 1
	}
	p := float64(m.anim.now().Sub(m.anim.started)) / float64(total)
	return max(0, min(p, 1))
}

// sizePanes records the page size on every slot so blank pages match
func (m Model) sizePanes() {
	geom := m.Reader.Geometry()
	for _, role := range domain.SlotRoles {
		if pane, ok := m.Reader.Renderer().Slot(role).(surfaceHolder); ok {
			pane.SetSize(geom.PageWidth, geom.PageHeight)
		}
	}
}

func (m Model) surface(role domain.SlotRole) domain.Surface {
	if pane, ok := m.Reader.Renderer().Slot(role).(surfaceHolder); ok {
		return pane.Surface()
	}
	return domain.Surface{Page: -1}
}

// bookSize is the on-screen size of the book for the current geometry
func (m Model) bookSize() (int, int) {
	geom := m.Reader.Geometry()
	w := geom.PageWidth + reader.PageChromeWidth
	if !geom.SinglePage {
		w *= 2
	}
	return w, geom.PageHeight + reader.PageChromeHeight
}

// bookRect is where the book sits on screen, centered above the footer
func (m Model) bookRect() domain.Rect {
	w, h := m.bookSize()
	return domain.Rect{
		X:      float64(max(0, (m.Width-w)/2)),
		Y:      float64(max(0, (m.Height-ChromeHeight-h)/2)),
		Width:  float64(w),
		Height: float64(h),
	}
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	content := lipgloss.Place(m.Width, m.Height-ChromeHeight,
		lipgloss.Center, lipgloss.Center,
		m.renderBook())

	view := lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())

	if m.Palette.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.Palette.View())
	}
	return view
}

func (m Model) renderBook() string {
	bookW, bookH := m.bookSize()
	single := m.Reader.SinglePage()

	switch m.Reader.Machine().State() {
	case lifecycle.Closed:
		return renderCover(m.Title, m.coverSubtitle(), bookW, bookH)

	case lifecycle.Opening:
		p := m.progress()
		switch m.anim.phase {
		case animate.PhaseWrap:
			w := spineWidth + int(float64(bookW-spineWidth)*p)
			return renderCover(m.Title, "", w, bookH)
		case animate.PhaseCover:
			cover := renderCover(m.Title, "", bookW, bookH)
			return overlayColumns(m.renderSpread(single), cover, int(float64(bookW)*(1-p)))
		}
		return renderCover(m.Title, RenderSpinner(m.SpinnerFrame)+" Opening...", bookW, bookH)

	case lifecycle.Closing:
		p := m.progress()
		if m.anim.phase == animate.PhaseWrap {
			w := bookW - int(float64(bookW-spineWidth)*p)
			return renderCover(m.Title, "", w, bookH)
		}
		cover := renderCover(m.Title, "", bookW, bookH)
		return overlayColumns(m.renderSpread(single), cover, int(float64(bookW)*p))

	case lifecycle.Flipping:
		return m.renderFlip(single)
	}

	return m.renderSpread(single)
}

func (m Model) coverSubtitle() string {
	if m.Reader.Loading() && m.Reader.TotalPages() == 0 {
		return RenderSpinner(m.SpinnerFrame) + " Paginating..."
	}
	total := m.Reader.TotalPages()
	if total == 0 {
		return ""
	}
	subtitle := fmt.Sprintf("%d pages", total)
	if content := m.Reader.Content(); content != nil && len(content.Chapters) > 0 {
		subtitle = fmt.Sprintf("%d chapters · %s", len(content.Chapters), subtitle)
	}
	return subtitle + " · press enter to open"
}

func (m Model) decor(s domain.Surface, leaf bool) pageDecor {
	d := pageDecor{footer: pageNumber(s), leaf: leaf, marked: m.marked(s.Page)}
	if s.IsBlank() {
		return d
	}
	if content := m.Reader.Content(); content != nil {
		if i := content.ChapterAt(s.Page); i >= 0 {
			d.header = content.Chapters[i].Title
		}
	}
	if s.Loading {
		d.footer = RenderSpinner(m.SpinnerFrame) + " " + d.footer
	}
	return d
}

func (m Model) renderSpread(single bool) string {
	left := m.surface(domain.RoleActiveLeft)
	right := m.surface(domain.RoleActiveRight)
	leftBox := renderPage(left.Lines(), left.Width, m.decor(left, false))
	if single {
		return leftBox
	}
	rightBox := renderPage(right.Lines(), right.Width, m.decor(right, false))
	return lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
}

func (m Model) renderFlip(single bool) string {
	active := pagePair{m.surface(domain.RoleActiveLeft), m.surface(domain.RoleActiveRight)}
	buffer := pagePair{m.surface(domain.RoleBufferLeft), m.surface(domain.RoleBufferRight)}
	front := m.surface(domain.RoleTransitionFront)
	back := m.surface(domain.RoleTransitionBack)

	f := flipView{front: front, back: back}
	f.over, f.under = splitPairs(active, buffer, back)
	if g, ok := m.Reader.Gesture().Gesture(); ok {
		f.dir, f.angle, f.shadow = g.Direction, g.Angle, g.Shadow
	} else {
		f.dir = flipDirection(front, back)
		f.angle = phaseAngle(m.anim.phase, m.progress())
		f.shadow = gesture.ShadowIntensity(f.angle)
	}

	leftLines, rightLines, leafLeft := composeFlip(f, single)
	width := f.under.left.Width
	if single {
		return renderPage(leftLines, width, m.decor(f.under.left, true))
	}

	// Decor follows the page under the leaf on each side
	leftPage, rightPage := f.over.left, f.under.right
	if f.dir == domain.Prev {
		leftPage, rightPage = f.under.left, f.over.right
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		renderPage(leftLines, width, m.decor(leftPage, leafLeft)),
		renderPage(rightLines, width, m.decor(rightPage, !leafLeft)))
}

// renderFooter renders a single-line minimal footer
func (m Model) renderFooter() string {
	var left string
	if m.Reader.Loading() {
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Paginating...")
	} else if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	center := ""
	if m.chapter.Index >= 0 {
		center = styles.AccentStyle.Render(m.chapter.Chapter.Title)
	}

	right := styles.DimStyle.Render(m.pageLabel()) + "  " +
		styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := max(0, m.Width-leftWidth-rightWidth)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad
	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

// pageLabel describes the view position, e.g. "12-13 / 240"
func (m Model) pageLabel() string {
	total := m.Reader.TotalPages()
	if total == 0 {
		return ""
	}
	if m.Reader.Machine().State() == lifecycle.Closed {
		return fmt.Sprintf("closed · %d pages", total)
	}
	index := m.Reader.CurrentIndex()
	if m.Reader.SinglePage() || index+1 >= total {
		return fmt.Sprintf("%d / %d", index+1, total)
	}
	return fmt.Sprintf("%d-%d / %d", index+1, index+2, total)
}

// renderHelp renders the help screen
// engineLine summarizes the engine state, naming the last animation by its
// operation id so it can be found in the log
func (m Model) engineLine() string {
	line := fmt.Sprintf("Engine: %s, %d pages cached", m.Reader.Machine().State(), m.Reader.CacheSize())
	if op := m.Reader.Animator().Last(); op != nil {
		line += fmt.Sprintf(", last %s %s", op.Kind, op.ID[:8])
	}
	return line
}

func (m Model) renderHelp() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.ModalTitleStyle.Render("Keys"),
		m.Help.View(Keys),
		"",
		styles.DimStyle.Render("Drag a page with the mouse to turn it by hand."),
		styles.DimStyle.Render(m.engineLine()),
		styles.DimStyle.Render("Press any key to return..."),
	)
	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(body))
}
