package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/search"
	"github.com/mmcdole/leaf/internal/tui/styles"
)

const (
	paletteWidth   = 48
	paletteVisible = 10
)

// PaletteKeys are the bindings the palette reacts to
type PaletteKeys struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

// ChapterPalette is a modal for fuzzy-jumping to a chapter
type ChapterPalette struct {
	visible bool
	keys    PaletteKeys
	input   textinput.Model
	index   *search.ChapterIndex
	results []search.Result
	cursor  int
	offset  int
}

// NewChapterPalette creates a hidden palette
func NewChapterPalette(keys PaletteKeys) ChapterPalette {
	ti := textinput.New()
	ti.Placeholder = "Jump to chapter..."
	ti.CharLimit = 80
	ti.Width = paletteWidth - 4
	ti.Prompt = ": "
	ti.PromptStyle = styles.AccentStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return ChapterPalette{
		keys:  keys,
		input: ti,
		index: search.NewChapterIndex(nil),
	}
}

// SetChapters replaces the searchable chapters
func (p *ChapterPalette) SetChapters(chapters []domain.Chapter) {
	p.index = search.NewChapterIndex(chapters)
	p.refilter()
}

// Show opens the palette with chapter current selected
func (p *ChapterPalette) Show(current int) {
	p.visible = true
	p.input.SetValue("")
	p.input.Focus()
	p.refilter()
	if current >= 0 && current < len(p.results) {
		p.cursor = current
		p.scroll()
	}
}

// Hide dismisses the palette
func (p *ChapterPalette) Hide() {
	p.visible = false
	p.input.Blur()
}

// IsVisible returns whether the palette is shown
func (p ChapterPalette) IsVisible() bool {
	return p.visible
}

// Results returns the chapters matching the current query
func (p ChapterPalette) Results() []search.Result {
	return p.results
}

// Update handles input events. It returns the chosen chapter when the user
// selects one; the palette hides itself in that case.
func (p ChapterPalette) Update(msg tea.Msg) (ChapterPalette, tea.Cmd, *domain.Chapter) {
	if !p.visible {
		return p, nil, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, p.keys.Cancel):
			p.Hide()
			return p, nil, nil
		case key.Matches(keyMsg, p.keys.Select):
			if p.cursor < len(p.results) {
				chosen := p.results[p.cursor].Chapter
				p.Hide()
				return p, nil, &chosen
			}
			return p, nil, nil
		case key.Matches(keyMsg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
				p.scroll()
			}
			return p, nil, nil
		case key.Matches(keyMsg, p.keys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
				p.scroll()
			}
			return p, nil, nil
		}
	}

	prev := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != prev {
		p.refilter()
	}
	return p, cmd, nil
}

func (p *ChapterPalette) refilter() {
	p.results = p.index.Filter(p.input.Value())
	p.cursor = 0
	p.offset = 0
}

func (p *ChapterPalette) scroll() {
	if p.cursor < p.offset {
		p.offset = p.cursor
	}
	if p.cursor >= p.offset+paletteVisible {
		p.offset = p.cursor - paletteVisible + 1
	}
}

// View renders the palette
func (p ChapterPalette) View() string {
	if !p.visible {
		return ""
	}

	itemWidth := paletteWidth - 4
	var lines []string
	lines = append(lines, styles.ModalTitleStyle.Render("Chapters"))
	lines = append(lines, p.input.View(), "")

	if len(p.results) == 0 {
		lines = append(lines, styles.DimStyle.Render("No matches"))
	}

	end := min(len(p.results), p.offset+paletteVisible)
	for i := p.offset; i < end; i++ {
		lines = append(lines, p.renderResult(p.results[i], i == p.cursor, itemWidth))
	}
	if len(p.results) > paletteVisible {
		lines = append(lines, styles.DimStyle.Render(fmt.Sprintf("%d/%d", p.cursor+1, len(p.results))))
	}

	return styles.ModalStyle.Width(paletteWidth).Render(strings.Join(lines, "\n"))
}

func (p ChapterPalette) renderResult(r search.Result, selected bool, width int) string {
	page := fmt.Sprintf(" p.%d", r.Chapter.Page+1)
	titleWidth := width - lipgloss.Width(page) - 2

	base := styles.NormalItemStyle
	highlight := styles.MatchHighlightStyle
	marker := "  "
	if selected {
		base = styles.SelectedItemStyle
		highlight = styles.MatchHighlightSelectedStyle
		marker = styles.AccentStyle.Render("› ")
	}

	title := []rune(styles.Truncate(r.Chapter.Title, titleWidth))
	matched := make(map[int]bool, len(r.MatchedIndexes))
	for _, i := range r.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder
	for i, ch := range title {
		if matched[i] {
			b.WriteString(highlight.Render(string(ch)))
		} else {
			b.WriteString(base.Render(string(ch)))
		}
	}
	pad := max(0, titleWidth-len(title))
	b.WriteString(base.Render(strings.Repeat(" ", pad)))
	b.WriteString(styles.DimStyle.Render(page))
	return marker + b.String()
}
