package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mmcdole/leaf/internal/animate"
	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/tui/styles"
)

// spineWidth is the narrowest a wrapped book is drawn
const spineWidth = 6

// pagePair is the left and right page of one view. In single-page mode
// only left is shown.
type pagePair struct {
	left, right domain.Surface
}

func (p pagePair) contains(page int) bool {
	if page < 0 {
		return false
	}
	return (!p.left.IsBlank() && p.left.Page == page) || (!p.right.IsBlank() && p.right.Page == page)
}

// flipView is a turning leaf between two views
type flipView struct {
	dir    domain.Direction
	angle  float64
	shadow float64
	front  domain.Surface // Face leaving the view
	back   domain.Surface // Face arriving
	over   pagePair       // View being turned away
	under  pagePair       // View being revealed
}

// splitPairs tells the view being turned away from the one being revealed.
// Which slots hold which changes when the flip swaps them at its midpoint.
func splitPairs(active, buffer pagePair, back domain.Surface) (over, under pagePair) {
	if buffer.contains(back.Page) {
		return active, buffer
	}
	return buffer, active
}

// flipDirection infers which way a keyboard flip turns from its leaf faces
func flipDirection(front, back domain.Surface) domain.Direction {
	if back.Page < front.Page {
		return domain.Prev
	}
	return domain.Next
}

// phaseAngle maps an animator phase and its progress to a leaf rotation
func phaseAngle(phase animate.Phase, progress float64) float64 {
	switch phase {
	case animate.PhaseLift:
		return 15 * progress
	case animate.PhaseRotate:
		return 15 + 150*progress
	case animate.PhaseDrop:
		return 165 + 15*progress
	default:
		return 0
	}
}

// leafWidth is how many columns of a page-wide leaf are visible at angle
func leafWidth(angle float64, pageWidth int) int {
	w := int(math.Round(float64(pageWidth) * math.Abs(math.Cos(angle/180*math.Pi))))
	return max(0, min(w, pageWidth))
}

// overlay lays w columns of leaf over under. A leaf hinged on the left edge
// shows its leftmost columns, one hinged on the right its rightmost.
func overlay(under, leaf []string, w, pageWidth int, hingeLeft, shadowed bool) []string {
	out := make([]string, len(under))
	for y := range under {
		leafLine := ""
		if y < len(leaf) {
			leafLine = leaf[y]
		}
		var rest, visible string
		if hingeLeft {
			visible = ansi.Cut(leafLine, 0, w)
			rest = ansi.Cut(under[y], w, pageWidth)
		} else {
			rest = ansi.Cut(under[y], 0, pageWidth-w)
			visible = ansi.Cut(leafLine, pageWidth-w, pageWidth)
		}
		if pad := w - ansi.StringWidth(visible); pad > 0 {
			visible += strings.Repeat(" ", pad)
		}
		if shadowed {
			rest = styles.ShadowStyle.Render(ansi.Strip(rest))
		}
		if hingeLeft {
			out[y] = visible + rest
		} else {
			out[y] = rest + visible
		}
	}
	return out
}

// composeFlip renders the page contents of a turning leaf. leafLeft reports
// which page box currently carries the leaf.
func composeFlip(f flipView, single bool) (left, right []string, leafLeft bool) {
	pw := f.under.left.Width
	if pw == 0 {
		pw = f.front.Width
	}
	w := leafWidth(f.angle, pw)
	shadowed := f.shadow > 0.5
	rising := f.angle < 90

	if single {
		if !rising {
			return f.under.left.Lines(), nil, true
		}
		hinge := f.dir == domain.Next
		return overlay(f.under.left.Lines(), f.front.Lines(), w, pw, hinge, shadowed), nil, true
	}

	switch {
	case f.dir == domain.Next && rising:
		return f.over.left.Lines(), overlay(f.under.right.Lines(), f.front.Lines(), w, pw, true, shadowed), false
	case f.dir == domain.Next:
		return overlay(f.over.left.Lines(), f.back.Lines(), w, pw, false, shadowed), f.under.right.Lines(), true
	case rising:
		return overlay(f.under.left.Lines(), f.front.Lines(), w, pw, false, shadowed), f.over.right.Lines(), true
	default:
		return f.under.left.Lines(), overlay(f.over.right.Lines(), f.back.Lines(), w, pw, true, shadowed), false
	}
}

// pageDecor is the header and footer drawn around a page's lines
type pageDecor struct {
	header string
	marked bool
	footer string
	leaf   bool
}

// renderPage draws page lines inside a bordered box
func renderPage(lines []string, width int, decor pageDecor) string {
	header := styles.DimStyle.Render(styles.Truncate(decor.header, width-2))
	if decor.marked {
		header = lipgloss.PlaceHorizontal(width-1, lipgloss.Left, header) + styles.AccentStyle.Render(styles.BookmarkChar)
	}
	body := make([]string, 0, len(lines)+2)
	body = append(body, lipgloss.PlaceHorizontal(width, lipgloss.Left, header))
	body = append(body, lines...)
	body = append(body, lipgloss.PlaceHorizontal(width, lipgloss.Center, styles.DimStyle.Render(decor.footer)))

	style := styles.PageStyle
	if decor.leaf {
		style = styles.LeafStyle
	}
	return style.Render(strings.Join(body, "\n"))
}

// pageNumber is the one-based label of a surface, empty when blank
func pageNumber(s domain.Surface) string {
	if s.IsBlank() {
		return ""
	}
	return fmt.Sprintf("%d", s.Page+1)
}

// renderCover draws the closed book
func renderCover(title, subtitle string, width, height int) string {
	width = max(width, 4)
	height = max(height, 3)
	inner := styles.TitleStyle.Render(styles.Truncate(title, max(1, width-6)))
	if subtitle != "" && width > spineWidth {
		inner = lipgloss.JoinVertical(lipgloss.Center, inner, "", styles.Truncate(subtitle, width-6))
	}
	if width <= spineWidth {
		inner = ""
	}
	return styles.CoverStyle.
		Width(width - 2).
		Height(height - 2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(inner)
}

// overlayColumns paints the first cols columns of top over base
func overlayColumns(base, top string, cols int) string {
	if cols <= 0 {
		return base
	}
	baseLines := strings.Split(base, "\n")
	topLines := strings.Split(top, "\n")
	for y, line := range baseLines {
		if y >= len(topLines) {
			break
		}
		baseLines[y] = ansi.Cut(topLines[y], 0, cols) + ansi.Cut(line, cols, ansi.StringWidth(line))
	}
	return strings.Join(baseLines, "\n")
}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return styles.SpinnerStyle.Render(frames[frame%len(frames)])
}
