package domain

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Source is the single laid-out strip of book content. Pages sit side by side,
// so page i occupies columns [i*PageWidth, (i+1)*PageWidth) of every line.
type Source interface {
	Width() int
	Height() int
	Line(y int) string

	// Images returns the image references that land on a page
	Images(page int) []string
}

// PageSource is implemented by sources that can produce one page's line
// without assembling the whole strip line
type PageSource interface {
	PageLine(page, y int) string
}

// Surface is a materialized page: a clip window over the shared Source.
// It holds no page text of its own, so copying a Surface is cheap.
type Surface struct {
	Page    int
	Source  Source
	Offset  int // Column translation into the Source strip
	Width   int
	Height  int
	Loading bool // Page has images that have not been displayed yet
}

// BlankSurface returns an empty page of the given size
func BlankSurface(width, height int) Surface {
	return Surface{Page: -1, Width: width, Height: height}
}

// IsBlank reports whether the surface shows no page
func (s Surface) IsBlank() bool {
	return s.Source == nil
}

// Clone returns an independent copy for placement in a viewport slot
func (s Surface) Clone() Surface {
	return s
}

// Lines renders the clipped page, padded to exactly Width x Height cells
func (s Surface) Lines() []string {
	pages, _ := s.Source.(PageSource)
	lines := make([]string, s.Height)
	for y := range lines {
		var line string
		switch {
		case s.Source == nil || y >= s.Source.Height():
		case pages != nil && s.Page >= 0:
			line = ansi.Cut(pages.PageLine(s.Page, y), 0, s.Width)
		default:
			line = ansi.Cut(s.Source.Line(y), s.Offset, s.Offset+s.Width)
		}
		if pad := s.Width - ansi.StringWidth(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		lines[y] = line
	}
	return lines
}
