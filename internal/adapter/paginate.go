package adapter

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/mmcdole/leaf/internal/domain"
)

var (
	headingPattern = regexp.MustCompile(`^#\s+(.+?)\s*#*$`)
	imagePattern   = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)[^)]*\)`)

	headingStyle = lipgloss.NewStyle().Bold(true)
	imageStyle   = lipgloss.NewStyle().Faint(true)
)

// TextPaginator lays plain text out into fixed-size pages. A line starting
// with "# " begins a chapter on a fresh page; markdown image references are
// replaced by a placeholder and recorded against their page.
type TextPaginator struct{}

// Paginate implements domain.Paginator
func (TextPaginator) Paginate(ctx context.Context, raw string, geom domain.Geometry) (*domain.PaginationResult, error) {
	if geom.PageWidth <= 0 || geom.PageHeight <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", domain.ErrInvalidGeometry, geom.PageWidth, geom.PageHeight)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, domain.ErrEmptyContent
	}

	b := &pageBuilder{width: geom.PageWidth, height: geom.PageHeight, images: map[int][]string{}}
	for i, line := range strings.Split(raw, "\n") {
		if i%512 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			b.breakPage()
			b.chapters = append(b.chapters, domain.Chapter{Title: m[1], Page: b.page()})
			for _, wrapped := range strings.Split(ansi.Wrap(headingStyle.Render(m[1]), b.width, ""), "\n") {
				b.add(wrapped)
			}
			b.add("")
			continue
		}

		var refs []string
		line = imagePattern.ReplaceAllStringFunc(line, func(match string) string {
			sub := imagePattern.FindStringSubmatch(match)
			refs = append(refs, sub[2])
			alt := sub[1]
			if alt == "" {
				alt = "image"
			}
			return imageStyle.Render("[" + alt + "]")
		})
		for _, wrapped := range strings.Split(ansi.Wrap(line, b.width, ""), "\n") {
			if len(refs) > 0 {
				b.images[b.page()] = append(b.images[b.page()], refs...)
				refs = nil
			}
			b.add(wrapped)
		}
	}

	src := b.source()
	return &domain.PaginationResult{
		PageCount:  len(src.pages),
		PageWidth:  geom.PageWidth,
		PageHeight: geom.PageHeight,
		Source:     src,
		Chapters:   b.chapters,
	}, nil
}

type pageBuilder struct {
	width, height int
	lines         []string
	chapters      []domain.Chapter
	images        map[int][]string
}

func (b *pageBuilder) page() int {
	return len(b.lines) / b.height
}

func (b *pageBuilder) add(line string) {
	// no blank lines at the top of a page
	if line == "" && len(b.lines)%b.height == 0 {
		return
	}
	b.lines = append(b.lines, line)
}

func (b *pageBuilder) breakPage() {
	for len(b.lines)%b.height != 0 {
		b.lines = append(b.lines, "")
	}
}

func (b *pageBuilder) source() *pageStrip {
	b.breakPage()
	pages := make([][]string, 0, len(b.lines)/b.height)
	for start := 0; start < len(b.lines); start += b.height {
		pages = append(pages, b.lines[start:start+b.height])
	}
	return &pageStrip{pages: pages, width: b.width, height: b.height, images: b.images}
}

// pageStrip is the laid-out book. Pages sit side by side on a conceptual
// strip; PageLine serves a single page without building the strip line.
type pageStrip struct {
	pages  [][]string
	width  int
	height int
	images map[int][]string
}

func (s *pageStrip) Width() int  { return len(s.pages) * s.width }
func (s *pageStrip) Height() int { return s.height }

func (s *pageStrip) Line(y int) string {
	var sb strings.Builder
	for p := range s.pages {
		sb.WriteString(s.PageLine(p, y))
	}
	return sb.String()
}

func (s *pageStrip) PageLine(page, y int) string {
	if page < 0 || page >= len(s.pages) || y < 0 || y >= s.height {
		return strings.Repeat(" ", s.width)
	}
	line := s.pages[page][y]
	if pad := s.width - ansi.StringWidth(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	return line
}

func (s *pageStrip) Images(page int) []string {
	return s.images[page]
}
