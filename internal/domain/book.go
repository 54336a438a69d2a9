package domain

// Direction is the way a flip turns the leaf
type Direction int

const (
	Next Direction = iota
	Prev
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// Chapter marks the first page of a chapter in a paginated book
type Chapter struct {
	Title string
	Page  int
}

// Geometry describes the measurement surface handed to a Paginator
type Geometry struct {
	PageWidth  int  // Cells per page column
	PageHeight int  // Rows per page
	SinglePage bool // One page per view instead of a two-page spread
}

// PaginationResult is the output of the content pipeline.
// It is immutable once delivered; a new result replaces the old one wholesale.
type PaginationResult struct {
	PageCount  int
	PageWidth  int
	PageHeight int
	Source     Source    // The only content reference the renderer keeps
	Chapters   []Chapter // Ordered by Page
}

// ChapterStarts returns the page index of every chapter start, in order
func (p *PaginationResult) ChapterStarts() []int {
	if p == nil {
		return nil
	}
	starts := make([]int, len(p.Chapters))
	for i, ch := range p.Chapters {
		starts[i] = ch.Page
	}
	return starts
}

// ChapterAt returns the position in Chapters of the chapter containing page,
// or -1 when the page precedes every chapter start.
func (p *PaginationResult) ChapterAt(page int) int {
	if p == nil {
		return -1
	}
	found := -1
	for i, ch := range p.Chapters {
		if ch.Page > page {
			break
		}
		found = i
	}
	return found
}

// Rect is a reference rectangle in display units (terminal cells)
type Rect struct {
	X, Y          float64
	Width, Height float64
}
