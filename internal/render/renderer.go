// Package render virtualizes the book surface: six viewport slots filled on
// demand from a bounded page cache over one shared content strip.
package render

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/pagecache"
)

// DefaultImageLimit bounds the displayed-image bookkeeping
const DefaultImageLimit = 100

// Options configures a Renderer
type Options struct {
	CacheLimit int // Pages kept materialized (pagecache.DefaultLimit if zero)
	ImageLimit int // Image references remembered as displayed
	Logger     *slog.Logger
}

// Renderer owns the slot role assignment and fills slots with page clones.
// It must only be called from the scheduler loop.
type Renderer struct {
	cache   *pagecache.Cache
	images  *imageSet
	slots   map[domain.SlotRole]domain.Slot
	content *domain.PaginationResult
	logger  *slog.Logger
}

// New creates a renderer over the given slot handles. Missing roles are
// reported when an operation needs them, not here.
func New(slots map[domain.SlotRole]domain.Slot, opts Options) *Renderer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	imageLimit := opts.ImageLimit
	if imageLimit <= 0 {
		imageLimit = DefaultImageLimit
	}

	owned := make(map[domain.SlotRole]domain.Slot, len(domain.SlotRoles))
	for role, slot := range slots {
		owned[role] = slot
	}

	return &Renderer{
		cache:  pagecache.New(opts.CacheLimit),
		images: newImageSet(imageLimit),
		slots:  owned,
		logger: logger,
	}
}

// SetContent installs a new pagination result. Every cached page and all
// image bookkeeping belong to the old content and are dropped.
func (r *Renderer) SetContent(res *domain.PaginationResult) {
	r.content = res
	r.cache.Clear()
	r.images.reset()
	if res != nil {
		r.logger.Debug("content installed", "pages", res.PageCount, "pageWidth", res.PageWidth, "pageHeight", res.PageHeight)
	}
}

// Content returns the installed pagination result, or nil
func (r *Renderer) Content() *domain.PaginationResult {
	return r.content
}

// TotalPages returns the page count of the installed content
func (r *Renderer) TotalPages() int {
	if r.content == nil {
		return 0
	}
	return r.content.PageCount
}

// CacheSize returns the number of materialized pages
func (r *Renderer) CacheSize() int {
	return r.cache.Len()
}

// MaxIndex returns the largest index a view may start at: the last page in
// single-page mode, the left page of the last spread otherwise.
func (r *Renderer) MaxIndex(single bool) int {
	return MaxIndex(r.TotalPages(), single)
}

// MaxIndex computes the last valid view index for a page count
func MaxIndex(pageCount int, single bool) int {
	if single {
		return max(0, pageCount-1)
	}
	return max(0, pageCount-2)
}

// Slot returns the handle currently playing role
func (r *Renderer) Slot(role domain.SlotRole) domain.Slot {
	return r.slots[role]
}

// Validate checks that content is installed and every role has a handle
func (r *Renderer) Validate() error {
	if r.content == nil || r.content.Source == nil {
		return domain.ErrNoContent
	}
	if r.content.PageCount <= 0 {
		return domain.ErrEmptyContent
	}
	return r.ValidateSlots()
}

// ValidateSlots checks that every role has a handle
func (r *Renderer) ValidateSlots() error {
	for _, role := range domain.SlotRoles {
		if r.slots[role] == nil {
			return fmt.Errorf("%w: %s", domain.ErrSlotMissing, role)
		}
	}
	return nil
}

// Page returns the surface for index, materializing and caching it on a miss
func (r *Renderer) Page(index int) (domain.Surface, error) {
	if r.content == nil || r.content.Source == nil {
		return domain.Surface{}, domain.ErrNoContent
	}
	if index < 0 || index >= r.content.PageCount {
		return domain.Surface{}, fmt.Errorf("%w: %d of %d", domain.ErrPageOutOfRange, index, r.content.PageCount)
	}

	if s, ok := r.cache.Get(index); ok {
		return s, nil
	}

	s := r.materialize(index)
	r.cache.Set(index, s)
	r.logger.Debug("materialized page", "page", index, "cached", r.cache.Len())
	return s, nil
}

// materialize builds a clip window over the shared source; no text is copied
func (r *Renderer) materialize(index int) domain.Surface {
	c := r.content
	return domain.Surface{
		Page:   index,
		Source: c.Source,
		Offset: index * c.PageWidth,
		Width:  c.PageWidth,
		Height: c.PageHeight,
	}
}

// RenderSpread fills the active slots with the view starting at index
func (r *Renderer) RenderSpread(index int, single bool) error {
	return r.fillPair(domain.RoleActiveLeft, domain.RoleActiveRight, index, single)
}

// PrepareBuffer fills the buffer slots with the view starting at index
func (r *Renderer) PrepareBuffer(index int, single bool) error {
	return r.fillPair(domain.RoleBufferLeft, domain.RoleBufferRight, index, single)
}

// PrepareTransitionSurfaces fills the turning leaf: its front face is the page
// leaving the view and its back face is the page arriving.
func (r *Renderer) PrepareTransitionSurfaces(current, next int, dir domain.Direction, single bool) error {
	if err := r.Validate(); err != nil {
		return err
	}

	front, back := current, next
	if !single {
		if dir == domain.Next {
			front = current + 1
		} else {
			back = next + 1
		}
	}

	r.fill(domain.RoleTransitionFront, front)
	r.fill(domain.RoleTransitionBack, back)
	return nil
}

// ClearTransition empties both faces of the turning leaf
func (r *Renderer) ClearTransition() {
	for _, role := range []domain.SlotRole{domain.RoleTransitionFront, domain.RoleTransitionBack} {
		if slot := r.slots[role]; slot != nil {
			slot.Clear()
		}
	}
}

// SwapActiveAndBuffer exchanges the active and buffer roles. No content is
// touched, and swapping twice restores the original assignment.
func (r *Renderer) SwapActiveAndBuffer() {
	s := r.slots
	s[domain.RoleActiveLeft], s[domain.RoleBufferLeft] = s[domain.RoleBufferLeft], s[domain.RoleActiveLeft]
	s[domain.RoleActiveRight], s[domain.RoleBufferRight] = s[domain.RoleBufferRight], s[domain.RoleActiveRight]
}

func (r *Renderer) fillPair(left, right domain.SlotRole, index int, single bool) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.fill(left, index)
	if single {
		r.blank(right)
		return nil
	}
	r.fill(right, index+1)
	return nil
}

// fill places a clone of page index into role, or a blank page when index
// falls outside the book (the right side of an odd final spread).
func (r *Renderer) fill(role domain.SlotRole, index int) {
	s, err := r.Page(index)
	if err != nil {
		r.blank(role)
		return
	}
	clone := s.Clone()
	clone.Loading = r.images.markDisplayed(r.content.Source.Images(index))
	r.slots[role].Replace(clone)
}

func (r *Renderer) blank(role domain.SlotRole) {
	slot := r.slots[role]
	w, h := slot.Size()
	if r.content != nil && (w == 0 || h == 0) {
		w, h = r.content.PageWidth, r.content.PageHeight
	}
	slot.Replace(domain.BlankSurface(w, h))
}
