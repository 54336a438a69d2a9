package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/mmcdole/leaf/internal/domain"
	"github.com/mmcdole/leaf/internal/testutil"
)

func newRenderer(t *testing.T, pages int) (*Renderer, map[domain.SlotRole]domain.Slot) {
	t.Helper()
	slots := testutil.Slots()
	r := New(slots, Options{CacheLimit: 4, Logger: testutil.NullLogger()})
	r.SetContent(testutil.Book(pages, 0))
	return r, slots
}

func TestMaxIndex(t *testing.T) {
	tests := []struct {
		pages  int
		single bool
		want   int
	}{
		{10, false, 8},
		{10, true, 9},
		{1, false, 0},
		{1, true, 0},
		{0, false, 0},
		{0, true, 0},
		{11, false, 9},
	}
	for _, tt := range tests {
		if got := MaxIndex(tt.pages, tt.single); got != tt.want {
			t.Errorf("MaxIndex(%d, %v) = %d, want %d", tt.pages, tt.single, got, tt.want)
		}
	}
}

func TestRenderSpreadFillsActiveSlots(t *testing.T) {
	r, _ := newRenderer(t, 10)

	if err := r.RenderSpread(4, false); err != nil {
		t.Fatalf("RenderSpread: %v", err)
	}
	if got := testutil.PageIn(r.Slot(domain.RoleActiveLeft)); got != 4 {
		t.Errorf("active left shows page %d, want 4", got)
	}
	if got := testutil.PageIn(r.Slot(domain.RoleActiveRight)); got != 5 {
		t.Errorf("active right shows page %d, want 5", got)
	}
}

func TestRenderSpreadSinglePageBlanksRight(t *testing.T) {
	r, _ := newRenderer(t, 10)

	if err := r.RenderSpread(3, true); err != nil {
		t.Fatalf("RenderSpread: %v", err)
	}
	if got := testutil.PageIn(r.Slot(domain.RoleActiveLeft)); got != 3 {
		t.Errorf("active left shows page %d, want 3", got)
	}
	if got := testutil.PageIn(r.Slot(domain.RoleActiveRight)); got != -1 {
		t.Errorf("active right shows page %d, want blank", got)
	}
}

func TestRenderSpreadPastLastPageIsBlank(t *testing.T) {
	r, _ := newRenderer(t, 5)

	if err := r.RenderSpread(4, false); err != nil {
		t.Fatalf("RenderSpread: %v", err)
	}
	if got := testutil.PageIn(r.Slot(domain.RoleActiveRight)); got != -1 {
		t.Errorf("right of final odd spread shows page %d, want blank", got)
	}
}

func TestSlotsHoldClonesNotCachedOriginals(t *testing.T) {
	r, _ := newRenderer(t, 10)
	if err := r.RenderSpread(0, false); err != nil {
		t.Fatal(err)
	}
	if err := r.PrepareBuffer(0, false); err != nil {
		t.Fatal(err)
	}

	active := r.Slot(domain.RoleActiveLeft).(*testutil.RecordingSlot)
	buffer := r.Slot(domain.RoleBufferLeft).(*testutil.RecordingSlot)
	active.Current.Offset = 999

	if buffer.Current.Offset == 999 {
		t.Error("buffer slot shares state with active slot")
	}
	cached, _ := r.Page(0)
	if cached.Offset == 999 {
		t.Error("slot mutation leaked into the page cache")
	}
}

func TestPageIsCachedAndBounded(t *testing.T) {
	r, _ := newRenderer(t, 20)

	for i := 0; i < 10; i++ {
		if _, err := r.Page(i); err != nil {
			t.Fatalf("Page(%d): %v", i, err)
		}
	}
	if got := r.CacheSize(); got != 4 {
		t.Errorf("cache size = %d, want 4", got)
	}
}

func TestPageMaterializesByOffset(t *testing.T) {
	r, _ := newRenderer(t, 6)

	s, err := r.Page(3)
	if err != nil {
		t.Fatal(err)
	}
	if s.Offset != 3*8 {
		t.Errorf("offset = %d, want %d", s.Offset, 24)
	}
	if first := strings.TrimSpace(s.Lines()[0]); first != "p3" {
		t.Errorf("first line = %q, want p3", first)
	}
}

func TestPageOutOfRange(t *testing.T) {
	r, _ := newRenderer(t, 3)

	for _, idx := range []int{-1, 3} {
		if _, err := r.Page(idx); !errors.Is(err, domain.ErrPageOutOfRange) {
			t.Errorf("Page(%d) error = %v, want ErrPageOutOfRange", idx, err)
		}
	}
}

func TestSetContentClearsCache(t *testing.T) {
	r, _ := newRenderer(t, 10)
	_ = r.RenderSpread(0, false)
	if r.CacheSize() == 0 {
		t.Fatal("expected cached pages")
	}

	r.SetContent(testutil.Book(4, 0))
	if r.CacheSize() != 0 {
		t.Errorf("cache size = %d after new content, want 0", r.CacheSize())
	}
	if r.TotalPages() != 4 {
		t.Errorf("total pages = %d, want 4", r.TotalPages())
	}
}

func TestSwapIsItsOwnInverse(t *testing.T) {
	r, _ := newRenderer(t, 10)
	before := make(map[domain.SlotRole]domain.Slot)
	for _, role := range domain.SlotRoles {
		before[role] = r.Slot(role)
	}

	r.SwapActiveAndBuffer()
	if r.Slot(domain.RoleActiveLeft) != before[domain.RoleBufferLeft] {
		t.Error("swap did not move buffer-left into active-left")
	}
	if r.Slot(domain.RoleBufferRight) != before[domain.RoleActiveRight] {
		t.Error("swap did not move active-right into buffer-right")
	}

	r.SwapActiveAndBuffer()
	for _, role := range domain.SlotRoles {
		if r.Slot(role) != before[role] {
			t.Errorf("role %s not restored after double swap", role)
		}
	}
}

func TestSwapTouchesNoContent(t *testing.T) {
	r, slots := newRenderer(t, 10)
	_ = r.RenderSpread(0, false)
	_ = r.PrepareBuffer(2, false)

	counts := make(map[domain.SlotRole]int)
	for role, slot := range slots {
		counts[role] = slot.(*testutil.RecordingSlot).Replaced
	}
	r.SwapActiveAndBuffer()
	for role, slot := range slots {
		if got := slot.(*testutil.RecordingSlot).Replaced; got != counts[role] {
			t.Errorf("slot %s replaced during swap", role)
		}
	}
	if got := testutil.PageIn(r.Slot(domain.RoleActiveLeft)); got != 2 {
		t.Errorf("active left after swap = %d, want 2", got)
	}
}

func TestPrepareTransitionSurfaces(t *testing.T) {
	tests := []struct {
		name          string
		current, next int
		dir           domain.Direction
		single        bool
		front, back   int
	}{
		{"spread next", 2, 4, domain.Next, false, 3, 4},
		{"spread prev", 4, 2, domain.Prev, false, 4, 3},
		{"single next", 2, 3, domain.Next, true, 2, 3},
		{"single prev", 3, 2, domain.Prev, true, 3, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRenderer(t, 10)
			if err := r.PrepareTransitionSurfaces(tt.current, tt.next, tt.dir, tt.single); err != nil {
				t.Fatal(err)
			}
			if got := testutil.PageIn(r.Slot(domain.RoleTransitionFront)); got != tt.front {
				t.Errorf("front = %d, want %d", got, tt.front)
			}
			if got := testutil.PageIn(r.Slot(domain.RoleTransitionBack)); got != tt.back {
				t.Errorf("back = %d, want %d", got, tt.back)
			}
		})
	}
}

func TestValidateReportsMissingSlot(t *testing.T) {
	slots := testutil.Slots()
	delete(slots, domain.RoleBufferRight)
	r := New(slots, Options{Logger: testutil.NullLogger()})
	r.SetContent(testutil.Book(4, 0))

	if err := r.RenderSpread(0, false); !errors.Is(err, domain.ErrSlotMissing) {
		t.Errorf("error = %v, want ErrSlotMissing", err)
	}
}

func TestValidateReportsMissingContent(t *testing.T) {
	r := New(testutil.Slots(), Options{Logger: testutil.NullLogger()})
	if err := r.RenderSpread(0, false); !errors.Is(err, domain.ErrNoContent) {
		t.Errorf("error = %v, want ErrNoContent", err)
	}
}

func TestImageBookkeeping(t *testing.T) {
	slots := testutil.Slots()
	r := New(slots, Options{Logger: testutil.NullLogger()})
	book := testutil.Book(6, 0)
	book.Source.(*testutil.StripSource).PageImages = map[int][]string{0: {"cover.png"}}
	r.SetContent(book)

	_ = r.RenderSpread(0, false)
	if !r.Slot(domain.RoleActiveLeft).(*testutil.RecordingSlot).Current.Loading {
		t.Error("first display of an image should show the loading placeholder")
	}

	_ = r.RenderSpread(0, false)
	if r.Slot(domain.RoleActiveLeft).(*testutil.RecordingSlot).Current.Loading {
		t.Error("second display of an image should not be loading")
	}

	r.SetContent(book)
	_ = r.RenderSpread(0, false)
	if !r.Slot(domain.RoleActiveLeft).(*testutil.RecordingSlot).Current.Loading {
		t.Error("new content must reset image bookkeeping")
	}
}

func TestImageSetIsFIFO(t *testing.T) {
	s := newImageSet(2)
	s.markDisplayed([]string{"a", "b"})
	s.markDisplayed([]string{"a"})
	s.markDisplayed([]string{"c"})

	if s.has("a") {
		t.Error("oldest insert should be evicted first regardless of access")
	}
	if !s.has("b") || !s.has("c") {
		t.Error("expected b and c to remain")
	}
	if s.len() != 2 {
		t.Errorf("len = %d, want 2", s.len())
	}
}
