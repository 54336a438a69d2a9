package render

// imageSet remembers which image references have been displayed, evicting
// the oldest reference first once it holds limit entries.
type imageSet struct {
	limit int
	order []string
	seen  map[string]struct{}
}

func newImageSet(limit int) *imageSet {
	return &imageSet{limit: limit, seen: make(map[string]struct{}, limit)}
}

// markDisplayed records refs as displayed. It reports whether any of them
// was new, meaning the page should show its loading placeholder.
func (s *imageSet) markDisplayed(refs []string) bool {
	pending := false
	for _, ref := range refs {
		if _, ok := s.seen[ref]; ok {
			continue
		}
		pending = true
		s.add(ref)
	}
	return pending
}

func (s *imageSet) has(ref string) bool {
	_, ok := s.seen[ref]
	return ok
}

func (s *imageSet) add(ref string) {
	if len(s.order) >= s.limit {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}
	s.order = append(s.order, ref)
	s.seen[ref] = struct{}{}
}

func (s *imageSet) len() int {
	return len(s.order)
}

func (s *imageSet) reset() {
	s.order = nil
	s.seen = make(map[string]struct{}, s.limit)
}
