package render

import "github.com/mmcdole/leaf/internal/domain"

// Pane is an in-memory viewport slot. The terminal view paints whatever
// surface a pane currently holds.
type Pane struct {
	Name    string
	surface domain.Surface
	width   int
	height  int
}

// NewPane creates an empty pane
func NewPane(name string) *Pane {
	return &Pane{Name: name, surface: domain.Surface{Page: -1}}
}

// NewPanes creates one pane per slot role, keyed by role
func NewPanes() map[domain.SlotRole]domain.Slot {
	panes := make(map[domain.SlotRole]domain.Slot, len(domain.SlotRoles))
	for _, role := range domain.SlotRoles {
		panes[role] = NewPane(role.String())
	}
	return panes
}

func (p *Pane) Replace(s domain.Surface) {
	p.surface = s
}

func (p *Pane) Clear() {
	p.surface = domain.BlankSurface(p.width, p.height)
}

func (p *Pane) Size() (int, int) {
	return p.width, p.height
}

// SetSize records the on-screen size of the pane
func (p *Pane) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// Surface returns the surface currently held
func (p *Pane) Surface() domain.Surface {
	return p.surface
}
