package domain

// SlotRole names one of the six viewport regions
type SlotRole int

const (
	RoleActiveLeft SlotRole = iota
	RoleActiveRight
	RoleBufferLeft
	RoleBufferRight
	RoleTransitionFront
	RoleTransitionBack
)

// SlotRoles lists every role in declaration order
var SlotRoles = []SlotRole{
	RoleActiveLeft,
	RoleActiveRight,
	RoleBufferLeft,
	RoleBufferRight,
	RoleTransitionFront,
	RoleTransitionBack,
}

func (r SlotRole) String() string {
	switch r {
	case RoleActiveLeft:
		return "active-left"
	case RoleActiveRight:
		return "active-right"
	case RoleBufferLeft:
		return "buffer-left"
	case RoleBufferRight:
		return "buffer-right"
	case RoleTransitionFront:
		return "transition-front"
	case RoleTransitionBack:
		return "transition-back"
	default:
		return "unknown"
	}
}

// Slot is an opaque viewport handle. The engine only replaces its contents
// and reads its size.
type Slot interface {
	Replace(s Surface)
	Clear()
	Size() (width, height int)
}
