// Package lifecycle serializes book lifecycle transitions behind guarded
// state changes. It knows nothing about rendering.
package lifecycle

// State is the book lifecycle state
type State int

const (
	Closed State = iota
	Opening
	Opened
	Flipping
	Closing
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Opening:
		return "opening"
	case Opened:
		return "opened"
	case Flipping:
		return "flipping"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Event names a lifecycle transition
type Event int

const (
	EventOpen Event = iota
	EventOpened
	EventClose
	EventClosed
	EventFlip
	EventSettle
	EventFailure
)

type edge struct {
	from  State
	event Event
}

// transitions is the complete table; anything absent is rejected
var transitions = map[edge]State{
	{Closed, EventOpen}:     Opening,
	{Opening, EventOpened}:  Opened,
	{Opening, EventFailure}: Closed,
	{Opened, EventClose}:    Closing,
	{Opened, EventFlip}:     Flipping,
	{Flipping, EventSettle}: Opened,
	{Closing, EventClosed}:  Closed,
	{Closing, EventFailure}: Opened,
}

// Observer is called after every state change with the old and new state
type Observer func(from, to State)

// Machine holds the single lifecycle state. It is confined to the scheduler
// loop: a check of IsBusy followed by a transition cannot interleave with
// another caller.
type Machine struct {
	state     State
	observers []*subscription
}

type subscription struct {
	fn     Observer
	active bool
}

// New creates a machine in the Closed state
func New() *Machine {
	return &Machine{state: Closed}
}

// State returns the current state
func (m *Machine) State() State {
	return m.state
}

// IsBusy reports whether a transition is in flight
func (m *Machine) IsBusy() bool {
	switch m.state {
	case Opening, Closing, Flipping:
		return true
	default:
		return false
	}
}

// IsOpened reports whether the book is open and idle
func (m *Machine) IsOpened() bool {
	return m.state == Opened
}

// CanTransition reports whether moving to next is allowed from the current state
func (m *Machine) CanTransition(next State) bool {
	for e, to := range transitions {
		if e.from == m.state && to == next {
			return true
		}
	}
	return false
}

// TransitionTo moves to next if the table allows it from the current state.
// A disallowed transition changes nothing and returns false.
func (m *Machine) TransitionTo(next State) bool {
	if !m.CanTransition(next) {
		return false
	}
	m.set(next)
	return true
}

// Fire applies event to the current state. It returns false, changing
// nothing, if the event is not valid here.
func (m *Machine) Fire(event Event) bool {
	next, ok := transitions[edge{m.state, event}]
	if !ok {
		return false
	}
	m.set(next)
	return true
}

// Reset forces the machine into state, bypassing the guards. Only error
// recovery should need it.
func (m *Machine) Reset(state State) {
	if m.state == state {
		return
	}
	m.set(state)
}

// Subscribe registers fn for state changes. Observers run synchronously in
// subscription order. The returned function unsubscribes and may be called
// any number of times.
func (m *Machine) Subscribe(fn Observer) (unsubscribe func()) {
	sub := &subscription{fn: fn, active: true}
	m.observers = append(m.observers, sub)
	return func() {
		if !sub.active {
			return
		}
		sub.active = false
		for i, s := range m.observers {
			if s == sub {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				break
			}
		}
	}
}

func (m *Machine) set(next State) {
	prev := m.state
	m.state = next

	observers := make([]*subscription, len(m.observers))
	copy(observers, m.observers)
	for _, sub := range observers {
		if sub.active {
			sub.fn(prev, next)
		}
	}
}
