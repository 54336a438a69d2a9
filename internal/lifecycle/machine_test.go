package lifecycle

import (
	"slices"
	"testing"
)

var allStates = []State{Closed, Opening, Opened, Flipping, Closing}

var allowed = map[State][]State{
	Closed:   {Opening},
	Opening:  {Opened, Closed},
	Opened:   {Closing, Flipping},
	Flipping: {Opened},
	Closing:  {Closed, Opened},
}

func machineAt(s State) *Machine {
	m := New()
	m.Reset(s)
	return m
}

func TestTransitionTable(t *testing.T) {
	for _, from := range allStates {
		for _, to := range allStates {
			m := machineAt(from)
			changes := 0
			m.Subscribe(func(State, State) { changes++ })

			ok := m.TransitionTo(to)
			want := slices.Contains(allowed[from], to)

			if ok != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, ok, want)
			}
			if want {
				if m.State() != to || changes != 1 {
					t.Errorf("%s -> %s: state %s after %d notifications", from, to, m.State(), changes)
				}
			} else if m.State() != from || changes != 0 {
				t.Errorf("%s -> %s: rejected transition had side effects", from, to)
			}
		}
	}
}

func TestFireEvents(t *testing.T) {
	tests := []struct {
		from  State
		event Event
		to    State
		ok    bool
	}{
		{Closed, EventOpen, Opening, true},
		{Opening, EventOpened, Opened, true},
		{Opening, EventFailure, Closed, true},
		{Opened, EventClose, Closing, true},
		{Opened, EventFlip, Flipping, true},
		{Flipping, EventSettle, Opened, true},
		{Closing, EventClosed, Closed, true},
		{Closing, EventFailure, Opened, true},
		{Closed, EventFlip, Closed, false},
		{Flipping, EventFlip, Flipping, false},
		{Opened, EventFailure, Opened, false},
	}
	for _, tt := range tests {
		m := machineAt(tt.from)
		if ok := m.Fire(tt.event); ok != tt.ok {
			t.Errorf("%s + event %d: got %v, want %v", tt.from, tt.event, ok, tt.ok)
		}
		if m.State() != tt.to {
			t.Errorf("%s + event %d: state %s, want %s", tt.from, tt.event, m.State(), tt.to)
		}
	}
}

func TestIsBusy(t *testing.T) {
	busy := map[State]bool{Closed: false, Opening: true, Opened: false, Flipping: true, Closing: true}
	for s, want := range busy {
		if got := machineAt(s).IsBusy(); got != want {
			t.Errorf("IsBusy in %s = %v, want %v", s, got, want)
		}
	}
}

func TestResetBypassesGuards(t *testing.T) {
	m := machineAt(Flipping)
	var seen []State
	m.Subscribe(func(_, to State) { seen = append(seen, to) })

	m.Reset(Closed)
	if m.State() != Closed {
		t.Errorf("state = %s, want closed", m.State())
	}
	m.Reset(Closed)
	if !slices.Equal(seen, []State{Closed}) {
		t.Errorf("notifications = %v, want one for the real change", seen)
	}
}

func TestObserversSeeNewStateInOrder(t *testing.T) {
	m := New()
	var order []string
	m.Subscribe(func(from, to State) {
		if m.State() != to {
			t.Errorf("observer saw %s, want %s", m.State(), to)
		}
		order = append(order, "first")
	})
	m.Subscribe(func(from, to State) {
		if from != Closed || to != Opening {
			t.Errorf("observer got %s -> %s", from, to)
		}
		order = append(order, "second")
	})

	m.TransitionTo(Opening)
	if !slices.Equal(order, []string{"first", "second"}) {
		t.Errorf("order = %v", order)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	m := New()
	calls := 0
	unsubA := m.Subscribe(func(State, State) { calls++ })
	m.Subscribe(func(State, State) { calls += 10 })

	unsubA()
	unsubA()
	m.TransitionTo(Opening)

	if calls != 10 {
		t.Errorf("calls = %d, want only the remaining observer", calls)
	}
}

func TestUnsubscribeDuringNotification(t *testing.T) {
	m := New()
	calls := 0
	var unsub func()
	unsub = m.Subscribe(func(State, State) {
		calls++
		unsub()
	})

	m.TransitionTo(Opening)
	m.TransitionTo(Opened)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
