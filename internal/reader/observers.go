package reader

// observers is a list of plain callbacks notified synchronously in
// subscription order
type observers[T any] struct {
	subs []*observer[T]
}

type observer[T any] struct {
	fn     func(T)
	active bool
}

func (o *observers[T]) add(fn func(T)) func() {
	sub := &observer[T]{fn: fn, active: true}
	o.subs = append(o.subs, sub)
	return func() {
		if !sub.active {
			return
		}
		sub.active = false
		for i, s := range o.subs {
			if s == sub {
				o.subs = append(o.subs[:i:i], o.subs[i+1:]...)
				break
			}
		}
	}
}

func (o *observers[T]) notify(v T) {
	subs := make([]*observer[T], len(o.subs))
	copy(subs, o.subs)
	for _, sub := range subs {
		if sub.active {
			sub.fn(v)
		}
	}
}
