package schedule

// Token is a cooperative cancellation signal. A waiter either polls
// Cancelled or registers one callback with OnCancel.
//
// Tokens are confined to the scheduler loop and are not safe for concurrent use.
type Token struct {
	cancelled bool
	onCancel  func()
}

// NewToken returns a live token
func NewToken() *Token {
	return &Token{}
}

// Cancelled reports whether Cancel has been called. A nil token is never cancelled.
func (t *Token) Cancelled() bool {
	return t != nil && t.cancelled
}

// Cancel marks the token stale and runs the registered callback, if any.
// Calling Cancel more than once has no further effect.
func (t *Token) Cancel() {
	if t == nil || t.cancelled {
		return
	}
	t.cancelled = true
	fn := t.onCancel
	t.onCancel = nil
	if fn != nil {
		fn()
	}
}

// OnCancel replaces the token's single callback. If the token is already
// cancelled, fn runs immediately. Passing nil clears the callback.
func (t *Token) OnCancel(fn func()) {
	if t == nil {
		return
	}
	if fn == nil {
		t.onCancel = nil
		return
	}
	if t.cancelled {
		fn()
		return
	}
	t.onCancel = fn
}
