// Package animate drives the timed visual sequences of the book: the
// three-phase page flip, the cover open and close sequences, and the eased
// angle interpolation used to resolve drag gestures.
package animate

import (
	"time"

	"github.com/mmcdole/leaf/internal/domain"
)

// Timing names looked up through domain.Timings
const (
	KeyLift          = "lift"
	KeyRotate        = "rotate"
	KeyDrop          = "drop"
	KeyCover         = "cover"
	KeyWrap          = "wrap"
	KeySwapDelayNext = "swap_delay_next"
	KeySwapDelayPrev = "swap_delay_prev"
	KeySafetyMargin  = "safety_margin"
)

// Defaults apply to every timing the configuration leaves unset
var Defaults = map[string]time.Duration{
	KeyLift:          120 * time.Millisecond,
	KeyRotate:        450 * time.Millisecond,
	KeyDrop:          120 * time.Millisecond,
	KeyCover:         600 * time.Millisecond,
	KeyWrap:          300 * time.Millisecond,
	KeySwapDelayNext: 220 * time.Millisecond,
	KeySwapDelayPrev: 180 * time.Millisecond,
	KeySafetyMargin:  50 * time.Millisecond,
}

// Durations is a snapshot of every timing, taken when an operation starts
type Durations struct {
	Lift          time.Duration
	Rotate        time.Duration
	Drop          time.Duration
	Cover         time.Duration
	Wrap          time.Duration
	SwapDelayNext time.Duration
	SwapDelayPrev time.Duration
	SafetyMargin  time.Duration
}

// SwapDelay returns the midpoint delay for a flip direction
func (d Durations) SwapDelay(dir domain.Direction) time.Duration {
	if dir == domain.Prev {
		return d.SwapDelayPrev
	}
	return d.SwapDelayNext
}

// ReadDurations looks every timing up once. A nil source yields the defaults.
func ReadDurations(t domain.Timings) Durations {
	get := func(key string) time.Duration {
		if t != nil {
			if d, ok := t.Duration(key); ok && d >= 0 {
				return d
			}
		}
		return Defaults[key]
	}
	return Durations{
		Lift:          get(KeyLift),
		Rotate:        get(KeyRotate),
		Drop:          get(KeyDrop),
		Cover:         get(KeyCover),
		Wrap:          get(KeyWrap),
		SwapDelayNext: get(KeySwapDelayNext),
		SwapDelayPrev: get(KeySwapDelayPrev),
		SafetyMargin:  get(KeySafetyMargin),
	}
}
