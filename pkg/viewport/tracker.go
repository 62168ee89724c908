package viewport

import (
	"math"
	"sync"
	"sync/atomic"
)

// Size is an on-screen size in whole pixels
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Zero reports whether the size has no area yet (element not laid out)
func (s Size) Zero() bool { return s.Width <= 0 || s.Height <= 0 }

// Entry is one resize observation: the element's content box in pixels
type Entry struct {
	Width  float64
	Height float64
}

// Element is something whose rendered size can be observed.
// Observe registers fn for resize entries and returns a function that stops
// the observation.
type Element interface {
	Observe(fn func([]Entry)) (cancel func())
}

// ScaleState is the size bookkeeping of one observed element
type ScaleState struct {
	Current  Size
	Previous Size
	measured bool
}

// Measured reports whether at least one size was observed
func (s *ScaleState) Measured() bool { return s.measured }

// update stores next and reports whether it differs from the stored size
func (s *ScaleState) update(next Size) bool {
	if s.measured && s.Current == next {
		return false
	}
	s.Previous = s.Current
	s.Current = next
	s.measured = true
	return true
}

// Subscribe observes el and calls onSizeChange with the rounded size
// whenever it changes. The first observation is always delivered, even
// when it is zero. A nil element is a valid idle state: nothing is observed
// and the returned unsubscribe is a no-op. Unsubscribe may be called more
// than once, also from another goroutine than the one delivering resizes;
// deliveries are serialized and none starts once it has returned.
func Subscribe(el Element, onSizeChange func(Size)) (unsubscribe func()) {
	if el == nil || onSizeChange == nil {
		return func() {}
	}

	var (
		mu     sync.Mutex
		state  ScaleState
		active atomic.Bool
	)
	active.Store(true)
	cancel := el.Observe(func(entries []Entry) {
		if len(entries) == 0 {
			return
		}
		entry := entries[0]
		next := Size{
			Width:  int(math.Round(entry.Width)),
			Height: int(math.Round(entry.Height)),
		}

		mu.Lock()
		defer mu.Unlock()
		if active.Load() && state.update(next) {
			onSizeChange(next)
		}
	})

	return func() {
		if !active.CompareAndSwap(true, false) {
			return
		}
		if cancel != nil {
			cancel()
		}
	}
}
