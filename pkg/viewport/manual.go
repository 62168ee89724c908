package viewport

import "sync"

// ManualElement is an Element whose resizes are triggered by the caller.
// It stands in for a platform resize observer where none exists.
type ManualElement struct {
	mu        sync.Mutex
	observers map[int]func([]Entry)
	nextID    int
	removed   bool
}

// NewManualElement creates an element with no observers
func NewManualElement() *ManualElement {
	return &ManualElement{observers: make(map[int]func([]Entry))}
}

// Observe registers fn. Observing a removed element does nothing.
func (e *ManualElement) Observe(fn func([]Entry)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return func() {}
	}
	id := e.nextID
	e.nextID++
	e.observers[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.observers, id)
	}
}

// Resize delivers a new content size to every observer
func (e *ManualElement) Resize(width, height float64) {
	e.mu.Lock()
	fns := make([]func([]Entry), 0, len(e.observers))
	for _, fn := range e.observers {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	entries := []Entry{{Width: width, Height: height}}
	for _, fn := range fns {
		fn(entries)
	}
}

// Remove takes the element out of display and detaches all observers
func (e *ManualElement) Remove() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removed = true
	clear(e.observers)
}

// Observers returns the number of attached observers
func (e *ManualElement) Observers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.observers)
}
