// Package oneshot tracks "already fired" markers so that repeated evaluation of
// the same condition emits an event once.
package oneshot

import "sync"

// Key names a condition of one entity.
type Key struct {
	Entity string
	Kind   string
}

// Edge is the transition observed by Edges.Observe.
type Edge int

const (
	Steady Edge = iota
	Rising
	Falling
)

// Edges is an edge detector: a marker is set on false->true and cleared on
// true->false, so only transitions are reported. An unseen key starts false.
type Edges struct {
	mu    sync.Mutex
	level map[Key]bool
}

// NewEdges returns an empty detector.
func NewEdges() *Edges {
	return &Edges{level: make(map[Key]bool)}
}

// Observe records the current level of key and returns the transition.
func (e *Edges) Observe(key Key, level bool) Edge {
	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.level[key]
	if level {
		e.level[key] = true
	} else {
		delete(e.level, key)
	}
	switch {
	case level && !prev:
		return Rising
	case !level && prev:
		return Falling
	default:
		return Steady
	}
}

// Forget drops every marker of entity.
func (e *Edges) Forget(entity string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k := range e.level {
		if k.Entity == entity {
			delete(e.level, k)
		}
	}
}

// Latch remembers pairs that have fired and never lets them fire again.
type Latch struct {
	mu    sync.Mutex
	fired map[Key]struct{}
}

// NewLatch returns an empty latch.
func NewLatch() *Latch {
	return &Latch{fired: make(map[Key]struct{})}
}

// Fire sets the marker for key and reports whether it was unset before.
func (l *Latch) Fire(key Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.fired[key]; ok {
		return false
	}
	l.fired[key] = struct{}{}
	return true
}

// Fired reports whether key has fired.
func (l *Latch) Fired(key Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.fired[key]
	return ok
}

// Forget drops every marker of entity and returns how many were dropped.
func (l *Latch) Forget(entity string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for k := range l.fired {
		if k.Entity == entity {
			delete(l.fired, k)
			n++
		}
	}
	return n
}
