// Package bfm implements the generic breadth-first mapper: the
// workhorse flood-fill traversal shared by the vertex-space and
// group-space connectivity trackers.
//
// A Mapper is single-use and single-threaded. Callers drive it one
// step at a time with Advance; nothing inside the package spawns a
// goroutine or touches a lock, matching the single-threaded,
// cooperative scheduling model the trackers rely on.
package bfm

import "fmt"

// Successor computes the current neighbours of (v, h). It must be a
// pure function of graph state for the duration of one Mapper run.
type Successor[V any, H comparable] func(v V, h H) (map[H]V, error)

// Callbacks are the optional hooks a Mapper run may recognise. A nil
// field behaves as a no-op; callers only set the ones they need.
type Callbacks[V any, H comparable] struct {
	// TestVertex runs on a popped frontier before it is expanded or
	// visited. Returning false discards the vertex silently.
	TestVertex func(v V, h H) bool
	// Visitor runs exactly once per vertex, when it transitions
	// popped -> visited.
	Visitor func(v V, h H)
	// MarkFrontier runs when a vertex first enters the pending set.
	MarkFrontier func(v V, h H)
	// Finished runs exactly once when the run terminates. remainder
	// enumerates frontiers left behind; it is only non-empty when the
	// run terminated because of a vertex limit.
	Finished func(remainder *Remainder[V, H])
	// Debugger receives free-form diagnostic trace lines.
	Debugger func(msg string)
}

// Options configures a Mapper run.
type Options struct {
	// VertexLimit caps the number of vertices visited. nil means
	// unset (no cap). Frontiers still queued when the limit is hit
	// remain in the queue and are exposed through Finished's
	// remainder.
	VertexLimit *int
}

type seed[V any, H comparable] struct {
	v V
	h H
}

// Mapper runs one breadth-first flood over an abstract graph.
type Mapper[V any, H comparable] struct {
	queue   []seed[V, H]
	pending map[H]bool
	visited map[H]V

	finished     bool
	visitedCount int
	discarded    int

	successor Successor[V, H]
	callbacks Callbacks[V, H]
	opts      Options
}

// New constructs a Mapper. When hasInitial is false the queue starts
// empty and the first Advance call terminates the run immediately.
func New[V any, H comparable](initial V, initialHash H, hasInitial bool, successor Successor[V, H], callbacks Callbacks[V, H], opts Options) *Mapper[V, H] {
	if successor == nil {
		panic("bfm: successor must not be nil")
	}
	m := &Mapper[V, H]{
		pending:   map[H]bool{},
		visited:   map[H]V{},
		successor: successor,
		callbacks: callbacks,
		opts:      opts,
	}
	if hasInitial {
		m.queue = append(m.queue, seed[V, H]{v: initial, h: initialHash})
		m.pending[initialHash] = true
		m.debugf("seed %v", initialHash)
		m.markFrontier(initial, initialHash)
	}
	return m
}

func (m *Mapper[V, H]) debugf(format string, args ...any) {
	if m.callbacks.Debugger != nil {
		m.callbacks.Debugger(fmt.Sprintf(format, args...))
	}
}

func (m *Mapper[V, H]) markFrontier(v V, h H) {
	if m.callbacks.MarkFrontier != nil {
		m.callbacks.MarkFrontier(v, h)
	}
}

// Advance performs a single BFM step per the §4.4 contract. It
// returns false once the run has finished (vertex limit reached,
// queue drained, or already finished on a prior call).
func (m *Mapper[V, H]) Advance() bool {
	if m.finished {
		return false
	}

	if m.opts.VertexLimit != nil && m.visitedCount >= *m.opts.VertexLimit {
		m.terminate()
		return false
	}

	if len(m.queue) == 0 {
		m.terminate()
		return false
	}

	next := m.queue[0]
	m.queue = m.queue[1:]
	delete(m.pending, next.h)

	if m.callbacks.TestVertex != nil && !m.callbacks.TestVertex(next.v, next.h) {
		m.discarded++
		m.debugf("discard %v", next.h)
		return true
	}

	succs, err := m.successor(next.v, next.h)
	if err != nil {
		m.debugf("successor error at %v: %v", next.h, err)
	}
	for h, v := range succs {
		if _, ok := m.visited[h]; ok {
			continue
		}
		if m.pending[h] {
			continue
		}
		m.queue = append(m.queue, seed[V, H]{v: v, h: h})
		m.pending[h] = true
		m.markFrontier(v, h)
	}

	if m.callbacks.Visitor != nil {
		m.callbacks.Visitor(next.v, next.h)
	}
	m.visited[next.h] = next.v
	m.visitedCount++
	return true
}

// Run drives Advance to completion. It is a convenience for callers
// that have no reason to interleave other work between steps.
func (m *Mapper[V, H]) Run() {
	for m.Advance() {
	}
}

func (m *Mapper[V, H]) terminate() {
	m.finished = true
	if m.callbacks.Finished != nil {
		m.callbacks.Finished(&Remainder[V, H]{items: m.queue})
	}
}

// Finished reports whether the run has terminated.
func (m *Mapper[V, H]) Finished() bool { return m.finished }

// VisitedCount reports how many vertices have transitioned to
// visited so far.
func (m *Mapper[V, H]) VisitedCount() int { return m.visitedCount }

// DiscardedCount reports how many popped frontiers were rejected by
// TestVertex.
func (m *Mapper[V, H]) DiscardedCount() int { return m.discarded }

// GetVisited returns the visited map once the run has finished, and
// nil otherwise. The returned map is owned by the Mapper; callers
// must not mutate it.
func (m *Mapper[V, H]) GetVisited() map[H]V {
	if !m.finished {
		return nil
	}
	return m.visited
}

// Remainder is a single-pass, finite iterator over the frontiers left
// in the queue when a run terminates early because of a vertex
// limit. It borrows from the Mapper's state at termination time; it
// must not be used after the Mapper that produced it is discarded.
type Remainder[V any, H comparable] struct {
	items []seed[V, H]
	pos   int
}

// Next returns the next remaining frontier, or ok=false when
// exhausted.
func (r *Remainder[V, H]) Next() (v V, h H, ok bool) {
	if r == nil || r.pos >= len(r.items) {
		return v, h, false
	}
	item := r.items[r.pos]
	r.pos++
	return item.v, item.h, true
}

// Len reports the number of frontiers remaining in the iterator, not
// counting ones already consumed by Next.
func (r *Remainder[V, H]) Len() int {
	if r == nil {
		return 0
	}
	return len(r.items) - r.pos
}
