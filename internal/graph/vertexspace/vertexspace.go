// Package vertexspace implements the unbounded connectivity tracker
// of spec §4.5: a partition of tracked vertices into maximal
// connected components ("graphs"), maintained incrementally as
// vertices are added and removed.
package vertexspace

import (
	"fmt"

	"voxelgraph/internal/graph/bfm"
)

// GraphID identifies a graph. The zero value never names a real
// graph.
type GraphID int64

// Graph is a maximal connected component: a set of tracked vertices,
// keyed by hash.
type Graph[V any, H comparable] struct {
	ID       GraphID
	Vertices map[H]V
}

// Options configures a VertexSpace. The zero value imposes no limit.
type Options struct {
	// VertexLimit caps the number of vertices a single flood (merge or
	// split) may visit, mirroring bfm.Options.VertexLimit. nil means
	// unset.
	VertexLimit *int
}

// VertexSpace tracks a partition of vertices into graphs. V and H are
// the vertex and hash types of whatever abstract graph the caller's
// successor function describes; the voxel package instantiates this
// with voxel.Vertex and voxel.Hash.
type VertexSpace[V any, H comparable] struct {
	maptograph map[H]GraphID
	graphs     map[GraphID]*Graph[V, H]
	nextID     GraphID

	successor bfm.Successor[V, H]
	callbacks Callbacks[V, H]
	opts      Options
}

// New constructs an empty VertexSpace.
func New[V any, H comparable](successor bfm.Successor[V, H], callbacks Callbacks[V, H], opts Options) *VertexSpace[V, H] {
	if successor == nil {
		panic("vertexspace: successor must not be nil")
	}
	return &VertexSpace[V, H]{
		maptograph: map[H]GraphID{},
		graphs:     map[GraphID]*Graph[V, H]{},
		nextID:     1,
		successor:  successor,
		callbacks:  callbacks,
		opts:       opts,
	}
}

func (vs *VertexSpace[V, H]) allocID() GraphID {
	id := vs.nextID
	vs.nextID++
	return id
}

// WhichGraph reports the graph a tracked hash belongs to.
func (vs *VertexSpace[V, H]) WhichGraph(h H) (GraphID, bool) {
	id, ok := vs.maptograph[h]
	return id, ok
}

// GraphOf returns the member vertices of a graph, or nil if id does
// not name a live graph.
func (vs *VertexSpace[V, H]) GraphOf(id GraphID) []V {
	g, ok := vs.graphs[id]
	if !ok {
		return nil
	}
	out := make([]V, 0, len(g.Vertices))
	for _, v := range g.Vertices {
		out = append(out, v)
	}
	return out
}

// GraphCount reports how many live graphs exist. Exposed for tests
// and diagnostics.
func (vs *VertexSpace[V, H]) GraphCount() int { return len(vs.graphs) }

// AddVertex inserts v (hash h) if untracked. Returns false if v was
// already tracked (idempotent).
func (vs *VertexSpace[V, H]) AddVertex(v V, h H) bool {
	if _, ok := vs.maptograph[h]; ok {
		return false
	}
	vs.enter("addvertex")
	defer vs.exit("addvertex")

	succs, err := vs.successor(v, h)
	if err != nil {
		panic(fmt.Sprintf("vertexspace: successor(%v) failed: %v", h, err))
	}

	if homeID, ok := vs.singleHomeGraph(succs); ok {
		g := vs.graphs[homeID]
		g.Vertices[h] = v
		vs.maptograph[h] = homeID
		vs.fireGraphAppend(g, v, h)
		return true
	}

	vs.floodMergeInto(v, h)
	return true
}

// singleHomeGraph reports the one existing graph id every successor
// belongs to, provided there is at least one successor, all of them
// are tracked, and they all agree. A single untracked successor rules
// the fast path out. This is the §4.5 optimisation path.
func (vs *VertexSpace[V, H]) singleHomeGraph(succs map[H]V) (GraphID, bool) {
	var home GraphID
	seenAny := false
	for sh := range succs {
		gid, ok := vs.maptograph[sh]
		if !ok {
			return 0, false
		}
		if !seenAny {
			home, seenAny = gid, true
			continue
		}
		if gid != home {
			return 0, false
		}
	}
	return home, seenAny
}

// floodMergeInto runs the §4.5 general path: flood from v, consuming
// (destroying) every existing graph the flood touches and assigning
// the whole visited set to a freshly allocated graph.
func (vs *VertexSpace[V, H]) floodMergeInto(v V, h H) {
	newID := vs.allocID()
	consumed := map[GraphID]bool{}

	mapper := bfm.New(v, h, true, vs.successor, bfm.Callbacks[V, H]{
		Visitor: func(vv V, hh H) {
			if oldID, ok := vs.maptograph[hh]; ok && oldID != newID {
				if !consumed[oldID] {
					consumed[oldID] = true
					if old := vs.graphs[oldID]; old != nil {
						vs.fireGraphDeletePre(old)
					}
					delete(vs.graphs, oldID)
				}
			}
			vs.maptograph[hh] = newID
		},
		Debugger: vs.callbacks.Debugger,
	}, bfm.Options{VertexLimit: vs.opts.VertexLimit})
	mapper.Run()

	for oldID := range consumed {
		vs.fireGraphDeletePost(oldID)
	}

	g := &Graph[V, H]{ID: newID, Vertices: mapper.GetVisited()}
	vs.graphs[newID] = g
	if len(consumed) == 0 {
		vs.fireGraphNew(g)
	} else {
		vs.fireGraphAssign(g)
	}
}

// RemoveVertex removes a tracked vertex. priorSuccessors must be the
// vertex's successor set computed before the removal (the caller may
// already have unlinked v in the underlying world by the time this
// is called). Returns false if h was not tracked.
func (vs *VertexSpace[V, H]) RemoveVertex(h H, priorSuccessors map[H]V) bool {
	oldID, ok := vs.maptograph[h]
	if !ok {
		return false
	}
	vs.enter("removevertex")
	defer vs.exit("removevertex")

	g := vs.graphs[oldID]
	delete(vs.maptograph, h)
	delete(g.Vertices, h)
	vs.fireGraphRemoveSingle(g, h)

	if len(g.Vertices) == 0 {
		vs.fireGraphDeletePre(g)
		delete(vs.graphs, oldID)
		vs.fireGraphDeletePost(oldID)
		return true
	}

	outstanding := map[H]V{}
	for sh, sv := range priorSuccessors {
		gid, tracked := vs.maptograph[sh]
		if !tracked {
			continue
		}
		if gid != oldID {
			vs.warn(fmt.Sprintf("removevertex: foreign graph %v encountered for successor %v of removed vertex %v", gid, sh, h))
			continue
		}
		outstanding[sh] = sv
	}
	if len(outstanding) == 0 {
		return true
	}

	seedH, seedV := takeOne(outstanding)
	visited := vs.floodWithinGraph(seedV, seedH, h, outstanding)
	if len(outstanding) == 0 {
		// Still connected: the flood reached every other prior
		// successor without needing a new graph.
		_ = visited
		return true
	}

	// Split: the old graph no longer describes a connected component.
	vs.fireGraphDeletePre(g)
	delete(vs.graphs, oldID)
	vs.fireGraphDeletePost(oldID)

	vs.materializeGraph(visited)

	for len(outstanding) > 0 {
		sh, sv := takeOne(outstanding)
		next := vs.floodWithinGraph(sv, sh, h, outstanding)
		vs.materializeGraph(next)
	}
	return true
}

// floodWithinGraph runs a flood from (seedV, seedH), never revisiting
// the just-removed hash, clearing every reached hash from outstanding
// as it goes, and returns the visited set.
func (vs *VertexSpace[V, H]) floodWithinGraph(seedV V, seedH H, removed H, outstanding map[H]V) map[H]V {
	mapper := bfm.New(seedV, seedH, true, vs.successor, bfm.Callbacks[V, H]{
		TestVertex: func(_ V, hh H) bool { return hh != removed },
		Visitor:    func(_ V, hh H) { delete(outstanding, hh) },
		Debugger:   vs.callbacks.Debugger,
	}, bfm.Options{VertexLimit: vs.opts.VertexLimit})
	mapper.Run()
	return mapper.GetVisited()
}

func (vs *VertexSpace[V, H]) materializeGraph(visited map[H]V) {
	id := vs.allocID()
	for h := range visited {
		vs.maptograph[h] = id
	}
	g := &Graph[V, H]{ID: id, Vertices: visited}
	vs.graphs[id] = g
	vs.fireGraphAssign(g)
}

func takeOne[H comparable, V any](m map[H]V) (H, V) {
	for h, v := range m {
		return h, v
	}
	var zeroH H
	var zeroV V
	return zeroH, zeroV
}
