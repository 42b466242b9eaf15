package groupspace

import (
	"fmt"

	"voxelgraph/internal/graph/bfm"
)

// Group is a connected component bounded by size L.
type Group[V any, H comparable] struct {
	ID       GroupID
	Vertices map[H]V
}

// GroupSpace tracks a partition of vertices into size-bounded groups,
// plus the RopeGraph describing connectivity between them (spec
// §4.7).
type GroupSpace[V any, H comparable] struct {
	rope       *RopeGraph[H]
	maptogroup map[H]GroupID
	groups     map[GroupID]*Group[V, H]
	nextID     GroupID
	limit      int

	successor  bfm.Successor[V, H]
	testvertex func(V, H) bool
	callbacks  Callbacks[V, H]
}

// Config carries the construction options of §6: grouplimit,
// successor, testvertex, callbacks.
type Config[V any, H comparable] struct {
	GroupLimit int
	Successor  bfm.Successor[V, H]
	TestVertex func(V, H) bool
	Callbacks  Callbacks[V, H]
}

// New constructs an empty GroupSpace.
func New[V any, H comparable](cfg Config[V, H]) *GroupSpace[V, H] {
	if cfg.Successor == nil {
		panic("groupspace: Config.Successor must not be nil")
	}
	if cfg.GroupLimit <= 0 {
		panic("groupspace: Config.GroupLimit must be positive")
	}
	return &GroupSpace[V, H]{
		rope:       NewRopeGraph[H](),
		maptogroup: map[H]GroupID{},
		groups:     map[GroupID]*Group[V, H]{},
		nextID:     1,
		limit:      cfg.GroupLimit,
		successor:  cfg.Successor,
		testvertex: cfg.TestVertex,
		callbacks:  cfg.Callbacks,
	}
}

func (gs *GroupSpace[V, H]) allocID() GroupID {
	id := gs.nextID
	gs.nextID++
	return id
}

// WhichGroup reports the group a tracked hash belongs to.
func (gs *GroupSpace[V, H]) WhichGroup(h H) (GroupID, bool) {
	id, ok := gs.maptogroup[h]
	return id, ok
}

// GroupOf returns the member vertices of a group, or nil if id does
// not name a live group.
func (gs *GroupSpace[V, H]) GroupOf(id GroupID) []V {
	g, ok := gs.groups[id]
	if !ok {
		return nil
	}
	out := make([]V, 0, len(g.Vertices))
	for _, v := range g.Vertices {
		out = append(out, v)
	}
	return out
}

// GroupCount reports how many live groups exist.
func (gs *GroupSpace[V, H]) GroupCount() int { return len(gs.groups) }

// RopeSuccessor returns the groups adjacent to groupID in the rope
// graph.
func (gs *GroupSpace[V, H]) RopeSuccessor(groupID GroupID) []GroupID {
	return gs.rope.Successor(groupID)
}

// RopeCount reports the refcount of the rope between a and b.
func (gs *GroupSpace[V, H]) RopeCount(a, b GroupID) int {
	return gs.rope.RopeCount(a, b)
}

func (gs *GroupSpace[V, H]) runSuccessor(v V, h H) map[H]V {
	succs, err := gs.successor(v, h)
	if err != nil {
		panic(fmt.Sprintf("groupspace: successor(%v) failed: %v", h, err))
	}
	return succs
}

// AddVertex inserts an untracked vertex (spec §4.7 "add"). Returns
// false if v was already tracked.
func (gs *GroupSpace[V, H]) AddVertex(v V, h H) bool {
	if _, ok := gs.maptogroup[h]; ok {
		return false
	}
	gs.enter("add")
	defer gs.exit("add")

	succs := gs.runSuccessor(v, h)

	home := GroupID(0)
	touching := map[H]GroupID{}
	for sh, sv := range succs {
		gid, tracked := gs.maptogroup[sh]
		if !tracked {
			gs.warn(fmt.Sprintf("add: untracked successor %v of %v ignored for placement", sh, h))
			continue
		}
		_ = sv
		touching[sh] = gid
		if home == 0 {
			if g := gs.groups[gid]; g != nil && len(g.Vertices) < gs.limit {
				home = gid
			}
		}
	}

	var g *Group[V, H]
	if home == 0 {
		home = gs.allocID()
		g = &Group[V, H]{ID: home, Vertices: map[H]V{}}
		gs.groups[home] = g
		gs.fireGroupNew(g)
	} else {
		g = gs.groups[home]
	}
	g.Vertices[h] = v
	gs.maptogroup[h] = home
	gs.fireGroupAppend(g, v, h)

	gs.rope.Update(h, home, touching)
	return true
}

// Update is the tracked-or-mutation notification of spec §4.7: when h
// is untracked and still alive it delegates to AddVertex; when
// untracked and no longer alive it is a no-op; when tracked it always
// runs repair, regardless of liveness (repair is purely structural).
func (gs *GroupSpace[V, H]) Update(v V, h H) {
	gid, tracked := gs.maptogroup[h]
	if !tracked {
		alive := true
		if gs.testvertex != nil {
			alive = gs.testvertex(v, h)
		}
		if !alive {
			return
		}
		gs.AddVertex(v, h)
		return
	}
	gs.enter("update")
	defer gs.exit("update")
	gs.repair(gid)
}

// RemoveVertex removes a tracked vertex entirely (the rope-graph side
// of the removal is Update with empty successor maps, per §4.6).
// Returns false if h was not tracked.
func (gs *GroupSpace[V, H]) RemoveVertex(h H) bool {
	gid, ok := gs.maptogroup[h]
	if !ok {
		return false
	}
	gs.enter("removevertex")
	defer gs.exit("removevertex")

	g := gs.groups[gid]
	delete(gs.maptogroup, h)
	delete(g.Vertices, h)
	gs.fireGroupRemoveSingle(g, h)
	gs.rope.Update(h, 0, nil)

	if len(g.Vertices) == 0 {
		gs.fireGroupDeletePre(g)
		delete(gs.groups, gid)
		gs.fireGroupDeletePost(gid)
		return true
	}

	gs.repair(gid)
	return true
}

// repair implements §4.7's split-detection-and-rebuild. It returns
// true if g was destroyed and replaced by one or more new groups.
func (gs *GroupSpace[V, H]) repair(gid GroupID) bool {
	g, ok := gs.groups[gid]
	if !ok || len(g.Vertices) == 0 {
		gs.warn(fmt.Sprintf("repair: group %v is empty or missing", gid))
		return false
	}

	origMembers := make(map[H]bool, len(g.Vertices))
	allVerts := make(map[H]V, len(g.Vertices))
	for h, v := range g.Vertices {
		origMembers[h] = true
		allVerts[h] = v
	}

	outstanding := make(map[H]V, len(allVerts))
	for h, v := range allVerts {
		outstanding[h] = v
	}

	seedH, seedV := takeOne(allVerts)
	foundSet, remLen := gs.boundedFlood(seedV, seedH, func(h H) bool { return origMembers[h] }, outstanding)
	if remLen > 0 {
		gs.warn(fmt.Sprintf("repair: frontier remainder after bounded search on group %v (size must fit within the group limit)", gid))
	}

	if len(outstanding) == 0 {
		return false
	}

	gs.fireGroupDeletePre(g)
	delete(gs.groups, gid)
	gs.fireGroupDeletePost(gid)
	for h := range allVerts {
		delete(gs.maptogroup, h)
	}
	for h := range allVerts {
		gs.rope.Update(h, 0, nil)
	}

	gs.materializeGroup(foundSet)

	for len(outstanding) > 0 {
		sh, sv := takeOne(outstanding)
		keep := func(h H) bool {
			_, tracked := gs.maptogroup[h]
			return origMembers[h] && !tracked
		}
		next, nRem := gs.boundedFlood(sv, sh, keep, outstanding)
		if nRem > 0 {
			gs.warn(fmt.Sprintf("repair: frontier remainder after bounded search rebuilding group %v", gid))
		}
		if len(next) > 0 {
			gs.materializeGroup(next)
		} else {
			delete(outstanding, sh)
		}
	}
	return true
}

// boundedFlood runs a single vertex-limited BFM from (seedV, seedH),
// restricted to hashes keep accepts, removing every visited hash from
// outstanding. It returns the visited set and the length of the
// remainder (non-zero only if the flood hit the group limit).
func (gs *GroupSpace[V, H]) boundedFlood(seedV V, seedH H, keep func(H) bool, outstanding map[H]V) (map[H]V, int) {
	limit := gs.limit
	var remLen int
	mapper := bfm.New(seedV, seedH, true, func(v V, h H) (map[H]V, error) {
		raw := gs.runSuccessor(v, h)
		out := map[H]V{}
		for sh, sv := range raw {
			if keep(sh) {
				out[sh] = sv
			}
		}
		return out, nil
	}, bfm.Callbacks[V, H]{
		Visitor:  func(_ V, h H) { delete(outstanding, h) },
		Finished: func(r *bfm.Remainder[V, H]) { remLen = r.Len() },
		Debugger: gs.callbacks.Debugger,
	}, bfm.Options{VertexLimit: &limit})
	mapper.Run()
	return mapper.GetVisited(), remLen
}

// materializeGroup registers members in maptogroup first and only
// then invokes ropegraph.Update for each, per §4.7's group-creation
// helper requirement.
func (gs *GroupSpace[V, H]) materializeGroup(members map[H]V) *Group[V, H] {
	id := gs.allocID()
	for h := range members {
		gs.maptogroup[h] = id
	}
	g := &Group[V, H]{ID: id, Vertices: members}
	gs.groups[id] = g
	gs.fireGroupAssign(g)

	for h, v := range members {
		raw := gs.runSuccessor(v, h)
		sgroups := map[H]GroupID{}
		for sh := range raw {
			if sgid, tracked := gs.maptogroup[sh]; tracked {
				sgroups[sh] = sgid
			}
		}
		gs.rope.Update(h, id, sgroups)
	}
	return g
}

func takeOne[H comparable, V any](m map[H]V) (H, V) {
	for h, v := range m {
		return h, v
	}
	var zeroH H
	var zeroV V
	return zeroH, zeroV
}
