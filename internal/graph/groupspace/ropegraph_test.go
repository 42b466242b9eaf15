package groupspace

import "testing"

// TestRopeGraphBasics exercises the walkthrough of spec §8 (S1): a
// rope's refcount tracks the number of edges carrying it, and the
// rope is destroyed (and the groups disconnected) only once that
// count reaches zero.
func TestRopeGraphBasics(t *testing.T) {
	rg := NewRopeGraph[string]()

	rg.Update("a", 1, map[string]GroupID{"b": 2})
	if got := rg.RopeCount(1, 2); got != 1 {
		t.Fatalf("RopeCount(1,2) = %d, want 1", got)
	}
	if succ := rg.Successor(1); len(succ) != 1 || succ[0] != 2 {
		t.Fatalf("Successor(1) = %v, want [2]", succ)
	}

	rg.Update("c", 1, map[string]GroupID{"b": 2})
	if got := rg.RopeCount(1, 2); got != 2 {
		t.Fatalf("RopeCount(1,2) = %d, want 2 after second edge", got)
	}

	rg.Update("a", 1, nil)
	if got := rg.RopeCount(1, 2); got != 1 {
		t.Fatalf("RopeCount(1,2) = %d, want 1 after removing one edge", got)
	}
	if succ := rg.Successor(1); len(succ) != 1 || succ[0] != 2 {
		t.Fatalf("Successor(1) = %v, want [2] (rope still held by edge c-b)", succ)
	}

	rg.Update("c", 1, nil)
	if got := rg.RopeCount(1, 2); got != 0 {
		t.Fatalf("RopeCount(1,2) = %d, want 0 after removing both edges", got)
	}
	if succ := rg.Successor(1); len(succ) != 0 {
		t.Fatalf("Successor(1) = %v, want [] once the rope is destroyed", succ)
	}

	rg.Update("a", 1, map[string]GroupID{"b": 2, "c": 3})
	if got := rg.RopeCount(1, 2); got != 1 {
		t.Fatalf("RopeCount(1,2) = %d, want 1", got)
	}
	if got := rg.RopeCount(1, 3); got != 1 {
		t.Fatalf("RopeCount(1,3) = %d, want 1", got)
	}

	rg.Update("b", 2, nil)
	if got := rg.RopeCount(1, 2); got != 0 {
		t.Fatalf("RopeCount(1,2) = %d, want 0 after clearing b's edges", got)
	}
	if got := rg.RopeCount(1, 3); got != 1 {
		t.Fatalf("RopeCount(1,3) = %d, want 1, unaffected by b's removal", got)
	}
	succ1 := rg.Successor(1)
	if len(succ1) != 1 || succ1[0] != 3 {
		t.Fatalf("Successor(1) = %v, want [3]", succ1)
	}
	succ3 := rg.Successor(3)
	if len(succ3) != 1 || succ3[0] != 1 {
		t.Fatalf("Successor(3) = %v, want [1]", succ3)
	}
}

func TestRopeGraphRejectsSelfLoops(t *testing.T) {
	rg := NewRopeGraph[string]()
	rg.Update("a", 1, map[string]GroupID{"b": 1})
	if got := rg.RopeCount(1, 1); got != 0 {
		t.Fatalf("RopeCount(1,1) = %d, want 0: same-group pairs must never form a rope", got)
	}
	if succ := rg.Successor(1); len(succ) != 0 {
		t.Fatalf("Successor(1) = %v, want [] for a group with only same-group neighbours", succ)
	}
}

func TestRopeGraphOtherEndpointIsDetachedOnRemoval(t *testing.T) {
	rg := NewRopeGraph[string]()
	rg.Update("a", 1, map[string]GroupID{"b": 2})
	// Removing from the *other* endpoint's side must also clear the
	// edge out of "a"'s vertexmap entry, or a later update on "a"
	// would still see a dangling reference to a dead rope.
	rg.Update("b", 2, nil)
	rg.Update("a", 1, nil)
	if got := rg.RopeCount(1, 2); got != 0 {
		t.Fatalf("RopeCount(1,2) = %d, want 0", got)
	}
}
