package cache

import (
	"testing"

	"voxelgraph/internal/graph/voxel"
	"voxelgraph/internal/voxeltest"
)

type namedCell string

func (c namedCell) Name() string { return string(c) }

func TestGetServesPinnedSnapshot(t *testing.T) {
	grid := voxeltest.NewMemGrid(4, 1, 1, "air")
	grid.Set(voxel.Pos{X: 0}, "stone")

	s := New(nil)
	wrapped := s.Wrap(grid)

	data, err := wrapped.Get(voxel.Pos{X: 0})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if data.Name() != "stone" {
		t.Fatalf("Get = %q, want stone", data.Name())
	}

	// Mutate the real grid mid-bracket; the cache must keep serving
	// the snapshot it already took, per §4.9's pinned pre-operation
	// read guarantee.
	grid.Set(voxel.Pos{X: 0}, "lava")
	data, err = wrapped.Get(voxel.Pos{X: 0})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if data.Name() != "stone" {
		t.Fatalf("Get after mid-bracket mutation = %q, want stone (pinned snapshot)", data.Name())
	}
}

func TestWritesAreInvisibleUntilFlush(t *testing.T) {
	grid := voxeltest.NewMemGrid(4, 1, 1, "air")
	s := New(nil)
	wrapped := s.Wrap(grid)

	s.WriteNode(grid.ID(), voxel.Pos{X: 1}, namedCell("stone"))

	data, err := wrapped.Get(voxel.Pos{X: 1})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if data.Name() != "air" {
		t.Fatalf("Get before flush = %q, want air (queued write not yet applied)", data.Name())
	}

	s.Flush()

	direct, err := grid.Get(voxel.Pos{X: 1})
	if err != nil {
		t.Fatalf("Get after flush: %v", err)
	}
	if direct.Name() != "stone" {
		t.Fatalf("real grid after flush = %q, want stone", direct.Name())
	}
}

func TestFlushOrdersNodeWriteBeforeMetadataAtSamePosition(t *testing.T) {
	grid := voxeltest.NewMemGrid(2, 1, 1, "air")
	var order []string
	s := New(func(msg string) { order = append(order, "warn:"+msg) })
	s.Wrap(grid)

	pos := voxel.Pos{X: 0}
	s.WriteMeta(grid.ID(), pos, "owner", "alice")
	s.WriteNode(grid.ID(), pos, namedCell("stone"))
	s.Flush()

	data, err := grid.Get(pos)
	if err != nil || data.Name() != "stone" {
		t.Fatalf("node write not applied: %v %v", data, err)
	}
	owner, ok := grid.Meta(pos, "owner")
	if !ok || owner != "alice" {
		t.Fatalf("metadata write not applied: %v %v", owner, ok)
	}
	if len(order) != 0 {
		t.Fatalf("unexpected warnings: %v", order)
	}
}

func TestFlushWarnsWhenGridCannotAcceptWrites(t *testing.T) {
	var warnings []string
	s := New(func(msg string) { warnings = append(warnings, msg) })

	grid := readOnlyGrid{id: voxel.NewGridID()}
	s.Wrap(grid)
	s.WriteNode(grid.ID(), voxel.Pos{}, namedCell("stone"))
	s.Flush()

	if len(warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %d: %v", len(warnings), warnings)
	}
}

func TestNeighbourCrossingAPortalStaysWrapped(t *testing.T) {
	a := voxeltest.NewMemGrid(2, 1, 1, "air")
	b := voxeltest.NewMemGrid(2, 1, 1, "air")
	b.Set(voxel.Pos{X: 0}, "stone")

	portal := portalGrid{a: a, b: b}
	s := New(nil)
	wrapped := s.Wrap(portal)

	res, err := wrapped.Neighbour(voxel.Pos{X: 1}, voxel.Pos{X: 1})
	if err != nil {
		t.Fatalf("Neighbour: %v", err)
	}
	if _, ok := res.Grid.(*cachedGrid); !ok {
		t.Fatalf("expected Neighbour to return a cache-wrapped grid, got %T", res.Grid)
	}

	data, err := res.Grid.Get(res.Pos)
	if err != nil || data.Name() != "stone" {
		t.Fatalf("Get on the far side of the portal = %v, %v, want stone", data, err)
	}
	b.Set(res.Pos, "lava")
	data, _ = res.Grid.Get(res.Pos)
	if data.Name() != "stone" {
		t.Fatalf("far-side read after mutation = %q, want stone (still pinned)", data.Name())
	}
}

type readOnlyGrid struct{ id voxel.GridID }

func (g readOnlyGrid) ID() voxel.GridID { return g.id }
func (g readOnlyGrid) Get(voxel.Pos) (voxel.CellData, error) {
	return namedCell("air"), nil
}
func (g readOnlyGrid) Neighbour(pos, offset voxel.Pos) (voxel.NeighbourResult, error) {
	return voxel.NeighbourResult{Grid: g, Pos: pos.Add(offset), Direction: offset}, nil
}

// portalGrid hops from grid a to grid b whenever the destination x
// coordinate would leave a's bounds.
type portalGrid struct {
	a, b *voxeltest.MemGrid
}

func (g portalGrid) ID() voxel.GridID { return g.a.ID() }
func (g portalGrid) Get(pos voxel.Pos) (voxel.CellData, error) { return g.a.Get(pos) }
func (g portalGrid) Neighbour(pos, offset voxel.Pos) (voxel.NeighbourResult, error) {
	dest := pos.Add(offset)
	if dest.X >= 2 {
		return voxel.NeighbourResult{Grid: g.b, Pos: voxel.Pos{X: dest.X - 2, Y: dest.Y, Z: dest.Z}, Direction: offset}, nil
	}
	return g.a.Neighbour(pos, offset)
}
