// Package voxeltest provides a minimal flat-array in-memory grid used
// only by this module's own tests. The real grid binding (the
// game-world implementation that backs "get_node"/"swap_node") is an
// external collaborator out of scope for this repository; this type
// exists solely so internal/graph/voxel and the end-to-end scenarios
// can be exercised without one.
package voxeltest

import "voxelgraph/internal/graph/voxel"

type cell struct{ name string }

func (c cell) Name() string { return c.name }

// MemGrid is a fixed-size flat-array grid, indexed the way the
// teacher's chunk store indexes its block array (x fastest, then y,
// then z).
type MemGrid struct {
	id          voxel.GridID
	sx, sy, sz  int
	cells       []string
	defaultCell string
	meta        map[voxel.Pos]map[string]any
}

// NewMemGrid constructs an sx*sy*sz grid, every cell initialised to
// defaultCell (use "air" for a typical voxel default).
func NewMemGrid(sx, sy, sz int, defaultCell string) *MemGrid {
	g := &MemGrid{
		id:          voxel.NewGridID(),
		sx:          sx,
		sy:          sy,
		sz:          sz,
		cells:       make([]string, sx*sy*sz),
		defaultCell: defaultCell,
		meta:        map[voxel.Pos]map[string]any{},
	}
	for i := range g.cells {
		g.cells[i] = defaultCell
	}
	return g
}

func (g *MemGrid) ID() voxel.GridID { return g.id }

func (g *MemGrid) index(p voxel.Pos) (int, bool) {
	if p.X < 0 || p.X >= g.sx || p.Y < 0 || p.Y >= g.sy || p.Z < 0 || p.Z >= g.sz {
		return 0, false
	}
	return p.X + p.Y*g.sx + p.Z*g.sx*g.sy, true
}

// Set places a named cell at p. It is a no-op if p is out of bounds.
func (g *MemGrid) Set(p voxel.Pos, name string) {
	if i, ok := g.index(p); ok {
		g.cells[i] = name
	}
}

func (g *MemGrid) Get(p voxel.Pos) (voxel.CellData, error) {
	i, ok := g.index(p)
	if !ok {
		return nil, voxel.ErrOutOfBounds
	}
	return cell{name: g.cells[i]}, nil
}

// Neighbour resolves within this single grid only: no portals, no
// rotation. The effective direction always equals the raw offset.
func (g *MemGrid) Neighbour(p, offset voxel.Pos) (voxel.NeighbourResult, error) {
	dest := p.Add(offset)
	if _, ok := g.index(dest); !ok {
		return voxel.NeighbourResult{}, voxel.ErrOutOfBounds
	}
	return voxel.NeighbourResult{Grid: g, Pos: dest, Direction: offset}, nil
}

// SetCell implements voxel.Writer, so the write-back cache can flush
// node writes onto a MemGrid in tests.
func (g *MemGrid) SetCell(p voxel.Pos, data voxel.CellData) error {
	i, ok := g.index(p)
	if !ok {
		return voxel.ErrOutOfBounds
	}
	g.cells[i] = data.Name()
	return nil
}

// SetMeta implements voxel.MetaWriter.
func (g *MemGrid) SetMeta(p voxel.Pos, field string, value any) error {
	if _, ok := g.index(p); !ok {
		return voxel.ErrOutOfBounds
	}
	if g.meta[p] == nil {
		g.meta[p] = map[string]any{}
	}
	g.meta[p][field] = value
	return nil
}

// Meta returns a metadata field previously written via SetMeta (or by
// a flushed write-back cache).
func (g *MemGrid) Meta(p voxel.Pos, field string) (any, bool) {
	fields, ok := g.meta[p]
	if !ok {
		return nil, false
	}
	v, ok := fields[field]
	return v, ok
}
