// Package cache implements the two-level write-back cache of spec
// §4.9: within one enter/exit bracket, successor reads see a pinned
// pre-operation snapshot of the world, and callback writes accumulate
// in a second level that is only flushed once, at exit.
package cache

import (
	"fmt"

	"voxelgraph/internal/graph/voxel"
)

type posKey struct {
	grid voxel.GridID
	pos  voxel.Pos
}

type metaWrite struct {
	pos    voxel.Pos
	fields map[string]any
}

// Set is a single enter/exit bracket's write-back cache, spanning
// every grid touched during that bracket (a flood may cross a portal
// into a second grid mid-run).
type Set struct {
	real map[voxel.GridID]voxel.Grid

	reads    map[posKey]voxel.CellData
	readErrs map[posKey]error

	nodeWrites map[posKey]voxel.CellData
	metaWrites map[posKey]*metaWrite
	order      []posKey
	ordered    map[posKey]bool

	onWarning func(msg string)
}

// New opens an empty write-back cache. onWarning may be nil; it
// receives a message whenever Flush finds a write with no underlying
// capability to apply it to.
func New(onWarning func(msg string)) *Set {
	return &Set{
		real:       map[voxel.GridID]voxel.Grid{},
		reads:      map[posKey]voxel.CellData{},
		readErrs:   map[posKey]error{},
		nodeWrites: map[posKey]voxel.CellData{},
		metaWrites: map[posKey]*metaWrite{},
		ordered:    map[posKey]bool{},
		onWarning:  onWarning,
	}
}

// Wrap returns a view of g whose Get calls are served from this
// bracket's first-level read cache, and whose Neighbour resolutions
// recursively wrap whatever grid they land on (so a flood that crosses
// a portal stays inside the same pinned snapshot). Callers install the
// wrapped grid in place of g for the duration of the bracket.
func (s *Set) Wrap(g voxel.Grid) voxel.Grid {
	if g == nil {
		return nil
	}
	s.real[g.ID()] = g
	return &cachedGrid{set: s, real: g}
}

func (s *Set) markOrder(key posKey) {
	if !s.ordered[key] {
		s.ordered[key] = true
		s.order = append(s.order, key)
	}
}

// WriteNode queues a node write against the second-level cache. It is
// not visible to Get until Flush.
func (s *Set) WriteNode(gridID voxel.GridID, pos voxel.Pos, data voxel.CellData) {
	key := posKey{gridID, pos}
	s.markOrder(key)
	s.nodeWrites[key] = data
}

// WriteMeta queues a per-cell metadata-ref write.
func (s *Set) WriteMeta(gridID voxel.GridID, pos voxel.Pos, field string, value any) {
	key := posKey{gridID, pos}
	s.markOrder(key)
	mw := s.metaWrites[key]
	if mw == nil {
		mw = &metaWrite{pos: pos, fields: map[string]any{}}
		s.metaWrites[key] = mw
	}
	mw.fields[field] = value
}

// Flush applies every queued write to the real grids, node writes
// before metadata writes at the same position, and clears the
// second-level cache. It never touches the first-level read cache:
// the snapshot stays pinned for the rest of the bracket it was opened
// for. Grids that implement neither voxel.Writer nor voxel.MetaWriter
// silently drop the corresponding writes, reported via onWarning.
func (s *Set) Flush() {
	for _, key := range s.order {
		real := s.real[key.grid]
		if data, ok := s.nodeWrites[key]; ok {
			if w, ok := real.(voxel.Writer); ok {
				if err := w.SetCell(key.pos, data); err != nil {
					s.warnf("cache: flush node write at %v failed: %v", key.pos, err)
				}
			} else {
				s.warnf("cache: grid has a queued node write at %v but does not implement voxel.Writer", key.pos)
			}
		}
		if mw, ok := s.metaWrites[key]; ok {
			mwriter, ok := real.(voxel.MetaWriter)
			if !ok {
				s.warnf("cache: grid has queued metadata writes at %v but does not implement voxel.MetaWriter", key.pos)
				continue
			}
			for field, value := range mw.fields {
				if err := mwriter.SetMeta(key.pos, field, value); err != nil {
					s.warnf("cache: flush metadata write %q at %v failed: %v", field, key.pos, err)
				}
			}
		}
	}
	s.nodeWrites = map[posKey]voxel.CellData{}
	s.metaWrites = map[posKey]*metaWrite{}
	s.order = nil
	s.ordered = map[posKey]bool{}
}

func (s *Set) warnf(format string, args ...any) {
	if s.onWarning != nil {
		s.onWarning(fmt.Sprintf(format, args...))
	}
}

type cachedGrid struct {
	set  *Set
	real voxel.Grid
}

func (c *cachedGrid) ID() voxel.GridID { return c.real.ID() }

func (c *cachedGrid) Get(pos voxel.Pos) (voxel.CellData, error) {
	key := posKey{c.real.ID(), pos}
	if data, ok := c.set.reads[key]; ok {
		return data, nil
	}
	if err, ok := c.set.readErrs[key]; ok {
		return nil, err
	}
	data, err := c.real.Get(pos)
	if err != nil {
		c.set.readErrs[key] = err
		return nil, err
	}
	c.set.reads[key] = data
	return data, nil
}

func (c *cachedGrid) Neighbour(pos, offset voxel.Pos) (voxel.NeighbourResult, error) {
	res, err := c.real.Neighbour(pos, offset)
	if err != nil {
		return voxel.NeighbourResult{}, err
	}
	res.Grid = c.set.Wrap(res.Grid)
	return res, nil
}
