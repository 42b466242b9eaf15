package voxel

import (
	"errors"
	"fmt"
)

// Successor composes a Hasher, a NeighbourSetLUT, and a FilterLUT
// into the "successors of a vertex" function the breadth-first mapper
// consumes (§4.3).
type Successor struct {
	Hasher      *Hasher
	Neighbours  *NeighbourSetLUT
	Filters     *FilterLUT
	// Debugger receives free-form diagnostic trace lines, e.g. for
	// EHOOKFAIL occurrences. Nil is a valid no-op.
	Debugger func(string)
}

func (s *Successor) debugf(format string, args ...any) {
	if s.Debugger != nil {
		s.Debugger(fmt.Sprintf(format, args...))
	}
}

// Of computes the successors of vertex v (whose hash is h). It never
// returns a non-nil error for recoverable conditions (out-of-bounds,
// ENODATA, EHOOKFAIL); those are swallowed and logged per §4.8/§7. A
// non-nil error here means the grid itself misbehaved in a way the
// caller must not ignore.
func (s *Successor) Of(v Vertex, h Hash) (map[Hash]Vertex, error) {
	data, err := v.Grid.Get(v.Pos)
	if err != nil {
		if errors.Is(err, ErrOutOfBounds) {
			return map[Hash]Vertex{}, nil
		}
		return nil, err
	}

	candidates, err := s.Neighbours.Query(data)
	if err != nil {
		if errors.Is(err, ErrNoData) || errors.Is(err, ErrHookFail) {
			if errors.Is(err, ErrHookFail) {
				s.debugf("neighbourset hookfail for %q at %v: %v", data.Name(), v.Pos, err)
			}
			return map[Hash]Vertex{}, nil
		}
		return nil, err
	}

	out := make(map[Hash]Vertex, len(candidates))
	for extra, offset := range candidates {
		res, err := v.Grid.Neighbour(v.Pos, offset)
		if err != nil {
			if errors.Is(err, ErrOutOfBounds) {
				continue
			}
			return nil, err
		}

		destData, err := res.Grid.Get(res.Pos)
		if err != nil {
			if errors.Is(err, ErrOutOfBounds) {
				continue
			}
			return nil, err
		}

		accept, err := s.Filters.Query(FilterInput{
			Src:       data,
			Dest:      destData,
			Extra:     extra,
			Direction: res.Direction,
		})
		if err != nil {
			// ErrNoData ("no filter registered") and ErrHookFail both
			// mean "reject this candidate"; only the latter is worth a
			// trace line since it signals a registered handler failing.
			if errors.Is(err, ErrHookFail) {
				s.debugf("filter hookfail for %q <- %q: %v", destData.Name(), data.Name(), err)
			}
			continue
		}
		if !accept {
			continue
		}

		destVertex := Vertex{Grid: res.Grid, Pos: res.Pos}
		destHash := s.Hasher.Hash(destVertex)
		if _, dup := out[destHash]; dup {
			panic(fmt.Sprintf("voxel: duplicate successor hash %v: neighbourset LUT offsets must resolve to distinct destinations", destHash))
		}
		out[destHash] = destVertex
	}
	return out, nil
}
