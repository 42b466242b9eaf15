package voxel

// Hash is the opaque, equality-comparable token two vertices are
// compared by: hash equality implies vertex equality. It is just a
// (grid identity, position) pair, but callers should treat the type
// as opaque rather than reaching into its fields.
type Hash struct {
	grid GridID
	pos  Pos
}

// Hasher produces Hash values for vertices and, per §5's resource
// lifetime rule, retains a strong reference to every grid it has
// hashed so that grid identity tokens cannot be reused (by the Go
// garbage collector reclaiming and later reallocating the same
// address) for the Hasher's entire lifetime.
type Hasher struct {
	seen map[GridID]Grid
}

// NewHasher constructs an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{seen: map[GridID]Grid{}}
}

// Hash computes the hash of v, retaining a reference to v.Grid for
// as long as the Hasher itself is reachable.
func (h *Hasher) Hash(v Vertex) Hash {
	id := v.Grid.ID()
	if _, ok := h.seen[id]; !ok {
		h.seen[id] = v.Grid
	}
	return Hash{grid: id, pos: v.Pos}
}

// Seen reports how many distinct grids this Hasher currently retains.
// Exposed for diagnostics only.
func (h *Hasher) Seen() int { return len(h.seen) }
