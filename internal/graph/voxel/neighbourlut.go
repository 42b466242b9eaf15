package voxel

// ExtraKey is the opaque key a neighbour-set candidate is tagged
// with. Mods use it to carry side information (e.g. "which pipe
// socket") through to the inbound-filter LUT; the tracker never
// interprets it.
type ExtraKey string

// Candidates is the finite mapping a neighbour-set handler returns:
// extradata key -> outbound offset. An empty map is valid and means
// "no successors here".
type Candidates map[ExtraKey]Pos

// NeighbourSetLUT maps a cell's name to a handler that computes its
// outbound offset candidates from its cell data.
type NeighbourSetLUT struct {
	lut *HandlerLUT[CellData, string, Candidates]
}

// NewNeighbourSetLUT constructs an empty neighbour-set LUT.
func NewNeighbourSetLUT() *NeighbourSetLUT {
	return &NeighbourSetLUT{
		lut: NewHandlerLUT[CellData, string, Candidates](CellData.Name, "neighbourset"),
	}
}

// AddCustomHook registers handler for cell-name, per §6's external
// registration interface.
func (n *NeighbourSetLUT) AddCustomHook(cellName string, handler Handler[CellData, Candidates]) error {
	return n.lut.Register(cellName, handler)
}

// Query returns the outbound candidates for data's cell. Callers
// treat ErrNoData and ErrHookFail identically: both mean "no
// successors here" for the current vertex (the voxel successor's
// candidate phase).
func (n *NeighbourSetLUT) Query(data CellData) (Candidates, error) {
	return n.lut.Query(data)
}
