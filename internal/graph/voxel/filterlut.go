package voxel

// FilterInput is the query passed to an inbound-filter handler: may
// dest accept a connection from src, tagged extra, arriving from
// direction?
type FilterInput struct {
	Src       CellData
	Dest      CellData
	Extra     ExtraKey
	Direction Pos
}

// FilterLUT maps a destination cell's name to a predicate handler
// that decides whether it accepts an inbound connection.
type FilterLUT struct {
	lut *HandlerLUT[FilterInput, string, bool]
}

// NewFilterLUT constructs an empty inbound-filter LUT.
func NewFilterLUT() *FilterLUT {
	return &FilterLUT{
		lut: NewHandlerLUT[FilterInput, string, bool](
			func(in FilterInput) string { return in.Dest.Name() },
			"filter",
		),
	}
}

// Register binds handler to the destination cell-name, per §6.
func (f *FilterLUT) Register(cellName string, handler Handler[FilterInput, bool]) error {
	return f.lut.Register(cellName, handler)
}

// Query runs the predicate for in. A missing handler (ErrNoData) is
// treated by the caller as "no filter registered -> reject", same as
// an explicit false.
func (f *FilterLUT) Query(in FilterInput) (bool, error) {
	return f.lut.Query(in)
}
