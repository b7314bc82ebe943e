package numeric

import "fmt"

// Grid is a dense 2-D array of float64 values, row-major, used for
// microscope images, rasterized tile renderings, and FFT canvases
// alike.
type Grid struct {
	Rows, Cols int
	data []float64
}

// NewGrid allocates a zeroed Rows x Cols grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, data: make([]float64, rows*cols)}
}

// At returns the value at (r, c).
func (g *Grid) At(r, c int) float64 {
	return g.data[r*g.Cols+c]
}

// Set assigns the value at (r, c).
func (g *Grid) Set(r, c int, v float64) {
	g.data[r*g.Cols+c] = v
}

// Add accumulates v into the value at (r, c). Used by rasterization,
// where multiple points may land on the same pixel.
func (g *Grid) Add(r, c int, v float64) {
	g.data[r*g.Cols+c] += v
}

// Raw exposes the underlying row-major buffer. Callers must not
// retain it past the Grid's lifetime expectations; it exists so the
// FFT and HDF5 adapters can copy in bulk.
func (g *Grid) Raw() []float64 {
	return g.data
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d)", g.Rows, g.Cols)
}

// InBounds reports whether (r, c) is a valid index into g.
func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && r < g.Rows && c >= 0 && c < g.Cols
}
