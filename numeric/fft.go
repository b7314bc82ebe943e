package numeric

import (
	"math/cmplx"

	"gonum.org/v1/gonum/fourier"
)

// ComplexGrid is a dense row-major complex128 grid, the frequency-
// domain counterpart of Grid. It backs the padded FFT canvases used
// by rough alignment's cross-correlation.
type ComplexGrid struct {
	Rows, Cols int
	data []complex128
}

func newComplexGrid(rows, cols int) *ComplexGrid {
	return &ComplexGrid{Rows: rows, Cols: cols, data: make([]complex128, rows*cols)}
}

// At returns the value at (r, c).
func (g *ComplexGrid) At(r, c int) complex128 {
	return g.data[r*g.Cols+c]
}

// Set assigns the value at (r, c).
func (g *ComplexGrid) Set(r, c int, v complex128) {
	g.data[r*g.Cols+c] = v
}

// FFT2 computes the forward 2-D discrete Fourier transform of img by
// applying gonum's 1-D FFT across rows, then across columns of the
// result (the standard separable decomposition of a 2-D DFT). img
// must already be padded to power-of-two dimensions (PadToPowerOfTwo).
func FFT2(img *Grid) *ComplexGrid {
	rows, cols := img.Rows, img.Cols
	out := newComplexGrid(rows, cols)

	rowFFT := fourier.NewCmplxFFT(cols)
	rowBuf := make([]complex128, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			rowBuf[c] = complex(img.At(r, c), 0)
		}
		spectrum := rowFFT.Coefficients(nil, rowBuf)
		for c := 0; c < cols; c++ {
			out.Set(r, c, spectrum[c])
		}
	}

	colFFT := fourier.NewCmplxFFT(rows)
	colBuf := make([]complex128, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			colBuf[r] = out.At(r, c)
		}
		spectrum := colFFT.Coefficients(nil, colBuf)
		for r := 0; r < rows; r++ {
			out.Set(r, c, spectrum[r])
		}
	}
	return out
}

// IFFT2 computes the inverse 2-D discrete Fourier transform, returning
// the real part of the (expected-to-be-real) result.
func IFFT2(freq *ComplexGrid) *Grid {
	rows, cols := freq.Rows, freq.Cols
	tmp := newComplexGrid(rows, cols)

	colFFT := fourier.NewCmplxFFT(rows)
	colBuf := make([]complex128, rows)
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			colBuf[r] = freq.At(r, c)
		}
		spectrum := colFFT.Sequence(nil, colBuf)
		for r := 0; r < rows; r++ {
			tmp.Set(r, c, spectrum[r]/complex(float64(rows), 0))
		}
	}

	rowFFT := fourier.NewCmplxFFT(cols)
	rowBuf := make([]complex128, cols)
	out := NewGrid(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			rowBuf[c] = tmp.At(r, c)
		}
		spectrum := rowFFT.Sequence(nil, rowBuf)
		for c := 0; c < cols; c++ {
			out.Set(r, c, real(spectrum[c])/float64(cols))
		}
	}
	return out
}

// CrossCorrelate returns ifft2(conj(Ftile). Fimage), the real-valued
// cross-correlation surface used to locate a tile rendering inside an
// acquired image.
func CrossCorrelate(ftile, fimage *ComplexGrid) *Grid {
	rows, cols := ftile.Rows, ftile.Cols
	product := newComplexGrid(rows, cols)
	for i := range product.data {
		product.data[i] = cmplx.Conj(ftile.data[i]) * fimage.data[i]
	}
	return IFFT2(product)
}

// ArgMax returns the (row, col) of the largest value in g and that
// value.
func ArgMax(g *Grid) (row, col int, peak float64) {
	peak = g.data[0]
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			v := g.At(r, c)
			if v > peak {
				peak, row, col = v, r, c
			}
		}
	}
	return row, col, peak
}
