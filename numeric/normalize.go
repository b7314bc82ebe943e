package numeric

import (
	"sort"

	"github.com/pkg/errors"
)

// ErrInvalidShape is returned when a padded FFT canvas does not come
// out to a power of two in both dimensions, or when an image's raw
// shape is not a multiple of 512 px.
var ErrInvalidShape = errors.New("numeric: invalid shape")

// MedianNormalize returns img / median(img) - 1, computed over all
// pixels before the division. The median is the textbook middle
// element (or average of the two middle elements for an even pixel
// count) of the sorted pixel values.
func MedianNormalize(img *Grid) *Grid {
	m := median(img.data)
	out := NewGrid(img.Rows, img.Cols)
	for i, v := range img.data {
		if m == 0 {
			out.data[i] = v - 1
		} else {
			out.data[i] = v/m - 1
		}
	}
	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// PadToPowerOfTwo left/top-pads img by (padR, padC) zero rows/columns,
// then right/bottom-pads with zeros until the canvas reaches
// (NextPow2(padR+Rows), NextPow2(padC+Cols)). It fails with
// ErrInvalidShape if the resulting canvas is not a power of two in
// both dimensions (which cannot actually happen given NextPow2's
// contract, but the check documents and enforces the invariant at the
// boundary as an explicit failure mode).
func PadToPowerOfTwo(img *Grid, padR, padC int) (*Grid, error) {
	destRows := NextPow2(padR + img.Rows)
	destCols := NextPow2(padC + img.Cols)
	if !IsPow2(destRows) || !IsPow2(destCols) {
		return nil, errors.Wrapf(ErrInvalidShape, "padded canvas %dx%d is not power-of-two", destRows, destCols)
	}
	out := NewGrid(destRows, destCols)
	for r := 0; r < img.Rows; r++ {
		for c := 0; c < img.Cols; c++ {
			out.Set(padR+r, padC+c, img.At(r, c))
		}
	}
	return out, nil
}
