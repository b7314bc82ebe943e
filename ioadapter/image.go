package ioadapter

import (
	"fmt"

	"github.com/grailbio/flowcell-align/numeric"
	"github.com/pkg/errors"
)

// ImagePaddingPx is the fixed padding added to an image's shape before
// rounding the FFT canvas up to the next power of two. It gives the
// cross-correlation room so a tile rendering near the image edge does
// not wrap around.
const ImagePaddingPx = 64

// Image is one microscope field of view: a 2-D pixel grid, its
// (row, column) position in the acquisition grid, and its derived,
// padded FFT. An Image's shape must be a multiple of 512 px in both
// dimensions, and it is median-normalized at construction.
type Image struct {
	Data *numeric.Grid
	Row, Column int
	normalized *numeric.Grid
	paddedFFT *numeric.ComplexGrid
	padR, padC int
}

// NewImage wraps raw pixel data into an Image, validating the 512px
// multiple requirement, median-normalizing it, and computing its
// padded FFT eagerly (every rough alignment against this image will
// need it).
func NewImage(data *numeric.Grid, row, column int) (*Image, error) {
	if data.Rows%512 != 0 || data.Cols%512 != 0 {
		return nil, errors.Wrapf(numeric.ErrInvalidShape,
			"image shape %dx%d is not a multiple of 512px", data.Rows, data.Cols)
	}
	normalized := numeric.MedianNormalize(data)
	padded, err := numeric.PadToPowerOfTwo(normalized, ImagePaddingPx, ImagePaddingPx)
	if err != nil {
		return nil, err
	}
	img := &Image{
		Data: data,
		Row: row,
		Column: column,
		normalized: normalized,
		padR: ImagePaddingPx,
		padC: ImagePaddingPx,
	}
	img.paddedFFT = numeric.FFT2(padded)
	return img, nil
}

// Index returns the image's per-image index string "row_column", an
// unambiguous convention that deliberately does not attempt the
// disputed tiled-1024px subrow/subcolumn labeling some imaging stacks
// use instead.
func (img *Image) Index() string {
	return fmt.Sprintf("%d_%d", img.Row, img.Column)
}

// FFT returns the image's padded, forward-transformed canvas.
func (img *Image) FFT() *numeric.ComplexGrid {
	return img.paddedFFT
}

// CanvasShape returns the (rows, cols) of the padded FFT canvas, which
// every tile rendering must match before cross-correlation.
func (img *Image) CanvasShape() (rows, cols int) {
	return img.paddedFFT.Rows, img.paddedFFT.Cols
}

// Pad returns the (row, column) padding applied before the
// power-of-two rounding, so callers rasterizing a tile under the same
// canvas can offset consistently.
func (img *Image) Pad() (padR, padC int) {
	return img.padR, img.padC
}
