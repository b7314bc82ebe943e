package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadToPowerOfTwo(t *testing.T) {
	img := NewGrid(500, 500)
	img.Set(10, 10, 1)

	padded, err := PadToPowerOfTwo(img, 12, 12)
	require.NoError(t, err)
	assert.True(t, IsPow2(padded.Rows))
	assert.True(t, IsPow2(padded.Cols))
	assert.Equal(t, 1.0, padded.At(22, 22))
}

func TestMedianNormalize(t *testing.T) {
	img := NewGrid(1, 5)
	for i, v := range []float64{1, 2, 3, 4, 100} {
		img.Set(0, i, v)
	}
	out := MedianNormalize(img)
	// median of {1,2,3,4,100} is 3.
	assert.InDelta(t, 1.0/3-1, out.At(0, 0), 1e-9)
	assert.InDelta(t, 0.0, out.At(0, 2), 1e-9)
}
