package align

import "github.com/pkg/errors"

// Error kinds this package uses. Per-task
// failures (everything but ErrNoAlignment) are logged and the task is
// dropped by the caller; they are ordinary sentinel values, tested
// with errors.Is/errors.Cause, not panics.
var (
	// ErrInsufficientHits means precision alignment's hit set did not
	// reach minHits.
	ErrInsufficientHits = errors.New("align: insufficient hits for precision alignment")

	// ErrNoHittingTiles means rough alignment found no tile clearing
	// the SNR threshold; the image is unaligned.
	ErrNoHittingTiles = errors.New("align: no candidate tile cleared the SNR threshold")

	// ErrNoImageBound means RoughAlign or PrecisionAlign was called
	// before SetImageData (programmer error, not a per-task skip).
	ErrNoImageBound = errors.New("align: no image bound to aligner")
)
