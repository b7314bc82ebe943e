package numeric

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrDegenerateFit is returned by Procrustes when fewer than 2 point
// pairs are supplied, the weights sum to zero, the source points all
// coincide, or the SVD of the cross-covariance fails.
var ErrDegenerateFit = errors.New("numeric: degenerate Procrustes fit")

// Procrustes fits the affine pose (rotation, isotropic scale,
// translation) that best maps src points onto dst points in a
// weighted least-squares sense: center both point sets on their
// weighted centroid, take the SVD of the weighted
// cross-covariance matrix, recover rotation from V.U^T (correcting
// for a reflection if det < 0), recover scale as the ratio of the
// singular-value-weighted trace to the source variance, then solve
// for translation from the centroids.
func Procrustes(src, dst []Point, weights []float64) (Pose, error) {
	n := len(src)
	if n != len(dst) || n != len(weights) {
		return Pose{}, errors.New("numeric: Procrustes requires src, dst, weights of equal length")
	}
	if n < 2 {
		return Pose{}, ErrDegenerateFit
	}

	var wsum float64
	var srcCR, srcCC, dstCR, dstCC float64
	for i := 0; i < n; i++ {
		w := weights[i]
		wsum += w
		srcCR += w * src[i].R
		srcCC += w * src[i].C
		dstCR += w * dst[i].R
		dstCC += w * dst[i].C
	}
	if wsum == 0 {
		return Pose{}, ErrDegenerateFit
	}
	srcCR, srcCC = srcCR/wsum, srcCC/wsum
	dstCR, dstCC = dstCR/wsum, dstCC/wsum

	// Cross-covariance H = sum_i w_i * srcCentered_i * dstCentered_i^T
	var h00, h01, h10, h11 float64
	var srcVar float64
	for i := 0; i < n; i++ {
		w := weights[i]
		sr, sc := src[i].R-srcCR, src[i].C-srcCC
		dr, dc := dst[i].R-dstCR, dst[i].C-dstCC
		h00 += w * sr * dr
		h01 += w * sr * dc
		h10 += w * sc * dr
		h11 += w * sc * dc
		srcVar += w * (sr*sr + sc*sc)
	}
	if srcVar == 0 {
		return Pose{}, ErrDegenerateFit
	}

	h := mat.NewDense(2, 2, []float64{h00, h01, h10, h11})
	var svd mat.SVD
	if ok := svd.Factorize(h, mat.SVDFull); !ok {
		return Pose{}, ErrDegenerateFit
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	var r mat.Dense
	r.Mul(&v, u.T())
	reflected := mat.Det(&r) < 0
	if reflected {
		// Correct a reflection by flipping the sign of the smaller
		// singular vector, the standard Kabsch/Procrustes fix.
		d := mat.NewDiagDense(2, []float64{1, -1})
		var vd mat.Dense
		vd.Mul(&v, d)
		r.Mul(&vd, u.T())
	}

	scaleNumer := values[0] + values[1]
	if reflected {
		// The trace used for scale must flip the same singular value
		// the rotation's reflection correction flips, or the recovered
		// scale is biased on reflected point sets.
		scaleNumer = values[0] - values[1]
	}
	scale := scaleNumer / srcVar

	theta := math.Atan2(r.At(0, 1), r.At(0, 0)) * 180 / math.Pi

	pose := Pose{Theta: theta, Scale: scale}
	// Solve translation from centroids: dstCentroid = scale*R*srcCentroid + d
	rotated := pose.applyLinear(Point{R: srcCR, C: srcCC})
	pose.DR = dstCR - rotated.R
	pose.DC = dstCC - rotated.C
	return pose, nil
}

// applyLinear applies only the rotation+scale part of the pose,
// without translation.
func (p Pose) applyLinear(pt Point) Point {
	rot := RotationMatrix(p.Theta)
	return Point{
		R: p.Scale * (rot[0][0]*pt.R + rot[0][1]*pt.C),
		C: p.Scale * (rot[1][0]*pt.R + rot[1][1]*pt.C),
	}
}
