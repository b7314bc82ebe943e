package numeric

import "math"

// Point is a 2-D point with row/column convention (matching sequencer
// and image pixel coordinates throughout this module).
type Point struct {
	R, C float64
}

// RotationMatrix returns the right-handed 2x2 rotation matrix
// [[cosθ, sinθ], [-sinθ, cosθ]] for θ in degrees.
func RotationMatrix(thetaDeg float64) [2][2]float64 {
	theta := thetaDeg * math.Pi / 180
	cosT, sinT := math.Cos(theta), math.Sin(theta)
	return [2][2]float64{
		{cosT, sinT},
		{-sinT, cosT},
	}
}

// Pose is an affine transform from sequencer coordinates to image
// pixel coordinates: a rotation by Theta degrees, an isotropic scale
// Scale, and a translation (DR, DC) in pixels.
type Pose struct {
	Theta float64 // degrees
	Scale float64
	DR float64
	DC float64
}

// Apply maps a sequencer-space point into image pixel space.
func (p Pose) Apply(pt Point) Point {
	rot := RotationMatrix(p.Theta)
	r := p.Scale*(rot[0][0]*pt.R+rot[0][1]*pt.C) + p.DR
	c := p.Scale*(rot[1][0]*pt.R+rot[1][1]*pt.C) + p.DC
	return Point{R: r, C: c}
}

// Inverse returns the pose that undoes p, so that
// p.Inverse().Apply(p.Apply(pt)) == pt within numerical tolerance.
func (p Pose) Inverse() Pose {
	// p maps x -> s*R*x + d. The inverse is y -> (1/s)*R^T*(y-d).
	rot := RotationMatrix(p.Theta)
	// R^T has the same form as RotationMatrix(-Theta) since R is
	// orthogonal.
	invScale := 1 / p.Scale
	// (1/s) R^T (y - d) = (1/s) R^T y - (1/s) R^T d
	rt := [2][2]float64{
		{rot[0][0], rot[1][0]},
		{rot[0][1], rot[1][1]},
	}
	negD := Point{R: -p.DR, C: -p.DC}
	shiftR := invScale * (rt[0][0]*negD.R + rt[0][1]*negD.C)
	shiftC := invScale * (rt[1][0]*negD.R + rt[1][1]*negD.C)
	return Pose{
		Theta: -p.Theta,
		Scale: invScale,
		DR: shiftR,
		DC: shiftC,
	}
}
