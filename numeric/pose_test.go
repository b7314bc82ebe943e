package numeric

import (
	"math"
	"testing"
)

func TestPoseRoundTrip(t *testing.T) {
	tests := []Pose{
		{Theta: 0, Scale: 1, DR: 0, DC: 0},
		{Theta: 3, Scale: 0.16, DR: 17, DC: -23},
		{Theta: -47.5, Scale: 2.5, DR: -100, DC: 250},
	}
	pts := []Point{{0, 0}, {100, 200}, {-50, 75.5}}
	for _, pose := range tests {
		inv := pose.Inverse()
		for _, pt := range pts {
			got := inv.Apply(pose.Apply(pt))
			if math.Abs(got.R-pt.R) > 1e-6 || math.Abs(got.C-pt.C) > 1e-6 {
				t.Errorf("pose %+v: round trip of %+v got %+v", pose, pt, got)
			}
		}
	}
}
