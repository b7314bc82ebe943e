package align

import (
	"math"

	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/ioadapter"
	"github.com/grailbio/flowcell-align/numeric"
)

// Fixed mutual-neighbor classification radii and iteration bound. The
// score weight is ioadapter.ScoreWeight.
const (
	// RExclusive is the radius within which a one-to-one pair is
	// classified "exclusive".
	RExclusive = 2.0
	// RGoodMutual is the radius within which a mutual-nearest pair is
	// classified "good-mutual" (but not exclusive).
	RGoodMutual = 4.0
	// maxPrecisionIterations bounds the reassign-and-refit loop.
	maxPrecisionIterations = 10
)

// PrecisionAlign refines the coarse pose left by RoughAlign into a
// least-squares affine fit over mutually-nearest-neighbor pairs
// between the hitting tiles' reads and the bound catalog. It requires
// at least minHits pairs in the combined exclusive/good-mutual hit
// set, else returns ErrInsufficientHits.
func (a *Aligner) PrecisionAlign(minHits int) error {
	if a.image == nil {
		return ErrNoImageBound
	}
	if len(a.hittingTiles) == 0 {
		return ErrNoHittingTiles
	}

	keys := make([]cluster.TileKey, len(a.hittingTiles))
	for i, h := range a.hittingTiles {
		keys[i] = h.Key
	}
	reads := cluster.NewPointCloud(a.store, keys).Reads()
	if len(reads) == 0 {
		return ErrInsufficientHits
	}

	pose := a.pose
	var lastHits []hitPair
	var finalHits []hitPair
	for iter := 0; iter < maxPrecisionIterations; iter++ {
		hits := classifyHits(reads, pose, a.catalog.Points)
		stable := iter > 0 && len(hits) == len(lastHits)
		for i := 0; stable && i < len(hits); i++ {
			stable = hits[i].readIdx == lastHits[i].readIdx && hits[i].catalogIdx == lastHits[i].catalogIdx
		}
		if stable {
			finalHits = hits
			break
		}
		lastHits = hits
		finalHits = hits
		if len(hits) < 2 {
			break
		}

		src := make([]numeric.Point, len(hits))
		dst := make([]numeric.Point, len(hits))
		weights := make([]float64, len(hits))
		for i, h := range hits {
			read := reads[h.readIdx]
			r, c := read.Point()
			src[i] = numeric.Point{R: r, C: c}
			dst[i] = a.catalog.Points[h.catalogIdx]
			weights[i] = 1
		}
		fit, err := numeric.Procrustes(src, dst, weights)
		if err != nil {
			break
		}
		pose = fit
	}

	exclusive, goodMutual := 0, 0
	var residualR, residualC []float64
	var hitReadPoints []numeric.Point
	var hitReadNames []string
	for _, h := range finalHits {
		if h.exclusive {
			exclusive++
		} else {
			goodMutual++
		}
		residualR = append(residualR, h.residualR)
		residualC = append(residualC, h.residualC)
		read := reads[h.readIdx]
		r, c := read.Point()
		hitReadPoints = append(hitReadPoints, pose.Apply(numeric.Point{R: r, C: c}))
		hitReadNames = append(hitReadNames, read.Name)
	}

	if exclusive+goodMutual < minHits {
		return ErrInsufficientHits
	}

	a.pose = pose
	a.stats = ioadapter.AlignmentStats{
		Tiles: keys,
		Pose: pose,
		ExclusiveHits: exclusive,
		GoodMutualHits: goodMutual,
		ResidualR: medianAbs(residualR),
		ResidualC: medianAbs(residualC),
		Score: float64(exclusive) + ioadapter.ScoreWeight*float64(goodMutual),
	}
	for _, h := range a.hittingTiles {
		a.stats.RCOffsets = append(a.stats.RCOffsets, h.Offset)
	}
	a.hitReadPoints = hitReadPoints
	a.hitReadNames = hitReadNames
	a.residualsR = residualR
	a.residualsC = residualC
	return nil
}

type hitPair struct {
	readIdx, catalogIdx int
	exclusive bool
	residualR, residualC float64
}

// classifyHits transforms reads by pose and finds mutually-nearest
// pairs with the catalog, classifying each pair as exclusive,
// good-mutual, or rejected.
func classifyHits(reads []cluster.Read, pose numeric.Pose, catalog []numeric.Point) []hitPair {
	transformed := make([]numeric.Point, len(reads))
	for i, read := range reads {
		r, c := read.Point()
		transformed[i] = pose.Apply(numeric.Point{R: r, C: c})
	}

	readToCat := numeric.KDTreeNN(transformed, catalog)
	catToRead := numeric.KDTreeNN(catalog, transformed)

	var hits []hitPair
	for i, nn := range readToCat {
		if nn.NearestB < 0 {
			continue
		}
		j := nn.NearestB
		mutual := catToRead[j].NearestB == i
		if !mutual {
			continue
		}
		dr := transformed[i].R - catalog[j].R
		dc := transformed[i].C - catalog[j].C
		dist := math.Hypot(dr, dc)
		switch {
		case dist <= RExclusive:
			hits = append(hits, hitPair{readIdx: i, catalogIdx: j, exclusive: true, residualR: dr, residualC: dc})
		case dist <= RGoodMutual:
			hits = append(hits, hitPair{readIdx: i, catalogIdx: j, exclusive: false, residualR: dr, residualC: dc})
		}
	}
	return hits
}

func medianAbs(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	abs := make([]float64, len(values))
	for i, v := range values {
		if v < 0 {
			v = -v
		}
		abs[i] = v
	}
	// Simple selection sort is fine: hit sets are small (tens of
	// points), and this runs once per alignment.
	for i := range abs {
		min := i
		for j := i + 1; j < len(abs); j++ {
			if abs[j] < abs[min] {
				min = j
			}
		}
		abs[i], abs[min] = abs[min], abs[i]
	}
	n := len(abs)
	if n%2 == 1 {
		return abs[n/2]
	}
	return (abs[n/2-1] + abs[n/2]) / 2
}
