package align

import (
	"math/rand"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/numeric"
	"gonum.org/v1/gonum/stat"
)

// ShuffleTrials is the number of random angular shuffles used to
// build each candidate tile's noise distribution.
const ShuffleTrials = 24

// RoughAlign cross-correlates the bound image against each candidate
// tile's rendering under theta0 and the scale 1/micronsPerPixel,
// accepting tiles whose SNR against a random-shuffle noise
// distribution clears snrThreshold. tileWidthMicrons does not enter
// the computation.
//
// If no catalog is bound, RoughAlign returns (nil, nil) immediately:
// this is not an error, just an empty hittingTiles result.
func (a *Aligner) RoughAlign(candidates []cluster.TileKey, theta0Deg, tileWidthMicrons, snrThreshold float64) ([]HittingTile, error) {
	if a.image == nil {
		return nil, ErrNoImageBound
	}
	if a.catalog == nil {
		a.hittingTiles = nil
		return nil, nil
	}

	scale := 1 / a.micronsPerPixel
	rows, cols := a.image.CanvasShape()
	imageFFT := a.image.FFT()

	var hits []HittingTile
	for _, key := range candidates {
		tile := a.store.Tile(key)
		if tile == nil {
			continue
		}
		pose := numeric.Pose{Theta: theta0Deg, Scale: scale}
		canvas := cluster.RenderTile(a.store, key, pose, rows, cols)
		tileFFT := numeric.FFT2(canvas)
		corr := numeric.CrossCorrelate(tileFFT, imageFFT)
		peakRow, peakCol, peak := numeric.ArgMax(corr)

		noise := shuffleNoise(tile, pose, rows, cols, imageFFT)
		mean, std := stat.MeanStdDev(noise, nil)
		var snr float64
		if std > 0 {
			snr = (peak - mean) / std
		}

		log.Debug.Printf("align: tile %s snr=%.2f peak=(%d,%d)", key, snr, peakRow, peakCol)
		if snr >= snrThreshold {
			hits = append(hits, HittingTile{
				Key: key,
				SNR: snr,
				Offset: numeric.Point{
					R: float64(peakRow),
					C: float64(peakCol),
				},
			})
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].SNR > hits[j].SNR })
	a.hittingTiles = hits
	if len(hits) > 0 {
		// Seed the coarse pose from the strongest hit; precision
		// alignment refines this one pose over all hitting tiles.
		best := hits[0]
		a.pose = numeric.Pose{
			Theta: theta0Deg,
			Scale: scale,
			DR: best.Offset.R,
			DC: best.Offset.C,
		}
	}
	return hits, nil
}

// shuffleNoise re-renders tile under ShuffleTrials random rotations
// about its centroid and cross-correlates each against imageFFT,
// returning the resulting peak magnitudes.
func shuffleNoise(tile *cluster.Tile, basePose numeric.Pose, rows, cols int, imageFFT *numeric.ComplexGrid) []float64 {
	peaks := make([]float64, ShuffleTrials)
	centroidR, centroidC := tile.Centroid()
	rng := rand.New(rand.NewSource(int64(len(tile.Reads))))
	for i := 0; i < ShuffleTrials; i++ {
		shuffleTheta := rng.Float64() * 360
		shuffled := shuffleAboutCentroid(tile, shuffleTheta, centroidR, centroidC)
		canvas := shuffled.Render(basePose, rows, cols)
		fft := numeric.FFT2(canvas)
		corr := numeric.CrossCorrelate(fft, imageFFT)
		_, _, peak := numeric.ArgMax(corr)
		peaks[i] = peak
	}
	return peaks
}

// shuffledTile is a throwaway PointCloud-like renderer over a tile's
// reads rotated by a random angle about their own centroid, used only
// to build the SNR noise distribution; it never touches the shared
// TileStore.
type shuffledTile struct {
	points []numeric.Point
}

func shuffleAboutCentroid(tile *cluster.Tile, thetaDeg, centroidR, centroidC float64) shuffledTile {
	rot := numeric.RotationMatrix(thetaDeg)
	points := make([]numeric.Point, len(tile.Reads))
	for i, read := range tile.Reads {
		r, c := read.Point()
		r -= centroidR
		c -= centroidC
		points[i] = numeric.Point{
			R: rot[0][0]*r + rot[0][1]*c + centroidR,
			C: rot[1][0]*r + rot[1][1]*c + centroidC,
		}
	}
	return shuffledTile{points: points}
}

func (s shuffledTile) Render(pose numeric.Pose, rows, cols int) *numeric.Grid {
	canvas := numeric.NewGrid(rows, cols)
	for _, pt := range s.points {
		p := pose.Apply(pt)
		ri, ci := int(p.R+0.5), int(p.C+0.5)
		if canvas.InBounds(ri, ci) {
			canvas.Add(ri, ci, 1)
		}
	}
	return canvas
}
