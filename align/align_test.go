package align

import (
	"math"
	"math/rand"
	"testing"

	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/ioadapter"
	"github.com/grailbio/flowcell-align/numeric"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSyntheticTile returns a TileStore with one tile of n uniform
// random points in [0, span)^2 sequencer units.
func buildSyntheticTile(key cluster.TileKey, n int, span int, seed int64) *cluster.TileStore {
	rng := rand.New(rand.NewSource(seed))
	reads := make([]cluster.Read, n)
	for i := range reads {
		reads[i] = cluster.Read{
			Name: "synthetic-read",
			R: rng.Intn(span),
			C: rng.Intn(span),
		}
	}
	return cluster.NewTileStoreForTest(map[cluster.TileKey]*cluster.Tile{
		key: {Key: key, Reads: reads},
	})
}

// TestSyntheticExactAlignment renders a known tile under a known pose
// into a 1024x1024 image, jitters it slightly, and confirms that rough
// alignment followed by precision alignment recovers the pose's
// rotation within 0.5 degrees and translation within 1px.
func TestSyntheticExactAlignment(t *testing.T) {
	const key = cluster.TileKey("lane1tile1101")
	store := buildSyntheticTile(key, 500, 800, 1)

	truePose := numeric.Pose{Theta: 3, Scale: 1, DR: 17, DC: -23}
	canvas := cluster.NewPointCloud(store, []cluster.TileKey{key}).Render(truePose, 1024, 1024)

	rng := rand.New(rand.NewSource(2))
	catalog := jitterCatalog(canvas, rng, 0.2)

	img, err := ioadapter.NewImage(canvas, 0, 0)
	require.NoError(t, err)

	aligner := NewAligner(store, 1.0)
	aligner.SetImageData(img)
	aligner.SetCatalog(&ioadapter.Catalog{Points: catalog})

	hits, err := aligner.RoughAlign([]cluster.TileKey{key}, 0, 100, 6)
	require.NoError(t, err)
	require.NotEmpty(t, hits, "expected at least one hitting tile")

	err = aligner.PrecisionAlign(10)
	require.NoError(t, err)

	pose := aligner.Pose()
	assert.InDelta(t, truePose.Theta, pose.Theta, 0.5)
	assert.Less(t, math.Hypot(pose.DR-truePose.DR, pose.DC-truePose.DC), 1.0)
}

// TestSNRFloorRejectsNoise confirms an image of pure noise (no
// rendered tile signal) must not clear the SNR threshold for any
// candidate tile.
func TestSNRFloorRejectsNoise(t *testing.T) {
	const key = cluster.TileKey("lane1tile1101")
	store := buildSyntheticTile(key, 500, 800, 3)

	rng := rand.New(rand.NewSource(4))
	noise := numeric.NewGrid(1024, 1024)
	for i := range noise.Raw() {
		noise.Raw()[i] = rng.Float64()
	}
	img, err := ioadapter.NewImage(noise, 0, 0)
	require.NoError(t, err)

	var catalog []numeric.Point
	for i := 0; i < 50; i++ {
		catalog = append(catalog, numeric.Point{R: rng.Float64() * 1024, C: rng.Float64() * 1024})
	}

	aligner := NewAligner(store, 1.0)
	aligner.SetImageData(img)
	aligner.SetCatalog(&ioadapter.Catalog{Points: catalog})

	hits, err := aligner.RoughAlign([]cluster.TileKey{key}, 0, 100, 6)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func jitterCatalog(canvas *numeric.Grid, rng *rand.Rand, sigma float64) []numeric.Point {
	var points []numeric.Point
	for r := 0; r < canvas.Rows; r++ {
		for c := 0; c < canvas.Cols; c++ {
			if canvas.At(r, c) > 0 {
				points = append(points, numeric.Point{
					R: float64(r) + rng.NormFloat64()*sigma,
					C: float64(c) + rng.NormFloat64()*sigma,
				})
			}
		}
	}
	return points
}
