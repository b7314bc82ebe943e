package bounds

import (
	"sync"

	"github.com/grailbio/base/log"
	"github.com/grailbio/flowcell-align/align"
	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/geometry"
	"github.com/grailbio/flowcell-align/ioadapter"
	"github.com/pkg/errors"
)

// ErrNoAlignment is fatal: every column was exhausted without any
// acquisition aligning.
var ErrNoAlignment = errors.New("bounds: exhausted all columns without any alignment")

// centralRows are the rows tried, in order, when probing a column for
// alignment.
var centralRows = []int{3, 4, 2}

// Acquisition is the minimal surface bounds.Find needs from an
// acquisition's image grid.
type Acquisition struct {
	Name string
	Base string // directory catalogs for this acquisition live under
	Grid *ioadapter.HDF5ImageGrid
}

// Result is one acquisition's discovered bounds and tile map.
type Result struct {
	MinColumn int
	MaxColumn int
	LeftTiles []cluster.TileKey
	RightTiles []cluster.TileKey
	TileMap geometry.TileMap
}

// Find runs bounds discovery for every acquisition in parallel
// against both the left and right side candidate tile keys. The
// rotation seed and tile width come from chip; the scale comes from
// micronsPerPixel and the SNR floor from snrThreshold.
func Find(acqs []Acquisition, store *cluster.TileStore, chip geometry.Chip, micronsPerPixel, snrThreshold float64) (map[string]Result, error) {
	leftBounds, err := findSide(acqs, store, chip, chip.LeftSideTileKeys(), micronsPerPixel, snrThreshold, true)
	if err != nil {
		return nil, err
	}
	rightBounds, err := findSide(acqs, store, chip, chip.RightSideTileKeys(), micronsPerPixel, snrThreshold, false)
	if err != nil {
		return nil, err
	}

	results := make(map[string]Result, len(acqs))
	for _, acq := range acqs {
		left := leftBounds[acq.Name]
		right := rightBounds[acq.Name]
		tm := geometry.ExpectedTileMap(left.tiles, right.tiles, left.column, right.column)
		results[acq.Name] = Result{
			MinColumn: left.column,
			MaxColumn: right.column,
			LeftTiles: left.tiles,
			RightTiles: right.tiles,
			TileMap: tm,
		}
	}
	return results, nil
}

type sideBound struct {
	tiles []cluster.TileKey
	column int
	found bool
}

// findSide scans columns looking for the first one where alignment
// succeeds, for one side of the flow cell. ascending selects the
// column scan direction: true for the left side (columns 0, 1, 2,..),
// false for the right side (columns max, max-1,..).
func findSide(acqs []Acquisition, store *cluster.TileStore, chip geometry.Chip, candidates []cluster.TileKey, micronsPerPixel, snrThreshold float64, ascending bool) (map[string]sideBound, error) {
	bounds := make(map[string]sideBound, len(acqs))
	var mu sync.Mutex

	columns := columnOrder(acqs, ascending)
	remaining := map[string]bool{}
	for _, acq := range acqs {
		remaining[acq.Name] = true
	}

	for _, col := range columns {
		if len(remaining) == 0 {
			break
		}
		var wg sync.WaitGroup
		for _, acq := range acqs {
			if !remaining[acq.Name] {
				continue
			}
			acq := acq
			wg.Add(1)
			go func() {
				defer wg.Done()
				tiles, ok := probeColumn(acq, store, chip, candidates, col, micronsPerPixel, snrThreshold)
				if !ok {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				if remaining[acq.Name] {
					bounds[acq.Name] = sideBound{tiles: tiles, column: col, found: true}
					delete(remaining, acq.Name)
				}
			}()
		}
		wg.Wait()
		if len(bounds) > 0 && len(remaining) == len(acqs)-len(bounds) {
			// At least one acquisition has reported a bound, so stop
			// scanning; acquisitions still without one inherit the
			// plurality bound below.
			break
		}
	}

	if len(bounds) == 0 {
		return nil, ErrNoAlignment
	}

	fallback := plurality(bounds)
	for _, acq := range acqs {
		if _, ok := bounds[acq.Name]; !ok {
			log.Debug.Printf("bounds: %s inherits plurality bound %+v", acq.Name, fallback)
			bounds[acq.Name] = fallback
		}
	}
	return bounds, nil
}

func columnOrder(acqs []Acquisition, ascending bool) []int {
	maxCols := 0
	for _, acq := range acqs {
		if c := acq.Grid.Columns(); c > maxCols {
			maxCols = c
		}
	}
	cols := make([]int, maxCols)
	for i := 0; i < maxCols; i++ {
		if ascending {
			cols[i] = i
		} else {
			cols[i] = maxCols - 1 - i
		}
	}
	return cols
}

func probeColumn(acq Acquisition, store *cluster.TileStore, chip geometry.Chip, candidates []cluster.TileKey, col int, micronsPerPixel, snrThreshold float64) ([]cluster.TileKey, bool) {
	for _, row := range centralRows {
		img, err := acq.Grid.Get(row, col)
		if err != nil || img == nil {
			continue
		}
		aligner := align.NewAligner(store, micronsPerPixel)
		aligner.SetImageData(img)
		catalog, err := ioadapter.TryReadCatalog(catalogPath(acq.Base, img))
		if err != nil || catalog == nil {
			continue
		}
		aligner.SetCatalog(catalog)
		hits, err := aligner.RoughAlign(candidates, chip.RotationEstimate(), chip.TileWidth(), snrThreshold)
		if err != nil || len(hits) == 0 {
			continue
		}
		keys := make([]cluster.TileKey, len(hits))
		for i, h := range hits {
			keys[i] = h.Key
		}
		return keys, true
	}
	return nil, false
}

// catalogPath mirrors the on-disk layout cmd/flowcell-align's own
// catalogPath helper uses for the main alignment pass: one ".cat" file
// per image index under the acquisition's base directory.
func catalogPath(acquisitionBase string, img *ioadapter.Image) string {
	return acquisitionBase + "/" + img.Index() + ".cat"
}

// plurality resolves the fallback bound for acquisitions that never
// aligned by taking two independent majority votes — one over tile
// keys, one over columns — rather than voting on the (tile, column)
// pair jointly, which would fragment ties across acquisitions that
// agree on the column but hit different candidate tiles.
func plurality(bounds map[string]sideBound) sideBound {
	tileVotes := map[cluster.TileKey]int{}
	columnVotes := map[int]int{}
	for _, b := range bounds {
		for _, t := range b.tiles {
			tileVotes[t]++
		}
		columnVotes[b.column]++
	}

	var bestTile cluster.TileKey
	bestTileCount := -1
	for t, v := range tileVotes {
		if v > bestTileCount {
			bestTile, bestTileCount = t, v
		}
	}

	var bestColumn int
	bestColumnCount := -1
	for c, v := range columnVotes {
		if v > bestColumnCount {
			bestColumn, bestColumnCount = c, v
		}
	}

	return sideBound{tiles: []cluster.TileKey{bestTile}, column: bestColumn, found: true}
}
