package cluster

// Tile groups the Reads sharing one sequencer tile key. Reads are
// stored in the order they were first seen in the reads file; Tile is
// immutable after LoadReads returns.
type Tile struct {
	Key TileKey
	Reads []Read
}

// Bounds returns the bounding rectangle (in sequencer units) enclosing
// every read in the tile.
func (t Tile) Bounds() (minR, minC, maxR, maxC int) {
	if len(t.Reads) == 0 {
		return 0, 0, 0, 0
	}
	minR, minC = t.Reads[0].R, t.Reads[0].C
	maxR, maxC = minR, minC
	for _, r := range t.Reads[1:] {
		if r.R < minR {
			minR = r.R
		}
		if r.R > maxR {
			maxR = r.R
		}
		if r.C < minC {
			minC = r.C
		}
		if r.C > maxC {
			maxC = r.C
		}
	}
	return minR, minC, maxR, maxC
}

// Centroid returns the mean (r, c) of the tile's reads, in sequencer
// units. Used to center the random angular shuffles of the SNR-floor
// significance test.
func (t Tile) Centroid() (r, c float64) {
	if len(t.Reads) == 0 {
		return 0, 0
	}
	var sumR, sumC float64
	for _, read := range t.Reads {
		sumR += float64(read.R)
		sumC += float64(read.C)
	}
	n := float64(len(t.Reads))
	return sumR / n, sumC / n
}
