package cluster

import (
	"github.com/grailbio/flowcell-align/numeric"
)

// PointCloud is a view over a TileStore restricted to a set of tile
// keys. It stores no point arrays of its own: Reads and Render derive
// them from the store on each call.
type PointCloud struct {
	store *TileStore
	keys []TileKey
}

// NewPointCloud returns a PointCloud over the given tile keys, read
// from store. Keys missing from the store are silently ignored (they
// simply contribute no points), since the bounds finder and aligner
// probe candidate keys speculatively.
func NewPointCloud(store *TileStore, keys []TileKey) *PointCloud {
	return &PointCloud{store: store, keys: keys}
}

// Reads returns every Read across the point cloud's tiles, in tile
// order.
func (pc *PointCloud) Reads() []Read {
	var out []Read
	for _, k := range pc.keys {
		if t := pc.store.Tile(k); t != nil {
			out = append(out, t.Reads...)
		}
	}
	return out
}

// Render rasterizes every read's sequencer-space (r, c) coordinate
// under pose into a float canvas of the given shape, accumulating +1
// per point so that multiple points landing on one pixel add up.
// Points falling outside the canvas are dropped.
func (pc *PointCloud) Render(pose numeric.Pose, rows, cols int) *numeric.Grid {
	canvas := numeric.NewGrid(rows, cols)
	for _, read := range pc.Reads() {
		r, c := read.Point()
		p := pose.Apply(numeric.Point{R: r, C: c})
		ri, ci := int(p.R+0.5), int(p.C+0.5)
		if canvas.InBounds(ri, ci) {
			canvas.Add(ri, ci, 1)
		}
	}
	return canvas
}

// RenderTile rasterizes a single tile's reads under pose, the form
// rough alignment uses to render each candidate tile on its own. The
// SNR shuffles render their rotated copies separately.
func RenderTile(store *TileStore, key TileKey, pose numeric.Pose, rows, cols int) *numeric.Grid {
	return NewPointCloud(store, []TileKey{key}).Render(pose, rows, cols)
}
