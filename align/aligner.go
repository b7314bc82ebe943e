package align

import (
	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/ioadapter"
	"github.com/grailbio/flowcell-align/numeric"
)

// HittingTile is a candidate tile that cleared the SNR threshold
// during rough alignment, with its cross-correlation peak location.
type HittingTile struct {
	Key cluster.TileKey
	SNR float64
	Offset numeric.Point // argmax translation, in image pixels
}

// Aligner is bound to at most one Image at a time; re-binding via
// SetImageData invalidates any previous rough-alignment state. One
// Aligner is created per pipeline task and discarded after its result
// is enqueued; nothing it holds is shared with other goroutines, so no
// copying is needed — each task simply constructs its own.
type Aligner struct {
	store *cluster.TileStore
	micronsPerPixel float64

	image *ioadapter.Image
	catalog *ioadapter.Catalog

	hittingTiles []HittingTile
	pose numeric.Pose
	stats ioadapter.AlignmentStats

	hitReadPoints []numeric.Point
	hitReadNames []string
	residualsR []float64
	residualsC []float64
}

// NewAligner constructs an Aligner bound to store, the shared
// read-only tile point-cloud.
func NewAligner(store *cluster.TileStore, micronsPerPixel float64) *Aligner {
	return &Aligner{store: store, micronsPerPixel: micronsPerPixel}
}

// SetImageData binds img, resetting any hit state from a previous
// alignment.
func (a *Aligner) SetImageData(img *ioadapter.Image) {
	a.image = img
	a.hittingTiles = nil
	a.pose = numeric.Pose{}
	a.stats = ioadapter.AlignmentStats{}
}

// SetCatalog binds the source-extractor detections for the currently
// bound image.
func (a *Aligner) SetCatalog(catalog *ioadapter.Catalog) {
	a.catalog = catalog
}

// HittingTiles returns the tiles that cleared the SNR threshold in
// the last RoughAlign call, ordered by descending SNR.
func (a *Aligner) HittingTiles() []HittingTile {
	return a.hittingTiles
}

// Pose returns the aligner's current best pose (coarse after
// RoughAlign, refined after PrecisionAlign).
func (a *Aligner) Pose() numeric.Pose {
	return a.pose
}

// Stats returns the AlignmentStats accumulated by the last successful
// PrecisionAlign call.
func (a *Aligner) Stats() ioadapter.AlignmentStats {
	return a.stats
}

// CatalogPoints returns the source-extractor detections the last
// PrecisionAlign call matched against, for diagnostic rendering.
func (a *Aligner) CatalogPoints() []numeric.Point {
	if a.catalog == nil {
		return nil
	}
	return a.catalog.Points
}

// HitPoints returns the pose-transformed read positions of the last
// PrecisionAlign call's accepted hits, for diagnostic rendering.
func (a *Aligner) HitPoints() []numeric.Point {
	return a.hitReadPoints
}

// HitNames returns the read names of the last PrecisionAlign call's
// accepted hits, index-aligned with HitPoints.
func (a *Aligner) HitNames() []string {
	return a.hitReadNames
}

// Residuals returns the per-hit (r, c) residuals — transformed read
// position minus matched catalog point — from the last PrecisionAlign
// call.
func (a *Aligner) Residuals() (r, c []float64) {
	return a.residualsR, a.residualsC
}
