package align

import (
	"github.com/grailbio/flowcell-align/ioadapter"
	"github.com/grailbio/flowcell-align/numeric"
)

// SeedFromStats reconstructs the coarse pose and hitting-tile set from
// a previously persisted AlignmentStats record and binds them to the
// aligner, so the next PrecisionAlign call refines an already-known
// transform instead of deriving one from RoughAlign.
func (a *Aligner) SeedFromStats(stats ioadapter.AlignmentStats) {
	a.pose = stats.Pose
	hits := make([]HittingTile, len(stats.Tiles))
	for i, key := range stats.Tiles {
		var offset numeric.Point
		if i < len(stats.RCOffsets) {
			offset = stats.RCOffsets[i]
		}
		hits[i] = HittingTile{Key: key, Offset: offset}
	}
	a.hittingTiles = hits
}
