package geometry

import "github.com/grailbio/flowcell-align/cluster"

// Chip is the chip-geometry collaborator interface: a per-chip-type
// source of rough-alignment seed parameters and of the left/right
// candidate tile keys bounds.Find probes.
type Chip interface {
	LeftSideTileKeys() []cluster.TileKey
	RightSideTileKeys() []cluster.TileKey
	RotationEstimate() float64 // degrees
	TileWidth() float64 // microns
}

// StaticChip is a configuration-driven Chip: the candidate tile keys
// and rough-alignment seed parameters are supplied directly rather
// than derived from a chip-type enumeration, which remains out of
// scope.
type StaticChip struct {
	LeftKeys []cluster.TileKey
	RightKeys []cluster.TileKey
	Rotation float64
	Width float64
}

func (c StaticChip) LeftSideTileKeys() []cluster.TileKey { return c.LeftKeys }
func (c StaticChip) RightSideTileKeys() []cluster.TileKey { return c.RightKeys }
func (c StaticChip) RotationEstimate() float64 { return c.Rotation }
func (c StaticChip) TileWidth() float64 { return c.Width }
