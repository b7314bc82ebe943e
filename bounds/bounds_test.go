package bounds

import (
	"testing"

	"github.com/grailbio/flowcell-align/cluster"
)

func TestPluralityPicksMostVotedBound(t *testing.T) {
	bounds := map[string]sideBound{
		"acq-a": {tiles: []cluster.TileKey{"lane1tile1101"}, column: 3},
		"acq-b": {tiles: []cluster.TileKey{"lane1tile1101"}, column: 3},
		"acq-c": {tiles: []cluster.TileKey{"lane1tile1102"}, column: 4},
	}
	got := plurality(bounds)
	if got.column != 3 || got.tiles[0] != "lane1tile1101" {
		t.Fatalf("plurality() = %+v, want column 3 tile lane1tile1101", got)
	}
}

func TestErrNoAlignmentWhenNoAcquisitionsProvided(t *testing.T) {
	store := cluster.NewTileStoreForTest(map[cluster.TileKey]*cluster.Tile{})
	_, err := findSide(nil, store, nil, nil, 1.0, 6.0, true)
	if err != ErrNoAlignment {
		t.Fatalf("findSide() error = %v, want ErrNoAlignment", err)
	}
}
