package geometry

import (
	"testing"

	"github.com/grailbio/flowcell-align/cluster"
	"github.com/stretchr/testify/assert"
)

func TestExpectedTileMapBoundary(t *testing.T) {
	left := []cluster.TileKey{"lane1tile2119"}
	right := []cluster.TileKey{"lane1tile2111"}
	tm := ExpectedTileMap(left, right, 0, 8)

	assert.ElementsMatch(t, []cluster.TileKey{"lane1tile2119", "lane1tile2118"}, tm[0])
	assert.ElementsMatch(t, []cluster.TileKey{"lane1tile2111", "lane1tile2112"}, tm[8])

	for col := 1; col < 8; col++ {
		assert.Lenf(t, tm[col], 3, "column %d should have three candidate keys", col)
	}
}
