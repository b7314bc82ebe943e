package cluster

// NewTileStoreForTest builds a TileStore directly from a tile map,
// bypassing LoadReads's file parsing. Exported (rather than living in
// an _test.go file) so other packages' tests can build synthetic tile
// stores without round-tripping through a reads file on disk.
func NewTileStoreForTest(tiles map[TileKey]*Tile) *TileStore {
	return &TileStore{tiles: tiles}
}
