package cluster

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReadIdempotent(t *testing.T) {
	name := "INSTRUMENT:42:FLOWCELL:1:2119:12345:6789"
	read, key, ok := ParseRead(name)
	require.True(t, ok)
	assert.Equal(t, TileKey("lane1tile2119"), key)
	assert.Equal(t, 12345, read.R)
	assert.Equal(t, 6789, read.C)

	// Parsing twice must produce the same key, grouping identical
	// reads together.
	_, key2, ok2 := ParseRead(name)
	require.True(t, ok2)
	assert.Equal(t, key, key2)
}

func TestParseReadInvalid(t *testing.T) {
	_, _, ok := ParseRead("not:enough:fields")
	assert.False(t, ok)
}

func TestLoadReadsGroupsAndDedupes(t *testing.T) {
	input := strings.Join([]string{
		"INSTRUMENT:42:FLOWCELL:1:2119:100:200",
		"INSTRUMENT:42:FLOWCELL:1:2119:100:200", // duplicate
		"INSTRUMENT:42:FLOWCELL:1:2119:300:400",
		"INSTRUMENT:42:FLOWCELL:1:2111:1:2",
		"garbage line",
		"",
	}, "\n")
	store, err := loadReads(strings.NewReader(input))
	require.NoError(t, err)

	tile := store.Tile("lane1tile2119")
	require.NotNil(t, tile)
	assert.Len(t, tile.Reads, 2)

	other := store.Tile("lane1tile2111")
	require.NotNil(t, other)
	assert.Len(t, other.Reads, 1)
}
