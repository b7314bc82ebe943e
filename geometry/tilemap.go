package geometry

import (
	"regexp"
	"strconv"

	"github.com/grailbio/flowcell-align/cluster"
)

// TileMap maps an acquisition column index to the 1-3 candidate tile
// keys that column most likely sees.
type TileMap map[int][]cluster.TileKey

var tileKeyPattern = regexp.MustCompile(`^(lane\d+tile)(\d+)$`)

// ExpectedTileMap builds the interior tile map by linearly
// interpolating tile numbers across [minCol, maxCol] between left's
// and right's tile numbers, adding the neighboring tile number at
// either boundary column.
// left and right must each contain exactly one tile key sharing a
// lane prefix (the common case bounds.Find produces); keys that don't
// parse as "lane{L}tile{T}" are dropped from the result with no
// candidates synthesized for them.
func ExpectedTileMap(left, right []cluster.TileKey, minCol, maxCol int) TileMap {
	tm := TileMap{}
	if len(left) == 0 || len(right) == 0 || maxCol <= minCol {
		return tm
	}
	prefix, leftNum, ok := parseTileKey(left[0])
	if !ok {
		return tm
	}
	_, rightNum, ok := parseTileKey(right[0])
	if !ok {
		return tm
	}

	span := maxCol - minCol
	for col := minCol; col <= maxCol; col++ {
		frac := float64(col-minCol) / float64(span)
		primary := int(round(float64(leftNum) + frac*float64(rightNum-leftNum)))

		var keys []cluster.TileKey
		switch col {
		case minCol:
			keys = []cluster.TileKey{
				makeTileKey(prefix, primary),
				makeTileKey(prefix, primary+sign(rightNum-leftNum)),
			}
		case maxCol:
			keys = []cluster.TileKey{
				makeTileKey(prefix, primary),
				makeTileKey(prefix, primary-sign(rightNum-leftNum)),
			}
		default:
			keys = []cluster.TileKey{
				makeTileKey(prefix, primary-1),
				makeTileKey(prefix, primary),
				makeTileKey(prefix, primary+1),
			}
		}
		tm[col] = keys
	}
	return tm
}

func parseTileKey(key cluster.TileKey) (prefix string, number int, ok bool) {
	m := tileKeyPattern.FindStringSubmatch(string(key))
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], n, true
}

func makeTileKey(prefix string, number int) cluster.TileKey {
	return cluster.TileKey(prefix + strconv.Itoa(number))
}

func sign(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}

func round(f float64) float64 {
	if f < 0 {
		return float64(int(f - 0.5))
	}
	return float64(int(f + 0.5))
}
