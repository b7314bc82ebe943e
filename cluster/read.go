package cluster

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
)

// TileKey identifies a sequencer tile as "lane{L}tile{T}", e.g.
// "lane1tile2119".
type TileKey string

// NewTileKey formats a (lane, tile) pair into the canonical key.
func NewTileKey(lane, tile int) TileKey {
	return TileKey(fmt.Sprintf("lane%dtile%d", lane, tile))
}

// Read is a single DNA cluster: its Illumina read name and its
// integer (R, C) coordinate in sequencer units. Reads are immutable
// once parsed.
type Read struct {
	Name string
	R, C int
}

// Point returns the read's sequencer coordinate as a (row, col) pair
// of float64, computed on demand: image-space conversion is never
// cached on the Read itself.
func (r Read) Point() (row, col float64) {
	return float64(r.R), float64(r.C)
}

// ParseReadTile extracts the (lane, tile) pair from an Illumina read
// name by splitting on ':' and taking the 4th- and 3rd-from-last
// fields, the same field arithmetic other Illumina read-name parsers
// use for their tile/lane fields, but simplified to just the 2-field
// (lane, tile) pair needed here rather than a full surface/swath/
// section decomposition of the tile name, since the sequencer tile key
// is opaque here.
func ParseReadTile(name string) (lane, tile int, ok bool) {
	fields := strings.Split(name, ":")
	if len(fields) < 4 {
		return 0, 0, false
	}
	laneField := fields[len(fields)-4]
	tileField := fields[len(fields)-3]
	laneN, err := strconv.Atoi(laneField)
	if err != nil {
		return 0, 0, false
	}
	tileN, err := strconv.Atoi(tileField)
	if err != nil {
		return 0, 0, false
	}
	return laneN, tileN, true
}

// ParseReadRC extracts the (r, c) cluster coordinate, the 2nd- and
// 1st-from-last ':'-separated fields of an Illumina read name.
func ParseReadRC(name string) (r, c int, ok bool) {
	fields := strings.Split(name, ":")
	if len(fields) < 2 {
		return 0, 0, false
	}
	rN, err := strconv.Atoi(fields[len(fields)-2])
	if err != nil {
		return 0, 0, false
	}
	cN, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, 0, false
	}
	return rN, cN, true
}

// ParseRead parses a full Illumina read name into a Read plus its
// tile key. It returns ok=false (and logs at debug level, since
// invalid lines are skipped with a warning rather than aborting the
// load) for malformed names.
func ParseRead(name string) (read Read, key TileKey, ok bool) {
	lane, tile, ok := ParseReadTile(name)
	if !ok {
		log.Debug.Printf("cluster: could not parse lane/tile from read name %q", name)
		return Read{}, "", false
	}
	r, c, ok := ParseReadRC(name)
	if !ok {
		log.Debug.Printf("cluster: could not parse r/c from read name %q", name)
		return Read{}, "", false
	}
	return Read{Name: name, R: r, C: c}, NewTileKey(lane, tile), true
}
