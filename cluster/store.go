package cluster

import (
	"bufio"
	"io"
	"os"

	"github.com/grailbio/base/log"
	"github.com/pkg/errors"
)

// TileStore holds every Tile loaded from a reads file, keyed by
// TileKey. It is built once per pipeline run (LoadReads) and shared
// read-only across every worker goroutine in pipeline.Orchestrator:
// no per-task copy is needed because nothing here is ever mutated
// after LoadReads returns.
type TileStore struct {
	tiles map[TileKey]*Tile
}

// Tile returns the tile for key, or nil if unknown.
func (s *TileStore) Tile(key TileKey) *Tile {
	return s.tiles[key]
}

// Keys returns every tile key present in the store, in no particular
// order.
func (s *TileStore) Keys() []TileKey {
	keys := make([]TileKey, 0, len(s.tiles))
	for k := range s.tiles {
		keys = append(keys, k)
	}
	return keys
}

// LoadReads parses a reads file, one Illumina read name per line,
// grouping reads under their tile key. Invalid lines
// are skipped with a debug-level log, never an error. Duplicate reads
// within a tile (the rare case of the same read name appearing twice
// in the input) are collapsed to a single entry.
func LoadReads(path string) (*TileStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cluster: opening reads file %s", path)
	}
	defer f.Close()
	return loadReads(f)
}

func loadReads(r io.Reader) (*TileStore, error) {
	seen := map[TileKey]map[string]bool{}
	order := map[TileKey][]Read{}

	scanner := bufio.NewScanner(r)
	// Illumina read names plus any trailing annotation fields can run
	// long; grow the scanner's buffer past bufio's 64KiB default line
	// cap so a single malformed long line doesn't abort the whole load.
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		read, key, ok := ParseRead(line)
		if !ok {
			log.Debug.Printf("cluster: skipping unparseable read line %q", line)
			continue
		}
		if seen[key] == nil {
			seen[key] = map[string]bool{}
		}
		if seen[key][read.Name] {
			continue
		}
		seen[key][read.Name] = true
		order[key] = append(order[key], read)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "cluster: scanning reads file")
	}

	tiles := make(map[TileKey]*Tile, len(order))
	for key, reads := range order {
		tiles[key] = &Tile{Key: key, Reads: reads}
	}
	return &TileStore{tiles: tiles}, nil
}
