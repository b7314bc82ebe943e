package ioadapter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grailbio/base/log"
	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/numeric"
	"github.com/pkg/errors"
)

// MappedRead is one read's transformed position, written by
// WriteAlignment into the *_all_read_rcs.txt file.
type MappedRead struct {
	Name string
	R, C float64
}

// WriteAlignment writes the stats and all-read-rcs files for one
// successful alignment into resultsDir/acquisitionBase/, refusing to
// overwrite a previously-written stats file whose score is higher than
// or equal to the candidate's.
// It returns (written=false, nil) when the existing file's score
// wins, never an error in that case.
func WriteAlignment(resultsDir, acquisitionBase, imageIndex string, stats AlignmentStats, reads []MappedRead) (written bool, err error) {
	dir := filepath.Join(resultsDir, acquisitionBase)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, errors.Wrapf(err, "ioadapter: creating results dir %s", dir)
	}

	statsPath := filepath.Join(dir, imageIndex+"_stats.txt")
	existing, readErr := ReadStats(statsPath)
	// ErrCorruptStats and a missing file both yield an existing score
	// of 0; only an I/O error unrelated to parsing should abort the
	// write.
	if readErr != nil && errors.Cause(readErr) != ErrCorruptStats {
		return false, readErr
	}
	if existing.Score >= stats.Score {
		log.Debug.Printf("ioadapter: keeping existing stats for %s (score %g >= %g)",
			imageIndex, existing.Score, stats.Score)
		return false, nil
	}

	if err := WriteStats(statsPath, stats); err != nil {
		return false, err
	}

	rcsPath := filepath.Join(dir, imageIndex+"_all_read_rcs.txt")
	if err := writeMappedReads(rcsPath, reads); err != nil {
		return false, err
	}
	return true, nil
}

func writeMappedReads(path string, reads []MappedRead) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "ioadapter: creating %s", path)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, r := range reads {
		fmt.Fprintf(w, "%s %g %g\n", r.Name, r.R, r.C)
	}
	return w.Flush()
}

// WriteIntensities writes the "<image_index>_intensities.txt"
// diagnostic: one line per accepted hit giving the read's name, its
// pose-transformed (row, column) in image-pixel space, and the raw
// pixel intensity the image carries there. Nearest-pixel sampling is
// sufficient since this file is read by humans inspecting signal
// strength, not fed back into the registration math. It is written
// best-effort, alongside the stats and all-read-rcs files, and never
// aborts a successful alignment write.
func WriteIntensities(resultsDir, acquisitionBase, imageIndex string, img *Image, names []string, points []numeric.Point) error {
	dir := filepath.Join(resultsDir, acquisitionBase)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "ioadapter: creating results dir %s", dir)
	}
	path := filepath.Join(dir, imageIndex+"_intensities.txt")
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "ioadapter: creating %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, name := range names {
		p := points[i]
		r, c := int(p.R+0.5), int(p.C+0.5)
		var intensity float64
		if img.Data.InBounds(r, c) {
			intensity = img.Data.At(r, c)
		}
		fmt.Fprintf(w, "%s %g %g %g\n", name, p.R, p.C, intensity)
	}
	return w.Flush()
}

// MappedReadsFromTiles projects every read in the given tile keys
// through pose, used to build the whole-tile-union output the writer
// requires.
func MappedReadsFromTiles(store *cluster.TileStore, keys []cluster.TileKey, apply func(r, c float64) (float64, float64)) []MappedRead {
	var out []MappedRead
	for _, k := range keys {
		tile := store.Tile(k)
		if tile == nil {
			continue
		}
		for _, read := range tile.Reads {
			r, c := apply(float64(read.R), float64(read.C))
			out = append(out, MappedRead{Name: read.Name, R: r, C: c})
		}
	}
	return out
}
