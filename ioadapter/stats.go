package ioadapter

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/numeric"
	"github.com/pkg/errors"
)

// ErrCorruptStats marks a stats file that could not be parsed. A
// corrupt stats file is treated as score 0, so any successful new
// alignment overwrites it; it is never fatal.
var ErrCorruptStats = errors.New("ioadapter: corrupt stats file")

// AlignmentStats is the persisted record of one image's alignment:
// which tiles were used, the final pose, hit counts, and a score used
// to arbitrate between rival alignments of the same image.
type AlignmentStats struct {
	Tiles []cluster.TileKey
	RCOffsets []numeric.Point // coarse per-tile argmax offsets, the "rc_offset" field
	Pose numeric.Pose
	ExclusiveHits int
	GoodMutualHits int
	BadMutualHits int
	NonMutualHits int
	ResidualR float64
	ResidualC float64
	Score float64
}

// ScoreWeight is the fixed weight w in score = exclusive + w*good_mutual.
const ScoreWeight = 0.5

// WriteStats serializes stats as key:value lines to path.
func WriteStats(path string, stats AlignmentStats) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "ioadapter: creating stats file %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	tileNames := make([]string, len(stats.Tiles))
	for i, t := range stats.Tiles {
		tileNames[i] = string(t)
	}
	fmt.Fprintf(w, "tile:%s\n", strings.Join(tileNames, ","))

	offsets := make([]string, len(stats.RCOffsets))
	for i, o := range stats.RCOffsets {
		offsets[i] = fmt.Sprintf("(%g,%g)", o.R, o.C)
	}
	fmt.Fprintf(w, "rc_offset:%s\n", strings.Join(offsets, ","))
	fmt.Fprintf(w, "rotation:%g\n", stats.Pose.Theta)
	fmt.Fprintf(w, "scale:%g\n", stats.Pose.Scale)
	fmt.Fprintf(w, "dr:%g\n", stats.Pose.DR)
	fmt.Fprintf(w, "dc:%g\n", stats.Pose.DC)
	fmt.Fprintf(w, "exclusive_hits:%d\n", stats.ExclusiveHits)
	fmt.Fprintf(w, "good_mutual_hits:%d\n", stats.GoodMutualHits)
	fmt.Fprintf(w, "bad_mutual_hits:%d\n", stats.BadMutualHits)
	fmt.Fprintf(w, "non_mutual_hits:%d\n", stats.NonMutualHits)
	fmt.Fprintf(w, "residual_r:%g\n", stats.ResidualR)
	fmt.Fprintf(w, "residual_c:%g\n", stats.ResidualC)
	fmt.Fprintf(w, "score:%g\n", stats.Score)
	return w.Flush()
}

// ReadStats parses a previously-written stats file. A malformed file
// returns ErrCorruptStats, never a fatal error.
func ReadStats(path string) (AlignmentStats, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return AlignmentStats{}, nil
		}
		return AlignmentStats{}, errors.Wrapf(err, "ioadapter: opening stats file %s", path)
	}
	defer f.Close()

	kv := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		kv[line[:idx]] = line[idx+1:]
	}
	if err := scanner.Err(); err != nil {
		return AlignmentStats{}, errors.Wrap(err, "ioadapter: scanning stats file")
	}

	stats, err := parseStatsKV(kv)
	if err != nil {
		log.Debug.Printf("ioadapter: %s is corrupt, treating as score 0: %v", path, err)
		return AlignmentStats{Score: 0}, ErrCorruptStats
	}
	return stats, nil
}

func parseStatsKV(kv map[string]string) (AlignmentStats, error) {
	var stats AlignmentStats
	if tiles := kv["tile"]; tiles != "" {
		for _, t := range strings.Split(tiles, ",") {
			stats.Tiles = append(stats.Tiles, cluster.TileKey(t))
		}
	}
	var err error
	if stats.Pose.Theta, err = parseFloatKV(kv, "rotation"); err != nil {
		return stats, err
	}
	if stats.Pose.Scale, err = parseFloatKV(kv, "scale"); err != nil {
		return stats, err
	}
	if stats.Pose.DR, err = parseFloatKV(kv, "dr"); err != nil {
		return stats, err
	}
	if stats.Pose.DC, err = parseFloatKV(kv, "dc"); err != nil {
		return stats, err
	}
	if stats.ExclusiveHits, err = parseIntKV(kv, "exclusive_hits"); err != nil {
		return stats, err
	}
	if stats.GoodMutualHits, err = parseIntKV(kv, "good_mutual_hits"); err != nil {
		return stats, err
	}
	stats.BadMutualHits, _ = parseIntKV(kv, "bad_mutual_hits")
	stats.NonMutualHits, _ = parseIntKV(kv, "non_mutual_hits")
	stats.ResidualR, _ = parseFloatKV(kv, "residual_r")
	stats.ResidualC, _ = parseFloatKV(kv, "residual_c")
	if stats.Score, err = parseFloatKV(kv, "score"); err != nil {
		return stats, err
	}
	return stats, nil
}

func parseFloatKV(kv map[string]string, key string) (float64, error) {
	v, ok := kv[key]
	if !ok {
		return 0, errors.Errorf("ioadapter: stats missing key %q", key)
	}
	return strconv.ParseFloat(v, 64)
}

func parseIntKV(kv map[string]string, key string) (int, error) {
	v, ok := kv[key]
	if !ok {
		return 0, errors.Errorf("ioadapter: stats missing key %q", key)
	}
	return strconv.Atoi(v)
}
