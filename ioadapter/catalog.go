package ioadapter

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/grailbio/flowcell-align/numeric"
	"github.com/pkg/errors"
)

// ErrMissingCatalog is returned by ReadCatalog when the.cat file for
// an image does not exist. This is treated as a skip, not an error:
// callers compare errors.Cause(err) against ErrMissingCatalog, or use
// TryReadCatalog, which returns (nil, nil) for a missing file.
var ErrMissingCatalog = errors.New("ioadapter: catalog file missing")

// Catalog is the set of 2-D centroid points (in image pixels)
// detected by the external source extractor for one Image.
type Catalog struct {
	Points []numeric.Point
}

// ReadCatalog parses a whitespace-separated.cat file, taking the
// last two columns of every non-empty, non-comment line as (x, y)
// pixel coordinates. Comment lines begin with '#', the
// source-extractor convention.
func ReadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissingCatalog
		}
		return nil, errors.Wrapf(err, "ioadapter: opening catalog %s", path)
	}
	defer f.Close()

	var points []numeric.Point
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		x, errX := strconv.ParseFloat(fields[len(fields)-2], 64)
		y, errY := strconv.ParseFloat(fields[len(fields)-1], 64)
		if errX != nil || errY != nil {
			continue
		}
		// Catalog columns are (x, y) in image pixels; Point uses
		// (row, col), i.e. (y, x).
		points = append(points, numeric.Point{R: y, C: x})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "ioadapter: scanning catalog")
	}
	return &Catalog{Points: points}, nil
}

// TryReadCatalog is ReadCatalog but returns (nil, nil) instead of
// ErrMissingCatalog, matching the None-returning idiom used elsewhere
// for missing images, for callers (pipeline, bounds, secondchannel)
// that treat "no catalog" as a normal, non-error branch.
func TryReadCatalog(path string) (*Catalog, error) {
	cat, err := ReadCatalog(path)
	if errors.Cause(err) == ErrMissingCatalog {
		return nil, nil
	}
	return cat, err
}
