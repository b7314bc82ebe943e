package ioadapter

import (
	"github.com/grailbio/flowcell-align/numeric"
	"github.com/pkg/errors"
	"gonum.org/v1/hdf5"
)

// HDF5ImageGrid reads one channel's (row, column, pixels) dataset out
// of an acquisition's HDF5 file. One HDF5ImageGrid wraps exactly one
// open file handle and is not safe to share across goroutines unless
// the caller knows, as cmd/flowcell-align does, that the grid is
// read-only after open.
type HDF5ImageGrid struct {
	file *hdf5.File
	group *hdf5.Group
	dataset *hdf5.Dataset
	columns int
	rows int // acquisition grid rows, i.e. the grid's "height" in tiles
	height int
	width int

	// data holds the whole channel's pixels, read once at open time.
	// Acquisitions are sharded one HDF5 file per concentration, so a
	// worker only ever opens a handful of these concurrently; reading
	// eagerly keeps Get() simple and avoids depending on a
	// hyperslab-selection API surface this module does not otherwise
	// need.
	data []float32
}

// OpenHDF5ImageGrid opens path and binds to the dataset for channel.
func OpenHDF5ImageGrid(path, channel string) (*HDF5ImageGrid, error) {
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, errors.Wrapf(err, "ioadapter: opening HDF5 file %s", path)
	}
	group, err := f.OpenGroup(channel)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "ioadapter: opening channel group %q in %s", channel, path)
	}
	dataset, err := group.OpenDataset("images")
	if err != nil {
		group.Close()
		f.Close()
		return nil, errors.Wrapf(err, "ioadapter: opening images dataset for channel %q", channel)
	}
	space := dataset.Space()
	dims, _, err := space.SimpleExtentDims()
	if err != nil || len(dims) != 4 {
		dataset.Close()
		group.Close()
		f.Close()
		return nil, errors.Errorf("ioadapter: unexpected dataset rank for channel %q", channel)
	}
	g := &HDF5ImageGrid{
		file: f,
		group: group,
		dataset: dataset,
		rows: int(dims[0]),
		columns: int(dims[1]),
		height: int(dims[2]),
		width: int(dims[3]),
	}
	g.data = make([]float32, g.rows*g.columns*g.height*g.width)
	if err := dataset.Read(&g.data); err != nil {
		g.Close()
		return nil, errors.Wrapf(err, "ioadapter: reading dataset for channel %q", channel)
	}
	return g, nil
}

// Columns returns the number of image columns in the acquisition grid.
func (g *HDF5ImageGrid) Columns() int { return g.columns }

// Height returns the number of image rows in the acquisition grid,
// distinct from a single image's pixel height.
func (g *HDF5ImageGrid) Height() int { return g.rows }

// Get reads the image at (row, column), returning (nil, nil) if it is
// missing — e.g. a short row at the edge of the flow cell — rather
// than an error.
func (g *HDF5ImageGrid) Get(row, column int) (*Image, error) {
	if row < 0 || row >= g.rows || column < 0 || column >= g.columns {
		return nil, nil
	}
	fovSize := g.height * g.width
	offset := (row*g.columns + column) * fovSize
	grid := numeric.NewGrid(g.height, g.width)
	raw := grid.Raw()
	var nonzero bool
	for i := 0; i < fovSize; i++ {
		v := g.data[offset+i]
		if v != 0 {
			nonzero = true
		}
		raw[i] = float64(v)
	}
	if !nonzero {
		// An all-zero field of view means the acquisition grid has no
		// image at this position (short row/column at the flow cell
		// edge); treat it the same as a missing dataset entry.
		return nil, nil
	}
	return NewImage(grid, row, column)
}

// Close releases the dataset, group, and file handles.
func (g *HDF5ImageGrid) Close() error {
	g.dataset.Close()
	g.group.Close()
	return g.file.Close()
}
