/*
  flowcell-align registers per-tile fluorescence images against a
  flow cell's sequenced DNA clusters. For more information, see
  github.com/grailbio/flowcell-align/align/doc.go
*/
package main

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/flowcell-align/bounds"
	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/geometry"
	"github.com/grailbio/flowcell-align/ioadapter"
	"github.com/grailbio/flowcell-align/pipeline"
	"github.com/grailbio/flowcell-align/secondchannel"
)

var (
	readsFile = flag.String("reads", "", "path to the reads file mapping read names to tile coordinates")
	acquisitionGlob = flag.String("acquisitions", "", "glob matching acquisition.yaml metadata sidecars, e.g. /data/*.yaml")
	resultsDir = flag.String("results-dir", "", "directory to write per-acquisition alignment results into")
	chipLeftTiles = flag.String("chip-left-tiles", "", "comma-separated candidate tile keys for the left edge of the flow cell")
	chipRightTiles = flag.String("chip-right-tiles", "", "comma-separated candidate tile keys for the right edge of the flow cell")
	chipRotation = flag.Float64("chip-rotation", 0, "rough-alignment seed rotation, in degrees")
	chipTileWidth = flag.Float64("chip-tile-width", 100, "tile width in microns, passed to rough alignment; the rough-alignment scale comes from microns_per_pixel")
	snrThreshold = flag.Float64("snr-threshold", 6.0, "SNR floor a candidate tile's cross-correlation peak must clear")
	parallelism = flag.Int("parallelism", 0, "first-channel worker count; 0 uses runtime.NumCPU()-3")
	secondChannels = flag.String("second-channels", "", "comma-separated non-alignment channels to re-align after the first pass")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a[len(a)-flag.NArg():], " "))
	}
	if *readsFile == "" || *acquisitionGlob == "" || *resultsDir == "" {
		log.Fatalf("-reads, -acquisitions, and -results-dir are required")
	}

	store, err := cluster.LoadReads(*readsFile)
	if err != nil {
		log.Fatalf("loading reads: %v", err)
	}

	metaPaths, err := filepath.Glob(*acquisitionGlob)
	if err != nil || len(metaPaths) == 0 {
		log.Fatalf("no acquisition metadata matched %q: %v", *acquisitionGlob, err)
	}

	chip := geometry.StaticChip{
		LeftKeys: splitTileKeys(*chipLeftTiles),
		RightKeys: splitTileKeys(*chipRightTiles),
		Rotation: *chipRotation,
		Width: *chipTileWidth,
	}

	acquisitions := make([]*acquisition, 0, len(metaPaths))
	boundsAcqs := make([]bounds.Acquisition, 0, len(metaPaths))
	for _, metaPath := range metaPaths {
		meta, err := ioadapter.ReadAcquisitionMeta(metaPath)
		if err != nil {
			log.Error.Printf("skipping %s: %v", metaPath, err)
			continue
		}
		base := strings.TrimSuffix(metaPath, filepath.Ext(metaPath))
		name := filepath.Base(base)
		grid, err := ioadapter.OpenHDF5ImageGrid(base+".h5", meta.AlignmentChannel)
		if err != nil {
			log.Error.Printf("skipping %s: %v", metaPath, err)
			continue
		}
		acq := &acquisition{name: name, base: base, meta: meta, metaPath: metaPath, alignmentGrid: grid}
		acquisitions = append(acquisitions, acq)
		boundsAcqs = append(boundsAcqs, bounds.Acquisition{Name: name, Base: base, Grid: grid})
	}
	if len(acquisitions) == 0 {
		log.Fatalf("no acquisition could be opened")
	}

	results, err := bounds.Find(boundsAcqs, store, chip, acquisitions[0].meta.MicronsPerPixel, *snrThreshold)
	if err != nil {
		log.Fatalf("bounds discovery: %v", err)
	}

	w := *parallelism
	if w <= 0 {
		w = pipeline.Parallelism()
	}
	log.Debug.Printf("running first-channel alignment with %d workers", w)

	for _, acq := range acquisitions {
		result := results[acq.name]
		acq.meta.EndTiles = &ioadapter.EndTilesCache{
			MinColumn: result.MinColumn,
			MaxColumn: result.MaxColumn,
			LeftTiles: tileKeyStrings(result.LeftTiles),
			RightTiles: tileKeyStrings(result.RightTiles),
		}
		if err := ioadapter.WriteAcquisitionMeta(acq.metaPath, acq.meta); err != nil {
			log.Error.Printf("caching bounds for %s: %v", acq.name, err)
		}

		tasks := pipeline.BuildTasks(acq.name, *resultsDir, acq.alignmentGrid.Height(), result.TileMap, chip,
			func(row, col int) string { return catalogPath(acq.base, row, col) }, *snrThreshold)

		orch := &pipeline.Orchestrator{
			Store: store,
			Source: gridSource{acq.alignmentGrid},
			MicronsPerPixel: acq.meta.MicronsPerPixel,
			Parallelism: w,
			FiguresDir: filepath.Join(*resultsDir, "figures"),
		}
		if err := orch.Run(tasks); err != nil {
			log.Error.Printf("first-channel alignment for %s: %v", acq.name, err)
		}
		acq.alignmentGrid.Close()
	}

	for _, channel := range splitNonEmpty(*secondChannels) {
		runSecondChannel(acquisitions, store, channel, *resultsDir)
	}

	log.Debug.Printf("exiting")
}

type acquisition struct {
	name string
	base string
	metaPath string
	meta *ioadapter.AcquisitionMeta
	alignmentGrid *ioadapter.HDF5ImageGrid
}

// gridSource adapts a single *ioadapter.HDF5ImageGrid, opened once and
// shared read-only across workers, to pipeline.ImageSource. Per-task
// HDF5 handles would mean re-reading the whole channel's
// dataset for every task; since HDF5ImageGrid loads its dataset
// eagerly at open time and Get never mutates it, sharing one open
// grid across goroutines is safe and avoids that redundant I/O.
type gridSource struct {
	grid *ioadapter.HDF5ImageGrid
}

func (s gridSource) Image(task pipeline.Task) (*ioadapter.Image, error) {
	return s.grid.Get(task.Row, task.Column)
}

func runSecondChannel(acquisitions []*acquisition, store *cluster.TileStore, channel, resultsDir string) {
	log.Debug.Printf("running second-channel alignment for channel %q with %d workers", channel, secondchannel.Parallelism())
	grids := make(map[string]*ioadapter.HDF5ImageGrid, len(acquisitions))
	defer func() {
		for _, g := range grids {
			g.Close()
		}
	}()

	for _, acq := range acquisitions {
		grid, err := ioadapter.OpenHDF5ImageGrid(acq.base+".h5", channel)
		if err != nil {
			log.Error.Printf("opening channel %q for %s: %v", channel, acq.name, err)
			continue
		}
		grids[acq.name] = grid

		jobs, err := secondchannel.DiscoverJobs(resultsDir, acq.name)
		if err != nil {
			log.Error.Printf("discovering second-channel jobs for %s: %v", acq.name, err)
			continue
		}
		for i := range jobs {
			jobs[i].CatalogPath = filepath.Join(acq.base, jobs[i].ImageIndex+".cat")
		}
		runner := &secondchannel.Runner{
			Store: store,
			Source: secondChannelSource{grids},
			MicronsPerPixel: acq.meta.MicronsPerPixel,
		}
		if err := runner.Run(jobs); err != nil {
			log.Error.Printf("second-channel alignment for %s/%s: %v", acq.name, channel, err)
		}
	}
}

type secondChannelSource struct {
	grids map[string]*ioadapter.HDF5ImageGrid
}

func (s secondChannelSource) Image(acquisition string, row, column int) (*ioadapter.Image, error) {
	grid, ok := s.grids[acquisition]
	if !ok {
		return nil, nil
	}
	return grid.Get(row, column)
}

func catalogPath(base string, row, col int) string {
	return filepath.Join(base, fmt.Sprintf("%d_%d.cat", row, col))
}

func splitTileKeys(raw string) []cluster.TileKey {
	var keys []cluster.TileKey
	for _, s := range splitNonEmpty(raw) {
		keys = append(keys, cluster.TileKey(s))
	}
	return keys
}

func tileKeyStrings(keys []cluster.TileKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

func splitNonEmpty(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
