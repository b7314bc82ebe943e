package pipeline

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/flowcell-align/align"
	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/geometry"
	"github.com/grailbio/flowcell-align/ioadapter"
	"github.com/grailbio/flowcell-align/numeric"
)

// MinHits is the minimum combined exclusive/good-mutual hit count
// PrecisionAlign requires to accept an alignment.
const MinHits = 20

// Parallelism returns the default worker count for an Orchestrator:
// runtime.NumCPU()-3, floored at 1, reserving a few cores for the
// writer and producer goroutines.
func Parallelism() int {
	n := runtime.NumCPU() - 3
	if n < 1 {
		return 1
	}
	return n
}

// Task is one image to align: its acquisition, on-disk location, and
// the candidate tile keys bounds.Find assigned to its column.
type Task struct {
	Acquisition string
	ResultsDir string
	Row, Column int
	CatalogPath string
	Candidates []cluster.TileKey
	TileWidthMicron float64
	RotationDeg float64
	SNRThreshold float64
}

// ImageSource loads the pixel grid for one task; pipeline.Orchestrator
// is parameterized over it so tests can substitute a synthetic
// in-memory source instead of opening HDF5 files.
type ImageSource interface {
	Image(task Task) (*ioadapter.Image, error)
}

// Orchestrator runs the bounded worker-pool alignment pass. One Orchestrator is built per pipeline run and is not
// reusable across runs.
type Orchestrator struct {
	Store *cluster.TileStore
	Source ImageSource
	MicronsPerPixel float64
	Parallelism int

	// FiguresDir, if non-empty, enables best-effort PDF diagnostic
	// rendering for every successfully aligned task, written under
	// FiguresDir/<acquisition>/<image_index>_*.pdf. Left empty,
	// diagnostics are skipped.
	FiguresDir string
}

// taskResult pairs a task with its completed alignment, or carries a
// per-task error for the writer to log and skip.
type taskResult struct {
	task Task
	stats ioadapter.AlignmentStats
	reads []ioadapter.MappedRead
	err error

	catalogPoints []numeric.Point
	hitPoints []numeric.Point
	hitNames []string
	residualsR []float64
	residualsC []float64
	image *ioadapter.Image
}

// Run drains tasks through the worker pool and blocks until every
// result has been written. A panic inside one worker's alignment of a
// single task is recovered, logged, and does not abort the other
// workers; it is recorded via errOnce and returned once the whole run
// has drained, so a caller that wants fail-fast behavior still
// eventually sees an error. A synchronous per-task error
// (ErrInsufficientHits, ErrNoHittingTiles, ..) is only logged: those
// are expected outcomes for some fraction of images, not run failures.
func (o *Orchestrator) Run(tasks []Task) error {
	parallelism := o.Parallelism
	if parallelism < 1 {
		parallelism = Parallelism()
	}

	taskCh := make(chan Task, parallelism)
	go func() {
		for _, t := range tasks {
			taskCh <- t
		}
		close(taskCh)
	}()

	resultCh := make(chan taskResult, len(tasks))
	errOnce := errors.Once{}

	var workers sync.WaitGroup
	for w := 0; w < parallelism; w++ {
		workers.Add(1)
		go func(worker int) {
			defer workers.Done()
			for task := range taskCh {
				resultCh <- o.runTask(worker, task, &errOnce)
			}
		}(w)
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for res := range resultCh {
			o.writeResult(res)
		}
	}()

	workers.Wait()
	close(resultCh)
	<-writerDone

	return errOnce.Err()
}

// runTask performs one task's rough-then-precision alignment,
// recovering from any panic raised inside it so one corrupt image
// cannot take down the whole pool.
func (o *Orchestrator) runTask(worker int, task Task, errOnce *errors.Once) (res taskResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error.Printf("pipeline: worker %d recovered panic on %s/%d_%d: %v",
				worker, task.Acquisition, task.Row, task.Column, r)
			errOnce.Set(fmt.Errorf("pipeline: panic aligning %s/%d_%d: %v", task.Acquisition, task.Row, task.Column, r))
			res = taskResult{task: task, err: errOnce.Err()}
		}
	}()

	img, err := o.Source.Image(task)
	if err != nil {
		return taskResult{task: task, err: err}
	}
	if img == nil {
		return taskResult{task: task, err: nil}
	}

	catalog, err := ioadapter.TryReadCatalog(task.CatalogPath)
	if err != nil {
		return taskResult{task: task, err: err}
	}
	if catalog == nil {
		log.Debug.Printf("pipeline: no catalog for %s/%d_%d, skipping", task.Acquisition, task.Row, task.Column)
		return taskResult{task: task, err: nil}
	}

	aligner := align.NewAligner(o.Store, o.MicronsPerPixel)
	aligner.SetImageData(img)
	aligner.SetCatalog(catalog)

	hits, err := aligner.RoughAlign(task.Candidates, task.RotationDeg, task.TileWidthMicron, task.SNRThreshold)
	if err != nil {
		return taskResult{task: task, err: err}
	}
	if len(hits) == 0 {
		log.Debug.Printf("pipeline: no hitting tiles for %s/%d_%d", task.Acquisition, task.Row, task.Column)
		return taskResult{task: task, err: nil}
	}

	if err := aligner.PrecisionAlign(MinHits); err != nil {
		log.Debug.Printf("pipeline: %s/%d_%d did not reach precision: %v", task.Acquisition, task.Row, task.Column, err)
		return taskResult{task: task, err: nil}
	}

	stats := aligner.Stats()
	pose := aligner.Pose()
	reads := ioadapter.MappedReadsFromTiles(o.Store, stats.Tiles, func(r, c float64) (float64, float64) {
		p := pose.Apply(numeric.Point{R: r, C: c})
		return p.R, p.C
	})
	residualsR, residualsC := aligner.Residuals()
	return taskResult{
		task: task,
		stats: stats,
		reads: reads,
		catalogPoints: aligner.CatalogPoints(),
		hitPoints: aligner.HitPoints(),
		hitNames: aligner.HitNames(),
		residualsR: residualsR,
		residualsC: residualsC,
		image: img,
	}
}

func (o *Orchestrator) writeResult(res taskResult) {
	if res.err != nil {
		log.Debug.Printf("pipeline: %s/%d_%d produced no alignment: %v", res.task.Acquisition, res.task.Row, res.task.Column, res.err)
		return
	}
	if res.reads == nil {
		return
	}
	imageIndex := fmt.Sprintf("%d_%d", res.task.Row, res.task.Column)
	written, err := ioadapter.WriteAlignment(res.task.ResultsDir, res.task.Acquisition, imageIndex, res.stats, res.reads)
	if err != nil {
		log.Error.Printf("pipeline: writing alignment for %s/%s: %v", res.task.Acquisition, imageIndex, err)
		return
	}
	if !written {
		log.Debug.Printf("pipeline: kept pre-existing higher-scoring alignment for %s/%s", res.task.Acquisition, imageIndex)
		return
	}
	if err := ioadapter.WriteIntensities(res.task.ResultsDir, res.task.Acquisition, imageIndex, res.image, res.hitNames, res.hitPoints); err != nil {
		log.Error.Printf("pipeline: writing intensities for %s/%s: %v", res.task.Acquisition, imageIndex, err)
	}
	if o.FiguresDir == "" {
		return
	}
	ioadapter.WriteHitScatterPDF(o.FiguresDir, res.task.Acquisition, imageIndex, res.catalogPoints, res.hitPoints)
	ioadapter.WriteHitHistogramsPDF(o.FiguresDir, res.task.Acquisition, imageIndex, res.residualsR, res.residualsC)
}

// BuildTasks expands a geometry.TileMap into one Task per image, for
// every row in [0, rows) of every column the map covers, sharing the
// common alignment parameters across every task.
func BuildTasks(acquisition, resultsDir string, rows int, tm geometry.TileMap, chip geometry.Chip, catalogPath func(row, col int) string, snrThreshold float64) []Task {
	var tasks []Task
	for col, candidates := range tm {
		for row := 0; row < rows; row++ {
			tasks = append(tasks, Task{
				Acquisition: acquisition,
				ResultsDir: resultsDir,
				Row: row,
				Column: col,
				CatalogPath: catalogPath(row, col),
				Candidates: candidates,
				TileWidthMicron: chip.TileWidth(),
				RotationDeg: chip.RotationEstimate(),
				SNRThreshold: snrThreshold,
			})
		}
	}
	return tasks
}
