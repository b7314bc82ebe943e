package secondchannel

import (
	"fmt"
	"io/ioutil"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/flowcell-align/align"
	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/ioadapter"
	"github.com/grailbio/flowcell-align/numeric"
)

// MinHits is the same hit-count floor the first-channel pass uses.
const MinHits = 20

// Parallelism returns the default worker count: runtime.NumCPU()-2,
// floored at 1, one more core than pipeline.Parallelism since rough
// alignment's FFT work is skipped here.
func Parallelism() int {
	n := runtime.NumCPU() - 2
	if n < 1 {
		return 1
	}
	return n
}

// Job is one _stats.txt file to re-align in a different channel.
type Job struct {
	Acquisition string
	ResultsDir string
	ImageIndex string // "row_column"
	CatalogPath string
}

// ImageSource loads the pixel grid for the requested channel at
// (row, column); secondchannel.Runner is parameterized over it the
// same way pipeline.Orchestrator is, so tests can substitute a
// synthetic source.
type ImageSource interface {
	Image(acquisition string, row, column int) (*ioadapter.Image, error)
}

// Runner re-aligns a batch of Jobs against a second imaging channel.
type Runner struct {
	Store *cluster.TileStore
	Source ImageSource
	MicronsPerPixel float64
	Parallelism int
}

// DiscoverJobs lists resultsDir/acquisition for *_stats.txt files and
// builds one Job per image index found.
func DiscoverJobs(resultsDir, acquisition string) ([]Job, error) {
	dir := resultsDir + "/" + acquisition
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, errors.E(err, "secondchannel: listing results dir", dir)
	}
	var jobs []Job
	for _, e := range entries {
		name := e.Name()
		const suffix = "_stats.txt"
		if !strings.HasSuffix(name, suffix) {
			continue
		}
		imageIndex := strings.TrimSuffix(name, suffix)
		jobs = append(jobs, Job{
			Acquisition: acquisition,
			ResultsDir: resultsDir,
			ImageIndex: imageIndex,
			CatalogPath: dir + "/" + imageIndex + ".cat",
		})
	}
	return jobs, nil
}

// Run re-aligns every job against the second channel, writing results
// back through the same alignment writer every job that produces a
// stable precision fit uses.
func (r *Runner) Run(jobs []Job) error {
	parallelism := r.Parallelism
	if parallelism < 1 {
		parallelism = Parallelism()
	}

	jobCh := make(chan Job, len(jobs))
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	errOnce := errors.Once{}
	var wg sync.WaitGroup
	for w := 0; w < parallelism; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for job := range jobCh {
				r.runJob(worker, job, &errOnce)
			}
		}(w)
	}
	wg.Wait()
	return errOnce.Err()
}

func (r *Runner) runJob(worker int, job Job, errOnce *errors.Once) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error.Printf("secondchannel: worker %d recovered panic on %s/%s: %v", worker, job.Acquisition, job.ImageIndex, rec)
			errOnce.Set(fmt.Errorf("secondchannel: panic re-aligning %s/%s: %v", job.Acquisition, job.ImageIndex, rec))
		}
	}()

	row, col, ok := parseImageIndex(job.ImageIndex)
	if !ok {
		log.Error.Printf("secondchannel: unparseable image index %q", job.ImageIndex)
		return
	}

	statsPath := job.ResultsDir + "/" + job.Acquisition + "/" + job.ImageIndex + "_stats.txt"
	stats, err := ioadapter.ReadStats(statsPath)
	if err != nil {
		log.Error.Printf("secondchannel: reading %s: %v", statsPath, err)
		return
	}
	if len(stats.Tiles) == 0 {
		log.Debug.Printf("secondchannel: %s has no recorded tiles, skipping", statsPath)
		return
	}

	img, err := r.Source.Image(job.Acquisition, row, col)
	if err != nil {
		log.Error.Printf("secondchannel: opening %s/%s: %v", job.Acquisition, job.ImageIndex, err)
		return
	}
	if img == nil {
		log.Debug.Printf("secondchannel: %s/%s missing in requested channel", job.Acquisition, job.ImageIndex)
		return
	}
	catalog, err := ioadapter.TryReadCatalog(job.CatalogPath)
	if err != nil {
		log.Error.Printf("secondchannel: reading catalog %s: %v", job.CatalogPath, err)
		return
	}
	if catalog == nil {
		log.Debug.Printf("secondchannel: no catalog for %s/%s, skipping", job.Acquisition, job.ImageIndex)
		return
	}

	aligner := align.NewAligner(r.Store, r.MicronsPerPixel)
	aligner.SetImageData(img)
	aligner.SetCatalog(catalog)
	aligner.SeedFromStats(stats)

	if err := aligner.PrecisionAlign(MinHits); err != nil {
		log.Debug.Printf("secondchannel: %s/%s did not reach precision: %v", job.Acquisition, job.ImageIndex, err)
		return
	}

	newStats := aligner.Stats()
	pose := aligner.Pose()
	reads := ioadapter.MappedReadsFromTiles(r.Store, newStats.Tiles, func(rr, cc float64) (float64, float64) {
		p := pose.Apply(numeric.Point{R: rr, C: cc})
		return p.R, p.C
	})

	if _, err := ioadapter.WriteAlignment(job.ResultsDir, job.Acquisition, job.ImageIndex, newStats, reads); err != nil {
		log.Error.Printf("secondchannel: writing %s/%s: %v", job.Acquisition, job.ImageIndex, err)
	}
}

func parseImageIndex(index string) (row, col int, ok bool) {
	parts := strings.SplitN(index, "_", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	row, err1 := strconv.Atoi(parts[0])
	col, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return row, col, true
}
