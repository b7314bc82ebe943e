package pipeline

import (
	"fmt"
	"testing"

	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/ioadapter"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/require"
)

// panicSource panics loading column panicCol, otherwise reports the
// image as missing (nil, nil); it exists only to exercise worker
// crash isolation.
type panicSource struct {
	panicCol int
}

func (s panicSource) Image(task Task) (*ioadapter.Image, error) {
	if task.Column == s.panicCol {
		panic("synthetic decode failure")
	}
	return nil, nil
}

func TestRunIsolatesWorkerPanic(t *testing.T) {
	store := cluster.NewTileStoreForTest(map[cluster.TileKey]*cluster.Tile{})
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	var tasks []Task
	for col := 0; col < 5; col++ {
		tasks = append(tasks, Task{
			Acquisition: "acq",
			ResultsDir: dir,
			Row: 0,
			Column: col,
			CatalogPath: fmt.Sprintf("%s/0_%d.cat", dir, col),
		})
	}

	orch := &Orchestrator{
		Store: store,
		Source: panicSource{panicCol: 2},
		MicronsPerPixel: 1.0,
		Parallelism: 2,
	}
	err := orch.Run(tasks)
	require.Error(t, err, "a panicking task should surface as a run error")
	require.Contains(t, err.Error(), "0_2")
}

func TestRunSkipsMissingImagesWithoutError(t *testing.T) {
	store := cluster.NewTileStoreForTest(map[cluster.TileKey]*cluster.Tile{})
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	tasks := []Task{{Acquisition: "acq", ResultsDir: dir, Row: 0, Column: 0, CatalogPath: dir + "/missing.cat"}}
	orch := &Orchestrator{Store: store, Source: panicSource{panicCol: -1}, MicronsPerPixel: 1.0, Parallelism: 1}
	require.NoError(t, orch.Run(tasks))
}
