package secondchannel

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/flowcell-align/cluster"
	"github.com/grailbio/flowcell-align/ioadapter"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/require"
)

func TestParseImageIndex(t *testing.T) {
	row, col, ok := parseImageIndex("3_117")
	require.True(t, ok)
	require.Equal(t, 3, row)
	require.Equal(t, 117, col)

	_, _, ok = parseImageIndex("garbage")
	require.False(t, ok)
}

func TestDiscoverJobsListsStatsFiles(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	acqDir := filepath.Join(dir, "acq")
	require.NoError(t, os.MkdirAll(acqDir, 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(acqDir, "3_117_stats.txt"), []byte("score:1\n"), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(acqDir, "3_117_all_read_rcs.txt"), []byte(""), 0644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(acqDir, "4_118_stats.txt"), []byte("score:1\n"), 0644))

	jobs, err := DiscoverJobs(dir, "acq")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	indexes := map[string]bool{}
	for _, j := range jobs {
		indexes[j.ImageIndex] = true
	}
	require.True(t, indexes["3_117"])
	require.True(t, indexes["4_118"])
}

// missingSource reports every image as absent; used to confirm Run
// skips a job cleanly instead of erroring when the second channel
// simply doesn't have that field of view.
type missingSource struct{}

func (missingSource) Image(acquisition string, row, col int) (*ioadapter.Image, error) {
	return nil, nil
}

func TestRunSkipsWhenSecondChannelImageMissing(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	acqDir := filepath.Join(dir, "acq")
	require.NoError(t, os.MkdirAll(acqDir, 0755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(acqDir, "3_117_stats.txt"), []byte(
		"tile:lane1tile1101\nrc_offset:(0,0)\nrotation:0\nscale:1\ndr:0\ndc:0\nexclusive_hits:10\ngood_mutual_hits:5\nbad_mutual_hits:0\nnon_mutual_hits:0\nresidual_r:0\nresidual_c:0\nscore:12.5\n"), 0644))

	store := cluster.NewTileStoreForTest(map[cluster.TileKey]*cluster.Tile{})
	runner := &Runner{Store: store, Source: missingSource{}, MicronsPerPixel: 1.0, Parallelism: 1}

	jobs, err := DiscoverJobs(dir, "acq")
	require.NoError(t, err)
	require.NoError(t, runner.Run(jobs))
}
