package ioadapter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAlignmentScoreOverwrite(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	written, err := WriteAlignment(dir, "acq1", "3_4", AlignmentStats{Score: 100}, nil)
	require.NoError(t, err)
	assert.True(t, written)

	written, err = WriteAlignment(dir, "acq1", "3_4", AlignmentStats{Score: 50}, nil)
	require.NoError(t, err)
	assert.False(t, written, "lower score must not overwrite")

	stats, err := ReadStats(filepath.Join(dir, "acq1", "3_4_stats.txt"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, stats.Score)

	written, err = WriteAlignment(dir, "acq1", "3_4", AlignmentStats{Score: 150}, nil)
	require.NoError(t, err)
	assert.True(t, written, "higher score must overwrite")

	stats, err = ReadStats(filepath.Join(dir, "acq1", "3_4_stats.txt"))
	require.NoError(t, err)
	assert.Equal(t, 150.0, stats.Score)
}

func TestWriteAlignmentCorruptExistingIsScoreZero(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "acq1"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "acq1", "1_1_stats.txt"), []byte("not valid stats\n"), 0644))

	written, err := WriteAlignment(dir, "acq1", "1_1", AlignmentStats{Score: 1}, nil)
	require.NoError(t, err)
	assert.True(t, written, "corrupt existing stats must be treated as score 0")
}
