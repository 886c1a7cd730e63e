package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhcp1304/nso/models"
)

func TestBuild_CumulativeOffsetsSkipFailures(t *testing.T) {
	results := []models.NormalizationResult{
		{Index: 0, SourcePath: "/in/a.mp4", OutputPath: "/work/norm_a.mp4", Duration: 12.5, Success: true},
		{Index: 1, SourcePath: "/in/broken.mp4", Success: false},
		{Index: 2, SourcePath: "/in/c.mp4", OutputPath: "/in/c.mp4", Duration: 7.25, Success: true},
	}

	entries := Build(results)
	require.Len(t, entries, 2)

	assert.Equal(t, "a.mp4", entries[0].Name)
	assert.Equal(t, 0.0, entries[0].Start)
	assert.Equal(t, "c.mp4", entries[1].Name)
	assert.InDelta(t, 12.5, entries[1].Start, 0.0001)
}

func TestRender(t *testing.T) {
	entries := []Entry{
		{Name: "a.mp4", Start: 0, Duration: 12.5},
		{Name: "c.mp4", Start: 12.5, Duration: 7.25},
	}

	got := Render(entries)
	want := strings.Join([]string{
		"00:00:00.000 - Start of: a.mp4 (Segment 1)",
		"00:00:12.500 - Start of: c.mp4 (Segment 2)",
		"00:00:19.750 - Total duration",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRender_Empty(t *testing.T) {
	got := Render(nil)
	assert.Equal(t, "00:00:00.000 - Total duration\n", got)
}

func TestRender_RollsPastOneHour(t *testing.T) {
	entries := []Entry{
		{Name: "long.mp4", Start: 0, Duration: 3725.042},
		{Name: "tail.mp4", Start: 3725.042, Duration: 10},
	}
	got := Render(entries)
	assert.Contains(t, got, "01:02:05.042 - Start of: tail.mp4 (Segment 2)")
}

func TestWrite_ReplacesPreviousManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged_timestamps.txt")
	require.NoError(t, os.WriteFile(path, []byte("stale content from an earlier run\n"), 0o644))

	require.NoError(t, Write(path, []Entry{{Name: "a.mp4", Start: 0, Duration: 1}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "Start of: a.mp4 (Segment 1)")
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, filepath.Join("/out", "merged_timestamps.txt"), PathFor("/out/merged.mp4"))
	assert.Equal(t, filepath.Join(".", "final_timestamps.txt"), PathFor("final.mkv"))
}
