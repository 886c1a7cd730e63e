package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpen_TruncatesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed_videos.txt")
	require.NoError(t, os.WriteFile(path, []byte("old.mp4 | Reason: stale entry\n"), 0644))

	l, err := Open(path, nil)
	require.NoError(t, err)
	defer l.Close()

	l.Record("a.mp4", "probe failed")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "stale entry")
	require.Equal(t, "a.mp4 | Reason: probe failed\n", string(data))
}

func TestRecord_LineFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed_videos.txt")
	l, err := Open(path, nil)
	require.NoError(t, err)

	l.Record("/videos/b.mp4", "encode failed: exit status 1")
	l.Record("/out/merged.mp4", "concat timed out")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "/videos/b.mp4 | Reason: encode failed: exit status 1", lines[0])
	require.Equal(t, "/out/merged.mp4 | Reason: concat timed out", lines[1])
}

func TestRecord_ConcurrentWritersWholeLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed_videos.txt")
	l, err := Open(path, nil)
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			l.Record(fmt.Sprintf("file_%02d.mp4", n), "worker failure")
		}(i)
	}
	wg.Wait()
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, writers)
	for _, line := range lines {
		require.Regexp(t, `^file_\d{2}\.mp4 \| Reason: worker failure$`, line)
	}
}

func TestRecord_AfterCloseIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "failed_videos.txt")
	l, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	// Must not panic or resurrect the file handle.
	l.Record("late.mp4", "too late")
}
