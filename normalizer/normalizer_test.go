package normalizer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingLedger struct {
	subjects []string
	reasons  []string
}

func (r *recordingLedger) Record(subject, reason string) {
	r.subjects = append(r.subjects, subject)
	r.reasons = append(r.reasons, reason)
}

func TestNew_MissingBinary(t *testing.T) {
	_, err := New(Config{Bin: filepath.Join(t.TempDir(), "no-such-ffmpeg")})
	require.NoError(t, err, "explicit paths are not resolved until Start")

	_, err = func() (*Normalizer, error) {
		t.Setenv("PATH", t.TempDir())
		return New(Config{})
	}()
	require.Error(t, err)

	var nerr *Error
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, KindToolNotFound, nerr.Kind)
}

func TestNormalize_EncodeFailureLedgersAndRemovesPartialOutput(t *testing.T) {
	workDir := t.TempDir()
	led := &recordingLedger{}

	n, err := New(Config{Bin: "false", Ledger: led, Logger: zap.NewNop()})
	require.NoError(t, err)

	b := NewBuilder("/videos/broken.mp4", workDir, testTarget())

	// Simulate a partial output left behind by the failed run.
	require.NoError(t, os.WriteFile(b.OutputPath(), []byte("partial"), 0o644))

	_, err = n.Normalize(context.Background(), b)
	require.Error(t, err)

	var nerr *Error
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, KindEncodeFailed, nerr.Kind)
	assert.Equal(t, "/videos/broken.mp4", nerr.Path)

	_, statErr := os.Stat(b.OutputPath())
	assert.True(t, os.IsNotExist(statErr), "partial output must be removed")

	require.Len(t, led.subjects, 1)
	assert.Equal(t, "/videos/broken.mp4", led.subjects[0])
	assert.Contains(t, led.reasons[0], "encode failed")
}

func TestNormalize_MissingBinaryAtStart(t *testing.T) {
	led := &recordingLedger{}
	n, err := New(Config{
		Bin:    filepath.Join(t.TempDir(), "no-such-ffmpeg"),
		Ledger: led,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	b := NewBuilder("/videos/a.mp4", t.TempDir(), testTarget())
	_, err = n.Normalize(context.Background(), b)
	require.Error(t, err)

	var nerr *Error
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, KindToolNotFound, nerr.Kind)
	require.Len(t, led.reasons, 1)
	assert.Equal(t, "ffmpeg binary not found", led.reasons[0])
}

func TestNormalize_CancelledContext(t *testing.T) {
	led := &recordingLedger{}
	n, err := New(Config{Bin: "sleep", Ledger: led, Logger: zap.NewNop()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBuilder("/videos/a.mp4", t.TempDir(), testTarget())
	_, err = n.Normalize(ctx, b)
	require.Error(t, err)

	var nerr *Error
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, KindUnexpected, nerr.Kind)
}

func TestScanCarriageLines(t *testing.T) {
	input := "frame=1 time=00:00:01.00\rframe=2 time=00:00:02.00\nDone.\n"

	scanner := bufio.NewScanner(bytes.NewReader([]byte(input)))
	scanner.Split(scanCarriageLines)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{
		"frame=1 time=00:00:01.00",
		"frame=2 time=00:00:02.00",
		"Done.",
	}, lines)
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("exit status 1")
	err := &Error{Kind: KindEncodeFailed, Path: "/a.mp4", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "encode_failed")
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "c", lastLine("a\nb\nc\n"))
	assert.Equal(t, "only", lastLine("only"))
	assert.True(t, strings.HasPrefix(lastLine("x\ny"), "y"))
}
