// Package concatenator joins an ordered list of conforming segments into a
// single output via ffmpeg's concat demuxer. Streams are copied, never
// re-encoded, so the join is fast and lossless.
package concatenator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds the concat invocation. Stream copy is I/O bound, so
// this is generous even for long outputs.
const DefaultTimeout = 600 * time.Second

// ErrorKind classifies concatenation failures.
type ErrorKind string

const (
	KindToolNotFound ErrorKind = "tool_not_found"
	KindTimeout      ErrorKind = "timeout"
	KindConcatFailed ErrorKind = "concat_failed"
)

// Error is a concatenation failure tagged with its kind.
type Error struct {
	Kind   ErrorKind
	Output string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("concatenate to %s: %s: %v", e.Output, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Recorder receives one entry per failed concatenation. Satisfied by
// *ledger.Ledger.
type Recorder interface {
	Record(subject, reason string)
}

// Config holds concatenator construction parameters.
type Config struct {
	// Bin is the ffmpeg binary; resolved via exec.LookPath when empty.
	Bin     string
	Timeout time.Duration
	Ledger  Recorder
	Logger  *zap.Logger
}

// Concatenator merges segments with the concat demuxer.
type Concatenator struct {
	bin     string
	timeout time.Duration
	ledger  Recorder
	log     *zap.Logger
}

// New resolves the ffmpeg binary and returns a ready Concatenator.
func New(cfg Config) (*Concatenator, error) {
	bin := cfg.Bin
	if bin == "" {
		var err error
		bin, err = exec.LookPath("ffmpeg")
		if err != nil {
			return nil, &Error{Kind: KindToolNotFound, Err: err}
		}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Concatenator{bin: bin, timeout: timeout, ledger: cfg.Ledger, log: log}, nil
}

// Concatenate joins segmentPaths, in the given order, into outputPath. The
// intermediate playlist file is always removed, success or not.
func (c *Concatenator) Concatenate(ctx context.Context, segmentPaths []string, outputPath string) error {
	if len(segmentPaths) == 0 {
		return c.fail(outputPath, &Error{Kind: KindConcatFailed, Err: errors.New("no segments to concatenate")})
	}

	playlistPath, err := createConcatFile(segmentPaths)
	if err != nil {
		return c.fail(outputPath, &Error{Kind: KindConcatFailed, Err: err})
	}
	defer os.Remove(playlistPath)

	if err := c.runConcat(ctx, playlistPath, outputPath); err != nil {
		return err
	}

	// The demuxer can exit zero without producing anything when the
	// playlist was unreadable.
	if _, err := os.Stat(outputPath); err != nil {
		return c.fail(outputPath, &Error{Kind: KindConcatFailed, Err: fmt.Errorf("output not created: %w", err)})
	}

	c.log.Info("concatenated",
		zap.Int("segments", len(segmentPaths)),
		zap.String("output", outputPath),
	)
	return nil
}

// createConcatFile writes the concat-demuxer playlist: one
// "file '<absolute path>'" line per segment, single quotes escaped.
func createConcatFile(segmentPaths []string) (string, error) {
	tmpFile, err := os.CreateTemp("", "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}
	defer tmpFile.Close()

	for _, p := range segmentPaths {
		absPath, err := filepath.Abs(p)
		if err != nil {
			os.Remove(tmpFile.Name())
			return "", fmt.Errorf("resolving %s: %w", p, err)
		}

		escapedPath := strings.ReplaceAll(absPath, "'", "'\\''")
		if _, err := fmt.Fprintf(tmpFile, "file '%s'\n", escapedPath); err != nil {
			os.Remove(tmpFile.Name())
			return "", fmt.Errorf("writing playlist: %w", err)
		}
	}

	return tmpFile.Name(), nil
}

// runConcat executes the ffmpeg concat invocation under the timeout.
func (c *Concatenator) runConcat(ctx context.Context, playlistPath, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", playlistPath,
		"-c", "copy",
		"-y",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.bin, args...)
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	kind := KindConcatFailed
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, exec.ErrNotFound), os.IsNotExist(err):
		kind = KindToolNotFound
	}

	// A partial output is worse than none.
	os.Remove(outputPath)

	return c.fail(outputPath, &Error{
		Kind: kind,
		Err:  fmt.Errorf("%w (output: %s)", err, lastLine(string(output))),
	})
}

func (c *Concatenator) fail(outputPath string, cerr *Error) error {
	cerr.Output = outputPath

	if c.ledger != nil {
		c.ledger.Record(outputPath, cerr.reason())
	}
	c.log.Debug("concatenation failed",
		zap.String("output", outputPath),
		zap.String("kind", string(cerr.Kind)),
		zap.Error(cerr.Err),
	)
	return cerr
}

func (e *Error) reason() string {
	switch e.Kind {
	case KindToolNotFound:
		return "ffmpeg binary not found"
	case KindTimeout:
		return "concatenation timed out"
	default:
		return fmt.Sprintf("concatenation failed: %v", e.Err)
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(strings.TrimSpace(s), "\n"), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
