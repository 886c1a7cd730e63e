// Package normalizer re-encodes non-conforming inputs to the target profile
// by shelling out to ffmpeg. One invocation per file, bounded by a timeout;
// a failed run never leaves a partial output behind.
package normalizer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single encode. Long, because a full re-encode of a
// large input at a slow preset is legitimately slow.
const DefaultTimeout = 3600 * time.Second

// stderrTailLines caps how much encoder diagnostic output is retained for
// the ledger when an encode fails.
const stderrTailLines = 30

// ErrorKind classifies normalization failures.
type ErrorKind string

const (
	KindToolNotFound ErrorKind = "tool_not_found"
	KindTimeout      ErrorKind = "timeout"
	KindEncodeFailed ErrorKind = "encode_failed"
	KindUnexpected   ErrorKind = "unexpected"
)

// Error is a normalization failure tagged with its kind and source path.
type Error struct {
	Kind   ErrorKind
	Path   string
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("normalize %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("normalize %s: %s", e.Path, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Recorder receives one entry per failed file. Satisfied by *ledger.Ledger.
type Recorder interface {
	Record(subject, reason string)
}

// Config holds normalizer construction parameters.
type Config struct {
	// Bin is the ffmpeg binary; resolved via exec.LookPath when empty.
	Bin     string
	Timeout time.Duration
	Ledger  Recorder
	Logger  *zap.Logger
}

// Normalizer transcodes single files into the target profile.
type Normalizer struct {
	bin     string
	timeout time.Duration
	ledger  Recorder
	log     *zap.Logger
}

// New resolves the encoder binary and returns a ready Normalizer.
func New(cfg Config) (*Normalizer, error) {
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

	return &Normalizer{bin: bin, timeout: timeout, ledger: cfg.Ledger, log: log}, nil
}

// Normalize transcodes sourcePath into workDir according to the builder's
// target profile and returns the output path. On any failure the partial
// output is removed, the failure is ledgered, and a typed *Error is returned.
func (n *Normalizer) Normalize(ctx context.Context, b *Builder) (string, error) {
	outputPath := b.OutputPath()

	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, n.bin, b.BuildArgs()...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", n.fail(b.sourcePath, outputPath, &Error{Kind: KindUnexpected, Err: err})
	}

	if err := cmd.Start(); err != nil {
		kind := KindUnexpected
		if errors.Is(err, exec.ErrNotFound) || os.IsNotExist(err) {
			kind = KindToolNotFound
		}
		return "", n.fail(b.sourcePath, outputPath, &Error{Kind: kind, Err: err})
	}

	tail := n.consumeStderr(stderr, b.sourcePath)

	if err := cmd.Wait(); err != nil {
		kind := KindEncodeFailed
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = KindTimeout
		} else if errors.Is(ctx.Err(), context.Canceled) {
			kind = KindUnexpected
			err = fmt.Errorf("cancelled: %w", err)
		}
		return "", n.fail(b.sourcePath, outputPath, &Error{Kind: kind, Stderr: tail, Err: err})
	}

	n.log.Debug("normalized",
		zap.String("source", b.sourcePath),
		zap.String("output", outputPath),
	)
	return outputPath, nil
}

// consumeStderr drains the encoder's diagnostic stream, logging parsed
// progress and keeping a bounded tail for error reporting.
func (n *Normalizer) consumeStderr(r interface{ Read([]byte) (int, error) }, source string) string {
	parser := newProgressParser()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(scanCarriageLines)

	var tail []string
	lastLogged := time.Now()
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		if seconds, speed, ok := parser.ParseLine(line); ok {
			if time.Since(lastLogged) >= 5*time.Second {
				n.log.Debug("encode progress",
					zap.String("source", source),
					zap.Float64("encoded_seconds", seconds),
					zap.Float64("speed", speed),
				)
				lastLogged = time.Now()
			}
			continue
		}

		tail = append(tail, line)
		if len(tail) > stderrTailLines {
			tail = tail[1:]
		}
	}
	return strings.Join(tail, "\n")
}

// scanCarriageLines splits on \n and \r; ffmpeg rewrites its status line in
// place using carriage returns.
func scanCarriageLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// fail removes any partial output, records the failure, and returns err.
func (n *Normalizer) fail(sourcePath, outputPath string, nerr *Error) error {
	nerr.Path = sourcePath

	if outputPath != "" {
		// A half-written output must never be referenced by a result.
		os.Remove(outputPath)
	}

	if n.ledger != nil {
		n.ledger.Record(sourcePath, nerr.reason())
	}
	n.log.Debug("normalization failed",
		zap.String("source", sourcePath),
		zap.String("kind", string(nerr.Kind)),
		zap.Error(nerr.Err),
	)
	return nerr
}

func (e *Error) reason() string {
	switch e.Kind {
	case KindToolNotFound:
		return "ffmpeg binary not found"
	case KindTimeout:
		return "encode timed out"
	case KindEncodeFailed:
		if e.Stderr != "" {
			return fmt.Sprintf("encode failed: %v (last output: %s)", e.Err, lastLine(e.Stderr))
		}
		return fmt.Sprintf("encode failed: %v", e.Err)
	default:
		return fmt.Sprintf("unexpected encode error: %v", e.Err)
	}
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return lines[len(lines)-1]
}
