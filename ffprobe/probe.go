// Package ffprobe extracts per-stream technical parameters and container
// duration from media files by invoking the ffprobe command-line tool.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rhcp1304/nso/models"
)

// DefaultTimeout bounds a single probe invocation.
const DefaultTimeout = 120 * time.Second

// ErrorKind classifies probe failures.
type ErrorKind string

const (
	KindToolNotFound    ErrorKind = "tool_not_found"
	KindTimeout         ErrorKind = "timeout"
	KindCancelled       ErrorKind = "cancelled"
	KindMalformedOutput ErrorKind = "malformed_output"
	KindNoVideoStream   ErrorKind = "no_video_stream"
)

// Error is a probe failure tagged with its kind and the offending path.
type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probe %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("probe %s: %s", e.Path, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Recorder receives one entry per failed file. Satisfied by *ledger.Ledger.
type Recorder interface {
	Record(subject, reason string)
}

// stream mirrors the fields of ffprobe's JSON stream objects we care about.
type stream struct {
	CodecName    string `json:"codec_name"`
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
	PixFmt       string `json:"pix_fmt,omitempty"`
	AvgFrameRate string `json:"avg_frame_rate,omitempty"`
	SampleRate   string `json:"sample_rate,omitempty"`
	Channels     int    `json:"channels,omitempty"`
}

type format struct {
	Duration string `json:"duration"`
}

type probeOutput struct {
	Streams []stream `json:"streams"`
	Format  format   `json:"format"`
}

// Config holds prober construction parameters.
type Config struct {
	// Bin is the ffprobe binary; resolved via exec.LookPath when empty.
	Bin     string
	Timeout time.Duration
	Ledger  Recorder
	Logger  *zap.Logger
}

// Prober runs ffprobe against single files.
type Prober struct {
	bin     string
	timeout time.Duration
	ledger  Recorder
	log     *zap.Logger
}

// New resolves the probe binary and returns a ready Prober.
func New(cfg Config) (*Prober, error) {
	bin := cfg.Bin
	if bin == "" {
		var err error
		bin, err = exec.LookPath("ffprobe")
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

	return &Prober{bin: bin, timeout: timeout, ledger: cfg.Ledger, log: log}, nil
}

// Probe extracts the stream profile of the file at path. The audio sub-profile
// is nil when the file has no audio stream; a missing video stream is fatal
// for that file.
func (p *Prober) Probe(ctx context.Context, path string) (*models.StreamProfile, error) {
	out, err := p.run(ctx, path,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, p.fail(path, err)
	}

	profile, err := parseStreamProfile(out)
	if err != nil {
		return nil, p.fail(path, err)
	}
	return profile, nil
}

// Duration returns the container-level duration of the file in seconds.
// Used after normalization to measure actual segment length.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.run(ctx, path,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		path,
	)
	if err != nil {
		return 0, p.fail(path, err)
	}

	d, err := parseDuration(out)
	if err != nil {
		return 0, p.fail(path, err)
	}
	return d, nil
}

func (p *Prober) run(ctx context.Context, path string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, classifyExecError(ctx, err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// fail appends the failure to the ledger and wraps it as a typed *Error.
func (p *Prober) fail(path string, err error) error {
	var perr *Error
	if !errors.As(err, &perr) {
		perr = &Error{Kind: KindMalformedOutput, Err: err}
	}
	perr.Path = path

	if p.ledger != nil {
		p.ledger.Record(path, perr.Kind.reason(perr.Err))
	}
	p.log.Debug("probe failed",
		zap.String("path", path),
		zap.String("kind", string(perr.Kind)),
		zap.Error(perr.Err),
	)
	return perr
}

func (k ErrorKind) reason(err error) string {
	switch k {
	case KindToolNotFound:
		return "ffprobe binary not found"
	case KindTimeout:
		return "probe timed out"
	case KindCancelled:
		return "probe cancelled"
	case KindNoVideoStream:
		return "no video stream found"
	default:
		if err != nil {
			return fmt.Sprintf("could not parse probe output: %v", err)
		}
		return "could not parse probe output"
	}
}

func classifyExecError(ctx context.Context, err error, stderr string) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	case errors.Is(ctx.Err(), context.Canceled):
		return &Error{Kind: KindCancelled, Err: err}
	case errors.Is(err, exec.ErrNotFound), os.IsNotExist(err):
		return &Error{Kind: KindToolNotFound, Err: err}
	default:
		if stderr != "" {
			err = fmt.Errorf("%w (stderr: %s)", err, stderr)
		}
		return &Error{Kind: KindMalformedOutput, Err: err}
	}
}

// parseStreamProfile decodes ffprobe's JSON stream listing into a
// StreamProfile, taking the first video and first audio stream.
func parseStreamProfile(data []byte) (*models.StreamProfile, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &Error{Kind: KindMalformedOutput, Err: err}
	}

	var profile models.StreamProfile
	haveVideo := false
	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if haveVideo {
				continue
			}
			haveVideo = true
			profile.Video = models.VideoProfile{
				CodecName:    s.CodecName,
				Width:        s.Width,
				Height:       s.Height,
				AvgFrameRate: s.AvgFrameRate,
				PixelFormat:  s.PixFmt,
			}
		case "audio":
			if profile.Audio != nil {
				continue
			}
			profile.Audio = &models.AudioProfile{
				CodecName:  s.CodecName,
				SampleRate: s.SampleRate,
				Channels:   s.Channels,
			}
		}
	}

	if !haveVideo {
		return nil, &Error{Kind: KindNoVideoStream}
	}
	return &profile, nil
}

func parseDuration(data []byte) (float64, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, &Error{Kind: KindMalformedOutput, Err: err}
	}
	if out.Format.Duration == "" {
		return 0, &Error{Kind: KindMalformedOutput, Err: errors.New("duration not present in format metadata")}
	}
	d, err := strconv.ParseFloat(out.Format.Duration, 64)
	if err != nil {
		return 0, &Error{Kind: KindMalformedOutput, Err: fmt.Errorf("failed to parse duration %q: %w", out.Format.Duration, err)}
	}
	return d, nil
}
