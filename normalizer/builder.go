package normalizer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rhcp1304/nso/models"
)

// OutputPrefix is prepended to the source base name to form the normalized
// intermediate's file name inside the working directory.
const OutputPrefix = "norm_"

// Builder assembles the ffmpeg argument list that transcodes one input into
// the target profile: scale-to-fit with centered letterbox/pillarbox padding,
// forced frame rate, pixel format and codecs.
type Builder struct {
	sourcePath string
	outputPath string
	target     models.TargetProfile
	hasAudio   bool
	extraArgs  []string
}

// NewBuilder creates a builder for one source file. The output path is
// derived deterministically from the source base name inside workDir, so
// re-runs are reproducible.
func NewBuilder(sourcePath, workDir string, target models.TargetProfile) *Builder {
	return &Builder{
		sourcePath: sourcePath,
		outputPath: filepath.Join(workDir, OutputPrefix+filepath.Base(sourcePath)),
		target:     target,
	}
}

// SetHasAudio declares whether the source carries an audio stream. Without
// one the output is produced with no audio at all; silence is never
// synthesized.
func (b *Builder) SetHasAudio(hasAudio bool) *Builder {
	b.hasAudio = hasAudio
	return b
}

// AddExtraArgs appends custom ffmpeg arguments before the output path.
func (b *Builder) AddExtraArgs(args ...string) *Builder {
	b.extraArgs = append(b.extraArgs, args...)
	return b
}

// OutputPath returns the derived destination path.
func (b *Builder) OutputPath() string {
	return b.outputPath
}

// BuildArgs constructs the full ffmpeg argument list.
func (b *Builder) BuildArgs() []string {
	t := b.target

	args := []string{
		"-i", b.sourcePath,
		"-vf", b.buildFilterChain(),
		"-r", formatFrameRate(t.FrameRate),
		"-pix_fmt", t.PixelFormat,
		"-c:v", t.VideoCodec,
		"-preset", t.Preset,
		"-crf", fmt.Sprintf("%d", t.CRF),
	}

	if b.hasAudio && !t.DropAudio {
		args = append(args,
			"-c:a", t.AudioCodec,
			"-b:a", t.AudioBitrate,
			"-ar", t.AudioSampleRate,
			"-ac", fmt.Sprintf("%d", t.AudioChannels),
		)
	} else {
		args = append(args, "-an")
	}

	args = append(args, b.extraArgs...)
	args = append(args, "-y", b.outputPath)
	return args
}

// buildFilterChain scales the source to fit inside the target geometry while
// preserving aspect ratio, then pads to the exact dimensions with the content
// centered.
func (b *Builder) buildFilterChain() string {
	w, h := b.target.Width, b.target.Height
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2",
		w, h, w, h,
	)
}

// DryRun returns the command line that would be executed. An empty bin falls
// back to the PATH-resolved default.
func (b *Builder) DryRun(bin string) string {
	if bin == "" {
		bin = "ffmpeg"
	}
	return bin + " " + strings.Join(b.BuildArgs(), " ")
}

// formatFrameRate renders integral rates without a trailing fraction so the
// argument matches what operators would type by hand.
func formatFrameRate(fps float64) string {
	if fps == float64(int(fps)) {
		return fmt.Sprintf("%d", int(fps))
	}
	return fmt.Sprintf("%g", fps)
}
