// Package compliance decides whether a probed media file already conforms to
// the normalization target and can be stream-copied as-is, or must be
// re-encoded. Pure functions, no I/O.
package compliance

import (
	"math"
	"strconv"
	"strings"

	"github.com/rhcp1304/nso/models"
)

// FrameRateTolerance is the maximum absolute difference between the probed
// frame rate and the target before a re-encode is required.
const FrameRateTolerance = 0.001

// NeedsNormalization reports whether the file described by profile must be
// transcoded to match target. Anything that cannot be verified is treated as
// non-compliant; we never skip a file whose parameters are in doubt.
func NeedsNormalization(profile *models.StreamProfile, target models.TargetProfile) bool {
	if profile == nil {
		return true
	}
	if !videoCompliant(profile.Video, target) {
		return true
	}
	return !audioCompliant(profile.Audio, target)
}

func videoCompliant(v models.VideoProfile, target models.TargetProfile) bool {
	if v.CodecName != target.VideoCodecName() {
		return false
	}
	if v.Width != target.Width || v.Height != target.Height {
		return false
	}
	if v.PixelFormat != target.PixelFormat {
		return false
	}

	fps, err := ParseFrameRate(v.AvgFrameRate)
	if err != nil {
		return false
	}
	return math.Abs(fps-target.FrameRate) <= FrameRateTolerance
}

// audioCompliant: a source without audio is vacuously compliant (the pipeline
// emits an audio-less segment to match, never synthesized silence). A source
// with audio must match the target exactly, and is never compliant when the
// target drops audio entirely.
func audioCompliant(a *models.AudioProfile, target models.TargetProfile) bool {
	if a == nil {
		return true
	}
	if target.DropAudio {
		return false
	}
	return a.CodecName == target.AudioCodecName() &&
		a.SampleRate == target.AudioSampleRate &&
		a.Channels == target.AudioChannels
}

// ParseFrameRate converts ffprobe's rational frame-rate notation ("30000/1001"
// or a plain "30") to a float. A zero denominator or unparseable input is an
// error, which callers treat as non-compliant rather than crashing.
func ParseFrameRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "/") {
		return strconv.ParseFloat(s, 64)
	}

	parts := strings.SplitN(s, "/", 2)
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, err
	}
	if den == 0 {
		return 0, &InvalidFrameRateError{Value: s}
	}
	return num / den, nil
}

// InvalidFrameRateError marks a rational frame rate with a zero denominator.
type InvalidFrameRateError struct {
	Value string
}

func (e *InvalidFrameRateError) Error() string {
	return "invalid frame rate: " + e.Value
}
