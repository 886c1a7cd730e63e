// Package models defines the shared data types passed between the pipeline
// stages: discovered input files, probed stream parameters, the normalization
// target, and per-file outcomes.
package models

import "path/filepath"

// MediaFile represents one discovered input file on local storage.
// Immutable after discovery.
type MediaFile struct {
	Path string // absolute path
	Ext  string // lowercase container extension, including the dot
}

// Base returns the file name without its directory.
func (m MediaFile) Base() string {
	return filepath.Base(m.Path)
}

// VideoProfile holds the probed parameters of a file's primary video stream.
type VideoProfile struct {
	CodecName    string
	Width        int
	Height       int
	AvgFrameRate string // rational as reported by the probe tool, e.g. "30000/1001"
	PixelFormat  string
}

// AudioProfile holds the probed parameters of a file's primary audio stream.
type AudioProfile struct {
	CodecName  string
	SampleRate string // kept as the probe tool reports it, e.g. "48000"
	Channels   int
}

// StreamProfile is the probed technical description of one media file.
// Audio is nil when the file has no audio stream; that is not an error.
type StreamProfile struct {
	Video VideoProfile
	Audio *AudioProfile
}

// HasAudio reports whether the file carries an audio stream.
func (s *StreamProfile) HasAudio() bool {
	return s.Audio != nil
}

// TargetProfile is the single set of parameters every segment must share
// before stream-copy concatenation is safe. Constant for a given job.
type TargetProfile struct {
	Width       int
	Height      int
	FrameRate   float64
	PixelFormat string

	VideoCodec string
	Preset     string
	CRF        int

	AudioCodec      string
	AudioBitrate    string
	AudioSampleRate string
	AudioChannels   int

	// DropAudio forces audio-less output segments regardless of source audio.
	DropAudio bool
}

// VideoCodecName maps the configured encoder to the stream codec name the
// probe tool reports, so compliance checks compare like with like.
func (t TargetProfile) VideoCodecName() string {
	switch t.VideoCodec {
	case "libx264", "h264_nvenc", "h264_vaapi", "h264_qsv", "h264_videotoolbox":
		return "h264"
	case "libx265", "hevc_nvenc", "hevc_vaapi", "hevc_qsv":
		return "hevc"
	case "libvpx-vp9":
		return "vp9"
	case "libsvtav1", "libaom-av1":
		return "av1"
	default:
		return t.VideoCodec
	}
}

// AudioCodecName maps the configured audio encoder to the probed codec name.
func (t TargetProfile) AudioCodecName() string {
	switch t.AudioCodec {
	case "aac", "aac_at", "libfdk_aac":
		return "aac"
	case "libopus":
		return "opus"
	case "libmp3lame":
		return "mp3"
	default:
		return t.AudioCodec
	}
}

// NormalizationResult is the per-file outcome of one probe/evaluate/normalize
// pipeline run. Index ties the result back to the discovery order.
type NormalizationResult struct {
	Index      int
	SourcePath string
	OutputPath string  // normalized intermediate, or the source itself on pass-through
	Duration   float64 // measured seconds of OutputPath
	Success    bool
	Err        error
}
