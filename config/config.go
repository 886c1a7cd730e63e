package config

import (
	"strconv"

	"github.com/rhcp1304/nso/models"
)

// Config holds all merger configuration options
type Config struct {
	// Required fields
	Input  string `yaml:"input"`  // Directory containing the source videos
	Output string `yaml:"output"` // Final merged output file

	// Execution settings
	Workers int `yaml:"workers"` // 0 = default pool size

	// Target profile every segment must conform to
	Video VideoConfig `yaml:"video"`
	Audio AudioConfig `yaml:"audio"`

	// External tools
	Tools ToolsConfig `yaml:"tools"`

	// Per-stage timeouts
	Timeouts TimeoutsConfig `yaml:"timeouts"`

	// Scratch and reporting locations
	WorkDirName string `yaml:"work_dir_name"` // Created inside the input directory
	LedgerPath  string `yaml:"ledger_path"`   // Relative paths resolve against the input directory

	// Behavioral flags
	Verbose bool `yaml:"verbose"` // Show detailed logs
	DryRun  bool `yaml:"dry_run"` // Show the plan without encoding
}

// VideoConfig holds the video half of the target profile
type VideoConfig struct {
	Codec       string  `yaml:"codec"`        // e.g., "libx264", "libx265", "h264_nvenc"
	CRF         int     `yaml:"crf"`          // Constant Rate Factor (0-51, lower = better quality)
	Preset      string  `yaml:"preset"`       // e.g., "ultrafast", "medium", "slow"
	Width       int     `yaml:"width"`        // Target width in pixels
	Height      int     `yaml:"height"`       // Target height in pixels
	FrameRate   float64 `yaml:"frame_rate"`   // e.g., 30, 29.97
	PixelFormat string  `yaml:"pixel_format"` // e.g., "yuv420p"
}

// AudioConfig holds the audio half of the target profile
type AudioConfig struct {
	Codec      string `yaml:"codec"`       // e.g., "aac", "libopus"
	Bitrate    string `yaml:"bitrate"`     // e.g., "128k", "192k"
	SampleRate int    `yaml:"sample_rate"` // e.g., 44100, 48000
	Channels   int    `yaml:"channels"`    // 1 (mono), 2 (stereo)
	Drop       bool   `yaml:"drop"`        // Strip audio from every segment
}

// ToolsConfig holds explicit tool paths; empty values resolve via PATH
type ToolsConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
}

// TimeoutsConfig bounds each external invocation, in seconds
type TimeoutsConfig struct {
	ProbeSeconds     int `yaml:"probe_seconds"`
	NormalizeSeconds int `yaml:"normalize_seconds"`
	ConcatSeconds    int `yaml:"concat_seconds"`
}

// DefaultConfig returns configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		// Required - must be provided by user
		Input:  "",
		Output: "",

		// Execution settings
		Workers: 0, // Use the default pool size

		// Video defaults (H.264 1080p30: plays everywhere)
		Video: VideoConfig{
			Codec:       "libx264",
			CRF:         23,
			Preset:      "medium",
			Width:       1920,
			Height:      1080,
			FrameRate:   30,
			PixelFormat: "yuv420p",
		},

		// Audio defaults (AAC stereo)
		Audio: AudioConfig{
			Codec:      "aac",
			Bitrate:    "128k",
			SampleRate: 44100,
			Channels:   2,
			Drop:       false,
		},

		// Tools resolve via PATH unless overridden
		Tools: ToolsConfig{},

		// Per-stage timeouts
		Timeouts: TimeoutsConfig{
			ProbeSeconds:     120,
			NormalizeSeconds: 3600,
			ConcatSeconds:    600,
		},

		// Scratch and reporting locations
		WorkDirName: "normalized_segments",
		LedgerPath:  "failed_videos.txt",

		// Behavioral defaults
		Verbose: false,
		DryRun:  false,
	}
}

// TargetProfile converts the configured video and audio settings into the
// profile the compliance check and the normalizer operate on.
func (c *Config) TargetProfile() models.TargetProfile {
	return models.TargetProfile{
		Width:           c.Video.Width,
		Height:          c.Video.Height,
		FrameRate:       c.Video.FrameRate,
		PixelFormat:     c.Video.PixelFormat,
		VideoCodec:      c.Video.Codec,
		Preset:          c.Video.Preset,
		CRF:             c.Video.CRF,
		AudioCodec:      c.Audio.Codec,
		AudioBitrate:    c.Audio.Bitrate,
		AudioSampleRate: strconv.Itoa(c.Audio.SampleRate),
		AudioChannels:   c.Audio.Channels,
		DropAudio:       c.Audio.Drop,
	}
}

// Copy creates a deep copy of the config
func (c *Config) Copy() *Config {
	copy := *c
	return &copy
}
