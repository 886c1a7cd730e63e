package config

import (
	"flag"
	"fmt"
	"os"
)

// MergeFromFlags parses command-line flags and overrides config values
func (c *Config) MergeFromFlags() error {
	fs := flag.NewFlagSet("nso", flag.ContinueOnError)
	fs.Usage = printUsage

	// Required fields
	input := fs.String("input", "", "Directory containing the source videos (required)")
	output := fs.String("output", "", "Merged output file path (required)")

	// Config file override (handled by LoadConfig before this function is called)
	_ = fs.String("config", "", "Path to config file (default: search standard locations)")

	// Execution settings
	workers := fs.Int("workers", -1, "Number of parallel workers (0 = default pool size) (default: from config)")

	// Video settings
	videoCodec := fs.String("video-codec", "", "Video codec (default: from config)")
	videoCRF := fs.Int("video-crf", -1, "Video CRF (0-51, lower = better quality) (default: from config)")
	videoPreset := fs.String("video-preset", "", "Video preset: ultrafast, fast, medium, slow, veryslow (default: from config)")
	width := fs.Int("width", -1, "Target width in pixels (default: from config)")
	height := fs.Int("height", -1, "Target height in pixels (default: from config)")
	frameRate := fs.Float64("frame-rate", -1, "Target frame rate (default: from config)")
	pixelFormat := fs.String("pixel-format", "", "Target pixel format (default: from config)")

	// Audio settings
	audioCodec := fs.String("audio-codec", "", "Audio codec (default: from config)")
	audioBitrate := fs.String("audio-bitrate", "", "Audio bitrate, e.g., 128k (default: from config)")
	audioSampleRate := fs.Int("audio-sample-rate", -1, "Audio sample rate in Hz (default: from config)")
	audioChannels := fs.Int("audio-channels", -1, "Number of audio channels (default: from config)")
	dropAudio := fs.Bool("drop-audio", false, "Strip audio from every segment")

	// Tool paths
	ffmpegBin := fs.String("ffmpeg", "", "Path to the ffmpeg binary (default: resolve via PATH)")
	ffprobeBin := fs.String("ffprobe", "", "Path to the ffprobe binary (default: resolve via PATH)")

	// Reporting locations
	ledgerPath := fs.String("ledger", "", "Failed-files report path (default: from config)")

	// Behavioral flags
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	dryRun := fs.Bool("dry-run", false, "Show the plan without encoding")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	// Override with flag values (only if explicitly set)
	if *input != "" {
		c.Input = *input
	}
	if *output != "" {
		c.Output = *output
	}

	// Execution settings (-1 means not set)
	if *workers >= 0 {
		c.Workers = *workers
	}

	// Video settings
	if *videoCodec != "" {
		c.Video.Codec = *videoCodec
	}
	if *videoCRF >= 0 {
		c.Video.CRF = *videoCRF
	}
	if *videoPreset != "" {
		c.Video.Preset = *videoPreset
	}
	if *width > 0 {
		c.Video.Width = *width
	}
	if *height > 0 {
		c.Video.Height = *height
	}
	if *frameRate > 0 {
		c.Video.FrameRate = *frameRate
	}
	if *pixelFormat != "" {
		c.Video.PixelFormat = *pixelFormat
	}

	// Audio settings
	if *audioCodec != "" {
		c.Audio.Codec = *audioCodec
	}
	if *audioBitrate != "" {
		c.Audio.Bitrate = *audioBitrate
	}
	if *audioSampleRate > 0 {
		c.Audio.SampleRate = *audioSampleRate
	}
	if *audioChannels > 0 {
		c.Audio.Channels = *audioChannels
	}
	if *dropAudio {
		c.Audio.Drop = true
	}

	// Tool paths
	if *ffmpegBin != "" {
		c.Tools.FFmpeg = *ffmpegBin
	}
	if *ffprobeBin != "" {
		c.Tools.FFprobe = *ffprobeBin
	}

	if *ledgerPath != "" {
		c.LedgerPath = *ledgerPath
	}

	// Behavioral flags
	if *verbose {
		c.Verbose = true
	}
	if *dryRun {
		c.DryRun = true
	}

	return nil
}

// printUsage prints help text
func printUsage() {
	fmt.Fprintf(os.Stderr, `nso - Normalize a folder of videos and merge them into one file

USAGE:
  nso -input DIR -output FILE [OPTIONS]

REQUIRED FLAGS:
  -input string
        Directory containing the source videos (required)
  -output string
        Merged output file path (required)

CONFIGURATION:
  -config string
        Path to config file (default: search ./nso.yaml, ~/.nso/config.yaml, /etc/nso/config.yaml)

EXECUTION SETTINGS:
  -workers int
        Number of parallel workers (0 = default pool size of 5)

VIDEO SETTINGS:
  -video-codec string
        Video codec (default: libx264)
  -video-crf int
        Video CRF: 0-51, lower = better quality (default: 23)
  -video-preset string
        Video preset: ultrafast, fast, medium, slow, veryslow (default: medium)
  -width int
        Target width in pixels (default: 1920)
  -height int
        Target height in pixels (default: 1080)
  -frame-rate float
        Target frame rate (default: 30)
  -pixel-format string
        Target pixel format (default: yuv420p)

AUDIO SETTINGS:
  -audio-codec string
        Audio codec (default: aac)
  -audio-bitrate string
        Audio bitrate, e.g., 128k, 192k (default: 128k)
  -audio-sample-rate int
        Audio sample rate in Hz (default: 44100)
  -audio-channels int
        Number of audio channels (default: 2)
  --drop-audio
        Strip audio from every segment

TOOLS:
  -ffmpeg string
        Path to the ffmpeg binary (default: resolve via PATH)
  -ffprobe string
        Path to the ffprobe binary (default: resolve via PATH)

REPORTING:
  -ledger string
        Failed-files report path; relative paths resolve against the input
        directory (default: failed_videos.txt)

BEHAVIORAL FLAGS:
  --verbose
        Enable verbose logging
  --dry-run
        Show the plan without encoding

EXAMPLES:
  # Merge every video in a folder, lexicographic order
  nso -input ./clips -output merged.mp4

  # Faster encodes, smaller pool
  nso -input ./clips -output merged.mp4 -video-preset fast -workers 3

  # Silent output
  nso -input ./clips -output merged.mp4 --drop-audio

  # Show the plan without touching anything
  nso -input ./clips -output merged.mp4 --dry-run

CONFIGURATION FILES:
  Config files are searched in order:
    1. ./nso.yaml
    2. ~/.nso/config.yaml
    3. /etc/nso/config.yaml

  Priority: CLI flags > Config file > Defaults

`)
}

// PrintConfig prints the effective configuration
func (c *Config) PrintConfig() {
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("                 Effective Configuration                  ")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("Input:          %s\n", c.Input)
	fmt.Printf("Output:         %s\n", c.Output)
	fmt.Printf("Workers:        %d\n", c.Workers)

	fmt.Println("\nVideo Settings:")
	fmt.Printf("  Codec:        %s\n", c.Video.Codec)
	fmt.Printf("  CRF:          %d\n", c.Video.CRF)
	fmt.Printf("  Preset:       %s\n", c.Video.Preset)
	fmt.Printf("  Geometry:     %dx%d\n", c.Video.Width, c.Video.Height)
	fmt.Printf("  Frame Rate:   %g\n", c.Video.FrameRate)
	fmt.Printf("  Pixel Format: %s\n", c.Video.PixelFormat)

	fmt.Println("\nAudio Settings:")
	if c.Audio.Drop {
		fmt.Println("  Dropped from every segment")
	} else {
		fmt.Printf("  Codec:        %s\n", c.Audio.Codec)
		fmt.Printf("  Bitrate:      %s\n", c.Audio.Bitrate)
		fmt.Printf("  Sample Rate:  %d Hz\n", c.Audio.SampleRate)
		fmt.Printf("  Channels:     %d\n", c.Audio.Channels)
	}

	fmt.Println("\nReporting:")
	fmt.Printf("  Work Dir:     %s\n", c.WorkDirName)
	fmt.Printf("  Ledger:       %s\n", c.LedgerPath)

	fmt.Println("\nBehavioral Flags:")
	fmt.Printf("  Verbose:      %v\n", c.Verbose)
	fmt.Printf("  Dry Run:      %v\n", c.DryRun)
	fmt.Println("═══════════════════════════════════════════════════════════")
}
