package config

import (
	"os"
	"testing"
)

// withArgs swaps os.Args for the duration of one test.
func withArgs(t *testing.T, args ...string) {
	t.Helper()
	old := os.Args
	os.Args = append([]string{"nso"}, args...)
	t.Cleanup(func() { os.Args = old })
}

func TestMergeFromFlags_OverridesOnlyWhatWasSet(t *testing.T) {
	withArgs(t,
		"-input", "./clips",
		"-output", "merged.mp4",
		"-workers", "3",
		"-video-preset", "fast",
	)

	cfg := DefaultConfig()
	if err := cfg.MergeFromFlags(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Input != "./clips" {
		t.Errorf("Expected input './clips', got '%s'", cfg.Input)
	}
	if cfg.Output != "merged.mp4" {
		t.Errorf("Expected output 'merged.mp4', got '%s'", cfg.Output)
	}
	if cfg.Workers != 3 {
		t.Errorf("Expected workers 3, got %d", cfg.Workers)
	}
	if cfg.Video.Preset != "fast" {
		t.Errorf("Expected preset 'fast', got '%s'", cfg.Video.Preset)
	}

	// Untouched fields keep their previous values
	if cfg.Video.Codec != "libx264" {
		t.Errorf("Flag merge clobbered video codec: %s", cfg.Video.Codec)
	}
	if cfg.Audio.Bitrate != "128k" {
		t.Errorf("Flag merge clobbered audio bitrate: %s", cfg.Audio.Bitrate)
	}
}

func TestMergeFromFlags_BehavioralFlags(t *testing.T) {
	withArgs(t, "-drop-audio", "-verbose", "-dry-run")

	cfg := DefaultConfig()
	if err := cfg.MergeFromFlags(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !cfg.Audio.Drop {
		t.Error("Expected drop-audio flag to set Audio.Drop")
	}
	if !cfg.Verbose {
		t.Error("Expected verbose flag to set Verbose")
	}
	if !cfg.DryRun {
		t.Error("Expected dry-run flag to set DryRun")
	}
}

func TestMergeFromFlags_ToolPaths(t *testing.T) {
	withArgs(t, "-ffmpeg", "/opt/ffmpeg/bin/ffmpeg", "-ffprobe", "/opt/ffmpeg/bin/ffprobe")

	cfg := DefaultConfig()
	if err := cfg.MergeFromFlags(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Tools.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("Expected ffmpeg path override, got '%s'", cfg.Tools.FFmpeg)
	}
	if cfg.Tools.FFprobe != "/opt/ffmpeg/bin/ffprobe" {
		t.Errorf("Expected ffprobe path override, got '%s'", cfg.Tools.FFprobe)
	}
}

func TestMergeFromFlags_WorkersZeroMeansDefault(t *testing.T) {
	withArgs(t, "-workers", "0")

	cfg := DefaultConfig()
	cfg.Workers = 8
	if err := cfg.MergeFromFlags(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if cfg.Workers != 0 {
		t.Errorf("Explicit -workers 0 must override the config value, got %d", cfg.Workers)
	}
}
