package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errors []string

	// Required fields
	if c.Input == "" {
		errors = append(errors, "input directory is required")
	} else {
		if info, err := os.Stat(c.Input); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("input directory does not exist: %s", c.Input))
		} else if err == nil && !info.IsDir() {
			errors = append(errors, fmt.Sprintf("input is not a directory: %s", c.Input))
		}
	}

	if c.Output == "" {
		errors = append(errors, "output file is required")
	}

	// Validate workers (0 is valid, means default pool size)
	if c.Workers < 0 {
		errors = append(errors, "workers cannot be negative (use 0 for the default)")
	}

	// Validate video config
	if err := c.Video.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("video config: %v", err))
	}

	// Validate audio config (irrelevant when audio is dropped)
	if !c.Audio.Drop {
		if err := c.Audio.Validate(); err != nil {
			errors = append(errors, fmt.Sprintf("audio config: %v", err))
		}
	}

	// Validate timeouts
	if err := c.Timeouts.Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("timeouts: %v", err))
	}

	if c.WorkDirName == "" {
		errors = append(errors, "work dir name is required")
	} else if strings.ContainsRune(c.WorkDirName, os.PathSeparator) {
		errors = append(errors, "work dir name must be a bare directory name, not a path")
	}

	if c.LedgerPath == "" {
		errors = append(errors, "ledger path is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Validate checks if video configuration is valid
func (vc *VideoConfig) Validate() error {
	var errors []string

	if vc.Codec == "" {
		errors = append(errors, "codec is required")
	}

	if vc.CRF < 0 || vc.CRF > 51 {
		errors = append(errors, "CRF must be between 0 and 51")
	}

	if vc.Preset == "" {
		errors = append(errors, "preset is required")
	}

	if vc.Width <= 0 || vc.Height <= 0 {
		errors = append(errors, "width and height must be positive")
	} else if vc.Width%2 != 0 || vc.Height%2 != 0 {
		// yuv420p chroma subsampling needs even dimensions
		errors = append(errors, "width and height must be even")
	}

	if vc.FrameRate <= 0 {
		errors = append(errors, "frame rate must be positive")
	}

	if vc.PixelFormat == "" {
		errors = append(errors, "pixel format is required")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}

// Validate checks if audio configuration is valid
func (ac *AudioConfig) Validate() error {
	var errors []string

	if ac.Codec == "" {
		errors = append(errors, "codec is required")
	}

	if ac.Bitrate == "" {
		errors = append(errors, "bitrate is required")
	}

	if ac.SampleRate <= 0 {
		errors = append(errors, "sample rate must be positive")
	}

	if ac.Channels <= 0 {
		errors = append(errors, "channels must be positive")
	} else if ac.Channels > 8 {
		errors = append(errors, "channels cannot exceed 8")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}

// Validate checks if every configured timeout is positive
func (tc *TimeoutsConfig) Validate() error {
	var errors []string

	if tc.ProbeSeconds <= 0 {
		errors = append(errors, "probe timeout must be positive")
	}
	if tc.NormalizeSeconds <= 0 {
		errors = append(errors, "normalize timeout must be positive")
	}
	if tc.ConcatSeconds <= 0 {
		errors = append(errors, "concat timeout must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, ", "))
	}

	return nil
}
