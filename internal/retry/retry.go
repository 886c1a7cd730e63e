// Package retry implements a small bounded-retry combinator with exponential
// backoff, used for flaky OS-level operations such as removing directories
// that an external tool may still hold locks on.
package retry

import (
	"context"
	"time"
)

// Config holds retry parameters.
type Config struct {
	MaxAttempts int
	Delay       time.Duration
	Multiplier  float64
	MaxDelay    time.Duration
}

// DefaultConfig returns conservative defaults suitable for filesystem cleanup.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 5,
		Delay:       500 * time.Millisecond,
		Multiplier:  2.0,
		MaxDelay:    10 * time.Second,
	}
}

// Do executes fn until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. The last error is returned on failure.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	var lastErr error
	delay := cfg.Delay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return lastErr
}
