// Package workdir manages the lifecycle of the scratch directory that holds
// normalized intermediates: fresh on entry, removed on exit.
package workdir

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/rhcp1304/nso/internal/retry"
)

// Manager creates and tears down one working directory.
type Manager struct {
	path  string
	retry retry.Config
	log   *zap.Logger
}

// NewManager returns a Manager for path. Removal uses cfg to retry past
// transient filesystem refusals (antivirus scans, slow NFS unlinks).
func NewManager(path string, cfg retry.Config, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{path: path, retry: cfg, log: log}
}

// Path returns the managed directory.
func (m *Manager) Path() string {
	return m.path
}

// EnsureClean guarantees an empty working directory: stale leftovers from an
// interrupted run are removed first, then the directory is recreated.
func (m *Manager) EnsureClean() error {
	if _, err := os.Stat(m.path); err == nil {
		m.log.Info("removing stale working directory", zap.String("path", m.path))
		if err := os.RemoveAll(m.path); err != nil {
			return fmt.Errorf("removing stale working directory %s: %w", m.path, err)
		}
	}

	if err := os.MkdirAll(m.path, 0o755); err != nil {
		return fmt.Errorf("creating working directory %s: %w", m.path, err)
	}
	return nil
}

// Remove deletes the working directory and everything in it, retrying with
// backoff. Failure to clean up never fails the run; after the final attempt
// the leftover path is logged and abandoned.
func (m *Manager) Remove(ctx context.Context) {
	err := retry.Do(ctx, m.retry, func() error {
		return os.RemoveAll(m.path)
	})
	if err != nil {
		m.log.Warn("could not remove working directory, leaving it behind",
			zap.String("path", m.path),
			zap.Error(err),
		)
		return
	}
	m.log.Debug("removed working directory", zap.String("path", m.path))
}
