// Package ledger implements the per-job failure log: a plain-text, append-only
// audit trail with one line per failed file or operation. Recording never
// returns an error to the caller; a ledger problem must not take down the
// pipeline it is auditing.
package ledger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Ledger owns the failure log file and its append lock. Safe for concurrent
// writers; each Record call writes one whole line.
type Ledger struct {
	mu   sync.Mutex
	file *os.File
	path string
	log  *zap.Logger
}

// Open truncates (or creates) the failure log at path, so the ledger reflects
// only the current job.
func Open(path string, log *zap.Logger) (*Ledger, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open failure ledger %s: %w", path, err)
	}
	return &Ledger{file: f, path: path, log: log}, nil
}

// Record appends one failure entry as "<subject> | Reason: <reason>".
// Write failures are logged as warnings and otherwise swallowed.
func (l *Ledger) Record(subject, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}
	if _, err := fmt.Fprintf(l.file, "%s | Reason: %s\n", subject, reason); err != nil {
		l.log.Warn("failed to write ledger entry",
			zap.String("ledger", l.path),
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

// Path returns the on-disk location of the ledger file.
func (l *Ledger) Path() string {
	return l.path
}

// Close flushes and closes the underlying file.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
