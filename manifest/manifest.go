// Package manifest renders the human-readable timestamp index that
// documents where each segment starts inside the final concatenated output.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rhcp1304/nso/internal/timeutil"
	"github.com/rhcp1304/nso/models"
)

// Entry is one segment's position inside the merged output.
type Entry struct {
	Name     string
	Start    float64
	Duration float64
}

// Build converts the ordered successful results into manifest entries with
// cumulative start offsets. Failed results are skipped; offsets are computed
// over the files that actually made it into the output.
func Build(results []models.NormalizationResult) []Entry {
	var entries []Entry
	offset := 0.0
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, Entry{
			Name:     filepath.Base(r.SourcePath),
			Start:    offset,
			Duration: r.Duration,
		})
		offset += r.Duration
	}
	return entries
}

// Render formats the entries as the manifest text, one line per segment plus
// a trailing total line.
func Render(entries []Entry) string {
	var sb strings.Builder
	total := 0.0
	for i, e := range entries {
		fmt.Fprintf(&sb, "%s - Start of: %s (Segment %d)\n",
			timeutil.FormatTimestamp(e.Start), e.Name, i+1)
		total = e.Start + e.Duration
	}
	fmt.Fprintf(&sb, "%s - Total duration\n", timeutil.FormatTimestamp(total))
	return sb.String()
}

// Write renders the entries and writes them to path, replacing any manifest
// from a previous run.
func Write(path string, entries []Entry) error {
	if err := os.WriteFile(path, []byte(Render(entries)), 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}

// PathFor derives the manifest path from the merged output path:
// <dir>/<output-basename>_timestamps.txt.
func PathFor(outputPath string) string {
	base := filepath.Base(outputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(outputPath), base+"_timestamps.txt")
}
