// Package merger wires the full pipeline together: discover the input
// folder, normalize what needs it, concatenate the survivors, and write the
// timestamp manifest and the failure ledger.
package merger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rhcp1304/nso/concatenator"
	"github.com/rhcp1304/nso/config"
	"github.com/rhcp1304/nso/coordinator"
	"github.com/rhcp1304/nso/ffprobe"
	"github.com/rhcp1304/nso/internal/retry"
	"github.com/rhcp1304/nso/ledger"
	"github.com/rhcp1304/nso/manifest"
	"github.com/rhcp1304/nso/models"
	"github.com/rhcp1304/nso/normalizer"
	"github.com/rhcp1304/nso/workdir"
)

// videoExtensions lists the container formats picked up during discovery,
// compared case-insensitively.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".webm": true,
	".avi":  true,
	".mkv":  true,
	".flv":  true,
}

// Summary reports what one merge run did.
type Summary struct {
	JobID        string
	Total        int
	Succeeded    int
	Failed       int
	OutputPath   string
	ManifestPath string
	LedgerPath   string
	Elapsed      time.Duration
}

// Merger runs the normalize-and-concatenate pipeline for one input folder.
type Merger struct {
	cfg *config.Config
	log *zap.Logger
}

// New creates a Merger from cfg.
func New(cfg *config.Config, log *zap.Logger) *Merger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Merger{cfg: cfg, log: log}
}

// DiscoverFiles lists the video files directly inside dir in lexicographic
// order. Subdirectories are not descended into.
func DiscoverFiles(dir string) ([]models.MediaFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory %s: %w", dir, err)
	}

	var files []models.MediaFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !videoExtensions[ext] {
			continue
		}
		files = append(files, models.MediaFile{
			Path: filepath.Join(dir, entry.Name()),
			Ext:  ext,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	if len(files) == 0 {
		return nil, fmt.Errorf("no video files found in %s", dir)
	}
	return files, nil
}

// Merge runs the whole pipeline and returns a run summary. A partial batch
// still succeeds; the error is non-nil only when nothing could be merged.
func (m *Merger) Merge(ctx context.Context) (*Summary, error) {
	start := time.Now()
	jobID := uuid.NewString()
	log := m.log.With(zap.String("job_id", jobID))

	files, err := DiscoverFiles(m.cfg.Input)
	if err != nil {
		return nil, err
	}
	log.Info("discovered input files", zap.Int("count", len(files)))

	target := m.cfg.TargetProfile()

	if m.cfg.DryRun {
		return m.dryRun(jobID, files, target, start)
	}

	led, err := ledger.Open(m.ledgerPath(), log)
	if err != nil {
		return nil, err
	}
	defer led.Close()

	workDirPath := filepath.Join(m.cfg.Input, m.cfg.WorkDirName)
	wd := workdir.NewManager(workDirPath, retry.DefaultConfig(), log)
	if err := wd.EnsureClean(); err != nil {
		return nil, err
	}
	// Cleanup must run even when the run was cancelled.
	defer wd.Remove(context.WithoutCancel(ctx))

	prober, err := ffprobe.New(ffprobe.Config{
		Bin:     m.cfg.Tools.FFprobe,
		Timeout: time.Duration(m.cfg.Timeouts.ProbeSeconds) * time.Second,
		Ledger:  led,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	norm, err := normalizer.New(normalizer.Config{
		Bin:     m.cfg.Tools.FFmpeg,
		Timeout: time.Duration(m.cfg.Timeouts.NormalizeSeconds) * time.Second,
		Ledger:  led,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	coord := coordinator.New(coordinator.Config{
		Workers:    m.cfg.Workers,
		Target:     target,
		Prober:     prober,
		Normalizer: &builderNormalizer{norm: norm, workDir: workDirPath, target: target},
		Logger:     log,
	})

	results, err := coord.Run(ctx, files)
	if err != nil {
		return nil, err
	}

	var segmentPaths []string
	succeeded := 0
	for i := range results {
		if results[i].Success {
			segmentPaths = append(segmentPaths, results[i].OutputPath)
			succeeded++
		}
	}

	concat, err := concatenator.New(concatenator.Config{
		Bin:     m.cfg.Tools.FFmpeg,
		Timeout: time.Duration(m.cfg.Timeouts.ConcatSeconds) * time.Second,
		Ledger:  led,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}
	if err := concat.Concatenate(ctx, segmentPaths, m.cfg.Output); err != nil {
		return nil, err
	}

	// A missing manifest never fails a finished merge.
	manifestPath := manifest.PathFor(m.cfg.Output)
	if err := manifest.Write(manifestPath, manifest.Build(results)); err != nil {
		log.Warn("could not write timestamp manifest", zap.Error(err))
		manifestPath = ""
	}

	summary := &Summary{
		JobID:        jobID,
		Total:        len(files),
		Succeeded:    succeeded,
		Failed:       len(files) - succeeded,
		OutputPath:   m.cfg.Output,
		ManifestPath: manifestPath,
		LedgerPath:   led.Path(),
		Elapsed:      time.Since(start),
	}
	log.Info("merge complete",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.String("output", summary.OutputPath),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// dryRun prints the planned work without touching the filesystem.
func (m *Merger) dryRun(jobID string, files []models.MediaFile, target models.TargetProfile, start time.Time) (*Summary, error) {
	workDirPath := filepath.Join(m.cfg.Input, m.cfg.WorkDirName)

	fmt.Printf("Would merge %d files from %s into %s:\n", len(files), m.cfg.Input, m.cfg.Output)
	for i, f := range files {
		b := normalizer.NewBuilder(f.Path, workDirPath, target).SetHasAudio(true)
		fmt.Printf("  %2d. %s\n      %s\n", i+1, f.Base(), b.DryRun(m.cfg.Tools.FFmpeg))
	}
	fmt.Printf("Timestamp manifest: %s\n", manifest.PathFor(m.cfg.Output))
	fmt.Printf("Failure ledger:     %s\n", m.ledgerPath())

	return &Summary{
		JobID:      jobID,
		Total:      len(files),
		OutputPath: m.cfg.Output,
		LedgerPath: m.ledgerPath(),
		Elapsed:    time.Since(start),
	}, nil
}

// ledgerPath resolves relative ledger paths against the input directory so
// the report lands next to the videos it describes.
func (m *Merger) ledgerPath() string {
	if filepath.IsAbs(m.cfg.LedgerPath) {
		return m.cfg.LedgerPath
	}
	return filepath.Join(m.cfg.Input, m.cfg.LedgerPath)
}

// builderNormalizer adapts the single-file Normalizer to the coordinator's
// path-in path-out interface.
type builderNormalizer struct {
	norm    *normalizer.Normalizer
	workDir string
	target  models.TargetProfile
}

func (b *builderNormalizer) Normalize(ctx context.Context, sourcePath string, hasAudio bool) (string, error) {
	bld := normalizer.NewBuilder(sourcePath, b.workDir, b.target).SetHasAudio(hasAudio)
	return b.norm.Normalize(ctx, bld)
}
