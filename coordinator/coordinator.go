// Package coordinator fans the per-file pipeline (probe, compliance check,
// normalize, duration probe) out over a bounded pool of workers. One bad
// input never aborts the batch; results come back in input order.
package coordinator

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rhcp1304/nso/compliance"
	"github.com/rhcp1304/nso/models"
)

// DefaultWorkers bounds concurrent ffmpeg/ffprobe invocations when the
// configuration does not say otherwise.
const DefaultWorkers = 5

// ErrNoUsableSegments is returned when not a single input survived the
// pipeline; there is nothing to concatenate.
var ErrNoUsableSegments = errors.New("no usable segments")

// Prober inspects media files. Satisfied by *ffprobe.Prober.
type Prober interface {
	Probe(ctx context.Context, path string) (*models.StreamProfile, error)
	Duration(ctx context.Context, path string) (float64, error)
}

// Normalizer re-encodes one source into the target profile and returns the
// output path.
type Normalizer interface {
	Normalize(ctx context.Context, sourcePath string, hasAudio bool) (string, error)
}

// Config holds coordinator construction parameters.
type Config struct {
	// Workers caps concurrent in-flight files; DefaultWorkers when <= 0.
	Workers    int
	Target     models.TargetProfile
	Prober     Prober
	Normalizer Normalizer
	Logger     *zap.Logger
}

// Coordinator drives the per-file stage of the pipeline.
type Coordinator struct {
	workers    int
	target     models.TargetProfile
	prober     Prober
	normalizer Normalizer
	log        *zap.Logger
}

// New creates a Coordinator from cfg.
func New(cfg Config) *Coordinator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		workers:    workers,
		target:     cfg.Target,
		prober:     cfg.Prober,
		normalizer: cfg.Normalizer,
		log:        log,
	}
}

// Run processes every file concurrently and returns one result per input, in
// input order. Individual failures are carried in the result slice; the
// returned error is non-nil only when no file at all is usable.
func (c *Coordinator) Run(ctx context.Context, files []models.MediaFile) ([]models.NormalizationResult, error) {
	results := make([]models.NormalizationResult, len(files))

	sem := make(chan struct{}, c.workers)
	var wg sync.WaitGroup

	for i := range files {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// Stop scheduling; everything not yet started fails fast.
			for j := i; j < len(files); j++ {
				results[j] = models.NormalizationResult{
					Index:      j,
					SourcePath: files[j].Path,
					Err:        ctx.Err(),
				}
			}
			wg.Wait()
			return results, ctx.Err()
		}

		wg.Add(1)
		go func(index int, file models.MediaFile) {
			defer wg.Done()
			defer func() { <-sem }()
			results[index] = c.process(ctx, index, file)
		}(i, files[i])
	}

	wg.Wait()

	var failures error
	successes := 0
	for i := range results {
		if results[i].Success {
			successes++
		} else if results[i].Err != nil {
			failures = multierr.Append(failures, results[i].Err)
		}
	}

	if successes == 0 {
		return results, multierr.Append(ErrNoUsableSegments, failures)
	}

	c.log.Info("batch complete",
		zap.Int("total", len(files)),
		zap.Int("succeeded", successes),
		zap.Int("failed", len(files)-successes),
	)
	return results, nil
}

// process runs one file through probe, compliance check and, when needed,
// normalization, then probes the final artifact's duration for the manifest.
func (c *Coordinator) process(ctx context.Context, index int, file models.MediaFile) models.NormalizationResult {
	res := models.NormalizationResult{Index: index, SourcePath: file.Path}

	profile, err := c.prober.Probe(ctx, file.Path)
	if err != nil {
		res.Err = err
		return res
	}

	outputPath := file.Path
	if compliance.NeedsNormalization(profile, c.target) {
		c.log.Info("normalizing", zap.String("source", file.Path))
		outputPath, err = c.normalizer.Normalize(ctx, file.Path, profile.HasAudio())
		if err != nil {
			res.Err = err
			return res
		}
	} else {
		c.log.Info("already conforming, passing through", zap.String("source", file.Path))
	}

	// The duration comes from the artifact that will actually be
	// concatenated, not from the original source.
	duration, err := c.prober.Duration(ctx, outputPath)
	if err != nil {
		res.Err = err
		return res
	}

	res.OutputPath = outputPath
	res.Duration = duration
	res.Success = true
	return res
}
