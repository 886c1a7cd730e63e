package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rhcp1304/nso/config"
	"github.com/rhcp1304/nso/coordinator"
	"github.com/rhcp1304/nso/internal/logging"
	"github.com/rhcp1304/nso/merger"
)

func main() {
	// Step 1: Load configuration (CLI flags > config file > defaults)
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Step 2: Handle dry-run mode
	if cfg.DryRun {
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("                      DRY RUN MODE")
		fmt.Println("═══════════════════════════════════════════════════════════")
		cfg.PrintConfig()
		fmt.Println()
		m := merger.New(cfg, logger)
		if _, err := m.Merge(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "❌ %v\n", err)
			os.Exit(1)
		}
		fmt.Println("\n✓ Configuration is valid. Nothing was encoded.")
		return
	}

	// Step 3: Set up context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Step 4: Register signal handlers (Ctrl+C, SIGTERM)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n\n⚠️  Interrupt received, cleaning up...")
		cancel()
	}()

	// Step 5: Run the merge pipeline
	if err := run(ctx, cfg, logger); err != nil {
		if ctx.Err() == context.Canceled {
			fmt.Println("\n⚠️  Merge cancelled by user")
			os.Exit(130) // Standard exit code for SIGINT
		}
		fmt.Fprintf(os.Stderr, "\n❌ Pipeline error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the complete merge workflow and prints the final report
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	fmt.Println("╔════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                NSO - NORMALIZE, SORT AND MERGE                 ║")
	fmt.Println("╚════════════════════════════════════════════════════════════════╝")
	fmt.Printf("Input:  %s\n", cfg.Input)
	fmt.Printf("Output: %s\n", cfg.Output)
	fmt.Println()

	m := merger.New(cfg, logger)
	summary, err := m.Merge(ctx)
	if err != nil {
		if errors.Is(err, coordinator.ErrNoUsableSegments) {
			return fmt.Errorf("every input failed, nothing to merge: %w", err)
		}
		return err
	}

	// Output file info for the report
	outputSize := int64(0)
	if info, statErr := os.Stat(summary.OutputPath); statErr == nil {
		outputSize = info.Size()
	}

	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("                     ✅ SUCCESS!")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  Output:      %s\n", summary.OutputPath)
	fmt.Printf("  Size:        %.2f MB\n", float64(outputSize)/(1024*1024))
	fmt.Printf("  Segments:    %d of %d merged\n", summary.Succeeded, summary.Total)
	if summary.ManifestPath != "" {
		fmt.Printf("  Timestamps:  %s\n", summary.ManifestPath)
	}
	if summary.Failed > 0 {
		fmt.Printf("  ⚠️  Failed:   %d (see %s)\n", summary.Failed, summary.LedgerPath)
	}
	fmt.Printf("  Total time:  %.2fs\n", summary.Elapsed.Seconds())
	fmt.Println("═══════════════════════════════════════════════════════════")

	return nil
}
