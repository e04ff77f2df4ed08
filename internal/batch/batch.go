// Package batch runs document detection over collections of image
// files: paths and directories are expanded to a file list, the frames
// are fanned out over the analyzer's worker pool, and the per-file
// results are formatted for output.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/docshot/docshot/internal/pipeline"
)

// ProcessBatch discovers image files under the given paths and runs
// detection over all of them.
func ProcessBatch(ctx context.Context, paths []string, config *Config) (*Result, error) {
	files, err := discoverImageFiles(paths, config.Recursive, config.IncludePatterns, config.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}

	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}

	analyzer, err := buildAnalyzer(config)
	if err != nil {
		return nil, fmt.Errorf("failed to build analyzer: %w", err)
	}
	defer func() {
		if err := analyzer.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing analyzer: %v\n", err)
		}
	}()

	startTime := time.Now()
	results, err := processImages(ctx, analyzer, files, config)
	duration := time.Since(startTime)

	if err != nil {
		return nil, fmt.Errorf("batch processing failed: %w", err)
	}

	return &Result{
		Results:     results,
		ImagePaths:  files,
		Duration:    duration,
		WorkerCount: resolveWorkers(config.Workers),
	}, nil
}

// buildAnalyzer creates the analyzer from the batch configuration,
// including the progress reporter chosen by the progress flags.
func buildAnalyzer(config *Config) (*pipeline.Analyzer, error) {
	var progress pipeline.ProgressCallback
	switch {
	case config.Quiet:
		// no progress reporting
	case config.ShowProgress:
		progress = pipeline.NewConsoleProgressCallback(os.Stdout, "Analyzing: ").
			WithUpdateInterval(config.ProgressInterval)
	default:
		progress = pipeline.NewLogProgressCallback(nil, 0)
	}

	return pipeline.NewBuilder().
		WithConfig(config.Analyzer).
		WithWorkers(config.Workers).
		WithProgressCallback(progress).
		Build()
}

func resolveWorkers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}
