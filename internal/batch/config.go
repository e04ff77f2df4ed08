package batch

import (
	"fmt"
	"os"
	"time"

	"github.com/docshot/docshot/internal/pipeline"
)

// Config holds all configuration for a batch detection run.
type Config struct {
	// Analyzer settings
	Analyzer pipeline.Config

	// Output settings
	Format     string
	OutputFile string
	OverlayDir string

	// Parallel processing settings
	Workers int

	// File discovery settings
	Recursive       bool
	IncludePatterns []string
	ExcludePatterns []string

	// Progress settings
	ShowProgress     bool
	Quiet            bool
	ShowStats        bool
	ProgressInterval time.Duration

	// ContinueOnError keeps the run going after a file fails to load or
	// analyze; the failed slot stays nil in the results.
	ContinueOnError bool
}

// Result holds the outcome of a batch run. Results is aligned with
// ImagePaths; a nil entry is a file that produced no analysis.
type Result struct {
	Results     []*pipeline.FrameResult
	ImagePaths  []string
	Duration    time.Duration
	WorkerCount int
}

// Processed counts files that produced a frame result.
func (r *Result) Processed() int {
	n := 0
	for _, res := range r.Results {
		if res != nil {
			n++
		}
	}
	return n
}

// Detected counts frames with an accepted document detection.
func (r *Result) Detected() int {
	n := 0
	for _, res := range r.Results {
		if res != nil && res.Detection.Found {
			n++
		}
	}
	return n
}

// Failed counts files that produced no result.
func (r *Result) Failed() int {
	return len(r.ImagePaths) - r.Processed()
}

// FormatResults formats the batch results in the specified format.
func (r *Result) FormatResults(format string) (string, error) {
	return formatBatchResults(r.Results, r.ImagePaths, format)
}

// SaveResults writes the formatted results to a file or stdout.
func (r *Result) SaveResults(format, outputFile string, quiet bool) error {
	output, err := r.FormatResults(format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !quiet {
			_, _ = fmt.Fprintf(os.Stdout, "Results written to %s\n", outputFile)
		}
	} else {
		_, _ = fmt.Fprint(os.Stdout, output)
	}

	return nil
}

// PrintStats prints processing statistics.
func (r *Result) PrintStats(quiet bool) {
	if quiet {
		return
	}

	processed := r.Processed()
	avg := time.Duration(0)
	throughput := 0.0
	if processed > 0 {
		avg = r.Duration / time.Duration(processed)
	}
	if r.Duration > 0 {
		throughput = float64(processed) / r.Duration.Seconds()
	}

	_, _ = fmt.Fprintf(os.Stdout, "\nProcessing Statistics:\n")
	_, _ = fmt.Fprintf(os.Stdout, "  Total images: %d\n", len(r.ImagePaths))
	_, _ = fmt.Fprintf(os.Stdout, "  Processed: %d\n", processed)
	_, _ = fmt.Fprintf(os.Stdout, "  Failed: %d\n", r.Failed())
	_, _ = fmt.Fprintf(os.Stdout, "  Documents found: %d\n", r.Detected())
	_, _ = fmt.Fprintf(os.Stdout, "  Workers: %d\n", r.WorkerCount)
	_, _ = fmt.Fprintf(os.Stdout, "  Duration: %v\n", r.Duration.Round(time.Millisecond))
	_, _ = fmt.Fprintf(os.Stdout, "  Avg per image: %v\n", avg.Round(time.Millisecond))
	_, _ = fmt.Fprintf(os.Stdout, "  Throughput: %.1f images/sec\n", throughput)
}
