package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/docshot/docshot/internal/benchmark"
	"github.com/docshot/docshot/internal/testutil"
	"github.com/docshot/docshot/internal/utils"
)

func main() {
	var (
		fullWidth  = flag.Int("full-width", 960, "Full detection working width in pixels")
		fastWidth  = flag.Int("fast-width", 480, "Reduced detection working width in pixels")
		iterations = flag.Int("iterations", 20, "Number of iterations per scene and width")
		large      = flag.Bool("large", false, "Include a 1024x768 scene in the sweep")
		outputFile = flag.String("output", "", "Output file for results (optional)")
	)
	flag.Parse()

	fmt.Println("docshot Working-Width Detection Benchmark")
	fmt.Println("=========================================")

	if *fullWidth <= 0 || *fastWidth <= 0 {
		log.Fatalf("Working widths must be positive, got full=%d fast=%d", *fullWidth, *fastWidth)
	}
	if *fastWidth >= *fullWidth {
		log.Fatalf("Reduced width %d must be smaller than full width %d", *fastWidth, *fullWidth)
	}

	sweep := benchmark.NewWidthSweepBenchmark(*fullWidth, *fastWidth)
	if *large {
		sweep.AddScene("frontal_large", "Frontal sheet at 1024x768", largeSceneSpec())
	}

	fmt.Printf("Running benchmarks with %d iterations per scene and width...\n\n", *iterations)

	results, err := sweep.RunBenchmark(*iterations)
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	sweep.PrintDetailedResults()

	if *outputFile != "" {
		if err := saveResultsToFile(*outputFile, results); err != nil {
			log.Printf("Failed to save results to file: %v", err)
		} else {
			fmt.Printf("Results saved to: %s\n", *outputFile)
		}
	}
}

// largeSceneSpec scales the default sheet into a 1024x768 frame.
func largeSceneSpec() testutil.SceneSpec {
	spec := testutil.DefaultSceneSpec()
	spec.Size = testutil.LargeScene
	spec.Corners = utils.Quad{
		{X: 272, Y: 64}, {X: 752, Y: 64}, {X: 752, Y: 704}, {X: 272, Y: 704},
	}
	return spec
}

func saveResultsToFile(filename string, results []benchmark.WidthComparisonResult) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	// Write header
	_, _ = fmt.Fprintln(file, "docshot Working-Width Benchmark Results")
	_, _ = fmt.Fprintln(file, "=======================================")
	_, _ = fmt.Fprintln(file)

	// Write individual results
	for _, result := range results {
		_, _ = fmt.Fprintf(file, "%s\n", result.String())
	}

	_, _ = fmt.Fprintln(file)
	_, _ = fmt.Fprintln(file, "CSV Format:")
	_, _ = fmt.Fprintln(file, "Scene,Size,Full_ms,Fast_ms,Speedup,Memory_Diff_KB,Full_Found,Fast_Found")

	for _, result := range results {
		fullMs := float64(result.FullResult.Latency.Mean.Nanoseconds()) / 1e6
		fastMs := float64(result.FastResult.Latency.Mean.Nanoseconds()) / 1e6

		_, _ = fmt.Fprintf(file, "%s,%s,%.2f,%.2f,%.2f,%d,%t,%t\n",
			result.Scene,
			result.ImageSize,
			fullMs,
			fastMs,
			result.SpeedupFactor,
			result.MemoryDiff,
			result.FullFound,
			result.FastFound,
		)
	}

	return nil
}
