package benchmark

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/docshot/docshot/internal/pipeline"
	"github.com/docshot/docshot/internal/testutil"
)

// Timer provides simple timing utilities for benchmarking.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer creates a new timer with the given name.
func NewTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// String returns a formatted string representation of the timer.
func (t *Timer) String() string {
	return fmt.Sprintf("%s: %v", t.name, t.duration)
}

// MemoryStats holds memory usage statistics.
type MemoryStats struct {
	AllocBytes      uint64  // Currently allocated bytes
	TotalAllocBytes uint64  // Total allocated bytes (cumulative)
	SysBytes        uint64  // Total bytes from system
	NumGC           uint32  // Number of GC runs
	GCCPUFraction   float64 // Fraction of CPU time spent in GC
}

// GetMemoryStats returns current memory statistics.
func GetMemoryStats() MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryStats{
		AllocBytes:      m.Alloc,
		TotalAllocBytes: m.TotalAlloc,
		SysBytes:        m.Sys,
		NumGC:           m.NumGC,
		GCCPUFraction:   m.GCCPUFraction,
	}
}

// String returns a formatted string representation of memory stats.
func (m MemoryStats) String() string {
	return fmt.Sprintf("Alloc: %d KB, Total: %d KB, Sys: %d KB, GC: %d (%.2f%% CPU)",
		m.AllocBytes/1024,
		m.TotalAllocBytes/1024,
		m.SysBytes/1024,
		m.NumGC,
		m.GCCPUFraction*100)
}

// allocDeltaKB returns the signed change in live heap bytes between two
// snapshots, in KB. A collection between the snapshots can make it negative.
func allocDeltaKB(before, after MemoryStats) int64 {
	if after.AllocBytes >= before.AllocBytes {
		d := after.AllocBytes - before.AllocBytes
		if d > math.MaxInt64 {
			return math.MaxInt64 / 1024
		}
		return int64(d) / 1024
	}
	d := before.AllocBytes - after.AllocBytes
	if d > math.MaxInt64 {
		return -(math.MaxInt64 / 1024)
	}
	return -int64(d) / 1024
}

// LatencyStats summarizes per-iteration wall times.
type LatencyStats struct {
	Min  time.Duration
	Mean time.Duration
	P50  time.Duration
	P95  time.Duration
	Max  time.Duration
}

// String returns a formatted string representation of the latency stats.
func (ls LatencyStats) String() string {
	return fmt.Sprintf("min: %v, mean: %v, p50: %v, p95: %v, max: %v",
		ls.Min, ls.Mean, ls.P50, ls.P95, ls.Max)
}

// computeLatencyStats summarizes the recorded samples. An empty slice
// yields the zero value.
func computeLatencyStats(samples []time.Duration) LatencyStats {
	if len(samples) == 0 {
		return LatencyStats{}
	}

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, d := range sorted {
		total += d
	}

	return LatencyStats{
		Min:  sorted[0],
		Mean: total / time.Duration(len(sorted)),
		P50:  sorted[percentileIndex(len(sorted), 50)],
		P95:  sorted[percentileIndex(len(sorted), 95)],
		Max:  sorted[len(sorted)-1],
	}
}

// percentileIndex maps a percentile to an index into a sorted sample
// slice of length n.
func percentileIndex(n, pct int) int {
	idx := n * pct / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

// BenchmarkResult holds the result of a benchmark run.
type BenchmarkResult struct {
	Name         string
	Duration     time.Duration
	Latency      LatencyStats
	MemoryBefore MemoryStats
	MemoryAfter  MemoryStats
	Iterations   int
	Error        error
}

// String returns a formatted string representation of the benchmark result.
func (br BenchmarkResult) String() string {
	if br.Error != nil {
		return fmt.Sprintf("%s: ERROR - %v", br.Name, br.Error)
	}

	return fmt.Sprintf("%s: %d iterations, mean: %v, p95: %v, total: %v, mem: %+d KB",
		br.Name, br.Iterations, br.Latency.Mean, br.Latency.P95, br.Duration,
		allocDeltaKB(br.MemoryBefore, br.MemoryAfter))
}

// Benchmark represents a benchmark function.
type Benchmark struct {
	Name string
	Func func() error
}

// BenchmarkSuite manages multiple benchmarks.
type BenchmarkSuite struct {
	benchmarks []Benchmark
	results    []BenchmarkResult
	mu         sync.Mutex
}

// NewBenchmarkSuite creates a new benchmark suite.
func NewBenchmarkSuite() *BenchmarkSuite {
	return &BenchmarkSuite{
		benchmarks: make([]Benchmark, 0),
		results:    make([]BenchmarkResult, 0),
	}
}

// Add adds a benchmark to the suite.
func (bs *BenchmarkSuite) Add(name string, fn func() error) {
	bs.benchmarks = append(bs.benchmarks, Benchmark{
		Name: name,
		Func: fn,
	})
}

// Run runs a single benchmark with the specified number of iterations.
func (bs *BenchmarkSuite) Run(name string, iterations int) BenchmarkResult {
	var benchmark Benchmark
	found := false
	for _, b := range bs.benchmarks {
		if b.Name == name {
			benchmark = b
			found = true
			break
		}
	}

	if !found {
		return BenchmarkResult{
			Name:  name,
			Error: fmt.Errorf("benchmark '%s' not found", name),
		}
	}

	return bs.runBenchmark(benchmark, iterations)
}

// RunAll runs all benchmarks in the suite.
func (bs *BenchmarkSuite) RunAll(iterations int) []BenchmarkResult {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.results = make([]BenchmarkResult, 0, len(bs.benchmarks))

	for _, benchmark := range bs.benchmarks {
		result := bs.runBenchmark(benchmark, iterations)
		bs.results = append(bs.results, result)
	}

	return bs.results
}

// runBenchmark executes a single benchmark.
func (bs *BenchmarkSuite) runBenchmark(benchmark Benchmark, iterations int) BenchmarkResult {
	// Force garbage collection before measuring
	runtime.GC()
	memBefore := GetMemoryStats()

	latencies := make([]time.Duration, 0, iterations)
	timer := NewTimer(benchmark.Name)
	var err error

	for range iterations {
		iterStart := time.Now()
		if e := benchmark.Func(); e != nil {
			err = e
			break
		}
		latencies = append(latencies, time.Since(iterStart))
	}

	duration := timer.Stop()
	memAfter := GetMemoryStats()

	return BenchmarkResult{
		Name:         benchmark.Name,
		Duration:     duration,
		Latency:      computeLatencyStats(latencies),
		MemoryBefore: memBefore,
		MemoryAfter:  memAfter,
		Iterations:   iterations,
		Error:        err,
	}
}

// Results returns the last run results.
func (bs *BenchmarkSuite) Results() []BenchmarkResult {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	return bs.results
}

// PrintResults prints formatted benchmark results.
func (bs *BenchmarkSuite) PrintResults() {
	results := bs.Results()
	fmt.Println("\nBenchmark Results:")
	fmt.Println("==================")
	for _, result := range results {
		fmt.Println(result.String())
	}
	fmt.Println()
}

// PipelineBenchmark provides specialized benchmarking for detection stages.
type PipelineBenchmark struct {
	*BenchmarkSuite
}

// NewPipelineBenchmark creates a new detection-specific benchmark suite.
func NewPipelineBenchmark() *PipelineBenchmark {
	return &PipelineBenchmark{
		BenchmarkSuite: NewBenchmarkSuite(),
	}
}

// AddEdgesBenchmark adds an edge extraction benchmark.
func (pb *PipelineBenchmark) AddEdgesBenchmark(name string, fn func() error) {
	pb.Add("Edges_"+name, fn)
}

// AddLinesBenchmark adds a line fitting benchmark.
func (pb *PipelineBenchmark) AddLinesBenchmark(name string, fn func() error) {
	pb.Add("Lines_"+name, fn)
}

// AddAspectBenchmark adds an aspect estimation benchmark.
func (pb *PipelineBenchmark) AddAspectBenchmark(name string, fn func() error) {
	pb.Add("Aspect_"+name, fn)
}

// AddEndToEndBenchmark adds a full analyzer benchmark.
func (pb *PipelineBenchmark) AddEndToEndBenchmark(name string, fn func() error) {
	pb.Add("EndToEnd_"+name, fn)
}

// SceneCase is one synthetic scene in the working-width sweep.
type SceneCase struct {
	Name        string
	Description string
	Spec        testutil.SceneSpec
}

// WidthComparisonResult holds the full-width vs reduced-width comparison
// for a single scene.
type WidthComparisonResult struct {
	Scene         string
	ImageSize     string
	FullResult    BenchmarkResult
	FastResult    BenchmarkResult
	SpeedupFactor float64 // full-width time over reduced-width time
	MemoryDiff    int64   // reduced-width heap delta minus full-width heap delta (KB)
	FullFound     bool
	FastFound     bool
}

// String returns a formatted representation of the width comparison.
func (r WidthComparisonResult) String() string {
	detect := "kept"
	switch {
	case r.FullFound && !r.FastFound:
		detect = "LOST"
	case !r.FullFound && r.FastFound:
		detect = "gained"
	case !r.FullFound && !r.FastFound:
		detect = "none"
	}

	speedupStr := "same speed"
	if r.SpeedupFactor > 1.0 {
		speedupStr = fmt.Sprintf("%.2fx faster", r.SpeedupFactor)
	} else if r.SpeedupFactor < 1.0 {
		speedupStr = fmt.Sprintf("%.2fx slower", 1.0/r.SpeedupFactor)
	}

	return fmt.Sprintf("%s (%s): full: %v, fast: %v (%s), detection %s, mem diff: %+d KB",
		r.Scene, r.ImageSize, r.FullResult.Latency.Mean, r.FastResult.Latency.Mean,
		speedupStr, detect, r.MemoryDiff)
}

// WidthSweepBenchmark measures how shrinking the detection working width
// trades latency against detection success across synthetic scenes.
type WidthSweepBenchmark struct {
	fullWidth int
	fastWidth int
	scenes    []SceneCase
	results   []WidthComparisonResult
}

// NewWidthSweepBenchmark creates a sweep comparing two working widths over
// a default set of scenes.
func NewWidthSweepBenchmark(fullWidth, fastWidth int) *WidthSweepBenchmark {
	tilted := testutil.TiltedSceneSpec()
	tilted.TextLines = 5

	noisy := testutil.DefaultSceneSpec()
	noisy.Noise = 0.05
	noisy.Seed = 7

	lowContrast := testutil.DefaultSceneSpec()
	lowContrast.Bg = 100
	lowContrast.Fill = 135

	return &WidthSweepBenchmark{
		fullWidth: fullWidth,
		fastWidth: fastWidth,
		scenes: []SceneCase{
			{"frontal_sheet", "Frontal sheet", testutil.DefaultSceneSpec()},
			{"tilted_sheet", "Tilted sheet with text", tilted},
			{"noisy_sheet", "Frontal sheet with sensor noise", noisy},
			{"low_contrast_sheet", "Sheet barely brighter than background", lowContrast},
		},
		results: make([]WidthComparisonResult, 0),
	}
}

// AddScene adds a custom scene to the sweep.
func (b *WidthSweepBenchmark) AddScene(name, description string, spec testutil.SceneSpec) {
	b.scenes = append(b.scenes, SceneCase{
		Name:        name,
		Description: description,
		Spec:        spec,
	})
}

// RunBenchmark executes the complete working-width sweep.
func (b *WidthSweepBenchmark) RunBenchmark(iterations int) ([]WidthComparisonResult, error) {
	b.results = make([]WidthComparisonResult, 0, len(b.scenes))

	for _, sc := range b.scenes {
		fmt.Printf("Benchmarking: %s (%s)\n", sc.Name, sc.Description)

		result, err := b.benchmarkScene(sc, iterations)
		if err != nil {
			fmt.Printf("  Error: %v\n", err)
			continue
		}

		b.results = append(b.results, result)
		fmt.Printf("  %s\n", result.String())
	}

	return b.results, nil
}

// benchmarkScene runs full-width and reduced-width benchmarks for one scene.
func (b *WidthSweepBenchmark) benchmarkScene(sc SceneCase, iterations int) (WidthComparisonResult, error) {
	img := sc.Spec.Render()
	bounds := img.Bounds()

	result := WidthComparisonResult{
		Scene: sc.Name,
		ImageSize: fmt.Sprintf("%dx%d (%.1fMP)",
			bounds.Dx(), bounds.Dy(), float64(bounds.Dx()*bounds.Dy())/1e6),
	}

	fullResult, fullFrame, err := b.benchmarkWidth(sc.Name+"_full", img, b.fullWidth, iterations)
	if err != nil {
		return result, fmt.Errorf("full-width benchmark failed: %w", err)
	}
	result.FullResult = fullResult
	result.FullFound = fullFrame.Detection.Found

	fastResult, fastFrame, err := b.benchmarkWidth(sc.Name+"_fast", img, b.fastWidth, iterations)
	if err != nil {
		return result, fmt.Errorf("reduced-width benchmark failed: %w", err)
	}
	result.FastResult = fastResult
	result.FastFound = fastFrame.Detection.Found

	result.SpeedupFactor = float64(fullResult.Duration.Nanoseconds()) / float64(fastResult.Duration.Nanoseconds())
	result.MemoryDiff = allocDeltaKB(fastResult.MemoryBefore, fastResult.MemoryAfter) -
		allocDeltaKB(fullResult.MemoryBefore, fullResult.MemoryAfter)

	return result, nil
}

// benchmarkWidth measures AnalyzeFrame at one working width and reports
// the last frame result alongside the timing.
func (b *WidthSweepBenchmark) benchmarkWidth(
	name string, img image.Image, width, iterations int,
) (BenchmarkResult, *pipeline.FrameResult, error) {
	analyzer, err := pipeline.NewBuilder().
		WithWorkingWidth(width).
		Build()
	if err != nil {
		return BenchmarkResult{}, nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	defer func() { _ = analyzer.Close() }()

	// Warmup
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Second)
	frame, err := analyzer.AnalyzeFrame(warmCtx, img)
	warmCancel()
	if err != nil {
		return BenchmarkResult{}, nil, fmt.Errorf("warmup analysis failed: %w", err)
	}

	benchmarkFunc := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		fr, err := analyzer.AnalyzeFrame(ctx, img)
		if err != nil {
			return err
		}
		frame = fr
		return nil
	}

	suite := NewBenchmarkSuite()
	suite.Add(name, benchmarkFunc)

	return suite.Run(name, iterations), frame, nil
}

// PrintDetailedResults prints comprehensive benchmark results.
func (b *WidthSweepBenchmark) PrintDetailedResults() {
	if len(b.results) == 0 {
		fmt.Println("No benchmark results available")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Printf("Working-Width Detection Benchmark Results (%dpx vs %dpx)\n", b.fullWidth, b.fastWidth)
	fmt.Println(strings.Repeat("=", 80))

	// System info
	fmt.Printf("System Information:\n")
	fmt.Printf("  GOOS: %s\n", runtime.GOOS)
	fmt.Printf("  GOARCH: %s\n", runtime.GOARCH)
	fmt.Printf("  NumCPU: %d\n", runtime.NumCPU())
	fmt.Printf("  Go Version: %s\n", runtime.Version())
	fmt.Println()

	// Individual results
	fmt.Println("Individual Scene Results:")
	fmt.Println(strings.Repeat("-", 50))
	for _, result := range b.results {
		fmt.Printf("• %s\n", result.String())
	}
	fmt.Println()

	b.printSummaryStatistics()
	b.printRecommendations()
}

// printSummaryStatistics calculates and prints summary stats.
func (b *WidthSweepBenchmark) printSummaryStatistics() {
	var fullTotalTime, fastTotalTime time.Duration
	var speedups []float64
	fullFoundCount := 0
	fastFoundCount := 0

	for _, result := range b.results {
		fullTotalTime += result.FullResult.Duration
		fastTotalTime += result.FastResult.Duration
		speedups = append(speedups, result.SpeedupFactor)
		if result.FullFound {
			fullFoundCount++
		}
		if result.FastFound {
			fastFoundCount++
		}
	}

	fmt.Println("Summary Statistics:")
	fmt.Println(strings.Repeat("-", 25))
	fmt.Printf("  Total Full-Width Time: %v\n", fullTotalTime)
	fmt.Printf("  Total Reduced-Width Time: %v\n", fastTotalTime)
	if fastTotalTime > 0 {
		fmt.Printf("  Overall Speedup: %.2fx\n",
			float64(fullTotalTime.Nanoseconds())/float64(fastTotalTime.Nanoseconds()))
	}

	if len(speedups) > 0 {
		avgSpeedup := 0.0
		for _, s := range speedups {
			avgSpeedup += s
		}
		avgSpeedup /= float64(len(speedups))
		fmt.Printf("  Average Speedup: %.2fx\n", avgSpeedup)
	}

	fmt.Printf("  Detection Rate at %dpx: %d/%d\n", b.fullWidth, fullFoundCount, len(b.results))
	fmt.Printf("  Detection Rate at %dpx: %d/%d\n", b.fastWidth, fastFoundCount, len(b.results))
	fmt.Println()
}

// printRecommendations provides usage recommendations based on results.
func (b *WidthSweepBenchmark) printRecommendations() {
	fmt.Println("Recommendations:")
	fmt.Println(strings.Repeat("-", 20))

	if len(b.results) == 0 {
		fmt.Println("  No results to analyze")
		return
	}

	lostCount := 0
	fasterCount := 0
	for _, result := range b.results {
		if result.FullFound && !result.FastFound {
			lostCount++
		}
		if result.SpeedupFactor > 1.2 {
			fasterCount++
		}
	}

	switch {
	case lostCount > 0:
		fmt.Printf("  • %dpx loses detections on %d scene(s), keep the full width\n", b.fastWidth, lostCount)
		fmt.Println("  • Reduce the width only for preview overlays where misses are tolerable")
	case fasterCount == 0:
		fmt.Println("  • The reduced width saves little on these frame sizes, keep the full width")
		fmt.Println("  • Larger camera frames benefit more from downscaling")
	default:
		fmt.Printf("  • %dpx keeps every detection and runs faster, suitable for live viewfinder loops\n", b.fastWidth)
		fmt.Printf("  • Use %dpx for final captures where corner accuracy matters most\n", b.fullWidth)
	}
	fmt.Println()
}

// GetResults returns the benchmark results.
func (b *WidthSweepBenchmark) GetResults() []WidthComparisonResult {
	return b.results
}
