package benchmark

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshot/docshot/internal/testutil"
)

func TestBenchmarkSuite(t *testing.T) {
	suite := NewBenchmarkSuite()
	assert.NotNil(t, suite)
	assert.Empty(t, suite.benchmarks)

	suite.Add("test_benchmark", func() error {
		time.Sleep(1 * time.Millisecond)
		return nil
	})

	assert.Len(t, suite.benchmarks, 1)
	assert.Equal(t, "test_benchmark", suite.benchmarks[0].Name)
}

func TestBenchmarkSuiteRun(t *testing.T) {
	suite := NewBenchmarkSuite()

	suite.Add("success_test", func() error {
		time.Sleep(1 * time.Millisecond)
		return nil
	})

	suite.Add("error_test", func() error {
		return errors.New("test error")
	})

	result := suite.Run("success_test", 5)
	assert.Equal(t, "success_test", result.Name)
	assert.Equal(t, 5, result.Iterations)
	require.NoError(t, result.Error)
	assert.Positive(t, result.Duration)
	assert.Positive(t, result.Latency.Mean)
	assert.GreaterOrEqual(t, result.Latency.Max, result.Latency.Min)
	assert.GreaterOrEqual(t, result.Latency.P95, result.Latency.P50)

	result = suite.Run("error_test", 3)
	assert.Equal(t, "error_test", result.Name)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "test error")

	result = suite.Run("non_existent", 1)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "not found")
}

func TestBenchmarkSuiteRunAll(t *testing.T) {
	suite := NewBenchmarkSuite()

	suite.Add("fast_test", func() error {
		time.Sleep(1 * time.Millisecond)
		return nil
	})

	suite.Add("slow_test", func() error {
		time.Sleep(5 * time.Millisecond)
		return nil
	})

	results := suite.RunAll(3)
	require.Len(t, results, 2)

	storedResults := suite.Results()
	assert.Equal(t, results, storedResults)

	fastResult := results[0]
	slowResult := results[1]

	assert.Equal(t, "fast_test", fastResult.Name)
	assert.Equal(t, "slow_test", slowResult.Name)
	assert.Equal(t, 3, fastResult.Iterations)
	assert.Equal(t, 3, slowResult.Iterations)
	assert.NoError(t, fastResult.Error)
	assert.NoError(t, slowResult.Error)

	// The sleeps guarantee the ordering
	assert.Greater(t, slowResult.Duration, fastResult.Duration)
}

func TestComputeLatencyStats(t *testing.T) {
	samples := make([]time.Duration, 0, 20)
	for i := 20; i >= 1; i-- {
		samples = append(samples, time.Duration(i)*time.Millisecond)
	}

	stats := computeLatencyStats(samples)
	assert.Equal(t, 1*time.Millisecond, stats.Min)
	assert.Equal(t, 20*time.Millisecond, stats.Max)
	assert.Equal(t, 10500*time.Microsecond, stats.Mean)
	assert.Equal(t, 11*time.Millisecond, stats.P50)
	assert.Equal(t, 20*time.Millisecond, stats.P95)

	single := computeLatencyStats([]time.Duration{5 * time.Millisecond})
	assert.Equal(t, 5*time.Millisecond, single.Min)
	assert.Equal(t, 5*time.Millisecond, single.P50)
	assert.Equal(t, 5*time.Millisecond, single.P95)
	assert.Equal(t, 5*time.Millisecond, single.Max)

	assert.Equal(t, LatencyStats{}, computeLatencyStats(nil))
}

func TestAllocDeltaKB(t *testing.T) {
	before := MemoryStats{AllocBytes: 10 * 1024}
	after := MemoryStats{AllocBytes: 74 * 1024}

	assert.Equal(t, int64(64), allocDeltaKB(before, after))
	assert.Equal(t, int64(-64), allocDeltaKB(after, before))
	assert.Equal(t, int64(0), allocDeltaKB(before, before))
}

func TestPipelineBenchmark(t *testing.T) {
	pb := NewPipelineBenchmark()
	assert.NotNil(t, pb)
	assert.NotNil(t, pb.BenchmarkSuite)

	pb.AddEdgesBenchmark("gradient_map", func() error { return nil })
	pb.AddLinesBenchmark("segment_fit", func() error { return nil })
	pb.AddAspectBenchmark("single_frame", func() error { return nil })
	pb.AddEndToEndBenchmark("frontal_scene", func() error { return nil })

	assert.Len(t, pb.benchmarks, 4)

	names := make([]string, len(pb.benchmarks))
	for i, b := range pb.benchmarks {
		names[i] = b.Name
	}

	assert.Contains(t, names, "Edges_gradient_map")
	assert.Contains(t, names, "Lines_segment_fit")
	assert.Contains(t, names, "Aspect_single_frame")
	assert.Contains(t, names, "EndToEnd_frontal_scene")
}

func TestWidthSweepBenchmark(t *testing.T) {
	sweep := NewWidthSweepBenchmark(640, 320)
	require.Len(t, sweep.scenes, 4)

	results, err := sweep.RunBenchmark(2)
	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.Equal(t, results, sweep.GetResults())

	for _, r := range results {
		assert.NoError(t, r.FullResult.Error)
		assert.NoError(t, r.FastResult.Error)
		assert.Equal(t, "640x480 (0.3MP)", r.ImageSize)
		assert.Positive(t, r.SpeedupFactor)
		assert.Positive(t, r.FullResult.Latency.Mean)
	}

	// The high-contrast frontal sheet survives the downscale.
	assert.Equal(t, "frontal_sheet", results[0].Scene)
	assert.True(t, results[0].FullFound)
	assert.True(t, results[0].FastFound)
}

func TestWidthSweepAddScene(t *testing.T) {
	sweep := NewWidthSweepBenchmark(640, 480)
	sweep.AddScene("custom_scene", "Custom", testutil.DefaultSceneSpec())

	require.Len(t, sweep.scenes, 5)
	assert.Equal(t, "custom_scene", sweep.scenes[4].Name)
}

// Example usage of the suite with real renderer workloads.
func TestSuiteWithSceneRender(t *testing.T) {
	suite := NewBenchmarkSuite()

	suite.Add("render_frontal", func() error {
		_ = testutil.DefaultSceneSpec().Render()
		return nil
	})

	suite.Add("render_tilted", func() error {
		spec := testutil.TiltedSceneSpec()
		spec.TextLines = 5
		_ = spec.Render()
		return nil
	})

	results := suite.RunAll(5)
	require.Len(t, results, 2)

	t.Log("Scene render results:")
	for _, result := range results {
		t.Log(result.String())
	}

	for _, result := range results {
		require.NoError(t, result.Error)
		assert.Positive(t, result.Duration)
	}
}
