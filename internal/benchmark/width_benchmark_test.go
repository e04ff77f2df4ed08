package benchmark

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/docshot/docshot/internal/pipeline"
	"github.com/docshot/docshot/internal/testutil"
)

// Benchmark test functions for Go testing framework.
func BenchmarkDetect_Frontal_Full(b *testing.B) {
	benchmarkDetectWidth(b, testutil.DefaultSceneSpec().Render(), 640)
}

func BenchmarkDetect_Frontal_Fast(b *testing.B) {
	benchmarkDetectWidth(b, testutil.DefaultSceneSpec().Render(), 320)
}

func BenchmarkDetect_Tilted_Full(b *testing.B) {
	spec := testutil.TiltedSceneSpec()
	spec.TextLines = 5
	benchmarkDetectWidth(b, spec.Render(), 640)
}

func BenchmarkDetect_Tilted_Fast(b *testing.B) {
	spec := testutil.TiltedSceneSpec()
	spec.TextLines = 5
	benchmarkDetectWidth(b, spec.Render(), 320)
}

// benchmarkDetectWidth is a helper for Go benchmark tests.
func benchmarkDetectWidth(b *testing.B, img image.Image, width int) {
	b.Helper()

	analyzer, err := pipeline.NewBuilder().
		WithWorkingWidth(width).
		Build()
	if err != nil {
		b.Fatalf("Failed to create analyzer: %v", err)
	}
	defer func() { _ = analyzer.Close() }()

	// Warmup
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Second)
	_, _ = analyzer.AnalyzeFrame(warmCtx, img)
	warmCancel()

	b.ResetTimer()
	for range b.N {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := analyzer.AnalyzeFrame(ctx, img)
		cancel()
		if err != nil {
			b.Fatalf("Frame analysis failed: %v", err)
		}
	}
}
