package cascade

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshot/docshot/internal/detector"
	"github.com/docshot/docshot/internal/edges"
	"github.com/docshot/docshot/internal/lines"
	"github.com/docshot/docshot/internal/rectsolver"
	"github.com/docshot/docshot/internal/scene"
)

func newRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()
	ex, err := edges.NewExtractor(edges.DefaultConfig())
	require.NoError(t, err)
	det, err := detector.New(detector.DefaultConfig())
	require.NoError(t, err)
	solver, err := rectsolver.New(rectsolver.DefaultConfig())
	require.NoError(t, err)
	r, err := New(cfg, ex, det, solver, lines.DefaultConfig(), nil)
	require.NoError(t, err)
	return r
}

func flatFrame(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func fillRect(img *image.Gray, x0, y0, x1, y1 int, v uint8) {
	for y := y0; y < y1; y++ {
		row := y * img.Stride
		for x := x0; x < x1; x++ {
			img.Pix[row+x] = v
		}
	}
}

// documentFrame is a bright sheet on a dark desk, easy for the contour
// strategy.
func documentFrame() *image.Gray {
	img := flatFrame(320, 240, 40)
	fillRect(img, 60, 40, 260, 200, 200)
	return img
}

// faintFrame is a sheet only 8 intensity levels above the background:
// far below the hysteresis thresholds, but with gradients well above the
// line-cluster floor.
func faintFrame() *image.Gray {
	img := flatFrame(320, 240, 100)
	fillRect(img, 60, 40, 260, 200, 108)
	return img
}

func TestRun_ShortCircuitsOnConfidentContour(t *testing.T) {
	r := newRunner(t, DefaultConfig())
	img := documentFrame()
	analysis := scene.Analyze(img)
	require.Equal(t, scene.KindNormal, analysis.Kind)

	res := r.Run(context.Background(), img, analysis)

	require.True(t, res.Detection.Found)
	assert.Equal(t, scene.StrategyContour, res.Strategy)
	assert.GreaterOrEqual(t, res.Detection.Confidence, r.cfg.ShortCircuit)
	assert.Len(t, res.Timings, 1, "later strategies must not start")
	assert.Equal(t, "contour", res.Timings[0].Name)
	assert.False(t, res.Partial)

	q := res.Detection.Quad.Corners
	assert.InDelta(t, 60, q[0].X, 8)
	assert.InDelta(t, 40, q[0].Y, 8)
	assert.InDelta(t, 260, q[2].X, 8)
	assert.InDelta(t, 200, q[2].Y, 8)
}

func TestRun_FallsThroughToLineCluster(t *testing.T) {
	r := newRunner(t, DefaultConfig())
	img := faintFrame()
	analysis := scene.Analysis{
		Kind:  scene.KindLowContrast,
		Order: []scene.Strategy{scene.StrategyContour, scene.StrategyLineCluster},
	}

	res := r.Run(context.Background(), img, analysis)

	require.True(t, res.Detection.Found)
	assert.Equal(t, scene.StrategyLineCluster, res.Strategy)
	assert.Len(t, res.Timings, 2)
	assert.Equal(t, "line_cluster", res.Timings[1].Name)
	assert.GreaterOrEqual(t, res.Detection.Confidence, 0.50)
	assert.LessOrEqual(t, res.Detection.Confidence, 0.85)

	q := res.Detection.Quad.Corners
	assert.InDelta(t, 60, q[0].X, 3)
	assert.InDelta(t, 40, q[0].Y, 3)
	assert.InDelta(t, 260, q[2].X, 3)
	assert.InDelta(t, 200, q[2].Y, 3)
}

func TestRun_EmptySceneRunsEveryStrategy(t *testing.T) {
	r := newRunner(t, DefaultConfig())
	img := flatFrame(320, 240, 128)
	analysis := scene.Analyze(img)

	res := r.Run(context.Background(), img, analysis)

	assert.False(t, res.Detection.Found)
	assert.False(t, res.Partial)
	assert.Len(t, res.Timings, len(analysis.Order),
		"an exceeded budget must not stop the run while no candidate exists")
}

func TestRun_BudgetStopsAfterFirstCandidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Budget = time.Nanosecond
	cfg.ShortCircuit = 0.99
	r := newRunner(t, cfg)
	img := documentFrame()

	res := r.Run(context.Background(), img, scene.Analyze(img))

	require.True(t, res.Detection.Found)
	assert.Len(t, res.Timings, 1, "budget exceeded with a candidate in hand")
}

func TestRun_ContextCancelBetweenStages(t *testing.T) {
	r := newRunner(t, DefaultConfig())
	img := flatFrame(320, 240, 128)
	analysis := scene.Analyze(img)
	require.Greater(t, len(analysis.Order), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := r.Run(ctx, img, analysis)

	assert.Len(t, res.Timings, 1, "the started stage finishes, the rest are skipped")
}

func TestRun_MinAcceptRejectsWeakBest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Budget = time.Second
	cfg.ShortCircuit = 0.99
	cfg.MinAccept = 0.95
	r := newRunner(t, cfg)
	img := documentFrame()
	analysis := scene.Analyze(img)

	res := r.Run(context.Background(), img, analysis)

	assert.False(t, res.Detection.Found)
	assert.Len(t, res.Timings, len(analysis.Order))
}

func TestRun_UnknownStrategyIsNoop(t *testing.T) {
	r := newRunner(t, DefaultConfig())
	img := flatFrame(64, 64, 128)
	analysis := scene.Analysis{Order: []scene.Strategy{scene.Strategy(99)}}

	res := r.Run(context.Background(), img, analysis)

	assert.False(t, res.Detection.Found)
	assert.Len(t, res.Timings, 1)
}

func TestStageTable_CoversEveryStrategy(t *testing.T) {
	strategies := []scene.Strategy{
		scene.StrategyContour,
		scene.StrategyContrast,
		scene.StrategyDoG,
		scene.StrategyDirectional,
		scene.StrategyLineCluster,
	}
	for _, s := range strategies {
		require.Less(t, int(s), len(stageTable))
		assert.NotNil(t, stageTable[s], "strategy %s has no stage", s)
	}
}

func TestNew_Validation(t *testing.T) {
	ex, err := edges.NewExtractor(edges.DefaultConfig())
	require.NoError(t, err)
	det, err := detector.New(detector.DefaultConfig())
	require.NoError(t, err)
	solver, err := rectsolver.New(rectsolver.DefaultConfig())
	require.NoError(t, err)

	_, err = New(Config{}, ex, det, solver, lines.DefaultConfig(), nil)
	assert.Error(t, err, "zero config fails validation")

	_, err = New(DefaultConfig(), nil, det, solver, lines.DefaultConfig(), nil)
	assert.Error(t, err, "missing extractor")

	cfg := DefaultConfig()
	cfg.MinAccept = cfg.ShortCircuit + 0.1
	_, err = New(cfg, ex, det, solver, lines.DefaultConfig(), nil)
	assert.Error(t, err, "min accept above short-circuit")
}

func BenchmarkRun_Document(b *testing.B) {
	ex, _ := edges.NewExtractor(edges.DefaultConfig())
	det, _ := detector.New(detector.DefaultConfig())
	solver, _ := rectsolver.New(rectsolver.DefaultConfig())
	r, _ := New(DefaultConfig(), ex, det, solver, lines.DefaultConfig(), nil)
	img := documentFrame()
	analysis := scene.Analyze(img)
	ctx := context.Background()

	b.ResetTimer()
	for range b.N {
		r.Run(ctx, img, analysis)
	}
}
