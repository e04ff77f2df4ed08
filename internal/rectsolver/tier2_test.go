package rectsolver

import (
	"testing"

	"github.com/docshot/docshot/internal/lines"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testField returns zeroed gradient planes for a 320x240 frame.
const fieldW, fieldH = 320, 240

func testField() (gx, gy []float32) {
	return make([]float32, fieldW*fieldH), make([]float32, fieldW*fieldH)
}

// drawVerticalEdge writes a triangular gx band peaking at col, so coarse
// sweeps several pixels away still see a response to refine from.
func drawVerticalEdge(gx []float32, col, y0, y1 int, peak float64) {
	for y := y0; y <= y1; y++ {
		for d := -7; d <= 7; d++ {
			x := col + d
			if x < 0 || x >= fieldW {
				continue
			}
			v := peak - float64(abs(d))
			if v > 0 {
				gx[y*fieldW+x] = float32(v)
			}
		}
	}
}

// drawHorizontalEdge writes a triangular gy band peaking at row.
func drawHorizontalEdge(gy []float32, row, x0, x1 int, peak float64) {
	for x := x0; x <= x1; x++ {
		for d := -7; d <= 7; d++ {
			y := row + d
			if y < 0 || y >= fieldH {
				continue
			}
			v := peak - float64(abs(d))
			if v > 0 {
				gy[y*fieldW+x] = float32(v)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// documentField draws all four boundaries of a document spanning columns
// 60-260 and rows 40-200.
func documentField() (gx, gy []float32) {
	gx, gy = testField()
	drawHorizontalEdge(gy, 40, 56, 264, 8)
	drawHorizontalEdge(gy, 200, 56, 264, 8)
	drawVerticalEdge(gx, 60, 33, 207, 8)
	drawVerticalEdge(gx, 260, 33, 207, 8)
	return gx, gy
}

func assertDocumentCorners(t *testing.T, sol Solution, delta float64) {
	t.Helper()
	want := [4][2]float64{{60, 40}, {260, 40}, {260, 200}, {60, 200}}
	for i, c := range sol.Corners {
		assert.InDelta(t, want[i][0], c.X, delta, "corner %d x", i)
		assert.InDelta(t, want[i][1], c.Y, delta, "corner %d y", i)
	}
}

func TestSolve_Tier2ThreeEdge(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	gx, gy := documentField()

	// Top, bottom, and left known; the right side must be found by the
	// constrained search.
	cs := []lines.Cluster{
		cluster(lines.Horizontal, 0, -80, 200),
		cluster(lines.Horizontal, 0, 80, 200),
		cluster(lines.Vertical, 90, -100, 160),
	}
	sol, ok := s.Solve(cs, gx, gy, fieldW, fieldH)

	require.True(t, ok)
	assert.Equal(t, 2, sol.Tier)
	assert.Equal(t, 3, sol.Clusters)
	assert.Equal(t, 1, sol.Searched)
	assert.GreaterOrEqual(t, sol.Confidence, 0.45)
	assert.LessOrEqual(t, sol.Confidence, 0.75)
	assertDocumentCorners(t, sol, 2)
}

func TestSolve_Tier2ParallelPair(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	gx, gy := documentField()

	// Only the horizontal pair is known; both verticals are searched.
	cs := []lines.Cluster{
		cluster(lines.Horizontal, 0, -80, 200),
		cluster(lines.Horizontal, 0, 80, 200),
	}
	sol, ok := s.Solve(cs, gx, gy, fieldW, fieldH)

	require.True(t, ok)
	assert.Equal(t, 2, sol.Tier)
	assert.Equal(t, 2, sol.Clusters)
	assert.Equal(t, 2, sol.Searched)
	assertDocumentCorners(t, sol, 2)
}

func TestSolve_Tier2Corner(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	gx, gy := documentField()

	// One corner known (top and left); bottom and right are searched.
	cs := []lines.Cluster{
		cluster(lines.Horizontal, 0, -80, 200),
		cluster(lines.Vertical, 90, -100, 160),
	}
	sol, ok := s.Solve(cs, gx, gy, fieldW, fieldH)

	require.True(t, ok)
	assert.Equal(t, 2, sol.Tier)
	assert.Equal(t, 2, sol.Clusters)
	assert.Equal(t, 2, sol.Searched)
	assertDocumentCorners(t, sol, 2)
}

func TestSolve_Tier2VerticalPairThreeEdge(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	gx, gy := documentField()

	// Both verticals plus the top; the bottom is searched.
	cs := []lines.Cluster{
		cluster(lines.Vertical, 90, -100, 160),
		cluster(lines.Vertical, 90, 100, 160),
		cluster(lines.Horizontal, 0, -80, 200),
	}
	sol, ok := s.Solve(cs, gx, gy, fieldW, fieldH)

	require.True(t, ok)
	assert.Equal(t, 2, sol.Tier)
	assert.Equal(t, 3, sol.Clusters)
	assertDocumentCorners(t, sol, 2)
}

func TestSolve_Tier2NeedsGradientSupport(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	gx, gy := testField()

	// Known clusters but a flat gradient field: the search finds nothing
	// and the restricted scan has no peaks either.
	cs := []lines.Cluster{
		cluster(lines.Horizontal, 0, -80, 200),
		cluster(lines.Horizontal, 0, 80, 200),
		cluster(lines.Vertical, 90, -100, 160),
	}
	_, ok := s.Solve(cs, gx, gy, fieldW, fieldH)
	assert.False(t, ok)
}
