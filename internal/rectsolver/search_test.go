package rectsolver

import (
	"math"
	"testing"

	"github.com/docshot/docshot/internal/lines"
	"github.com/docshot/docshot/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_PeaksAtBoundary(t *testing.T) {
	gx, gy := testField()
	drawVerticalEdge(gx, 100, 0, fieldH-1, 8)

	at := func(pos float64) float64 {
		return response(gx, gy, fieldW, fieldH, hypothesis{o: lines.Vertical, pos: pos, tilt: 0}, 0, fieldH)
	}
	assert.InDelta(t, 8, at(100), 1e-6)
	assert.Greater(t, at(100), at(94))
	assert.Zero(t, at(200))
}

func TestResponse_CancelsAlternatingSigns(t *testing.T) {
	gx, gy := testField()
	// Text-like clutter: the gradient flips sign every pixel along the
	// row, unlike a document boundary which keeps one sign.
	for x := 0; x < fieldW; x++ {
		v := float32(8)
		if x%2 == 1 {
			v = -8
		}
		gy[120*fieldW+x] = v
	}

	r := response(gx, gy, fieldW, fieldH, hypothesis{o: lines.Horizontal, pos: 120, tilt: 0}, 0, fieldW)
	assert.Less(t, r, 0.1, "alternating signs must cancel")
}

func TestResponse_FollowsTilt(t *testing.T) {
	gx, gy := testField()
	// A horizontal boundary descending 2 degrees across the frame.
	slope := math.Tan(2 * math.Pi / 180)
	for x := 0; x < fieldW; x++ {
		y := int(math.Round(120 + (float64(x)-fieldW/2)*slope))
		if y >= 0 && y < fieldH {
			gy[y*fieldW+x] = 8
		}
	}

	tilted := response(gx, gy, fieldW, fieldH, hypothesis{o: lines.Horizontal, pos: 120, tilt: 2}, 0, fieldW)
	flat := response(gx, gy, fieldW, fieldH, hypothesis{o: lines.Horizontal, pos: 120, tilt: 0}, 0, fieldW)
	assert.Greater(t, tilted, flat, "matching tilt collects the full boundary")
	assert.Greater(t, tilted, 7.0)
}

func TestHypothesisLine_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		hyp  hypothesis
	}{
		{name: "flat horizontal", hyp: hypothesis{o: lines.Horizontal, pos: 40, tilt: 0}},
		{name: "tilted horizontal", hyp: hypothesis{o: lines.Horizontal, pos: 170, tilt: -6}},
		{name: "flat vertical", hyp: hypothesis{o: lines.Vertical, pos: 260, tilt: 0}},
		{name: "tilted vertical", hyp: hypothesis{o: lines.Vertical, pos: 60, tilt: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ln := tt.hyp.line(fieldW, fieldH)
			got := axisCrossing(ln, tt.hyp.o, fieldW, fieldH)
			assert.InDelta(t, tt.hyp.pos, got, 1e-9)
		})
	}
}

func TestHypothesisLine_MatchesClusterLine(t *testing.T) {
	// A cluster and a hypothesis describing the same boundary must produce
	// the same implicit line.
	c := cluster(lines.Horizontal, 0, -80, 200)
	cl := c.Line(fieldW, fieldH)
	hl := hypothesis{o: lines.Horizontal, pos: 40, tilt: 0}.line(fieldW, fieldH)

	assert.InDelta(t, cl.A, hl.A, 1e-9)
	assert.InDelta(t, cl.B, hl.B, 1e-9)
	assert.InDelta(t, cl.C, hl.C, 1e-9)
}

func TestTiltOf(t *testing.T) {
	tests := []struct {
		o     lines.Orientation
		angle float64
		want  float64
	}{
		{o: lines.Horizontal, angle: 0, want: 0},
		{o: lines.Horizontal, angle: 2, want: 2},
		{o: lines.Horizontal, angle: 178, want: -2},
		{o: lines.Vertical, angle: 90, want: 0},
		{o: lines.Vertical, angle: 92, want: 2},
		{o: lines.Vertical, angle: 88, want: -2},
	}
	for _, tt := range tests {
		got := tiltOf(lines.Cluster{Orientation: tt.o, Angle: tt.angle})
		assert.InDelta(t, tt.want, got, 1e-9, "angle %f", tt.angle)
	}
}

func TestSideSupport_CountsDrawnSides(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	gx, gy := testField()
	// Only top and left drawn.
	drawHorizontalEdge(gy, 40, 56, 264, 8)
	drawVerticalEdge(gx, 60, 33, 207, 8)

	q := utils.OrderQuad([4]utils.Point{
		{X: 60, Y: 40}, {X: 260, Y: 40}, {X: 260, Y: 200}, {X: 60, Y: 200},
	})
	count, quality := s.sideSupport(gx, gy, fieldW, fieldH, q)

	assert.Equal(t, 2, count)
	assert.Greater(t, quality, 0.4)
	assert.Less(t, quality, 0.6)
}

func TestSearchSide_RespectsExclusion(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)
	gx, gy := testField()
	drawVerticalEdge(gx, 60, 0, fieldH-1, 8)
	drawVerticalEdge(gx, 260, 0, fieldH/2, 8)

	// Without exclusion the edge at 60 wins on accumulated support, since
	// the one at 260 covers only half the extent; excluding 60 leaves it.
	hyp, _, ok := s.searchSide(gx, gy, fieldW, fieldH, lines.Vertical, 0, 16, 304, 0, fieldH, nil, 0)
	require.True(t, ok)
	assert.InDelta(t, 60, hyp.pos, 1)

	hyp, _, ok = s.searchSide(gx, gy, fieldW, fieldH, lines.Vertical, 0, 16, 304, 0, fieldH,
		[]float64{60}, 32)
	require.True(t, ok)
	assert.InDelta(t, 260, hyp.pos, 1)
}
