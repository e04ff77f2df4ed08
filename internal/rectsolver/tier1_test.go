package rectsolver

import (
	"testing"

	"github.com/docshot/docshot/internal/lines"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cluster(o lines.Orientation, angle, offset, length float64) lines.Cluster {
	return lines.Cluster{Orientation: o, Angle: angle, Offset: offset, TotalLength: length, Segments: 1}
}

// rectClusters describes a 300x400 rectangle centered in a 640x480 frame.
func rectClusters() []lines.Cluster {
	return []lines.Cluster{
		cluster(lines.Horizontal, 0, -200, 300),
		cluster(lines.Horizontal, 0, 200, 300),
		cluster(lines.Vertical, 90, -150, 400),
		cluster(lines.Vertical, 90, 150, 400),
	}
}

func TestSolve_Tier1Rectangle(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)

	sol, ok := s.Solve(rectClusters(), nil, nil, 640, 480)

	require.True(t, ok)
	assert.Equal(t, 1, sol.Tier)
	assert.Equal(t, 4, sol.Clusters)
	assert.Equal(t, 0, sol.Searched)
	assert.GreaterOrEqual(t, sol.Confidence, 0.50)
	assert.LessOrEqual(t, sol.Confidence, 0.85)

	want := [4][2]float64{{170, 40}, {470, 40}, {470, 440}, {170, 440}}
	for i, c := range sol.Corners {
		assert.InDelta(t, want[i][0], c.X, 1, "corner %d x", i)
		assert.InDelta(t, want[i][1], c.Y, 1, "corner %d y", i)
	}
}

func TestSolve_Tier1PrefersStrongSupport(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)

	// A short spurious vertical between the true sides must lose to the
	// full-length pair on support and area.
	cs := append(rectClusters(), cluster(lines.Vertical, 90, -20, 80))
	sol, ok := s.Solve(cs, nil, nil, 640, 480)

	require.True(t, ok)
	assert.InDelta(t, 170, sol.Corners[0].X, 1)
	assert.InDelta(t, 470, sol.Corners[1].X, 1)
}

func TestSolve_Tier1RejectsSmallQuads(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)

	// 100x100 of 640x480 is about 3% of the frame, well under the floor.
	cs := []lines.Cluster{
		cluster(lines.Horizontal, 0, -50, 100),
		cluster(lines.Horizontal, 0, 50, 100),
		cluster(lines.Vertical, 90, -50, 100),
		cluster(lines.Vertical, 90, 50, 100),
	}
	_, ok := s.Solve(cs, nil, nil, 640, 480)
	assert.False(t, ok)
}

func TestSolve_Tier1RejectsOffFrameCorners(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)

	// Left side 70px beyond the frame; the border margin is 5% of the
	// diagonal (40px), so the quad must be rejected.
	cs := []lines.Cluster{
		cluster(lines.Horizontal, 0, -200, 300),
		cluster(lines.Horizontal, 0, 200, 300),
		cluster(lines.Vertical, 90, -390, 400),
		cluster(lines.Vertical, 90, 150, 400),
	}
	_, ok := s.Solve(cs, nil, nil, 640, 480)
	assert.False(t, ok)
}

func TestSolve_Tier1TiltedRectangle(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)

	// The whole rectangle rotated by 5 degrees keeps right angles, so the
	// angle gates must admit it.
	cs := []lines.Cluster{
		cluster(lines.Horizontal, 5, -150, 300),
		cluster(lines.Horizontal, 5, 150, 300),
		cluster(lines.Vertical, 95, -150, 300),
		cluster(lines.Vertical, 95, 150, 300),
	}
	sol, ok := s.Solve(cs, nil, nil, 640, 480)

	require.True(t, ok)
	assert.Equal(t, 1, sol.Tier)
	for _, a := range sol.Corners.InteriorAngles() {
		assert.InDelta(t, 90, a, 0.5)
	}
}

func TestSolve_BadDimensions(t *testing.T) {
	s, err := New(DefaultConfig())
	require.NoError(t, err)

	_, ok := s.Solve(rectClusters(), nil, nil, 0, 480)
	assert.False(t, ok)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinAreaFrac = 0
	_, err := New(cfg)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.CoarseStep = 0
	_, err = New(cfg)
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.AngleHigh = cfg.AngleLow
	_, err = New(cfg)
	require.Error(t, err)
}

func BenchmarkSolve_Tier1(b *testing.B) {
	s, err := New(DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	cs := rectClusters()
	b.ResetTimer()
	for range b.N {
		s.Solve(cs, nil, nil, 640, 480)
	}
}
