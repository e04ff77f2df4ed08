package aspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshot/docshot/internal/utils"
)

func a4Frame(jitter [8]float64) utils.Quad {
	base := quad(100, 100, 310, 100, 310, 397, 100, 397)
	for i := range base {
		base[i].X += jitter[2*i]
		base[i].Y += jitter[2*i+1]
	}
	return base
}

var frameJitter = [5][8]float64{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{0.08, -0.05, -0.06, 0.09, 0.04, -0.07, -0.03, 0.05},
	{-0.09, 0.04, 0.07, -0.08, -0.05, 0.06, 0.08, -0.04},
	{0.05, 0.07, -0.08, -0.06, 0.09, 0.03, -0.07, 0.08},
	{-0.04, -0.08, 0.05, 0.06, -0.09, 0.07, 0.06, -0.05},
}

func TestAccumulator_Lifecycle(t *testing.T) {
	acc := NewAccumulator()
	assert.Equal(t, 0, acc.FrameCount())

	require.NoError(t, acc.Add(a4Frame(frameJitter[0])))
	require.NoError(t, acc.Add(a4Frame(frameJitter[1])))
	assert.Equal(t, 2, acc.FrameCount())

	acc.Reset()
	assert.Equal(t, 0, acc.FrameCount())
	require.NoError(t, acc.Add(a4Frame(frameJitter[2])))
	assert.Equal(t, 1, acc.FrameCount())

	acc.Close()
	assert.Equal(t, 0, acc.FrameCount())
	assert.Error(t, acc.Add(a4Frame(frameJitter[3])))
}

func TestAccumulator_RejectsDegenerate(t *testing.T) {
	acc := NewAccumulator()
	err := acc.Add(quad(5, 5, 5, 5, 5, 5, 5, 5))
	assert.Error(t, err)
	assert.Equal(t, 0, acc.FrameCount())
}

func TestEstimateMulti_JitteredFrames(t *testing.T) {
	e := newEstimator(t)
	intr := testIntrinsics()
	acc := NewAccumulator()
	for _, j := range frameJitter {
		require.NoError(t, acc.Add(a4Frame(j)))
	}

	est, ok := e.EstimateMulti(acc, &intr)
	require.True(t, ok)
	assert.InDelta(t, 0.7071, est.Ratio, 0.0071)
	assert.Greater(t, est.Confidence, 0.95)
	assert.Equal(t, 5, est.FrameCount)
}

func TestEstimateMulti_MedianShrugsOffOutlier(t *testing.T) {
	e := newEstimator(t)
	intr := testIntrinsics()
	acc := NewAccumulator()
	for _, j := range frameJitter[:4] {
		require.NoError(t, acc.Add(a4Frame(j)))
	}
	// One frame where detection latched onto something square.
	require.NoError(t, acc.Add(quad(100, 100, 300, 100, 300, 300, 100, 300)))

	est, ok := e.EstimateMulti(acc, &intr)
	require.True(t, ok)
	assert.InDelta(t, 0.7071, est.Ratio, 0.071)
}

func TestEstimateMulti_TooFewFrames(t *testing.T) {
	e := newEstimator(t)
	intr := testIntrinsics()

	_, ok := e.EstimateMulti(nil, &intr)
	assert.False(t, ok)

	acc := NewAccumulator()
	require.NoError(t, acc.Add(a4Frame(frameJitter[0])))
	require.NoError(t, acc.Add(a4Frame(frameJitter[1])))
	_, ok = e.EstimateMulti(acc, &intr)
	assert.False(t, ok)
}

func TestEstimateMulti_IdenticalFramesCannotSelfCalibrate(t *testing.T) {
	e := newEstimator(t)
	acc := NewAccumulator()
	for range 5 {
		require.NoError(t, acc.Add(a4Frame(frameJitter[0])))
	}

	_, ok := e.EstimateMulti(acc, nil)
	assert.False(t, ok)
}
