package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, b *Builder) *Session {
	t.Helper()
	a, err := b.Build()
	require.NoError(t, err)
	s, err := NewSession(a)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSession_AccumulatesDetections(t *testing.T) {
	s := newSession(t, NewBuilder().WithIntrinsics(800, 800, 160, 120))
	ctx := context.Background()
	img := documentRGBA()

	fr, err := s.Feed(ctx, img)
	require.NoError(t, err)
	require.True(t, fr.Detection.Found)
	assert.Nil(t, fr.Accumulated, "one frame is below the multi-frame minimum")
	assert.Equal(t, 1, s.FrameCount())

	_, err = s.Feed(ctx, img)
	require.NoError(t, err)

	fr, err = s.Feed(ctx, img)
	require.NoError(t, err)
	require.NotNil(t, fr.Accumulated)
	assert.Equal(t, 3, fr.Accumulated.FrameCount)
	assert.InDelta(t, 0.8, fr.Accumulated.Ratio, 0.05)
	assert.Greater(t, fr.Accumulated.Confidence, 0.9, "identical frames have no spread")
}

func TestSession_EmptyFramesDoNotContribute(t *testing.T) {
	s := newSession(t, NewBuilder().WithIntrinsics(800, 800, 160, 120))
	ctx := context.Background()

	for range 3 {
		_, err := s.Feed(ctx, documentRGBA())
		require.NoError(t, err)
	}
	require.Equal(t, 3, s.FrameCount())

	fr, err := s.Feed(ctx, flatRGBA(320, 240, 40))
	require.NoError(t, err)
	assert.False(t, fr.Detection.Found)
	assert.Equal(t, 3, s.FrameCount())
	require.NotNil(t, fr.Accumulated, "estimate from earlier frames still reported")
}

func TestSession_ResolutionChangeResetsWindow(t *testing.T) {
	s := newSession(t, NewBuilder())
	ctx := context.Background()

	_, err := s.Feed(ctx, documentRGBA())
	require.NoError(t, err)
	require.Equal(t, 1, s.FrameCount())

	_, err = s.Feed(ctx, flatRGBA(400, 300, 120))
	require.NoError(t, err)
	assert.Zero(t, s.FrameCount(), "camera mode switch drops the capture window")
}

func TestSession_Reset(t *testing.T) {
	s := newSession(t, NewBuilder())
	ctx := context.Background()

	_, err := s.Feed(ctx, documentRGBA())
	require.NoError(t, err)
	require.Equal(t, 1, s.FrameCount())

	s.Reset()
	assert.Zero(t, s.FrameCount())

	fr, err := s.Feed(ctx, documentRGBA())
	require.NoError(t, err)
	assert.Nil(t, fr.Accumulated)
}

func TestSession_Lifecycle(t *testing.T) {
	a, err := NewBuilder().Build()
	require.NoError(t, err)
	s, err := NewSession(a)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	_, err = s.Feed(context.Background(), documentRGBA())
	assert.Error(t, err, "closed session rejects frames")

	_, err = NewSession(nil)
	assert.Error(t, err)
}
