package pipeline

import (
	"context"
	"errors"
	"image"
	"sync"
)

// Session is the streaming variant of the analyzer, one per websocket
// connection: frames are fed one at a time and the multi-frame estimate
// ripens as detections accumulate. Feeds are serialized; the session
// takes exclusive ownership of its analyzer.
type Session struct {
	mu sync.Mutex
	a  *Analyzer
}

// NewSession wraps an analyzer for streaming use.
func NewSession(a *Analyzer) (*Session, error) {
	if a == nil {
		return nil, errors.New("session requires an analyzer")
	}
	return &Session{a: a}, nil
}

// Feed analyzes one frame and, when it carries an accepted detection,
// folds it into the accumulator. The result carries the accumulated
// estimate once enough frames contributed. A resolution change between
// feeds resets the scene cache and the accumulated frames.
func (s *Session) Feed(ctx context.Context, img image.Image) (*FrameResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fr, err := s.a.AnalyzeFrame(ctx, img)
	if err != nil {
		return nil, err
	}
	if fr.Detection.Found {
		// Degenerate quads are excluded, never fatal mid-stream.
		_ = s.a.acc.Add(fr.quad)
	}
	if multi, ok := s.a.est.EstimateMulti(s.a.acc, s.a.cfg.Intrinsics); ok {
		fr.Accumulated = &multi
	}
	return fr, nil
}

// FrameCount reports how many detections the session has accumulated.
func (s *Session) FrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.acc.FrameCount()
}

// Reset drops the accumulated frames and the cached scene analysis,
// starting a fresh capture window on the same connection.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.acc.Reset()
	s.a.cache.Invalidate()
}

// Close releases the session's analyzer. Feeding a closed session
// returns an error.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Close()
}
