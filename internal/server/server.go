// Package server exposes the document analyzer over HTTP: single-frame
// detection, multi-frame ratio estimation and a websocket stream, plus
// health and Prometheus metrics endpoints.
package server

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/pipeline"
)

// analyzerInterface defines the methods the server needs from an analyzer.
type analyzerInterface interface {
	AnalyzeFrame(ctx context.Context, img image.Image) (*pipeline.FrameResult, error)
	AnalyzeSequence(ctx context.Context, imgs []image.Image) ([]*pipeline.FrameResult, *aspect.MultiFrameEstimate, error)
	Close() error
}

// frameSession is the per-connection streaming surface.
type frameSession interface {
	Feed(ctx context.Context, img image.Image) (*pipeline.FrameResult, error)
	Reset()
	Close() error
}

// Server holds the HTTP server state and dependencies. The shared
// analyzer must not run concurrent frames, so request handlers
// serialize on mu; websocket connections get their own session instead.
type Server struct {
	mu         sync.Mutex
	analyzer   analyzerInterface
	newSession func() (frameSession, error)

	corsOrigin     string
	maxUploadMB    int64
	overlayEnabled bool
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	AnalyzerConfig pipeline.Config
	OverlayEnabled bool
}

// NewServer creates a server with an analyzer built from the config.
func NewServer(config Config) (*Server, error) {
	analyzer, err := pipeline.NewBuilder().WithConfig(config.AnalyzerConfig).Build()
	if err != nil {
		return nil, fmt.Errorf("init analyzer: %w", err)
	}

	acfg := config.AnalyzerConfig
	return &Server{
		analyzer: analyzer,
		newSession: func() (frameSession, error) {
			a, err := pipeline.NewBuilder().WithConfig(acfg).Build()
			if err != nil {
				return nil, err
			}
			return pipeline.NewSession(a)
		},
		corsOrigin:     config.CORSOrigin,
		maxUploadMB:    config.MaxUploadMB,
		overlayEnabled: config.OverlayEnabled,
	}, nil
}

// Close releases the server's analyzer.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.analyzer != nil {
		return s.analyzer.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.corsMiddleware(s.healthHandler))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/detect", s.corsMiddleware(s.detectHandler))
	mux.HandleFunc("/v1/ratio", s.corsMiddleware(s.ratioHandler))
	mux.HandleFunc("/v1/stream", s.streamHandler)
}

// analyzeFrame runs one frame through the shared analyzer.
func (s *Server) analyzeFrame(ctx context.Context, img image.Image) (*pipeline.FrameResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer.AnalyzeFrame(ctx, img)
}

// analyzeSequence runs a frame set through the shared analyzer.
func (s *Server) analyzeSequence(ctx context.Context, imgs []image.Image) ([]*pipeline.FrameResult, *aspect.MultiFrameEstimate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzer.AnalyzeSequence(ctx, imgs)
}
