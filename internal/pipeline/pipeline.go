// Package pipeline assembles scene classification, the detection cascade
// and aspect-ratio estimation into a reusable Analyzer with one entry
// point per frame.
package pipeline

import (
	"fmt"
	"runtime"
	"time"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/cascade"
	"github.com/docshot/docshot/internal/detector"
	"github.com/docshot/docshot/internal/edges"
	"github.com/docshot/docshot/internal/lines"
	"github.com/docshot/docshot/internal/mempool"
	"github.com/docshot/docshot/internal/rectify"
	"github.com/docshot/docshot/internal/rectsolver"
	"github.com/docshot/docshot/internal/scene"
)

// Config holds configuration for the analyzer and its components.
type Config struct {
	Edges    edges.Config
	Lines    lines.Config
	Solver   rectsolver.Config
	Detector detector.Config
	Cascade  cascade.Config
	Aspect   aspect.Config
	Rectify  rectify.Config

	// Intrinsics carries optional camera intrinsics in original-frame
	// pixel units. Nil means uncalibrated; the estimator then stays in
	// the angular regime or self-calibrates over multi-frame input.
	Intrinsics *aspect.Intrinsics

	// SceneTTL is how many consecutive frames reuse one scene analysis.
	SceneTTL int

	// Workers bounds the batch fan-out. Zero means NumCPU.
	Workers int

	// Progress receives batch progress events. Nil disables reporting.
	Progress ProgressCallback
}

// DefaultConfig returns an analyzer config with component defaults.
func DefaultConfig() Config {
	return Config{
		Edges:    edges.DefaultConfig(),
		Lines:    lines.DefaultConfig(),
		Solver:   rectsolver.DefaultConfig(),
		Detector: detector.DefaultConfig(),
		Cascade:  cascade.DefaultConfig(),
		Aspect:   aspect.DefaultConfig(),
		Rectify:  rectify.DefaultConfig(),
		SceneTTL: scene.DefaultCacheTTL,
		Workers:  runtime.NumCPU(),
	}
}

// Builder constructs an Analyzer with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a builder seeded with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration, for callers that resolved
// one from a config file.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithWorkingWidth sets the detection working width in pixels.
func (b *Builder) WithWorkingWidth(px int) *Builder {
	if px > 0 {
		b.cfg.Edges.WorkingWidth = px
	}
	return b
}

// WithBudget sets the soft per-frame time budget for the cascade.
func (b *Builder) WithBudget(d time.Duration) *Builder {
	if d > 0 {
		b.cfg.Cascade.Budget = d
	}
	return b
}

// WithShortCircuit sets the confidence at which the cascade stops early.
func (b *Builder) WithShortCircuit(conf float64) *Builder {
	if conf > 0 {
		b.cfg.Cascade.ShortCircuit = conf
	}
	return b
}

// WithMinAccept sets the confidence floor below which a detection is
// discarded.
func (b *Builder) WithMinAccept(conf float64) *Builder {
	if conf >= 0 {
		b.cfg.Cascade.MinAccept = conf
	}
	return b
}

// WithIntrinsics provides camera intrinsics in pixel units, unlocking
// the projective aspect regime. Non-positive focal lengths are ignored.
func (b *Builder) WithIntrinsics(fx, fy, cx, cy float64) *Builder {
	if fx > 0 && fy > 0 {
		b.cfg.Intrinsics = &aspect.Intrinsics{Fx: fx, Fy: fy, Cx: cx, Cy: cy}
	}
	return b
}

// WithSceneTTL sets how many frames one scene analysis is reused for.
func (b *Builder) WithSceneTTL(frames int) *Builder {
	if frames > 0 {
		b.cfg.SceneTTL = frames
	}
	return b
}

// WithWorkers sets the batch fan-out width.
func (b *Builder) WithWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Workers = n
	}
	return b
}

// WithProgressCallback sets the progress callback for batch processing.
func (b *Builder) WithProgressCallback(cb ProgressCallback) *Builder {
	b.cfg.Progress = cb
	return b
}

// WithSnapTolerance sets how close a ratio must come to a canonical
// format to snap to it.
func (b *Builder) WithSnapTolerance(tol float64) *Builder {
	if tol > 0 {
		b.cfg.Aspect.SnapTol = tol
	}
	return b
}

// WithOutputLong sets the long side of rectified output images.
func (b *Builder) WithOutputLong(px int) *Builder {
	if px > 0 {
		b.cfg.Rectify.OutputLong = px
	}
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks the full configuration.
func (b *Builder) Validate() error {
	if err := b.cfg.Edges.Validate(); err != nil {
		return fmt.Errorf("edges config: %w", err)
	}
	if err := b.cfg.Lines.Validate(); err != nil {
		return fmt.Errorf("lines config: %w", err)
	}
	if err := b.cfg.Solver.Validate(); err != nil {
		return fmt.Errorf("solver config: %w", err)
	}
	if err := b.cfg.Detector.Validate(); err != nil {
		return fmt.Errorf("detector config: %w", err)
	}
	if err := b.cfg.Cascade.Validate(); err != nil {
		return fmt.Errorf("cascade config: %w", err)
	}
	if err := b.cfg.Aspect.Validate(); err != nil {
		return fmt.Errorf("aspect config: %w", err)
	}
	if err := b.cfg.Rectify.Validate(); err != nil {
		return fmt.Errorf("rectify config: %w", err)
	}
	if b.cfg.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", b.cfg.Workers)
	}
	return nil
}

// Analyzer runs the full per-frame analysis. It owns the scene cache,
// the accumulator and the scratch arena, so one instance must not run
// concurrent frames; spawn one analyzer per goroutine instead.
type Analyzer struct {
	cfg    Config
	ex     *edges.Extractor
	runner *cascade.Runner
	est    *aspect.Estimator
	cache  *scene.Cache
	acc    *aspect.Accumulator
	arena  *mempool.Arena
	lastW  int
	lastH  int
	closed bool
}

// Build validates the configuration and wires the analyzer.
func (b *Builder) Build() (*Analyzer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	ex, err := edges.NewExtractor(b.cfg.Edges)
	if err != nil {
		return nil, fmt.Errorf("init extractor: %w", err)
	}
	det, err := detector.New(b.cfg.Detector)
	if err != nil {
		return nil, fmt.Errorf("init detector: %w", err)
	}
	solver, err := rectsolver.New(b.cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("init solver: %w", err)
	}
	est, err := aspect.New(b.cfg.Aspect)
	if err != nil {
		return nil, fmt.Errorf("init estimator: %w", err)
	}
	arena := mempool.NewArena()
	runner, err := cascade.New(b.cfg.Cascade, ex, det, solver, b.cfg.Lines, arena)
	if err != nil {
		return nil, fmt.Errorf("init cascade: %w", err)
	}
	return &Analyzer{
		cfg:    b.cfg,
		ex:     ex,
		runner: runner,
		est:    est,
		cache:  scene.NewCache(b.cfg.SceneTTL),
		acc:    aspect.NewAccumulator(),
		arena:  arena,
	}, nil
}

// Close releases accumulated frames and scratch buffers. The analyzer
// must not be used afterwards.
func (a *Analyzer) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.acc.Close()
	a.arena.Reset()
	a.cache.Invalidate()
	return nil
}

// Config returns the analyzer configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Info returns key analyzer properties for diagnostics output.
func (a *Analyzer) Info() map[string]any {
	return map[string]any{
		"working_width": a.cfg.Edges.WorkingWidth,
		"kernel":        a.ex.KernelName(),
		"budget_ms":     a.cfg.Cascade.Budget.Milliseconds(),
		"short_circuit": a.cfg.Cascade.ShortCircuit,
		"min_accept":    a.cfg.Cascade.MinAccept,
		"calibrated":    a.cfg.Intrinsics != nil,
		"scene_ttl":     a.cfg.SceneTTL,
		"workers":       a.cfg.Workers,
	}
}

// noteResolution invalidates per-stream state when the frame geometry
// changes, so a camera mode switch cannot mix analyses across sizes.
func (a *Analyzer) noteResolution(w, h int) {
	if w == a.lastW && h == a.lastH {
		return
	}
	if a.lastW != 0 || a.lastH != 0 {
		a.cache.Invalidate()
		a.acc.Reset()
	}
	a.lastW, a.lastH = w, h
}
