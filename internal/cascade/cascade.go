// Package cascade drives the detection strategies in the order the scene
// analysis prescribes, under a soft time budget, short-circuiting as soon
// as a strategy is confident enough.
package cascade

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/docshot/docshot/internal/common"
	"github.com/docshot/docshot/internal/detector"
	"github.com/docshot/docshot/internal/edges"
	"github.com/docshot/docshot/internal/lines"
	"github.com/docshot/docshot/internal/mempool"
	"github.com/docshot/docshot/internal/rectsolver"
	"github.com/docshot/docshot/internal/scene"
	"github.com/docshot/docshot/internal/utils"
)

// StageTiming records one started strategy and how long it ran.
type StageTiming struct {
	Name    string
	Elapsed time.Duration
}

// Result is the cascade outcome for one frame. Detection is the best
// accepted detection (zero value when nothing cleared MinAccept);
// Strategy names the stage that produced it. Partial is OR'd across all
// stages, so cropped-document evidence survives even when a later stage
// wins outright.
type Result struct {
	Detection detector.Detection
	Strategy  scene.Strategy
	Timings   []StageTiming
	Partial   bool
}

// Runner executes detection strategies against a prepared grayscale
// frame. It reuses one extractor, detector and solver across frames and
// is not safe for concurrent use.
type Runner struct {
	cfg    Config
	ex     *edges.Extractor
	det    *detector.Detector
	solver *rectsolver.Solver
	lines  lines.Config
	arena  *mempool.Arena
}

// New validates the configuration and wires the runner's stages. The
// arena provides gradient scratch for the line-cluster stage; a nil
// arena gets a private one.
func New(cfg Config, ex *edges.Extractor, det *detector.Detector, solver *rectsolver.Solver, linesCfg lines.Config, arena *mempool.Arena) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cascade config: %w", err)
	}
	if err := linesCfg.Validate(); err != nil {
		return nil, fmt.Errorf("cascade line config: %w", err)
	}
	if ex == nil || det == nil || solver == nil {
		return nil, fmt.Errorf("cascade requires an extractor, a detector and a solver")
	}
	if arena == nil {
		arena = mempool.NewArena()
	}
	return &Runner{cfg: cfg, ex: ex, det: det, solver: solver, lines: linesCfg, arena: arena}, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() Config { return r.cfg }

type stageFunc func(*Runner, *image.Gray) detector.Detection

// stageTable binds each strategy to its stage. The strategy set is
// closed: extending it means adding both the enum constant and a table
// entry, and the dispatcher treats a missing entry as a no-op stage.
var stageTable = [...]stageFunc{
	scene.StrategyContour:     edgeStage(scene.StrategyContour),
	scene.StrategyContrast:    edgeStage(scene.StrategyContrast),
	scene.StrategyDoG:         edgeStage(scene.StrategyDoG),
	scene.StrategyDirectional: edgeStage(scene.StrategyDirectional),
	scene.StrategyLineCluster: (*Runner).lineClusterStage,
}

func edgeStage(strat scene.Strategy) stageFunc {
	return func(r *Runner, gray *image.Gray) detector.Detection {
		m, err := r.ex.FromGray(gray, strat)
		if err != nil {
			return detector.Detection{}
		}
		defer m.Release()
		return r.det.Detect(m)
	}
}

// lineClusterStage runs the line-cluster engine and the tiered rectangle
// solver on the raw gradient field of the frame. It is the final
// fallback: it reaches boundaries too faint for the binarizing stages.
func (r *Runner) lineClusterStage(gray *image.Gray) detector.Detection {
	blurred := utils.BlurGray(gray, r.ex.Config().BlurSigma)
	b := blurred.Bounds()
	n := b.Dx() * b.Dy()

	hgx := r.arena.Acquire(n)
	hgy := r.arena.Acquire(n)
	hmag := r.arena.Acquire(n)
	defer func() {
		r.arena.Release(hmag)
		r.arena.Release(hgy)
		r.arena.Release(hgx)
	}()

	gx := r.arena.Float32(hgx)
	gy := r.arena.Float32(hgy)
	w, h, err := edges.GradientsInto(blurred, gx, gy, r.arena.Float32(hmag))
	if err != nil {
		return detector.Detection{}
	}

	segs := lines.ExtractSegments(gx, gy, w, h, r.lines)
	clusters := lines.ClusterSegments(segs, w, h, r.lines)
	sol, ok := r.solver.Solve(clusters, gx, gy, w, h)
	if !ok {
		return detector.Detection{}
	}
	return detector.Detection{
		Found:      true,
		Quad:       detector.RankedQuad{Corners: sol.Corners},
		Confidence: sol.Confidence,
		Candidates: 1,
	}
}

func (r *Runner) dispatch(strat scene.Strategy, gray *image.Gray) detector.Detection {
	if int(strat) < 0 || int(strat) >= len(stageTable) || stageTable[strat] == nil {
		return detector.Detection{}
	}
	return stageTable[strat](r, gray)
}

// Run tries the analysis' strategies in order against the prepared gray
// frame. A stage that reaches ShortCircuit confidence ends the run
// immediately. The budget and the context are checked only between
// stages; a started stage always runs to completion, and an exceeded
// budget stops the run only once at least one candidate has been seen,
// so an empty scene still gets every strategy.
func (r *Runner) Run(ctx context.Context, gray *image.Gray, analysis scene.Analysis) Result {
	var (
		res          Result
		best         detector.Detection
		bestStrategy scene.Strategy
		sawCandidate bool
	)
	budget := common.StartBudget(r.cfg.Budget)

	for _, strat := range analysis.Order {
		if len(res.Timings) > 0 {
			if ctx.Err() != nil {
				break
			}
			if budget.Exceeded() && sawCandidate {
				break
			}
		}

		timer := common.NewNamedTimer(strat.String())
		det := r.dispatch(strat, gray)
		res.Timings = append(res.Timings, StageTiming{Name: timer.Name(), Elapsed: timer.Stop()})

		res.Partial = res.Partial || det.Partial
		if det.Candidates > 0 {
			sawCandidate = true
		}
		if det.Found && (!best.Found || det.Confidence > best.Confidence) {
			best = det
			bestStrategy = strat
		}
		if det.Found && det.Confidence >= r.cfg.ShortCircuit {
			break
		}
	}

	if best.Found && best.Confidence >= r.cfg.MinAccept {
		res.Detection = best
		res.Strategy = bestStrategy
	}
	return res
}
