// Package rectsolver reconstructs a document quadrilateral from line-cluster
// evidence and the raw gradient field. Three tiers run in order of
// increasing cost and decreasing available evidence: intersecting four
// cluster lines, a constrained search for the sides a partial cluster set
// is missing, and a restricted scan over tilt hypotheses for scenes where
// almost no line evidence survived clustering.
package rectsolver

import (
	"fmt"
	"math"

	"github.com/docshot/docshot/internal/lines"
	"github.com/docshot/docshot/internal/utils"
)

// Solution is a reconstructed document rectangle. Clusters counts the line
// clusters consumed as evidence and Searched the sides located by gradient
// accumulation instead.
type Solution struct {
	Corners    utils.Quad
	Confidence float64
	Tier       int
	Clusters   int
	Searched   int
}

// Solver runs the tiered reconstruction.
type Solver struct {
	cfg Config
}

// New returns a solver for the given configuration.
func New(cfg Config) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("rectangle solver config: %w", err)
	}
	return &Solver{cfg: cfg}, nil
}

// Config returns the solver configuration.
func (s *Solver) Config() Config {
	return s.cfg
}

// Solve tries the tiers in order against the clustered line evidence and
// the gradient planes of the analyzed frame. The first tier whose evidence
// requirements and geometric gates both pass wins; ok is false when no
// tier produced a plausible rectangle.
func (s *Solver) Solve(clusters []lines.Cluster, gx, gy []float32, w, h int) (Solution, bool) {
	if w <= 0 || h <= 0 {
		return Solution{}, false
	}
	horiz, vert := lines.SplitByOrientation(clusters)
	if len(horiz) >= 2 && len(vert) >= 2 {
		if sol, ok := s.solveIntersect(horiz, vert, w, h); ok {
			return sol, true
		}
	}
	// The remaining tiers read the gradient field directly.
	if len(gx) < w*h || len(gy) < w*h {
		return Solution{}, false
	}
	if n := len(horiz) + len(vert); n >= 2 && n <= 3 {
		if sol, ok := s.solveConstrained(horiz, vert, gx, gy, w, h); ok {
			return sol, true
		}
	}
	return s.solveScan(gx, gy, w, h)
}

// quadFromLines intersects two horizontal and two vertical boundary lines
// into an ordered quadrilateral. Near-parallel pairs fail the determinant
// guard inside Intersect and reject the combination.
func quadFromLines(h1, h2, v1, v2 lines.Line) (utils.Quad, bool) {
	var pts [4]utils.Point
	var ok bool
	if pts[0], ok = h1.Intersect(v1); !ok {
		return utils.Quad{}, false
	}
	if pts[1], ok = h1.Intersect(v2); !ok {
		return utils.Quad{}, false
	}
	if pts[2], ok = h2.Intersect(v2); !ok {
		return utils.Quad{}, false
	}
	if pts[3], ok = h2.Intersect(v1); !ok {
		return utils.Quad{}, false
	}
	return utils.OrderQuad(pts), true
}

// admit applies the geometric gates shared by all tiers: corners close to
// the frame, convexity, a minimum area, and interior angles a perspective
// view of a rectangle could plausibly produce.
func (s *Solver) admit(q utils.Quad, w, h int) bool {
	margin := s.cfg.BorderTol * math.Hypot(float64(w), float64(h))
	for _, p := range q {
		if p.X < -margin || p.X > float64(w-1)+margin || p.Y < -margin || p.Y > float64(h-1)+margin {
			return false
		}
	}
	if q.IsDegenerate() || !q.IsConvex() {
		return false
	}
	if q.Area() < s.cfg.MinAreaFrac*float64(w)*float64(h) {
		return false
	}
	for _, a := range q.InteriorAngles() {
		if a < s.cfg.AngleLow || a > s.cfg.AngleHigh {
			return false
		}
	}
	return true
}

// angleRegularity is 1 for a perfect rectangle and decays with the summed
// interior-angle deviation from 90 degrees.
func angleRegularity(q utils.Quad) float64 {
	var dev float64
	for _, a := range q.InteriorAngles() {
		dev += math.Abs(90 - a)
	}
	r := 1 - dev/360
	if r < 0 {
		return 0
	}
	return r
}

// quadScore combines evidence support, area ratio, and angle regularity
// into a [0, 1] score.
func (s *Solver) quadScore(q utils.Quad, w, h int, support float64) float64 {
	area := q.Area() / (float64(w) * float64(h))
	if area > 1 {
		area = 1
	}
	if support > 1 {
		support = 1
	}
	score := s.cfg.SupportWeight*support + s.cfg.AreaWeight*area + s.cfg.AngleWeight*angleRegularity(q)
	if score > 1 {
		return 1
	}
	return score
}
