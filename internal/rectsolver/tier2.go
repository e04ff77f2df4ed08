package rectsolver

import (
	"github.com/docshot/docshot/internal/lines"
	"github.com/docshot/docshot/internal/utils"
)

// solveConstrained handles the partial-evidence shapes: three known sides
// missing one, one known corner missing two sides, or a known parallel
// pair missing both perpendicular sides. Clusters arrive longest first, so
// indexing [0] and [1] picks the strongest evidence.
func (s *Solver) solveConstrained(horiz, vert []lines.Cluster, gx, gy []float32, w, h int) (Solution, bool) {
	switch {
	case len(horiz) >= 2 && len(vert) == 1:
		return s.solveThreeEdge([2]lines.Cluster{horiz[0], horiz[1]}, vert[0], gx, gy, w, h)
	case len(vert) >= 2 && len(horiz) == 1:
		return s.solveThreeEdge([2]lines.Cluster{vert[0], vert[1]}, horiz[0], gx, gy, w, h)
	case len(horiz) == 1 && len(vert) == 1:
		return s.solveCorner(horiz[0], vert[0], gx, gy, w, h)
	case len(horiz) >= 2:
		return s.solveParallel(horiz[0], horiz[1], gx, gy, w, h)
	case len(vert) >= 2:
		return s.solveParallel(vert[0], vert[1], gx, gy, w, h)
	}
	return Solution{}, false
}

// solveThreeEdge fills in the single side missing from a parallel pair
// plus one perpendicular. The accumulation extent is pinned between the
// pair, and the missing side inherits the known perpendicular's tilt.
func (s *Solver) solveThreeEdge(pair [2]lines.Cluster, perp lines.Cluster, gx, gy []float32, w, h int) (Solution, bool) {
	mo := perp.Orientation
	p0, p1 := pair[0].Line(w, h), pair[1].Line(w, h)
	pl := perp.Line(w, h)

	e0 := axisCrossing(p0, pair[0].Orientation, w, h)
	e1 := axisCrossing(p1, pair[1].Orientation, w, h)
	extLo, extHi := int(min(e0, e1)), int(max(e0, e1))

	dim := h
	if mo == lines.Vertical {
		dim = w
	}
	lo, hi := int(s.cfg.SearchLow*float64(dim)), int(s.cfg.SearchHigh*float64(dim))
	knownPos := axisCrossing(pl, mo, w, h)

	hyp, _, ok := s.searchSide(gx, gy, w, h, mo, tiltOf(perp), lo, hi, extLo, extHi,
		[]float64{knownPos}, s.cfg.Separation*float64(dim))
	if !ok {
		return Solution{}, false
	}

	var q utils.Quad
	if mo == lines.Vertical {
		q, ok = quadFromLines(p0, p1, pl, hyp.line(w, h))
	} else {
		q, ok = quadFromLines(pl, hyp.line(w, h), p0, p1)
	}
	if !ok {
		return Solution{}, false
	}
	known := pair[0].TotalLength + pair[1].TotalLength + perp.TotalLength
	return s.finishConstrained(q, gx, gy, w, h, known, 3, 1)
}

// solveCorner starts from one known corner (a horizontal and a vertical
// cluster) and searches for the opposite two sides. The horizontal runs
// first across the full band; its result pins the vertical's extent.
func (s *Solver) solveCorner(hc, vc lines.Cluster, gx, gy []float32, w, h int) (Solution, bool) {
	hl, vl := hc.Line(w, h), vc.Line(w, h)
	rowKnown := axisCrossing(hl, lines.Horizontal, w, h)
	colKnown := axisCrossing(vl, lines.Vertical, w, h)

	hypH, _, ok := s.searchSide(gx, gy, w, h, lines.Horizontal, tiltOf(hc),
		int(s.cfg.SearchLow*float64(h)), int(s.cfg.SearchHigh*float64(h)),
		int(s.cfg.SearchLow*float64(w)), int(s.cfg.SearchHigh*float64(w)),
		[]float64{rowKnown}, s.cfg.Separation*float64(h))
	if !ok {
		return Solution{}, false
	}
	hypV, _, ok := s.searchSide(gx, gy, w, h, lines.Vertical, tiltOf(vc),
		int(s.cfg.SearchLow*float64(w)), int(s.cfg.SearchHigh*float64(w)),
		int(min(rowKnown, hypH.pos)), int(max(rowKnown, hypH.pos)),
		[]float64{colKnown}, s.cfg.Separation*float64(w))
	if !ok {
		return Solution{}, false
	}

	q, ok := quadFromLines(hl, hypH.line(w, h), vl, hypV.line(w, h))
	if !ok {
		return Solution{}, false
	}
	return s.finishConstrained(q, gx, gy, w, h, hc.TotalLength+vc.TotalLength, 2, 2)
}

// solveParallel searches for both sides perpendicular to a known pair.
// Rotation moves both edge families together, so the missing sides borrow
// the pair's mean tilt.
func (s *Solver) solveParallel(a, b lines.Cluster, gx, gy []float32, w, h int) (Solution, bool) {
	mo := lines.Vertical
	dim := w
	if a.Orientation == lines.Vertical {
		mo = lines.Horizontal
		dim = h
	}
	la, lb := a.Line(w, h), b.Line(w, h)
	e0 := axisCrossing(la, a.Orientation, w, h)
	e1 := axisCrossing(lb, b.Orientation, w, h)
	extLo, extHi := int(min(e0, e1)), int(max(e0, e1))

	lo, hi := int(s.cfg.SearchLow*float64(dim)), int(s.cfg.SearchHigh*float64(dim))
	tilt := (tiltOf(a) + tiltOf(b)) / 2
	minGap := s.cfg.Separation * float64(dim)

	first, _, ok := s.searchSide(gx, gy, w, h, mo, tilt, lo, hi, extLo, extHi, nil, minGap)
	if !ok {
		return Solution{}, false
	}
	second, _, ok := s.searchSide(gx, gy, w, h, mo, tilt, lo, hi, extLo, extHi,
		[]float64{first.pos}, minGap)
	if !ok {
		return Solution{}, false
	}

	var q utils.Quad
	if a.Orientation == lines.Horizontal {
		q, ok = quadFromLines(la, lb, first.line(w, h), second.line(w, h))
	} else {
		q, ok = quadFromLines(first.line(w, h), second.line(w, h), la, lb)
	}
	if !ok {
		return Solution{}, false
	}
	return s.finishConstrained(q, gx, gy, w, h, a.TotalLength+b.TotalLength, 2, 2)
}

// finishConstrained gates and scores a constrained-search candidate. The
// support term blends outline coverage by the known clusters with the
// gradient strength of all four sides.
func (s *Solver) finishConstrained(q utils.Quad, gx, gy []float32, w, h int, knownLen float64, clusters, searched int) (Solution, bool) {
	if !s.admit(q, w, h) {
		return Solution{}, false
	}
	count, quality := s.sideSupport(gx, gy, w, h, q)
	if count < s.cfg.MinSides {
		return Solution{}, false
	}
	coverage := knownLen / q.Perimeter()
	if coverage > 1 {
		coverage = 1
	}
	score := s.quadScore(q, w, h, (coverage+quality)/2)
	conf := s.cfg.Tier2Base + s.cfg.Tier2Span*score
	return Solution{Corners: q, Confidence: conf, Tier: 2, Clusters: clusters, Searched: searched}, true
}
