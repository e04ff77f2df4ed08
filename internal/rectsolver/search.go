package rectsolver

import (
	"math"

	"github.com/docshot/docshot/internal/lines"
	"github.com/docshot/docshot/internal/utils"
)

// hypothesis is a candidate boundary line: the row (horizontal) or column
// (vertical) where it crosses the central axis of the frame, and its tilt
// away from axis-aligned in degrees.
type hypothesis struct {
	o    lines.Orientation
	pos  float64
	tilt float64
}

// line converts the hypothesis to implicit form for corner intersection.
// The normal follows the same canonical direction as cluster lines: down
// for horizontal, right for vertical.
func (hy hypothesis) line(w, h int) lines.Line {
	t := hy.tilt * math.Pi / 180
	sin, cos := math.Sin(t), math.Cos(t)
	if hy.o == lines.Horizontal {
		cx := float64(w) / 2
		return lines.Line{A: -sin, B: cos, C: -(-sin*cx + cos*hy.pos)}
	}
	cy := float64(h) / 2
	return lines.Line{A: cos, B: sin, C: -(cos*hy.pos + sin*cy)}
}

// axisCrossing inverts line; it returns the row or column where a known
// boundary line crosses the central axis of the frame.
func axisCrossing(ln lines.Line, o lines.Orientation, w, h int) float64 {
	if o == lines.Horizontal {
		return -(ln.C + ln.A*float64(w)/2) / ln.B
	}
	return -(ln.C + ln.B*float64(h)/2) / ln.A
}

// response accumulates the signed gradient component normal to the
// hypothesized boundary, sampled one pixel apart along the primary axis
// between lo and hi, and returns the absolute mean. Text and texture
// gradients alternate sign along a line and cancel; a document boundary
// keeps one sign and reinforces.
func response(gx, gy []float32, w, h int, hy hypothesis, lo, hi int) float64 {
	t := hy.tilt * math.Pi / 180
	sin, cos := math.Sin(t), math.Cos(t)
	tan := math.Tan(t)
	var sum float64
	var n int
	if hy.o == lines.Horizontal {
		lo, hi = clampRange(lo, hi, w)
		cx := float64(w) / 2
		for x := lo; x < hi; x++ {
			y := int(math.Round(hy.pos + (float64(x)-cx)*tan))
			if y < 0 || y >= h {
				continue
			}
			i := y*w + x
			sum += float64(gx[i])*(-sin) + float64(gy[i])*cos
			n++
		}
	} else {
		lo, hi = clampRange(lo, hi, h)
		cy := float64(h) / 2
		for y := lo; y < hi; y++ {
			x := int(math.Round(hy.pos - (float64(y)-cy)*tan))
			if x < 0 || x >= w {
				continue
			}
			i := y*w + x
			sum += float64(gx[i])*cos + float64(gy[i])*sin
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Abs(sum) / float64(n)
}

func clampRange(lo, hi, limit int) (int, int) {
	if lo < 0 {
		lo = 0
	}
	if hi > limit {
		hi = limit
	}
	return lo, hi
}

// searchSide locates one missing boundary: a coarse sweep across [lo, hi)
// followed by single-pixel refinement around the winner. exclude lists
// positions of known parallel boundaries the sweep must keep clear of by
// minGap. ok is false when nothing in the band clears the gradient floor.
func (s *Solver) searchSide(gx, gy []float32, w, h int, o lines.Orientation, tilt float64, lo, hi, extLo, extHi int, exclude []float64, minGap float64) (hypothesis, float64, bool) {
	var bestPos, bestResp float64
	found := false
	for p := lo; p < hi; p += s.cfg.CoarseStep {
		pos := float64(p)
		if tooClose(pos, exclude, minGap) {
			continue
		}
		r := response(gx, gy, w, h, hypothesis{o: o, pos: pos, tilt: tilt}, extLo, extHi)
		if r > bestResp {
			bestPos, bestResp, found = pos, r, true
		}
	}
	if !found || bestResp < s.cfg.GradientFloor {
		return hypothesis{}, 0, false
	}
	coarse := int(bestPos)
	for p := coarse - s.cfg.FineRadius; p <= coarse+s.cfg.FineRadius; p++ {
		if p < lo || p >= hi || p == coarse {
			continue
		}
		pos := float64(p)
		if tooClose(pos, exclude, minGap) {
			continue
		}
		if r := response(gx, gy, w, h, hypothesis{o: o, pos: pos, tilt: tilt}, extLo, extHi); r > bestResp {
			bestPos, bestResp = pos, r
		}
	}
	return hypothesis{o: o, pos: bestPos, tilt: tilt}, bestResp, true
}

func tooClose(pos float64, exclude []float64, gap float64) bool {
	for _, e := range exclude {
		if math.Abs(pos-e) < gap {
			return true
		}
	}
	return false
}

// sideResponse walks the side from a to b and returns the absolute mean
// signed gradient component along the side normal.
func sideResponse(gx, gy []float32, w, h int, a, b utils.Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	steps := int(length)
	if steps < 2 {
		return 0
	}
	nx, ny := -dy/length, dx/length
	var sum float64
	var n int
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(a.X + t*dx))
		y := int(math.Round(a.Y + t*dy))
		if x < 0 || x >= w || y < 0 || y >= h {
			continue
		}
		idx := y*w + x
		sum += float64(gx[idx])*nx + float64(gy[idx])*ny
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Abs(sum) / float64(n)
}

// sideSupport gates a searched quad: it returns how many sides clear the
// gradient floor and an aggregate strength in [0, 1]. Full strength sits
// at four times the floor, so barely-admitted sides score low.
func (s *Solver) sideSupport(gx, gy []float32, w, h int, q utils.Quad) (int, float64) {
	count := 0
	var quality float64
	for i := range q {
		r := sideResponse(gx, gy, w, h, q[i], q[(i+1)%4])
		if r >= s.cfg.GradientFloor {
			count++
		}
		qi := r / (4 * s.cfg.GradientFloor)
		if qi > 1 {
			qi = 1
		}
		quality += qi
	}
	return count, quality / 4
}

// tiltOf maps a cluster angle to its deviation from axis-aligned, in
// degrees, in (-45, 45].
func tiltOf(c lines.Cluster) float64 {
	if c.Orientation == lines.Horizontal {
		if c.Angle >= 135 {
			return c.Angle - 180
		}
		return c.Angle
	}
	return c.Angle - 90
}
