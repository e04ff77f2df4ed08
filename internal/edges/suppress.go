package edges

import (
	"math"
	"sort"

	"github.com/docshot/docshot/internal/mempool"
)

// lineCandidate is one (theta, rho) cell of the vote accumulator that
// cleared the span threshold.
type lineCandidate struct {
	theta int // degrees, 0..179
	rho   int // offset bin, centered at diag
	votes int
}

// SuppressSpanningLines erases full-frame-spanning straight lines (tile
// grout, table seams) from the edge map before contour extraction. A line
// is erased only when its traced support run is at least MinSpanFrac of
// the longer dimension AND its endpoints lie within BorderPx of opposite
// borders. A document edge that merely runs near a single border fails
// the opposite-border test and survives. Erased strokes are StrokePx
// thick; the mask is re-closed when anything was erased. Returns the
// number of lines erased.
func SuppressSpanningLines(m *Map, cfg Config) int {
	w, h := m.Width, m.Height
	if w == 0 || h == 0 {
		return 0
	}

	longer := maxInt(w, h)
	minSpan := cfg.MinSpanFrac * float64(longer)

	diag := int(math.Ceil(math.Sqrt(float64(w*w + h*h))))
	rhoBins := 2*diag + 1

	const thetaBins = 180
	acc := mempool.GetFloat32(thetaBins * rhoBins)
	defer mempool.PutFloat32(acc)
	for i := range acc {
		acc[i] = 0
	}

	sinT := make([]float64, thetaBins)
	cosT := make([]float64, thetaBins)
	for t := range thetaBins {
		rad := float64(t) * math.Pi / 180
		sinT[t] = math.Sin(rad)
		cosT[t] = math.Cos(rad)
	}

	// Vote.
	for y := range h {
		row := y * w
		for x := range w {
			if m.Bits[row+x] == 0 {
				continue
			}
			fx, fy := float64(x), float64(y)
			for t := range thetaBins {
				rho := int(math.Round(fx*cosT[t]+fy*sinT[t])) + diag
				acc[t*rhoBins+rho]++
			}
		}
	}

	// Collect cells with enough support for a spanning line. Rho
	// quantization spreads a tilted line's votes over adjacent bins, so
	// the vote gate is half the span; the trace enforces the full span.
	var cands []lineCandidate
	minVotes := int(minSpan / 2)
	for t := range thetaBins {
		base := t * rhoBins
		for r := range rhoBins {
			if v := int(acc[base+r]); v >= minVotes {
				cands = append(cands, lineCandidate{theta: t, rho: r - diag, votes: v})
			}
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].votes > cands[j].votes })

	erased := 0
	for _, c := range cands {
		// Re-trace against the current bits: earlier erasures already
		// removed collinear duplicates.
		if suppressOne(m, c, sinT[c.theta], cosT[c.theta], minSpan, cfg) {
			erased++
		}
	}

	if erased > 0 {
		Close3x3(m.Bits, w, h)
	}
	return erased
}

// suppressOne traces the candidate line across the frame, verifies the
// span and opposite-border tests, and erases the run when both hold.
func suppressOne(m *Map, c lineCandidate, sin, cos, minSpan float64, cfg Config) bool {
	w, h := m.Width, m.Height
	rho := float64(c.rho)

	// Iterate along the dominant axis of the line direction.
	horizontalWalk := math.Abs(sin) >= math.Abs(cos)

	steps := w
	if !horizontalWalk {
		steps = h
	}

	var firstX, firstY, lastX, lastY float64
	hits := 0
	for s := range steps {
		x, y, ok := linePoint(s, horizontalWalk, rho, sin, cos, w, h)
		if !ok {
			continue
		}
		if !bandHit(m, x, y, horizontalWalk) {
			continue
		}
		if hits == 0 {
			firstX, firstY = float64(x), float64(y)
		}
		lastX, lastY = float64(x), float64(y)
		hits++
	}

	if hits < int(minSpan) {
		return false
	}
	dx := lastX - firstX
	dy := lastY - firstY
	if math.Sqrt(dx*dx+dy*dy) < minSpan {
		return false
	}

	bp := float64(cfg.BorderPx)
	oppositeLR := (firstX <= bp && lastX >= float64(w-1)-bp) ||
		(lastX <= bp && firstX >= float64(w-1)-bp)
	oppositeTB := (firstY <= bp && lastY >= float64(h-1)-bp) ||
		(lastY <= bp && firstY >= float64(h-1)-bp)
	if !oppositeLR && !oppositeTB {
		return false
	}

	eraseRun(m, horizontalWalk, rho, sin, cos, cfg.StrokePx)
	return true
}

// linePoint resolves the s-th sample of the line x·cosθ + y·sinθ = ρ.
func linePoint(s int, horizontalWalk bool, rho, sin, cos float64, w, h int) (x, y int, ok bool) {
	if horizontalWalk {
		x = s
		fy := (rho - float64(s)*cos) / sin
		y = int(math.Round(fy))
	} else {
		y = s
		fx := (rho - float64(s)*sin) / cos
		x = int(math.Round(fx))
	}
	if x < 0 || x >= w || y < 0 || y >= h {
		return 0, 0, false
	}
	return x, y, true
}

// bandHit checks the pixel and its two perpendicular neighbors, absorbing
// rho quantization error.
func bandHit(m *Map, x, y int, horizontalWalk bool) bool {
	if horizontalWalk {
		return m.At(x, y-1) || m.At(x, y) || m.At(x, y+1)
	}
	return m.At(x-1, y) || m.At(x, y) || m.At(x+1, y)
}

// eraseRun clears a stroke of the configured thickness along the whole
// line extent.
func eraseRun(m *Map, horizontalWalk bool, rho, sin, cos float64, strokePx int) {
	w, h := m.Width, m.Height
	radius := strokePx / 2

	steps := w
	if !horizontalWalk {
		steps = h
	}
	for s := range steps {
		x, y, ok := linePoint(s, horizontalWalk, rho, sin, cos, w, h)
		if !ok {
			continue
		}
		for d := -radius; d <= radius; d++ {
			nx, ny := x, y
			if horizontalWalk {
				ny += d
			} else {
				nx += d
			}
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			m.Bits[ny*w+nx] = 0
		}
	}
}
