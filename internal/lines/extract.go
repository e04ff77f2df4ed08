package lines

import (
	"math"
	"sort"

	"github.com/docshot/docshot/internal/mempool"
	"github.com/docshot/docshot/internal/utils"
)

// minRegionPixels is the smallest support region worth fitting.
const minRegionPixels = 8

// ExtractSegments region-grows aligned gradient pixels into straight
// segments. A pixel participates when its gradient magnitude clears the
// floor; neighbors join a region while their gradient orientation stays
// within the growth tolerance of the region's running mean. Each region
// is fitted by its principal axis; fits shorter than MinLenFrac of the
// longer dimension, or too wide to be line-like, are dropped. Segments
// are returned longest first.
func ExtractSegments(gx, gy []float32, w, h int, cfg Config) []Segment {
	n := w * h
	if n == 0 {
		return nil
	}

	visited := mempool.GetBool(n)
	defer mempool.PutBool(visited)

	minLen := cfg.MinLenFrac * float64(maxInt(w, h))
	floorSq := float32(cfg.MagFloor * cfg.MagFloor)

	var segs []Segment
	stack := make([]int32, 0, 1024)

	for y := range h {
		row := y * w
		for x := range w {
			idx := row + x
			if visited[idx] || magSq(gx[idx], gy[idx]) < floorSq {
				continue
			}
			if seg, ok := growRegion(gx, gy, visited, stack, w, h, idx, floorSq, cfg, minLen); ok {
				segs = append(segs, seg)
			}
		}
	}

	sort.Slice(segs, func(i, j int) bool { return segs[i].Length > segs[j].Length })
	return segs
}

func magSq(x, y float32) float32 { return x*x + y*y }

// region accumulates pixel statistics during growth. Orientation is
// tracked as a doubled-angle vector sum so the circular mean of an axial
// quantity stays well-defined.
type region struct {
	count  int
	sumX   float64
	sumY   float64
	sumXX  float64
	sumYY  float64
	sumXY  float64
	sumMag float64
	dirX   float64 // Σ cos(2θ)
	dirY   float64 // Σ sin(2θ)
}

func (r *region) add(x, y int, theta, mag float64) {
	fx, fy := float64(x), float64(y)
	r.count++
	r.sumX += fx
	r.sumY += fy
	r.sumXX += fx * fx
	r.sumYY += fy * fy
	r.sumXY += fx * fy
	r.sumMag += mag
	r.dirX += math.Cos(2 * theta)
	r.dirY += math.Sin(2 * theta)
}

// meanTheta returns the region's mean gradient orientation in radians,
// in [0, π).
func (r *region) meanTheta() float64 {
	t := math.Atan2(r.dirY, r.dirX) / 2
	if t < 0 {
		t += math.Pi
	}
	return t
}

// growRegion floods from the seed, admitting neighbors whose gradient
// orientation stays within tolerance of the running regional mean, then
// fits a segment to the support pixels.
func growRegion(gx, gy []float32, visited []bool, stack []int32,
	w, h, seed int, floorSq float32, cfg Config, minLen float64,
) (Segment, bool) {
	tol := cfg.GrowAngleTol * math.Pi / 180

	var reg region
	visited[seed] = true
	stack = append(stack[:0], int32(seed))
	reg.add(seed%w, seed/w, gradTheta(gx[seed], gy[seed]), float64(math.Hypot(float64(gx[seed]), float64(gy[seed]))))

	for len(stack) > 0 {
		idx := int(stack[len(stack)-1])
		stack = stack[:len(stack)-1]

		x, y := idx%w, idx/w
		mean := reg.meanTheta()

		for dy := -1; dy <= 1; dy++ {
			ny := y + dy
			if ny < 0 || ny >= h {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx := x + dx
				if nx < 0 || nx >= w {
					continue
				}
				ni := ny*w + nx
				if visited[ni] || magSq(gx[ni], gy[ni]) < floorSq {
					continue
				}
				theta := gradTheta(gx[ni], gy[ni])
				if axialDiff(theta, mean) > tol {
					continue
				}
				visited[ni] = true
				reg.add(nx, ny, theta, math.Hypot(float64(gx[ni]), float64(gy[ni])))
				stack = append(stack, int32(ni))
			}
		}
	}

	if reg.count < minRegionPixels {
		return Segment{}, false
	}
	return fitSegment(&reg, minLen)
}

// gradTheta returns the gradient orientation in radians modulo π.
func gradTheta(x, y float32) float64 {
	t := math.Atan2(float64(y), float64(x))
	if t < 0 {
		t += math.Pi
	}
	if t >= math.Pi {
		t -= math.Pi
	}
	return t
}

// axialDiff returns the distance between two axial angles in radians,
// in [0, π/2].
func axialDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), math.Pi)
	if d > math.Pi/2 {
		d = math.Pi - d
	}
	return d
}

// fitSegment fits the principal axis of the support pixels and projects
// them onto it for the endpoints.
func fitSegment(reg *region, minLen float64) (Segment, bool) {
	fn := float64(reg.count)
	cx := reg.sumX / fn
	cy := reg.sumY / fn

	sxx := reg.sumXX/fn - cx*cx
	syy := reg.sumYY/fn - cy*cy
	sxy := reg.sumXY/fn - cx*cy

	// Principal axis of the covariance.
	axis := 0.5 * math.Atan2(2*sxy, sxx-syy)
	dirX, dirY := math.Cos(axis), math.Sin(axis)

	// Eigenvalues give the spread along and across the axis.
	mid := (sxx + syy) / 2
	d := math.Sqrt(((sxx-syy)/2)*((sxx-syy)/2) + sxy*sxy)
	major := mid + d
	minor := mid - d
	if minor < 0 {
		minor = 0
	}

	// A uniform line of length L has variance L²/12 along its axis.
	length := math.Sqrt(12*major) + 1
	if length < minLen {
		return Segment{}, false
	}

	// Line-likeness: cross-axis spread must stay small.
	if width := math.Sqrt(minor); width > 1.5+0.03*length {
		return Segment{}, false
	}

	half := (length - 1) / 2
	angle := math.Mod(axis*180/math.Pi+180, 180)

	return Segment{
		P1:     utils.Point{X: cx - half*dirX, Y: cy - half*dirY},
		P2:     utils.Point{X: cx + half*dirX, Y: cy + half*dirY},
		Angle:  angle,
		Length: length,
		Mag:    reg.sumMag / fn,
	}, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
