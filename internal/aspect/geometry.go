package aspect

import (
	"math"
	"sort"

	"github.com/docshot/docshot/internal/utils"
)

// OrderCorners returns the corners in top-left, top-right, bottom-right,
// bottom-left order by sorting them around the centroid. The operation is
// idempotent: an ordered quad passes through unchanged.
func OrderCorners(q utils.Quad) utils.Quad {
	c := q.Centroid()
	type polar struct {
		p   utils.Point
		ang float64
	}
	ps := make([]polar, 4)
	for i, p := range q {
		ps[i] = polar{p: p, ang: math.Atan2(p.Y-c.Y, p.X-c.X)}
	}
	// Image y grows downward, so ascending angle walks the boundary
	// clockwise on screen.
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].ang < ps[j].ang })

	// Rotate so the corner pointing up-left from the centroid comes first.
	const upLeft = -3 * math.Pi / 4
	start, best := 0, math.Inf(1)
	for i, pp := range ps {
		if d := angularDistance(pp.ang, upLeft); d < best {
			start, best = i, d
		}
	}
	var out utils.Quad
	for i := range out {
		out[i] = ps[(start+i)%4].p
	}
	return out
}

func angularDistance(a, b float64) float64 {
	d := math.Abs(a - b)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

// Severity is the perspective severity of a quad: the maximum deviation
// of its interior angles from 90 degrees. A true rectangle scores 0.
func Severity(q utils.Quad) float64 {
	var sev float64
	for _, a := range q.InteriorAngles() {
		if d := math.Abs(90 - a); d > sev {
			sev = d
		}
	}
	return sev
}

// RawRatio returns the uncorrected side ratio of an ordered quad, folded
// to (0, 1] as short over long. ok is false for collapsed sides.
func RawRatio(q utils.Quad) (float64, bool) {
	vh, ok := sideRatioVH(q)
	if !ok {
		return 0, false
	}
	return fold(vh), true
}

// sideRatioVH returns the unfolded vertical-over-horizontal mean side
// ratio of an ordered quad.
func sideRatioVH(q utils.Quad) (float64, bool) {
	s := q.Sides()
	horizontal := (s[0] + s[2]) / 2
	vertical := (s[1] + s[3]) / 2
	if horizontal <= 0 || vertical <= 0 {
		return 0, false
	}
	return vertical / horizontal, true
}

func fold(r float64) float64 {
	if r > 1 {
		return 1 / r
	}
	return r
}

// convergenceAngles returns the angle between the top and bottom edges
// and between the left and right edges, in radians. Opposite sides that
// are parallel in the image give zero; under perspective they converge
// toward a vanishing point and the angle grows.
func convergenceAngles(q utils.Quad) (alphaH, alphaV float64) {
	top := q[1].Sub(q[0])
	bottom := q[2].Sub(q[3])
	left := q[3].Sub(q[0])
	right := q[2].Sub(q[1])
	return angleBetween(top, bottom), angleBetween(left, right)
}

func angleBetween(a, b utils.Point) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	c := a.Dot(b) / (na * nb)
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c)
}

// angularRatio applies the first-order foreshortening correction: the raw
// vertical/horizontal ratio scaled by cos(alphaV/2)/cos(alphaH/2). For a
// parallelogram both angles are zero and the raw ratio passes through
// exactly.
func angularRatio(q utils.Quad, vh float64) float64 {
	alphaH, alphaV := convergenceAngles(q)
	corrected := vh * math.Cos(alphaV/2) / math.Cos(alphaH/2)
	return fold(corrected)
}
