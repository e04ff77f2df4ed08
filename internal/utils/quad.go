package utils

import "math"

// Quad is a quadrilateral with corners in top-left, top-right, bottom-right,
// bottom-left order. Use OrderQuad to establish that order from arbitrary
// corner sets.
type Quad [4]Point

// OrderQuad returns the four points ordered top-left, top-right, bottom-right,
// bottom-left. The assignment uses coordinate sums and differences relative to
// the image axes, so the operation is idempotent.
func OrderQuad(pts [4]Point) Quad {
	sumMin, sumMax := math.Inf(1), math.Inf(-1)
	diffMin, diffMax := math.Inf(1), math.Inf(-1)
	var tl, tr, br, bl int
	for i, p := range pts {
		s := p.X + p.Y
		d := p.X - p.Y
		if s < sumMin {
			sumMin = s
			tl = i
		}
		if s > sumMax {
			sumMax = s
			br = i
		}
		if d > diffMax {
			diffMax = d
			tr = i
		}
		if d < diffMin {
			diffMin = d
			bl = i
		}
	}
	return Quad{pts[tl], pts[tr], pts[br], pts[bl]}
}

// Points returns the corners as a slice, for polygon helpers.
func (q Quad) Points() []Point {
	return []Point{q[0], q[1], q[2], q[3]}
}

// Area returns the area of the quadrilateral via the shoelace formula.
func (q Quad) Area() float64 {
	return PolygonArea(q.Points())
}

// Perimeter returns the sum of the four side lengths.
func (q Quad) Perimeter() float64 {
	var sum float64
	for i := range q {
		sum += q[i].Dist(q[(i+1)%4])
	}
	return sum
}

// Centroid returns the mean of the four corners.
func (q Quad) Centroid() Point {
	return Centroid(q.Points())
}

// Sides returns the side lengths in top, right, bottom, left order.
func (q Quad) Sides() [4]float64 {
	return [4]float64{
		q[0].Dist(q[1]),
		q[1].Dist(q[2]),
		q[2].Dist(q[3]),
		q[3].Dist(q[0]),
	}
}

// InteriorAngles returns the interior angle at each corner in degrees,
// in the same order as the corners.
func (q Quad) InteriorAngles() [4]float64 {
	var angles [4]float64
	for i := range q {
		prev := q[(i+3)%4].Sub(q[i])
		next := q[(i+1)%4].Sub(q[i])
		n1, n2 := prev.Norm(), next.Norm()
		if n1 == 0 || n2 == 0 {
			continue
		}
		c := prev.Dot(next) / (n1 * n2)
		c = math.Max(-1, math.Min(1, c))
		angles[i] = math.Acos(c) * 180 / math.Pi
	}
	return angles
}

// Bounds returns the axis-aligned bounding box of the corners.
func (q Quad) Bounds() Box {
	return BoundingBox(q.Points())
}

// Scaled returns q with every corner multiplied by (sx, sy).
func (q Quad) Scaled(sx, sy float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = Point{X: p.X * sx, Y: p.Y * sy}
	}
	return out
}

// Offset returns q translated by (dx, dy).
func (q Quad) Offset(dx, dy float64) Quad {
	var out Quad
	for i, p := range q {
		out[i] = Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// IsDegenerate reports whether any side collapses to (near) zero length or
// the area vanishes. Degenerate quads are rejected before scoring.
func (q Quad) IsDegenerate() bool {
	const minSide = 1e-6
	for _, s := range q.Sides() {
		if s < minSide {
			return true
		}
	}
	return q.Area() < minSide
}

// IsConvex reports whether the quadrilateral is convex. Corner order must
// already be canonical; a self-intersecting order reads as non-convex.
func (q Quad) IsConvex() bool {
	var sign float64
	for i := range q {
		c := cross(q[i], q[(i+1)%4], q[(i+2)%4])
		if c == 0 {
			continue
		}
		if sign == 0 {
			sign = c
			continue
		}
		if (c > 0) != (sign > 0) {
			return false
		}
	}
	return sign != 0
}
