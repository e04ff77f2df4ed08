package utils

import "math"

// SimplifyPolygon reduces the number of points in a polyline using the
// Douglas-Peucker algorithm with the given tolerance epsilon.
// Endpoints are always kept; epsilon <= 0 returns a copy of the input.
func SimplifyPolygon(pts []Point, epsilon float64) []Point {
	if len(pts) <= 3 || epsilon <= 0 {
		return append([]Point(nil), pts...)
	}
	keep := make([]bool, len(pts))
	dpSimplify(pts, 0, len(pts)-1, epsilon, keep)
	keep[0] = true
	keep[len(pts)-1] = true
	out := make([]Point, 0, len(pts))
	for i, k := range keep {
		if k {
			out = append(out, pts[i])
		}
	}
	return out
}

// SimplifyClosed simplifies a closed contour. The contour is split at the two
// mutually farthest vertices and each half is simplified independently, so the
// result does not depend on where the trace happened to start. The duplicated
// split vertices are not repeated in the output.
func SimplifyClosed(pts []Point, epsilon float64) []Point {
	if len(pts) <= 4 || epsilon <= 0 {
		return append([]Point(nil), pts...)
	}

	i0 := farthestFrom(pts, 0)
	i1 := farthestFrom(pts, i0)
	if i0 > i1 {
		i0, i1 = i1, i0
	}
	if i0 == i1 {
		return SimplifyPolygon(pts, epsilon)
	}

	first := SimplifyPolygon(pts[i0:i1+1], epsilon)

	wrap := make([]Point, 0, len(pts)-(i1-i0)+1)
	wrap = append(wrap, pts[i1:]...)
	wrap = append(wrap, pts[:i0+1]...)
	second := SimplifyPolygon(wrap, epsilon)

	out := make([]Point, 0, len(first)+len(second)-2)
	out = append(out, first[:len(first)-1]...)
	out = append(out, second[:len(second)-1]...)
	return out
}

// farthestFrom returns the index of the point farthest from pts[from].
func farthestFrom(pts []Point, from int) int {
	best := from
	bestDist := -1.0
	for i, p := range pts {
		if d := p.Dist(pts[from]); d > bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func dpSimplify(pts []Point, start, end int, eps float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist := -1.0
	index := -1
	a := pts[start]
	b := pts[end]
	for i := start + 1; i < end; i++ {
		d := perpendicularDistance(pts[i], a, b)
		if d > maxDist {
			maxDist = d
			index = i
		}
	}
	if maxDist > eps {
		dpSimplify(pts, start, index, eps, keep)
		keep[index] = true
		dpSimplify(pts, index, end, eps, keep)
	}
}

func perpendicularDistance(p, a, b Point) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	if vx == 0 && vy == 0 {
		return p.Dist(a)
	}
	num := math.Abs((p.X-a.X)*vy - (p.Y-a.Y)*vx)
	return num / math.Hypot(vx, vy)
}

// ConvexHull computes the convex hull of a set of points using the
// monotone chain algorithm. Returns the hull in CCW order without
// duplicating the first point at the end.
func ConvexHull(pts []Point) []Point {
	n := len(pts)
	if n <= 1 {
		return append([]Point(nil), pts...)
	}
	p := make([]Point, n)
	copy(p, pts)
	sortPoints(p)
	p = removeDuplicatePoints(p)
	if len(p) <= 1 {
		return append([]Point(nil), p...)
	}
	lower := buildLowerHull(p)
	upper := buildUpperHull(p)
	hull := make([]Point, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

func removeDuplicatePoints(p []Point) []Point {
	q := p[:0]
	var last Point
	hasLast := false
	for _, pt := range p {
		if !hasLast || pt.X != last.X || pt.Y != last.Y {
			q = append(q, pt)
			last = pt
			hasLast = true
		}
	}
	return q
}

func buildLowerHull(p []Point) []Point {
	lower := make([]Point, 0, len(p))
	for _, pt := range p {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], pt) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, pt)
	}
	return lower
}

func buildUpperHull(p []Point) []Point {
	upper := make([]Point, 0, len(p))
	for i := len(p) - 1; i >= 0; i-- {
		pt := p[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], pt) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, pt)
	}
	return upper
}

func sortPoints(p []Point) {
	// insertion sort; contours hand us small point counts
	for i := 1; i < len(p); i++ {
		v := p[i]
		j := i - 1
		for j >= 0 && (p[j].X > v.X || (p[j].X == v.X && p[j].Y > v.Y)) {
			p[j+1] = p[j]
			j--
		}
		p[j+1] = v
	}
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// PolygonArea returns the absolute area of the closed polygon via the
// shoelace formula.
func PolygonArea(pts []Point) float64 {
	if len(pts) < 3 {
		return 0
	}
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return math.Abs(sum) / 2
}

// PolygonPerimeter returns the perimeter of the closed polygon.
func PolygonPerimeter(pts []Point) float64 {
	if len(pts) < 2 {
		return 0
	}
	var sum float64
	for i := range pts {
		sum += pts[i].Dist(pts[(i+1)%len(pts)])
	}
	return sum
}

// TouchedFrameEdges counts how many distinct frame edges the point set
// reaches, within tol pixels. Used to recognize documents running out of
// frame.
func TouchedFrameEdges(pts []Point, width, height int, tol float64) int {
	var left, right, top, bottom bool
	w := float64(width - 1)
	h := float64(height - 1)
	for _, p := range pts {
		if p.X <= tol {
			left = true
		}
		if p.X >= w-tol {
			right = true
		}
		if p.Y <= tol {
			top = true
		}
		if p.Y >= h-tol {
			bottom = true
		}
	}
	count := 0
	for _, b := range []bool{left, right, top, bottom} {
		if b {
			count++
		}
	}
	return count
}
