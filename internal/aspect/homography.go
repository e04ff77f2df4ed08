package aspect

import (
	"math"

	"github.com/docshot/docshot/internal/utils"
)

// homographyUnitSquare computes the 3x3 projective transform mapping the
// unit square (0,0),(1,0),(1,1),(0,1) onto the ordered corners. The image
// points are Hartley-normalized before the linear solve and the transform
// is denormalized afterwards. ok is false for degenerate corner sets.
func homographyUnitSquare(q utils.Quad) ([9]float64, bool) {
	c := q.Centroid()
	var meanDist float64
	for _, p := range q {
		meanDist += p.Dist(c)
	}
	meanDist /= 4
	if meanDist < 1e-12 {
		return [9]float64{}, false
	}
	scale := math.Sqrt2 / meanDist

	var norm [4]utils.Point
	for i, p := range q {
		norm[i] = utils.Point{X: (p.X - c.X) * scale, Y: (p.Y - c.Y) * scale}
	}

	src := [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	var a [8][9]float64
	for i := range src {
		u, v := src[i][0], src[i][1]
		x, y := norm[i].X, norm[i].Y
		a[2*i] = [9]float64{u, v, 1, 0, 0, 0, -x * u, -x * v, x}
		a[2*i+1] = [9]float64{0, 0, 0, u, v, 1, -y * u, -y * v, y}
	}
	sol, ok := solve8(&a)
	if !ok {
		return [9]float64{}, false
	}

	hn := [9]float64{sol[0], sol[1], sol[2], sol[3], sol[4], sol[5], sol[6], sol[7], 1}
	// Denormalize: H = inv(T) * Hn with T the normalizing similarity.
	invT := [9]float64{1 / scale, 0, c.X, 0, 1 / scale, c.Y, 0, 0, 1}
	hom := mul3(invT, hn)
	if math.Abs(hom[8]) > 1e-12 {
		for i := range hom {
			hom[i] /= hom[8]
		}
	}
	return hom, true
}

// solve8 runs Gaussian elimination with partial pivoting on an 8x8 system
// in augmented form.
func solve8(a *[8][9]float64) ([8]float64, bool) {
	for col := 0; col < 8; col++ {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return [8]float64{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := col + 1; r < 8; r++ {
			f := a[r][col] / a[col][col]
			if f == 0 {
				continue
			}
			for k := col; k < 9; k++ {
				a[r][k] -= f * a[col][k]
			}
		}
	}
	var x [8]float64
	for r := 7; r >= 0; r-- {
		sum := a[r][8]
		for k := r + 1; k < 8; k++ {
			sum -= a[r][k] * x[k]
		}
		x[r] = sum / a[r][r]
	}
	return x, true
}

func mul3(a, b [9]float64) [9]float64 {
	var out [9]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[3*r+c] = a[3*r]*b[c] + a[3*r+1]*b[3+c] + a[3*r+2]*b[6+c]
		}
	}
	return out
}

// decompose applies the inverse intrinsics to the first two homography
// columns. For a planar target these are scaled rotation columns; their
// norms carry the side lengths.
func decompose(hom [9]float64, intr *Intrinsics) (c1, c2 [3]float64, ok bool) {
	if intr == nil || intr.Fx <= 0 || intr.Fy <= 0 {
		return c1, c2, false
	}
	col := func(i int) [3]float64 {
		h := [3]float64{hom[i], hom[3+i], hom[6+i]}
		return [3]float64{
			(h[0] - intr.Cx*h[2]) / intr.Fx,
			(h[1] - intr.Cy*h[2]) / intr.Fy,
			h[2],
		}
	}
	c1, c2 = col(0), col(1)
	if vecNorm(c1) < 1e-12 || vecNorm(c2) < 1e-12 {
		return c1, c2, false
	}
	return c1, c2, true
}

func vecNorm(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func vecDot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// projectiveRatio recovers the true aspect ratio from the decomposed
// column norms, folded to short over long.
func projectiveRatio(hom [9]float64, intr *Intrinsics) (float64, bool) {
	c1, c2, ok := decompose(hom, intr)
	if !ok {
		return 0, false
	}
	return fold(vecNorm(c1) / vecNorm(c2)), true
}
