package aspect

import "math"

// selfCalibrate recovers camera intrinsics from a set of unit-square
// homographies, Zhang-style. Each frame contributes two linear
// constraints on the image of the absolute conic (orthogonality and
// equal norm of the rotation columns); the stacked system's null-space
// vector yields the conic, and the intrinsics follow in closed form.
// ok is false when the system is degenerate, which happens when the
// frames do not span enough distinct orientations.
func selfCalibrate(homs [][9]float64) (Intrinsics, bool) {
	if len(homs) < 3 {
		return Intrinsics{}, false
	}

	// Accumulate VᵀV directly rather than materializing the 2Nx6 stack.
	var vtv [6][6]float64
	addRow := func(row [6]float64) {
		var norm float64
		for _, x := range row {
			norm += x * x
		}
		norm = math.Sqrt(norm)
		if norm < 1e-15 {
			return
		}
		for i := range row {
			row[i] /= norm
		}
		for i := range 6 {
			for j := range 6 {
				vtv[i][j] += row[i] * row[j]
			}
		}
	}
	for _, h := range homs {
		v11 := conicRow(h, 0, 0)
		v12 := conicRow(h, 0, 1)
		v22 := conicRow(h, 1, 1)
		addRow(v12)
		var diff [6]float64
		for i := range 6 {
			diff[i] = v11[i] - v22[i]
		}
		addRow(diff)
	}

	vals, vecs := jacobiEigen(vtv)
	min1, min2, max := 0, -1, 0
	for i := 1; i < 6; i++ {
		switch {
		case math.Abs(vals[i]) < math.Abs(vals[min1]):
			min2 = min1
			min1 = i
		case min2 < 0 || math.Abs(vals[i]) < math.Abs(vals[min2]):
			min2 = i
		}
		if math.Abs(vals[i]) > math.Abs(vals[max]) {
			max = i
		}
	}
	// A second near-zero eigenvalue means the null space is not unique:
	// the frames are effectively copies of one view.
	if math.Abs(vals[max]) < 1e-15 || math.Abs(vals[min2]) <= math.Abs(vals[max])*1e-9 {
		return Intrinsics{}, false
	}

	var b [6]float64
	for i := range 6 {
		b[i] = vecs[i][min1]
	}
	if b[0] < 0 {
		for i := range b {
			b[i] = -b[i]
		}
	}
	b11, b12, b22, b13, b23, b33 := b[0], b[1], b[2], b[3], b[4], b[5]

	denom := b11*b22 - b12*b12
	if math.Abs(denom) < 1e-15 || math.Abs(b11) < 1e-15 {
		return Intrinsics{}, false
	}
	v0 := (b12*b13 - b11*b23) / denom
	lambda := b33 - (b13*b13+v0*(b12*b13-b11*b23))/b11
	if lambda/b11 <= 0 {
		return Intrinsics{}, false
	}
	alpha := math.Sqrt(lambda / b11)
	betaSq := lambda * b11 / denom
	if betaSq <= 0 {
		return Intrinsics{}, false
	}
	beta := math.Sqrt(betaSq)
	u0 := -b13 * alpha * alpha / lambda

	return Intrinsics{Fx: alpha, Fy: beta, Cx: u0, Cy: v0}, true
}

// conicRow builds the constraint row v_ij from homography columns i and j
// for the symmetric conic parameterization (B11,B12,B22,B13,B23,B33).
func conicRow(h [9]float64, i, j int) [6]float64 {
	hi := [3]float64{h[i], h[3+i], h[6+i]}
	hj := [3]float64{h[j], h[3+j], h[6+j]}
	return [6]float64{
		hi[0] * hj[0],
		hi[0]*hj[1] + hi[1]*hj[0],
		hi[1] * hj[1],
		hi[2]*hj[0] + hi[0]*hj[2],
		hi[2]*hj[1] + hi[1]*hj[2],
		hi[2] * hj[2],
	}
}

// jacobiEigen diagonalizes a symmetric 6x6 matrix with cyclic Jacobi
// rotations. It returns the eigenvalues and the matching eigenvectors as
// columns of vecs.
func jacobiEigen(a [6][6]float64) (vals [6]float64, vecs [6][6]float64) {
	for i := range 6 {
		vecs[i][i] = 1
	}
	for sweep := 0; sweep < 50; sweep++ {
		var off float64
		for p := 0; p < 5; p++ {
			for q := p + 1; q < 6; q++ {
				off += a[p][q] * a[p][q]
			}
		}
		if off < 1e-24 {
			break
		}
		for p := 0; p < 5; p++ {
			for q := p + 1; q < 6; q++ {
				if math.Abs(a[p][q]) < 1e-18 {
					continue
				}
				theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
				t := 1 / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				if theta < 0 {
					t = -t
				}
				c := 1 / math.Sqrt(t*t+1)
				s := t * c
				for k := range 6 {
					akp, akq := a[k][p], a[k][q]
					a[k][p] = c*akp - s*akq
					a[k][q] = s*akp + c*akq
				}
				for k := range 6 {
					apk, aqk := a[p][k], a[q][k]
					a[p][k] = c*apk - s*aqk
					a[q][k] = s*apk + c*aqk
				}
				for k := range 6 {
					vkp, vkq := vecs[k][p], vecs[k][q]
					vecs[k][p] = c*vkp - s*vkq
					vecs[k][q] = s*vkp + c*vkq
				}
			}
		}
	}
	for i := range 6 {
		vals[i] = a[i][i]
	}
	return vals, vecs
}
