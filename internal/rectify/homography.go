package rectify

import (
	"image"
	"image/color"

	"github.com/docshot/docshot/internal/utils"
)

// cornerHomography solves the 3×3 projective map sending src[i] to
// dst[i], with h22 fixed to 1. Warping works in pixel coordinates, so
// the plain 8×8 system with partial pivoting is well enough conditioned
// without normalizing the points first.
func cornerHomography(src, dst utils.Quad) ([9]float64, bool) {
	var a [8][9]float64
	for i := range 4 {
		u, v := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i
		a[r] = [9]float64{u, v, 1, 0, 0, 0, -x * u, -x * v, x}
		a[r+1] = [9]float64{0, 0, 0, u, v, 1, -y * u, -y * v, y}
	}

	for col := range 8 {
		pivot := col
		for r := col + 1; r < 8; r++ {
			if abs(a[r][col]) > abs(a[pivot][col]) {
				pivot = r
			}
		}
		if abs(a[pivot][col]) < 1e-12 {
			return [9]float64{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := range 8 {
			if r == col {
				continue
			}
			f := a[r][col] / a[col][col]
			if f == 0 {
				continue
			}
			for c := col; c < 9; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	var h [9]float64
	for i := range 8 {
		h[i] = a[i][8] / a[i][i]
	}
	h[8] = 1
	return h, true
}

// project maps a destination pixel through the homography into source
// coordinates.
func project(h [9]float64, x, y float64) (float64, float64) {
	den := h[6]*x + h[7]*y + h[8]
	if den == 0 {
		return -1e9, -1e9
	}
	return (h[0]*x + h[1]*y + h[2]) / den, (h[3]*x + h[4]*y + h[5]) / den
}

// sampleBilinear reads a bilinearly interpolated color at fractional
// source coordinates. Samples outside the image come back opaque black.
func sampleBilinear(src image.Image, x, y float64) color.RGBA {
	b := src.Bounds()
	if x < float64(b.Min.X) || y < float64(b.Min.Y) || x > float64(b.Max.X-1) || y > float64(b.Max.Y-1) {
		return color.RGBA{A: 255}
	}
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= b.Max.X {
		x1 = b.Max.X - 1
	}
	if y1 >= b.Max.Y {
		y1 = b.Max.Y - 1
	}
	fx, fy := x-float64(x0), y-float64(y0)

	c00 := channels(src.At(x0, y0))
	c10 := channels(src.At(x1, y0))
	c01 := channels(src.At(x0, y1))
	c11 := channels(src.At(x1, y1))

	var out [4]uint8
	for i := range 4 {
		top := c00[i] + (c10[i]-c00[i])*fx
		bot := c01[i] + (c11[i]-c01[i])*fx
		out[i] = uint8(top + (bot-top)*fy + 0.5)
	}
	return color.RGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}

func channels(c color.Color) [4]float64 {
	r, g, b, a := c.RGBA()
	return [4]float64{float64(r >> 8), float64(g >> 8), float64(b >> 8), float64(a >> 8)}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
