package edges

import (
	"fmt"
	"image"
	"math"

	"github.com/docshot/docshot/internal/mempool"
)

// Gradients computes 3×3 Sobel responses over a grayscale plane. The
// returned planes are pool-backed, sized exactly w×h, with a zero border
// ring. Callers own the planes and must return them to the pools (the
// usual owner is a Map released as a whole).
func Gradients(gray *image.Gray) (gx, gy, mag []float32, w, h int) {
	b := gray.Bounds()
	w, h = b.Dx(), b.Dy()
	n := w * h

	gx = mempool.GetFloat32(n)
	gy = mempool.GetFloat32(n)
	mag = mempool.GetFloat32(n)
	sobel(gray, gx, gy, mag, w, h)
	return gx, gy, mag, w, h
}

// GradientsInto computes the same responses into caller-provided planes,
// for callers that manage their own scratch through an arena. Each plane
// must hold at least w×h elements.
func GradientsInto(gray *image.Gray, gx, gy, mag []float32) (w, h int, err error) {
	b := gray.Bounds()
	w, h = b.Dx(), b.Dy()
	n := w * h
	if len(gx) < n || len(gy) < n || len(mag) < n {
		return 0, 0, fmt.Errorf("gradient planes hold %d/%d/%d elements, need %d",
			len(gx), len(gy), len(mag), n)
	}
	sobel(gray, gx, gy, mag, w, h)
	return w, h, nil
}

func sobel(gray *image.Gray, gx, gy, mag []float32, w, h int) {
	b := gray.Bounds()
	if w < 3 || h < 3 {
		for i := range w * h {
			gx[i], gy[i], mag[i] = 0, 0, 0
		}
		return
	}

	for y := range h {
		rowOut := y * w
		if y == 0 || y == h-1 {
			for x := range w {
				gx[rowOut+x], gy[rowOut+x], mag[rowOut+x] = 0, 0, 0
			}
			continue
		}

		up := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y-1):]
		mid := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		down := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y+1):]

		gx[rowOut], gy[rowOut], mag[rowOut] = 0, 0, 0
		gx[rowOut+w-1], gy[rowOut+w-1], mag[rowOut+w-1] = 0, 0, 0

		for x := 1; x < w-1; x++ {
			tl, tc, tr := float32(up[x-1]), float32(up[x]), float32(up[x+1])
			ml, mr := float32(mid[x-1]), float32(mid[x+1])
			bl, bc, br := float32(down[x-1]), float32(down[x]), float32(down[x+1])

			dx := (tr + 2*mr + br) - (tl + 2*ml + bl)
			dy := (bl + 2*bc + br) - (tl + 2*tc + tr)

			i := rowOut + x
			gx[i] = dx
			gy[i] = dy
			mag[i] = float32(math.Sqrt(float64(dx*dx + dy*dy)))
		}
	}
}

// AbsPlanes converts signed gradient planes to saturated uint8 magnitude
// planes, the form the directional kernel accumulates.
func AbsPlanes(gx, gy []float32, n int) (absGX, absGY []uint8) {
	absGX = mempool.GetUint8(n)
	absGY = mempool.GetUint8(n)
	for i := range n {
		absGX[i] = saturateAbs(gx[i])
		absGY[i] = saturateAbs(gy[i])
	}
	return absGX, absGY
}

func saturateAbs(v float32) uint8 {
	if v < 0 {
		v = -v
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
