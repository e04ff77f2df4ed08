package edges

import (
	"image"

	"github.com/docshot/docshot/internal/mempool"
	"github.com/docshot/docshot/internal/utils"
)

// Equalize applies 256-bin histogram equalization, the contrast
// enhancement strategy for low-light and low-contrast scenes.
func Equalize(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return out
	}

	var hist [256]int
	for y := range h {
		i0 := gray.PixOffset(b.Min.X, b.Min.Y+y)
		for _, v := range gray.Pix[i0 : i0+w] {
			hist[v]++
		}
	}

	// Cumulative mapping anchored at the darkest occupied bin.
	var cdf [256]int
	sum := 0
	cdfMin := 0
	seenMin := false
	for i, c := range hist {
		sum += c
		cdf[i] = sum
		if !seenMin && c > 0 {
			cdfMin = sum
			seenMin = true
		}
	}

	n := w * h
	denom := n - cdfMin
	var lut [256]uint8
	if denom <= 0 {
		// Single-intensity image maps to itself.
		for i := range lut {
			lut[i] = uint8(i)
		}
	} else {
		for i := range lut {
			v := (cdf[i] - cdfMin) * 255 / denom
			if v < 0 {
				v = 0
			}
			lut[i] = uint8(v)
		}
	}

	for y := range h {
		i0 := gray.PixOffset(b.Min.X, b.Min.Y+y)
		o0 := y * out.Stride
		for x := range w {
			out.Pix[o0+x] = lut[gray.Pix[i0+x]]
		}
	}
	return out
}

// DoGBits computes a difference-of-Gaussians band-pass over the frame and
// binarizes it at the given histogram percentile. The band-pass isolates
// edge-scale structure in near-white scenes where absolute gradients are
// tiny. The returned bits plane is pool-backed and owned by the caller.
func DoGBits(gray *image.Gray, sigmaNarrow, sigmaWide, percentile float64) ([]uint8, int, int) {
	narrow := utils.BlurGray(gray, sigmaNarrow)
	wide := utils.BlurGray(gray, sigmaWide)

	nb := narrow.Bounds()
	w, h := nb.Dx(), nb.Dy()
	n := w * h
	bits := mempool.GetUint8(n)
	if n == 0 {
		return bits, w, h
	}

	// |narrow − wide|, tracking the global max for normalization.
	diff := mempool.GetUint8(n)
	defer mempool.PutUint8(diff)
	maxDiff := 1
	for y := range h {
		ni := narrow.PixOffset(nb.Min.X, nb.Min.Y+y)
		wi := wide.PixOffset(wide.Bounds().Min.X, wide.Bounds().Min.Y+y)
		row := y * w
		for x := range w {
			d := int(narrow.Pix[ni+x]) - int(wide.Pix[wi+x])
			if d < 0 {
				d = -d
			}
			diff[row+x] = uint8(d)
			if d > maxDiff {
				maxDiff = d
			}
		}
	}

	for i := range n {
		bits[i] = uint8(int(diff[i]) * 255 / maxDiff)
	}

	thr := percentileThreshold(bits, n, percentile)
	for i := range n {
		if bits[i] > thr {
			bits[i] = 255
		} else {
			bits[i] = 0
		}
	}
	return bits, w, h
}

// percentileThreshold returns the intensity at the given percentile of
// the plane's histogram.
func percentileThreshold(plane []uint8, n int, percentile float64) uint8 {
	var hist [256]int
	for _, v := range plane[:n] {
		hist[v]++
	}

	target := int(float64(n) * percentile)
	cum := 0
	for i, c := range hist {
		cum += c
		if cum >= target {
			return uint8(i)
		}
	}
	return 255
}
