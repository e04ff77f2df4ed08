package edges

import (
	"image"
	"math"

	"github.com/docshot/docshot/internal/mempool"
)

// Directional-gradient accumulation, the primary low-differentiation
// strategy: |Gy| is summed along near-horizontal lines and |Gx| along
// near-vertical lines at a small set of tilt angles. A long coherent
// boundary accumulates a large directional response even when its
// per-pixel gradient is far below any usable global threshold.

// directionalAngles are the tilt hypotheses in degrees.
var directionalAngles = [...]float64{-10, -5, 0, 5, 10}

const (
	directionalTaps       = 21   // 1D accumulation span per line
	directionalPercentile = 0.90 // binarization percentile
)

// offsetTable holds precomputed linear pixel offsets per tilt angle for
// one row stride, plus the margins keeping every tap in bounds.
type offsetTable struct {
	width   int
	hOff    [][]int32 // per angle: taps along near-horizontal lines
	vOff    [][]int32 // per angle: taps along near-vertical lines
	marginX int
	marginY int
}

func newOffsetTable(width int) *offsetTable {
	half := directionalTaps / 2
	t := &offsetTable{
		width: width,
		hOff:  make([][]int32, len(directionalAngles)),
		vOff:  make([][]int32, len(directionalAngles)),
	}

	maxDX, maxDY := half, half
	for a, deg := range directionalAngles {
		tan := math.Tan(deg * math.Pi / 180)
		h := make([]int32, directionalTaps)
		v := make([]int32, directionalTaps)
		for k := -half; k <= half; k++ {
			tilt := int(math.Round(float64(k) * tan))
			h[k+half] = int32(tilt*width + k)
			v[k+half] = int32(k*width + tilt)
			if abs := absInt(tilt); abs > maxDX {
				maxDX = abs
			}
			if abs := absInt(tilt); abs > maxDY {
				maxDY = abs
			}
		}
		t.hOff[a] = h
		t.vOff[a] = v
	}
	t.marginX = maxDX
	t.marginY = maxDY
	return t
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Kernel is the function contract of the directional accumulation step
// (accumulate, combine, normalize, threshold). Implementations are
// numerically identical and differ only in performance; selection is a
// plain value choice made once at extractor construction.
type Kernel interface {
	Name() string
	Available() bool
	Accumulate(absGY, absGX, out []uint8, w, h int, t *offsetTable)
}

// selectKernel resolves a mode to a concrete kernel.
func selectKernel(mode KernelMode) Kernel {
	switch mode {
	case KernelReference:
		return referenceKernel{}
	case KernelAccelerated:
		return acceleratedKernel{}
	default:
		if (acceleratedKernel{}).Available() {
			return acceleratedKernel{}
		}
		return referenceKernel{}
	}
}

// referenceKernel is the straightforward per-pixel implementation.
type referenceKernel struct{}

func (referenceKernel) Name() string { return "reference" }

func (referenceKernel) Available() bool { return true }

func (referenceKernel) Accumulate(absGY, absGX, out []uint8, w, h int, t *offsetTable) {
	n := w * h
	hResp := mempool.GetInt32(n)
	vResp := mempool.GetInt32(n)
	defer mempool.PutInt32(hResp)
	defer mempool.PutInt32(vResp)
	for i := range n {
		hResp[i], vResp[i] = 0, 0
	}

	// Per-pixel max across angles.
	for a := range directionalAngles {
		hOff := t.hOff[a]
		vOff := t.vOff[a]
		for y := t.marginY; y < h-t.marginY; y++ {
			rowBase := y * w
			for x := t.marginX; x < w-t.marginX; x++ {
				base := rowBase + x
				var sumH, sumV int32
				for k := range directionalTaps {
					sumH += int32(absGY[base+int(hOff[k])])
					sumV += int32(absGX[base+int(vOff[k])])
				}
				if sumH > hResp[base] {
					hResp[base] = sumH
				}
				if sumV > vResp[base] {
					vResp[base] = sumV
				}
			}
		}
	}

	finishDirectional(hResp, vResp, out, n)
}

// acceleratedKernel runs the same accumulation tap-outer: each tap is one
// shifted add over contiguous rows, which keeps the inner loops flat and
// vectorizable. Integer sums are order-independent, so the result is
// bit-identical to the reference kernel.
type acceleratedKernel struct{}

func (acceleratedKernel) Name() string { return "accelerated" }

func (acceleratedKernel) Available() bool { return true }

func (acceleratedKernel) Accumulate(absGY, absGX, out []uint8, w, h int, t *offsetTable) {
	n := w * h
	hResp := mempool.GetInt32(n)
	vResp := mempool.GetInt32(n)
	tmpH := mempool.GetInt32(n)
	tmpV := mempool.GetInt32(n)
	defer mempool.PutInt32(hResp)
	defer mempool.PutInt32(vResp)
	defer mempool.PutInt32(tmpH)
	defer mempool.PutInt32(tmpV)
	for i := range n {
		hResp[i], vResp[i] = 0, 0
	}

	x0, x1 := t.marginX, w-t.marginX
	if x1 <= x0 || h <= 2*t.marginY {
		finishDirectional(hResp, vResp, out, n)
		return
	}

	for a := range directionalAngles {
		for y := t.marginY; y < h-t.marginY; y++ {
			row := y * w
			th := tmpH[row+x0 : row+x1]
			tv := tmpV[row+x0 : row+x1]
			for i := range th {
				th[i], tv[i] = 0, 0
			}
			for k := range directionalTaps {
				hs := absGY[row+x0+int(t.hOff[a][k]):]
				for i := range th {
					th[i] += int32(hs[i])
				}
				vs := absGX[row+x0+int(t.vOff[a][k]):]
				for i := range tv {
					tv[i] += int32(vs[i])
				}
			}
			hr := hResp[row+x0 : row+x1]
			vr := vResp[row+x0 : row+x1]
			for i := range hr {
				if th[i] > hr[i] {
					hr[i] = th[i]
				}
				if tv[i] > vr[i] {
					vr[i] = tv[i]
				}
			}
		}
	}

	finishDirectional(hResp, vResp, out, n)
}

// finishDirectional combines the H and V responses, normalizes by the
// global max and applies the percentile threshold, yielding binary bits.
func finishDirectional(hResp, vResp []int32, out []uint8, n int) {
	globalMax := int32(1)
	for i := range n {
		combined := hResp[i]
		if vResp[i] > combined {
			combined = vResp[i]
		}
		hResp[i] = combined
		if combined > globalMax {
			globalMax = combined
		}
	}

	var hist [256]int
	for i := range n {
		normalized := int(int64(hResp[i]) * 255 / int64(globalMax))
		if normalized < 0 {
			normalized = 0
		} else if normalized > 255 {
			normalized = 255
		}
		out[i] = uint8(normalized)
		hist[normalized]++
	}

	target := int(float64(n) * directionalPercentile)
	cum := 0
	threshold := 255
	for i, c := range hist {
		cum += c
		if cum >= target {
			threshold = i
			break
		}
	}

	for i := range n {
		if int(out[i]) > threshold {
			out[i] = 255
		} else {
			out[i] = 0
		}
	}
}

// DirectionalBits runs the directional-gradient strategy over a prepared
// gray plane. The returned bits plane is pool-backed and caller-owned.
func DirectionalBits(gray *image.Gray, k Kernel, t *offsetTable) ([]uint8, int, int) {
	gx, gy, mag, w, h := Gradients(gray)
	defer mempool.PutFloat32(gx)
	defer mempool.PutFloat32(gy)
	defer mempool.PutFloat32(mag)

	absGX, absGY := AbsPlanes(gx, gy, w*h)
	defer mempool.PutUint8(absGX)
	defer mempool.PutUint8(absGY)

	bits := mempool.GetUint8(w * h)
	if w <= 2*t.marginX || h <= 2*t.marginY {
		for i := range bits {
			bits[i] = 0
		}
		return bits, w, h
	}
	k.Accumulate(absGY, absGX, bits, w, h, t)
	return bits, w, h
}
