package edges

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshot/docshot/internal/mempool"
)

func TestOffsetTable_ZeroTilt(t *testing.T) {
	tab := newOffsetTable(100)

	// Angle index 2 is 0°: pure horizontal and vertical taps.
	half := directionalTaps / 2
	for k := -half; k <= half; k++ {
		assert.EqualValues(t, k, tab.hOff[2][k+half])
		assert.EqualValues(t, k*100, tab.vOff[2][k+half])
	}
}

func TestOffsetTable_Margins(t *testing.T) {
	tab := newOffsetTable(640)

	// ±10° over a ±10 tap reach tilts by at most round(10·tan10°) = 2,
	// so the margin is dominated by the tap span itself.
	assert.Equal(t, directionalTaps/2, tab.marginX)
	assert.Equal(t, directionalTaps/2, tab.marginY)
	assert.Len(t, tab.hOff, len(directionalAngles))
	assert.Len(t, tab.vOff, len(directionalAngles))
}

func TestKernels_Identical(t *testing.T) {
	const w, h = 120, 90
	n := w * h

	rng := rand.New(rand.NewSource(42))
	absGX := make([]uint8, n)
	absGY := make([]uint8, n)
	for i := range n {
		absGX[i] = uint8(rng.Intn(256))
		absGY[i] = uint8(rng.Intn(256))
	}

	tab := newOffsetTable(w)
	ref := make([]uint8, n)
	acc := make([]uint8, n)
	referenceKernel{}.Accumulate(absGY, absGX, ref, w, h, tab)
	acceleratedKernel{}.Accumulate(absGY, absGX, acc, w, h, tab)

	require.Equal(t, ref, acc, "kernel implementations must agree bit for bit")
}

func TestKernels_IdenticalOnStructuredInput(t *testing.T) {
	const w, h = 160, 120
	n := w * h

	// A faint vertical boundary: small |Gx| response along one column.
	absGX := make([]uint8, n)
	absGY := make([]uint8, n)
	for y := range h {
		absGX[y*w+80] = 6
	}

	tab := newOffsetTable(w)
	ref := make([]uint8, n)
	acc := make([]uint8, n)
	referenceKernel{}.Accumulate(absGY, absGX, ref, w, h, tab)
	acceleratedKernel{}.Accumulate(absGY, absGX, acc, w, h, tab)

	assert.Equal(t, ref, acc)
}

func TestDirectional_FaintBoundaryAccumulates(t *testing.T) {
	// Document on background differing by only 4 gray levels. A global
	// threshold on per-pixel gradients would never fire; the 21-tap
	// accumulation along the boundary must.
	const w, h = 200, 150
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		row := img.Pix[y*img.Stride:]
		for x := range w {
			if x >= 50 && x < 150 && y >= 30 && y < 120 {
				row[x] = 244
			} else {
				row[x] = 248
			}
		}
	}

	tab := newOffsetTable(w)
	bits, bw, bh := DirectionalBits(img, referenceKernel{}, tab)
	defer mempool.PutUint8(bits)
	require.Equal(t, w, bw)
	require.Equal(t, h, bh)

	onLeftEdge := 0
	for y := 40; y < 110; y++ {
		for x := 48; x <= 52; x++ {
			if bits[y*w+x] != 0 {
				onLeftEdge++
				break
			}
		}
	}
	assert.Greater(t, onLeftEdge, 50, "left document boundary must accumulate")

	// Flat interior stays silent.
	interior := 0
	for y := 60; y < 90; y++ {
		for x := 90; x < 110; x++ {
			if bits[y*w+x] != 0 {
				interior++
			}
		}
	}
	assert.Zero(t, interior)
}

func TestDirectional_TooSmallFrame(t *testing.T) {
	img := uniformGray(12, 12, 128)
	tab := newOffsetTable(12)

	bits, w, h := DirectionalBits(img, referenceKernel{}, tab)
	defer mempool.PutUint8(bits)

	require.Equal(t, 12, w)
	require.Equal(t, 12, h)
	for _, v := range bits {
		assert.Zero(t, v)
	}
}

func TestSelectKernel(t *testing.T) {
	assert.Equal(t, "reference", selectKernel(KernelReference).Name())
	assert.Equal(t, "accelerated", selectKernel(KernelAccelerated).Name())
	assert.Equal(t, "accelerated", selectKernel(KernelAuto).Name())
}

func BenchmarkKernelReference(b *testing.B) {
	benchmarkKernel(b, referenceKernel{})
}

func BenchmarkKernelAccelerated(b *testing.B) {
	benchmarkKernel(b, acceleratedKernel{})
}

func benchmarkKernel(b *testing.B, k Kernel) {
	const w, h = 640, 480
	n := w * h
	rng := rand.New(rand.NewSource(7))
	absGX := make([]uint8, n)
	absGY := make([]uint8, n)
	for i := range n {
		absGX[i] = uint8(rng.Intn(64))
		absGY[i] = uint8(rng.Intn(64))
	}
	tab := newOffsetTable(w)
	out := make([]uint8, n)

	b.ResetTimer()
	for range b.N {
		k.Accumulate(absGY, absGX, out, w, h, tab)
	}
}
