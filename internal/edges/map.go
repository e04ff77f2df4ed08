// Package edges turns a frame into a binary edge map through
// strategy-specific prefilters, Sobel gradients, hysteresis thresholding
// and spanning-line suppression. All per-frame planes are pool-backed.
package edges

import (
	"github.com/docshot/docshot/internal/mempool"
)

// Map is a binary edge bitmap over the working-resolution frame, together
// with the gradient planes it was derived from. Gradient planes are kept
// because later stages verify hypotheses against raw gradients, not the
// binarized bits; strategies with inherently binary output leave them nil.
// The planes come from the shared pools; callers must Release the map.
type Map struct {
	Bits   []uint8 // 0 or 255 per pixel, row-major Width×Height
	Width  int
	Height int

	GX  []float32 // signed horizontal Sobel response
	GY  []float32 // signed vertical Sobel response
	Mag []float32 // gradient magnitude
}

// At reports whether the edge bit at (x, y) is set. Out of bounds is false.
func (m *Map) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x] != 0
}

// CountNonZero returns the number of set edge pixels.
func (m *Map) CountNonZero() int {
	n := 0
	for _, v := range m.Bits {
		if v != 0 {
			n++
		}
	}
	return n
}

// Release returns all planes to the shared pools. The map must not be
// used afterwards.
func (m *Map) Release() {
	mempool.PutUint8(m.Bits)
	mempool.PutFloat32(m.GX)
	mempool.PutFloat32(m.GY)
	mempool.PutFloat32(m.Mag)
	m.Bits = nil
	m.GX = nil
	m.GY = nil
	m.Mag = nil
}
