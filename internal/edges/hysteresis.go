package edges

import (
	"github.com/docshot/docshot/internal/mempool"
)

// Thresholds derives the hysteresis pair from the mean frame intensity.
// The mean stands in for the median of the classic auto-threshold rule;
// results are clamped into fixed bands with low ≤ high − 10 guaranteed.
func Thresholds(meanIntensity float64, cfg Config) (low, high float64) {
	low = cfg.LowMult * meanIntensity
	high = cfg.HighMult * meanIntensity

	low = clamp(low, lowClampMin, lowClampMax)
	high = clamp(high, highClampMin, highClampMax)
	if high < low+minGap {
		high = low + minGap
	}
	return low, high
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Hysteresis binarizes a gradient magnitude plane with double thresholds.
// Pixels at or above high seed edges; pixels in [low, high) survive only
// when 8-connected to a seed chain. The returned bits plane is
// pool-backed and owned by the caller.
func Hysteresis(mag []float32, w, h int, low, high float64) []uint8 {
	n := w * h
	bits := mempool.GetUint8(n)
	if n == 0 {
		return bits
	}

	visited := mempool.GetBool(n)
	defer mempool.PutBool(visited)

	lo := float32(low)
	hi := float32(high)

	queue := make([]int32, 0, 1024)
	for i := range n {
		if mag[i] >= hi {
			bits[i] = 255
			visited[i] = true
			queue = append(queue, int32(i))
		} else {
			bits[i] = 0
		}
	}

	// Grow seeds through weak pixels.
	for len(queue) > 0 {
		idx := int(queue[len(queue)-1])
		queue = queue[:len(queue)-1]

		x := idx % w
		y := idx / w
		for dy := -1; dy <= 1; dy++ {
			ny := y + dy
			if ny < 0 || ny >= h {
				continue
			}
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx := x + dx
				if nx < 0 || nx >= w {
					continue
				}
				ni := ny*w + nx
				if visited[ni] || mag[ni] < lo {
					continue
				}
				visited[ni] = true
				bits[ni] = 255
				queue = append(queue, int32(ni))
			}
		}
	}
	return bits
}
