package detector

import (
	"math"

	"github.com/docshot/docshot/internal/edges"
	"github.com/docshot/docshot/internal/utils"
)

// VerifyEdgeDensity measures how well the edge map supports the quad's
// sides. Each side is sampled at evenly spaced points; a sample counts
// as supported when any set edge pixel lies within the search radius.
// The result is supported/total over all four sides, in [0,1].
// Geometrically plausible quads hallucinated from texture score low
// here and are penalized in the final confidence.
func VerifyEdgeDensity(q utils.Quad, m *edges.Map, cfg Config) float64 {
	n := cfg.SamplesPerSide
	if n <= 0 || m.Width == 0 || m.Height == 0 {
		return 0
	}

	supported, total := 0, 0
	for i := range q {
		a := q[i]
		b := q[(i+1)%4]
		for s := range n {
			t := (float64(s) + 0.5) / float64(n)
			x := int(math.Round(a.X + t*(b.X-a.X)))
			y := int(math.Round(a.Y + t*(b.Y-a.Y)))
			total++
			if supportNear(m, x, y, cfg.SearchRadius) {
				supported++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(supported) / float64(total)
}

// supportNear reports a set pixel within the square window of the given
// radius around (x, y).
func supportNear(m *edges.Map, x, y, radius int) bool {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if m.At(x+dx, y+dy) {
				return true
			}
		}
	}
	return false
}
