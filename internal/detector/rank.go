package detector

import (
	"math"
	"sort"

	"github.com/docshot/docshot/internal/aspect"
	"github.com/docshot/docshot/internal/utils"
)

// RankedQuad is a candidate with its composite score and the components
// that produced it.
type RankedQuad struct {
	Corners     utils.Quad
	ContourID   int
	Score       float64
	AreaScore   float64
	AngleScore  float64
	AspectScore float64
}

// Rank scores every candidate and returns the winner with a separation
// margin. The margin is 1 for a single candidate, (best−second)/best
// otherwise; small margins mark ambiguous scenes and later shrink the
// confidence. ok is false when no candidate survives scoring.
func Rank(cands []Candidate, imgArea float64, cfg Config) (best RankedQuad, margin float64, ok bool) {
	if len(cands) == 0 || imgArea <= 0 {
		return RankedQuad{}, 0, false
	}

	scored := make([]RankedQuad, 0, len(cands))
	for _, c := range cands {
		if c.Corners.IsDegenerate() || !c.Corners.IsConvex() {
			continue
		}
		scored = append(scored, scoreQuad(c, imgArea, cfg))
	}
	if len(scored) == 0 {
		return RankedQuad{}, 0, false
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	best = scored[0]
	margin = 1.0
	if len(scored) > 1 && best.Score > 0 {
		margin = (best.Score - scored[1].Score) / best.Score
	}
	return best, margin, true
}

// scoreQuad combines area coverage, angle regularity and canonical
// aspect similarity into one score in [0,1].
func scoreQuad(c Candidate, imgArea float64, cfg Config) RankedQuad {
	q := c.Corners

	areaScore := q.Area() / (imgArea * cfg.AreaClamp)
	if areaScore > 1 {
		areaScore = 1
	}

	var dev float64
	for _, a := range q.InteriorAngles() {
		dev += math.Abs(90 - a)
	}
	angleScore := 1 - dev/360
	if angleScore < 0 {
		angleScore = 0
	}

	aspectScore := canonicalSimilarity(sideRatio(q), cfg)

	wSum := cfg.AreaWeight + cfg.AngleWeight + cfg.AspectWeight
	score := (cfg.AreaWeight*areaScore + cfg.AngleWeight*angleScore + cfg.AspectWeight*aspectScore) / wSum

	return RankedQuad{
		Corners:     q,
		ContourID:   c.ContourID,
		Score:       score,
		AreaScore:   areaScore,
		AngleScore:  angleScore,
		AspectScore: aspectScore,
	}
}

// sideRatio returns the short/long ratio of the quad's mean opposite
// side lengths, always in (0,1].
func sideRatio(q utils.Quad) float64 {
	s := q.Sides()
	width := (s[0] + s[2]) / 2
	height := (s[1] + s[3]) / 2
	if width <= 0 || height <= 0 {
		return 0
	}
	if width < height {
		return width / height
	}
	return height / width
}

// canonicalSimilarity is the Gaussian similarity to the nearest known
// document format.
func canonicalSimilarity(ratio float64, cfg Config) float64 {
	if ratio <= 0 {
		return 0
	}
	best := 0.0
	for _, c := range cfg.CanonicalTable {
		d := ratio - c.Ratio
		s := math.Exp(-(d * d) / (2 * cfg.AspectSigma * cfg.AspectSigma))
		if s > best {
			best = s
		}
	}
	return best
}

// NearestCanonical returns the canonical format closest to the ratio.
func NearestCanonical(ratio float64, table []aspect.Format) (aspect.Format, float64) {
	bestDist := math.Inf(1)
	var bestC aspect.Format
	for _, c := range table {
		if d := math.Abs(ratio - c.Ratio); d < bestDist {
			bestDist = d
			bestC = c
		}
	}
	return bestC, bestDist
}
