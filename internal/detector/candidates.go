package detector

import (
	"github.com/docshot/docshot/internal/edges"
	"github.com/docshot/docshot/internal/mempool"
	"github.com/docshot/docshot/internal/utils"
)

// Candidate is a convex quadrilateral extracted from one edge contour,
// in working-resolution coordinates.
type Candidate struct {
	Corners   utils.Quad
	ContourID int
	Area      float64
}

// PartialEvidence reports a large non-quad contour reaching at least two
// frame edges, the signature of a document extending past the frame.
type PartialEvidence struct {
	Present      bool
	TouchedEdges int
	AreaFrac     float64
}

// FindCandidates traces the edge map's components into polygons and
// returns those that approximate to convex quadrilaterals, plus
// partial-document evidence from the ones that do not.
func FindCandidates(m *edges.Map, cfg Config) ([]Candidate, PartialEvidence) {
	w, h := m.Width, m.Height
	imgArea := float64(w) * float64(h)
	if imgArea == 0 {
		return nil, PartialEvidence{}
	}

	comps, labels := findComponents(m)
	defer mempool.PutInt32(labels)

	minArea := cfg.MinAreaFrac * imgArea
	partialArea := cfg.PartialAreaFrac * imgArea

	var cands []Candidate
	var partial PartialEvidence

	for _, c := range comps {
		// The bounding box bounds any polygon the contour can enclose.
		if c.bboxArea() < minArea {
			continue
		}

		contour := traceContour(labels, w, h, c)
		if len(contour) < 3 {
			continue
		}
		area := utils.PolygonArea(contour)

		eps := cfg.EpsilonFrac * utils.PolygonPerimeter(contour)
		approx := utils.SimplifyClosed(contour, eps)

		if quad, ok := quadFromPolygon(approx); ok && area >= minArea {
			cands = append(cands, Candidate{
				Corners:   quad,
				ContourID: c.id,
				Area:      area,
			})
			continue
		}

		// Non-quad contours can still witness a document that extends
		// past the frame. Extent is measured by the bounding box: the
		// visible boundary of a cropped document is a thin open chain
		// whose enclosed area is meaningless.
		if c.bboxArea() >= partialArea {
			if touched := utils.TouchedFrameEdges(contour, w, h, cfg.EdgeTouchTol); touched >= 2 {
				partial.Present = true
				if touched > partial.TouchedEdges {
					partial.TouchedEdges = touched
				}
				if f := c.bboxArea() / imgArea; f > partial.AreaFrac {
					partial.AreaFrac = f
				}
			}
		}
	}
	return cands, partial
}

// quadFromPolygon accepts exactly-four-vertex convex polygons.
func quadFromPolygon(poly []utils.Point) (utils.Quad, bool) {
	if len(poly) != 4 {
		return utils.Quad{}, false
	}
	q := utils.OrderQuad([4]utils.Point{poly[0], poly[1], poly[2], poly[3]})
	if q.IsDegenerate() || !q.IsConvex() {
		return utils.Quad{}, false
	}
	return q, true
}
