package rectsolver

import (
	"github.com/docshot/docshot/internal/lines"
)

// solveIntersect is the cheap tier. With at least two clusters per
// orientation every (top, bottom) x (left, right) pairing is intersected
// into a candidate quad; the admitted candidate with the best combined
// score wins. Cluster length doubles as the support term, normalized by
// the frame half-perimeter so four full-length sides approach 1.
func (s *Solver) solveIntersect(horiz, vert []lines.Cluster, w, h int) (Solution, bool) {
	perimeter := 2 * float64(w+h)
	var best Solution
	found := false
	for i := 0; i < len(horiz)-1; i++ {
		for j := i + 1; j < len(horiz); j++ {
			for k := 0; k < len(vert)-1; k++ {
				for l := k + 1; l < len(vert); l++ {
					q, ok := quadFromLines(
						horiz[i].Line(w, h), horiz[j].Line(w, h),
						vert[k].Line(w, h), vert[l].Line(w, h),
					)
					if !ok || !s.admit(q, w, h) {
						continue
					}
					support := (horiz[i].TotalLength + horiz[j].TotalLength +
						vert[k].TotalLength + vert[l].TotalLength) / perimeter
					score := s.quadScore(q, w, h, support)
					conf := s.cfg.Tier1Base + s.cfg.Tier1Span*score
					if !found || conf > best.Confidence {
						best = Solution{Corners: q, Confidence: conf, Tier: 1, Clusters: 4}
						found = true
					}
				}
			}
		}
	}
	return best, found
}
