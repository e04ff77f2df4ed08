package lines

import (
	"math"
	"sort"
)

// Cluster is a merged set of near-collinear segments of one orientation.
// Angle and Offset are length-weighted running means; Offset is the
// perpendicular distance of the cluster line from the image center, so
// clusters from different frame sizes never compare equal by accident.
type Cluster struct {
	Orientation Orientation
	Angle       float64 // direction in degrees, [0, 180)
	Offset      float64 // signed perpendicular offset from the image center, px
	TotalLength float64
	Segments    int
}

// Line returns the cluster as a homogeneous line in image coordinates.
func (c Cluster) Line(w, h int) Line {
	nx, ny := normalFor(c.Angle, c.Orientation)
	cx, cy := float64(w)/2, float64(h)/2
	// n·(p − center) = offset
	return Line{A: nx, B: ny, C: -(c.Offset + nx*cx + ny*cy)}
}

// normalFor returns the unit normal of a line with the given direction
// angle, canonicalized per orientation (pointing down for horizontal
// lines, right for vertical ones). Without the canonicalization the
// offset sign would flip across the 0°/180° wraparound and collinear
// segments could never merge.
func normalFor(angleDeg float64, o Orientation) (nx, ny float64) {
	rad := angleDeg * math.Pi / 180
	nx, ny = -math.Sin(rad), math.Cos(rad)
	if (o == Horizontal && ny < 0) || (o == Vertical && nx < 0) {
		nx, ny = -nx, -ny
	}
	return nx, ny
}

// perpOffset is the signed distance of the segment's midpoint from the
// image center, measured along the segment's canonical normal.
func perpOffset(s Segment, w, h int) float64 {
	nx, ny := normalFor(s.Angle, s.Orientation())
	m := s.Midpoint()
	return nx*(m.X-float64(w)/2) + ny*(m.Y-float64(h)/2)
}

// ClusterSegments greedily merges segments into per-orientation clusters.
// Segments are taken longest first so the strongest evidence anchors each
// cluster; a segment joins the first cluster within the angle and offset
// tolerances, else starts its own. Clusters below MinClusterLen of the
// image diagonal are dropped and at most MaxClusters per orientation are
// kept, longest first.
func ClusterSegments(segs []Segment, w, h int, cfg Config) []Cluster {
	ordered := make([]Segment, len(segs))
	copy(ordered, segs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Length > ordered[j].Length })

	var clusters []Cluster
	for _, s := range ordered {
		off := perpOffset(s, w, h)
		merged := false
		for i := range clusters {
			c := &clusters[i]
			if c.Orientation != s.Orientation() {
				continue
			}
			if angleDiff(c.Angle, s.Angle) > cfg.AngleTol {
				continue
			}
			if math.Abs(c.Offset-off) > cfg.OffsetTol {
				continue
			}
			mergeSegment(c, s, off)
			merged = true
			break
		}
		if !merged {
			clusters = append(clusters, Cluster{
				Orientation: s.Orientation(),
				Angle:       s.Angle,
				Offset:      off,
				TotalLength: s.Length,
				Segments:    1,
			})
		}
	}

	minLen := cfg.MinClusterLen * math.Hypot(float64(w), float64(h))
	kept := clusters[:0]
	for _, c := range clusters {
		if c.TotalLength >= minLen {
			kept = append(kept, c)
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].TotalLength > kept[j].TotalLength })
	return capPerOrientation(kept, cfg.MaxClusters)
}

// mergeSegment folds a segment into the cluster with length weighting.
func mergeSegment(c *Cluster, s Segment, off float64) {
	total := c.TotalLength + s.Length
	wOld := c.TotalLength / total
	wNew := s.Length / total

	c.Angle = weightedAngle(c.Angle, s.Angle, wOld, wNew)
	c.Offset = wOld*c.Offset + wNew*off
	c.TotalLength = total
	c.Segments++
}

// weightedAngle blends two axial angles (degrees mod 180) with the given
// weights, using the doubled-angle representation.
func weightedAngle(a, b, wa, wb float64) float64 {
	ar := 2 * a * math.Pi / 180
	br := 2 * b * math.Pi / 180
	x := wa*math.Cos(ar) + wb*math.Cos(br)
	y := wa*math.Sin(ar) + wb*math.Sin(br)
	t := math.Atan2(y, x) / 2 * 180 / math.Pi
	if t < 0 {
		t += 180
	}
	return t
}

// capPerOrientation keeps the first limit clusters of each orientation,
// preserving order.
func capPerOrientation(cs []Cluster, limit int) []Cluster {
	counts := map[Orientation]int{}
	out := cs[:0]
	for _, c := range cs {
		if counts[c.Orientation] >= limit {
			continue
		}
		counts[c.Orientation]++
		out = append(out, c)
	}
	return out
}

// SplitByOrientation partitions clusters into horizontal and vertical
// groups, preserving order.
func SplitByOrientation(cs []Cluster) (horizontal, vertical []Cluster) {
	for _, c := range cs {
		switch c.Orientation {
		case Horizontal:
			horizontal = append(horizontal, c)
		case Vertical:
			vertical = append(vertical, c)
		}
	}
	return horizontal, vertical
}
