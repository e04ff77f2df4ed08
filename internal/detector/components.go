// Package detector extracts document quad candidates from a binary edge
// map and ranks them by geometric plausibility and edge support.
package detector

import (
	"github.com/docshot/docshot/internal/edges"
	"github.com/docshot/docshot/internal/mempool"
)

// component is one 8-connected region of set edge pixels.
type component struct {
	id    int
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

func (c component) bboxArea() float64 {
	return float64(c.maxX-c.minX+1) * float64(c.maxY-c.minY+1)
}

// findComponents labels the 8-connected components of the edge map.
// The labels plane is pool-backed; the caller must return it with
// mempool.PutInt32. Label values match component ids, starting at 1.
func findComponents(m *edges.Map) ([]component, []int32) {
	w, h := m.Width, m.Height
	n := w * h
	labels := mempool.GetInt32(n)
	for i := range n {
		labels[i] = 0
	}
	if n == 0 {
		return nil, labels
	}

	var comps []component
	queue := make([]int32, 0, 1024)
	next := 1

	for y := range h {
		row := y * w
		for x := range w {
			idx := row + x
			if m.Bits[idx] == 0 || labels[idx] != 0 {
				continue
			}
			comps = append(comps, componentBFS(m, labels, queue, x, y, next))
			next++
		}
	}
	return comps, labels
}

// componentBFS floods one component from a seed pixel, collecting its
// pixel count and bounding box.
func componentBFS(m *edges.Map, labels []int32, queue []int32, startX, startY, id int) component {
	w, h := m.Width, m.Height
	st := component{id: id, minX: startX, minY: startY, maxX: startX, maxY: startY}

	start := int32(startY*w + startX)
	labels[start] = int32(id)
	queue = append(queue[:0], start)

	for len(queue) > 0 {
		idx := int(queue[len(queue)-1])
		queue = queue[:len(queue)-1]

		x, y := idx%w, idx/w
		st.count++
		if x < st.minX {
			st.minX = x
		}
		if y < st.minY {
			st.minY = y
		}
		if x > st.maxX {
			st.maxX = x
		}
		if y > st.maxY {
			st.maxY = y
		}

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
				if m.Bits[ni] == 0 || labels[ni] != 0 {
					continue
				}
				labels[ni] = int32(id)
				queue = append(queue, int32(ni))
			}
		}
	}
	return st
}
