package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshot/docshot/internal/mempool"
	"github.com/docshot/docshot/internal/utils"
)

func TestFindComponents_SeparateRegions(t *testing.T) {
	m := emptyMap(40, 30)
	// Two blobs and a diagonal chain.
	m.Bits[5*40+5] = 255
	m.Bits[5*40+6] = 255
	m.Bits[6*40+5] = 255

	m.Bits[20*40+30] = 255

	for i := range 5 {
		m.Bits[(10+i)*40+(15+i)] = 255
	}

	comps, labels := findComponents(m)
	defer mempool.PutInt32(labels)

	require.Len(t, comps, 3)

	var counts []int
	for _, c := range comps {
		counts = append(counts, c.count)
	}
	assert.ElementsMatch(t, []int{3, 1, 5}, counts)
}

func TestFindComponents_DiagonalConnectivity(t *testing.T) {
	m := emptyMap(20, 20)
	m.Bits[5*20+5] = 255
	m.Bits[6*20+6] = 255
	m.Bits[7*20+7] = 255

	comps, labels := findComponents(m)
	defer mempool.PutInt32(labels)

	require.Len(t, comps, 1, "diagonal pixels form one chain")
	assert.Equal(t, 3, comps[0].count)
	assert.Equal(t, 5, comps[0].minX)
	assert.Equal(t, 7, comps[0].maxY)
}

func TestFindComponents_LabelsMatchIDs(t *testing.T) {
	m := emptyMap(30, 20)
	m.Bits[3*30+3] = 255
	m.Bits[15*30+25] = 255

	comps, labels := findComponents(m)
	defer mempool.PutInt32(labels)

	require.Len(t, comps, 2)
	assert.EqualValues(t, comps[0].id, labels[3*30+3])
	assert.EqualValues(t, comps[1].id, labels[15*30+25])
	assert.NotEqual(t, comps[0].id, comps[1].id)
}

func TestTraceContour_SquareBlock(t *testing.T) {
	m := emptyMap(20, 20)
	for y := 5; y <= 10; y++ {
		for x := 5; x <= 12; x++ {
			m.Bits[y*20+x] = 255
		}
	}

	comps, labels := findComponents(m)
	defer mempool.PutInt32(labels)
	require.Len(t, comps, 1)

	poly := traceContour(labels, 20, 20, comps[0])
	require.GreaterOrEqual(t, len(poly), 4)

	// The filled block's outline encloses its full extent.
	assert.InDelta(t, 7*5, utils.PolygonArea(poly), 1.0)

	box := utils.BoundingBox(poly)
	assert.Equal(t, 5.0, box.MinX)
	assert.Equal(t, 12.0, box.MaxX)
	assert.Equal(t, 5.0, box.MinY)
	assert.Equal(t, 10.0, box.MaxY)
}

func TestTraceContour_SinglePixel(t *testing.T) {
	m := emptyMap(10, 10)
	m.Bits[4*10+4] = 255

	comps, labels := findComponents(m)
	defer mempool.PutInt32(labels)
	require.Len(t, comps, 1)

	poly := traceContour(labels, 10, 10, comps[0])
	assert.Len(t, poly, 1)
	assert.Zero(t, utils.PolygonArea(poly))
}
