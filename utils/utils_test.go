package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Bucket sizes
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				maxK := pm.GetBucketDimension(np)
				histo[maxK]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		// More workers than items collapses to one item per worker
		assert.Equal(t, map[int]int{1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 5000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Inverted bucket lookup
		for maxIndex := 10; maxIndex < 500; maxIndex++ {
			pm := NewPartitionMap(5, maxIndex)
			prev := 0
			for k := 0; k < maxIndex; k++ {
				bn, min, max := pm.GetBucket(k)
				mmin, mmax := pm.GetBucketRange(bn)
				assert.True(t, k >= min && k < max && min == mmin && max == mmax)
				// Buckets are contiguous and ascending
				assert.True(t, bn == prev || bn == prev+1)
				prev = bn
			}
			bn, _, _ := pm.GetBucket(maxIndex)
			assert.Equal(t, -1, bn)
			bn, _, _ = pm.GetBucket(-1)
			assert.Equal(t, -1, bn)
		}
	}
	{ // Degenerate degree
		pm := NewPartitionMap(0, 7)
		assert.Equal(t, 1, pm.ParallelDegree)
		assert.Equal(t, [2]int{0, 7}, pm.Partitions[0])
	}
}

func TestNewTriMesh(t *testing.T) {
	gm := NewTriMesh([][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		[][3]int{{0, 1, 2}, {0, 2, 3}})
	assert.Equal(t, []float32{0, 0, 1, 0, 1, 1, 0, 1}, gm.XY)
	assert.Equal(t, [][3]int64{{0, 1, 2}, {0, 2, 3}}, gm.TriVerts)
}

func TestIsNan(t *testing.T) {
	assert.False(t, IsNan([]float64{1, 2}))
	assert.True(t, IsNan([]float64{1, math.NaN()}))
	assert.NotEmpty(t, GetMemUsage())
}

func TestSquareBoundingBox(t *testing.T) {
	x0, x1, y0, y1 := GetSquareBoundingBox(0, 2, 0, 1)
	assert.Equal(t, [4]float32{0, 2, -0.5, 1.5}, [4]float32{x0, x1, y0, y1})
}
