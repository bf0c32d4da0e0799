package comm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSolo(t *testing.T) {
	assert := assert.New(t)

	s := Solo{}
	assert.Equal(0, s.Rank())
	assert.Equal(1, s.Size())

	buf := []float64{1.5, -2.0}
	assert.NoError(s.SumFloat64s(buf))
	assert.Equal([]float64{1.5, -2.0}, buf)

	v := int64(12)
	assert.NoError(s.SumInt64(&v))
	assert.Equal(int64(12), v)

	assert.NoError(s.BcastFloat64s(buf, 0))
	assert.Equal([]float64{1.5, -2.0}, buf)
}

func TestWorldSize(t *testing.T) {
	assert := assert.New(t)

	_, err := NewWorld(0)
	assert.Error(err)

	members, err := NewWorld(3)
	assert.NoError(err)
	assert.Len(members, 3)
	for i, m := range members {
		assert.Equal(i, m.Rank())
		assert.Equal(3, m.Size())
	}
}

func TestWorldSum(t *testing.T) {
	assert := assert.New(t)

	const size = 4
	members, err := NewWorld(size)
	assert.NoError(err)

	results := make([][]float64, size)
	ints := make([]int64, size)

	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			buf := []float64{float64(rank), 1.0}
			assert.NoError(members[rank].SumFloat64s(buf))
			results[rank] = buf

			v := int64(rank + 1)
			assert.NoError(members[rank].SumInt64(&v))
			ints[rank] = v
		}(rank)
	}
	wg.Wait()

	for rank := 0; rank < size; rank++ {
		// 0+1+2+3 in the first slot, size in the second
		assert.Equal([]float64{6.0, 4.0}, results[rank])
		assert.Equal(int64(10), ints[rank])
	}
}

func TestWorldBcast(t *testing.T) {
	assert := assert.New(t)

	const size = 3
	members, err := NewWorld(size)
	assert.NoError(err)

	results := make([][]float64, size)

	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			buf := []float64{float64(100 + rank)}
			assert.NoError(members[rank].BcastFloat64s(buf, 1))
			results[rank] = buf
		}(rank)
	}
	wg.Wait()

	for rank := 0; rank < size; rank++ {
		assert.Equal([]float64{101.0}, results[rank])
	}
}

func TestWorldManyRounds(t *testing.T) {
	assert := assert.New(t)

	// back-to-back collectives must not let a fast member lap a slow one
	const size = 3
	const rounds = 200
	members, err := NewWorld(size)
	assert.NoError(err)

	var wg sync.WaitGroup
	for rank := 0; rank < size; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				buf := []float64{1.0}
				if err := members[rank].SumFloat64s(buf); err != nil {
					assert.NoError(err)
					return
				}
				assert.Equal(float64(size), buf[0])
			}
		}(rank)
	}
	wg.Wait()
}

func TestTopologyReplicas(t *testing.T) {
	assert := assert.New(t)

	// solo everything: one replica, index 0
	count, index, err := SoloTopology().Replicas()
	assert.NoError(err)
	assert.Equal(int64(1), count)
	assert.Equal(int64(0), index)

	// two replicas of one process each
	inter, err := NewWorld(2)
	assert.NoError(err)

	counts := make([]int64, 2)
	indexes := make([]int64, 2)
	var wg sync.WaitGroup
	for rank := 0; rank < 2; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			topo := Topology{Intra: Solo{}, Inter: inter[rank]}
			c, i, err := topo.Replicas()
			assert.NoError(err)
			counts[rank] = c
			indexes[rank] = i
		}(rank)
	}
	wg.Wait()

	assert.Equal([]int64{2, 2}, counts)
	assert.Equal([]int64{0, 1}, indexes)
}

func TestTopologyReplicasIntraSpread(t *testing.T) {
	assert := assert.New(t)

	// one replica decomposed over two processes: only the intra root sees
	// the inter group, the sum spreads the answer
	intra, err := NewWorld(2)
	assert.NoError(err)

	counts := make([]int64, 2)
	var wg sync.WaitGroup
	for rank := 0; rank < 2; rank++ {
		wg.Add(1)
		go func(rank int) {
			defer wg.Done()
			topo := Topology{Intra: intra[rank], Inter: Solo{}}
			c, i, err := topo.Replicas()
			assert.NoError(err)
			assert.Equal(int64(0), i)
			counts[rank] = c
		}(rank)
	}
	wg.Wait()

	assert.Equal([]int64{1, 1}, counts)
}
