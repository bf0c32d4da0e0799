package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircularFloat(t *testing.T) {
	assert := assert.New(t)

	c := NewCircularFloat(6)
	assert.Equal(6, c.BufSize)
	assert.Equal(0, c.Count)

	c.Add(1)
	c.Add(2)
	c.Add(3)
	c.Add(4)
	c.Add(5)
	assert.Equal(5, c.Count)
	assert.False(c.Full())
	assert.Nil(c.FirstHalf())
	assert.Nil(c.SecondHalf())

	c.Add(6)
	assert.True(c.Full())
	assert.Equal([]float64{1, 2, 3}, c.FirstHalf())
	assert.Equal([]float64{4, 5, 6}, c.SecondHalf())

	// 1 2 3 4 5 6 add 8 add 8 => oldest half 3,4,5 newest 6,8,8
	c.Add(8)
	c.Add(8)
	assert.Equal([]float64{3, 4, 5}, c.FirstHalf())
	assert.Equal([]float64{6, 8, 8}, c.SecondHalf())
	assert.Equal(int64(8), c.TotalSeen)
}

func TestCircularFloatOddSize(t *testing.T) {
	assert := assert.New(t)

	c := NewCircularFloat(7)
	assert.Equal(6, c.BufSize)
}
