package buffer

// CircularFloat is a fixed-size window over a stream of float64 samples with
// the ability to iterate over the older and newer halves of the window in
// arrival order. Comparing the two halves is a cheap equilibration check for
// a sampled parameter trace.
type CircularFloat struct {
	buffer    []float64 // actual storage
	pos       int       // Current position in buffer
	BufSize   int       // BufSize is the fixed number of samples maintained in memory
	Count     int       // Count is the number of samples in memory. Will always be <= BufSize
	TotalSeen int64     // TotalSeen is the total number of times Add has been called
}

// NewCircularFloat creates a new circular buffer of totalSize. If totalSize
// is not a multiple of 2, it will be adjusted.
func NewCircularFloat(totalSize int) *CircularFloat {
	// Fix odd number situations
	half := totalSize / 2
	total := half + half

	return &CircularFloat{
		buffer:  make([]float64, total),
		pos:     0,
		BufSize: total,
		Count:   0,
	}
}

// Add appends the given sample to the buffer, overwriting the oldest entry
func (c *CircularFloat) Add(v float64) {
	c.TotalSeen++

	c.buffer[c.pos] = v
	c.pos = (c.pos + 1) % c.BufSize

	c.Count++
	if c.Count > c.BufSize {
		c.Count = c.BufSize // max out
	}
}

// Full is true once Add has been called at least BufSize times
func (c *CircularFloat) Full() bool {
	return c.Count >= c.BufSize
}

// FirstHalf returns the oldest half of the stored samples in arrival order.
// Returns nil until the buffer is Full.
func (c *CircularFloat) FirstHalf() []float64 {
	if !c.Full() {
		return nil
	}
	return c.slice(c.pos, c.BufSize/2)
}

// SecondHalf returns the most recent half of the stored samples in arrival
// order. Returns nil until the buffer is Full.
func (c *CircularFloat) SecondHalf() []float64 {
	if !c.Full() {
		return nil
	}
	half := c.BufSize / 2
	return c.slice((c.pos+half)%c.BufSize, half)
}

func (c *CircularFloat) slice(start int, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = c.buffer[(start+i)%c.BufSize]
	}
	return out
}
