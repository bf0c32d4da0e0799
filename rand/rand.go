package rand

import (
	"time"

	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"

	"github.com/cdmartin/metainf/comm"
)

// A Generator is an explicitly owned PRNG based on the Mersenne twister. Each
// bias instance holds exactly one; nothing here touches process-global seed
// state.
type Generator struct {
	mt *mt19937.MT19937
}

// NewGenerator returns a generator seeded once with the given value
func NewGenerator(seed int64) (*Generator, error) {
	g := &Generator{
		mt: mt19937.New(),
	}
	g.mt.Seed(seed)
	return g, nil
}

// NewReplicaGenerator builds the generator shared by every process of one
// replica: the intra-group root derives entropy+replica, the others
// contribute zero, and the summed value seeds all members identically. Pass
// entropy 0 to seed from the wall clock the way the replica representative
// traditionally does.
func NewReplicaGenerator(entropy int64, replica int64, intra comm.Communicator) (*Generator, error) {
	if entropy == 0 {
		entropy = time.Now().Unix()
	}

	var seed int64
	if intra.Rank() == 0 {
		seed = entropy + replica
	}
	if err := intra.SumInt64(&seed); err != nil {
		return nil, errors.Wrap(err, "Could not agree on a seed within the replica group")
	}

	return NewGenerator(seed)
}

// Int63 returns a non-negative 63-bit pseudo-random integer
func (g *Generator) Int63() int64 {
	return g.mt.Int63()
}

// Float64 returns a uniform deviate in [0, 1). Same construction as math/rand:
// 53 random bits over 2^53.
func (g *Generator) Float64() float64 {
	return float64(g.Int63()>>10) / (1 << 53)
}
