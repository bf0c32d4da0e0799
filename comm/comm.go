package comm

// A Communicator provides blocking collective operations over one fixed group
// of participants. Every member of the group must call the same collectives
// in the same order: a missing participant blocks the rest of the group
// forever, which matches the all-or-nothing step execution of the hosts this
// library is written for. There is no cancellation or timeout.
type Communicator interface {
	// Rank is this member's index in the group (0 to Size-1)
	Rank() int

	// Size is the number of members in the group
	Size() int

	// SumFloat64s replaces buf on every member with the element-wise sum of
	// all members' buffers. Every member must pass the same length.
	SumFloat64s(buf []float64) error

	// SumInt64 replaces v on every member with the sum of all members' values
	SumInt64(v *int64) error

	// BcastFloat64s replaces buf on every member with root's buffer
	BcastFloat64s(buf []float64, root int) error
}

// Solo is the one-member group. All collectives are no-ops, so code written
// against two nested groups runs unchanged in a single process.
type Solo struct{}

// Rank is always 0 for a Solo group
func (Solo) Rank() int { return 0 }

// Size is always 1 for a Solo group
func (Solo) Size() int { return 1 }

// SumFloat64s leaves buf unchanged
func (Solo) SumFloat64s([]float64) error { return nil }

// SumInt64 leaves v unchanged
func (Solo) SumInt64(*int64) error { return nil }

// BcastFloat64s leaves buf unchanged
func (Solo) BcastFloat64s([]float64, int) error { return nil }

// Topology carries the two nested groups a bias instance communicates over:
// Intra decomposes one simulation copy across its processes, Inter connects
// one representative process (Intra rank 0) per replica. On processes with
// Intra rank != 0 the Inter group is never consulted and may be Solo.
type Topology struct {
	Intra Communicator
	Inter Communicator
}

// SoloTopology is the topology of a lone process: one replica, no
// decomposition.
func SoloTopology() Topology {
	return Topology{Intra: Solo{}, Inter: Solo{}}
}

// Replicas returns the replica count and this process's replica index. Only
// the Intra root reads the Inter group; the values are then summed across the
// Intra group so every member agrees.
func (t Topology) Replicas() (count int64, index int64, err error) {
	if t.Intra.Rank() == 0 {
		count = int64(t.Inter.Size())
		index = int64(t.Inter.Rank())
	}
	if err = t.Intra.SumInt64(&count); err != nil {
		return 0, 0, err
	}
	if err = t.Intra.SumInt64(&index); err != nil {
		return 0, 0, err
	}
	return count, index, nil
}
