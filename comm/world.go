package comm

import (
	"sync"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// World is an in-process group: every member is a goroutine and collectives
// are rendezvous points. This is enough to run a full multi-replica bias in
// one process (demo runs, tests) without an MPI transport behind it.
type World struct {
	size int

	mu       sync.Mutex
	cond     *sync.Cond
	arrived  int
	departed int
	round    uint64
	roundErr error
	acc      []float64
	accInt   int64
}

// NewWorld creates a group of the given size and returns one Communicator per
// member. Each returned member must be driven by its own goroutine.
func NewWorld(size int) ([]Communicator, error) {
	if size < 1 {
		return nil, errors.Errorf("World size must be at least 1: got %d", size)
	}

	w := &World{size: size}
	w.cond = sync.NewCond(&w.mu)

	members := make([]Communicator, size)
	for i := range members {
		members[i] = &member{world: w, rank: i}
	}
	return members, nil
}

// exchange runs one collective round. contribute merges a member's data into
// the shared accumulator (first reports whether this member opened the
// round); collect copies the settled result back out. The final barrier keeps
// a fast member from opening the next round while a slow one is still
// reading this one.
func (w *World) exchange(contribute func(first bool) error, collect func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for w.departed != 0 {
		w.cond.Wait()
	}

	first := w.arrived == 0
	if first {
		w.roundErr = nil
	}
	if err := contribute(first); err != nil && w.roundErr == nil {
		w.roundErr = err
	}

	w.arrived++
	round := w.round
	if w.arrived == w.size {
		w.arrived = 0
		w.departed = w.size
		w.round++
		w.cond.Broadcast()
	} else {
		for round == w.round {
			w.cond.Wait()
		}
	}

	err := w.roundErr
	if err == nil {
		collect()
	}

	w.departed--
	if w.departed == 0 {
		w.cond.Broadcast()
	}
	return err
}

type member struct {
	world *World
	rank  int
}

func (m *member) Rank() int { return m.rank }

func (m *member) Size() int { return m.world.size }

func (m *member) SumFloat64s(buf []float64) error {
	w := m.world
	return w.exchange(
		func(first bool) error {
			if first {
				w.acc = append(w.acc[:0], buf...)
				return nil
			}
			if len(buf) != len(w.acc) {
				return errors.Errorf("Sum length mismatch in group: %d != %d", len(buf), len(w.acc))
			}
			floats.Add(w.acc, buf)
			return nil
		},
		func() {
			copy(buf, w.acc)
		},
	)
}

func (m *member) SumInt64(v *int64) error {
	w := m.world
	return w.exchange(
		func(first bool) error {
			if first {
				w.accInt = 0
			}
			w.accInt += *v
			return nil
		},
		func() {
			*v = w.accInt
		},
	)
}

func (m *member) BcastFloat64s(buf []float64, root int) error {
	w := m.world
	return w.exchange(
		func(first bool) error {
			if root < 0 || root >= w.size {
				return errors.Errorf("Bcast root %d out of range for group size %d", root, w.size)
			}
			if m.rank == root {
				w.acc = append(w.acc[:0], buf...)
			}
			return nil
		},
		func() {
			copy(buf, w.acc)
		},
	)
}
