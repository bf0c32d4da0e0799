package stopwatch

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// A Stopwatch is a container of named timers. Start returns a scoped Handle
// whose Stop records the lap, so a timed section cannot forget to close its
// own timer on early return:
//
//	defer sw.Start("mc").Stop()
//
// The empty name is the conventional whole-run timer. A Stopwatch is not safe
// for concurrent use; give each goroutine its own.
type Stopwatch struct {
	watches map[string]*watch
}

type watch struct {
	running   bool
	paused    bool
	lastStart time.Time
	partial   time.Duration // accumulated across pauses within one cycle
	total     time.Duration
	lapMin    time.Duration
	lapMax    time.Duration
	cycles    int
}

// A Handle closes over one running named timer
type Handle struct {
	sw   *Stopwatch
	name string
}

// New creates an empty Stopwatch
func New() *Stopwatch {
	return &Stopwatch{watches: map[string]*watch{}}
}

func (s *Stopwatch) get(name string) *watch {
	w, ok := s.watches[name]
	if !ok {
		w = &watch{}
		s.watches[name] = w
	}
	return w
}

// Start begins (or resumes, after Pause) the named timer
func (s *Stopwatch) Start(name string) *Handle {
	w := s.get(name)
	if !w.running {
		w.running = true
		w.paused = false
		w.lastStart = time.Now()
	}
	return &Handle{sw: s, name: name}
}

// Pause suspends the named timer without closing the current cycle
func (s *Stopwatch) Pause(name string) {
	w := s.get(name)
	if !w.running {
		return
	}
	w.partial += time.Since(w.lastStart)
	w.running = false
	w.paused = true
}

// Stop closes the current cycle of the named timer and records the lap
func (s *Stopwatch) Stop(name string) {
	w := s.get(name)
	if w.running {
		w.partial += time.Since(w.lastStart)
		w.running = false
	} else if !w.paused {
		return
	}

	lap := w.partial
	w.partial = 0
	w.paused = false
	w.total += lap
	w.cycles++
	if w.cycles == 1 || lap < w.lapMin {
		w.lapMin = lap
	}
	if lap > w.lapMax {
		w.lapMax = lap
	}
}

// Stop closes the timer this handle was started on
func (h *Handle) Stop() {
	h.sw.Stop(h.name)
}

// Total returns the accumulated time across all closed cycles of name
func (s *Stopwatch) Total(name string) time.Duration {
	return s.get(name).total
}

// Cycles returns the number of closed cycles of name
func (s *Stopwatch) Cycles(name string) int {
	return s.get(name).cycles
}

// String reports every timer with cycle count, total, average, min, and max
func (s *Stopwatch) String() string {
	names := make([]string, 0, len(s.watches))
	for name := range s.watches {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		w := s.watches[name]
		if w.cycles < 1 {
			continue
		}
		label := name
		if label == "" {
			label = "(total)"
		}
		avg := w.total / time.Duration(w.cycles)
		fmt.Fprintf(&b, "%-24s cycles %6d  total %12v  avg %12v  min %12v  max %12v\n",
			label, w.cycles, w.total, avg, w.lapMin, w.lapMax)
	}
	return b.String()
}
