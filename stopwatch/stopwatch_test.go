package stopwatch

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartStop(t *testing.T) {
	assert := assert.New(t)

	sw := New()
	assert.Equal(0, sw.Cycles("work"))

	for i := 0; i < 3; i++ {
		h := sw.Start("work")
		time.Sleep(time.Millisecond)
		h.Stop()
	}

	assert.Equal(3, sw.Cycles("work"))
	assert.True(sw.Total("work") >= 3*time.Millisecond)
}

func TestScopedHandle(t *testing.T) {
	assert := assert.New(t)

	sw := New()
	func() {
		defer sw.Start("scoped").Stop()
		time.Sleep(time.Millisecond)
	}()

	assert.Equal(1, sw.Cycles("scoped"))
	assert.True(sw.Total("scoped") > 0)
}

func TestPauseResume(t *testing.T) {
	assert := assert.New(t)

	sw := New()
	sw.Start("span")
	time.Sleep(time.Millisecond)
	sw.Pause("span")

	paused := sw.get("span").partial
	time.Sleep(2 * time.Millisecond)

	sw.Start("span")
	time.Sleep(time.Millisecond)
	sw.Stop("span")

	// one cycle, and the pause gap is not counted as a whole
	assert.Equal(1, sw.Cycles("span"))
	assert.True(sw.Total("span") >= paused)
	assert.True(sw.Total("span") >= 2*time.Millisecond)
}

func TestStopWithoutStart(t *testing.T) {
	assert := assert.New(t)

	sw := New()
	sw.Stop("never")
	assert.Equal(0, sw.Cycles("never"))
}

func TestString(t *testing.T) {
	assert := assert.New(t)

	sw := New()
	sw.Start("").Stop()
	sw.Start("inner").Stop()

	report := sw.String()
	assert.True(strings.Contains(report, "(total)"))
	assert.True(strings.Contains(report, "inner"))
}
