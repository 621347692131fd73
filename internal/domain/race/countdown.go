package race

import (
	"strconv"
	"time"
)

// countdown is the resumable start sequence: N..1, then GO. Each call to
// advance moves at most one step, so every step is observed by a tick.
type countdown struct {
	steps int
	step  time.Duration
	count int
	acc   time.Duration
}

func newCountdown(steps int, step time.Duration) *countdown {
	return &countdown{steps: steps, step: step, count: steps}
}

// label is the text for the current step.
func (c *countdown) label() string {
	if c.count <= 0 {
		return "GO"
	}
	return strconv.Itoa(c.count)
}

// advance accumulates dt and reports whether a step boundary was crossed.
// done is true once the sequence reached GO.
func (c *countdown) advance(dt time.Duration) (stepped, done bool) {
	c.acc += dt
	if c.acc < c.step {
		return false, false
	}
	c.acc -= c.step
	c.count--
	return true, c.count <= 0
}
