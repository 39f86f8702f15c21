package engine

import (
	"math"
	"sync/atomic"

	"lull/audio"
)

// Session-boundary tick: short, mid pitch, fast exponential decay.
const (
	chimeFreq   = 900.0
	chimeVolume = 0.5
	chimeDecay  = 40.0
	chimeDur    = 0.2 // seconds
)

// chimeNode plays one decaying sine tick and then ends on its own; the
// mixer reaps it after the envelope runs out. It never belongs to a
// channel and has no gain stage of its own.
type chimeNode struct {
	phase  float64
	at     int
	total  int
	halted atomic.Bool
}

func newChime() *chimeNode {
	return &chimeNode{total: int(chimeDur * audio.SampleRate)}
}

func (c *chimeNode) Render(out []float32) {
	if c.halted.Load() {
		return
	}
	inc := 2 * math.Pi * chimeFreq / audio.SampleRate
	for i := 0; i+1 < len(out); i += 2 {
		if c.at >= c.total {
			c.halted.Store(true)
			return
		}
		t := float64(c.at) / audio.SampleRate
		envelope := math.Exp(-t * chimeDecay)
		s := float32(math.Sin(c.phase) * chimeVolume * envelope)
		out[i] += s
		out[i+1] += s
		c.phase += inc
		if c.phase >= 2*math.Pi {
			c.phase -= 2 * math.Pi
		}
		c.at++
	}
}

func (c *chimeNode) Halt() error {
	if c.halted.Swap(true) {
		return ErrHalted
	}
	return nil
}

func (c *chimeNode) finished() bool {
	return c.halted.Load()
}
