package engine

import (
	"math"
	"sync/atomic"

	"lull/audio"
)

// oscillator is a pure sine generator panned to one stereo side. A
// binaural pair uses two: carrier hard left, carrier+beat hard right, so
// each ear hears a slightly different tone and the beat arises in the
// listener, not in the mix.
type oscillator struct {
	freq  float64
	phase float64

	// constant pan gains, pan -1 full left through +1 full right
	left, right float32

	halted atomic.Bool
}

func newOscillator(freq, pan float64) *oscillator {
	return &oscillator{
		freq:  freq,
		left:  float32((1 - pan) / 2),
		right: float32((1 + pan) / 2),
	}
}

func (o *oscillator) Render(out []float32) {
	if o.halted.Load() {
		return
	}
	inc := 2 * math.Pi * o.freq / audio.SampleRate
	for i := 0; i+1 < len(out); i += 2 {
		s := float32(math.Sin(o.phase))
		out[i] += s * o.left
		out[i+1] += s * o.right
		o.phase += inc
		if o.phase >= 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
	}
}

func (o *oscillator) Halt() error {
	if o.halted.Swap(true) {
		return ErrHalted
	}
	return nil
}
