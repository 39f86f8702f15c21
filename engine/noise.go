package engine

import (
	"math/rand"
	"sync/atomic"
	"time"
)

// noiseGain lifts the leaky integrator's output, which otherwise sits
// well below full scale, back to a useful level.
const noiseGain = 3.5

// brownStep advances the rain filter by one sample: a leaky integrator
// over uniform white noise. The 1.02 divisor bleeds energy every step,
// so the walk stays bounded in roughly [-1, 1] for any input sequence.
func brownStep(last, white float64) float64 {
	return (last + 0.02*white) / 1.02
}

// brownNoise approximates rainfall: white noise pushed through the
// brownStep filter loses its high end and takes on the soft
// low-frequency-heavy wash of brown noise. The filter state lives only
// for one playing session; every start constructs a fresh node at zero.
type brownNoise struct {
	rng    *rand.Rand
	last   float64
	halted atomic.Bool
}

func newBrownNoise() *brownNoise {
	return &brownNoise{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (b *brownNoise) Render(out []float32) {
	if b.halted.Load() {
		return
	}
	for i := 0; i+1 < len(out); i += 2 {
		white := b.rng.Float64()*2 - 1
		b.last = brownStep(b.last, white)
		s := float32(b.last * noiseGain)
		out[i] += s
		out[i+1] += s
	}
}

func (b *brownNoise) Halt() error {
	if b.halted.Swap(true) {
		return ErrHalted
	}
	return nil
}
