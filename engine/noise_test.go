package engine

import (
	"math"
	"math/rand"
	"testing"

	"pgregory.net/rapid"
)

// The leaky integrator must stay bounded for any white-noise input in
// [-1, 1], no matter how adversarial, because nothing downstream of it
// re-normalizes before the final clip.
func TestBrownStepStaysBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		last := 0.0
		steps := rapid.IntRange(1, 2000).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			white := rapid.Float64Range(-1, 1).Draw(t, "white")
			last = brownStep(last, white)
			if math.Abs(last) > 1.01 {
				t.Fatalf("filter escaped bounds at step %d: %f", i, last)
			}
		}
	})
}

func TestBrownStepBoundedOverLongRandomRun(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	last := 0.0
	for i := 0; i < 100000; i++ {
		last = brownStep(last, rng.Float64()*2-1)
		if math.Abs(last) > 1.01 {
			t.Fatalf("filter escaped bounds at step %d: %f", i, last)
		}
	}
}

func TestBrownStepBoundedUnderSustainedDrive(t *testing.T) {
	// Constant full-scale input is the worst case for the integrator:
	// it converges to the fixpoint of (x+0.02)/1.02 = x, which is 1.
	last := 0.0
	for i := 0; i < 100000; i++ {
		last = brownStep(last, 1)
		if last > 1.01 {
			t.Fatalf("step %d: %f exceeds the fixpoint bound", i, last)
		}
	}
	if last < 0.99 {
		t.Fatalf("sustained drive converged to %f, expected ~1", last)
	}
}

func TestBrownStepLeaksTowardZero(t *testing.T) {
	// With silent input the integrator decays, never holds or grows.
	last := 0.9
	for i := 0; i < 1000; i++ {
		next := brownStep(last, 0)
		if math.Abs(next) >= math.Abs(last) {
			t.Fatalf("step %d: |%f| did not shrink from |%f|", i, next, last)
		}
		last = next
	}
}

func TestBrownNoiseHaltsOnce(t *testing.T) {
	n := newBrownNoise()
	if err := n.Halt(); err != nil {
		t.Fatalf("first halt: %v", err)
	}
	if err := n.Halt(); err != ErrHalted {
		t.Fatalf("second halt = %v, want ErrHalted", err)
	}

	out := make([]float32, 64)
	n.Render(out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d = %f after halt, want 0", i, v)
		}
	}
}
