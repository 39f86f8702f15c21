package engine

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
)

// ErrHalted is returned by Halt when a node's generator has already been
// halted. Generators may only be halted once; callers swallow this.
var ErrHalted = errors.New("engine: node already halted")

// Node is one element of a channel's processing chain. Render adds one
// block of interleaved stereo samples into out; it runs on the audio
// goroutine. Halt stops generation permanently.
type Node interface {
	Render(out []float32)
	Halt() error
}

// finisher is implemented by one-shot nodes that end on their own; the
// mixer reaps them after rendering.
type finisher interface {
	finished() bool
}

// level is a float64 readable from the audio goroutine while the control
// side rewrites it.
type level struct {
	bits atomic.Uint64
}

func (l *level) Store(v float64) {
	l.bits.Store(math.Float64bits(v))
}

func (l *level) Load() float64 {
	return math.Float64frombits(l.bits.Load())
}

// mixer is the shared destination node. Channels connect their gain stage
// to it; the playback device pulls mixed blocks from Render. Structural
// changes come only from the engine's control side, so the mutex is held
// for the duration of a block render without contention in practice.
type mixer struct {
	mu    sync.Mutex
	nodes []Node
}

func (m *mixer) connect(n Node) {
	m.mu.Lock()
	m.nodes = append(m.nodes, n)
	m.mu.Unlock()
}

func (m *mixer) disconnect(n Node) {
	m.mu.Lock()
	for i, c := range m.nodes {
		if c == n {
			m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
}

func (m *mixer) connected() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes)
}

// Render fills out with the sum of every connected chain, hard-clipped to
// [-1, 1], then drops any one-shot node that reports itself finished.
func (m *mixer) Render(out []float32) {
	for i := range out {
		out[i] = 0
	}

	m.mu.Lock()
	for _, n := range m.nodes {
		n.Render(out)
	}
	kept := m.nodes[:0]
	for _, n := range m.nodes {
		if f, ok := n.(finisher); ok && f.finished() {
			continue
		}
		kept = append(kept, n)
	}
	m.nodes = kept
	m.mu.Unlock()

	for i, v := range out {
		if v > 1 {
			out[i] = 1
		} else if v < -1 {
			out[i] = -1
		}
	}
}

// gainNode scales the summed output of its inputs. It is always the
// terminal stage of a channel chain and the only node the mixer sees.
type gainNode struct {
	gain    level
	inputs  []Node
	scratch []float32
	halted  atomic.Bool
}

func newGainNode(gain float64, inputs ...Node) *gainNode {
	g := &gainNode{
		inputs:  inputs,
		scratch: make([]float32, blockSamples),
	}
	g.gain.Store(gain)
	return g
}

func (g *gainNode) SetGain(v float64) {
	g.gain.Store(v)
}

func (g *gainNode) Gain() float64 {
	return g.gain.Load()
}

func (g *gainNode) Render(out []float32) {
	if g.halted.Load() {
		return
	}
	if len(g.scratch) < len(out) {
		g.scratch = make([]float32, len(out))
	}
	buf := g.scratch[:len(out)]
	for i := range buf {
		buf[i] = 0
	}
	for _, in := range g.inputs {
		in.Render(buf)
	}
	gain := float32(g.gain.Load())
	for i := range out {
		out[i] += buf[i] * gain
	}
}

func (g *gainNode) Halt() error {
	if g.halted.Swap(true) {
		return ErrHalted
	}
	return nil
}
