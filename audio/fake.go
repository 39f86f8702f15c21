package audio

import (
	"errors"
	"sync"
)

// FakeContext drives the render callback synchronously so tests can
// inspect exactly what the engine produces, without a sound card.
type FakeContext struct {
	mu        sync.Mutex
	playbacks []*FakePlayback

	// FailNewPlayback makes NewPlayback return an error, simulating a
	// platform without a usable output device.
	FailNewPlayback bool
}

func NewFakeContext() *FakeContext {
	return &FakeContext{}
}

func (f *FakeContext) NewPlayback(config PlaybackConfig, render RenderFunc) (PlaybackDevice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailNewPlayback {
		return nil, errors.New("fake: playback unavailable")
	}
	pb := &FakePlayback{render: render, config: config}
	f.playbacks = append(f.playbacks, pb)
	return pb, nil
}

func (f *FakeContext) Close() {}

// Playback returns the most recently opened device, or nil.
func (f *FakeContext) Playback() *FakePlayback {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.playbacks) == 0 {
		return nil
	}
	return f.playbacks[len(f.playbacks)-1]
}

type FakePlayback struct {
	render RenderFunc
	config PlaybackConfig

	mu      sync.Mutex
	running bool
	closed  bool

	StartCalls   int
	ResumeCalls  int
	SuspendCalls int
}

func (d *FakePlayback) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.StartCalls++
	d.running = true
	return nil
}

func (d *FakePlayback) Suspend() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.SuspendCalls++
	d.running = false
}

func (d *FakePlayback) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ResumeCalls++
	d.running = true
	return nil
}

func (d *FakePlayback) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *FakePlayback) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	d.closed = true
}

func (d *FakePlayback) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Pull renders one block of the given frame count, the way a real
// backend's audio goroutine would, and returns the interleaved samples.
// A suspended device yields silence.
func (d *FakePlayback) Pull(frames int) []float32 {
	out := make([]float32, frames*int(d.config.Channels))
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if !running {
		return out
	}
	d.render(out)
	return out
}
