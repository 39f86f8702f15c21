//go:build linux

package audio

import (
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
)

type pulseContext struct {
	client *pulse.Client
}

func NewContext() (Context, error) {
	c, err := pulse.NewClient()
	if err != nil {
		return nil, fmt.Errorf("pulse: %w", err)
	}
	return &pulseContext{client: c}, nil
}

func (p *pulseContext) NewPlayback(config PlaybackConfig, render RenderFunc) (PlaybackDevice, error) {
	reader := pulse.Float32Reader(func(buf []float32) (int, error) {
		render(buf)
		return len(buf), nil
	})

	stream, err := p.client.NewPlayback(reader,
		pulse.PlaybackStereo,
		pulse.PlaybackSampleRate(int(config.SampleRate)),
		pulse.PlaybackLatency(0.1),
	)
	if err != nil {
		return nil, fmt.Errorf("pulse playback: %w", err)
	}
	return &pulsePlayback{stream: stream}, nil
}

func (p *pulseContext) Close() {
	p.client.Close()
}

type pulsePlayback struct {
	stream *pulse.PlaybackStream

	mu      sync.Mutex
	running bool
	closed  bool
}

func (d *pulsePlayback) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("pulse playback: stream closed")
	}
	if !d.running {
		d.stream.Start()
		d.running = true
	}
	return nil
}

func (d *pulsePlayback) Suspend() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		d.stream.Stop()
		d.running = false
	}
}

func (d *pulsePlayback) Resume() error {
	return d.Start()
}

func (d *pulsePlayback) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *pulsePlayback) Close() {
	d.Suspend()
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.stream.Close()
		d.closed = true
	}
}
