//go:build !linux

package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
)

type malgoContext struct {
	ctx *malgo.AllocatedContext
}

func NewContext() (Context, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, err
	}
	return &malgoContext{ctx: ctx}, nil
}

func (m *malgoContext) NewPlayback(config PlaybackConfig, render RenderFunc) (PlaybackDevice, error) {
	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = config.Channels
	deviceConfig.SampleRate = config.SampleRate

	pb := &malgoPlayback{}

	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frameCount uint32) {
			samples := int(frameCount * config.Channels)
			pb.ensureBuf(samples)
			buf := pb.buf[:samples]
			for i := range buf {
				buf[i] = 0
			}
			render(buf)
			for i, s := range buf {
				binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
			}
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		return nil, err
	}
	pb.device = dev
	return pb, nil
}

func (m *malgoContext) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}

type malgoPlayback struct {
	device *malgo.Device
	buf    []float32

	mu      sync.Mutex
	running bool
}

// ensureBuf is only touched from the audio callback, which malgo
// serializes per device.
func (d *malgoPlayback) ensureBuf(n int) {
	if len(d.buf) < n {
		d.buf = make([]float32, n)
	}
}

func (d *malgoPlayback) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return nil
	}
	if err := d.device.Start(); err != nil {
		return err
	}
	d.running = true
	return nil
}

func (d *malgoPlayback) Suspend() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		d.device.Stop()
		d.running = false
	}
}

func (d *malgoPlayback) Resume() error {
	return d.Start()
}

func (d *malgoPlayback) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *malgoPlayback) Close() {
	d.Suspend()
	d.device.Uninit()
}
