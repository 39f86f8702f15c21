package engine

import (
	"fmt"
	"sync"

	"lull/audio"
)

const blockSamples = audio.BlockFrames * audio.Channels

// DefaultVolume is assumed when the volume source has no opinion.
const DefaultVolume = 70

// VolumeSource supplies the user-requested volume percent (0-100) for a
// channel at the moment it starts. The UI owns the sliders; the engine
// only reads them.
type VolumeSource interface {
	Volume(ch Channel) int
}

type channelState struct {
	playing bool
	nodes   []Node
	// gain is the chain's terminal stage, named explicitly so volume
	// changes never depend on node ordering.
	gain *gainNode
}

// Engine owns the playback device, the shared mixer, and the five sound
// channels. All control methods are safe for concurrent use; the audio
// backend pulls mixed blocks on its own goroutine.
type Engine struct {
	mu         sync.Mutex
	ctx        audio.Context
	device     audio.PlaybackDevice
	mix        *mixer
	channels   [numChannels]channelState
	lastPlayed Channel
	volumes    VolumeSource
	chimes     bool
}

func New(ctx audio.Context, volumes VolumeSource) *Engine {
	return &Engine{
		ctx:        ctx,
		mix:        &mixer{},
		lastPlayed: channelNone,
		volumes:    volumes,
		chimes:     true,
	}
}

// DisableChimes silences session-boundary ticks (headless runs).
func (e *Engine) DisableChimes() {
	e.mu.Lock()
	e.chimes = false
	e.mu.Unlock()
}

// ensureDevice lazily opens the playback device on first use and resumes
// it if a previous pause left it suspended. Open/start failures propagate;
// a refused resume is absorbed — playback stays silent and the next user
// action simply tries again.
func (e *Engine) ensureDevice() error {
	if e.device == nil {
		dev, err := e.ctx.NewPlayback(audio.PlaybackConfig{
			SampleRate: audio.SampleRate,
			Channels:   audio.Channels,
		}, e.mix.Render)
		if err != nil {
			return fmt.Errorf("open playback: %w", err)
		}
		if err := dev.Start(); err != nil {
			dev.Close()
			return fmt.Errorf("start playback: %w", err)
		}
		e.device = dev
		return nil
	}
	if !e.device.Running() {
		if err := e.device.Resume(); err != nil {
			return nil
		}
	}
	return nil
}

// Toggle flips one channel between stopped and playing and returns the
// resulting state. It is the sole start/stop decision point; callers
// never track playing state of their own.
func (e *Engine) Toggle(ch Channel) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureDevice(); err != nil {
		return false, err
	}
	if e.channels[ch].playing {
		e.stopLocked(ch)
		e.suspendIfIdleLocked()
		return false, nil
	}
	e.startLocked(ch)
	return true, nil
}

// Playing reports whether a channel is currently audible.
func (e *Engine) Playing(ch Channel) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.channels[ch].playing
}

// SetVolume rewrites the gain of a playing channel to
// percent/100 * attenuation. On a stopped channel it is a no-op: the
// value is read from the volume source at the next start.
func (e *Engine) SetVolume(ch Channel, percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	st := &e.channels[ch]
	if !st.playing || st.gain == nil {
		return
	}
	st.gain.SetGain(float64(percent) / 100 * ch.attenuation())
}

// StopAll stops every playing channel and clears the last-played memory;
// a later ResumeLast is a no-op.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := Channel(0); ch < numChannels; ch++ {
		e.stopLocked(ch)
	}
	e.lastPlayed = channelNone
	e.suspendIfIdleLocked()
}

// PauseAll stops every playing channel while remembering which one was
// active so ResumeLast can bring it back. The memory has a single slot:
// with several channels playing, the last one iterated wins and the rest
// are not resumable.
func (e *Engine) PauseAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := Channel(0); ch < numChannels; ch++ {
		if e.channels[ch].playing {
			e.lastPlayed = ch
			e.stopLocked(ch)
		}
	}
	e.suspendIfIdleLocked()
}

// ResumeLast restarts the channel remembered by the last PauseAll and
// reports the resulting playing state. Without a memory it reports false.
// The memory survives; it is only ever replaced by the next pause.
func (e *Engine) ResumeLast() (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastPlayed == channelNone {
		return false, nil
	}
	if err := e.ensureDevice(); err != nil {
		return false, err
	}
	e.startLocked(e.lastPlayed)
	return e.channels[e.lastPlayed].playing, nil
}

// Chime plays a short self-ending tick through the shared output. A
// failure to open the device means no sound, never an error.
func (e *Engine) Chime() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.chimes {
		return
	}
	if err := e.ensureDevice(); err != nil {
		return
	}
	e.mix.connect(newChime())
}

// Close stops everything and releases the playback device. The audio
// context is owned by the caller.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for ch := Channel(0); ch < numChannels; ch++ {
		e.stopLocked(ch)
	}
	e.lastPlayed = channelNone
	if e.device != nil {
		e.device.Close()
		e.device = nil
	}
}

func (e *Engine) startLocked(ch Channel) {
	st := &e.channels[ch]
	if st.playing {
		return
	}

	var sources []Node
	switch ch {
	case Rain:
		sources = []Node{newBrownNoise()}
	case Alpha, Theta, Beta, Gamma:
		beat := ch.BeatFreq()
		sources = []Node{
			newOscillator(carrierFreq, -1),
			newOscillator(carrierFreq+beat, +1),
		}
	}

	gain := newGainNode(float64(e.volume(ch))/100*ch.attenuation(), sources...)
	st.nodes = append(append([]Node{}, sources...), gain)
	st.gain = gain
	e.mix.connect(gain)
	st.playing = true
}

func (e *Engine) stopLocked(ch Channel) {
	st := &e.channels[ch]
	if !st.playing {
		return
	}
	for _, n := range st.nodes {
		// Generators may only be halted once; a node that already ended
		// reports ErrHalted, which is expected and swallowed.
		_ = n.Halt()
	}
	e.mix.disconnect(st.gain)
	st.nodes = nil
	st.gain = nil
	st.playing = false
}

// suspendIfIdleLocked pauses the device once nothing is connected, so an
// idle session does not keep the output stream hot. A chime still
// sounding keeps it running until the mixer reaps it.
func (e *Engine) suspendIfIdleLocked() {
	if e.device == nil {
		return
	}
	if e.mix.connected() == 0 {
		e.device.Suspend()
	}
}

func (e *Engine) volume(ch Channel) int {
	if e.volumes == nil {
		return DefaultVolume
	}
	v := e.volumes.Volume(ch)
	if v < 0 || v > 100 {
		return DefaultVolume
	}
	return v
}
