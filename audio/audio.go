package audio

// Output format shared by every backend. The engine renders interleaved
// stereo float32 blocks; backends convert to whatever the platform wants.
const (
	SampleRate  = 44100
	Channels    = 2
	BlockFrames = 4096
)

// RenderFunc fills out with interleaved stereo float32 samples. It runs on
// the backend's audio goroutine; implementations must not block.
type RenderFunc func(out []float32)

type PlaybackConfig struct {
	SampleRate uint32
	Channels   uint32
}

type Context interface {
	NewPlayback(config PlaybackConfig, render RenderFunc) (PlaybackDevice, error)
	Close()
}

// PlaybackDevice is one open output stream. Suspend stops pulling samples
// without tearing the stream down; Resume restarts it. Resume may be
// refused by the platform, in which case the device simply stays silent.
type PlaybackDevice interface {
	Start() error
	Suspend()
	Resume() error
	Running() bool
	Close()
}
