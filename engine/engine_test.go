package engine

import (
	"math"
	"testing"

	"lull/audio"
)

// fixedVolumes is a VolumeSource with one value for every channel.
type fixedVolumes int

func (v fixedVolumes) Volume(Channel) int { return int(v) }

func newTestEngine(t *testing.T, vol int) (*Engine, *audio.FakeContext) {
	t.Helper()
	ctx := audio.NewFakeContext()
	e := New(ctx, fixedVolumes(vol))
	t.Cleanup(e.Close)
	return e, ctx
}

// signChanges counts zero crossings in one deinterleaved stereo side,
// which pins the frequency of a pure tone: crossings ~= 2*freq*seconds.
func signChanges(block []float32, side int) int {
	changes := 0
	prev := float32(0)
	for i := side; i < len(block); i += 2 {
		s := block[i]
		if s == 0 {
			continue
		}
		if prev != 0 && (s > 0) != (prev > 0) {
			changes++
		}
		prev = s
	}
	return changes
}

func peak(block []float32, side int) float64 {
	max := 0.0
	for i := side; i < len(block); i += 2 {
		if a := math.Abs(float64(block[i])); a > max {
			max = a
		}
	}
	return max
}

func TestToggleFlipsState(t *testing.T) {
	e, _ := newTestEngine(t, 70)

	on, err := e.Toggle(Rain)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !on || !e.Playing(Rain) {
		t.Fatalf("expected rain playing after first toggle")
	}

	on, err = e.Toggle(Rain)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if on || e.Playing(Rain) {
		t.Fatalf("expected rain stopped after second toggle")
	}
}

func TestChannelsAreIndependent(t *testing.T) {
	e, _ := newTestEngine(t, 70)

	if _, err := e.Toggle(Rain); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Toggle(Gamma); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Toggle(Rain); err != nil {
		t.Fatal(err)
	}
	if e.Playing(Rain) {
		t.Fatalf("rain should be stopped")
	}
	if !e.Playing(Gamma) {
		t.Fatalf("stopping rain must not touch gamma")
	}
}

func TestBinauralPairFrequenciesAndPanning(t *testing.T) {
	e, ctx := newTestEngine(t, 100)

	if _, err := e.Toggle(Alpha); err != nil {
		t.Fatal(err)
	}
	block := ctx.Playback().Pull(audio.SampleRate) // one second

	leftCrossings := signChanges(block, 0)
	rightCrossings := signChanges(block, 1)
	if got, want := leftCrossings, 2*200; abs(got-want) > 2 {
		t.Fatalf("left ear crossings = %d, want ~%d (200 Hz carrier)", got, want)
	}
	if got, want := rightCrossings, 2*210; abs(got-want) > 2 {
		t.Fatalf("right ear crossings = %d, want ~%d (carrier + 10 Hz beat)", got, want)
	}

	// Hard panning at full volume: each side peaks at its channel
	// attenuation, with no bleed raising it further.
	if p := peak(block, 0); math.Abs(p-0.2) > 0.01 {
		t.Fatalf("left peak = %.3f, want ~0.2", p)
	}
	if p := peak(block, 1); math.Abs(p-0.2) > 0.01 {
		t.Fatalf("right peak = %.3f, want ~0.2", p)
	}
}

func TestRainIsDualMonoAndBounded(t *testing.T) {
	e, ctx := newTestEngine(t, 100)

	if _, err := e.Toggle(Rain); err != nil {
		t.Fatal(err)
	}
	block := ctx.Playback().Pull(audio.BlockFrames)

	silent := true
	for i := 0; i+1 < len(block); i += 2 {
		if block[i] != block[i+1] {
			t.Fatalf("frame %d: left %f != right %f", i/2, block[i], block[i+1])
		}
		if block[i] != 0 {
			silent = false
		}
		if a := math.Abs(float64(block[i])); a > 1 {
			t.Fatalf("frame %d: sample %f outside [-1, 1]", i/2, block[i])
		}
	}
	if silent {
		t.Fatalf("rain rendered pure silence")
	}
}

func TestSetVolumeRescalesPlayingChannel(t *testing.T) {
	e, ctx := newTestEngine(t, 100)

	if _, err := e.Toggle(Alpha); err != nil {
		t.Fatal(err)
	}
	e.SetVolume(Alpha, 50)
	block := ctx.Playback().Pull(audio.SampleRate)
	if p := peak(block, 0); math.Abs(p-0.1) > 0.01 {
		t.Fatalf("peak after 50%% volume = %.3f, want ~0.1", p)
	}

	e.SetVolume(Alpha, 200) // clamps to 100
	block = ctx.Playback().Pull(audio.SampleRate)
	if p := peak(block, 0); math.Abs(p-0.2) > 0.01 {
		t.Fatalf("peak after clamped volume = %.3f, want ~0.2", p)
	}
}

func TestSetVolumeOnStoppedChannelIsNoop(t *testing.T) {
	e, ctx := newTestEngine(t, 100)

	e.SetVolume(Beta, 10) // nothing playing, nothing to do
	if ctx.Playback() != nil {
		t.Fatalf("volume change must not open a device")
	}
	if e.Playing(Beta) {
		t.Fatalf("volume change must not start a channel")
	}
}

func TestPauseResumeRestoresLastChannel(t *testing.T) {
	e, _ := newTestEngine(t, 70)

	if _, err := e.Toggle(Theta); err != nil {
		t.Fatal(err)
	}
	e.PauseAll()
	if e.Playing(Theta) {
		t.Fatalf("pause left theta playing")
	}

	on, err := e.ResumeLast()
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !on || !e.Playing(Theta) {
		t.Fatalf("resume did not restore theta")
	}
}

func TestResumeWithoutMemoryIsNoop(t *testing.T) {
	e, _ := newTestEngine(t, 70)

	on, err := e.ResumeLast()
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if on {
		t.Fatalf("resume with no prior pause must not start anything")
	}
}

func TestStopAllClearsResumeMemory(t *testing.T) {
	e, _ := newTestEngine(t, 70)

	if _, err := e.Toggle(Beta); err != nil {
		t.Fatal(err)
	}
	e.PauseAll()
	e.StopAll()

	on, err := e.ResumeLast()
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if on || e.Playing(Beta) {
		t.Fatalf("stop-all must drop the resume memory")
	}
}

func TestPauseRemembersOneChannelOnly(t *testing.T) {
	e, _ := newTestEngine(t, 70)

	if _, err := e.Toggle(Rain); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Toggle(Alpha); err != nil {
		t.Fatal(err)
	}
	e.PauseAll()

	if _, err := e.ResumeLast(); err != nil {
		t.Fatal(err)
	}
	playing := 0
	for _, ch := range AllChannels() {
		if e.Playing(ch) {
			playing++
		}
	}
	if playing != 1 {
		t.Fatalf("resume restored %d channels, want exactly 1", playing)
	}
}

func TestDeviceSuspendsWhenIdleAndResumesOnPlay(t *testing.T) {
	e, ctx := newTestEngine(t, 70)

	if _, err := e.Toggle(Rain); err != nil {
		t.Fatal(err)
	}
	dev := ctx.Playback()
	if dev.StartCalls != 1 || !dev.Running() {
		t.Fatalf("first toggle should start the device once")
	}

	if _, err := e.Toggle(Rain); err != nil {
		t.Fatal(err)
	}
	if dev.SuspendCalls != 1 || dev.Running() {
		t.Fatalf("device should suspend once nothing is connected")
	}

	if _, err := e.Toggle(Rain); err != nil {
		t.Fatal(err)
	}
	if dev.ResumeCalls != 1 || !dev.Running() {
		t.Fatalf("replaying should resume the existing device, not open a new one")
	}
	if ctx.Playback() != dev {
		t.Fatalf("a second device was opened")
	}
}

func TestUnavailableDeviceErrorPropagates(t *testing.T) {
	ctx := audio.NewFakeContext()
	ctx.FailNewPlayback = true
	e := New(ctx, fixedVolumes(70))
	defer e.Close()

	if _, err := e.Toggle(Rain); err == nil {
		t.Fatalf("expected an error from an unavailable device")
	}
	if e.Playing(Rain) {
		t.Fatalf("channel must stay stopped when the device cannot open")
	}
}

func TestChimeEndsOnItsOwn(t *testing.T) {
	e, ctx := newTestEngine(t, 70)

	e.Chime()
	dev := ctx.Playback()
	if dev == nil {
		t.Fatalf("chime should open the device")
	}

	block := dev.Pull(audio.BlockFrames)
	if peak(block, 0) == 0 {
		t.Fatalf("chime rendered silence")
	}

	// Past the envelope the mixer reaps the node and the mix is empty.
	for i := 0; i < audio.SampleRate/audio.BlockFrames; i++ {
		dev.Pull(audio.BlockFrames)
	}
	if n := e.mix.connected(); n != 0 {
		t.Fatalf("%d nodes still connected after the chime ended", n)
	}
}

func TestDisabledChimesStaySilent(t *testing.T) {
	e, ctx := newTestEngine(t, 70)

	e.DisableChimes()
	e.Chime()
	if ctx.Playback() != nil {
		t.Fatalf("disabled chimes must not touch the device")
	}
}

func TestHaltedGainRendersNothing(t *testing.T) {
	g := newGainNode(1, newOscillator(carrierFreq, 0))
	if err := g.Halt(); err != nil {
		t.Fatalf("first halt: %v", err)
	}
	if err := g.Halt(); err != ErrHalted {
		t.Fatalf("second halt = %v, want ErrHalted", err)
	}

	out := make([]float32, 64)
	g.Render(out)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("sample %d = %f after halt, want 0", i, v)
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
