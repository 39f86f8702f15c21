// Package engine procedurally generates the ambient sound bed: a
// brown-noise rain channel and four binaural-beat channels, each
// independently toggleable, mixed into one shared output stream.
package engine

// Channel identifies one independently toggleable sound source. The set
// is closed; every decision point switches exhaustively over it so an
// unknown channel is unrepresentable rather than a runtime failure.
type Channel int

const (
	Rain Channel = iota
	Alpha
	Theta
	Beta
	Gamma
	numChannels
)

// channelNone is the empty value of the engine's last-played memory.
const channelNone Channel = -1

// carrierFreq is the base tone of every binaural pair; the beat offset is
// added on the right ear only.
const carrierFreq = 200.0

// AllChannels returns the channels in display order.
func AllChannels() []Channel {
	return []Channel{Rain, Alpha, Theta, Beta, Gamma}
}

func (c Channel) String() string {
	switch c {
	case Rain:
		return "rain"
	case Alpha:
		return "alpha"
	case Theta:
		return "theta"
	case Beta:
		return "beta"
	case Gamma:
		return "gamma"
	}
	return "unknown"
}

// BeatFreq returns the binaural beat offset in Hz, 0 for rain.
func (c Channel) BeatFreq() float64 {
	switch c {
	case Alpha:
		return 10
	case Theta:
		return 6
	case Beta:
		return 20
	case Gamma:
		return 40
	}
	return 0
}

// attenuation scales the user volume fraction per channel kind. Rain is a
// broadband signal and still needs holding back relative to pure tones,
// which are more intrusive at equal amplitude.
func (c Channel) attenuation() float64 {
	switch c {
	case Rain:
		return 0.3
	case Alpha, Theta, Beta, Gamma:
		return 0.2
	}
	return 0
}

// ParseChannel maps a channel name back to its identifier.
func ParseChannel(name string) (Channel, bool) {
	for _, c := range AllChannels() {
		if c.String() == name {
			return c, true
		}
	}
	return channelNone, false
}
