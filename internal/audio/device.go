// Package audio hands rendered PCM to the platform's sound output.
package audio

// DefaultSampleRate is used when the configuration does not set one.
const DefaultSampleRate = 44100

// Device plays mono signed 16-bit little-endian PCM. Play must not block
// until the sound finishes, and overlapping calls must mix.
type Device interface {
	SampleRate() int
	// Resume wakes a suspended output. It is safe to call repeatedly.
	Resume() error
	Play(pcm []byte) error
}

// Null is a Device that discards everything. It is used when sound is
// disabled or no output can be opened.
type Null struct {
	Rate int
}

func (n Null) SampleRate() int {
	if n.Rate <= 0 {
		return DefaultSampleRate
	}
	return n.Rate
}

func (Null) Resume() error         { return nil }
func (Null) Play(pcm []byte) error { return nil }
