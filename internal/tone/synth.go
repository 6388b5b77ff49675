package tone

import (
	"encoding/binary"
	"math"
)

// Render mixes a plan to mono float samples in [-1, 1] and converts them to
// signed 16-bit.
func Render(p Plan, sampleRate int) []int16 {
	if sampleRate <= 0 {
		return nil
	}
	sr := float64(sampleRate)
	n := int(math.Ceil(p.Duration() * sr))
	mix := make([]float64, n)

	for _, o := range p.Oscillators {
		first := int(math.Floor(o.Start * sr))
		last := min(n, int(math.Ceil(o.Stop*sr)))
		phase := 0.0
		for i := max(0, first); i < last; i++ {
			t := float64(i) / sr
			mix[i] += wave(o.Wave, phase) * o.Gain.At(t)
			phase += o.Frequency.At(t) / sr
			phase -= math.Floor(phase)
		}
	}

	out := make([]int16, n)
	for i, v := range mix {
		v = math.Max(-1, math.Min(1, v))
		out[i] = int16(math.Round(v * math.MaxInt16))
	}
	return out
}

// PCM renders a plan as mono signed 16-bit little-endian bytes.
func PCM(p Plan, sampleRate int) []byte {
	samples := Render(p, sampleRate)
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	return buf
}

// wave evaluates a unit waveform at phase in [0, 1).
func wave(w Wave, phase float64) float64 {
	switch w {
	case Triangle:
		return 1 - 4*math.Abs(phase-0.5)
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Sawtooth:
		return 2*phase - 1
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}
