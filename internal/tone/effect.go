// Package tone describes the game's sound effects as oscillator plans and
// renders them to PCM. No audio files are involved.
package tone

import (
	"strings"

	"BuddyStudio/internal/errors"
)

// Effect names one of the short synthesised sounds.
type Effect int

const (
	Correct Effect = iota
	Incorrect
	Complete
	Pop
	Drag
	Drop
	// Unlock is the near-silent tone played once to open the audio output.
	Unlock
)

// Effects lists the effects games may request.
var Effects = []Effect{Correct, Incorrect, Complete, Pop, Drag, Drop}

func (e Effect) String() string {
	switch e {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	case Complete:
		return "complete"
	case Pop:
		return "pop"
	case Drag:
		return "drag"
	case Drop:
		return "drop"
	case Unlock:
		return "unlock"
	}
	return "unknown"
}

// ParseEffect maps a name such as "pop" to its Effect.
func ParseEffect(name string) (Effect, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range Effects {
		if e.String() == name {
			return e, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown effect %q", name)
}

// Wave is an oscillator waveform.
type Wave int

const (
	Sine Wave = iota
	Triangle
	Square
	Sawtooth
)

// Oscillator is one voice of a plan, audible between Start and Stop seconds.
type Oscillator struct {
	Wave      Wave
	Start     float64
	Stop      float64
	Frequency Param
	Gain      Param
}

// Plan is everything needed to synthesise an effect.
type Plan struct {
	Effect      Effect
	Oscillators []Oscillator
}

// Duration is the time the last oscillator stops.
func (p Plan) Duration() float64 {
	d := 0.0
	for _, o := range p.Oscillators {
		d = max(d, o.Stop)
	}
	return d
}

// Validate checks every oscillator's automation.
func (p Plan) Validate() error {
	for i, o := range p.Oscillators {
		if o.Stop <= o.Start {
			return errors.New(errors.ErrCodeInvalidInput, "%s oscillator %d: stop %v before start %v", p.Effect, i, o.Stop, o.Start)
		}
		if err := o.Frequency.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s oscillator %d frequency", p.Effect, i)
		}
		if err := o.Gain.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s oscillator %d gain", p.Effect, i)
		}
	}
	return nil
}

// fanfare is the ascending C major arpeggio of the complete effect.
var fanfare = []float64{523, 659, 783, 1046}

const (
	fanfareStep = 0.1
	fanfareNote = 0.3
)

// PlanFor returns the synthesis plan of an effect.
func PlanFor(e Effect) Plan {
	switch e {
	case Correct:
		return single(e, Sine, 0.2,
			Param{}.Set(523.25, 0).Exponential(1046.5, 0.2),
			Param{}.Set(0.1, 0).Exponential(0.01, 0.2))
	case Incorrect:
		return single(e, Triangle, 0.25,
			Param{}.Set(220, 0).Linear(110, 0.25),
			Param{}.Set(0.08, 0).Exponential(0.001, 0.25))
	case Pop:
		return single(e, Sine, 0.1,
			Param{}.Set(800, 0).Linear(200, 0.1),
			Param{}.Set(0.05, 0).Linear(0, 0.1))
	case Drag:
		return single(e, Sine, 0.06,
			Param{}.Set(320, 0).Linear(380, 0.06),
			Param{}.Set(0.02, 0).Exponential(0.001, 0.06))
	case Drop:
		return single(e, Sine, 0.15,
			Param{}.Set(180, 0).Exponential(90, 0.15),
			Param{}.Set(0.12, 0).Exponential(0.001, 0.15))
	case Complete:
		p := Plan{Effect: e}
		for i, f := range fanfare {
			start := float64(i) * fanfareStep
			p.Oscillators = append(p.Oscillators, Oscillator{
				Wave:      Sine,
				Start:     start,
				Stop:      start + fanfareNote,
				Frequency: Constant(f),
				Gain:      Param{}.Set(0.1, start).Exponential(0.01, start+fanfareNote),
			})
		}
		return p
	default:
		return single(Unlock, Sine, 0.02, Constant(440), Constant(MinGain))
	}
}

func single(e Effect, w Wave, dur float64, freq, gain Param) Plan {
	return Plan{Effect: e, Oscillators: []Oscillator{{
		Wave:      w,
		Stop:      dur,
		Frequency: freq,
		Gain:      gain,
	}}}
}
