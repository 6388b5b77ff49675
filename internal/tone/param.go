package tone

import (
	"math"
	"sort"

	"BuddyStudio/internal/errors"
)

// MinGain is the floor used instead of zero for exponential gain ramps.
// An exponential ramp towards zero never arrives, so audio engines reject it.
const MinGain = 0.0001

// RampKind selects how a Param moves towards an event's value.
type RampKind int

const (
	// SetValue jumps to the value at the event time.
	SetValue RampKind = iota
	// LinearRamp interpolates linearly from the previous event.
	LinearRamp
	// ExponentialRamp interpolates geometrically from the previous event.
	// Both ends must be strictly positive.
	ExponentialRamp
)

func (k RampKind) String() string {
	switch k {
	case LinearRamp:
		return "linear"
	case ExponentialRamp:
		return "exponential"
	default:
		return "set"
	}
}

// Event is one automation point. Time is in seconds from the start of the plan.
type Event struct {
	Kind  RampKind
	Value float64
	Time  float64
}

// Param is an automatable value such as an oscillator frequency or a gain.
// Before its first event it holds Default.
type Param struct {
	Default float64
	Events  []Event
}

// Set schedules an immediate jump to v at time at.
func (p Param) Set(v, at float64) Param {
	p.Events = append(append([]Event(nil), p.Events...), Event{SetValue, v, at})
	return p
}

// Linear schedules a linear ramp arriving at v at time at.
func (p Param) Linear(v, at float64) Param {
	p.Events = append(append([]Event(nil), p.Events...), Event{LinearRamp, v, at})
	return p
}

// Exponential schedules an exponential ramp arriving at v at time at.
func (p Param) Exponential(v, at float64) Param {
	p.Events = append(append([]Event(nil), p.Events...), Event{ExponentialRamp, v, at})
	return p
}

// Constant returns a Param fixed at v.
func Constant(v float64) Param {
	return Param{Default: v}
}

func (p Param) sorted() []Event {
	ev := append([]Event(nil), p.Events...)
	sort.SliceStable(ev, func(i, j int) bool { return ev[i].Time < ev[j].Time })
	return ev
}

// Validate rejects automation an audio engine would refuse: exponential
// ramps to or from a non-positive value, and non-finite numbers.
func (p Param) Validate() error {
	prev := p.Default
	for i, e := range p.sorted() {
		if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) || math.IsNaN(e.Time) || e.Time < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "event %d: bad value %v at %v", i, e.Value, e.Time)
		}
		if e.Kind == ExponentialRamp {
			if e.Value <= 0 {
				return errors.New(errors.ErrCodeInvalidInput, "event %d: exponential ramp to %v", i, e.Value)
			}
			if prev <= 0 {
				return errors.New(errors.ErrCodeInvalidInput, "event %d: exponential ramp from %v", i, prev)
			}
		}
		prev = e.Value
	}
	return nil
}

// At evaluates the parameter at time t.
func (p Param) At(t float64) float64 {
	ev := p.sorted()
	value, from := p.Default, 0.0
	for _, e := range ev {
		if e.Time <= t {
			value, from = e.Value, e.Time
			continue
		}
		span := e.Time - from
		if span <= 0 {
			break
		}
		frac := (t - from) / span
		switch e.Kind {
		case LinearRamp:
			return value + (e.Value-value)*frac
		case ExponentialRamp:
			if value <= 0 || e.Value <= 0 {
				return value
			}
			return value * math.Pow(e.Value/value, frac)
		}
		break
	}
	return value
}

// End returns the time of the last event.
func (p Param) End() float64 {
	end := 0.0
	for _, e := range p.Events {
		end = math.Max(end, e.Time)
	}
	return end
}
