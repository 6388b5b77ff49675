package tone

import (
	"math"
	"testing"

	"BuddyStudio/internal/errors"
)

func allPlans() []Plan {
	plans := []Plan{PlanFor(Unlock)}
	for _, e := range Effects {
		plans = append(plans, PlanFor(e))
	}
	return plans
}

func TestNoExponentialRampToZero(t *testing.T) {
	for _, p := range allPlans() {
		t.Run(p.Effect.String(), func(t *testing.T) {
			if err := p.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			for i, o := range p.Oscillators {
				for _, param := range []Param{o.Frequency, o.Gain} {
					for _, e := range param.Events {
						if e.Kind == ExponentialRamp && e.Value <= 0 {
							t.Errorf("oscillator %d: exponential ramp to %v", i, e.Value)
						}
					}
				}
			}
		})
	}
}

func TestValidateRejectsBadRamps(t *testing.T) {
	tests := []struct {
		name  string
		param Param
	}{
		{"exponential to zero", Param{}.Set(0.1, 0).Exponential(0, 0.2)},
		{"exponential from zero", Param{}.Set(0, 0).Exponential(0.1, 0.2)},
		{"exponential from default zero", Param{}.Exponential(0.1, 0.2)},
		{"nan value", Param{}.Set(math.NaN(), 0)},
		{"negative time", Param{}.Set(1, -1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.param.Validate()
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Validate() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestParamAt(t *testing.T) {
	lin := Param{}.Set(800, 0).Linear(200, 0.1)
	exp := Param{}.Set(0.1, 0).Exponential(0.01, 0.2)
	tests := []struct {
		name  string
		param Param
		t     float64
		want  float64
	}{
		{"linear start", lin, 0, 800},
		{"linear middle", lin, 0.05, 500},
		{"linear after end", lin, 1, 200},
		{"exponential middle", exp, 0.1, math.Sqrt(0.1 * 0.01)},
		{"exponential end", exp, 0.2, 0.01},
		{"constant", Constant(440), 3, 440},
		{"before first event", Param{Default: 7}.Set(1, 0.5), 0.2, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.param.At(tt.t); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("At(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestCompleteIsFourAscendingTones(t *testing.T) {
	p := PlanFor(Complete)
	if len(p.Oscillators) != 4 {
		t.Fatalf("oscillators = %d, want 4", len(p.Oscillators))
	}
	prev := 0.0
	for i, o := range p.Oscillators {
		f := o.Frequency.At(o.Start)
		if f <= prev {
			t.Errorf("tone %d: %v Hz not above %v Hz", i, f, prev)
		}
		prev = f
		if want := float64(i) * fanfareStep; math.Abs(o.Start-want) > 1e-9 {
			t.Errorf("tone %d starts at %v, want %v", i, o.Start, want)
		}
		if d := o.Stop - o.Start; math.Abs(d-fanfareNote) > 1e-9 {
			t.Errorf("tone %d lasts %v, want %v", i, d, fanfareNote)
		}
	}
	if d := p.Duration(); math.Abs(d-0.6) > 1e-9 {
		t.Errorf("Duration() = %v, want 0.6", d)
	}
}

func TestRender(t *testing.T) {
	const rate = 44100
	for _, p := range allPlans() {
		t.Run(p.Effect.String(), func(t *testing.T) {
			samples := Render(p, rate)
			want := int(math.Ceil(p.Duration() * rate))
			if len(samples) != want {
				t.Errorf("len = %d, want %d", len(samples), want)
			}
			if pcm := PCM(p, rate); len(pcm) != 2*len(samples) {
				t.Errorf("PCM len = %d, want %d", len(pcm), 2*len(samples))
			}
		})
	}
}

func TestRenderIsAudible(t *testing.T) {
	samples := Render(PlanFor(Correct), 44100)
	peak := 0
	for _, s := range samples {
		peak = max(peak, int(math.Abs(float64(s))))
	}
	// Starting gain is 0.1 of full scale.
	if peak < 3000 || peak > 3300 {
		t.Errorf("peak = %d, want about 3277", peak)
	}

	unlock := Render(PlanFor(Unlock), 44100)
	for _, s := range unlock {
		if s > 4 || s < -4 {
			t.Fatalf("unlock tone sample %d is audible", s)
		}
	}
}

func TestRenderZeroRate(t *testing.T) {
	if got := Render(PlanFor(Pop), 0); got != nil {
		t.Errorf("Render at 0 Hz = %d samples, want nil", len(got))
	}
}

func TestParseEffect(t *testing.T) {
	for _, e := range Effects {
		got, err := ParseEffect(e.String())
		if err != nil || got != e {
			t.Errorf("ParseEffect(%q) = %v, %v", e.String(), got, err)
		}
	}
	if got, err := ParseEffect(" POP "); err != nil || got != Pop {
		t.Errorf("ParseEffect(\" POP \") = %v, %v", got, err)
	}
	for _, name := range []string{"unlock", "boing", ""} {
		if _, err := ParseEffect(name); err == nil {
			t.Errorf("ParseEffect(%q) succeeded", name)
		}
	}
}
