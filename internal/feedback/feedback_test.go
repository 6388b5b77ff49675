package feedback

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/unicode/norm"

	"BuddyStudio/internal/audio"
	"BuddyStudio/internal/errors"
	"BuddyStudio/internal/llm"
	"BuddyStudio/internal/speech"
	"BuddyStudio/internal/tone"
)

type fakeDevice struct {
	mu      sync.Mutex
	resumed int
	played  [][]byte
	err     error
}

func (d *fakeDevice) SampleRate() int { return 8000 }

func (d *fakeDevice) Resume() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resumed++
	return nil
}

func (d *fakeDevice) Play(pcm []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.played = append(d.played, pcm)
	return d.err
}

func (d *fakeDevice) plays() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.played)
}

// fakeEngine blocks "hold" utterances until released or cancelled.
type fakeEngine struct {
	mu        sync.Mutex
	voices    []speech.Voice
	listed    int
	started   chan string
	hold      chan struct{}
	spoken    []speech.Utterance
	cancelled []string
}

func newFakeEngine(voices ...speech.Voice) *fakeEngine {
	return &fakeEngine{voices: voices, started: make(chan string, 16), hold: make(chan struct{})}
}

func (e *fakeEngine) Voices(context.Context) ([]speech.Voice, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listed++
	return e.voices, nil
}

func (e *fakeEngine) Speak(ctx context.Context, u speech.Utterance) error {
	if ctx.Err() != nil {
		return e.interrupted(u)
	}
	e.started <- u.Text
	if u.Text == "hold" {
		select {
		case <-ctx.Done():
			return e.interrupted(u)
		case <-e.hold:
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spoken = append(e.spoken, u)
	return nil
}

func (e *fakeEngine) interrupted(u speech.Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelled = append(e.cancelled, u.Text)
	return speech.ErrInterrupted
}

func (e *fakeEngine) texts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, u := range e.spoken {
		out = append(out, u.Text)
	}
	return out
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{Level: log.DebugLevel})
}

type counted struct {
	devices, engines int
}

func newService(t *testing.T, dev audio.Device, eng speech.Engine, opts ...Option) (*Service, *counted) {
	t.Helper()
	c := &counted{}
	base := []Option{
		WithLogger(quietLogger()),
		WithDeviceFactory(func() (audio.Device, error) { c.devices++; return dev, nil }),
		WithEngineFactory(func() (speech.Engine, error) { c.engines++; return eng, nil }),
		WithPhrasebook(NewPhrasebook(func(int) int { return 0 })),
	}
	return New(append(base, opts...)...), c
}

func TestUnlockIsIdempotent(t *testing.T) {
	dev, eng := &fakeDevice{}, newFakeEngine()
	s, c := newService(t, dev, eng)
	if s.Unlocked() {
		t.Fatal("new service is unlocked")
	}

	s.Unlock()
	s.Unlock()
	s.Wait()

	if !s.Unlocked() {
		t.Error("Unlocked() = false after Unlock")
	}
	if c.devices != 1 || c.engines != 1 {
		t.Errorf("factories called devices=%d engines=%d, want 1 each", c.devices, c.engines)
	}
	if dev.resumed != 1 {
		t.Errorf("Resume() calls = %d, want 1", dev.resumed)
	}
	if dev.plays() != 1 {
		t.Errorf("unlock tones = %d, want 1", dev.plays())
	}
	spoken := eng.texts()
	if len(spoken) != 1 || spoken[0] != "" || eng.spoken[0].Volume != 0 {
		t.Errorf("unlock utterance = %+v, want one silent empty utterance", eng.spoken)
	}
}

func TestLockedServiceDropsOutput(t *testing.T) {
	dev, eng := &fakeDevice{}, newFakeEngine()
	s, c := newService(t, dev, eng)

	s.Play(tone.Correct)
	s.Speak("hola")
	s.Wait()

	if dev.plays() != 0 || len(eng.texts()) != 0 {
		t.Errorf("locked service produced output: tones=%d speech=%v", dev.plays(), eng.texts())
	}
	if c.devices != 0 {
		t.Errorf("device opened before unlock")
	}
}

func TestFactoryFailureDegradesToSilence(t *testing.T) {
	s := New(
		WithLogger(quietLogger()),
		WithDeviceFactory(func() (audio.Device, error) {
			return nil, errors.New(errors.ErrCodeUnavailable, "no sound card")
		}),
		WithEngineFactory(func() (speech.Engine, error) { return nil, speech.ErrUnavailable }),
	)
	s.Unlock()
	s.Play(tone.Pop)
	s.PlayEffect("correct")
	s.Speak("hola")
	s.Cancel()
	s.Wait()
	if !s.Unlocked() {
		t.Error("Unlocked() = false")
	}
	if _, _, err := s.Voices(context.Background()); !errors.Is(err, errors.ErrCodeUnavailable) {
		t.Errorf("Voices() error = %v, want UNAVAILABLE", err)
	}
}

func TestBackToBackTones(t *testing.T) {
	dev := &fakeDevice{}
	s, _ := newService(t, dev, newFakeEngine())
	s.Unlock()

	s.Play(tone.Pop)
	s.Play(tone.Correct)
	s.PlayEffect("complete")
	s.PlayEffect("no-such-tone")

	if got := dev.plays(); got != 4 { // unlock + three effects
		t.Fatalf("plays = %d, want 4", got)
	}
	if len(dev.played[1]) == 0 || len(dev.played[2]) == 0 {
		t.Error("empty PCM handed to device")
	}
	want := 2 * len(tone.Render(tone.PlanFor(tone.Complete), dev.SampleRate()))
	if got := len(dev.played[3]); got != want {
		t.Errorf("complete PCM = %d bytes, want %d", got, want)
	}
}

func TestDeviceErrorsAreSwallowed(t *testing.T) {
	dev := &fakeDevice{err: errors.New(errors.ErrCodeUnavailable, "device lost")}
	s, _ := newService(t, dev, newFakeEngine())
	s.Unlock()
	s.Play(tone.Drop)
	if dev.plays() != 2 {
		t.Errorf("plays = %d, want 2", dev.plays())
	}
}

func TestSpeakLastCallWins(t *testing.T) {
	eng := newFakeEngine(speech.Voice{Name: "Paulina", Language: "es-MX"})
	s, _ := newService(t, &fakeDevice{}, eng)
	s.Unlock()
	s.Wait()

	s.Speak("hold")
	select {
	case got := <-eng.started:
		for got != "hold" {
			got = <-eng.started
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first utterance never started")
	}
	s.Speak("B")
	s.Wait()

	spoken := eng.texts()
	if len(spoken) != 2 || spoken[1] != "B" {
		t.Errorf("completed = %q, want only the unlock utterance and B", spoken)
	}
	if len(eng.cancelled) != 1 || eng.cancelled[0] != "hold" {
		t.Errorf("cancelled = %q, want [hold]", eng.cancelled)
	}
}

func TestSpeakUsesDefaultsAndCachedVoice(t *testing.T) {
	eng := newFakeEngine(
		speech.Voice{Name: "Monica", Language: "es-ES"},
		speech.Voice{Name: "Paulina", Language: "es-MX"},
	)
	s, _ := newService(t, &fakeDevice{}, eng)
	s.Unlock()
	s.Speak("uno")
	s.Wait()
	s.Speak(CanvasCleared, WithPitch(1.0), WithRate(1.2))
	s.Wait()

	if eng.listed != 1 {
		t.Errorf("voice list fetched %d times, want 1", eng.listed)
	}
	last := len(eng.spoken) - 1
	uno, cleared := eng.spoken[last-1], eng.spoken[last]
	if uno.Voice.Name != "Paulina" {
		t.Errorf("voice = %q, want Paulina", uno.Voice.Name)
	}
	if uno.Pitch != DefaultPitch || uno.Rate != DefaultRate {
		t.Errorf("default pitch/rate = %v/%v", uno.Pitch, uno.Rate)
	}
	if cleared.Pitch != 1.0 || cleared.Rate != 1.2 {
		t.Errorf("override pitch/rate = %v/%v", cleared.Pitch, cleared.Rate)
	}
	if uno.ID == cleared.ID {
		t.Error("utterances share an ID")
	}
}

func TestEmptyVoiceListIsNotCached(t *testing.T) {
	eng := newFakeEngine()
	s, _ := newService(t, &fakeDevice{}, eng)
	s.Unlock()
	s.Wait()
	s.Speak("uno")
	s.Wait()

	eng.mu.Lock()
	eng.voices = []speech.Voice{{Name: "Monica", Language: "es-ES"}}
	eng.mu.Unlock()

	s.Speak("dos")
	s.Wait()
	spoken := eng.spoken[len(eng.spoken)-1]
	if spoken.Voice.Name != "Monica" {
		t.Errorf("voice = %q, want Monica once voices appear", spoken.Voice.Name)
	}
}

func TestCancel(t *testing.T) {
	eng := newFakeEngine()
	s, _ := newService(t, &fakeDevice{}, eng)
	s.Unlock()
	s.Wait()
	s.Speak("hold")
	for got := <-eng.started; got != "hold"; got = <-eng.started {
	}
	s.Cancel()
	s.Wait()
	if len(eng.cancelled) != 1 {
		t.Errorf("cancelled = %q", eng.cancelled)
	}
}

func TestInstructionArticles(t *testing.T) {
	tests := []struct {
		game   GameType
		target string
		g      Gender
		want   string
	}{
		{Shapes, "círculo", Masculine, "el círculo"},
		{Shapes, "estrella", Feminine, "la estrella"},
		{Counting, "3 patos", MasculinePlural, "los 3 patos"},
		{FaceParts, "orejas", FemininePlural, "las orejas"},
		{"volar", "pato", Masculine, "el pato"},
		{Drawing, "sol", Masculine, "el sol"},
	}
	for _, tt := range tests {
		t.Run(string(tt.game)+"/"+tt.target, func(t *testing.T) {
			for i := range Templates(tt.game) {
				book := NewPhrasebook(func(int) int { return i })
				got := book.Instruction(tt.game, tt.target, tt.g)
				if !strings.Contains(got, tt.want) {
					t.Errorf("template %d: %q does not contain %q", i, got, tt.want)
				}
				if strings.Contains(got, "{") {
					t.Errorf("template %d left a placeholder: %q", i, got)
				}
			}
		})
	}
}

func TestUnknownGameUsesGenericTemplate(t *testing.T) {
	got := NewPhrasebook(nil).Instruction("juego-nuevo", "pato", Masculine)
	if got != "Busca el pato" {
		t.Errorf("Instruction() = %q, want %q", got, "Busca el pato")
	}
}

func TestEveryTemplateHasArticleAndObject(t *testing.T) {
	for game, pool := range instructions {
		for _, tpl := range pool {
			if !strings.Contains(tpl, "{art} {obj}") {
				t.Errorf("%s: %q lacks {art} {obj}", game, tpl)
			}
		}
	}
}

func TestInstructionNormalisesTarget(t *testing.T) {
	decomposed := norm.NFD.String("círculo")
	got := Fill("{art} {obj}", decomposed, Masculine)
	if got != "el círculo" {
		t.Errorf("Fill() = %q, want NFC form", got)
	}
}

func TestParseGender(t *testing.T) {
	for _, s := range []string{"m", "f", "mp", "FP"} {
		if _, err := ParseGender(s); err != nil {
			t.Errorf("ParseGender(%q) error = %v", s, err)
		}
	}
	if _, err := ParseGender("n"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("ParseGender(n) error = %v", err)
	}
	if Gender("x").Article() != "el" {
		t.Error("unknown gender article is not el")
	}
}

func TestEncouragementIgnoresInputs(t *testing.T) {
	for i := range encouragements {
		book := NewPhrasebook(func(int) int { return i })
		a := book.Encouragement("Leo", "dibujo")
		b := book.Encouragement("Maya", "conteo")
		if a != b || a != encouragements[i] {
			t.Errorf("pick %d: %q vs %q", i, a, b)
		}
	}
	s := New(WithLogger(quietLogger()))
	if s.Encouragement("", "") == "" {
		t.Error("Encouragement() empty")
	}
}

type fakeCompleter struct {
	reply string
	err   error
	stop  string
}

func (f fakeCompleter) Complete(context.Context, string, []llm.Message, *llm.RequestOptions) (*llm.Response, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Response{Content: f.reply, StopReason: f.stop}, nil
}

func TestRemoteInstructor(t *testing.T) {
	static := StaticInstructor{Book: NewPhrasebook(func(int) int { return 0 })}
	fallback := static.Instruction(context.Background(), Shapes, "círculo", Masculine)

	tests := []struct {
		name   string
		client llm.Client
		want   string
	}{
		{"accepted", fakeCompleter{reply: "«¡Encuentra el círculo rojo!»\n"}, "¡Encuentra el círculo rojo!"},
		{"request error", fakeCompleter{err: errors.New(errors.ErrCodeUnavailable, "offline")}, fallback},
		{"empty reply", fakeCompleter{reply: "  "}, fallback},
		{"target missing", fakeCompleter{reply: "¡Busca la forma!"}, fallback},
		{"truncated", fakeCompleter{reply: "¡Busca el círculo", stop: "max_tokens"}, fallback},
		{"too long", fakeCompleter{reply: "el círculo " + strings.Repeat("muy ", 40)}, fallback},
		{"no client", nil, fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RemoteInstructor{Client: tt.client, Fallback: static, Logger: quietLogger()}
			if got := r.Instruction(context.Background(), Shapes, "círculo", Masculine); got != tt.want {
				t.Errorf("Instruction() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInstructionContextUsesInstructor(t *testing.T) {
	s := New(
		WithLogger(quietLogger()),
		WithInstructor(RemoteInstructor{
			Client:   fakeCompleter{reply: "¡Dibuja el sol brillante!"},
			Fallback: StaticInstructor{Book: NewPhrasebook(nil)},
		}),
	)
	if got := s.InstructionContext(context.Background(), Drawing, "sol", Masculine); got != "¡Dibuja el sol brillante!" {
		t.Errorf("InstructionContext() = %q", got)
	}
	if got := s.Instruction(Drawing, "sol", Masculine); !strings.Contains(got, "el sol") {
		t.Errorf("Instruction() = %q", got)
	}
}

func TestInstructionsUseContractions(t *testing.T) {
	genders := []Gender{Masculine, Feminine, MasculinePlural, FemininePlural}
	for game, pool := range instructions {
		for _, tpl := range pool {
			for _, g := range genders {
				got := Fill(tpl, "sol", g)
				if strings.Contains(got, " de el ") || strings.Contains(got, " a el ") {
					t.Errorf("%s/%s: %q needs del or al", game, g, got)
				}
			}
		}
	}
}
