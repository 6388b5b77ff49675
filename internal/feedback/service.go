// Package feedback gives games their voice: instruction and encouragement
// phrases, spoken output and short tone effects.
//
// A Service is created once per process and handed to every game. Nothing
// plays until Unlock has been called from a user gesture; after that, speech
// follows a last-call-wins policy and tones overlap freely. No method
// reports playback failures to the caller; they are logged and the game
// carries on silently.
package feedback

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"

	"BuddyStudio/internal/audio"
	"BuddyStudio/internal/errors"
	"BuddyStudio/internal/speech"
	"BuddyStudio/internal/tone"
)

// Speech defaults tuned for small children: higher and slower than adult
// speech.
const (
	DefaultPitch = 1.4
	DefaultRate  = 0.9
)

// DeviceFactory opens the audio output.
type DeviceFactory func() (audio.Device, error)

// EngineFactory opens the speech synthesiser.
type EngineFactory func() (speech.Engine, error)

// Service is the process-wide feedback and audio service.
type Service struct {
	mu       sync.Mutex
	unlocked bool

	newDevice   DeviceFactory
	newEngine   EngineFactory
	device      audio.Device
	engine      speech.Engine
	deviceTried bool
	engineTried bool

	voiceMu  sync.Mutex
	voice    *speech.Voice
	locales  []language.Tag
	pitch    float64
	rate     float64
	cancel   context.CancelFunc
	lastDone chan struct{}
	inflight sync.WaitGroup

	pcm map[tone.Effect][]byte

	book       *Phrasebook
	instructor Instructor
	logger     *log.Logger
}

// Option configures a Service.
type Option func(*Service)

func WithDeviceFactory(f DeviceFactory) Option {
	return func(s *Service) { s.newDevice = f }
}

func WithEngineFactory(f EngineFactory) Option {
	return func(s *Service) { s.newEngine = f }
}

// WithLocales sets the voice preference order.
func WithLocales(tags []language.Tag) Option {
	return func(s *Service) {
		if len(tags) > 0 {
			s.locales = tags
		}
	}
}

// WithVoice sets the default pitch and rate. Non-positive values keep the
// defaults.
func WithVoice(pitch, rate float64) Option {
	return func(s *Service) {
		if pitch > 0 {
			s.pitch = pitch
		}
		if rate > 0 {
			s.rate = rate
		}
	}
}

func WithPhrasebook(b *Phrasebook) Option {
	return func(s *Service) { s.book = b }
}

// WithInstructor replaces the static instruction strategy.
func WithInstructor(i Instructor) Option {
	return func(s *Service) { s.instructor = i }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a locked service. Without factories it stays silent.
func New(opts ...Option) *Service {
	s := &Service{
		newDevice: func() (audio.Device, error) { return audio.Null{}, nil },
		newEngine: func() (speech.Engine, error) { return speech.Null{}, nil },
		locales:   speech.DefaultLocales,
		pitch:     DefaultPitch,
		rate:      DefaultRate,
		pcm:       make(map[tone.Effect][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.book == nil {
		s.book = NewPhrasebook(nil)
	}
	if s.instructor == nil {
		s.instructor = StaticInstructor{Book: s.book}
	}
	return s
}

// Unlock opens the audio output and the synthesiser and primes both with
// an inaudible tone and an empty silent utterance. Call it from inside a
// user input handler. Later calls do nothing.
func (s *Service) Unlock() {
	s.mu.Lock()
	if s.unlocked {
		s.mu.Unlock()
		return
	}
	s.unlocked = true
	dev := s.deviceLocked()
	s.engineLocked()
	s.mu.Unlock()

	if dev != nil {
		if err := dev.Resume(); err != nil {
			s.logger.Warn("audio resume refused", "err", err)
		}
	}
	s.play(tone.Unlock)
	s.Speak("", WithVolume(0))
	s.logger.Debug("audio unlocked")
}

// Unlocked reports whether Unlock has run.
func (s *Service) Unlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unlocked
}

func (s *Service) deviceLocked() audio.Device {
	if !s.deviceTried {
		s.deviceTried = true
		dev, err := s.newDevice()
		if err != nil {
			s.logger.Warn("audio output unavailable", "err", err)
		} else {
			s.device = dev
		}
	}
	return s.device
}

func (s *Service) engineLocked() speech.Engine {
	if !s.engineTried {
		s.engineTried = true
		eng, err := s.newEngine()
		if err != nil {
			s.logger.Warn("speech unavailable", "err", err)
		} else {
			s.engine = eng
		}
	}
	return s.engine
}

// SpeakOption adjusts one utterance.
type SpeakOption func(*speech.Utterance)

func WithPitch(p float64) SpeakOption {
	return func(u *speech.Utterance) { u.Pitch = p }
}

func WithRate(r float64) SpeakOption {
	return func(u *speech.Utterance) { u.Rate = r }
}

func WithVolume(v float64) SpeakOption {
	return func(u *speech.Utterance) { u.Volume = v }
}

// Speak cuts off whatever is being said and says text instead. It returns
// at once; the utterance plays in the background.
func (s *Service) Speak(text string, opts ...SpeakOption) {
	s.mu.Lock()
	if !s.unlocked {
		s.mu.Unlock()
		s.logger.Debug("speech dropped before unlock", "text", text)
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	eng := s.engine
	if eng == nil {
		s.cancel = nil
		s.mu.Unlock()
		return
	}

	u := speech.NewUtterance(text)
	u.Pitch, u.Rate = s.pitch, s.rate
	for _, opt := range opts {
		opt(&u)
	}

	ctx, cancel := context.WithCancel(context.Background())
	prev, done := s.lastDone, make(chan struct{})
	s.cancel, s.lastDone = cancel, done
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()
		defer close(done)
		defer cancel()
		// The previous utterance has been cancelled; let it stop before
		// this one starts so two never overlap.
		if prev != nil {
			<-prev
		}
		s.say(ctx, eng, u)
	}()
}

func (s *Service) say(ctx context.Context, eng speech.Engine, u speech.Utterance) {
	if ctx.Err() != nil {
		s.logger.Debug("speech superseded", "id", u.ID)
		return
	}
	if v, ok := s.selectVoice(ctx, eng); ok {
		u.Voice = v
	}
	err := eng.Speak(ctx, u)
	switch {
	case err == nil:
		s.logger.Debug("spoke", "id", u.ID, "text", u.Text, "voice", u.Voice.Name)
	case errors.Is(err, errors.ErrCodeInterrupted):
		s.logger.Debug("speech interrupted", "id", u.ID)
	case errors.Is(err, errors.ErrCodeNotAllowed):
		s.logger.Warn("speech not allowed", "err", err)
	default:
		s.logger.Warn("speech failed", "id", u.ID, "err", err)
	}
}

// selectVoice resolves the best voice once and caches it. An engine that
// reports no voices yet is asked again next time.
func (s *Service) selectVoice(ctx context.Context, eng speech.Engine) (speech.Voice, bool) {
	s.voiceMu.Lock()
	defer s.voiceMu.Unlock()
	if s.voice != nil {
		return *s.voice, true
	}
	voices, err := eng.Voices(ctx)
	if err != nil {
		s.logger.Debug("voice list unavailable", "err", err)
		return speech.Voice{}, false
	}
	if len(voices) == 0 {
		return speech.Voice{}, false
	}
	v, ok := speech.SelectVoice(voices, s.locales)
	if !ok {
		s.logger.Warn("no Spanish voice installed", "voices", len(voices))
	}
	s.voice = &v
	return v, ok
}

// Cancel stops the current utterance, if any.
func (s *Service) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Wait blocks until every queued utterance has finished or been cut off.
func (s *Service) Wait() {
	s.inflight.Wait()
}

// Voices lists the synthesiser's voices and the one Speak would use. It
// does not need Unlock.
func (s *Service) Voices(ctx context.Context) ([]speech.Voice, speech.Voice, error) {
	s.mu.Lock()
	eng := s.engineLocked()
	s.mu.Unlock()
	if eng == nil {
		return nil, speech.Voice{}, speech.ErrUnavailable
	}
	voices, err := eng.Voices(ctx)
	if err != nil {
		return nil, speech.Voice{}, err
	}
	chosen, _ := speech.SelectVoice(voices, s.locales)
	return voices, chosen, nil
}

// Play starts a tone effect and returns at once. Effects may overlap.
func (s *Service) Play(effect tone.Effect) {
	s.mu.Lock()
	unlocked := s.unlocked
	s.mu.Unlock()
	if !unlocked {
		s.logger.Debug("tone dropped before unlock", "effect", effect)
		return
	}
	s.play(effect)
}

// PlayEffect plays an effect by name. Unknown names are logged and ignored.
func (s *Service) PlayEffect(name string) {
	effect, err := tone.ParseEffect(name)
	if err != nil {
		s.logger.Warn("unknown tone", "name", name)
		return
	}
	s.Play(effect)
}

func (s *Service) play(effect tone.Effect) {
	s.mu.Lock()
	dev := s.device
	var pcm []byte
	if dev != nil {
		pcm = s.renderLocked(effect, dev.SampleRate())
	}
	s.mu.Unlock()
	if dev == nil {
		return
	}
	if err := dev.Play(pcm); err != nil {
		s.logger.Warn("tone failed", "effect", effect, "err", err)
	}
}

func (s *Service) renderLocked(effect tone.Effect, rate int) []byte {
	if pcm, ok := s.pcm[effect]; ok {
		return pcm
	}
	plan := tone.PlanFor(effect)
	if err := plan.Validate(); err != nil {
		s.logger.Error("invalid tone plan", "effect", effect, "err", err)
		return nil
	}
	pcm := tone.PCM(plan, rate)
	s.pcm[effect] = pcm
	return pcm
}

// Instruction returns a random static instruction. See Phrasebook.
func (s *Service) Instruction(game GameType, target string, g Gender) string {
	return s.book.Instruction(game, target, g)
}

// InstructionContext asks the configured Instructor, which may be remote.
func (s *Service) InstructionContext(ctx context.Context, game GameType, target string, g Gender) string {
	return s.instructor.Instruction(ctx, game, target, g)
}

// Encouragement returns a random celebratory phrase.
func (s *Service) Encouragement(buddy, activity string) string {
	return s.book.Encouragement(buddy, activity)
}
