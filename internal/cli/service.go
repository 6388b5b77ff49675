package cli

import (
	"github.com/charmbracelet/log"

	"BuddyStudio/internal/audio"
	"BuddyStudio/internal/config"
	"BuddyStudio/internal/feedback"
	"BuddyStudio/internal/llm"
	"BuddyStudio/internal/speech"
)

// newService builds the feedback service described by cfg. Disabled
// outputs are replaced by silent ones.
func newService(cfg config.Config, logger *log.Logger) *feedback.Service {
	book := feedback.NewPhrasebook(nil)
	return feedback.New(
		feedback.WithLogger(logger),
		feedback.WithDeviceFactory(deviceFactory(cfg.Audio)),
		feedback.WithEngineFactory(engineFactory(cfg.Speech)),
		feedback.WithLocales(speech.ParseLocales(cfg.Speech.Locales)),
		feedback.WithVoice(cfg.Speech.Pitch, cfg.Speech.Rate),
		feedback.WithPhrasebook(book),
		feedback.WithInstructor(newInstructor(cfg.Instructions, book, logger)),
	)
}

func deviceFactory(a config.Audio) feedback.DeviceFactory {
	if !a.Enabled {
		return func() (audio.Device, error) { return audio.Null{Rate: a.SampleRate}, nil }
	}
	return func() (audio.Device, error) { return audio.NewOto(a.SampleRate) }
}

func engineFactory(s config.Speech) feedback.EngineFactory {
	if !s.Enabled {
		return func() (speech.Engine, error) { return speech.Null{}, nil }
	}
	return func() (speech.Engine, error) { return speech.NewEspeak(s.Command), nil }
}

// newInstructor returns the remote strategy when it is configured and a key
// is available, and the static pools otherwise.
func newInstructor(in config.Instructions, book *feedback.Phrasebook, logger *log.Logger) feedback.Instructor {
	static := feedback.StaticInstructor{Book: book}
	if in.Strategy != config.StrategyRemote {
		return static
	}
	key := in.APIKey()
	if key == "" {
		logger.Warn("remote instructions need an API key; using built-in phrases", "env", in.APIKeyEnv)
		return static
	}
	return feedback.RemoteInstructor{
		Client:   llm.NewAnthropicClient(key, in.Model),
		Fallback: static,
		Timeout:  in.Timeout.Duration,
		Logger:   logger,
	}
}
