// Package speech speaks short Spanish phrases through whatever synthesiser
// the platform offers.
package speech

import (
	"context"

	"github.com/google/uuid"

	"BuddyStudio/internal/errors"
)

// Sentinel errors. Compare with errors.Is from BuddyStudio/internal/errors
// on the code, or directly with the standard library.
var (
	// ErrInterrupted is returned when an utterance is cut off by a newer one.
	ErrInterrupted = errors.New(errors.ErrCodeInterrupted, "speech interrupted")
	// ErrNotAllowed is returned when the platform refuses to play audio.
	ErrNotAllowed = errors.New(errors.ErrCodeNotAllowed, "speech not allowed")
	// ErrUnavailable is returned when no synthesiser is present.
	ErrUnavailable = errors.New(errors.ErrCodeUnavailable, "speech unavailable")
)

// Voice is one installed synthesiser voice.
type Voice struct {
	Name     string
	Language string
	Default  bool
}

// Utterance is a single request to speak.
type Utterance struct {
	ID   uuid.UUID
	Text string
	// Voice is empty to let the engine pick.
	Voice Voice
	// Pitch and Rate are relative to the voice's normal speech: 1 is
	// unchanged, 2 is double. Volume is in [0, 1].
	Pitch  float64
	Rate   float64
	Volume float64
}

// NewUtterance creates an utterance with neutral pitch, rate and volume.
func NewUtterance(text string) Utterance {
	return Utterance{ID: uuid.New(), Text: text, Pitch: 1, Rate: 1, Volume: 1}
}

// Engine is a speech synthesiser.
type Engine interface {
	Voices(ctx context.Context) ([]Voice, error)
	// Speak blocks until the utterance has been spoken. Cancelling ctx
	// stops it and Speak returns ErrInterrupted.
	Speak(ctx context.Context, u Utterance) error
}

// Null is an Engine with no voices that says nothing.
type Null struct{}

func (Null) Voices(context.Context) ([]Voice, error) { return nil, nil }

func (Null) Speak(ctx context.Context, _ Utterance) error {
	if ctx.Err() != nil {
		return ErrInterrupted
	}
	return nil
}
