package speech

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"BuddyStudio/internal/errors"
)

// DefaultEspeakCommand is the synthesiser binary looked up on PATH.
const DefaultEspeakCommand = "espeak-ng"

// espeak-ng's neutral settings.
const (
	espeakPitch     = 50  // 0..99
	espeakRate      = 175 // words per minute
	espeakMinRate   = 80
	espeakMaxRate   = 450
	espeakAmplitude = 100 // 0..200
)

// Espeak speaks through the espeak-ng command line synthesiser.
type Espeak struct {
	Command string
}

// NewEspeak returns an engine running command, or espeak-ng when empty.
func NewEspeak(command string) *Espeak {
	if command == "" {
		command = DefaultEspeakCommand
	}
	return &Espeak{Command: command}
}

// Voices lists installed voices via `espeak-ng --voices`.
func (e *Espeak) Voices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, e.Command, "--voices").Output()
	if err != nil {
		return nil, classify(ctx, err)
	}
	return parseVoices(out), nil
}

// Speak runs the synthesiser and waits for it to finish.
func (e *Espeak) Speak(ctx context.Context, u Utterance) error {
	if strings.TrimSpace(u.Text) == "" {
		return nil
	}
	cmd := exec.CommandContext(ctx, e.Command, speakArgs(u)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" && ctx.Err() == nil {
			return errors.Wrap(errors.ErrCodeNotAllowed, err, "espeak: %s", msg)
		}
		return classify(ctx, err)
	}
	return nil
}

func speakArgs(u Utterance) []string {
	args := []string{
		"-p", strconv.Itoa(scale(u.Pitch, espeakPitch, 0, 99)),
		"-s", strconv.Itoa(scale(u.Rate, espeakRate, espeakMinRate, espeakMaxRate)),
		"-a", strconv.Itoa(scale(u.Volume, espeakAmplitude, 0, 200)),
	}
	if v := voiceArg(u.Voice); v != "" {
		args = append(args, "-v", v)
	}
	return append(args, "--", u.Text)
}

// voiceArg prefers the language tag, which espeak-ng resolves reliably,
// over the display name.
func voiceArg(v Voice) string {
	if v.Language != "" {
		return strings.ToLower(v.Language)
	}
	return v.Name
}

// scale maps a relative factor onto espeak's integer range around neutral.
func scale(factor float64, neutral, lo, hi int) int {
	if math.IsNaN(factor) || factor < 0 {
		factor = 1
	}
	n := int(math.Round(factor * float64(neutral)))
	return max(lo, min(hi, n))
}

func classify(ctx context.Context, err error) error {
	switch {
	case ctx.Err() != nil:
		return errors.Wrap(errors.ErrCodeInterrupted, ErrInterrupted, "espeak stopped")
	case stderrors.Is(err, exec.ErrNotFound):
		return errors.Wrap(errors.ErrCodeUnavailable, ErrUnavailable, "espeak: %v", err)
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "espeak")
	}
}

// parseVoices reads the table printed by `espeak-ng --voices`:
//
//	Pty Language       Age/Gender VoiceName          File          Other Languages
//	 5  es             --/M       Spanish_(Spain)    roa/es
func parseVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 4 || f[0] == "Pty" {
			continue
		}
		if _, err := strconv.Atoi(f[0]); err != nil {
			continue
		}
		voices = append(voices, Voice{
			Name:     strings.ReplaceAll(f[3], "_", " "),
			Language: f[1],
		})
	}
	return voices
}
