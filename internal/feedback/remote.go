package feedback

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"BuddyStudio/internal/llm"
)

// Instructor produces the spoken instruction for a round.
type Instructor interface {
	Instruction(ctx context.Context, game GameType, target string, g Gender) string
}

// StaticInstructor picks from the built-in pools. It is the default.
type StaticInstructor struct {
	Book *Phrasebook
}

func (s StaticInstructor) Instruction(_ context.Context, game GameType, target string, g Gender) string {
	return s.Book.Instruction(game, target, g)
}

const remoteSystemPrompt = `Eres la voz de un juego educativo para niños de 3 a 5 años.
Escribe UNA sola frase corta en español, alegre y sencilla, que le pida al niño hacer la actividad.
La frase debe contener exactamente el texto indicado entre comillas.
Responde solo con la frase, sin comillas ni explicaciones.`

const maxRemoteRunes = 120

// RemoteInstructor asks a completion model for a fresh instruction and
// falls back to another Instructor on any failure or unusable reply.
type RemoteInstructor struct {
	Client   llm.Client
	Fallback Instructor
	Timeout  time.Duration
	Logger   *log.Logger
}

func (r RemoteInstructor) Instruction(ctx context.Context, game GameType, target string, g Gender) string {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	fallback := func(reason string, kv ...any) string {
		logger.Debug("remote instruction fell back: "+reason, kv...)
		return r.Fallback.Instruction(ctx, game, target, g)
	}
	if r.Client == nil {
		return fallback("no client")
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	phrase := Fill("{art} {obj}", target, g)
	prompt := fmt.Sprintf("Actividad: %s. Texto obligatorio: %q.", game, phrase)
	resp, err := r.Client.Complete(ctx2, remoteSystemPrompt, []llm.Message{{Role: "user", Content: prompt}}, &llm.RequestOptions{MaxTokens: 80})
	if err != nil {
		return fallback("request failed", "err", err)
	}

	text := cleanReply(resp.Content)
	switch {
	case text == "":
		return fallback("empty reply")
	case resp.WasTruncated():
		return fallback("truncated reply")
	case utf8.RuneCountInString(text) > maxRemoteRunes:
		return fallback("reply too long", "runes", utf8.RuneCountInString(text))
	case !strings.Contains(strings.ToLower(text), strings.ToLower(phrase)):
		return fallback("reply lost the target", "reply", text)
	}
	return text
}

// cleanReply keeps the first line and strips wrapping quotes.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(strings.Trim(s, "\"'«»“”"))
}
