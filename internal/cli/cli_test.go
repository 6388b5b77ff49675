package cli

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"BuddyStudio/internal/config"
	"BuddyStudio/internal/errors"
	"BuddyStudio/internal/feedback"
)

// silentConfig writes a config that disables audio and speech.
func silentConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[audio]\nenabled = false\n\n[speech]\nenabled = false\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", silentConfig(t)}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"studio", "say", "tone", "phrase", "voices", "sketch"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestPhraseInstruction(t *testing.T) {
	out, err := execute(t, "phrase", "instruction", "--game", "shapes", "--gender", "f", "estrella")
	if err != nil {
		t.Fatalf("phrase instruction: %v", err)
	}
	if !strings.Contains(out, "la estrella") {
		t.Errorf("output = %q, want it to contain %q", out, "la estrella")
	}
}

func TestPhraseInstructionBadGender(t *testing.T) {
	_, err := execute(t, "phrase", "instruction", "--gender", "x", "pato")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestPhraseEncourage(t *testing.T) {
	out, err := execute(t, "phrase", "encourage", "--buddy", "leo-leon")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "¡") {
		t.Errorf("output = %q, want an exclamation", out)
	}
}

func TestToneList(t *testing.T) {
	out, err := execute(t, "tone", "--list")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"correct", "incorrect", "complete", "pop", "drag", "drop"} {
		if !strings.Contains(out, name) {
			t.Errorf("tone list missing %s: %q", name, out)
		}
	}
}

func TestToneUnknown(t *testing.T) {
	if _, err := execute(t, "tone", "boing"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestTonePlaysSilently(t *testing.T) {
	out, err := execute(t, "tone", "pop")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "pop") {
		t.Errorf("output = %q", out)
	}
}

func TestSaySilently(t *testing.T) {
	if _, err := execute(t, "say", "hola"); err != nil {
		t.Errorf("say: %v", err)
	}
}

func TestVoicesWithoutSpeech(t *testing.T) {
	out, err := execute(t, "voices")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No voices installed") {
		t.Errorf("output = %q", out)
	}
}

func TestSketchWritesPNG(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "s.toml")
	if err := os.WriteFile(script, []byte(sampleScript), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "art.png")
	if _, err := execute(t, "sketch", "--script", script, "--output", out); err != nil {
		t.Fatalf("sketch: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Errorf("png size = %dx%d, want 200x100", b.Dx(), b.Dy())
	}
}

func TestSketchRejectsExtension(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "s.toml")
	if err := os.WriteFile(script, []byte(sampleScript), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "sketch", "--script", script, "--output", filepath.Join(dir, "art.gif"))
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestNewInstructor(t *testing.T) {
	book := feedback.NewPhrasebook(nil)
	logger := log.New(io.Discard)

	in := config.Default().Instructions
	if _, ok := newInstructor(in, book, logger).(feedback.StaticInstructor); !ok {
		t.Error("static strategy did not give a StaticInstructor")
	}

	in.Strategy = config.StrategyRemote
	in.APIKeyEnv = "BUDDYSTUDIO_TEST_KEY"
	t.Setenv("BUDDYSTUDIO_TEST_KEY", "")
	if _, ok := newInstructor(in, book, logger).(feedback.StaticInstructor); !ok {
		t.Error("remote strategy without a key did not fall back to static")
	}

	t.Setenv("BUDDYSTUDIO_TEST_KEY", "sk-test")
	if _, ok := newInstructor(in, book, logger).(feedback.RemoteInstructor); !ok {
		t.Error("remote strategy with a key did not give a RemoteInstructor")
	}
}
