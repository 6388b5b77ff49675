package config

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"BuddyStudio/internal/errors"
	"BuddyStudio/internal/state"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Speech.Pitch != 1.4 || cfg.Speech.Rate != 0.9 {
		t.Errorf("speech defaults = %+v", cfg.Speech)
	}
	if cfg.Canvas.MoveSoundInterval.Duration != 120*time.Millisecond {
		t.Errorf("move_sound_interval = %v", cfg.Canvas.MoveSoundInterval)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[speech]
pitch = 1.1
locales = ["es-AR"]

[audio]
enabled = false

[canvas]
background = "#fef"
paper = "grid"
move_sound_interval = "250ms"

[instructions]
strategy = "remote"
model = "claude-haiku-4-5"

[studio]
buddy = "maya-mona"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Speech.Pitch != 1.1 || cfg.Speech.Rate != 0.9 {
		t.Errorf("speech = %+v, want pitch overridden and rate kept", cfg.Speech)
	}
	if len(cfg.Speech.Locales) != 1 || cfg.Speech.Locales[0] != "es-AR" {
		t.Errorf("locales = %v", cfg.Speech.Locales)
	}
	if cfg.Audio.Enabled || cfg.Audio.SampleRate != 44100 {
		t.Errorf("audio = %+v", cfg.Audio)
	}
	if got := cfg.Canvas.BackgroundColor(); got != (color.NRGBA{R: 0xFF, G: 0xEE, B: 0xFF, A: 0xFF}) {
		t.Errorf("background = %v", got)
	}
	if cfg.Canvas.PaperPattern() != state.Grid {
		t.Errorf("paper = %v", cfg.Canvas.PaperPattern())
	}
	if cfg.Canvas.MoveSoundInterval.Duration != 250*time.Millisecond {
		t.Errorf("move_sound_interval = %v", cfg.Canvas.MoveSoundInterval)
	}
	if cfg.Instructions.Strategy != StrategyRemote || cfg.Studio.Buddy != "maya-mona" {
		t.Errorf("instructions/studio = %+v / %+v", cfg.Instructions, cfg.Studio)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[speech\npitch = 1"},
		{"unknown key", "[speech]\nvolume = 3"},
		{"pitch range", "[speech]\npitch = 5.0"},
		{"sample rate", "[audio]\nsample_rate = 10"},
		{"brush size", "[canvas]\nbrush_size = 200.0"},
		{"background", "[canvas]\nbackground = \"blue\""},
		{"paper", "[canvas]\npaper = \"lined\""},
		{"duration", "[canvas]\nmove_sound_interval = \"soon\""},
		{"strategy", "[instructions]\nstrategy = \"magic\""},
		{"window", "[studio]\nwidth = 0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data), Default())
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Parse() error = %v, want INVALID_INPUT", err)
			}
			if cfg.Speech.Pitch != Default().Speech.Pitch {
				t.Error("rejected config leaked into result")
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#1982C4", color.NRGBA{R: 0x19, G: 0x82, B: 0xC4, A: 0xFF}, false},
		{"fff", color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}, false},
		{" #000000 ", color.NRGBA{A: 0xFF}, false},
		{"#12345", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPathHonoursXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	got, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, appName, "config.toml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("BUDDY_TEST_KEY", "secret")
	if got := (Instructions{APIKeyEnv: "BUDDY_TEST_KEY"}).APIKey(); got != "secret" {
		t.Errorf("APIKey() = %q", got)
	}
	if got := (Instructions{}).APIKey(); got != "" {
		t.Errorf("APIKey() without env = %q", got)
	}
}
