// Package config loads Buddy Studio settings from a TOML file.
//
// A missing file is not an error: every field has a default suited to a
// small child on a laptop. The file lives at
// $XDG_CONFIG_HOME/buddystudio/config.toml, or ~/.config/buddystudio/config.toml.
package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"BuddyStudio/internal/errors"
	"BuddyStudio/internal/state"
)

const appName = "buddystudio"

// Instruction strategies.
const (
	StrategyStatic = "static"
	StrategyRemote = "remote"
)

type Config struct {
	Speech       Speech       `toml:"speech"`
	Audio        Audio        `toml:"audio"`
	Canvas       Canvas       `toml:"canvas"`
	Instructions Instructions `toml:"instructions"`
	Studio       Studio       `toml:"studio"`
}

type Speech struct {
	Enabled bool     `toml:"enabled"`
	Pitch   float64  `toml:"pitch"`
	Rate    float64  `toml:"rate"`
	Locales []string `toml:"locales"`
	Command string   `toml:"command"`
}

type Audio struct {
	Enabled    bool `toml:"enabled"`
	SampleRate int  `toml:"sample_rate"`
}

type Canvas struct {
	BrushSize         float64  `toml:"brush_size"`
	Background        string   `toml:"background"`
	Paper             string   `toml:"paper"`
	MoveSoundInterval Duration `toml:"move_sound_interval"`
}

type Instructions struct {
	Strategy  string   `toml:"strategy"`
	Model     string   `toml:"model"`
	APIKeyEnv string   `toml:"api_key_env"`
	Timeout   Duration `toml:"timeout"`
}

type Studio struct {
	Buddy     string  `toml:"buddy"`
	Target    string  `toml:"target"`
	Gender    string  `toml:"gender"`
	Width     float32 `toml:"width"`
	Height    float32 `toml:"height"`
	OutputDir string  `toml:"output_dir"`
}

// Duration is a time.Duration written as "120ms" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid duration %q", text)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Speech: Speech{
			Enabled: true,
			Pitch:   1.4,
			Rate:    0.9,
			Locales: []string{"es-MX", "es-ES"},
			Command: "espeak-ng",
		},
		Audio: Audio{
			Enabled:    true,
			SampleRate: 44100,
		},
		Canvas: Canvas{
			BrushSize:         state.DefaultBrushSize,
			Background:        "#FFFFFF",
			Paper:             state.Blank.String(),
			MoveSoundInterval: Duration{120 * time.Millisecond},
		},
		Instructions: Instructions{
			Strategy:  StrategyStatic,
			APIKeyEnv: "ANTHROPIC_API_KEY",
			Timeout:   Duration{4 * time.Second},
		},
		Studio: Studio{
			Buddy:  "leo-leon",
			Target: "sol",
			Gender: "m",
			Width:  1024,
			Height: 720,
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "locate home directory")
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path over the defaults. An empty path means Path(). A file
// that does not exist yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := Path()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML over base and validates the result.
func Parse(data []byte, base Config) (Config, error) {
	cfg := base
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return base, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return base, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	switch {
	case c.Speech.Pitch <= 0 || c.Speech.Pitch > 2:
		return errors.New(errors.ErrCodeInvalidInput, "speech.pitch %v out of range (0, 2]", c.Speech.Pitch)
	case c.Speech.Rate < 0.1 || c.Speech.Rate > 10:
		return errors.New(errors.ErrCodeInvalidInput, "speech.rate %v out of range [0.1, 10]", c.Speech.Rate)
	case c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 192000:
		return errors.New(errors.ErrCodeInvalidInput, "audio.sample_rate %d out of range", c.Audio.SampleRate)
	case c.Canvas.BrushSize < state.MinBrushSize || c.Canvas.BrushSize > state.MaxBrushSize:
		return errors.New(errors.ErrCodeInvalidInput, "canvas.brush_size %v out of range [%v, %v]",
			c.Canvas.BrushSize, state.MinBrushSize, state.MaxBrushSize)
	case c.Canvas.MoveSoundInterval.Duration < 0:
		return errors.New(errors.ErrCodeInvalidInput, "canvas.move_sound_interval must not be negative")
	case c.Instructions.Strategy != StrategyStatic && c.Instructions.Strategy != StrategyRemote:
		return errors.New(errors.ErrCodeInvalidInput, "instructions.strategy %q (want %q or %q)",
			c.Instructions.Strategy, StrategyStatic, StrategyRemote)
	case c.Studio.Width <= 0 || c.Studio.Height <= 0:
		return errors.New(errors.ErrCodeInvalidInput, "studio window size %vx%v", c.Studio.Width, c.Studio.Height)
	}
	if _, err := ParseColor(c.Canvas.Background); err != nil {
		return err
	}
	if _, err := state.ParsePaper(c.Canvas.Paper); err != nil {
		return err
	}
	return nil
}

// BackgroundColor returns the parsed canvas background. Validate has
// already rejected bad values, so a failure here falls back to white.
func (c Canvas) BackgroundColor() color.NRGBA {
	col, err := ParseColor(c.Background)
	if err != nil {
		return state.Background
	}
	return col
}

// PaperPattern returns the parsed initial paper.
func (c Canvas) PaperPattern() state.Paper {
	p, _ := state.ParsePaper(c.Paper)
	return p
}

// ParseColor parses an opaque "#RGB" or "#RRGGBB" colour.
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, errors.New(errors.ErrCodeInvalidInput, "colour %q: want #RGB or #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "colour %q", s)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}, nil
}

// APIKey reads the remote instruction key from the configured variable.
func (i Instructions) APIKey() string {
	if i.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(i.APIKeyEnv)
}
