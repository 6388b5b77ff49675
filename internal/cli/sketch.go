package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	paint "BuddyStudio/internal/canvas"
	"BuddyStudio/internal/config"
	"BuddyStudio/internal/errors"
	"BuddyStudio/internal/export"
	"BuddyStudio/internal/state"
)

// Script is a recorded drawing: a canvas size and a list of gestures.
//
//	width = 400
//	height = 300
//
//	[[step]]
//	tool = "pencil"
//	color = "Azul"
//	size = 20.0
//	points = [[10.0, 10.0], [200.0, 150.0]]
type Script struct {
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	DPR        float64 `toml:"dpr"`
	Background string  `toml:"background"`
	Title      string  `toml:"title"`
	Steps      []Step  `toml:"step"`
}

// Step is one gesture: pointer down on the first point, moves through the
// rest, then up. Tool, colour and size persist until changed. A step with
// Clear set wipes the canvas instead.
type Step struct {
	Tool   string       `toml:"tool"`
	Color  string       `toml:"color"`
	Size   float64      `toml:"size"`
	Clear  bool         `toml:"clear"`
	Points [][2]float64 `toml:"points"`
}

// parseScript decodes and checks a script.
func parseScript(data []byte) (Script, error) {
	s := Script{Width: 800, Height: 600, DPR: 1, Title: "Mi obra"}
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return s, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse script")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return s, errors.New(errors.ErrCodeInvalidInput, "unknown script key %s", undecoded[0])
	}
	if s.Width <= 0 || s.Height <= 0 {
		return s, errors.New(errors.ErrCodeInvalidInput, "script size %vx%v", s.Width, s.Height)
	}
	for i, st := range s.Steps {
		if st.Tool != "" {
			if _, err := state.ParseTool(st.Tool); err != nil {
				return s, errors.Wrap(errors.ErrCodeInvalidInput, err, "step %d", i+1)
			}
		}
		if st.Color != "" {
			if _, err := scriptColor(st.Color); err != nil {
				return s, errors.Wrap(errors.ErrCodeInvalidInput, err, "step %d", i+1)
			}
		}
		if !st.Clear && len(st.Points) == 0 {
			return s, errors.New(errors.ErrCodeInvalidInput, "step %d has no points", i+1)
		}
	}
	return s, nil
}

// scriptColor accepts a palette name or a hex colour.
func scriptColor(s string) (state.Swatch, error) {
	if sw, err := state.SwatchByName(s); err == nil {
		return sw, nil
	}
	c, err := config.ParseColor(s)
	if err != nil {
		return state.Swatch{}, err
	}
	return state.Swatch{Name: s, Color: c}, nil
}

// newScriptEngine sizes an engine for s.
func newScriptEngine(s Script, logger *log.Logger, sounds paint.Sounder) (*paint.Engine, error) {
	opts := []paint.Option{paint.WithLogger(logger)}
	if sounds != nil {
		opts = append(opts, paint.WithSounds(sounds))
	}
	if s.Background != "" {
		bg, err := config.ParseColor(s.Background)
		if err != nil {
			return nil, err
		}
		opts = append(opts, paint.WithBackground(bg))
	}
	e := paint.NewEngine(opts...)
	if err := e.Resize(s.Width, s.Height, s.DPR); err != nil {
		return nil, err
	}
	return e, nil
}

// replay runs the script's gestures through e.
func replay(e *paint.Engine, s Script) error {
	for i, st := range s.Steps {
		if st.Clear {
			e.Clear()
			continue
		}
		if st.Tool != "" {
			tool, err := state.ParseTool(st.Tool)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "step %d", i+1)
			}
			e.SetTool(tool)
		}
		if st.Color != "" {
			sw, err := scriptColor(st.Color)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidInput, err, "step %d", i+1)
			}
			e.SetColor(sw.Color)
		}
		if st.Size > 0 {
			e.SetBrushSize(st.Size)
		}

		for j, p := range st.Points {
			phase := paint.PhaseMove
			if j == 0 {
				phase = paint.PhaseDown
			}
			e.Handle(paint.PointerEvent{Phase: phase, Point: state.Point{X: p[0], Y: p[1]}})
		}
		e.Handle(paint.PointerEvent{Phase: paint.PhaseUp})
	}
	return nil
}

func (c *CLI) sketchCommand() *cobra.Command {
	var scriptPath, out string

	cmd := &cobra.Command{
		Use:   "sketch",
		Short: "Draw a gesture script without a window and save it",
		Long:  `Replay a TOML gesture script through the drawing engine and write the result as PNG or PDF, chosen by the output extension.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(scriptPath)
			if err != nil {
				return errors.Wrap(errors.ErrCodeIO, err, "read %s", scriptPath)
			}
			s, err := parseScript(data)
			if err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			e, err := newScriptEngine(s, logger, nil)
			if err != nil {
				return err
			}
			if err := replay(e, s); err != nil {
				return err
			}
			logger.Debug("script replayed", "steps", len(s.Steps), "strokes", e.Strokes())

			img := e.Snapshot()
			switch ext := strings.ToLower(filepath.Ext(out)); ext {
			case ".png":
				err = export.SavePNG(out, img)
			case ".pdf":
				err = export.SavePDF(out, img, s.Title)
			default:
				return errors.New(errors.ErrCodeInvalidInput, "output %q: want .png or .pdf", out)
			}
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			printSuccess(w, "Drew %d strokes", e.Strokes())
			printFile(w, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&scriptPath, "script", "s", "", "gesture script (TOML)")
	cmd.Flags().StringVarP(&out, "output", "o", "sketch.png", "output file (.png or .pdf)")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}
