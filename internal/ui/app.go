// Package ui hosts the drawing game in a fyne window.
package ui

import (
	"context"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	paint "BuddyStudio/internal/canvas"
	"BuddyStudio/internal/config"
	"BuddyStudio/internal/errors"
	"BuddyStudio/internal/export"
	"BuddyStudio/internal/feedback"
	"BuddyStudio/internal/state"
	"BuddyStudio/internal/tone"
)

// AppID identifies the application to fyne's preferences store.
const AppID = "io.buddystudio.app"

const drawingActivity = "dibujar"

// Studio is the drawing game: one engine, its canvas widget and toolbar,
// wired to the feedback service.
type Studio struct {
	cfg    config.Config
	svc    *feedback.Service
	logger *log.Logger
	now    func() time.Time

	engine  *paint.Engine
	canvas  *CanvasWidget
	toolbar *Toolbar
	status  *widget.Label
}

// NewStudio builds the game from cfg. svc receives every sound and phrase.
func NewStudio(cfg config.Config, svc *feedback.Service, logger *log.Logger) *Studio {
	if logger == nil {
		logger = log.Default()
	}
	s := &Studio{
		cfg:    cfg,
		svc:    svc,
		logger: logger,
		now:    time.Now,
		status: widget.NewLabel(""),
	}
	s.engine = paint.NewEngine(
		paint.WithSounds(svc),
		paint.WithLogger(logger),
		paint.WithBackground(cfg.Canvas.BackgroundColor()),
		paint.WithMoveSoundInterval(cfg.Canvas.MoveSoundInterval.Duration, time.Now),
		paint.WithBrush(state.Brush{
			Color: state.Palette[0].Color,
			Size:  cfg.Canvas.BrushSize,
			Paper: cfg.Canvas.PaperPattern(),
		}),
	)
	s.canvas = NewCanvasWidget(s.engine)
	s.canvas.OnTouch = s.touch
	s.canvas.OnChange = s.refresh
	s.toolbar = NewToolbar(s)
	return s
}

// Content lays the game out: toolbar on top, status below, canvas filling
// the rest.
func (s *Studio) Content() fyne.CanvasObject {
	return container.NewBorder(s.toolbar.Object(), s.status, nil, nil, s.canvas)
}

func (s *Studio) Engine() *paint.Engine { return s.engine }

func (s *Studio) Canvas() *CanvasWidget { return s.canvas }

func (s *Studio) Status() string { return s.status.Text }

// touch unlocks audio on the child's first gesture, on the canvas or the
// toolbar, and reads out the task.
func (s *Studio) touch() {
	if s.svc.Unlocked() {
		return
	}
	s.svc.Unlock()
	go s.speakInstruction()
}

func (s *Studio) speakInstruction() {
	g, err := feedback.ParseGender(s.cfg.Studio.Gender)
	if err != nil {
		s.logger.Warn("studio gender", "err", err)
	}
	text := s.svc.InstructionContext(context.Background(), feedback.Drawing, s.cfg.Studio.Target, g)
	s.svc.Speak(text)
}

func (s *Studio) refresh() {
	s.toolbar.Refresh()
}

// SelectTool makes t the active tool.
func (s *Studio) SelectTool(t state.Tool) {
	s.touch()
	s.engine.SetTool(t)
	s.svc.Play(tone.Pop)
	s.refresh()
}

// SelectColor picks a palette colour.
func (s *Studio) SelectColor(sw state.Swatch) {
	s.touch()
	s.engine.SetColor(sw.Color)
	s.refresh()
}

func (s *Studio) GrowBrush() {
	s.touch()
	s.engine.GrowBrush()
	s.refresh()
}

func (s *Studio) ShrinkBrush() {
	s.touch()
	s.engine.ShrinkBrush()
	s.refresh()
}

// CyclePaper changes the overlay only.
func (s *Studio) CyclePaper() {
	s.touch()
	s.canvas.SetPaper(s.engine.CyclePaper())
	s.refresh()
}

// Clear wipes the canvas and says so.
func (s *Studio) Clear() {
	s.touch()
	s.engine.Clear()
	s.svc.Speak(feedback.CanvasCleared, feedback.WithPitch(1.0))
	s.setStatus(feedback.CanvasCleared)
	s.canvas.Refresh()
	s.refresh()
}

// Finish completes the artwork when something has been drawn. Afterwards
// the next call starts a new one.
func (s *Studio) Finish() {
	s.touch()
	if s.engine.Finished() {
		s.engine.Restart()
		s.setStatus("")
		s.canvas.Refresh()
		s.refresh()
		return
	}
	if !s.engine.Finish() {
		return
	}
	s.svc.Play(tone.Complete)
	phrase := s.svc.Encouragement(s.cfg.Studio.Buddy, drawingActivity)
	s.svc.Speak(phrase)
	s.setStatus(phrase)
	s.refresh()
}

// Save writes the artwork as PNG and PDF into the output directory and
// returns the written paths.
func (s *Studio) Save() ([]string, error) {
	img := s.engine.Snapshot()
	if img.Bounds().Empty() {
		return nil, errors.New(errors.ErrCodeSurface, "nothing to save yet")
	}
	dir := s.cfg.Studio.OutputDir
	if dir == "" {
		dir = "."
	}
	now := s.now()
	pngPath := filepath.Join(dir, export.FileName(s.cfg.Studio.Buddy, "png", now))
	pdfPath := filepath.Join(dir, export.FileName(s.cfg.Studio.Buddy, "pdf", now))
	if err := export.SavePNG(pngPath, img); err != nil {
		return nil, err
	}
	if err := export.SavePDF(pdfPath, img, "Mi obra"); err != nil {
		return []string{pngPath}, err
	}
	s.svc.Play(tone.Pop)
	s.logger.Info("artwork saved", "png", pngPath, "pdf", pdfPath)
	return []string{pngPath, pdfPath}, nil
}

func (s *Studio) save() {
	s.touch()
	go func() {
		paths, err := s.Save()
		fyne.Do(func() {
			if err != nil {
				s.logger.Error("save failed", "err", err)
				s.setStatus("No se pudo guardar.")
				return
			}
			s.setStatus("Guardado: " + filepath.Base(paths[0]))
		})
	}()
}

func (s *Studio) setStatus(text string) {
	s.status.SetText(text)
}

// RunStudio opens the drawing game window and blocks until it closes.
func RunStudio(cfg config.Config, svc *feedback.Service, logger *log.Logger) {
	a := app.NewWithID(AppID)
	w := a.NewWindow("Buddy Studio")
	w.Resize(fyne.NewSize(cfg.Studio.Width, cfg.Studio.Height))

	studio := NewStudio(cfg, svc, logger)
	w.SetContent(studio.Content())
	w.SetOnClosed(svc.Cancel)
	w.ShowAndRun()
}

func (s *Studio) Toolbar() *Toolbar { return s.toolbar }
