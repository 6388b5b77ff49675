package canvas

import (
	"image"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"BuddyStudio/internal/state"
	"BuddyStudio/internal/tone"
)

// DefaultMoveSoundInterval is the minimum gap between two drag sounds.
const DefaultMoveSoundInterval = 120 * time.Millisecond

// Phase is the stage of a pointer gesture.
type Phase int

const (
	PhaseDown Phase = iota
	PhaseMove
	PhaseUp
	PhaseLeave
)

// PointerEvent is a pointer sample in surface-local logical coordinates.
type PointerEvent struct {
	Phase Phase
	Point state.Point
}

// Sounder plays short tone effects. feedback.Service implements it.
type Sounder interface {
	Play(effect tone.Effect)
}

// Engine is the drawing engine of the drawing game: one surface, one active
// tool, one gesture at a time.
type Engine struct {
	mu       sync.Mutex
	surface  *Surface
	tool     state.Tool
	brush    state.Brush
	session  state.Session
	hue      state.HueCycle
	strokes  int
	finished bool

	sounds    Sounder
	moveSound *state.Throttle
	logger    *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSounds routes drag, drop and pop effects to s.
func WithSounds(s Sounder) Option {
	return func(e *Engine) { e.sounds = s }
}

// WithLogger sets the logger for dropped drawing operations.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMoveSoundInterval sets the drag sound throttle interval and clock.
func WithMoveSoundInterval(d time.Duration, now state.Clock) Option {
	return func(e *Engine) { e.moveSound = &state.Throttle{Interval: d, Now: now} }
}

// WithBackground sets the paper colour.
func WithBackground(c color.NRGBA) Option {
	return func(e *Engine) { e.surface = NewSurface(c) }
}

// WithBrush sets the initial brush.
func WithBrush(b state.Brush) Option {
	return func(e *Engine) {
		b.Size = state.ClampSize(b.Size)
		e.brush = b
	}
}

// NewEngine creates an engine with the pencil selected. Call Resize before
// drawing.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		surface:   NewSurface(state.Background),
		tool:      state.Pencil{},
		brush:     state.DefaultBrush(),
		moveSound: state.NewThrottle(DefaultMoveSoundInterval),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.Default()
	}
	return e
}

// Resize adapts the surface to its container. It is safe mid-gesture: the
// committed drawing is rescaled and the gesture continues from its last point.
func (e *Engine) Resize(width, height, dpr float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.Resize(width, height, dpr)
}

// Handle dispatches a pointer event.
func (e *Engine) Handle(ev PointerEvent) {
	switch ev.Phase {
	case PhaseDown:
		e.PointerDown(ev.Point)
	case PhaseMove:
		e.PointerMove(ev.Point)
	case PhaseUp, PhaseLeave:
		e.PointerUp()
	}
}

// PointerDown starts a stroke or drops a stamp at p.
func (e *Engine) PointerDown(p state.Point) {
	e.mu.Lock()
	effect, ok := e.down(p)
	e.mu.Unlock()
	if ok {
		e.play(effect)
	}
}

func (e *Engine) down(p state.Point) (tone.Effect, bool) {
	if e.finished {
		return 0, false
	}
	switch t := e.tool.(type) {
	case state.Continuous:
		e.session.Begin(p)
		st := t.StrokeStyle(e.brush, &e.hue, e.surface.Background())
		if err := e.surface.Dot(p, st); err != nil {
			e.logger.Debug("dot dropped", "tool", t.Name(), "err", err)
		}
		return 0, false
	case state.Stamp:
		st := t.FillStyle(e.brush)
		if err := e.surface.Stamp(t, p, st); err != nil {
			e.logger.Debug("stamp dropped", "tool", t.Name(), "err", err)
			return 0, false
		}
		e.strokes++
		return tone.Drop, true
	}
	return 0, false
}

// PointerMove extends the active stroke to p.
func (e *Engine) PointerMove(p state.Point) {
	e.mu.Lock()
	if !e.session.Drawing || e.finished {
		e.mu.Unlock()
		return
	}
	t, ok := e.tool.(state.Continuous)
	if !ok {
		e.mu.Unlock()
		return
	}
	from := e.session.Advance(p)
	st := t.StrokeStyle(e.brush, &e.hue, e.surface.Background())
	if err := e.surface.Segment(from, p, st); err != nil {
		e.logger.Debug("segment dropped", "tool", t.Name(), "err", err)
	}
	sound := e.moveSound.Allow()
	e.mu.Unlock()

	if sound {
		e.play(tone.Drag)
	}
}

// PointerUp ends the active stroke, if any. Leaving the surface is treated
// the same way.
func (e *Engine) PointerUp() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.End() {
		e.strokes++
	}
}

// SetTool switches the active tool. Any stroke in progress ends.
func (e *Engine) SetTool(t state.Tool) {
	if t == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session.End() {
		e.strokes++
	}
	e.tool = t
}

// SetColor picks a brush colour. Picking a colour while erasing switches
// back to the pencil.
func (e *Engine) SetColor(c color.NRGBA) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.brush.Color = c
	if _, erasing := e.tool.(state.Eraser); erasing {
		e.tool = state.Pencil{}
	}
}

// SetBrushSize sets the brush size, clamped to the allowed range.
func (e *Engine) SetBrushSize(size float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.brush.Size = state.ClampSize(size)
	return e.brush.Size
}

// GrowBrush and ShrinkBrush step the brush size.
func (e *Engine) GrowBrush() float64 {
	return e.SetBrushSize(e.Brush().Size + state.BrushStep)
}

func (e *Engine) ShrinkBrush() float64 {
	return e.SetBrushSize(e.Brush().Size - state.BrushStep)
}

// CyclePaper moves to the next paper pattern. The raster is not touched.
func (e *Engine) CyclePaper() state.Paper {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.brush.Paper = e.brush.Paper.Next()
	return e.brush.Paper
}

// Clear wipes the surface to the background and resets the stroke count.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.session.End()
	if err := e.surface.Clear(); err != nil {
		e.logger.Debug("clear dropped", "err", err)
	}
	e.strokes = 0
	e.mu.Unlock()

	e.play(tone.Pop)
}

// Finish marks the artwork as done. It only succeeds once something has
// been drawn; afterwards all pointer input is ignored.
func (e *Engine) Finish() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.strokes == 0 || e.finished {
		return false
	}
	e.session.End()
	e.finished = true
	return true
}

// Restart prepares a fresh canvas for a new level.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.End()
	if err := e.surface.Clear(); err != nil {
		e.logger.Debug("restart clear dropped", "err", err)
	}
	e.strokes = 0
	e.finished = false
}

func (e *Engine) Tool() state.Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

func (e *Engine) Brush() state.Brush {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.brush
}

// Strokes is the number of finished strokes and stamps since the last clear.
func (e *Engine) Strokes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strokes
}

// CanFinish reports whether the "done" action should be offered.
func (e *Engine) CanFinish() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strokes > 0 && !e.finished
}

func (e *Engine) Finished() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finished
}

// Drawing reports whether a continuous gesture is in progress.
func (e *Engine) Drawing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Drawing
}

// PixelAt returns the colour under a logical point.
func (e *Engine) PixelAt(p state.Point) color.NRGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.PixelAt(p)
}

// Size returns the logical surface size.
func (e *Engine) Size() (width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.Size()
}

// Frame refreshes a display buffer. When the artwork has not changed since
// revision rev, dst is returned as is; otherwise the pixels are copied into
// dst, reusing its memory when the size still matches. The returned revision
// is the one the image now shows. Frame returns nil until the first Resize
// when dst is nil.
func (e *Engine) Frame(dst *image.RGBA, rev uint64) (*image.RGBA, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cur := e.surface.Revision()
	if dst != nil && cur == rev {
		return dst, rev
	}
	return e.surface.CopyInto(dst), cur
}

// Snapshot returns a copy of the artwork for export.
func (e *Engine) Snapshot() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.Snapshot()
}

// EncodePNG writes the artwork as PNG.
func (e *Engine) EncodePNG(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface.EncodePNG(w)
}

func (e *Engine) play(effect tone.Effect) {
	if e.sounds != nil {
		e.sounds.Play(effect)
	}
}
