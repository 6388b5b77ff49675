package ui

import (
	"image"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	paint "BuddyStudio/internal/canvas"
	"BuddyStudio/internal/state"
)

// CanvasWidget shows a drawing engine's raster under the paper overlay and
// feeds it pointer input.
type CanvasWidget struct {
	widget.BaseWidget
	engine *paint.Engine

	mu       sync.Mutex
	mouse    bool // a desktop mouse has been seen; taps then arrive as MouseDown/MouseUp
	dragging bool
	paper    state.Paper
	pending  bool // a drag repaint is scheduled

	// origin returns the widget's window-absolute position. Nil asks the
	// driver.
	origin func() fyne.Position

	// OnTouch runs before the first pointer event of every gesture.
	OnTouch func()
	// OnChange runs after input that may have changed the artwork.
	OnChange func()
}

var _ fyne.Widget = (*CanvasWidget)(nil)
var _ fyne.Draggable = (*CanvasWidget)(nil)
var _ fyne.Tappable = (*CanvasWidget)(nil)
var _ desktop.Mouseable = (*CanvasWidget)(nil)
var _ desktop.Hoverable = (*CanvasWidget)(nil)

func NewCanvasWidget(e *paint.Engine) *CanvasWidget {
	w := &CanvasWidget{engine: e, paper: e.Brush().Paper}
	w.ExtendBaseWidget(w)
	return w
}

// Engine returns the drawing engine behind the widget.
func (w *CanvasWidget) Engine() *paint.Engine { return w.engine }

// frameInterval caps how often drag moves repaint the raster.
const frameInterval = time.Second / 60

func point(p fyne.Position) state.Point {
	return state.Point{X: float64(p.X), Y: float64(p.Y)}
}

// bounds is the widget's box in window coordinates.
func (w *CanvasWidget) bounds() state.Rect {
	var pos fyne.Position
	if w.origin != nil {
		pos = w.origin()
	} else {
		pos = fyne.CurrentApp().Driver().AbsolutePositionForObject(w)
	}
	size := w.Size()
	return state.Rect{
		X:      float64(pos.X),
		Y:      float64(pos.Y),
		Width:  float64(size.Width),
		Height: float64(size.Height),
	}
}

// local resolves an event against the canvas' own box, so scrolled or
// offset containers do not shift the marks.
func (w *CanvasWidget) local(ev *fyne.PointEvent) state.Point {
	return w.bounds().Local(point(ev.AbsolutePosition))
}

func (w *CanvasWidget) touch() {
	if w.OnTouch != nil {
		w.OnTouch()
	}
}

func (w *CanvasWidget) changed() {
	w.Refresh()
	if w.OnChange != nil {
		w.OnChange()
	}
}

// moved coalesces drag repaints into at most one per frame.
func (w *CanvasWidget) moved() {
	w.mu.Lock()
	if w.pending {
		w.mu.Unlock()
		return
	}
	w.pending = true
	w.mu.Unlock()

	time.AfterFunc(frameInterval, func() {
		fyne.Do(func() {
			w.changed()
			w.mu.Lock()
			w.pending = false
			w.mu.Unlock()
		})
	})
}

func (w *CanvasWidget) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	w.mu.Lock()
	w.mouse = true
	w.mu.Unlock()

	w.touch()
	w.engine.PointerDown(w.local(&ev.PointEvent))
	w.changed()
}

func (w *CanvasWidget) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	w.engine.PointerUp()
	w.changed()
}

// Tapped handles touch screens. With a mouse the gesture has already been
// drawn by MouseDown and MouseUp.
func (w *CanvasWidget) Tapped(ev *fyne.PointEvent) {
	w.mu.Lock()
	mouse := w.mouse
	w.mu.Unlock()
	if mouse {
		return
	}
	w.touch()
	p := w.local(ev)
	w.engine.Handle(paint.PointerEvent{Phase: paint.PhaseDown, Point: p})
	w.engine.Handle(paint.PointerEvent{Phase: paint.PhaseUp, Point: p})
	w.changed()
}

func (w *CanvasWidget) Dragged(ev *fyne.DragEvent) {
	w.mu.Lock()
	start := !w.mouse && !w.dragging
	w.dragging = true
	w.mu.Unlock()

	b := w.bounds()
	abs := point(ev.AbsolutePosition)
	if start {
		// Touch drags have no MouseDown; begin where the finger landed.
		w.touch()
		landed := b.Local(abs)
		landed.X -= float64(ev.Dragged.DX)
		landed.Y -= float64(ev.Dragged.DY)
		w.engine.PointerDown(landed)
	}

	if b.Empty() || !b.Contains(abs) {
		// Dragging off the canvas ends the stroke, like leaving it.
		if w.engine.Drawing() {
			w.engine.Handle(paint.PointerEvent{Phase: paint.PhaseLeave})
			w.changed()
		}
		return
	}
	w.engine.PointerMove(b.Local(abs))
	w.moved()
}

func (w *CanvasWidget) DragEnd() {
	w.mu.Lock()
	w.dragging = false
	w.mu.Unlock()
	w.engine.PointerUp()
	w.changed()
}

func (w *CanvasWidget) MouseIn(*desktop.MouseEvent)    {}
func (w *CanvasWidget) MouseMoved(*desktop.MouseEvent) {}

// MouseOut ends the stroke when the pointer leaves the canvas.
func (w *CanvasWidget) MouseOut() {
	if !w.engine.Drawing() {
		return
	}
	w.engine.Handle(paint.PointerEvent{Phase: paint.PhaseLeave})
	w.changed()
}

// SetPaper changes the overlay pattern.
func (w *CanvasWidget) SetPaper(p state.Paper) {
	w.mu.Lock()
	w.paper = p
	w.mu.Unlock()
	w.Refresh()
}

func (w *CanvasWidget) Paper() state.Paper {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.paper
}

func (w *CanvasWidget) scale() float32 {
	if c := fyne.CurrentApp().Driver().CanvasForObject(w); c != nil {
		return c.Scale()
	}
	return 1
}

func (w *CanvasWidget) CreateRenderer() fyne.WidgetRenderer {
	raster := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	raster.FillMode = canvas.ImageFillStretch
	raster.ScaleMode = canvas.ImageScaleFastest
	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.NRGBA{R: 0xE2, G: 0xE8, B: 0xF0, A: 0xFF}
	border.StrokeWidth = 4
	return &canvasWidgetRenderer{w: w, raster: raster, border: border}
}

type canvasWidgetRenderer struct {
	w       *CanvasWidget
	raster  *canvas.Image
	overlay []fyne.CanvasObject
	border  *canvas.Rectangle
	size    fyne.Size
	paper   state.Paper

	frame *image.RGBA // reused between repaints
	rev   uint64
}

func (r *canvasWidgetRenderer) Layout(size fyne.Size) {
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	if err := r.w.engine.Resize(float64(size.Width), float64(size.Height), float64(r.w.scale())); err != nil {
		fyne.LogError("canvas resize", err)
	}
	r.raster.Resize(size)
	r.border.Resize(size)
	if size != r.size {
		r.size = size
		r.overlay = paperOverlay(r.paper, size)
	}
	r.Refresh()
}

func (r *canvasWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *canvasWidgetRenderer) Refresh() {
	if p := r.w.Paper(); p != r.paper {
		r.paper = p
		r.overlay = paperOverlay(p, r.size)
	}
	if frame, rev := r.w.engine.Frame(r.frame, r.rev); frame != nil && (frame != r.frame || rev != r.rev) {
		r.frame, r.rev = frame, rev
		r.raster.Image = frame
		r.raster.Refresh()
	}
	for _, o := range r.overlay {
		o.Refresh()
	}
}

func (r *canvasWidgetRenderer) Objects() []fyne.CanvasObject {
	objects := make([]fyne.CanvasObject, 0, len(r.overlay)+2)
	objects = append(objects, r.raster)
	objects = append(objects, r.overlay...)
	return append(objects, r.border)
}

func (r *canvasWidgetRenderer) Destroy() {}
