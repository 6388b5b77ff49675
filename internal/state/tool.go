package state

import (
	"image/color"
	"math"

	"github.com/gogpu/gg"

	"BuddyStudio/internal/errors"
)

const (
	// EraserScale widens the eraser relative to the brush so small hands
	// do not have to be precise.
	EraserScale = 4.0
	// StampScale converts brush size into stamp edge length.
	StampScale = 5.0
	// HueStep is how far the magic brush hue advances per draw call.
	HueStep = 10.0
)

// Tracer is the part of a drawing context a stamp outline is traced onto.
// *gg.Context satisfies it.
type Tracer interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	DrawCircle(x, y, r float64)
	DrawRectangle(x, y, w, h float64)
}

// Style is the paint resolved for a single rasterisation call.
type Style struct {
	Color color.NRGBA
	Width float64
}

// Tool is one of the six drawing tools. The set is closed: only types in
// this package implement it, and every variant is either Continuous or Stamp.
type Tool interface {
	Name() string
	Label() string
	tool()
}

// Continuous tools draw while the pointer is held down.
type Continuous interface {
	Tool
	StrokeStyle(b Brush, hue *HueCycle, background color.NRGBA) Style
}

// Stamp tools drop one filled shape per tap.
type Stamp interface {
	Tool
	FillStyle(b Brush) Style
	Trace(t Tracer, x, y, size float64)
}

type (
	Pencil        struct{}
	Eraser        struct{}
	Magic         struct{}
	CircleStamp   struct{}
	SquareStamp   struct{}
	TriangleStamp struct{}
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{Pencil{}, Magic{}, Eraser{}, CircleStamp{}, SquareStamp{}, TriangleStamp{}}

func (Pencil) Name() string        { return "pencil" }
func (Eraser) Name() string        { return "eraser" }
func (Magic) Name() string         { return "magic" }
func (CircleStamp) Name() string   { return "circle" }
func (SquareStamp) Name() string   { return "square" }
func (TriangleStamp) Name() string { return "triangle" }

func (Pencil) Label() string        { return "Lápiz" }
func (Eraser) Label() string        { return "Goma" }
func (Magic) Label() string         { return "Magia" }
func (CircleStamp) Label() string   { return "Círculo" }
func (SquareStamp) Label() string   { return "Cuadrado" }
func (TriangleStamp) Label() string { return "Triángulo" }

func (Pencil) tool()        {}
func (Eraser) tool()        {}
func (Magic) tool()         {}
func (CircleStamp) tool()   {}
func (SquareStamp) tool()   {}
func (TriangleStamp) tool() {}

func (Pencil) StrokeStyle(b Brush, _ *HueCycle, _ color.NRGBA) Style {
	return Style{Color: b.Color, Width: b.Size}
}

func (Eraser) StrokeStyle(b Brush, _ *HueCycle, background color.NRGBA) Style {
	return Style{Color: background, Width: b.Size * EraserScale}
}

// StrokeStyle advances the hue on every call, so each segment of a magic
// stroke gets the next colour of the rainbow.
func (Magic) StrokeStyle(b Brush, hue *HueCycle, _ color.NRGBA) Style {
	return Style{Color: hslColor(hue.Next(), 1, 0.5), Width: b.Size}
}

func (CircleStamp) FillStyle(b Brush) Style   { return stampStyle(b) }
func (SquareStamp) FillStyle(b Brush) Style   { return stampStyle(b) }
func (TriangleStamp) FillStyle(b Brush) Style { return stampStyle(b) }

func stampStyle(b Brush) Style {
	return Style{Color: b.Color, Width: b.Size * StampScale}
}

func (CircleStamp) Trace(t Tracer, x, y, size float64) {
	t.DrawCircle(x, y, size/2)
}

func (SquareStamp) Trace(t Tracer, x, y, size float64) {
	t.DrawRectangle(x-size/2, y-size/2, size, size)
}

func (TriangleStamp) Trace(t Tracer, x, y, size float64) {
	t.MoveTo(x, y-size/2)
	t.LineTo(x-size/2, y+size/2)
	t.LineTo(x+size/2, y+size/2)
	t.ClosePath()
}

// ParseTool maps a tool name to its variant.
func ParseTool(name string) (Tool, error) {
	for _, t := range Tools {
		if t.Name() == name {
			return t, nil
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown tool %q", name)
}

// HueCycle is the rotating hue behind the magic brush.
type HueCycle struct {
	deg float64
}

// Next advances the hue by HueStep and returns it in [0, 360).
func (h *HueCycle) Next() float64 {
	h.deg = math.Mod(h.deg+HueStep, 360)
	return h.deg
}

// Hue returns the last hue handed out.
func (h *HueCycle) Hue() float64 {
	return h.deg
}

func hslColor(h, s, l float64) color.NRGBA {
	return color.NRGBAModel.Convert(gg.HSL(h, s, l).Color()).(color.NRGBA)
}
