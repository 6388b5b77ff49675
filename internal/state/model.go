package state

import (
	"image/color"
	"math"

	"BuddyStudio/internal/errors"
)

// Brush size bounds, in logical pixels.
const (
	MinBrushSize     = 2.0
	MaxBrushSize     = 80.0
	DefaultBrushSize = 15.0
	BrushStep        = 5.0
)

// Background is the opaque paper colour of every surface.
var Background = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

type Point struct{ X, Y float64 }

// Swatch is a named palette colour.
type Swatch struct {
	Name  string
	Color color.NRGBA
}

// Palette is the fixed set of colours offered to the child.
var Palette = []Swatch{
	{"Rojo", color.NRGBA{R: 0xFF, G: 0x59, B: 0x5E, A: 0xFF}},
	{"Naranja", color.NRGBA{R: 0xF9, G: 0x73, B: 0x16, A: 0xFF}},
	{"Amarillo", color.NRGBA{R: 0xFF, G: 0xCA, B: 0x3A, A: 0xFF}},
	{"Verde", color.NRGBA{R: 0x8A, G: 0xC9, B: 0x26, A: 0xFF}},
	{"Azul", color.NRGBA{R: 0x19, G: 0x82, B: 0xC4, A: 0xFF}},
	{"Morado", color.NRGBA{R: 0x6A, G: 0x4C, B: 0x93, A: 0xFF}},
	{"Rosa", color.NRGBA{R: 0xF4, G: 0x72, B: 0xB6, A: 0xFF}},
	{"Negro", color.NRGBA{R: 0x1F, G: 0x29, B: 0x37, A: 0xFF}},
}

// SwatchByName looks up a palette colour case-sensitively.
func SwatchByName(name string) (Swatch, error) {
	for _, s := range Palette {
		if s.Name == name {
			return s, nil
		}
	}
	return Swatch{}, errors.New(errors.ErrCodeInvalidInput, "unknown colour %q", name)
}

// Paper is the decorative pattern shown behind the drawing. It is never
// rasterised into the artwork.
type Paper int

const (
	Blank Paper = iota
	Grid
	Dots
)

func (p Paper) String() string {
	switch p {
	case Grid:
		return "grid"
	case Dots:
		return "dots"
	default:
		return "blank"
	}
}

// Label is the Spanish name shown on the paper button.
func (p Paper) Label() string {
	switch p {
	case Grid:
		return "Cuadrícula"
	case Dots:
		return "Puntos"
	default:
		return "Blanco"
	}
}

// Next cycles blank → grid → dots → blank.
func (p Paper) Next() Paper {
	return (p + 1) % 3
}

// ParsePaper maps "blank", "grid" or "dots" to a Paper.
func ParsePaper(s string) (Paper, error) {
	for _, p := range []Paper{Blank, Grid, Dots} {
		if p.String() == s {
			return p, nil
		}
	}
	return Blank, errors.New(errors.ErrCodeInvalidInput, "unknown paper %q", s)
}

// Brush holds the child's current colour, size and paper choice.
type Brush struct {
	Color color.NRGBA
	Size  float64
	Paper Paper
}

// DefaultBrush returns the first palette colour at the default size.
func DefaultBrush() Brush {
	return Brush{Color: Palette[0].Color, Size: DefaultBrushSize, Paper: Blank}
}

// ClampSize bounds a brush size to [MinBrushSize, MaxBrushSize].
func ClampSize(size float64) float64 {
	if math.IsNaN(size) {
		return DefaultBrushSize
	}
	return math.Max(MinBrushSize, math.Min(MaxBrushSize, size))
}
