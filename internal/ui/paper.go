package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"BuddyStudio/internal/state"
)

// PaperSpacing is the distance between grid lines and dots.
const PaperSpacing = 30

var paperInk = color.NRGBA{A: 0x1A}

// paperOverlay builds the decorative pattern drawn over the artwork. It is
// display only; snapshots and exports never include it.
func paperOverlay(p state.Paper, size fyne.Size) []fyne.CanvasObject {
	var objects []fyne.CanvasObject
	switch p {
	case state.Grid:
		for x := float32(0); x <= size.Width; x += PaperSpacing {
			line := canvas.NewLine(paperInk)
			line.Position1 = fyne.NewPos(x, 0)
			line.Position2 = fyne.NewPos(x, size.Height)
			line.StrokeWidth = 1
			objects = append(objects, line)
		}
		for y := float32(0); y <= size.Height; y += PaperSpacing {
			line := canvas.NewLine(paperInk)
			line.Position1 = fyne.NewPos(0, y)
			line.Position2 = fyne.NewPos(size.Width, y)
			line.StrokeWidth = 1
			objects = append(objects, line)
		}
	case state.Dots:
		for y := float32(PaperSpacing / 2); y <= size.Height; y += PaperSpacing {
			for x := float32(PaperSpacing / 2); x <= size.Width; x += PaperSpacing {
				dot := canvas.NewCircle(paperInk)
				dot.Move(fyne.NewPos(x-1, y-1))
				dot.Resize(fyne.NewSize(2, 2))
				objects = append(objects, dot)
			}
		}
	}
	return objects
}
