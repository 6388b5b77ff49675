package ui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"BuddyStudio/internal/state"
)

// colorSwatch is a tappable palette square. The selected one gets a thick
// border.
type colorSwatch struct {
	widget.BaseWidget
	swatch   state.Swatch
	selected bool
	OnTapped func(state.Swatch)

	border *canvas.Rectangle
}

func newColorSwatch(sw state.Swatch, tapped func(state.Swatch)) *colorSwatch {
	s := &colorSwatch{swatch: sw, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.swatch.Color)
	rect.SetMinSize(fyne.NewSize(36, 36))
	rect.CornerRadius = 8

	s.border = canvas.NewRectangle(color.Transparent)
	s.border.CornerRadius = 8
	s.applyBorder()

	return widget.NewSimpleRenderer(container.NewStack(rect, s.border))
}

func (s *colorSwatch) applyBorder() {
	if s.border == nil {
		return
	}
	if s.selected {
		s.border.StrokeColor = color.NRGBA{R: 0x1F, G: 0x29, B: 0x37, A: 0xFF}
		s.border.StrokeWidth = 4
	} else {
		s.border.StrokeColor = color.Gray{Y: 200}
		s.border.StrokeWidth = 1
	}
	s.border.Refresh()
}

func (s *colorSwatch) setSelected(v bool) {
	if s.selected == v {
		return
	}
	s.selected = v
	s.applyBorder()
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.swatch)
	}
}

// Toolbar holds the drawing controls and mirrors the engine state.
type Toolbar struct {
	studio *Studio

	tools    map[string]*widget.Button
	swatches []*colorSwatch
	size     *widget.Label
	paper    *widget.Button
	finish   *widget.Button
	object   fyne.CanvasObject
}

func NewToolbar(s *Studio) *Toolbar {
	t := &Toolbar{studio: s, tools: make(map[string]*widget.Button)}

	toolBox := container.NewHBox()
	for _, tool := range state.Tools {
		b := widget.NewButton(tool.Label(), func() { s.SelectTool(tool) })
		t.tools[tool.Name()] = b
		toolBox.Add(b)
	}

	colorBox := container.NewHBox()
	for _, sw := range state.Palette {
		cs := newColorSwatch(sw, s.SelectColor)
		t.swatches = append(t.swatches, cs)
		colorBox.Add(cs)
	}

	t.size = widget.NewLabel("")
	t.paper = widget.NewButtonWithIcon("", theme.GridIcon(), s.CyclePaper)
	t.finish = widget.NewButtonWithIcon("¡Terminé!", theme.ConfirmIcon(), s.Finish)
	t.finish.Importance = widget.SuccessImportance

	t.object = container.NewHBox(
		toolBox,
		widget.NewSeparator(),
		colorBox,
		widget.NewSeparator(),
		widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), s.ShrinkBrush),
		t.size,
		widget.NewButtonWithIcon("", theme.ContentAddIcon(), s.GrowBrush),
		widget.NewSeparator(),
		t.paper,
		layout.NewSpacer(),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), s.Clear),
		widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), s.save),
		t.finish,
	)
	t.Refresh()
	return t
}

func (t *Toolbar) Object() fyne.CanvasObject { return t.object }

// Refresh copies the engine state onto the controls.
func (t *Toolbar) Refresh() {
	e := t.studio.Engine()
	active := e.Tool().Name()
	for name, b := range t.tools {
		want := widget.MediumImportance
		if name == active {
			want = widget.HighImportance
		}
		if b.Importance != want {
			b.Importance = want
			b.Refresh()
		}
	}

	brush := e.Brush()
	for _, cs := range t.swatches {
		cs.setSelected(cs.swatch.Color == brush.Color)
	}
	t.size.SetText(fmt.Sprintf("%.0f", brush.Size))
	t.paper.SetText(brush.Paper.Label())

	switch {
	case e.Finished():
		t.finish.SetText("Otro dibujo")
		t.finish.Enable()
	case e.CanFinish():
		t.finish.SetText("¡Terminé!")
		t.finish.Enable()
	default:
		t.finish.SetText("¡Terminé!")
		t.finish.Disable()
	}
}

// Finish reports the label and enabled state of the finish button.
func (t *Toolbar) Finish() (label string, enabled bool) {
	return t.finish.Text, !t.finish.Disabled()
}

// Size is the brush size shown.
func (t *Toolbar) Size() string { return t.size.Text }
