// Package canvas turns pointer gestures into raster marks on a single
// drawing surface.
//
// The surface is raster only: a stroke or stamp is rasterised the moment it
// happens and cannot be edited or removed afterwards, except by clearing the
// whole surface. Coordinates passed in are logical (container) pixels; the
// backing store is allocated at logical size × device pixel ratio.
package canvas

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"

	"BuddyStudio/internal/errors"
	"BuddyStudio/internal/state"
)

// Surface is an opaque raster backing store.
type Surface struct {
	dc         *gg.Context
	width      float64
	height     float64
	dpr        float64
	background color.NRGBA
	rev        uint64
}

// NewSurface creates an unsized surface. Nothing can be drawn until the
// first Resize.
func NewSurface(background color.NRGBA) *Surface {
	background.A = 0xFF
	return &Surface{background: background, dpr: 1}
}

func errNoSurface() error {
	return errors.New(errors.ErrCodeSurface, "surface has no backing store")
}

// Resize (re)allocates the backing store for a container of width × height
// logical pixels at the given device pixel ratio. Existing artwork is scaled
// onto the new store so a window resize never loses the drawing.
func (s *Surface) Resize(width, height, dpr float64) error {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid surface size %vx%v", width, height)
	}
	if !(dpr > 0) || math.IsInf(dpr, 0) {
		dpr = 1
	}

	pw := max(1, int(math.Round(width*dpr)))
	ph := max(1, int(math.Round(height*dpr)))

	s.width, s.height, s.dpr = width, height, dpr
	if s.dc != nil && s.dc.Width() == pw && s.dc.Height() == ph {
		return nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, pw, ph))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(s.background), image.Point{}, xdraw.Src)
	if s.dc != nil {
		old := s.dc.Image()
		xdraw.BiLinear.Scale(dst, dst.Bounds(), old, old.Bounds(), xdraw.Over, nil)
		_ = s.dc.Close()
	}
	s.dc = gg.NewContextForImage(dst)
	s.rev++
	return nil
}

// Ready reports whether the surface has a backing store.
func (s *Surface) Ready() bool {
	return s.dc != nil
}

// Size returns the logical size.
func (s *Surface) Size() (width, height float64) {
	return s.width, s.height
}

// DPR returns the device pixel ratio in use.
func (s *Surface) DPR() float64 {
	return s.dpr
}

// PhysicalSize returns the backing store size in device pixels.
func (s *Surface) PhysicalSize() (width, height int) {
	if s.dc == nil {
		return 0, 0
	}
	return s.dc.Width(), s.dc.Height()
}

// Background returns the paper colour.
func (s *Surface) Background() color.NRGBA {
	return s.background
}

// Clear refills the whole surface with the background colour.
func (s *Surface) Clear() error {
	if s.dc == nil {
		return errNoSurface()
	}
	s.dc.ClearWithColor(gg.FromColor(s.background))
	s.rev++
	return nil
}

// Dot paints a filled disc the width of st at p. It is what a round-capped
// zero-length segment looks like, so a tap without a drag is visible.
func (s *Surface) Dot(p state.Point, st state.Style) error {
	if s.dc == nil {
		return errNoSurface()
	}
	s.dc.SetColor(st.Color)
	s.dc.DrawCircle(p.X*s.dpr, p.Y*s.dpr, st.Width*s.dpr/2)
	s.rev++
	return s.dc.Fill()
}

// Segment strokes a round-capped line from one point to another.
func (s *Surface) Segment(from, to state.Point, st state.Style) error {
	if s.dc == nil {
		return errNoSurface()
	}
	s.dc.SetColor(st.Color)
	s.dc.SetLineWidth(st.Width * s.dpr)
	s.dc.SetLineCap(gg.LineCapRound)
	s.dc.SetLineJoin(gg.LineJoinRound)
	s.dc.MoveTo(from.X*s.dpr, from.Y*s.dpr)
	s.dc.LineTo(to.X*s.dpr, to.Y*s.dpr)
	s.rev++
	return s.dc.Stroke()
}

// Stamp fills the stamp's outline centred at p.
func (s *Surface) Stamp(stamp state.Stamp, p state.Point, st state.Style) error {
	if s.dc == nil {
		return errNoSurface()
	}
	s.dc.SetColor(st.Color)
	stamp.Trace(s.dc, p.X*s.dpr, p.Y*s.dpr, st.Width*s.dpr)
	s.rev++
	return s.dc.Fill()
}

// PixelAt returns the colour under a logical point.
func (s *Surface) PixelAt(p state.Point) color.NRGBA {
	if s.dc == nil {
		return color.NRGBA{}
	}
	x := int(math.Floor(p.X * s.dpr))
	y := int(math.Floor(p.Y * s.dpr))
	return color.NRGBAModel.Convert(s.dc.ResizeTarget().GetPixel(x, y).Color()).(color.NRGBA)
}

// Snapshot returns a copy of the backing store. The surface is not changed.
func (s *Surface) Snapshot() *image.RGBA {
	if s.dc == nil {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	img := s.dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(img.Bounds())
	xdraw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, xdraw.Src)
	return rgba
}

// Revision increases whenever the pixels may have changed.
func (s *Surface) Revision() uint64 {
	return s.rev
}

// CopyInto copies the backing store into dst in place and returns it. dst is
// reallocated only when it is nil or its size differs. An unsized surface
// returns dst untouched.
func (s *Surface) CopyInto(dst *image.RGBA) *image.RGBA {
	if s.dc == nil {
		return dst
	}
	pm := s.dc.ResizeTarget()
	r := image.Rect(0, 0, pm.Width(), pm.Height())
	if dst == nil || dst.Rect != r {
		dst = image.NewRGBA(r)
	}
	copy(dst.Pix, pm.Data())
	return dst
}

// EncodePNG writes the current artwork as PNG.
func (s *Surface) EncodePNG(w io.Writer) error {
	if s.dc == nil {
		return errNoSurface()
	}
	if err := png.Encode(w, s.Snapshot()); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode png")
	}
	return nil
}
