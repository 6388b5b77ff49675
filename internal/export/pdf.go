package export

import (
	"bytes"
	"image"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"BuddyStudio/internal/errors"
)

// A4 landscape, in millimetres.
const (
	pageW  = 297.0
	pageH  = 210.0
	margin = 12.0
	titleH = 14.0
)

// PDF writes img as a single A4 landscape page, scaled to fit inside the
// margins and centred, with title printed above it.
func PDF(w io.Writer, img image.Image, title string) error {
	b := img.Bounds()
	if b.Empty() {
		return errors.New(errors.ErrCodeInvalidInput, "empty image")
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "encode artwork")
	}

	p := gofpdf.New("L", "mm", "A4", "")
	p.SetMargins(margin, margin, margin)
	p.SetAutoPageBreak(false, 0)
	p.SetTitle(title, true)
	p.SetCreator("Buddy Studio", true)
	p.AddPage()

	top := margin
	if title != "" {
		tr := p.UnicodeTranslatorFromDescriptor("")
		p.SetFont("Helvetica", "B", 18)
		p.SetTextColor(0x1F, 0x29, 0x37)
		p.CellFormat(pageW-2*margin, titleH, tr(title), "", 1, "C", false, 0, "")
		top += titleH
	}

	x, y, w2, h2 := fit(float64(b.Dx()), float64(b.Dy()), margin, top, pageW-2*margin, pageH-top-margin)
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader("artwork", opt, &buf)
	p.ImageOptions("artwork", x, y, w2, h2, false, opt, 0, "")

	p.SetDrawColor(0xE5, 0xE7, 0xEB)
	p.SetLineWidth(0.5)
	p.Rect(x, y, w2, h2, "D")

	if err := p.Output(w); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write pdf")
	}
	return nil
}

// SavePDF writes the PDF to path.
func SavePDF(path string, img image.Image, title string) error {
	return saveFile(path, func(w io.Writer) error { return PDF(w, img, title) })
}

// fit scales a w×h box into the area at (x0, y0) of size aw×ah, keeping the
// aspect ratio, and centres it.
func fit(w, h, x0, y0, aw, ah float64) (x, y, fw, fh float64) {
	s := min(aw/w, ah/h)
	fw, fh = w*s, h*s
	return x0 + (aw-fw)/2, y0 + (ah-fh)/2, fw, fh
}
