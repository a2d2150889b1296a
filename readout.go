package hybridwall

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Overlay text is set in Go Regular at this size.
const overlayFontSize = 14

var (
	readoutBox  = color.RGBA{R: 64, G: 64, B: 64, A: 255}
	readoutText = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// readoutReference sizes the box so it does not jitter as values change.
const readoutReference = "hipassBrightness: xxx.xxx"

var parsedOverlayFont = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// overlayFace returns a face for overlay text and its release function.
// Faces cache glyphs and are not safe for concurrent use, so each drawing
// call opens its own. Falls back to the built-in bitmap face.
func overlayFace() (font.Face, func()) {
	f, err := parsedOverlayFont()
	if err == nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{
			Size:    overlayFontSize,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			return face, func() { _ = face.Close() }
		}
	}
	return basicfont.Face7x13, func() {}
}

// readoutPrinter formats parameter values with grouping separators.
var readoutPrinter = message.NewPrinter(language.English)

// formatReadout renders one readout line.
func formatReadout(e ReadoutEntry) string {
	return readoutPrinter.Sprintf("%s: %v", e.Label, e.Value)
}

// drawReadout paints the diagnostic parameter box at the top-left of dst.
// The first entry is on the bottom line.
func drawReadout(dst draw.Image, p RenderParameters) {
	face, done := overlayFace()
	defer done()

	entries := p.Readout()
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	boxHeight := lineHeight*len(entries) + 10
	boxWidth := font.MeasureString(face, readoutReference).Ceil() + 20

	origin := dst.Bounds().Min
	box := image.Rect(0, 0, boxWidth, boxHeight).Add(origin)
	draw.Draw(dst, box, image.NewUniform(readoutBox), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(readoutText), Face: face}
	baseline := boxHeight - 5 - metrics.Descent.Ceil()
	for _, e := range entries {
		d.Dot = fixed.P(origin.X+10, origin.Y+baseline)
		d.DrawString(formatReadout(e))
		baseline -= lineHeight
	}
}

// drawBadge paints a small text label with its bottom-right corner at
// (right, bottom).
func drawBadge(dst draw.Image, text string, right, bottom int, fg, bg, border color.Color) {
	face, done := overlayFace()
	defer done()

	const pad = 4
	metrics := face.Metrics()
	w := font.MeasureString(face, text).Ceil()
	h := (metrics.Ascent + metrics.Descent).Ceil()

	box := image.Rect(right-w-2*pad, bottom-h-2*pad, right, bottom)
	draw.Draw(dst, box, image.NewUniform(bg), image.Point{}, draw.Over)
	strokeRect(dst, box, 1, border)

	d := &font.Drawer{Dst: dst, Src: image.NewUniform(fg), Face: face}
	d.Dot = fixed.P(box.Min.X+pad, box.Max.Y-pad-metrics.Descent.Ceil())
	d.DrawString(text)
}

// strokeRect outlines r with a band of the given width centred on its
// edges.
func strokeRect(dst draw.Image, r image.Rectangle, width int, col color.Color) {
	if width <= 0 {
		return
	}
	lo := width / 2
	hi := width - lo
	src := image.NewUniform(col)
	edges := [...]image.Rectangle{
		image.Rect(r.Min.X-lo, r.Min.Y-lo, r.Max.X+hi, r.Min.Y+hi), // top
		image.Rect(r.Min.X-lo, r.Max.Y-lo, r.Max.X+hi, r.Max.Y+hi), // bottom
		image.Rect(r.Min.X-lo, r.Min.Y+hi, r.Min.X+hi, r.Max.Y-lo), // left
		image.Rect(r.Max.X-lo, r.Min.Y+hi, r.Max.X+hi, r.Max.Y-lo), // right
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Over)
	}
}
