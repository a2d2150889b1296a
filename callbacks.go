package hybridwall

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Layer identifies one of the three drawn layers of a hybrid image.
type Layer int

const (
	// LayerNear is the detail layer, dominant at close viewing distance.
	LayerNear Layer = iota
	// LayerFar is the coarse layer, dominant at far viewing distance.
	LayerFar
	// LayerBackground is painted under both.
	LayerBackground
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerNear:
		return "near"
	case LayerFar:
		return "far"
	case LayerBackground:
		return "background"
	default:
		return "unknown"
	}
}

// DrawFunc paints one layer. It draws in wall coordinates through the Canvas
// and may be invoked concurrently with itself (an interactive pass and an
// export can overlap), each call receiving its own Canvas.
//
// A returned error or a panic aborts the pass.
type DrawFunc func(c *Canvas) error

// DrawCallbacks supplies the content of a hybrid image.
// A nil Near or Far draws nothing; a nil Background fills white.
type DrawCallbacks struct {
	Near       DrawFunc
	Far        DrawFunc
	Background DrawFunc
}

// get returns the callback for a layer, with the white fill default for
// the background.
func (cb DrawCallbacks) get(l Layer) DrawFunc {
	switch l {
	case LayerNear:
		return cb.Near
	case LayerFar:
		return cb.Far
	case LayerBackground:
		if cb.Background == nil {
			return SolidFill(color.White)
		}
		return cb.Background
	}
	return nil
}

// Canvas is the drawing surface handed to a DrawFunc. Coordinates are wall
// pixels with the origin at the wall's top-left corner; the Canvas maps them
// into the target raster and clips to the part of the wall that is visible
// in it.
type Canvas struct {
	dst      *image.RGBA
	m        Matrix
	region   Rect
	wall     Size
	canceled func() bool
}

// newCanvas clips dst to the wall's footprint under m.
func newCanvas(dst *image.RGBA, m Matrix, wall Size, canceled func() bool) *Canvas {
	clip := m.TransformRect(Rect{W: float64(wall.W), H: float64(wall.H)}).Pixels().Intersect(dst.Rect)
	return &Canvas{
		dst:      dst.SubImage(clip).(*image.RGBA),
		m:        m,
		region:   m.Invert().TransformRect(RectFromImage(clip)),
		wall:     wall,
		canceled: canceled,
	}
}

// Region returns the part of the wall, in wall coordinates, that the target
// raster shows. Drawing outside it is clipped.
func (c *Canvas) Region() Rect { return c.region }

// Wall returns the size of the whole wall.
func (c *Canvas) Wall() Size { return c.wall }

// Scale returns raster pixels per wall pixel.
func (c *Canvas) Scale() float64 { return c.m.A }

// Bounds returns the raster pixels the wall covers.
func (c *Canvas) Bounds() image.Rectangle { return c.dst.Rect }

// Image returns the target raster, clipped to Bounds, for custom drawing.
// Pixels are premultiplied; map wall coordinates with Transform.
func (c *Canvas) Image() draw.Image { return c.dst }

// Matrix returns the wall to raster transform.
func (c *Canvas) Matrix() Matrix { return c.m }

// Transform returns the wall to raster transform in the layout used by
// golang.org/x/image/draw.
func (c *Canvas) Transform() f64.Aff3 { return c.m.Aff3() }

// Canceled reports whether the pass has been abandoned. Long-running
// callbacks may poll it and return early; their output is discarded.
func (c *Canvas) Canceled() bool {
	return c.canceled != nil && c.canceled()
}

// FillRect fills the wall rectangle r with col, blending over existing
// content.
func (c *Canvas) FillRect(r Rect, col color.Color) {
	dr := snapRect(c.m.TransformRect(r))
	if dr.Empty() {
		return
	}
	draw.Draw(c.dst, dr, image.NewUniform(col), image.Point{}, draw.Over)
}

// DrawImage draws src stretched onto the wall rectangle r. Unscaled,
// pixel-aligned draws are copied directly; everything else is resampled
// bilinearly.
func (c *Canvas) DrawImage(src image.Image, r Rect) {
	sb := src.Bounds()
	if sb.Empty() || r.Empty() {
		return
	}
	s2d := c.m.Multiply(RectToRect(RectFromImage(sb), r))

	if s2d.IsTranslationOnly() && s2d.C == math.Trunc(s2d.C) && s2d.F == math.Trunc(s2d.F) {
		dr := sb.Add(image.Pt(int(s2d.C), int(s2d.F)))
		draw.Draw(c.dst, dr, src, sb.Min, draw.Over)
		return
	}
	draw.BiLinear.Transform(c.dst, s2d.Aff3(), src, sb, draw.Over, nil)
}

// snapRect rounds a raster rectangle to whole pixels, so that adjacent wall
// rectangles share an edge instead of overlapping or leaving a seam.
func snapRect(r Rect) image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)), int(math.Round(r.Y)),
		int(math.Round(r.MaxX())), int(math.Round(r.MaxY())),
	)
}

// SolidFill returns a DrawFunc that fills the whole wall with col.
func SolidFill(col color.Color) DrawFunc {
	return func(c *Canvas) error {
		c.FillRect(c.Region(), col)
		return nil
	}
}

// ImageLayer returns a DrawFunc that draws img stretched onto the wall
// rectangle r. The image is only read, so the callback is safe for
// concurrent use.
func ImageLayer(img image.Image, r Rect) DrawFunc {
	return func(c *Canvas) error {
		c.DrawImage(img, r)
		return nil
	}
}

// CenteredRect returns the rectangle that shows an image of the given size
// at one wall pixel per image pixel, centred on the wall.
func CenteredRect(wall Size, img image.Rectangle) Rect {
	return Rect{
		X: float64((wall.W - img.Dx()) / 2),
		Y: float64((wall.H - img.Dy()) / 2),
		W: float64(img.Dx()),
		H: float64(img.Dy()),
	}
}
