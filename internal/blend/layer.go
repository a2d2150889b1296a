package blend

import (
	"image"

	"github.com/gogpu/hybridwall/internal/parallel"
)

// Layer is a premultiplied RGBA buffer composited onto a destination with a
// blend mode and a constant opacity.
//
// Opacity multiplies the layer's own alpha: a pixel with alpha a is blended
// as if its alpha (and premultiplied colour) were a*Opacity. Opacity is
// clamped to [0, 1]; 0 makes Composite a no-op.
//
// Thread safety: Composite reads Image and writes only dst, so distinct
// destinations may be composited concurrently from the same layer.
type Layer struct {
	Image   *image.RGBA
	Mode    BlendMode
	Opacity float64

	// Offset positions the layer's top-left pixel in destination space.
	Offset image.Point
}

// NewLayer creates a source-over layer at the origin.
func NewLayer(img *image.RGBA, opacity float64) Layer {
	return Layer{Image: img, Mode: BlendSourceOver, Opacity: opacity}
}

// Bounds returns the destination rectangle the layer covers.
func (l Layer) Bounds() image.Rectangle {
	if l.Image == nil {
		return image.Rectangle{}
	}
	return image.Rect(0, 0, l.Image.Rect.Dx(), l.Image.Rect.Dy()).Add(l.Offset)
}

// Composite blends the layer onto dst, clipped to dst's bounds. Rows are
// processed in bands on pool; a nil pool means parallel.Default().
func (l Layer) Composite(dst *image.RGBA, pool *parallel.WorkerPool) {
	if l.Image == nil || dst == nil {
		return
	}
	op := opacityByte(l.Opacity)
	if op == 0 && l.Mode != BlendSource && l.Mode != BlendClear {
		return
	}
	r := l.Bounds().Intersect(dst.Rect)
	if r.Empty() {
		return
	}
	if pool == nil {
		pool = parallel.Default()
	}

	fn := GetBlendFunc(l.Mode)
	src := l.Image
	sx0 := src.Rect.Min.X + r.Min.X - l.Offset.X
	sy0 := src.Rect.Min.Y + r.Min.Y - l.Offset.Y
	width := r.Dx()

	pool.Rows(r.Dy(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			si := src.PixOffset(sx0, sy0+y)
			di := dst.PixOffset(r.Min.X, r.Min.Y+y)
			compositeRow(dst.Pix[di:di+width*4], src.Pix[si:si+width*4], op, fn)
		}
	})
}

// compositeRow blends one row of source pixels, scaled by op, onto dstRow.
func compositeRow(dstRow, srcRow []byte, op byte, fn BlendFunc) {
	for i := 0; i < len(dstRow); i += 4 {
		sr, sg, sb, sa := srcRow[i], srcRow[i+1], srcRow[i+2], srcRow[i+3]
		if op < 255 {
			sr = mulDiv255(sr, op)
			sg = mulDiv255(sg, op)
			sb = mulDiv255(sb, op)
			sa = mulDiv255(sa, op)
		}
		dstRow[i], dstRow[i+1], dstRow[i+2], dstRow[i+3] = fn(
			sr, sg, sb, sa,
			dstRow[i], dstRow[i+1], dstRow[i+2], dstRow[i+3])
	}
}
