package filter

import (
	"image"
	"math"

	"github.com/gogpu/hybridwall/internal/parallel"
)

// CurveFilter applies a brightness-then-contrast transfer curve to the colour
// channels of a premultiplied RGBA image. With channels normalized to [0, 1]:
//
//	f' = clamp(((f * Brightness - 0.5) * Contrast) + 0.5)
//
// The curve is evaluated on straight (un-premultiplied) colour; alpha is left
// unchanged. Brightness = 1 and Contrast = 1 is the identity.
type CurveFilter struct {
	Brightness float64
	Contrast   float64

	// Pool runs the filter in row bands. Nil means parallel.Default().
	Pool *parallel.WorkerPool
}

// NewCurveFilter creates a curve filter.
func NewCurveFilter(brightness, contrast float64) *CurveFilter {
	return &CurveFilter{Brightness: brightness, Contrast: contrast}
}

// IsIdentity reports whether the curve leaves every channel unchanged.
func (f *CurveFilter) IsIdentity() bool {
	return f.Brightness == 1 && f.Contrast == 1
}

// Table returns the 256-entry lookup table of the curve.
func (f *CurveFilter) Table() [256]uint8 {
	var lut [256]uint8
	for v := range 256 {
		x := float64(v) / 255
		x = (x*f.Brightness-0.5)*f.Contrast + 0.5
		lut[v] = uint8(math.Round(clamp01(x) * 255))
	}
	return lut
}

// Apply transforms img in place. img may be a sub-image.
func (f *CurveFilter) Apply(img *image.RGBA) {
	if img == nil || img.Rect.Empty() || f.IsIdentity() {
		return
	}
	lut := f.Table()

	pool := f.Pool
	if pool == nil {
		pool = parallel.Default()
	}
	pool.Rows(img.Rect.Dy(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			applyCurveRow(row(img, y), &lut)
		}
	})
}

func applyCurveRow(px []uint8, lut *[256]uint8) {
	for i := 0; i < len(px); i += 4 {
		a := int(px[i+3])
		switch a {
		case 0:
			continue
		case 255:
			px[i+0] = lut[px[i+0]]
			px[i+1] = lut[px[i+1]]
			px[i+2] = lut[px[i+2]]
		default:
			for c := range 3 {
				s := lut[unpremul(int(px[i+c]), a)]
				px[i+c] = uint8((int(s)*a + 127) / 255)
			}
		}
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
