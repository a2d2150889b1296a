package filter

import (
	"image"

	"github.com/gogpu/hybridwall/internal/parallel"
)

// HighPassFilter removes low spatial frequencies from an image by
// subtracting a Gaussian-blurred copy and re-centring the result on mid-gray:
//
//	out = (f + 1 - blur(f)) / 2
//
// Flat regions become 0.5 gray; edges and fine detail keep their contrast.
type HighPassFilter struct {
	// Sigma is the standard deviation of the internal blur. Sigma <= 0
	// disables the filter.
	Sigma float64

	// Transparent selects the alpha-preserving variant. The opaque variant
	// treats the input as opaque and produces an opaque result; the
	// transparent variant works on alpha-weighted colours and keeps the
	// source alpha, so transparent areas stay transparent.
	Transparent bool

	// Pool runs the filter in row bands. Nil means parallel.Default().
	Pool *parallel.WorkerPool
}

// NewHighPassFilter creates a high-pass filter from a radius expressed as
// three standard deviations.
func NewHighPassFilter(radius float64, transparent bool) *HighPassFilter {
	return &HighPassFilter{Sigma: SigmaFromRadius(radius), Transparent: transparent}
}

// Apply filters img in place. img may be a sub-image. blurred and scratch
// are working buffers with the bounds of img; nil or mismatched buffers are
// allocated.
func (f *HighPassFilter) Apply(img, blurred, scratch *image.RGBA) {
	if img == nil || f.Sigma <= 0 || img.Rect.Empty() {
		return
	}
	if blurred == nil || blurred.Rect != img.Rect {
		blurred = image.NewRGBA(img.Rect)
	}
	for y := range img.Rect.Dy() {
		copy(row(blurred, y), row(img, y))
	}

	pool := f.Pool
	if pool == nil {
		pool = parallel.Default()
	}
	(&BlurFilter{Sigma: f.Sigma, Pool: pool}).Apply(blurred, scratch)

	combine := highPassOpaque
	if f.Transparent {
		combine = highPassTransparent
	}
	pool.Rows(img.Rect.Dy(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			combine(row(img, y), row(blurred, y))
		}
	})
}

// highPassOpaque combines premultiplied channels as if they were straight
// colour and forces the result opaque.
func highPassOpaque(px, low []uint8) {
	for i := 0; i < len(px); i += 4 {
		px[i+0] = uint8((int(px[i+0]) + 255 - int(low[i+0])) / 2)
		px[i+1] = uint8((int(px[i+1]) + 255 - int(low[i+1])) / 2)
		px[i+2] = uint8((int(px[i+2]) + 255 - int(low[i+2])) / 2)
		px[i+3] = 255
	}
}

// highPassTransparent un-premultiplies both the source and the blurred copy,
// combines the straight colours and re-premultiplies with the source alpha.
// Dividing the blurred premultiplied colour by its blurred alpha yields the
// alpha-weighted local mean, so transparent neighbours do not darken edges.
func highPassTransparent(px, low []uint8) {
	for i := 0; i < len(px); i += 4 {
		a := int(px[i+3])
		if a == 0 {
			continue
		}
		la := int(low[i+3])
		for c := range 3 {
			fv := unpremul(int(px[i+c]), a)
			lv := fv
			if la > 0 {
				lv = unpremul(int(low[i+c]), la)
			}
			out := (fv + 255 - lv) / 2
			px[i+c] = uint8((out*a + 127) / 255)
		}
	}
}

// unpremul converts a premultiplied channel to straight colour in [0, 255].
func unpremul(v, a int) int {
	if a >= 255 {
		return v
	}
	s := (v*255 + a/2) / a
	if s > 255 {
		return 255
	}
	return s
}
