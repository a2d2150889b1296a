package filter

import (
	"image"

	"github.com/gogpu/hybridwall/internal/parallel"
)

// BlurFilter applies a separable Gaussian blur to a premultiplied RGBA image.
// The separable algorithm processes horizontal and vertical passes
// independently, achieving O(w*h*(2k)) instead of O(w*h*k²) for a kernel of
// length k.
type BlurFilter struct {
	// Sigma is the standard deviation in pixels. Sigma <= 0 disables the blur.
	Sigma float64

	// Pool runs the passes in row bands. Nil means parallel.Default().
	Pool *parallel.WorkerPool
}

// NewBlurFilter creates a blur filter from a radius expressed as three
// standard deviations.
func NewBlurFilter(radius float64) *BlurFilter {
	return &BlurFilter{Sigma: SigmaFromRadius(radius)}
}

// Apply blurs img in place. img may be a sub-image; pixels outside its
// bounds are neither read nor written. scratch receives the intermediate horizontal pass
// and must have the same bounds as img; if it is nil or mismatched a
// temporary buffer is allocated.
func (f *BlurFilter) Apply(img, scratch *image.RGBA) {
	if img == nil || f.Sigma <= 0 || img.Rect.Empty() {
		return
	}
	if scratch == nil || scratch.Rect != img.Rect {
		scratch = image.NewRGBA(img.Rect)
	}

	kernel := CachedGaussianKernel(f.Sigma)
	if len(kernel) == 1 {
		return
	}

	pool := f.Pool
	if pool == nil {
		pool = parallel.Default()
	}

	height := img.Rect.Dy()
	pool.Rows(height, func(y0, y1 int) {
		blurHorizontal(img, scratch, y0, y1, kernel)
	})
	pool.Rows(height, func(y0, y1 int) {
		blurVertical(scratch, img, y0, y1, kernel)
	})
}

// blurHorizontal convolves rows [y0, y1) of src along x into dst.
// Reads past the image edge clamp to the edge pixel.
func blurHorizontal(src, dst *image.RGBA, y0, y1 int, kernel []float32) {
	width := src.Rect.Dx()
	half := len(kernel) / 2

	for y := y0; y < y1; y++ {
		srcRow := row(src, y)
		dstRow := row(dst, y)

		for x := range width {
			var r, g, b, a float32
			for k, weight := range kernel {
				kx := x + k - half
				if kx < 0 {
					kx = 0
				} else if kx >= width {
					kx = width - 1
				}
				i := kx * 4
				r += float32(srcRow[i+0]) * weight
				g += float32(srcRow[i+1]) * weight
				b += float32(srcRow[i+2]) * weight
				a += float32(srcRow[i+3]) * weight
			}
			i := x * 4
			dstRow[i+0] = clampUint8(r)
			dstRow[i+1] = clampUint8(g)
			dstRow[i+2] = clampUint8(b)
			dstRow[i+3] = clampUint8(a)
		}
	}
}

// blurVertical convolves rows [y0, y1) of dst from src along y.
// src must not alias dst.
func blurVertical(src, dst *image.RGBA, y0, y1 int, kernel []float32) {
	width := src.Rect.Dx()
	height := src.Rect.Dy()
	half := len(kernel) / 2
	acc := make([]float32, width*4)

	for y := y0; y < y1; y++ {
		clear(acc)
		for k, weight := range kernel {
			ky := y + k - half
			if ky < 0 {
				ky = 0
			} else if ky >= height {
				ky = height - 1
			}
			for i, v := range row(src, ky) {
				acc[i] += float32(v) * weight
			}
		}

		dstRow := row(dst, y)
		for i, v := range acc {
			dstRow[i] = clampUint8(v)
		}
	}
}

// row returns the pixels of row y, counted from the top of img's bounds.
func row(img *image.RGBA, y int) []uint8 {
	i := img.PixOffset(img.Rect.Min.X, img.Rect.Min.Y+y)
	return img.Pix[i : i+img.Rect.Dx()*4]
}

// clampUint8 clamps a float32 to [0, 255] and converts to uint8.
func clampUint8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
