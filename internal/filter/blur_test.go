package filter

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/hybridwall/internal/parallel"
)

func TestNewBlurFilter(t *testing.T) {
	f := NewBlurFilter(15)

	if f.Sigma != 5 {
		t.Errorf("Sigma = %v, want 5 (radius 15 / 3)", f.Sigma)
	}
}

func TestBlurFilterApplyZeroSigma(t *testing.T) {
	img := createTestImage(10, 10, red)
	img.SetRGBA(3, 3, white)

	(&BlurFilter{Sigma: 0}).Apply(img, nil)
	(&BlurFilter{Sigma: -4}).Apply(img, nil)

	if got := img.RGBAAt(3, 3); got != white {
		t.Errorf("pixel (3,3) = %+v, want unchanged white", got)
	}
	if got := img.RGBAAt(4, 4); got != red {
		t.Errorf("pixel (4,4) = %+v, want unchanged red", got)
	}
}

func TestBlurFilterApplyNilImage(t *testing.T) {
	f := NewBlurFilter(5)

	// Should not panic
	f.Apply(nil, nil)
	f.Apply(image.NewRGBA(image.Rect(0, 0, 0, 0)), nil)
}

func TestBlurFilterApplySmallImage(t *testing.T) {
	img := createTestImage(5, 5, black)
	img.SetRGBA(2, 2, white)

	(&BlurFilter{Sigma: 1}).Apply(img, nil)

	center := img.RGBAAt(2, 2)
	if center.R == 255 || center.R == 0 {
		t.Errorf("center pixel should be partially blurred, got R=%d", center.R)
	}
	if adj := img.RGBAAt(2, 1); adj.R == 0 {
		t.Error("blur should spread to adjacent pixels")
	}
}

func TestBlurFilterApplyPreservesUniformAlpha(t *testing.T) {
	half := color.RGBA{R: 128, A: 128}
	img := createTestImage(10, 10, half)

	(&BlurFilter{Sigma: 2}).Apply(img, nil)

	for y := range 10 {
		for x := range 10 {
			if c := img.RGBAAt(x, y); !channelsApproxEqual(c, half, 1) {
				t.Fatalf("pixel (%d,%d) = %+v, want ~%+v", x, y, c, half)
			}
		}
	}
}

func TestBlurFilterApplyEdgeHandling(t *testing.T) {
	img := createTestImage(20, 20, white)

	(&BlurFilter{Sigma: 5}).Apply(img, nil)

	// Edge extension keeps a uniform image uniform.
	for y := range 20 {
		for x := range 20 {
			if c := img.RGBAAt(x, y); !channelsApproxEqual(c, white, 1) {
				t.Fatalf("pixel (%d,%d) = %+v, expected white (uniform blur)", x, y, c)
			}
		}
	}
}

func TestBlurFilterSpreadsAlongBothAxes(t *testing.T) {
	img := createTestImage(21, 21, color.RGBA{})
	img.SetRGBA(10, 10, white)

	(&BlurFilter{Sigma: 2}).Apply(img, image.NewRGBA(img.Rect))

	right := img.RGBAAt(12, 10)
	below := img.RGBAAt(10, 12)
	if right.A == 0 || below.A == 0 {
		t.Fatalf("blur did not spread: right=%+v below=%+v", right, below)
	}
	if !channelsApproxEqual(right, below, 1) {
		t.Errorf("blur is anisotropic: right=%+v below=%+v", right, below)
	}
	if far := img.RGBAAt(0, 0); far.A != 0 {
		t.Errorf("pixel beyond 3 sigma should stay transparent, got %+v", far)
	}
}

func TestBlurFilterPoolIndependent(t *testing.T) {
	build := func() *image.RGBA {
		img := createTestImage(33, 17, black)
		for x := 0; x < 33; x += 4 {
			img.SetRGBA(x, x%17, white)
		}
		return img
	}

	single := parallel.NewWorkerPool(1)
	defer single.Close()
	many := parallel.NewWorkerPool(7)
	defer many.Close()

	a, b := build(), build()
	(&BlurFilter{Sigma: 1.5, Pool: single}).Apply(a, nil)
	(&BlurFilter{Sigma: 1.5, Pool: many}).Apply(b, nil)

	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("byte %d differs between pool sizes: %d vs %d", i, a.Pix[i], b.Pix[i])
		}
	}
}

func BenchmarkBlurFilter(b *testing.B) {
	img := createTestImage(512, 512, gray)
	scratch := image.NewRGBA(img.Rect)

	for _, sigma := range []float64{1, 5, 10} {
		b.Run("sigma="+formatFloat(sigma), func(b *testing.B) {
			f := &BlurFilter{Sigma: sigma}
			for i := 0; i < b.N; i++ {
				f.Apply(img, scratch)
			}
		})
	}
}

func TestBlurFilterSubImage(t *testing.T) {
	img := createTestImage(20, 20, black)
	for y := range 20 {
		for x := 10; x < 20; x++ {
			img.SetRGBA(x, y, white)
		}
	}
	sub := img.SubImage(image.Rect(4, 4, 16, 16)).(*image.RGBA)

	(&BlurFilter{Sigma: 2}).Apply(sub, nil)

	if c := img.RGBAAt(19, 2); c != white {
		t.Errorf("pixel outside sub-image = %+v, want untouched white", c)
	}
	if c := img.RGBAAt(2, 10); c != black {
		t.Errorf("pixel outside sub-image = %+v, want untouched black", c)
	}
	if c := img.RGBAAt(10, 10); c.R == 255 || c.R == 0 {
		t.Errorf("edge inside sub-image should blur, got R=%d", c.R)
	}
}
