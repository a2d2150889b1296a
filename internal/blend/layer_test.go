package blend

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/hybridwall/internal/parallel"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestLayerCompositeOpaqueExact(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))
	red := color.RGBA{R: 255, A: 255}

	NewLayer(solid(8, 8, red), 1).Composite(dst, nil)

	for y := range 8 {
		for x := range 8 {
			if c := dst.RGBAAt(x, y); c != red {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, c, red)
			}
		}
	}
}

func TestLayerCompositeZeroOpacity(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	dst := solid(4, 4, blue)

	NewLayer(solid(4, 4, color.RGBA{R: 255, A: 255}), 0).Composite(dst, nil)

	if c := dst.RGBAAt(2, 2); c != blue {
		t.Errorf("pixel = %+v, want unchanged %+v", c, blue)
	}
}

func TestLayerOpacityMultipliesAlpha(t *testing.T) {
	tests := []struct {
		name    string
		src     color.RGBA
		opacity float64
		want    color.RGBA
	}{
		{"opaque at half", color.RGBA{R: 255, A: 255}, 0.5, color.RGBA{R: 128, A: 128}},
		{"half at half", color.RGBA{R: 128, A: 128}, 0.5, color.RGBA{R: 64, A: 64}},
		{"half at full", color.RGBA{R: 128, A: 128}, 1, color.RGBA{R: 128, A: 128}},
		{"opacity above one clamps", color.RGBA{G: 255, A: 255}, 2, color.RGBA{G: 255, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
			NewLayer(solid(2, 2, tt.src), tt.opacity).Composite(dst, nil)
			if c := dst.RGBAAt(1, 1); c != tt.want {
				t.Errorf("pixel = %+v, want %+v", c, tt.want)
			}
		})
	}
}

func TestLayerCompositeOffsetClipped(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	red := color.RGBA{R: 255, A: 255}

	l := NewLayer(solid(6, 6, red), 1)
	l.Offset = image.Pt(7, -2)
	l.Composite(dst, nil)

	if c := dst.RGBAAt(8, 0); c != red {
		t.Errorf("inside pixel = %+v, want %+v", c, red)
	}
	if c := dst.RGBAAt(6, 0); c != (color.RGBA{}) {
		t.Errorf("left of layer = %+v, want transparent", c)
	}
	if c := dst.RGBAAt(8, 4); c != (color.RGBA{}) {
		t.Errorf("below layer = %+v, want transparent", c)
	}
	if got, want := l.Bounds(), image.Rect(7, -2, 13, 4); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}

func TestLayerSourceModeReplaces(t *testing.T) {
	dst := solid(3, 3, color.RGBA{B: 255, A: 255})
	half := color.RGBA{R: 100, A: 100}

	Layer{Image: solid(3, 3, half), Mode: BlendSource, Opacity: 1}.Composite(dst, nil)

	if c := dst.RGBAAt(0, 0); c != half {
		t.Errorf("pixel = %+v, want %+v", c, half)
	}
}

func TestLayerCompositeNil(t *testing.T) {
	// Should not panic
	NewLayer(nil, 1).Composite(image.NewRGBA(image.Rect(0, 0, 1, 1)), nil)
	NewLayer(solid(1, 1, color.RGBA{A: 255}), 1).Composite(nil, nil)
}

func TestLayerCompositePoolIndependent(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 37, 23))
	for i := range src.Pix {
		src.Pix[i] = byte(i * 7)
	}
	for i := 3; i < len(src.Pix); i += 4 {
		// keep premultiplied invariant: colour <= alpha
		src.Pix[i] = 255
	}

	one := parallel.NewWorkerPool(1)
	defer one.Close()
	many := parallel.NewWorkerPool(5)
	defer many.Close()

	a := solid(37, 23, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	b := solid(37, 23, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	NewLayer(src, 0.3).Composite(a, one)
	NewLayer(src, 0.3).Composite(b, many)

	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("byte %d differs: %d vs %d", i, a.Pix[i], b.Pix[i])
		}
	}
}
