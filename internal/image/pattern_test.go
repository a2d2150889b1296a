package image

import (
	"image"
	"testing"
)

func TestCheckerboardColorAt(t *testing.T) {
	c := DefaultCheckerboard()

	tests := []struct {
		x, y  int
		light bool
	}{
		{0, 0, true},
		{7, 7, true},
		{8, 0, false},
		{8, 8, true},
		{-1, 0, false},
		{-1, -1, true},
	}
	for _, tt := range tests {
		got := c.ColorAt(tt.x, tt.y)
		want := c.Dark
		if tt.light {
			want = c.Light
		}
		if got != want {
			t.Errorf("ColorAt(%d, %d) = %+v, want %+v", tt.x, tt.y, got, want)
		}
	}
}

func TestCheckerboardFillClipped(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	c := DefaultCheckerboard()

	c.Fill(dst, image.Rect(-5, 10, 30, 40))

	if got := dst.RGBAAt(0, 9); got.A != 0 {
		t.Errorf("pixel above fill = %+v, want untouched", got)
	}
	if got := dst.RGBAAt(19, 19); got != c.ColorAt(19, 19) {
		t.Errorf("pixel (19,19) = %+v, want %+v", got, c.ColorAt(19, 19))
	}
}
