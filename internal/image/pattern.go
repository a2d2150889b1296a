package image

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Checkerboard is a repeating two-colour grid used to show transparency
// beneath partially transparent frames.
type Checkerboard struct {
	Cell  int
	Light color.RGBA
	Dark  color.RGBA
}

// DefaultCheckerboard returns the 8 pixel white and light-gray pattern.
func DefaultCheckerboard() Checkerboard {
	return Checkerboard{
		Cell:  8,
		Light: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Dark:  color.RGBA{R: 204, G: 204, B: 204, A: 255},
	}
}

// ColorAt returns the pattern colour of pixel (x, y). The grid is anchored
// at the origin so adjacent fills line up.
func (c Checkerboard) ColorAt(x, y int) color.RGBA {
	cell := c.Cell
	if cell <= 0 {
		cell = 1
	}
	if (floorDiv(x, cell)+floorDiv(y, cell))&1 == 0 {
		return c.Light
	}
	return c.Dark
}

// Fill paints the pattern into r, clipped to dst's bounds.
func (c Checkerboard) Fill(dst draw.Image, r image.Rectangle) {
	r = r.Intersect(dst.Bounds())
	if rgba, ok := dst.(*image.RGBA); ok {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				rgba.SetRGBA(x, y, c.ColorAt(x, y))
			}
		}
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.Set(x, y, c.ColorAt(x, y))
		}
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
