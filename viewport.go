package hybridwall

import (
	"math"
	"sync"
)

// WheelStep is the zoom factor applied per wheel notch.
const WheelStep = 1.02

// minBoundsSize is the smallest on-screen wall size a zoom may produce.
const minBoundsSize = 1.0

// ViewportState maps the wall into a window. Bounds is the rectangle, in
// window pixels, that the whole wall occupies; it may extend past the window
// when zoomed in. Autofit keeps the wall letterboxed in the window across
// resizes.
type ViewportState struct {
	Bounds  Rect
	Autofit bool
	Window  Size
	Wall    Size
}

// Scale returns window pixels per wall pixel along x.
func (s ViewportState) Scale() float64 {
	if s.Wall.W == 0 {
		return 0
	}
	return s.Bounds.W / float64(s.Wall.W)
}

// WallToWindow maps a wall point to window coordinates.
func (s ViewportState) WallToWindow(p Point) Point {
	return Point{
		X: p.X*s.Bounds.W/float64(s.Wall.W) + s.Bounds.X,
		Y: p.Y*s.Bounds.H/float64(s.Wall.H) + s.Bounds.Y,
	}
}

// WindowToWall maps a window point to wall coordinates.
func (s ViewportState) WindowToWall(p Point) Point {
	return Point{
		X: (p.X - s.Bounds.X) / s.Bounds.W * float64(s.Wall.W),
		Y: (p.Y - s.Bounds.Y) / s.Bounds.H * float64(s.Wall.H),
	}
}

// Transform returns the wall to window transform.
func (s ViewportState) Transform() Matrix {
	return RectToRect(Rect{W: float64(s.Wall.W), H: float64(s.Wall.H)}, s.Bounds)
}

// VisibleWall returns the part of wall space covered by the window,
// including area beyond the wall edges.
func (s ViewportState) VisibleWall() Rect {
	p0 := s.WindowToWall(Point{})
	p1 := s.WindowToWall(Point{X: float64(s.Window.W), Y: float64(s.Window.H)})
	return Rect{X: p0.X, Y: p0.Y, W: p1.X - p0.X, H: p1.Y - p0.Y}
}

// Renderable reports whether a pass can run for this state: a non-empty
// window, a non-empty wall and non-degenerate bounds.
func (s ViewportState) Renderable() bool {
	return !s.Window.Empty() && !s.Wall.Empty() && s.Bounds.W >= minBoundsSize && s.Bounds.H >= minBoundsSize
}

// fit letterboxes the wall in the window, preserving its aspect ratio.
func (s ViewportState) fit() Rect {
	ww, wh := float64(s.Wall.W), float64(s.Wall.H)
	dw, dh := math.Max(float64(s.Window.W), minBoundsSize), math.Max(float64(s.Window.H), minBoundsSize)
	sx, sy := dw/ww, dh/wh
	if sx < sy {
		return Rect{X: 0, Y: (dh - wh*sx) / 2, W: dw, H: wh * sx}
	}
	return Rect{X: (dw - ww*sy) / 2, Y: 0, W: ww * sy, H: dh}
}

// Viewport is the mutable, mutex-guarded view of the wall in a window.
// Every operation keeps Bounds non-degenerate. Readers take value snapshots
// with State.
type Viewport struct {
	mu sync.Mutex
	s  ViewportState
}

// NewViewport creates a viewport fitting wall into window.
func NewViewport(wall, window Size) *Viewport {
	v := &Viewport{s: ViewportState{Wall: wall, Window: window, Autofit: true}}
	if !wall.Empty() {
		v.s.Bounds = v.s.fit()
	}
	return v
}

// State returns a snapshot of the viewport.
func (v *Viewport) State() ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.s
}

// FitToSize sets the window size and letterboxes the wall in it. Autofit is
// turned on. Fitting twice with the same size yields the same state.
func (v *Viewport) FitToSize(size Size) ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.s.Window = size
	v.s.Autofit = true
	v.s.Bounds = v.s.fit()
	return v.s
}

// Resize changes the window size, refitting when Autofit is on.
func (v *Viewport) Resize(size Size) ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.s.Window = size
	if v.s.Autofit {
		v.s.Bounds = v.s.fit()
	}
	return v.s
}

// SetWall replaces the wall size and refits the wall in the window.
func (v *Viewport) SetWall(wall Size) ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.s.Wall = wall
	v.s.Bounds = v.s.fit()
	return v.s
}

// ZoomToRect shows the wall at 1:1 with wall point (wallX, wallY) under
// window point (winX, winY). Autofit is turned off.
func (v *Viewport) ZoomToRect(wallX, wallY, winX, winY float64) ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoomToRect(wallX, wallY, winX, winY)
	return v.s
}

func (v *Viewport) zoomToRect(wallX, wallY, winX, winY float64) {
	v.s.Autofit = false
	v.s.Bounds = Rect{
		X: winX - wallX,
		Y: winY - wallY,
		W: float64(v.s.Wall.W),
		H: float64(v.s.Wall.H),
	}
}

// ZoomToSize resizes the on-screen wall to w x h window pixels keeping the
// wall point under anchor fixed. Sizes below one pixel are scaled up
// uniformly. Autofit is turned off.
func (v *Viewport) ZoomToSize(w, h float64, anchor Point) ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoomToSize(w, h, anchor)
	return v.s
}

func (v *Viewport) zoomToSize(w, h float64, anchor Point) {
	if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return
	}
	if w < minBoundsSize || h < minBoundsSize {
		k := math.Max(minBoundsSize/w, minBoundsSize/h)
		w, h = w*k, h*k
	}
	wallPt := v.s.WindowToWall(anchor)
	v.s.Autofit = false
	v.s.Bounds.W, v.s.Bounds.H = w, h
	v.s.Bounds.X, v.s.Bounds.Y = 0, 0
	moved := v.s.WallToWindow(wallPt)
	v.s.Bounds.X = anchor.X - moved.X
	v.s.Bounds.Y = anchor.Y - moved.Y
}

// ZoomBy scales the on-screen wall by factor around a window anchor.
func (v *Viewport) ZoomBy(factor float64, anchor Point) ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoomToSize(v.s.Bounds.W*factor, v.s.Bounds.H*factor, anchor)
	return v.s
}

// Wheel zooms by WheelStep^rotation around a window anchor.
func (v *Viewport) Wheel(rotation float64, anchor Point) ViewportState {
	return v.ZoomBy(WheelFactor(rotation), anchor)
}

// WheelFactor returns the zoom factor for a wheel rotation.
func WheelFactor(rotation float64) float64 {
	return math.Pow(WheelStep, rotation)
}

// Pan moves the on-screen wall by (dx, dy) window pixels.
func (v *Viewport) Pan(dx, dy float64) ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.s.Autofit = false
	v.s.Bounds.X += dx
	v.s.Bounds.Y += dy
	return v.s
}

// Click toggles between the fitted view and 1:1. When the wall is already
// shown at 1:1 the click fits it to the window; otherwise it zooms to 1:1
// with the clicked wall pixel under the cursor.
func (v *Viewport) Click(p Point) ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.s.Bounds.W == float64(v.s.Wall.W) {
		v.s.Autofit = true
		v.s.Bounds = v.s.fit()
		return v.s
	}
	w := v.s.WindowToWall(p)
	v.zoomToRect(math.Trunc(w.X), math.Trunc(w.Y), p.X, p.Y)
	return v.s
}
