package hybridwall

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitToSizeIdempotent(t *testing.T) {
	sizes := []Size{{500, 250}, {640, 480}, {300, 900}, {1, 1}}
	for _, s := range sizes {
		v := NewViewport(Size{W: 1000, H: 500}, Size{W: 10, H: 10})
		v.Pan(13, -7)
		first := v.FitToSize(s)
		second := v.FitToSize(s)
		assert.Equal(t, first, second, "FitToSize(%v) twice", s)
		assert.True(t, second.Autofit)
	}
}

func TestFitLetterboxes(t *testing.T) {
	tests := []struct {
		name   string
		window Size
		want   Rect
	}{
		{"exact aspect", Size{500, 250}, Rect{0, 0, 500, 250}},
		{"tall window", Size{500, 500}, Rect{0, 125, 500, 250}},
		{"wide window", Size{1000, 250}, Rect{250, 0, 500, 250}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewViewport(Size{W: 1000, H: 500}, tt.window).State()
			if s.Bounds != tt.want {
				t.Errorf("Bounds = %+v, want %+v", s.Bounds, tt.want)
			}
		})
	}
}

func TestWallWindowRoundTrip(t *testing.T) {
	v := NewViewport(Size{W: 20480, H: 6400}, Size{W: 1280, H: 640})
	anchor := Pt(400, 300)
	steps := []func(){
		func() { v.Pan(35, -12) },
		func() { v.ZoomBy(3.7, anchor) },
		func() { v.Wheel(-15, Pt(10, 600)) },
		func() { v.Click(Pt(640, 320)) },
		func() { v.Pan(-1000.5, 77.25) },
		func() { v.ZoomBy(0.01, anchor) },
	}

	for i, step := range steps {
		step()
		s := v.State()
		for _, p := range []Point{{0, 0}, {1, 1}, {20479, 6399}, {10240.5, 3200.25}, {777, 42}} {
			got := s.WindowToWall(s.WallToWindow(p))
			if math.Abs(got.X-p.X) > 1e-6 || math.Abs(got.Y-p.Y) > 1e-6 {
				t.Errorf("step %d: WindowToWall(WallToWindow(%v)) = %v", i, p, got)
			}
		}
	}
}

func TestClickToggle(t *testing.T) {
	v := NewViewport(Size{W: 1000, H: 500}, Size{W: 500, H: 250})
	require.Equal(t, 500.0, v.State().Bounds.W)

	s := v.Click(Pt(100, 50))
	assert.Equal(t, 1000.0, s.Bounds.W)
	assert.False(t, s.Autofit)
	// The clicked wall pixel stays under the cursor.
	assert.Equal(t, Pt(200, 100), s.WindowToWall(Pt(100, 50)))

	s = v.Click(Pt(480, 10))
	assert.Equal(t, 500.0, s.Bounds.W)
	assert.True(t, s.Autofit)
}

func TestWheelKeepsAnchor(t *testing.T) {
	v := NewViewport(Size{W: 1000, H: 500}, Size{W: 500, H: 250})
	anchor := Pt(123, 45)
	before := v.State().WindowToWall(anchor)

	s := v.Wheel(10, anchor)

	assert.InDelta(t, 500*math.Pow(WheelStep, 10), s.Bounds.W, 1e-9)
	after := s.WindowToWall(anchor)
	assert.InDelta(t, before.X, after.X, 1e-9)
	assert.InDelta(t, before.Y, after.Y, 1e-9)
}

func TestZoomNeverDegenerates(t *testing.T) {
	v := NewViewport(Size{W: 1000, H: 500}, Size{W: 500, H: 250})
	for range 50 {
		v.ZoomBy(0.001, Pt(10, 10))
	}
	s := v.State()
	assert.GreaterOrEqual(t, s.Bounds.W, minBoundsSize)
	assert.GreaterOrEqual(t, s.Bounds.H, minBoundsSize)
	assert.True(t, s.Renderable())

	// Invalid factors are ignored.
	v.ZoomBy(0, Pt(0, 0))
	v.ZoomBy(math.NaN(), Pt(0, 0))
	v.ZoomBy(math.Inf(1), Pt(0, 0))
	assert.Equal(t, s, v.State())
}

func TestResizeRefitsOnlyWithAutofit(t *testing.T) {
	v := NewViewport(Size{W: 1000, H: 500}, Size{W: 500, H: 250})

	s := v.Resize(Size{W: 200, H: 100})
	assert.Equal(t, Rect{0, 0, 200, 100}, s.Bounds)

	v.Pan(5, 5)
	s = v.Resize(Size{W: 800, H: 400})
	assert.False(t, s.Autofit)
	assert.Equal(t, Rect{5, 5, 200, 100}, s.Bounds)
	assert.Equal(t, Size{W: 800, H: 400}, s.Window)
}

func TestVisibleWall(t *testing.T) {
	v := NewViewport(Size{W: 1000, H: 500}, Size{W: 500, H: 250})
	s := v.ZoomToRect(300, 200, 0, 0)
	assert.Equal(t, Rect{300, 200, 500, 250}, s.VisibleWall())
	assert.Equal(t, 1.0, s.Scale())
}

func TestRenderable(t *testing.T) {
	assert.False(t, NewViewport(Size{W: 1000, H: 500}, Size{}).State().Renderable())
	assert.True(t, NewViewport(Size{W: 1000, H: 500}, Size{W: 2, H: 1}).State().Renderable())
}
