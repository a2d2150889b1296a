package hybridwall

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets(t *testing.T) {
	for _, name := range PresetNames() {
		g, ok := Preset(name)
		require.True(t, ok, name)
		assert.NoError(t, g.Validate(), name)
		assert.Equal(t, DefaultViewerDistance, g.ViewerDistance, name)
	}

	g, ok := Preset("WILD")
	require.True(t, ok)
	assert.Equal(t, 2560, g.TileXResolution())
	assert.Equal(t, 1600, g.TileYResolution())
	assert.InDelta(t, 5.12, g.MetricWidth(), 1e-9)

	_, ok = Preset("cave")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*WallGeometry)
	}{
		{"zero width", func(g *WallGeometry) { g.XResolution = 0 }},
		{"negative height", func(g *WallGeometry) { g.YResolution = -1 }},
		{"zero tiles", func(g *WallGeometry) { g.XTiles = 0 }},
		{"more tiles than pixels", func(g *WallGeometry) { g.YTiles = 1000 }},
		{"zero pixel size", func(g *WallGeometry) { g.PixelHeight = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := testWall
			tt.mutate(&g)
			if err := g.Validate(); !errors.Is(err, ErrInvalidGeometry) {
				t.Errorf("Validate() = %v, want ErrInvalidGeometry", err)
			}
		})
	}
}

func TestVisualAngles(t *testing.T) {
	assert.InDelta(t, math.Pi/2, VisualAngle(2, 1), 1e-12)
	assert.InDelta(t, 1, DistanceForVisualAngle(2, math.Pi/2), 1e-12)
	assert.InDelta(t, 2, SizeForVisualAngle(1, math.Pi/2), 1e-12)

	g := WILD
	angle := g.HorizontalVisualAngle()
	assert.InDelta(t, g.ViewerDistance, g.DistanceForHorizontalAngle(angle), 1e-9)
	assert.InDelta(t, float64(g.XResolution), g.XPixelsForAngle(angle), 1e-6)
	assert.InDelta(t, float64(g.YResolution), g.YPixelsForAngle(g.VerticalVisualAngle()), 1e-6)
}

func TestSimulatedViewerDistance(t *testing.T) {
	client := AppleCinema

	tests := []struct {
		name  string
		width float64
		want  float64
	}{
		{"one to one", 20480, 0.7},
		{"tenth", 2048, 7},
		{"half", 10240, 1.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WILD.SimulatedViewerDistance(client, tt.width)
			if got != tt.want {
				t.Errorf("SimulatedViewerDistance(%v) = %v, want %v", tt.width, got, tt.want)
			}
		})
	}
}

func TestMoveFromBehindBezels(t *testing.T) {
	all := testWall.Bounds()

	tests := []struct {
		name   string
		g      WallGeometry
		r      Rect
		bezel  int
		limits Rect
		want   Rect
	}{
		{"clear of seam", testWall, R(20, 10, 20, 10), 20, all, R(20, 10, 20, 10)},
		{"right of centre moves right", testWall, R(90, 10, 20, 10), 20, all, R(110, 10, 20, 10)},
		{"left of centre moves left", testWall, R(85, 10, 20, 10), 20, all, R(70, 10, 20, 10)},
		{"blocked by limits", testWall, R(95, 10, 20, 10), 20, R(0, 0, 100, 100), R(95, 10, 20, 10)},
		{"too wide for a tile", testWall, R(60, 10, 90, 10), 20, all, R(60, 10, 90, 10)},
		{"vertical seam", WILDER2x2, R(100, 950, 20, 20), 40, WILDER2x2.Bounds(), R(100, 980, 20, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.g.MoveFromBehindBezels(tt.r, tt.bezel, tt.limits)
			if got != tt.want {
				t.Errorf("MoveFromBehindBezels(%+v) = %+v, want %+v", tt.r, got, tt.want)
			}
		})
	}
}

func TestGeometryString(t *testing.T) {
	assert.Equal(t, "2560x1600 px, 1x1 tiles, pixel 0.25x0.25 mm, viewer 0.70 m", AppleCinema.String())
}
