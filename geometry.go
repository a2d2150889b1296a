package hybridwall

import (
	"fmt"
	"math"
	"strings"
)

// Metric units, in metres.
const (
	MM = 1.0 / 1000
	CM = 1.0 / 100
)

// DefaultViewerDistance is the viewing distance assumed when a geometry does
// not specify one.
const DefaultViewerDistance = 70 * CM

// WallGeometry describes a tiled wall display: its total resolution, how it
// splits into tiles, the physical size of one pixel and the distance of the
// viewer. Metric values are in metres.
//
// A WallGeometry is an immutable value; replace it to change the wall.
type WallGeometry struct {
	XResolution    int     `toml:"xResolution"`
	YResolution    int     `toml:"yResolution"`
	XTiles         int     `toml:"xTiles"`
	YTiles         int     `toml:"yTiles"`
	PixelWidth     float64 `toml:"pixelWidth"`
	PixelHeight    float64 `toml:"pixelHeight"`
	ViewerDistance float64 `toml:"viewerDistance,omitempty"`
}

// Geometry presets of known wall displays.
var (
	// WILD is an 8x4 wall of 2560x1600 30" monitors.
	WILD = WallGeometry{
		XResolution: 8 * 2560, YResolution: 4 * 1600,
		XTiles: 8, YTiles: 4,
		PixelWidth: 0.250 * MM, PixelHeight: 0.250 * MM,
		ViewerDistance: DefaultViewerDistance,
	}

	// WILDER is a 15x5 wall of 960x960 ultra-thin bezel screens.
	WILDER = WallGeometry{
		XResolution: 15 * 960, YResolution: 5 * 960,
		XTiles: 15, YTiles: 5,
		PixelWidth: 0.4035 * MM, PixelHeight: 0.4035 * MM,
		ViewerDistance: DefaultViewerDistance,
	}

	// WILDER2x2 is a 2x2 section of the WILDER wall.
	WILDER2x2 = WallGeometry{
		XResolution: 2 * 960, YResolution: 2 * 960,
		XTiles: 2, YTiles: 2,
		PixelWidth: 0.250 * MM, PixelHeight: 0.250 * MM,
		ViewerDistance: DefaultViewerDistance,
	}

	// KonstanzWall is the 4x2 projection wall at the University of Konstanz.
	KonstanzWall = WallGeometry{
		XResolution: 5224, YResolution: 2160,
		XTiles: 4, YTiles: 2,
		PixelWidth: 0.995 * MM, PixelHeight: 0.995 * MM,
		ViewerDistance: DefaultViewerDistance,
	}

	// AppleCinema is a single 30" desktop monitor.
	AppleCinema = WallGeometry{
		XResolution: 2560, YResolution: 1600,
		XTiles: 1, YTiles: 1,
		PixelWidth: 0.250 * MM, PixelHeight: 0.250 * MM,
		ViewerDistance: DefaultViewerDistance,
	}
)

var presets = map[string]WallGeometry{
	"wild":         WILD,
	"wilder":       WILDER,
	"wilder2x2":    WILDER2x2,
	"konstanz":     KonstanzWall,
	"apple-cinema": AppleCinema,
}

// Preset returns a named geometry preset. Names are case-insensitive:
// wild, wilder, wilder2x2, konstanz, apple-cinema.
func Preset(name string) (WallGeometry, bool) {
	g, ok := presets[strings.ToLower(name)]
	return g, ok
}

// PresetNames returns the preset names in a stable order.
func PresetNames() []string {
	return []string{"wild", "wilder", "wilder2x2", "konstanz", "apple-cinema"}
}

// DefaultGeometry returns the WILD wall.
func DefaultGeometry() WallGeometry {
	return WILD
}

// Validate reports ErrInvalidGeometry for non-positive resolutions, tile
// counts or pixel sizes.
func (g WallGeometry) Validate() error {
	switch {
	case g.XResolution <= 0 || g.YResolution <= 0:
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidGeometry, g.XResolution, g.YResolution)
	case g.XTiles <= 0 || g.YTiles <= 0:
		return fmt.Errorf("%w: tiles %dx%d", ErrInvalidGeometry, g.XTiles, g.YTiles)
	case g.XTiles > g.XResolution || g.YTiles > g.YResolution:
		return fmt.Errorf("%w: more tiles than pixels", ErrInvalidGeometry)
	case g.PixelWidth <= 0 || g.PixelHeight <= 0:
		return fmt.Errorf("%w: pixel size %gx%g", ErrInvalidGeometry, g.PixelWidth, g.PixelHeight)
	}
	return nil
}

// WithViewerDistance returns a copy of g at the given viewer distance.
func (g WallGeometry) WithViewerDistance(d float64) WallGeometry {
	g.ViewerDistance = d
	return g
}

// Size returns the wall resolution.
func (g WallGeometry) Size() Size {
	return Size{W: g.XResolution, H: g.YResolution}
}

// Bounds returns the wall rectangle in wall coordinates.
func (g WallGeometry) Bounds() Rect {
	return Rect{W: float64(g.XResolution), H: float64(g.YResolution)}
}

// TileXResolution returns the width of one tile in pixels.
func (g WallGeometry) TileXResolution() int { return g.XResolution / g.XTiles }

// TileYResolution returns the height of one tile in pixels.
func (g WallGeometry) TileYResolution() int { return g.YResolution / g.YTiles }

// MetricWidth returns the wall width in metres.
func (g WallGeometry) MetricWidth() float64 { return float64(g.XResolution) * g.PixelWidth }

// MetricHeight returns the wall height in metres.
func (g WallGeometry) MetricHeight() float64 { return float64(g.YResolution) * g.PixelHeight }

// MetricDiagonal returns the wall diagonal in metres.
func (g WallGeometry) MetricDiagonal() float64 {
	return math.Hypot(g.MetricWidth(), g.MetricHeight())
}

// HorizontalVisualAngle returns the angle, in radians, the wall width
// subtends at the viewer distance.
func (g WallGeometry) HorizontalVisualAngle() float64 {
	return VisualAngle(g.MetricWidth(), g.ViewerDistance)
}

// VerticalVisualAngle returns the angle, in radians, the wall height
// subtends at the viewer distance.
func (g WallGeometry) VerticalVisualAngle() float64 {
	return VisualAngle(g.MetricHeight(), g.ViewerDistance)
}

// PixelVisualAngle returns the angle, in radians, one pixel subtends
// horizontally at the viewer distance.
func (g WallGeometry) PixelVisualAngle() float64 {
	return VisualAngle(g.PixelWidth, g.ViewerDistance)
}

// DistanceForHorizontalAngle returns the viewer distance at which the wall
// width subtends angle radians.
func (g WallGeometry) DistanceForHorizontalAngle(angle float64) float64 {
	return DistanceForVisualAngle(g.MetricWidth(), angle)
}

// DistanceForVerticalAngle returns the viewer distance at which the wall
// height subtends angle radians.
func (g WallGeometry) DistanceForVerticalAngle(angle float64) float64 {
	return DistanceForVisualAngle(g.MetricHeight(), angle)
}

// XPixelsForAngle returns how many horizontal pixels subtend angle radians
// at the viewer distance.
func (g WallGeometry) XPixelsForAngle(angle float64) float64 {
	return SizeForVisualAngle(g.ViewerDistance, angle) / g.PixelWidth
}

// YPixelsForAngle returns how many vertical pixels subtend angle radians at
// the viewer distance.
func (g WallGeometry) YPixelsForAngle(angle float64) float64 {
	return SizeForVisualAngle(g.ViewerDistance, angle) / g.PixelHeight
}

func (g WallGeometry) String() string {
	return fmt.Sprintf("%dx%d px, %dx%d tiles, pixel %gx%g mm, viewer %.2f m",
		g.XResolution, g.YResolution, g.XTiles, g.YTiles,
		g.PixelWidth/MM, g.PixelHeight/MM, g.ViewerDistance)
}

// VisualAngle returns the angle in radians subtended by an object of the
// given size at the given distance.
func VisualAngle(size, distance float64) float64 {
	return 2 * math.Atan2(size/2, distance)
}

// DistanceForVisualAngle returns the distance at which an object of the
// given size subtends angle radians.
func DistanceForVisualAngle(size, angle float64) float64 {
	return (size / 2) / math.Tan(angle/2)
}

// SizeForVisualAngle returns the size of an object subtending angle radians
// at the given distance.
func SizeForVisualAngle(distance, angle float64) float64 {
	return 2 * distance * math.Tan(angle/2)
}

// SimulatedViewerDistance returns the wall viewer distance at which the wall
// subtends the same horizontal angle as boundsWidth client pixels do for the
// client's viewer. The result is rounded to centimetres.
func (g WallGeometry) SimulatedViewerDistance(client WallGeometry, boundsWidth float64) float64 {
	metric := boundsWidth * client.PixelWidth
	angle := VisualAngle(metric, client.ViewerDistance)
	return math.Round(g.DistanceForHorizontalAngle(angle)*100) / 100
}

// MoveFromBehindBezels shifts r so that it no longer straddles a tile seam.
// A seam occupies a band of bezelWidth/2 pixels on each side of a tile
// boundary. The rectangle moves along one axis at a time, only when it fits
// inside a tile on that axis, and only when the moved edges stay within
// limits.
func (g WallGeometry) MoveFromBehindBezels(r Rect, bezelWidth int, limits Rect) Rect {
	x0, x1 := r.X, r.MaxX()
	y0, y1 := r.Y, r.MaxY()
	tw := float64(g.TileXResolution())
	th := float64(g.TileYResolution())
	rad := float64(bezelWidth / 2)

	if r.W <= tw-rad*2 {
		for b := 1; b < g.XTiles; b++ {
			bx := float64(b) * tw
			if x0 < bx+rad && x1 > bx-rad {
				dx := bx + rad - x0
				if (x0+x1)/2 < bx {
					dx = bx - rad - x1
				}
				if within(x0+dx, limits.X, limits.MaxX()) && within(x1+dx, limits.X, limits.MaxX()) {
					x0 += dx
					x1 += dx
				}
			}
		}
	}

	if r.H <= th-rad*2 {
		for b := 1; b < g.YTiles; b++ {
			by := float64(b) * th
			if y0 < by+rad && y1 > by-rad {
				dy := by + rad - y0
				if (y0+y1)/2 < by {
					dy = by - rad - y1
				}
				if within(y0+dy, limits.Y, limits.MaxY()) && within(y1+dy, limits.Y, limits.MaxY()) {
					y0 += dy
					y1 += dy
				}
			}
		}
	}

	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
