package hybridwall

import (
	"image"
	"image/color"
	"sync"
	"testing"
)

// Test helpers shared across the package tests.

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

// testWall is a small two-tile wall.
var testWall = WallGeometry{
	XResolution: 200, YResolution: 100,
	XTiles: 2, YTiles: 1,
	PixelWidth: 0.5 * MM, PixelHeight: 0.5 * MM,
	ViewerDistance: 1,
}

// plainParams disables every filter and curve.
func plainParams() RenderParameters {
	p := DefaultParameters()
	p.HipassRadius = 0
	p.HipassContrast, p.HipassBrightness = 1, 1
	p.BlurRadius = 0
	p.PostContrast, p.PostBrightness = 1, 1
	p.NearOpacity, p.FarOpacity = 1, 1
	p.DrawBezels = false
	return p
}

// solidCallbacks fills the near and far layers with flat colours.
func solidCallbacks(near, far color.Color) DrawCallbacks {
	return DrawCallbacks{Near: SolidFill(near), Far: SolidFill(far)}
}

// assertUniform fails unless every pixel of r in img equals want.
func assertUniform(t *testing.T, img *image.RGBA, r image.Rectangle, want color.RGBA) {
	t.Helper()
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if c := img.RGBAAt(x, y); c != want {
				t.Fatalf("pixel (%d,%d) = %+v, want %+v", x, y, c, want)
			}
		}
	}
}

// meanAbsDiff returns the mean absolute per-channel difference of two
// equally sized images.
func meanAbsDiff(a, b *image.RGBA) float64 {
	var sum, n float64
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		sum += float64(d)
		n++
	}
	return sum / n
}

// recordingProgress is a ProgressMonitor that records everything it is told.
type recordingProgress struct {
	mu       sync.Mutex
	values   []int
	notes    []string
	closed   int
	cancelAt int // cancel once this progress value was reported; 0 = never
	canceled bool
	// closedAfter holds the values reported before Close.
	closedAfter []int
}

func (p *recordingProgress) SetProgress(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values = append(p.values, v)
	if p.cancelAt > 0 && v >= p.cancelAt {
		p.canceled = true
	}
}

func (p *recordingProgress) SetNote(note string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notes = append(p.notes, note)
}

func (p *recordingProgress) Canceled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canceled
}

func (p *recordingProgress) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed++
	p.closedAfter = append([]int(nil), p.values...)
}

func (p *recordingProgress) Values() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]int(nil), p.values...)
}

func (p *recordingProgress) Notes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.notes...)
}

// gate blocks callers of Wait until Open is called. Entered is signalled
// each time a caller arrives.
type gate struct {
	once    sync.Once
	open    chan struct{}
	entered chan struct{}
}

func newGate() *gate {
	return &gate{open: make(chan struct{}), entered: make(chan struct{}, 16)}
}

func (g *gate) Wait() {
	g.entered <- struct{}{}
	<-g.open
}

func (g *gate) Open() { g.once.Do(func() { close(g.open) }) }

// counter is a concurrency-safe call counter.
type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) Inc() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *counter) Get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
