// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package hybridwall

import (
	"context"
	"image"
	"image/color"
	"math"
	"sync"

	"golang.org/x/image/draw"

	imgpkg "github.com/gogpu/hybridwall/internal/image"
)

// PresenterState tells what Paint shows.
type PresenterState int

const (
	// Previewing shows a stand-in while a pass is pending: the last frame
	// rescaled to the current view, or an unfiltered blend of the layers.
	Previewing PresenterState = iota
	// Rendered shows the latest completed frame as is.
	Rendered
)

// String returns the state name.
func (s PresenterState) String() string {
	if s == Rendered {
		return "Rendered"
	}
	return "Previewing"
}

// Colours of the window chrome.
var (
	surroundColor = color.RGBA{R: 64, G: 64, B: 64, A: 255}
	bezelOuter    = color.RGBA{R: 192, G: 192, B: 192, A: 255}
	bezelInner    = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	badgeText     = color.RGBA{A: 153}
	badgeFill     = color.RGBA{R: 51, G: 51, B: 51, A: 51}
	badgeBorder   = color.RGBA{R: 128, G: 128, B: 128, A: 128}
)

const previewMessage = "Rendering…"

// Bezel stroke widths in wall pixels.
const (
	bezelOuterWidth = 80
	bezelInnerWidth = 60
)

// Scene is everything Paint needs to draw one window.
type Scene struct {
	Viewport  ViewportState
	Geometry  WallGeometry
	Params    RenderParameters
	Callbacks DrawCallbacks
}

// Presenter switches between an instant preview and the latest completed
// frame. It is safe for concurrent use: frames are published from the
// render worker while Paint runs on the UI goroutine.
type Presenter struct {
	mu      sync.RWMutex
	state   PresenterState
	busy    bool
	frame   *Frame
	recycle func(*Frame)

	quickMu sync.Mutex
	quick   *Compositor
}

// NewPresenter creates a presenter in the Previewing state. Frames replaced
// by Present are passed to recycle, if set, once no Paint can read them.
func NewPresenter(recycle func(*Frame)) *Presenter {
	return &Presenter{
		recycle: recycle,
		quick:   NewCompositor(nil),
	}
}

// State returns the current state.
func (p *Presenter) State() PresenterState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Frame returns the latest published frame, or nil.
func (p *Presenter) Frame() *Frame {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frame
}

// Invalidate switches to Previewing. Call it on every view or parameter
// change, before invalidating the scheduler.
func (p *Presenter) Invalidate() {
	p.mu.Lock()
	p.state = Previewing
	p.mu.Unlock()
}

// SetBusy shows or hides the rendering badge. Wire it to Scheduler.OnBusy
// so the badge disappears when a pass ends without a frame.
func (p *Presenter) SetBusy(busy bool) {
	p.mu.Lock()
	p.busy = busy
	p.mu.Unlock()
}

// Busy reports whether the rendering badge is shown.
func (p *Presenter) Busy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.busy
}

// Present publishes a completed frame and switches to Rendered.
func (p *Presenter) Present(f *Frame) {
	p.mu.Lock()
	old := p.frame
	p.frame = f
	p.state = Rendered
	p.mu.Unlock()

	if old != nil && old != f && p.recycle != nil {
		p.recycle(old)
	}
}

// Paint draws the window: a dark surround, a checkerboard under the wall,
// the content, the tile grid and, while busy, a badge.
func (p *Presenter) Paint(dst *image.RGBA, sc Scene) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	draw.Draw(dst, dst.Rect, image.NewUniform(surroundColor), image.Point{}, draw.Src)

	wall := sc.Viewport.Bounds.Pixels().Intersect(dst.Rect)
	imgpkg.DefaultCheckerboard().Fill(dst, wall)

	switch {
	case p.state == Rendered && p.frame != nil:
		drawFrame(dst, p.frame, p.frame.Target.Transform)
	case p.frame != nil:
		p.paintRescaled(dst, sc)
	default:
		p.paintQuick(dst, sc)
	}

	if sc.Params.DrawBezels {
		paintTiles(dst, sc)
	}
	if p.busy {
		b := dst.Rect
		drawBadge(dst, previewMessage, b.Max.X-6, b.Max.Y-6, badgeText, badgeFill, badgeBorder)
	}
}

// paintRescaled draws the last frame through the wall rectangle it was
// rendered for, so it follows pans and zooms until the next frame lands.
func (p *Presenter) paintRescaled(dst *image.RGBA, sc Scene) {
	drawFrame(dst, p.frame, sc.Viewport.Transform())
}

// drawFrame draws f with wall-to-window transform m.
func drawFrame(dst *image.RGBA, f *Frame, m Matrix) {
	s2d := m.Multiply(f.Target.Transform.Invert())
	src := f.Image
	if s2d.IsIdentity() {
		draw.Draw(dst, src.Rect, src, src.Rect.Min, draw.Over)
		return
	}
	draw.BiLinear.Transform(dst, s2d.Aff3(), src, src.Rect, draw.Over, nil)
}

// paintQuick blends the unfiltered near and far layers on the calling
// goroutine. It stands in until the first frame exists.
func (p *Presenter) paintQuick(dst *image.RGBA, sc Scene) {
	if !sc.Viewport.Renderable() {
		return
	}
	params := sc.Params
	params.HipassRadius = 0
	params.HipassBrightness, params.HipassContrast = 1, 1
	params.BlurRadius = 0
	params.PostBrightness, params.PostContrast = 1, 1
	params.DrawReadout = false

	p.quickMu.Lock()
	defer p.quickMu.Unlock()
	f, err := p.quick.Render(context.Background(), Job{
		Params:    params,
		Wall:      sc.Geometry.Size(),
		Target:    ViewportTarget(sc.Viewport),
		Callbacks: sc.Callbacks,
	})
	if err != nil {
		logFor(logPresenter).Debug("quick preview failed", "err", err)
		return
	}
	drawFrame(dst, f, f.Target.Transform)
	p.quick.Recycle(f)
}

// paintTiles outlines every tile of the wall, thick enough to read as the
// physical bezels.
func paintTiles(dst *image.RGBA, sc Scene) {
	g := sc.Geometry
	if g.XTiles <= 0 || g.YTiles <= 0 {
		return
	}
	b := sc.Viewport.Bounds
	scale := sc.Viewport.Scale()
	tw := b.W / float64(g.XTiles)
	th := b.H / float64(g.YTiles)

	for _, pass := range []struct {
		width float64
		col   color.RGBA
	}{
		{bezelOuterWidth, bezelOuter},
		{bezelInnerWidth, bezelInner},
	} {
		w := max(1, int(math.Round(pass.width*scale)))
		for x := range g.XTiles {
			for y := range g.YTiles {
				tile := Rect{X: b.X + float64(x)*tw, Y: b.Y + float64(y)*th, W: tw, H: th}
				strokeRect(dst, snapRect(tile), w, pass.col)
			}
		}
	}
}
