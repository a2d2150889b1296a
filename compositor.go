package hybridwall

import (
	"context"
	"errors"
	"image"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/hybridwall/internal/blend"
	"github.com/gogpu/hybridwall/internal/filter"
	imgpkg "github.com/gogpu/hybridwall/internal/image"
	"github.com/gogpu/hybridwall/internal/parallel"
)

// Progress notes reported by the compositor and the exporter.
const (
	NoteNear      = "Rendering near image"
	NoteFar       = "Rendering far image"
	NoteComposite = "Compositing images"
	NoteWrite     = "Writing to disk"
)

// Target is the raster a pass renders into and how wall coordinates map
// onto it.
type Target struct {
	Size      Size
	Transform Matrix
}

// WallTarget renders the whole wall at one raster pixel per wall pixel.
func WallTarget(wall Size) Target {
	return Target{Size: wall, Transform: Identity()}
}

// ViewportTarget renders a window-sized raster showing the wall as placed by
// the viewport.
func ViewportTarget(s ViewportState) Target {
	return Target{Size: s.Window, Transform: s.Transform()}
}

// Scale returns raster pixels per wall pixel. Filter radii, given in wall
// pixels, are multiplied by it.
func (t Target) Scale() float64 { return t.Transform.A }

// Clip returns the raster pixels covered by a wall of the given size.
func (t Target) Clip(wall Size) image.Rectangle {
	full := image.Rect(0, 0, t.Size.W, t.Size.H)
	return t.Transform.TransformRect(Rect{W: float64(wall.W), H: float64(wall.H)}).Pixels().Intersect(full)
}

// Job is one compositor pass. Params is a snapshot; the compositor never
// reads live parameters.
type Job struct {
	Params    RenderParameters
	Wall      Size
	Target    Target
	Callbacks DrawCallbacks

	// Progress receives checkpoints and notes. Nil means NopProgress.
	Progress ProgressMonitor

	// Canceled is polled between steps along with the context and
	// Progress.Canceled.
	Canceled func() bool

	// Dst, when set, receives the finished frame drawn over its contents.
	Dst draw.Image
}

// Frame is the output of a completed pass.
type Frame struct {
	Image   *image.RGBA
	Target  Target
	Wall    Size
	Params  RenderParameters
	Elapsed time.Duration
}

// WallRect returns the wall rectangle the whole raster corresponds to,
// including area beyond the wall edges.
func (f *Frame) WallRect() Rect {
	full := Rect{W: float64(f.Target.Size.W), H: float64(f.Target.Size.H)}
	return f.Target.Transform.Invert().TransformRect(full)
}

// Compositor runs the hybrid image pipeline. It keeps its intermediate
// buffers between passes and reallocates them only when the target size
// changes.
//
// A Compositor runs one pass at a time. Use separate compositors for passes
// that may overlap.
type Compositor struct {
	pool   *parallel.WorkerPool
	frames *imgpkg.Pool

	near    *image.RGBA
	far     *image.RGBA
	blurred *image.RGBA
	scratch *image.RGBA
}

// NewCompositor creates a compositor running its filters on pool. A nil pool
// means the shared default pool.
func NewCompositor(pool *WorkerPool) *Compositor {
	return &Compositor{pool: pool.get(), frames: imgpkg.NewPool(2)}
}

// Recycle hands a frame's raster back for reuse by a later pass. The frame
// must no longer be read.
func (c *Compositor) Recycle(f *Frame) {
	if f != nil {
		c.frames.Put(f.Image)
	}
}

// Release drops the intermediate buffers.
func (c *Compositor) Release() {
	c.near, c.far, c.blurred, c.scratch = nil, nil, nil, nil
}

// Render runs the pipeline:
//
//  1. allocate or reuse the near, far and final buffers
//  2. draw the near layer, high-pass it and apply the near curve
//  3. draw the far layer and blur it
//  4. draw the background into the final buffer
//  5. composite the near layer at NearOpacity
//  6. composite the far layer at FarOpacity
//  7. apply the post curve to the blend
//  8. draw the readout overlay
//  9. draw the frame onto Job.Dst
//
// Cancellation is checked between steps and returns ErrCanceled with no
// frame. A failing or panicking draw callback returns a *DrawError.
func (c *Compositor) Render(ctx context.Context, job Job) (*Frame, error) {
	start := time.Now()
	pm := job.Progress
	if pm == nil {
		pm = NopProgress{}
	}
	canceled := func() bool {
		return ctx.Err() != nil || pm.Canceled() || (job.Canceled != nil && job.Canceled())
	}
	w, h := job.Target.Size.W, job.Target.Size.H
	if job.Target.Size.Empty() || job.Wall.Empty() {
		return nil, ErrInvalidGeometry
	}
	p := job.Params
	scale := job.Target.Scale()

	pm.SetProgress(ProgressStart)

	// 1. Buffers.
	final := c.frames.Get(w, h)
	if p.DrawNear {
		c.near = imgpkg.Reuse(c.near, w, h)
	}
	if p.DrawFar {
		c.far = imgpkg.Reuse(c.far, w, h)
	}
	if (p.DrawNear && p.HipassRadius > 0) || (p.DrawFar && p.BlurRadius > 0) {
		c.scratch = imgpkg.Reuse(c.scratch, w, h)
	}
	if p.DrawNear && p.HipassRadius > 0 {
		c.blurred = imgpkg.Reuse(c.blurred, w, h)
	}
	clip := job.Target.Clip(job.Wall)

	abort := func(err error) (*Frame, error) {
		c.frames.Put(final)
		if errors.Is(err, ErrCanceled) {
			logFor(logCompositor).Debug("pass canceled", "size", job.Target.Size, "elapsed", time.Since(start))
		}
		return nil, err
	}
	step := func() error {
		if canceled() {
			return ErrCanceled
		}
		return nil
	}

	if err := step(); err != nil {
		return abort(err)
	}

	// 2. Near layer.
	if p.DrawNear {
		pm.SetNote(NoteNear)
		if err := c.drawLayer(LayerNear, job, c.near, canceled); err != nil {
			return abort(err)
		}
	}
	pm.SetProgress(ProgressNearDrawn)
	if err := step(); err != nil {
		return abort(err)
	}
	if p.DrawNear && !clip.Empty() {
		near := c.near.SubImage(clip).(*image.RGBA)
		if p.HipassRadius > 0 {
			hp := filter.NewHighPassFilter(p.HipassRadius*scale, p.TransparentHipass)
			hp.Pool = c.pool
			hp.Apply(near, sub(c.blurred, clip), sub(c.scratch, clip))
			if err := step(); err != nil {
				return abort(err)
			}
		}
		curve := filter.NewCurveFilter(p.HipassBrightness, p.HipassContrast)
		curve.Pool = c.pool
		curve.Apply(near)
	}
	pm.SetProgress(ProgressNearDone)
	if err := step(); err != nil {
		return abort(err)
	}

	// 3. Far layer.
	if p.DrawFar {
		pm.SetNote(NoteFar)
		if err := c.drawLayer(LayerFar, job, c.far, canceled); err != nil {
			return abort(err)
		}
		if err := step(); err != nil {
			return abort(err)
		}
		if p.BlurRadius > 0 && !clip.Empty() {
			blur := filter.NewBlurFilter(p.BlurRadius * scale)
			blur.Pool = c.pool
			blur.Apply(c.far.SubImage(clip).(*image.RGBA), sub(c.scratch, clip))
		}
	}
	pm.SetProgress(ProgressFarDone)
	if err := step(); err != nil {
		return abort(err)
	}

	// 4. Background.
	if p.DrawBackground {
		if err := c.drawLayer(LayerBackground, job, final, canceled); err != nil {
			return abort(err)
		}
	}

	// 5, 6. Composite.
	pm.SetNote(NoteComposite)
	if !clip.Empty() {
		dst := final.SubImage(clip).(*image.RGBA)
		if p.DrawNear {
			c.layer(c.near, clip, p.NearOpacity).Composite(dst, c.pool)
		}
		if p.DrawFar {
			c.layer(c.far, clip, p.FarOpacity).Composite(dst, c.pool)
		}

		// 7. Post curve over the blend.
		curve := filter.NewCurveFilter(p.PostBrightness, p.PostContrast)
		curve.Pool = c.pool
		curve.Apply(dst)
	}
	if err := step(); err != nil {
		return abort(err)
	}
	pm.SetProgress(ProgressComposited)

	// 8. Readout.
	if p.DrawReadout {
		drawReadout(final, p)
	}

	// 9. Blit.
	if job.Dst != nil {
		draw.Draw(job.Dst, job.Dst.Bounds(), final, image.Point{}, draw.Over)
	}

	f := &Frame{
		Image:   final,
		Target:  job.Target,
		Wall:    job.Wall,
		Params:  p,
		Elapsed: time.Since(start),
	}
	logFor(logCompositor).Debug("pass done",
		"size", job.Target.Size,
		"scale", scale,
		"bytes", imgpkg.ByteSize(w, h),
		"elapsed", f.Elapsed)
	return f, nil
}

// drawLayer runs a layer's callback into dst under a recover boundary.
// A callback that fails after the pass was canceled reports ErrCanceled.
func (c *Compositor) drawLayer(l Layer, job Job, dst *image.RGBA, canceled func() bool) (err error) {
	fn := job.Callbacks.get(l)
	if fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &DrawError{Layer: l, Err: panicError{value: r}}
		}
		if err != nil && canceled() {
			err = ErrCanceled
		}
	}()
	if cerr := fn(newCanvas(dst, job.Target.Transform, job.Wall, canceled)); cerr != nil {
		return &DrawError{Layer: l, Err: cerr}
	}
	return nil
}

// layer returns the clipped part of buf as a source-over layer positioned
// at the clip origin.
func (c *Compositor) layer(buf *image.RGBA, clip image.Rectangle, opacity float64) blend.Layer {
	l := blend.NewLayer(buf.SubImage(clip).(*image.RGBA), opacity)
	l.Offset = clip.Min
	return l
}

// sub returns the clip of a working buffer, or nil if the buffer is absent.
func sub(buf *image.RGBA, clip image.Rectangle) *image.RGBA {
	if buf == nil {
		return nil
	}
	return buf.SubImage(clip).(*image.RGBA)
}
