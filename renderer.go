package hybridwall

import (
	"context"
	"fmt"
	"image"
	"sync"
)

// Renderer shows a hybrid image of a wall in a window. It ties together the
// viewport, the parameter store, the draw callbacks, the background
// scheduler and the presenter.
//
// Input methods (Resize, Click, Pan, Wheel and the setters) update state,
// switch the presenter to its preview and request a pass; they never wait
// for rendering. Paint draws whatever is current.
//
// All methods are safe for concurrent use.
type Renderer struct {
	mu        sync.Mutex
	geometry  WallGeometry
	callbacks DrawCallbacks
	client    WallGeometry
	hasClient bool

	viewport  *Viewport
	params    *ParameterStore
	pool      *WorkerPool
	comp      *Compositor
	sched     *Scheduler
	presenter *Presenter
	unsub     func()
}

// NewRenderer creates a renderer for geometry g drawing cb, fitted into the
// window, and schedules the first pass.
func NewRenderer(g WallGeometry, cb DrawCallbacks, opts ...RendererOption) (*Renderer, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.params == nil {
		o.params = NewParameterStore(DefaultParameters())
	}
	if o.haveClient {
		if err := o.client.Validate(); err != nil {
			return nil, fmt.Errorf("client display: %w", err)
		}
	}

	r := &Renderer{
		geometry:  g,
		callbacks: cb,
		client:    o.client,
		hasClient: o.haveClient,
		viewport:  NewViewport(g.Size(), o.window),
		params:    o.params,
		pool:      o.pool,
	}
	r.comp = NewCompositor(o.pool)
	r.presenter = NewPresenter(r.comp.Recycle)
	r.sched = NewScheduler(r.comp, r.snapshot, r.presenter.Present, o.dispatch)
	r.sched.OnBusy(r.presenter.SetBusy)
	r.unsub = r.params.Subscribe(func(Change) { r.invalidate() })

	r.updateViewerDistance()
	r.invalidate()
	return r, nil
}

// snapshot captures the inputs of a pass on the worker.
func (r *Renderer) snapshot() (Job, bool) {
	vs := r.viewport.State()
	if !vs.Renderable() {
		return Job{}, false
	}
	r.mu.Lock()
	g, cb := r.geometry, r.callbacks
	r.mu.Unlock()
	return Job{
		Params:    r.params.Get(),
		Wall:      g.Size(),
		Target:    ViewportTarget(vs),
		Callbacks: cb,
	}, true
}

// invalidate previews and schedules a pass.
func (r *Renderer) invalidate() {
	r.presenter.Invalidate()
	r.sched.Invalidate()
}

// Invalidate requests a pass, for example after the content behind the
// callbacks changed.
func (r *Renderer) Invalidate() { r.invalidate() }

// Geometry returns the wall geometry.
func (r *Renderer) Geometry() WallGeometry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.geometry
}

// SetGeometry replaces the wall. The view is refitted.
func (r *Renderer) SetGeometry(g WallGeometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	r.geometry = g
	r.mu.Unlock()
	r.viewport.SetWall(g.Size())
	r.updateViewerDistance()
	r.invalidate()
	return nil
}

// Callbacks returns the draw callbacks.
func (r *Renderer) Callbacks() DrawCallbacks {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.callbacks
}

// SetCallbacks replaces the draw callbacks.
func (r *Renderer) SetCallbacks(cb DrawCallbacks) {
	r.mu.Lock()
	r.callbacks = cb
	r.mu.Unlock()
	r.invalidate()
}

// Parameters returns the live parameter store.
func (r *Renderer) Parameters() *ParameterStore { return r.params }

// Scheduler returns the background scheduler.
func (r *Renderer) Scheduler() *Scheduler { return r.sched }

// Presenter returns the presenter.
func (r *Renderer) Presenter() *Presenter { return r.presenter }

// Viewport returns a snapshot of the view.
func (r *Renderer) Viewport() ViewportState { return r.viewport.State() }

// viewChanged follows every viewport mutation.
func (r *Renderer) viewChanged() ViewportState {
	r.updateViewerDistance()
	r.invalidate()
	return r.viewport.State()
}

// Resize sets the window size; with autofit on the wall is refitted.
func (r *Renderer) Resize(size Size) ViewportState {
	r.viewport.Resize(size)
	return r.viewChanged()
}

// Fit letterboxes the wall in the window and turns autofit on.
func (r *Renderer) Fit() ViewportState {
	r.viewport.FitToSize(r.viewport.State().Window)
	return r.viewChanged()
}

// Click toggles between the fitted view and 1:1 around p.
func (r *Renderer) Click(p Point) ViewportState {
	r.viewport.Click(p)
	return r.viewChanged()
}

// Pan moves the wall by (dx, dy) window pixels.
func (r *Renderer) Pan(dx, dy float64) ViewportState {
	r.viewport.Pan(dx, dy)
	return r.viewChanged()
}

// Wheel zooms by WheelStep^rotation around the window point anchor.
func (r *Renderer) Wheel(rotation float64, anchor Point) ViewportState {
	r.viewport.Wheel(rotation, anchor)
	return r.viewChanged()
}

// ZoomBy zooms by factor around the window point anchor.
func (r *Renderer) ZoomBy(factor float64, anchor Point) ViewportState {
	r.viewport.ZoomBy(factor, anchor)
	return r.viewChanged()
}

// ViewerDistance returns the wall viewer distance the current zoom
// simulates on the client display. Without a client display it is the
// geometry's viewer distance.
func (r *Renderer) ViewerDistance() float64 {
	return r.Geometry().ViewerDistance
}

// SetViewerDistance sets the simulated wall viewer distance. With a client
// display the view is zoomed around the window centre so the on-screen wall
// subtends, for the client viewer, the angle the real wall subtends at d.
func (r *Renderer) SetViewerDistance(d float64) ViewportState {
	r.mu.Lock()
	r.geometry = r.geometry.WithViewerDistance(d)
	g, client, ok := r.geometry, r.client, r.hasClient
	r.mu.Unlock()

	if ok {
		vs := r.viewport.State()
		centre := Point{X: float64(vs.Window.W) / 2, Y: float64(vs.Window.H) / 2}
		r.viewport.ZoomToSize(
			client.XPixelsForAngle(g.HorizontalVisualAngle()),
			client.YPixelsForAngle(g.VerticalVisualAngle()),
			centre)
	}
	r.invalidate()
	return r.viewport.State()
}

// updateViewerDistance derives the simulated viewer distance from the zoom.
func (r *Renderer) updateViewerDistance() {
	if !r.hasClient {
		return
	}
	w := r.viewport.State().Bounds.W
	r.mu.Lock()
	r.geometry.ViewerDistance = r.geometry.SimulatedViewerDistance(r.client, w)
	r.mu.Unlock()
}

// Scene returns the current inputs of Paint.
func (r *Renderer) Scene() Scene {
	r.mu.Lock()
	g, cb := r.geometry, r.callbacks
	r.mu.Unlock()
	return Scene{
		Viewport:  r.viewport.State(),
		Geometry:  g,
		Params:    r.params.Get(),
		Callbacks: cb,
	}
}

// Paint draws the window into dst, which should be window-sized.
func (r *Renderer) Paint(dst *image.RGBA) {
	r.presenter.Paint(dst, r.Scene())
}

// Snapshot paints the window into a new image.
func (r *Renderer) Snapshot() *image.RGBA {
	sc := r.Scene()
	dst := image.NewRGBA(image.Rect(0, 0, sc.Viewport.Window.W, sc.Viewport.Window.H))
	r.presenter.Paint(dst, sc)
	return dst
}

// Wait blocks until the scheduler is idle.
func (r *Renderer) Wait() { r.sched.Wait() }

// Export renders the wall at full resolution with the current geometry,
// parameters and callbacks, and writes it to disk. See Export.
func (r *Renderer) Export(ctx context.Context, req ExportRequest, pm ProgressMonitor) (*ExportResult, error) {
	sc := r.Scene()
	req.Geometry = sc.Geometry
	req.Params = sc.Params
	req.Callbacks = sc.Callbacks
	if req.Pool == nil {
		req.Pool = r.pool
	}
	return Export(ctx, req, pm)
}

// Close stops rendering and detaches from the parameter store.
func (r *Renderer) Close() {
	r.unsub()
	r.sched.Close()
	r.comp.Release()
}
