package hybridwall

// RendererOption configures a Renderer during creation.
// Use functional options to customize Renderer behavior.
//
// Example:
//
//	// Default: 800x600 window, default parameters, inline publishing
//	r, err := hybridwall.NewRenderer(hybridwall.WILD, callbacks)
//
//	// Publish frames on a UI event loop
//	r, err := hybridwall.NewRenderer(hybridwall.WILD, callbacks,
//	    hybridwall.WithWindowSize(hybridwall.Size{W: 1280, H: 640}),
//	    hybridwall.WithDispatcher(ui.Post))
type RendererOption func(*rendererOptions)

// rendererOptions holds optional configuration for Renderer creation.
type rendererOptions struct {
	window     Size
	params     *ParameterStore
	dispatch   Dispatcher
	pool       *WorkerPool
	client     WallGeometry
	haveClient bool
}

// defaultWindow is the window size used when none is given.
var defaultWindow = Size{W: 800, H: 600}

// defaultOptions returns the default renderer options.
func defaultOptions() rendererOptions {
	return rendererOptions{
		window:   defaultWindow,
		params:   nil, // Will be created from DefaultParameters if nil
		dispatch: nil, // Frames are published on the render worker if nil
	}
}

// WithWindowSize sets the initial window size. The wall is fitted into it.
func WithWindowSize(size Size) RendererOption {
	return func(o *rendererOptions) {
		o.window = size
	}
}

// WithParameters starts the renderer with a store holding p.
func WithParameters(p RenderParameters) RendererOption {
	return func(o *rendererOptions) {
		o.params = NewParameterStore(p)
	}
}

// WithParameterStore shares an existing store, for example one bound to a
// control panel. Changes from either origin rerender.
func WithParameterStore(s *ParameterStore) RendererOption {
	return func(o *rendererOptions) {
		o.params = s
	}
}

// WithDispatcher publishes finished frames through d, typically onto the
// UI event loop that also paints.
func WithDispatcher(d Dispatcher) RendererOption {
	return func(o *rendererOptions) {
		o.dispatch = d
	}
}

// WithWorkerPool runs filters on pool instead of the shared default pool.
// The caller keeps ownership of the pool.
func WithWorkerPool(pool *WorkerPool) RendererOption {
	return func(o *rendererOptions) {
		o.pool = pool
	}
}

// WithClientDisplay declares the monitor the window is shown on. It enables
// the mapping between zoom level and simulated wall viewer distance.
//
// Example:
//
//	laptop := hybridwall.WallGeometry{
//	    XResolution: 2560, YResolution: 1600, XTiles: 1, YTiles: 1,
//	    PixelWidth: 0.25 * hybridwall.MM, PixelHeight: 0.25 * hybridwall.MM,
//	    ViewerDistance: 0.6,
//	}
//	r, err := hybridwall.NewRenderer(hybridwall.WILD, callbacks,
//	    hybridwall.WithClientDisplay(laptop))
func WithClientDisplay(g WallGeometry) RendererOption {
	return func(o *rendererOptions) {
		o.client = g
		o.haveClient = true
	}
}
