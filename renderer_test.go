package hybridwall

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, opts ...RendererOption) *Renderer {
	t.Helper()
	r, err := NewRenderer(testWall, solidCallbacks(red, blue), opts...)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestNewRendererRejectsInvalidGeometry(t *testing.T) {
	g := testWall
	g.XResolution = 0
	_, err := NewRenderer(g, DrawCallbacks{})
	assert.ErrorIs(t, err, ErrInvalidGeometry)

	bad := AppleCinema
	bad.PixelWidth = 0
	_, err = NewRenderer(testWall, DrawCallbacks{}, WithClientDisplay(bad))
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestRendererFirstFrame(t *testing.T) {
	r := newTestRenderer(t, WithWindowSize(Size{W: 100, H: 100}))
	r.Wait()

	assert.Equal(t, Rendered, r.Presenter().State())
	f := r.Presenter().Frame()
	require.NotNil(t, f)
	assert.Equal(t, Size{W: 100, H: 100}, f.Target.Size)
	assert.Equal(t, 1, r.Scheduler().Passes())

	img := r.Snapshot()
	assert.Equal(t, surroundColor, img.RGBAAt(50, 2), "letterbox band")
	assert.Equal(t, uint8(255), img.RGBAAt(10, 50).A)
}

func TestRendererParameterChangeRerenders(t *testing.T) {
	r := newTestRenderer(t, WithWindowSize(Size{W: 100, H: 100}))
	r.Wait()

	require.NoError(t, r.Parameters().SetFloat("blurRadius", 4, OriginControl))
	r.Wait()

	assert.Equal(t, 2, r.Scheduler().Passes())
	assert.Equal(t, 4.0, r.Presenter().Frame().Params.BlurRadius)
	assert.Equal(t, Rendered, r.Presenter().State())
}

func TestRendererSharedParameterStore(t *testing.T) {
	store := NewParameterStore(DefaultParameters())
	r := newTestRenderer(t, WithParameterStore(store), WithWindowSize(Size{W: 50, H: 50}))
	r.Wait()

	store.Update(OriginCode, func(p *RenderParameters) { p.DrawFar = false })
	r.Wait()

	assert.False(t, r.Presenter().Frame().Params.DrawFar)
	assert.Same(t, store, r.Parameters())
}

func TestRendererClickToggles(t *testing.T) {
	r := newTestRenderer(t, WithWindowSize(Size{W: 100, H: 100}))

	vs := r.Click(Pt(50, 50))
	assert.Equal(t, 200.0, vs.Bounds.W, "1:1")
	assert.False(t, vs.Autofit)
	assert.Equal(t, Previewing, r.Presenter().State())

	vs = r.Click(Pt(50, 50))
	assert.Equal(t, 100.0, vs.Bounds.W, "fitted")
	assert.True(t, vs.Autofit)

	r.Wait()
	assert.Equal(t, Size{W: 100, H: 100}, r.Presenter().Frame().Target.Size)
}

func TestRendererResizeRefits(t *testing.T) {
	r := newTestRenderer(t, WithWindowSize(Size{W: 100, H: 100}))
	vs := r.Resize(Size{W: 400, H: 100})
	assert.Equal(t, R(100, 0, 200, 100), vs.Bounds)

	r.Wait()
	assert.Equal(t, Size{W: 400, H: 100}, r.Presenter().Frame().Target.Size)
}

func TestRendererViewerDistance(t *testing.T) {
	r := newTestRenderer(t, WithClientDisplay(AppleCinema))

	// The 0.1 m wall fitted 800 px wide on 0.25 mm pixels seen from 0.7 m.
	assert.InDelta(t, 0.35, r.ViewerDistance(), 0.01)

	r.ZoomBy(0.5, Pt(400, 300))
	assert.InDelta(t, 0.7, r.ViewerDistance(), 0.01)

	vs := r.SetViewerDistance(1)
	assert.Equal(t, 1.0, r.ViewerDistance())
	assert.InDelta(t, 280, vs.Bounds.W, 0.5)
	assert.InDelta(t, 140, vs.Bounds.H, 0.5)

	r.Pan(0, 0)
	assert.InDelta(t, 1.0, r.ViewerDistance(), 0.01)
}

func TestRendererViewerDistanceWithoutClient(t *testing.T) {
	r := newTestRenderer(t)
	before := r.Viewport()

	r.SetViewerDistance(3)
	assert.Equal(t, 3.0, r.ViewerDistance())
	assert.Equal(t, before.Bounds, r.Viewport().Bounds)
}

func TestRendererSetGeometry(t *testing.T) {
	r := newTestRenderer(t, WithWindowSize(Size{W: 100, H: 100}))
	g := testWall
	g.XResolution, g.YResolution = 100, 100

	require.NoError(t, r.SetGeometry(g))
	assert.Equal(t, R(0, 0, 100, 100), r.Viewport().Bounds)

	g.XTiles = 0
	assert.ErrorIs(t, r.SetGeometry(g), ErrInvalidGeometry)
	assert.Equal(t, 100, r.Geometry().XResolution)
}

func TestRendererExportDuringInteraction(t *testing.T) {
	r := newTestRenderer(t, WithWindowSize(Size{W: 100, H: 100}))
	dir := t.TempDir()

	var wg sync.WaitGroup
	var res *ExportResult
	var exportErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		res, exportErr = r.Export(context.Background(), ExportRequest{Dir: dir, Name: "busy"}, nil)
	}()
	for i := range 20 {
		r.Pan(float64(i%3-1), 0)
		if i%5 == 0 {
			require.NoError(t, r.Parameters().Nudge("blurRadius", 1))
		}
	}
	wg.Wait()
	r.Wait()

	require.NoError(t, exportErr)
	assert.Equal(t, testWall.Size(), res.Frame.Target.Size, "exports render the whole wall")
	assert.FileExists(t, res.Path)
	assert.Equal(t, Rendered, r.Presenter().State())
	assert.Equal(t, Size{W: 100, H: 100}, r.Presenter().Frame().Target.Size)
}

func TestRendererSetCallbacks(t *testing.T) {
	r := newTestRenderer(t, WithWindowSize(Size{W: 100, H: 50}))
	r.Wait()

	var calls counter
	r.SetCallbacks(DrawCallbacks{Near: func(*Canvas) error { calls.Inc(); return nil }})
	r.Wait()

	assert.Equal(t, 1, calls.Get())
	assert.Nil(t, r.Callbacks().Far)
}

func TestRendererFailedPassClearsBadge(t *testing.T) {
	r := newTestRenderer(t, WithWindowSize(Size{W: 200, H: 100}))
	r.Wait()
	good := r.Snapshot()

	r.SetCallbacks(DrawCallbacks{Near: func(*Canvas) error { return errors.New("near image gone") }})
	r.Wait()

	assert.Equal(t, Idle, r.Scheduler().State())
	assert.Equal(t, 1, r.Scheduler().Passes())
	assert.False(t, r.Presenter().Busy())
	assert.Equal(t, good.Pix, r.Snapshot().Pix, "last good frame without a badge")
}

func TestRendererClose(t *testing.T) {
	r, err := NewRenderer(testWall, solidCallbacks(red, blue))
	require.NoError(t, err)
	r.Close()
	passes := r.Scheduler().Passes()

	r.Invalidate()
	require.NoError(t, r.Parameters().SetFloat("blurRadius", 1, OriginCode))
	r.Wait()

	assert.Equal(t, passes, r.Scheduler().Passes())
	assert.Equal(t, Idle, r.Scheduler().State())
}
