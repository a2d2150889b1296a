// Package hybridwall renders hybrid images for tiled wall displays.
//
// # Overview
//
// A wall display is a very large canvas, often tens of thousands of pixels
// across, built from tiles separated by bezels. A hybrid image shows
// different content depending on viewing distance: a high-passed near
// layer carries the detail seen up close, a blurred far layer carries the
// coarse structure seen from across the room. hybridwall renders such
// images in a small interactive window and exports them at full wall
// resolution.
//
// # Quick Start
//
//	import "github.com/gogpu/hybridwall"
//
//	cb := hybridwall.DrawCallbacks{
//	    Near: hybridwall.ImageLayer(detail, rect),
//	    Far:  hybridwall.ImageLayer(overview, rect),
//	}
//	r, err := hybridwall.NewRenderer(hybridwall.WILD, cb,
//	    hybridwall.WithWindowSize(hybridwall.Size{W: 1280, H: 640}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	r.Parameters().SetFloat("blurRadius", 40, hybridwall.OriginControl)
//	r.Wait()
//	frame := r.Snapshot()
//
// # Pipeline
//
// Every pass runs the same ordered steps, in the window and at full
// resolution alike:
//   - draw the near layer, high-pass it and apply the near curve
//   - draw the far layer and blur it
//   - draw the background, composite near then far over it
//   - apply the post curve to the blend
//
// Filter radii are given in wall pixels and scale with the render target,
// so a window preview and a downsampled export look the same. A radius
// <= 0 disables the filter. A radius spans three standard deviations.
//
// # Rendering Model
//
// A Renderer owns one background worker (Scheduler). Changes to the view or
// to the parameters invalidate it: a running pass is abandoned and exactly
// one fresh pass follows, however many changes arrived. Meanwhile the
// Presenter shows the previous frame rescaled to the new view. Export runs
// independently on private buffers and may overlap interactive rendering.
//
// # Coordinate System
//
// Draw callbacks work in wall coordinates:
//   - Origin (0,0) at the wall's top-left
//   - X increases right
//   - Y increases down
//   - One unit is one wall pixel
//
// The Canvas maps them into the target raster.
//
// # Logging
//
// hybridwall is silent by default. See SetLogger.
package hybridwall

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
