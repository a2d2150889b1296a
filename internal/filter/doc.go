// Package filter provides the spatial and tonal filters of the hybrid image
// pipeline.
//
// This package contains:
//   - Gaussian blur (separable, low-pass for the far layer)
//   - High-pass (blur subtraction, opaque and alpha-preserving variants)
//   - Brightness/contrast transfer curve
//
// All filters operate in place on premultiplied *image.RGBA buffers, including
// sub-images, and split their work into row bands on a shared worker pool.
// Reads past the bounds clamp to the edge pixel. Radii follow a single convention: a radius spans three
// standard deviations (see SigmaFromRadius).
package filter
