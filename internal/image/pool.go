// Package image provides frame buffer management and image file I/O for the
// hybrid wall renderer.
//
// Frame buffers are premultiplied *image.RGBA values whose bounds start at the
// origin. They are large (a full-resolution wall frame can exceed a gigabyte),
// so they are reused whenever the requested dimensions do not change.
package image

import (
	"image"
	"sync"
)

// Pool is a thread-safe pool for reusing frame buffers.
//
// Pool groups buffers by their dimensions, allowing efficient reuse of
// identically-sized buffers. This reduces GC pressure for renderers that
// repeatedly allocate near, far and final buffers of the same size.
//
// Thread safety: All methods are safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	buckets map[poolKey][]*image.RGBA
	maxSize int // max buffers per bucket
}

// poolKey identifies a bucket of identically sized buffers.
type poolKey struct {
	width  int
	height int
}

// NewPool creates a new frame buffer pool with the given maximum buffers per
// bucket. A maxPerBucket of 0 means unlimited (use with caution).
func NewPool(maxPerBucket int) *Pool {
	return &Pool{
		buckets: make(map[poolKey][]*image.RGBA),
		maxSize: maxPerBucket,
	}
}

// Get retrieves a buffer from the pool or creates a new one.
// The returned buffer has bounds (0, 0, width, height) and is fully
// transparent. Returns nil for non-positive dimensions.
func (p *Pool) Get(width, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return nil
	}
	key := poolKey{width: width, height: height}

	p.mu.Lock()
	bucket := p.buckets[key]
	if len(bucket) > 0 {
		buf := bucket[len(bucket)-1]
		p.buckets[key] = bucket[:len(bucket)-1]
		p.mu.Unlock()

		Clear(buf)
		return buf
	}
	p.mu.Unlock()

	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// Put returns a buffer to the pool for reuse.
// If buf is nil, not origin-based, or the bucket is at max capacity, the
// buffer is discarded.
func (p *Pool) Put(buf *image.RGBA) {
	if buf == nil || buf.Rect.Min != (image.Point{}) || buf.Rect.Empty() {
		return
	}
	key := poolKey{width: buf.Rect.Dx(), height: buf.Rect.Dy()}

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[key] = append(bucket, buf)
}

// Len returns the number of pooled buffers of the given size.
func (p *Pool) Len(width, height int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.buckets[poolKey{width: width, height: height}])
}

// Reuse returns buf cleared to transparent when it already has the requested
// dimensions, and a newly allocated buffer otherwise. Returns nil for
// non-positive dimensions.
func Reuse(buf *image.RGBA, width, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return nil
	}
	if buf != nil && buf.Rect == image.Rect(0, 0, width, height) {
		Clear(buf)
		return buf
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

// Clear sets every pixel of buf to transparent black.
func Clear(buf *image.RGBA) {
	if buf != nil {
		clear(buf.Pix)
	}
}

// Clone returns a copy of buf with bounds moved to the origin.
func Clone(buf *image.RGBA) *image.RGBA {
	if buf == nil {
		return nil
	}
	w, h := buf.Rect.Dx(), buf.Rect.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		si := buf.PixOffset(buf.Rect.Min.X, buf.Rect.Min.Y+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+w*4], buf.Pix[si:si+w*4])
	}
	return out
}

// ByteSize returns the memory footprint of a width x height frame buffer.
func ByteSize(width, height int) int64 {
	return int64(width) * int64(height) * 4
}
