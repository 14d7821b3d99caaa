// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package headless provides an in-memory presentation backend.
//
// The render target is an *image.RGBA. Input comes only from Inject, which
// makes frame loops fully scriptable in tests. Textures are allocated with
// rows padded to a fixed alignment so stride handling is exercised.
package headless

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/gogpu/kernelview/present"
)

// Name is the registry name of this backend.
const Name = "headless"

// DefaultRowAlignment is the byte alignment of texture rows.
const DefaultRowAlignment = 64

func init() {
	present.Register(Name, 10, func(opts present.BackendOptions) (present.Backend, error) {
		return New(opts.Width, opts.Height), nil
	}, nil)
}

// Option configures a Backend.
type Option func(*Backend)

// WithRowAlignment pads texture rows to a multiple of n bytes. Values below
// 1 disable padding.
func WithRowAlignment(n int) Option {
	return func(b *Backend) { b.align = max(n, 1) }
}

// Stats counts backend calls.
type Stats struct {
	Clears    int
	Locks     int
	Copies    int
	Presents  int
	Discarded int
}

// Backend renders into memory.
type Backend struct {
	mu sync.Mutex

	target *image.RGBA
	last   *image.RGBA
	events []present.Event
	align  int
	stats  Stats
	closed bool
}

var _ present.Backend = (*Backend)(nil)

// New returns a backend with a width x height render target.
func New(width, height int, opts ...Option) *Backend {
	b := &Backend{
		target: image.NewRGBA(image.Rect(0, 0, width, height)),
		align:  DefaultRowAlignment,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns "headless".
func (b *Backend) Name() string { return Name }

// Size returns the render target size.
func (b *Backend) Size() (width, height int) {
	s := b.target.Bounds().Size()
	return s.X, s.Y
}

// Inject queues events for PollEvent, in order.
func (b *Backend) Inject(events ...present.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, events...)
}

// Pending returns the number of queued events.
func (b *Backend) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// PollEvent pops the oldest queued event.
func (b *Backend) PollEvent() (present.Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return present.Event{}, false
	}
	ev := b.events[0]
	b.events = b.events[1:]
	return ev, true
}

// Frames returns the number of presented frames.
func (b *Backend) Frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats.Presents
}

// Stats returns the call counters.
func (b *Backend) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// LastFrame returns a copy of the most recently presented frame, or nil
// before the first Present.
func (b *Backend) LastFrame() *image.RGBA {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.last == nil {
		return nil
	}
	return cloneRGBA(b.last)
}

// WritePNG encodes the last presented frame as PNG.
func (b *Backend) WritePNG(w io.Writer) error {
	frame := b.LastFrame()
	if frame == nil {
		return errors.New("headless: no frame presented")
	}
	return imaging.Encode(w, frame, imaging.PNG)
}

// CreateTexture allocates a texture with padded rows.
func (b *Backend) CreateTexture(format present.PixelFormat, width, height int) (present.RawTexture, error) {
	if b.closed {
		return nil, present.ErrClosed
	}
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("headless: unsupported format %v", format)
	}
	stride := (width*bpp + b.align - 1) / b.align * b.align
	return &Texture{
		backend: b,
		format:  format,
		rect:    image.Rect(0, 0, width, height),
		stride:  stride,
		pix:     make([]byte, stride*height),
	}, nil
}

// Clear fills the render target with c.
func (b *Backend) Clear(c color.RGBA) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return present.ErrClosed
	}
	draw.Draw(b.target, b.target.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	b.stats.Clears++
	return nil
}

// Copy draws src of tex into dst, scaling with nearest-neighbor sampling
// when the sizes differ.
func (b *Backend) Copy(tex present.RawTexture, src, dst image.Rectangle) error {
	t, ok := tex.(*Texture)
	if !ok || t.backend != b {
		return errors.New("headless: foreign texture")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return present.ErrClosed
	}

	img := t.rgba()
	if src.Size() == dst.Size() {
		draw.Draw(b.target, dst, img, src.Min, draw.Src)
	} else {
		draw.NearestNeighbor.Scale(b.target, dst, img, src, draw.Src, nil)
	}
	b.stats.Copies++
	return nil
}

// Present snapshots the render target as the last frame.
func (b *Backend) Present() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return present.ErrClosed
	}
	b.last = cloneRGBA(b.target)
	b.stats.Presents++
	return nil
}

// Close drops queued events. The last frame stays readable.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats.Discarded += len(b.events)
	b.events = nil
	b.closed = true
	return nil
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// Texture is a headless streaming texture.
type Texture struct {
	backend *Backend
	format  present.PixelFormat
	rect    image.Rectangle
	stride  int
	pix     []byte
	locked  bool
}

// Stride returns the row pitch in bytes.
func (t *Texture) Stride() int { return t.stride }

// Bytes returns the raw texture memory, padding included.
func (t *Texture) Bytes() []byte { return t.pix }

// Lock returns the bytes of region, starting at region.Min.
func (t *Texture) Lock(region image.Rectangle) ([]byte, int, error) {
	if t.pix == nil {
		return nil, 0, present.ErrClosed
	}
	if t.locked {
		return nil, 0, errors.New("headless: texture already locked")
	}
	if !region.In(t.rect) {
		return nil, 0, fmt.Errorf("headless: region %v outside %v", region, t.rect)
	}
	t.locked = true
	t.backend.mu.Lock()
	t.backend.stats.Locks++
	t.backend.mu.Unlock()
	off := region.Min.Y*t.stride + region.Min.X*t.format.BytesPerPixel()
	return t.pix[off:], t.stride, nil
}

// Unlock ends a Lock.
func (t *Texture) Unlock() { t.locked = false }

// Destroy frees the texture memory.
func (t *Texture) Destroy() error {
	t.pix = nil
	return nil
}

// rgba decodes the texture into an RGBA image.
func (t *Texture) rgba() *image.RGBA {
	img := image.NewRGBA(t.rect)
	bpp := t.format.BytesPerPixel()
	for y := 0; y < t.rect.Dy(); y++ {
		for x := 0; x < t.rect.Dx(); x++ {
			i := y*t.stride + x*bpp
			img.SetRGBA(x, y, t.format.Decode(t.pix[i:i+bpp]))
		}
	}
	return img
}
