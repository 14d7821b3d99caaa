// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"go.uber.org/multierr"

	"github.com/gogpu/kernelview"
)

// SurfaceOption configures CreateSurface.
type SurfaceOption func(*surfaceOptions)

type surfaceOptions struct {
	backend        string
	registry       *Registry
	backendOptions BackendOptions
}

// WithBackend selects a backend by name instead of the highest-priority
// available one. An empty name or "auto" keeps automatic selection.
func WithBackend(name string) SurfaceOption {
	return func(o *surfaceOptions) { o.backend = name }
}

// WithRegistry resolves backends from r instead of the global registry.
func WithRegistry(r *Registry) SurfaceOption {
	return func(o *surfaceOptions) { o.registry = r }
}

// WithVSync toggles presentation synchronized to the vertical blank.
func WithVSync(on bool) SurfaceOption {
	return func(o *surfaceOptions) { o.backendOptions.VSync = on }
}

// WithAccelerated toggles the hardware renderer.
func WithAccelerated(on bool) SurfaceOption {
	return func(o *surfaceOptions) { o.backendOptions.Accelerated = on }
}

// WithTargetTexture toggles render-to-texture support.
func WithTargetTexture(on bool) SurfaceOption {
	return func(o *surfaceOptions) { o.backendOptions.TargetTexture = on }
}

// Surface is a window plus its renderer. It owns at most one live
// streaming texture.
type Surface struct {
	backend Backend
	tex     *Texture
	closed  bool
}

// CreateSurface opens a window of the given drawable size.
//
// By default the renderer is accelerated, synchronized to vsync and
// supports target textures.
func CreateSurface(title string, width, height int, opts ...SurfaceOption) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrDisplayInitFailed, width, height)
	}

	o := surfaceOptions{
		registry: globalRegistry,
		backendOptions: BackendOptions{
			Accelerated:   true,
			VSync:         true,
			TargetTexture: true,
		},
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.backendOptions.Title = title
	o.backendOptions.Width = width
	o.backendOptions.Height = height

	var (
		b   Backend
		err error
	)
	if o.backend == "" || o.backend == "auto" {
		b, err = o.registry.Open(o.backendOptions)
	} else {
		b, err = o.registry.OpenByName(o.backend, o.backendOptions)
	}
	if err != nil {
		return nil, err
	}

	kernelview.Logger().Info("present: surface created",
		"backend", b.Name(), "title", title, "width", width, "height", height,
		"vsync", o.backendOptions.VSync)
	return NewSurface(b), nil
}

// NewSurface wraps an already opened backend.
func NewSurface(b Backend) *Surface {
	return &Surface{backend: b}
}

// Backend returns the underlying backend.
func (s *Surface) Backend() Backend { return s.backend }

// Size returns the drawable area in pixels.
func (s *Surface) Size() (width, height int) { return s.backend.Size() }

// Bounds returns the drawable area as a rectangle at the origin.
func (s *Surface) Bounds() image.Rectangle {
	w, h := s.Size()
	return image.Rect(0, 0, w, h)
}

// CreateStreamingTexture allocates a CPU-writable texture. A surface owns at
// most one live texture; destroy the previous one first.
func (s *Surface) CreateStreamingTexture(format PixelFormat, width, height int) (*Texture, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if !format.Valid() {
		return nil, fmt.Errorf("present: unsupported pixel format %v", format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("present: invalid texture size %dx%d", width, height)
	}
	if s.tex != nil && !s.tex.destroyed {
		return nil, errors.New("present: surface already owns a streaming texture")
	}

	raw, err := s.backend.CreateTexture(format, width, height)
	if err != nil {
		return nil, fmt.Errorf("present: create %v texture %dx%d: %w", format, width, height, err)
	}
	s.tex = &Texture{surf: s, raw: raw, format: format, width: width, height: height}
	return s.tex, nil
}

// Clear fills the render target with c.
func (s *Surface) Clear(c color.RGBA) error {
	if s.closed {
		return ErrClosed
	}
	return s.backend.Clear(c)
}

// Composite draws the src region of tex into the dst region of the render
// target. A nil src means the whole texture and a nil dst the whole
// surface. A texture whose last lock did not complete is refused.
func (s *Surface) Composite(tex *Texture, src, dst *image.Rectangle) error {
	if s.closed {
		return ErrClosed
	}
	if tex == nil || tex.surf != s {
		return errors.New("present: texture does not belong to this surface")
	}
	if tex.destroyed {
		return fmt.Errorf("%w: texture destroyed", ErrClosed)
	}
	if !tex.complete {
		return fmt.Errorf("%w: texture contents incomplete", ErrTextureLockFailed)
	}

	sr := tex.Bounds()
	if src != nil {
		if !src.In(sr) || src.Empty() {
			return fmt.Errorf("present: source %v outside texture %v", *src, sr)
		}
		sr = *src
	}
	dr := s.Bounds()
	if dst != nil {
		dr = *dst
	}
	return s.backend.Copy(tex.raw, sr, dr)
}

// Present shows the render target. It blocks for vsync when enabled.
func (s *Surface) Present() error {
	if s.closed {
		return ErrClosed
	}
	return s.backend.Present()
}

// PollEvent returns the next pending input event without blocking.
func (s *Surface) PollEvent() (Event, bool) {
	if s.closed {
		return Event{}, false
	}
	return s.backend.PollEvent()
}

// Close destroys the texture and the window. It is safe to call twice.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.tex != nil {
		err = multierr.Append(err, s.tex.Destroy())
	}
	err = multierr.Append(err, s.backend.Close())
	return err
}
