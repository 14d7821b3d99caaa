// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nosdl

package sdl

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gpucontext"
	sdl2 "github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"

	"github.com/gogpu/kernelview/present"
)

// Name is the registry name of this backend.
const Name = "sdl"

func init() {
	present.Register(Name, 100, Open, nil)
}

// Backend is an SDL2 window with a 2D renderer.
type Backend struct {
	window   *sdl2.Window
	renderer *sdl2.Renderer
	closed   bool
}

var _ present.Backend = (*Backend)(nil)

// Open initializes the SDL video subsystem and creates a centered window
// with a renderer configured from opts.
func Open(opts present.BackendOptions) (present.Backend, error) {
	if err := sdl2.Init(sdl2.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("%w: init video: %w", present.ErrDisplayInitFailed, err)
	}

	window, err := sdl2.CreateWindow(opts.Title,
		sdl2.WINDOWPOS_CENTERED, sdl2.WINDOWPOS_CENTERED,
		int32(opts.Width), int32(opts.Height), sdl2.WINDOW_SHOWN)
	if err != nil {
		sdl2.Quit()
		return nil, fmt.Errorf("%w: create window: %w", present.ErrDisplayInitFailed, err)
	}

	renderer, err := sdl2.CreateRenderer(window, -1, rendererFlags(opts))
	if err != nil {
		err = multierr.Append(err, window.Destroy())
		sdl2.Quit()
		return nil, fmt.Errorf("%w: create renderer: %w", present.ErrDisplayInitFailed, err)
	}
	return &Backend{window: window, renderer: renderer}, nil
}

func rendererFlags(opts present.BackendOptions) uint32 {
	var flags uint32
	if opts.Accelerated {
		flags |= uint32(sdl2.RENDERER_ACCELERATED)
	} else {
		flags |= uint32(sdl2.RENDERER_SOFTWARE)
	}
	if opts.VSync {
		flags |= uint32(sdl2.RENDERER_PRESENTVSYNC)
	}
	if opts.TargetTexture {
		flags |= uint32(sdl2.RENDERER_TARGETTEXTURE)
	}
	return flags
}

// Name returns "sdl".
func (b *Backend) Name() string { return Name }

// Size returns the renderer output size, which differs from the window
// size on high-density displays.
func (b *Backend) Size() (width, height int) {
	w, h, err := b.renderer.GetOutputSize()
	if err != nil {
		w, h = b.window.GetSize()
	}
	return int(w), int(h)
}

// CreateTexture creates a streaming texture.
func (b *Backend) CreateTexture(format present.PixelFormat, width, height int) (present.RawTexture, error) {
	var pf uint32
	switch format {
	case present.FormatRGB888:
		pf = uint32(sdl2.PIXELFORMAT_RGB888)
	case present.FormatRGBA32:
		pf = uint32(sdl2.PIXELFORMAT_RGBA32)
	default:
		return nil, fmt.Errorf("sdl: unsupported format %v", format)
	}
	tex, err := b.renderer.CreateTexture(pf, int(sdl2.TEXTUREACCESS_STREAMING), int32(width), int32(height))
	if err != nil {
		return nil, err
	}
	return &texture{tex: tex, bounds: image.Rect(0, 0, width, height)}, nil
}

// Clear fills the render target with c.
func (b *Backend) Clear(c color.RGBA) error {
	if err := b.renderer.SetDrawColor(c.R, c.G, c.B, c.A); err != nil {
		return err
	}
	return b.renderer.Clear()
}

// Copy draws src of tex into dst, letting the renderer scale.
func (b *Backend) Copy(tex present.RawTexture, src, dst image.Rectangle) error {
	t, ok := tex.(*texture)
	if !ok {
		return errors.New("sdl: foreign texture")
	}
	return b.renderer.Copy(t.tex, toRect(src), toRect(dst))
}

// Present shows the back buffer.
func (b *Backend) Present() error {
	b.renderer.Present()
	return nil
}

// PollEvent translates the next SDL event.
func (b *Backend) PollEvent() (present.Event, bool) {
	ev := sdl2.PollEvent()
	if ev == nil {
		return present.Event{}, false
	}
	return translate(ev), true
}

// Close destroys the renderer and window and shuts SDL down.
func (b *Backend) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	var err error
	err = multierr.Append(err, b.renderer.Destroy())
	err = multierr.Append(err, b.window.Destroy())
	sdl2.Quit()
	return err
}

func toRect(r image.Rectangle) *sdl2.Rect {
	return &sdl2.Rect{X: int32(r.Min.X), Y: int32(r.Min.Y), W: int32(r.Dx()), H: int32(r.Dy())}
}

type texture struct {
	tex    *sdl2.Texture
	bounds image.Rectangle
}

func (t *texture) Lock(region image.Rectangle) ([]byte, int, error) {
	var rect *sdl2.Rect
	if region != t.bounds {
		rect = toRect(region)
	}
	return t.tex.Lock(rect)
}

func (t *texture) Unlock() { t.tex.Unlock() }

func (t *texture) Destroy() error { return t.tex.Destroy() }

func translate(ev sdl2.Event) present.Event {
	switch e := ev.(type) {
	case *sdl2.QuitEvent:
		return present.QuitEvent()
	case *sdl2.KeyboardEvent:
		kind := present.EventKeyUp
		if e.Type == sdl2.KEYDOWN {
			kind = present.EventKeyDown
		}
		return present.Event{
			Kind: kind,
			Key:  keyOf(e.Keysym.Sym),
			Mods: modsOf(e.Keysym.Mod),
		}
	default:
		return present.Event{Kind: present.EventOther}
	}
}

var namedKeys = map[sdl2.Keycode]gpucontext.Key{
	sdl2.K_ESCAPE:    gpucontext.KeyEscape,
	sdl2.K_TAB:       gpucontext.KeyTab,
	sdl2.K_BACKSPACE: gpucontext.KeyBackspace,
	sdl2.K_RETURN:    gpucontext.KeyEnter,
	sdl2.K_SPACE:     gpucontext.KeySpace,
	sdl2.K_INSERT:    gpucontext.KeyInsert,
	sdl2.K_DELETE:    gpucontext.KeyDelete,
	sdl2.K_HOME:      gpucontext.KeyHome,
	sdl2.K_END:       gpucontext.KeyEnd,
	sdl2.K_PAGEUP:    gpucontext.KeyPageUp,
	sdl2.K_PAGEDOWN:  gpucontext.KeyPageDown,
	sdl2.K_LEFT:      gpucontext.KeyLeft,
	sdl2.K_RIGHT:     gpucontext.KeyRight,
	sdl2.K_UP:        gpucontext.KeyUp,
	sdl2.K_DOWN:      gpucontext.KeyDown,
}

func keyOf(sym sdl2.Keycode) gpucontext.Key {
	switch {
	case sym >= sdl2.K_a && sym <= sdl2.K_z:
		return gpucontext.KeyA + gpucontext.Key(sym-sdl2.K_a)
	case sym >= sdl2.K_0 && sym <= sdl2.K_9:
		return gpucontext.Key0 + gpucontext.Key(sym-sdl2.K_0)
	case sym >= sdl2.K_F1 && sym <= sdl2.K_F12:
		return gpucontext.KeyF1 + gpucontext.Key(sym-sdl2.K_F1)
	}
	return namedKeys[sym]
}

func modsOf(mod uint16) gpucontext.Modifiers {
	var m gpucontext.Modifiers
	if mod&uint16(sdl2.KMOD_SHIFT) != 0 {
		m |= gpucontext.ModShift
	}
	if mod&uint16(sdl2.KMOD_CTRL) != 0 {
		m |= gpucontext.ModControl
	}
	if mod&uint16(sdl2.KMOD_ALT) != 0 {
		m |= gpucontext.ModAlt
	}
	if mod&uint16(sdl2.KMOD_GUI) != 0 {
		m |= gpucontext.ModSuper
	}
	return m
}
