// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"errors"
	"image"
	"image/color"
)

// fakeBackend records calls and serves textures with a configurable stride.
type fakeBackend struct {
	w, h    int
	pad     int
	lockErr error
	events  []Event

	clears, copies, presents int
	closed                   bool
	tex                      *fakeTexture
}

func (b *fakeBackend) Name() string           { return "fake" }
func (b *fakeBackend) Size() (int, int)       { return b.w, b.h }
func (b *fakeBackend) Clear(color.RGBA) error { b.clears++; return nil }
func (b *fakeBackend) Present() error         { b.presents++; return nil }
func (b *fakeBackend) Close() error           { b.closed = true; return nil }

func (b *fakeBackend) CreateTexture(format PixelFormat, w, h int) (RawTexture, error) {
	stride := w*format.BytesPerPixel() + b.pad
	b.tex = &fakeTexture{b: b, stride: stride, bpp: format.BytesPerPixel(), pix: make([]byte, stride*h)}
	return b.tex, nil
}

func (b *fakeBackend) Copy(RawTexture, image.Rectangle, image.Rectangle) error {
	b.copies++
	return nil
}

func (b *fakeBackend) PollEvent() (Event, bool) {
	if len(b.events) == 0 {
		return Event{}, false
	}
	ev := b.events[0]
	b.events = b.events[1:]
	return ev, true
}

type fakeTexture struct {
	b         *fakeBackend
	stride    int
	bpp       int
	pix       []byte
	locks     int
	unlocks   int
	destroyed bool
}

func (t *fakeTexture) Lock(r image.Rectangle) ([]byte, int, error) {
	if t.b.lockErr != nil {
		return nil, 0, t.b.lockErr
	}
	t.locks++
	return t.pix[r.Min.Y*t.stride+r.Min.X*t.bpp:], t.stride, nil
}

func (t *fakeTexture) Unlock() { t.unlocks++ }

func (t *fakeTexture) Destroy() error {
	if t.destroyed {
		return errors.New("double destroy")
	}
	t.destroyed = true
	return nil
}

func newFakeSurface(w, h, pad int) (*Surface, *fakeBackend) {
	b := &fakeBackend{w: w, h: h, pad: pad}
	return NewSurface(b), b
}
