// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
)

var _ gpucontext.Texture = (*Texture)(nil)

// Pixels is a locked, writable view of a texture region.
//
// Data[0] is the first byte of Rect.Min. Rows are Stride bytes apart and
// Stride may exceed Rect.Dx()*BytesPerPixel; the bytes past the end of a
// row are padding and must not be written.
type Pixels struct {
	Data          []byte
	Rect          image.Rectangle
	Stride        int
	BytesPerPixel int
	Format        PixelFormat
}

// Offset returns the index in Data of the pixel at (x, y), given in
// texture coordinates.
func (p Pixels) Offset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*p.BytesPerPixel
}

// Texture is a streaming texture owned by a Surface.
type Texture struct {
	surf   *Surface
	raw    RawTexture
	format PixelFormat
	width  int
	height int

	locked    bool
	complete  bool
	destroyed bool
}

// Width returns the texture width in pixels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture) Height() int { return t.height }

// Format returns the pixel format.
func (t *Texture) Format() PixelFormat { return t.format }

// Bounds returns the texture area as a rectangle at the origin.
func (t *Texture) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.width, t.height)
}

// Lock maps region (nil for the whole texture) and calls fn with exclusive
// write access to it. The texture is unlocked when fn returns or panics.
//
// If the mapping fails or fn returns an error, Lock returns an error
// wrapping ErrTextureLockFailed and the texture stays incomplete until a
// later Lock succeeds. A panic in fn propagates after the unlock.
func (t *Texture) Lock(region *image.Rectangle, fn func(Pixels) error) error {
	if t.destroyed {
		return fmt.Errorf("%w: texture destroyed", ErrTextureLockFailed)
	}
	if t.locked {
		return fmt.Errorf("%w: texture already locked", ErrTextureLockFailed)
	}

	r := t.Bounds()
	if region != nil {
		if region.Empty() || !region.In(r) {
			return fmt.Errorf("%w: region %v outside texture %v", ErrTextureLockFailed, *region, r)
		}
		r = *region
	}

	pix, stride, err := t.raw.Lock(r)
	if err != nil {
		t.complete = false
		return fmt.Errorf("%w: %w", ErrTextureLockFailed, err)
	}

	bpp := t.format.BytesPerPixel()
	if need := (r.Dy()-1)*stride + r.Dx()*bpp; stride < r.Dx()*bpp || len(pix) < need {
		t.raw.Unlock()
		t.complete = false
		return fmt.Errorf("%w: backend mapped %d bytes with stride %d for %v", ErrTextureLockFailed, len(pix), stride, r)
	}

	t.locked = true
	t.complete = false
	defer func() {
		t.raw.Unlock()
		t.locked = false
	}()

	if err := fn(Pixels{Data: pix, Rect: r, Stride: stride, BytesPerPixel: bpp, Format: t.format}); err != nil {
		return fmt.Errorf("%w: %w", ErrTextureLockFailed, err)
	}
	t.complete = true
	return nil
}

// Destroy frees the texture. It is safe to call twice.
func (t *Texture) Destroy() error {
	if t.destroyed {
		return nil
	}
	t.destroyed = true
	return t.raw.Destroy()
}
