// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"image"
	"image/color"
)

// BackendOptions configures a backend created through the registry.
type BackendOptions struct {
	Title  string
	Width  int
	Height int

	// Accelerated requests a hardware renderer.
	Accelerated bool

	// VSync makes Present wait for the vertical blank.
	VSync bool

	// TargetTexture requests render-to-texture support.
	TargetTexture bool
}

// Backend is a window (or an in-memory stand-in) with a renderer.
//
// Backends are driven from a single goroutine. Implementations do not need
// to be safe for concurrent use.
type Backend interface {
	// Name returns the registry name of the backend.
	Name() string

	// Size returns the drawable area in pixels.
	Size() (width, height int)

	// CreateTexture allocates a streaming texture.
	CreateTexture(format PixelFormat, width, height int) (RawTexture, error)

	// Clear fills the render target with c.
	Clear(c color.RGBA) error

	// Copy draws the src region of tex into the dst region of the render
	// target, scaling when the sizes differ.
	Copy(tex RawTexture, src, dst image.Rectangle) error

	// Present shows the render target.
	Present() error

	// PollEvent returns the next pending event without blocking.
	PollEvent() (Event, bool)

	// Close releases the window and renderer.
	Close() error
}

// RawTexture is the backend side of a streaming texture.
type RawTexture interface {
	// Lock maps region for writing. The returned slice starts at the first
	// byte of region.Min and rows are stride bytes apart.
	Lock(region image.Rectangle) (pix []byte, stride int, err error)

	// Unlock uploads the written bytes.
	Unlock()

	// Destroy frees the texture.
	Destroy() error
}
