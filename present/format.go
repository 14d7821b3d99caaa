// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"fmt"
	"image/color"
)

// PixelFormat is the memory layout of one texture pixel.
type PixelFormat int

const (
	// FormatRGB888 is a 32-bit little-endian 0x00RRGGBB word, stored in
	// memory as B, G, R, X. The X byte is ignored.
	FormatRGB888 PixelFormat = iota + 1

	// FormatRGBA32 stores R, G, B, A bytes in memory order.
	FormatRGBA32
)

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGB888:
		return "RGB888"
	case FormatRGBA32:
		return "RGBA32"
	default:
		return fmt.Sprintf("PixelFormat(%d)", int(f))
	}
}

// BytesPerPixel returns the size of one pixel, or 0 for an unknown format.
func (f PixelFormat) BytesPerPixel() int {
	switch f {
	case FormatRGB888, FormatRGBA32:
		return 4
	default:
		return 0
	}
}

// Valid reports whether f is a known format.
func (f PixelFormat) Valid() bool {
	return f.BytesPerPixel() > 0
}

// Encode writes c into dst, which must hold at least BytesPerPixel bytes.
func (f PixelFormat) Encode(dst []byte, c color.RGBA) {
	switch f {
	case FormatRGB888:
		dst[0], dst[1], dst[2], dst[3] = c.B, c.G, c.R, 0xff
	case FormatRGBA32:
		dst[0], dst[1], dst[2], dst[3] = c.R, c.G, c.B, c.A
	}
}

// Decode reads one pixel from src. RGB888 pixels are always opaque.
func (f PixelFormat) Decode(src []byte) color.RGBA {
	switch f {
	case FormatRGB888:
		return color.RGBA{R: src[2], G: src[1], B: src[0], A: 0xff}
	case FormatRGBA32:
		return color.RGBA{R: src[0], G: src[1], B: src[2], A: src[3]}
	default:
		return color.RGBA{}
	}
}
