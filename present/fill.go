// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"image/color"

	"github.com/gogpu/kernelview/internal/parallel"
)

// FillRule computes the color of the texture pixel at (x, y). Rules are pure
// so a frame depends only on the texture geometry.
type FillRule func(x, y int) color.RGBA

// XORPattern is the default fill rule: an x^y checker ramp.
func XORPattern(x, y int) color.RGBA {
	v := uint8(x ^ y)
	return color.RGBA{R: v, G: uint8(x), B: uint8(y), A: 0xff}
}

// Solid returns a rule that paints every pixel c.
func Solid(c color.RGBA) FillRule {
	return func(int, int) color.RGBA { return c }
}

// Fill writes rule into every pixel of p at y*Stride + x*BytesPerPixel
// relative to p.Rect.Min. Row padding is left untouched.
func Fill(p Pixels, rule FillRule) {
	rowBytes := p.Rect.Dx() * p.BytesPerPixel
	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		row := p.Data[(y-p.Rect.Min.Y)*p.Stride:]
		row = row[:rowBytes]
		for x := p.Rect.Min.X; x < p.Rect.Max.X; x++ {
			i := (x - p.Rect.Min.X) * p.BytesPerPixel
			p.Format.Encode(row[i:i+p.BytesPerPixel], rule(x, y))
		}
	}
}

// FillRows is Fill split into row bands run on pool. The result is
// byte-identical to Fill because each band writes only its own rows.
func FillRows(p Pixels, rule FillRule, pool *parallel.Pool) {
	pool.Rows(p.Rect.Dy(), func(lo, hi int) {
		band := p
		band.Rect.Min.Y = p.Rect.Min.Y + lo
		band.Rect.Max.Y = p.Rect.Min.Y + hi
		band.Data = p.Data[lo*p.Stride:]
		Fill(band, rule)
	})
}
