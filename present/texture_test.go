// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextureLockWholeTexture(t *testing.T) {
	surf, b := newFakeSurface(4, 3, 8)
	tex, err := surf.CreateStreamingTexture(FormatRGB888, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, tex.Width())
	assert.Equal(t, 3, tex.Height())

	var got Pixels
	err = tex.Lock(nil, func(p Pixels) error {
		got = p
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 3), got.Rect)
	assert.Equal(t, 24, got.Stride)
	assert.Equal(t, 4, got.BytesPerPixel)
	assert.Equal(t, 1, b.tex.locks)
	assert.Equal(t, 1, b.tex.unlocks)
	assert.True(t, tex.complete)
}

func TestTextureLockRegion(t *testing.T) {
	surf, _ := newFakeSurface(8, 8, 0)
	tex, err := surf.CreateStreamingTexture(FormatRGBA32, 8, 8)
	require.NoError(t, err)

	region := image.Rect(2, 3, 4, 5)
	err = tex.Lock(&region, func(p Pixels) error {
		assert.Equal(t, region, p.Rect)
		assert.Equal(t, 0, p.Offset(2, 3))
		assert.Equal(t, 32+4, p.Offset(3, 4))
		return nil
	})
	require.NoError(t, err)

	outside := image.Rect(6, 6, 10, 10)
	err = tex.Lock(&outside, func(Pixels) error { return nil })
	assert.ErrorIs(t, err, ErrTextureLockFailed)
}

func TestTextureLockCallbackError(t *testing.T) {
	surf, b := newFakeSurface(2, 2, 0)
	tex, err := surf.CreateStreamingTexture(FormatRGB888, 2, 2)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = tex.Lock(nil, func(Pixels) error { return boom })
	assert.ErrorIs(t, err, ErrTextureLockFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, b.tex.unlocks, "unlocked on error")

	err = surf.Composite(tex, nil, nil)
	assert.ErrorIs(t, err, ErrTextureLockFailed, "incomplete texture is refused")
	assert.Zero(t, b.copies)

	require.NoError(t, tex.Lock(nil, func(Pixels) error { return nil }))
	assert.NoError(t, surf.Composite(tex, nil, nil))
	assert.Equal(t, 1, b.copies)
}

func TestTextureLockPanicUnlocks(t *testing.T) {
	surf, b := newFakeSurface(2, 2, 0)
	tex, err := surf.CreateStreamingTexture(FormatRGB888, 2, 2)
	require.NoError(t, err)

	assert.Panics(t, func() {
		_ = tex.Lock(nil, func(Pixels) error { panic("fill exploded") })
	})
	assert.Equal(t, 1, b.tex.unlocks)
	assert.False(t, tex.locked)
	assert.ErrorIs(t, surf.Composite(tex, nil, nil), ErrTextureLockFailed)
}

func TestTextureLockNested(t *testing.T) {
	surf, _ := newFakeSurface(2, 2, 0)
	tex, err := surf.CreateStreamingTexture(FormatRGB888, 2, 2)
	require.NoError(t, err)

	var inner error
	err = tex.Lock(nil, func(Pixels) error {
		inner = tex.Lock(nil, func(Pixels) error { return nil })
		return nil
	})
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrTextureLockFailed)
}

func TestTextureLockBackendFailure(t *testing.T) {
	surf, b := newFakeSurface(2, 2, 0)
	tex, err := surf.CreateStreamingTexture(FormatRGB888, 2, 2)
	require.NoError(t, err)

	b.lockErr = errors.New("device lost")
	called := false
	err = tex.Lock(nil, func(Pixels) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrTextureLockFailed)
	assert.False(t, called)
	assert.Zero(t, b.tex.unlocks, "nothing to unlock")
}

func TestSurfaceSingleTexture(t *testing.T) {
	surf, b := newFakeSurface(2, 2, 0)
	tex, err := surf.CreateStreamingTexture(FormatRGB888, 2, 2)
	require.NoError(t, err)

	_, err = surf.CreateStreamingTexture(FormatRGB888, 2, 2)
	assert.Error(t, err)

	require.NoError(t, tex.Destroy())
	require.NoError(t, tex.Destroy())
	_, err = surf.CreateStreamingTexture(FormatRGB888, 2, 2)
	assert.NoError(t, err)

	_, err = surf.CreateStreamingTexture(PixelFormat(0), 2, 2)
	assert.Error(t, err)

	require.NoError(t, surf.Close())
	require.NoError(t, surf.Close())
	assert.True(t, b.closed)
	assert.True(t, b.tex.destroyed)
	assert.ErrorIs(t, surf.Clear(Red), ErrClosed)
	assert.ErrorIs(t, surf.Present(), ErrClosed)
}

func TestCompositeRegions(t *testing.T) {
	surf, _ := newFakeSurface(4, 4, 0)
	tex, err := surf.CreateStreamingTexture(FormatRGB888, 4, 4)
	require.NoError(t, err)
	require.NoError(t, tex.Lock(nil, func(Pixels) error { return nil }))

	src := image.Rect(0, 0, 2, 2)
	dst := image.Rect(0, 0, 4, 4)
	assert.NoError(t, surf.Composite(tex, &src, &dst))

	bad := image.Rect(0, 0, 8, 8)
	assert.Error(t, surf.Composite(tex, &bad, nil))

	other, _ := newFakeSurface(4, 4, 0)
	assert.Error(t, other.Composite(tex, nil, nil))
}

func TestPixelFormat(t *testing.T) {
	c := color.RGBA{R: 1, G: 2, B: 3, A: 4}
	buf := make([]byte, 4)

	FormatRGB888.Encode(buf, c)
	assert.Equal(t, []byte{3, 2, 1, 0xff}, buf)
	assert.Equal(t, color.RGBA{R: 1, G: 2, B: 3, A: 0xff}, FormatRGB888.Decode(buf))

	FormatRGBA32.Encode(buf, c)
	assert.Equal(t, []byte{1, 2, 3, 4}, buf)
	assert.Equal(t, c, FormatRGBA32.Decode(buf))

	assert.Equal(t, "RGB888", FormatRGB888.String())
	assert.Equal(t, 0, PixelFormat(9).BytesPerPixel())
	assert.False(t, PixelFormat(9).Valid())
}
