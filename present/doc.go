// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package present drives a frame loop that uploads a CPU-filled streaming
// texture to a window every frame.
//
// A Surface wraps a Backend chosen from a priority registry. The SDL2
// backend (package present/sdl) registers as "sdl" with priority 100; the
// in-memory backend (package present/headless) registers as "headless"
// with priority 10. Blank-import the backends you want:
//
//	import (
//	    _ "github.com/gogpu/kernelview/present/headless"
//	    _ "github.com/gogpu/kernelview/present/sdl"
//	)
//
//	surf, err := present.CreateSurface("mandlebrot", 800, 600)
//	if err != nil {
//	    return err
//	}
//	defer surf.Close()
//
//	w, h := surf.Size()
//	tex, err := surf.CreateStreamingTexture(present.FormatRGB888, w, h)
//	if err != nil {
//	    return err
//	}
//	return present.NewLoop(surf, tex).Run(ctx)
//
// Texture.Lock is the only way to write pixels. The view it hands out is
// valid only inside the callback; the texture is unlocked on every exit
// path.
package present
