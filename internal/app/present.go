// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package app

import (
	"context"
	"image/color"
	"os"

	"go.uber.org/multierr"

	"github.com/gogpu/kernelview"
	"github.com/gogpu/kernelview/internal/config"
	"github.com/gogpu/kernelview/present"
	"github.com/gogpu/kernelview/present/headless"
)

// RunPresentation opens the window and runs the frame loop until the user
// quits, the frame limit is reached or ctx is done.
//
// The headless backend has no input, so without a frame limit it renders
// a single frame.
func RunPresentation(ctx context.Context, cfg config.Window) (err error) {
	bg, err := config.ParseColor(cfg.ClearColor)
	if err != nil {
		return fail(StageSurface, err, "clear color")
	}

	surf, err := present.CreateSurface(cfg.Title, cfg.Width, cfg.Height,
		present.WithBackend(cfg.Backend),
		present.WithVSync(cfg.VSync),
		present.WithAccelerated(cfg.Accelerated),
		present.WithTargetTexture(cfg.TargetTexture),
	)
	if err != nil {
		return fail(StageSurface, err, "open %q window", cfg.Title)
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(surf.Close))

	w, h := surf.Size()
	tex, err := surf.CreateStreamingTexture(present.FormatRGB888, w, h)
	if err != nil {
		return fail(StageTexture, err, "streaming texture %dx%d", w, h)
	}

	frames := cfg.Frames
	hb, isHeadless := surf.Backend().(*headless.Backend)
	if isHeadless && frames == 0 {
		kernelview.Logger().Warn("app: headless backend has no input, rendering one frame")
		frames = 1
	}

	loop := present.NewLoop(surf, tex,
		present.WithMaxFrames(frames),
		present.WithClearColor(bg),
		present.WithFillRule(fillRule(cfg.Fill)),
		present.WithFillWorkers(cfg.FillWorkers),
	)
	if err := loop.Run(ctx); err != nil {
		return fail(StageLoop, err, "after %d frames", loop.Frames())
	}
	kernelview.Logger().Info("app: presentation finished",
		"frames", loop.Frames(), "state", loop.State().String())

	if cfg.Dump != "" {
		if !isHeadless {
			kernelview.Logger().Warn("app: frame dump needs the headless backend", "backend", surf.Backend().Name())
			return nil
		}
		if err := dumpFrame(hb, cfg.Dump); err != nil {
			return fail(StageLoop, err, "dump frame to %s", cfg.Dump)
		}
	}
	return nil
}

func fillRule(name string) present.FillRule {
	if name == "white" {
		return present.Solid(color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	}
	return present.XORPattern
}

func dumpFrame(b *headless.Backend, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	return b.WritePNG(f)
}
