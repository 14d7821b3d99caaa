// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package app runs the two kernelview phases: a multiply on the
// accelerator, then the frame loop. The phases share no state.
package app

import (
	"context"
	"io"

	"github.com/gogpu/kernelview"
	"github.com/gogpu/kernelview/internal/config"
)

// Runner sequences the phases. Zero fields use RunCompute and
// RunPresentation.
type Runner struct {
	Compute func(ctx context.Context, w io.Writer, cfg config.Compute) error
	Present func(ctx context.Context, cfg config.Window) error
}

// Run runs the compute phase, writing its report to w, then the
// presentation phase. A compute failure stops the run unless
// cfg.Compute.Optional is set, in which case it is logged and the window
// still opens.
func (r Runner) Run(ctx context.Context, w io.Writer, cfg *config.Config) error {
	runCompute := r.Compute
	if runCompute == nil {
		runCompute = RunCompute
	}
	runPresent := r.Present
	if runPresent == nil {
		runPresent = RunPresentation
	}

	if err := runCompute(ctx, w, cfg.Compute); err != nil {
		if !cfg.Compute.Optional {
			return err
		}
		kernelview.Logger().Warn("app: compute phase failed, continuing",
			"stage", StageOf(err), "err", err)
	}
	return runPresent(ctx, cfg.Window)
}

// Run is Runner{}.Run.
func Run(ctx context.Context, w io.Writer, cfg *config.Config) error {
	return Runner{}.Run(ctx, w, cfg)
}
