// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package app

import (
	"context"
	"io"

	"github.com/gogpu/gputypes"
	"go.uber.org/multierr"

	"github.com/gogpu/kernelview"
	"github.com/gogpu/kernelview/compute"
	"github.com/gogpu/kernelview/compute/kernels"
	"github.com/gogpu/kernelview/internal/config"
)

// MultiplyOnDevice multiplies src by coeff with kernels.MultiplyByScalar on
// a fresh accelerator session. Every resource is released before it
// returns.
func MultiplyOnDevice(ctx context.Context, cfg config.Compute, src []float32, coeff float32) (result []float32, err error) {
	s, err := compute.NewSession(
		compute.WithBackends(cfg.BackendMask()),
		compute.WithFallbackAdapter(cfg.Fallback),
		compute.WithPowerPreference(gputypes.PowerPreferenceHighPerformance),
		compute.WithLabel("kernelview"),
	)
	if err != nil {
		return nil, fail(StageSession, err, "open accelerator")
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(s.Release))
	kernelview.Logger().Info("app: accelerator ready", "device", s.Device().String())

	prog, err := compute.Compile(s, kernels.MultiplyByScalar)
	if err != nil {
		return nil, fail(StageCompile, err, "compile %s", kernels.MultiplyByScalarEntry)
	}
	k, err := prog.EntryPoint(kernels.MultiplyByScalarEntry)
	if err != nil {
		return nil, fail(StageCompile, err, "build %s", kernels.MultiplyByScalarEntry)
	}

	n := len(src)
	in, err := compute.NewBuffer[float32](s, n, compute.ReadOnly, "src")
	if err != nil {
		return nil, fail(StageAllocate, err, "input buffer")
	}
	out, err := compute.NewBuffer[float32](s, n, compute.WriteOnly, "dst")
	if err != nil {
		return nil, fail(StageAllocate, err, "output buffer")
	}

	q := s.Queue()
	if err := compute.Write(q, in, src); err != nil {
		return nil, fail(StageWrite, err, "upload %d values", n)
	}

	if err := k.SetArg(0, in); err != nil {
		return nil, fail(StageLaunch, err, "bind src")
	}
	if err := k.SetArg(1, coeff); err != nil {
		return nil, fail(StageLaunch, err, "bind coeff")
	}
	if err := k.SetArg(2, out); err != nil {
		return nil, fail(StageLaunch, err, "bind dst")
	}
	ev, err := q.Launch(k, n)
	if err != nil {
		return nil, fail(StageLaunch, err, "dispatch %d invocations", n)
	}

	result, err = compute.ReadAfter(ctx, q, out, ev)
	if err != nil {
		return nil, fail(StageRead, err, "download %d values", n)
	}
	return result, nil
}

// RunCompute runs the compute phase and writes the report to w. Nothing is
// written unless the whole dispatch succeeds.
func RunCompute(ctx context.Context, w io.Writer, cfg config.Compute) error {
	result, err := MultiplyOnDevice(ctx, cfg, cfg.Source, cfg.Coefficient)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, FormatReport(cfg.Source, cfg.Coefficient, result))
	return err
}
