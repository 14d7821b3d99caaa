// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package compute dispatches WGSL kernels on a GPU through gogpu/wgpu.
//
// A Session owns the device and everything created against it. The
// transfer protocol is a fixed sequence on the session's Queue:
//
//	s, err := compute.NewSession()
//	if err != nil {
//	    return err // errors.Is(err, compute.ErrAcceleratorUnavailable)
//	}
//	defer s.Release()
//
//	prog, err := compute.Compile(s, kernels.MultiplyByScalar)
//	k, err := prog.EntryPoint(kernels.MultiplyByScalarEntry)
//
//	src, err := compute.NewBuffer[float32](s, len(data), compute.ReadOnly, "src")
//	dst, err := compute.NewBuffer[float32](s, len(data), compute.WriteOnly, "dst")
//	err = compute.Write(s.Queue(), src, data)
//
//	_ = k.SetArg(0, src)
//	_ = k.SetArg(1, float32(5.4321))
//	_ = k.SetArg(2, dst)
//	ev, err := s.Queue().Launch(k, len(data))
//
//	out, err := compute.ReadAfter(ctx, s.Queue(), dst, ev)
//
// Kernel argument slots are reflected from the module's @group(0) globals
// with gogpu/naga: var<storage, read> arrays are inputs, var<storage,
// read_write> arrays are outputs and var<uniform> scalars are scalars.
//
// Device buffers are opaque. ReadAfter takes the launch's *Event as a
// required argument, so a read can never be issued ahead of the kernel it
// depends on.
package compute
