// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/kernelview"
)

// Program is WGSL source compiled for one session's device.
// Compilation is synchronous: a Program exists only if compilation succeeded.
type Program struct {
	s        *Session
	source   string
	module   *ir.Module
	slots    []Slot
	shader   *wgpu.ShaderModule
	released bool
}

// Compile parses, validates and reflects WGSL source, then builds the
// shader module on the session's device.
//
// Any failure is a *CompileError carrying the compiler diagnostic.
func Compile(s *Session, source string) (*Program, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}

	module, err := parseModule(source)
	if err != nil {
		kernelview.Logger().Debug("compute: compile failed", "err", err)
		return nil, err
	}
	slots, err := reflectSlots(module)
	if err != nil {
		return nil, err
	}
	entries := computeEntryPoints(module)
	if len(entries) == 0 {
		return nil, &CompileError{Stage: "reflect", Diagnostic: "no @compute entry point"}
	}

	shader, err := s.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.label("shader", entries[0]),
		WGSL:  source,
	})
	if err != nil {
		return nil, &CompileError{Stage: "device", Diagnostic: err.Error()}
	}

	p := &Program{s: s, source: source, module: module, slots: slots, shader: shader}
	if err := s.track(p); err != nil {
		shader.Release()
		return nil, err
	}

	kernelview.Logger().Debug("compute: program compiled",
		"entry_points", strings.Join(entries, ","),
		"slots", len(slots),
	)
	return p, nil
}

// EntryPoints returns the names of the program's compute entry points.
func (p *Program) EntryPoints() []string {
	return computeEntryPoints(p.module)
}

// EntryPoint builds the kernel for the named compute entry point. The
// kernel's slots are the bindings that entry point uses, in binding order.
// It fails with ErrEntryPointNotFound when no such entry point exists.
func (p *Program) EntryPoint(name string) (*Kernel, error) {
	if p.released {
		return nil, ErrReleased
	}
	if err := p.s.alive(); err != nil {
		return nil, err
	}

	ep, ok := findEntryPoint(p.module, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrEntryPointNotFound, name, strings.Join(p.EntryPoints(), ", "))
	}

	k := newKernel(p, name, ep.Workgroup, entrySlots(p.module, ep, p.slots))
	if err := k.build(); err != nil {
		k.releaseObjects()
		return nil, err
	}
	if err := p.s.track(k); err != nil {
		k.releaseObjects()
		return nil, err
	}
	return k, nil
}

// Release frees the shader module. Kernels already built keep working
// until they, or the session, are released.
func (p *Program) Release() {
	_ = p.release()
}

func (p *Program) release() error {
	if p.released {
		return nil
	}
	p.released = true
	if p.shader != nil {
		p.shader.Release()
	}
	return nil
}

// bindingType maps a slot kind to its bind group layout entry type.
func bindingType(k SlotKind) gputypes.BufferBindingType {
	switch k {
	case SlotInput:
		return gputypes.BufferBindingTypeReadOnlyStorage
	case SlotScalar:
		return gputypes.BufferBindingTypeUniform
	default:
		return gputypes.BufferBindingTypeStorage
	}
}
