// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
)

// Kernel is one compute entry point of a Program together with its
// invocation record: the values currently bound to each argument slot.
type Kernel struct {
	prog      *Program
	name      string
	workgroup [3]uint32
	slots     []Slot
	args      []boundArg

	bgl      *wgpu.BindGroupLayout
	layout   *wgpu.PipelineLayout
	pipeline *wgpu.ComputePipeline
	released bool
}

// boundArg is the value held by one slot. Exactly one of buf and scalar
// is set once the slot is bound.
type boundArg struct {
	buf    bufferArg
	scalar []byte
}

func (a boundArg) bound() bool { return a.buf != nil || a.scalar != nil }

func newKernel(p *Program, name string, wg [3]uint32, slots []Slot) *Kernel {
	for i := range wg {
		if wg[i] == 0 {
			wg[i] = 1
		}
	}
	return &Kernel{
		prog:      p,
		name:      name,
		workgroup: wg,
		slots:     slots,
		args:      make([]boundArg, len(slots)),
	}
}

// build creates the bind group layout and the compute pipeline.
func (k *Kernel) build() error {
	s := k.prog.s
	entries := make([]wgpu.BindGroupLayoutEntry, len(k.slots))
	for i, slot := range k.slots {
		entries[i] = wgpu.BindGroupLayoutEntry{
			Binding:    slot.Binding,
			Visibility: wgpu.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: bindingType(slot.Kind)},
		}
	}

	var err error
	k.bgl, err = s.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   s.label("bgl", k.name),
		Entries: entries,
	})
	if err != nil {
		return &CompileError{Stage: "device", Diagnostic: fmt.Sprintf("%s: bind group layout: %v", k.name, err)}
	}
	k.layout, err = s.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            s.label("layout", k.name),
		BindGroupLayouts: []*wgpu.BindGroupLayout{k.bgl},
	})
	if err != nil {
		return &CompileError{Stage: "device", Diagnostic: fmt.Sprintf("%s: pipeline layout: %v", k.name, err)}
	}
	k.pipeline, err = s.device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:      s.label("pipeline", k.name),
		Layout:     k.layout,
		Module:     k.prog.shader,
		EntryPoint: k.name,
	})
	if err != nil {
		return &CompileError{Stage: "device", Diagnostic: fmt.Sprintf("%s: compute pipeline: %v", k.name, err)}
	}
	return nil
}

// Name returns the entry point name.
func (k *Kernel) Name() string { return k.name }

// Slots returns a copy of the argument slots in positional order.
func (k *Kernel) Slots() []Slot {
	out := make([]Slot, len(k.slots))
	copy(out, k.slots)
	return out
}

// WorkgroupSize returns the entry point's @workgroup_size.
func (k *Kernel) WorkgroupSize() [3]uint32 { return k.workgroup }

// SetArg binds value to the argument at index. The last bound value wins.
//
// Buffer slots take a *Buffer[T] of the slot's element type; an input slot
// rejects WriteOnly buffers and an output slot rejects ReadOnly buffers.
// Scalar slots take a float32, int32 or uint32 matching the slot.
// Anything else fails with ErrArgumentType.
func (k *Kernel) SetArg(index int, value any) error {
	if k.released {
		return ErrReleased
	}
	if index < 0 || index >= len(k.slots) {
		return fmt.Errorf("%w: %s takes %d arguments, got index %d", ErrArgumentType, k.name, len(k.slots), index)
	}
	arg, err := k.slots[index].accept(value)
	if err != nil {
		return fmt.Errorf("%s: %w", k.name, err)
	}
	if arg.buf != nil && arg.buf.owner() != k.prog.s {
		return fmt.Errorf("%w: %s argument %d: buffer %q belongs to another session",
			ErrArgumentType, k.name, index, arg.buf.Label())
	}
	k.args[index] = arg
	return nil
}

// accept checks value against the slot and converts it to a bound argument.
func (s Slot) accept(value any) (boundArg, error) {
	mismatch := func(format string, args ...any) error {
		return fmt.Errorf("%w: argument %d (%s): %s", ErrArgumentType, s.Index, s.Name, fmt.Sprintf(format, args...))
	}

	switch v := value.(type) {
	case nil:
		return boundArg{}, mismatch("nil value")
	case bufferArg:
		if isNilBuffer(v) {
			return boundArg{}, mismatch("nil buffer")
		}
		if s.Kind == SlotScalar {
			return boundArg{}, mismatch("want %s scalar, got buffer %q", s.Elem, v.Label())
		}
		if v.elem() != s.Elem {
			return boundArg{}, mismatch("want array<%s>, got %s buffer %q", s.Elem, v.elem(), v.Label())
		}
		if s.Kind == SlotInput && v.Access() == WriteOnly {
			return boundArg{}, mismatch("input slot cannot read write-only buffer %q", v.Label())
		}
		if s.Kind == SlotOutput && v.Access() == ReadOnly {
			return boundArg{}, mismatch("output slot cannot write read-only buffer %q", v.Label())
		}
		if s.Len > 0 && v.Len() < s.Len {
			return boundArg{}, mismatch("want at least %d elements, buffer %q has %d", s.Len, v.Label(), v.Len())
		}
		if v.isReleased() {
			return boundArg{}, fmt.Errorf("%w: buffer %q", ErrReleased, v.Label())
		}
		return boundArg{buf: v}, nil
	default:
		if s.Kind != SlotScalar {
			return boundArg{}, mismatch("want %s, got %T", s.Kind, value)
		}
		if et := elemTypeOfValue(value); et != s.Elem {
			return boundArg{}, mismatch("want %s, got %T", s.Elem, value)
		}
		data, _ := encodeScalar(value)
		return boundArg{scalar: data}, nil
	}
}

// isNilBuffer reports a typed nil *Buffer stored in the interface.
func isNilBuffer(v bufferArg) bool {
	switch b := v.(type) {
	case *Buffer[float32]:
		return b == nil
	case *Buffer[int32]:
		return b == nil
	case *Buffer[uint32]:
		return b == nil
	}
	return false
}

// unbound returns the first slot without a value, or -1.
func (k *Kernel) unbound() int {
	for i, a := range k.args {
		if !a.bound() {
			return i
		}
	}
	return -1
}

// overrun returns the first bound buffer shorter than n elements, or -1.
// Kernels index buffers by invocation id without a bounds guard.
func (k *Kernel) overrun(n int) int {
	for i, a := range k.args {
		if a.buf != nil && a.buf.Len() < n {
			return i
		}
	}
	return -1
}

// workgroupCount is the number of workgroups covering n invocations.
func workgroupCount(n int, size uint32) uint32 {
	if size == 0 {
		size = 1
	}
	return uint32((uint64(n) + uint64(size) - 1) / uint64(size))
}

// Release frees the pipeline objects. Further use returns ErrReleased.
func (k *Kernel) Release() {
	_ = k.release()
}

func (k *Kernel) release() error {
	if k.released {
		return nil
	}
	k.released = true
	k.args = nil
	k.releaseObjects()
	return nil
}

func (k *Kernel) releaseObjects() {
	if k.pipeline != nil {
		k.pipeline.Release()
		k.pipeline = nil
	}
	if k.layout != nil {
		k.layout.Release()
		k.layout = nil
	}
	if k.bgl != nil {
		k.bgl.Release()
		k.bgl = nil
	}
}
