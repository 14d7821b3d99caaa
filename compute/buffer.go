// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/kernelview"
)

// Access is the access mode of a device buffer, from the device's point of view.
type Access uint8

const (
	// ReadOnly buffers can only be bound to kernel input slots.
	ReadOnly Access = iota
	// WriteOnly buffers can only be bound to kernel output slots.
	WriteOnly
	// ReadWrite buffers can be bound to either.
	ReadWrite
)

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case ReadWrite:
		return "read-write"
	default:
		return fmt.Sprintf("Access(%d)", uint8(a))
	}
}

// bufferUsage is shared by every device buffer: bindable as storage and
// usable as both ends of a transfer.
const bufferUsage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc

// Buffer is an opaque, fixed-length, typed region of device memory.
// The host never dereferences it; data moves only through Write and ReadAfter.
type Buffer[T Element] struct {
	s        *Session
	raw      *wgpu.Buffer
	n        int
	mode     Access
	name     string
	released bool
}

// NewBuffer allocates n elements of device memory in the session.
// It fails with ErrAllocationFailed when n is not positive, when the size
// exceeds the device limits, or when the device rejects the allocation.
func NewBuffer[T Element](s *Session, n int, access Access, label string) (*Buffer[T], error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: buffer %q: element count %d must be positive", ErrAllocationFailed, label, n)
	}
	if access > ReadWrite {
		return nil, fmt.Errorf("%w: buffer %q: unknown access mode %d", ErrAllocationFailed, label, access)
	}

	size := uint64(n) * elemSize
	if limit := s.limits.MaxBufferSize; limit > 0 && size > limit {
		return nil, fmt.Errorf("%w: buffer %q: %s exceeds device maximum %s",
			ErrAllocationFailed, label, humanize.IBytes(size), humanize.IBytes(limit))
	}
	if limit := s.limits.MaxStorageBufferBindingSize; limit > 0 && size > limit {
		return nil, fmt.Errorf("%w: buffer %q: %s exceeds storage binding maximum %s",
			ErrAllocationFailed, label, humanize.IBytes(size), humanize.IBytes(limit))
	}

	raw, err := s.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: s.label("buffer", label),
		Size:  size,
		Usage: bufferUsage,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: buffer %q: %w", ErrAllocationFailed, label, err)
	}

	b := &Buffer[T]{s: s, raw: raw, n: n, mode: access, name: label}
	if err := s.track(b); err != nil {
		raw.Release()
		return nil, err
	}

	kernelview.Logger().Debug("compute: buffer allocated",
		"label", label,
		"elem", elemTypeOf[T]().String(),
		"len", n,
		"access", access.String(),
		"size", humanize.IBytes(size),
	)
	return b, nil
}

// Len returns the element count.
func (b *Buffer[T]) Len() int { return b.n }

// Access returns the device-side access mode.
func (b *Buffer[T]) Access() Access { return b.mode }

// Label returns the label given at allocation.
func (b *Buffer[T]) Label() string { return b.name }

// Release frees the device memory. Further use returns ErrReleased.
// The owning session also releases the buffer when it is released.
func (b *Buffer[T]) Release() {
	_ = b.release()
}

func (b *Buffer[T]) release() error {
	if b.released {
		return nil
	}
	b.released = true
	if b.raw != nil {
		b.raw.Release()
	}
	return nil
}

// usable checks that the buffer is live and belongs to s.
func (b *Buffer[T]) usable(s *Session) error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrArgumentType)
	}
	if b.released {
		return fmt.Errorf("%w: buffer %q", ErrReleased, b.name)
	}
	if b.s != s {
		return fmt.Errorf("%w: buffer %q belongs to another session", ErrArgumentType, b.name)
	}
	return s.alive()
}

func (b *Buffer[T]) byteSize() uint64 { return uint64(b.n) * elemSize }

// bufferArg is the type-erased view of a Buffer that kernels bind.
type bufferArg interface {
	Len() int
	Access() Access
	Label() string
	elem() ElemType
	handle() *wgpu.Buffer
	owner() *Session
	isReleased() bool
	byteSize() uint64
}

func (b *Buffer[T]) elem() ElemType       { return elemTypeOf[T]() }
func (b *Buffer[T]) handle() *wgpu.Buffer { return b.raw }
func (b *Buffer[T]) owner() *Session      { return b.s }
func (b *Buffer[T]) isReleased() bool     { return b.released }
