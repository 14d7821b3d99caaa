// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"context"
	"fmt"

	"github.com/gogpu/wgpu"

	"github.com/gogpu/kernelview"
)

// Event is the completion token of one kernel launch. It is consumed by
// exactly one ReadAfter; reading device results without it is not possible.
type Event struct {
	q        *Queue
	kernel   string
	index    uint64
	consumed bool

	// Per-launch objects, released once the launch has completed.
	bindGroup *wgpu.BindGroup
	uniforms  []*wgpu.Buffer
	released  bool
}

// Done reports whether the launch has finished on the device. Non-blocking.
func (e *Event) Done() bool {
	return e.q.completed(e.index)
}

// Consumed reports whether a ReadAfter already used this event.
func (e *Event) Consumed() bool {
	return e.consumed
}

func (e *Event) release() error {
	if e.released {
		return nil
	}
	e.released = true
	if e.bindGroup != nil {
		e.bindGroup.Release()
		e.bindGroup = nil
	}
	for _, ub := range e.uniforms {
		ub.Release()
	}
	e.uniforms = nil
	return nil
}

// ReadAfter waits until ev signals, then copies src back to the host.
// It blocks until the data is available.
//
// The event must come from a Launch on q and must not have been consumed
// before; otherwise ReadAfter fails with ErrInvalidEvent and reads nothing.
func ReadAfter[T Element](ctx context.Context, q *Queue, src *Buffer[T], ev *Event) ([]T, error) {
	if ev == nil {
		return nil, fmt.Errorf("%w: nil event", ErrInvalidEvent)
	}
	if ev.q != q {
		return nil, fmt.Errorf("%w: event of %s was issued on another queue", ErrInvalidEvent, ev.kernel)
	}
	if ev.consumed {
		return nil, fmt.Errorf("%w: event of %s already consumed", ErrInvalidEvent, ev.kernel)
	}
	if err := src.usable(q.s); err != nil {
		return nil, err
	}
	ev.consumed = true

	if err := q.waitFor(ev.index); err != nil {
		return nil, fmt.Errorf("%w: waiting for %s: %w", ErrTransferFailed, ev.kernel, err)
	}
	_ = ev.release()

	data, err := q.download(ctx, src.raw, src.byteSize(), src.name)
	if err != nil {
		return nil, err
	}
	out, err := decodeElements[T](data, src.n)
	if err != nil {
		return nil, err
	}

	kernelview.Logger().Debug("compute: device to host",
		"buffer", src.name, "len", src.n, "after", ev.kernel)
	return out, nil
}
