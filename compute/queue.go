// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/kernelview"
)

// Queue is the session's single in-order command channel. Writes, launches
// and reads submitted to it execute in submission order.
type Queue struct {
	s *Session
	q *wgpu.Queue
}

// Write copies host elements into dst and blocks until the device has
// consumed them. len(src) must equal dst.Len(); otherwise, or when the
// device rejects the copy, it fails with ErrTransferFailed.
func Write[T Element](q *Queue, dst *Buffer[T], src []T) error {
	if err := dst.usable(q.s); err != nil {
		return err
	}
	if len(src) != dst.n {
		return fmt.Errorf("%w: %d host elements for %d-element buffer %q", ErrTransferFailed, len(src), dst.n, dst.name)
	}

	data := encodeElements(src)
	if err := q.q.WriteBuffer(dst.raw, 0, data); err != nil {
		return fmt.Errorf("%w: buffer %q: %w", ErrTransferFailed, dst.name, err)
	}
	// Pending writes are flushed by the next submit; an empty submit makes
	// the write observable and gives us an index to wait on.
	idx, err := q.q.Submit()
	if err != nil {
		return fmt.Errorf("%w: buffer %q: %w", ErrTransferFailed, dst.name, err)
	}
	if err := q.waitFor(idx); err != nil {
		return fmt.Errorf("%w: buffer %q: %w", ErrTransferFailed, dst.name, err)
	}

	kernelview.Logger().Debug("compute: host to device",
		"buffer", dst.name, "size", humanize.IBytes(uint64(len(data))))
	return nil
}

// Launch dispatches workSize invocations of k with its bound arguments and
// returns without waiting. The returned Event is the only way to read
// results produced by this launch.
//
// Launch fails with ErrUnboundArgument if any slot has no value; nothing
// is submitted in that case. A work size larger than any bound buffer
// fails with ErrLaunchFailed.
func (q *Queue) Launch(k *Kernel, workSize int) (*Event, error) {
	if err := q.s.alive(); err != nil {
		return nil, err
	}
	if k == nil || k.released {
		return nil, fmt.Errorf("%w: kernel", ErrReleased)
	}
	if k.prog.s != q.s {
		return nil, fmt.Errorf("%w: kernel %s belongs to another session", ErrLaunchFailed, k.name)
	}
	if i := k.unbound(); i >= 0 {
		return nil, fmt.Errorf("%w: %s argument %d (%s)", ErrUnboundArgument, k.name, i, k.slots[i].Name)
	}
	if workSize <= 0 {
		return nil, fmt.Errorf("%w: %s: work size %d must be positive", ErrLaunchFailed, k.name, workSize)
	}
	if i := k.overrun(workSize); i >= 0 {
		return nil, fmt.Errorf("%w: %s: work size %d exceeds argument %d (%s) of %d elements",
			ErrLaunchFailed, k.name, workSize, i, k.slots[i].Name, k.args[i].buf.Len())
	}
	groups := workgroupCount(workSize, k.workgroup[0])
	if limit := q.s.limits.MaxComputeWorkgroupsPerDimension; limit > 0 && groups > limit {
		return nil, fmt.Errorf("%w: %s: %d workgroups exceed device limit %d", ErrLaunchFailed, k.name, groups, limit)
	}

	ev := &Event{q: q, kernel: k.name}
	if err := q.encodeLaunch(ev, k, groups); err != nil {
		_ = ev.release()
		return nil, err
	}
	if err := q.s.track(ev); err != nil {
		_ = ev.release()
		return nil, err
	}

	kernelview.Logger().Debug("compute: launch",
		"kernel", k.name,
		"work_size", workSize,
		"workgroups", groups,
		"workgroup_size", k.workgroup[0],
		"submission", ev.index,
	)
	return ev, nil
}

// encodeLaunch builds the bind group for the current arguments, records
// the dispatch and submits it. Objects created here are owned by ev.
func (q *Queue) encodeLaunch(ev *Event, k *Kernel, groups uint32) error {
	d := q.s.device
	entries := make([]wgpu.BindGroupEntry, len(k.slots))
	for i, slot := range k.slots {
		arg := k.args[i]
		if arg.buf != nil {
			if arg.buf.isReleased() {
				return fmt.Errorf("%w: %s argument %d: buffer %q", ErrReleased, k.name, i, arg.buf.Label())
			}
			entries[i] = wgpu.BindGroupEntry{Binding: slot.Binding, Buffer: arg.buf.handle(), Size: arg.buf.byteSize()}
			continue
		}

		ub, err := d.CreateBuffer(&wgpu.BufferDescriptor{
			Label: q.s.label("uniform", slot.Name),
			Size:  uniformSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("%w: %s argument %d: %w", ErrAllocationFailed, k.name, i, err)
		}
		ev.uniforms = append(ev.uniforms, ub)
		if err := q.q.WriteBuffer(ub, 0, arg.scalar); err != nil {
			return fmt.Errorf("%w: %s argument %d: %w", ErrTransferFailed, k.name, i, err)
		}
		entries[i] = wgpu.BindGroupEntry{Binding: slot.Binding, Buffer: ub, Size: uniformSize}
	}

	bg, err := d.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   q.s.label("bg", k.name),
		Layout:  k.bgl,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%w: %s: bind group: %w", ErrLaunchFailed, k.name, err)
	}
	ev.bindGroup = bg

	encoder, err := d.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: q.s.label("encoder", k.name)})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLaunchFailed, k.name, err)
	}
	pass, err := encoder.BeginComputePass(nil)
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("%w: %s: %w", ErrLaunchFailed, k.name, err)
	}
	pass.SetPipeline(k.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(groups, 1, 1)
	if err := pass.End(); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("%w: %s: %w", ErrLaunchFailed, k.name, err)
	}
	cmd, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLaunchFailed, k.name, err)
	}
	ev.index, err = q.q.Submit(cmd)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLaunchFailed, k.name, err)
	}
	return nil
}

// completed reports whether submission idx has finished. Non-blocking.
func (q *Queue) completed(idx uint64) bool {
	return q.q.Poll() >= idx
}

// waitFor blocks until submission idx has finished. The queue is in order,
// so an idle device implies idx is done.
func (q *Queue) waitFor(idx uint64) error {
	if q.completed(idx) {
		return nil
	}
	return q.s.device.WaitIdle()
}

// download copies size bytes of src into a mappable staging buffer and
// maps it for reading. The context bounds the mapping wait; without a
// deadline the session's map timeout applies.
func (q *Queue) download(ctx context.Context, src *wgpu.Buffer, size uint64, name string) ([]byte, error) {
	d := q.s.device
	staging, err := d.CreateBuffer(&wgpu.BufferDescriptor{
		Label: q.s.label("staging", name),
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: staging for %q: %w", ErrAllocationFailed, name, err)
	}
	defer staging.Release()

	encoder, err := d.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: q.s.label("readback", name)})
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrTransferFailed, name, err)
	}
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	cmd, err := encoder.Finish()
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrTransferFailed, name, err)
	}
	if _, err := q.q.Submit(cmd); err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrTransferFailed, name, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.s.opts.mapTimeout)
		defer cancel()
	}
	if err := staging.Map(ctx, wgpu.MapModeRead, 0, size); err != nil {
		return nil, fmt.Errorf("%w: map %q: %w", ErrTransferFailed, name, err)
	}
	rng, err := staging.MappedRange(0, size)
	if err != nil {
		_ = staging.Unmap()
		return nil, fmt.Errorf("%w: mapped range %q: %w", ErrTransferFailed, name, err)
	}
	out := make([]byte, size)
	copy(out, rng.Bytes())
	if err := staging.Unmap(); err != nil {
		return nil, fmt.Errorf("%w: unmap %q: %w", ErrTransferFailed, name, err)
	}
	return out, nil
}
