// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu"
	"go.uber.org/multierr"

	"github.com/gogpu/kernelview"
)

// minStorageBuffers is the number of storage bindings a kernel needs:
// one input and one output array.
const minStorageBuffers = 2

// DeviceInfo identifies the accelerator a Session runs on.
type DeviceInfo struct {
	Name    string
	Vendor  string
	Driver  string
	Backend gputypes.Backend
	Type    gputypes.DeviceType
}

func (d DeviceInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", d.Name, d.Backend, d.Type)
}

// releaser is implemented by every object a Session owns.
type releaser interface {
	release() error
}

// Session owns one device, its queue and every buffer, program, kernel and
// event created against it. Releasing the session invalidates all of them.
//
// A Session is safe to release from any goroutine, but buffers, kernels and
// the queue are meant to be driven from a single goroutine.
type Session struct {
	mu        sync.Mutex
	released  bool
	resources []releaser

	opts     sessionOptions
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *Queue
	info     DeviceInfo
	limits   gputypes.Limits
}

// NewSession selects the first usable compute adapter and opens a device on it.
//
// It fails with ErrAcceleratorUnavailable when no adapter is found, when the
// adapter cannot bind an input and an output storage buffer in one compute
// stage, or when the device has no queue.
func NewSession(opts ...SessionOption) (*Session, error) {
	o := defaultSessionOptions()
	for _, opt := range opts {
		opt(&o)
	}

	instance, err := wgpu.CreateInstance(&wgpu.InstanceDescriptor{Backends: o.backends})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrAcceleratorUnavailable, err)
	}

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference:      o.power,
		ForceFallbackAdapter: o.fallback,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: %w", ErrAcceleratorUnavailable, err)
	}

	limits := adapter.Limits()
	if err := checkLimits(limits); err != nil {
		adapter.Release()
		instance.Release()
		return nil, err
	}

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: o.label})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: request device: %w", ErrAcceleratorUnavailable, err)
	}
	if device.Queue() == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: device has no queue", ErrAcceleratorUnavailable)
	}

	ai := adapter.Info()
	s := &Session{
		opts:     o,
		instance: instance,
		adapter:  adapter,
		device:   device,
		limits:   limits,
		info: DeviceInfo{
			Name:    ai.Name,
			Vendor:  ai.Vendor,
			Driver:  ai.Driver,
			Backend: ai.Backend,
			Type:    ai.DeviceType,
		},
	}
	s.queue = &Queue{s: s, q: device.Queue()}

	kernelview.Logger().Info("compute: adapter selected",
		"name", ai.Name,
		"backend", ai.Backend.String(),
		"type", ai.DeviceType.String(),
		"driver", ai.Driver,
	)
	return s, nil
}

// checkLimits enforces the minimum compute capability.
func checkLimits(l gputypes.Limits) error {
	if l.MaxStorageBuffersPerShaderStage < minStorageBuffers {
		return fmt.Errorf("%w: adapter allows %d storage buffers per stage, need %d",
			ErrAcceleratorUnavailable, l.MaxStorageBuffersPerShaderStage, minStorageBuffers)
	}
	if l.MaxComputeWorkgroupsPerDimension == 0 {
		return fmt.Errorf("%w: adapter does not support compute dispatch", ErrAcceleratorUnavailable)
	}
	return nil
}

// Device reports the accelerator this session runs on.
func (s *Session) Device() DeviceInfo {
	return s.info
}

// Queue returns the session's single in-order command queue.
func (s *Session) Queue() *Queue {
	return s.queue
}

// Limits returns the adapter limits the session was opened with.
func (s *Session) Limits() gputypes.Limits {
	return s.limits
}

// alive returns ErrReleased once the session is gone.
func (s *Session) alive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	return nil
}

// track registers r so Release tears it down.
func (s *Session) track(r releaser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	s.resources = append(s.resources, r)
	return nil
}

// label builds a debug label under the session prefix.
func (s *Session) label(kind, name string) string {
	if name == "" {
		return s.opts.label + "-" + kind
	}
	return s.opts.label + "-" + kind + "-" + name
}

// Release waits for the device to go idle, then releases every owned
// object in reverse creation order, followed by the device, adapter and
// instance. Errors from the individual steps are combined.
// Release is idempotent.
func (s *Session) Release() error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	resources := s.resources
	s.resources = nil
	s.mu.Unlock()

	var err error
	if werr := s.device.WaitIdle(); werr != nil {
		err = multierr.Append(err, fmt.Errorf("compute: wait idle: %w", werr))
	}
	for i := len(resources) - 1; i >= 0; i-- {
		multierr.AppendInvoke(&err, multierr.Invoke(resources[i].release))
	}

	s.device.Release()
	s.adapter.Release()
	s.instance.Release()

	if err != nil {
		kernelview.Logger().Warn("compute: session release", "err", err)
	}
	return err
}
