// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"time"

	"github.com/gogpu/gputypes"
)

// DefaultMapTimeout bounds how long a device→host read waits for the
// staging buffer to map when the caller's context has no deadline.
const DefaultMapTimeout = 5 * time.Second

// SessionOption configures NewSession.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	backends   gputypes.Backends
	power      gputypes.PowerPreference
	fallback   bool
	mapTimeout time.Duration
	label      string
}

func defaultSessionOptions() sessionOptions {
	return sessionOptions{
		backends:   gputypes.BackendsAll,
		power:      gputypes.PowerPreferenceHighPerformance,
		mapTimeout: DefaultMapTimeout,
		label:      "kernelview",
	}
}

// WithBackends restricts adapter discovery to the given backend mask.
// The default is gputypes.BackendsAll.
func WithBackends(b gputypes.Backends) SessionOption {
	return func(o *sessionOptions) {
		o.backends = b
	}
}

// WithPowerPreference sets the adapter power preference.
func WithPowerPreference(p gputypes.PowerPreference) SessionOption {
	return func(o *sessionOptions) {
		o.power = p
	}
}

// WithFallbackAdapter forces the software fallback adapter.
func WithFallbackAdapter(force bool) SessionOption {
	return func(o *sessionOptions) {
		o.fallback = force
	}
}

// WithMapTimeout overrides DefaultMapTimeout. Non-positive values are ignored.
func WithMapTimeout(d time.Duration) SessionOption {
	return func(o *sessionOptions) {
		if d > 0 {
			o.mapTimeout = d
		}
	}
}

// WithLabel sets the debug label prefix used for device objects.
func WithLabel(label string) SessionOption {
	return func(o *sessionOptions) {
		if label != "" {
			o.label = label
		}
	}
}
