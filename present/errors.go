// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import "errors"

var (
	// ErrDisplayInitFailed is returned when the display subsystem, the
	// window or its renderer cannot be created.
	ErrDisplayInitFailed = errors.New("present: display initialization failed")

	// ErrTextureLockFailed is returned when a texture cannot be locked, when
	// the fill callback fails, or when an incompletely written texture is
	// composited.
	ErrTextureLockFailed = errors.New("present: texture lock failed")

	// ErrNoBackendAvailable is returned when no presentation backend is
	// registered or available on the current system.
	ErrNoBackendAvailable = errors.New("present: no backend available")

	// ErrClosed is returned by operations on a closed surface or a
	// destroyed texture.
	ErrClosed = errors.New("present: surface closed")
)

// BackendNotFoundError indicates a named backend is not registered.
type BackendNotFoundError struct {
	Name string
}

func (e *BackendNotFoundError) Error() string {
	return "present: backend not found: " + e.Name
}

// BackendUnavailableError indicates a backend exists but is not available.
type BackendUnavailableError struct {
	Name string
}

func (e *BackendUnavailableError) Error() string {
	return "present: backend unavailable: " + e.Name
}
