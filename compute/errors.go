// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	// ErrAcceleratorUnavailable is returned when no adapter satisfies the
	// compute requirements, or the device cannot be opened.
	ErrAcceleratorUnavailable = errors.New("compute: accelerator unavailable")

	// ErrReleased is returned when using a session, buffer, program or kernel
	// after it (or its session) has been released.
	ErrReleased = errors.New("compute: resource has been released")
)

// Transfer errors.
var (
	// ErrAllocationFailed is returned when a device buffer cannot be allocated.
	ErrAllocationFailed = errors.New("compute: allocation failed")

	// ErrTransferFailed is returned when a host/device copy is rejected or
	// the element counts do not match.
	ErrTransferFailed = errors.New("compute: transfer failed")

	// ErrInvalidEvent is returned by ReadAfter when the completion event is
	// nil, belongs to another queue, or was already consumed.
	ErrInvalidEvent = errors.New("compute: invalid completion event")
)

// Program and kernel errors.
var (
	// ErrCompile matches every *CompileError under errors.Is.
	ErrCompile = errors.New("compute: compile error")

	// ErrEntryPointNotFound is returned when a program has no compute entry
	// point with the requested name.
	ErrEntryPointNotFound = errors.New("compute: entry point not found")

	// ErrArgumentType is returned when a value does not fit a kernel argument slot.
	ErrArgumentType = errors.New("compute: argument type mismatch")

	// ErrUnboundArgument is returned by Launch when a slot has no value.
	ErrUnboundArgument = errors.New("compute: unbound argument")

	// ErrLaunchFailed is returned when a kernel cannot be dispatched.
	ErrLaunchFailed = errors.New("compute: launch failed")
)

// CompileError carries the shader compiler diagnostic for a failed Compile.
// A program that failed to compile never yields kernels.
type CompileError struct {
	// Stage is the compiler phase that rejected the source:
	// "parse", "lower", "validate", "reflect" or "device".
	Stage string

	// Diagnostic is the compiler's message, verbatim.
	Diagnostic string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compute: compile error (%s): %s", e.Stage, e.Diagnostic)
}

// Unwrap lets errors.Is(err, ErrCompile) match.
func (e *CompileError) Unwrap() error {
	return ErrCompile
}
