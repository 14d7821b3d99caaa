// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package app

import "github.com/pkg/errors"

// Stages of the two phases, in execution order.
const (
	StageSession  = "session"
	StageCompile  = "compile"
	StageAllocate = "allocate"
	StageWrite    = "write"
	StageLaunch   = "launch"
	StageRead     = "read"
	StageSurface  = "surface"
	StageTexture  = "texture"
	StageLoop     = "loop"
)

// StageError records which stage of a phase failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return e.Stage + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Cause returns the error the stage failed with, for errors.Cause.
func (e *StageError) Cause() error { return e.Err }

// fail wraps err with a stage and a formatted context message.
func fail(stage string, err error, format string, args ...any) error {
	return &StageError{Stage: stage, Err: errors.Wrapf(err, format, args...)}
}

// StageOf returns the stage recorded in err, or "" if there is none.
func StageOf(err error) string {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
