// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package compute

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/kernelview/compute/kernels"

	// Register every HAL backend so a real adapter is found when present.
	_ "github.com/gogpu/wgpu/hal/allbackends"
)

// newTestSession opens a session or skips the test when the machine has
// no usable accelerator.
func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(WithLabel("test"))
	if err != nil {
		require.ErrorIs(t, err, ErrAcceleratorUnavailable)
		t.Skipf("no accelerator: %v", err)
	}
	t.Cleanup(func() {
		assert.NoError(t, s.Release())
	})
	t.Logf("device: %s", s.Device())
	return s
}

// newTestKernel compiles source and returns the named kernel. Adapters
// without compute pipeline support skip the test.
func newTestKernel(t *testing.T, s *Session, source, entry string) *Kernel {
	t.Helper()
	prog, err := Compile(s, source)
	var ce *CompileError
	if errors.As(err, &ce) && ce.Stage == "device" {
		t.Skipf("adapter cannot build shader: %v", err)
	}
	require.NoError(t, err)

	k, err := prog.EntryPoint(entry)
	if errors.As(err, &ce) && ce.Stage == "device" {
		t.Skipf("adapter cannot build compute pipeline: %v", err)
	}
	require.NoError(t, err)
	return k
}

// multiply runs kernels.MultiplyByScalar over src on the device.
func multiply(t *testing.T, s *Session, k *Kernel, src []float32, coeff float32) []float32 {
	t.Helper()
	q := s.Queue()

	in, err := NewBuffer[float32](s, len(src), ReadOnly, "src")
	require.NoError(t, err)
	out, err := NewBuffer[float32](s, len(src), WriteOnly, "dst")
	require.NoError(t, err)
	defer in.Release()
	defer out.Release()

	require.NoError(t, Write(q, in, src))
	require.NoError(t, k.SetArg(0, in))
	require.NoError(t, k.SetArg(1, coeff))
	require.NoError(t, k.SetArg(2, out))

	ev, err := q.Launch(k, len(src))
	if errors.Is(err, ErrLaunchFailed) {
		t.Skipf("adapter cannot dispatch: %v", err)
	}
	require.NoError(t, err)

	got, err := ReadAfter(context.Background(), q, out, ev)
	require.NoError(t, err)
	assert.True(t, ev.Consumed())
	return got
}

func TestMultiplyByScalarScenario(t *testing.T) {
	s := newTestSession(t)
	k := newTestKernel(t, s, kernels.MultiplyByScalar, kernels.MultiplyByScalarEntry)

	got := multiply(t, s, k, []float32{1, 2, 3, 4, 5}, 5.4321)
	want := []float32{5.4321, 10.8642, 16.2963, 21.7284, 27.1605}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-4, "result[%d]", i)
	}
	assert.NotContains(t, got, float32(0), "every element is written")
}

func TestLaunchWorkSizeExceedsBuffer(t *testing.T) {
	s := newTestSession(t)
	k := newTestKernel(t, s, kernels.Copy, kernels.CopyEntry)

	in, err := NewBuffer[uint32](s, 8, ReadOnly, "in")
	require.NoError(t, err)
	out, err := NewBuffer[uint32](s, 4, WriteOnly, "out")
	require.NoError(t, err)
	require.NoError(t, k.SetArg(0, in))
	require.NoError(t, k.SetArg(1, out))

	ev, err := s.Queue().Launch(k, 8)
	assert.ErrorIs(t, err, ErrLaunchFailed)
	assert.Nil(t, ev)
}

func TestMultiplyByScalarElementwise(t *testing.T) {
	s := newTestSession(t)
	k := newTestKernel(t, s, kernels.MultiplyByScalar, kernels.MultiplyByScalarEntry)
	rng := rand.New(rand.NewSource(1))

	for _, n := range []int{1, 63, 64, 65, 1000} {
		src := make([]float32, n)
		for i := range src {
			src[i] = 1 + rng.Float32()*100
		}
		coeff := 0.5 + rng.Float32()*10

		got := multiply(t, s, k, src, coeff)
		want := kernels.MultiplyByScalarHost(src, coeff)
		require.Len(t, got, n)
		for i := range src {
			assert.InEpsilon(t, want[i], got[i], 1e-6, "n=%d result[%d]", n, i)
		}
	}
}

func TestCopyRoundTrip(t *testing.T) {
	s := newTestSession(t)
	k := newTestKernel(t, s, kernels.Copy, kernels.CopyEntry)
	q := s.Queue()

	floats := []float32{1, -0.5, float32(math.Pi), math.MaxFloat32, float32(math.Inf(1))}
	words := make([]uint32, len(floats))
	for i, f := range floats {
		words[i] = math.Float32bits(f)
	}

	in, err := NewBuffer[uint32](s, len(words), ReadOnly, "in")
	require.NoError(t, err)
	out, err := NewBuffer[uint32](s, len(words), WriteOnly, "out")
	require.NoError(t, err)

	require.NoError(t, Write(q, in, words))
	require.NoError(t, k.SetArg(0, in))
	require.NoError(t, k.SetArg(1, out))
	ev, err := q.Launch(k, len(words))
	if errors.Is(err, ErrLaunchFailed) {
		t.Skipf("adapter cannot dispatch: %v", err)
	}
	require.NoError(t, err)

	got, err := ReadAfter(context.Background(), q, out, ev)
	require.NoError(t, err)
	assert.Equal(t, encodeElements(words), encodeElements(got))
}

func TestEventConsumedOnce(t *testing.T) {
	s := newTestSession(t)
	k := newTestKernel(t, s, kernels.Copy, kernels.CopyEntry)
	q := s.Queue()

	in, err := NewBuffer[uint32](s, 4, ReadOnly, "in")
	require.NoError(t, err)
	out, err := NewBuffer[uint32](s, 4, WriteOnly, "out")
	require.NoError(t, err)
	require.NoError(t, Write(q, in, []uint32{1, 2, 3, 4}))
	require.NoError(t, k.SetArg(0, in))
	require.NoError(t, k.SetArg(1, out))

	ev, err := q.Launch(k, 4)
	if errors.Is(err, ErrLaunchFailed) {
		t.Skipf("adapter cannot dispatch: %v", err)
	}
	require.NoError(t, err)

	_, err = ReadAfter(context.Background(), q, out, ev)
	require.NoError(t, err)
	_, err = ReadAfter(context.Background(), q, out, ev)
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestLaunchUnboundArgument(t *testing.T) {
	s := newTestSession(t)
	k := newTestKernel(t, s, kernels.MultiplyByScalar, kernels.MultiplyByScalarEntry)

	in, err := NewBuffer[float32](s, 5, ReadOnly, "src")
	require.NoError(t, err)
	require.NoError(t, k.SetArg(0, in))

	ev, err := s.Queue().Launch(k, 5)
	assert.ErrorIs(t, err, ErrUnboundArgument)
	assert.Nil(t, ev)
}

func TestEntryPointNotFound(t *testing.T) {
	s := newTestSession(t)
	prog, err := Compile(s, kernels.MultiplyByScalar)
	var ce *CompileError
	if errors.As(err, &ce) && ce.Stage == "device" {
		t.Skipf("adapter cannot build shader: %v", err)
	}
	require.NoError(t, err)

	_, err = prog.EntryPoint("divide_by_scalar")
	assert.ErrorIs(t, err, ErrEntryPointNotFound)
	assert.Equal(t, []string{kernels.MultiplyByScalarEntry}, prog.EntryPoints())
}

func TestCompileSyntaxError(t *testing.T) {
	s := newTestSession(t)
	_, err := Compile(s, "@compute @workgroup_size(1) fn broken( {}")
	require.ErrorIs(t, err, ErrCompile)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.NotEmpty(t, ce.Diagnostic)
}

func TestWriteLengthMismatch(t *testing.T) {
	s := newTestSession(t)
	buf, err := NewBuffer[float32](s, 5, ReadOnly, "src")
	require.NoError(t, err)

	err = Write(s.Queue(), buf, []float32{1, 2, 3})
	assert.ErrorIs(t, err, ErrTransferFailed)
}

func TestNewBufferInvalidLength(t *testing.T) {
	s := newTestSession(t)
	for _, n := range []int{0, -1} {
		_, err := NewBuffer[float32](s, n, ReadOnly, "empty")
		assert.ErrorIs(t, err, ErrAllocationFailed, "n=%d", n)
	}
}

func TestSessionReleaseInvalidates(t *testing.T) {
	s := newTestSession(t)
	buf, err := NewBuffer[float32](s, 5, ReadWrite, "buf")
	require.NoError(t, err)

	require.NoError(t, s.Release())
	assert.NoError(t, s.Release(), "Release is idempotent")

	_, err = NewBuffer[float32](s, 5, ReadOnly, "late")
	assert.ErrorIs(t, err, ErrReleased)
	_, err = Compile(s, kernels.Copy)
	assert.ErrorIs(t, err, ErrReleased)
	assert.ErrorIs(t, Write(s.Queue(), buf, make([]float32, 5)), ErrReleased)
}

func TestCheckLimits(t *testing.T) {
	limits := func(storage, groups uint32) gputypes.Limits {
		return gputypes.Limits{MaxStorageBuffersPerShaderStage: storage, MaxComputeWorkgroupsPerDimension: groups}
	}
	assert.ErrorIs(t, checkLimits(limits(1, 65535)), ErrAcceleratorUnavailable)
	assert.ErrorIs(t, checkLimits(limits(8, 0)), ErrAcceleratorUnavailable)
	assert.NoError(t, checkLimits(limits(8, 65535)))
}
