// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package app

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/kernelview/compute"
	"github.com/gogpu/kernelview/internal/config"
	"github.com/gogpu/kernelview/present"

	_ "github.com/gogpu/wgpu/hal/allbackends"
)

func unavailable(context.Context, io.Writer, config.Compute) error {
	return fail(StageSession, compute.ErrAcceleratorUnavailable, "open accelerator")
}

func TestStageError(t *testing.T) {
	err := fail(StageCompile, compute.ErrCompile, "compile %s", "multiply_by_scalar")
	assert.Equal(t, "compile: compile multiply_by_scalar: compute: compile error", err.Error())
	assert.Equal(t, StageCompile, StageOf(err))
	assert.ErrorIs(t, err, compute.ErrCompile)
	assert.Equal(t, compute.ErrCompile, pkgerrors.Cause(err))
	assert.Equal(t, "", StageOf(errors.New("plain")))
}

func TestRunComputeFailureIsFatal(t *testing.T) {
	var out bytes.Buffer
	presented := false
	r := Runner{
		Compute: unavailable,
		Present: func(context.Context, config.Window) error { presented = true; return nil },
	}

	err := r.Run(context.Background(), &out, config.Default())
	assert.ErrorIs(t, err, compute.ErrAcceleratorUnavailable)
	assert.Equal(t, StageSession, StageOf(err))
	assert.False(t, presented)
	assert.Zero(t, out.Len(), "no compute lines")
}

func TestRunComputeOptional(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Default()
	cfg.Compute.Optional = true
	cfg.Window.Backend = "headless"
	cfg.Window.Frames = 2

	err := Runner{Compute: unavailable}.Run(context.Background(), &out, cfg)
	require.NoError(t, err, "presentation still runs")
	assert.Zero(t, out.Len(), "no compute lines")
}

func TestRunPresentationHeadless(t *testing.T) {
	cfg := config.Default().Window
	cfg.Backend = "headless"
	cfg.Width, cfg.Height = 32, 16
	cfg.Frames = 3
	cfg.Dump = filepath.Join(t.TempDir(), "frame.png")

	require.NoError(t, RunPresentation(context.Background(), cfg))

	f, err := os.Open(cfg.Dump)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Bounds().Dx())
	assert.Equal(t, 16, img.Bounds().Dy())

	r, g, b, _ := img.At(3, 5).RGBA()
	want := present.XORPattern(3, 5)
	assert.Equal(t, []uint32{uint32(want.R), uint32(want.G), uint32(want.B)}, []uint32{r >> 8, g >> 8, b >> 8})
}

func TestRunPresentationErrors(t *testing.T) {
	cfg := config.Default().Window
	cfg.Backend = "no-such-backend"
	err := RunPresentation(context.Background(), cfg)
	assert.Equal(t, StageSurface, StageOf(err))
	var nf *present.BackendNotFoundError
	assert.ErrorAs(t, err, &nf)

	cfg = config.Default().Window
	cfg.Backend = "headless"
	cfg.Frames = 1
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = RunPresentation(ctx, cfg)
	assert.Equal(t, StageLoop, StageOf(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunComputeOnDevice(t *testing.T) {
	var out bytes.Buffer
	cfg := config.Default().Compute

	err := RunCompute(context.Background(), &out, cfg)
	switch StageOf(err) {
	case "":
	case StageSession, StageCompile, StageLaunch:
		t.Skipf("accelerator cannot run the kernel: %v", err)
	default:
		require.NoError(t, err)
	}
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSuffix(out.Bytes(), []byte("\n")), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Equal(t, "  [1.0, 2.0, 3.0, 4.0, 5.0]", string(lines[0]))
	assert.Equal(t, "* 5.4321", string(lines[1]))
	assert.True(t, bytes.HasPrefix(lines[2], []byte("= [5.4321, 10.8642, ")), "got %q", lines[2])
}

func TestMultiplyOnDeviceEmptySource(t *testing.T) {
	_, err := MultiplyOnDevice(context.Background(), config.Default().Compute, nil, 1)
	switch StageOf(err) {
	case StageSession, StageCompile:
		t.Skipf("accelerator cannot run the kernel: %v", err)
	}
	assert.Equal(t, StageAllocate, StageOf(err))
	assert.ErrorIs(t, err, compute.ErrAllocationFailed)
}
