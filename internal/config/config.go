// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config holds the kernelview runtime configuration.
//
// Values are layered: Default, then an optional YAML file, then KERNELVIEW_*
// environment variables, then command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config is the complete runtime configuration.
type Config struct {
	Compute  Compute `yaml:"compute"`
	Window   Window  `yaml:"window"`
	LogLevel string  `yaml:"log_level"`
}

// Compute configures the accelerator phase.
type Compute struct {
	Source      []float32 `yaml:"source"`
	Coefficient float32   `yaml:"coefficient"`

	// Backends is one of all, primary, vulkan, metal, dx12, gl.
	Backends string `yaml:"backends"`

	// Fallback forces the software adapter.
	Fallback bool `yaml:"fallback"`

	// Optional lets the presentation phase run after a compute failure.
	Optional bool `yaml:"optional"`
}

// Window configures the presentation phase.
type Window struct {
	Title         string `yaml:"title"`
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	VSync         bool   `yaml:"vsync"`
	Accelerated   bool   `yaml:"accelerated"`
	TargetTexture bool   `yaml:"target_texture"`

	// Backend is auto, sdl or headless.
	Backend string `yaml:"backend"`

	// ClearColor is #rrggbb.
	ClearColor string `yaml:"clear_color"`

	// Fill is xor or white.
	Fill string `yaml:"fill"`

	// FillWorkers is the number of goroutines filling the texture; 0 means
	// one per CPU.
	FillWorkers int `yaml:"fill_workers"`

	// Frames stops the loop after that many frames; 0 runs until quit.
	Frames int `yaml:"frames"`

	// Dump is a PNG path for the last headless frame.
	Dump string `yaml:"dump"`
}

// Known option values.
var (
	ComputeBackends = []string{"all", "primary", "vulkan", "metal", "dx12", "gl"}
	WindowBackends  = []string{"auto", "sdl", "headless"}
	FillRules       = []string{"xor", "white"}
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Compute: Compute{
			Source:      []float32{1, 2, 3, 4, 5},
			Coefficient: 5.4321,
			Backends:    "all",
		},
		Window: Window{
			Title:         "mandlebrot",
			Width:         800,
			Height:        600,
			VSync:         true,
			Accelerated:   true,
			TargetTexture: true,
			Backend:       "auto",
			ClearColor:    "#ff0000",
			Fill:          "xor",
		},
		LogLevel: "warn",
	}
}

// Load returns Default overlaid with the YAML file at path. Unknown keys
// are an error.
func Load(path string) (*Config, error) {
	c := Default()
	if err := c.LoadFile(path); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile overlays the YAML file at path onto c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	return nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	var err error
	if len(c.Compute.Source) == 0 {
		err = multierr.Append(err, errors.New("config: compute.source is empty"))
	}
	if !slices.Contains(ComputeBackends, c.Compute.Backends) {
		err = multierr.Append(err, fmt.Errorf("config: unknown compute.backends %q (want one of %s)",
			c.Compute.Backends, strings.Join(ComputeBackends, ", ")))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("config: window size %dx%d must be positive",
			c.Window.Width, c.Window.Height))
	}
	if !slices.Contains(WindowBackends, c.Window.Backend) {
		err = multierr.Append(err, fmt.Errorf("config: unknown window.backend %q (want one of %s)",
			c.Window.Backend, strings.Join(WindowBackends, ", ")))
	}
	if _, cerr := ParseColor(c.Window.ClearColor); cerr != nil {
		err = multierr.Append(err, cerr)
	}
	if !slices.Contains(FillRules, c.Window.Fill) {
		err = multierr.Append(err, fmt.Errorf("config: unknown window.fill %q", c.Window.Fill))
	}
	if c.Window.FillWorkers < 0 {
		err = multierr.Append(err, fmt.Errorf("config: window.fill_workers %d is negative", c.Window.FillWorkers))
	}
	if c.Window.Frames < 0 {
		err = multierr.Append(err, fmt.Errorf("config: window.frames %d is negative", c.Window.Frames))
	}
	if _, lerr := c.Level(); lerr != nil {
		err = multierr.Append(err, lerr)
	}
	return err
}

// Level returns LogLevel as a slog level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

// BackendMask maps Compute.Backends to a wgpu backend mask.
func (c *Compute) BackendMask() gputypes.Backends {
	switch c.Backends {
	case "primary":
		return gputypes.BackendsPrimary
	case "vulkan":
		return gputypes.BackendsVulkan
	case "metal":
		return gputypes.BackendsMetal
	case "dx12":
		return gputypes.BackendsDX12
	case "gl":
		return gputypes.BackendsGL
	default:
		return gputypes.BackendsAll
	}
}

// ParseColor parses #rrggbb into an opaque color.
func ParseColor(s string) (color.RGBA, error) {
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("config: color %q is not #rrggbb", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("config: color %q is not #rrggbb", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
