// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// RegisterFlags binds command-line flags to the fields of c.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.Var((*floatList)(&c.Compute.Source), "source", "comma-separated input values")
	fs.Var((*float32Value)(&c.Compute.Coefficient), "coefficient", "scalar multiplier")
	fs.StringVar(&c.Compute.Backends, "compute-backends", c.Compute.Backends, "accelerator backends: "+strings.Join(ComputeBackends, "|"))
	fs.BoolVar(&c.Compute.Fallback, "fallback-adapter", c.Compute.Fallback, "force the software adapter")
	fs.BoolVar(&c.Compute.Optional, "compute-optional", c.Compute.Optional, "run the window even if the compute phase fails")

	fs.StringVar(&c.Window.Title, "title", c.Window.Title, "window title")
	fs.IntVar(&c.Window.Width, "width", c.Window.Width, "window width in pixels")
	fs.IntVar(&c.Window.Height, "height", c.Window.Height, "window height in pixels")
	fs.BoolVar(&c.Window.VSync, "vsync", c.Window.VSync, "synchronize presentation to vblank")
	fs.BoolVar(&c.Window.Accelerated, "accelerated", c.Window.Accelerated, "use a hardware renderer")
	fs.StringVar(&c.Window.Backend, "backend", c.Window.Backend, "presentation backend: "+strings.Join(WindowBackends, "|"))
	fs.StringVar(&c.Window.ClearColor, "clear-color", c.Window.ClearColor, "clear color as #rrggbb")
	fs.StringVar(&c.Window.Fill, "fill", c.Window.Fill, "fill rule: "+strings.Join(FillRules, "|"))
	fs.IntVar(&c.Window.FillWorkers, "fill-workers", c.Window.FillWorkers, "goroutines filling the texture (0 = one per CPU)")
	fs.IntVar(&c.Window.Frames, "frames", c.Window.Frames, "stop after this many frames (0 = until quit)")
	fs.StringVar(&c.Window.Dump, "dump", c.Window.Dump, "write the last headless frame to this PNG file")

	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug|info|warn|error")
}

// Resolve parses args with fs and returns the layered configuration:
// defaults, then the -config file, then the environment, then the flags
// that were set explicitly.
func Resolve(fs *flag.FlagSet, args []string) (*Config, error) {
	path := fs.String("config", "", "YAML configuration file")
	Default().RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	c := Default()
	if *path != "" {
		if err := c.LoadFile(*path); err != nil {
			return nil, err
		}
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}

	overrides := flag.NewFlagSet(fs.Name(), flag.ContinueOnError)
	c.RegisterFlags(overrides)
	var err error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			return
		}
		err = multierr.Append(err, overrides.Set(f.Name, f.Value.String()))
	})
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv overlays KERNELVIEW_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	var err error
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv("KERNELVIEW_" + name); ok {
			*dst = v
		}
	}
	parse := func(name string, dst flag.Value) {
		if v, ok := os.LookupEnv("KERNELVIEW_" + name); ok {
			if perr := dst.Set(v); perr != nil {
				err = multierr.Append(err, fmt.Errorf("config: KERNELVIEW_%s=%q: %w", name, v, perr))
			}
		}
	}

	parse("SOURCE", (*floatList)(&c.Compute.Source))
	parse("COEFFICIENT", (*float32Value)(&c.Compute.Coefficient))
	str("COMPUTE_BACKENDS", &c.Compute.Backends)
	parse("FALLBACK_ADAPTER", (*boolValue)(&c.Compute.Fallback))
	parse("COMPUTE_OPTIONAL", (*boolValue)(&c.Compute.Optional))

	str("TITLE", &c.Window.Title)
	parse("WIDTH", (*intValue)(&c.Window.Width))
	parse("HEIGHT", (*intValue)(&c.Window.Height))
	parse("VSYNC", (*boolValue)(&c.Window.VSync))
	parse("ACCELERATED", (*boolValue)(&c.Window.Accelerated))
	str("BACKEND", &c.Window.Backend)
	str("CLEAR_COLOR", &c.Window.ClearColor)
	str("FILL", &c.Window.Fill)
	parse("FILL_WORKERS", (*intValue)(&c.Window.FillWorkers))
	parse("FRAMES", (*intValue)(&c.Window.Frames))
	str("DUMP", &c.Window.Dump)

	str("LOG_LEVEL", &c.LogLevel)
	return err
}

type floatList []float32

func (l *floatList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, v := range *l {
		parts[i] = strconv.FormatFloat(float64(v), 'g', -1, 32)
	}
	return strings.Join(parts, ",")
}

func (l *floatList) Set(s string) error {
	var out []float32
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 32)
		if err != nil {
			return err
		}
		out = append(out, float32(v))
	}
	if len(out) == 0 {
		return errors.New("empty list")
	}
	*l = out
	return nil
}

type float32Value float32

func (f *float32Value) String() string {
	return strconv.FormatFloat(float64(*f), 'g', -1, 32)
}

func (f *float32Value) Set(s string) error {
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return err
	}
	*f = float32Value(v)
	return nil
}

type boolValue bool

func (b *boolValue) String() string { return strconv.FormatBool(bool(*b)) }

func (b *boolValue) Set(s string) error {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*b = boolValue(v)
	return nil
}

type intValue int

func (i *intValue) String() string { return strconv.Itoa(int(*i)) }

func (i *intValue) Set(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*i = intValue(v)
	return nil
}
