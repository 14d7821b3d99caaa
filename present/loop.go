// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import (
	"context"
	"fmt"
	"image/color"

	"github.com/gogpu/kernelview"
	"github.com/gogpu/kernelview/internal/parallel"
)

// State is the frame loop state.
type State int

const (
	// Running means the loop keeps producing frames.
	Running State = iota

	// Terminated is absorbing: once reached, Step does nothing.
	Terminated
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Red is the default clear color.
var Red = color.RGBA{R: 0xff, A: 0xff}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithMaxFrames stops Run after n presented frames. Zero means no limit.
func WithMaxFrames(n int) LoopOption {
	return func(l *Loop) { l.maxFrames = n }
}

// WithClearColor sets the color the render target is cleared to before
// the texture is composited.
func WithClearColor(c color.RGBA) LoopOption {
	return func(l *Loop) { l.clear = c }
}

// WithFillRule sets the rule used to fill the texture each frame.
func WithFillRule(rule FillRule) LoopOption {
	return func(l *Loop) { l.fill = rule }
}

// WithFillWorkers fills the texture with n goroutines during Run. Zero
// means one per CPU; 1 fills on the loop goroutine.
func WithFillWorkers(n int) LoopOption {
	return func(l *Loop) { l.workers = n }
}

// Loop polls input and renders one full-surface texture per frame until
// a quit request or Escape.
type Loop struct {
	surf *Surface
	tex  *Texture

	state     State
	frames    int
	maxFrames int
	clear     color.RGBA
	fill      FillRule
	workers   int
	pool      *parallel.Pool
}

// NewLoop returns a running loop drawing tex onto surf.
func NewLoop(surf *Surface, tex *Texture, opts ...LoopOption) *Loop {
	l := &Loop{
		surf:    surf,
		tex:     tex,
		clear:   Red,
		fill:    XORPattern,
		workers: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current state.
func (l *Loop) State() State { return l.state }

// Frames returns the number of frames presented so far.
func (l *Loop) Frames() int { return l.frames }

// Step runs one iteration: drain pending events, then, unless one of them
// terminated the loop, clear, fill, composite and present.
func (l *Loop) Step() (State, error) {
	if l.state == Terminated {
		return l.state, nil
	}

	for {
		ev, ok := l.surf.PollEvent()
		if !ok {
			break
		}
		if ev.Terminates() {
			l.terminate(ev)
			return l.state, nil
		}
	}

	if err := l.surf.Clear(l.clear); err != nil {
		return l.state, fmt.Errorf("present: clear: %w", err)
	}
	if err := l.tex.Lock(nil, func(p Pixels) error {
		if l.pool != nil {
			FillRows(p, l.fill, l.pool)
		} else {
			Fill(p, l.fill)
		}
		return nil
	}); err != nil {
		return l.state, err
	}
	if err := l.surf.Composite(l.tex, nil, nil); err != nil {
		return l.state, fmt.Errorf("present: composite: %w", err)
	}
	if err := l.surf.Present(); err != nil {
		return l.state, fmt.Errorf("present: present: %w", err)
	}
	l.frames++
	return l.state, nil
}

// terminate moves the loop to Terminated and discards pending events.
func (l *Loop) terminate(cause Event) {
	l.state = Terminated
	discarded := 0
	for {
		if _, ok := l.surf.PollEvent(); !ok {
			break
		}
		discarded++
	}
	kernelview.Logger().Info("present: loop terminated",
		"cause", cause.Kind.String(), "frames", l.frames, "discarded", discarded)
}

// Run steps the loop until it terminates, fails, reaches the frame limit,
// or ctx is done. The context is checked between iterations only.
func (l *Loop) Run(ctx context.Context) error {
	if l.workers != 1 && l.pool == nil {
		l.pool = parallel.NewPool(l.workers)
		defer func() {
			l.pool.Close()
			l.pool = nil
		}()
	}
	kernelview.Logger().Debug("present: loop started", "max_frames", l.maxFrames, "fill_workers", l.workers)
	for l.state == Running {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.maxFrames > 0 && l.frames >= l.maxFrames {
			kernelview.Logger().Debug("present: frame limit reached", "frames", l.frames)
			return nil
		}
		if _, err := l.Step(); err != nil {
			return err
		}
	}
	return nil
}
