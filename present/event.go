// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package present

import "github.com/gogpu/gpucontext"

// EventKind classifies an input event.
type EventKind uint8

const (
	// EventOther is any event the loop does not act on.
	EventOther EventKind = iota

	// EventQuit is a window close or application quit request.
	EventQuit

	// EventKeyDown is a key press.
	EventKeyDown

	// EventKeyUp is a key release.
	EventKeyUp
)

func (k EventKind) String() string {
	switch k {
	case EventQuit:
		return "quit"
	case EventKeyDown:
		return "key-down"
	case EventKeyUp:
		return "key-up"
	default:
		return "other"
	}
}

// Event is a backend-neutral input event.
type Event struct {
	Kind EventKind
	Key  gpucontext.Key
	Mods gpucontext.Modifiers
}

// QuitEvent returns a quit request.
func QuitEvent() Event { return Event{Kind: EventQuit} }

// KeyDown returns a key press of key.
func KeyDown(key gpucontext.Key) Event { return Event{Kind: EventKeyDown, Key: key} }

// Terminates reports whether e ends the frame loop: a quit request or a
// press of Escape.
func (e Event) Terminates() bool {
	return e.Kind == EventQuit || (e.Kind == EventKeyDown && e.Key == gpucontext.KeyEscape)
}
