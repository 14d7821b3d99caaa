// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package sdl registers an SDL2 window backend named "sdl" with the
// present registry.
//
// SDL must be driven from the main OS thread; lock it with
// runtime.LockOSThread from an init function of package main. The backend
// needs cgo and the SDL2 development libraries. Build with the nosdl tag
// to leave it out, in which case this package registers nothing.
package sdl
