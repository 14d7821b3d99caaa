// Package kernelview runs a one-shot compute dispatch on a GPU and then
// drives a frame presentation loop until the user quits.
//
// The work is split across sub-packages:
//
//   - compute: accelerator session, typed device buffers, WGSL kernel
//     programs and completion events (built on gogpu/wgpu and gogpu/naga)
//   - compute/kernels: the kernel sources used by the demo
//   - present: presentation surface, streaming texture with scoped lock,
//     backend registry and the event/render loop
//   - present/headless: in-memory backend for tests and CI
//   - present/sdl: SDL2 window backend
//
// The root package only carries the shared logger. By default nothing is
// logged; see [SetLogger].
package kernelview
