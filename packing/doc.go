// Package packing converts planar RGB frames into packed pixel buffers
// ready for direct bitmap display, optionally compositing a separate alpha
// plane.
//
// Three interchangeable backends implement identical pixel semantics at
// different speeds: a native fast path (an externally registered
// accelerated implementation), a vectorized row-batch implementation, and a
// scalar per-pixel reference used as the correctness baseline in tests.
// Backend selection is explicit or automatic; "auto" probes for the native
// fast path and falls back to the vectorized backend.
//
// 8-bit output is interleaved BGRA with straight alpha. 10-bit output is
// one 32-bit word per pixel, A2R10G10B10 with premultiplied 2-bit alpha
// using exact integer floor division; backends must not substitute
// floating-point rounding, since consumers round-trip exact pixel values.
package packing
