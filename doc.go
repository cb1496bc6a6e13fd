// Package vsview glues the playback pipeline together: it composes a frame
// source, a pixel packer and an optional decoded-frame cache into one
// prepared node, and hands out prefetch buffers over it for the display
// loop to drive.
//
// The heavy lifting lives in the subpackages: buffer (prefetching), packing
// (pixel conversion), cache (LRU and frame caching), frame (frame and
// handle types), config (settings) and metrics (Prometheus counters).
package vsview
