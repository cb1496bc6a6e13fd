// Package cache provides a small bounded, recency-ordered map and a frame
// source decorator built on it that caches decoded frames by index.
//
// Eviction is synchronous: it happens inside Set, never in the background.
// The frame cache stores copies and hands out copies, so every frame given
// to a caller keeps single-owner release semantics regardless of cache
// lifetime.
package cache
