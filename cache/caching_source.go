package cache

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/frame"
)

// CachingSource wraps a frame source with an LRU of decoded frames keyed by
// index. Hits skip the render entirely. The cache owns its stored frames
// and releases them on eviction; callers always receive a copy they own.
type CachingSource struct {
	inner frame.Source
	log   *logrus.Entry

	mu  sync.Mutex
	lru *LRU[int, *frame.Frame]
}

// NewCachingSource wraps inner with a cache of at most size frames.
func NewCachingSource(inner frame.Source, size int) *CachingSource {
	log := logrus.WithField("component", "framecache")
	return &CachingSource{
		inner: inner,
		log:   log,
		lru: NewLRU(size, func(n int, f *frame.Frame) {
			if err := f.Close(); err != nil {
				log.WithError(err).WithField("frame", n).Error("Failed to close evicted frame")
			}
		}),
	}
}

// NumFrames returns the inner node's frame count.
func (c *CachingSource) NumFrames() int { return c.inner.NumFrames() }

// GetFrame returns a copy of the cached frame when present, otherwise
// renders through the inner source and caches a copy of the result.
func (c *CachingSource) GetFrame(n int) (*frame.Frame, error) {
	if f := c.cached(n); f != nil {
		return f, nil
	}

	f, err := c.inner.GetFrame(n)
	if err != nil {
		return nil, err
	}
	c.store(n, f)
	return f, nil
}

// GetFrameAsync resolves immediately on a cache hit; on a miss it chains
// onto the inner request and caches the frame once rendered.
func (c *CachingSource) GetFrameAsync(n int) *frame.AsyncHandle {
	if f := c.cached(n); f != nil {
		return frame.Completed(f, nil)
	}

	inner := c.inner.GetFrameAsync(n)
	h := frame.NewAsyncHandle()
	go func() {
		f, err := inner.Result()
		if err == nil {
			c.store(n, f)
		}
		_ = h.Complete(f, err)
	}()
	return h
}

// Clear releases every cached frame.
func (c *CachingSource) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Clear()
}

// Len returns the number of cached frames.
func (c *CachingSource) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

func (c *CachingSource) cached(n int) *frame.Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.lru.Get(n); ok {
		return f.Clone()
	}
	return nil
}

func (c *CachingSource) store(n int, f *frame.Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Set(n, f.Clone())
}
