package buffer

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/frame"
)

// AudioBundle is one prefetched audio frame index with its pending handle.
type AudioBundle struct {
	Index  int
	Handle *frame.AudioHandle
}

// AudioBuffer manages async pre-fetching of audio frames during playback.
// It follows the same cycle as FrameBuffer without plugin nodes, and unlike
// the video path a failed audio frame is logged and skipped rather than
// surfaced: a dropped audio chunk is not worth stopping playback over.
type AudioBuffer struct {
	source frame.AudioSource
	size   int
	log    *logrus.Entry

	invalidated atomic.Bool

	mu        sync.Mutex
	bundles   []*AudioBundle
	playRange PlayRange
	last      int
	exhausted bool
}

// NewAudioBuffer creates a buffer prefetching up to size audio frames.
func NewAudioBuffer(source frame.AudioSource, size int) *AudioBuffer {
	if size < 1 {
		size = 1
	}
	return &AudioBuffer{
		source: source,
		size:   size,
		log:    logrus.WithField("component", "audiobuffer"),
	}
}

// Allocate fills the queue with up to size successive requests starting
// after r.Start.
func (ab *AudioBuffer) Allocate(r PlayRange) error {
	if ab.invalidated.Load() {
		return nil
	}
	if err := r.Validate(); err != nil {
		return err
	}

	ab.mu.Lock()
	defer ab.mu.Unlock()

	ab.playRange = r
	ab.last = r.Start
	ab.exhausted = false

	ab.log.WithFields(logrus.Fields{
		"start": r.Start + 1,
		"size":  ab.size,
	}).Debug("Allocating audio buffer")

	for i := 0; i < ab.size; i++ {
		if ab.invalidated.Load() {
			break
		}
		next, ok := r.Next(ab.last)
		if !ok {
			ab.exhausted = true
			break
		}
		ab.bundles = append(ab.bundles, &AudioBundle{Index: next, Handle: ab.source.GetFrameAsync(next)})
		ab.last = next
	}
	return nil
}

// GetNextFrame pops the next due audio frame, non-blocking. It returns nil
// when the buffer is invalidated, empty, or the due frame is not ready.
func (ab *AudioBuffer) GetNextFrame() *frame.AudioFrame {
	if ab.invalidated.Load() {
		return nil
	}

	ab.mu.Lock()
	if len(ab.bundles) == 0 {
		ab.mu.Unlock()
		return nil
	}
	head := ab.bundles[0]
	if !head.Handle.Done() {
		ab.mu.Unlock()
		return nil
	}
	ab.bundles = ab.bundles[1:]
	ab.mu.Unlock()

	af, err := head.Handle.Result()
	if err != nil {
		ab.log.WithError(err).WithField("frame", head.Index).Warn("Failed to get audio frame")
		af = nil
	}

	if !ab.invalidated.Load() {
		ab.mu.Lock()
		if !ab.exhausted {
			if next, ok := ab.playRange.Next(ab.last); ok {
				ab.bundles = append(ab.bundles, &AudioBundle{Index: next, Handle: ab.source.GetFrameAsync(next)})
				ab.last = next
			} else {
				ab.exhausted = true
			}
		}
		ab.mu.Unlock()
	}

	return af
}

// WaitForFirstFrame blocks until the head bundle resolves, invoking stallCb
// if timeout elapses first. The timeout does not cancel the fetch.
func (ab *AudioBuffer) WaitForFirstFrame(timeout time.Duration, stallCb func()) error {
	if ab.invalidated.Load() {
		return nil
	}

	ab.mu.Lock()
	if len(ab.bundles) == 0 {
		ab.mu.Unlock()
		return nil
	}
	head := ab.bundles[0]
	ab.mu.Unlock()

	if timeout > 0 && !head.Handle.WaitTimeout(timeout) {
		ab.log.WithField("frame", head.Index).Warn("Stalled waiting for first audio frame")
		if stallCb != nil {
			stallCb()
		}
	}
	return head.Handle.Err()
}

// Invalidate flips the one-way invalidation flag and clears the buffer in
// the background. The returned channel closes once the clear has finished.
func (ab *AudioBuffer) Invalidate() <-chan struct{} {
	done := make(chan struct{})
	if !ab.invalidated.CompareAndSwap(false, true) {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		ab.Clear()
	}()
	return done
}

// Clear drains the queue, releasing every audio frame that resolved.
func (ab *AudioBuffer) Clear() {
	ab.mu.Lock()
	bundles := ab.bundles
	ab.bundles = nil
	ab.mu.Unlock()

	var toClose []*frame.AudioFrame
	for _, b := range bundles {
		af, err := b.Handle.Result()
		if err != nil {
			ab.log.WithError(err).WithField("frame", b.Index).Error("Failed to get audio frame for cleanup")
			continue
		}
		toClose = append(toClose, af)
	}
	for _, af := range toClose {
		if err := af.Close(); err != nil {
			ab.log.WithError(err).Error("Failed to close audio frame during cleanup")
		}
	}

	runtime.GC()
	ab.log.Debug("Audio buffer cleared")
}

// Len returns the current queue depth.
func (ab *AudioBuffer) Len() int {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	return len(ab.bundles)
}
