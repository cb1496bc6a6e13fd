package buffer

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/frame"
	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/metrics"
)

// Bundle is one prefetched frame index with its pending render handles:
// exactly one main handle plus one per registered plugin node.
type Bundle struct {
	Index   int
	Main    *frame.AsyncHandle
	Plugins map[string]*frame.AsyncHandle
}

// Frames is a resolved bundle as handed to the display loop. The caller
// owns every frame in it and must Close each one after display.
type Frames struct {
	Index   int
	Main    *frame.Frame
	Plugins map[string]*frame.Frame
}

// FrameBuffer manages async pre-fetching of video frames during playback.
//
// Allocate fills the queue, GetNextFrame pops one resolved bundle per call
// and tops the queue back up, Invalidate stops the cycle and clears
// everything in the background. A cleared buffer stays dead; start a new
// playback with a new FrameBuffer.
type FrameBuffer struct {
	source frame.Source
	size   int
	stats  *metrics.Playback
	log    *logrus.Entry

	invalidated atomic.Bool

	mu        sync.Mutex
	plugins   map[string]frame.Source
	bundles   []*Bundle
	playRange PlayRange
	last      int
	exhausted bool
}

// NewFrameBuffer creates a buffer prefetching up to size frames ahead of
// the cursor. stats may be nil.
func NewFrameBuffer(source frame.Source, size int, stats *metrics.Playback) *FrameBuffer {
	if size < 1 {
		size = 1
	}
	return &FrameBuffer{
		source:  source,
		size:    size,
		stats:   stats,
		log:     logrus.WithField("component", "framebuffer"),
		plugins: make(map[string]frame.Source),
	}
}

// RegisterPluginNode attaches an auxiliary node whose frames are fetched
// alongside the main frame for every future bundle. Bundles already in the
// queue are not affected.
func (fb *FrameBuffer) RegisterPluginNode(id string, node frame.Source) {
	fb.mu.Lock()
	fb.plugins[id] = node
	fb.mu.Unlock()
	fb.log.WithField("plugin", id).Debug("Registered plugin node")
}

// Allocate fills the queue with up to size successive requests starting
// after r.Start. Frame r.Start itself belongs to the seek path, not the
// prefetcher. Allocation stops early without error if the buffer gets
// invalidated mid-loop.
func (fb *FrameBuffer) Allocate(r PlayRange) error {
	if fb.invalidated.Load() {
		return nil
	}
	if err := r.Validate(); err != nil {
		return err
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	fb.playRange = r
	fb.last = r.Start
	fb.exhausted = false

	fb.log.WithFields(logrus.Fields{
		"start":        r.Start + 1,
		"total_frames": r.TotalFrames,
		"size":         fb.size,
		"plugins":      len(fb.plugins),
	}).Debug("Allocating buffer")

	for i := 0; i < fb.size; i++ {
		if fb.invalidated.Load() {
			break
		}
		next, ok := r.Next(fb.last)
		if !ok {
			fb.exhausted = true
			break
		}
		fb.bundles = append(fb.bundles, fb.requestBundleLocked(next))
		fb.last = next
	}
	fb.stats.SetDepth(len(fb.bundles))
	return nil
}

// GetNextFrame pops the next due bundle, non-blocking.
//
// It returns (nil, nil) when the buffer is invalidated, empty, or the due
// bundle's main frame has not finished rendering yet; the caller should
// skip this display tick instead of stalling. On success it enqueues one
// replacement request, keeping the queue depth constant until the range is
// exhausted.
//
// If the main render failed, every already-completed plugin frame in the
// bundle is released before the error is propagated, aggregated with any
// secondary release errors; still-pending plugin handles are drained in the
// background. Failures of individual plugin frames on the success path are
// logged and the plugin is omitted from the result, never failing the call.
func (fb *FrameBuffer) GetNextFrame() (*Frames, error) {
	if fb.invalidated.Load() {
		return nil, nil
	}

	fb.mu.Lock()
	if len(fb.bundles) == 0 {
		fb.mu.Unlock()
		return nil, nil
	}
	head := fb.bundles[0]
	if !head.Main.Done() {
		fb.mu.Unlock()
		fb.stats.TickSkipped()
		return nil, nil
	}
	fb.bundles = fb.bundles[1:]
	fb.mu.Unlock()

	main, err := head.Main.Result()
	if err != nil {
		return nil, fb.releaseSiblings(head, err)
	}

	plugins := make(map[string]*frame.Frame, len(head.Plugins))
	for id, h := range head.Plugins {
		pf, perr := h.Result()
		if perr != nil {
			fb.log.WithError(perr).WithFields(logrus.Fields{
				"plugin": id,
				"frame":  head.Index,
			}).Warn("Failed to get plugin frame")
			fb.stats.PluginFrameError()
			continue
		}
		plugins[id] = pf
	}

	if !fb.invalidated.Load() {
		fb.mu.Lock()
		if !fb.exhausted {
			if next, ok := fb.playRange.Next(fb.last); ok {
				fb.bundles = append(fb.bundles, fb.requestBundleLocked(next))
				fb.last = next
			} else {
				fb.exhausted = true
			}
		}
		fb.stats.SetDepth(len(fb.bundles))
		fb.mu.Unlock()
	}

	fb.stats.FrameDelivered()
	return &Frames{Index: head.Index, Main: main, Plugins: plugins}, nil
}

// releaseSiblings cleans up a bundle whose main render failed. Completed
// plugin handles are resolved and released now; pending ones are drained in
// the background since in-flight renders cannot be cancelled.
func (fb *FrameBuffer) releaseSiblings(b *Bundle, mainErr error) error {
	errs := []error{mainErr}
	for id, h := range b.Plugins {
		if !h.Done() {
			go drainHandle(fb.log, id, b.Index, h)
			continue
		}
		pf, perr := h.Result()
		if perr != nil {
			errs = append(errs, perr)
			continue
		}
		if cerr := pf.Close(); cerr != nil {
			errs = append(errs, cerr)
		}
	}
	return errors.Join(errs...)
}

func drainHandle(log *logrus.Entry, id string, index int, h *frame.AsyncHandle) {
	pf, err := h.Result()
	if err != nil {
		log.WithError(err).WithFields(logrus.Fields{
			"plugin": id,
			"frame":  index,
		}).Debug("Drained failed plugin frame")
		return
	}
	if err := pf.Close(); err != nil {
		log.WithError(err).WithField("plugin", id).Error("Failed to close drained plugin frame")
	}
}

// WaitForFirstFrame blocks until the head bundle's main and plugin handles
// have all resolved. If timeout elapses first (timeout > 0), stallCb is
// invoked as a diagnostic and the wait continues: a timeout never cancels
// the underlying fetch. Render errors of the head bundle are returned
// joined, without consuming the frames.
func (fb *FrameBuffer) WaitForFirstFrame(timeout time.Duration, stallCb func()) error {
	if fb.invalidated.Load() {
		return nil
	}

	fb.mu.Lock()
	if len(fb.bundles) == 0 {
		fb.mu.Unlock()
		return nil
	}
	head := fb.bundles[0]
	fb.mu.Unlock()

	handles := make([]*frame.AsyncHandle, 0, len(head.Plugins)+1)
	handles = append(handles, head.Main)
	for _, h := range head.Plugins {
		handles = append(handles, h)
	}

	if timeout > 0 {
		deadline := time.Now().Add(timeout)
		for _, h := range handles {
			remaining := time.Until(deadline)
			if remaining <= 0 || !h.WaitTimeout(remaining) {
				fb.log.WithField("frame", head.Index).Warn("Stalled waiting for first frame")
				fb.stats.Stall()
				if stallCb != nil {
					stallCb()
				}
				break
			}
		}
	}

	var errs []error
	for _, h := range handles {
		if err := h.Err(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Invalidate synchronously flips the one-way invalidation flag, then clears
// the buffer in the background. Safe to call from any goroutine, including
// concurrently with a running display loop; subsequent Allocate and
// GetNextFrame calls become no-ops. The returned channel closes once the
// clear has finished.
func (fb *FrameBuffer) Invalidate() <-chan struct{} {
	done := make(chan struct{})
	if !fb.invalidated.CompareAndSwap(false, true) {
		close(done)
		return done
	}
	go func() {
		defer close(done)
		fb.Clear()
	}()
	return done
}

// Clear drains the whole queue: it waits for every outstanding handle,
// releases every frame that resolved (main and plugin alike, consumed or
// not), then asks the runtime for a full collection pass since native frame
// objects may sit in reference cycles.
func (fb *FrameBuffer) Clear() {
	fb.mu.Lock()
	bundles := fb.bundles
	fb.bundles = nil
	fb.plugins = make(map[string]frame.Source)
	fb.mu.Unlock()

	var toClose []*frame.Frame

	for _, b := range bundles {
		f, err := b.Main.Result()
		if err != nil {
			fb.log.WithError(err).WithField("frame", b.Index).Error("Failed to get main frame for cleanup")
		} else {
			toClose = append(toClose, f)
		}

		for id, h := range b.Plugins {
			pf, perr := h.Result()
			if perr != nil {
				fb.log.WithError(perr).WithFields(logrus.Fields{
					"plugin": id,
					"frame":  b.Index,
				}).Error("Failed to get plugin frame for cleanup")
				continue
			}
			toClose = append(toClose, pf)
		}
	}

	for _, f := range toClose {
		if err := f.Close(); err != nil {
			fb.log.WithError(err).Error("Failed to close frame during cleanup")
		}
	}

	fb.stats.SetDepth(0)
	runtime.GC()
	fb.log.Debug("Buffer cleared")
}

// Len returns the current queue depth.
func (fb *FrameBuffer) Len() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.bundles)
}

func (fb *FrameBuffer) requestBundleLocked(n int) *Bundle {
	b := &Bundle{
		Index:   n,
		Main:    fb.source.GetFrameAsync(n),
		Plugins: make(map[string]*frame.AsyncHandle, len(fb.plugins)),
	}
	for id, node := range fb.plugins {
		b.Plugins[id] = node.GetFrameAsync(n)
	}
	return b
}
