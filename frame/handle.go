package frame

import (
	"errors"
	"sync"
	"time"
)

// ErrFrameTaken indicates the handle's frame was already consumed by a
// previous Result call.
var ErrFrameTaken = errors.New("frame already taken from handle")

// ErrHandleCompleted indicates Complete was called twice on one handle.
var ErrHandleCompleted = errors.New("handle already completed")

// AsyncHandle is a one-shot promise for a rendered frame. The rendering
// engine completes it exactly once; the consumer side can poll (Done),
// block (Wait, WaitTimeout) or consume (Result).
//
// Ownership is move-only: the first successful Result call transfers the
// frame to the caller, who must Close it. There is no cancellation — a
// caller that stops waiting has merely stopped waiting, and the frame must
// still be drained and released by whoever holds the handle.
type AsyncHandle struct {
	done chan struct{}

	mu    sync.Mutex
	frame *Frame
	err   error
	taken bool
}

// NewAsyncHandle returns an unresolved handle.
func NewAsyncHandle() *AsyncHandle {
	return &AsyncHandle{done: make(chan struct{})}
}

// Completed returns a handle that is already resolved. Used for cache hits
// and synchronous sources.
func Completed(f *Frame, err error) *AsyncHandle {
	h := NewAsyncHandle()
	_ = h.Complete(f, err)
	return h
}

// Complete resolves the handle with a frame or an error. Only the first
// call takes effect; later calls report ErrHandleCompleted.
func (h *AsyncHandle) Complete(f *Frame, err error) error {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return ErrHandleCompleted
	default:
	}
	h.frame = f
	h.err = err
	close(h.done)
	h.mu.Unlock()
	return nil
}

// Done reports, without blocking, whether the handle has resolved.
func (h *AsyncHandle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the handle resolves.
func (h *AsyncHandle) Wait() { <-h.done }

// WaitTimeout blocks until the handle resolves or d elapses. It returns
// false on timeout. Timing out does not cancel the underlying render.
func (h *AsyncHandle) WaitTimeout(d time.Duration) bool {
	select {
	case <-h.done:
		return true
	case <-time.After(d):
		return false
	}
}

// Err blocks until the handle resolves and returns its completion error
// without consuming the frame.
func (h *AsyncHandle) Err() error {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Result blocks until the handle resolves, then transfers ownership of the
// frame to the caller. A second Result after a successful first one returns
// ErrFrameTaken; error results are repeatable.
func (h *AsyncHandle) Result() (*Frame, error) {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return nil, h.err
	}
	if h.taken {
		return nil, ErrFrameTaken
	}
	h.taken = true
	f := h.frame
	h.frame = nil
	return f, nil
}
