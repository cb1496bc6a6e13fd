package frame

import (
	"sync"
	"sync/atomic"
	"time"
)

// AudioFrame is one chunk of decoded audio samples at an integer index.
// Like video frames it wraps engine-owned memory and must be released
// exactly once via Close.
type AudioFrame struct {
	index      int
	sampleRate int
	channels   [][]byte
	release    func()
	closed     atomic.Bool
}

// NewAudioFrame assembles an audio frame from per-channel raw sample data.
func NewAudioFrame(index, sampleRate int, channels [][]byte, release func()) *AudioFrame {
	return &AudioFrame{index: index, sampleRate: sampleRate, channels: channels, release: release}
}

// Index returns the frame's position in its node.
func (a *AudioFrame) Index() int { return a.index }

// SampleRate returns the sample rate in Hz.
func (a *AudioFrame) SampleRate() int { return a.sampleRate }

// NumChannels returns the channel count.
func (a *AudioFrame) NumChannels() int { return len(a.channels) }

// Channel returns the raw sample data of channel i.
func (a *AudioFrame) Channel(i int) []byte { return a.channels[i] }

// Close releases the frame. A second Close reports ErrFrameClosed.
func (a *AudioFrame) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return ErrFrameClosed
	}
	if a.release != nil {
		a.release()
	}
	return nil
}

// AudioHandle is the audio counterpart of AsyncHandle: a one-shot promise
// with move-only ownership of the resolved frame.
type AudioHandle struct {
	done chan struct{}

	mu    sync.Mutex
	frame *AudioFrame
	err   error
	taken bool
}

// NewAudioHandle returns an unresolved audio handle.
func NewAudioHandle() *AudioHandle {
	return &AudioHandle{done: make(chan struct{})}
}

// Complete resolves the handle. Only the first call takes effect.
func (h *AudioHandle) Complete(f *AudioFrame, err error) error {
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
func (h *AudioHandle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the handle resolves.
func (h *AudioHandle) Wait() { <-h.done }

// WaitTimeout blocks until the handle resolves or d elapses, returning
// false on timeout.
func (h *AudioHandle) WaitTimeout(d time.Duration) bool {
	select {
	case <-h.done:
		return true
	case <-time.After(d):
		return false
	}
}

// Err blocks until resolution and returns the completion error without
// consuming the frame.
func (h *AudioHandle) Err() error {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Result blocks until resolution, then transfers frame ownership to the
// caller.
func (h *AudioHandle) Result() (*AudioFrame, error) {
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

// AudioSource is the contract an audio node must satisfy for prefetching.
type AudioSource interface {
	// NumFrames returns the total audio frame count of the node.
	NumFrames() int

	// GetFrameAsync requests audio frame n and returns immediately.
	GetFrameAsync(n int) *AudioHandle
}
