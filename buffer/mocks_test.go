package buffer

import (
	"sync"
	"sync/atomic"

	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/frame"
)

// mockSource implements frame.Source for testing. It records every
// requested index, counts releases of the frames it produced, and can
// either resolve handles immediately or hold them until completed
// explicitly.
type mockSource struct {
	total  int
	manual bool

	mu       sync.Mutex
	requests []int
	pending  []pendingRender
	failOn   map[int]error

	releases atomic.Int32
}

type pendingRender struct {
	index  int
	handle *frame.AsyncHandle
}

func newMockSource(total int) *mockSource {
	return &mockSource{total: total, failOn: make(map[int]error)}
}

func newManualMockSource(total int) *mockSource {
	s := newMockSource(total)
	s.manual = true
	return s
}

func (m *mockSource) NumFrames() int { return m.total }

func (m *mockSource) GetFrame(n int) (*frame.Frame, error) {
	if err := m.failOn[n]; err != nil {
		return nil, err
	}
	return m.newFrame(n), nil
}

func (m *mockSource) GetFrameAsync(n int) *frame.AsyncHandle {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, n)
	h := frame.NewAsyncHandle()
	if m.manual {
		m.pending = append(m.pending, pendingRender{index: n, handle: h})
		return h
	}
	m.completeLocked(pendingRender{index: n, handle: h})
	return h
}

// completeNext resolves the oldest pending render.
func (m *mockSource) completeNext() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return
	}
	p := m.pending[0]
	m.pending = m.pending[1:]
	m.completeLocked(p)
}

// completeAll resolves every pending render.
func (m *mockSource) completeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.pending {
		m.completeLocked(p)
	}
	m.pending = nil
}

func (m *mockSource) completeLocked(p pendingRender) {
	if err := m.failOn[p.index]; err != nil {
		_ = p.handle.Complete(nil, err)
		return
	}
	_ = p.handle.Complete(m.newFrame(p.index), nil)
}

func (m *mockSource) newFrame(n int) *frame.Frame {
	const w, h = 4, 2
	pix := make([]byte, w*h)
	planes := make([]frame.Plane, 3)
	for i := range planes {
		p, err := frame.NewPlane8(pix, w, w, h)
		if err != nil {
			panic(err)
		}
		planes[i] = p
	}
	f, err := frame.New(n, w, h, frame.ColorFamilyRGB, 8, planes, func() {
		m.releases.Add(1)
	})
	if err != nil {
		panic(err)
	}
	return f
}

func (m *mockSource) requestedIndices() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.requests...)
}

// mockAudioSource implements frame.AudioSource with immediate resolution.
type mockAudioSource struct {
	total int

	mu       sync.Mutex
	requests []int
	failOn   map[int]error

	releases atomic.Int32
}

func newMockAudioSource(total int) *mockAudioSource {
	return &mockAudioSource{total: total, failOn: make(map[int]error)}
}

func (m *mockAudioSource) NumFrames() int { return m.total }

func (m *mockAudioSource) GetFrameAsync(n int) *frame.AudioHandle {
	m.mu.Lock()
	m.requests = append(m.requests, n)
	m.mu.Unlock()

	h := frame.NewAudioHandle()
	if err := m.failOn[n]; err != nil {
		_ = h.Complete(nil, err)
		return h
	}
	af := frame.NewAudioFrame(n, 48000, [][]byte{make([]byte, 16)}, func() {
		m.releases.Add(1)
	})
	_ = h.Complete(af, nil)
	return h
}

func (m *mockAudioSource) requestedIndices() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.requests...)
}
