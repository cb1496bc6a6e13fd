package packing

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/frame"
)

// stubSource hands out solid-color RGB frames and counts releases so tests
// can prove the pipeline consumed what it rendered.
type stubSource struct {
	total    int
	releases atomic.Int32
	failOn   map[int]error
	props    map[string]any
	build    func(t *testing.T, release func()) *frame.Frame
	t        *testing.T
}

func newStubSource(t *testing.T, total int) *stubSource {
	return &stubSource{
		total:  total,
		failOn: map[int]error{},
		t:      t,
		build: func(t *testing.T, release func()) *frame.Frame {
			f := solidRGB8(t, 4, 2, 10, 20, 30)
			return withRelease(t, f, release)
		},
	}
}

// withRelease rebuilds a frame with a release hook attached; the test
// helpers construct frames without one.
func withRelease(t *testing.T, f *frame.Frame, release func()) *frame.Frame {
	t.Helper()
	planes := make([]frame.Plane, f.NumPlanes())
	for i := range planes {
		planes[i] = f.Plane(i)
	}
	out, err := frame.New(f.Index(), f.Width(), f.Height(), f.Family(), f.Bits(), planes, release)
	require.NoError(t, err)
	for k, v := range f.Props() {
		out.SetProp(k, v)
	}
	return out
}

func (s *stubSource) NumFrames() int { return s.total }

func (s *stubSource) GetFrame(n int) (*frame.Frame, error) {
	if err := s.failOn[n]; err != nil {
		return nil, err
	}
	f := s.build(s.t, func() { s.releases.Add(1) })
	for k, v := range s.props {
		f.SetProp(k, v)
	}
	return f, nil
}

func (s *stubSource) GetFrameAsync(n int) *frame.AsyncHandle {
	f, err := s.GetFrame(n)
	return frame.Completed(f, err)
}

func TestPackFrameReleasesConvertedIntermediates(t *testing.T) {
	closed := 0
	planar := withRelease(t, solidRGB8(t, 4, 2, 10, 20, 30), func() { closed++ })
	conv := converterFunc(func(f *frame.Frame, family frame.ColorFamily, bits int, cfg ConvertConfig) (*frame.Frame, error) {
		return planar, nil
	})

	// A 10-bit source run through an 8-bit packer forces a conversion.
	src := gradientRGB10(t, 4, 0, 0, 0)
	p := &scalarPacker{depth: 8}

	buf, err := PackFrame(p, conv, src, nil, ConvertConfig{})
	require.NoError(t, err)
	assert.Equal(t, []byte{30, 20, 10, 255}, buf.Pix[:4])
	assert.Equal(t, 1, closed, "conversion output must be released after packing")
}

func TestPackFramePassthroughDoesNotConsumeInput(t *testing.T) {
	closed := 0
	src := withRelease(t, solidRGB8(t, 4, 2, 1, 2, 3), func() { closed++ })
	p := &scalarPacker{depth: 8}

	_, err := PackFrame(p, nil, src, nil, ConvertConfig{})
	require.NoError(t, err)
	assert.Equal(t, 0, closed, "borrowed input must stay open")
	require.NoError(t, src.Close())
}

func TestPackFrameWithoutConverter(t *testing.T) {
	src := gradientRGB10(t, 4, 0, 0, 0)
	p := &scalarPacker{depth: 8}

	_, err := PackFrame(p, nil, src, nil, ConvertConfig{})
	require.ErrorIs(t, err, ErrNoConverter)
	require.ErrorIs(t, err, ErrCapability)
}

type converterFunc func(f *frame.Frame, family frame.ColorFamily, bits int, cfg ConvertConfig) (*frame.Frame, error)

func (fn converterFunc) ToPlanar(f *frame.Frame, family frame.ColorFamily, bits int, cfg ConvertConfig) (*frame.Frame, error) {
	return fn(f, family, bits, cfg)
}

func TestPackedSourceGetFrame(t *testing.T) {
	src := newStubSource(t, 5)
	src.props = map[string]any{"_Matrix": 1}
	p, err := NewPacker(MethodScalar, 8)
	require.NoError(t, err)

	var propFrames []int
	ps := NewPackedSource(src, nil, p, nil, ConvertConfig{}, func(n int, props map[string]any) {
		propFrames = append(propFrames, n)
		assert.Equal(t, 1, props["_Matrix"])
	})
	assert.Equal(t, 5, ps.NumFrames())

	packed, err := ps.GetFrame(2)
	require.NoError(t, err)
	assert.Equal(t, 2, packed.Index())
	assert.Equal(t, PackedBits, packed.Bits())
	assert.Equal(t, 1, packed.NumPlanes())

	// Rendered source frames were consumed by the pipeline.
	assert.Equal(t, int32(1), src.releases.Load())
	assert.Equal(t, []int{2}, propFrames)

	// Properties carried over, alpha tag absent without an alpha node.
	v, ok := packed.Prop("_Matrix")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	_, ok = packed.Prop(PropHasAlpha)
	assert.False(t, ok)

	require.NoError(t, packed.Close())
}

func TestPackedSourceAlphaTagging(t *testing.T) {
	src := newStubSource(t, 5)
	alpha := newStubSource(t, 5)
	alpha.build = func(t *testing.T, release func()) *frame.Frame {
		return withRelease(t, solidGray8(t, 4, 2, 128), release)
	}
	p, err := NewPacker(MethodScalar, 8)
	require.NoError(t, err)

	ps := NewPackedSource(src, alpha, p, nil, ConvertConfig{}, nil)

	packed, err := ps.GetFrame(0)
	require.NoError(t, err)

	v, ok := packed.Prop(PropHasAlpha)
	require.True(t, ok)
	assert.Equal(t, true, v)

	assert.Equal(t, int32(1), src.releases.Load())
	assert.Equal(t, int32(1), alpha.releases.Load())

	buf, err := FrameToPixelBuffer(packed, 8)
	require.NoError(t, err)
	assert.Equal(t, FormatARGB32, buf.Format)
	assert.Equal(t, []byte{30, 20, 10, 128}, buf.Pix[:4])

	require.NoError(t, packed.Close())
}

func TestPackedSourceRenderErrorPropagates(t *testing.T) {
	src := newStubSource(t, 5)
	renderErr := errors.New("render failed")
	src.failOn[3] = renderErr
	p, err := NewPacker(MethodScalar, 8)
	require.NoError(t, err)

	ps := NewPackedSource(src, nil, p, nil, ConvertConfig{}, nil)

	_, err = ps.GetFrame(3)
	require.ErrorIs(t, err, renderErr)

	h := ps.GetFrameAsync(3)
	h.Wait()
	require.ErrorIs(t, h.Err(), renderErr)
}

func TestPackedSourceAsyncDeliversPackedFrame(t *testing.T) {
	src := newStubSource(t, 5)
	p, err := NewPacker(MethodScalar, 8)
	require.NoError(t, err)

	ps := NewPackedSource(src, nil, p, nil, ConvertConfig{}, nil)

	h := ps.GetFrameAsync(1)
	h.Wait()
	packed, err := h.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, packed.Index())
	require.NoError(t, packed.Close())
}

func TestFrameToPixelBufferZeroCopy(t *testing.T) {
	src := solidRGB8(t, 4, 2, 10, 20, 30)
	p := &scalarPacker{depth: 8}
	buf, err := p.Pack(src, nil)
	require.NoError(t, err)

	packed, err := NewPackedFrame(0, buf, nil)
	require.NoError(t, err)

	view, err := FrameToPixelBuffer(packed, 8)
	require.NoError(t, err)
	assert.Equal(t, FormatRGB32, view.Format)

	// Same backing memory, not a copy.
	view.Pix[0] = 99
	assert.Equal(t, byte(99), packed.Plane(0).Bytes()[0])

	// Non-packed frames are rejected.
	_, err = FrameToPixelBuffer(src, 8)
	require.ErrorIs(t, err, ErrValidation)
}
