package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRGB8(t *testing.T, index, w, h int, release func()) *Frame {
	t.Helper()
	planes := make([]Plane, 3)
	for i := range planes {
		p, err := NewPlane8(make([]byte, w*h), w, w, h)
		require.NoError(t, err)
		planes[i] = p
	}
	f, err := New(index, w, h, ColorFamilyRGB, 8, planes, release)
	require.NoError(t, err)
	return f
}

func TestNewPlaneBounds(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		stride    int
		width     int
		height    int
		expectErr bool
	}{
		{name: "exact_fit", size: 8, stride: 4, width: 4, height: 2},
		{name: "padded_stride", size: 14, stride: 6, width: 4, height: 2},
		{name: "padding_of_last_row_optional", size: 10, stride: 6, width: 4, height: 2},
		{name: "buffer_too_small", size: 7, stride: 4, width: 4, height: 2, expectErr: true},
		{name: "stride_below_width", size: 64, stride: 3, width: 4, height: 2, expectErr: true},
		{name: "zero_width", size: 8, stride: 4, width: 0, height: 2, expectErr: true},
		{name: "zero_height", size: 8, stride: 4, width: 4, height: 0, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlane8(make([]byte, tt.size), tt.stride, tt.width, tt.height)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlaneRowsHonorStride(t *testing.T) {
	pix := []byte{
		1, 2, 3, 0xEE, // row 0 + padding
		4, 5, 6, 0xEE, // row 1 + padding
	}
	p, err := NewPlane8(pix, 4, 3, 2)
	require.NoError(t, err)

	assert.Equal(t, []byte{1, 2, 3}, p.Row8(0))
	assert.Equal(t, []byte{4, 5, 6}, p.Row8(1))
}

func TestPlane16Rows(t *testing.T) {
	pix := []uint16{10, 20, 30, 0xEEEE, 40, 50, 60, 0xEEEE}
	p, err := NewPlane16(pix, 4, 3, 2)
	require.NoError(t, err)

	assert.Equal(t, []uint16{10, 20, 30}, p.Row16(0))
	assert.Equal(t, []uint16{40, 50, 60}, p.Row16(1))
	assert.Equal(t, 2, p.SampleBytes())
}

func TestNewFrameValidation(t *testing.T) {
	p, err := NewPlane8(make([]byte, 8), 4, 4, 2)
	require.NoError(t, err)

	_, err = New(0, 4, 2, ColorFamilyRGB, 8, []Plane{p}, nil)
	assert.Error(t, err, "RGB frame needs three planes")

	_, err = New(0, 8, 2, ColorFamilyGray, 8, []Plane{p}, nil)
	assert.Error(t, err, "plane dimensions must match the frame")

	_, err = New(0, 4, 2, ColorFamilyGray, 8, []Plane{p}, nil)
	assert.NoError(t, err)
}

func TestFrameCloseExactlyOnce(t *testing.T) {
	released := 0
	f := newTestRGB8(t, 7, 4, 2, func() { released++ })

	require.NoError(t, f.Close())
	assert.Equal(t, 1, released)
	assert.True(t, f.Closed())

	assert.ErrorIs(t, f.Close(), ErrFrameClosed)
	assert.Equal(t, 1, released, "release hook must not run twice")
}

func TestFrameProps(t *testing.T) {
	f := newTestRGB8(t, 0, 4, 2, nil)
	f.SetProp("_Matrix", 1)

	v, ok := f.Prop("_Matrix")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = f.Prop("_Transfer")
	assert.False(t, ok)
}

func TestFrameCloneIsIndependent(t *testing.T) {
	f := newTestRGB8(t, 3, 4, 2, nil)
	f.SetProp("_Matrix", 1)
	f.Plane(0).Row8(0)[0] = 42

	c := f.Clone()
	assert.Equal(t, f.Index(), c.Index())
	assert.Equal(t, byte(42), c.Plane(0).Row8(0)[0])

	// Mutating the original must not leak into the clone.
	f.Plane(0).Row8(0)[0] = 99
	assert.Equal(t, byte(42), c.Plane(0).Row8(0)[0])

	v, ok := c.Prop("_Matrix")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	// Clones release independently of the original.
	require.NoError(t, c.Close())
	require.NoError(t, f.Close())
}
