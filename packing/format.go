package packing

import "fmt"

// PixelFormat tags the layout of a packed pixel buffer for the display
// surface.
type PixelFormat uint8

const (
	// FormatRGB32 is 8-bit interleaved BGRX, alpha byte forced opaque.
	FormatRGB32 PixelFormat = iota
	// FormatARGB32 is 8-bit interleaved BGRA with straight alpha.
	FormatARGB32
	// FormatRGB30 is one A2R10G10B10 word per pixel, alpha bits forced
	// opaque.
	FormatRGB30
	// FormatA2RGB30Premultiplied is A2R10G10B10 with premultiplied 2-bit
	// alpha.
	FormatA2RGB30Premultiplied
)

func (f PixelFormat) String() string {
	switch f {
	case FormatRGB32:
		return "RGB32"
	case FormatARGB32:
		return "ARGB32"
	case FormatRGB30:
		return "RGB30"
	case FormatA2RGB30Premultiplied:
		return "A2RGB30Premultiplied"
	default:
		return fmt.Sprintf("PixelFormat(%d)", uint8(f))
	}
}

// HasAlpha reports whether the format carries meaningful alpha.
func (f PixelFormat) HasAlpha() bool {
	return f == FormatARGB32 || f == FormatA2RGB30Premultiplied
}

// FormatDescriptor selects both the planar target format and the packed
// output layout: 8-bit or 10-bit, with or without alpha.
type FormatDescriptor struct {
	BitDepth int
	HasAlpha bool
}

// Validate rejects bit depths the packing algorithms do not define.
func (d FormatDescriptor) Validate() error {
	if d.BitDepth != 8 && d.BitDepth != 10 {
		return fmt.Errorf("%w: bit depth %d", ErrUnsupportedFormat, d.BitDepth)
	}
	return nil
}

// PixelFormat returns the packed output layout the descriptor selects.
func (d FormatDescriptor) PixelFormat() PixelFormat {
	switch {
	case d.BitDepth == 10 && d.HasAlpha:
		return FormatA2RGB30Premultiplied
	case d.BitDepth == 10:
		return FormatRGB30
	case d.HasAlpha:
		return FormatARGB32
	default:
		return FormatRGB32
	}
}

// bytesPerPixel is shared by every packed layout: 4 bytes, one 32-bit word.
const bytesPerPixel = 4

// PixelBuffer is an owned, write-once-per-frame packed pixel buffer.
// Stride is in bytes and may exceed Width*4 due to padding; packers never
// write into the padding.
type PixelBuffer struct {
	Pix    []byte
	Stride int
	Width  int
	Height int
	Format PixelFormat
}

// NewPixelBuffer allocates a packed buffer without row padding. Zero
// dimensions are rejected before any allocation.
func NewPixelBuffer(width, height int, format PixelFormat) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrZeroDimension, width, height)
	}
	stride := width * bytesPerPixel
	return &PixelBuffer{
		Pix:    make([]byte, stride*height),
		Stride: stride,
		Width:  width,
		Height: height,
		Format: format,
	}, nil
}
