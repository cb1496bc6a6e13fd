package packing

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/frame"
)

// Packer converts one planar RGB frame (plus an optional gray alpha frame
// at the same bit depth) into a packed pixel buffer. Implementations are
// stateless per call and must produce bit-identical output for identical
// input.
type Packer interface {
	// Name identifies the backend.
	Name() string

	// BitDepth returns the bit depth the packer was constructed for.
	BitDepth() int

	// SupportsAlpha reports whether the backend can pack frames with a
	// separate alpha plane. Callers probe this up front to fall back to
	// another backend instead of failing per frame.
	SupportsAlpha() bool

	// Pack converts src (and alpha, which may be nil) into a packed
	// buffer. The frames are borrowed, not consumed.
	Pack(src, alpha *frame.Frame) (*PixelBuffer, error)
}

// Method selects a packing backend.
type Method string

const (
	// MethodAuto probes for the native fast path and falls back to
	// MethodVectorized.
	MethodAuto Method = "auto"
	// MethodNative delegates to an externally registered accelerated
	// implementation.
	MethodNative Method = "native"
	// MethodVectorized packs a row at a time with word-wise writes.
	MethodVectorized Method = "vectorized"
	// MethodScalar packs pixel by pixel. Correctness baseline; orders of
	// magnitude slower, acceptable only for small frames and tests.
	MethodScalar Method = "scalar"
)

// NewPacker resolves a backend once at construction. Requesting the native
// backend when none is registered logs a warning and falls back to the
// vectorized 8-bit packer.
func NewPacker(method Method, bitDepth int) (Packer, error) {
	if err := (FormatDescriptor{BitDepth: bitDepth}).Validate(); err != nil {
		return nil, err
	}

	if method == "" || method == MethodAuto {
		if NativeAvailable() {
			method = MethodNative
		} else {
			method = MethodVectorized
		}
		logrus.WithField("method", method).Debug("Auto-selected packing method")
	}

	switch method {
	case MethodNative:
		if !NativeAvailable() {
			logrus.Warn("Native packer is not registered, falling back to vectorized 8-bit packer")
			return &vectorizedPacker{depth: 8}, nil
		}
		return &nativePacker{depth: bitDepth}, nil
	case MethodVectorized:
		return &vectorizedPacker{depth: bitDepth}, nil
	case MethodScalar:
		return &scalarPacker{depth: bitDepth}, nil
	default:
		return nil, fmt.Errorf("%w: unknown packing method %q", ErrValidation, method)
	}
}

// validatePack is the synchronous input check shared by every backend: it
// runs before any buffer is allocated or any backend loop starts.
func validatePack(src, alpha *frame.Frame, depth int) error {
	if src == nil {
		return fmt.Errorf("%w: nil source frame", ErrValidation)
	}
	if src.Width() <= 0 || src.Height() <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrZeroDimension, src.Width(), src.Height())
	}
	if src.Family() != frame.ColorFamilyRGB || src.Bits() != depth {
		return fmt.Errorf("%w: got %s %d-bit, packer wants RGB %d-bit",
			ErrUnsupportedFormat, src.Family(), src.Bits(), depth)
	}
	wantSample := 1
	if depth == 10 {
		wantSample = 2
	}
	for i := 0; i < src.NumPlanes(); i++ {
		if src.Plane(i).SampleBytes() != wantSample {
			return fmt.Errorf("%w: plane %d has %d bytes per sample, want %d",
				ErrUnsupportedFormat, i, src.Plane(i).SampleBytes(), wantSample)
		}
	}
	if alpha != nil {
		if alpha.Family() != frame.ColorFamilyGray || alpha.Bits() != depth {
			return fmt.Errorf("%w: alpha is %s %d-bit, packer wants Gray %d-bit",
				ErrUnsupportedFormat, alpha.Family(), alpha.Bits(), depth)
		}
		if alpha.Width() != src.Width() || alpha.Height() != src.Height() {
			return fmt.Errorf("%w: alpha is %dx%d, frame is %dx%d",
				ErrUnsupportedFormat, alpha.Width(), alpha.Height(), src.Width(), src.Height())
		}
		if alpha.Plane(0).SampleBytes() != wantSample {
			return fmt.Errorf("%w: alpha plane has %d bytes per sample, want %d",
				ErrUnsupportedFormat, alpha.Plane(0).SampleBytes(), wantSample)
		}
	}
	return nil
}

func outputFormat(depth int, hasAlpha bool) PixelFormat {
	return FormatDescriptor{BitDepth: depth, HasAlpha: hasAlpha}.PixelFormat()
}
