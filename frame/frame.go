package frame

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrFrameClosed indicates a frame was released more than once or used
// after release.
var ErrFrameClosed = errors.New("frame already closed")

// ColorFamily identifies the color layout of a frame's planes.
type ColorFamily uint8

const (
	// ColorFamilyRGB is a three-plane R, G, B frame.
	ColorFamilyRGB ColorFamily = iota
	// ColorFamilyGray is a single-plane frame. Packed display frames are
	// carried as 32-bit gray.
	ColorFamilyGray
)

func (c ColorFamily) String() string {
	switch c {
	case ColorFamilyRGB:
		return "RGB"
	case ColorFamilyGray:
		return "Gray"
	default:
		return fmt.Sprintf("ColorFamily(%d)", uint8(c))
	}
}

// NumPlanes returns the plane count implied by the color family.
func (c ColorFamily) NumPlanes() int {
	if c == ColorFamilyRGB {
		return 3
	}
	return 1
}

// Plane is a bounded, read-only view over one color channel's raster data.
// Bounds are validated once at construction; row accessors then slice
// without further checks. Stride is expressed in samples per row and may
// exceed Width due to alignment padding.
type Plane struct {
	pix         []byte
	pix16       []uint16
	stride      int
	sampleBytes int
	width       int
	height      int
}

// NewPlane8 builds a view over 8-bit samples. stride is in samples (equal
// to bytes) per row.
func NewPlane8(pix []byte, stride, width, height int) (Plane, error) {
	if err := checkPlaneBounds(len(pix), stride, width, height); err != nil {
		return Plane{}, err
	}
	return Plane{pix: pix, stride: stride, sampleBytes: 1, width: width, height: height}, nil
}

// NewPlane16 builds a view over 16-bit samples (used for 10-bit content
// stored in 16-bit words). stride is in samples per row.
func NewPlane16(pix []uint16, stride, width, height int) (Plane, error) {
	if err := checkPlaneBounds(len(pix), stride, width, height); err != nil {
		return Plane{}, err
	}
	return Plane{pix16: pix, stride: stride, sampleBytes: 2, width: width, height: height}, nil
}

// NewPlane32 builds a view over packed 32-bit pixels kept as raw bytes.
// stride and width are in 4-byte samples per row.
func NewPlane32(pix []byte, stride, width, height int) (Plane, error) {
	if err := checkPlaneBounds(len(pix)/4, stride, width, height); err != nil {
		return Plane{}, err
	}
	return Plane{pix: pix, stride: stride, sampleBytes: 4, width: width, height: height}, nil
}

func checkPlaneBounds(samples, stride, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid plane dimensions %dx%d", width, height)
	}
	if stride < width {
		return fmt.Errorf("plane stride %d smaller than width %d", stride, width)
	}
	if need := stride*(height-1) + width; samples < need {
		return fmt.Errorf("plane buffer holds %d samples, need at least %d", samples, need)
	}
	return nil
}

// Width returns the number of logical samples per row.
func (p Plane) Width() int { return p.width }

// Height returns the number of rows.
func (p Plane) Height() int { return p.height }

// Stride returns the distance between row starts, in samples.
func (p Plane) Stride() int { return p.stride }

// SampleBytes returns the storage width of one sample (1, 2 or 4).
func (p Plane) SampleBytes() int { return p.sampleBytes }

// Row8 returns the y-th row truncated to Width samples. Valid only for
// 8-bit planes.
func (p Plane) Row8(y int) []byte {
	off := y * p.stride
	return p.pix[off : off+p.width]
}

// Row16 returns the y-th row truncated to Width samples. Valid only for
// 16-bit planes.
func (p Plane) Row16(y int) []uint16 {
	off := y * p.stride
	return p.pix16[off : off+p.width]
}

// Bytes returns the raw backing bytes of byte-addressed planes (8-bit and
// packed 32-bit) without copying.
func (p Plane) Bytes() []byte { return p.pix }

// Frame is one decoded image at an integer index: a read-only view over
// externally-owned planar memory plus per-frame properties. A frame must
// be released exactly once via Close; the release hook is where native
// bindings free the underlying memory.
type Frame struct {
	index   int
	width   int
	height  int
	family  ColorFamily
	bits    int
	planes  []Plane
	props   map[string]any
	release func()
	closed  atomic.Bool
}

// New assembles a frame from validated planes. The release hook may be nil
// for frames whose memory is plainly garbage-collected.
func New(index, width, height int, family ColorFamily, bits int, planes []Plane, release func()) (*Frame, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame dimensions %dx%d", width, height)
	}
	if len(planes) != family.NumPlanes() {
		return nil, fmt.Errorf("%s frame needs %d planes, got %d", family, family.NumPlanes(), len(planes))
	}
	for i, p := range planes {
		if p.width != width || p.height != height {
			return nil, fmt.Errorf("plane %d is %dx%d, frame is %dx%d", i, p.width, p.height, width, height)
		}
	}
	return &Frame{
		index:   index,
		width:   width,
		height:  height,
		family:  family,
		bits:    bits,
		planes:  planes,
		props:   make(map[string]any),
		release: release,
	}, nil
}

// Index returns the frame's position in its clip.
func (f *Frame) Index() int { return f.index }

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.width }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.height }

// Family returns the frame's color family.
func (f *Frame) Family() ColorFamily { return f.family }

// Bits returns the significant bits per sample (8, 10 or 32 for packed).
func (f *Frame) Bits() int { return f.bits }

// NumPlanes returns the number of planes.
func (f *Frame) NumPlanes() int { return len(f.planes) }

// Plane returns the i-th plane view.
func (f *Frame) Plane(i int) Plane { return f.planes[i] }

// SetProp attaches a per-frame property.
func (f *Frame) SetProp(key string, value any) { f.props[key] = value }

// Prop reads a per-frame property.
func (f *Frame) Prop(key string) (any, bool) {
	v, ok := f.props[key]
	return v, ok
}

// Props returns the frame's property map. Callers must not mutate it after
// the frame has been shared.
func (f *Frame) Props() map[string]any { return f.props }

// Close releases the frame's native resources. A second Close reports
// ErrFrameClosed, making double-release bugs visible instead of silent.
func (f *Frame) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return ErrFrameClosed
	}
	if f.release != nil {
		f.release()
	}
	return nil
}

// Closed reports whether the frame has been released.
func (f *Frame) Closed() bool { return f.closed.Load() }

// Clone deep-copies the frame's pixel data and properties into a new frame
// with no native release hook. Used by caches, which hand out copies so
// each handed-out frame keeps single-owner semantics.
func (f *Frame) Clone() *Frame {
	planes := make([]Plane, len(f.planes))
	for i, p := range f.planes {
		cp := p
		if p.pix != nil {
			cp.pix = append([]byte(nil), p.pix...)
		}
		if p.pix16 != nil {
			cp.pix16 = append([]uint16(nil), p.pix16...)
		}
		planes[i] = cp
	}
	props := make(map[string]any, len(f.props))
	for k, v := range f.props {
		props[k] = v
	}
	return &Frame{
		index:  f.index,
		width:  f.width,
		height: f.height,
		family: f.family,
		bits:   f.bits,
		planes: planes,
		props:  props,
	}
}
