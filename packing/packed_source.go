package packing

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Jaded-Encoding-Thaumaturgy/vs-view/frame"
)

// PropHasAlpha is the frame property set on packed frames that carry
// meaningful alpha, so the display side can pick the right format tag.
const PropHasAlpha = "VSViewHasAlpha"

// PackedBits is the nominal sample depth of packed frames: one 32-bit word
// per pixel carried as a single gray plane.
const PackedBits = 32

// PackFrame runs the full pack pipeline on one frame: planar conversion at
// the packer's bit depth, alpha conversion when present, then packing. The
// input frames are borrowed; intermediate conversion frames are released
// here.
func PackFrame(p Packer, conv Converter, src, alpha *frame.Frame, cfg ConvertConfig) (*PixelBuffer, error) {
	planar, owned, err := ToPlanar(conv, src, p.BitDepth(), cfg)
	if err != nil {
		return nil, err
	}
	if owned {
		defer closeQuiet(planar)
	}

	var alphaPlanar *frame.Frame
	if alpha != nil {
		converted, ownedAlpha, err := ToPlanarAlpha(conv, alpha, p.BitDepth(), cfg)
		if err != nil {
			return nil, err
		}
		if ownedAlpha {
			defer closeQuiet(converted)
		}
		alphaPlanar = converted
	}

	return p.Pack(planar, alphaPlanar)
}

func closeQuiet(f *frame.Frame) {
	if err := f.Close(); err != nil {
		logrus.WithError(err).Error("Failed to close intermediate frame")
	}
}

// NewPackedFrame wraps a packed buffer as a single-plane 32-bit gray frame,
// carrying over the source frame's properties and tagging alpha.
func NewPackedFrame(index int, buf *PixelBuffer, props map[string]any) (*frame.Frame, error) {
	plane, err := frame.NewPlane32(buf.Pix, buf.Stride/bytesPerPixel, buf.Width, buf.Height)
	if err != nil {
		return nil, err
	}
	f, err := frame.New(index, buf.Width, buf.Height, frame.ColorFamilyGray, PackedBits, []frame.Plane{plane}, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range props {
		f.SetProp(k, v)
	}
	if buf.Format.HasAlpha() {
		f.SetProp(PropHasAlpha, true)
	}
	return f, nil
}

// FrameToPixelBuffer exposes a packed frame's first-plane memory as a
// display-ready pixel buffer without copying. bitDepth selects between the
// 8-bit and 10-bit format tags; the alpha variant is chosen from the
// frame's PropHasAlpha property.
func FrameToPixelBuffer(f *frame.Frame, bitDepth int) (*PixelBuffer, error) {
	if f.Bits() != PackedBits || f.NumPlanes() != 1 {
		return nil, fmt.Errorf("%w: frame is not packed (%s %d-bit, %d planes)",
			ErrValidation, f.Family(), f.Bits(), f.NumPlanes())
	}
	hasAlpha, _ := f.Prop(PropHasAlpha)
	plane := f.Plane(0)
	return &PixelBuffer{
		Pix:    plane.Bytes(),
		Stride: plane.Stride() * bytesPerPixel,
		Width:  f.Width(),
		Height: f.Height(),
		Format: outputFormat(bitDepth, hasAlpha == true),
	}, nil
}

// PackedSource is the "prepared" node the display loop consumes: a
// FrameSource decorator that renders the inner frame (and optional alpha
// frame), packs it, and yields packed frames. Packing for async requests
// runs on its own worker goroutine, overlapping with the engine's render
// workers.
type PackedSource struct {
	inner   frame.Source
	alpha   frame.Source
	packer  Packer
	conv    Converter
	cfg     ConvertConfig
	onProps func(n int, props map[string]any)
	log     *logrus.Entry
}

// NewPackedSource builds the prepared node. alpha, conv and onProps may be
// nil; onProps observes per-frame properties at render time.
func NewPackedSource(inner frame.Source, alpha frame.Source, p Packer, conv Converter, cfg ConvertConfig, onProps func(int, map[string]any)) *PackedSource {
	return &PackedSource{
		inner:   inner,
		alpha:   alpha,
		packer:  p,
		conv:    conv,
		cfg:     cfg,
		onProps: onProps,
		log:     logrus.WithField("component", "packedsource"),
	}
}

// NumFrames returns the inner node's frame count.
func (s *PackedSource) NumFrames() int { return s.inner.NumFrames() }

// GetFrame renders and packs frame n synchronously. The rendered source
// frames are consumed here; the caller owns only the returned packed frame.
func (s *PackedSource) GetFrame(n int) (*frame.Frame, error) {
	src, err := s.inner.GetFrame(n)
	if err != nil {
		return nil, fmt.Errorf("render frame %d: %w", n, err)
	}
	defer closeQuiet(src)

	if s.onProps != nil {
		s.onProps(n, src.Props())
	}

	var alpha *frame.Frame
	if s.alpha != nil {
		alpha, err = s.alpha.GetFrame(n)
		if err != nil {
			return nil, fmt.Errorf("render alpha frame %d: %w", n, err)
		}
		defer closeQuiet(alpha)
	}

	buf, err := PackFrame(s.packer, s.conv, src, alpha, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("pack frame %d: %w", n, err)
	}
	return NewPackedFrame(n, buf, src.Props())
}

// GetFrameAsync requests frame n and packs it on a worker goroutine.
func (s *PackedSource) GetFrameAsync(n int) *frame.AsyncHandle {
	h := frame.NewAsyncHandle()
	go func() {
		f, err := s.GetFrame(n)
		if cerr := h.Complete(f, err); cerr != nil && f != nil {
			closeQuiet(f)
		}
	}()
	return h
}
