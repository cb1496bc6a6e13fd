package packing

import "github.com/Jaded-Encoding-Thaumaturgy/vs-view/frame"

// ConvertConfig carries the colorspace-conversion knobs handed through to
// the engine: dithering mode and chroma resampling filter. The values are
// opaque to the packing layer and interpreted by the engine converter.
type ConvertConfig struct {
	DitherType   string
	ChromaFilter string
	FilterParamA float64
	FilterParamB float64
}

// Converter is the engine-side colorspace conversion hook. ToPlanar
// returns a new frame in the requested planar format at the same
// resolution; the input frame stays owned by the caller.
type Converter interface {
	ToPlanar(f *frame.Frame, family frame.ColorFamily, bits int, cfg ConvertConfig) (*frame.Frame, error)
}

// ToPlanar converts f to the canonical planar RGB format at the given bit
// depth, passing it through untouched when it already matches. The second
// return value reports whether a new frame was produced (which the caller
// then owns in addition to f).
func ToPlanar(conv Converter, f *frame.Frame, bits int, cfg ConvertConfig) (*frame.Frame, bool, error) {
	if f.Family() == frame.ColorFamilyRGB && f.Bits() == bits {
		return f, false, nil
	}
	if conv == nil {
		return nil, false, ErrNoConverter
	}
	out, err := conv.ToPlanar(f, frame.ColorFamilyRGB, bits, cfg)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// ToPlanarAlpha converts an alpha frame to single-plane gray at the given
// bit depth. Chroma resampling does not apply to alpha; only the dither
// setting is forwarded.
func ToPlanarAlpha(conv Converter, f *frame.Frame, bits int, cfg ConvertConfig) (*frame.Frame, bool, error) {
	if f.Family() == frame.ColorFamilyGray && f.Bits() == bits {
		return f, false, nil
	}
	if conv == nil {
		return nil, false, ErrNoConverter
	}
	out, err := conv.ToPlanar(f, frame.ColorFamilyGray, bits, ConvertConfig{DitherType: cfg.DitherType})
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}
