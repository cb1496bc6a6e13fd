package packing

import "github.com/Jaded-Encoding-Thaumaturgy/vs-view/frame"

// scalarPacker is the per-pixel reference implementation. Every other
// backend is property-tested against it.
type scalarPacker struct {
	depth int
}

func (p *scalarPacker) Name() string        { return string(MethodScalar) }
func (p *scalarPacker) BitDepth() int       { return p.depth }
func (p *scalarPacker) SupportsAlpha() bool { return true }

func (p *scalarPacker) Pack(src, alpha *frame.Frame) (*PixelBuffer, error) {
	if err := validatePack(src, alpha, p.depth); err != nil {
		return nil, err
	}
	buf, err := NewPixelBuffer(src.Width(), src.Height(), outputFormat(p.depth, alpha != nil))
	if err != nil {
		return nil, err
	}
	if p.depth == 10 {
		scalarPack10(buf, src, alpha)
	} else {
		scalarPack8(buf, src, alpha)
	}
	return buf, nil
}

// scalarPack8 interleaves 8-bit R, G, B planes into BGRA bytes. Without an
// alpha plane the alpha byte is forced to 255; alpha is straight, never
// premultiplied at 8 bit.
func scalarPack8(dst *PixelBuffer, src, alpha *frame.Frame) {
	rp, gp, bp := src.Plane(0), src.Plane(1), src.Plane(2)

	for y := 0; y < dst.Height; y++ {
		r, g, b := rp.Row8(y), gp.Row8(y), bp.Row8(y)
		var a []byte
		if alpha != nil {
			a = alpha.Plane(0).Row8(y)
		}
		row := dst.Pix[y*dst.Stride:]

		for x := 0; x < dst.Width; x++ {
			o := x * bytesPerPixel
			row[o+0] = b[x]
			row[o+1] = g[x]
			row[o+2] = r[x]
			if a != nil {
				row[o+3] = a[x]
			} else {
				row[o+3] = 0xFF
			}
		}
	}
}

// scalarPack10 packs 10-bit samples into A2R10G10B10 words, little-endian.
// Alpha is quantized to 2 bits (alpha10 >> 8) and premultiplied into each
// channel with exact integer floor division.
func scalarPack10(dst *PixelBuffer, src, alpha *frame.Frame) {
	rp, gp, bp := src.Plane(0), src.Plane(1), src.Plane(2)

	for y := 0; y < dst.Height; y++ {
		r, g, b := rp.Row16(y), gp.Row16(y), bp.Row16(y)
		var a []uint16
		if alpha != nil {
			a = alpha.Plane(0).Row16(y)
		}
		row := dst.Pix[y*dst.Stride:]

		for x := 0; x < dst.Width; x++ {
			rv, gv, bv := uint32(r[x]), uint32(g[x]), uint32(b[x])

			var word uint32
			if a != nil {
				av := uint32(a[x]) >> 8
				switch av {
				case 0:
					rv, gv, bv = 0, 0, 0
				case 1:
					rv, gv, bv = rv/3, gv/3, bv/3
				case 2:
					rv, gv, bv = rv*2/3, gv*2/3, bv*2/3
				}
				word = av<<30 | rv<<20 | gv<<10 | bv
			} else {
				word = 0xC0000000 | rv<<20 | gv<<10 | bv
			}

			o := x * bytesPerPixel
			row[o+0] = byte(word)
			row[o+1] = byte(word >> 8)
			row[o+2] = byte(word >> 16)
			row[o+3] = byte(word >> 24)
		}
	}
}
