package tim

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/ericpauley/go-quantize/quantize"
)

var (
	// ErrImageSize is returned when the image dimensions cannot be stored
	// using the requested pixel mode
	ErrImageSize = errors.New("tim: image is wrong size")
	// ErrEncodeMode is returned for pixel modes the encoder does not write
	ErrEncodeMode = errors.New("tim: pixel mode cannot be encoded")
)

const (
	// Where the CLUT is placed in frame buffer memory
	clutX = 0
	clutY = 480

	maxDimension = 1<<16 - 1
)

type encoder struct {
	w    io.Writer
	mode PixelMode
}

func (e *encoder) write(data interface{}) error {
	return binary.Write(e.w, binary.LittleEndian, data)
}

func (e *encoder) writeHeader(clut bool) error {
	flags := uint32(e.mode)
	if clut {
		flags |= 1 << 3
	}
	return e.write(struct {
		ID, Version uint8
		Reserved    uint16
		Flags       uint32
	}{magic, 0, 0, flags})
}

func (e *encoder) writeBlockHeader(length int, x, y, width, height uint16) error {
	return e.write(struct {
		Length              uint32
		X, Y, Width, Height uint16
	}{uint32(blockHeaderSize + length), x, y, width, height})
}

func (e *encoder) writeClut(p color.Palette) error {
	if err := e.writeBlockHeader(len(p)*2, clutX, clutY, uint16(len(p)), 1); err != nil {
		return err
	}
	entries := make([]uint16, len(p))
	for i, c := range p {
		entries[i] = NewColourWithAlpha(c).pack()
	}
	return e.write(entries)
}

func (e *encoder) encodeIndexed(m *image.Paletted) error {
	b := m.Bounds()

	if err := e.writeHeader(true); err != nil {
		return err
	}
	if err := e.writeClut(m.Palette); err != nil {
		return err
	}

	var buf []byte
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x += 2 {
			p0, p1 := m.ColorIndexAt(x, y), m.ColorIndexAt(x+1, y)
			if e.mode == CLUT4 {
				// Leftmost pixel in the low nibble
				buf = append(buf, p0&0x0f|p1&0x0f<<4)
			} else {
				buf = append(buf, p0, p1)
			}
		}
	}

	// Width is always counted in 16-bit units
	width := b.Dx() / 4
	if e.mode == CLUT8 {
		width = b.Dx() / 2
	}
	if err := e.writeBlockHeader(len(buf), 0, 0, uint16(width), uint16(b.Dy())); err != nil {
		return err
	}
	_, err := e.w.Write(buf)
	return err
}

func (e *encoder) encodeDirect24(m image.Image) error {
	b := m.Bounds()

	if err := e.writeHeader(false); err != nil {
		return err
	}

	buf := make([]byte, 0, b.Dx()*b.Dy()*3)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(m.At(x, y)).(color.RGBA)
			buf = append(buf, c.R, c.G, c.B)
		}
	}

	if err := e.writeBlockHeader(len(buf), 0, 0, uint16(b.Dx()*3/2), uint16(b.Dy())); err != nil {
		return err
	}
	_, err := e.w.Write(buf)
	return err
}

func padPalette(p color.Palette, n int) color.Palette {
	for len(p) < n {
		p = append(p, color.RGBA{0, 0, 0, 0})
	}
	return p
}

// Convert m to a paletted image of no more than n colours
func paletted(m image.Image, n int) *image.Paletted {
	b := m.Bounds()

	pm, _ := m.(*image.Paletted)
	if pm == nil {
		if cp, ok := m.ColorModel().(color.Palette); ok {
			pm = image.NewPaletted(b, cp)
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					pm.Set(x, y, cp.Convert(m.At(x, y)))
				}
			}
		}
	}

	if pm == nil || len(pm.Palette) > n {
		q := quantize.MedianCutQuantizer{}
		pm = image.NewPaletted(b, q.Quantize(make(color.Palette, 0, n), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)
	}

	dup := *pm
	dup.Palette = padPalette(append(color.Palette(nil), pm.Palette...), n)
	return &dup
}

// Encode writes the Image m to w in TIM format using the given pixel mode.
// CLUT4 and CLUT8 images are reduced to 16 or 256 colours if necessary.
// Direct15 and Mixed are not supported.
func Encode(w io.Writer, m image.Image, mode PixelMode) error {
	b := m.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 || b.Dy() > maxDimension {
		return ErrImageSize
	}

	e := encoder{w: w, mode: mode}

	switch mode {
	case CLUT4:
		if b.Dx()%4 != 0 || b.Dx()/4 > maxDimension {
			return ErrImageSize
		}
		return e.encodeIndexed(paletted(m, 16))
	case CLUT8:
		if b.Dx()%2 != 0 || b.Dx()/2 > maxDimension {
			return ErrImageSize
		}
		return e.encodeIndexed(paletted(m, 256))
	case Direct24:
		if b.Dx()%2 != 0 || b.Dx()*3/2 > maxDimension {
			return ErrImageSize
		}
		return e.encodeDirect24(m)
	default:
		return ErrEncodeMode
	}
}
