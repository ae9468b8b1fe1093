/*
Package tim implements a decoder and encoder for the PlayStation TIM image
format along with the fixed-layout DP variant.

A TIM file is an 8 byte header (a 0x10 magic byte, a version byte, two
reserved bytes and a 32-bit flags word) optionally followed by a colour lookup
table (CLUT) block and then always by a pixel block. Both blocks start with a
12 byte sub-header; the 32-bit length of the block including the sub-header,
then the 16-bit x, y, width and height of the block in frame buffer memory.
Colours are packed as 16-bit values, SBBBBBGGGGGRRRRR, where S is the
semi-transparency bit. All integers are little-endian.

A DP file has no header at all. It is 0xa000 bytes of 4-bit pixel indices
followed by four 256 entry CLUTs, 0x200 bytes each.
*/
package tim

import "errors"

const (
	magic = 0x10

	// Bytes used by the length, x, y, width and height of a block
	blockHeaderSize = 12

	dpPixelLength  = 0xa000
	dpPixelWidth   = 256
	dpPixelHeight  = 320
	dpClutLength   = 0x200
	dpClutY        = 0x1e0
	dpClutWidth    = 0x100
	dpClutHeight   = 1
	dpPaletteCount = 4
)

var (
	// ErrInvalidMagic is returned when the first byte is not 0x10
	ErrInvalidMagic = errors.New("tim: invalid magic")
	// ErrOutOfBounds is returned when a read runs past the end of the buffer
	ErrOutOfBounds = errors.New("tim: read out of bounds")
	// ErrUnknownPixelMode is returned for pixel modes 5 to 7
	ErrUnknownPixelMode = errors.New("tim: unknown pixel mode")
	// ErrUnsupportedMode is returned for the mixed pixel mode
	ErrUnsupportedMode = errors.New("tim: mixed pixel mode not supported")
)

// PixelMode is the encoding of the samples in the pixel block.
type PixelMode uint8

// Pixel modes stored in bits 0-2 of the flags word.
const (
	CLUT4 PixelMode = iota
	CLUT8
	Direct15
	Direct24
	Mixed
)

func (m PixelMode) String() string {
	switch m {
	case CLUT4:
		return "4-bit CLUT"
	case CLUT8:
		return "8-bit CLUT"
	case Direct15:
		return "15-bit direct"
	case Direct24:
		return "24-bit direct"
	case Mixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// FormatInfo is the first four bytes of a TIM file.
type FormatInfo struct {
	ID       uint8
	Version  uint8
	Reserved uint16
}

// Flags is the decoded flags word.
type Flags struct {
	PixelMode PixelMode
	CLUT      bool
	Reserved  uint32
}

// Colour holds three channel intensities. For 15-bit colours each channel is
// 0-31, for 24-bit colours 0-255.
type Colour struct {
	R, G, B uint8
}

// ColourWithAlpha is a 15-bit colour with its semi-transparency bit.
type ColourWithAlpha struct {
	Colour
	STP uint8
}

// ClutInfo is a decoded colour lookup table block. Entry n is the colour
// referenced by pixel index n.
type ClutInfo struct {
	BlockLength         uint32
	X, Y, Width, Height uint16
	Entries             []ColourWithAlpha
}

// PixelInfo is a decoded pixel block. Which of Indices, Direct or Colours
// holds the samples is decided by Mode; the other two are nil.
type PixelInfo struct {
	BlockLength         uint32
	X, Y, Width, Height uint16

	Mode PixelMode

	// CLUT4 and CLUT8
	Indices []uint8
	// Direct15
	Direct []ColourWithAlpha
	// Direct24
	Colours []Colour
}

// Len returns the number of decoded samples.
func (p *PixelInfo) Len() int {
	switch p.Mode {
	case CLUT4, CLUT8:
		return len(p.Indices)
	case Direct15:
		return len(p.Direct)
	case Direct24:
		return len(p.Colours)
	}
	return 0
}

// Image is implemented by both decoded containers.
type Image interface {
	PixelData() *PixelInfo
	Palettes() []ClutInfo
}

// TIM is a decoded TIM image. CLUT is nil unless Flags.CLUT is set.
type TIM struct {
	Header FormatInfo
	Flags  Flags
	CLUT   *ClutInfo
	Pixels PixelInfo
}

// PixelData returns the pixel block
func (t *TIM) PixelData() *PixelInfo {
	return &t.Pixels
}

// Palettes returns the CLUT as a single element slice, or nil
func (t *TIM) Palettes() []ClutInfo {
	if t.CLUT == nil {
		return nil
	}
	return []ClutInfo{*t.CLUT}
}

// DP is a decoded DP image. It always has four palettes and 4-bit pixels.
type DP struct {
	CLUTs  []ClutInfo
	Pixels PixelInfo
}

// PixelData returns the pixel block
func (d *DP) PixelData() *PixelInfo {
	return &d.Pixels
}

// Palettes returns the four CLUTs
func (d *DP) Palettes() []ClutInfo {
	return d.CLUTs
}
