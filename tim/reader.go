package tim

import (
	"github.com/pkg/errors"
)

func parseFormatInfo(c *cursor) (FormatInfo, error) {
	var f FormatInfo
	var err error
	if f.ID, err = c.readByte(); err != nil {
		return f, err
	}
	if f.ID != magic {
		return f, errors.Wrapf(ErrInvalidMagic, "expected %#02x, got %#02x", magic, f.ID)
	}
	// Always zero on the PlayStation but anything is accepted
	if f.Version, err = c.readByte(); err != nil {
		return f, err
	}
	if f.Reserved, err = c.readHalf(); err != nil {
		return f, err
	}
	return f, nil
}

func parseFlags(c *cursor) (Flags, error) {
	v, err := c.readWord()
	if err != nil {
		return Flags{}, err
	}
	return Flags{
		PixelMode: PixelMode(ExtractBits(v, 0, 3)),
		CLUT:      ExtractBits(v, 3, 1) == 1,
		Reserved:  ExtractBits(v, 4, 28),
	}, nil
}

type blockHeader struct {
	length              uint32
	x, y, width, height uint16
}

func parseBlockHeader(c *cursor) (blockHeader, error) {
	var h blockHeader
	var err error
	if h.length, err = c.readWord(); err != nil {
		return h, err
	}
	for _, p := range []*uint16{&h.x, &h.y, &h.width, &h.height} {
		if *p, err = c.readHalf(); err != nil {
			return h, err
		}
	}
	return h, nil
}

// The block length includes the 12 byte sub-header just read. A length
// shorter than that yields an empty block. A block that can't fit in what's
// left of the buffer fails here rather than after decoding up to the end.
func (h blockHeader) end(c *cursor) (int, error) {
	end := int64(c.position()) + int64(h.length) - blockHeaderSize
	if end > int64(len(c.b)) {
		return 0, errors.Wrapf(ErrOutOfBounds, "block of %d bytes at offset %d of %d", h.length, c.position()-blockHeaderSize, len(c.b))
	}
	return int(end), nil
}

func readEntries(c *cursor, end int) ([]ColourWithAlpha, error) {
	var entries []ColourWithAlpha
	for c.position() < end {
		v, err := c.readHalf()
		if err != nil {
			return nil, err
		}
		entries = append(entries, unpack15(uint32(v)))
	}
	return entries, nil
}

func parseClutInfo(c *cursor) (*ClutInfo, error) {
	h, err := parseBlockHeader(c)
	if err != nil {
		return nil, errors.Wrap(err, "tim: CLUT header")
	}
	end, err := h.end(c)
	if err != nil {
		return nil, errors.Wrap(err, "tim: CLUT entries")
	}
	entries, err := readEntries(c, end)
	if err != nil {
		return nil, errors.Wrap(err, "tim: CLUT entries")
	}
	return &ClutInfo{
		BlockLength: h.length,
		X:           h.x,
		Y:           h.y,
		Width:       h.width,
		Height:      h.height,
		Entries:     entries,
	}, nil
}

func checkMode(m PixelMode) error {
	switch {
	case m == Mixed:
		return ErrUnsupportedMode
	case m > Mixed:
		return errors.Wrapf(ErrUnknownPixelMode, "mode %d", m)
	}
	return nil
}

func readSamples(c *cursor, p *PixelInfo, end int) error {
	for c.position() < end {
		switch p.Mode {
		case CLUT4:
			v, err := c.readByte()
			if err != nil {
				return err
			}
			// Low nibble is the leftmost pixel
			p.Indices = append(p.Indices, uint8(ExtractBits(uint32(v), 0, 4)), uint8(ExtractBits(uint32(v), 4, 4)))
		case CLUT8:
			// Blocks can end on a half-word boundary so read in halves
			v, err := c.readHalf()
			if err != nil {
				return err
			}
			p.Indices = append(p.Indices, uint8(ExtractBits(uint32(v), 0, 8)), uint8(ExtractBits(uint32(v), 8, 8)))
		case Direct15:
			v, err := c.readWord()
			if err != nil {
				return err
			}
			// Green is bits 5-9, the same as a CLUT entry
			p.Direct = append(p.Direct, unpack15(v))
		case Direct24:
			var x, y, z uint16
			var err error
			for _, h := range []*uint16{&x, &y, &z} {
				if *h, err = c.readHalf(); err != nil {
					return err
				}
			}
			p.Colours = append(p.Colours,
				Colour{
					R: uint8(ExtractBits(uint32(x), 0, 8)),
					G: uint8(ExtractBits(uint32(x), 8, 8)),
					B: uint8(ExtractBits(uint32(y), 0, 8)),
				},
				Colour{
					R: uint8(ExtractBits(uint32(y), 8, 8)),
					G: uint8(ExtractBits(uint32(z), 0, 8)),
					B: uint8(ExtractBits(uint32(z), 8, 8)),
				},
			)
		default:
			return checkMode(p.Mode)
		}
	}
	return nil
}

func parsePixelInfo(c *cursor, mode PixelMode) (*PixelInfo, error) {
	if err := checkMode(mode); err != nil {
		return nil, err
	}
	h, err := parseBlockHeader(c)
	if err != nil {
		return nil, errors.Wrap(err, "tim: pixel header")
	}
	end, err := h.end(c)
	if err != nil {
		return nil, errors.Wrap(err, "tim: pixel data")
	}
	p := &PixelInfo{
		BlockLength: h.length,
		X:           h.x,
		Y:           h.y,
		Width:       h.width,
		Height:      h.height,
		Mode:        mode,
	}
	if err := readSamples(c, p, end); err != nil {
		return nil, errors.Wrap(err, "tim: pixel data")
	}
	return p, nil
}

// ParseTIM decodes a complete TIM image from b.
func ParseTIM(b []byte) (*TIM, error) {
	return parseTIM(newCursor(b))
}

func parseTIM(c *cursor) (*TIM, error) {
	header, err := parseFormatInfo(c)
	if err != nil {
		return nil, err
	}

	flags, err := parseFlags(c)
	if err != nil {
		return nil, err
	}

	// Fail before touching either block
	if err := checkMode(flags.PixelMode); err != nil {
		return nil, err
	}

	t := &TIM{
		Header: header,
		Flags:  flags,
	}

	if flags.CLUT {
		if t.CLUT, err = parseClutInfo(c); err != nil {
			return nil, err
		}
	}

	p, err := parsePixelInfo(c, flags.PixelMode)
	if err != nil {
		return nil, err
	}
	t.Pixels = *p

	return t, nil
}
