package tim

import "github.com/pkg/errors"

// DP blocks have no sub-header, the geometry is fixed
func parseFixedClutInfo(c *cursor) (*ClutInfo, error) {
	entries, err := readEntries(c, c.position()+dpClutLength)
	if err != nil {
		return nil, err
	}
	return &ClutInfo{
		BlockLength: dpClutLength,
		X:           0,
		Y:           dpClutY,
		Width:       dpClutWidth,
		Height:      dpClutHeight,
		Entries:     entries,
	}, nil
}

func parseFixedPixelInfo(c *cursor) (*PixelInfo, error) {
	p := &PixelInfo{
		BlockLength: dpPixelLength,
		Width:       dpPixelWidth,
		Height:      dpPixelHeight,
		Mode:        CLUT4,
	}
	// The bound is an absolute offset, pixels always start the file
	if err := readSamples(c, p, dpPixelLength); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseDP decodes a DP image from b. The pixels come first, followed by the
// four palettes.
func ParseDP(b []byte) (*DP, error) {
	c := newCursor(b)

	p, err := parseFixedPixelInfo(c)
	if err != nil {
		return nil, errors.Wrap(err, "tim: DP pixel data")
	}

	d := &DP{
		CLUTs:  make([]ClutInfo, 0, dpPaletteCount),
		Pixels: *p,
	}

	for i := 0; i < dpPaletteCount; i++ {
		clut, err := parseFixedClutInfo(c)
		if err != nil {
			return nil, errors.Wrapf(err, "tim: DP palette %d", i)
		}
		d.CLUTs = append(d.CLUTs, *clut)
	}

	return d, nil
}
