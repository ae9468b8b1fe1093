package tim

import (
	"image/color"

	"github.com/bodgit/psxtim/colour"
)

// RGBA implements color.Color treating the channels as 8-bit, which is how
// 24-bit direct samples are stored. It is always opaque.
func (c Colour) RGBA() (r, g, b, a uint32) {
	return color.RGBA{c.R, c.G, c.B, 0xff}.RGBA()
}

// RGBA implements color.Color expanding the 5-bit channels, with alpha
// derived from the STP bit.
func (c ColourWithAlpha) RGBA() (r, g, b, a uint32) {
	return colour.NRGBA15(c.R, c.G, c.B, c.STP).RGBA()
}

// Hex returns the expanded colour formatted as #RRGGBBAA
func (c ColourWithAlpha) Hex() string {
	n := colour.NRGBA15(c.R, c.G, c.B, c.STP)
	return colour.Hex(n.R, n.G, n.B, c.STP)
}

// NewColourWithAlpha converts c to the nearest 15-bit colour
func NewColourWithAlpha(c color.Color) ColourWithAlpha {
	r, g, b, stp := colour.Pack15(c)
	return ColourWithAlpha{Colour{r, g, b}, stp}
}

func (c ColourWithAlpha) pack() uint16 {
	return uint16(c.R)&0x1f | uint16(c.G)&0x1f<<5 | uint16(c.B)&0x1f<<10 | uint16(c.STP)&1<<15
}

// Palette returns the CLUT entries as a color.Palette
func (c *ClutInfo) Palette() color.Palette {
	p := make(color.Palette, len(c.Entries))
	for i, e := range c.Entries {
		p[i] = e
	}
	return p
}
