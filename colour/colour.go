/*
Package colour converts between the 5-bit per channel colours used by the
PlayStation and 8-bit per channel colours.

A 15-bit colour also carries a semi-transparency (STP) bit which combines
with the colour itself to give one of three alpha levels:

	RGB all zero, STP clear   fully transparent (0x00)
	RGB non-zero, STP set     semi-transparent (0x7f)
	otherwise                 opaque (0xff)
*/
package colour

import (
	"fmt"
	"image/color"
)

// Alpha levels
const (
	Transparent     = 0x00
	SemiTransparent = 0x7f
	Opaque          = 0xff
)

// Expand5 scales a 0-31 channel value to 0-255, rounding down
func Expand5(c uint8) uint8 {
	return uint8(uint32(c) * 255 / 31)
}

// Reduce8 scales a 0-255 channel value to 0-31, rounding to nearest. It is
// the inverse of Expand5.
func Reduce8(c uint8) uint8 {
	return uint8((uint32(c)*31 + 127) / 255)
}

// Alpha returns the alpha level for a colour and its STP bit
func Alpha(r, g, b, stp uint8) uint8 {
	if r != 0 || g != 0 || b != 0 {
		if stp == 1 {
			return SemiTransparent
		}
		return Opaque
	}
	if stp == 0 {
		return Transparent
	}
	return Opaque
}

// Hex formats a colour as #RRGGBBAA. The channels are used as given so 15-bit
// colours should be expanded first.
func Hex(r, g, b, stp uint8) string {
	return fmt.Sprintf("#%02X%02X%02X%02X", r, g, b, Alpha(r, g, b, stp))
}

// NRGBA15 expands a 15-bit colour and its STP bit into a color.NRGBA
func NRGBA15(r, g, b, stp uint8) color.NRGBA {
	return color.NRGBA{
		R: Expand5(r),
		G: Expand5(g),
		B: Expand5(b),
		A: Alpha(r, g, b, stp),
	}
}

// Pack15 reduces any color.Color to 15-bit channels and an STP bit such that
// NRGBA15 gives back the nearest of the three alpha levels.
func Pack15(c color.Color) (r, g, b, stp uint8) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	switch {
	case n.A < 0x40:
		// Only all zero with STP clear is transparent
		return 0, 0, 0, 0
	case n.A < 0xc0:
		r, g, b = Reduce8(n.R), Reduce8(n.G), Reduce8(n.B)
		if r == 0 && g == 0 && b == 0 {
			// Semi-transparent black isn't representable
			return 0, 0, 0, 1
		}
		return r, g, b, 1
	default:
		r, g, b = Reduce8(n.R), Reduce8(n.G), Reduce8(n.B)
		if r == 0 && g == 0 && b == 0 {
			return 0, 0, 0, 1
		}
		return r, g, b, 0
	}
}
