package tim

// ExtractBits returns the n bit wide field of value starting at bit start,
// counting from the least significant bit. start+n must not exceed 32.
func ExtractBits(value uint32, start, n uint) uint32 {
	if n >= 32 {
		return value >> start
	}
	return value >> start & (1<<n - 1)
}

// Unpack a packed SBBBBBGGGGGRRRRR colour
func unpack15(v uint32) ColourWithAlpha {
	return ColourWithAlpha{
		Colour: Colour{
			R: uint8(ExtractBits(v, 0, 5)),
			G: uint8(ExtractBits(v, 5, 5)),
			B: uint8(ExtractBits(v, 10, 5)),
		},
		STP: uint8(ExtractBits(v, 15, 1)),
	}
}
