package tim

import "encoding/binary"

// Found is a TIM image located inside a larger buffer.
type Found struct {
	Offset int
	Size   int
	Image  *TIM
}

// Bytes returns the slice of b holding the image
func (f Found) Bytes(b []byte) []byte {
	return b[f.Offset : f.Offset+f.Size]
}

func candidate(b []byte) bool {
	if len(b) < 8 || b[0] != magic || b[1] != 0 || b[2] != 0 || b[3] != 0 {
		return false
	}
	flags := binary.LittleEndian.Uint32(b[4:])
	// Reserved bits must be clear and the mode must be decodable
	return flags&^0xf == 0 && PixelMode(flags&0x7) < Mixed
}

// Scan looks for TIM images at every 4-byte aligned offset of b. Candidates
// that fail to parse, or whose blocks are shorter than their own header, are
// skipped. The search resumes after the end of each image found.
//
// Every offset that looks like a TIM header is parsed, so the time taken
// grows with the number of false candidates in b as well as its length. A
// candidate whose block lengths run past the end of b is rejected before any
// samples are decoded.
func Scan(b []byte) []Found {
	var found []Found
	for off := 0; off+8 <= len(b); off += 4 {
		if !candidate(b[off:]) {
			continue
		}

		c := newCursor(b[off:])
		t, err := parseTIM(c)
		if err != nil {
			continue
		}
		if t.Pixels.BlockLength < blockHeaderSize || t.Pixels.Len() == 0 {
			continue
		}
		if t.CLUT != nil && (t.CLUT.BlockLength < blockHeaderSize || len(t.CLUT.Entries) == 0) {
			continue
		}

		found = append(found, Found{
			Offset: off,
			Size:   c.position(),
			Image:  t,
		})

		// Loop adds the final 4
		off += (c.position()+3)&^3 - 4
	}
	return found
}
