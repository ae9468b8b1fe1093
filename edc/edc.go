/*
Package edc implements the 32-bit error detection code stored in Mode 1 and
Mode 2 Form 1 CD-ROM sectors.

It is a CRC using the polynomial 0x8001801b, computed least significant bit
first with no initial or final inversion, so it can't be expressed with
hash/crc32 which always inverts.
*/
package edc

import (
	"encoding/binary"
	"hash"
	crc "hash/crc32"
)

// Size of an EDC in bytes.
const Size = 4

func makeTable(poly uint32) *crc.Table {
	t := new(crc.Table)
	for i := 0; i < 256; i++ {
		edc := uint32(i)
		for j := 0; j < 8; j++ {
			if edc&1 != 0 {
				edc = edc>>1 ^ poly
			} else {
				edc >>= 1
			}
		}
		t[i] = edc
	}
	return t
}

// Reversed form of 0x8001801b
const polynomial = 0xd8018001

var table = makeTable(polynomial)

type digest struct {
	edc uint32
	tab *crc.Table
}

// New creates a new hash.Hash32 computing the EDC. Its Sum method will lay
// the value out in little-endian byte order, as it is stored in a sector.
func New() hash.Hash32 {
	return &digest{0, table}
}

func (d *digest) Size() int { return Size }

func (d *digest) BlockSize() int { return 1 }

func (d *digest) Reset() { d.edc = 0 }

func update(edc uint32, tab *crc.Table, p []byte) uint32 {
	for _, v := range p {
		edc = edc>>8 ^ tab[byte(edc)^v]
	}
	return edc
}

// Update returns the result of adding the bytes in p to the edc.
func Update(edc uint32, p []byte) uint32 {
	return update(edc, table, p)
}

func (d *digest) Write(p []byte) (n int, err error) {
	d.edc = update(d.edc, d.tab, p)
	return len(p), nil
}

func (d *digest) Sum32() uint32 { return d.edc }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum32()
	return append(in, byte(s), byte(s>>8), byte(s>>16), byte(s>>24))
}

// Checksum returns the EDC of data.
func Checksum(data []byte) uint32 { return Update(0, data) }

const (
	sectorSize = 2352
	syncSize   = 12
	headerSize = 16
	// Mode 2 subheader is two copies of file, channel, submode and coding
	subheaderSize = 8
	userDataSize  = 2048
	submodeForm2  = 0x20
)

// Verify reports whether the EDC of the raw sector s matches the one stored
// within it. Mode 2 Form 2 sectors and anything that isn't a Mode 1 or Mode 2
// sector carry no mandatory EDC and always verify.
func Verify(s []byte) bool {
	if len(s) < sectorSize {
		return false
	}

	var start, end int
	switch s[syncSize+3] {
	case 1:
		start, end = 0, headerSize+userDataSize
	case 2:
		if s[headerSize+2]&submodeForm2 != 0 {
			return true
		}
		start, end = headerSize, headerSize+subheaderSize+userDataSize
	default:
		return true
	}

	return Checksum(s[start:end]) == binary.LittleEndian.Uint32(s[end:end+Size])
}
