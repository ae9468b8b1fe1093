package edc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	assert.Equal(t, uint32(0), Checksum(nil))
	assert.Equal(t, uint32(0), Checksum(make([]byte, 16)))

	assert.Equal(t, table[1], Checksum([]byte{0x01}))
	assert.NotEqual(t, uint32(0), Checksum([]byte{0x01}))
}

func TestHash(t *testing.T) {
	data := []byte("PlayStation")

	h := New()
	assert.Equal(t, Size, h.Size())
	assert.Equal(t, 1, h.BlockSize())

	_, _ = h.Write(data[:4])
	_, _ = h.Write(data[4:])
	assert.Equal(t, Checksum(data), h.Sum32())

	b := h.Sum(nil)
	assert.Equal(t, Checksum(data), binary.LittleEndian.Uint32(b))

	h.Reset()
	assert.Equal(t, uint32(0), h.Sum32())
}

func mode1Sector(seed byte) []byte {
	s := make([]byte, sectorSize)
	s[syncSize+3] = 1
	for i := headerSize; i < headerSize+userDataSize; i++ {
		s[i] = byte(i) + seed
	}
	binary.LittleEndian.PutUint32(s[headerSize+userDataSize:], Checksum(s[:headerSize+userDataSize]))
	return s
}

func mode2Sector(submode byte) []byte {
	s := make([]byte, sectorSize)
	s[syncSize+3] = 2
	s[headerSize+2] = submode
	s[headerSize+6] = submode
	for i := headerSize + subheaderSize; i < headerSize+subheaderSize+userDataSize; i++ {
		s[i] = byte(i * 3)
	}
	end := headerSize + subheaderSize + userDataSize
	binary.LittleEndian.PutUint32(s[end:], Checksum(s[headerSize:end]))
	return s
}

func TestVerify(t *testing.T) {
	s := mode1Sector(7)
	assert.True(t, Verify(s))
	s[100] ^= 0x01
	assert.False(t, Verify(s))

	s = mode2Sector(0x08)
	assert.True(t, Verify(s))
	s[headerSize+subheaderSize] ^= 0x80
	assert.False(t, Verify(s))

	// Form 2 isn't checked
	s = mode2Sector(submodeForm2)
	s[headerSize+subheaderSize] ^= 0x80
	assert.True(t, Verify(s))

	assert.False(t, Verify(make([]byte, 100)))

	s = make([]byte, sectorSize)
	s[syncSize+3] = 0
	assert.True(t, Verify(s))
}
