package tim

import (
	"bytes"
	"encoding/binary"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan(t *testing.T) {
	first := new(bytes.Buffer)
	require.NoError(t, Encode(first, testPaletted(8, 2), CLUT4))

	second := new(bytes.Buffer)
	require.NoError(t, Encode(second, testPaletted(4, 4), Direct24))

	b := new(builder)
	b.put(make([]byte, 16))
	// Looks like a header but the reserved flag bits are set
	b.header(0xf0000000)
	b.put(first.Bytes())
	for b.Len()%4 != 0 {
		b.put(uint8(0xff))
	}
	b.put([]byte{0x10, 0x00, 0x00, 0x00})
	off := b.Len()
	b.put(second.Bytes())
	// Truncated, so won't parse
	b.put(first.Bytes()[:20])

	found := Scan(b.Bytes())
	require.Len(t, found, 2)

	assert.Equal(t, 24, found[0].Offset)
	assert.Equal(t, first.Len(), found[0].Size)
	assert.Equal(t, first.Bytes(), found[0].Bytes(b.Bytes()))
	assert.Equal(t, CLUT4, found[0].Image.Flags.PixelMode)

	assert.Equal(t, off, found[1].Offset)
	assert.Equal(t, second.Len(), found[1].Size)
	assert.Equal(t, Direct24, found[1].Image.Flags.PixelMode)
}

func TestScanNothing(t *testing.T) {
	assert.Empty(t, Scan(nil))
	assert.Empty(t, Scan(make([]byte, 1024)))
}

func TestScanOversizedCandidates(t *testing.T) {
	b := make([]byte, 1<<20)
	// Plausible headers whose pixel block claims nearly 4GB
	for off := 0; off < len(b); off += 1 << 16 {
		b[off] = 0x10
		binary.LittleEndian.PutUint32(b[off+8:], 0xfffffff0)
	}

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	found := Scan(b)
	runtime.ReadMemStats(&after)

	assert.Empty(t, found)
	// Each candidate is rejected without decoding the rest of the buffer
	allocated := after.TotalAlloc - before.TotalAlloc
	assert.True(t, allocated < 1<<20, "allocated %d bytes", allocated)
}
