package tim

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type builder struct {
	bytes.Buffer
}

func (b *builder) put(v interface{}) *builder {
	if err := binary.Write(&b.Buffer, binary.LittleEndian, v); err != nil {
		panic(err)
	}
	return b
}

func (b *builder) header(flags uint32) *builder {
	return b.put([]uint8{0x10, 0x00}).put(uint16(0)).put(flags)
}

func (b *builder) block(length uint32, x, y, w, h uint16) *builder {
	return b.put(length).put([]uint16{x, y, w, h})
}

func TestParseTIMInvalidMagic(t *testing.T) {
	tables := []struct {
		name string
		b    []byte
	}{
		{"zero", []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{"eleven", []byte{0x11, 0x00, 0x00, 0x00}},
		{"one byte", []byte{0xff}},
		{"little endian word", []byte{0x00, 0x00, 0x00, 0x10}},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			_, err := ParseTIM(table.b)
			assert.Equal(t, ErrInvalidMagic, errors.Cause(err))
		})
	}
}

func TestParseTIMEmpty(t *testing.T) {
	_, err := ParseTIM(nil)
	assert.Equal(t, ErrOutOfBounds, errors.Cause(err))
}

func TestParseTIMHeader(t *testing.T) {
	b := new(builder)
	b.put([]uint8{0x10, 0x02}).put(uint16(0xbeef))
	b.put(uint32(0xabc00000 | uint32(CLUT8)))
	b.block(12+2, 1, 2, 1, 1).put(uint16(0x0201))

	m, err := ParseTIM(b.Bytes())
	require.NoError(t, err)

	assert.Equal(t, FormatInfo{ID: 0x10, Version: 0x02, Reserved: 0xbeef}, m.Header)
	assert.Equal(t, Flags{PixelMode: CLUT8, CLUT: false, Reserved: 0x0abc0000}, m.Flags)
	assert.Nil(t, m.CLUT)
	assert.Nil(t, m.Palettes())
	assert.Equal(t, uint16(1), m.Pixels.X)
	assert.Equal(t, uint16(2), m.Pixels.Y)
	assert.Equal(t, []uint8{0x01, 0x02}, m.Pixels.Indices)
}

func TestParseTIMCLUT4(t *testing.T) {
	payload := []byte{0x21, 0x43, 0x65, 0x87, 0xf0}

	b := new(builder)
	b.header(uint32(CLUT4))
	b.block(uint32(12+len(payload)), 0, 0, 1, 2).put(payload)

	m, err := ParseTIM(b.Bytes())
	require.NoError(t, err)

	assert.Nil(t, m.CLUT)
	assert.Equal(t, CLUT4, m.Pixels.Mode)
	assert.Equal(t, 2*len(payload), m.Pixels.Len())
	assert.Equal(t, []uint8{1, 2, 3, 4, 5, 6, 7, 8, 0, 15}, m.Pixels.Indices)
	assert.Nil(t, m.Pixels.Direct)
	assert.Nil(t, m.Pixels.Colours)
}

func TestParseTIMCLUT8(t *testing.T) {
	// Three half-words, not a whole number of words
	payload := []uint16{0x0201, 0x0403, 0xff00}

	b := new(builder)
	b.header(uint32(CLUT8))
	b.block(uint32(12+2*len(payload)), 0, 0, 3, 1).put(payload)

	m, err := ParseTIM(b.Bytes())
	require.NoError(t, err)

	assert.Equal(t, 6, m.Pixels.Len())
	assert.Equal(t, []uint8{1, 2, 3, 4, 0, 255}, m.Pixels.Indices)
}

func TestParseTIMDirect15(t *testing.T) {
	b := new(builder)
	b.header(uint32(Direct15))
	b.block(12+8, 0, 0, 2, 1).put([]uint32{0xffff83e1, 0x00007c00})

	m, err := ParseTIM(b.Bytes())
	require.NoError(t, err)

	require.Equal(t, 2, m.Pixels.Len())
	assert.Equal(t, []ColourWithAlpha{
		{Colour{R: 1, G: 31, B: 0}, 1},
		{Colour{R: 0, G: 0, B: 31}, 0},
	}, m.Pixels.Direct)
}

func TestParseTIMDirect24(t *testing.T) {
	b := new(builder)
	b.header(uint32(Direct24))
	b.block(12+6, 0, 0, 3, 1).put([]uint16{0x1234, 0x5678, 0x9abc})

	m, err := ParseTIM(b.Bytes())
	require.NoError(t, err)

	assert.Equal(t, 2, m.Pixels.Len())
	assert.Equal(t, []Colour{
		{R: 0x34, G: 0x12, B: 0x78},
		{R: 0x56, G: 0xbc, B: 0x9a},
	}, m.Pixels.Colours)
}

func TestParseTIMDirect24Count(t *testing.T) {
	units := 5

	b := new(builder)
	b.header(uint32(Direct24))
	b.block(uint32(12+6*units), 0, 0, uint16(3*units), 1).put(make([]byte, 6*units))

	m, err := ParseTIM(b.Bytes())
	require.NoError(t, err)

	assert.Equal(t, 2*(6*units)/6, m.Pixels.Len())
}

func TestParseTIMWithCLUT(t *testing.T) {
	b := new(builder)
	b.header(uint32(CLUT4) | 1<<3)
	b.block(12+6, 0, 480, 3, 1).put([]uint16{0x7fff, 0x8000, 0x0000})
	b.block(12+2, 0, 0, 1, 1).put([]byte{0x10, 0x22})

	m, err := ParseTIM(b.Bytes())
	require.NoError(t, err)

	require.True(t, m.Flags.CLUT)
	require.NotNil(t, m.CLUT)
	assert.Equal(t, uint32(18), m.CLUT.BlockLength)
	assert.Equal(t, uint16(480), m.CLUT.Y)
	assert.Equal(t, uint16(3), m.CLUT.Width)
	assert.Equal(t, []ColourWithAlpha{
		{Colour{31, 31, 31}, 0},
		{Colour{0, 0, 0}, 1},
		{Colour{0, 0, 0}, 0},
	}, m.CLUT.Entries)
	assert.Len(t, m.Palettes(), 1)
	assert.Equal(t, []uint8{0, 1, 2, 2}, m.Pixels.Indices)
}

func TestParseTIMMisalignedCLUT(t *testing.T) {
	// A CLUT block claiming 3 bytes of entries still reads two whole
	// entries, so the pixel block is read from one byte further on
	b := new(builder)
	b.header(uint32(CLUT4) | 1<<3)
	b.block(12+3, 0, 0, 2, 1).put([]uint16{0x001f, 0x03e0})
	b.block(12+2, 0, 0, 1, 1).put([]byte{0x21, 0x43})

	m, err := ParseTIM(b.Bytes())
	require.NoError(t, err)

	assert.Len(t, m.CLUT.Entries, 2)
	assert.Equal(t, Colour{R: 0, G: 31, B: 0}, m.CLUT.Entries[1].Colour)
	assert.Equal(t, uint32(14), m.Pixels.BlockLength)
	assert.Equal(t, []uint8{1, 2, 3, 4}, m.Pixels.Indices)
}

func TestParseTIMMisalignedOverrun(t *testing.T) {
	// The final word read runs off the end of the buffer
	b := new(builder)
	b.header(uint32(Direct15))
	b.block(12+6, 0, 0, 3, 1).put([]uint16{0x0001, 0x0002, 0x0003})

	_, err := ParseTIM(b.Bytes())
	assert.Equal(t, ErrOutOfBounds, errors.Cause(err))
}

func TestParseTIMShortBlock(t *testing.T) {
	b := new(builder)
	b.header(uint32(CLUT4) | 1<<3)
	b.block(0, 0, 0, 0, 0)
	b.block(4, 0, 0, 0, 0)

	m, err := ParseTIM(b.Bytes())
	require.NoError(t, err)

	assert.Empty(t, m.CLUT.Entries)
	assert.Equal(t, 0, m.Pixels.Len())
}

func TestParseTIMTruncated(t *testing.T) {
	b := new(builder)
	b.header(uint32(CLUT8))
	b.block(12+64, 0, 0, 32, 1).put(make([]byte, 10))

	_, err := ParseTIM(b.Bytes())
	assert.Equal(t, ErrOutOfBounds, errors.Cause(err))

	_, err = ParseTIM(b.Bytes()[:10])
	assert.Equal(t, ErrOutOfBounds, errors.Cause(err))
}

func TestParseTIMOversizedBlock(t *testing.T) {
	tables := []struct {
		name   string
		flags  uint32
		length uint32
	}{
		{"pixels", uint32(CLUT4), 0xfffffff0},
		{"pixels sign bit", uint32(CLUT8), 0x80000010},
		{"clut", uint32(CLUT4) | 1<<3, 0xfffffff0},
		{"clut sign bit", uint32(CLUT8) | 1<<3, 0x80000010},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			b := new(builder)
			b.header(table.flags)
			b.block(table.length, 0, 0, 4, 1).put(make([]byte, 64))

			c := newCursor(b.Bytes())
			_, err := parseTIM(c)
			assert.Equal(t, ErrOutOfBounds, errors.Cause(err))
			// Nothing past the first sub-header is consumed
			assert.Equal(t, 8+blockHeaderSize, c.position())
		})
	}
}

func TestParseTIMMixed(t *testing.T) {
	tables := []struct {
		name  string
		after []byte
	}{
		{"nothing", nil},
		{"garbage", []byte{0xde, 0xad, 0xbe, 0xef, 0x01}},
		{"valid block", new(builder).block(12+2, 0, 0, 1, 1).put(uint16(0)).Bytes()},
	}

	for _, flags := range []uint32{uint32(Mixed), uint32(Mixed) | 1<<3} {
		for _, table := range tables {
			t.Run(table.name, func(t *testing.T) {
				b := new(builder)
				b.header(flags).put(table.after)

				_, err := ParseTIM(b.Bytes())
				assert.Equal(t, ErrUnsupportedMode, errors.Cause(err))
			})
		}
	}
}

func TestParseTIMUnknownMode(t *testing.T) {
	for _, mode := range []uint32{5, 6, 7} {
		b := new(builder)
		b.header(mode)
		b.block(12+2, 0, 0, 1, 1).put(uint16(0))

		_, err := ParseTIM(b.Bytes())
		assert.Equal(t, ErrUnknownPixelMode, errors.Cause(err))
	}
}

func TestExtractBits(t *testing.T) {
	assert.Equal(t, uint32(0x1f), ExtractBits(0xffffffff, 0, 5))
	assert.Equal(t, uint32(0x1), ExtractBits(0x8000, 15, 1))
	assert.Equal(t, uint32(0x12), ExtractBits(0x1234, 8, 8))
	assert.Equal(t, uint32(0xdeadbeef), ExtractBits(0xdeadbeef, 0, 32))
	assert.Equal(t, uint32(0x0deadbee), ExtractBits(0xdeadbeef, 4, 28))
}

func TestExtractBitsReconstruct(t *testing.T) {
	type field struct {
		start, n uint
	}

	layouts := [][]field{
		{{0, 32}},
		{{0, 3}, {3, 1}, {4, 28}},
		{{0, 5}, {5, 5}, {10, 5}, {15, 1}, {16, 16}},
		{{0, 8}, {8, 8}, {16, 8}, {24, 8}},
		{{0, 4}, {4, 4}, {8, 24}},
	}

	r := rand.New(rand.NewSource(1))

	// Random partitions of all 32 bits
	for i := 0; i < 20; i++ {
		var layout []field
		for start := uint(0); start < 32; {
			n := uint(r.Intn(int(32-start))) + 1
			layout = append(layout, field{start, n})
			start += n
		}
		layouts = append(layouts, layout)
	}

	for _, layout := range layouts {
		for i := 0; i < 100; i++ {
			v := r.Uint32()
			var out uint32
			for _, f := range layout {
				out |= ExtractBits(v, f.start, f.n) << f.start
			}
			assert.Equal(t, v, out)
		}
	}
}

func TestParseDP(t *testing.T) {
	b := new(builder)
	pixels := make([]byte, 0xa000)
	for i := range pixels {
		pixels[i] = byte(i)
	}
	b.put(pixels)
	for p := 0; p < 4; p++ {
		entries := make([]uint16, 0x100)
		for i := range entries {
			entries[i] = uint16(p)
		}
		b.put(entries)
	}
	require.Equal(t, 0xa000+4*0x200, b.Len())

	d, err := ParseDP(b.Bytes())
	require.NoError(t, err)

	require.Len(t, d.Palettes(), 4)
	for i, p := range d.Palettes() {
		assert.Equal(t, uint32(0x200), p.BlockLength)
		assert.Equal(t, uint16(0x1e0), p.Y)
		assert.Equal(t, uint16(0x100), p.Width)
		assert.Equal(t, uint16(1), p.Height)
		assert.Len(t, p.Entries, 0x100)
		assert.Equal(t, uint8(i), p.Entries[0].R)
	}

	assert.Equal(t, CLUT4, d.Pixels.Mode)
	assert.Equal(t, 2*0xa000, d.Pixels.Len())
	assert.Equal(t, uint16(256), d.Pixels.Width)
	assert.Equal(t, uint16(320), d.Pixels.Height)
	assert.Equal(t, []uint8{0, 0, 1, 0, 2, 0}, d.Pixels.Indices[:6])
}

func TestParseDPTruncated(t *testing.T) {
	_, err := ParseDP(make([]byte, 0xa000+3*0x200))
	assert.Equal(t, ErrOutOfBounds, errors.Cause(err))

	_, err = ParseDP(make([]byte, 0x100))
	assert.Equal(t, ErrOutOfBounds, errors.Cause(err))
}

func TestParsers(t *testing.T) {
	b := new(builder)
	b.header(uint32(CLUT4))
	b.block(12+1, 0, 0, 1, 1).put(uint8(0x10))

	tables := []struct {
		parser Parser
		name   string
		b      []byte
		pixels int
	}{
		{TIMParser{}, "TIM", b.Bytes(), 2},
		{DPParser{}, "DP", make([]byte, 0xa000+4*0x200), 0x14000},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			assert.Equal(t, table.name, table.parser.Name())
			m, err := table.parser.Parse(table.b)
			require.NoError(t, err)
			assert.Equal(t, table.pixels, m.PixelData().Len())
		})
	}

	_, err := TIMParser{}.Parse([]byte{0})
	assert.Equal(t, ErrInvalidMagic, errors.Cause(err))
}
