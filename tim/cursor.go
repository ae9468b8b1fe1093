package tim

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// cursor reads little-endian integers from a buffer, strictly forwards.
type cursor struct {
	b   []byte
	pos int
}

func newCursor(b []byte) *cursor {
	return &cursor{b: b}
}

func (c *cursor) take(n int) ([]byte, error) {
	if c.pos+n > len(c.b) {
		return nil, errors.Wrapf(ErrOutOfBounds, "reading %d bytes at offset %d of %d", n, c.pos, len(c.b))
	}
	b := c.b[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *cursor) readByte() (uint8, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *cursor) readHalf() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *cursor) readWord() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *cursor) position() int {
	return c.pos
}
