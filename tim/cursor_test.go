package tim

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor(t *testing.T) {
	c := newCursor([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08})
	assert.Equal(t, 0, c.position())

	b, err := c.readByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), b)
	assert.Equal(t, 1, c.position())

	h, err := c.readHalf()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0302), h)
	assert.Equal(t, 3, c.position())

	w, err := c.readWord()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x07060504), w)
	assert.Equal(t, 7, c.position())

	_, err = c.readHalf()
	assert.Equal(t, ErrOutOfBounds, errors.Cause(err))
	assert.Equal(t, 7, c.position())

	_, err = c.readWord()
	assert.Equal(t, ErrOutOfBounds, errors.Cause(err))

	b, err = c.readByte()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x08), b)

	_, err = c.readByte()
	assert.Equal(t, ErrOutOfBounds, errors.Cause(err))
	assert.Equal(t, 8, c.position())
}
