package render

import (
	"errors"
	"image"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// ErrFormat is returned by Write for unknown output formats
var ErrFormat = errors.New("render: unknown output format")

// Output formats understood by Write
const (
	PNG = "png"
	BMP = "bmp"
)

// Scale enlarges m by an integer factor without smoothing
func Scale(m image.Image, factor int) image.Image {
	if factor <= 1 {
		return m
	}
	b := m.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), m, b, draw.Src, nil)
	return dst
}

// Write encodes m to w in the given format
func Write(w io.Writer, m image.Image, format string) error {
	switch format {
	case PNG:
		return png.Encode(w, m)
	case BMP:
		return bmp.Encode(w, m)
	default:
		return ErrFormat
	}
}
