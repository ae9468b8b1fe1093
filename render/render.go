/*
Package render draws decoded TIM and DP images onto raster surfaces.

Each sample is drawn as one pixel using the colour conversion rules in the
colour package, so semi-transparent and transparent CLUT entries keep their
alpha on the surface. Pixels with no sample, or whose index has no CLUT
entry, are left opaque black.
*/
package render

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/bodgit/psxtim/tim"
)

var (
	// ErrBadPalette is returned when the requested palette does not exist
	ErrBadPalette = errors.New("render: invalid palette")
	// ErrSurfaceTooSmall is returned when the destination can't hold the image
	ErrSurfaceTooSmall = errors.New("render: surface too small")
	// ErrUnknownImage is returned by New for unrecognised image types
	ErrUnknownImage = errors.New("render: unknown image type")
)

// Renderer draws one decoded image. Bounds is the size of surface required,
// always anchored at (0, 0).
type Renderer interface {
	Bounds() image.Rectangle
	Render(dst draw.Image, palette int) error
}

// New returns the Renderer for m
func New(m tim.Image) (Renderer, error) {
	switch m := m.(type) {
	case *tim.TIM:
		return NewTIM(m), nil
	case *tim.DP:
		return NewDP(m), nil
	default:
		return nil, ErrUnknownImage
	}
}

// Image renders r onto a new surface using the given palette
func Image(r Renderer, palette int) (*image.NRGBA, error) {
	dst := image.NewNRGBA(r.Bounds())
	if err := r.Render(dst, palette); err != nil {
		return nil, err
	}
	return dst, nil
}

// Check dst is big enough, and clear the area that will be drawn
func prepare(dst draw.Image, b image.Rectangle) (image.Rectangle, error) {
	r := b.Add(dst.Bounds().Min)
	if !r.In(dst.Bounds()) {
		return r, ErrSurfaceTooSmall
	}
	draw.Draw(dst, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
	return r, nil
}
