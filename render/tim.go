package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/bodgit/psxtim/tim"
)

// TIMRenderer draws a TIM image.
type TIMRenderer struct {
	m *tim.TIM
}

// NewTIM returns a TIMRenderer for m
func NewTIM(m *tim.TIM) *TIMRenderer {
	return &TIMRenderer{m: m}
}

// Bounds returns the image size in pixels. The pixel block width is
// counted in 16-bit units so it's scaled by how many samples fit in one.
func (r *TIMRenderer) Bounds() image.Rectangle {
	p := r.m.Pixels
	w := int(p.Width)
	switch p.Mode {
	case tim.CLUT4:
		w *= 4
	case tim.CLUT8:
		w *= 2
	case tim.Direct15:
		// One sample per 32-bit word
		w /= 2
	case tim.Direct24:
		w = w * 2 / 3
	}
	return image.Rect(0, 0, w, int(p.Height))
}

// Banks of CLUT entries are selected by palette, each bank being as many
// entries as an index can address
func (r *TIMRenderer) bank(palette int) (int, error) {
	if palette < 0 {
		return 0, ErrBadPalette
	}
	if palette == 0 || r.m.CLUT == nil {
		return 0, nil
	}

	n := 256
	if r.m.Pixels.Mode == tim.CLUT4 {
		n = 16
	}
	if palette*n >= len(r.m.CLUT.Entries) {
		return 0, ErrBadPalette
	}
	return palette * n, nil
}

func (r *TIMRenderer) sample(i, offset int) (color.Color, bool) {
	p := r.m.Pixels
	switch p.Mode {
	case tim.CLUT4, tim.CLUT8:
		if r.m.CLUT == nil || i >= len(p.Indices) {
			return nil, false
		}
		e := offset + int(p.Indices[i])
		if e >= len(r.m.CLUT.Entries) {
			return nil, false
		}
		return r.m.CLUT.Entries[e], true
	case tim.Direct15:
		if i >= len(p.Direct) {
			return nil, false
		}
		return p.Direct[i], true
	case tim.Direct24:
		if i >= len(p.Colours) {
			return nil, false
		}
		return p.Colours[i], true
	}
	return nil, false
}

// Render draws the image onto dst. For CLUT images palette selects which
// 16 or 256 entry bank of the CLUT to use.
func (r *TIMRenderer) Render(dst draw.Image, palette int) error {
	offset, err := r.bank(palette)
	if err != nil {
		return err
	}

	b := r.Bounds()
	rect, err := prepare(dst, b)
	if err != nil {
		return err
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			if c, ok := r.sample(x+y*b.Dx(), offset); ok {
				dst.Set(rect.Min.X+x, rect.Min.Y+y, c)
			}
		}
	}

	return nil
}
