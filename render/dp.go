package render

import (
	"image"
	"image/draw"

	"github.com/bodgit/psxtim/tim"
)

const (
	// Samples in this range always use the last palette
	dpUpperStart   = 0x8000
	dpUpperEnd     = 0x10000
	dpUpperPalette = 3
)

// DPRenderer draws a DP image with a strip below it showing each palette,
// one row per palette.
type DPRenderer struct {
	m *tim.DP
}

// NewDP returns a DPRenderer for m
func NewDP(m *tim.DP) *DPRenderer {
	return &DPRenderer{m: m}
}

func (r *DPRenderer) stripHeight() int {
	h := 0
	for _, p := range r.m.CLUTs {
		h += int(p.Height)
	}
	return h
}

// Bounds returns the image size plus the palette strip
func (r *DPRenderer) Bounds() image.Rectangle {
	p := r.m.Pixels
	return image.Rect(0, 0, int(p.Width), int(p.Height)+r.stripHeight())
}

// Render draws the image onto dst using the given palette for everything
// except the samples from 0x8000 to 0x10000 which use palette 3.
func (r *DPRenderer) Render(dst draw.Image, palette int) error {
	if palette < 0 || palette >= len(r.m.CLUTs) {
		return ErrBadPalette
	}

	rect, err := prepare(dst, r.Bounds())
	if err != nil {
		return err
	}

	p := r.m.Pixels
	w, h := int(p.Width), int(p.Height)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := x + y*w
			if i >= len(p.Indices) {
				continue
			}

			clut := r.m.CLUTs[palette]
			if i >= dpUpperStart && i <= dpUpperEnd && dpUpperPalette < len(r.m.CLUTs) {
				clut = r.m.CLUTs[dpUpperPalette]
			}

			if e := int(p.Indices[i]); e < len(clut.Entries) {
				dst.Set(rect.Min.X+x, rect.Min.Y+y, clut.Entries[e])
			}
		}
	}

	row := h
	for _, clut := range r.m.CLUTs {
		cw := int(clut.Width)
		for y := 0; y < int(clut.Height); y++ {
			for x := 0; x < cw && x < w; x++ {
				if e := x + y*cw; e < len(clut.Entries) {
					dst.Set(rect.Min.X+x, rect.Min.Y+row+y, clut.Entries[e])
				}
			}
		}
		row += int(clut.Height)
	}

	return nil
}
