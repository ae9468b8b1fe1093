package render

import (
	"image"
	"image/color"
	"io"
	"io/ioutil"

	"github.com/bodgit/psxtim/tim"
)

func init() {
	image.RegisterFormat("tim", "\x10\x00", Decode, DecodeConfig)
}

func parse(r io.Reader) (*tim.TIM, error) {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return tim.ParseTIM(b)
}

// Decode reads a TIM image from r and returns it as an image.Image using the
// first palette.
func Decode(r io.Reader) (image.Image, error) {
	m, err := parse(r)
	if err != nil {
		return nil, err
	}
	return Image(NewTIM(m), 0)
}

// DecodeConfig returns the color model and dimensions of a TIM image. The
// model matches the *image.NRGBA returned by Decode, even for CLUT images.
// The whole image is still read as the pixel block follows the CLUT.
func DecodeConfig(r io.Reader) (image.Config, error) {
	m, err := parse(r)
	if err != nil {
		return image.Config{}, err
	}

	b := NewTIM(m).Bounds()

	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      b.Dx(),
		Height:     b.Dy(),
	}, nil
}
