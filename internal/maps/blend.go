package maps

import (
	"image"
	"image/draw"
	"math"

	"github.com/nfnt/resize"
)

// ToNRGBA copies img into a fresh non-premultiplied RGBA image anchored at the origin.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Blend linearly interpolates every channel, alpha included:
// out = a*(1-opacity) + b*opacity. The result has the size of a; b is
// resized to match when the sizes differ.
func Blend(a, b image.Image, opacity float64) *image.NRGBA {
	base := ToNRGBA(a)
	size := base.Bounds().Size()
	if b.Bounds().Size() != size {
		b = resize.Resize(uint(size.X), uint(size.Y), b, resize.Bilinear)
	}
	over := ToNRGBA(b)

	out := image.NewNRGBA(base.Bounds())
	for i := range out.Pix {
		out.Pix[i] = mix(base.Pix[i], over.Pix[i], opacity)
	}
	return out
}

func mix(x, y uint8, opacity float64) uint8 {
	v := math.Round(float64(x) + opacity*(float64(y)-float64(x)))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
