package maps

import (
	"image"
	"image/color"
	"testing"
)

func solid(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestBlendInterpolatesEveryChannel(t *testing.T) {
	cases := []struct {
		name    string
		a, b    color.NRGBA
		opacity float64
		want    color.NRGBA
	}{
		{"half", color.NRGBA{0, 100, 200, 255}, color.NRGBA{200, 100, 0, 255}, 0.5, color.NRGBA{100, 100, 100, 255}},
		{"full second", color.NRGBA{10, 20, 30, 255}, color.NRGBA{90, 80, 70, 255}, 1.0, color.NRGBA{90, 80, 70, 255}},
		{"light", color.NRGBA{0, 0, 0, 255}, color.NRGBA{255, 255, 255, 255}, 0.1, color.NRGBA{26, 26, 26, 255}},
		{"alpha blends too", color.NRGBA{255, 0, 0, 255}, color.NRGBA{255, 0, 0, 55}, 0.5, color.NRGBA{255, 0, 0, 155}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Blend(solid(c.a), solid(c.b), c.opacity).NRGBAAt(1, 1)
			if got != c.want {
				t.Fatalf("Blend(%v, %v, %v) = %v, want %v", c.a, c.b, c.opacity, got, c.want)
			}
		})
	}
}

func TestToNRGBAMovesOrigin(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 9, 8))
	src.SetNRGBA(5, 5, color.NRGBA{1, 2, 3, 255})

	dst := ToNRGBA(src)
	if dst.Bounds().Min != (image.Point{}) {
		t.Fatalf("expected origin at 0,0, got %v", dst.Bounds())
	}
	if got := dst.NRGBAAt(0, 0); got != (color.NRGBA{1, 2, 3, 255}) {
		t.Fatalf("pixel not copied: %v", got)
	}
}

func TestMixClamps(t *testing.T) {
	if got := mix(250, 255, 1.0); got != 255 {
		t.Fatalf("mix upper bound = %d", got)
	}
	if got := mix(3, 0, 1.0); got != 0 {
		t.Fatalf("mix lower bound = %d", got)
	}
}
