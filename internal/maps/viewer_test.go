package maps

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []string{"2014", "2015", "2016", "2017", "2018", "2019", "2020", "2021", "2022", "2023"}

func gradient(w, h int, tint uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 255 / w), G: uint8(y * 255 / h), B: tint, A: 255})
		}
	}
	return img
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeJPEG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 90}))
}

// pngFixture writes maps for 2014, 2015 and 2016 and leaves the other years absent.
func pngFixture(t *testing.T) *Viewer {
	t.Helper()
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "Carte_2014.png"), gradient(40, 30, 10))
	writePNG(t, filepath.Join(dir, "Carte_2015.png"), gradient(40, 30, 200))
	writePNG(t, filepath.Join(dir, "Carte_2016.png"), gradient(20, 15, 90))
	return NewViewer(dir, "png", catalog)
}

func TestLoadPresentAndMissing(t *testing.T) {
	v := pngFixture(t)

	for _, year := range catalog {
		m, err := v.Load(year)
		switch year {
		case "2014", "2015", "2016":
			require.NoError(t, err, year)
			assert.Equal(t, "png", m.Format)
			assert.Equal(t, year, m.Year)
		default:
			require.Error(t, err, year)
			assert.ErrorIs(t, err, ErrAssetMissing)
			assert.True(t, IsUnavailable(err))
			assert.Nil(t, m)
		}
	}
}

func TestLoadUnknownYear(t *testing.T) {
	v := pngFixture(t)

	_, err := v.Load("1999")
	assert.ErrorIs(t, err, ErrUnknownYear)
	assert.False(t, IsUnavailable(err))
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Carte_2014.jpg"), []byte("not a jpeg"), 0o644))
	v := NewViewer(dir, "jpg", catalog)

	_, err := v.Load("2014")
	assert.ErrorIs(t, err, ErrMalformedImage)
	assert.True(t, IsUnavailable(err))
}

func TestViewDownloadContract(t *testing.T) {
	dir := t.TempDir()
	writeJPEG(t, filepath.Join(dir, "Carte_2021.jpg"), gradient(64, 48, 50))
	v := NewViewer(dir, "jpg", []string{"2014", "2021", "2022", "2023"})

	d, err := v.View("2021")
	require.NoError(t, err)
	assert.Equal(t, "Carte_2021.png", d.FileName)
	assert.Equal(t, "image/png", d.MIMEType)

	decoded, format, err := image.Decode(bytes.NewReader(d.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 64, decoded.Bounds().Dx())
	assert.Equal(t, 48, decoded.Bounds().Dy())
	assert.Equal(t, 64, d.Width)
	assert.Equal(t, 48, d.Height)

	_, err = v.View("2022")
	assert.ErrorIs(t, err, ErrAssetMissing)
}

func TestEncodeDecodePreservesShape(t *testing.T) {
	v := pngFixture(t)
	m, err := v.Load("2014")
	require.NoError(t, err)

	data, err := EncodePNG(m.Image)
	require.NoError(t, err)
	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, m.Image.Bounds().Size(), decoded.Bounds().Size())
	assert.Equal(t, Channels(m.Image), Channels(decoded))

	blended := ToNRGBA(m.Image)
	assert.Equal(t, m.Image.Bounds().Size(), blended.Bounds().Size())
	assert.Len(t, blended.Pix, 4*blended.Bounds().Dx()*blended.Bounds().Dy())
}

func TestCompareSameYearIsIdentity(t *testing.T) {
	v := pngFixture(t)
	m, err := v.Load("2014")
	require.NoError(t, err)
	want := ToNRGBA(m.Image)

	for _, op := range []float64{0.1, 0.35, 0.5, 0.9, 1.0} {
		res, err := v.Compare("2014", "2014", op)
		require.NoError(t, err)
		require.False(t, res.Degraded())
		assert.Equal(t, want.Pix, res.Image.Pix, "opacity %v", op)
	}
}

func TestCompareOpacityExtremes(t *testing.T) {
	v := pngFixture(t)
	m1, err := v.Load("2014")
	require.NoError(t, err)
	m2, err := v.Load("2015")
	require.NoError(t, err)
	first, second := ToNRGBA(m1.Image), ToNRGBA(m2.Image)

	full, err := v.Compare("2014", "2015", 1.0)
	require.NoError(t, err)
	assert.Equal(t, second.Pix, full.Image.Pix)

	light, err := v.Compare("2014", "2015", 0.1)
	require.NoError(t, err)
	assert.Less(t, distance(light.Image, first), distance(light.Image, second))
}

func TestCompareMissingDegrades(t *testing.T) {
	v := pngFixture(t)

	res, err := v.Compare("2014", "2019", 0.5)
	require.NoError(t, err)
	assert.True(t, res.Degraded())
	assert.Nil(t, res.Image)
	assert.Equal(t, []string{"2019"}, res.Missing)
	assert.Len(t, res.Warnings, 1)

	res, err = v.Compare("2020", "2020", 0.5)
	require.NoError(t, err)
	assert.True(t, res.Degraded())
	assert.Equal(t, []string{"2020"}, res.Missing)
}

func TestCompareInputErrors(t *testing.T) {
	v := pngFixture(t)

	for _, op := range []float64{0, 0.05, 1.01, -1} {
		_, err := v.Compare("2014", "2015", op)
		assert.ErrorIs(t, err, ErrOpacityOutOfRange, "opacity %v", op)
	}

	_, err := v.Compare("2014", "1990", 0.5)
	assert.ErrorIs(t, err, ErrUnknownYear)
}

func TestCompareDifferentSizesResizesSecond(t *testing.T) {
	v := pngFixture(t)

	res, err := v.Compare("2014", "2016", 0.5)
	require.NoError(t, err)
	require.False(t, res.Degraded())
	assert.True(t, res.Resized)
	assert.Equal(t, image.Pt(40, 30), res.Image.Bounds().Size())

	res, err = v.Compare("2016", "2014", 0.5)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(20, 15), res.Image.Bounds().Size())
}

func TestViewerPaths(t *testing.T) {
	v := NewViewer("/data/images", "jpg", catalog)
	assert.Equal(t, "Carte_2018.jpg", v.FileName("2018"))
	assert.Equal(t, filepath.Join("/data/images", "Carte_2018.jpg"), v.Path("2018"))
	assert.Equal(t, "Carte_2018.png", DownloadFileName("2018"))
	assert.Equal(t, catalog, v.Years())
}

func distance(a, b *image.NRGBA) int {
	total := 0
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		total += d
	}
	return total
}
