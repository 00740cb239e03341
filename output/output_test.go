package output

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result", "Carte_2014.png")
	require.NoError(t, SavePNG(filled(12, 8, color.RGBA{10, 20, 30, 255}), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(12, 8), img.Bounds().Size())
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "chart.png")
	require.NoError(t, WriteFile([]byte("abc"), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestCreateTimelapse(t *testing.T) {
	frames := []Frame{
		{Label: "2014", Image: filled(64, 48, color.RGBA{200, 0, 0, 255})},
		{Label: "2015", Image: filled(32, 24, color.RGBA{0, 200, 0, 255})},
		{Image: filled(64, 48, color.RGBA{0, 0, 200, 255})},
	}
	out, err := CreateTimelapse(frames, filepath.Join(t.TempDir(), "timelapse"), 0)
	require.NoError(t, err)
	assert.Equal(t, ".avi", filepath.Ext(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "AVI ", string(data[8:12]))
}

func TestCreateTimelapseWithoutFrames(t *testing.T) {
	_, err := CreateTimelapse(nil, filepath.Join(t.TempDir(), "empty.avi"), 2)
	assert.Error(t, err)
}

func TestStampKeepsSize(t *testing.T) {
	img := stamp(filled(50, 40, color.RGBA{255, 255, 255, 255}), "2023")
	assert.Equal(t, image.Pt(50, 40), img.Bounds().Size())
}
