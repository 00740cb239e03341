package delivery

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

func writeMap(t *testing.T, dir, year string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 120, 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "Carte_"+year+".jpg"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

// newDashboard has maps for 2014, 2021 and 2023; 2022 is corrupt.
func newDashboard(t *testing.T) *Dashboard {
	t.Helper()
	root := t.TempDir()
	images := filepath.Join(root, "images")
	require.NoError(t, os.MkdirAll(images, 0o755))
	writeMap(t, images, "2014", 48, 32)
	writeMap(t, images, "2021", 48, 32)
	writeMap(t, images, "2023", 24, 16)
	require.NoError(t, os.WriteFile(filepath.Join(images, "Carte_2022.jpg"), []byte("garbage"), 0o644))

	d, err := NewDashboard(Options{
		ImageDir:   images,
		ImageExt:   "jpg",
		Years:      []string{"2014", "2021", "2022", "2023"},
		ResultPath: filepath.Join(root, "data", "result"),
	})
	require.NoError(t, err)
	return d
}

func TestNewDashboard(t *testing.T) {
	d := newDashboard(t)
	assert.Equal(t, []string{"2014", "2021", "2022", "2023"}, d.Years())
	assert.Equal(t, "Nakambé", d.Basin.Name)
	assert.Equal(t, 4, d.Table.Len())

	_, err := NewDashboard(Options{ImageDir: t.TempDir(), Years: []string{"1990"}})
	assert.Error(t, err)

	_, err = NewDashboard(Options{ImageDir: t.TempDir(), IndexTablePath: filepath.Join(t.TempDir(), "none.csv")})
	assert.Error(t, err)
}

func TestNewDashboardFullCatalog(t *testing.T) {
	d, err := NewDashboard(Options{ImageDir: t.TempDir()})
	require.NoError(t, err)
	assert.Len(t, d.Years(), 10)
	assert.Equal(t, "jpg", d.Viewer.Ext())
}

func TestExportMap(t *testing.T) {
	d := newDashboard(t)

	path, err := d.ExportMap("2021")
	require.NoError(t, err)
	assert.Equal(t, "Carte_2021.png", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(48, 32), img.Bounds().Size())

	_, err = d.ExportMap("2015")
	assert.Error(t, err)
}

func TestExportComparison(t *testing.T) {
	d := newDashboard(t)

	path, res, err := d.ExportComparison("2014", "2023", 0.5)
	require.NoError(t, err)
	assert.True(t, res.Resized)
	assert.Equal(t, "Comparaison_2014_2023.png", filepath.Base(path))
	assert.FileExists(t, path)

	path, res, err = d.ExportComparison("2014", "2022", 0.5)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.True(t, res.Degraded())
	assert.Equal(t, []string{"2022"}, res.Missing)

	_, _, err = d.ExportComparison("2014", "2021", 2)
	assert.Error(t, err)
}

func TestExportChart(t *testing.T) {
	d := newDashboard(t)

	path, err := d.ExportChart()
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
	assert.Len(t, d.Panels(), 2)
}

func TestExportTimelapseSkipsUnavailable(t *testing.T) {
	d := newDashboard(t)

	path, skipped, err := d.ExportTimelapse(2)
	require.NoError(t, err)
	assert.Equal(t, []string{"2022"}, skipped)
	assert.Equal(t, "Timelapse_2014_2023.avi", filepath.Base(path))
	assert.FileExists(t, path)
}

func TestWriteTimelapseWithoutMaps(t *testing.T) {
	d, err := NewDashboard(Options{ImageDir: t.TempDir(), Years: []string{"2014"}})
	require.NoError(t, err)

	_, skipped, err := d.WriteTimelapse(filepath.Join(t.TempDir(), "t.avi"), 2)
	assert.Error(t, err)
	assert.Equal(t, []string{"2014"}, skipped)
}

func TestCheckAssets(t *testing.T) {
	d := newDashboard(t)

	var progress bytes.Buffer
	report := d.CheckAssets(2, &progress)

	require.Len(t, report.Statuses, 4)
	assert.Equal(t, "2014", report.Statuses[0].Year)
	assert.Equal(t, AssetPresent, report.Statuses[0].State)
	assert.Equal(t, 48, report.Statuses[0].Width)
	assert.Equal(t, "jpeg", report.Statuses[0].Format)
	assert.Equal(t, AssetMalformed, report.Statuses[2].State)
	assert.Equal(t, 3, report.Count(AssetPresent))
	assert.False(t, report.Complete())

	empty, err := NewDashboard(Options{ImageDir: t.TempDir(), Years: []string{"2016", "2017"}})
	require.NoError(t, err)
	report = empty.CheckAssets(0, nil)
	assert.Equal(t, 2, report.Count(AssetMissing))
}
