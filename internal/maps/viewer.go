package maps

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nakambe-watch/nakambe-dashboard/internal/logging"
)

const (
	MinOpacity     = 0.1
	MaxOpacity     = 1.0
	DefaultOpacity = 0.5

	DownloadMIMEType = "image/png"
)

// MapImage is a decoded map for one year.
type MapImage struct {
	Year   string
	Path   string
	Format string
	Image  image.Image
}

func (m *MapImage) Width() int  { return m.Image.Bounds().Dx() }
func (m *MapImage) Height() int { return m.Image.Bounds().Dy() }

// Download is a map re-encoded as PNG, ready to be handed to a user.
type Download struct {
	Year     string
	FileName string
	MIMEType string
	Data     []byte
	Width    int
	Height   int
}

// CompareResult is either a blended image or the list of years that could not be loaded.
type CompareResult struct {
	Year1    string
	Year2    string
	Opacity  float64
	Image    *image.NRGBA
	Missing  []string
	Warnings []string
	Resized  bool
}

// Degraded reports whether the comparison produced no image.
func (r CompareResult) Degraded() bool {
	return r.Image == nil
}

// Viewer resolves catalog years to map files under a single directory.
// It holds no decoded images; every call reads from disk.
type Viewer struct {
	dir   string
	ext   string
	years []string
	known map[string]struct{}
}

func NewViewer(dir, ext string, years []string) *Viewer {
	known := make(map[string]struct{}, len(years))
	for _, y := range years {
		known[y] = struct{}{}
	}
	return &Viewer{
		dir:   dir,
		ext:   ext,
		years: append([]string(nil), years...),
		known: known,
	}
}

// Years returns the catalog in declared order.
func (v *Viewer) Years() []string {
	return append([]string(nil), v.years...)
}

func (v *Viewer) Dir() string { return v.dir }
func (v *Viewer) Ext() string { return v.ext }

func (v *Viewer) HasYear(year string) bool {
	_, ok := v.known[year]
	return ok
}

func (v *Viewer) FileName(year string) string {
	return fmt.Sprintf("Carte_%s.%s", year, v.ext)
}

func (v *Viewer) Path(year string) string {
	return filepath.Join(v.dir, v.FileName(year))
}

// DownloadFileName is the name offered to users regardless of the on-disk format.
func DownloadFileName(year string) string {
	return fmt.Sprintf("Carte_%s.png", year)
}

// Load decodes the map for year. Missing and undecodable files come back as
// ErrAssetMissing and ErrMalformedImage; see IsUnavailable.
func (v *Viewer) Load(year string) (*MapImage, error) {
	if !v.HasYear(year) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownYear, year)
	}
	path := v.Path(year)

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (year %s)", ErrAssetMissing, path, year)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedImage, path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedImage, path, err)
	}

	return &MapImage{Year: year, Path: path, Format: format, Image: img}, nil
}

// View loads the map for year and re-encodes it as PNG in memory.
func (v *Viewer) View(year string) (*Download, error) {
	m, err := v.Load(year)
	if err != nil {
		return nil, err
	}

	data, err := EncodePNG(m.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to encode map %s: %w", year, err)
	}

	return &Download{
		Year:     year,
		FileName: DownloadFileName(year),
		MIMEType: DownloadMIMEType,
		Data:     data,
		Width:    m.Width(),
		Height:   m.Height(),
	}, nil
}

// Compare blends the map of year2 over the map of year1. When either map is
// unavailable the result is degraded and the error is nil.
func (v *Viewer) Compare(year1, year2 string, opacity float64) (CompareResult, error) {
	result := CompareResult{Year1: year1, Year2: year2, Opacity: opacity}

	if !(opacity >= MinOpacity && opacity <= MaxOpacity) {
		return result, fmt.Errorf("%w: %v not in [%.1f, %.1f]", ErrOpacityOutOfRange, opacity, MinOpacity, MaxOpacity)
	}
	for _, y := range []string{year1, year2} {
		if !v.HasYear(y) {
			return result, fmt.Errorf("%w: %q", ErrUnknownYear, y)
		}
	}

	first, err1 := v.Load(year1)
	second, err2 := v.Load(year2)
	for _, e := range []struct {
		year string
		err  error
	}{{year1, err1}, {year2, err2}} {
		if e.err == nil {
			continue
		}
		if !IsUnavailable(e.err) {
			return result, e.err
		}
		logging.Warnf("comparison %s vs %s: %v", year1, year2, e.err)
		if !contains(result.Missing, e.year) {
			result.Missing = append(result.Missing, e.year)
		}
		result.Warnings = append(result.Warnings, e.err.Error())
	}
	if len(result.Missing) > 0 {
		return result, nil
	}

	if first.Image.Bounds().Size() != second.Image.Bounds().Size() {
		logging.Warnf("map %s is %dx%d but map %s is %dx%d, resizing %s",
			year1, first.Width(), first.Height(), year2, second.Width(), second.Height(), year2)
		result.Resized = true
	}

	result.Image = Blend(first.Image, second.Image, opacity)
	return result, nil
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Channels is 1 for gray images, 3 for opaque colour images and 4 when alpha matters.
func Channels(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return 3
	}
	return 4
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
