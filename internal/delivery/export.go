package delivery

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/nakambe-watch/nakambe-dashboard/internal/charts"
	"github.com/nakambe-watch/nakambe-dashboard/internal/logging"
	"github.com/nakambe-watch/nakambe-dashboard/internal/maps"
	"github.com/nakambe-watch/nakambe-dashboard/output"
)

// ExportMap writes the PNG download of year under the result folder.
func (d *Dashboard) ExportMap(year string) (string, error) {
	dl, err := d.Viewer.View(year)
	if err != nil {
		return "", err
	}
	path := filepath.Join(d.ResultPath, dl.FileName)
	if err := output.WriteFile(dl.Data, path); err != nil {
		return "", err
	}
	return path, nil
}

// ExportComparison writes the blend of year2 over year1. A degraded
// comparison writes nothing and returns an empty path with a nil error.
func (d *Dashboard) ExportComparison(year1, year2 string, opacity float64) (string, maps.CompareResult, error) {
	res, err := d.Viewer.Compare(year1, year2, opacity)
	if err != nil {
		return "", res, err
	}
	if res.Degraded() {
		return "", res, nil
	}
	path := filepath.Join(d.ResultPath, ComparisonFileName(year1, year2))
	if err := output.SavePNG(res.Image, path); err != nil {
		return "", res, err
	}
	return path, res, nil
}

func ComparisonFileName(year1, year2 string) string {
	return fmt.Sprintf("Comparaison_%s_%s.png", year1, year2)
}

// Panels is the index evolution view of the dashboard.
func (d *Dashboard) Panels() []charts.Panel {
	return charts.BuildPanels(d.Table)
}

func (d *Dashboard) ChartPNG() ([]byte, error) {
	defer logging.TimeTrack(time.Now(), "index chart")
	return charts.RenderPNG(d.Panels(), charts.DefaultPanelWidth, charts.DefaultPanelHeight)
}

func (d *Dashboard) ExportChart() (string, error) {
	data, err := d.ChartPNG()
	if err != nil {
		return "", err
	}
	path := filepath.Join(d.ResultPath, "Evolution_indices.png")
	if err := output.WriteFile(data, path); err != nil {
		return "", err
	}
	return path, nil
}

// TimelapseFrames loads every available map in catalog order. Unavailable
// years are skipped and returned separately.
func (d *Dashboard) TimelapseFrames() ([]output.Frame, []string) {
	var (
		frames  []output.Frame
		skipped []string
	)
	for _, year := range d.Years() {
		m, err := d.Viewer.Load(year)
		if err != nil {
			logging.Warnf("timelapse: skipping %s: %v", year, err)
			skipped = append(skipped, year)
			continue
		}
		frames = append(frames, output.Frame{Label: year, Image: m.Image})
	}
	return frames, skipped
}

// WriteTimelapse writes the catalog timelapse to path.
func (d *Dashboard) WriteTimelapse(path string, fps int32) (string, []string, error) {
	frames, skipped := d.TimelapseFrames()
	if len(frames) == 0 {
		return "", skipped, fmt.Errorf("%w: no map available for a timelapse", maps.ErrAssetMissing)
	}
	out, err := output.CreateTimelapse(frames, path, fps)
	return out, skipped, err
}

// ExportTimelapse writes the catalog timelapse under the result folder.
func (d *Dashboard) ExportTimelapse(fps int32) (string, []string, error) {
	years := d.Years()
	name := "Timelapse"
	if len(years) > 0 {
		name = fmt.Sprintf("Timelapse_%s_%s.avi", years[0], years[len(years)-1])
	}
	return d.WriteTimelapse(filepath.Join(d.ResultPath, name), fps)
}
