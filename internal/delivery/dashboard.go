package delivery

import (
	"fmt"
	"path/filepath"

	"github.com/nakambe-watch/nakambe-dashboard/internal/basin"
	"github.com/nakambe-watch/nakambe-dashboard/internal/indices"
	"github.com/nakambe-watch/nakambe-dashboard/internal/logging"
	"github.com/nakambe-watch/nakambe-dashboard/internal/maps"
	"github.com/nakambe-watch/nakambe-dashboard/internal/properties"
)

type Options struct {
	ImageDir       string
	ImageExt       string
	Years          []string
	IndexTablePath string
	BasinPath      string
	ResultPath     string
}

func OptionsFromEnv() Options {
	return Options{
		ImageDir:       properties.ImageDir(),
		ImageExt:       properties.ImageExt(),
		Years:          properties.Years(),
		IndexTablePath: properties.IndexTablePath(),
		BasinPath:      properties.BasinPath(),
		ResultPath:     properties.ResultPath(),
	}
}

// Dashboard bundles the read-only state every surface works from.
type Dashboard struct {
	Viewer     *maps.Viewer
	Table      *indices.Table
	Basin      *basin.Summary
	ResultPath string
}

// NewDashboard loads the index table and basin outline and builds the viewer
// over the table's years. Data-quality anomalies are logged, not returned.
func NewDashboard(opts Options) (*Dashboard, error) {
	table, err := indices.Load(opts.IndexTablePath)
	if err != nil {
		return nil, err
	}
	table, err = table.Restrict(opts.Years)
	if err != nil {
		return nil, fmt.Errorf("invalid year selection: %w", err)
	}
	for _, a := range table.Anomalies() {
		logging.Warnf("index table anomaly: %s", a)
	}

	summary, err := basin.Load(opts.BasinPath)
	if err != nil {
		return nil, err
	}

	ext := opts.ImageExt
	if ext == "" {
		ext = "jpg"
	}
	resultPath := opts.ResultPath
	if resultPath == "" {
		resultPath = filepath.Join(".", "data", "result")
	}

	logging.Debugf("dashboard over %d years, maps in %s (*.%s)", table.Len(), opts.ImageDir, ext)
	return &Dashboard{
		Viewer:     maps.NewViewer(opts.ImageDir, ext, table.Years()),
		Table:      table,
		Basin:      summary,
		ResultPath: resultPath,
	}, nil
}

func (d *Dashboard) Years() []string {
	return d.Viewer.Years()
}
