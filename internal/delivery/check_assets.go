package delivery

import (
	"errors"
	"io"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/schollz/progressbar/v3"

	"github.com/nakambe-watch/nakambe-dashboard/internal/maps"
)

const (
	AssetPresent   = "present"
	AssetMissing   = "missing"
	AssetMalformed = "malformed"
)

type AssetStatus struct {
	Year   string `json:"year"`
	State  string `json:"state"`
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
	Error  string `json:"error,omitempty"`
}

type AssetReport struct {
	Statuses []AssetStatus `json:"statuses"`
}

func (r AssetReport) Count(state string) int {
	n := 0
	for _, s := range r.Statuses {
		if s.State == state {
			n++
		}
	}
	return n
}

// Complete reports whether every catalog year has a readable map.
func (r AssetReport) Complete() bool {
	return r.Count(AssetPresent) == len(r.Statuses)
}

// CheckAssets decodes every catalog map concurrently. Progress goes to w when
// it is not nil. Statuses keep catalog order.
func (d *Dashboard) CheckAssets(workers int, w io.Writer) AssetReport {
	years := d.Years()
	if workers <= 0 {
		workers = 4
	}
	if w == nil {
		w = io.Discard
	}

	var (
		mu          sync.Mutex
		statuses    = make([]AssetStatus, len(years))
		progressBar = progressbar.NewOptions(len(years),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Checking maps"),
		)
	)

	wp := workerpool.New(workers)
	for i, year := range years {
		i, year := i, year
		wp.Submit(func() {
			st := d.checkYear(year)

			mu.Lock()
			statuses[i] = st
			progressBar.Add(1)
			mu.Unlock()
		})
	}
	wp.StopWait()
	progressBar.Finish()

	return AssetReport{Statuses: statuses}
}

func (d *Dashboard) checkYear(year string) AssetStatus {
	st := AssetStatus{Year: year, Path: d.Viewer.Path(year)}
	m, err := d.Viewer.Load(year)
	switch {
	case err == nil:
		st.State = AssetPresent
		st.Format = m.Format
		st.Width = m.Width()
		st.Height = m.Height()
	case errors.Is(err, maps.ErrAssetMissing):
		st.State = AssetMissing
		st.Error = err.Error()
	default:
		st.State = AssetMalformed
		st.Error = err.Error()
	}
	return st
}
