package indices

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

//go:embed default_table.csv
var defaultTable []byte

var (
	ErrDuplicateYear = errors.New("duplicate year in index table")
	ErrEmptyYear     = errors.New("empty year in index table")
	ErrEmptyTable    = errors.New("index table has no rows")
)

// Row is one line of the index table artifact.
type Row struct {
	Year          string  `csv:"year"`
	NDVIMin       float64 `csv:"ndvi_min"`
	NDVIMax       float64 `csv:"ndvi_max"`
	NDVIThreshold float64 `csv:"ndvi_threshold"`
	NDWIMin       float64 `csv:"ndwi_min"`
	NDWIMax       float64 `csv:"ndwi_max"`
	NDWIThreshold float64 `csv:"ndwi_threshold"`
}

// IndexSeries holds the min, max and threshold of one index keyed by year.
type IndexSeries struct {
	Name      string
	Min       map[string]float64
	Max       map[string]float64
	Threshold map[string]float64
}

// Values returns the three series in the given year order.
func (s IndexSeries) Values(years []string) (min, max, threshold []float64) {
	min = make([]float64, len(years))
	max = make([]float64, len(years))
	threshold = make([]float64, len(years))
	for i, y := range years {
		min[i] = s.Min[y]
		max[i] = s.Max[y]
		threshold[i] = s.Threshold[y]
	}
	return min, max, threshold
}

// Table is the read-only NDVI/NDWI configuration, rows kept in file order.
type Table struct {
	rows []Row
}

// Default returns the table compiled into the binary.
func Default() (*Table, error) {
	return Parse(bytes.NewReader(defaultTable))
}

// Load reads the table at path, or the embedded default when path is empty.
func Load(path string) (*Table, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index table: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func Parse(r io.Reader) (*Table, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse index table: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	seen := make(map[string]struct{}, len(rows))
	for i := range rows {
		rows[i].Year = strings.TrimSpace(rows[i].Year)
		y := rows[i].Year
		if y == "" {
			return nil, fmt.Errorf("%w: row %d", ErrEmptyYear, i+1)
		}
		if _, ok := seen[y]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateYear, y)
		}
		seen[y] = struct{}{}
	}
	return &Table{rows: rows}, nil
}

// Years returns the years in declared order.
func (t *Table) Years() []string {
	years := make([]string, len(t.rows))
	for i, r := range t.rows {
		years[i] = r.Year
	}
	return years
}

func (t *Table) Len() int { return len(t.rows) }

func (t *Table) NDVI() IndexSeries {
	return t.series("NDVI", func(r Row) (float64, float64, float64) {
		return r.NDVIMin, r.NDVIMax, r.NDVIThreshold
	})
}

func (t *Table) NDWI() IndexSeries {
	return t.series("NDWI", func(r Row) (float64, float64, float64) {
		return r.NDWIMin, r.NDWIMax, r.NDWIThreshold
	})
}

// Series returns NDVI then NDWI.
func (t *Table) Series() []IndexSeries {
	return []IndexSeries{t.NDVI(), t.NDWI()}
}

func (t *Table) series(name string, pick func(Row) (float64, float64, float64)) IndexSeries {
	s := IndexSeries{
		Name:      name,
		Min:       make(map[string]float64, len(t.rows)),
		Max:       make(map[string]float64, len(t.rows)),
		Threshold: make(map[string]float64, len(t.rows)),
	}
	for _, r := range t.rows {
		s.Min[r.Year], s.Max[r.Year], s.Threshold[r.Year] = pick(r)
	}
	return s
}

// Restrict keeps only the given years, in the order they are given.
// A nil or empty list returns the table unchanged.
func (t *Table) Restrict(years []string) (*Table, error) {
	if len(years) == 0 {
		return t, nil
	}
	byYear := make(map[string]Row, len(t.rows))
	for _, r := range t.rows {
		byYear[r.Year] = r
	}

	rows := make([]Row, 0, len(years))
	seen := make(map[string]struct{}, len(years))
	for _, y := range years {
		r, ok := byYear[y]
		if !ok {
			return nil, fmt.Errorf("year %s is not in the index table", y)
		}
		if _, dup := seen[y]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateYear, y)
		}
		seen[y] = struct{}{}
		rows = append(rows, r)
	}
	return &Table{rows: rows}, nil
}

// Anomaly is a data-quality finding; it never stops the dashboard.
type Anomaly struct {
	Index  string  `json:"index"`
	Year   string  `json:"year"`
	Field  string  `json:"field"`
	Value  float64 `json:"value"`
	Reason string  `json:"reason"`
}

func (a Anomaly) String() string {
	return fmt.Sprintf("%s %s %s=%v: %s", a.Index, a.Year, a.Field, a.Value, a.Reason)
}

// Anomalies reports rows where min exceeds max, and negative thresholds in a
// series whose other thresholds are all positive.
func (t *Table) Anomalies() []Anomaly {
	var out []Anomaly
	for _, s := range t.Series() {
		for _, y := range t.Years() {
			if s.Min[y] > s.Max[y] {
				out = append(out, Anomaly{
					Index:  s.Name,
					Year:   y,
					Field:  "min",
					Value:  s.Min[y],
					Reason: fmt.Sprintf("minimum is above maximum %v", s.Max[y]),
				})
			}
		}
		out = append(out, lonelyNegatives(s, t.Years())...)
	}
	return out
}

func lonelyNegatives(s IndexSeries, years []string) []Anomaly {
	if len(years) < 2 {
		return nil
	}
	var out []Anomaly
	for _, y := range years {
		if s.Threshold[y] >= 0 {
			continue
		}
		othersPositive := true
		for _, other := range years {
			if other != y && s.Threshold[other] <= 0 {
				othersPositive = false
				break
			}
		}
		if othersPositive {
			out = append(out, Anomaly{
				Index:  s.Name,
				Year:   y,
				Field:  "threshold",
				Value:  s.Threshold[y],
				Reason: "negative threshold while every other year is positive",
			})
		}
	}
	return out
}
