package charts

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
)

// bandSeries fills the area between two y series. It implements
// chart.BoundedValuesProvider so the chart ranges account for both edges.
type bandSeries struct {
	Name    string
	Style   chart.Style
	XValues []float64
	Lower   []float64
	Upper   []float64
}

func (b bandSeries) GetName() string { return b.Name }
func (b bandSeries) GetStyle() chart.Style { return b.Style }
func (b bandSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }
func (b bandSeries) Len() int { return len(b.XValues) }

func (b bandSeries) GetBoundedValues(index int) (x, y1, y2 float64) {
	return b.XValues[index], b.Upper[index], b.Lower[index]
}

func (b bandSeries) Render(r chart.Renderer, canvasBox chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	style := b.Style.InheritFrom(defaults)
	chart.Draw.BoundedSeries(r, canvasBox, xrange, yrange, style, b)
}

func (b bandSeries) Validate() error {
	if len(b.XValues) == 0 {
		return fmt.Errorf("band %s has no values", b.Name)
	}
	if len(b.Lower) != len(b.XValues) || len(b.Upper) != len(b.XValues) {
		return fmt.Errorf("band %s has %d x values, %d lower and %d upper", b.Name, len(b.XValues), len(b.Lower), len(b.Upper))
	}
	return nil
}
