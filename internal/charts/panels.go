package charts

import (
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/nakambe-watch/nakambe-dashboard/internal/indices"
)

var (
	ndviBandColor = drawing.ColorFromHex("008000").WithAlpha(102)
	ndwiBandColor = drawing.ColorFromHex("00BFFF").WithAlpha(102)
	ndviLineColor = drawing.ColorFromHex("008000")
	ndwiLineColor = drawing.ColorFromHex("0000FF")
	thresholdRed  = drawing.ColorFromHex("FF0000")
)

// Band is the shaded area between the min and max series.
type Band struct {
	Name  string
	Lower []float64
	Upper []float64
	Color drawing.Color
}

// Line is one plotted series of a panel.
type Line struct {
	Name   string
	Values []float64
	Color  drawing.Color
	Width  float64
	Dashed bool
}

// Panel describes one index chart. Series are min, max, threshold in that order.
type Panel struct {
	Index  string
	Title  string
	Years  []string
	Band   Band
	Series []Line
}

type panelStyle struct {
	title string
	band  drawing.Color
	line  drawing.Color
}

var styles = map[string]panelStyle{
	"NDVI": {title: "Évolution du NDVI", band: ndviBandColor, line: ndviLineColor},
	"NDWI": {title: "Évolution du NDWI", band: ndwiBandColor, line: ndwiLineColor},
}

// BuildPanels returns the NDVI panel then the NDWI panel over the table's years.
func BuildPanels(t *indices.Table) []Panel {
	years := t.Years()
	panels := make([]Panel, 0, 2)
	for _, s := range t.Series() {
		panels = append(panels, buildPanel(s, years))
	}
	return panels
}

func buildPanel(s indices.IndexSeries, years []string) Panel {
	st := styles[s.Name]
	min, max, threshold := s.Values(years)

	return Panel{
		Index: s.Name,
		Title: st.title,
		Years: append([]string(nil), years...),
		Band: Band{
			Name:  s.Name + " plage",
			Lower: min,
			Upper: max,
			Color: st.band,
		},
		Series: []Line{
			{Name: s.Name + " min", Values: min, Color: st.line, Width: 1.5, Dashed: true},
			{Name: s.Name + " max", Values: max, Color: st.line, Width: 1.5},
			{Name: s.Name + " seuil", Values: threshold, Color: thresholdRed, Width: 2},
		},
	}
}
