package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"golang.org/x/image/font"
)

const (
	DefaultPanelWidth  = 600
	DefaultPanelHeight = 500
	captionHeight      = 28
	captionFontSize    = 14

	singleDotWidth      = 5
	singleBandHalfWidth = 0.15
	bottomMargin        = 0.05
	legendHeadroom      = 0.45

	Caption = "Fleuve Nakambé : Eau et végétation"
)

// xAxis places the years at 1..n with their labels as ticks. go-chart takes
// the x range from the tick extent, so blank ticks at 0.5 and n+0.5 keep the
// first and last years off the plot edges.
func xAxis(years []string) ([]float64, chart.XAxis) {
	n := len(years)
	xs := make([]float64, n)
	ticks := make([]chart.Tick, 0, n+2)
	ticks = append(ticks, chart.Tick{Value: 0.5})
	for i, y := range years {
		xs[i] = float64(i + 1)
		ticks = append(ticks, chart.Tick{Value: xs[i], Label: y})
	}
	ticks = append(ticks, chart.Tick{Value: float64(n) + 0.5})
	return xs, chart.XAxis{
		Name:  "Année",
		Ticks: ticks,
		Range: &chart.ContinuousRange{Min: 0.5, Max: float64(n) + 0.5},
	}
}

// yRange spans the plotted values with extra room on top for the legend.
func yRange(p Panel) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	scan := func(vs []float64) {
		for _, v := range vs {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	scan(p.Band.Lower)
	scan(p.Band.Upper)
	for _, l := range p.Series {
		scan(l.Values)
	}
	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(hi), 1) * 0.1
	}
	return &chart.ContinuousRange{Min: lo - span*bottomMargin, Max: hi + span*legendHeadroom}
}

// lineStyle draws a lone point as a dot since there is no segment to stroke.
func lineStyle(l Line, single bool) chart.Style {
	st := chart.Style{
		StrokeColor: l.Color,
		StrokeWidth: l.Width,
	}
	if l.Dashed {
		st.StrokeDashArray = []float64{6, 4}
	}
	if single {
		st.DotColor = l.Color
		st.DotWidth = singleDotWidth
	}
	return st
}

// bandValues widens a lone year into a narrow bar, since go-chart needs two
// points to close the band polygon.
func bandValues(xs []float64, b Band) ([]float64, []float64, []float64) {
	if len(xs) != 1 || len(b.Lower) != 1 || len(b.Upper) != 1 {
		return xs, b.Lower, b.Upper
	}
	x := xs[0]
	return []float64{x - singleBandHalfWidth, x + singleBandHalfWidth},
		[]float64{b.Lower[0], b.Lower[0]},
		[]float64{b.Upper[0], b.Upper[0]}
}

// legendSeries leaves the band out of the legend.
func legendSeries(series []chart.Series) []chart.Series {
	out := make([]chart.Series, 0, len(series))
	for _, s := range series {
		if _, ok := s.(bandSeries); ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// NewChart builds the go-chart definition of one panel.
func NewChart(p Panel, width, height int) (*chart.Chart, error) {
	if len(p.Years) == 0 {
		return nil, fmt.Errorf("panel %s has no years", p.Index)
	}
	xs, xa := xAxis(p.Years)
	single := len(xs) == 1
	bx, lower, upper := bandValues(xs, p.Band)

	series := []chart.Series{
		bandSeries{
			Name: p.Band.Name,
			Style: chart.Style{
				FillColor:   p.Band.Color,
				StrokeColor: p.Band.Color,
				StrokeWidth: 0.5,
			},
			XValues: bx,
			Lower:   lower,
			Upper:   upper,
		},
	}
	for _, l := range p.Series {
		series = append(series, chart.ContinuousSeries{
			Name:    l.Name,
			XValues: xs,
			YValues: l.Values,
			Style:   lineStyle(l, single),
		})
	}

	ch := &chart.Chart{
		Title:      p.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 48}},
		XAxis:      xa,
		YAxis:      chart.YAxis{Name: p.Index, Range: yRange(p)},
		Series:     series,
	}
	legend := *ch
	legend.Series = legendSeries(ch.Series)
	ch.Elements = []chart.Renderable{chart.Legend(&legend)}
	return ch, nil
}

// RenderPanel draws one panel and decodes it back into an image.
func RenderPanel(p Panel, width, height int) (image.Image, error) {
	ch, err := NewChart(p, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render %s chart: %w", p.Index, err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s chart: %w", p.Index, err)
	}
	return img, nil
}

// captionFace is the Roboto face bundled with go-chart, which carries the
// accented glyphs of the caption.
func captionFace() (font.Face, error) {
	f, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load caption font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: captionFontSize}), nil
}

// Render lays the panels out side by side under a caption line.
func Render(panels []Panel, panelWidth, panelHeight int) (image.Image, error) {
	if len(panels) == 0 {
		return nil, fmt.Errorf("no panels to render")
	}

	dc := gg.NewContext(panelWidth*len(panels), panelHeight+captionHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	face, err := captionFace()
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)
	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(Caption, float64(dc.Width())/2, captionHeight/2, 0.5, 0.5)

	for i, p := range panels {
		img, err := RenderPanel(p, panelWidth, panelHeight)
		if err != nil {
			return nil, err
		}
		dc.DrawImage(img, i*panelWidth, captionHeight)
	}
	return dc.Image(), nil
}

// RenderPNG is Render encoded as PNG.
func RenderPNG(panels []Panel, panelWidth, panelHeight int) ([]byte, error) {
	img, err := Render(panels, panelWidth, panelHeight)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
