package figure

import (
	"bytes"

	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a figure has nothing to draw.
var ErrNoData = errors.New("no data to plot")

// pointStyle draws dots only, no connecting line.
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		StrokeColor: drawing.ColorTransparent,
		DotWidth:    4,
		DotColor:    col,
	}
}

func seriesColor(s Series) drawing.Color {
	col := drawing.ColorFromHex(s.Color)
	if s.Opacity > 0 && s.Opacity < 1 {
		col.A = uint8(s.Opacity * 255)
	}
	return col
}

func axisRange(fixed *Range, series []Series, axis func(Point) float64) *chart.ContinuousRange {
	r := fitRange(series, axis)
	if fixed != nil {
		r = *fixed
	}
	return &chart.ContinuousRange{Min: r.Min, Max: r.Max}
}

// RenderSVG draws s with go-chart and returns the SVG document.
func RenderSVG(s *Scatter) ([]byte, error) {
	if s == nil || s.Empty() {
		return nil, ErrNoData
	}

	series := make([]chart.Series, 0, len(s.Series))
	for _, ser := range s.Series {
		if len(ser.Points) == 0 {
			continue
		}
		xs := make([]float64, len(ser.Points))
		ys := make([]float64, len(ser.Points))
		for i, p := range ser.Points {
			xs[i], ys[i] = p.X, p.Y
		}
		series = append(series, chart.ContinuousSeries{
			Name:    ser.Name,
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(seriesColor(ser)),
		})
	}

	labelStyle := chart.Style{FontSize: s.LabelFontSize}
	ch := chart.Chart{
		Title:      s.Title,
		TitleStyle: chart.Style{FontSize: s.TitleFontSize},
		Width:      s.Width,
		Height:     s.Height,
		Background: chart.Style{Padding: chart.Box{Top: 50, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:      s.XLabel,
			NameStyle: labelStyle,
			Range:     axisRange(s.XRange, s.Series, func(p Point) float64 { return p.X }),
		},
		YAxis: chart.YAxis{
			Name:      s.YLabel,
			NameStyle: labelStyle,
			Range:     axisRange(s.YRange, s.Series, func(p Point) float64 { return p.Y }),
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.SVG, &buf); err != nil {
		return nil, errors.Wrapf(err, "rendering %q", s.Title)
	}
	return buf.Bytes(), nil
}
