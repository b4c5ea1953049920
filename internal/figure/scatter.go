// Package figure builds renderable figure descriptions from derived data.
package figure

import (
	"math"
)

const engineTitle = "Engine Size vs. Highway Fuel Mileage"

// Axis labels shared by both scatter figures.
const (
	LabelDispl = "Displacement (Liters)"
	LabelHwy   = "MPG"
)

// Point is an x/y pair.
type Point struct {
	X, Y float64
}

// Range is a closed axis interval.
type Range struct {
	Min, Max float64
}

// Series is one set of dots.
type Series struct {
	Name    string
	Color   string // hex, no leading '#'
	Opacity float64
	Points  []Point
}

// Scatter describes a scatter plot.
type Scatter struct {
	Title         string
	TitleFontSize float64
	XLabel        string
	YLabel        string
	LabelFontSize float64
	Width         int
	Height        int
	// Nil ranges are derived from the data.
	XRange *Range
	YRange *Range
	Series []Series
}

// Empty reports whether no series has any points.
func (s *Scatter) Empty() bool {
	for _, ser := range s.Series {
		if len(ser.Points) > 0 {
			return false
		}
	}
	return true
}

// Len counts points across all series.
func (s *Scatter) Len() int {
	n := 0
	for _, ser := range s.Series {
		n += len(ser.Points)
	}
	return n
}

// EngineScatter is displacement against highway MPG with the per-class
// means drawn on top in red. 1000x800 px, ranges fitted to the data.
func EngineScatter(displ, hwy []float64, means []Point) *Scatter {
	return &Scatter{
		Title:         engineTitle,
		TitleFontSize: 22,
		XLabel:        LabelDispl,
		YLabel:        LabelHwy,
		LabelFontSize: 14,
		Width:         1000,
		Height:        800,
		Series: []Series{
			{Name: "cars", Color: "1f77b4", Opacity: 0.7, Points: zip(displ, hwy)},
			{Name: "class means", Color: "ff0000", Opacity: 0.7, Points: finite(means)},
		},
	}
}

// FixedScatter is the same relation on fixed axes, x in [1, 8] and y in
// [10, 50], at 750x600 px.
func FixedScatter(displ, hwy []float64) *Scatter {
	return &Scatter{
		Title:         engineTitle,
		TitleFontSize: 22,
		XLabel:        LabelDispl,
		YLabel:        LabelHwy,
		LabelFontSize: 14,
		Width:         750,
		Height:        600,
		XRange:        &Range{Min: 1, Max: 8},
		YRange:        &Range{Min: 10, Max: 50},
		Series: []Series{
			{Name: "cars", Color: "636efa", Opacity: 0.5, Points: zip(displ, hwy)},
		},
	}
}

func zip(xs, ys []float64) []Point {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, Point{X: xs[i], Y: ys[i]})
	}
	return finite(pts)
}

func finite(pts []Point) []Point {
	out := pts[:0:0]
	for _, p := range pts {
		if isFinite(p.X) && isFinite(p.Y) {
			out = append(out, p)
		}
	}
	return out
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// fitRange spans every point on one axis with 5% padding on both sides. A
// degenerate span is widened by one unit each way.
func fitRange(series []Series, axis func(Point) float64) Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, p := range s.Points {
			v := axis(p)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return Range{Min: 0, Max: 1}
	}
	if hi == lo {
		return Range{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.05
	return Range{Min: lo - pad, Max: hi + pad}
}
