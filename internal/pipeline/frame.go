package pipeline

import (
	"io"
	"time"

	"github.com/Zachdehooge/mpg-dashboard/internal/figure"
	"github.com/Zachdehooge/mpg-dashboard/internal/state"
)

// Widget keys, which double as their labels.
const (
	ShowDataKey = "Show Dataframe"
	YearKey     = "Choose a year"
)

// Page holds the static text of the dashboard.
type Page struct {
	Title     string
	Header    string
	Subheader string
	SourceURL string
}

// Figures are the four visual outputs of one execution. A nil figure with a
// nil error means the view is not configured.
type Figures struct {
	Engine *figure.Scatter
	Fixed  *figure.Scatter

	Points    *figure.PointMap
	PointsErr error

	Choropleth    *figure.Choropleth
	ChoroplethErr error
}

// Frame is everything one execution produced.
type Frame struct {
	Page
	Widgets    []state.Widget
	ShowTable  bool
	View       *DerivedView
	Figures    Figures
	Err        error
	RenderedAt time.Time
}

// Widget finds a widget snapshot by key.
func (f *Frame) Widget(key string) (state.Widget, bool) {
	for _, w := range f.Widgets {
		if w.Key == key {
			return w, true
		}
	}
	return state.Widget{}, false
}

// Renderer turns a frame into UI output.
type Renderer interface {
	Render(w io.Writer, f *Frame) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(w io.Writer, f *Frame) error

func (fn RendererFunc) Render(w io.Writer, f *Frame) error { return fn(w, f) }
