package generator

import (
	"fmt"
	"html/template"
	"math"

	"github.com/pkg/errors"

	"github.com/Zachdehooge/mpg-dashboard/internal/dataset"
	"github.com/Zachdehooge/mpg-dashboard/internal/figure"
	"github.com/Zachdehooge/mpg-dashboard/internal/pipeline"
	"github.com/Zachdehooge/mpg-dashboard/internal/state"
)

type pageData struct {
	pipeline.Page
	Interactive bool
	ActionURL   string
	Refresh     int

	ShowData *checkboxData
	Year     *selectData

	Table *tableData
	Means []meanRow

	Charts []chartData

	PointMap  *pointMapData
	PointsErr string

	Choropleth    *choroplethData
	ChoroplethErr string

	Err         string
	LastUpdated string
}

type checkboxData struct {
	Key     string
	Label   string
	Checked bool
	// Toggle is the value posted when the box is clicked.
	Toggle string
}

type selectData struct {
	Key     string
	Label   string
	Options []optionData
}

type optionData struct {
	Value    string
	Selected bool
}

type tableData struct {
	Header []string
	Rows   [][]string
}

type meanRow struct {
	Class string
	Displ string
	Hwy   string
	Count int
}

type chartData struct {
	Title  string
	Width  int
	Height int
	SVG    template.HTML
	Empty  bool
}

type pointMapData struct {
	Markers [][2]float64
	Lat     float64
	Lon     float64
	Zoom    float64
}

type choroplethData struct {
	// Inline is the GeoJSON when URL is empty.
	Inline    template.JS
	URL       string
	Lat       float64
	Lon       float64
	Zoom      float64
	Opacity   float64
	LineWidth float64
	Legend    []legendStop
	Unmapped  []string
	Mapped    int
	Regions   int
}

type legendStop struct {
	Label string
	Color string
}

func buildPage(f *pipeline.Frame, opts Options) (*pageData, error) {
	if f == nil {
		return nil, errors.New("nil frame")
	}
	p := &pageData{
		Page:        f.Page,
		Interactive: opts.Interactive,
		ActionURL:   opts.ActionURL,
		Refresh:     opts.Refresh,
		LastUpdated: f.RenderedAt.UTC().Format("Jan 2, 2006 at 15:04:05 UTC"),
	}

	if f.Err != nil {
		p.Err = f.Err.Error()
		var loadErr *dataset.LoadError
		if errors.As(f.Err, &loadErr) {
			p.Err = fmt.Sprintf("Dataset %s could not be loaded: %v", loadErr.Path, loadErr.Err)
		}
		return p, nil
	}

	if w, ok := f.Widget(pipeline.ShowDataKey); ok {
		p.ShowData = newCheckbox(w)
	}
	if w, ok := f.Widget(pipeline.YearKey); ok {
		p.Year = newSelect(w)
	}

	if f.View == nil {
		return p, nil
	}
	if f.ShowTable {
		records := f.View.Records()
		if len(records) > 0 {
			p.Table = &tableData{Header: records[0], Rows: records[1:]}
		}
		for _, m := range f.View.Means {
			p.Means = append(p.Means, meanRow{
				Class: m.Class,
				Displ: formatMean(m.Displ),
				Hwy:   formatMean(m.Hwy),
				Count: m.Count,
			})
		}
	}

	for _, s := range []*figure.Scatter{f.Figures.Engine, f.Figures.Fixed} {
		if s == nil {
			continue
		}
		c, err := newChart(s)
		if err != nil {
			return nil, err
		}
		p.Charts = append(p.Charts, c)
	}

	if f.Figures.PointsErr != nil {
		p.PointsErr = f.Figures.PointsErr.Error()
	} else if pm := f.Figures.Points; pm != nil {
		p.PointMap = newPointMap(pm)
	}

	if f.Figures.ChoroplethErr != nil {
		p.ChoroplethErr = f.Figures.ChoroplethErr.Error()
	} else if c := f.Figures.Choropleth; c != nil {
		cd, err := newChoropleth(c, opts.ChoroplethURL)
		if err != nil {
			return nil, err
		}
		p.Choropleth = cd
	}
	return p, nil
}

func newCheckbox(w state.Widget) *checkboxData {
	checked := w.Value == "true"
	toggle := "true"
	if checked {
		toggle = "false"
	}
	return &checkboxData{Key: w.Key, Label: w.Label, Checked: checked, Toggle: toggle}
}

func newSelect(w state.Widget) *selectData {
	s := &selectData{Key: w.Key, Label: w.Label}
	for _, o := range w.Options {
		s.Options = append(s.Options, optionData{Value: o, Selected: o == w.Value})
	}
	return s
}

func newChart(s *figure.Scatter) (chartData, error) {
	c := chartData{Title: s.Title, Width: s.Width, Height: s.Height}
	svg, err := figure.RenderSVG(s)
	switch {
	case errors.Is(err, figure.ErrNoData):
		c.Empty = true
	case err != nil:
		return c, err
	default:
		c.SVG = template.HTML(svg)
	}
	return c, nil
}

// leafletZoom converts a zoom level for 512px vector tiles, the unit figure
// descriptions use, to Leaflet's 256px raster tiles.
func leafletZoom(z float64) float64 { return z + 1 }

func newPointMap(pm *figure.PointMap) *pointMapData {
	d := &pointMapData{Lat: pm.Center.Lat, Lon: pm.Center.Lon, Zoom: leafletZoom(pm.Zoom)}
	d.Markers = make([][2]float64, 0, len(pm.Points))
	for _, pt := range pm.Points {
		d.Markers = append(d.Markers, [2]float64{pt.Lat, pt.Lon})
	}
	return d
}

func newChoropleth(c *figure.Choropleth, url string) (*choroplethData, error) {
	d := &choroplethData{
		URL:       url,
		Lat:       c.Center.Lat,
		Lon:       c.Center.Lon,
		Zoom:      leafletZoom(c.Zoom),
		Opacity:   c.Opacity,
		LineWidth: c.LineWidth,
		Unmapped:  c.Unmapped,
		Mapped:    c.Mapped(),
		Regions:   len(c.Regions),
	}
	for _, s := range figure.LegendStops(7) {
		d.Legend = append(d.Legend, legendStop{Label: fmt.Sprintf("%g", s.Value), Color: s.Color})
	}
	if url == "" {
		geo, err := c.GeoJSON()
		if err != nil {
			return nil, err
		}
		d.Inline = template.JS(geo)
	}
	return d, nil
}

func formatMean(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
