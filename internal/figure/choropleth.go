package figure

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/Zachdehooge/mpg-dashboard/internal/dataset"
	"github.com/Zachdehooge/mpg-dashboard/internal/fetcher"
)

// Fixed colour domain of the choropleth.
const (
	ChoroplethMin = 0
	ChoroplethMax = 12
)

// Region is one boundary feature with its joined statistic.
type Region struct {
	Code     string
	Value    float64
	HasValue bool
	// Fill is a "#rrggbb" colour, empty for regions without a value.
	Fill     string
	Geometry json.RawMessage
}

// Choropleth colours region boundaries by a joined statistic.
type Choropleth struct {
	Regions []Region
	// Unmapped lists statistic codes with no boundary, sorted.
	Unmapped   []string
	ColorScale string
	ZMin, ZMax float64
	Opacity    float64
	LineWidth  float64
	MapStyle   string
	Center     dataset.Point
	Zoom       float64
}

// Mapped counts regions that received a colour.
func (c *Choropleth) Mapped() int {
	n := 0
	for _, r := range c.Regions {
		if r.HasValue {
			n++
		}
	}
	return n
}

// JoinChoropleth joins stats to boundaries by region code. Regions keep the
// boundary order. A statistic without a boundary is recorded in Unmapped and
// a boundary without a statistic renders blank; neither is an error. When a
// code repeats in stats the first value wins.
func JoinChoropleth(b *fetcher.Boundaries, stats []fetcher.Statistic) *Choropleth {
	c := &Choropleth{
		ColorScale: "Viridis",
		ZMin:       ChoroplethMin,
		ZMax:       ChoroplethMax,
		Opacity:    0.5,
		LineWidth:  0,
		MapStyle:   "carto-positron",
		Center:     dataset.Point{Lat: 37.0902, Lon: -95.7129},
		Zoom:       2.8,
	}

	values := make(map[string]float64, len(stats))
	unmapped := make(map[string]bool)
	for _, s := range stats {
		if _, dup := values[s.Code]; dup {
			continue
		}
		values[s.Code] = s.Value
		if _, ok := b.Lookup(s.Code); !ok {
			unmapped[s.Code] = true
		}
	}

	if b != nil {
		c.Regions = make([]Region, 0, len(b.Features))
		for _, f := range b.Features {
			r := Region{Code: string(f.ID), Geometry: f.Geometry}
			if v, ok := values[r.Code]; ok && !math.IsNaN(v) {
				r.Value = v
				r.HasValue = true
				r.Fill = Color(v)
			}
			c.Regions = append(c.Regions, r)
		}
	}

	for code := range unmapped {
		c.Unmapped = append(c.Unmapped, code)
	}
	sort.Strings(c.Unmapped)
	return c
}

// Color maps v onto the Viridis scale over the fixed domain; values outside
// it are clamped.
func Color(v float64) string {
	v = math.Max(ChoroplethMin, math.Min(ChoroplethMax, v))
	col := chart.Viridis(v, ChoroplethMin, ChoroplethMax)
	return fmt.Sprintf("#%02x%02x%02x", col.R, col.G, col.B)
}

// LegendStops samples the colour scale for a legend.
func LegendStops(n int) []LegendStop {
	if n < 2 {
		n = 2
	}
	stops := make([]LegendStop, n)
	for i := range stops {
		v := ChoroplethMin + float64(i)*(ChoroplethMax-ChoroplethMin)/float64(n-1)
		stops[i] = LegendStop{Value: v, Color: Color(v)}
	}
	return stops
}

// LegendStop is one legend swatch.
type LegendStop struct {
	Value float64
	Color string
}

type geoFeature struct {
	Type       string          `json:"type"`
	ID         string          `json:"id"`
	Properties geoProperties   `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

type geoProperties struct {
	Code  string   `json:"code"`
	Value *float64 `json:"value"`
	Fill  string   `json:"fill"`
}

// GeoJSON encodes the regions as a FeatureCollection whose properties carry
// the value and fill colour for the browser map.
func (c *Choropleth) GeoJSON() ([]byte, error) {
	features := make([]geoFeature, 0, len(c.Regions))
	for _, r := range c.Regions {
		if len(r.Geometry) == 0 {
			continue
		}
		gf := geoFeature{
			Type:       "Feature",
			ID:         r.Code,
			Properties: geoProperties{Code: r.Code, Fill: r.Fill},
			Geometry:   r.Geometry,
		}
		if r.HasValue {
			v := r.Value
			gf.Properties.Value = &v
		}
		features = append(features, gf)
	}

	out, err := sonic.Marshal(struct {
		Type     string       `json:"type"`
		Features []geoFeature `json:"features"`
	}{Type: "FeatureCollection", Features: features})
	if err != nil {
		return nil, errors.Wrap(err, "encoding choropleth GeoJSON")
	}
	return out, nil
}
