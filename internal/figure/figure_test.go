package figure

import (
	"math"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachdehooge/mpg-dashboard/internal/dataset"
	"github.com/Zachdehooge/mpg-dashboard/internal/fetcher"
)

func TestEngineScatter(t *testing.T) {
	s := EngineScatter(
		[]float64{1.8, 2.0, math.NaN()},
		[]float64{29, 31, 20},
		[]Point{{X: 1.9, Y: 30}},
	)
	assert.Equal(t, 1000, s.Width)
	assert.Equal(t, 800, s.Height)
	assert.Nil(t, s.XRange)
	require.Len(t, s.Series, 2)
	// NaN rows are dropped
	assert.Len(t, s.Series[0].Points, 2)
	assert.Equal(t, "ff0000", s.Series[1].Color)
	assert.Equal(t, 3, s.Len())
}

func TestFixedScatter(t *testing.T) {
	s := FixedScatter([]float64{2.4}, []float64{24})
	assert.Equal(t, 750, s.Width)
	assert.Equal(t, 600, s.Height)
	assert.Equal(t, &Range{Min: 1, Max: 8}, s.XRange)
	assert.Equal(t, &Range{Min: 10, Max: 50}, s.YRange)
	assert.Equal(t, 0.5, s.Series[0].Opacity)
}

func TestFitRange(t *testing.T) {
	x := func(p Point) float64 { return p.X }

	r := fitRange([]Series{{Points: []Point{{X: 2}, {X: 4}}}}, x)
	assert.InDelta(t, 1.9, r.Min, 1e-9)
	assert.InDelta(t, 4.1, r.Max, 1e-9)

	r = fitRange([]Series{{Points: []Point{{X: 3}}}}, x)
	assert.Equal(t, Range{Min: 2, Max: 4}, r)

	r = fitRange(nil, x)
	assert.Equal(t, Range{Min: 0, Max: 1}, r)
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(EngineScatter(
		[]float64{1.8, 2.0, 5.3},
		[]float64{29, 31, 20},
		[]Point{{X: 1.9, Y: 30}, {X: 5.3, Y: 20}},
	))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(svg), "<svg"))

	svg, err = RenderSVG(FixedScatter([]float64{2.4}, []float64{24}))
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestRenderSVGEmpty(t *testing.T) {
	_, err := RenderSVG(FixedScatter(nil, nil))
	assert.Equal(t, ErrNoData, err)
}

func TestNewPointMap(t *testing.T) {
	pm := NewPointMap([]dataset.Point{{Lat: 45, Lon: -73}, {Lat: 46, Lon: -74}, {Lat: math.NaN(), Lon: 0}})
	assert.Len(t, pm.Points, 2)
	assert.InDelta(t, 45.5, pm.Center.Lat, 1e-9)
	assert.InDelta(t, -73.5, pm.Center.Lon, 1e-9)
}

const boundaryDoc = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":"01001","properties":{},"geometry":{"type":"Point","coordinates":[-86.6,32.5]}},
 {"type":"Feature","id":"01003","properties":{},"geometry":{"type":"Point","coordinates":[-87.7,30.7]}}
]}`

func TestJoinChoropleth(t *testing.T) {
	b, err := fetcher.ParseBoundaries([]byte(boundaryDoc))
	require.NoError(t, err)

	c := JoinChoropleth(b, []fetcher.Statistic{
		{Code: "01001", Value: 5.3},
		{Code: "56045", Value: 3.1}, // no boundary
		{Code: "01001", Value: 99},  // duplicate, ignored
	})

	require.Len(t, c.Regions, 2)
	assert.True(t, c.Regions[0].HasValue)
	assert.Equal(t, 5.3, c.Regions[0].Value)
	assert.Equal(t, Color(5.3), c.Regions[0].Fill)

	// boundary without a statistic renders blank
	assert.False(t, c.Regions[1].HasValue)
	assert.Empty(t, c.Regions[1].Fill)

	// statistic without a boundary is reported, not raised
	assert.Equal(t, []string{"56045"}, c.Unmapped)
	assert.Equal(t, 1, c.Mapped())

	assert.Equal(t, "Viridis", c.ColorScale)
	assert.Equal(t, 0.0, c.ZMin)
	assert.Equal(t, 12.0, c.ZMax)
}

func TestJoinChoroplethWithoutBoundaries(t *testing.T) {
	c := JoinChoropleth(nil, []fetcher.Statistic{{Code: "01001", Value: 1}})
	assert.Empty(t, c.Regions)
	assert.Equal(t, []string{"01001"}, c.Unmapped)
}

func TestColorClamps(t *testing.T) {
	assert.Equal(t, Color(0), Color(-4))
	assert.Equal(t, Color(12), Color(40))
	assert.NotEqual(t, Color(0), Color(12))
	assert.Regexp(t, `^#[0-9a-f]{6}$`, Color(6))

	stops := LegendStops(5)
	require.Len(t, stops, 5)
	assert.Equal(t, 0.0, stops[0].Value)
	assert.Equal(t, 12.0, stops[4].Value)
}

func TestChoroplethGeoJSON(t *testing.T) {
	b, err := fetcher.ParseBoundaries([]byte(boundaryDoc))
	require.NoError(t, err)
	c := JoinChoropleth(b, []fetcher.Statistic{{Code: "01003", Value: 7}})

	data, err := c.GeoJSON()
	require.NoError(t, err)

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			ID         string `json:"id"`
			Properties struct {
				Value *float64 `json:"value"`
				Fill  string   `json:"fill"`
			} `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, sonic.Unmarshal(data, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 2)
	assert.Nil(t, doc.Features[0].Properties.Value)
	require.NotNil(t, doc.Features[1].Properties.Value)
	assert.Equal(t, 7.0, *doc.Features[1].Properties.Value)
	assert.Equal(t, Color(7), doc.Features[1].Properties.Fill)
}
