package figure

import (
	"github.com/Zachdehooge/mpg-dashboard/internal/dataset"
)

// PointMap places one marker per point.
type PointMap struct {
	Points []dataset.Point
	Center dataset.Point
	Zoom   float64
}

// NewPointMap centres the map on the mean position of points.
func NewPointMap(points []dataset.Point) *PointMap {
	pm := &PointMap{Zoom: 10}
	var lat, lon float64
	for _, p := range points {
		if !isFinite(p.Lat) || !isFinite(p.Lon) {
			continue
		}
		pm.Points = append(pm.Points, p)
		lat += p.Lat
		lon += p.Lon
	}
	if n := float64(len(pm.Points)); n > 0 {
		pm.Center = dataset.Point{Lat: lat / n, Lon: lon / n}
	}
	return pm
}
