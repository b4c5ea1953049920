package dataset

import (
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// Point is one geographic marker.
type Point struct {
	Lat, Lon float64
}

// LoadPoints reads a CSV of centroids. The centroid_lat / centroid_lon
// columns are renamed to lat / lon; files that already use lat / lon are
// accepted as is.
func LoadPoints(path string) ([]Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.WithTypes(map[string]series.Type{
		"centroid_lat": series.Float,
		"centroid_lon": series.Float,
		"lat":          series.Float,
		"lon":          series.Float,
	}))
	if df.Err != nil {
		return nil, &LoadError{Path: path, Err: errors.Wrap(df.Err, "parsing csv")}
	}

	df, err = renameCentroids(df)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	lats := df.Col("lat").Float()
	lons := df.Col("lon").Float()
	points := make([]Point, 0, len(lats))
	for i := range lats {
		points = append(points, Point{Lat: lats[i], Lon: lons[i]})
	}
	return points, nil
}

func renameCentroids(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	has := make(map[string]bool)
	for _, n := range df.Names() {
		has[n] = true
	}
	if has["centroid_lat"] && !has["lat"] {
		df = df.Rename("lat", "centroid_lat")
	}
	if has["centroid_lon"] && !has["lon"] {
		df = df.Rename("lon", "centroid_lon")
	}
	if df.Err != nil {
		return df, errors.Wrap(df.Err, "renaming centroid columns")
	}
	for _, n := range []string{"lat", "lon"} {
		if !has[n] && !has["centroid_"+n] {
			return df, errors.Errorf("missing column %q", n)
		}
	}
	return df, nil
}
