// Package pipeline re-runs the dashboard derivation whenever widget state
// changes and hands the result to a renderer.
package pipeline

import (
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/pkg/errors"

	"github.com/Zachdehooge/mpg-dashboard/internal/dataset"
	"github.com/Zachdehooge/mpg-dashboard/internal/figure"
)

// AllYears is the select box sentinel that disables the year filter.
const AllYears = "All"

// Selection is the part of widget state the derived view depends on. The
// raw-table checkbox is not part of it.
type Selection struct {
	Year string
}

// GroupMean is the per-class average of displacement and highway MPG.
type GroupMean struct {
	Class string
	Displ float64
	Hwy   float64
	Count int
}

// DerivedView is the filtered table plus its per-class means.
type DerivedView struct {
	Year  string
	Means []GroupMean
	rows  dataframe.DataFrame
}

// YearOptions is the select box domain for ds: "All" then each year.
func YearOptions(ds *dataset.Dataset) []string {
	years := ds.Years()
	opts := make([]string, 0, len(years)+1)
	opts = append(opts, AllYears)
	for _, y := range years {
		opts = append(opts, strconv.Itoa(y))
	}
	return opts
}

// Derive filters ds by sel.Year and aggregates the result. It does not copy
// the dataset: filtering yields a new frame and "All" shares the immutable
// one.
func Derive(ds *dataset.Dataset, sel Selection) (*DerivedView, error) {
	if ds == nil {
		return nil, errors.New("no dataset")
	}

	var rows dataframe.DataFrame
	if sel.Year == AllYears || sel.Year == "" {
		rows = ds.All()
	} else {
		year, err := strconv.Atoi(sel.Year)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid year %q", sel.Year)
		}
		rows = ds.ForYear(year)
		if rows.Err != nil {
			return nil, errors.Wrapf(rows.Err, "filtering year %d", year)
		}
	}

	year := sel.Year
	if year == "" {
		year = AllYears
	}
	return &DerivedView{Year: year, rows: rows, Means: groupMeans(rows)}, nil
}

// groupMeans groups rows by class and averages displ and hwy independently,
// skipping NaN per column. Groups come out sorted by class name.
func groupMeans(rows dataframe.DataFrame) []GroupMean {
	if rows.Nrow() == 0 {
		return nil
	}
	classes := rows.Col(dataset.ColClass).Records()
	displ := rows.Col(dataset.ColDispl).Float()
	hwy := rows.Col(dataset.ColHwy).Float()

	type acc struct {
		displSum, hwySum float64
		displN, hwyN     int
		rows             int
	}
	groups := make(map[string]*acc)
	for i, class := range classes {
		a, ok := groups[class]
		if !ok {
			a = &acc{}
			groups[class] = a
		}
		a.rows++
		if !math.IsNaN(displ[i]) {
			a.displSum += displ[i]
			a.displN++
		}
		if !math.IsNaN(hwy[i]) {
			a.hwySum += hwy[i]
			a.hwyN++
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	means := make([]GroupMean, 0, len(names))
	for _, name := range names {
		a := groups[name]
		means = append(means, GroupMean{
			Class: name,
			Displ: mean(a.displSum, a.displN),
			Hwy:   mean(a.hwySum, a.hwyN),
			Count: a.rows,
		})
	}
	return means
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Len is the number of rows in the view.
func (v *DerivedView) Len() int { return v.rows.Nrow() }

// Records returns the header followed by every row as strings.
func (v *DerivedView) Records() [][]string { return v.rows.Records() }

// Column returns a numeric column, nil if it does not exist.
func (v *DerivedView) Column(name string) []float64 {
	for _, n := range v.rows.Names() {
		if n == name {
			return v.rows.Col(name).Float()
		}
	}
	return nil
}

// WriteCSV writes the filtered table as CSV.
func (v *DerivedView) WriteCSV(w io.Writer) error {
	return errors.Wrap(v.rows.WriteCSV(w), "writing view csv")
}

// MeanPoints returns the group means as scatter points.
func (v *DerivedView) MeanPoints() []figure.Point {
	pts := make([]figure.Point, 0, len(v.Means))
	for _, m := range v.Means {
		pts = append(pts, figure.Point{X: m.Displ, Y: m.Hwy})
	}
	return pts
}
