// Package dataset loads the fuel-economy table and keeps it immutable for the
// lifetime of a session.
package dataset

import (
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// Column names the pipeline relies on.
const (
	ColYear  = "year"
	ColDispl = "displ"
	ColHwy   = "hwy"
	ColClass = "class"
)

var requiredColumns = []string{ColYear, ColDispl, ColHwy, ColClass}

var columnTypes = map[string]series.Type{
	"manufacturer": series.String,
	"model":        series.String,
	ColYear:        series.Int,
	ColDispl:       series.Float,
	ColHwy:         series.Float,
	ColClass:       series.String,
	"trans":        series.String,
	"drv":          series.String,
	"fl":           series.String,
}

// LoadError reports a dataset that could not be read. It is fatal to the
// session that hit it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return "failed to load dataset " + e.Path + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

// Dataset is a loaded table. It is never mutated after construction; every
// accessor hands out copies or derived frames.
type Dataset struct {
	frame dataframe.DataFrame
	years []int
}

// Load reads a CSV file from path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return ds, nil
}

// Read parses CSV from r.
func Read(r io.Reader) (*Dataset, error) {
	df := dataframe.ReadCSV(r, dataframe.WithTypes(columnTypes))
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "parsing csv")
	}
	return fromFrame(df)
}

func fromFrame(df dataframe.DataFrame) (*Dataset, error) {
	names := make(map[string]bool, df.Ncol())
	for _, n := range df.Names() {
		names[n] = true
	}
	for _, col := range requiredColumns {
		if !names[col] {
			return nil, errors.Errorf("missing required column %q", col)
		}
	}

	years, err := distinctYears(df.Col(ColYear))
	if err != nil {
		return nil, err
	}
	return &Dataset{frame: df, years: years}, nil
}

func distinctYears(s series.Series) ([]int, error) {
	seen := make(map[int]bool)
	var years []int
	for _, rec := range s.Records() {
		y, err := strconv.Atoi(rec)
		if err != nil {
			return nil, errors.Wrapf(err, "year value %q", rec)
		}
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years, nil
}

// Len is the number of rows.
func (d *Dataset) Len() int { return d.frame.Nrow() }

// Years returns the distinct years, ascending.
func (d *Dataset) Years() []int {
	out := make([]int, len(d.years))
	copy(out, d.years)
	return out
}

// All returns the full table. Gota frames are values whose methods return new
// frames, so handing this out does not expose the dataset to mutation.
func (d *Dataset) All() dataframe.DataFrame { return d.frame }

// ForYear returns the rows whose year equals year.
func (d *Dataset) ForYear(year int) dataframe.DataFrame {
	return d.frame.Filter(dataframe.F{
		Colname:    ColYear,
		Comparator: series.Eq,
		Comparando: year,
	})
}
