package fetcher

import (
	"bytes"
	"context"
	"io"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// Statistic is one region's numeric value.
type Statistic struct {
	Code  string
	Value float64
}

// StatisticColumns names the code and value columns of a statistic table.
type StatisticColumns struct {
	Code  string
	Value string
}

// UnemploymentColumns matches the fips / unemp layout.
var UnemploymentColumns = StatisticColumns{Code: "fips", Value: "unemp"}

// ParseStatistics reads a statistic CSV. The code column is always read as a
// string so codes keep their leading zeros. Missing values become NaN.
func ParseStatistics(r io.Reader, cols StatisticColumns) ([]Statistic, error) {
	df := dataframe.ReadCSV(r, dataframe.WithTypes(map[string]series.Type{
		cols.Code:  series.String,
		cols.Value: series.Float,
	}))
	if df.Err != nil {
		return nil, errors.Wrap(df.Err, "parsing statistic csv")
	}

	var hasCode, hasValue bool
	for _, n := range df.Names() {
		hasCode = hasCode || n == cols.Code
		hasValue = hasValue || n == cols.Value
	}
	if !hasCode || !hasValue {
		return nil, errors.Errorf("statistic csv needs columns %q and %q", cols.Code, cols.Value)
	}

	codes := df.Col(cols.Code).Records()
	values := df.Col(cols.Value).Float()
	stats := make([]Statistic, 0, len(codes))
	for i, code := range codes {
		v := values[i]
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		stats = append(stats, Statistic{Code: code, Value: v})
	}
	return stats, nil
}

// FetchStatistics downloads and parses the statistic table at url.
func (c *Client) FetchStatistics(ctx context.Context, url string, cols StatisticColumns) ([]Statistic, error) {
	body, err := c.get(ctx, "statistics", url, "text/csv, text/plain")
	if err != nil {
		return nil, err
	}
	stats, err := ParseStatistics(bytes.NewReader(body), cols)
	if err != nil {
		return nil, &FetchError{Source: "statistics", URL: url, Err: err}
	}
	c.log.WithField("rows", len(stats)).Info("loaded region statistics")
	return stats, nil
}
