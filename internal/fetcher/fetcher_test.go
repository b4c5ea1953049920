package fetcher

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countiesGeoJSON = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":"01001","properties":{"NAME":"Autauga"},"geometry":{"type":"Polygon","coordinates":[[[-86.49,32.47],[-86.71,32.40],[-86.41,32.41],[-86.49,32.47]]]}},
 {"type":"Feature","id":1003,"properties":{"NAME":"Baldwin"},"geometry":{"type":"Polygon","coordinates":[[[-87.76,30.99],[-87.59,30.99],[-87.60,31.31],[-87.76,30.99]]]}}
]}`

const unemploymentCSV = "fips,unemp\n01001,5.3\n01003,5.4\n01005,\n"

func quietClient() *Client {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewClient(2*time.Second, "mpg-dashboard-test", log)
}

func TestFetchBoundaries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mpg-dashboard-test", r.Header.Get("User-Agent"))
		w.Write([]byte(countiesGeoJSON))
	}))
	defer srv.Close()

	b, err := quietClient().FetchBoundaries(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())

	f, ok := b.Lookup("01001")
	require.True(t, ok)
	assert.Equal(t, "Autauga", f.Properties["NAME"])
	assert.Contains(t, string(f.Geometry), "Polygon")

	// numeric ids keep their textual form
	_, ok = b.Lookup("1003")
	assert.True(t, ok)
	_, ok = b.Lookup("99999")
	assert.False(t, ok)
}

func TestParseBoundariesRejectsOtherDocuments(t *testing.T) {
	_, err := ParseBoundaries([]byte(`{"type":"Feature"}`))
	assert.Error(t, err)

	_, err = ParseBoundaries([]byte(`not json`))
	assert.Error(t, err)
}

func TestFetchStatistics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(unemploymentCSV))
	}))
	defer srv.Close()

	stats, err := quietClient().FetchStatistics(context.Background(), srv.URL, UnemploymentColumns)
	require.NoError(t, err)
	require.Len(t, stats, 3)

	assert.Equal(t, "01001", stats[0].Code)
	assert.InDelta(t, 5.3, stats[0].Value, 1e-9)
	assert.True(t, math.IsNaN(stats[2].Value))
}

func TestParseStatisticsMissingColumns(t *testing.T) {
	_, err := ParseStatistics(strings.NewReader("code,rate\n1,2\n"), UnemploymentColumns)
	assert.Error(t, err)
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := quietClient().FetchStatistics(context.Background(), srv.URL, UnemploymentColumns)
	require.Error(t, err)

	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.Status)
	assert.Equal(t, "statistics", fetchErr.Source)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := quietClient().FetchBoundaries(context.Background(), url)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.Status)
}
