package pipeline

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/Zachdehooge/mpg-dashboard/internal/dataset"
	"github.com/Zachdehooge/mpg-dashboard/internal/fetcher"
)

// Sources are the inputs of the point map and choropleth. They are loaded
// once per process and only read afterwards; each carries its own error so a
// failure disables just the view that needs it.
type Sources struct {
	Points    []dataset.Point
	PointsErr error

	Boundaries    *fetcher.Boundaries
	BoundariesErr error

	Statistics    []fetcher.Statistic
	StatisticsErr error
}

// ChoroplethErr is the first error that prevents drawing the choropleth.
func (s *Sources) ChoroplethErr() error {
	if s.BoundariesErr != nil {
		return s.BoundariesErr
	}
	return s.StatisticsErr
}

// SourceOptions says where the sources live.
type SourceOptions struct {
	PointsPath   string
	BoundaryURL  string
	StatisticURL string
	Client       *fetcher.Client
	Log          logrus.FieldLogger
}

// LoadSources loads every source, recording failures instead of returning
// them. Nothing is retried.
func LoadSources(ctx context.Context, opts SourceOptions) *Sources {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	src := &Sources{}

	if opts.PointsPath != "" {
		src.Points, src.PointsErr = dataset.LoadPoints(opts.PointsPath)
		if src.PointsErr != nil {
			log.WithError(src.PointsErr).Warn("point map disabled")
		}
	}

	if opts.Client != nil {
		src.Boundaries, src.BoundariesErr = opts.Client.FetchBoundaries(ctx, opts.BoundaryURL)
		if src.BoundariesErr != nil {
			log.WithError(src.BoundariesErr).Warn("choropleth disabled")
		}
		src.Statistics, src.StatisticsErr = opts.Client.FetchStatistics(ctx, opts.StatisticURL, fetcher.UnemploymentColumns)
		if src.StatisticsErr != nil {
			log.WithError(src.StatisticsErr).Warn("choropleth disabled")
		}
	}
	return src
}
