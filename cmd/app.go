package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Zachdehooge/mpg-dashboard/internal/config"
	"github.com/Zachdehooge/mpg-dashboard/internal/dataset"
	"github.com/Zachdehooge/mpg-dashboard/internal/fetcher"
	"github.com/Zachdehooge/mpg-dashboard/internal/logging"
	"github.com/Zachdehooge/mpg-dashboard/internal/pipeline"
	"github.com/Zachdehooge/mpg-dashboard/internal/state"
)

// app is what every command needs: configuration and a logger.
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	log, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"command": cmd.Name(),
		"config":  cfgFile,
	}).Debug("config loaded")
	return &app{cfg: cfg, log: log}, nil
}

// close releases the log file, if any.
func (a *app) close() {
	if err := logging.Close(a.log); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

func (a *app) page() pipeline.Page {
	return pipeline.Page{
		Title:     a.cfg.Dashboard.Title,
		Header:    a.cfg.Dashboard.Header,
		Subheader: a.cfg.Dashboard.Subheader,
		SourceURL: a.cfg.Dashboard.SourceURL,
	}
}

// loadSources loads the point data and, when remote is set, the choropleth
// inputs.
func (a *app) loadSources(ctx context.Context, remote bool) *pipeline.Sources {
	opts := pipeline.SourceOptions{
		PointsPath: a.cfg.Data.PointsPath,
		Log:        logging.Component(a.log, "sources"),
	}
	if remote && a.cfg.Remote.BoundaryURL != "" && a.cfg.Remote.StatisticURL != "" {
		opts.BoundaryURL = a.cfg.Remote.BoundaryURL
		opts.StatisticURL = a.cfg.Remote.StatisticURL
		opts.Client = fetcher.NewClient(a.cfg.Remote.Timeout, a.cfg.Remote.UserAgent, logging.Component(a.log, "fetcher"))
	}
	return pipeline.LoadSources(ctx, opts)
}

// newExecutor wires a fresh store and dataset cache, so each caller gets an
// isolated session.
func (a *app) newExecutor(r pipeline.Renderer, sources *pipeline.Sources) *pipeline.Executor {
	return pipeline.NewExecutor(pipeline.Options{
		Store:    state.NewStore(),
		Cache:    dataset.NewCache(nil),
		Path:     a.cfg.Data.MPGPath,
		Sources:  sources,
		Renderer: r,
		Page:     a.page(),
		Log:      a.log,
	})
}
