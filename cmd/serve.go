package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cli/browser"
	"github.com/spf13/cobra"

	"github.com/Zachdehooge/mpg-dashboard/internal/cli/ui"
	"github.com/Zachdehooge/mpg-dashboard/internal/dataset"
	"github.com/Zachdehooge/mpg-dashboard/internal/generator"
	"github.com/Zachdehooge/mpg-dashboard/internal/logging"
	"github.com/Zachdehooge/mpg-dashboard/internal/pipeline"
	"github.com/Zachdehooge/mpg-dashboard/internal/server"
)

func addServeCmd(rootCmd *cobra.Command) {
	var (
		openBrowser bool
		watchData   bool
	)
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the interactive dashboard",
		Run: func(cmd *cobra.Command, args []string) {
			a, err := newApp(cmd)
			if err != nil {
				cmd.PrintErrln(fmt.Errorf("failed to start: %w", err))
				os.Exit(1)
			}
			defer a.close()
			if err := runServer(a, openBrowser, watchData || a.cfg.Data.Watch); err != nil {
				a.log.WithError(err).Error("server stopped with error")
				os.Exit(1)
			}
		},
	}
	serveCmd.Flags().BoolVar(&openBrowser, "open", false, "Open the dashboard in a browser")
	serveCmd.Flags().BoolVar(&watchData, "watch-data", false, "Reload every session when the dataset file changes")

	rootCmd.AddCommand(serveCmd)
}

func runServer(a *app, openBrowser, watchData bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.Remote.Timeout*2)
	sources := a.loadSources(fetchCtx, true)
	cancel()

	renderer, err := generator.NewHTMLRenderer(generator.Options{
		Interactive:   true,
		ChoroplethURL: server.ChoroplethPath,
	})
	if err != nil {
		return err
	}

	registry := server.NewRegistry(a.cfg.Server.SessionTTL, func() *pipeline.Executor {
		return a.newExecutor(renderer, sources)
	}, a.log)
	go registry.Run(ctx, time.Minute)

	if watchData {
		if err := dataset.Watch(ctx, a.cfg.Data.MPGPath, logging.Component(a.log, "watch"), func(string) {
			registry.ReloadAll()
		}); err != nil {
			return err
		}
	}

	if a.cfg.Observability.EnableMetrics {
		go func() {
			if err := server.ServeMetrics(ctx, a.cfg.MetricsAddr(), a.log); err != nil {
				a.log.WithError(err).Error("metrics listener failed")
			}
		}()
	}

	handler := server.NewHandler(registry, sources, a.cfg.Server.SessionTTL, a.log)
	h := server.New(a.cfg, handler, a.log)

	go func() {
		if err := h.Run(); err != nil {
			a.log.WithError(err).Error("server run failed")
			stop()
		}
	}()

	url := "http://" + a.cfg.ServerAddr()
	a.log.WithField("address", url).Info("dashboard server started")
	ui.PrintInfo("Dashboard available at %s", url)
	if openBrowser {
		if err := browser.OpenURL(url); err != nil {
			a.log.WithError(err).Warn("could not open browser")
		}
	}

	<-ctx.Done()
	a.log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := h.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	a.log.Info("server stopped gracefully")
	return nil
}
