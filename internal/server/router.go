// Package server hosts the dashboard over HTTP with one independent widget
// store, dataset cache and executor per browser session.
package server

import (
	"time"

	hertzserver "github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/sirupsen/logrus"

	"github.com/Zachdehooge/mpg-dashboard/internal/config"
	"github.com/Zachdehooge/mpg-dashboard/internal/logging"
)

// Setup sets up all routes
func Setup(r *route.Engine, h *Handler, log logrus.FieldLogger) {
	// Global middleware
	r.Use(Recovery(log))
	r.Use(Logger(log))
	r.Use(Metrics())

	r.GET("/ping", h.Ping)

	r.GET("/", h.Index)
	r.POST("/widgets", h.SetWidget)
	r.GET(ChoroplethPath, h.Choropleth)

	api := r.Group("/api")
	{
		api.GET("/view", h.View)
		api.POST("/widgets", h.SetWidgetJSON)
	}
}

// New builds the hertz server with routes installed and hertz logging sent
// to log.
func New(cfg *config.Config, h *Handler, log *logrus.Logger) *hertzserver.Hertz {
	hlog.SetLogger(logging.NewHertzLogger(log))

	srv := hertzserver.Default(
		hertzserver.WithHostPorts(cfg.ServerAddr()),
		hertzserver.WithReadTimeout(cfg.Server.ReadTimeout),
		hertzserver.WithWriteTimeout(cfg.Server.WriteTimeout),
		hertzserver.WithExitWaitTime(5*time.Second),
	)
	Setup(srv.Engine, h, logging.Component(log, "http"))
	return srv
}
