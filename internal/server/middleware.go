package server

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the request id header, echoed on the response.
const RequestIDKey = "X-Request-ID"

// Recovery turns a handler panic into a 500.
func Recovery(log logrus.FieldLogger) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(logrus.Fields{
					"request_id": GetRequestID(c),
					"method":     string(c.Method()),
					"path":       string(c.Path()),
					"panic":      fmt.Sprintf("%v", err),
					"stack":      string(debug.Stack()),
				}).Error("panic recovered")

				c.JSON(consts.StatusInternalServerError, utils.H{
					"code":    "INTERNAL_ERROR",
					"message": "Internal server error",
				})
				c.Abort()
			}
		}()

		c.Next(ctx)
	}
}

// Logger logs each request with its id, status and latency.
func Logger(log logrus.FieldLogger) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		path := string(c.Path())
		skipLogging := path == "/ping"

		requestID := string(c.Request.Header.Peek(RequestIDKey))
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Response.Header.Set(RequestIDKey, requestID)

		c.Next(ctx)

		if skipLogging {
			return
		}
		latency := time.Since(start)
		status := c.Response.StatusCode()
		entry := log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     string(c.Method()),
			"path":       path,
			"client_ip":  c.ClientIP(),
			"status":     status,
			"latency_ms": latency.Milliseconds(),
		})
		switch {
		case status >= 500:
			entry.Error("request completed with server error")
		case status >= 400:
			entry.Warn("request completed with client error")
		default:
			entry.Info("request completed")
		}
	}
}

// GetRequestID returns the id Logger assigned to the request.
func GetRequestID(c *app.RequestContext) string {
	return string(c.Response.Header.Peek(RequestIDKey))
}
