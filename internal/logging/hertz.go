package logging

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/sirupsen/logrus"
)

// HertzLogger routes hertz's hlog output into logrus.
type HertzLogger struct {
	entry *logrus.Entry
}

var _ hlog.FullLogger = (*HertzLogger)(nil)

// NewHertzLogger tags every hertz line with component=hertz.
func NewHertzLogger(log logrus.FieldLogger) *HertzLogger {
	return &HertzLogger{entry: Component(log, "hertz")}
}

func (h *HertzLogger) Trace(v ...interface{})  { h.entry.Trace(formatMessage(v...)) }
func (h *HertzLogger) Debug(v ...interface{})  { h.entry.Debug(formatMessage(v...)) }
func (h *HertzLogger) Info(v ...interface{})   { h.entry.Info(formatMessage(v...)) }
func (h *HertzLogger) Notice(v ...interface{}) { h.entry.Info(formatMessage(v...)) }
func (h *HertzLogger) Warn(v ...interface{})   { h.entry.Warn(formatMessage(v...)) }
func (h *HertzLogger) Error(v ...interface{})  { h.entry.Error(formatMessage(v...)) }

// Fatal is logged at error level; hertz must not exit the process.
func (h *HertzLogger) Fatal(v ...interface{}) { h.entry.Error(formatMessage(v...)) }

func (h *HertzLogger) Tracef(format string, v ...interface{})  { h.entry.Tracef(format, v...) }
func (h *HertzLogger) Debugf(format string, v ...interface{})  { h.entry.Debugf(format, v...) }
func (h *HertzLogger) Infof(format string, v ...interface{})   { h.entry.Infof(format, v...) }
func (h *HertzLogger) Noticef(format string, v ...interface{}) { h.entry.Infof(format, v...) }
func (h *HertzLogger) Warnf(format string, v ...interface{})   { h.entry.Warnf(format, v...) }
func (h *HertzLogger) Errorf(format string, v ...interface{})  { h.entry.Errorf(format, v...) }
func (h *HertzLogger) Fatalf(format string, v ...interface{})  { h.entry.Errorf(format, v...) }

func (h *HertzLogger) CtxTracef(ctx context.Context, format string, v ...interface{}) {
	h.entry.WithContext(ctx).Tracef(format, v...)
}

func (h *HertzLogger) CtxDebugf(ctx context.Context, format string, v ...interface{}) {
	h.entry.WithContext(ctx).Debugf(format, v...)
}

func (h *HertzLogger) CtxInfof(ctx context.Context, format string, v ...interface{}) {
	h.entry.WithContext(ctx).Infof(format, v...)
}

func (h *HertzLogger) CtxNoticef(ctx context.Context, format string, v ...interface{}) {
	h.entry.WithContext(ctx).Infof(format, v...)
}

func (h *HertzLogger) CtxWarnf(ctx context.Context, format string, v ...interface{}) {
	h.entry.WithContext(ctx).Warnf(format, v...)
}

func (h *HertzLogger) CtxErrorf(ctx context.Context, format string, v ...interface{}) {
	h.entry.WithContext(ctx).Errorf(format, v...)
}

func (h *HertzLogger) CtxFatalf(ctx context.Context, format string, v ...interface{}) {
	h.entry.WithContext(ctx).Errorf(format, v...)
}

// SetLevel is a no-op; the logrus level set in Setup applies.
func (h *HertzLogger) SetLevel(hlog.Level) {}

// SetOutput is a no-op; the logrus output set in Setup applies.
func (h *HertzLogger) SetOutput(io.Writer) {}

func formatMessage(v ...interface{}) string {
	if len(v) == 1 {
		if s, ok := v[0].(string); ok {
			return s
		}
	}
	return fmt.Sprint(v...)
}
