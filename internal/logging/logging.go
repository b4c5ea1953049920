package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Zachdehooge/mpg-dashboard/internal/config"
)

// Setup builds the process logger from cfg and installs it as the logrus
// standard logger as well.
func Setup(cfg config.LogConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var writer io.Writer
	switch cfg.Output {
	case "", "stderr":
		writer = os.Stderr
	case "stdout":
		writer = os.Stdout
	case "file":
		if cfg.FilePath == "" {
			return nil, fmt.Errorf("log file path is required when output is 'file'")
		}
		// closed by Close
		file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		writer = file
	default:
		return nil, fmt.Errorf("invalid log output: %s", cfg.Output)
	}

	var formatter logrus.Formatter
	switch cfg.Format {
	case "", "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"}
	case "json":
		formatter = &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	default:
		return nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetOutput(writer)
	log.SetFormatter(formatter)

	logrus.SetLevel(level)
	logrus.SetOutput(writer)
	logrus.SetFormatter(formatter)

	log.WithFields(logrus.Fields{
		"level":  cfg.Level,
		"format": cfg.Format,
		"output": cfg.Output,
	}).Debug("logger initialized")
	return log, nil
}

// Close releases the log file opened for the 'file' output and points both
// loggers back at stderr. Other outputs are left open.
func Close(log *logrus.Logger) error {
	if log == nil {
		return nil
	}
	f, ok := log.Out.(*os.File)
	if !ok || f == os.Stdout || f == os.Stderr {
		return nil
	}
	log.SetOutput(os.Stderr)
	if logrus.StandardLogger().Out == f {
		logrus.SetOutput(os.Stderr)
	}
	return f.Close()
}

// Component returns an entry tagged with the component name, the structured
// stand-in for a "[component]" log prefix.
func Component(log logrus.FieldLogger, name string) *logrus.Entry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithField("component", name)
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
