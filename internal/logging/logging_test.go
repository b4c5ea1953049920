package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachdehooge/mpg-dashboard/internal/config"
)

func TestSetup(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)

	log, err := Setup(config.LogConfig{Level: "warn", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
}

func TestSetupFile(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	path := filepath.Join(t.TempDir(), "dash.log")

	log, err := Setup(config.LogConfig{Level: "info", Format: "text", Output: "file", FilePath: path})
	require.NoError(t, err)
	log.Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestCloseReleasesLogFile(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	path := filepath.Join(t.TempDir(), "dash.log")

	log, err := Setup(config.LogConfig{Level: "info", Format: "text", Output: "file", FilePath: path})
	require.NoError(t, err)
	file, ok := log.Out.(*os.File)
	require.True(t, ok)

	require.NoError(t, Close(log))
	assert.Equal(t, os.Stderr, log.Out)
	assert.Equal(t, os.Stderr, logrus.StandardLogger().Out)
	_, err = file.Write([]byte("late"))
	assert.Error(t, err, "the file handle is closed")
}

func TestCloseLeavesStdStreamsOpen(t *testing.T) {
	log, err := Setup(config.LogConfig{Level: "info", Output: "stdout"})
	require.NoError(t, err)
	defer logrus.SetOutput(os.Stderr)

	require.NoError(t, Close(log))
	assert.Equal(t, os.Stdout, log.Out)
	assert.NoError(t, Close(nil))
}

func TestSetupRejectsBadValues(t *testing.T) {
	_, err := Setup(config.LogConfig{Level: "chatty"})
	assert.Error(t, err)

	_, err = Setup(config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)

	_, err = Setup(config.LogConfig{Level: "info", Output: "file"})
	assert.Error(t, err)

	_, err = Setup(config.LogConfig{Level: "info", Output: "syslog"})
	assert.Error(t, err)
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	Component(log, "executor").Info("ran")
	assert.Contains(t, buf.String(), `"component":"executor"`)
}

func TestHertzLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	h := NewHertzLogger(log)
	h.Infof("listening on %s", ":8080")
	h.Fatal("not fatal")
	h.Debug("a", 1)

	out := buf.String()
	assert.Contains(t, out, "component=hertz")
	assert.Contains(t, out, "listening on :8080")
	assert.Contains(t, out, "level=error msg=\"not fatal\"")
	assert.Contains(t, out, "a1")
}
