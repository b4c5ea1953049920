package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachdehooge/mpg-dashboard/internal/logging"
	"github.com/Zachdehooge/mpg-dashboard/internal/pipeline"
	"github.com/Zachdehooge/mpg-dashboard/internal/state"
)

func newTestExecutor(t *testing.T) *pipeline.Executor {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mpg.csv")
	require.NoError(t, os.WriteFile(path, []byte(`manufacturer,model,displ,year,cyl,trans,drv,cty,hwy,fl,class
audi,a4,1.8,1999,4,auto(l5),f,18,29,p,compact
audi,a4,2.0,2008,4,manual(m6),f,20,31,p,compact
`), 0644))
	e := pipeline.NewExecutor(pipeline.Options{Path: path, Log: logging.Discard()})
	_, err := e.Run()
	require.NoError(t, err)
	return e
}

func TestApplySelection(t *testing.T) {
	e := newTestExecutor(t)
	require.NoError(t, applySelection(e, "2008", true))
	assert.Equal(t, "2008", e.Store().Get(pipeline.YearKey))
	assert.True(t, e.Frame().ShowTable)
	assert.Equal(t, 1, e.Frame().View.Len())
}

func TestApplySelectionRejectsUnknownYear(t *testing.T) {
	e := newTestExecutor(t)
	err := applySelection(e, "1970", false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, state.ErrOutsideDomain))
	assert.Equal(t, pipeline.AllYears, e.Store().Get(pipeline.YearKey))
}

func TestClampInterval(t *testing.T) {
	defer func(old int) { interval = old }(interval)

	interval = 1
	assert.Equal(t, 5, clampInterval())
	interval = 60
	assert.Equal(t, 60, clampInterval())
}
