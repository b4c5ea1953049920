package pipeline

import (
	"bytes"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/Zachdehooge/mpg-dashboard/internal/dataset"
	"github.com/Zachdehooge/mpg-dashboard/internal/figure"
	"github.com/Zachdehooge/mpg-dashboard/internal/state"
)

// Phase is the executor's state machine position.
type Phase int32

const (
	Idle Phase = iota
	Rendering
)

func (p Phase) String() string {
	if p == Rendering {
		return "rendering"
	}
	return "idle"
}

// Options wires an executor.
type Options struct {
	Store    *state.Store
	Cache    *dataset.Cache
	Path     string
	Sources  *Sources
	Renderer Renderer
	Page     Page
	Log      logrus.FieldLogger
	Now      func() time.Time
}

// Executor re-runs the whole derivation on every accepted widget change.
// Runs are serialised; a renderer must not call back into the store.
type Executor struct {
	mu       sync.Mutex
	phase    atomic.Int32
	store    *state.Store
	cache    *dataset.Cache
	path     string
	sources  *Sources
	renderer Renderer
	page     Page
	log      logrus.FieldLogger
	now      func() time.Time

	frame  *Frame
	output []byte
	err    error
}

// NewExecutor subscribes a new executor to opts.Store. It does not run; call
// Run for the initial render.
func NewExecutor(opts Options) *Executor {
	if opts.Store == nil {
		opts.Store = state.NewStore()
	}
	if opts.Cache == nil {
		opts.Cache = dataset.NewCache(nil)
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Renderer == nil {
		opts.Renderer = RendererFunc(func(io.Writer, *Frame) error { return nil })
	}
	e := &Executor{
		store:    opts.Store,
		cache:    opts.Cache,
		path:     opts.Path,
		sources:  opts.Sources,
		renderer: opts.Renderer,
		page:     opts.Page,
		log:      opts.Log.WithField("component", "executor"),
		now:      opts.Now,
	}
	opts.Store.Subscribe(e.onStateChange)
	return e
}

func (e *Executor) onStateChange(key string) {
	if _, err := e.Run(); err != nil {
		e.log.WithError(err).WithField("widget", key).Error("re-execution failed")
	}
}

// Set forwards a user interaction to the store. Invalid input is rejected
// without running; accepted input runs the pipeline before Set returns.
func (e *Executor) Set(key, value string) error {
	if err := e.store.Set(key, value); err != nil {
		label := key
		if errors.Is(err, state.ErrUnknownWidget) {
			label = "unknown"
		}
		widgetSetsTotal.WithLabelValues(label, "rejected").Inc()
		return err
	}
	widgetSetsTotal.WithLabelValues(key, "accepted").Inc()
	return e.Err()
}

// Run performs one full pass: dataset, widgets, derived view, figures,
// render.
func (e *Executor) Run() (*Frame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.phase.Store(int32(Rendering))
	defer e.phase.Store(int32(Idle))

	timer := prometheus.NewTimer(executionDuration)
	defer timer.ObserveDuration()

	frame, outcome := e.execute()

	var buf bytes.Buffer
	if err := e.renderer.Render(&buf, frame); err != nil {
		executionsTotal.WithLabelValues(outcomeRenderError).Inc()
		e.frame, e.output, e.err = frame, nil, errors.Wrap(err, "rendering frame")
		return frame, e.err
	}
	executionsTotal.WithLabelValues(outcome).Inc()

	e.frame, e.output, e.err = frame, buf.Bytes(), nil
	e.log.WithFields(logrus.Fields{
		"outcome": outcome,
		"year":    e.store.Get(YearKey),
		"bytes":   buf.Len(),
	}).Debug("frame rendered")
	return frame, nil
}

// Reload reads the dataset again and runs. A failed read is memoised and
// rendered by Run like any other load error.
func (e *Executor) Reload() (*Frame, error) {
	if _, err := e.cache.Reload(e.path); err != nil {
		e.log.WithError(err).Warn("dataset reload failed")
	} else {
		e.log.WithField("loads", e.cache.Loads()).Debug("dataset reloaded")
	}
	return e.Run()
}

func (e *Executor) execute() (*Frame, string) {
	f := &Frame{Page: e.page, RenderedAt: e.now()}

	ds, err := e.cache.Get(e.path)
	if err != nil {
		f.Err = err
		return f, outcomeLoadError
	}

	show := e.store.Declare(state.Checkbox(ShowDataKey, ShowDataKey, false))
	year := e.store.Declare(state.SelectBox(YearKey, YearKey, YearOptions(ds), AllYears))
	f.ShowTable = show == "true"
	f.Widgets = e.store.Widgets()

	view, err := Derive(ds, Selection{Year: year})
	if err != nil {
		f.Err = err
		return f, outcomeDeriveError
	}
	f.View = view
	f.Figures = BuildFigures(view, e.sources)
	return f, outcomeOK
}

// BuildFigures constructs every figure description from a derived view and
// the shared sources.
func BuildFigures(view *DerivedView, src *Sources) Figures {
	displ := view.Column(dataset.ColDispl)
	hwy := view.Column(dataset.ColHwy)
	figs := Figures{
		Engine: figure.EngineScatter(displ, hwy, view.MeanPoints()),
		Fixed:  figure.FixedScatter(displ, hwy),
	}
	if src == nil {
		return figs
	}

	switch {
	case src.PointsErr != nil:
		figs.PointsErr = src.PointsErr
	case src.Points != nil:
		figs.Points = figure.NewPointMap(src.Points)
	}

	switch err := src.ChoroplethErr(); {
	case err != nil:
		figs.ChoroplethErr = err
	case src.Boundaries != nil:
		figs.Choropleth = figure.JoinChoropleth(src.Boundaries, src.Statistics)
	}
	return figs
}

// Frame is the most recent frame, nil before the first Run.
func (e *Executor) Frame() *Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frame
}

// Output is a copy of the most recent rendered output.
func (e *Executor) Output() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]byte, len(e.output))
	copy(out, e.output)
	return out
}

// Err is the render error of the most recent run, if any.
func (e *Executor) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.err
}

// Phase reports Idle or Rendering without waiting for a run to finish.
func (e *Executor) Phase() Phase {
	return Phase(e.phase.Load())
}

// Store is the widget store the executor listens to.
func (e *Executor) Store() *state.Store { return e.store }
