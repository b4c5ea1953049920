package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/Zachdehooge/mpg-dashboard/internal/figure"
	"github.com/Zachdehooge/mpg-dashboard/internal/pipeline"
	"github.com/Zachdehooge/mpg-dashboard/internal/state"
)

// SessionCookie carries the session id.
const SessionCookie = "mpgdash_session"

// ChoroplethPath serves the joined region GeoJSON.
const ChoroplethPath = "/choropleth.geojson"

// Handler serves the dashboard routes.
type Handler struct {
	sessions *Registry
	sources  *pipeline.Sources
	maxAge   int
	log      logrus.FieldLogger

	geoOnce sync.Once
	geo     []byte
	geoErr  error
}

// NewHandler serves sessions from reg; sources feed the GeoJSON route.
func NewHandler(reg *Registry, sources *pipeline.Sources, ttl time.Duration, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		sessions: reg,
		sources:  sources,
		maxAge:   int(ttl / time.Second),
		log:      log.WithField("component", "handler"),
	}
}

// session resolves the caller's session, starting one when the cookie is
// missing or expired.
func (h *Handler) session(c *app.RequestContext) (*Session, error) {
	if id := string(c.Cookie(SessionCookie)); id != "" {
		if s, ok := h.sessions.Get(id); ok {
			return s, nil
		}
	}
	s, err := h.sessions.Create()
	if err != nil {
		return nil, err
	}
	c.SetCookie(SessionCookie, s.ID, h.maxAge, "/", "", protocol.CookieSameSiteLaxMode, false, true)
	return s, nil
}

// Index renders the dashboard page for the caller's session.
func (h *Handler) Index(ctx context.Context, c *app.RequestContext) {
	s, err := h.session(c)
	if err != nil {
		h.serverError(c, err)
		return
	}
	out := s.Executor.Output()
	if len(out) == 0 {
		err := s.Executor.Err()
		if err == nil {
			err = errors.New("no rendered output")
		}
		h.serverError(c, err)
		return
	}
	c.Data(consts.StatusOK, "text/html; charset=utf-8", out)
}

// SetWidget applies a form post and redirects back to the page.
func (h *Handler) SetWidget(ctx context.Context, c *app.RequestContext) {
	s, err := h.session(c)
	if err != nil {
		h.serverError(c, err)
		return
	}
	if err := s.Executor.Set(c.PostForm("key"), c.PostForm("value")); err != nil {
		h.widgetError(c, err)
		return
	}
	c.Redirect(consts.StatusSeeOther, []byte("/"))
}

type widgetRequest struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// widgetValue turns a JSON string, bool or number into the store's string
// form. Checkbox values go through the store's ParseBool normalisation.
func widgetValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", errors.New("missing value")
	}
	switch raw[0] {
	case '"':
		var s string
		if err := sonic.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errors.New("value must be a string, bool or number")
	default:
		var v interface{}
		if err := sonic.Unmarshal(raw, &v); err != nil {
			return "", err
		}
		return string(raw), nil
	}
}

// SetWidgetJSON applies a JSON widget change and returns the new view.
func (h *Handler) SetWidgetJSON(ctx context.Context, c *app.RequestContext) {
	s, err := h.session(c)
	if err != nil {
		h.serverError(c, err)
		return
	}
	var req widgetRequest
	if err := sonic.Unmarshal(c.Request.Body(), &req); err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"code": "BAD_REQUEST", "message": "invalid JSON body"})
		return
	}
	value, err := widgetValue(req.Value)
	if err != nil {
		c.JSON(consts.StatusBadRequest, utils.H{"code": "BAD_REQUEST", "message": err.Error()})
		return
	}
	if err := s.Executor.Set(req.Key, value); err != nil {
		h.widgetError(c, err)
		return
	}
	h.writeView(c, s.Executor.Frame())
}

// View returns the current frame of the caller's session as JSON.
func (h *Handler) View(ctx context.Context, c *app.RequestContext) {
	s, err := h.session(c)
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.writeView(c, s.Executor.Frame())
}

// Choropleth serves the joined region GeoJSON, built once.
func (h *Handler) Choropleth(ctx context.Context, c *app.RequestContext) {
	if h.sources == nil || (h.sources.Boundaries == nil && h.sources.ChoroplethErr() == nil) {
		c.JSON(consts.StatusNotFound, utils.H{"code": "NOT_FOUND", "message": "no choropleth configured"})
		return
	}
	if err := h.sources.ChoroplethErr(); err != nil {
		c.JSON(consts.StatusServiceUnavailable, utils.H{"code": "UNAVAILABLE", "message": err.Error()})
		return
	}
	h.geoOnce.Do(func() {
		h.geo, h.geoErr = figure.JoinChoropleth(h.sources.Boundaries, h.sources.Statistics).GeoJSON()
	})
	if h.geoErr != nil {
		h.serverError(c, h.geoErr)
		return
	}
	c.Data(consts.StatusOK, "application/geo+json", h.geo)
}

// Ping is the liveness check.
func (h *Handler) Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"status":   "ok",
		"message":  "pong",
		"sessions": h.sessions.Len(),
	})
}

func (h *Handler) widgetError(c *app.RequestContext, err error) {
	switch {
	case errors.Is(err, state.ErrUnknownWidget):
		c.JSON(consts.StatusBadRequest, utils.H{"code": "UNKNOWN_WIDGET", "message": err.Error()})
	case errors.Is(err, state.ErrOutsideDomain):
		c.JSON(consts.StatusBadRequest, utils.H{"code": "OUTSIDE_DOMAIN", "message": err.Error()})
	default:
		h.serverError(c, err)
	}
}

func (h *Handler) serverError(c *app.RequestContext, err error) {
	h.log.WithError(err).WithField("request_id", GetRequestID(c)).Error("request failed")
	c.JSON(consts.StatusInternalServerError, utils.H{"code": "INTERNAL_ERROR", "message": err.Error()})
}

type widgetView struct {
	Key     string   `json:"key"`
	Kind    string   `json:"kind"`
	Label   string   `json:"label"`
	Value   string   `json:"value"`
	Options []string `json:"options,omitempty"`
}

type meanView struct {
	Class string   `json:"class"`
	Displ *float64 `json:"displ"`
	Hwy   *float64 `json:"hwy"`
	Count int      `json:"count"`
}

type figuresView struct {
	EnginePoints      int      `json:"engine_points"`
	FixedPoints       int      `json:"fixed_points"`
	MapPoints         int      `json:"map_points"`
	PointsError       string   `json:"points_error,omitempty"`
	ChoroplethRegions int      `json:"choropleth_regions"`
	ChoroplethMapped  int      `json:"choropleth_mapped"`
	Unmapped          []string `json:"unmapped,omitempty"`
	ChoroplethError   string   `json:"choropleth_error,omitempty"`
}

type frameView struct {
	Year       string       `json:"year,omitempty"`
	ShowTable  bool         `json:"show_table"`
	Widgets    []widgetView `json:"widgets"`
	Rows       int          `json:"rows"`
	Records    [][]string   `json:"records,omitempty"`
	Means      []meanView   `json:"means"`
	Figures    figuresView  `json:"figures"`
	Error      string       `json:"error,omitempty"`
	RenderedAt time.Time    `json:"rendered_at"`
}

func (h *Handler) writeView(c *app.RequestContext, f *pipeline.Frame) {
	if f == nil {
		h.serverError(c, errors.New("session has no frame"))
		return
	}
	body, err := sonic.Marshal(newFrameView(f))
	if err != nil {
		h.serverError(c, errors.Wrap(err, "encoding view"))
		return
	}
	c.Data(consts.StatusOK, "application/json; charset=utf-8", body)
}

func newFrameView(f *pipeline.Frame) frameView {
	v := frameView{
		ShowTable:  f.ShowTable,
		Widgets:    make([]widgetView, 0, len(f.Widgets)),
		Means:      []meanView{},
		RenderedAt: f.RenderedAt,
	}
	if f.Err != nil {
		v.Error = f.Err.Error()
	}
	for _, w := range f.Widgets {
		v.Widgets = append(v.Widgets, widgetView{
			Key: w.Key, Kind: w.Kind.String(), Label: w.Label, Value: w.Value, Options: w.Options,
		})
	}
	if f.View == nil {
		return v
	}

	v.Year = f.View.Year
	v.Rows = f.View.Len()
	if f.ShowTable {
		v.Records = f.View.Records()
	}
	for _, m := range f.View.Means {
		v.Means = append(v.Means, meanView{Class: m.Class, Displ: finite(m.Displ), Hwy: finite(m.Hwy), Count: m.Count})
	}

	figs := f.Figures
	if figs.Engine != nil {
		v.Figures.EnginePoints = figs.Engine.Len()
	}
	if figs.Fixed != nil {
		v.Figures.FixedPoints = figs.Fixed.Len()
	}
	if figs.PointsErr != nil {
		v.Figures.PointsError = figs.PointsErr.Error()
	} else if figs.Points != nil {
		v.Figures.MapPoints = len(figs.Points.Points)
	}
	if figs.ChoroplethErr != nil {
		v.Figures.ChoroplethError = figs.ChoroplethErr.Error()
	} else if figs.Choropleth != nil {
		v.Figures.ChoroplethRegions = len(figs.Choropleth.Regions)
		v.Figures.ChoroplethMapped = figs.Choropleth.Mapped()
		v.Figures.Unmapped = figs.Choropleth.Unmapped
	}
	return v
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
