package server

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zachdehooge/mpg-dashboard/internal/dataset"
	"github.com/Zachdehooge/mpg-dashboard/internal/fetcher"
	"github.com/Zachdehooge/mpg-dashboard/internal/generator"
	"github.com/Zachdehooge/mpg-dashboard/internal/logging"
	"github.com/Zachdehooge/mpg-dashboard/internal/pipeline"
	"github.com/Zachdehooge/mpg-dashboard/internal/state"
)

const mpgCSV = `manufacturer,model,displ,year,cyl,trans,drv,cty,hwy,fl,class
audi,a4,1.8,1999,4,auto(l5),f,18,29,p,compact
audi,a4,2.0,2008,4,manual(m6),f,20,31,p,compact
chevrolet,k1500 tahoe 4wd,5.7,1999,8,auto(l4),4,11,15,r,suv
toyota,corolla,1.8,2008,4,manual(m5),f,28,37,r,compact
`

type fixture struct {
	engine   *route.Engine
	registry *Registry
	path     string
}

func newFixture(t *testing.T, src *pipeline.Sources) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mpg.csv")
	require.NoError(t, os.WriteFile(path, []byte(mpgCSV), 0644))

	renderer, err := generator.NewHTMLRenderer(generator.Options{Interactive: true, ChoroplethURL: ChoroplethPath})
	require.NoError(t, err)
	log := logging.Discard()

	reg := NewRegistry(time.Minute, func() *pipeline.Executor {
		return pipeline.NewExecutor(pipeline.Options{
			Store:    state.NewStore(),
			Cache:    dataset.NewCache(nil),
			Path:     path,
			Sources:  src,
			Renderer: renderer,
			Page:     pipeline.Page{Title: "Introduction to Streamlit", Header: "MPG Data Exploration"},
			Log:      log,
		})
	}, log)

	engine := route.NewEngine(config.NewOptions([]config.Option{}))
	Setup(engine, NewHandler(reg, src, time.Minute, log), log)
	return &fixture{engine: engine, registry: reg, path: path}
}

func sessionID(t *testing.T, resp *protocol.Response) string {
	t.Helper()
	cookie := protocol.AcquireCookie()
	defer protocol.ReleaseCookie(cookie)
	cookie.SetKey(SessionCookie)
	require.True(t, resp.Header.Cookie(cookie), "session cookie set")
	return string(cookie.Value())
}

func withSession(id string) ut.Header {
	return ut.Header{Key: "Cookie", Value: SessionCookie + "=" + id}
}

func form(key, value string) (*ut.Body, ut.Header) {
	body := "key=" + strings.ReplaceAll(key, " ", "+") + "&value=" + value
	return &ut.Body{Body: bytes.NewBufferString(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/x-www-form-urlencoded"}
}

func getView(t *testing.T, f *fixture, id string) frameView {
	t.Helper()
	resp := ut.PerformRequest(f.engine, "GET", "/api/view", nil, withSession(id)).Result()
	require.Equal(t, 200, resp.StatusCode())
	var v frameView
	require.NoError(t, sonic.Unmarshal(resp.Body(), &v))
	return v
}

func TestPing(t *testing.T) {
	f := newFixture(t, nil)
	resp := ut.PerformRequest(f.engine, "GET", "/ping", nil).Result()
	assert.Equal(t, 200, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "pong")
}

func TestIndexStartsSession(t *testing.T) {
	f := newFixture(t, nil)
	resp := ut.PerformRequest(f.engine, "GET", "/", nil).Result()

	assert.Equal(t, 200, resp.StatusCode())
	assert.Contains(t, string(resp.Header.ContentType()), "text/html")
	assert.Contains(t, string(resp.Body()), "Choose a year")
	assert.NotEmpty(t, resp.Header.Get(RequestIDKey))
	id := sessionID(t, resp)
	assert.Equal(t, 1, f.registry.Len())

	// the same cookie reuses the session
	resp = ut.PerformRequest(f.engine, "GET", "/", nil, withSession(id)).Result()
	assert.Equal(t, 200, resp.StatusCode())
	assert.Equal(t, 1, f.registry.Len())
}

func TestFormPostRedirectsAndFilters(t *testing.T) {
	f := newFixture(t, nil)
	id := sessionID(t, ut.PerformRequest(f.engine, "GET", "/", nil).Result())

	body, ct := form("Choose a year", "2008")
	resp := ut.PerformRequest(f.engine, "POST", "/widgets", body, ct, withSession(id)).Result()
	assert.Equal(t, 303, resp.StatusCode())
	assert.True(t, strings.HasSuffix(resp.Header.Get("Location"), "/"))

	v := getView(t, f, id)
	assert.Equal(t, "2008", v.Year)
	assert.Equal(t, 2, v.Rows)
}

func TestOutOfDomainIsRejected(t *testing.T) {
	f := newFixture(t, nil)
	id := sessionID(t, ut.PerformRequest(f.engine, "GET", "/", nil).Result())
	before := getView(t, f, id)

	body, ct := form("Choose a year", "2010")
	resp := ut.PerformRequest(f.engine, "POST", "/widgets", body, ct, withSession(id)).Result()
	assert.Equal(t, 400, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "OUTSIDE_DOMAIN")

	body, ct = form("Nope", "1")
	resp = ut.PerformRequest(f.engine, "POST", "/widgets", body, ct, withSession(id)).Result()
	assert.Equal(t, 400, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), "UNKNOWN_WIDGET")

	after := getView(t, f, id)
	assert.Equal(t, before.RenderedAt, after.RenderedAt, "no re-execution happened")
	assert.Equal(t, pipeline.AllYears, after.Year)
}

func TestJSONWidgets(t *testing.T) {
	f := newFixture(t, nil)
	id := sessionID(t, ut.PerformRequest(f.engine, "GET", "/", nil).Result())

	payload := `{"key":"Show Dataframe","value":"true"}`
	resp := ut.PerformRequest(f.engine, "POST", "/api/widgets",
		&ut.Body{Body: bytes.NewBufferString(payload), Len: len(payload)},
		ut.Header{Key: "Content-Type", Value: "application/json"}, withSession(id)).Result()
	require.Equal(t, 200, resp.StatusCode())

	var v frameView
	require.NoError(t, sonic.Unmarshal(resp.Body(), &v))
	assert.True(t, v.ShowTable)
	assert.Equal(t, 4, v.Rows)
	require.Len(t, v.Records, 5, "header plus rows")
	require.Len(t, v.Widgets, 2)
	assert.Equal(t, "checkbox", v.Widgets[0].Kind)
	assert.Equal(t, []string{"All", "1999", "2008"}, v.Widgets[1].Options)
	require.Len(t, v.Means, 2)
	assert.Equal(t, "compact", v.Means[0].Class)

	bad := `{"key":`
	resp = ut.PerformRequest(f.engine, "POST", "/api/widgets",
		&ut.Body{Body: bytes.NewBufferString(bad), Len: len(bad)}, withSession(id)).Result()
	assert.Equal(t, 400, resp.StatusCode())
}

func TestJSONWidgetsAcceptBoolAndNumber(t *testing.T) {
	f := newFixture(t, nil)
	id := sessionID(t, ut.PerformRequest(f.engine, "GET", "/", nil).Result())

	post := func(payload string) *protocol.Response {
		return ut.PerformRequest(f.engine, "POST", "/api/widgets",
			&ut.Body{Body: bytes.NewBufferString(payload), Len: len(payload)},
			ut.Header{Key: "Content-Type", Value: "application/json"}, withSession(id)).Result()
	}

	resp := post(`{"key":"Show Dataframe","value":true}`)
	require.Equal(t, 200, resp.StatusCode(), string(resp.Body()))
	var v frameView
	require.NoError(t, sonic.Unmarshal(resp.Body(), &v))
	assert.True(t, v.ShowTable)

	resp = post(`{"key":"Choose a year","value":2008}`)
	require.Equal(t, 200, resp.StatusCode(), string(resp.Body()))
	require.NoError(t, sonic.Unmarshal(resp.Body(), &v))
	assert.Equal(t, "2008", v.Year)

	for _, payload := range []string{
		`{"key":"Show Dataframe"}`,
		`{"key":"Show Dataframe","value":null}`,
		`{"key":"Show Dataframe","value":[true]}`,
	} {
		resp = post(payload)
		assert.Equal(t, 400, resp.StatusCode(), payload)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	f := newFixture(t, nil)
	a := sessionID(t, ut.PerformRequest(f.engine, "GET", "/", nil).Result())
	b := sessionID(t, ut.PerformRequest(f.engine, "GET", "/", nil).Result())
	require.NotEqual(t, a, b)

	body, ct := form("Choose a year", "1999")
	ut.PerformRequest(f.engine, "POST", "/widgets", body, ct, withSession(a))

	assert.Equal(t, "1999", getView(t, f, a).Year)
	assert.Equal(t, pipeline.AllYears, getView(t, f, b).Year)
}

func TestUnknownSessionGetsFreshOne(t *testing.T) {
	f := newFixture(t, nil)
	resp := ut.PerformRequest(f.engine, "GET", "/", nil, withSession("stale")).Result()
	assert.Equal(t, 200, resp.StatusCode())
	assert.NotEqual(t, "stale", sessionID(t, resp))
}

func TestChoroplethRoute(t *testing.T) {
	f := newFixture(t, nil)
	resp := ut.PerformRequest(f.engine, "GET", ChoroplethPath, nil).Result()
	assert.Equal(t, 404, resp.StatusCode())

	b, err := fetcher.ParseBoundaries([]byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"01001","geometry":{"type":"Point","coordinates":[0,0]}}]}`))
	require.NoError(t, err)
	f = newFixture(t, &pipeline.Sources{Boundaries: b, Statistics: []fetcher.Statistic{{Code: "01001", Value: 6}}})
	resp = ut.PerformRequest(f.engine, "GET", ChoroplethPath, nil).Result()
	require.Equal(t, 200, resp.StatusCode())
	assert.Contains(t, string(resp.Body()), `"fill":"#`)

	f = newFixture(t, &pipeline.Sources{BoundariesErr: &fetcher.FetchError{Source: "boundaries", URL: "http://x", Status: 502}})
	resp = ut.PerformRequest(f.engine, "GET", ChoroplethPath, nil).Result()
	assert.Equal(t, 503, resp.StatusCode())
}

func TestRegistrySweepAndReload(t *testing.T) {
	f := newFixture(t, nil)
	s, err := f.registry.Create()
	require.NoError(t, err)
	assert.Equal(t, 4, s.Executor.Frame().View.Len())

	require.NoError(t, os.WriteFile(f.path, []byte(strings.Join(strings.Split(mpgCSV, "\n")[:2], "\n")+"\n"), 0644))
	f.registry.ReloadAll()
	assert.Equal(t, 1, s.Executor.Frame().View.Len())

	assert.Equal(t, 0, f.registry.Sweep())
	f.registry.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	assert.Equal(t, 1, f.registry.Sweep())
	_, ok := f.registry.Get(s.ID)
	assert.False(t, ok)
}
