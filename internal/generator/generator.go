// Package generator renders dashboard frames as a single HTML page.
package generator

import (
	"bytes"
	"html/template"
	"io"

	"github.com/bytedance/sonic"
	"github.com/natefinch/atomic"
	"github.com/pkg/errors"

	"github.com/Zachdehooge/mpg-dashboard/internal/pipeline"
)

// DefaultActionURL is where interactive widget forms post.
const DefaultActionURL = "/widgets"

// Options tunes the HTML renderer.
type Options struct {
	// Interactive renders live widget forms; otherwise widgets are shown
	// disabled with their current values.
	Interactive bool
	ActionURL   string
	// ChoroplethURL makes the browser fetch the region GeoJSON instead of
	// inlining it into the page.
	ChoroplethURL string
	// Refresh adds a meta refresh every Refresh seconds when positive.
	Refresh int
}

// HTMLRenderer implements pipeline.Renderer.
type HTMLRenderer struct {
	tmpl *template.Template
	opts Options
}

// NewHTMLRenderer parses the page template once.
func NewHTMLRenderer(opts Options) (*HTMLRenderer, error) {
	if opts.ActionURL == "" {
		opts.ActionURL = DefaultActionURL
	}
	tmpl, err := template.New("dashboard").Funcs(template.FuncMap{
		"toJSON": toJSON,
	}).Parse(pageTemplate)
	if err != nil {
		return nil, errors.Wrap(err, "parsing page template")
	}
	return &HTMLRenderer{tmpl: tmpl, opts: opts}, nil
}

// Render writes f as a complete HTML document.
func (r *HTMLRenderer) Render(w io.Writer, f *pipeline.Frame) error {
	data, err := buildPage(f, r.opts)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return errors.Wrap(err, "executing page template")
	}
	_, err = buf.WriteTo(w)
	return err
}

// WriteHTML replaces path with data without ever exposing a partial file.
func WriteHTML(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func toJSON(v interface{}) (template.JS, error) {
	b, err := sonic.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}
