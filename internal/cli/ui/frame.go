package ui

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/Zachdehooge/mpg-dashboard/internal/figure"
	"github.com/Zachdehooge/mpg-dashboard/internal/pipeline"
)

// TerminalRenderer implements pipeline.Renderer for a terminal.
type TerminalRenderer struct {
	// MaxRows caps the raw table; zero prints every row.
	MaxRows int
	// Widgets prints the current widget values above the views.
	Widgets bool
}

// Render writes f as styled text.
func (r *TerminalRenderer) Render(w io.Writer, f *pipeline.Frame) error {
	if f == nil {
		return errors.New("nil frame")
	}
	fmt.Fprintln(w, Styles.Title.Render(f.Title))
	fmt.Fprintln(w, Styles.Header.Render(f.Header))

	if f.Err != nil {
		fmt.Fprintln(w, Styles.ErrorBox.Render(errorColor.Sprint("Nothing to show")+"\n\n"+f.Err.Error()))
		return nil
	}

	if r.Widgets {
		for _, wd := range f.Widgets {
			fmt.Fprintf(w, "%s: %s\n", Styles.Muted.Render(wd.Label), wd.Value)
		}
	}

	if f.View == nil {
		return nil
	}

	if f.ShowTable {
		fmt.Fprintln(w, Styles.Subheader.Render(f.Subheader))
		r.writeRows(w, f.View)
	}

	fmt.Fprintln(w, Styles.Subheader.Render(fmt.Sprintf("Class means (year: %s)", f.View.Year)))
	WriteMeans(w, f.View.Means)

	for _, s := range []*figure.Scatter{f.Figures.Engine, f.Figures.Fixed} {
		if s != nil {
			fmt.Fprintln(w, Styles.Muted.Render(describeScatter(s)))
		}
	}
	fmt.Fprintf(w, "Data Source: %s\n", f.SourceURL)

	fmt.Fprintln(w, Styles.Subheader.Render("Point Map"))
	switch {
	case f.Figures.PointsErr != nil:
		FprintError(w, "point map unavailable: %v", f.Figures.PointsErr)
	case f.Figures.Points != nil:
		pm := f.Figures.Points
		fmt.Fprintf(w, "%d points centred on %.4f, %.4f\n", len(pm.Points), pm.Center.Lat, pm.Center.Lon)
	default:
		fmt.Fprintln(w, Styles.Muted.Render("no point data configured"))
	}

	fmt.Fprintln(w, Styles.Subheader.Render("Choropleth Map"))
	switch {
	case f.Figures.ChoroplethErr != nil:
		FprintError(w, "choropleth unavailable: %v", f.Figures.ChoroplethErr)
	case f.Figures.Choropleth != nil:
		c := f.Figures.Choropleth
		fmt.Fprintf(w, "%d of %d regions coloured on %s %g-%g\n", c.Mapped(), len(c.Regions), c.ColorScale, c.ZMin, c.ZMax)
		if len(c.Unmapped) > 0 {
			fmt.Fprintln(w, Styles.NoticeBox.Render(fmt.Sprintf("%d region codes have no boundary: %s",
				len(c.Unmapped), strings.Join(c.Unmapped, ", "))))
		}
	default:
		fmt.Fprintln(w, Styles.Muted.Render("no choropleth sources configured"))
	}
	return nil
}

func (r *TerminalRenderer) writeRows(w io.Writer, v *pipeline.DerivedView) {
	records := v.Records()
	if len(records) == 0 {
		return
	}
	rows := records[1:]
	truncated := 0
	if r.MaxRows > 0 && len(rows) > r.MaxRows {
		truncated = len(rows) - r.MaxRows
		rows = rows[:r.MaxRows]
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(records[0])
	for _, row := range rows {
		table.Append(row)
	}
	table.Render()
	if truncated > 0 {
		fmt.Fprintln(w, Styles.Muted.Render(fmt.Sprintf("... %d more rows", truncated)))
	}
}

// WriteMeans prints the per-class means as a table.
func WriteMeans(w io.Writer, means []pipeline.GroupMean) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"class", "displ", "hwy", "rows"})
	for _, m := range means {
		table.Append([]string{m.Class, formatMean(m.Displ), formatMean(m.Hwy), fmt.Sprint(m.Count)})
	}
	table.Render()
}

func describeScatter(s *figure.Scatter) string {
	return fmt.Sprintf("%s: %d points, %dx%d px", s.Title, s.Len(), s.Width, s.Height)
}

func formatMean(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
