package report

import (
	"io"
	"os"

	"github.com/MoochMcGee/wiiu-emu/compare"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"golang.org/x/exp/slices"
)

type count struct {
	name string
	n    int
}

// sortedCounts orders counts by descending n, then by name.
func sortedCounts(m map[string]int) []count {
	out := make([]count, 0, len(m))
	for name, n := range m {
		out = append(out, count{name, n})
	}
	slices.SortFunc(out, func(a, b count) int {
		if a.n != b.n {
			return b.n - a.n
		}
		switch {
		case a.name < b.name:
			return -1
		case a.name > b.name:
			return 1
		}
		return 0
	})
	return out
}

func bar(title, subtitle, series string, counts []count) *charts.Bar {
	b := charts.NewBar()
	b.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	names := make([]string, len(counts))
	data := make([]opts.BarData, len(counts))
	for i, c := range counts {
		names[i] = c.name
		data[i] = opts.BarData{Value: c.n}
	}
	b.SetXAxis(names).AddSeries(series, data)
	return b
}

// WriteChart renders an HTML page with mismatches per instruction and per
// register field.
func WriteChart(w io.Writer, r *compare.Report) error {
	fields := make(map[string]int)
	for _, m := range r.Mismatches {
		fields[m.Field]++
	}

	page := components.NewPage()
	page.AddCharts(
		bar("Mismatches per instruction", r.Engine, "mismatches", sortedCounts(r.ByFile())),
		bar("Mismatches per field", r.Engine, "mismatches", sortedCounts(fields)),
	)
	return page.Render(w)
}

// WriteChartFile is WriteChart into a new file at path.
func WriteChartFile(path string, r *compare.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteChart(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
