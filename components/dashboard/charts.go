package dashboard

import (
	"bytes"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	goerrors "github.com/goliatone/go-errors"
)

// ChartKind names the go-echarts chart a widget draws.
type ChartKind string

const (
	ChartLine ChartKind = "line"
	ChartBar  ChartKind = "bar"
	ChartPie  ChartKind = "pie"
)

const chartHeight = "320px"

// Chart is what a provider hands to the renderer. Labels name the x axis
// ticks, or the slices of a pie.
type Chart struct {
	Kind      ChartKind     `json:"kind"`
	Title     string        `json:"title"`
	Subtitle  string        `json:"subtitle,omitempty"`
	Labels    []string      `json:"labels"`
	Series    []ChartSeries `json:"series"`
	Theme     string        `json:"theme,omitempty"`
	ShowTitle bool          `json:"show_title,omitempty"`
}

// ChartSeries is one legend entry; Values line up with Chart.Labels.
type ChartSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ThemeResolver picks a chart theme per viewer. Empty means the default.
type ThemeResolver func(ViewerContext) string

// ChartRenderer turns Chart values into embeddable go-echarts HTML.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	themeFor   ThemeResolver
	assetsHost string
}

// ChartOption configures a ChartRenderer.
type ChartOption func(*ChartRenderer)

// WithChartCache memoizes rendered HTML per widget instance.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) { r.cache = cache }
}

// WithChartTheme sets the theme used when no resolver answers.
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartThemeResolver picks the theme from the viewer.
func WithChartThemeResolver(resolve ThemeResolver) ChartOption {
	return func(r *ChartRenderer) { r.themeFor = resolve }
}

// WithChartAssetsHost loads the echarts scripts from host instead of the
// go-echarts CDN.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) { r.assetsHost = host }
}

// NewChartRenderer builds a renderer. Without WithChartCache every call renders.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{theme: types.ThemeWesteros}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render draws chart for a widget instance and returns the widget payload:
// chart_html plus the title, subtitle, kind and theme it used.
func (r *ChartRenderer) Render(inst WidgetInstance, viewer ViewerContext, chart Chart) (WidgetData, error) {
	if len(chart.Series) == 0 {
		return nil, goerrors.New("chart has no series", goerrors.CategoryBadInput)
	}
	if chart.Theme == "" {
		chart.Theme = r.themeOf(viewer)
	}
	draw := func() (string, error) { return r.draw(chart) }

	var (
		html string
		err  error
	)
	if key := cacheKey(inst); r.cache != nil && key != "" {
		html, err = r.cache.Chart(key, fingerprint(chart, r.assetsHost), draw)
	} else {
		html, err = draw()
	}
	if err != nil {
		return nil, err
	}
	return WidgetData{
		"chart_html": html,
		"chart_type": string(chart.Kind),
		"title":      chart.Title,
		"subtitle":   chart.Subtitle,
		"theme":      chart.Theme,
	}, nil
}

func (r *ChartRenderer) themeOf(viewer ViewerContext) string {
	if r.themeFor != nil {
		if theme := r.themeFor(viewer); theme != "" {
			return theme
		}
	}
	return r.theme
}

func (r *ChartRenderer) draw(chart Chart) (string, error) {
	title := ""
	if chart.ShowTitle {
		title = chart.Title
	}
	init := opts.Initialization{Theme: chart.Theme, Width: "100%", Height: chartHeight}
	if r.assetsHost != "" {
		init.AssetsHost = r.assetsHost
	}
	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(init),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: chart.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(len(chart.Series) > 1 || chart.Kind == ChartPie)}),
	}

	switch chart.Kind {
	case ChartLine:
		line := charts.NewLine()
		line.SetGlobalOptions(global...)
		line.SetXAxis(chart.Labels)
		for _, s := range chart.Series {
			data := make([]opts.LineData, len(s.Values))
			for i, v := range s.Values {
				data[i] = opts.LineData{Name: labelAt(chart.Labels, i), Value: v}
			}
			line.AddSeries(s.Name, data)
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderHTML(line)
	case ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(global...)
		bar.SetXAxis(chart.Labels)
		for _, s := range chart.Series {
			data := make([]opts.BarData, len(s.Values))
			for i, v := range s.Values {
				data[i] = opts.BarData{Name: labelAt(chart.Labels, i), Value: v}
			}
			bar.AddSeries(s.Name, data)
		}
		return renderHTML(bar)
	case ChartPie:
		pie := charts.NewPie()
		pie.SetGlobalOptions(global...)
		// A pie shows the first series only.
		s := chart.Series[0]
		data := make([]opts.PieData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.PieData{Name: labelAt(chart.Labels, i), Value: v}
		}
		pie.AddSeries(s.Name, data)
		return renderHTML(pie)
	default:
		return "", goerrors.New("unsupported chart kind", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"kind": string(chart.Kind)})
	}
}

func renderHTML(c interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func labelAt(labels []string, i int) string {
	if i < len(labels) && labels[i] != "" {
		return labels[i]
	}
	return "#" + strconv.Itoa(i+1)
}
