package dashboard

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/internal/format"
)

// SalesChartProvider draws the monthly revenue trend as a line chart, with
// the window total formatted in the widget currency.
type SalesChartProvider struct {
	repo     SalesSeriesRepository
	renderer *ChartRenderer
	currency string
}

// NewSalesChartProvider builds a provider backed by the given repository.
func NewSalesChartProvider(repo SalesSeriesRepository, renderer *ChartRenderer, currency string) Provider {
	if renderer == nil {
		renderer = NewChartRenderer()
	}
	return &SalesChartProvider{repo: repo, renderer: renderer, currency: currency}
}

// Fetch implements Provider.
func (p *SalesChartProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	if p.repo == nil {
		return nil, goerrors.New("sales chart provider: repository is required", goerrors.CategoryInternal)
	}
	cfg := widgetConfig(meta.Instance.Configuration)
	months := max(cfg.number("months", 6), 1)
	currency := cfg.text("currency", p.currency)

	points, err := p.repo.FetchSalesSeries(ctx, SalesSeriesQuery{Months: months, Viewer: meta.Viewer})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "sales chart provider")
	}
	if len(points) > months {
		points = points[len(points)-months:]
	}
	if len(points) == 0 {
		return WidgetData{"title": "Sales Trend", "empty": "No sales recorded yet."}, nil
	}

	values := seriesValues(points)
	var total float64
	for _, v := range values {
		total += v
	}
	data, err := p.renderer.Render(meta.Instance, meta.Viewer, Chart{
		Kind:      ChartLine,
		Title:     "Sales Trend",
		Subtitle:  fmt.Sprintf("Last %d months", months),
		Labels:    axisLabels(points),
		Series:    []ChartSeries{{Name: "Revenue", Values: values}},
		Theme:     cfg.text("theme", ""),
		ShowTitle: cfg.flag("show_chart_title"),
	})
	if err != nil {
		return nil, err
	}
	data["total"] = format.Money(total, currency, meta.Viewer.Locale)
	data["source"] = map[string]any{"months": months, "currency": currency}
	return cfg.chartData(data), nil
}

func seriesValues(points []SalesSeriesPoint) []float64 {
	values := make([]float64, len(points))
	for i, point := range points {
		values[i] = point.Value
	}
	return values
}

func axisLabels(points []SalesSeriesPoint) []string {
	labels := make([]string, len(points))
	for i, point := range points {
		switch {
		case point.Label != "":
			labels[i] = point.Label
		case !point.Timestamp.IsZero():
			labels[i] = point.Timestamp.Format("Jan 2006")
		default:
			labels[i] = fmt.Sprintf("#%d", i+1)
		}
	}
	return labels
}

// NewStaticSalesRepository returns a repository that always serves the provided points.
func NewStaticSalesRepository(points []SalesSeriesPoint) SalesSeriesRepository {
	return staticSalesRepository{points: points}
}

type staticSalesRepository struct {
	points []SalesSeriesPoint
}

func (s staticSalesRepository) FetchSalesSeries(_ context.Context, _ SalesSeriesQuery) ([]SalesSeriesPoint, error) {
	out := make([]SalesSeriesPoint, len(s.points))
	copy(out, s.points)
	return out, nil
}
