package dashboard

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/internal/format"
)

// Sources bundles the repositories behind the built-in marketplace widgets.
// Nil sources leave the matching widgets without a provider; they render with
// their definition name only.
type Sources struct {
	Summary    SummaryRepository
	Sales      SalesSeriesRepository
	Breakdowns BreakdownRepository
	Users      UserStatsRepository
	Feeds      FeedRepository
	Activity   ActivityFeed
	// Currency is the fallback ISO code when a widget is not configured with one.
	Currency string
	Charts   []ChartOption
}

// RegisterSources attaches providers for every built-in widget whose source is set.
func (r *Registry) RegisterSources(src Sources) error {
	currency := src.Currency
	if currency == "" {
		currency = format.DefaultCurrency
	}
	var errs []error
	add := func(code string, provider Provider) {
		if err := r.RegisterProvider(code, provider); err != nil {
			errs = append(errs, err)
		}
	}
	if src.Summary != nil {
		add(WidgetBISummary, NewSummaryProvider(src.Summary, currency))
	}
	renderer := NewChartRenderer(src.Charts...)
	if src.Sales != nil {
		add(WidgetSalesTrend, NewSalesChartProvider(src.Sales, renderer, currency))
	}
	if src.Breakdowns != nil {
		add(WidgetOrderStatus, NewBreakdownProvider(src.Breakdowns, DimensionOrderStatus, "Orders by Status", ChartPie, renderer))
		add(WidgetTopCategories, NewBreakdownProvider(src.Breakdowns, DimensionTopCategories, "Top Categories", ChartBar, renderer))
		add(WidgetPayoutSummary, NewBreakdownProvider(src.Breakdowns, DimensionPayoutStatus, "Payouts by Status", ChartBar, renderer))
	}
	if src.Users != nil {
		add(WidgetUserStats, NewUserStatsProvider(src.Users))
	}
	if src.Feeds != nil {
		add(WidgetPendingReturns, NewFeedProvider(src.Feeds, FeedPendingReturns, "No returns waiting for review.", currency))
		add(WidgetAwaitingOrders, NewFeedProvider(src.Feeds, FeedAwaitingOrders, "No orders awaiting acceptance.", currency))
		add(WidgetLowStock, NewFeedProvider(src.Feeds, FeedLowStock, "All listings are stocked.", currency))
		add(WidgetRecentOrders, NewFeedProvider(src.Feeds, FeedRecentOrders, "You have not placed any orders yet.", currency))
	}
	if src.Activity != nil {
		add(WidgetRecentActivity, NewRecentActivityProvider(src.Activity))
	}
	return errors.Join(errs...)
}

// Stat is a labelled figure on a stats widget.
type Stat struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	Highlight bool   `json:"highlight,omitempty"`
}

// NewSummaryProvider renders the admin business summary.
func NewSummaryProvider(repo SummaryRepository, currency string) Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		report, err := repo.FetchSummary(ctx, meta.Viewer)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "summary provider")
		}
		code := widgetConfig(meta.Instance.Configuration).text("currency", currency)
		locale := meta.Viewer.Locale
		return WidgetData{
			"title": "Business Summary",
			"stats": []Stat{
				{Key: "revenue", Label: "Total Revenue", Value: format.Money(report.Revenue, code, locale)},
				{Key: "orders", Label: "Total Orders", Value: format.Count(report.Orders, locale)},
				{Key: "users", Label: "Total Users", Value: format.Count(report.Users, locale)},
				{Key: "sellers", Label: "Active Sellers", Value: format.Count(report.ActiveSellers, locale)},
				{Key: "aov", Label: "Average Order Value", Value: format.Money(report.AverageOrderValue, code, locale)},
				{Key: "returns", Label: "Pending Returns", Value: format.Count(report.PendingReturns, locale)},
			},
		}, nil
	})
}

// NewUserStatsProvider renders the Total Users / Sellers / Buyers header.
func NewUserStatsProvider(repo UserStatsRepository) Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		stats, err := repo.FetchUserStats(ctx)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "user stats provider")
		}
		metric := widgetConfig(meta.Instance.Configuration).text("metric", "total")
		locale := meta.Viewer.Locale
		return WidgetData{
			"title":  "Users",
			"metric": metric,
			"stats": []Stat{
				{Key: "total", Label: "Total Users", Value: format.Count(stats.Total, locale), Highlight: metric == "total"},
				{Key: "sellers", Label: "Sellers", Value: format.Count(stats.Sellers, locale), Highlight: metric == "sellers"},
				{Key: "buyers", Label: "Buyers", Value: format.Count(stats.Buyers, locale), Highlight: metric == "buyers"},
			},
			"values": map[string]int{"total": stats.Total, "sellers": stats.Sellers, "buyers": stats.Buyers},
		}, nil
	})
}

// NewFeedProvider renders a short queue of records.
func NewFeedProvider(repo FeedRepository, feed, empty, currency string) Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		limit := widgetConfig(meta.Instance.Configuration).number("limit", 5)
		rows, err := repo.FetchFeed(ctx, FeedQuery{Feed: feed, Limit: limit, Viewer: meta.Viewer})
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "feed provider")
		}
		items := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			item := map[string]any{
				"id":       row.ID,
				"title":    row.Title,
				"subtitle": row.Subtitle,
				"badge":    row.Badge,
				"ago":      format.Ago(row.OccurredAt),
				"link":     row.Link,
			}
			if row.Amount != 0 {
				item["amount"] = format.Money(row.Amount, currency, meta.Viewer.Locale)
			}
			items = append(items, item)
		}
		return WidgetData{
			"feed":  feed,
			"items": items,
			"empty": empty,
		}, nil
	})
}

// NewRecentActivityProvider renders the latest panel actions.
func NewRecentActivityProvider(feed ActivityFeed) Provider {
	return ProviderFunc(func(ctx context.Context, meta WidgetContext) (WidgetData, error) {
		limit := widgetConfig(meta.Instance.Configuration).number("limit", 10)
		items, err := feed.Recent(ctx, meta.Viewer, limit)
		if err != nil {
			return nil, err
		}
		payload := make([]map[string]any, 0, len(items))
		for _, item := range items {
			payload = append(payload, map[string]any{
				"user":    item.User,
				"action":  item.Action,
				"details": item.Details,
				"ago":     format.Ago(item.OccurredAt),
			})
		}
		return WidgetData{"items": payload, "empty": "No activity yet."}, nil
	})
}

// BreakdownProvider charts one categorical dimension, e.g. orders by status.
type BreakdownProvider struct {
	repo      BreakdownRepository
	dimension string
	title     string
	kind      ChartKind
	renderer  *ChartRenderer
}

// NewBreakdownProvider builds a chart provider for one dimension.
func NewBreakdownProvider(repo BreakdownRepository, dimension, title string, kind ChartKind, renderer *ChartRenderer) *BreakdownProvider {
	if renderer == nil {
		renderer = NewChartRenderer()
	}
	return &BreakdownProvider{repo: repo, dimension: dimension, title: title, kind: kind, renderer: renderer}
}

// Fetch implements Provider.
func (p *BreakdownProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	cfg := widgetConfig(meta.Instance.Configuration)
	parts, err := p.repo.FetchBreakdown(ctx, BreakdownQuery{
		Dimension: p.dimension,
		Limit:     cfg.number("limit", 0),
		Viewer:    meta.Viewer,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "breakdown provider")
	}
	if len(parts) == 0 {
		return WidgetData{"title": p.title, "dimension": p.dimension, "empty": "No data yet."}, nil
	}
	chart := Chart{
		Kind:   p.kind,
		Title:  p.title,
		Labels: make([]string, len(parts)),
		Series: []ChartSeries{{Name: p.title, Values: make([]float64, len(parts))}},
		Theme:  cfg.text("theme", ""),
	}
	for i, part := range parts {
		chart.Labels[i] = part.Label
		chart.Series[0].Values[i] = part.Value
	}
	data, err := p.renderer.Render(meta.Instance, meta.Viewer, chart)
	if err != nil {
		return nil, err
	}
	data["dimension"] = p.dimension
	return cfg.chartData(data), nil
}
