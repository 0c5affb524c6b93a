package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/pkg/activity"
)

type stubSummaryRepo struct {
	report SummaryReport
	err    error
}

func (s stubSummaryRepo) FetchSummary(context.Context, ViewerContext) (SummaryReport, error) {
	return s.report, s.err
}

type stubUserStatsRepo struct{ stats UserStats }

func (s stubUserStatsRepo) FetchUserStats(context.Context) (UserStats, error) { return s.stats, nil }

type stubFeedRepo struct {
	rows  map[string][]FeedRow
	query FeedQuery
}

func (s *stubFeedRepo) FetchFeed(_ context.Context, query FeedQuery) ([]FeedRow, error) {
	s.query = query
	rows := s.rows[query.Feed]
	if query.Limit > 0 && len(rows) > query.Limit {
		rows = rows[:query.Limit]
	}
	return rows, nil
}

type stubBreakdownRepo struct {
	slices map[string][]BreakdownSlice
}

func (s stubBreakdownRepo) FetchBreakdown(_ context.Context, query BreakdownQuery) ([]BreakdownSlice, error) {
	return s.slices[query.Dimension], nil
}

func fetch(t *testing.T, provider Provider, inst WidgetInstance, viewer ViewerContext) WidgetData {
	t.Helper()
	data, err := provider.Fetch(context.Background(), WidgetContext{Instance: inst, Viewer: viewer})
	require.NoError(t, err)
	return data
}

func TestSummaryProviderFormatsFigures(t *testing.T) {
	provider := NewSummaryProvider(stubSummaryRepo{report: SummaryReport{
		Revenue:           1250000,
		Orders:            4821,
		Users:             1200,
		ActiveSellers:     87,
		AverageOrderValue: 259.28,
		PendingReturns:    4,
	}}, "NGN")

	data := fetch(t, provider, WidgetInstance{DefinitionID: WidgetBISummary}, adminViewer)
	stats, ok := data["stats"].([]Stat)
	require.True(t, ok)
	require.Len(t, stats, 6)
	labels := make([]string, len(stats))
	for i, stat := range stats {
		labels[i] = stat.Label
	}
	assert.Equal(t, []string{"Total Revenue", "Total Orders", "Total Users", "Active Sellers", "Average Order Value", "Pending Returns"}, labels)
	assert.Regexp(t, `1,?250,?000`, stats[0].Value)
	assert.Equal(t, "4,821", stats[1].Value)
	assert.Equal(t, "4", stats[5].Value)
}

func TestSummaryProviderWrapsRepositoryErrors(t *testing.T) {
	provider := NewSummaryProvider(stubSummaryRepo{err: errors.New("fetch failed")}, "NGN")
	_, err := provider.Fetch(context.Background(), WidgetContext{Viewer: adminViewer})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryExternal))
}

func TestUserStatsProviderHighlightsMetric(t *testing.T) {
	provider := NewUserStatsProvider(stubUserStatsRepo{stats: UserStats{Total: 1200, Sellers: 200, Buyers: 1000}})
	data := fetch(t, provider, WidgetInstance{Configuration: map[string]any{"metric": "sellers"}}, adminViewer)

	stats := data["stats"].([]Stat)
	require.Len(t, stats, 3)
	assert.Equal(t, "Total Users", stats[0].Label)
	assert.Equal(t, "1,200", stats[0].Value)
	assert.Equal(t, "Sellers", stats[1].Label)
	assert.True(t, stats[1].Highlight)
	assert.Equal(t, "Buyers", stats[2].Label)
	assert.Equal(t, map[string]int{"total": 1200, "sellers": 200, "buyers": 1000}, data["values"])
}

func TestFeedProviderLimitsAndFormatsRows(t *testing.T) {
	repo := &stubFeedRepo{rows: map[string][]FeedRow{
		FeedAwaitingOrders: {
			{ID: "o1", Title: "Order #o1", Badge: status.OrderPending.Badge(), Amount: 1500, OccurredAt: time.Now().Add(-2 * time.Hour)},
			{ID: "o2", Title: "Order #o2", Badge: status.OrderPending.Badge()},
			{ID: "o3", Title: "Order #o3", Badge: status.OrderPending.Badge()},
		},
	}}
	provider := NewFeedProvider(repo, FeedAwaitingOrders, "Nothing waiting.", "NGN")

	data := fetch(t, provider, WidgetInstance{Configuration: map[string]any{"limit": 2}}, sellerViewer)
	items := data["items"].([]map[string]any)
	require.Len(t, items, 2)
	assert.Equal(t, 2, repo.query.Limit)
	assert.Equal(t, sellerViewer, repo.query.Viewer)
	assert.Equal(t, "Order #o1", items[0]["title"])
	assert.Equal(t, "2 hours ago", items[0]["ago"])
	assert.Regexp(t, `1,?500`, items[0]["amount"])
	assert.NotContains(t, items[1], "amount")
	assert.Equal(t, "Nothing waiting.", data["empty"])
}

func TestRecentActivityProviderScopesToViewer(t *testing.T) {
	sink := activity.NewMemorySink(10)
	ctx := context.Background()
	require.NoError(t, sink.Notify(ctx, activity.Event{Verb: "seller.order.accept", ObjectType: "order", ObjectID: "o1", ActorID: "seller-1", UserID: "seller-1"}))
	require.NoError(t, sink.Notify(ctx, activity.Event{Verb: "admin.payout.process", ObjectType: "payout", ObjectID: "p1", ActorID: "admin-1"}))

	provider := NewRecentActivityProvider(NewSinkActivityFeed(sink))

	data := fetch(t, provider, WidgetInstance{}, sellerViewer)
	items := data["items"].([]map[string]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Order Accept", items[0]["action"])
	assert.Equal(t, "order o1", items[0]["details"])

	data = fetch(t, provider, WidgetInstance{}, adminViewer)
	assert.Len(t, data["items"], 2)
}

func TestBreakdownProviderRendersChart(t *testing.T) {
	repo := stubBreakdownRepo{slices: map[string][]BreakdownSlice{
		DimensionOrderStatus: {{Label: "Delivered", Value: 12}, {Label: "Pending", Value: 3}},
	}}
	provider := NewBreakdownProvider(repo, DimensionOrderStatus, "Orders by Status", ChartPie, nil)

	data := fetch(t, provider, WidgetInstance{ID: "w1", DefinitionID: WidgetOrderStatus}, adminViewer)
	assert.Equal(t, DimensionOrderStatus, data["dimension"])
	assert.Equal(t, "pie", data["chart_type"])
	assert.Contains(t, data["chart_html"], "Delivered")

	empty := NewBreakdownProvider(repo, DimensionTopCategories, "Top Categories", ChartBar, nil)
	data = fetch(t, empty, WidgetInstance{ID: "w2"}, adminViewer)
	assert.Equal(t, "No data yet.", data["empty"])
	assert.NotContains(t, data, "chart_html")
}

func TestRegisterSourcesAttachesProviders(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterSources(Sources{
		Summary: stubSummaryRepo{},
		Users:   stubUserStatsRepo{},
		Feeds:   &stubFeedRepo{},
	}))

	for _, code := range []string{WidgetBISummary, WidgetUserStats, WidgetPendingReturns, WidgetAwaitingOrders, WidgetLowStock, WidgetRecentOrders} {
		_, ok := registry.Provider(code)
		assert.True(t, ok, code)
	}
	for _, code := range []string{WidgetSalesTrend, WidgetOrderStatus, WidgetRecentActivity} {
		_, ok := registry.Provider(code)
		assert.False(t, ok, code)
	}
}
