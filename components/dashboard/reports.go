package dashboard

import (
	"context"
	"time"

	"github.com/goliatone/go-market-dashboard/components/status"
)

// SummaryReport is the admin business summary.
type SummaryReport struct {
	Revenue           float64
	Orders            int
	Users             int
	ActiveSellers     int
	AverageOrderValue float64
	PendingReturns    int
}

// SummaryRepository loads the admin business summary.
type SummaryRepository interface {
	FetchSummary(ctx context.Context, viewer ViewerContext) (SummaryReport, error)
}

// SalesSeriesPoint is a single labelled value on the sales trend.
type SalesSeriesPoint struct {
	Label     string
	Timestamp time.Time
	Value     float64
}

// SalesSeriesQuery describes the requested window.
type SalesSeriesQuery struct {
	Months int
	Viewer ViewerContext
}

// SalesSeriesRepository fetches the revenue trend for the sales chart provider.
type SalesSeriesRepository interface {
	FetchSalesSeries(ctx context.Context, query SalesSeriesQuery) ([]SalesSeriesPoint, error)
}

// Breakdown dimensions understood by BreakdownRepository.
const (
	DimensionOrderStatus   = "order_status"
	DimensionTopCategories = "top_categories"
	DimensionPayoutStatus  = "payout_status"
)

// BreakdownQuery selects a categorical breakdown.
type BreakdownQuery struct {
	Dimension string
	Limit     int
	Viewer    ViewerContext
}

// BreakdownSlice is one category of a breakdown chart.
type BreakdownSlice struct {
	Label string
	Value float64
}

// BreakdownRepository loads pie/bar chart data.
type BreakdownRepository interface {
	FetchBreakdown(ctx context.Context, query BreakdownQuery) ([]BreakdownSlice, error)
}

// UserStats splits the user base by role.
type UserStats struct {
	Total   int
	Sellers int
	Buyers  int
}

// UserStatsRepository loads user counters for the admin overview.
type UserStatsRepository interface {
	FetchUserStats(ctx context.Context) (UserStats, error)
}

// Feeds understood by FeedRepository.
const (
	FeedPendingReturns = "pending_returns"
	FeedAwaitingOrders = "awaiting_orders"
	FeedLowStock       = "low_stock"
	FeedRecentOrders   = "recent_orders"
)

// FeedQuery selects a short list of records for a queue widget.
type FeedQuery struct {
	Feed   string
	Limit  int
	Viewer ViewerContext
}

// FeedRow is a single line of a queue widget.
type FeedRow struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Subtitle   string       `json:"subtitle"`
	Badge      status.Badge `json:"badge"`
	Amount     float64      `json:"amount"`
	OccurredAt time.Time    `json:"occurred_at"`
	Link       string       `json:"link,omitempty"`
}

// FeedRepository loads queue widget rows.
type FeedRepository interface {
	FetchFeed(ctx context.Context, query FeedQuery) ([]FeedRow, error)
}
