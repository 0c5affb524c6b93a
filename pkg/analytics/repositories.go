// Package analytics adapts the marketplace backend into the report
// repositories the overview widgets read from.
package analytics

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/dashboard"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

const (
	defaultScanLimit = 100
	defaultLowStock  = 5
)

// Option customises Repositories.
type Option func(*Repositories)

// WithClock sets the time source used to bucket monthly series.
func WithClock(now func() time.Time) Option {
	return func(r *Repositories) {
		if now != nil {
			r.now = now
		}
	}
}

// WithBasePath prefixes the panel links on feed rows.
func WithBasePath(base string) Option {
	return func(r *Repositories) { r.base = strings.TrimRight(base, "/") }
}

// WithLowStockThreshold sets the stock level at or below which an active
// listing shows on the low stock feed.
func WithLowStockThreshold(n int) Option {
	return func(r *Repositories) {
		if n >= 0 {
			r.lowStock = n
		}
	}
}

// WithScanLimit caps how many records a single report reads.
func WithScanLimit(n int) Option {
	return func(r *Repositories) {
		if n > 0 {
			r.scan = n
		}
	}
}

// Repositories implements every dashboard report repository over a
// marketplace backend. Seller and buyer reports aggregate the viewer's own
// records; admin reports use the business intelligence endpoint.
type Repositories struct {
	source   Source
	now      func() time.Time
	base     string
	lowStock int
	scan     int
}

var (
	_ dashboard.SummaryRepository     = (*Repositories)(nil)
	_ dashboard.SalesSeriesRepository = (*Repositories)(nil)
	_ dashboard.BreakdownRepository   = (*Repositories)(nil)
	_ dashboard.UserStatsRepository   = (*Repositories)(nil)
	_ dashboard.FeedRepository        = (*Repositories)(nil)
)

// New builds the repositories over source.
func New(source Source, opts ...Option) *Repositories {
	r := &Repositories{
		source:   source,
		now:      time.Now,
		lowStock: defaultLowStock,
		scan:     defaultScanLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Sources wires the repositories into the widget registry.
func (r *Repositories) Sources(activity dashboard.ActivityFeed, currency string) dashboard.Sources {
	return dashboard.Sources{
		Summary:    r,
		Sales:      r,
		Breakdowns: r,
		Users:      r,
		Feeds:      r,
		Activity:   activity,
		Currency:   currency,
	}
}

func (r *Repositories) FetchSummary(ctx context.Context, _ dashboard.ViewerContext) (dashboard.SummaryReport, error) {
	bi, err := r.source.BusinessIntelligence(ctx)
	if err != nil {
		return dashboard.SummaryReport{}, err
	}
	report := dashboard.SummaryReport{
		Revenue:           bi.TotalRevenue,
		Orders:            bi.TotalOrders,
		Users:             bi.TotalUsers,
		ActiveSellers:     bi.ActiveSellers,
		AverageOrderValue: bi.AvgOrderValue,
		PendingReturns:    bi.PendingReturns,
	}
	if report.Users == 0 {
		users, err := r.source.AdminUsers(ctx, 1, 1)
		if err != nil {
			return dashboard.SummaryReport{}, err
		}
		report.Users = users.Pagination.Total
	}
	return report, nil
}

func (r *Repositories) FetchUserStats(ctx context.Context) (dashboard.UserStats, error) {
	users, err := r.source.AdminUsers(ctx, 1, 1)
	if err != nil {
		return dashboard.UserStats{}, err
	}
	return dashboard.UserStats{
		Total:   users.Pagination.Total,
		Sellers: users.SellerCount,
		Buyers:  users.BuyerCount,
	}, nil
}

func (r *Repositories) FetchSalesSeries(ctx context.Context, query dashboard.SalesSeriesQuery) ([]dashboard.SalesSeriesPoint, error) {
	months := query.Months
	if months <= 0 {
		months = 6
	}
	var (
		orders []marketplace.Order
		err    error
	)
	switch viewerRole(query.Viewer) {
	case status.RoleSeller:
		orders, err = r.sellerOrders(ctx)
	case status.RoleBuyer:
		orders, err = r.buyerOrders(ctx)
	default:
		return r.adminSales(ctx, months)
	}
	if err != nil {
		return nil, err
	}
	return monthlyTotals(orders, r.now(), months), nil
}

func (r *Repositories) adminSales(ctx context.Context, months int) ([]dashboard.SalesSeriesPoint, error) {
	bi, err := r.source.BusinessIntelligence(ctx)
	if err != nil {
		return nil, err
	}
	trend := bi.SalesTrend
	if len(trend) > months {
		trend = trend[len(trend)-months:]
	}
	points := make([]dashboard.SalesSeriesPoint, 0, len(trend))
	for _, p := range trend {
		points = append(points, dashboard.SalesSeriesPoint{Label: p.Label, Value: p.Value})
	}
	return points, nil
}

// monthlyTotals buckets order totals into the last months calendar months
// ending at now. Cancelled and rejected orders carry no revenue.
func monthlyTotals(orders []marketplace.Order, now time.Time, months int) []dashboard.SalesSeriesPoint {
	now = now.UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	points := make([]dashboard.SalesSeriesPoint, months)
	index := make(map[string]int, months)
	for i := range months {
		start := current.AddDate(0, i-months+1, 0)
		points[i] = dashboard.SalesSeriesPoint{Label: start.Format("Jan"), Timestamp: start}
		index[start.Format("2006-01")] = i
	}
	for _, o := range orders {
		if o.Status == status.OrderCancelled || o.Status == status.OrderRejected {
			continue
		}
		if i, ok := index[o.CreatedAt.UTC().Format("2006-01")]; ok {
			points[i].Value += o.Total
		}
	}
	return points
}

func (r *Repositories) FetchBreakdown(ctx context.Context, query dashboard.BreakdownQuery) ([]dashboard.BreakdownSlice, error) {
	role := viewerRole(query.Viewer)
	var (
		parts []dashboard.BreakdownSlice
		err     error
	)
	switch query.Dimension {
	case dashboard.DimensionOrderStatus:
		parts, err = r.orderStatus(ctx, role)
	case dashboard.DimensionTopCategories:
		parts, err = r.topCategories(ctx, role)
	case dashboard.DimensionPayoutStatus:
		parts, err = r.payoutStatus(ctx, role)
	default:
		return nil, goerrors.New("unknown breakdown dimension", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"dimension": query.Dimension})
	}
	if err != nil {
		return nil, err
	}
	if query.Limit > 0 && len(parts) > query.Limit {
		parts = parts[:query.Limit]
	}
	return parts, nil
}

func (r *Repositories) orderStatus(ctx context.Context, role status.Role) ([]dashboard.BreakdownSlice, error) {
	counts := map[string]float64{}
	switch role {
	case status.RoleSeller, status.RoleBuyer:
		orders, err := r.ordersFor(ctx, role)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			counts[o.Status.Label()]++
		}
	default:
		bi, err := r.source.BusinessIntelligence(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range bi.OrdersByStatus {
			counts[status.ParseOrderStatus(c.Status).Label()] += float64(c.Count)
		}
	}
	return sortedSlices(counts), nil
}

func (r *Repositories) topCategories(ctx context.Context, role status.Role) ([]dashboard.BreakdownSlice, error) {
	if role != status.RoleSeller {
		bi, err := r.source.BusinessIntelligence(ctx)
		if err != nil {
			return nil, err
		}
		totals := map[string]float64{}
		for _, p := range bi.TopCategories {
			totals[p.Label] += p.Value
		}
		return sortedSlices(totals), nil
	}

	products, err := r.source.SellerProducts(ctx, 1, r.scan)
	if err != nil {
		return nil, err
	}
	category := make(map[string]string, len(products.Items))
	for _, p := range products.Items {
		category[p.ID] = p.Category
	}
	orders, err := r.sellerOrders(ctx)
	if err != nil {
		return nil, err
	}
	totals := map[string]float64{}
	for _, o := range orders {
		if o.Status == status.OrderCancelled || o.Status == status.OrderRejected {
			continue
		}
		for _, item := range o.Items {
			name := category[item.ProductID]
			if name == "" {
				name = "other"
			}
			totals[name] += float64(item.Quantity) * item.UnitPrice
		}
	}
	return sortedSlices(totals), nil
}

func (r *Repositories) payoutStatus(ctx context.Context, role status.Role) ([]dashboard.BreakdownSlice, error) {
	var (
		page marketplace.Page[marketplace.Payout]
		err  error
	)
	switch role {
	case status.RoleSeller:
		page, err = r.source.SellerPayouts(ctx, 1, r.scan)
	case status.RoleBuyer:
		return nil, nil
	default:
		page, err = r.source.AdminPayouts(ctx, 1, r.scan)
	}
	if err != nil {
		return nil, err
	}
	totals := map[string]float64{}
	for _, p := range page.Items {
		totals[p.Status.Label()] += p.NetAmount
	}
	return sortedSlices(totals), nil
}

func (r *Repositories) FetchFeed(ctx context.Context, query dashboard.FeedQuery) ([]dashboard.FeedRow, error) {
	var (
		rows []dashboard.FeedRow
		err  error
	)
	switch query.Feed {
	case dashboard.FeedPendingReturns:
		rows, err = r.pendingReturns(ctx)
	case dashboard.FeedAwaitingOrders:
		rows, err = r.awaitingOrders(ctx)
	case dashboard.FeedLowStock:
		rows, err = r.lowStockProducts(ctx)
	case dashboard.FeedRecentOrders:
		rows, err = r.recentOrders(ctx)
	default:
		return nil, goerrors.New("unknown feed", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"feed": query.Feed})
	}
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(rows, func(a, b dashboard.FeedRow) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})
	if query.Limit > 0 && len(rows) > query.Limit {
		rows = rows[:query.Limit]
	}
	return rows, nil
}

func (r *Repositories) pendingReturns(ctx context.Context) ([]dashboard.FeedRow, error) {
	page, err := r.source.AdminReturns(ctx, 1, r.scan)
	if err != nil {
		return nil, err
	}
	var rows []dashboard.FeedRow
	for _, ret := range page.Items {
		if !ret.Status.Classifiable() {
			continue
		}
		rows = append(rows, dashboard.FeedRow{
			ID:         ret.ID,
			Title:      ret.OrderNumber,
			Subtitle:   joinNonEmpty(" · ", ret.BuyerName, ret.Reason),
			Badge:      ret.Status.Badge(),
			Amount:     ret.Amount,
			OccurredAt: ret.CreatedAt,
			Link:       r.link(status.RoleAdmin, "returns"),
		})
	}
	return rows, nil
}

func (r *Repositories) awaitingOrders(ctx context.Context) ([]dashboard.FeedRow, error) {
	orders, err := r.sellerOrders(ctx)
	if err != nil {
		return nil, err
	}
	var rows []dashboard.FeedRow
	for _, o := range orders {
		if !o.Status.AwaitingSeller() {
			continue
		}
		rows = append(rows, orderRow(o, o.Buyer.Name, r.link(status.RoleSeller, "orders")))
	}
	return rows, nil
}

func (r *Repositories) lowStockProducts(ctx context.Context) ([]dashboard.FeedRow, error) {
	page, err := r.source.SellerProducts(ctx, 1, r.scan)
	if err != nil {
		return nil, err
	}
	var rows []dashboard.FeedRow
	for _, p := range page.Items {
		if !p.Active || p.Stock > r.lowStock {
			continue
		}
		badge := status.Badge{Value: "low_stock", Label: "Low stock", Tone: status.ToneWarning}
		if p.Stock <= 0 {
			badge = status.Badge{Value: "out_of_stock", Label: "Out of stock", Tone: status.ToneDanger}
		}
		rows = append(rows, dashboard.FeedRow{
			ID:         p.ID,
			Title:      p.Name,
			Subtitle:   strconv.Itoa(p.Stock) + " left · " + p.SKU,
			Badge:      badge,
			Amount:     p.Price,
			OccurredAt: p.UpdatedAt,
			Link:       r.link(status.RoleSeller, "products"),
		})
	}
	return rows, nil
}

func (r *Repositories) recentOrders(ctx context.Context) ([]dashboard.FeedRow, error) {
	orders, err := r.buyerOrders(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]dashboard.FeedRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, orderRow(o, o.SellerName, r.link(status.RoleBuyer, "orders")))
	}
	return rows, nil
}

func orderRow(o marketplace.Order, subtitle, link string) dashboard.FeedRow {
	return dashboard.FeedRow{
		ID:         o.ID,
		Title:      o.OrderNumber,
		Subtitle:   subtitle,
		Badge:      o.Status.Badge(),
		Amount:     o.Total,
		OccurredAt: o.CreatedAt,
		Link:       link,
	}
}

func (r *Repositories) ordersFor(ctx context.Context, role status.Role) ([]marketplace.Order, error) {
	if role == status.RoleBuyer {
		return r.buyerOrders(ctx)
	}
	return r.sellerOrders(ctx)
}

func (r *Repositories) sellerOrders(ctx context.Context) ([]marketplace.Order, error) {
	page, err := r.source.SellerOrders(ctx, 1, r.scan)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (r *Repositories) buyerOrders(ctx context.Context) ([]marketplace.Order, error) {
	page, err := r.source.BuyerOrders(ctx, 1, r.scan)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

func (r *Repositories) link(role status.Role, screen string) string {
	return r.base + "/" + role.String() + "/" + screen
}

// viewerRole picks the first dashboard role the viewer holds.
func viewerRole(viewer dashboard.ViewerContext) status.Role {
	for _, raw := range viewer.Roles {
		if role := status.ParseRole(raw); role != status.RoleUnknown {
			return role
		}
	}
	return status.RoleUnknown
}

// sortedSlices orders a breakdown by value, largest first, then by label.
func sortedSlices(totals map[string]float64) []dashboard.BreakdownSlice {
	out := make([]dashboard.BreakdownSlice, 0, len(totals))
	for label, value := range totals {
		out = append(out, dashboard.BreakdownSlice{Label: label, Value: value})
	}
	slices.SortFunc(out, func(a, b dashboard.BreakdownSlice) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
