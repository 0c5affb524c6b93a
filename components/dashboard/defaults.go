package dashboard

import (
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/goliatone/go-market-dashboard/components/status"
)

// Area codes for the three overview pages.
const (
	AdminMainArea     = "admin.overview.main"
	AdminSidebarArea  = "admin.overview.sidebar"
	SellerMainArea    = "seller.overview.main"
	SellerSidebarArea = "seller.overview.sidebar"
	BuyerMainArea     = "buyer.overview.main"
	BuyerSidebarArea  = "buyer.overview.sidebar"
)

// Widget definition codes.
const (
	WidgetBISummary      = "admin.widget.bi_summary"
	WidgetSalesTrend     = "admin.widget.sales_trend"
	WidgetOrderStatus    = "admin.widget.order_status"
	WidgetTopCategories  = "admin.widget.top_categories"
	WidgetUserStats      = "admin.widget.user_stats"
	WidgetPendingReturns = "admin.widget.pending_returns"
	WidgetPayoutSummary  = "seller.widget.payout_summary"
	WidgetAwaitingOrders = "seller.widget.awaiting_orders"
	WidgetLowStock       = "seller.widget.low_stock"
	WidgetRecentOrders   = "buyer.widget.recent_orders"
	WidgetRecentActivity = "shared.widget.recent_activity"
)

var defaultAreaDefinitions = []WidgetAreaDefinition{
	{Code: AdminMainArea, Name: "Admin Overview (Main)", Description: "Business intelligence canvas", Role: status.RoleAdmin},
	{Code: AdminSidebarArea, Name: "Admin Overview (Sidebar)", Description: "Queues and activity", Role: status.RoleAdmin},
	{Code: SellerMainArea, Name: "Seller Overview (Main)", Description: "Orders and payouts", Role: status.RoleSeller},
	{Code: SellerSidebarArea, Name: "Seller Overview (Sidebar)", Description: "Stock and activity", Role: status.RoleSeller},
	{Code: BuyerMainArea, Name: "Buyer Overview (Main)", Description: "Recent orders", Role: status.RoleBuyer},
	{Code: BuyerSidebarArea, Name: "Buyer Overview (Sidebar)", Description: "Activity", Role: status.RoleBuyer},
}

var chartThemes = []string{
	types.ThemeWesteros,
	types.ThemeWalden,
	types.ThemeWonderland,
	types.ThemeChalk,
}

var currencies = []string{"NGN", "USD", "GHS", "KES", "ZAR"}

var defaultWidgetDefinitions = []WidgetDefinition{
	{
		Code:        WidgetBISummary,
		Name:        "Business Summary",
		Description: "Revenue, orders, users and average order value",
		Category:    "stats",
		Roles:       []status.Role{status.RoleAdmin},
		Schema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"currency": map[string]any{"type": "string", "enum": currencies, "default": "NGN"},
			},
			"additionalProperties": false,
		},
	},
	{
		Code:        WidgetSalesTrend,
		Name:        "Sales Trend",
		Description: "Monthly revenue line chart",
		Category:    "charts",
		Roles:       []status.Role{status.RoleAdmin},
		Schema:      salesTrendSchema(),
	},
	{
		Code:        WidgetOrderStatus,
		Name:        "Orders by Status",
		Description: "Share of orders in each lifecycle state",
		Category:    "charts",
		Roles:       []status.Role{status.RoleAdmin},
		Schema:      breakdownSchema(),
	},
	{
		Code:        WidgetTopCategories,
		Name:        "Top Categories",
		Description: "Revenue by product category",
		Category:    "charts",
		Roles:       []status.Role{status.RoleAdmin},
		Schema:      breakdownSchema(),
	},
	{
		Code:        WidgetUserStats,
		Name:        "User Statistics",
		Description: "Total users split into sellers and buyers",
		Category:    "stats",
		Roles:       []status.Role{status.RoleAdmin},
		Schema: map[string]any{
			"type":       "object",
			"properties": map[string]any{"metric": map[string]any{"type": "string", "enum": []string{"total", "sellers", "buyers"}, "default": "total"}},
		},
	},
	{
		Code:        WidgetPendingReturns,
		Name:        "Pending Returns",
		Description: "Returns waiting for fault classification",
		Category:    "queues",
		Roles:       []status.Role{status.RoleAdmin},
		Schema:      feedSchema(5),
	},
	{
		Code:        WidgetPayoutSummary,
		Name:        "Payout Summary",
		Description: "Net payout amounts by status",
		Category:    "charts",
		Roles:       []status.Role{status.RoleSeller},
		Schema:      breakdownSchema(),
	},
	{
		Code:        WidgetAwaitingOrders,
		Name:        "Orders Awaiting Acceptance",
		Description: "Orders the seller still has to accept or reject",
		Category:    "queues",
		Roles:       []status.Role{status.RoleSeller},
		Schema:      feedSchema(5),
	},
	{
		Code:        WidgetLowStock,
		Name:        "Low Stock",
		Description: "Listings with five or fewer units left",
		Category:    "queues",
		Roles:       []status.Role{status.RoleSeller},
		Schema:      feedSchema(5),
	},
	{
		Code:        WidgetRecentOrders,
		Name:        "Recent Orders",
		Description: "The buyer's latest orders",
		Category:    "queues",
		Roles:       []status.Role{status.RoleBuyer},
		Schema:      feedSchema(5),
	},
	{
		Code:        WidgetRecentActivity,
		Name:        "Recent Activity",
		Description: "Latest actions taken from the panels",
		Category:    "activity",
		Schema:      feedSchema(10),
	},
}

func salesTrendSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"months":           map[string]any{"type": "integer", "minimum": 1, "maximum": 12, "default": 6},
			"currency":         map[string]any{"type": "string", "enum": currencies, "default": "NGN"},
			"theme":            map[string]any{"type": "string", "enum": chartThemes},
			"show_chart_title": map[string]any{"type": "boolean", "default": false},
			"dynamic":          map[string]any{"type": "boolean", "default": false},
			"refresh_endpoint": map[string]any{"type": "string"},
		},
		"additionalProperties": false,
	}
}

func breakdownSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"theme":   map[string]any{"type": "string", "enum": chartThemes},
			"limit":   map[string]any{"type": "integer", "minimum": 1, "maximum": 20},
			"dynamic": map[string]any{"type": "boolean", "default": false},
		},
		"additionalProperties": false,
	}
}

func feedSchema(limit int) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"limit": map[string]any{"type": "integer", "minimum": 1, "maximum": 50, "default": limit},
		},
		"additionalProperties": false,
	}
}

var defaultSeedConfigs = []AddWidgetRequest{
	{DefinitionID: WidgetBISummary, AreaCode: AdminMainArea, Configuration: map[string]any{"currency": "NGN"}},
	{DefinitionID: WidgetSalesTrend, AreaCode: AdminMainArea, Configuration: map[string]any{"months": 6}},
	{DefinitionID: WidgetOrderStatus, AreaCode: AdminMainArea, Configuration: map[string]any{}},
	{DefinitionID: WidgetTopCategories, AreaCode: AdminMainArea, Configuration: map[string]any{"limit": 5}},
	{DefinitionID: WidgetUserStats, AreaCode: AdminSidebarArea, Configuration: map[string]any{"metric": "total"}},
	{DefinitionID: WidgetPendingReturns, AreaCode: AdminSidebarArea, Configuration: map[string]any{"limit": 5}},
	{DefinitionID: WidgetRecentActivity, AreaCode: AdminSidebarArea, Configuration: map[string]any{"limit": 10}},
	{DefinitionID: WidgetAwaitingOrders, AreaCode: SellerMainArea, Configuration: map[string]any{"limit": 5}},
	{DefinitionID: WidgetPayoutSummary, AreaCode: SellerMainArea, Configuration: map[string]any{}},
	{DefinitionID: WidgetLowStock, AreaCode: SellerSidebarArea, Configuration: map[string]any{"limit": 5}},
	{DefinitionID: WidgetRecentActivity, AreaCode: SellerSidebarArea, Configuration: map[string]any{"limit": 10}},
	{DefinitionID: WidgetRecentOrders, AreaCode: BuyerMainArea, Configuration: map[string]any{"limit": 5}},
	{DefinitionID: WidgetRecentActivity, AreaCode: BuyerSidebarArea, Configuration: map[string]any{"limit": 10}},
}

// DefaultAreaDefinitions returns copies of built-in area definitions.
func DefaultAreaDefinitions() []WidgetAreaDefinition {
	out := make([]WidgetAreaDefinition, len(defaultAreaDefinitions))
	copy(out, defaultAreaDefinitions)
	return out
}

// AreasForRole returns the area codes rendered on a panel's overview.
func AreasForRole(role status.Role) []string {
	var out []string
	for _, area := range defaultAreaDefinitions {
		if area.Role == role {
			out = append(out, area.Code)
		}
	}
	return out
}

// DefaultWidgetDefinitions returns copies of built-in widget definitions.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	copy(out, defaultWidgetDefinitions)
	return out
}

// DefaultSeedWidgets returns starter widget configurations.
func DefaultSeedWidgets() []AddWidgetRequest {
	out := make([]AddWidgetRequest, len(defaultSeedConfigs))
	for i, cfg := range defaultSeedConfigs {
		copyCfg := cfg
		if cfg.StartAt != nil {
			start := *cfg.StartAt
			copyCfg.StartAt = &start
		}
		if cfg.EndAt != nil {
			end := *cfg.EndAt
			copyCfg.EndAt = &end
		}
		out[i] = copyCfg
	}
	return out
}
