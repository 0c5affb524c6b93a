package panels

import (
	"slices"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/internal/format"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// Screen keys.
const (
	AdminUsers     = "admin.users"
	AdminReviews   = "admin.reviews"
	AdminOrders    = "admin.orders"
	AdminDrivers   = "admin.drivers"
	AdminReturns   = "admin.returns"
	AdminPayouts   = "admin.payouts"
	AdminProducts  = "admin.products"
	SellerOrders   = "seller.orders"
	SellerProducts = "seller.products"
	SellerPayouts  = "seller.payouts"
	SellerCoupons  = "seller.coupons"
	SellerLoans    = "seller.loans"
	BuyerOrders    = "buyer.orders"
	BuyerReturns   = "buyer.returns"
)

// Default page sizes. Admin tables load large pages, seller and buyer
// screens smaller ones.
const (
	DefaultAdminPageSize  = 100
	DefaultSellerPageSize = 20
	DefaultBuyerPageSize  = 20
)

// CatalogOptions configures the screens.
type CatalogOptions struct {
	BasePath string
	Currency string
	Locale   string
	// PageSizes overrides the page size per role.
	PageSizes map[status.Role]int
	// Overlays replaces records with pending or confirmed optimistic values.
	Overlays Overlays
	Clock    func() time.Time
}

// Overlays exposes optimistic state to the screens that show it.
type Overlays interface {
	Orders(items []marketplace.Order) []marketplace.Order
	OrderPending(id string) bool
	Returns(items []marketplace.Return) []marketplace.Return
	ReturnPending(id string) bool
}

// Catalog holds every screen keyed by its key.
type Catalog struct {
	views map[string]View
	order []string
}

// NewCatalog builds the admin, seller and buyer screens.
func NewCatalog(opts CatalogOptions) *Catalog {
	f := newFormatter(opts)
	c := &Catalog{views: map[string]View{}}
	for _, view := range []View{
		adminUsersView(f),
		adminReviewsView(f),
		adminOrdersView(f),
		adminDriversView(f),
		adminReturnsView(f, opts.Overlays),
		adminPayoutsView(f),
		adminProductsView(f),
		sellerOrdersView(f, opts.Overlays),
		sellerProductsView(f),
		sellerPayoutsView(f),
		sellerCouponsView(f),
		sellerLoansView(f),
		buyerOrdersView(f),
		buyerReturnsView(f),
	} {
		c.views[view.Key()] = view
		c.order = append(c.order, view.Key())
	}
	return c
}

// View returns the screen registered under key.
func (c *Catalog) View(key string) (View, bool) {
	view, ok := c.views[key]
	return view, ok
}

// Lookup resolves key for a viewer role. Screens of another panel are not
// available.
func (c *Catalog) Lookup(key string, role status.Role) (View, error) {
	view, ok := c.views[key]
	if !ok {
		return nil, goerrors.New("panels: unknown screen", goerrors.CategoryNotFound).
			WithMetadata(map[string]any{"screen": key})
	}
	if view.Role() != role {
		return nil, goerrors.New("panels: screen not available to viewer", goerrors.CategoryAuthz).
			WithMetadata(map[string]any{"screen": key, "role": role.String()})
	}
	return view, nil
}

// Keys lists screen keys in registration order.
func (c *Catalog) Keys() []string {
	return slices.Clone(c.order)
}

// ForRole lists the screens of one panel.
func (c *Catalog) ForRole(role status.Role) []View {
	var out []View
	for _, key := range c.order {
		if view := c.views[key]; view.Role() == role {
			out = append(out, view)
		}
	}
	return out
}

// Navigation builds the panel menu with active marking the current screen.
func (c *Catalog) Navigation(role status.Role, active string) []NavLink {
	views := c.ForRole(role)
	links := make([]NavLink, 0, len(views))
	for _, view := range views {
		links = append(links, NavLink{Label: view.Title(), Href: view.Path(), Active: view.Key() == active})
	}
	return links
}

type formatter struct {
	base     string
	currency string
	locale   string
	sizes    map[status.Role]int
	now      func() time.Time
}

func newFormatter(opts CatalogOptions) formatter {
	f := formatter{
		base:     strings.TrimRight(opts.BasePath, "/"),
		currency: opts.Currency,
		locale:   opts.Locale,
		sizes: map[status.Role]int{
			status.RoleAdmin:  DefaultAdminPageSize,
			status.RoleSeller: DefaultSellerPageSize,
			status.RoleBuyer:  DefaultBuyerPageSize,
		},
		now: opts.Clock,
	}
	if f.currency == "" {
		f.currency = format.DefaultCurrency
	}
	if f.now == nil {
		f.now = time.Now
	}
	for role, size := range opts.PageSizes {
		if size > 0 {
			f.sizes[role] = size
		}
	}
	return f
}

func (f formatter) path(segments ...string) string {
	return f.base + "/" + strings.Join(segments, "/")
}

func (f formatter) size(role status.Role) int {
	return f.sizes[role]
}

func (f formatter) money(amount float64) string {
	return format.Money(amount, f.currency, f.locale)
}

func (f formatter) count(n int) string {
	return format.Count(n, f.locale)
}

func (f formatter) date(t time.Time) string {
	return format.Date(t)
}

func (f formatter) ago(t time.Time) string {
	return format.AgoFrom(t, f.now())
}

func (f formatter) when(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return f.date(t) + " (" + f.ago(t) + ")"
}

func text(s string) Cell {
	return Cell{Text: s}
}

func badge(b status.Badge) Cell {
	return Cell{Text: b.Label, Badge: &b}
}

func field(label, value string) Field {
	return Field{Label: label, Value: value}
}

func badgeField(label string, b status.Badge) Field {
	return Field{Label: label, Value: b.Label, Badge: &b}
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
