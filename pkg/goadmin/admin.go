// Package goadmin seeds the marketplace panel menus into a host admin shell.
package goadmin

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/status"
	dashboardpkg "github.com/goliatone/go-market-dashboard/pkg/dashboard"
)

// MenuBuilder ensures dashboard entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem captures panel link metadata.
type MenuItem struct {
	Label    string
	Route    string
	Icon     string
	Position int
}

// Config wires the panel catalog and overview service into an admin shell.
type Config struct {
	EnableDashboard bool
	MenuBuilder     MenuBuilder
	Catalog         *panels.Catalog
	Service         *dashboardpkg.Service
	// BasePath prefixes the overview route, e.g. "/market".
	BasePath string
	// MenuPrefix names the menus; the role is appended ("market.admin").
	MenuPrefix string
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

var screenIcons = map[string]string{
	"users":    "users",
	"reviews":  "star",
	"orders":   "shopping-cart",
	"drivers":  "truck",
	"returns":  "rotate-ccw",
	"payouts":  "credit-card",
	"products": "package",
	"coupons":  "tag",
	"loans":    "landmark",
}

// New creates an Admin helper that can seed panel menus.
func New(cfg Config) (*Admin, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("goadmin: panel catalog is required")
	}
	if cfg.EnableDashboard && cfg.Service == nil {
		return nil, errors.New("goadmin: dashboard service is required when enabled")
	}
	if cfg.MenuPrefix == "" {
		cfg.MenuPrefix = "market"
	}
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	return &Admin{cfg: cfg}, nil
}

// Dashboard exposes the configured dashboard service when enabled.
func (a *Admin) Dashboard() *dashboardpkg.Service {
	if !a.cfg.EnableDashboard {
		return nil
	}
	return a.cfg.Service
}

// MenuCode names the menu holding role's panels.
func (a *Admin) MenuCode(role status.Role) string {
	return a.cfg.MenuPrefix + "." + role.String()
}

// Menu lists the entries of role's panel menu in display order. The
// overview comes first when the dashboard is enabled.
func (a *Admin) Menu(role status.Role) []MenuItem {
	var items []MenuItem
	if a.cfg.EnableDashboard {
		items = append(items, MenuItem{
			Label: "Overview",
			Route: a.cfg.BasePath + "/" + role.String(),
			Icon:  "home",
		})
	}
	for _, link := range a.cfg.Catalog.Navigation(role, "") {
		items = append(items, MenuItem{
			Label:    link.Label,
			Route:    link.Href,
			Icon:     iconFor(link.Href),
			Position: len(items),
		})
	}
	return items
}

// Bootstrap seeds every role menu into the host builder.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if a.cfg.MenuBuilder == nil {
		return nil
	}
	for _, role := range status.Roles() {
		code := a.MenuCode(role)
		for _, item := range a.Menu(role) {
			if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, code, item); err != nil {
				return err
			}
		}
	}
	return nil
}

func iconFor(href string) string {
	screen := href[strings.LastIndex(href, "/")+1:]
	if icon, ok := screenIcons[screen]; ok {
		return icon
	}
	return "list"
}
