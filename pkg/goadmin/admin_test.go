package goadmin_test

import (
	"context"
	"errors"
	"testing"

	core "github.com/goliatone/go-market-dashboard/components/dashboard"
	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/status"
	dashboardpkg "github.com/goliatone/go-market-dashboard/pkg/dashboard"
	"github.com/goliatone/go-market-dashboard/pkg/goadmin"
)

type stubMenuBuilder struct {
	calls map[string][]goadmin.MenuItem
	err   error
}

func (s *stubMenuBuilder) EnsureMenuItem(_ context.Context, code string, item goadmin.MenuItem) error {
	if s.err != nil {
		return s.err
	}
	if s.calls == nil {
		s.calls = map[string][]goadmin.MenuItem{}
	}
	s.calls[code] = append(s.calls[code], item)
	return nil
}

func newCatalog() *panels.Catalog {
	return panels.NewCatalog(panels.CatalogOptions{BasePath: "/market"})
}

func TestAdminBootstrapSeedsRoleMenus(t *testing.T) {
	builder := &stubMenuBuilder{}
	service := dashboardpkg.NewService(core.Options{WidgetStore: core.NewMemoryWidgetStore()})
	admin, err := goadmin.New(goadmin.Config{
		EnableDashboard: true,
		Service:         service,
		Catalog:         newCatalog(),
		MenuBuilder:     builder,
		BasePath:        "/market/",
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}

	seller := builder.calls["market.seller"]
	if len(seller) != 6 {
		t.Fatalf("expected overview plus 5 seller screens, got %d", len(seller))
	}
	if seller[0].Label != "Overview" || seller[0].Route != "/market/seller" {
		t.Fatalf("unexpected first seller item %+v", seller[0])
	}
	if seller[1].Route != "/market/seller/orders" || seller[1].Icon != "shopping-cart" || seller[1].Position != 1 {
		t.Fatalf("unexpected seller orders item %+v", seller[1])
	}
	if got := len(builder.calls["market.admin"]); got != 8 {
		t.Fatalf("expected 8 admin items, got %d", got)
	}
	if got := len(builder.calls["market.buyer"]); got != 3 {
		t.Fatalf("expected 3 buyer items, got %d", got)
	}
	if admin.Dashboard() == nil {
		t.Fatalf("expected dashboard service")
	}
}

func TestAdminDisabledDashboardOmitsOverview(t *testing.T) {
	admin, err := goadmin.New(goadmin.Config{Catalog: newCatalog()})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	menu := admin.Menu(status.RoleBuyer)
	if len(menu) != 2 || menu[0].Route != "/market/buyer/orders" || menu[1].Icon != "rotate-ccw" {
		t.Fatalf("unexpected buyer menu %+v", menu)
	}
	if admin.Dashboard() != nil {
		t.Fatalf("expected nil dashboard when disabled")
	}
	if err := admin.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap without builder returned error: %v", err)
	}
}

func TestAdminBootstrapStopsOnBuilderError(t *testing.T) {
	boom := errors.New("menu store down")
	admin, err := goadmin.New(goadmin.Config{Catalog: newCatalog(), MenuBuilder: &stubMenuBuilder{err: boom}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := admin.Bootstrap(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected builder error, got %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := goadmin.New(goadmin.Config{}); err == nil {
		t.Fatalf("expected catalog error")
	}
	if _, err := goadmin.New(goadmin.Config{Catalog: newCatalog(), EnableDashboard: true}); err == nil {
		t.Fatalf("expected service error")
	}
}
