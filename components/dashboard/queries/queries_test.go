package queries

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/goliatone/go-market-dashboard/components/dashboard"
	"github.com/goliatone/go-market-dashboard/components/status"
)

type stubOverviewService struct {
	layoutCalls int
	areaCalls   int
	area        string
}

func (s *stubOverviewService) ConfigureLayout(context.Context, dashboard.ViewerContext) (dashboard.Layout, error) {
	s.layoutCalls++
	return dashboard.Layout{Areas: map[string][]dashboard.WidgetInstance{
		"seller.overview.extra":     nil,
		dashboard.SellerSidebarArea: {{ID: "w2", DefinitionID: dashboard.WidgetLowStock}},
		dashboard.SellerMainArea:    {{ID: "w1", DefinitionID: dashboard.WidgetAwaitingOrders}},
	}}, nil
}

func (s *stubOverviewService) ResolveArea(_ context.Context, _ dashboard.ViewerContext, areaCode string) (dashboard.ResolvedArea, error) {
	s.areaCalls++
	s.area = areaCode
	return dashboard.ResolvedArea{AreaCode: areaCode}, nil
}

var seller = dashboard.ViewerContext{UserID: "sel-100", Roles: []string{"seller"}}

func TestOverviewQueryOrdersAreasLikeThePanel(t *testing.T) {
	service := &stubOverviewService{}
	overview, err := NewOverviewQuery(service).Query(context.Background(), OverviewInput{Viewer: seller})
	require.NoError(t, err)
	assert.Equal(t, status.RoleSeller, overview.Role)
	require.Len(t, overview.Areas, 3)
	assert.Equal(t, dashboard.SellerMainArea, overview.Areas[0].Code)
	assert.Equal(t, "Seller Overview (Main)", overview.Areas[0].Name)
	assert.Equal(t, dashboard.SellerSidebarArea, overview.Areas[1].Code)
	assert.Equal(t, "seller.overview.extra", overview.Areas[2].Name)
	assert.Zero(t, service.areaCalls)
}

func TestOverviewQueryNarrowsToOneArea(t *testing.T) {
	service := &stubOverviewService{}
	overview, err := NewOverviewQuery(service).Query(context.Background(), OverviewInput{
		Viewer:   seller,
		AreaCode: " " + dashboard.SellerMainArea + " ",
	})
	require.NoError(t, err)
	assert.Equal(t, dashboard.SellerMainArea, service.area)
	require.Len(t, overview.Areas, 1)
	assert.Zero(t, service.layoutCalls)
}

func TestOverviewQueryRequiresViewer(t *testing.T) {
	_, err := NewOverviewQuery(&stubOverviewService{}).Query(context.Background(), OverviewInput{})
	assert.True(t, goerrors.IsAuth(err))
}

func TestAvailableWidgetsQuery(t *testing.T) {
	query := NewAvailableWidgetsQuery(dashboard.NewRegistry())
	defs, err := query.Query(context.Background(), status.RoleBuyer)
	require.NoError(t, err)
	require.NotEmpty(t, defs)
	for _, def := range defs {
		assert.True(t, def.AllowsRole(status.RoleBuyer), def.Code)
	}

	_, err = query.Query(context.Background(), status.RoleUnknown)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
}
