package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-market-dashboard/pkg/activity"
)

var (
	adminViewer  = ViewerContext{UserID: "admin-1", Roles: []string{"admin"}}
	sellerViewer = ViewerContext{UserID: "seller-1", Roles: []string{"seller"}}
	buyerViewer  = ViewerContext{UserID: "buyer-1", Roles: []string{"buyer"}}
)

func newTestService(t *testing.T, mutate ...func(*Options)) (*Service, *MemoryWidgetStore) {
	t.Helper()
	store := NewMemoryWidgetStore()
	opts := Options{WidgetStore: store}
	for _, fn := range mutate {
		fn(&opts)
	}
	return NewService(opts), store
}

func seedStarterLayout(t *testing.T, ctx context.Context, svc *Service, store WidgetStore) {
	t.Helper()
	require.NoError(t, RegisterAreas(ctx, store))
	require.NoError(t, RegisterDefinitions(ctx, store, svc.Registry()))
	placed, err := SeedLayout(ctx, svc)
	require.NoError(t, err)
	require.Equal(t, len(DefaultSeedWidgets()), placed)
}

func widgetIDs(widgets []WidgetInstance) []string {
	ids := make([]string, len(widgets))
	for i, w := range widgets {
		ids[i] = w.ID
	}
	return ids
}

func definitionIDs(widgets []WidgetInstance) []string {
	ids := make([]string, len(widgets))
	for i, w := range widgets {
		ids[i] = w.DefinitionID
	}
	return ids
}

func TestServiceAddWidgetAssignsToArea(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddWidget(ctx, AddWidgetRequest{
		DefinitionID:  WidgetBISummary,
		AreaCode:      AdminMainArea,
		Configuration: map[string]any{"currency": "USD"},
	}))

	layout, err := svc.ConfigureLayout(ctx, adminViewer)
	require.NoError(t, err)
	require.Len(t, layout.Areas[AdminMainArea], 1)
	assert.Equal(t, WidgetBISummary, layout.Areas[AdminMainArea][0].DefinitionID)
	assert.Equal(t, AdminMainArea, layout.Areas[AdminMainArea][0].AreaCode)
}

func TestServiceAddWidgetRequiresAreaAndDefinition(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.AddWidget(ctx, AddWidgetRequest{DefinitionID: WidgetBISummary})
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))

	err = svc.AddWidget(ctx, AddWidgetRequest{AreaCode: AdminMainArea})
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
}

func TestServiceAddWidgetRejectsWidgetFromAnotherPanel(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.AddWidget(context.Background(), AddWidgetRequest{
		DefinitionID: WidgetLowStock,
		AreaCode:     AdminMainArea,
	})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
}

func TestServiceAddWidgetValidatesConfiguration(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.AddWidget(context.Background(), AddWidgetRequest{
		DefinitionID:  WidgetSalesTrend,
		AreaCode:      AdminMainArea,
		Configuration: map[string]any{"months": 99},
	})
	require.Error(t, err)
	assert.True(t, goerrors.IsValidation(err))
}

func TestServiceConfigureLayoutScopesAreasToRole(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	seedStarterLayout(t, ctx, svc, store)

	layout, err := svc.ConfigureLayout(ctx, sellerViewer)
	require.NoError(t, err)
	assert.Len(t, layout.Areas, 2)
	assert.Equal(t, []string{WidgetAwaitingOrders, WidgetPayoutSummary}, definitionIDs(layout.Areas[SellerMainArea]))
	assert.Equal(t, []string{WidgetLowStock, WidgetRecentActivity}, definitionIDs(layout.Areas[SellerSidebarArea]))
	assert.NotContains(t, layout.Areas, AdminMainArea)

	layout, err = svc.ConfigureLayout(ctx, buyerViewer)
	require.NoError(t, err)
	assert.Equal(t, []string{WidgetRecentOrders}, definitionIDs(layout.Areas[BuyerMainArea]))
}

func TestServiceConfigureLayoutAppliesPreferences(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for _, def := range []string{WidgetBISummary, WidgetSalesTrend, WidgetOrderStatus} {
		require.NoError(t, svc.AddWidget(ctx, AddWidgetRequest{DefinitionID: def, AreaCode: AdminMainArea}))
	}
	layout, err := svc.ConfigureLayout(ctx, adminViewer)
	require.NoError(t, err)
	ids := widgetIDs(layout.Areas[AdminMainArea])
	require.Len(t, ids, 3)

	require.NoError(t, svc.SavePreferences(ctx, adminViewer, LayoutOverrides{
		AreaOrder:     map[string][]string{AdminMainArea: {ids[2], ids[0]}},
		HiddenWidgets: map[string]bool{ids[1]: true},
	}))

	layout, err = svc.ConfigureLayout(ctx, adminViewer)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[0]}, widgetIDs(layout.Areas[AdminMainArea]))

	other := ViewerContext{UserID: "admin-2", Roles: []string{"admin"}}
	layout, err = svc.ConfigureLayout(ctx, other)
	require.NoError(t, err)
	assert.Equal(t, ids, widgetIDs(layout.Areas[AdminMainArea]))
}

func TestServiceSavePreferencesRequiresViewer(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.SavePreferences(context.Background(), ViewerContext{}, LayoutOverrides{})
	assert.True(t, goerrors.IsAuth(err))
}

func TestServiceConfigureLayoutAttachesProviderData(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterProvider(WidgetUserStats, ProviderFunc(func(context.Context, WidgetContext) (WidgetData, error) {
		return WidgetData{"value": 42}, nil
	})))
	require.NoError(t, registry.RegisterProvider(WidgetPendingReturns, ProviderFunc(func(context.Context, WidgetContext) (WidgetData, error) {
		return nil, errors.New("backend down")
	})))
	telemetry := &RecordingTelemetry{}
	svc, _ := newTestService(t, func(o *Options) {
		o.Providers = registry
		o.Telemetry = telemetry
	})
	ctx := context.Background()
	require.NoError(t, svc.AddWidget(ctx, AddWidgetRequest{DefinitionID: WidgetUserStats, AreaCode: AdminSidebarArea}))
	require.NoError(t, svc.AddWidget(ctx, AddWidgetRequest{DefinitionID: WidgetPendingReturns, AreaCode: AdminSidebarArea}))

	layout, err := svc.ConfigureLayout(ctx, adminViewer)
	require.NoError(t, err)
	widgets := layout.Areas[AdminSidebarArea]
	require.Len(t, widgets, 2)
	assert.Equal(t, WidgetData{"value": 42}, widgets[0].Metadata["data"])
	assert.Equal(t, widgetErrorMessage, widgets[1].Metadata["error"])
	assert.Contains(t, telemetry.Names(), "dashboard.widget.provider_error")
}

func TestServiceConfigureLayoutHonoursVisibilityWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc, _ := newTestService(t, func(o *Options) {
		o.Clock = func() time.Time { return now }
	})
	ctx := context.Background()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	require.NoError(t, svc.AddWidget(ctx, AddWidgetRequest{DefinitionID: WidgetBISummary, AreaCode: AdminMainArea, EndAt: &past}))
	require.NoError(t, svc.AddWidget(ctx, AddWidgetRequest{DefinitionID: WidgetSalesTrend, AreaCode: AdminMainArea, StartAt: &future}))
	require.NoError(t, svc.AddWidget(ctx, AddWidgetRequest{DefinitionID: WidgetOrderStatus, AreaCode: AdminMainArea, StartAt: &past, EndAt: &future}))

	layout, err := svc.ConfigureLayout(ctx, adminViewer)
	require.NoError(t, err)
	assert.Equal(t, []string{WidgetOrderStatus}, definitionIDs(layout.Areas[AdminMainArea]))
}

func TestServiceResolveAreaForbidsOtherPanels(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ResolveArea(ctx, buyerViewer, AdminMainArea)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryAuthz))

	_, err = svc.ResolveArea(ctx, adminViewer, SellerMainArea)
	assert.NoError(t, err)

	_, err = svc.ResolveArea(ctx, buyerViewer, "")
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
}

func TestServiceUpdateWidget(t *testing.T) {
	hook := &recordingRefreshHook{}
	svc, store := newTestService(t, func(o *Options) { o.RefreshHook = hook })
	ctx := context.Background()
	require.NoError(t, svc.AddWidget(ctx, AddWidgetRequest{DefinitionID: WidgetSalesTrend, AreaCode: AdminMainArea}))
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: AdminMainArea})
	require.NoError(t, err)
	id := resolved.Widgets[0].ID

	require.NoError(t, svc.UpdateWidget(ctx, id, UpdateWidgetRequest{Configuration: map[string]any{"months": 3}}))
	inst, err := store.GetInstance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"months": 3}, inst.Configuration)
	assert.Equal(t, "update", hook.last().Reason)

	err = svc.UpdateWidget(ctx, id, UpdateWidgetRequest{Configuration: map[string]any{"months": "three"}})
	assert.True(t, goerrors.IsValidation(err))

	err = svc.UpdateWidget(ctx, "missing", UpdateWidgetRequest{})
	assert.True(t, goerrors.IsNotFound(err))
}

func TestServiceRemoveAndReorderWidgets(t *testing.T) {
	hook := &recordingRefreshHook{}
	svc, store := newTestService(t, func(o *Options) { o.RefreshHook = hook })
	ctx := context.Background()
	for _, def := range []string{WidgetBISummary, WidgetSalesTrend, WidgetOrderStatus} {
		require.NoError(t, svc.AddWidget(ctx, AddWidgetRequest{DefinitionID: def, AreaCode: AdminMainArea}))
	}
	resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: AdminMainArea})
	require.NoError(t, err)
	ids := widgetIDs(resolved.Widgets)

	require.NoError(t, svc.ReorderWidgets(ctx, AdminMainArea, []string{ids[2], ids[1], ids[0]}))
	assert.Equal(t, "reorder", hook.last().Reason)
	require.NoError(t, svc.RemoveWidget(ctx, ids[1]))
	event := hook.last()
	assert.Equal(t, "delete", event.Reason)
	assert.Equal(t, WidgetSalesTrend, event.Instance.DefinitionID)

	resolved, err = store.ResolveArea(ctx, ResolveAreaInput{AreaCode: AdminMainArea})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[0]}, widgetIDs(resolved.Widgets))

	assert.True(t, goerrors.IsNotFound(svc.RemoveWidget(ctx, ids[1])))
	assert.True(t, goerrors.IsCategory(svc.ReorderWidgets(ctx, "", nil), goerrors.CategoryBadInput))
}

func TestServiceEmitsActivity(t *testing.T) {
	capture := &activity.CaptureHook{}
	svc, _ := newTestService(t, func(o *Options) {
		o.ActivityHooks = activity.Hooks{capture}
		o.ActivityConfig = activity.Config{Enabled: true}
	})
	ctx := ContextWithViewer(context.Background(), adminViewer)

	require.NoError(t, svc.AddWidget(ctx, AddWidgetRequest{DefinitionID: WidgetBISummary, AreaCode: AdminMainArea}))
	evt, ok := capture.Last()
	require.True(t, ok)
	assert.Equal(t, "dashboard.widget.add", evt.Verb)
	assert.Equal(t, "widget_instance", evt.ObjectType)
	assert.Equal(t, "admin-1", evt.ActorID)
	assert.Equal(t, activity.DefaultChannel, evt.Channel)
	assert.Equal(t, AdminMainArea, evt.Metadata["area_code"])

	require.NoError(t, svc.AddWidget(ctx, AddWidgetRequest{
		DefinitionID: WidgetSalesTrend,
		AreaCode:     AdminMainArea,
		ActorID:      "ops-bot",
	}))
	evt, _ = capture.Last()
	assert.Equal(t, "ops-bot", evt.ActorID)
	assert.Equal(t, "admin-1", evt.UserID)
}

func TestServiceWithoutStore(t *testing.T) {
	svc := NewService(Options{})
	_, err := svc.ConfigureLayout(context.Background(), adminViewer)
	assert.True(t, goerrors.IsInternal(err))
}

func TestRoleAuthorizer(t *testing.T) {
	auth := RoleAuthorizer{Registry: NewRegistry()}
	ctx := context.Background()

	assert.True(t, auth.CanViewWidget(ctx, adminViewer, WidgetInstance{DefinitionID: WidgetBISummary}))
	assert.False(t, auth.CanViewWidget(ctx, sellerViewer, WidgetInstance{DefinitionID: WidgetBISummary}))
	assert.True(t, auth.CanViewWidget(ctx, buyerViewer, WidgetInstance{DefinitionID: WidgetRecentActivity}))

	restricted := WidgetInstance{DefinitionID: WidgetRecentActivity, Visibility: WidgetVisibility{Roles: []string{"Seller"}}}
	assert.True(t, auth.CanViewWidget(ctx, sellerViewer, restricted))
	assert.False(t, auth.CanViewWidget(ctx, buyerViewer, restricted))
}

type recordingRefreshHook struct {
	events []WidgetEvent
}

func (h *recordingRefreshHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.events = append(h.events, event)
	return nil
}

func (h *recordingRefreshHook) last() WidgetEvent {
	if len(h.events) == 0 {
		return WidgetEvent{}
	}
	return h.events[len(h.events)-1]
}
