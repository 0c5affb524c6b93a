package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedLayoutFillsOnlyEmptyAreas(t *testing.T) {
	store := NewMemoryWidgetStore()
	svc := NewService(Options{WidgetStore: store})
	ctx := context.Background()
	require.NoError(t, RegisterAreas(ctx, store))
	require.NoError(t, RegisterDefinitions(ctx, store, nil))

	placed, err := SeedLayout(ctx, svc)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultSeedWidgets()), placed)

	placed, err = SeedLayout(ctx, svc)
	require.NoError(t, err)
	assert.Zero(t, placed)

	total := 0
	for _, area := range store.Areas() {
		resolved, err := store.ResolveArea(ctx, ResolveAreaInput{AreaCode: area.Code})
		require.NoError(t, err)
		total += len(resolved.Widgets)
	}
	assert.Equal(t, len(DefaultSeedWidgets()), total)
}

func TestRegisterAreasRequiresStore(t *testing.T) {
	assert.ErrorIs(t, RegisterAreas(context.Background(), nil), errMissingWidgetStore)
	assert.ErrorIs(t, RegisterDefinitions(context.Background(), nil, nil), errMissingWidgetStore)
	_, err := SeedLayout(context.Background(), nil)
	assert.Error(t, err)
}

func TestDefaultSeedWidgetsAreCopies(t *testing.T) {
	seeds := DefaultSeedWidgets()
	seeds[0].AreaCode = "mutated"
	assert.NotEqual(t, "mutated", DefaultSeedWidgets()[0].AreaCode)
}

func TestAreasForRole(t *testing.T) {
	assert.Equal(t, []string{AdminMainArea, AdminSidebarArea}, AreasForRole(adminViewer.Role()))
	assert.Equal(t, []string{BuyerMainArea, BuyerSidebarArea}, AreasForRole(buyerViewer.Role()))
	assert.Empty(t, AreasForRole(ViewerContext{}.Role()))
}
