package dashboard

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-market-dashboard/components/status"
)

func TestRegistryStartsWithMarketplaceDefinitions(t *testing.T) {
	registry := NewRegistry()
	defs := registry.Definitions()
	require.Len(t, defs, len(DefaultWidgetDefinitions()))
	for i := 1; i < len(defs); i++ {
		assert.Less(t, defs[i-1].Code, defs[i].Code)
	}
	_, ok := registry.Provider(WidgetBISummary)
	assert.False(t, ok)
}

func TestRegistryProviderNeedsDefinition(t *testing.T) {
	registry := NewRegistry()
	stub := ProviderFunc(func(context.Context, WidgetContext) (WidgetData, error) { return WidgetData{}, nil })

	err := registry.RegisterProvider("market.unknown", stub)
	assert.True(t, goerrors.IsNotFound(err))
	err = registry.RegisterProvider(WidgetBISummary, nil)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))

	require.NoError(t, registry.RegisterProvider(WidgetBISummary, stub))
	def, _ := registry.Definition(WidgetBISummary)
	def.Name = "Renamed"
	require.NoError(t, registry.RegisterDefinition(def))
	_, ok := registry.Provider(WidgetBISummary)
	assert.True(t, ok, "redefining keeps the provider")

	assert.Error(t, registry.RegisterDefinition(WidgetDefinition{}))
}

func TestRegistryDefinitionsForRole(t *testing.T) {
	registry := NewRegistry()
	for _, def := range registry.DefinitionsFor(status.RoleBuyer) {
		assert.True(t, def.AllowsRole(status.RoleBuyer), def.Code)
	}
	codes := make([]string, 0)
	for _, def := range registry.DefinitionsFor(status.RoleAdmin) {
		codes = append(codes, def.Code)
	}
	assert.Contains(t, codes, WidgetBISummary)
	assert.NotContains(t, codes, WidgetRecentOrders)
}
