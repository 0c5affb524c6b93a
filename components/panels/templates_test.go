package panels

import (
	"bytes"
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-market-dashboard/components/kvstore"
	"github.com/goliatone/go-market-dashboard/components/settings"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/components/supplier"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

func TestListTemplateRendersOutsideSourceTree(t *testing.T) {
	t.Chdir(t.TempDir())

	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)
	data := marketplace.MockData{}
	for range 45 {
		data.Drivers = append(data.Drivers, marketplace.Driver{ID: "drv-1", Name: "Driver"})
	}
	store := kvstore.NewMemory()
	accessor, err := settings.NewAccessor(store)
	require.NoError(t, err)
	ctrl, err := NewController(ControllerOptions{
		Client: marketplace.NewMockClient(data),
		Catalog: NewCatalog(CatalogOptions{
			BasePath:  "/market",
			Clock:     fixedClock,
			PageSizes: map[status.Role]int{status.RoleAdmin: 20},
		}),
		Renderer:  renderer,
		Settings:  accessor,
		Documents: supplier.NewDocuments(store),
	})
	require.NoError(t, err)

	var out bytes.Buffer
	get := query(url.Values{"page": {"2"}, "search": {"driver"}})
	require.NoError(t, ctrl.RenderList(context.Background(), admin, AdminDrivers, get, &out))
	html := out.String()
	assert.Contains(t, html, `action="/market/admin/drivers"`)
	assert.Contains(t, html, `<input type="hidden" name="page" value="2">`, "searching keeps the current page")
	assert.Contains(t, html, `value="driver"`)
	assert.Contains(t, html, "Page 2 of 3")
}
