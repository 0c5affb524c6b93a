package panels

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-market-dashboard/components/kvstore"
	"github.com/goliatone/go-market-dashboard/components/settings"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/components/supplier"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

var (
	admin  = Viewer{UserID: "adm-1", Role: status.RoleAdmin}
	seller = Viewer{UserID: "sel-100", Role: status.RoleSeller}
	buyer  = Viewer{UserID: "buy-200", Role: status.RoleBuyer}
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
}

func newTestController(t *testing.T, client marketplace.Client, opts CatalogOptions) *Controller {
	t.Helper()
	if opts.Clock == nil {
		opts.Clock = fixedClock
	}
	store := kvstore.NewMemory()
	accessor, err := settings.NewAccessor(store)
	require.NoError(t, err)
	ctrl, err := NewController(ControllerOptions{
		Client:    client,
		Catalog:   NewCatalog(opts),
		Renderer:  &recordingRenderer{},
		Settings:  accessor,
		Documents: supplier.NewDocuments(store),
	})
	require.NoError(t, err)
	return ctrl
}

func query(values url.Values) func(string) string {
	return values.Get
}

func TestCatalogRegistersEveryScreen(t *testing.T) {
	catalog := NewCatalog(CatalogOptions{BasePath: "/market"})
	assert.Len(t, catalog.Keys(), 14)
	assert.Len(t, catalog.ForRole(status.RoleAdmin), 7)
	assert.Len(t, catalog.ForRole(status.RoleSeller), 5)
	assert.Len(t, catalog.ForRole(status.RoleBuyer), 2)

	view, ok := catalog.View(AdminUsers)
	require.True(t, ok)
	assert.Equal(t, "/market/admin/users", view.Path())
	assert.Equal(t, DefaultAdminPageSize, view.PageSize())

	view, ok = catalog.View(SellerOrders)
	require.True(t, ok)
	assert.Equal(t, DefaultSellerPageSize, view.PageSize())
}

func TestCatalogPageSizeOverride(t *testing.T) {
	catalog := NewCatalog(CatalogOptions{PageSizes: map[status.Role]int{status.RoleBuyer: 5, status.RoleSeller: 0}})
	view, _ := catalog.View(BuyerOrders)
	assert.Equal(t, 5, view.PageSize())
	view, _ = catalog.View(SellerCoupons)
	assert.Equal(t, DefaultSellerPageSize, view.PageSize())
}

func TestCatalogLookupEnforcesPanel(t *testing.T) {
	catalog := NewCatalog(CatalogOptions{})

	_, err := catalog.Lookup(AdminPayouts, status.RoleSeller)
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryAuthz))
	assert.Equal(t, http.StatusForbidden, StatusCode(err))

	_, err = catalog.Lookup("admin.unknown", status.RoleAdmin)
	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))
}

func TestNavigationMarksActiveScreen(t *testing.T) {
	catalog := NewCatalog(CatalogOptions{})
	links := catalog.Navigation(status.RoleBuyer, BuyerReturns)
	require.Len(t, links, 2)
	assert.False(t, links[0].Active)
	assert.True(t, links[1].Active)
	assert.Equal(t, "Returns", links[1].Label)
}

func TestUsersListCarriesHeaderStats(t *testing.T) {
	ctrl := newTestController(t, marketplace.NewMockClient(marketplace.DemoFixtures()), CatalogOptions{})

	page, err := ctrl.List(context.Background(), admin, AdminUsers, nil)
	require.NoError(t, err)
	assert.False(t, page.Failed())
	assert.Len(t, page.Rows, 3)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Stats, 3)
	assert.Equal(t, Stat{Label: "Total Users", Value: "3"}, page.Stats[0])
	assert.Equal(t, Stat{Label: "Sellers", Value: "1"}, page.Stats[1])
	assert.Equal(t, Stat{Label: "Buyers", Value: "2"}, page.Stats[2])
	assert.False(t, page.Pager.Visible)
	assert.NotEmpty(t, page.Navigation)
}

func TestListSearchAppliesToLoadedPage(t *testing.T) {
	ctrl := newTestController(t, marketplace.NewMockClient(marketplace.DemoFixtures()), CatalogOptions{})

	page, err := ctrl.List(context.Background(), admin, AdminUsers, query(url.Values{"search": {"NGOZI"}}))
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "buy-201", page.Rows[0].ID)
	assert.Equal(t, 3, page.Total, "total keeps the backend count")
	assert.Equal(t, "NGOZI", page.Search)
}

func TestListPagerLinksKeepSearch(t *testing.T) {
	data := marketplace.MockData{}
	for i := range 45 {
		data.Drivers = append(data.Drivers, marketplace.Driver{ID: "drv-" + string(rune('a'+i%26)), Name: "Driver"})
	}
	ctrl := newTestController(t, marketplace.NewMockClient(data), CatalogOptions{
		BasePath:  "/market",
		PageSizes: map[status.Role]int{status.RoleAdmin: 20},
	})

	page, err := ctrl.List(context.Background(), admin, AdminDrivers, query(url.Values{"page": {"2"}, "search": {"driver"}}))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.Pages)
	assert.True(t, page.Pager.Visible)
	assert.Equal(t, "/market/admin/drivers?search=driver", page.Pager.PrevHref)
	assert.Equal(t, "/market/admin/drivers?page=3&search=driver", page.Pager.NextHref)

	page, err = ctrl.List(context.Background(), admin, AdminDrivers, query(url.Values{"page": {"3"}}))
	require.NoError(t, err)
	assert.Len(t, page.Rows, 5)
	assert.Empty(t, page.Pager.NextHref)
}

func TestListFetchFailureRendersRetry(t *testing.T) {
	client := marketplace.NewMockClient(marketplace.DemoFixtures())
	client.FailNext(goerrors.NewRetryable(marketplace.FetchFailedMessage, goerrors.CategoryExternal))
	ctrl := newTestController(t, client, CatalogOptions{BasePath: "/market"})

	page, err := ctrl.List(context.Background(), seller, SellerOrders, query(url.Values{"page": {"2"}, "search": {"x"}}))
	require.NoError(t, err)
	assert.True(t, page.Failed())
	assert.Equal(t, "/market/seller/orders?page=2&search=x", page.RetryHref)
	assert.Equal(t, marketplace.FetchFailedMessage, page.ErrorDetail)
	assert.Empty(t, page.Rows)
	assert.False(t, page.Pager.Visible)

	page, err = ctrl.List(context.Background(), seller, SellerOrders, nil)
	require.NoError(t, err)
	assert.False(t, page.Failed())
	assert.Len(t, page.Rows, 3)
}

func TestListSelectedOpensDetail(t *testing.T) {
	ctrl := newTestController(t, marketplace.NewMockClient(marketplace.DemoFixtures()), CatalogOptions{BasePath: "/market"})

	page, err := ctrl.List(context.Background(), buyer, BuyerOrders, query(url.Values{"selected": {"ord-2"}}))
	require.NoError(t, err)
	require.NotNil(t, page.Detail)
	assert.Equal(t, "Order SMB-10002", page.Detail.Title)
	assert.Equal(t, "/market/buyer/orders", page.Detail.CloseHref)

	var items *FieldGroup
	for i := range page.Detail.Groups {
		if page.Detail.Groups[i].Title == "Items" {
			items = &page.Detail.Groups[i]
		}
	}
	require.NotNil(t, items)
	assert.Len(t, items.Rows, 2)
	assert.Equal(t, []string{"Product", "SKU", "Qty", "Unit price", "Line total"}, items.Headers)

	page, err = ctrl.List(context.Background(), buyer, BuyerOrders, query(url.Values{"selected": {"ord-404"}}))
	require.NoError(t, err)
	assert.Nil(t, page.Detail)
}

func TestSellerOrderActionsOnlyWhileAwaitingSeller(t *testing.T) {
	ctrl := newTestController(t, marketplace.NewMockClient(marketplace.DemoFixtures()), CatalogOptions{})

	page, err := ctrl.List(context.Background(), seller, SellerOrders, nil)
	require.NoError(t, err)
	byID := map[string]Row{}
	for _, row := range page.Rows {
		byID[row.ID] = row
	}
	require.Len(t, byID["ord-1"].Actions, 2)
	assert.Equal(t, ActionAccept, byID["ord-1"].Actions[0].Name)
	assert.Equal(t, ActionReject, byID["ord-1"].Actions[1].Name)
	assert.Equal(t, "reason", byID["ord-1"].Actions[1].Inputs[0].Name)
	assert.Empty(t, byID["ord-2"].Actions)
}

type overlayStub struct {
	pending string
}

func (o overlayStub) Orders(items []marketplace.Order) []marketplace.Order {
	out := make([]marketplace.Order, len(items))
	for i, item := range items {
		if item.ID == o.pending {
			item.Status = status.OrderConfirmed
		}
		out[i] = item
	}
	return out
}

func (o overlayStub) OrderPending(id string) bool { return id == o.pending }

func (o overlayStub) Returns(items []marketplace.Return) []marketplace.Return { return items }

func (o overlayStub) ReturnPending(string) bool { return false }

func TestSellerOrdersApplyOverlay(t *testing.T) {
	ctrl := newTestController(t, marketplace.NewMockClient(marketplace.DemoFixtures()), CatalogOptions{
		Overlays: overlayStub{pending: "ord-1"},
	})

	page, err := ctrl.List(context.Background(), seller, SellerOrders, nil)
	require.NoError(t, err)
	for _, row := range page.Rows {
		if row.ID != "ord-1" {
			continue
		}
		assert.True(t, row.Pending)
		assert.Empty(t, row.Actions)
		assert.Equal(t, status.OrderConfirmed.Label(), row.Cells[3].Text)
	}
}

func TestUnrecognisedStatusShowsBackendValue(t *testing.T) {
	data := marketplace.DemoFixtures()
	for i := range data.Orders {
		if data.Orders[i].ID == "ord-1" {
			require.NoError(t, data.Orders[i].Status.UnmarshalText([]byte("awaiting_pickup")))
		}
	}
	ctrl := newTestController(t, marketplace.NewMockClient(data), CatalogOptions{})

	page, err := ctrl.List(context.Background(), seller, SellerOrders, query(url.Values{"selected": {"ord-1"}}))
	require.NoError(t, err)
	for _, row := range page.Rows {
		if row.ID != "ord-1" {
			continue
		}
		require.NotNil(t, row.Cells[3].Badge)
		assert.Equal(t, "awaiting_pickup", row.Cells[3].Badge.Value)
		assert.Equal(t, "Unknown (awaiting_pickup)", row.Cells[3].Text)
		assert.Equal(t, status.ToneUnknown, row.Cells[3].Badge.Tone)
	}

	require.NotNil(t, page.Detail)
	var found bool
	for _, group := range page.Detail.Groups {
		for _, f := range group.Fields {
			if f.Label == "Status" {
				found = true
				assert.Equal(t, "Unknown (awaiting_pickup)", f.Value)
			}
		}
	}
	assert.True(t, found)
}

func TestSellerProductsFlagLowStock(t *testing.T) {
	ctrl := newTestController(t, marketplace.NewMockClient(marketplace.DemoFixtures()), CatalogOptions{})

	page, err := ctrl.List(context.Background(), seller, SellerProducts, nil)
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)
	require.NotNil(t, page.Rows[0].Cells[4].Badge)
	assert.Equal(t, "Low stock", page.Rows[0].Cells[4].Badge.Label)
	assert.Nil(t, page.Rows[1].Cells[4].Badge)
}

func TestScreenFormsAreOffered(t *testing.T) {
	ctrl := newTestController(t, marketplace.NewMockClient(marketplace.DemoFixtures()), CatalogOptions{BasePath: "/market"})

	coupons, err := ctrl.List(context.Background(), seller, SellerCoupons, nil)
	require.NoError(t, err)
	require.Len(t, coupons.Forms, 1)
	assert.Equal(t, "/market/seller/coupons/create", coupons.Forms[0].Href)
	assert.Equal(t, "10%", coupons.Rows[0].Cells[2].Text)
	assert.Equal(t, "37 / 100", coupons.Rows[0].Cells[3].Text)

	loans, err := ctrl.List(context.Background(), seller, SellerLoans, nil)
	require.NoError(t, err)
	require.Len(t, loans.Forms, 1)
	terms := loans.Forms[0].Inputs[1].Options
	assert.Len(t, terms, len(LoanTerms))

	returns, err := ctrl.List(context.Background(), buyer, BuyerReturns, nil)
	require.NoError(t, err)
	require.Len(t, returns.Forms, 1)
	assert.Equal(t, ActionRequestReturn, returns.Forms[0].Name)
}

func TestAdminReturnsOfferClassification(t *testing.T) {
	ctrl := newTestController(t, marketplace.NewMockClient(marketplace.DemoFixtures()), CatalogOptions{})

	page, err := ctrl.List(context.Background(), admin, AdminReturns, nil)
	require.NoError(t, err)
	require.NotEmpty(t, page.Rows)
	require.Len(t, page.Rows[0].Actions, 1)
	action := page.Rows[0].Actions[0]
	assert.Equal(t, ActionClassify, action.Name)
	assert.Len(t, action.Inputs[0].Options, len(status.ReturnFaults()))
	assert.Equal(t, "Item Not As Described", page.Rows[0].Cells[3].Text)
}

func TestFlashFromQuery(t *testing.T) {
	ctrl := newTestController(t, marketplace.NewMockClient(marketplace.DemoFixtures()), CatalogOptions{})

	page, err := ctrl.List(context.Background(), buyer, BuyerOrders, query(url.Values{NoticeParam: {"Return requested"}, NoticeToneParam: {"success"}}))
	require.NoError(t, err)
	require.NotNil(t, page.Flash)
	assert.Equal(t, status.ToneSuccess, page.Flash.Tone)

	page, err = ctrl.List(context.Background(), buyer, BuyerOrders, query(url.Values{NoticeParam: {"Hello"}, NoticeToneParam: {"<script>"}}))
	require.NoError(t, err)
	assert.Equal(t, status.ToneInfo, page.Flash.Tone)
}

func TestSettingsAndDocumentsPages(t *testing.T) {
	ctrl := newTestController(t, marketplace.NewMockClient(marketplace.DemoFixtures()), CatalogOptions{})

	page, err := ctrl.Settings(context.Background(), seller, nil)
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), page.Settings)

	docs, err := ctrl.Documents(context.Background(), seller, nil)
	require.NoError(t, err)
	assert.Empty(t, docs.Documents)
	assert.Len(t, docs.Types, len(supplier.DocumentTypes))

	_, err = ctrl.Documents(context.Background(), buyer, nil)
	assert.Equal(t, http.StatusForbidden, StatusCode(err))
}

type recordingRenderer struct {
	name string
	data any
}

func (r *recordingRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.name = name
	r.data = data
	for _, w := range out {
		_, _ = io.WriteString(w, name)
	}
	return name, nil
}

func TestRenderListPassesPageToTemplate(t *testing.T) {
	renderer := &recordingRenderer{}
	ctrl, err := NewController(ControllerOptions{
		Client:   marketplace.NewMockClient(marketplace.DemoFixtures()),
		Renderer: renderer,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ctrl.RenderList(context.Background(), admin, AdminReviews, nil, &buf))
	assert.Equal(t, listTemplate, renderer.name)
	payload, ok := renderer.data.(map[string]any)
	require.True(t, ok)
	page, ok := payload["page"].(ListPage)
	require.True(t, ok)
	assert.Equal(t, AdminReviews, page.Key)
	assert.True(t, strings.HasPrefix(buf.String(), "list"))
}

func TestControllerRequiresClient(t *testing.T) {
	_, err := NewController(ControllerOptions{})
	require.Error(t, err)
	assert.True(t, goerrors.IsInternal(err))
}

func TestStatusCode(t *testing.T) {
	cases := map[int]error{
		http.StatusOK:                  nil,
		http.StatusUnprocessableEntity: goerrors.NewValidation("bad", goerrors.FieldError{Field: "code", Message: "required"}),
		http.StatusNotFound:            goerrors.New("missing", goerrors.CategoryNotFound),
		http.StatusUnauthorized:        goerrors.New("who", goerrors.CategoryAuth),
		http.StatusBadRequest:          goerrors.New("bad", goerrors.CategoryBadInput),
		http.StatusConflict:            goerrors.New("already accepted", goerrors.CategoryOperation),
		http.StatusBadGateway:          goerrors.NewRetryable(marketplace.FetchFailedMessage, goerrors.CategoryExternal),
		http.StatusInternalServerError: errors.New("boom"),
	}
	for code, err := range cases {
		assert.Equal(t, code, StatusCode(err), "error %v", err)
	}
}
