package commands

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-market-dashboard/components/dashboard"
	"github.com/goliatone/go-market-dashboard/components/kvstore"
	"github.com/goliatone/go-market-dashboard/components/optimistic"
	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/settings"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/components/supplier"
	"github.com/goliatone/go-market-dashboard/pkg/activity"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

var (
	seller = panels.Viewer{UserID: "sel-100", Role: status.RoleSeller}
	buyer  = panels.Viewer{UserID: "buy-200", Role: status.RoleBuyer}
	admin  = panels.Viewer{UserID: "adm-1", Role: status.RoleAdmin}
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
}

type refreshRecorder struct {
	mu     sync.Mutex
	events []dashboard.WidgetEvent
	actors []dashboard.ActivityContext
}

func (r *refreshRecorder) WidgetUpdated(ctx context.Context, evt dashboard.WidgetEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	r.actors = append(r.actors, dashboard.ActivityFromContext(ctx))
	return nil
}

type harness struct {
	client    *marketplace.MockClient
	telemetry *dashboard.RecordingTelemetry
	capture   *activity.CaptureHook
	refresh   *refreshRecorder
	settings  *settings.Accessor
	bus       *Bus
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		client:    marketplace.NewMockClient(marketplace.DemoFixtures(), marketplace.WithClock(fixedClock)),
		telemetry: &dashboard.RecordingTelemetry{},
		capture:   &activity.CaptureHook{},
		refresh:   &refreshRecorder{},
	}
	store := kvstore.NewMemory()
	accessor, err := settings.NewAccessor(store)
	require.NoError(t, err)
	h.settings = accessor
	h.bus = NewBus(BusOptions{
		Deps:      h.deps(h.client),
		Settings:  accessor,
		Documents: supplier.NewDocuments(store),
		Tokens:    supplier.NewTokens(store),
	})
	return h
}

func (h *harness) deps(client marketplace.Client) Deps {
	return Deps{
		Client:    client,
		Telemetry: h.telemetry,
		Activity:  activity.NewEmitter(activity.Hooks{h.capture}, activity.Config{Enabled: true}),
		Refresh:   h.refresh,
		Clock:     fixedClock,
	}
}

func findOrder(t *testing.T, data marketplace.MockData, id string) marketplace.Order {
	t.Helper()
	for _, o := range data.Orders {
		if o.ID == id {
			return o
		}
	}
	t.Fatalf("order %s not found", id)
	return marketplace.Order{}
}

func TestDispatchAcceptOrderSettlesSideEffects(t *testing.T) {
	h := newHarness(t)

	result, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen:   panels.SellerOrders,
		Action:   panels.ActionAccept,
		RecordID: "ord-1",
		Viewer:   seller,
	})
	require.NoError(t, err)
	assert.Equal(t, "Order SMB-10001 confirmed", result.Message)

	order := findOrder(t, h.client.Snapshot(), "ord-1")
	assert.Equal(t, status.OrderConfirmed, order.Status)

	assert.Contains(t, h.telemetry.Names(), "seller.order.accept")

	evt, ok := h.capture.Last()
	require.True(t, ok)
	assert.Equal(t, "seller.order.accept", evt.Verb)
	assert.Equal(t, "sel-100", evt.ActorID)
	assert.Equal(t, "ord-1", evt.ObjectID)
	assert.Equal(t, "seller", evt.Metadata["role"])
	assert.NotEmpty(t, evt.ID)

	require.Len(t, h.refresh.events, 1)
	assert.Equal(t, panels.SellerOrders, h.refresh.events[0].Resource)
	assert.Equal(t, "seller.order.accept", h.refresh.events[0].Reason)
	assert.Equal(t, "seller", h.refresh.actors[0].Role)

	// The confirmed entry is dropped on the next overlay.
	merged := h.bus.Orders([]marketplace.Order{order})
	assert.Equal(t, status.OrderConfirmed, merged[0].Status)
	_, tracked := h.bus.orders.Get("ord-1")
	assert.False(t, tracked)
}

func TestOrdersOverlayYieldsToNewerFetch(t *testing.T) {
	h := newHarness(t)

	_, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen:   panels.SellerOrders,
		Action:   panels.ActionAccept,
		RecordID: "ord-1",
		Viewer:   seller,
	})
	require.NoError(t, err)
	require.Equal(t, optimistic.Confirmed, h.bus.orders.Phase("ord-1"))

	shipped := findOrder(t, h.client.Snapshot(), "ord-1")
	shipped.Status = status.OrderShipped
	merged := h.bus.Orders([]marketplace.Order{shipped})
	assert.Equal(t, status.OrderShipped, merged[0].Status)

	merged = h.bus.Orders([]marketplace.Order{shipped})
	assert.Equal(t, status.OrderShipped, merged[0].Status)
}

func TestReturnsOverlayYieldsToNewerFetch(t *testing.T) {
	h := newHarness(t)

	result, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen:   panels.AdminReturns,
		Action:   panels.ActionClassify,
		RecordID: "ret-1",
		Values:   map[string]string{"fault": "seller"},
		Viewer:   admin,
	})
	require.NoError(t, err)

	fetched := result.Record.(marketplace.Return)
	fetched.Fault = status.FaultBuyer
	merged := h.bus.Returns([]marketplace.Return{fetched})
	assert.Equal(t, status.FaultBuyer, merged[0].Fault)
	assert.False(t, h.bus.ReturnPending("ret-1"))
}

func TestDispatchRejectRequiresReason(t *testing.T) {
	h := newHarness(t)

	_, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen:   panels.SellerOrders,
		Action:   panels.ActionReject,
		RecordID: "ord-1",
		Viewer:   seller,
	})
	require.Error(t, err)
	assert.True(t, goerrors.IsValidation(err))
	assert.Equal(t, status.OrderPending, findOrder(t, h.client.Snapshot(), "ord-1").Status)

	result, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen:   panels.SellerOrders,
		Action:   panels.ActionReject,
		RecordID: "ord-1",
		Values:   map[string]string{"reason": "  Out of stock "},
		Viewer:   seller,
	})
	require.NoError(t, err)
	order := result.Record.(marketplace.Order)
	assert.Equal(t, status.OrderRejected, order.Status)
	assert.Equal(t, "Out of stock", order.RejectReason)
}

func TestDecideOrderRevertsOnFailure(t *testing.T) {
	h := newHarness(t)
	fetched := findOrder(t, h.client.Snapshot(), "ord-1")
	boom := errors.New("connection reset")
	h.client.FailNext(boom)

	got, err := h.bus.DecideOrder.Decide(context.Background(), DecideOrder{
		Viewer:   seller,
		OrderID:  "ord-1",
		Accept:   true,
		Snapshot: fetched,
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, status.OrderPending, got.Status)
	assert.Equal(t, optimistic.Reverted, h.bus.orders.Phase("ord-1"))
	assert.ErrorIs(t, h.bus.OrderFailure("ord-1"), boom)
	assert.False(t, h.bus.OrderPending("ord-1"))

	assert.Contains(t, h.telemetry.Names(), "seller.order.accept.failed")
	assert.NotContains(t, h.telemetry.Names(), "seller.order.accept")
	assert.Empty(t, h.capture.Events)
	assert.Empty(t, h.refresh.events)

	merged := h.bus.Orders([]marketplace.Order{fetched})
	assert.Equal(t, status.OrderPending, merged[0].Status)
	assert.Equal(t, optimistic.Idle, h.bus.orders.Phase("ord-1"))
}

type gatedClient struct {
	marketplace.Client
	entered chan struct{}
	release chan struct{}
}

func (g *gatedClient) AcceptOrder(ctx context.Context, id string) (marketplace.Order, error) {
	close(g.entered)
	<-g.release
	return g.Client.AcceptOrder(ctx, id)
}

func TestOrdersOverlayShowsPendingDecision(t *testing.T) {
	h := newHarness(t)
	gate := &gatedClient{Client: h.client, entered: make(chan struct{}), release: make(chan struct{})}
	h.bus = NewBus(BusOptions{Deps: h.deps(gate)})
	fetched := findOrder(t, h.client.Snapshot(), "ord-1")

	done := make(chan error, 1)
	go func() {
		_, err := h.bus.DecideOrder.Decide(context.Background(), DecideOrder{Viewer: seller, OrderID: "ord-1", Accept: true, Snapshot: fetched})
		done <- err
	}()
	<-gate.entered

	assert.True(t, h.bus.OrderPending("ord-1"))
	merged := h.bus.Orders([]marketplace.Order{fetched})
	assert.Equal(t, status.OrderConfirmed, merged[0].Status)
	assert.Equal(t, fetched.OrderNumber, merged[0].OrderNumber)

	_, err := h.bus.DecideOrder.Decide(context.Background(), DecideOrder{Viewer: seller, OrderID: "ord-1", Accept: true})
	var inflight optimistic.ErrInFlight
	assert.ErrorAs(t, err, &inflight)

	close(gate.release)
	require.NoError(t, <-done)
	assert.False(t, h.bus.OrderPending("ord-1"))
}

func TestDispatchChecksViewerRole(t *testing.T) {
	h := newHarness(t)

	_, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen:   panels.SellerOrders,
		Action:   panels.ActionAccept,
		RecordID: "ord-1",
		Viewer:   buyer,
	})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryAuthz))

	_, err = h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen: panels.SellerProducts,
		Action: panels.ActionCreate,
		Viewer: seller,
	})
	require.Error(t, err)
	assert.True(t, goerrors.IsNotFound(err))
}

func TestClassifyReturn(t *testing.T) {
	h := newHarness(t)

	_, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen:   panels.AdminReturns,
		Action:   panels.ActionClassify,
		RecordID: "ret-1",
		Values:   map[string]string{"fault": "nobody"},
		Viewer:   admin,
	})
	require.Error(t, err)
	assert.True(t, goerrors.IsValidation(err))

	result, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen:   panels.AdminReturns,
		Action:   panels.ActionClassify,
		RecordID: "ret-1",
		Values:   map[string]string{"fault": "seller", "note": "Listing photos were misleading"},
		Viewer:   admin,
	})
	require.NoError(t, err)
	ret := result.Record.(marketplace.Return)
	assert.Equal(t, status.FaultSeller, ret.Fault)
	assert.Equal(t, status.ReturnUnderReview, ret.Status)
	assert.Equal(t, "Listing photos were misleading", ret.AdminNote)

	merged := h.bus.Returns([]marketplace.Return{ret})
	assert.Equal(t, status.FaultSeller, merged[0].Fault)
	assert.False(t, h.bus.ReturnPending("ret-1"))

	evt, ok := h.capture.Last()
	require.True(t, ok)
	assert.Equal(t, "admin.return.classify", evt.Verb)
	assert.Equal(t, "seller", evt.Metadata["fault"])
}

func TestRequestReturn(t *testing.T) {
	h := newHarness(t)
	before := len(h.client.Snapshot().Returns)

	_, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen: panels.BuyerReturns,
		Action: panels.ActionRequestReturn,
		Values: map[string]string{"orderId": "ord-2"},
		Viewer: buyer,
	})
	require.Error(t, err)
	assert.True(t, goerrors.IsValidation(err))

	_, err = h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen: panels.BuyerReturns,
		Action: panels.ActionRequestReturn,
		Values: map[string]string{"orderId": "ord-1", "reason": "damaged"},
		Viewer: buyer,
	})
	require.Error(t, err)
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryOperation))

	result, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen: panels.BuyerReturns,
		Action: panels.ActionRequestReturn,
		Values: map[string]string{"orderId": "ord-2", "reason": "damaged", "details": "Screen cracked"},
		Viewer: buyer,
	})
	require.NoError(t, err)
	assert.Equal(t, "Return requested for SMB-10002", result.Message)
	assert.Len(t, h.client.Snapshot().Returns, before+1)
	assert.Equal(t, panels.BuyerReturns, h.refresh.events[len(h.refresh.events)-1].Resource)
}

func TestCouponFormCoerce(t *testing.T) {
	input, err := CouponForm{
		Code:           " summer25 ",
		Type:           "percentage",
		Value:          "15",
		MinOrderAmount: "5,000",
		UsageLimit:     "",
		ExpiresAt:      "2025-12-31",
	}.Coerce()
	require.NoError(t, err)
	assert.Equal(t, "SUMMER25", input.Code)
	assert.Equal(t, status.CouponPercentage, input.Type)
	assert.Equal(t, 15.0, input.Value)
	assert.Equal(t, 5000.0, input.MinOrderAmount)
	assert.Equal(t, 0, input.UsageLimit)
	assert.Equal(t, time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC), input.ExpiresAt)

	_, err = CouponForm{Code: "BAD", Type: "fixed", Value: "ten", UsageLimit: "1.5"}.Coerce()
	require.Error(t, err)
	var gerr *goerrors.Error
	require.True(t, goerrors.As(err, &gerr))
	fields := map[string]bool{}
	for _, fe := range gerr.ValidationErrors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["value"])
	assert.True(t, fields["usageLimit"])

	_, err = CouponForm{Code: "HALFOFF", Type: "percentage", Value: "150"}.Coerce()
	require.Error(t, err)
	assert.True(t, goerrors.IsValidation(err))

	_, err = CouponForm{Code: "NO-DASH", Type: "fixed", Value: "500"}.Coerce()
	assert.True(t, goerrors.IsValidation(err))
}

func TestCreateCouponAppendsOne(t *testing.T) {
	h := newHarness(t)
	before := len(h.client.Snapshot().Coupons)

	result, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen: panels.SellerCoupons,
		Action: panels.ActionCreate,
		Values: map[string]string{
			"code":           "flash500",
			"type":           "fixed",
			"value":          "500",
			"minOrderAmount": "10000",
			"usageLimit":     "20",
			"expiresAt":      "2025-07-01",
		},
		Viewer: seller,
	})
	require.NoError(t, err)
	assert.Equal(t, "Coupon FLASH500 created", result.Message)

	coupons := h.client.Snapshot().Coupons
	require.Len(t, coupons, before+1)
	created := coupons[len(coupons)-1]
	assert.Equal(t, "FLASH500", created.Code)
	assert.Equal(t, 0, created.UsedCount)
	assert.Equal(t, 500.0, created.Value)
	assert.Equal(t, 10000.0, created.MinOrderAmount)
	assert.Equal(t, 20, created.UsageLimit)
	assert.True(t, created.Active)

	_, err = h.bus.CreateCoupon.Create(context.Background(), CreateCoupon{Viewer: seller, Form: CouponForm{
		Code: "WELCOME10", Type: "percentage", Value: "10",
	}})
	require.Error(t, err)
	assert.True(t, goerrors.IsValidation(err))

	_, err = h.bus.CreateCoupon.Create(context.Background(), CreateCoupon{Viewer: seller, Form: CouponForm{
		Code: "OLDNEWS", Type: "fixed", Value: "100", ExpiresAt: "2025-01-01",
	}})
	require.Error(t, err)
	assert.True(t, goerrors.IsValidation(err))
	assert.Len(t, h.client.Snapshot().Coupons, before+1)
}

func TestApplyForLoan(t *testing.T) {
	h := newHarness(t)

	_, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen: panels.SellerLoans,
		Action: panels.ActionApply,
		Values: map[string]string{"amount": "250000", "termMonths": "5", "purpose": "Restock"},
		Viewer: seller,
	})
	require.Error(t, err)
	assert.True(t, goerrors.IsValidation(err))

	result, err := h.bus.Dispatch(context.Background(), panels.ActionRequest{
		Screen: panels.SellerLoans,
		Action: panels.ActionApply,
		Values: map[string]string{"amount": "250,000", "termMonths": "6", "purpose": "Restock inventory"},
		Viewer: seller,
	})
	require.NoError(t, err)
	loan := result.Record.(marketplace.LoanApplication)
	assert.Equal(t, status.LoanPending, loan.Status)
	assert.Equal(t, 250000.0, loan.Amount)
	assert.Equal(t, 6, loan.TermMonths)
	assert.Greater(t, loan.InterestRate, 0.0)
}

func TestAdminCommands(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.bus.Dispatch(ctx, panels.ActionRequest{
		Screen: panels.AdminDrivers,
		Action: panels.ActionCreate,
		Values: map[string]string{"name": "Musa Bello", "phone": "+2348030000000", "email": "not-an-email"},
		Viewer: admin,
	})
	require.Error(t, err)
	assert.True(t, goerrors.IsValidation(err))

	result, err := h.bus.Dispatch(ctx, panels.ActionRequest{
		Screen:   panels.AdminPayouts,
		Action:   panels.ActionProcess,
		RecordID: "pay-1",
		Viewer:   admin,
	})
	require.NoError(t, err)
	payout := result.Record.(marketplace.Payout)
	assert.Equal(t, status.PayoutPaid, payout.Status)
	assert.NotEmpty(t, payout.Reference)
	require.NotNil(t, payout.ProcessedAt)

	result, err = h.bus.Dispatch(ctx, panels.ActionRequest{
		Screen:   panels.AdminReviews,
		Action:   panels.ActionReject,
		RecordID: "rev-2",
		Viewer:   admin,
	})
	require.NoError(t, err)
	assert.Equal(t, status.ReviewRejected, result.Record.(marketplace.Review).Status)
	assert.Equal(t, "admin.review.reject", h.refresh.events[len(h.refresh.events)-1].Reason)

	_, err = h.bus.ModerateReview.Moderate(ctx, ModerateReview{Viewer: admin, ReviewID: "rev-1", Decision: status.ReviewFlagged})
	assert.True(t, goerrors.IsCategory(err, goerrors.CategoryBadInput))
}

func TestSaveSettingsKeepsMaintenanceForNonAdmins(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	next := settings.Defaults()
	next.MaintenanceMode = true
	next.SMSNotifications = true
	saved, err := h.bus.SaveSettings.Save(ctx, SaveSettings{Viewer: seller, Settings: next})
	require.NoError(t, err)
	assert.False(t, saved.MaintenanceMode)
	assert.True(t, saved.SMSNotifications)

	saved, err = h.bus.SaveSettings.Save(ctx, SaveSettings{Viewer: admin, Settings: next})
	require.NoError(t, err)
	assert.True(t, saved.MaintenanceMode)

	evt, ok := h.capture.Last()
	require.True(t, ok)
	assert.Equal(t, "admin.settings.save", evt.Verb)
	assert.Empty(t, h.refresh.events)

	next.SessionTimeoutMinutes = -1
	_, err = h.bus.SaveSettings.Save(ctx, SaveSettings{Viewer: seller, Settings: next})
	assert.True(t, goerrors.IsValidation(err))
}

func TestProfileDocumentsAndToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	doc, err := h.bus.AddDocument.Add(ctx, AddDocument{Viewer: seller, Document: supplier.NewDocument{
		Name: "cac-certificate.pdf", Type: "business_registration", SizeBytes: ParseDocumentSize("20480"),
	}})
	require.NoError(t, err)
	assert.EqualValues(t, 20480, doc.SizeBytes)

	require.NoError(t, h.bus.RemoveDocument.Execute(ctx, RemoveDocument{Viewer: seller, DocumentID: doc.ID}))
	err = h.bus.RemoveDocument.Execute(ctx, RemoveDocument{Viewer: seller, DocumentID: doc.ID})
	assert.True(t, goerrors.IsNotFound(err))

	tokens := supplier.NewTokens(kvstore.NewMemory())
	cmd := NewSaveTokenCommand(h.deps(h.client), tokens)
	require.NoError(t, cmd.Execute(ctx, SaveToken{Viewer: seller, Token: " tok-123 "}))
	got, err := tokens.Token(ctx, "sel-100")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got)

	require.NoError(t, cmd.Execute(ctx, SaveToken{Viewer: seller}))
	got, err = tokens.Token(ctx, "sel-100")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "seller.token.clear", h.telemetry.Names()[len(h.telemetry.Names())-1])

	assert.Zero(t, ParseDocumentSize("-4"))
	assert.Zero(t, ParseDocumentSize("abc"))
}

func TestCommandsRequireClient(t *testing.T) {
	_, err := NewProcessPayoutCommand(Deps{}).Process(context.Background(), ProcessPayout{Viewer: admin, PayoutID: "pay-1"})
	require.Error(t, err)
	assert.True(t, goerrors.IsInternal(err))
}
