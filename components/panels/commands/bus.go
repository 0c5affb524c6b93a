package commands

import (
	"context"
	"strconv"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/optimistic"
	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/settings"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/components/supplier"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// BusOptions wires every panel command.
type BusOptions struct {
	Deps      Deps
	Settings  *settings.Accessor
	Documents *supplier.Documents
	Tokens    *supplier.Tokens
}

// Bus owns the panel commands and the optimistic trackers they share. It
// dispatches screen actions and overlays pending state on fetched pages.
type Bus struct {
	orders  *optimistic.Tracker[string, marketplace.Order]
	returns *optimistic.Tracker[string, marketplace.Return]

	DecideOrder    *DecideOrderCommand
	ClassifyReturn *ClassifyReturnCommand
	RequestReturn  *RequestReturnCommand
	CreateDriver   *CreateDriverCommand
	ProcessPayout  *ProcessPayoutCommand
	ModerateReview *ModerateReviewCommand
	CreateCoupon   *CreateCouponCommand
	ApplyForLoan   *ApplyForLoanCommand
	SaveSettings   *SaveSettingsCommand
	AddDocument    *AddDocumentCommand
	RemoveDocument *RemoveDocumentCommand
	SaveToken      *SaveTokenCommand
}

// NewBus builds the commands around shared dependencies.
func NewBus(opts BusOptions) *Bus {
	deps := opts.Deps.normalized()
	b := &Bus{
		orders:  optimistic.NewTracker[string, marketplace.Order](),
		returns: optimistic.NewTracker[string, marketplace.Return](),
	}
	b.DecideOrder = NewDecideOrderCommand(deps, b.orders)
	b.ClassifyReturn = NewClassifyReturnCommand(deps, b.returns)
	b.RequestReturn = NewRequestReturnCommand(deps)
	b.CreateDriver = NewCreateDriverCommand(deps)
	b.ProcessPayout = NewProcessPayoutCommand(deps)
	b.ModerateReview = NewModerateReviewCommand(deps)
	b.CreateCoupon = NewCreateCouponCommand(deps)
	b.ApplyForLoan = NewApplyForLoanCommand(deps)
	b.SaveSettings = NewSaveSettingsCommand(deps, opts.Settings)
	b.AddDocument = NewAddDocumentCommand(deps, opts.Documents)
	b.RemoveDocument = NewRemoveDocumentCommand(deps, opts.Documents)
	b.SaveToken = NewSaveTokenCommand(deps, opts.Tokens)
	return b
}

var (
	_ panels.Dispatcher = (*Bus)(nil)
	_ panels.Overlays   = (*Bus)(nil)
)

// Dispatch runs the action named by req on its screen.
func (b *Bus) Dispatch(ctx context.Context, req panels.ActionRequest) (panels.ActionResult, error) {
	screenRole, _, _ := strings.Cut(req.Screen, ".")
	if status.ParseRole(screenRole) != req.Viewer.Role || req.Viewer.Role == status.RoleUnknown {
		return panels.ActionResult{}, goerrors.New("action not available to viewer", goerrors.CategoryAuthz).
			WithMetadata(map[string]any{"screen": req.Screen, "action": req.Action})
	}

	switch req.Screen + ":" + req.Action {
	case panels.SellerOrders + ":" + panels.ActionAccept, panels.SellerOrders + ":" + panels.ActionReject:
		order, err := b.DecideOrder.Decide(ctx, DecideOrder{
			Viewer:  req.Viewer,
			OrderID: req.RecordID,
			Accept:  req.Action == panels.ActionAccept,
			Reason:  req.Value("reason"),
		})
		if err != nil {
			return panels.ActionResult{}, err
		}
		return panels.ActionResult{Message: "Order " + order.OrderNumber + " " + strings.ToLower(order.Status.Label()), Record: order}, nil

	case panels.AdminReturns + ":" + panels.ActionClassify:
		ret, err := b.ClassifyReturn.Classify(ctx, ClassifyReturn{
			Viewer:   req.Viewer,
			ReturnID: req.RecordID,
			Fault:    req.Value("fault"),
			Note:     req.Value("note"),
		})
		if err != nil {
			return panels.ActionResult{}, err
		}
		return panels.ActionResult{Message: "Fault recorded: " + ret.Fault.Label(), Record: ret}, nil

	case panels.AdminReviews + ":" + panels.ActionApprove, panels.AdminReviews + ":" + panels.ActionReject:
		decision := status.ReviewApproved
		if req.Action == panels.ActionReject {
			decision = status.ReviewRejected
		}
		review, err := b.ModerateReview.Moderate(ctx, ModerateReview{Viewer: req.Viewer, ReviewID: req.RecordID, Decision: decision})
		if err != nil {
			return panels.ActionResult{}, err
		}
		return panels.ActionResult{Message: "Review " + strings.ToLower(review.Status.Label()), Record: review}, nil

	case panels.AdminDrivers + ":" + panels.ActionCreate:
		driver, err := b.CreateDriver.Create(ctx, CreateDriver{Viewer: req.Viewer, Input: marketplace.CreateDriverInput{
			Name:         req.Value("name"),
			Phone:        req.Value("phone"),
			Email:        req.Value("email"),
			VehicleType:  req.Value("vehicleType"),
			VehiclePlate: req.Value("vehiclePlate"),
			Zone:         req.Value("zone"),
		}})
		if err != nil {
			return panels.ActionResult{}, err
		}
		return panels.ActionResult{Message: "Driver " + driver.Name + " added", Record: driver}, nil

	case panels.AdminPayouts + ":" + panels.ActionProcess:
		payout, err := b.ProcessPayout.Process(ctx, ProcessPayout{Viewer: req.Viewer, PayoutID: req.RecordID})
		if err != nil {
			return panels.ActionResult{}, err
		}
		return panels.ActionResult{Message: "Payout processed (" + payout.Reference + ")", Record: payout}, nil

	case panels.SellerCoupons + ":" + panels.ActionCreate:
		coupon, err := b.CreateCoupon.Create(ctx, CreateCoupon{Viewer: req.Viewer, Form: CouponForm{
			Code:           req.Value("code"),
			Type:           req.Value("type"),
			Value:          req.Value("value"),
			MinOrderAmount: req.Value("minOrderAmount"),
			UsageLimit:     req.Value("usageLimit"),
			ExpiresAt:      req.Value("expiresAt"),
		}})
		if err != nil {
			return panels.ActionResult{}, err
		}
		return panels.ActionResult{Message: "Coupon " + coupon.Code + " created", Record: coupon}, nil

	case panels.SellerLoans + ":" + panels.ActionApply:
		loan, err := b.ApplyForLoan.Apply(ctx, ApplyForLoan{Viewer: req.Viewer, Form: LoanForm{
			Amount:     req.Value("amount"),
			TermMonths: req.Value("termMonths"),
			Purpose:    req.Value("purpose"),
		}})
		if err != nil {
			return panels.ActionResult{}, err
		}
		return panels.ActionResult{Message: "Application " + strings.ToLower(loan.Status.Label()), Record: loan}, nil

	case panels.BuyerReturns + ":" + panels.ActionRequestReturn:
		ret, err := b.RequestReturn.Request(ctx, RequestReturn{Viewer: req.Viewer, Input: marketplace.RequestReturnInput{
			OrderID: req.Value("orderId"),
			Reason:  req.Value("reason"),
			Details: req.Value("details"),
		}})
		if err != nil {
			return panels.ActionResult{}, err
		}
		return panels.ActionResult{Message: "Return requested for " + ret.OrderNumber, Record: ret}, nil
	}

	return panels.ActionResult{}, goerrors.New("unknown action", goerrors.CategoryNotFound).
		WithMetadata(map[string]any{"screen": req.Screen, "action": req.Action})
}

// Orders overlays in-flight decisions. Settled entries are dropped on the
// first fetch after they settle and the fetched record is shown as is.
func (b *Bus) Orders(items []marketplace.Order) []marketplace.Order {
	out := make([]marketplace.Order, len(items))
	for i, item := range items {
		out[i] = item
		entry, ok := b.orders.Get(item.ID)
		if !ok {
			continue
		}
		switch entry.Phase {
		case optimistic.Pending:
			out[i].Status = entry.Current.Status
			out[i].RejectReason = entry.Current.RejectReason
		case optimistic.Confirmed, optimistic.Reverted, optimistic.Idle:
			b.orders.Forget(item.ID)
		}
	}
	return out
}

// OrderPending reports whether a decision on id is in flight.
func (b *Bus) OrderPending(id string) bool {
	return b.orders.Phase(id) == optimistic.Pending
}

// Returns overlays in-flight fault classifications. Settled entries give way
// to the fetched record.
func (b *Bus) Returns(items []marketplace.Return) []marketplace.Return {
	out := make([]marketplace.Return, len(items))
	for i, item := range items {
		out[i] = item
		entry, ok := b.returns.Get(item.ID)
		if !ok {
			continue
		}
		switch entry.Phase {
		case optimistic.Pending:
			out[i].Fault = entry.Current.Fault
			out[i].AdminNote = entry.Current.AdminNote
			if out[i].Status == status.ReturnRequested {
				out[i].Status = status.ReturnUnderReview
			}
		case optimistic.Confirmed, optimistic.Reverted, optimistic.Idle:
			b.returns.Forget(item.ID)
		}
	}
	return out
}

// ReturnPending reports whether a classification of id is in flight.
func (b *Bus) ReturnPending(id string) bool {
	return b.returns.Phase(id) == optimistic.Pending
}

// OrderFailure returns the error of the last reverted decision on id.
func (b *Bus) OrderFailure(id string) error {
	if entry, ok := b.orders.Get(id); ok && entry.Phase == optimistic.Reverted {
		return entry.Err
	}
	return nil
}

// ParseDocumentSize reads the optional size field of the documents form.
func ParseDocumentSize(raw string) int64 {
	size, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || size < 0 {
		return 0
	}
	return size
}
