package commands

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/optimistic"
	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// DecideOrder accepts or rejects a pending seller order.
type DecideOrder struct {
	Viewer  panels.Viewer
	OrderID string
	Accept  bool
	Reason  string
	// Snapshot is the record as the seller saw it. It is restored on failure.
	Snapshot marketplace.Order
}

// DecideOrderCommand applies the decision optimistically: the order shows
// the target status while the call is in flight, the server record once it
// succeeds and the snapshot again when it fails.
type DecideOrderCommand struct {
	deps    Deps
	tracker *optimistic.Tracker[string, marketplace.Order]
}

// NewDecideOrderCommand wires the command to a shared tracker.
func NewDecideOrderCommand(deps Deps, tracker *optimistic.Tracker[string, marketplace.Order]) *DecideOrderCommand {
	if tracker == nil {
		tracker = optimistic.NewTracker[string, marketplace.Order]()
	}
	return &DecideOrderCommand{deps: deps.normalized(), tracker: tracker}
}

var _ gocommand.Commander[DecideOrder] = (*DecideOrderCommand)(nil)

// Execute implements gocommand.Commander.
func (c *DecideOrderCommand) Execute(ctx context.Context, msg DecideOrder) error {
	_, err := c.Decide(ctx, msg)
	return err
}

// Decide runs the decision and returns the resulting record.
func (c *DecideOrderCommand) Decide(ctx context.Context, msg DecideOrder) (marketplace.Order, error) {
	if c.deps.Client == nil {
		return marketplace.Order{}, missingDependency("order decision requires a marketplace client")
	}
	if err := requireID("orderId", msg.OrderID); err != nil {
		return marketplace.Order{}, err
	}
	reason := strings.TrimSpace(msg.Reason)
	if !msg.Accept && reason == "" {
		return marketplace.Order{}, goerrors.NewValidation("invalid input",
			goerrors.FieldError{Field: "reason", Message: "is required"})
	}

	snapshot := msg.Snapshot
	snapshot.ID = msg.OrderID
	pending := snapshot
	pending.Status = status.OrderConfirmed
	verb := "seller.order.accept"
	if !msg.Accept {
		pending.Status = status.OrderRejected
		pending.RejectReason = reason
		verb = "seller.order.reject"
	}

	order, err := c.tracker.Run(msg.OrderID, snapshot, pending, func() (marketplace.Order, error) {
		if msg.Accept {
			return c.deps.Client.AcceptOrder(ctx, msg.OrderID)
		}
		return c.deps.Client.RejectOrder(ctx, msg.OrderID, reason)
	})
	if err != nil {
		c.deps.Telemetry.Record(ctx, verb+".failed", map[string]any{"order_id": msg.OrderID, "error": err.Error()})
		return order, err
	}

	meta := map[string]any{"status": order.Status.String()}
	if reason != "" {
		meta["reason"] = reason
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       verb,
		objectType: "order",
		objectID:   msg.OrderID,
		screen:     panels.SellerOrders,
		metadata:   meta,
	})
	return order, nil
}
