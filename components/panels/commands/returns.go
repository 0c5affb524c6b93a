package commands

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/optimistic"
	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/internal/lib/validate"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// ClassifyReturn assigns fault on a return under admin review.
type ClassifyReturn struct {
	Viewer   panels.Viewer
	ReturnID string
	Fault    string
	Note     string
	Snapshot marketplace.Return
}

// ClassifyReturnCommand applies the classification optimistically.
type ClassifyReturnCommand struct {
	deps    Deps
	tracker *optimistic.Tracker[string, marketplace.Return]
}

// NewClassifyReturnCommand wires the command to a shared tracker.
func NewClassifyReturnCommand(deps Deps, tracker *optimistic.Tracker[string, marketplace.Return]) *ClassifyReturnCommand {
	if tracker == nil {
		tracker = optimistic.NewTracker[string, marketplace.Return]()
	}
	return &ClassifyReturnCommand{deps: deps.normalized(), tracker: tracker}
}

var _ gocommand.Commander[ClassifyReturn] = (*ClassifyReturnCommand)(nil)

// Execute implements gocommand.Commander.
func (c *ClassifyReturnCommand) Execute(ctx context.Context, msg ClassifyReturn) error {
	_, err := c.Classify(ctx, msg)
	return err
}

// Classify records the fault and returns the resulting record.
func (c *ClassifyReturnCommand) Classify(ctx context.Context, msg ClassifyReturn) (marketplace.Return, error) {
	if c.deps.Client == nil {
		return marketplace.Return{}, missingDependency("return classification requires a marketplace client")
	}
	if err := requireID("returnId", msg.ReturnID); err != nil {
		return marketplace.Return{}, err
	}
	fault, ok := parseFault(msg.Fault)
	if !ok {
		return marketplace.Return{}, goerrors.NewValidation("invalid input",
			goerrors.FieldError{Field: "fault", Message: "must be a known fault", Value: msg.Fault})
	}
	note := strings.TrimSpace(msg.Note)

	snapshot := msg.Snapshot
	snapshot.ID = msg.ReturnID
	pending := snapshot
	pending.Fault = fault
	pending.AdminNote = note
	if pending.Status == status.ReturnRequested {
		pending.Status = status.ReturnUnderReview
	}

	ret, err := c.tracker.Run(msg.ReturnID, snapshot, pending, func() (marketplace.Return, error) {
		return c.deps.Client.ClassifyReturnFault(ctx, msg.ReturnID, fault, note)
	})
	if err != nil {
		c.deps.Telemetry.Record(ctx, "admin.return.classify.failed", map[string]any{"return_id": msg.ReturnID, "error": err.Error()})
		return ret, err
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       "admin.return.classify",
		objectType: "return",
		objectID:   msg.ReturnID,
		screen:     panels.AdminReturns,
		metadata:   map[string]any{"fault": fault.String()},
	})
	return ret, nil
}

// RequestReturn is the buyer return form.
type RequestReturn struct {
	Viewer panels.Viewer
	Input  marketplace.RequestReturnInput
}

// RequestReturnCommand files a return for a delivered order.
type RequestReturnCommand struct {
	deps Deps
}

// NewRequestReturnCommand builds the command.
func NewRequestReturnCommand(deps Deps) *RequestReturnCommand {
	return &RequestReturnCommand{deps: deps.normalized()}
}

var _ gocommand.Commander[RequestReturn] = (*RequestReturnCommand)(nil)

// Execute implements gocommand.Commander.
func (c *RequestReturnCommand) Execute(ctx context.Context, msg RequestReturn) error {
	_, err := c.Request(ctx, msg)
	return err
}

// Request validates the form and files the return.
func (c *RequestReturnCommand) Request(ctx context.Context, msg RequestReturn) (marketplace.Return, error) {
	if c.deps.Client == nil {
		return marketplace.Return{}, missingDependency("return request requires a marketplace client")
	}
	input := msg.Input
	input.OrderID = strings.TrimSpace(input.OrderID)
	input.Reason = strings.TrimSpace(input.Reason)
	input.Details = strings.TrimSpace(input.Details)
	if err := validate.Struct(input); err != nil {
		return marketplace.Return{}, err
	}
	ret, err := c.deps.Client.RequestReturn(ctx, input)
	if err != nil {
		return marketplace.Return{}, err
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       "buyer.return.request",
		objectType: "return",
		objectID:   ret.ID,
		screen:     panels.BuyerReturns,
		metadata:   map[string]any{"order_id": input.OrderID, "reason": input.Reason},
	})
	return ret, nil
}

// parseFault rejects blanks and unknown values, which parse as unassigned.
func parseFault(raw string) (status.ReturnFault, bool) {
	fault := status.ParseReturnFault(raw)
	return fault, fault != status.FaultUnassigned
}
