package commands

import (
	"context"
	"strings"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/internal/lib/validate"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// CreateDriver is the admin driver onboarding form.
type CreateDriver struct {
	Viewer panels.Viewer
	Input  marketplace.CreateDriverInput
}

// CreateDriverCommand onboards a delivery driver.
type CreateDriverCommand struct {
	deps Deps
}

func NewCreateDriverCommand(deps Deps) *CreateDriverCommand {
	return &CreateDriverCommand{deps: deps.normalized()}
}

var _ gocommand.Commander[CreateDriver] = (*CreateDriverCommand)(nil)

func (c *CreateDriverCommand) Execute(ctx context.Context, msg CreateDriver) error {
	_, err := c.Create(ctx, msg)
	return err
}

// Create validates the form and creates the driver.
func (c *CreateDriverCommand) Create(ctx context.Context, msg CreateDriver) (marketplace.Driver, error) {
	if c.deps.Client == nil {
		return marketplace.Driver{}, missingDependency("driver creation requires a marketplace client")
	}
	input := msg.Input
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(input.Email)
	input.VehicleType = strings.TrimSpace(input.VehicleType)
	input.VehiclePlate = strings.ToUpper(strings.TrimSpace(input.VehiclePlate))
	input.Zone = strings.TrimSpace(input.Zone)
	if err := validate.Struct(input); err != nil {
		return marketplace.Driver{}, err
	}
	driver, err := c.deps.Client.CreateDriver(ctx, input)
	if err != nil {
		return marketplace.Driver{}, err
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       "admin.driver.create",
		objectType: "driver",
		objectID:   driver.ID,
		screen:     panels.AdminDrivers,
		metadata:   map[string]any{"zone": driver.Zone},
	})
	return driver, nil
}

// ProcessPayout releases a pending payout.
type ProcessPayout struct {
	Viewer   panels.Viewer
	PayoutID string
}

// ProcessPayoutCommand transfers a payout to the seller.
type ProcessPayoutCommand struct {
	deps Deps
}

func NewProcessPayoutCommand(deps Deps) *ProcessPayoutCommand {
	return &ProcessPayoutCommand{deps: deps.normalized()}
}

var _ gocommand.Commander[ProcessPayout] = (*ProcessPayoutCommand)(nil)

func (c *ProcessPayoutCommand) Execute(ctx context.Context, msg ProcessPayout) error {
	_, err := c.Process(ctx, msg)
	return err
}

// Process calls the backend and reports the paid record.
func (c *ProcessPayoutCommand) Process(ctx context.Context, msg ProcessPayout) (marketplace.Payout, error) {
	if c.deps.Client == nil {
		return marketplace.Payout{}, missingDependency("payout processing requires a marketplace client")
	}
	if err := requireID("payoutId", msg.PayoutID); err != nil {
		return marketplace.Payout{}, err
	}
	payout, err := c.deps.Client.ProcessPayout(ctx, msg.PayoutID)
	if err != nil {
		return marketplace.Payout{}, err
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       "admin.payout.process",
		objectType: "payout",
		objectID:   payout.ID,
		screen:     panels.AdminPayouts,
		metadata:   map[string]any{"reference": payout.Reference, "net_amount": payout.NetAmount},
	})
	return payout, nil
}

// ModerateReview approves or rejects a product review.
type ModerateReview struct {
	Viewer   panels.Viewer
	ReviewID string
	Decision status.ReviewStatus
}

// ModerateReviewCommand records a moderation decision.
type ModerateReviewCommand struct {
	deps Deps
}

func NewModerateReviewCommand(deps Deps) *ModerateReviewCommand {
	return &ModerateReviewCommand{deps: deps.normalized()}
}

var _ gocommand.Commander[ModerateReview] = (*ModerateReviewCommand)(nil)

func (c *ModerateReviewCommand) Execute(ctx context.Context, msg ModerateReview) error {
	_, err := c.Moderate(ctx, msg)
	return err
}

// Moderate accepts only approve and reject decisions.
func (c *ModerateReviewCommand) Moderate(ctx context.Context, msg ModerateReview) (marketplace.Review, error) {
	if c.deps.Client == nil {
		return marketplace.Review{}, missingDependency("review moderation requires a marketplace client")
	}
	if err := requireID("reviewId", msg.ReviewID); err != nil {
		return marketplace.Review{}, err
	}
	if msg.Decision != status.ReviewApproved && msg.Decision != status.ReviewRejected {
		return marketplace.Review{}, goerrors.New("review decision must be approve or reject", goerrors.CategoryBadInput).
			WithMetadata(map[string]any{"decision": msg.Decision.String()})
	}
	review, err := c.deps.Client.ModerateReview(ctx, msg.ReviewID, msg.Decision)
	if err != nil {
		return marketplace.Review{}, err
	}
	verb := "admin.review.approve"
	if msg.Decision == status.ReviewRejected {
		verb = "admin.review.reject"
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       verb,
		objectType: "review",
		objectID:   review.ID,
		screen:     panels.AdminReviews,
	})
	return review, nil
}
