package commands

import (
	"context"
	"strconv"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/internal/lib/validate"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// CouponForm is the raw coupon form. Numeric fields arrive as strings.
type CouponForm struct {
	Code           string `json:"code"`
	Type           string `json:"type"`
	Value          string `json:"value"`
	MinOrderAmount string `json:"minOrderAmount"`
	UsageLimit     string `json:"usageLimit"`
	ExpiresAt      string `json:"expiresAt"`
}

type couponDraft struct {
	Code           string  `json:"code" validate:"required,min=3,max=20,alphanum"`
	Type           string  `json:"type" validate:"required,oneof=percentage fixed"`
	Value          float64 `json:"value" validate:"gt=0"`
	MinOrderAmount float64 `json:"minOrderAmount" validate:"gte=0"`
	UsageLimit     int     `json:"usageLimit" validate:"gte=0"`
}

// Coerce converts the form into a backend input. Blank optional numbers
// become zero; malformed numbers and missing required fields are reported
// together.
func (f CouponForm) Coerce() (marketplace.CreateCouponInput, error) {
	var fields []goerrors.FieldError
	value, ok := parseAmount(f.Value)
	if !ok {
		fields = append(fields, goerrors.FieldError{Field: "value", Message: "must be a number", Value: f.Value})
	}
	minOrder, ok := parseAmount(f.MinOrderAmount)
	if !ok {
		fields = append(fields, goerrors.FieldError{Field: "minOrderAmount", Message: "must be a number", Value: f.MinOrderAmount})
	}
	limit, ok := parseCount(f.UsageLimit)
	if !ok {
		fields = append(fields, goerrors.FieldError{Field: "usageLimit", Message: "must be a whole number", Value: f.UsageLimit})
	}
	var expires time.Time
	if raw := strings.TrimSpace(f.ExpiresAt); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			fields = append(fields, goerrors.FieldError{Field: "expiresAt", Message: "must be a date (YYYY-MM-DD)", Value: raw})
		}
		expires = parsed
	}
	if len(fields) > 0 {
		return marketplace.CreateCouponInput{}, goerrors.NewValidation("invalid coupon", fields...)
	}

	draft := couponDraft{
		Code:           strings.ToUpper(strings.TrimSpace(f.Code)),
		Type:           status.ParseCouponType(f.Type).String(),
		Value:          value,
		MinOrderAmount: minOrder,
		UsageLimit:     limit,
	}
	if err := validate.Struct(draft); err != nil {
		return marketplace.CreateCouponInput{}, err
	}
	couponType := status.ParseCouponType(draft.Type)
	if couponType == status.CouponPercentage && draft.Value > 100 {
		return marketplace.CreateCouponInput{}, goerrors.NewValidation("invalid coupon",
			goerrors.FieldError{Field: "value", Message: "must be at most 100 for percentage coupons", Value: f.Value})
	}
	return marketplace.CreateCouponInput{
		Code:           draft.Code,
		Type:           couponType,
		Value:          draft.Value,
		MinOrderAmount: draft.MinOrderAmount,
		UsageLimit:     draft.UsageLimit,
		ExpiresAt:      expires,
	}, nil
}

// CreateCoupon is the seller coupon form submission.
type CreateCoupon struct {
	Viewer panels.Viewer
	Form   CouponForm
}

// CreateCouponCommand coerces, validates and creates a coupon.
type CreateCouponCommand struct {
	deps Deps
}

func NewCreateCouponCommand(deps Deps) *CreateCouponCommand {
	return &CreateCouponCommand{deps: deps.normalized()}
}

var _ gocommand.Commander[CreateCoupon] = (*CreateCouponCommand)(nil)

func (c *CreateCouponCommand) Execute(ctx context.Context, msg CreateCoupon) error {
	_, err := c.Create(ctx, msg)
	return err
}

// Create returns the coupon as stored by the backend.
func (c *CreateCouponCommand) Create(ctx context.Context, msg CreateCoupon) (marketplace.Coupon, error) {
	if c.deps.Client == nil {
		return marketplace.Coupon{}, missingDependency("coupon creation requires a marketplace client")
	}
	input, err := msg.Form.Coerce()
	if err != nil {
		return marketplace.Coupon{}, err
	}
	if !input.ExpiresAt.IsZero() && input.ExpiresAt.Before(c.deps.Clock()) {
		return marketplace.Coupon{}, goerrors.NewValidation("invalid coupon",
			goerrors.FieldError{Field: "expiresAt", Message: "must be in the future", Value: msg.Form.ExpiresAt})
	}
	coupon, err := c.deps.Client.CreateCoupon(ctx, input)
	if err != nil {
		return marketplace.Coupon{}, err
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       "seller.coupon.create",
		objectType: "coupon",
		objectID:   coupon.ID,
		screen:     panels.SellerCoupons,
		metadata:   map[string]any{"code": coupon.Code},
	})
	return coupon, nil
}

// LoanForm is the raw financing form.
type LoanForm struct {
	Amount     string `json:"amount"`
	TermMonths string `json:"termMonths"`
	Purpose    string `json:"purpose"`
}

// Coerce converts the form into a validated application.
func (f LoanForm) Coerce() (marketplace.LoanApplicationInput, error) {
	var fields []goerrors.FieldError
	amount, ok := parseAmount(f.Amount)
	if !ok {
		fields = append(fields, goerrors.FieldError{Field: "amount", Message: "must be a number", Value: f.Amount})
	}
	term, ok := parseCount(f.TermMonths)
	if !ok {
		fields = append(fields, goerrors.FieldError{Field: "termMonths", Message: "must be a whole number", Value: f.TermMonths})
	}
	if len(fields) > 0 {
		return marketplace.LoanApplicationInput{}, goerrors.NewValidation("invalid loan application", fields...)
	}
	input := marketplace.LoanApplicationInput{
		Amount:     amount,
		TermMonths: term,
		Purpose:    strings.TrimSpace(f.Purpose),
	}
	if err := validate.Struct(input); err != nil {
		return marketplace.LoanApplicationInput{}, err
	}
	return input, nil
}

// ApplyForLoan is the seller financing submission.
type ApplyForLoan struct {
	Viewer panels.Viewer
	Form   LoanForm
}

// ApplyForLoanCommand submits a financing application.
type ApplyForLoanCommand struct {
	deps Deps
}

func NewApplyForLoanCommand(deps Deps) *ApplyForLoanCommand {
	return &ApplyForLoanCommand{deps: deps.normalized()}
}

var _ gocommand.Commander[ApplyForLoan] = (*ApplyForLoanCommand)(nil)

func (c *ApplyForLoanCommand) Execute(ctx context.Context, msg ApplyForLoan) error {
	_, err := c.Apply(ctx, msg)
	return err
}

// Apply returns the recorded application. A rejected application is not an
// error; its status carries the decision.
func (c *ApplyForLoanCommand) Apply(ctx context.Context, msg ApplyForLoan) (marketplace.LoanApplication, error) {
	if c.deps.Client == nil {
		return marketplace.LoanApplication{}, missingDependency("loan application requires a marketplace client")
	}
	input, err := msg.Form.Coerce()
	if err != nil {
		return marketplace.LoanApplication{}, err
	}
	loan, err := c.deps.Client.ApplyForLoan(ctx, input)
	if err != nil {
		return marketplace.LoanApplication{}, err
	}
	c.deps.settle(ctx, outcome{
		viewer:     msg.Viewer,
		verb:       "seller.loan.apply",
		objectType: "loan",
		objectID:   loan.ID,
		screen:     panels.SellerLoans,
		metadata:   map[string]any{"amount": loan.Amount, "status": loan.Status.String()},
	})
	return loan, nil
}

// parseAmount accepts blanks as zero and tolerates thousands separators.
func parseAmount(raw string) (float64, bool) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.Add(24*time.Hour - time.Second), nil
	}
	return time.Parse(time.RFC3339, raw)
}
