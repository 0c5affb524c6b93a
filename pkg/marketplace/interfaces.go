package marketplace

import (
	"context"

	"github.com/goliatone/go-market-dashboard/components/status"
)

// AdminAPI covers the admin panel endpoints.
type AdminAPI interface {
	AdminUsers(ctx context.Context, page, limit int) (UsersPage, error)
	AdminReviews(ctx context.Context, page, limit int) (Page[Review], error)
	AdminOrders(ctx context.Context, page, limit int) (Page[Order], error)
	AdminDrivers(ctx context.Context, page, limit int) (Page[Driver], error)
	CreateDriver(ctx context.Context, input CreateDriverInput) (Driver, error)
	AdminReturns(ctx context.Context, page, limit int) (Page[Return], error)
	ClassifyReturnFault(ctx context.Context, id string, fault status.ReturnFault, note string) (Return, error)
	AdminPayouts(ctx context.Context, page, limit int) (Page[Payout], error)
	ProcessPayout(ctx context.Context, id string) (Payout, error)
	MasterProducts(ctx context.Context, page, limit int) (Page[MasterProduct], error)
	BusinessIntelligence(ctx context.Context) (BusinessIntelligence, error)
	ModerateReview(ctx context.Context, id string, decision status.ReviewStatus) (Review, error)
}

// SellerAPI covers the seller panel endpoints.
type SellerAPI interface {
	SellerOrders(ctx context.Context, page, limit int) (Page[Order], error)
	AcceptOrder(ctx context.Context, id string) (Order, error)
	RejectOrder(ctx context.Context, id, reason string) (Order, error)
	SellerProducts(ctx context.Context, page, limit int) (Page[SellerProduct], error)
	SellerPayouts(ctx context.Context, page, limit int) (Page[Payout], error)
	SellerCoupons(ctx context.Context, page, limit int) (Page[Coupon], error)
	CreateCoupon(ctx context.Context, input CreateCouponInput) (Coupon, error)
	LoanApplications(ctx context.Context, page, limit int) (Page[LoanApplication], error)
	ApplyForLoan(ctx context.Context, input LoanApplicationInput) (LoanApplication, error)
}

// BuyerAPI covers the buyer panel endpoints.
type BuyerAPI interface {
	BuyerOrders(ctx context.Context, page, limit int) (Page[Order], error)
	BuyerReturns(ctx context.Context, page, limit int) (Page[Return], error)
	RequestReturn(ctx context.Context, input RequestReturnInput) (Return, error)
}

// Client is the union implemented by HTTPClient and MockClient.
type Client interface {
	AdminAPI
	SellerAPI
	BuyerAPI
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
