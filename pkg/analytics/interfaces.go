package analytics

import (
	"context"

	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// AdminSource is the admin slice of the marketplace backend the overview reads.
type AdminSource interface {
	BusinessIntelligence(ctx context.Context) (marketplace.BusinessIntelligence, error)
	AdminUsers(ctx context.Context, page, limit int) (marketplace.UsersPage, error)
	AdminReturns(ctx context.Context, page, limit int) (marketplace.Page[marketplace.Return], error)
	AdminPayouts(ctx context.Context, page, limit int) (marketplace.Page[marketplace.Payout], error)
}

// SellerSource is the seller slice of the backend.
type SellerSource interface {
	SellerOrders(ctx context.Context, page, limit int) (marketplace.Page[marketplace.Order], error)
	SellerProducts(ctx context.Context, page, limit int) (marketplace.Page[marketplace.SellerProduct], error)
	SellerPayouts(ctx context.Context, page, limit int) (marketplace.Page[marketplace.Payout], error)
}

// BuyerSource is the buyer slice of the backend.
type BuyerSource interface {
	BuyerOrders(ctx context.Context, page, limit int) (marketplace.Page[marketplace.Order], error)
}

// Source is satisfied by marketplace.Client.
type Source interface {
	AdminSource
	SellerSource
	BuyerSource
}

var _ Source = (marketplace.Client)(nil)
