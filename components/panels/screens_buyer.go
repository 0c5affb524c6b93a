package panels

import (
	"context"

	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// ReturnReasons are the reasons offered on the return request form.
var ReturnReasons = []string{
	"damaged",
	"wrong_item",
	"item_not_as_described",
	"missing_parts",
	"changed_mind",
}

func buyerOrdersView(f formatter) View {
	r := NewResource[marketplace.Order](BuyerOrders, status.RoleBuyer, "My Orders", f.path("buyer", "orders"), f.size(status.RoleBuyer))
	r.Columns = []Column{
		{Key: "number", Label: "Order"},
		{Key: "seller", Label: "Seller"},
		{Key: "items", Label: "Items", Align: "right"},
		{Key: "total", Label: "Total", Align: "right"},
		{Key: "status", Label: "Status"},
		{Key: "created", Label: "Placed"},
	}
	r.ID = orderID
	r.Label = orderLabel
	r.Search = func(o marketplace.Order) []string {
		return []string{o.OrderNumber, o.SellerName, o.Status.Label()}
	}
	r.Cells = func(o marketplace.Order) []Cell {
		return []Cell{text(o.OrderNumber), text(o.SellerName), text(f.count(len(o.Items))), text(f.money(o.Total)), badge(o.Status.Badge()), text(f.date(o.CreatedAt))}
	}
	r.Detail = func(o marketplace.Order) []FieldGroup { return orderDetail(f, o) }
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.Order], error) {
		return fromPage(client.BuyerOrders(ctx, page, limit))
	}
	return r.WithEmptyMessage("You have not placed any orders yet.")
}

func buyerReturnsView(f formatter) View {
	path := f.path("buyer", "returns")
	r := NewResource[marketplace.Return](BuyerReturns, status.RoleBuyer, "Returns", path, f.size(status.RoleBuyer))
	r.Columns = returnColumns(false)
	r.ID = returnID
	r.Label = returnLabel
	r.Search = func(rt marketplace.Return) []string {
		return []string{rt.OrderNumber, rt.Reason, rt.Status.Label()}
	}
	r.Cells = func(rt marketplace.Return) []Cell {
		return []Cell{text(rt.OrderNumber), text(reasonLabel(rt.Reason)), text(f.money(rt.Amount)), badge(rt.Status.Badge())}
	}
	r.Detail = func(rt marketplace.Return) []FieldGroup { return returnDetail(f, rt) }
	reasons := make([]Option, 0, len(ReturnReasons))
	for _, reason := range ReturnReasons {
		reasons = append(reasons, Option{Value: reason, Label: reasonLabel(reason)})
	}
	r.Forms = []Action{f.formAction(ActionRequestReturn, "Request a return", path,
		Input{Name: "orderId", Label: "Order", Type: "text", Required: true},
		Input{Name: "reason", Label: "Reason", Type: "select", Required: true, Options: reasons},
		Input{Name: "details", Label: "Details", Type: "textarea"},
	)}
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.Return], error) {
		return fromPage(client.BuyerReturns(ctx, page, limit))
	}
	return r.WithEmptyMessage("No return requests.")
}
