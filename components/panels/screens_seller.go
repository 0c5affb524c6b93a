package panels

import (
	"context"
	"strconv"

	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

// LoanTerms are the repayment terms offered on the loan form, in months.
var LoanTerms = []int{3, 6, 9, 12, 18, 24}

func sellerOrdersView(f formatter, overlays Overlays) View {
	path := f.path("seller", "orders")
	r := NewResource[marketplace.Order](SellerOrders, status.RoleSeller, "Orders", path, f.size(status.RoleSeller))
	r.Columns = orderColumns(false)
	r.ID = orderID
	r.Label = orderLabel
	r.Search = func(o marketplace.Order) []string {
		return []string{o.OrderNumber, o.Buyer.Name, o.Buyer.Email, o.Status.Label()}
	}
	r.Cells = func(o marketplace.Order) []Cell {
		return []Cell{text(o.OrderNumber), text(o.Buyer.Name), text(f.money(o.Total)), badge(o.Status.Badge()), text(f.date(o.CreatedAt))}
	}
	r.Detail = func(o marketplace.Order) []FieldGroup { return orderDetail(f, o) }
	r.Actions = func(o marketplace.Order) []Action {
		if !o.Status.AwaitingSeller() {
			return nil
		}
		return []Action{
			f.rowAction(ActionAccept, "Accept", path, o.ID, status.ToneSuccess),
			f.rowAction(ActionReject, "Reject", path, o.ID, status.ToneDanger,
				Input{Name: "reason", Label: "Reason", Type: "textarea", Required: true},
			),
		}
	}
	if overlays != nil {
		r.Overlay = overlays.Orders
		r.Pending = func(o marketplace.Order) bool { return overlays.OrderPending(o.ID) }
	}
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.Order], error) {
		return fromPage(client.SellerOrders(ctx, page, limit))
	}
	return r.WithEmptyMessage("No orders yet.")
}

func sellerProductsView(f formatter) View {
	r := NewResource[marketplace.SellerProduct](SellerProducts, status.RoleSeller, "Products", f.path("seller", "products"), f.size(status.RoleSeller))
	r.Columns = []Column{
		{Key: "name", Label: "Product"},
		{Key: "sku", Label: "SKU"},
		{Key: "category", Label: "Category"},
		{Key: "price", Label: "Price", Align: "right"},
		{Key: "stock", Label: "Stock", Align: "right"},
		{Key: "active", Label: "Listed"},
	}
	r.ID = func(p marketplace.SellerProduct) string { return p.ID }
	r.Label = func(p marketplace.SellerProduct) string { return p.Name }
	r.Search = func(p marketplace.SellerProduct) []string {
		return []string{p.Name, p.SKU, p.Category}
	}
	r.Cells = func(p marketplace.SellerProduct) []Cell {
		return []Cell{text(p.Name), text(p.SKU), text(categoryLabel(p.Category)), text(f.money(p.Price)), stockCell(f, p), text(yesNo(p.Active))}
	}
	r.Detail = func(p marketplace.SellerProduct) []FieldGroup {
		return []FieldGroup{
			{Title: "Listing", Fields: []Field{
				field("Name", p.Name),
				field("SKU", p.SKU),
				field("Category", categoryLabel(p.Category)),
				field("Condition", humanLabel(p.Condition)),
				field("Catalog entry", p.MasterProductID),
			}},
			{Title: "Inventory", Fields: []Field{
				field("Price", f.money(p.Price)),
				field("Stock", f.count(p.Stock)),
				field("Listed", yesNo(p.Active)),
				field("Updated", f.when(p.UpdatedAt)),
			}},
		}
	}
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.SellerProduct], error) {
		return fromPage(client.SellerProducts(ctx, page, limit))
	}
	return r.WithEmptyMessage("No listings yet.")
}

func stockCell(f formatter, p marketplace.SellerProduct) Cell {
	cell := text(f.count(p.Stock))
	if p.LowStock() {
		cell.Badge = &status.Badge{Value: "low_stock", Label: "Low stock", Tone: status.ToneWarning}
	}
	return cell
}

func sellerPayoutsView(f formatter) View {
	r := NewResource[marketplace.Payout](SellerPayouts, status.RoleSeller, "Payouts", f.path("seller", "payouts"), f.size(status.RoleSeller))
	r.Columns = payoutColumns(false)
	r.ID = payoutID
	r.Label = func(p marketplace.Payout) string { return "Payout " + p.Reference }
	r.Search = func(p marketplace.Payout) []string {
		return []string{p.Reference, p.Status.Label()}
	}
	r.Cells = func(p marketplace.Payout) []Cell { return payoutCells(f, p) }
	r.Detail = func(p marketplace.Payout) []FieldGroup { return payoutDetail(f, p) }
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.Payout], error) {
		return fromPage(client.SellerPayouts(ctx, page, limit))
	}
	return r.WithEmptyMessage("No payouts scheduled.")
}

func sellerCouponsView(f formatter) View {
	path := f.path("seller", "coupons")
	r := NewResource[marketplace.Coupon](SellerCoupons, status.RoleSeller, "Coupons", path, f.size(status.RoleSeller))
	r.Columns = []Column{
		{Key: "code", Label: "Code"},
		{Key: "type", Label: "Type"},
		{Key: "value", Label: "Value", Align: "right"},
		{Key: "usage", Label: "Used", Align: "right"},
		{Key: "expires", Label: "Expires"},
		{Key: "active", Label: "Active"},
	}
	r.ID = func(c marketplace.Coupon) string { return c.ID }
	r.Label = func(c marketplace.Coupon) string { return c.Code }
	r.Search = func(c marketplace.Coupon) []string {
		return []string{c.Code, c.Type.Label()}
	}
	r.Cells = func(c marketplace.Coupon) []Cell {
		return []Cell{text(c.Code), badge(c.Type.Badge()), text(couponValue(f, c)), text(couponUsage(f, c)), text(f.date(c.ExpiresAt)), couponState(f, c)}
	}
	r.Detail = func(c marketplace.Coupon) []FieldGroup {
		return []FieldGroup{
			{Title: "Coupon", Fields: []Field{
				field("Code", c.Code),
				badgeField("Type", c.Type.Badge()),
				field("Discount", couponValue(f, c)),
				field("Minimum order", f.money(c.MinOrderAmount)),
			}},
			{Title: "Usage", Fields: []Field{
				field("Used", couponUsage(f, c)),
				field("Expires", f.when(c.ExpiresAt)),
				field("Active", yesNo(c.Active && !c.Expired(f.now()))),
			}},
		}
	}
	typeOptions := make([]Option, 0, len(status.CouponTypes()))
	for _, t := range status.CouponTypes() {
		typeOptions = append(typeOptions, Option{Value: t.String(), Label: t.Label()})
	}
	r.Forms = []Action{f.formAction(ActionCreate, "Create coupon", path,
		Input{Name: "code", Label: "Code", Type: "text", Required: true},
		Input{Name: "type", Label: "Discount type", Type: "select", Required: true, Options: typeOptions},
		Input{Name: "value", Label: "Value", Type: "number", Required: true},
		Input{Name: "minOrderAmount", Label: "Minimum order amount", Type: "number"},
		Input{Name: "usageLimit", Label: "Usage limit", Type: "number"},
		Input{Name: "expiresAt", Label: "Expires on", Type: "date"},
	)}
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.Coupon], error) {
		return fromPage(client.SellerCoupons(ctx, page, limit))
	}
	return r.WithEmptyMessage("No coupons yet.")
}

func couponValue(f formatter, c marketplace.Coupon) string {
	if c.Type == status.CouponPercentage {
		return strconv.FormatFloat(c.Value, 'f', -1, 64) + "%"
	}
	return f.money(c.Value)
}

func couponUsage(f formatter, c marketplace.Coupon) string {
	if c.UsageLimit <= 0 {
		return f.count(c.UsedCount)
	}
	return f.count(c.UsedCount) + " / " + f.count(c.UsageLimit)
}

func couponState(f formatter, c marketplace.Coupon) Cell {
	switch {
	case c.Expired(f.now()):
		return badge(status.Badge{Value: "expired", Label: "Expired", Tone: status.ToneNeutral})
	case c.Active:
		return badge(status.Badge{Value: "active", Label: "Active", Tone: status.ToneSuccess})
	default:
		return badge(status.Badge{Value: "inactive", Label: "Inactive", Tone: status.ToneWarning})
	}
}

func sellerLoansView(f formatter) View {
	path := f.path("seller", "loans")
	r := NewResource[marketplace.LoanApplication](SellerLoans, status.RoleSeller, "Financing", path, f.size(status.RoleSeller))
	r.Columns = []Column{
		{Key: "amount", Label: "Amount", Align: "right"},
		{Key: "term", Label: "Term"},
		{Key: "rate", Label: "Rate", Align: "right"},
		{Key: "purpose", Label: "Purpose"},
		{Key: "status", Label: "Status"},
		{Key: "created", Label: "Applied"},
	}
	r.ID = func(l marketplace.LoanApplication) string { return l.ID }
	r.Label = func(l marketplace.LoanApplication) string { return "Loan of " + f.money(l.Amount) }
	r.Search = func(l marketplace.LoanApplication) []string {
		return []string{l.Purpose, l.Status.Label()}
	}
	r.Cells = func(l marketplace.LoanApplication) []Cell {
		return []Cell{text(f.money(l.Amount)), text(termLabel(l.TermMonths)), text(rateLabel(l.InterestRate)), text(l.Purpose), badge(l.Status.Badge()), text(f.date(l.CreatedAt))}
	}
	r.Detail = func(l marketplace.LoanApplication) []FieldGroup {
		return []FieldGroup{
			{Title: "Application", Fields: []Field{
				field("Amount", f.money(l.Amount)),
				field("Term", termLabel(l.TermMonths)),
				field("Interest rate", rateLabel(l.InterestRate)),
				field("Purpose", l.Purpose),
				badgeField("Status", l.Status.Badge()),
			}},
			{Title: "Timestamps", Fields: []Field{field("Applied", f.when(l.CreatedAt))}},
		}
	}
	terms := make([]Option, 0, len(LoanTerms))
	for _, months := range LoanTerms {
		terms = append(terms, Option{Value: strconv.Itoa(months), Label: termLabel(months)})
	}
	r.Forms = []Action{f.formAction(ActionApply, "Apply for financing", path,
		Input{Name: "amount", Label: "Amount", Type: "number", Required: true},
		Input{Name: "termMonths", Label: "Term", Type: "select", Required: true, Options: terms},
		Input{Name: "purpose", Label: "Purpose", Type: "textarea", Required: true},
	)}
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.LoanApplication], error) {
		return fromPage(client.LoanApplications(ctx, page, limit))
	}
	return r.WithEmptyMessage("No financing applications yet.")
}

func termLabel(months int) string {
	return strconv.Itoa(months) + " months"
}

func rateLabel(rate float64) string {
	if rate <= 0 {
		return "Pending"
	}
	return strconv.FormatFloat(rate, 'f', 1, 64) + "%"
}
