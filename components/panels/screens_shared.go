package panels

import (
	"strconv"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

func orderID(o marketplace.Order) string    { return o.ID }
func orderLabel(o marketplace.Order) string { return "Order " + o.OrderNumber }

func orderColumns(withSeller bool) []Column {
	columns := []Column{
		{Key: "number", Label: "Order"},
		{Key: "buyer", Label: "Buyer"},
	}
	if withSeller {
		columns = append(columns, Column{Key: "seller", Label: "Seller"})
	}
	return append(columns,
		Column{Key: "total", Label: "Total", Align: "right"},
		Column{Key: "status", Label: "Status"},
		Column{Key: "created", Label: "Placed"},
	)
}

// orderDetail renders the nested order data exactly as received.
func orderDetail(f formatter, o marketplace.Order) []FieldGroup {
	items := FieldGroup{
		Title:   "Items",
		Headers: []string{"Product", "SKU", "Qty", "Unit price", "Line total"},
		Rows:    make([][]string, 0, len(o.Items)),
	}
	for _, item := range o.Items {
		items.Rows = append(items.Rows, []string{
			item.Name,
			item.SKU,
			strconv.Itoa(item.Quantity),
			f.money(item.UnitPrice),
			f.money(item.LineTotal()),
		})
	}
	summary := FieldGroup{Title: "Order", Fields: []Field{
		field("Order number", o.OrderNumber),
		badgeField("Status", o.Status.Badge()),
		field("Seller", o.SellerName),
		field("Payment method", methodLabel(o.PaymentMethod)),
		field("Subtotal", f.money(o.Subtotal)),
		field("Shipping", f.money(o.ShippingFee)),
		field("Total", f.money(o.Total)),
	}}
	if o.RejectReason != "" {
		summary.Fields = append(summary.Fields, field("Rejection reason", o.RejectReason))
	}
	return []FieldGroup{
		summary,
		items,
		{Title: "Buyer", Fields: []Field{
			field("Name", o.Buyer.Name),
			field("Email", o.Buyer.Email),
			field("Phone", o.Buyer.Phone),
		}},
		{Title: "Shipping address", Fields: []Field{
			field("Address", o.ShippingAddress.Line1),
			field("City", o.ShippingAddress.City),
			field("State", o.ShippingAddress.State),
			field("Country", o.ShippingAddress.Country),
		}},
		{Title: "Timestamps", Fields: []Field{
			field("Placed", f.when(o.CreatedAt)),
			field("Updated", f.when(o.UpdatedAt)),
		}},
	}
}

func returnID(r marketplace.Return) string    { return r.ID }
func returnLabel(r marketplace.Return) string { return "Return for " + r.OrderNumber }

func returnColumns(admin bool) []Column {
	columns := []Column{{Key: "order", Label: "Order"}}
	if admin {
		columns = append(columns, Column{Key: "buyer", Label: "Buyer"}, Column{Key: "seller", Label: "Seller"})
	}
	columns = append(columns,
		Column{Key: "reason", Label: "Reason"},
		Column{Key: "amount", Label: "Amount", Align: "right"},
		Column{Key: "status", Label: "Status"},
	)
	if admin {
		columns = append(columns, Column{Key: "fault", Label: "Fault"})
	}
	return columns
}

func returnDetail(f formatter, r marketplace.Return) []FieldGroup {
	resolution := FieldGroup{Title: "Resolution", Fields: []Field{
		badgeField("Status", r.Status.Badge()),
		badgeField("Fault", r.Fault.Badge()),
	}}
	if r.AdminNote != "" {
		resolution.Fields = append(resolution.Fields, field("Admin note", r.AdminNote))
	}
	return []FieldGroup{
		{Title: "Request", Fields: []Field{
			field("Order", r.OrderNumber),
			field("Buyer", r.BuyerName),
			field("Seller", r.SellerName),
			field("Reason", reasonLabel(r.Reason)),
			field("Details", r.Details),
			field("Amount", f.money(r.Amount)),
		}},
		resolution,
		{Title: "Timestamps", Fields: []Field{field("Requested", f.when(r.CreatedAt))}},
	}
}

func payoutID(p marketplace.Payout) string { return p.ID }

func payoutColumns(withSeller bool) []Column {
	var columns []Column
	if withSeller {
		columns = append(columns, Column{Key: "seller", Label: "Seller"})
	}
	return append(columns,
		Column{Key: "gross", Label: "Gross", Align: "right"},
		Column{Key: "commission", Label: "Commission", Align: "right"},
		Column{Key: "net", Label: "Net", Align: "right"},
		Column{Key: "status", Label: "Status"},
		Column{Key: "scheduled", Label: "Scheduled"},
	)
}

func payoutCells(f formatter, p marketplace.Payout) []Cell {
	return []Cell{
		text(f.money(p.GrossAmount)),
		text(f.money(p.Commission)),
		text(f.money(p.NetAmount)),
		badge(p.Status.Badge()),
		text(f.date(p.ScheduledFor)),
	}
}

func payoutDetail(f formatter, p marketplace.Payout) []FieldGroup {
	timestamps := FieldGroup{Title: "Timestamps", Fields: []Field{field("Scheduled for", f.date(p.ScheduledFor))}}
	if p.ProcessedAt != nil {
		timestamps.Fields = append(timestamps.Fields, field("Processed", f.when(*p.ProcessedAt)))
	}
	return []FieldGroup{
		{Title: "Payout", Fields: []Field{
			field("Seller", p.SellerName),
			badgeField("Status", p.Status.Badge()),
			field("Reference", p.Reference),
		}},
		{Title: "Amounts", Fields: []Field{
			field("Gross", f.money(p.GrossAmount)),
			field("Commission", f.money(p.Commission)),
			field("Net", f.money(p.NetAmount)),
		}},
		timestamps,
	}
}

func reasonLabel(reason string) string {
	return humanLabel(reason)
}

func categoryLabel(category string) string {
	return humanLabel(category)
}

func methodLabel(method string) string {
	return humanLabel(method)
}

func humanLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	return strcase.ToCase(raw, strcase.TitleCase, ' ')
}

func faultOptions() []Option {
	options := make([]Option, 0, len(status.ReturnFaults()))
	for _, fault := range status.ReturnFaults() {
		options = append(options, Option{Value: fault.String(), Label: fault.Label()})
	}
	return options
}
