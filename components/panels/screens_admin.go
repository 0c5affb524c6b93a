package panels

import (
	"context"
	"strconv"

	"github.com/goliatone/go-market-dashboard/components/status"
	"github.com/goliatone/go-market-dashboard/pkg/marketplace"
)

func adminUsersView(f formatter) View {
	r := NewResource[marketplace.User](AdminUsers, status.RoleAdmin, "Users", f.path("admin", "users"), f.size(status.RoleAdmin))
	r.Columns = []Column{
		{Key: "name", Label: "Name"},
		{Key: "email", Label: "Email"},
		{Key: "phone", Label: "Phone"},
		{Key: "role", Label: "Role"},
		{Key: "verified", Label: "Verified"},
		{Key: "joined", Label: "Joined"},
	}
	r.ID = func(u marketplace.User) string { return u.ID }
	r.Label = func(u marketplace.User) string { return u.Name }
	r.Search = func(u marketplace.User) []string {
		return []string{u.Name, u.Email, u.Phone, u.Business}
	}
	r.Cells = func(u marketplace.User) []Cell {
		return []Cell{text(u.Name), text(u.Email), text(u.Phone), badge(u.Role.Badge()), text(yesNo(u.Verified)), text(f.date(u.CreatedAt))}
	}
	r.Detail = func(u marketplace.User) []FieldGroup {
		groups := []FieldGroup{{
			Title: "Profile",
			Fields: []Field{
				field("Name", u.Name),
				field("Email", u.Email),
				field("Phone", u.Phone),
				badgeField("Role", u.Role.Badge()),
				field("Verified", yesNo(u.Verified)),
			},
		}}
		if u.Business != "" {
			groups = append(groups, FieldGroup{Title: "Business", Fields: []Field{field("Business name", u.Business)}})
		}
		groups = append(groups, FieldGroup{Title: "Timestamps", Fields: []Field{field("Joined", f.when(u.CreatedAt))}})
		return groups
	}
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.User], error) {
		users, err := client.AdminUsers(ctx, page, limit)
		fetched, err := fromPage(users.Page, err)
		if err != nil {
			return fetched, err
		}
		fetched.Stats = []Stat{
			{Label: "Total Users", Value: f.count(users.Pagination.Total)},
			{Label: "Sellers", Value: f.count(users.SellerCount)},
			{Label: "Buyers", Value: f.count(users.BuyerCount)},
		}
		return fetched, nil
	}
	return r
}

func adminReviewsView(f formatter) View {
	path := f.path("admin", "reviews")
	r := NewResource[marketplace.Review](AdminReviews, status.RoleAdmin, "Reviews", path, f.size(status.RoleAdmin))
	r.Columns = []Column{
		{Key: "product", Label: "Product"},
		{Key: "buyer", Label: "Buyer"},
		{Key: "rating", Label: "Rating", Align: "right"},
		{Key: "comment", Label: "Comment"},
		{Key: "status", Label: "Status"},
		{Key: "created", Label: "Posted"},
	}
	r.ID = func(rv marketplace.Review) string { return rv.ID }
	r.Label = func(rv marketplace.Review) string { return rv.ProductName }
	r.Search = func(rv marketplace.Review) []string {
		return []string{rv.ProductName, rv.BuyerName, rv.Comment}
	}
	r.Cells = func(rv marketplace.Review) []Cell {
		return []Cell{text(rv.ProductName), text(rv.BuyerName), text(strconv.Itoa(rv.Rating) + "/5"), text(rv.Comment), badge(rv.Status.Badge()), text(f.date(rv.CreatedAt))}
	}
	r.Detail = func(rv marketplace.Review) []FieldGroup {
		return []FieldGroup{
			{Title: "Review", Fields: []Field{
				field("Product", rv.ProductName),
				field("Product ID", rv.ProductID),
				field("Buyer", rv.BuyerName),
				field("Rating", strconv.Itoa(rv.Rating)+"/5"),
				field("Comment", rv.Comment),
				badgeField("Status", rv.Status.Badge()),
			}},
			{Title: "Timestamps", Fields: []Field{field("Posted", f.when(rv.CreatedAt))}},
		}
	}
	r.Actions = func(rv marketplace.Review) []Action {
		var actions []Action
		if rv.Status != status.ReviewApproved {
			actions = append(actions, f.rowAction(ActionApprove, "Approve", path, rv.ID, status.ToneSuccess))
		}
		if rv.Status != status.ReviewRejected {
			actions = append(actions, f.rowAction(ActionReject, "Reject", path, rv.ID, status.ToneDanger))
		}
		return actions
	}
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.Review], error) {
		return fromPage(client.AdminReviews(ctx, page, limit))
	}
	return r
}

func adminOrdersView(f formatter) View {
	r := NewResource[marketplace.Order](AdminOrders, status.RoleAdmin, "Orders", f.path("admin", "orders"), f.size(status.RoleAdmin))
	r.Columns = orderColumns(true)
	r.ID = orderID
	r.Label = orderLabel
	r.Search = func(o marketplace.Order) []string {
		return []string{o.OrderNumber, o.Buyer.Name, o.Buyer.Email, o.SellerName}
	}
	r.Cells = func(o marketplace.Order) []Cell {
		return []Cell{text(o.OrderNumber), text(o.Buyer.Name), text(o.SellerName), text(f.money(o.Total)), badge(o.Status.Badge()), text(f.date(o.CreatedAt))}
	}
	r.Detail = func(o marketplace.Order) []FieldGroup { return orderDetail(f, o) }
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.Order], error) {
		return fromPage(client.AdminOrders(ctx, page, limit))
	}
	return r
}

func adminDriversView(f formatter) View {
	path := f.path("admin", "drivers")
	r := NewResource[marketplace.Driver](AdminDrivers, status.RoleAdmin, "Drivers", path, f.size(status.RoleAdmin))
	r.Columns = []Column{
		{Key: "name", Label: "Name"},
		{Key: "phone", Label: "Phone"},
		{Key: "vehicle", Label: "Vehicle"},
		{Key: "zone", Label: "Zone"},
		{Key: "status", Label: "Status"},
		{Key: "deliveries", Label: "Deliveries", Align: "right"},
	}
	r.ID = func(d marketplace.Driver) string { return d.ID }
	r.Label = func(d marketplace.Driver) string { return d.Name }
	r.Search = func(d marketplace.Driver) []string {
		return []string{d.Name, d.Phone, d.Email, d.VehiclePlate, d.Zone}
	}
	r.Cells = func(d marketplace.Driver) []Cell {
		return []Cell{text(d.Name), text(d.Phone), text(d.VehicleType + " · " + d.VehiclePlate), text(d.Zone), badge(d.Status.Badge()), text(f.count(d.Deliveries))}
	}
	r.Detail = func(d marketplace.Driver) []FieldGroup {
		return []FieldGroup{
			{Title: "Contact", Fields: []Field{field("Name", d.Name), field("Phone", d.Phone), field("Email", d.Email)}},
			{Title: "Vehicle", Fields: []Field{field("Type", d.VehicleType), field("Plate", d.VehiclePlate), field("Zone", d.Zone)}},
			{Title: "Activity", Fields: []Field{badgeField("Status", d.Status.Badge()), field("Deliveries", f.count(d.Deliveries)), field("Onboarded", f.when(d.CreatedAt))}},
		}
	}
	r.Forms = []Action{f.formAction(ActionCreate, "Add driver", path,
		Input{Name: "name", Label: "Full name", Type: "text", Required: true},
		Input{Name: "phone", Label: "Phone", Type: "tel", Required: true},
		Input{Name: "email", Label: "Email", Type: "email"},
		Input{Name: "vehicleType", Label: "Vehicle type", Type: "select", Required: true, Options: []Option{
			{Value: "motorcycle", Label: "Motorcycle"},
			{Value: "car", Label: "Car"},
			{Value: "van", Label: "Van"},
			{Value: "truck", Label: "Truck"},
		}},
		Input{Name: "vehiclePlate", Label: "Plate number", Type: "text", Required: true},
		Input{Name: "zone", Label: "Zone", Type: "text"},
	)}
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.Driver], error) {
		return fromPage(client.AdminDrivers(ctx, page, limit))
	}
	return r
}

func adminReturnsView(f formatter, overlays Overlays) View {
	path := f.path("admin", "returns")
	r := NewResource[marketplace.Return](AdminReturns, status.RoleAdmin, "Returns & Disputes", path, f.size(status.RoleAdmin))
	r.Columns = returnColumns(true)
	r.ID = returnID
	r.Label = returnLabel
	r.Search = func(rt marketplace.Return) []string {
		return []string{rt.OrderNumber, rt.BuyerName, rt.SellerName, rt.Reason}
	}
	r.Cells = func(rt marketplace.Return) []Cell {
		return []Cell{text(rt.OrderNumber), text(rt.BuyerName), text(rt.SellerName), text(reasonLabel(rt.Reason)), text(f.money(rt.Amount)), badge(rt.Status.Badge()), badge(rt.Fault.Badge())}
	}
	r.Detail = func(rt marketplace.Return) []FieldGroup { return returnDetail(f, rt) }
	r.Actions = func(rt marketplace.Return) []Action {
		if !rt.Status.Classifiable() {
			return nil
		}
		return []Action{f.rowAction(ActionClassify, "Classify fault", path, rt.ID, status.ToneWarning,
			Input{Name: "fault", Label: "Fault", Type: "select", Required: true, Options: faultOptions()},
			Input{Name: "note", Label: "Note", Type: "textarea"},
		)}
	}
	if overlays != nil {
		r.Overlay = overlays.Returns
		r.Pending = func(rt marketplace.Return) bool { return overlays.ReturnPending(rt.ID) }
	}
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.Return], error) {
		return fromPage(client.AdminReturns(ctx, page, limit))
	}
	return r
}

func adminPayoutsView(f formatter) View {
	path := f.path("admin", "payouts")
	r := NewResource[marketplace.Payout](AdminPayouts, status.RoleAdmin, "Payouts", path, f.size(status.RoleAdmin))
	r.Columns = payoutColumns(true)
	r.ID = payoutID
	r.Label = func(p marketplace.Payout) string { return "Payout to " + p.SellerName }
	r.Search = func(p marketplace.Payout) []string {
		return []string{p.SellerName, p.Reference, p.Status.Label()}
	}
	r.Cells = func(p marketplace.Payout) []Cell {
		return append([]Cell{text(p.SellerName)}, payoutCells(f, p)...)
	}
	r.Detail = func(p marketplace.Payout) []FieldGroup { return payoutDetail(f, p) }
	r.Actions = func(p marketplace.Payout) []Action {
		if !p.Status.Processable() {
			return nil
		}
		action := f.rowAction(ActionProcess, "Process payout", path, p.ID, status.ToneSuccess)
		action.Confirm = "Transfer " + f.money(p.NetAmount) + " to " + p.SellerName + "?"
		return []Action{action}
	}
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.Payout], error) {
		return fromPage(client.AdminPayouts(ctx, page, limit))
	}
	return r
}

func adminProductsView(f formatter) View {
	r := NewResource[marketplace.MasterProduct](AdminProducts, status.RoleAdmin, "Master Products", f.path("admin", "products"), f.size(status.RoleAdmin))
	r.Columns = []Column{
		{Key: "name", Label: "Product"},
		{Key: "brand", Label: "Brand"},
		{Key: "category", Label: "Category"},
		{Key: "listings", Label: "Listings", Align: "right"},
		{Key: "created", Label: "Created"},
	}
	r.ID = func(p marketplace.MasterProduct) string { return p.ID }
	r.Label = func(p marketplace.MasterProduct) string { return p.Name }
	r.Search = func(p marketplace.MasterProduct) []string {
		return []string{p.Name, p.Brand, p.Category}
	}
	r.Cells = func(p marketplace.MasterProduct) []Cell {
		return []Cell{text(p.Name), text(p.Brand), text(categoryLabel(p.Category)), text(f.count(p.Listings)), text(f.date(p.CreatedAt))}
	}
	r.Detail = func(p marketplace.MasterProduct) []FieldGroup {
		return []FieldGroup{
			{Title: "Catalog entry", Fields: []Field{
				field("Name", p.Name),
				field("Brand", p.Brand),
				field("Category", categoryLabel(p.Category)),
				field("Description", p.Description),
			}},
			{Title: "Marketplace", Fields: []Field{field("Seller listings", f.count(p.Listings)), field("Created", f.when(p.CreatedAt))}},
		}
	}
	r.Fetch = func(ctx context.Context, client marketplace.Client, page, limit int) (Fetched[marketplace.MasterProduct], error) {
		return fromPage(client.MasterProducts(ctx, page, limit))
	}
	return r
}
