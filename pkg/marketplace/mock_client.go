package marketplace

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-market-dashboard/components/status"
)

//go:embed fixtures/demo.yaml
var demoFixtures []byte

// MockData seeds the in-memory backend.
type MockData struct {
	Users          []User               `yaml:"users"`
	Reviews        []Review             `yaml:"reviews"`
	Orders         []Order              `yaml:"orders"`
	Drivers        []Driver             `yaml:"drivers"`
	Returns        []Return             `yaml:"returns"`
	Payouts        []Payout             `yaml:"payouts"`
	MasterProducts []MasterProduct      `yaml:"masterProducts"`
	Products       []SellerProduct      `yaml:"products"`
	Coupons        []Coupon             `yaml:"coupons"`
	Loans          []LoanApplication    `yaml:"loans"`
	Intelligence   BusinessIntelligence `yaml:"intelligence"`
	// SellerID and BuyerID identify the demo viewer for seller and buyer
	// scoped endpoints.
	SellerID string `yaml:"sellerId"`
	BuyerID  string `yaml:"buyerId"`
	// CreditScore drives the mocked loan eligibility check.
	CreditScore int `yaml:"creditScore"`
}

// MinimumCreditScore is the eligibility threshold for seller financing.
const MinimumCreditScore = 600

// LoadFixtures reads MockData from a YAML file.
func LoadFixtures(path string) (MockData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return MockData{}, fmt.Errorf("marketplace: read fixtures: %w", err)
	}
	return ParseFixtures(raw)
}

// ParseFixtures decodes MockData from YAML bytes.
func ParseFixtures(raw []byte) (MockData, error) {
	var data MockData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return MockData{}, fmt.Errorf("marketplace: decode fixtures: %w", err)
	}
	return data, nil
}

// DemoFixtures returns the bundled demo data set.
func DemoFixtures() MockData {
	data, err := ParseFixtures(demoFixtures)
	if err != nil {
		panic(err)
	}
	return data
}

// MockOption customises a MockClient.
type MockOption func(*MockClient)

// WithLatency delays every call, mimicking a slow backend.
func WithLatency(d time.Duration) MockOption {
	return func(c *MockClient) { c.latency = d }
}

// WithClock overrides time.Now for deterministic timestamps.
func WithClock(now func() time.Time) MockOption {
	return func(c *MockClient) {
		if now != nil {
			c.now = now
		}
	}
}

// MockClient implements Client over in-memory fixtures.
type MockClient struct {
	mu      sync.RWMutex
	data    MockData
	latency time.Duration
	now     func() time.Time
	failure error
}

// NewMockClient builds a mock backend from the provided fixtures.
func NewMockClient(data MockData, opts ...MockOption) *MockClient {
	c := &MockClient{data: data, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// FailNext makes the next call return err. Passing nil clears it.
func (c *MockClient) FailNext(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failure = err
}

// Snapshot returns a copy of the current data set.
func (c *MockClient) Snapshot() MockData {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.data
	out.Users = slices.Clone(c.data.Users)
	out.Reviews = slices.Clone(c.data.Reviews)
	out.Orders = slices.Clone(c.data.Orders)
	out.Drivers = slices.Clone(c.data.Drivers)
	out.Returns = slices.Clone(c.data.Returns)
	out.Payouts = slices.Clone(c.data.Payouts)
	out.MasterProducts = slices.Clone(c.data.MasterProducts)
	out.Products = slices.Clone(c.data.Products)
	out.Coupons = slices.Clone(c.data.Coupons)
	out.Loans = slices.Clone(c.data.Loans)
	return out
}

func (c *MockClient) AdminUsers(ctx context.Context, page, limit int) (UsersPage, error) {
	if err := c.begin(ctx); err != nil {
		return UsersPage{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := UsersPage{Page: paginate(c.data.Users, page, limit)}
	for _, u := range c.data.Users {
		switch u.Role {
		case status.RoleSeller:
			out.SellerCount++
		case status.RoleBuyer:
			out.BuyerCount++
		}
	}
	return out, nil
}

func (c *MockClient) AdminReviews(ctx context.Context, page, limit int) (Page[Review], error) {
	return mockList(ctx, c, func(d *MockData) []Review { return d.Reviews }, page, limit)
}

func (c *MockClient) AdminOrders(ctx context.Context, page, limit int) (Page[Order], error) {
	return mockList(ctx, c, func(d *MockData) []Order { return d.Orders }, page, limit)
}

func (c *MockClient) AdminDrivers(ctx context.Context, page, limit int) (Page[Driver], error) {
	return mockList(ctx, c, func(d *MockData) []Driver { return d.Drivers }, page, limit)
}

func (c *MockClient) CreateDriver(ctx context.Context, input CreateDriverInput) (Driver, error) {
	if err := c.begin(ctx); err != nil {
		return Driver{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	driver := Driver{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Phone:        input.Phone,
		Email:        input.Email,
		VehicleType:  input.VehicleType,
		VehiclePlate: input.VehiclePlate,
		Zone:         input.Zone,
		Status:       status.DriverActive,
		CreatedAt:    c.now().UTC(),
	}
	c.data.Drivers = append([]Driver{driver}, c.data.Drivers...)
	return driver, nil
}

func (c *MockClient) AdminReturns(ctx context.Context, page, limit int) (Page[Return], error) {
	return mockList(ctx, c, func(d *MockData) []Return { return d.Returns }, page, limit)
}

func (c *MockClient) ClassifyReturnFault(ctx context.Context, id string, fault status.ReturnFault, note string) (Return, error) {
	if err := c.begin(ctx); err != nil {
		return Return{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.IndexFunc(c.data.Returns, func(r Return) bool { return r.ID == id })
	if idx < 0 {
		return Return{}, notFound("return", id)
	}
	ret := &c.data.Returns[idx]
	if !ret.Status.Classifiable() {
		return Return{}, writeRejected("/admin/returns/"+id+"/fault", "return is already "+ret.Status.Label())
	}
	ret.Fault = fault
	ret.AdminNote = note
	if ret.Status == status.ReturnRequested {
		ret.Status = status.ReturnUnderReview
	}
	return *ret, nil
}

func (c *MockClient) AdminPayouts(ctx context.Context, page, limit int) (Page[Payout], error) {
	return mockList(ctx, c, func(d *MockData) []Payout { return d.Payouts }, page, limit)
}

func (c *MockClient) ProcessPayout(ctx context.Context, id string) (Payout, error) {
	if err := c.begin(ctx); err != nil {
		return Payout{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.IndexFunc(c.data.Payouts, func(p Payout) bool { return p.ID == id })
	if idx < 0 {
		return Payout{}, notFound("payout", id)
	}
	payout := &c.data.Payouts[idx]
	if !payout.Status.Processable() {
		return Payout{}, writeRejected("/admin/payouts/"+id+"/process", "payout is already "+payout.Status.Label())
	}
	processed := c.now().UTC()
	payout.Status = status.PayoutPaid
	payout.ProcessedAt = &processed
	if payout.Reference == "" {
		payout.Reference = "PO-" + strings.ToUpper(uuid.NewString()[:8])
	}
	return *payout, nil
}

func (c *MockClient) MasterProducts(ctx context.Context, page, limit int) (Page[MasterProduct], error) {
	return mockList(ctx, c, func(d *MockData) []MasterProduct { return d.MasterProducts }, page, limit)
}

func (c *MockClient) BusinessIntelligence(ctx context.Context) (BusinessIntelligence, error) {
	if err := c.begin(ctx); err != nil {
		return BusinessIntelligence{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	bi := c.data.Intelligence
	bi.SalesTrend = slices.Clone(bi.SalesTrend)
	bi.OrdersByStatus = slices.Clone(bi.OrdersByStatus)
	bi.TopCategories = slices.Clone(bi.TopCategories)
	if bi.TotalUsers == 0 {
		bi.TotalUsers = len(c.data.Users)
	}
	if bi.PendingReturns == 0 {
		for _, r := range c.data.Returns {
			if r.Status.Classifiable() {
				bi.PendingReturns++
			}
		}
	}
	return bi, nil
}

func (c *MockClient) ModerateReview(ctx context.Context, id string, decision status.ReviewStatus) (Review, error) {
	if err := c.begin(ctx); err != nil {
		return Review{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.IndexFunc(c.data.Reviews, func(r Review) bool { return r.ID == id })
	if idx < 0 {
		return Review{}, notFound("review", id)
	}
	c.data.Reviews[idx].Status = decision
	return c.data.Reviews[idx], nil
}

func (c *MockClient) SellerOrders(ctx context.Context, page, limit int) (Page[Order], error) {
	return mockList(ctx, c, func(d *MockData) []Order {
		return filterBy(d.Orders, func(o Order) bool { return d.SellerID == "" || o.SellerID == d.SellerID })
	}, page, limit)
}

func (c *MockClient) AcceptOrder(ctx context.Context, id string) (Order, error) {
	return c.decideOrder(ctx, id, status.OrderConfirmed, "")
}

func (c *MockClient) RejectOrder(ctx context.Context, id, reason string) (Order, error) {
	return c.decideOrder(ctx, id, status.OrderRejected, reason)
}

func (c *MockClient) decideOrder(ctx context.Context, id string, next status.OrderStatus, reason string) (Order, error) {
	if err := c.begin(ctx); err != nil {
		return Order{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.IndexFunc(c.data.Orders, func(o Order) bool { return o.ID == id })
	if idx < 0 {
		return Order{}, notFound("order", id)
	}
	order := &c.data.Orders[idx]
	if !order.Status.AwaitingSeller() {
		return Order{}, writeRejected("/seller/orders/"+id, "order is already "+order.Status.Label())
	}
	order.Status = next
	order.RejectReason = reason
	order.UpdatedAt = c.now().UTC()
	return *order, nil
}

func (c *MockClient) SellerProducts(ctx context.Context, page, limit int) (Page[SellerProduct], error) {
	return mockList(ctx, c, func(d *MockData) []SellerProduct { return d.Products }, page, limit)
}

func (c *MockClient) SellerPayouts(ctx context.Context, page, limit int) (Page[Payout], error) {
	return mockList(ctx, c, func(d *MockData) []Payout {
		return filterBy(d.Payouts, func(p Payout) bool { return d.SellerID == "" || p.SellerID == d.SellerID })
	}, page, limit)
}

func (c *MockClient) SellerCoupons(ctx context.Context, page, limit int) (Page[Coupon], error) {
	return mockList(ctx, c, func(d *MockData) []Coupon { return d.Coupons }, page, limit)
}

// CreateCoupon appends exactly one coupon with a zero usage count.
func (c *MockClient) CreateCoupon(ctx context.Context, input CreateCouponInput) (Coupon, error) {
	if err := c.begin(ctx); err != nil {
		return Coupon{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if slices.ContainsFunc(c.data.Coupons, func(existing Coupon) bool { return existing.Code == code }) {
		return Coupon{}, goerrors.NewValidation("coupon code already exists",
			goerrors.FieldError{Field: "code", Message: "must be unique", Value: code})
	}
	coupon := Coupon{
		ID:             uuid.NewString(),
		Code:           code,
		Type:           input.Type,
		Value:          input.Value,
		MinOrderAmount: input.MinOrderAmount,
		UsageLimit:     input.UsageLimit,
		UsedCount:      0,
		ExpiresAt:      input.ExpiresAt,
		Active:         true,
	}
	c.data.Coupons = append(c.data.Coupons, coupon)
	return coupon, nil
}

func (c *MockClient) LoanApplications(ctx context.Context, page, limit int) (Page[LoanApplication], error) {
	return mockList(ctx, c, func(d *MockData) []LoanApplication { return d.Loans }, page, limit)
}

// ApplyForLoan records the application. Eligibility is decided by the
// fixture credit score: below MinimumCreditScore the application is rejected.
func (c *MockClient) ApplyForLoan(ctx context.Context, input LoanApplicationInput) (LoanApplication, error) {
	if err := c.begin(ctx); err != nil {
		return LoanApplication{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	score := c.data.CreditScore
	if score == 0 {
		score = 650
	}
	loan := LoanApplication{
		ID:         uuid.NewString(),
		SellerID:   c.data.SellerID,
		Amount:     input.Amount,
		TermMonths: input.TermMonths,
		Purpose:    input.Purpose,
		Status:     status.LoanPending,
		CreatedAt:  c.now().UTC(),
	}
	if score < MinimumCreditScore {
		loan.Status = status.LoanRejected
	} else {
		loan.InterestRate = InterestRateFor(score)
	}
	c.data.Loans = append([]LoanApplication{loan}, c.data.Loans...)
	return loan, nil
}

// InterestRateFor maps a credit score to an annual rate in percent.
func InterestRateFor(score int) float64 {
	rate := 18.0 - float64(score-MinimumCreditScore)/50.0
	if rate < 8 {
		rate = 8
	}
	return rate
}

func (c *MockClient) BuyerOrders(ctx context.Context, page, limit int) (Page[Order], error) {
	return mockList(ctx, c, func(d *MockData) []Order {
		return filterBy(d.Orders, func(o Order) bool { return d.BuyerID == "" || o.Buyer.ID == d.BuyerID })
	}, page, limit)
}

func (c *MockClient) BuyerReturns(ctx context.Context, page, limit int) (Page[Return], error) {
	return mockList(ctx, c, func(d *MockData) []Return {
		if d.BuyerID == "" {
			return d.Returns
		}
		owned := map[string]bool{}
		for _, o := range d.Orders {
			if o.Buyer.ID == d.BuyerID {
				owned[o.ID] = true
			}
		}
		return filterBy(d.Returns, func(r Return) bool { return owned[r.OrderID] })
	}, page, limit)
}

func (c *MockClient) RequestReturn(ctx context.Context, input RequestReturnInput) (Return, error) {
	if err := c.begin(ctx); err != nil {
		return Return{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := slices.IndexFunc(c.data.Orders, func(o Order) bool { return o.ID == input.OrderID })
	if idx < 0 {
		return Return{}, notFound("order", input.OrderID)
	}
	order := c.data.Orders[idx]
	if order.Status != status.OrderDelivered {
		return Return{}, writeRejected("/buyer/returns", "only delivered orders can be returned")
	}
	ret := Return{
		ID:          uuid.NewString(),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		BuyerName:   order.Buyer.Name,
		SellerName:  order.SellerName,
		Reason:      input.Reason,
		Details:     input.Details,
		Amount:      order.Total,
		Status:      status.ReturnRequested,
		CreatedAt:   c.now().UTC(),
	}
	c.data.Returns = append([]Return{ret}, c.data.Returns...)
	return ret, nil
}

// begin applies the simulated latency and any injected failure.
func (c *MockClient) begin(ctx context.Context) error {
	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fetchFailed(ctx.Err(), "mock")
		case <-timer.C:
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure != nil {
		err := c.failure
		c.failure = nil
		return err
	}
	return nil
}

func mockList[T any](ctx context.Context, c *MockClient, pick func(*MockData) []T, page, limit int) (Page[T], error) {
	if err := c.begin(ctx); err != nil {
		return Page[T]{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return paginate(pick(&c.data), page, limit), nil
}

func paginate[T any](all []T, page, limit int) Page[T] {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = len(all)
		if limit == 0 {
			limit = 1
		}
	}
	pages := (len(all) + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	start := len(all)
	if page <= pages {
		start = (page - 1) * limit
	}
	end := min(start+limit, len(all))
	return Page[T]{
		Items:      slices.Clone(all[start:end]),
		Pagination: Pagination{Page: page, Limit: limit, Total: len(all), Pages: pages},
	}
}

func filterBy[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func notFound(kind, id string) error {
	return goerrors.New(fmt.Sprintf("%s %q not found", kind, id), goerrors.CategoryNotFound).
		WithMetadata(map[string]any{"id": id})
}
