package marketplace

import (
	"time"

	"github.com/goliatone/go-market-dashboard/components/status"
)

// Pagination mirrors the backend pagination block after normalisation.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Page is a single page of records returned by a list endpoint.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// UsersPage carries the role counters the admin users endpoint adds to its
// pagination block.
type UsersPage struct {
	Page[User]
	SellerCount int `json:"sellerCount"`
	BuyerCount  int `json:"buyerCount"`
}

// WriteResult is the envelope every write endpoint returns.
type WriteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Address struct {
	Line1   string `json:"line1" yaml:"line1"`
	City    string `json:"city" yaml:"city"`
	State   string `json:"state" yaml:"state"`
	Country string `json:"country" yaml:"country"`
}

type BuyerInfo struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
	Phone string `json:"phone" yaml:"phone"`
}

type OrderItem struct {
	ProductID string  `json:"productId" yaml:"productId"`
	Name      string  `json:"name" yaml:"name"`
	SKU       string  `json:"sku" yaml:"sku"`
	Quantity  int     `json:"quantity" yaml:"quantity"`
	UnitPrice float64 `json:"unitPrice" yaml:"unitPrice"`
}

// LineTotal is quantity times unit price.
func (i OrderItem) LineTotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

type Order struct {
	ID              string             `json:"id" yaml:"id"`
	OrderNumber     string             `json:"orderNumber" yaml:"orderNumber"`
	Status          status.OrderStatus `json:"status" yaml:"status"`
	SellerID        string             `json:"sellerId" yaml:"sellerId"`
	SellerName      string             `json:"sellerName" yaml:"sellerName"`
	Buyer           BuyerInfo          `json:"buyer" yaml:"buyer"`
	Items           []OrderItem        `json:"items" yaml:"items"`
	Subtotal        float64            `json:"subtotal" yaml:"subtotal"`
	ShippingFee     float64            `json:"shippingFee" yaml:"shippingFee"`
	Total           float64            `json:"total" yaml:"total"`
	PaymentMethod   string             `json:"paymentMethod" yaml:"paymentMethod"`
	ShippingAddress Address            `json:"shippingAddress" yaml:"shippingAddress"`
	RejectReason    string             `json:"rejectReason,omitempty" yaml:"rejectReason"`
	CreatedAt       time.Time          `json:"createdAt" yaml:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" yaml:"updatedAt"`
}

type User struct {
	ID        string      `json:"id" yaml:"id"`
	Name      string      `json:"name" yaml:"name"`
	Email     string      `json:"email" yaml:"email"`
	Phone     string      `json:"phone" yaml:"phone"`
	Role      status.Role `json:"role" yaml:"role"`
	Business  string      `json:"businessName,omitempty" yaml:"businessName"`
	Verified  bool        `json:"verified" yaml:"verified"`
	CreatedAt time.Time   `json:"createdAt" yaml:"createdAt"`
}

type Review struct {
	ID          string              `json:"id" yaml:"id"`
	ProductID   string              `json:"productId" yaml:"productId"`
	ProductName string              `json:"productName" yaml:"productName"`
	BuyerName   string              `json:"buyerName" yaml:"buyerName"`
	Rating      int                 `json:"rating" yaml:"rating"`
	Comment     string              `json:"comment" yaml:"comment"`
	Status      status.ReviewStatus `json:"status" yaml:"status"`
	CreatedAt   time.Time           `json:"createdAt" yaml:"createdAt"`
}

type Driver struct {
	ID           string              `json:"id" yaml:"id"`
	Name         string              `json:"name" yaml:"name"`
	Phone        string              `json:"phone" yaml:"phone"`
	Email        string              `json:"email" yaml:"email"`
	VehicleType  string              `json:"vehicleType" yaml:"vehicleType"`
	VehiclePlate string              `json:"vehiclePlate" yaml:"vehiclePlate"`
	Zone         string              `json:"zone" yaml:"zone"`
	Status       status.DriverStatus `json:"status" yaml:"status"`
	Deliveries   int                 `json:"deliveries" yaml:"deliveries"`
	CreatedAt    time.Time           `json:"createdAt" yaml:"createdAt"`
}

// CreateDriverInput is the admin create-driver form.
type CreateDriverInput struct {
	Name         string `json:"name" validate:"required,min=2"`
	Phone        string `json:"phone" validate:"required,min=7"`
	Email        string `json:"email" validate:"omitempty,email"`
	VehicleType  string `json:"vehicleType" validate:"required"`
	VehiclePlate string `json:"vehiclePlate" validate:"required"`
	Zone         string `json:"zone"`
}

type MasterProduct struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Brand       string    `json:"brand" yaml:"brand"`
	Category    string    `json:"category" yaml:"category"`
	Description string    `json:"description" yaml:"description"`
	Listings    int       `json:"listings" yaml:"listings"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
}

// SellerProduct is a seller's listing of a master product.
type SellerProduct struct {
	ID              string    `json:"id" yaml:"id"`
	MasterProductID string    `json:"masterProductId" yaml:"masterProductId"`
	Name            string    `json:"name" yaml:"name"`
	SKU             string    `json:"sku" yaml:"sku"`
	Category        string    `json:"category" yaml:"category"`
	Condition       string    `json:"condition" yaml:"condition"`
	Price           float64   `json:"price" yaml:"price"`
	Stock           int       `json:"stock" yaml:"stock"`
	Active          bool      `json:"active" yaml:"active"`
	UpdatedAt       time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// LowStock reports listings that need restocking.
func (p SellerProduct) LowStock() bool {
	return p.Stock <= 5
}

type Return struct {
	ID          string              `json:"id" yaml:"id"`
	OrderID     string              `json:"orderId" yaml:"orderId"`
	OrderNumber string              `json:"orderNumber" yaml:"orderNumber"`
	BuyerName   string              `json:"buyerName" yaml:"buyerName"`
	SellerName  string              `json:"sellerName" yaml:"sellerName"`
	Reason      string              `json:"reason" yaml:"reason"`
	Details     string              `json:"details" yaml:"details"`
	Amount      float64             `json:"amount" yaml:"amount"`
	Status      status.ReturnStatus `json:"status" yaml:"status"`
	Fault       status.ReturnFault  `json:"fault" yaml:"fault"`
	AdminNote   string              `json:"adminNote,omitempty" yaml:"adminNote"`
	CreatedAt   time.Time           `json:"createdAt" yaml:"createdAt"`
}

// RequestReturnInput is the buyer return form.
type RequestReturnInput struct {
	OrderID string `json:"orderId" validate:"required"`
	Reason  string `json:"reason" validate:"required"`
	Details string `json:"details" validate:"max=2000"`
}

type Payout struct {
	ID           string              `json:"id" yaml:"id"`
	SellerID     string              `json:"sellerId" yaml:"sellerId"`
	SellerName   string              `json:"sellerName" yaml:"sellerName"`
	GrossAmount  float64             `json:"grossAmount" yaml:"grossAmount"`
	Commission   float64             `json:"commission" yaml:"commission"`
	NetAmount    float64             `json:"netAmount" yaml:"netAmount"`
	Status       status.PayoutStatus `json:"status" yaml:"status"`
	Reference    string              `json:"reference" yaml:"reference"`
	ScheduledFor time.Time           `json:"scheduledFor" yaml:"scheduledFor"`
	ProcessedAt  *time.Time          `json:"processedAt,omitempty" yaml:"processedAt"`
}

type Coupon struct {
	ID             string            `json:"id" yaml:"id"`
	Code           string            `json:"code" yaml:"code"`
	Type           status.CouponType `json:"type" yaml:"type"`
	Value          float64           `json:"value" yaml:"value"`
	MinOrderAmount float64           `json:"minOrderAmount" yaml:"minOrderAmount"`
	UsageLimit     int               `json:"usageLimit" yaml:"usageLimit"`
	UsedCount      int               `json:"usedCount" yaml:"usedCount"`
	ExpiresAt      time.Time         `json:"expiresAt" yaml:"expiresAt"`
	Active         bool              `json:"active" yaml:"active"`
}

// Expired reports whether the coupon is past its expiry at now.
func (c Coupon) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// CreateCouponInput is the seller coupon form after numeric coercion.
type CreateCouponInput struct {
	Code           string            `json:"code"`
	Type           status.CouponType `json:"type"`
	Value          float64           `json:"value"`
	MinOrderAmount float64           `json:"minOrderAmount"`
	UsageLimit     int               `json:"usageLimit"`
	ExpiresAt      time.Time         `json:"expiresAt"`
}

type LoanApplication struct {
	ID           string            `json:"id" yaml:"id"`
	SellerID     string            `json:"sellerId" yaml:"sellerId"`
	Amount       float64           `json:"amount" yaml:"amount"`
	TermMonths   int               `json:"termMonths" yaml:"termMonths"`
	Purpose      string            `json:"purpose" yaml:"purpose"`
	InterestRate float64           `json:"interestRate" yaml:"interestRate"`
	Status       status.LoanStatus `json:"status" yaml:"status"`
	CreatedAt    time.Time         `json:"createdAt" yaml:"createdAt"`
}

// LoanApplicationInput is the seller financing form.
type LoanApplicationInput struct {
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	TermMonths int     `json:"termMonths" validate:"required,oneof=3 6 9 12 18 24"`
	Purpose    string  `json:"purpose" validate:"required,min=3"`
}

type SalesPoint struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

type StatusCount struct {
	Status string `json:"status" yaml:"status"`
	Count  int    `json:"count" yaml:"count"`
}

// BusinessIntelligence is the admin overview aggregate.
type BusinessIntelligence struct {
	TotalRevenue   float64       `json:"totalRevenue" yaml:"totalRevenue"`
	TotalOrders    int           `json:"totalOrders" yaml:"totalOrders"`
	TotalUsers     int           `json:"totalUsers" yaml:"totalUsers"`
	ActiveSellers  int           `json:"activeSellers" yaml:"activeSellers"`
	AvgOrderValue  float64       `json:"averageOrderValue" yaml:"averageOrderValue"`
	PendingReturns int           `json:"pendingReturns" yaml:"pendingReturns"`
	SalesTrend     []SalesPoint  `json:"salesTrend" yaml:"salesTrend"`
	OrdersByStatus []StatusCount `json:"ordersByStatus" yaml:"ordersByStatus"`
	TopCategories  []SalesPoint  `json:"topCategories" yaml:"topCategories"`
}
