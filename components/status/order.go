package status

// OrderStatus tracks an order through seller acceptance and fulfilment.
type OrderStatus uint8

const (
	OrderUnknown OrderStatus = iota
	OrderPending
	OrderConfirmed
	OrderProcessing
	OrderShipped
	OrderDelivered
	OrderCancelled
	OrderRejected
	OrderReturned
)

var orderNames = []string{"", "pending", "confirmed", "processing", "shipped", "delivered", "cancelled", "rejected", "returned"}

var orderAliases = map[string]int{
	"accepted":   int(OrderConfirmed),
	"canceled":   int(OrderCancelled),
	"completed":  int(OrderDelivered),
	"in_transit": int(OrderShipped),
}

// ParseOrderStatus maps a backend value to an OrderStatus.
func ParseOrderStatus(raw string) OrderStatus {
	return OrderStatus(lookup(raw, orderNames, orderAliases))
}

// OrderStatuses lists every known order status.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled, OrderRejected, OrderReturned}
}

func (s OrderStatus) String() string { return nameAt(orderNames, int(s)) }

// Label is the human readable status.
func (s OrderStatus) Label() string { return labelAt(orderNames, int(s)) }

// Tone picks the badge style.
func (s OrderStatus) Tone() Tone {
	switch s {
	case OrderPending:
		return ToneWarning
	case OrderConfirmed, OrderProcessing, OrderShipped:
		return ToneInfo
	case OrderDelivered:
		return ToneSuccess
	case OrderCancelled, OrderRejected:
		return ToneDanger
	case OrderReturned:
		return ToneNeutral
	case OrderUnknown:
		return ToneUnknown
	}
	return ToneUnknown
}

// IsUnknown reports whether s is not a known order status.
func (s OrderStatus) IsUnknown() bool { return unknownAt(orderNames, int(s)) }

// Badge returns the render model.
func (s OrderStatus) Badge() Badge {
	return Badge{Value: s.String(), Label: s.Label(), Tone: s.Tone()}
}

// AwaitingSeller reports whether the seller can still accept or reject.
func (s OrderStatus) AwaitingSeller() bool {
	return s == OrderPending
}

// Final reports whether no further transition is expected.
func (s OrderStatus) Final() bool {
	switch s {
	case OrderDelivered, OrderCancelled, OrderRejected, OrderReturned:
		return true
	}
	return false
}

func (s OrderStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *OrderStatus) UnmarshalText(data []byte) error {
	*s = OrderStatus(decode(string(data), orderNames, orderAliases))
	return nil
}
