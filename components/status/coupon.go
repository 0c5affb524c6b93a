package status

// CouponType selects how a coupon discount is computed.
type CouponType uint8

const (
	CouponUnknown CouponType = iota
	CouponPercentage
	CouponFixed
)

var couponNames = []string{"", "percentage", "fixed"}

var couponAliases = map[string]int{
	"percent":      int(CouponPercentage),
	"fixed_amount": int(CouponFixed),
	"amount":       int(CouponFixed),
}

func ParseCouponType(raw string) CouponType {
	return CouponType(lookup(raw, couponNames, couponAliases))
}

func CouponTypes() []CouponType {
	return []CouponType{CouponPercentage, CouponFixed}
}

func (c CouponType) String() string { return nameAt(couponNames, int(c)) }
func (c CouponType) Label() string  { return labelAt(couponNames, int(c)) }

func (c CouponType) Tone() Tone {
	switch c {
	case CouponPercentage, CouponFixed:
		return ToneInfo
	case CouponUnknown:
		return ToneUnknown
	}
	return ToneUnknown
}

// IsUnknown reports whether c is not a known coupon type.
func (c CouponType) IsUnknown() bool { return unknownAt(couponNames, int(c)) }

func (c CouponType) Badge() Badge {
	return Badge{Value: c.String(), Label: c.Label(), Tone: c.Tone()}
}

func (c CouponType) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *CouponType) UnmarshalText(data []byte) error {
	*c = CouponType(decode(string(data), couponNames, couponAliases))
	return nil
}
