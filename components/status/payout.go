package status

// PayoutStatus tracks a scheduled transfer of seller proceeds.
type PayoutStatus uint8

const (
	PayoutUnknown PayoutStatus = iota
	PayoutPending
	PayoutProcessing
	PayoutPaid
	PayoutFailed
	PayoutOnHold
)

var payoutNames = []string{"", "pending", "processing", "paid", "failed", "on_hold"}

var payoutAliases = map[string]int{
	"completed": int(PayoutPaid),
	"success":   int(PayoutPaid),
	"held":      int(PayoutOnHold),
	"scheduled": int(PayoutPending),
}

func ParsePayoutStatus(raw string) PayoutStatus {
	return PayoutStatus(lookup(raw, payoutNames, payoutAliases))
}

func PayoutStatuses() []PayoutStatus {
	return []PayoutStatus{PayoutPending, PayoutProcessing, PayoutPaid, PayoutFailed, PayoutOnHold}
}

func (s PayoutStatus) String() string { return nameAt(payoutNames, int(s)) }
func (s PayoutStatus) Label() string  { return labelAt(payoutNames, int(s)) }

func (s PayoutStatus) Tone() Tone {
	switch s {
	case PayoutPending:
		return ToneWarning
	case PayoutProcessing:
		return ToneInfo
	case PayoutPaid:
		return ToneSuccess
	case PayoutFailed:
		return ToneDanger
	case PayoutOnHold:
		return ToneNeutral
	case PayoutUnknown:
		return ToneUnknown
	}
	return ToneUnknown
}

// IsUnknown reports whether s is not a known payout status.
func (s PayoutStatus) IsUnknown() bool { return unknownAt(payoutNames, int(s)) }

func (s PayoutStatus) Badge() Badge {
	return Badge{Value: s.String(), Label: s.Label(), Tone: s.Tone()}
}

// Processable reports whether an admin may trigger the transfer.
func (s PayoutStatus) Processable() bool {
	return s == PayoutPending || s == PayoutFailed
}

func (s PayoutStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *PayoutStatus) UnmarshalText(data []byte) error {
	*s = PayoutStatus(decode(string(data), payoutNames, payoutAliases))
	return nil
}
