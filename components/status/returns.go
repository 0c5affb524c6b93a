package status

// ReturnStatus tracks a buyer initiated return/dispute.
type ReturnStatus uint8

const (
	ReturnUnknown ReturnStatus = iota
	ReturnRequested
	ReturnUnderReview
	ReturnApproved
	ReturnRejected
	ReturnRefunded
	ReturnClosed
)

var returnNames = []string{"", "requested", "under_review", "approved", "rejected", "refunded", "closed"}

var returnAliases = map[string]int{
	"pending":   int(ReturnRequested),
	"open":      int(ReturnRequested),
	"reviewing": int(ReturnUnderReview),
	"resolved":  int(ReturnClosed),
}

func ParseReturnStatus(raw string) ReturnStatus {
	return ReturnStatus(lookup(raw, returnNames, returnAliases))
}

func ReturnStatuses() []ReturnStatus {
	return []ReturnStatus{ReturnRequested, ReturnUnderReview, ReturnApproved, ReturnRejected, ReturnRefunded, ReturnClosed}
}

func (s ReturnStatus) String() string { return nameAt(returnNames, int(s)) }
func (s ReturnStatus) Label() string  { return labelAt(returnNames, int(s)) }

func (s ReturnStatus) Tone() Tone {
	switch s {
	case ReturnRequested:
		return ToneWarning
	case ReturnUnderReview:
		return ToneInfo
	case ReturnApproved, ReturnRefunded:
		return ToneSuccess
	case ReturnRejected:
		return ToneDanger
	case ReturnClosed:
		return ToneNeutral
	case ReturnUnknown:
		return ToneUnknown
	}
	return ToneUnknown
}

// IsUnknown reports whether s is not a known return status.
func (s ReturnStatus) IsUnknown() bool { return unknownAt(returnNames, int(s)) }

func (s ReturnStatus) Badge() Badge {
	return Badge{Value: s.String(), Label: s.Label(), Tone: s.Tone()}
}

// Classifiable reports whether an admin can still assign fault.
func (s ReturnStatus) Classifiable() bool {
	return s == ReturnRequested || s == ReturnUnderReview
}

func (s ReturnStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *ReturnStatus) UnmarshalText(data []byte) error {
	*s = ReturnStatus(decode(string(data), returnNames, returnAliases))
	return nil
}

// ReturnFault is the party an admin holds responsible for a return.
type ReturnFault uint8

const (
	FaultUnassigned ReturnFault = iota
	FaultBuyer
	FaultSeller
	FaultCourier
	FaultPlatform
)

var faultNames = []string{"", "buyer", "seller", "courier", "platform"}

var faultAliases = map[string]int{
	"driver":   int(FaultCourier),
	"delivery": int(FaultCourier),
	"supplier": int(FaultSeller),
}

func ParseReturnFault(raw string) ReturnFault {
	return ReturnFault(lookup(raw, faultNames, faultAliases))
}

func ReturnFaults() []ReturnFault {
	return []ReturnFault{FaultBuyer, FaultSeller, FaultCourier, FaultPlatform}
}

func (f ReturnFault) String() string { return nameAt(faultNames, int(f)) }

func (f ReturnFault) Label() string {
	if f == FaultUnassigned {
		return "Unassigned"
	}
	return labelAt(faultNames, int(f))
}

func (f ReturnFault) Tone() Tone {
	switch f {
	case FaultBuyer:
		return ToneInfo
	case FaultSeller, FaultCourier:
		return ToneWarning
	case FaultPlatform:
		return ToneDanger
	case FaultUnassigned:
		return ToneNeutral
	}
	return ToneUnknown
}

// IsUnknown reports whether f is not a known fault. Unassigned counts as known.
func (f ReturnFault) IsUnknown() bool { return f != FaultUnassigned && unknownAt(faultNames, int(f)) }

func (f ReturnFault) Badge() Badge {
	return Badge{Value: f.String(), Label: f.Label(), Tone: f.Tone()}
}

func (f ReturnFault) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *ReturnFault) UnmarshalText(data []byte) error {
	*f = ReturnFault(decode(string(data), faultNames, faultAliases))
	return nil
}
