package status

// LoanStatus tracks a seller financing application.
type LoanStatus uint8

const (
	LoanUnknown LoanStatus = iota
	LoanPending
	LoanUnderReview
	LoanApproved
	LoanRejected
	LoanDisbursed
	LoanRepaid
)

var loanNames = []string{"", "pending", "under_review", "approved", "rejected", "disbursed", "repaid"}

var loanAliases = map[string]int{
	"submitted": int(LoanPending),
	"declined":  int(LoanRejected),
	"funded":    int(LoanDisbursed),
	"closed":    int(LoanRepaid),
}

func ParseLoanStatus(raw string) LoanStatus {
	return LoanStatus(lookup(raw, loanNames, loanAliases))
}

func LoanStatuses() []LoanStatus {
	return []LoanStatus{LoanPending, LoanUnderReview, LoanApproved, LoanRejected, LoanDisbursed, LoanRepaid}
}

func (s LoanStatus) String() string { return nameAt(loanNames, int(s)) }
func (s LoanStatus) Label() string  { return labelAt(loanNames, int(s)) }

func (s LoanStatus) Tone() Tone {
	switch s {
	case LoanPending:
		return ToneWarning
	case LoanUnderReview:
		return ToneInfo
	case LoanApproved, LoanDisbursed:
		return ToneSuccess
	case LoanRejected:
		return ToneDanger
	case LoanRepaid:
		return ToneNeutral
	case LoanUnknown:
		return ToneUnknown
	}
	return ToneUnknown
}

// IsUnknown reports whether s is not a known loan status.
func (s LoanStatus) IsUnknown() bool { return unknownAt(loanNames, int(s)) }

func (s LoanStatus) Badge() Badge {
	return Badge{Value: s.String(), Label: s.Label(), Tone: s.Tone()}
}

func (s LoanStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *LoanStatus) UnmarshalText(data []byte) error {
	*s = LoanStatus(decode(string(data), loanNames, loanAliases))
	return nil
}
