package status

// ReviewStatus is the moderation state of a product review.
type ReviewStatus uint8

const (
	ReviewUnknown ReviewStatus = iota
	ReviewPending
	ReviewApproved
	ReviewRejected
	ReviewFlagged
)

var reviewNames = []string{"", "pending", "approved", "rejected", "flagged"}

var reviewAliases = map[string]int{
	"published": int(ReviewApproved),
	"hidden":    int(ReviewRejected),
	"reported":  int(ReviewFlagged),
}

func ParseReviewStatus(raw string) ReviewStatus {
	return ReviewStatus(lookup(raw, reviewNames, reviewAliases))
}

func ReviewStatuses() []ReviewStatus {
	return []ReviewStatus{ReviewPending, ReviewApproved, ReviewRejected, ReviewFlagged}
}

func (s ReviewStatus) String() string { return nameAt(reviewNames, int(s)) }
func (s ReviewStatus) Label() string  { return labelAt(reviewNames, int(s)) }

func (s ReviewStatus) Tone() Tone {
	switch s {
	case ReviewPending:
		return ToneWarning
	case ReviewApproved:
		return ToneSuccess
	case ReviewRejected:
		return ToneNeutral
	case ReviewFlagged:
		return ToneDanger
	case ReviewUnknown:
		return ToneUnknown
	}
	return ToneUnknown
}

// IsUnknown reports whether s is not a known review status.
func (s ReviewStatus) IsUnknown() bool { return unknownAt(reviewNames, int(s)) }

func (s ReviewStatus) Badge() Badge {
	return Badge{Value: s.String(), Label: s.Label(), Tone: s.Tone()}
}

func (s ReviewStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *ReviewStatus) UnmarshalText(data []byte) error {
	*s = ReviewStatus(decode(string(data), reviewNames, reviewAliases))
	return nil
}
