package status

// DriverStatus is the availability of a delivery driver.
type DriverStatus uint8

const (
	DriverUnknown DriverStatus = iota
	DriverActive
	DriverOnDelivery
	DriverInactive
	DriverSuspended
)

var driverNames = []string{"", "active", "on_delivery", "inactive", "suspended"}

var driverAliases = map[string]int{
	"available": int(DriverActive),
	"busy":      int(DriverOnDelivery),
	"offline":   int(DriverInactive),
	"blocked":   int(DriverSuspended),
}

func ParseDriverStatus(raw string) DriverStatus {
	return DriverStatus(lookup(raw, driverNames, driverAliases))
}

func DriverStatuses() []DriverStatus {
	return []DriverStatus{DriverActive, DriverOnDelivery, DriverInactive, DriverSuspended}
}

func (s DriverStatus) String() string { return nameAt(driverNames, int(s)) }
func (s DriverStatus) Label() string  { return labelAt(driverNames, int(s)) }

func (s DriverStatus) Tone() Tone {
	switch s {
	case DriverActive:
		return ToneSuccess
	case DriverOnDelivery:
		return ToneInfo
	case DriverInactive:
		return ToneNeutral
	case DriverSuspended:
		return ToneDanger
	case DriverUnknown:
		return ToneUnknown
	}
	return ToneUnknown
}

// IsUnknown reports whether s is not a known driver status.
func (s DriverStatus) IsUnknown() bool { return unknownAt(driverNames, int(s)) }

func (s DriverStatus) Badge() Badge {
	return Badge{Value: s.String(), Label: s.Label(), Tone: s.Tone()}
}

func (s DriverStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *DriverStatus) UnmarshalText(data []byte) error {
	*s = DriverStatus(decode(string(data), driverNames, driverAliases))
	return nil
}
