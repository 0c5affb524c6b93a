package status

// Role is the dashboard surface a user may access.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleSeller
	RoleBuyer
)

var roleNames = []string{"", "admin", "seller", "buyer"}

var roleAliases = map[string]int{
	"administrator": int(RoleAdmin),
	"supplier":      int(RoleSeller),
	"vendor":        int(RoleSeller),
	"customer":      int(RoleBuyer),
}

func ParseRole(raw string) Role {
	return Role(lookup(raw, roleNames, roleAliases))
}

func Roles() []Role {
	return []Role{RoleAdmin, RoleSeller, RoleBuyer}
}

func (r Role) String() string { return nameAt(roleNames, int(r)) }
func (r Role) Label() string  { return labelAt(roleNames, int(r)) }

func (r Role) Tone() Tone {
	switch r {
	case RoleAdmin:
		return ToneDanger
	case RoleSeller:
		return ToneInfo
	case RoleBuyer:
		return ToneNeutral
	case RoleUnknown:
		return ToneUnknown
	}
	return ToneUnknown
}

func (r Role) Badge() Badge {
	return Badge{Value: r.String(), Label: r.Label(), Tone: r.Tone()}
}

func (r Role) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText collapses unrecognised roles to RoleUnknown, which grants
// no surface.
func (r *Role) UnmarshalText(data []byte) error {
	*r = ParseRole(string(data))
	return nil
}
