// Package auth verifies the bearer tokens API clients present and mints
// tokens for local use.
package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/panels"
	"github.com/goliatone/go-market-dashboard/components/status"
)

const signingMethod = "HS256"

// Claims carries the dashboard role next to the registered claims. The
// subject is the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier checks HMAC signed tokens issued for the dashboard.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewVerifier returns a verifier for secret. An empty issuer accepts any.
func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: strings.TrimSpace(issuer), now: time.Now}
}

// WithClock overrides the time source used for expiry checks.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	if now != nil {
		v.now = now
	}
	return v
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

// Verify parses token and resolves the viewer it names.
func (v *Verifier) Verify(token string) (panels.Viewer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return panels.Viewer{}, goerrors.New("missing bearer token", goerrors.CategoryAuth)
	}
	if !v.Enabled() {
		return panels.Viewer{}, goerrors.New("token verification is not configured", goerrors.CategoryAuth)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingMethod}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return panels.Viewer{}, mapJWTError(err)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return panels.Viewer{}, goerrors.New("token subject is required", goerrors.CategoryAuth)
	}
	role := status.ParseRole(claims.Role)
	if role == status.RoleUnknown {
		return panels.Viewer{}, goerrors.New("token role is not recognised", goerrors.CategoryAuth).
			WithMetadata(map[string]any{"role": claims.Role})
	}
	return panels.Viewer{UserID: subject, Role: role}, nil
}

// Issue signs a token for viewer valid for ttl from the current clock.
func (v *Verifier) Issue(viewer panels.Viewer, ttl time.Duration) (string, error) {
	if !v.Enabled() {
		return "", goerrors.New("token signing is not configured", goerrors.CategoryInternal)
	}
	if strings.TrimSpace(viewer.UserID) == "" || viewer.Role == status.RoleUnknown {
		return "", goerrors.NewValidation("invalid token subject",
			goerrors.FieldError{Field: "viewer", Message: "user id and role are required"})
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := v.now()
	claims := Claims{
		Role: viewer.Role.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   viewer.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return goerrors.Wrap(err, goerrors.CategoryAuth, "token is expired")
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return goerrors.Wrap(err, goerrors.CategoryAuth, "token is not active yet")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return goerrors.Wrap(err, goerrors.CategoryAuth, "token signature is invalid")
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return goerrors.Wrap(err, goerrors.CategoryAuth, "token issuer mismatch")
	default:
		return goerrors.Wrap(err, goerrors.CategoryAuth, "token is invalid")
	}
}

// Demo resolves fixed tokens to fixture users. It backs local runs against
// the mock backend when no signing secret is configured.
type Demo map[string]panels.Viewer

// DemoViewers maps the role names to the users of the demo fixtures.
func DemoViewers() Demo {
	return Demo{
		"admin":  {UserID: "adm-1", Role: status.RoleAdmin},
		"seller": {UserID: "sel-100", Role: status.RoleSeller},
		"buyer":  {UserID: "buy-200", Role: status.RoleBuyer},
	}
}

// Verify looks the token up verbatim.
func (d Demo) Verify(token string) (panels.Viewer, error) {
	viewer, ok := d[strings.TrimSpace(token)]
	if !ok {
		return panels.Viewer{}, goerrors.New("unknown demo token", goerrors.CategoryAuth)
	}
	return viewer, nil
}

// ForRole returns the demo user of role.
func (d Demo) ForRole(role status.Role) (panels.Viewer, bool) {
	viewer, ok := d[role.String()]
	return viewer, ok
}
