package supplier

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-market-dashboard/components/kvstore"
)

// Tokens stores the seller access token per owner.
type Tokens struct {
	store kvstore.Store
}

func NewTokens(store kvstore.Store) *Tokens {
	return &Tokens{store: store}
}

func (t *Tokens) SaveToken(ctx context.Context, owner, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return goerrors.NewValidation("token is required", goerrors.FieldError{Field: "token", Message: "required"})
	}
	if err := t.store.Put(ctx, owner, kvstore.KeySellerAccessToken, []byte(token)); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "save seller token")
	}
	return nil
}

// Token returns the stored token or "" when none is saved.
func (t *Tokens) Token(ctx context.Context, owner string) (string, error) {
	raw, ok, err := t.store.Get(ctx, owner, kvstore.KeySellerAccessToken)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "load seller token")
	}
	if !ok {
		return "", nil
	}
	return string(raw), nil
}

func (t *Tokens) ClearToken(ctx context.Context, owner string) error {
	if err := t.store.Delete(ctx, owner, kvstore.KeySellerAccessToken); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "clear seller token")
	}
	return nil
}
