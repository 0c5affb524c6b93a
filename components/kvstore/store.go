// Package kvstore persists small per-owner blobs such as settings, supplier
// documents and the seller access token.
package kvstore

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Well known keys.
const (
	KeySettings          = "simbi_settings"
	KeySupplierDocuments = "simbi_supplier_profile_documents"
	KeySellerAccessToken = "sellerAccessToken"
	KeyLayoutPreferences = "dashboard_layout"
)

// Store reads and writes raw values namespaced by owner.
type Store interface {
	Get(ctx context.Context, owner, key string) ([]byte, bool, error)
	Put(ctx context.Context, owner, key string, value []byte) error
	Delete(ctx context.Context, owner, key string) error
}

var (
	errMissingOwner = goerrors.New("kvstore: owner is required", goerrors.CategoryBadInput)
	errMissingKey   = goerrors.New("kvstore: key is required", goerrors.CategoryBadInput)
)

func normalizeKey(owner, key string) (string, string, error) {
	owner = strings.TrimSpace(owner)
	key = strings.TrimSpace(key)
	if owner == "" {
		return "", "", errMissingOwner
	}
	if key == "" {
		return "", "", errMissingKey
	}
	return owner, key, nil
}
