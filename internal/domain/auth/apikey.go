// Package auth holds the API key model used to guard order mutation routes.
package auth

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrUnknownKey is returned when no active API key matches the given hash.
var ErrUnknownKey = errors.New("unknown API key")

// Scopes recognised by the order API.
const (
	ScopeManageOrders = "manage_orders"
)

// APIKeyInfo holds the identity and permission data for a validated API key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// HasScope reports whether the key grants the given scope.
func (k *APIKeyInfo) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
