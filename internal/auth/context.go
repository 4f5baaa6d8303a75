// Package auth resolves bearer tokens to owner identities and carries the
// resolved owner through request contexts. Every storage operation requires
// an owner; requests without one fail closed.
package auth

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned when no owner identity is present or the
// presented token does not resolve to one.
var ErrUnauthorized = errors.New("unauthorized")

type contextKey string

const ownerKey contextKey = "owner_id"

// WithOwner returns a context carrying the resolved owner identity.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey, ownerID)
}

// OwnerFromContext extracts the owner identity set by WithOwner.
func OwnerFromContext(ctx context.Context) (string, error) {
	ownerID, ok := ctx.Value(ownerKey).(string)
	if !ok || ownerID == "" {
		return "", ErrUnauthorized
	}
	return ownerID, nil
}
