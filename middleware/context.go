package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sazzler/api-gateway/token"
)

// Context key type to avoid collisions
type contextKey string

const (
	// IdentityKey is the context key for the authenticated identity
	IdentityKey contextKey = "identity"
)

// Identity is the security context of one request: who the caller is and
// which authorities they carry. It is never modified once attached.
type Identity struct {
	SubjectID   string
	Authorities token.AuthoritySet
}

// HasAuthority reports whether the identity carries the named authority
func (i *Identity) HasAuthority(name string) bool {
	return i != nil && i.Authorities.Has(name)
}

// WithIdentity attaches identity to ctx unless one is already present.
// The first writer wins: when ctx already carries an identity it is
// returned unchanged together with false.
func WithIdentity(ctx context.Context, identity *Identity) (context.Context, bool) {
	if identity == nil {
		return ctx, false
	}
	if _, ok := IdentityFromContext(ctx); ok {
		return ctx, false
	}
	return context.WithValue(ctx, IdentityKey, identity), true
}

// IdentityFromContext retrieves the authenticated identity from context
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*Identity)
	return identity, ok && identity != nil
}

// IsAuthenticated reports whether an identity was attached to ctx
func IsAuthenticated(ctx context.Context) bool {
	_, ok := IdentityFromContext(ctx)
	return ok
}

// GetRequestIDFromContext retrieves the request ID set by chi's RequestID middleware
func GetRequestIDFromContext(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}
