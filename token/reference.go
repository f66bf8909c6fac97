package token

import (
	"context"
	"errors"
	"fmt"
)

// IdentityLookup resolves an identity reference carried in a token.
// Implementations return ErrIdentityNotFound when the reference is unknown.
type IdentityLookup interface {
	LookupIdentity(ctx context.Context, reference string) (*Identity, error)
}

// ReferenceVerifier verifies tokens whose subject is a reference to an
// identity held elsewhere. Signature and expiry checks are delegated to the
// wrapped HMACVerifier; subject and authorities come from the lookup.
type ReferenceVerifier struct {
	base   *HMACVerifier
	lookup IdentityLookup
}

// NewReferenceVerifier creates a verifier that resolves identities through lookup
func NewReferenceVerifier(base *HMACVerifier, lookup IdentityLookup) (*ReferenceVerifier, error) {
	if base == nil {
		return nil, errors.New("base verifier is required")
	}
	if lookup == nil {
		return nil, errors.New("identity lookup is required")
	}
	return &ReferenceVerifier{base: base, lookup: lookup}, nil
}

// Validate verifies the signature and validity window of the token
func (v *ReferenceVerifier) Validate(tokenString string) error {
	return v.base.Validate(tokenString)
}

// Decode resolves the token's reference into the stored identity
func (v *ReferenceVerifier) Decode(ctx context.Context, tokenString string) (*ClaimSet, error) {
	claims, err := v.base.Decode(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if claims.SubjectID == "" {
		return nil, ErrEmptySubject
	}

	identity, err := v.lookup.LookupIdentity(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}
	if identity == nil {
		return nil, fmt.Errorf("%w: %s", ErrIdentityNotFound, claims.SubjectID)
	}

	return &ClaimSet{
		SubjectID:   identity.SubjectID,
		Authorities: NewAuthoritySet(identity.Authorities...),
		ExpiresAt:   claims.ExpiresAt,
	}, nil
}
