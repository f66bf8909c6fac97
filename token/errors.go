package token

import "errors"

var (
	// ErrMalformed is returned when the token cannot be parsed
	ErrMalformed = errors.New("malformed token")

	// ErrInvalidSignature is returned when the token was tampered with or signed with another key
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrExpired is returned when the token is outside its validity window
	ErrExpired = errors.New("token expired")

	// ErrEmptySubject is returned when a verified token carries no usable identity
	ErrEmptySubject = errors.New("token has empty subject")

	// ErrIdentityNotFound is returned when a token references an identity the lookup does not know
	ErrIdentityNotFound = errors.New("identity not found")
)

// Kind is the diagnostic class of a verification failure. It is used for
// logs and metrics only and never reaches the client.
type Kind string

const (
	KindNone             Kind = "none"
	KindMalformed        Kind = "malformed"
	KindInvalidSignature Kind = "invalid_signature"
	KindExpired          Kind = "expired"
	KindEmptySubject     Kind = "empty_subject"
	KindIdentityNotFound Kind = "identity_not_found"
	KindUnknown          Kind = "unknown"
)

// KindOf classifies err against the package sentinels.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrMalformed):
		return KindMalformed
	case errors.Is(err, ErrInvalidSignature):
		return KindInvalidSignature
	case errors.Is(err, ErrExpired):
		return KindExpired
	case errors.Is(err, ErrEmptySubject):
		return KindEmptySubject
	case errors.Is(err, ErrIdentityNotFound):
		return KindIdentityNotFound
	default:
		return KindUnknown
	}
}
