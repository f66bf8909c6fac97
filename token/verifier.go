package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates and decodes bearer tokens. Implementations must be
// safe for concurrent use and must not mutate shared state.
type Verifier interface {
	// Validate checks signature and validity window of the token
	Validate(tokenString string) error

	// Decode extracts the identity carried by a token that already passed Validate
	Decode(ctx context.Context, tokenString string) (*ClaimSet, error)
}

// Config holds configuration for HMACVerifier
type Config struct {
	SigningSecret string
	// ExpirationWindow bounds the lifetime of tokens that carry iat but no exp
	ExpirationWindow time.Duration
	// Issuer, when set, must match the iss claim
	Issuer string
	// Leeway tolerates clock skew when checking exp and nbf
	Leeway time.Duration
	// Clock overrides time.Now, mainly for tests
	Clock func() time.Time
}

var validMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// HMACVerifier verifies tokens signed with a shared secret and reads the
// identity straight from the claims.
type HMACVerifier struct {
	secret           []byte
	expirationWindow time.Duration
	leeway           time.Duration
	now              func() time.Time
	parser           *jwt.Parser
}

// NewHMACVerifier creates a verifier for HMAC-signed tokens
func NewHMACVerifier(config Config) (*HMACVerifier, error) {
	if config.SigningSecret == "" {
		return nil, errors.New("signing secret is required")
	}
	if config.ExpirationWindow < 0 {
		return nil, fmt.Errorf("expiration window must not be negative: %s", config.ExpirationWindow)
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(validMethods),
		jwt.WithLeeway(config.Leeway),
		jwt.WithTimeFunc(config.Clock),
	}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}

	return &HMACVerifier{
		secret:           []byte(config.SigningSecret),
		expirationWindow: config.ExpirationWindow,
		leeway:           config.Leeway,
		now:              config.Clock,
		parser:           jwt.NewParser(opts...),
	}, nil
}

// Validate verifies the signature and validity window of the token
func (v *HMACVerifier) Validate(tokenString string) error {
	_, err := v.parse(tokenString)
	return err
}

// Decode verifies the token again and returns its claim set. The subject
// may be empty; rejecting that is up to the caller.
func (v *HMACVerifier) Decode(_ context.Context, tokenString string) (*ClaimSet, error) {
	return v.parse(tokenString)
}

func (v *HMACVerifier) parse(tokenString string) (*ClaimSet, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, v.keyFunc)
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrInvalidSignature
	}

	expiresAt, err := v.expiry(claims)
	if err != nil {
		return nil, err
	}

	return &ClaimSet{
		SubjectID:   claims.Subject,
		Authorities: NewAuthoritySet(claims.Authorities...),
		ExpiresAt:   expiresAt,
	}, nil
}

func (v *HMACVerifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return v.secret, nil
}

// expiry resolves when the token stops being valid. exp wins; otherwise the
// token lives for the expiration window after iat.
func (v *HMACVerifier) expiry(claims *Claims) (time.Time, error) {
	if claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time, nil
	}
	if claims.IssuedAt == nil || v.expirationWindow == 0 {
		return time.Time{}, fmt.Errorf("%w: no exp claim", ErrMalformed)
	}

	expiresAt := claims.IssuedAt.Add(v.expirationWindow)
	if !v.now().Add(-v.leeway).Before(expiresAt) {
		return time.Time{}, fmt.Errorf("%w: issued at %s", ErrExpired, claims.IssuedAt.Time.Format(time.RFC3339))
	}
	return expiresAt, nil
}

// classify maps jwt parser errors onto the package taxonomy
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
