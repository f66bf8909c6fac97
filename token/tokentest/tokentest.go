// Package tokentest mints gateway tokens for tests. Production code never
// issues tokens; this package exists so verifier and gate tests can build
// realistic fixtures.
package tokentest

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sazzler/api-gateway/token"
)

// Secret is a signing secret long enough to pass config validation
const Secret = "test-signing-secret-0123456789abcdef"

// NewClaims returns claims for subject that expire ttl after now
func NewClaims(subject string, ttl time.Duration, authorities ...string) *token.Claims {
	now := time.Now()
	return &token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Authorities: authorities,
	}
}

// Sign signs claims with HS256 and secret
func Sign(t testing.TB, secret string, claims jwt.Claims) string {
	t.Helper()
	return SignWith(t, jwt.SigningMethodHS256, []byte(secret), claims)
}

// SignWith signs claims with an arbitrary method and key
func SignWith(t testing.TB, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// Unsigned returns a token with alg "none"
func Unsigned(t testing.TB, claims jwt.Claims) string {
	t.Helper()
	return SignWith(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, claims)
}

// Tamper changes the first character of the signature segment. The first
// character always maps to whole signature bits, unlike the last one.
func Tamper(signed string) string {
	i := strings.LastIndex(signed, ".")
	if i < 0 || i == len(signed)-1 {
		return signed
	}
	replacement := byte('A')
	if signed[i+1] == 'A' {
		replacement = 'B'
	}
	return signed[:i+1] + string(replacement) + signed[i+2:]
}
