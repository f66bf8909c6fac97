package token

import (
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the claims carried in a gateway bearer token.
// The subject is either the caller's id or, for reference tokens, the key
// used to look the identity up.
type Claims struct {
	jwt.RegisteredClaims
	Authorities []string `json:"authorities,omitempty"`
}

// AuthoritySet is an unordered set of granted authorities
type AuthoritySet map[string]struct{}

// NewAuthoritySet builds a set from the given names, dropping blanks and duplicates
func NewAuthoritySet(names ...string) AuthoritySet {
	set := make(AuthoritySet, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the authority
func (s AuthoritySet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of authorities
func (s AuthoritySet) Len() int {
	return len(s)
}

// Slice returns the authorities sorted by name
func (s AuthoritySet) Slice() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold exactly the same authorities
func (s AuthoritySet) Equal(other AuthoritySet) bool {
	if len(s) != len(other) {
		return false
	}
	for name := range s {
		if !other.Has(name) {
			return false
		}
	}
	return true
}

// ClaimSet is the decoded identity of a verified token
type ClaimSet struct {
	SubjectID   string
	Authorities AuthoritySet
	ExpiresAt   time.Time
}

// Expired reports whether the claim set is no longer usable at now
func (c *ClaimSet) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Identity is what an IdentityLookup resolves a token reference to
type Identity struct {
	SubjectID   string
	Authorities []string
}
