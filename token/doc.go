// Package token verifies gateway bearer tokens and decodes the identity
// they carry.
//
// Two decoding strategies are provided:
//   - HMACVerifier reads subject and authorities straight from the claims
//   - ReferenceVerifier treats the subject as a reference and resolves the
//     identity through an IdentityLookup
//
// Verification failures are reported as wrapped sentinel errors so callers
// can tell them apart for diagnostics with KindOf.
package token
