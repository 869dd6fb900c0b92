// Package pkce implements RFC 7636 Proof Key for Code Exchange, the
// authorization-code flow extension spec.md names (§4.4, code_verifier) but
// a distilled ~360-line source would not have room to show. It delegates to
// golang.org/x/oauth2's verifier/challenge helpers directly (the same
// package dex's connector/oidc.go and connector/oauth.go import for their
// own authorization-code exchanges) so the core hands the IPC layer a
// verifier generated the same way whichever oauth2.Config a caller
// eventually uses to redeem it would generate one.
package pkce

import (
	"golang.org/x/oauth2"
)

// NewVerifier generates a fresh, randomly-seeded code_verifier per RFC
// 7636 §4.1.
func NewVerifier() string {
	return oauth2.GenerateVerifier()
}

// ChallengeS256 derives the S256 code_challenge for a verifier, per RFC 7636
// §4.2: BASE64URL-ENCODE(SHA256(ASCII(code_verifier))).
func ChallengeS256(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}
