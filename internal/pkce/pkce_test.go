package pkce_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oidcd/oidcd/internal/pkce"
)

func TestNewVerifierLengthAndUniqueness(t *testing.T) {
	v1 := pkce.NewVerifier()
	require.Len(t, v1, 43)

	v2 := pkce.NewVerifier()
	require.NotEqual(t, v1, v2)
}

func TestChallengeS256IsDeterministic(t *testing.T) {
	// From RFC 7636 appendix B.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	require.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", pkce.ChallengeS256(verifier))
}
