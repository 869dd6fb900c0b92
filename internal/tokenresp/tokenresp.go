// Package tokenresp implements the core's token response parser (spec.md
// §4.3): decoding an issuer's JSON token endpoint response into an account
// mutation, or into a typed OAuth error every flow driver can interpret in
// its own context (the same invalid_grant code means "revoked" to the
// refresh flow but would never appear for the device flow at all).
//
// It is grounded on the {AccessToken, RefreshToken, Expiry} connectorData
// dex's OIDC and OAuth connectors attach to an identity after
// oauth2Config.Exchange, generalized to cover expires_in, scope and
// id_token as well, and to recognize RFC 6749 §5.2's error object.
package tokenresp

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/oidcd/oidcd/internal/account"
	"github.com/oidcd/oidcd/internal/oidcerr"
)

// raw is the wire shape of a token endpoint response, covering both the
// success and RFC 6749 §5.2 error cases; exactly one of AccessToken and
// Error is populated in a conformant response.
type raw struct {
	AccessToken  string      `json:"access_token"`
	TokenType    string      `json:"token_type"`
	ExpiresIn    json.Number `json:"expires_in"`
	RefreshToken string      `json:"refresh_token"`
	Scope        string      `json:"scope"`
	IDToken      string      `json:"id_token"`

	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	ErrorURI         string `json:"error_uri"`
}

// OAuthError is returned by Parse when the response carries RFC 6749 §5.2's
// error object. Callers (the flow drivers) inspect Code to decide how to
// map it into the §7 taxonomy, since the same code means different things
// to different flows.
type OAuthError struct {
	Code        string
	Description string
	URI         string
}

func (e *OAuthError) Error() string {
	if e.Description == "" {
		return "oauth2: " + e.Code
	}
	return "oauth2: " + e.Code + ": " + e.Description
}

// Parse decodes body and, on success, mutates a's cached tokens per spec.md
// §4.3's rules. It never mutates a on any error path. now is the wall clock
// time expires_in is measured from.
func Parse(body []byte, a *account.Account, now time.Time) error {
	var r raw
	if err := json.Unmarshal(body, &r); err != nil {
		return oidcerr.Wrap(oidcerr.KindFormat, err)
	}

	if r.Error != "" {
		return &OAuthError{Code: r.Error, Description: r.ErrorDescription, URI: r.ErrorURI}
	}

	if r.AccessToken == "" {
		return oidcerr.Newf(oidcerr.KindFormat, "token response has neither access_token nor error")
	}

	expiresAt := time.Time{} // unknown expiry; Present() always reports false for a zero time
	if r.ExpiresIn != "" {
		if n, err := strconv.ParseInt(string(r.ExpiresIn), 10, 64); err == nil && n > 0 {
			expiresAt = now.Add(time.Duration(n) * time.Second)
		}
	}

	a.Tokens.AccessToken = r.AccessToken
	a.Tokens.ExpiresAt = expiresAt
	if r.TokenType != "" {
		a.Tokens.TokenType = r.TokenType
	}

	// Refresh-token rotation is opt-in by the server: retain the previous
	// token when the response omits one, rather than treating omission as
	// revocation.
	if r.RefreshToken != "" {
		a.Tokens.RefreshToken.Wipe()
		a.Tokens.RefreshToken = account.SensitiveString(r.RefreshToken)
	}

	if r.Scope != "" {
		a.Tokens.GrantedScope = strings.Fields(r.Scope)
	}

	if r.IDToken != "" {
		a.Tokens.IDToken = r.IDToken
	}

	return nil
}

// Serialized is the round-trip projection of an account's cached fields
// spec.md §8 describes: the fields a JSON token response could plausibly
// set, read back out.
type Serialized struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ExpiresAt    int64  `json:"expires_at"`
}

// Serialize projects a's currently cached token fields into a JSON object
// with access_token, refresh_token, scope and an absolute expires_at (Unix
// seconds, 0 when unknown), for the round-trip property in spec.md §8.
// Parse reads expires_in, not expires_at, so the output is not fed back
// into Parse as is.
func Serialize(a *account.Account) ([]byte, error) {
	var expiresAt int64
	if !a.Tokens.ExpiresAt.IsZero() {
		expiresAt = a.Tokens.ExpiresAt.Unix()
	}
	return json.Marshal(Serialized{
		AccessToken:  a.Tokens.AccessToken,
		RefreshToken: a.Tokens.RefreshToken.String(),
		Scope:        strings.Join(a.Tokens.GrantedScope, " "),
		ExpiresAt:    expiresAt,
	})
}
