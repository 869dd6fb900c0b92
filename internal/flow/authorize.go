package flow

import (
	"golang.org/x/oauth2"

	"github.com/oidcd/oidcd/internal/account"
	"github.com/oidcd/oidcd/internal/oidcerr"
)

// AuthorizationURL builds the URL a human must visit to start the
// authorization_code grant (RFC 6749 §4.1.1), extended with RFC 7636 PKCE's
// code_challenge/code_challenge_method parameters (see internal/pkce for
// generating codeChallenge from a verifier). It is grounded on dex's
// connector/oidc.go LoginURL, which builds the same URL via
// oauth2.Config.AuthCodeURL plus oauth2.SetAuthURLParam for provider-
// specific extras (there, "hd"; here, the PKCE challenge); a's issuer
// metadata already supplies everything oauth2.Endpoint needs, so this
// borrows the helper directly rather than assembling query parameters by
// hand.
//
// The core itself never calls this: it is invoked by the external surface
// that delivers the resulting URL to a human (cmd/oidcd's authorize
// command) before a code is ever handed to Code.Run.
func AuthorizationURL(a *account.Account, redirectURI, state, codeChallenge string, scopeOverride []string) (string, error) {
	if a.Issuer.AuthorizationEndpoint == "" {
		return "", oidcerr.Newf(oidcerr.KindFormat, "authorize: account has no authorization_endpoint")
	}
	if redirectURI == "" {
		return "", oidcerr.Newf(oidcerr.KindFormat, "authorize: redirect_uri is required")
	}

	cfg := oauth2.Config{
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       a.EffectiveScopes(scopeOverride),
		Endpoint: oauth2.Endpoint{
			AuthURL:  a.Issuer.AuthorizationEndpoint,
			TokenURL: a.Issuer.TokenEndpoint,
		},
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
	}
	return cfg.AuthCodeURL(state, opts...), nil
}
