// Package flow implements the four grant-type drivers spec.md §4.4 names:
// Refresh, Password, Code and Device. Each is grounded on the same shape
// dex's connector/oidc.go and connector/oauth.go use to redeem a grant at a
// token endpoint (build a form body, POST it, hand the body to a parser),
// generalized here to work over an Account rather than a storage.Identity,
// and to run any of the four grants instead of only authorization_code.
package flow

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/oidcd/oidcd/internal/account"
	"github.com/oidcd/oidcd/internal/ipc"
	"github.com/oidcd/oidcd/internal/oidcerr"
	"github.com/oidcd/oidcd/internal/tokenresp"
	"github.com/oidcd/oidcd/internal/transport"
)

// Request carries the caller-supplied inputs a flow driver needs beyond
// what the account record already holds: values from outside the core (an
// authorization code just redeemed, a device code from a prior
// authorization request) that no amount of account state can reconstruct,
// plus the PromptChannel a driver may use to ask a human for one of those
// values itself (currently only Password.Run does, for a password whose
// TTL has lapsed).
type Request struct {
	ScopeOverride []string
	Code          string
	RedirectURI   string
	CodeVerifier  string
	DeviceCode    string
	Prompt        ipc.PromptChannel
}

// Driver runs one OAuth grant against a's issuer, updating a's cached
// tokens on success. Every failure is an *oidcerr.Error, so the
// orchestrator can branch on Kind without type-switching on the underlying
// transport or parse error.
type Driver interface {
	Flow() account.Flow
	Run(ctx context.Context, a *account.Account, client *transport.Client, req Request, now time.Time) error
}

// Drivers is every driver in spec.md §4.4's default order, keyed by the
// flow it implements.
var Drivers = map[account.Flow]Driver{
	account.FlowRefresh:  Refresh{},
	account.FlowPassword: Password{},
	account.FlowCode:     Code{},
	account.FlowDevice:   Device{},
}

// errMap turns a tokenresp.OAuthError into the *oidcerr.Error this flow
// reports for it. Each driver supplies its own: the same RFC 6749 error
// code carries different meaning to different grants (invalid_grant means
// "revoked" to the refresh flow and would never occur at all for device).
type errMap func(a *account.Account, oerr *tokenresp.OAuthError) *oidcerr.Error

func mapGenericOIDCError(_ *account.Account, oerr *tokenresp.OAuthError) *oidcerr.Error {
	return oidcerr.Newf(oidcerr.KindOIDC, "%s", oerr.Description)
}

// exchange POSTs form to a's token endpoint with the client authentication
// clientAuth selects, hands whatever body comes back (success or an RFC
// 6749 §5.2 error object alike) to tokenresp.Parse, and translates any
// resulting OAuthError through mapErr.
func exchange(ctx context.Context, a *account.Account, client *transport.Client, form url.Values, mapErr errMap, now time.Time) error {
	auth := clientAuth(a, form)

	body, err := client.PostForm(ctx, a.Issuer.TokenEndpoint, form.Encode(), a.Issuer.TrustAnchorPath, auth)
	if err != nil {
		terr, ok := err.(*transport.Error)
		if !ok {
			return oidcerr.Wrap(oidcerr.KindTransport, err)
		}
		body = terr.Body
	}

	perr := tokenresp.Parse(body, a, now)
	if perr == nil {
		return nil
	}

	var oerr *tokenresp.OAuthError
	if errors.As(perr, &oerr) {
		return mapErr(a, oerr)
	}
	return perr
}

func scopeParam(a *account.Account, scopeOverride []string) (string, bool) {
	scopes := a.EffectiveScopes(scopeOverride)
	if len(scopes) == 0 {
		return "", false
	}
	return strings.Join(scopes, " "), true
}
