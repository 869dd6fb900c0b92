package flow

import (
	"context"
	"net/url"
	"time"

	"github.com/oidcd/oidcd/internal/account"
	"github.com/oidcd/oidcd/internal/oidcerr"
	"github.com/oidcd/oidcd/internal/transport"
)

// Code drives the authorization_code grant (RFC 6749 §4.1.3), extended with
// RFC 7636 PKCE whenever the caller supplies a code_verifier (see
// internal/pkce).
type Code struct{}

func (Code) Flow() account.Flow { return account.FlowCode }

func (Code) Run(ctx context.Context, a *account.Account, client *transport.Client, req Request, now time.Time) error {
	if req.Code == "" {
		return oidcerr.Newf(oidcerr.KindNoCode, "code flow: no authorization code supplied")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", req.Code)
	if req.RedirectURI != "" {
		form.Set("redirect_uri", req.RedirectURI)
	}
	if req.CodeVerifier != "" {
		form.Set("code_verifier", req.CodeVerifier)
	}

	return exchange(ctx, a, client, form, mapGenericOIDCError, now)
}
