package flow

import (
	"context"
	"net/url"
	"time"

	"github.com/oidcd/oidcd/internal/account"
	"github.com/oidcd/oidcd/internal/oidcerr"
	"github.com/oidcd/oidcd/internal/tokenresp"
	"github.com/oidcd/oidcd/internal/transport"
)

// Refresh drives the refresh_token grant (RFC 6749 §6).
type Refresh struct{}

func (Refresh) Flow() account.Flow { return account.FlowRefresh }

func (Refresh) Run(ctx context.Context, a *account.Account, client *transport.Client, req Request, now time.Time) error {
	if !a.HasRefreshToken() {
		return oidcerr.New(oidcerr.KindNoRefresh)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", a.Tokens.RefreshToken.String())
	if scope, ok := scopeParam(a, req.ScopeOverride); ok {
		form.Set("scope", scope)
	}

	return exchange(ctx, a, client, form, mapRefreshError, now)
}

// mapRefreshError distinguishes a revoked refresh token (invalid_grant,
// RFC 6749 §5.2) from any other issuer error: revocation additionally
// clears the now-useless refresh token so the next attempt skips this flow
// with ENOREFRSH instead of repeating the same failed exchange.
func mapRefreshError(a *account.Account, oerr *tokenresp.OAuthError) *oidcerr.Error {
	if oerr.Code == "invalid_grant" {
		a.Tokens.RefreshToken.Wipe()
		return oidcerr.Newf(oidcerr.KindRevoked, "%s", oerr.Description)
	}
	return mapGenericOIDCError(a, oerr)
}
