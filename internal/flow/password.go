package flow

import (
	"context"
	"net/url"
	"time"

	"github.com/oidcd/oidcd/internal/account"
	"github.com/oidcd/oidcd/internal/oidcerr"
	"github.com/oidcd/oidcd/internal/transport"
)

// Password drives the Resource Owner Password Credentials grant (RFC 6749
// §4.3).
type Password struct{}

func (Password) Flow() account.Flow { return account.FlowPassword }

// Run POSTs the password grant once username and a live password are both
// available. A password absent because its TTL lapsed (internal/lifetime)
// is recoverable: if req.Prompt is set, Run asks the human for a fresh one
// over the IPC pipe (spec.md §6, AUTHORIZATION_REQUIRED_WITH_MESSAGE) and
// uses the reply for this exchange only, without storing it back onto the
// account — that decision belongs to whatever surface owns req.Prompt, not
// to this driver.
func (Password) Run(ctx context.Context, a *account.Account, client *transport.Client, req Request, now time.Time) error {
	if a.Credentials.Username == "" {
		return oidcerr.New(oidcerr.KindCred)
	}

	pw, ok := a.Password(now)
	if !ok {
		if req.Prompt == nil {
			return oidcerr.New(oidcerr.KindCred)
		}
		supplied, err := req.Prompt.RequestPassword(ctx, a.Name)
		if err != nil {
			return oidcerr.Wrap(oidcerr.KindCred, err)
		}
		if supplied == "" {
			return oidcerr.New(oidcerr.KindCred)
		}
		pw = account.SensitiveString(supplied)
		defer pw.Wipe()
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", a.Credentials.Username)
	form.Set("password", pw.String())
	if scope, ok := scopeParam(a, req.ScopeOverride); ok {
		form.Set("scope", scope)
	}

	return exchange(ctx, a, client, form, mapGenericOIDCError, now)
}
