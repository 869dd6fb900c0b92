package flow

import (
	"net/url"
	"strings"

	"github.com/oidcd/oidcd/internal/account"
	"github.com/oidcd/oidcd/internal/transport"
)

// brokenAuthHeaderDomains lists issuers known to reject a well-formed
// Authorization: Basic header on the token endpoint, adapted from dex's
// connector/oidc.go knownBrokenAuthHeaderProvider list. golang.org/x/oauth2
// keeps an equivalent internal list that only matches specific URLs; this
// one matches whole top-level domains so an operator need not special-case
// every regional endpoint of a known-broken provider.
var brokenAuthHeaderDomains = []string{
	"okta.com",
	"oktapreview.com",
}

func knownBrokenAuthHeaderProvider(issuerURL string) bool {
	u, err := url.Parse(issuerURL)
	if err != nil {
		return false
	}
	for _, host := range brokenAuthHeaderDomains {
		if u.Host == host || strings.HasSuffix(u.Host, "."+host) {
			return true
		}
	}
	return false
}

// clientAuth picks the §6 client-authentication scheme for a's token
// endpoint requests: client_secret_basic by default, none for public
// clients (empty ClientSecret), and client_secret_post — carried as form
// parameters instead of a Basic header — for issuers known not to support
// the header.
func clientAuth(a *account.Account, form url.Values) *transport.BasicAuth {
	if a.ClientSecret == "" {
		if a.ClientID != "" {
			form.Set("client_id", a.ClientID)
		}
		return nil
	}

	if knownBrokenAuthHeaderProvider(a.IssuerURL) {
		form.Set("client_id", a.ClientID)
		form.Set("client_secret", a.ClientSecret)
		return nil
	}

	return &transport.BasicAuth{ClientID: a.ClientID, ClientSecret: a.ClientSecret}
}
