package discovery_test

import (
	"context"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oidcd/oidcd/internal/account"
	"github.com/oidcd/oidcd/internal/discovery"
	"github.com/oidcd/oidcd/internal/oidcerr"
	"github.com/oidcd/oidcd/internal/transport"
)

func newIssuer(t *testing.T, docFn func(issuer string) string) (*httptest.Server, string, string) {
	t.Helper()
	mux := http.NewServeMux()
	ts := httptest.NewTLSServer(mux)
	mux.HandleFunc(discovery.WellKnownPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, docFn(ts.URL))
	})
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: ts.Certificate().Raw})
	return ts, ts.URL, string(pemBytes)
}

func validDoc(issuer string) string {
	return fmt.Sprintf(`{
		"issuer": %q,
		"authorization_endpoint": %q,
		"token_endpoint": %q,
		"device_authorization_endpoint": %q,
		"scopes_supported": ["openid","profile","email","offline_access"],
		"grant_types_supported": ["authorization_code","refresh_token","password","urn:ietf:params:oauth:grant-type:device_code"]
	}`, issuer, issuer+"/auth", issuer+"/token", issuer+"/device/code")
}

func TestDiscoverPopulatesIssuerMetadata(t *testing.T) {
	ts, issuerURL, ca := newIssuer(t, validDoc)
	defer ts.Close()

	a := account.New(account.Identity{Name: "acct", IssuerURL: issuerURL})
	a.Issuer.TrustAnchorPath = ca

	client := transport.New(5 * time.Second)
	err := discovery.Discover(context.Background(), a, client)
	require.NoError(t, err)
	require.True(t, a.Issuer.Populated())
	require.Equal(t, issuerURL+"/token", a.Issuer.TokenEndpoint)
	require.Equal(t, issuerURL+"/device/code", a.Issuer.DeviceAuthorizationEndpoint)
	require.Equal(t, ca, a.Issuer.TrustAnchorPath)
}

func TestDiscoverIsIdempotent(t *testing.T) {
	ts, issuerURL, ca := newIssuer(t, validDoc)
	defer ts.Close()

	a := account.New(account.Identity{Name: "acct", IssuerURL: issuerURL})
	a.Issuer.TrustAnchorPath = ca
	client := transport.New(5 * time.Second)

	require.NoError(t, discovery.Discover(context.Background(), a, client))
	first := a.Issuer

	require.NoError(t, discovery.Discover(context.Background(), a, client))
	require.Equal(t, first, a.Issuer)
}

func TestDiscoverFailsOnMissingRequiredField(t *testing.T) {
	ts, issuerURL, ca := newIssuer(t, func(issuer string) string {
		return fmt.Sprintf(`{"issuer": %q}`, issuer)
	})
	defer ts.Close()

	a := account.New(account.Identity{Name: "acct", IssuerURL: issuerURL})
	a.Issuer.TrustAnchorPath = ca
	client := transport.New(5 * time.Second)

	err := discovery.Discover(context.Background(), a, client)
	require.Error(t, err)
	require.Equal(t, oidcerr.KindFormat, oidcerr.KindOf(err))
	require.False(t, a.Issuer.Populated())
}

func TestDiscoverFailsOnIssuerMismatch(t *testing.T) {
	ts, issuerURL, ca := newIssuer(t, func(issuer string) string {
		return validDoc("https://other.example")
	})
	defer ts.Close()

	a := account.New(account.Identity{Name: "acct", IssuerURL: issuerURL})
	a.Issuer.TrustAnchorPath = ca
	client := transport.New(5 * time.Second)

	err := discovery.Discover(context.Background(), a, client)
	require.Error(t, err)
	require.Equal(t, oidcerr.KindIssuerMismatch, oidcerr.KindOf(err))
	require.False(t, a.Issuer.Populated())
}

func TestDiscoverToleratesTrailingSlashOnIssuer(t *testing.T) {
	mux := http.NewServeMux()
	ts := httptest.NewTLSServer(mux)
	defer ts.Close()
	mux.HandleFunc(discovery.WellKnownPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, validDoc(ts.URL))
	})
	ca := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: ts.Certificate().Raw}))

	a := account.New(account.Identity{Name: "acct", IssuerURL: ts.URL + "/"})
	a.Issuer.TrustAnchorPath = ca
	client := transport.New(5 * time.Second)

	require.NoError(t, discovery.Discover(context.Background(), a, client))
}

func TestScopesSupportedForReturnsSpaceSeparatedScopes(t *testing.T) {
	ts, issuerURL, ca := newIssuer(t, validDoc)
	defer ts.Close()

	client := transport.New(5 * time.Second)
	scopes, err := discovery.ScopesSupportedFor(context.Background(), issuerURL, ca, client)
	require.NoError(t, err)
	require.Equal(t, "openid profile email offline_access", scopes)
}
