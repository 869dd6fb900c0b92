// Package httpclient builds *http.Client values with an explicit TLS trust
// anchor, the way dex's connectors build one per upstream issuer.
package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"
)

// extractCA loads a single trust anchor. It accepts a path to a PEM file, a
// base64-encoded PEM blob, or a raw PEM string, in that order, mirroring how
// operators tend to hand these values to agents via config or environment.
func extractCA(trustAnchor string) ([]byte, error) {
	if trustAnchor == "" {
		return nil, nil
	}

	pemData, err := os.ReadFile(trustAnchor)
	if err == nil {
		return pemData, nil
	}

	if decoded, derr := base64.StdEncoding.DecodeString(trustAnchor); derr == nil {
		return decoded, nil
	}

	return []byte(trustAnchor), nil
}

// New builds an *http.Client that trusts the system root pool plus, if
// trustAnchor is non-empty, the additional CA it names. The returned client
// applies connTimeout as both dial and end-to-end request timeout and never
// follows redirects; callers that need a bounded number of redirects (OIDC
// discovery) should use WithMaxRedirects.
func New(trustAnchor string, connTimeout time.Duration) (*http.Client, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}

	pemData, err := extractCA(trustAnchor)
	if err != nil {
		return nil, err
	}
	if pemData != nil {
		if !pool.AppendCertsFromPEM(pemData) {
			return nil, fmt.Errorf("trust anchor is not in PEM format: must be a path to, "+
				"a base64 encoding of, or the literal contents of a PEM encoded certificate: %q", trustAnchor)
		}
	}

	tlsConfig := &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}

	client := &http.Client{
		Timeout: connTimeout,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
			Proxy:           http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return client, nil
}

// WithMaxRedirects returns a shallow copy of client configured to follow at
// most n redirects before giving up, for the one caller (discovery) that the
// core's HTTP adapter allows to follow any.
func WithMaxRedirects(client *http.Client, n int) *http.Client {
	clone := *client
	clone.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) > n {
			return http.ErrUseLastResponse
		}
		return nil
	}
	return &clone
}
