// Package transport is the core's HTTP client adapter (spec.md §4.1): it
// issues the GET and POST-form requests every flow driver and discovery
// call needs, and nothing else. It is the only suspension point in the
// core's single-threaded cooperative scheduling model (spec.md §5): a call
// into Get or PostForm blocks the calling goroutine until the bounded
// timeout fires or a response arrives.
package transport

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/oidcd/oidcd/pkg/httpclient"
)

// DefaultTimeout bounds both connection setup and the full request/response
// round trip for every call this package makes, so the core can never stall
// indefinitely on a wedged issuer (spec.md §5, Cancellation).
const DefaultTimeout = 30 * time.Second

// Error is returned for any non-2xx HTTP response. It carries the response
// verbatim so callers (the token response parser, discovery) can extract an
// OAuth error object from the body.
type Error struct {
	Status int
	Body   []byte
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport: unexpected status %d", e.Status)
}

// BasicAuth names a client_id/client_secret pair to send as an
// Authorization: Basic header, per RFC 6749's client_secret_basic scheme.
type BasicAuth struct {
	ClientID     string
	ClientSecret string
}

// Client is the HTTP client adapter. A single Client may be reused across
// accounts; it builds and caches one *http.Client per distinct trust anchor
// path and redirect policy (no redirects, or at most one) it is asked to use.
type Client struct {
	timeout time.Duration

	mu      sync.Mutex
	plain   map[string]*http.Client // trust anchor path -> 0-redirect client
	oneRedir map[string]*http.Client // trust anchor path -> <=1-redirect client
}

// New returns a Client bounding every request to timeout. A zero timeout
// means DefaultTimeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		timeout:  timeout,
		plain:    make(map[string]*http.Client),
		oneRedir: make(map[string]*http.Client),
	}
}

func (c *Client) clientFor(trustAnchor string, maxRedirects int) (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cache := c.plain
	if maxRedirects > 0 {
		cache = c.oneRedir
	}
	if cl, ok := cache[trustAnchor]; ok {
		return cl, nil
	}

	cl, err := httpclient.New(trustAnchor, c.timeout)
	if err != nil {
		return nil, errors.Wrap(err, "transport: building http client")
	}
	if maxRedirects > 0 {
		cl = httpclient.WithMaxRedirects(cl, maxRedirects)
	}
	cache[trustAnchor] = cl
	return cl, nil
}

func requireHTTPS(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return errors.Wrapf(err, "transport: parsing url %q", rawURL)
	}
	if u.Scheme != "https" {
		return fmt.Errorf("transport: refusing non-https url %q", rawURL)
	}
	return nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}

// Get issues an unauthenticated HTTPS GET, following at most one redirect,
// as spec.md §4.1 allows for OIDC discovery. It returns the response body
// on 2xx, or an *Error on any other status.
func (c *Client) Get(ctx context.Context, rawURL, trustAnchor string) ([]byte, error) {
	if err := requireHTTPS(rawURL); err != nil {
		return nil, err
	}

	client, err := c.clientFor(trustAnchor, 1)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "transport: building GET request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "transport: GET failed")
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, errors.Wrap(err, "transport: reading response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Status: resp.StatusCode, Body: body}
	}
	return body, nil
}

// PostForm issues an authenticated or unauthenticated HTTPS POST of an
// already-encoded application/x-www-form-urlencoded body, following no
// redirects, as required for token-endpoint requests. It returns the
// response body on 2xx, or an *Error on any other status.
func (c *Client) PostForm(ctx context.Context, rawURL, body, trustAnchor string, auth *BasicAuth) ([]byte, error) {
	if err := requireHTTPS(rawURL); err != nil {
		return nil, err
	}

	client, err := c.clientFor(trustAnchor, 0)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "transport: building POST request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if auth != nil {
		req.Header.Set("Authorization", "Basic "+basicAuthValue(auth.ClientID, auth.ClientSecret))
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "transport: POST failed")
	}
	respBody, err := readBody(resp)
	if err != nil {
		return nil, errors.Wrap(err, "transport: reading response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Status: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}

func basicAuthValue(clientID, clientSecret string) string {
	raw := url.QueryEscape(clientID) + ":" + url.QueryEscape(clientSecret)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}
