package flow

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/oidcd/oidcd/internal/account"
	"github.com/oidcd/oidcd/internal/ipc"
	"github.com/oidcd/oidcd/internal/oidcerr"
	"github.com/oidcd/oidcd/internal/tokenresp"
	"github.com/oidcd/oidcd/internal/transport"
)

// deviceCodeGrantType is RFC 8628 §3.4's grant_type value.
const deviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"

// slowDownBump is the poll interval increase RFC 8628 §3.5 requires a
// client apply after receiving a slow_down response.
const slowDownBump = 5 * time.Second

// defaultDeviceInterval is RFC 8628 §3.2's fallback poll interval, used
// when a device-authorization response omits its own interval.
const defaultDeviceInterval = 5 * time.Second

// deviceAuthorizationResponse mirrors RFC 8628 §3.2's device authorization
// response, plus §3.3's error object for the rare case an issuer rejects
// the request outright (e.g. an unsupported scope).
type deviceAuthorizationResponse struct {
	DeviceCode              string      `json:"device_code"`
	UserCode                string      `json:"user_code"`
	VerificationURI         string      `json:"verification_uri"`
	VerificationURIComplete string      `json:"verification_uri_complete"`
	ExpiresIn               json.Number `json:"expires_in"`
	Interval                json.Number `json:"interval"`

	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// RequestDeviceAuthorization starts a device flow (RFC 8628 §3.1) by
// POSTing to a's device_authorization_endpoint, and records the response's
// polling hints — Interval and ExpiresIn — on a.DevicePoll before
// returning. The caller hands the returned ipc.DeviceAuthorization to a
// human via ipc.PromptChannel.DeliverDeviceCode, then drives Device.Run
// with the device_code once the human has acted on it; the core itself
// never polls (spec.md §4.4).
func RequestDeviceAuthorization(ctx context.Context, a *account.Account, client *transport.Client, scopeOverride []string) (string, ipc.DeviceAuthorization, error) {
	if a.Issuer.DeviceAuthorizationEndpoint == "" {
		return "", ipc.DeviceAuthorization{}, oidcerr.Newf(oidcerr.KindFormat, "device flow: account has no device_authorization_endpoint")
	}

	form := url.Values{}
	if scope, ok := scopeParam(a, scopeOverride); ok {
		form.Set("scope", scope)
	}
	auth := clientAuth(a, form)

	body, err := client.PostForm(ctx, a.Issuer.DeviceAuthorizationEndpoint, form.Encode(), a.Issuer.TrustAnchorPath, auth)
	if err != nil {
		terr, ok := err.(*transport.Error)
		if !ok {
			return "", ipc.DeviceAuthorization{}, oidcerr.Wrap(oidcerr.KindTransport, err)
		}
		body = terr.Body
	}

	var raw deviceAuthorizationResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", ipc.DeviceAuthorization{}, oidcerr.Wrap(oidcerr.KindFormat, err)
	}
	if raw.Error != "" {
		return "", ipc.DeviceAuthorization{}, oidcerr.Newf(oidcerr.KindOIDC, "%s", raw.ErrorDescription)
	}
	if raw.DeviceCode == "" || raw.UserCode == "" {
		return "", ipc.DeviceAuthorization{}, oidcerr.Newf(oidcerr.KindFormat, "device authorization response missing device_code or user_code")
	}

	interval := defaultDeviceInterval
	if n, err := strconv.ParseInt(string(raw.Interval), 10, 64); err == nil && n > 0 {
		interval = time.Duration(n) * time.Second
	}
	var expiresIn time.Duration
	if n, err := strconv.ParseInt(string(raw.ExpiresIn), 10, 64); err == nil && n > 0 {
		expiresIn = time.Duration(n) * time.Second
	}

	a.DevicePoll.Interval = interval
	a.DevicePoll.ExpiresIn = expiresIn

	return raw.DeviceCode, ipc.DeviceAuthorization{
		VerificationURI:         raw.VerificationURI,
		VerificationURIComplete: raw.VerificationURIComplete,
		UserCode:                raw.UserCode,
		ExpiresIn:               expiresIn,
	}, nil
}

// Device drives one exchange of the device authorization grant (RFC 8628
// §3.4). It does not poll on its own: a caller drives the loop, calling Run
// again no sooner than a.DevicePoll.Interval after each authorization_pending
// or slow_down result, until Run returns nil or a non-pending error.
type Device struct{}

func (Device) Flow() account.Flow { return account.FlowDevice }

func (Device) Run(ctx context.Context, a *account.Account, client *transport.Client, req Request, now time.Time) error {
	if req.DeviceCode == "" {
		return oidcerr.Newf(oidcerr.KindNoDeviceCode, "device flow: no device code supplied")
	}

	form := url.Values{}
	form.Set("grant_type", deviceCodeGrantType)
	form.Set("device_code", req.DeviceCode)

	return exchange(ctx, a, client, form, mapDeviceError, now)
}

// mapDeviceError reports RFC 8628 §3.5's polling outcomes verbatim so a
// caller driving the poll loop can act on each distinctly, and bumps the
// account's poll interval on slow_down as that section requires.
func mapDeviceError(a *account.Account, oerr *tokenresp.OAuthError) *oidcerr.Error {
	switch oerr.Code {
	case "authorization_pending":
		return oidcerr.Newf(oidcerr.KindAuthorizationPending, "%s", oerr.Description)
	case "slow_down":
		a.DevicePoll.Interval += slowDownBump
		return oidcerr.Newf(oidcerr.KindSlowDown, "%s", oerr.Description)
	case "access_denied":
		return oidcerr.Newf(oidcerr.KindAccessDenied, "%s", oerr.Description)
	case "expired_token":
		return oidcerr.Newf(oidcerr.KindExpiredToken, "%s", oerr.Description)
	default:
		return mapGenericOIDCError(a, oerr)
	}
}
