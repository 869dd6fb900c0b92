// Package orchestrator implements GetAccessToken (spec.md §4.5): the single
// entry point that turns "give me a usable access token for this account"
// into a cache check followed by an in-order attempt across the configured
// flows, stopping at the first success or the first hard failure. It is
// grounded on dex's connector dispatch in server/handlers.go, which tries
// exactly one connector per request; this core generalizes that into a
// fallback chain because an agent, unlike a dex server handling a browser
// redirect, gets to decide for itself which grant to try next.
package orchestrator

import (
	"context"
	"time"

	"github.com/oidcd/oidcd/internal/account"
	"github.com/oidcd/oidcd/internal/flow"
	"github.com/oidcd/oidcd/internal/oidcerr"
	"github.com/oidcd/oidcd/internal/transport"
)

// Options carries the per-call overrides GetAccessToken accepts on top of
// the account's own configuration.
type Options struct {
	// MinValidPeriod is how much longer the cached token must remain valid
	// to be reused as-is; a cached token expiring within this window is
	// treated as absent.
	MinValidPeriod time.Duration
	// ScopeOverride, if non-empty, replaces the account's configured scopes
	// for this call only.
	ScopeOverride []string
	// FlowOrder, if non-empty, replaces the account's configured flow order
	// for this call only.
	FlowOrder account.FlowOrder
	// ForceNewToken skips the cache short-circuit (spec.md §4.5 step 1) even
	// if a cached token would otherwise satisfy MinValidPeriod.
	ForceNewToken bool
	// Request carries the flow-specific external inputs (authorization
	// code, device code, PKCE verifier, redirect URI) a caller already
	// obtained outside of GetAccessToken.
	Request flow.Request
}

// skipPrecedence ranks the reasons a flow can be skipped, lowest value
// wins: once every flow in the order has been tried and none produced a
// token, the reason reported back is the highest-ranked one seen, per
// spec.md §4.5's ECRED > ENOREFRSH precedence. ENOFLOW is the catch-all,
// reported when nothing more specific applied — an empty flow order, or
// Code/Device skipping for want of an external input (KindNoCode /
// KindNoDeviceCode).
var skipPrecedence = map[oidcerr.Kind]int{
	oidcerr.KindCred:      0,
	oidcerr.KindNoRefresh: 1,
}

// skippable reports whether kind is a fallback-eligible skip reason rather
// than a hard failure. KindNoCode and KindNoDeviceCode are included because
// Code and Device report them when the caller simply didn't supply the
// external input that flow needs for this call — a reason to try the next
// flow, not to abort the whole chain. KindFormat is deliberately NOT
// skippable: it means a response the core actually received back from the
// issuer was malformed or missing a required field, which is the issuer
// itself misbehaving (spec.md §7) and must stop the chain exactly like any
// other hard failure — it must never be confused with "no external input
// was supplied for this call" just because both happen to report an
// error. KindRevoked is likewise NOT skippable: per spec.md §4.5 step 4 and
// scenario 3, an issuer-rejected refresh token is a hard failure that stops
// the chain rather than silently escalating to an interactive password
// prompt.
func skippable(kind oidcerr.Kind) bool {
	switch kind {
	case oidcerr.KindNoRefresh, oidcerr.KindCred, oidcerr.KindNoCode, oidcerr.KindNoDeviceCode:
		return true
	default:
		return false
	}
}

// GetAccessToken implements spec.md §4.5. It returns a's access token,
// valid for at least MinValidPeriod, populating it via whichever flow in
// the effective order succeeds first.
func GetAccessToken(ctx context.Context, a *account.Account, client *transport.Client, opts Options, now time.Time) (string, error) {
	if !opts.ForceNewToken && len(opts.ScopeOverride) == 0 && a.Tokens.Present(now.Add(opts.MinValidPeriod)) {
		return a.Tokens.AccessToken, nil
	}

	order := account.EffectiveFlowOrder(opts.FlowOrder, a.FlowOrder)

	best := oidcerr.New(oidcerr.KindNoFlow)
	haveRanked := false
	for _, f := range order {
		driver, ok := flow.Drivers[f]
		if !ok {
			continue
		}

		req := opts.Request
		req.ScopeOverride = a.EffectiveScopes(opts.ScopeOverride)

		err := driver.Run(ctx, a, client, req, now)
		if err == nil {
			return a.Tokens.AccessToken, nil
		}

		oerr, ok := oidcerr.As(err)
		if !ok || !skippable(oerr.Kind) {
			return "", err
		}

		rank, ranked := skipPrecedence[oerr.Kind]
		if ranked && (!haveRanked || rank < skipPrecedence[best.Kind]) {
			best = oerr
			haveRanked = true
		}
	}

	return "", best
}
