// Package oidcerr defines the stable error taxonomy the core uses to report
// outcomes to its callers, replacing the process-wide oidc_errno of the
// source this agent was modeled on with an explicit result type.
package oidcerr

import (
	"errors"
	"fmt"
)

// Kind is a stable identifier for one of the outcomes in the taxonomy. The
// zero value, KindSuccess, is never returned as part of a non-nil error.
type Kind int

const (
	// KindSuccess is never wrapped in an *Error; it exists so callers can
	// compare a returned Kind against it without a special case.
	KindSuccess Kind = iota
	// KindNoRefresh means the account has no refresh token to use.
	KindNoRefresh
	// KindCred means username/password are not both present for the
	// password flow.
	KindCred
	// KindRevoked means the issuer rejected a refresh token (invalid_grant).
	KindRevoked
	// KindOIDC means the issuer returned a structured OAuth error that does
	// not map to any of the more specific kinds below.
	KindOIDC
	// KindFormat means a response was malformed JSON or missing a required
	// field.
	KindFormat
	// KindIssuerMismatch means discovery's issuer document did not match the
	// account's configured issuer URL.
	KindIssuerMismatch
	// KindTransport means a network or TLS failure occurred before an HTTP
	// response was available, or that discovery got a non-2xx status back.
	KindTransport
	// KindNoFlow means every flow in the configured order was skipped.
	KindNoFlow
	// KindNoCode means the code flow was reached with no authorization code
	// supplied alongside the request — a skip reason, not a malformed
	// response, so it must never share a Kind with KindFormat.
	KindNoCode
	// KindNoDeviceCode means the device flow was reached with no
	// device_code supplied alongside the request — same distinction as
	// KindNoCode.
	KindNoDeviceCode
	// KindAuthorizationPending, KindSlowDown, KindAccessDenied and
	// KindExpiredToken are the RFC 8628 device-flow polling outcomes,
	// reported verbatim so a caller driving the poll loop can act on them.
	KindAuthorizationPending
	KindSlowDown
	KindAccessDenied
	KindExpiredToken
)

var names = map[Kind]string{
	KindSuccess:              "OIDC_SUCCESS",
	KindNoRefresh:            "OIDC_ENOREFRSH",
	KindCred:                 "OIDC_ECRED",
	KindRevoked:              "OIDC_EREVOKED",
	KindOIDC:                 "OIDC_EOIDC",
	KindFormat:               "OIDC_EFMT",
	KindIssuerMismatch:       "OIDC_EISSUER",
	KindTransport:            "OIDC_ESSL",
	KindNoFlow:               "OIDC_ENOFLOW",
	KindNoCode:               "OIDC_ENOCODE",
	KindNoDeviceCode:         "OIDC_ENODEVICECODE",
	KindAuthorizationPending: "authorization_pending",
	KindSlowDown:             "slow_down",
	KindAccessDenied:         "access_denied",
	KindExpiredToken:         "expired_token",
}

// String implements fmt.Stringer, returning the stable identifier name.
func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("OIDC_EUNKNOWN(%d)", int(k))
}

// Error is the error type every fallible core operation returns. It carries
// the stable Kind plus, when the issuer supplied one, its error_description
// so the original wording reaches the caller unmodified.
type Error struct {
	Kind        Kind
	Description string
	// Cause, when set, is the lower-level error (transport failure, JSON
	// decode error) that produced this one.
	Cause error
}

// New builds an *Error with no issuer-supplied description.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Newf builds an *Error with a description built from a format string.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Description: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error that carries cause as its underlying reason.
func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

func (e *Error) Error() string {
	if e.Description == "" && e.Cause == nil {
		return e.Kind.String()
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Description)
}

// Unwrap lets errors.Is/errors.As see through to Cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// As reports whether err is, or wraps, an *Error and returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind carried by err if it is (or wraps) an *Error, or
// KindSuccess otherwise. It is a convenience for call sites that only need
// to branch on the kind.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindSuccess
}
