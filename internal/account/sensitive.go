package account

import "github.com/oidcd/oidcd/pkg/crypto"

// SensitiveBuffer holds a secret (a password or a refresh token) that must
// never be copied implicitly and must be overwritten before its backing
// array is released. It replaces the opaque C strings the agent this core
// is modeled on used for the same purpose.
//
// SensitiveBuffer is deliberately not comparable with ==, and GoString
// redacts so %#v formatting does not leak its contents; String, by
// contrast, returns the secret itself.
type SensitiveBuffer struct {
	b []byte
}

// NewSensitiveBuffer takes ownership of b; callers must not retain their own
// reference to the slice afterward.
func NewSensitiveBuffer(b []byte) SensitiveBuffer {
	return SensitiveBuffer{b: b}
}

// SensitiveString wraps a string value, copying it into an owned buffer so
// the caller's original string (immutable in Go, and therefore unwipeable)
// is not the only copy outstanding any longer than necessary.
func SensitiveString(s string) SensitiveBuffer {
	return NewSensitiveBuffer([]byte(s))
}

// Present reports whether the buffer currently holds a non-empty secret.
func (s SensitiveBuffer) Present() bool {
	return len(s.b) > 0
}

// String returns the secret as a string. Use sparingly and only to hand the
// value to an immediate consumer (e.g. building a request body); do not
// store the result anywhere that outlives the call.
func (s SensitiveBuffer) String() string {
	return string(s.b)
}

// Equal reports whether the two buffers hold byte-identical contents,
// without allocating an intermediate string.
func (s SensitiveBuffer) Equal(other SensitiveBuffer) bool {
	if len(s.b) != len(other.b) {
		return false
	}
	for i := range s.b {
		if s.b[i] != other.b[i] {
			return false
		}
	}
	return true
}

// Wipe overwrites the backing bytes with a fixed pattern and clears the
// buffer so Present subsequently reports false. It is idempotent.
func (s *SensitiveBuffer) Wipe() {
	crypto.Wipe(s.b)
	s.b = nil
}

// GoString redacts the value so accidental %#v logging of an Account never
// leaks a secret.
func (s SensitiveBuffer) GoString() string {
	if s.Present() {
		return "account.SensitiveBuffer{<redacted>}"
	}
	return "account.SensitiveBuffer{<empty>}"
}
