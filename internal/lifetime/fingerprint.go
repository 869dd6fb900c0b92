package lifetime

import "golang.org/x/crypto/bcrypt"

// fingerprintCost is deliberately low: Fingerprint exists only to produce a
// debug-log-safe stand-in for a password, not to protect it, so there is no
// reason to pay bcrypt's normal cost.
const fingerprintCost = 4

// Fingerprint returns a bcrypt hash of password suitable for an operator's
// debug log in place of the password itself. Each call uses a fresh random
// salt, so two fingerprints of the same password differ; comparing the
// strings does not show whether two passwords match. It is never used to
// authenticate anything; the issuer sees the raw password, exactly once,
// inside the password flow driver's request body.
//
// Grounded on dex's cmd/dex/config.go static-password loading, which
// accepts a bcrypt hash directly so dex itself never needs to see the
// plaintext; this inverts that use (hash what would otherwise be logged)
// for the same library.
func Fingerprint(password string) string {
	sum, err := bcrypt.GenerateFromPassword([]byte(password), fingerprintCost)
	if err != nil {
		return ""
	}
	return string(sum)
}
