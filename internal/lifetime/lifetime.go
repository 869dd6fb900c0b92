// Package lifetime implements the credential lifetime controller spec.md
// §3 describes: enforcing an account's Death and PasswordDeath TTLs, and
// giving external callers (the loader, a scheduled sweep) the handful of
// operations that advance or reset them. It is grounded on dex's
// storage/memory garbage collection pass (storage/memory/memory.go's
// GarbageCollect), generalized from "delete expired auth requests/codes" to
// "evict or partially wipe an expired account".
package lifetime

import (
	"time"

	"github.com/oidcd/oidcd/internal/account"
)

// Registry is the loaded set of accounts the controller sweeps. It is
// intentionally minimal: just enough for Sweep to enumerate and remove
// entries, independent of whatever storage backend actually owns the set.
type Registry interface {
	Accounts() []*account.Account
	Remove(name string)
}

// Sweep applies spec.md §3's two TTLs to every account in r as of now: an
// account whose Death has passed is wiped and removed entirely; one whose
// PasswordDeath has passed (but is still alive) has only its password
// wiped and stays loaded; a password read via Account.Password after its
// TTL already wipes itself lazily, so Sweep's password pass matters only
// for passwords nobody has read since expiring.
func Sweep(r Registry, now time.Time) {
	for _, a := range r.Accounts() {
		if a.Dead(now) {
			a.Wipe()
			r.Remove(a.Name)
			continue
		}
		ClearExpiredPassword(a, now)
	}
}

// ClearExpiredPassword wipes a's password if its TTL has passed, leaving
// the rest of the account untouched. It is a direct call to
// Account.Password for its side effect; exported separately so a caller
// sweeping many accounts can run it without also wanting the Death check.
func ClearExpiredPassword(a *account.Account, now time.Time) {
	a.Password(now)
}

// TouchPassword (re)sets a's stored password and, if ttl is positive,
// schedules its wipe at now+ttl. A zero or negative ttl stores the
// password with no expiry (PasswordDeath stays zero, meaning "forever").
func TouchPassword(a *account.Account, password string, ttl time.Duration, now time.Time) {
	a.Credentials.Password.Wipe()
	a.Credentials.Password = account.SensitiveString(password)
	a.Lifetime.HasPassword = true
	if ttl > 0 {
		a.Lifetime.PasswordDeath = now.Add(ttl)
	} else {
		a.Lifetime.PasswordDeath = time.Time{}
	}
}

// ClearPassword wipes a's stored password immediately, regardless of its
// TTL, leaving the account itself loaded.
func ClearPassword(a *account.Account) {
	a.Credentials.Password.Wipe()
	a.Lifetime.HasPassword = false
	a.Lifetime.PasswordDeath = time.Time{}
}

// TouchDeath schedules a's whole-account eviction at now+ttl, or clears the
// schedule (account lives forever) for a zero or negative ttl.
func TouchDeath(a *account.Account, ttl time.Duration, now time.Time) {
	if ttl > 0 {
		a.Lifetime.Death = now.Add(ttl)
	} else {
		a.Lifetime.Death = time.Time{}
	}
}
