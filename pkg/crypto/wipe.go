package crypto

import "runtime"

// wipeByte is the fixed fill value used to overwrite sensitive buffers
// before their backing memory is released. A fixed, non-zero byte makes it
// easy to spot an unwiped leftover in a core dump during review.
const wipeByte = 0xa5

// Wipe overwrites b in place with a fixed byte pattern. It is used to scrub
// passwords and refresh tokens out of memory once they are no longer needed.
// The runtime.KeepAlive call at the end defeats the dead-store elimination
// that would otherwise let the compiler optimize the overwrite away since
// nothing reads b afterward.
func Wipe(b []byte) {
	for i := range b {
		b[i] = wipeByte
	}
	runtime.KeepAlive(b)
}
