package miner

import (
	"fmt"
	"math/rand/v2"
)

// RandomNonce returns a fresh uniformly random 64-bit nonce rendered as a
// fixed-width 16-character lowercase hex string. No uniqueness is enforced;
// the collision probability over a challenge run is negligible.
func RandomNonce() string {
	return fmt.Sprintf("%016x", rand.Uint64())
}
