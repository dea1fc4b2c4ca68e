package secp256k1

import "crypto/sha256"

// doubleSHA256 matches the Bitcoin message-digest convention used by
// SignCompact/RecoverCompact's callers throughout the pack: hash twice so
// that a signer can't be tricked into signing a message whose single
// SHA-256 collides with a transaction digest from a different context.
func doubleSHA256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}
