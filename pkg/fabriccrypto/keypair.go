// Package fabriccrypto implements the canonical hashing, signing, and
// address-derivation primitives shared by the change model and the DHT
// storage overlay. The package itself never touches a concrete elliptic
// curve: it depends only on the KeyPair/Verifier capabilities below, so
// the actual signing scheme (secp256k1, ed25519, ...) is a pluggable
// adapter supplied by the caller — see fabriccrypto/secp256k1 for the
// default implementation.
package fabriccrypto

// KeyPair is the abstract signing capability the rest of this module
// depends on. A concrete implementation owns a private key and knows how
// to derive its own public Address.
type KeyPair interface {
	// Address returns the text address derived from this key's public
	// half.
	Address() Address

	// Sign returns a signature over message. Implementations that use a
	// recoverable signature scheme (so that Verify can work from the
	// address alone, with no separate public key) should prefer that,
	// since Verifier.Verify below takes no public key parameter.
	Sign(message []byte) ([]byte, error)
}

// Verifier checks a signature against an address with no access to the
// signer's private key, and without requiring the caller to have stored
// the public key out of band — the address is all that's needed.
type Verifier interface {
	// Verify reports whether signature is a valid signature over message
	// produced by the key owning address. It never returns an error; an
	// unparseable signature or address is simply not valid (false).
	Verify(address Address, signature, message []byte) bool
}

// Scheme bundles the capabilities a concrete crypto adapter must supply:
// deriving a KeyPair from an external key encoding (e.g. WIF), and
// verifying signatures produced by that KeyPair's Sign.
type Scheme interface {
	Verifier

	// ParseKey loads a KeyPair from its external textual encoding.
	ParseKey(encoded string) (KeyPair, error)
}
