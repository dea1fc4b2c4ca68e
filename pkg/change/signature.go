package change

import "encoding/hex"

// encodeSignature renders a raw signature as lowercase hex for the wire
// form (§3's `signature` field is text).
func encodeSignature(sig []byte) string {
	return hex.EncodeToString(sig)
}

// decodeSignature reverses encodeSignature.
func decodeSignature(s string) ([]byte, error) {
	return hex.DecodeString(s)
}
