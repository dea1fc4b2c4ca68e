package fabriccrypto

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
)

// CanonicalHash serializes obj as canonical JSON (RFC 8785-style: sorted
// object keys, stable array order, no insignificant whitespace) and
// returns the hex-encoded SHA-256 digest of the result. This is the only
// hash construction permitted for any id-bearing field in this module.
//
// The canonicalization here is the same "simplified RFC8785-like
// approach" used across the pack for deterministic commitment hashing:
// recursively sort map keys, marshal through encoding/json (which already
// normalizes whitespace and numeric formatting for the types we produce),
// and never touch array order.
func CanonicalHash(obj interface{}) (string, error) {
	canonicalBytes, err := CanonicalJSON(obj)
	if err != nil {
		return "", &Error{Op: "CanonicalHash", Err: err}
	}
	sum := sha256.Sum256(canonicalBytes)
	return hex.EncodeToString(sum[:]), nil
}

// CanonicalJSON returns the canonical JSON encoding of obj: object keys
// sorted, arrays left in their given order, numbers and strings encoded
// by encoding/json.
func CanonicalJSON(obj interface{}) ([]byte, error) {
	// Round-trip through interface{} so that map key order is
	// unambiguous regardless of the concrete input type (struct,
	// map[string]interface{}, or already-decoded JSON).
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	canonical := canonicalizeValue(generic)
	out, err := json.Marshal(canonical)
	if err != nil {
		return nil, fmt.Errorf("marshal canonical: %w", err)
	}
	return out, nil
}

// canonicalizeValue recursively sorts map keys so that two semantically
// identical objects always encode to the same bytes regardless of the
// order keys were inserted in.
func canonicalizeValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make(map[string]interface{}, len(vv))
		for _, k := range keys {
			ordered[k] = canonicalizeValue(vv[k])
		}
		return ordered
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, e := range vv {
			out[i] = canonicalizeValue(e)
		}
		return out
	default:
		return vv
	}
}
