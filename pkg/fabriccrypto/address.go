package fabriccrypto

import (
	"encoding/json"
	"fmt"
)

// Address is the text identifier derived from a key's public half that
// identifies an author on the wire. It is opaque to this package: the
// concrete encoding (base58check hash160, bech32, hex, ...) is entirely
// the business of whichever Scheme produced it. Address only enforces
// "non-empty, round-trips through JSON as a string".
type Address struct {
	value string
}

// NewAddress wraps a raw address string. Use this when a Scheme has
// already produced the canonical text form.
func NewAddress(s string) Address {
	return Address{value: s}
}

// ParseAddress validates and wraps an address string. Concrete schemes
// that impose a stricter grammar (e.g. base58check) should validate with
// their own parser and call NewAddress on success; ParseAddress only
// rejects the empty string, which is never a valid address for any
// scheme.
func ParseAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, &Error{Op: "ParseAddress", Err: ErrInvalidAddress, Msg: "empty address"}
	}
	return Address{value: s}, nil
}

// String returns the address's canonical text form.
func (a Address) String() string {
	return a.value
}

// IsZero reports whether this is the unset Address.
func (a Address) IsZero() bool {
	return a.value == ""
}

// Equal reports whether two addresses have the same text form.
func (a Address) Equal(other Address) bool {
	return a.value == other.value
}

// MarshalJSON implements json.Marshaler. The zero Address marshals to
// null, matching the "parent_id: null for root" convention used
// elsewhere in the wire format.
func (a Address) MarshalJSON() ([]byte, error) {
	if a.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(a.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("address must be a string: %w", err)
	}
	if s == nil {
		*a = Address{}
		return nil
	}
	*a = Address{value: *s}
	return nil
}
