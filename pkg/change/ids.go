package change

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// ChangeID is the deterministic content hash of a Change's id fields
// (§3): a lowercase hex SHA-256 digest.
type ChangeID struct {
	value string
}

var changeIDPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NewChangeID wraps an already-computed hex digest. Callers that compute
// a digest via fabriccrypto.CanonicalHash should use this directly.
func NewChangeID(hexDigest string) ChangeID {
	return ChangeID{value: hexDigest}
}

// ParseChangeID validates and wraps a change-id string.
func ParseChangeID(s string) (ChangeID, error) {
	if !changeIDPattern.MatchString(s) {
		return ChangeID{}, &Error{Op: "ParseChangeID", Err: ErrValidation, Msg: fmt.Sprintf("malformed change id: %q", s)}
	}
	return ChangeID{value: s}, nil
}

// String returns the hex digest.
func (c ChangeID) String() string {
	return c.value
}

// IsZero reports whether this is the unset ChangeID (used as the
// "no parent" marker for root changes).
func (c ChangeID) IsZero() bool {
	return c.value == ""
}

// Equal reports whether two ChangeIDs are the same digest.
func (c ChangeID) Equal(other ChangeID) bool {
	return c.value == other.value
}

// Short returns the first n hex characters, used for rev tokens
// (root8, changeid8).
func (c ChangeID) Short(n int) string {
	if len(c.value) < n {
		return c.value
	}
	return c.value[:n]
}

// MarshalJSON implements json.Marshaler. The zero ChangeID (root's
// parent_id) marshals to null.
func (c ChangeID) MarshalJSON() ([]byte, error) {
	if c.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(c.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ChangeID) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("change_id must be a string or null: %w", err)
	}
	if s == nil {
		*c = ChangeID{}
		return nil
	}
	parsed, err := ParseChangeID(*s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
