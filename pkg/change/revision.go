package change

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// revPattern is the revision token grammar from §6:
// YYYYMMDDhhmm_<root8>_<revhex8>_<changeid8>_<doctype_sanitized>
var revPattern = regexp.MustCompile(
	`^([0-9]{12})_([0-9a-f]{8})_([0-9a-f]{8})_([0-9a-f]{8})_([a-z0-9_]+)$`)

// revHexModulus is 16^8 = 2^32, the wraparound point for the revhex
// counter (§3).
const revHexModulus = uint64(1) << 32

// Rev is a lexicographically sortable revision token. Because the
// timestamp prefix is fixed-width and zero-padded, and every other
// segment is also fixed-width hex, ordinary string comparison of two Rev
// values agrees with the intended chronological/causal ordering.
type Rev struct {
	value string
}

// ParseRev validates and wraps a revision token.
func ParseRev(s string) (Rev, error) {
	if !revPattern.MatchString(s) {
		return Rev{}, &Error{Op: "ParseRev", Err: ErrValidation, Msg: fmt.Sprintf("malformed rev token: %q", s)}
	}
	return Rev{value: s}, nil
}

// String returns the revision token text.
func (r Rev) String() string {
	return r.value
}

// IsZero reports whether this Rev is unset.
func (r Rev) IsZero() bool {
	return r.value == ""
}

// Less reports whether r sorts strictly before other. Since rev tokens
// are fixed-width segments, this is plain string comparison.
func (r Rev) Less(other Rev) bool {
	return r.value < other.value
}

func (r Rev) parts() []string {
	m := revPattern.FindStringSubmatch(r.value)
	if m == nil {
		return nil
	}
	return m[1:]
}

// Root8 returns the first 8 hex characters of the root change's
// change_id.
func (r Rev) Root8() string {
	p := r.parts()
	if p == nil {
		return ""
	}
	return p[1]
}

// RevHex returns the 8 hex digit monotonic counter segment.
func (r Rev) RevHex() string {
	p := r.parts()
	if p == nil {
		return ""
	}
	return p[2]
}

// ChangeID8 returns the first 8 hex characters of this change's own
// change_id, embedded as a tiebreaker (§4.3).
func (r Rev) ChangeID8() string {
	p := r.parts()
	if p == nil {
		return ""
	}
	return p[3]
}

// Doctype returns the sanitized doctype segment.
func (r Rev) Doctype() string {
	p := r.parts()
	if p == nil {
		return ""
	}
	return p[4]
}

// sanitizeDoctype lowercases a "module:ClassName" doctype and replaces
// every run of characters outside [a-z0-9_] with a single underscore, so
// the result satisfies the rev grammar's final segment.
func sanitizeDoctype(doctype string) string {
	lower := strings.ToLower(doctype)
	var b strings.Builder
	lastWasSep := false
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasSep = false
			continue
		}
		if !lastWasSep {
			b.WriteByte('_')
			lastWasSep = true
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		out = "doc"
	}
	return out
}

// nextRevHex computes (parentHex + 1) mod 16^8, the §3 revision counter
// rule.
func nextRevHex(parentHex string) (string, error) {
	v, err := strconv.ParseUint(parentHex, 16, 64)
	if err != nil {
		return "", fmt.Errorf("invalid parent revhex %q: %w", parentHex, err)
	}
	next := (v + 1) % revHexModulus
	return fmt.Sprintf("%08x", next), nil
}

// MakeRev computes the rev token for a change, following §3/§4.2 step 3:
// if parentRev is the zero Rev, this is a root change (revhex="00000000",
// root8=changeID[0:8]); otherwise reuse the parent's root8 and increment
// its revhex.
func MakeRev(now time.Time, changeID ChangeID, doctype string, parentRev Rev) (Rev, error) {
	timestamp := now.UTC().Format("200601021504")
	sanitized := sanitizeDoctype(doctype)

	var root8, revHex string
	if parentRev.IsZero() {
		root8 = changeID.Short(8)
		revHex = "00000000"
	} else {
		root8 = parentRev.Root8()
		var err error
		revHex, err = nextRevHex(parentRev.RevHex())
		if err != nil {
			return Rev{}, &Error{Op: "MakeRev", Err: ErrValidation, Msg: err.Error()}
		}
	}

	token := fmt.Sprintf("%s_%s_%s_%s_%s", timestamp, root8, revHex, changeID.Short(8), sanitized)
	return ParseRev(token)
}
