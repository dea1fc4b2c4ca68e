// Package change implements the signed, content-addressed, PoW-stamped
// Change model (§3/§4.2): the persisted unit that a document chain is
// built from. It depends only on the abstract fabriccrypto.KeyPair and
// fabriccrypto.Verifier capabilities, never on a concrete curve.
package change

import (
	"context"
	"encoding/json"
	"time"

	"github.com/guarantor-network/fabric/pkg/fabriccrypto"
)

// Opcode names an Operation kind (§3). Only OpReset is implemented by
// this peer; OpDictDiff and the reserved names round-trip through
// JSON but ApplyDiffs (in pkg/docdiff) rejects them.
type Opcode string

const (
	// OpReset replaces the document wholesale; Opdata is the complete new
	// document dictionary.
	OpReset Opcode = "reset"
	// OpDictDiff is reserved for a structural diff. Not implemented: see
	// docdiff.ApplyDiffs.
	OpDictDiff Opcode = "dictdiff"
	// OpSet and OpDel are reserved names that must round-trip through
	// JSON if encountered, but are unused by this peer.
	OpSet Opcode = "set"
	OpDel Opcode = "del"
)

// Operation is the embedded {opcode, opdata} pair a Change carries.
type Operation struct {
	Opcode Opcode      `json:"opcode"`
	Opdata interface{} `json:"opdata"`
}

// idFields holds the id fields hashed to produce a change_id (§3:
// "[address, doctype, opcode, opdata, parent_id]"). They are hashed as
// a canonical JSON object with sorted keys, not as a JSON array.
type idFields struct {
	Address  string      `json:"address"`
	Doctype  string      `json:"doctype"`
	Opcode   Opcode      `json:"opcode"`
	Opdata   interface{} `json:"opdata"`
	ParentID string      `json:"parent_id"`
}

// Change is the persisted, signed, PoW-stamped unit of mutation.
type Change struct {
	Address     fabriccrypto.Address `json:"address"`
	Doctype     string               `json:"doctype"`
	Opcode      Opcode               `json:"opcode"`
	Opdata      interface{}          `json:"opdata"`
	ParentID    ChangeID             `json:"parent_id"`
	ChangeID    ChangeID             `json:"change_id"`
	Rev         Rev                  `json:"rev"`
	Signature   string               `json:"signature"`
	ProofOfWork string               `json:"proof_of_work"`
}

// Operation reassembles this Change's embedded Operation.
func (c *Change) Operation() Operation {
	return Operation{Opcode: c.Opcode, Opdata: c.Opdata}
}

// computeChangeID hashes the id-fields of a prospective change, per
// invariant 1.
func computeChangeID(address fabriccrypto.Address, doctype string, opcode Opcode, opdata interface{}, parentID ChangeID) (ChangeID, error) {
	fields := idFields{
		Address:  address.String(),
		Doctype:  doctype,
		Opcode:   opcode,
		Opdata:   opdata,
		ParentID: parentID.String(),
	}
	digest, err := fabriccrypto.CanonicalHash(fields)
	if err != nil {
		return ChangeID{}, &Error{Op: "computeChangeID", Err: ErrValidation, Msg: err.Error()}
	}
	return NewChangeID(digest), nil
}

// signingMessage is the ASCII string a Change's signature covers:
// change_id || rev.
func signingMessage(changeID ChangeID, rev Rev) []byte {
	return []byte(changeID.String() + rev.String())
}

// MakeChange implements §4.2's make_change: derive address, compute the
// change_id, compute rev, sign, and mine PoW at the requested
// difficulty. now is the wall-clock instant used for the rev's
// timestamp segment; callers pass it explicitly rather than this
// package calling time.Now() itself, so rev computation stays testable.
func MakeChange(ctx context.Context, key fabriccrypto.KeyPair, now time.Time, doctype string, opcode Opcode, opdata interface{}, parentID ChangeID, parentRev Rev, difficulty int) (*Change, error) {
	address := key.Address()

	changeID, err := computeChangeID(address, doctype, opcode, opdata, parentID)
	if err != nil {
		return nil, err
	}

	rev, err := MakeRev(now, changeID, doctype, parentRev)
	if err != nil {
		return nil, err
	}

	sigBytes, err := key.Sign(signingMessage(changeID, rev))
	if err != nil {
		return nil, &Error{Op: "MakeChange", Err: ErrValidation, Msg: "signing failed: " + err.Error()}
	}
	sig := encodeSignature(sigBytes)

	pow, err := CalculatePoW(ctx, changeID, difficulty)
	if err != nil {
		return nil, &Error{Op: "MakeChange", Err: ErrValidation, Msg: "mining failed: " + err.Error()}
	}

	return &Change{
		Address:     address,
		Doctype:     doctype,
		Opcode:      opcode,
		Opdata:      opdata,
		ParentID:    parentID,
		ChangeID:    changeID,
		Rev:         rev,
		Signature:   sig,
		ProofOfWork: pow,
	}, nil
}

// VerifyChange implements §4.2's verify_change and invariants 1-2: it
// recomputes change_id from the id-fields and checks the signature over
// change_id||rev. It deliberately never inspects proof_of_work — PoW is
// excluded from what a signature covers (§3), and a peer may hold a
// Change with a weaker-than-required PoW that is still validly signed.
func VerifyChange(c *Change, verifier fabriccrypto.Verifier) bool {
	wantID, err := computeChangeID(c.Address, c.Doctype, c.Opcode, c.Opdata, c.ParentID)
	if err != nil || !wantID.Equal(c.ChangeID) {
		return false
	}

	sigBytes, err := decodeSignature(c.Signature)
	if err != nil {
		return false
	}

	return verifier.Verify(c.Address, sigBytes, signingMessage(c.ChangeID, c.Rev))
}

// DumpsChange serializes a Change to its canonical JSON wire form.
func DumpsChange(c *Change) ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, &Error{Op: "DumpsChange", Err: ErrValidation, Msg: err.Error()}
	}
	return b, nil
}

// LoadsChange deserializes and verifies a Change. A Change that fails
// verification is rejected with ErrVerification rather than returned to
// the caller, per §7: a corrupt or forged change never enters the
// system as if it were valid.
func LoadsChange(data []byte, verifier fabriccrypto.Verifier) (*Change, error) {
	var c Change
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, &Error{Op: "LoadsChange", Err: ErrValidation, Msg: err.Error()}
	}
	if !VerifyChange(&c, verifier) {
		return nil, &Error{Op: "LoadsChange", Err: ErrVerification, Msg: "signature or change id mismatch"}
	}
	return &c, nil
}
