package docdiff

import (
	"reflect"
	"sort"

	"github.com/guarantor-network/fabric/pkg/change"
)

// MakeDiff always returns an OpReset operation carrying the complete new
// document dictionary (§4.3). A structural dictdiff path existed in
// earlier drafts of this system but is not implemented here: emitting
// only reset keeps apply_diffs total and unambiguous.
func MakeDiff(oldDict, newDict map[string]interface{}) change.Operation {
	return change.Operation{Opcode: change.OpReset, Opdata: newDict}
}

// ApplyDiffs folds a sequence of Operations onto a starting dictionary,
// in order. OpReset replaces the dictionary wholesale. Any other opcode
// is fatal for that change: ErrUnsupportedOperation, per §4.3 and §7.
func ApplyDiffs(start map[string]interface{}, ops []change.Operation) (map[string]interface{}, error) {
	current := start
	for _, op := range ops {
		switch op.Opcode {
		case change.OpReset:
			dict, ok := op.Opdata.(map[string]interface{})
			if !ok {
				return nil, &Error{Op: "ApplyDiffs", Err: ErrValidation, Msg: "reset opdata is not an object"}
			}
			current = dict
		default:
			return nil, &Error{Op: "ApplyDiffs", Err: ErrUnsupportedOperation, Msg: string(op.Opcode)}
		}
	}
	return current, nil
}

// SortChain orders a slice of Changes by rev ascending, breaking ties on
// the full change_id lexicographically (§4.3's tie-break rule; in
// practice unreachable since rev embeds change_id[0:8], but cheap to
// honor exactly).
func SortChain(chain []*change.Change) {
	sort.Slice(chain, func(i, j int) bool {
		if chain[i].Rev.String() != chain[j].Rev.String() {
			return chain[i].Rev.Less(chain[j].Rev)
		}
		return chain[i].ChangeID.String() < chain[j].ChangeID.String()
	})
}

// BuildDocument sorts chain by rev ascending, applies each change's
// Operation in order starting from {}, and instantiates the resulting
// doctype (§4.3). The doctype used to pick a constructor is the last
// change's Doctype field; every change in a well-formed chain shares the
// same doctype. Neither this function nor the DAL checks that the
// earlier changes agree with it.
func BuildDocument(chain []*change.Change) (Document, error) {
	if len(chain) == 0 {
		return nil, &Error{Op: "BuildDocument", Err: ErrValidation, Msg: "empty chain"}
	}

	sorted := make([]*change.Change, len(chain))
	copy(sorted, chain)
	SortChain(sorted)

	ops := make([]change.Operation, len(sorted))
	for i, c := range sorted {
		ops[i] = c.Operation()
	}

	fields, err := ApplyDiffs(map[string]interface{}{}, ops)
	if err != nil {
		return nil, err
	}

	doctype := sorted[len(sorted)-1].Doctype
	ctor, ok := lookupConstructor(doctype)
	if !ok {
		return nil, &Error{Op: "BuildDocument", Err: ErrUnknownDoctype, Msg: doctype}
	}
	return ctor(fields), nil
}

// DocumentsEqual compares two Documents' doctypes and field
// dictionaries, the comparison a build_document(chain) == doc check
// needs. The DAL does not call it.
func DocumentsEqual(a, b Document) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Doctype() == b.Doctype() && reflect.DeepEqual(a.Fields(), b.Fields())
}
