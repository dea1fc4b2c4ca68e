package dal

import (
	"github.com/guarantor-network/fabric/pkg/change"
	"github.com/guarantor-network/fabric/pkg/docdiff"
)

// DocumentWrapper is the DAL's view of a document chain (§3): the
// replayed Document alongside the Changes that produced it, split into
// already-stored (Committed) and not-yet-saved (Staged).
type DocumentWrapper struct {
	Doc       docdiff.Document
	Committed []*change.Change
	Staged    []*change.Change
}

// last returns the most recent change across committed and staged,
// preferring staged since it is causally later.
func (w *DocumentWrapper) last() *change.Change {
	if n := len(w.Staged); n > 0 {
		return w.Staged[n-1]
	}
	if n := len(w.Committed); n > 0 {
		return w.Committed[n-1]
	}
	return nil
}

// Head returns the change_id of the most recent change in this wrapper,
// staged or committed.
func (w *DocumentWrapper) Head() change.ChangeID {
	if c := w.last(); c != nil {
		return c.ChangeID
	}
	return change.ChangeID{}
}

// HeadRev returns the rev of the most recent change in this wrapper.
func (w *DocumentWrapper) HeadRev() change.Rev {
	if c := w.last(); c != nil {
		return c.Rev
	}
	return change.Rev{}
}

// allChanges returns committed ++ staged, the invariant
// build_document(committed ++ staged) == doc is stated over.
func (w *DocumentWrapper) allChanges() []*change.Change {
	out := make([]*change.Change, 0, len(w.Committed)+len(w.Staged))
	out = append(out, w.Committed...)
	out = append(out, w.Staged...)
	return out
}
