// Package dal is the Data-Access Layer (§4.6): it composes the Change
// model, the doc-diff engine, the KV change store, and the prefix-search
// index into New/Get/Update/Save/FindOne/Find operations over typed
// documents.
package dal

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/guarantor-network/fabric/pkg/change"
	"github.com/guarantor-network/fabric/pkg/changestore"
	"github.com/guarantor-network/fabric/pkg/docdiff"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto"
	"github.com/guarantor-network/fabric/pkg/searchindex"
)

// DAL is the Data-Access Layer.
type DAL struct {
	store      changestore.Store
	index      *searchindex.Index
	key        fabriccrypto.KeyPair
	verifier   fabriccrypto.Verifier
	difficulty int
	log        hclog.Logger
}

// Option configures a DAL at construction.
type Option func(*DAL)

// WithAuthoringKey sets the key used to sign changes made through New
// and Update. A DAL without an authoring key can still read (Get,
// FindOne, Find).
func WithAuthoringKey(key fabriccrypto.KeyPair) Option {
	return func(d *DAL) { d.key = key }
}

// WithDifficulty sets the proof-of-work difficulty used for changes
// this DAL mints.
func WithDifficulty(difficulty int) Option {
	return func(d *DAL) { d.difficulty = difficulty }
}

// WithLogger sets the structured logger used for DAL diagnostics.
func WithLogger(l hclog.Logger) Option {
	return func(d *DAL) { d.log = l }
}

// New constructs a DAL over a store, a search index, and a crypto
// verifier.
func New(store changestore.Store, index *searchindex.Index, verifier fabriccrypto.Verifier, opts ...Option) *DAL {
	d := &DAL{
		store:      store,
		index:      index,
		verifier:   verifier,
		difficulty: 1,
		log:        hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDocument implements §4.6's new(): requires an authoring key,
// creates a root change with Operation(reset, fields), and returns an
// UNSAVED wrapper (Committed=[], Staged=[change]).
func (d *DAL) NewDocument(ctx context.Context, doctype string, fields map[string]interface{}) (*DocumentWrapper, error) {
	if d.key == nil {
		return nil, &Error{Op: "NewDocument", Err: ErrNoAuthoringKey}
	}

	c, err := change.MakeChange(ctx, d.key, time.Now(), doctype, change.OpReset, fields, change.ChangeID{}, change.Rev{}, d.difficulty)
	if err != nil {
		return nil, &Error{Op: "NewDocument", Err: err}
	}

	doc, err := docdiff.BuildDocument([]*change.Change{c})
	if err != nil {
		return nil, &Error{Op: "NewDocument", Err: err}
	}

	return &DocumentWrapper{Doc: doc, Staged: []*change.Change{c}}, nil
}

// Get implements §4.6's get(): walks ancestors with no early exit, sorts
// them, verifies the chain replays without error, and returns the
// resulting wrapper. A chain that cannot be replayed (unsupported
// opcode, broken parent link) is ErrCorruptChain.
func (d *DAL) Get(head change.ChangeID) (*DocumentWrapper, error) {
	var chain []*change.Change
	err := d.store.IterChanges(head, false, func(c *change.Change) bool {
		chain = append(chain, c)
		return true
	})
	if err != nil {
		return nil, &Error{Op: "Get", Err: err}
	}
	if len(chain) == 0 {
		return nil, &Error{Op: "Get", Err: ErrCorruptChain, Msg: "head not found: " + head.String()}
	}

	doc, err := docdiff.BuildDocument(chain)
	if err != nil {
		return nil, &Error{Op: "Get", Err: ErrCorruptChain, Msg: err.Error()}
	}

	docdiff.SortChain(chain)
	return &DocumentWrapper{Doc: doc, Committed: chain}, nil
}

// Update implements §4.6's wrapper.update(): computes a diff from the
// wrapper's current document to the new fields, wraps it as a Change
// chained off the wrapper's current head, and appends it to Staged.
func (d *DAL) Update(ctx context.Context, w *DocumentWrapper, doctype string, fields map[string]interface{}) (*DocumentWrapper, error) {
	if d.key == nil {
		return nil, &Error{Op: "Update", Err: ErrNoAuthoringKey}
	}

	op := docdiff.MakeDiff(w.Doc.Fields(), fields)
	c, err := change.MakeChange(ctx, d.key, time.Now(), doctype, op.Opcode, op.Opdata, w.Head(), w.HeadRev(), d.difficulty)
	if err != nil {
		return nil, &Error{Op: "Update", Err: err}
	}

	doc, err := docdiff.BuildDocument(append(w.allChanges(), c))
	if err != nil {
		return nil, &Error{Op: "Update", Err: err}
	}

	w.Doc = doc
	w.Staged = append(w.Staged, c)
	return w, nil
}

// Save implements §4.6's wrapper.save(): posts each staged change to the
// store in order, then refreshes the search index. On any error the
// wrapper's Committed/Staged split is left untouched so the caller can
// retry.
func (d *DAL) Save(w *DocumentWrapper) (*DocumentWrapper, error) {
	for i, c := range w.Staged {
		if err := d.store.Post(c); err != nil {
			return nil, &Error{Op: "Save", Err: err, Msg: "posting staged change " + strconv.Itoa(i)}
		}
	}

	if d.index != nil && w.Doc != nil {
		d.index.UpdateIndexes(w.Doc.Doctype(), w.Head(), w.Doc.Fields())
	}

	w.Committed = append(w.Committed, w.Staged...)
	w.Staged = nil
	return w, nil
}

// FindOne implements §4.6's find_one(): queries the index for each
// search kwarg, loads every match via Get, and returns the candidate
// with the largest HeadRev. A missing value for any declared field is
// simply not matched; callers must supply at least one kwarg.
func (d *DAL) FindOne(doctype string, kwargs map[string]string) (*DocumentWrapper, error) {
	if len(kwargs) == 0 {
		return nil, &Error{Op: "FindOne", Err: ErrInvalidQuery, Msg: "no search kwargs"}
	}

	candidates, err := d.matchingHeads(doctype, kwargs)
	if err != nil {
		return nil, &Error{Op: "FindOne", Err: err}
	}

	var best *DocumentWrapper
	for _, head := range candidates {
		w, err := d.Get(head)
		if err != nil {
			d.log.Warn("find_one: skipping unreadable candidate", "head", head.String(), "error", err)
			continue
		}
		if best == nil || best.HeadRev().Less(w.HeadRev()) {
			best = w
		}
	}
	return best, nil
}

// Find implements §4.6's find(): yields one wrapper per matched
// change_id, in index order. Save indexes a document under each new
// head without removing the entries of older heads, so several results
// can be successive heads of the same document chain; Find does not
// merge them.
func (d *DAL) Find(doctype string, kwargs map[string]string) ([]*DocumentWrapper, error) {
	if len(kwargs) == 0 {
		return nil, &Error{Op: "Find", Err: ErrInvalidQuery, Msg: "no search kwargs"}
	}

	heads, err := d.matchingHeads(doctype, kwargs)
	if err != nil {
		return nil, &Error{Op: "Find", Err: err}
	}

	wrappers := make([]*DocumentWrapper, 0, len(heads))
	for _, head := range heads {
		w, err := d.Get(head)
		if err != nil {
			d.log.Warn("find: skipping unreadable match", "head", head.String(), "error", err)
			continue
		}
		wrappers = append(wrappers, w)
	}
	return wrappers, nil
}

// matchingHeads queries the index once per kwarg and returns the union
// of matched change_ids, in index order.
func (d *DAL) matchingHeads(doctype string, kwargs map[string]string) ([]change.ChangeID, error) {
	fields := make([]string, 0, len(kwargs))
	for field := range kwargs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	seen := map[string]bool{}
	var heads []change.ChangeID
	for _, field := range fields {
		items, err := d.index.QueryIndex(doctype, kwargs[field], []string{field})
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if seen[item.ChangeID.String()] {
				continue
			}
			seen[item.ChangeID.String()] = true
			heads = append(heads, item.ChangeID)
		}
	}
	return heads, nil
}
