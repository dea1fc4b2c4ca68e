// Package changestore is the append-only local KV store for Changes
// (§4.4): an at-most-once map keyed by change_id, with ancestor-chain
// iteration. It is grounded on the directory-scoped bbolt wrapper
// pattern used for this system's embedded-database components, backed
// by spf13/afero so the directory the store lives in can be staged or
// inspected independently of the bbolt file itself.
//
// bbolt memory-maps its data file and therefore always needs a real
// OS-backed path; afero.Fs here manages only the containing directory
// (creation, existence checks), not the database file's bytes. Tests
// use afero.NewOsFs() rooted at a t.TempDir(), never afero's in-memory
// filesystem, for that reason.
package changestore

import (
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
	bolt "go.etcd.io/bbolt"

	"github.com/guarantor-network/fabric/pkg/change"
	"github.com/guarantor-network/fabric/pkg/fabriccrypto"
)

var changesBucket = []byte("changes")

// Store is the changestore contract (§4.4).
type Store interface {
	// Post verifies and appends a change, keyed by its change_id.
	// Re-posting the same change_id with byte-identical payload is a
	// no-op; re-posting it with a different payload is ErrConflict.
	Post(c *change.Change) error
	// Get returns the change stored under changeID, or (nil, nil) if
	// absent.
	Get(changeID change.ChangeID) (*change.Change, error)
	// IterChanges walks parent_id backward from head, calling fn for
	// each change in walk order (newest first). If earlyExit is true and
	// a reset change is yielded, the walk stops after that call. fn
	// returning false also stops the walk early.
	IterChanges(head change.ChangeID, earlyExit bool, fn func(*change.Change) bool) error
	// Close releases the store's underlying file handle.
	Close() error
}

// BoltStore is the default Store, backed by an embedded bbolt database.
type BoltStore struct {
	db       *bolt.DB
	verifier fabriccrypto.Verifier
	readOnly bool
	log      hclog.Logger
}

var _ Store = (*BoltStore)(nil)

// Option configures a BoltStore at construction.
type Option func(*BoltStore)

// WithLogger sets the structured logger used for store diagnostics.
func WithLogger(l hclog.Logger) Option {
	return func(s *BoltStore) { s.log = l }
}

// ReadOnly opens the store without acquiring write access; Post on a
// read-only store always fails with ErrNotWritable.
func ReadOnly() Option {
	return func(s *BoltStore) { s.readOnly = true }
}

// Open creates or opens a bbolt-backed store rooted at dir/changes.db.
// Opening in read-write mode (the default) acquires bbolt's exclusive
// file lock for the lifetime of the returned Store; that lock, and the
// transactions taken against it, are released deterministically by
// Close and by each Update/View call returning, which is the "scoped
// acquisition with guaranteed release" §4.4 requires.
func Open(fs afero.Fs, dir string, verifier fabriccrypto.Verifier, opts ...Option) (*BoltStore, error) {
	s := &BoltStore{verifier: verifier, log: hclog.NewNullLogger()}
	for _, opt := range opts {
		opt(s)
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, &Error{Op: "Open", Err: ErrStoreIO, Msg: err.Error()}
	}

	path := filepath.Join(dir, "changes.db")
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout:  2 * time.Second,
		ReadOnly: s.readOnly,
	})
	if err != nil {
		return nil, &Error{Op: "Open", Err: ErrStoreIO, Msg: err.Error()}
	}
	s.db = db

	if !s.readOnly {
		if err := db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(changesBucket)
			return err
		}); err != nil {
			_ = db.Close()
			return nil, &Error{Op: "Open", Err: ErrStoreIO, Msg: err.Error()}
		}
	}

	return s, nil
}

// Close implements Store.
func (s *BoltStore) Close() error {
	if err := s.db.Close(); err != nil {
		return &Error{Op: "Close", Err: ErrStoreIO, Msg: err.Error()}
	}
	return nil
}

// Post implements Store.
func (s *BoltStore) Post(c *change.Change) error {
	if s.readOnly {
		return &Error{Op: "Post", Err: ErrNotWritable}
	}
	if !change.VerifyChange(c, s.verifier) {
		return &Error{Op: "Post", Err: change.ErrVerification, Msg: c.ChangeID.String()}
	}

	payload, err := change.DumpsChange(c)
	if err != nil {
		return &Error{Op: "Post", Err: ErrStoreIO, Msg: err.Error()}
	}

	key := []byte(c.ChangeID.String())
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(changesBucket)
		existing := b.Get(key)
		if existing != nil {
			if string(existing) == string(payload) {
				return nil
			}
			return &Error{Op: "Post", Err: ErrConflict, Msg: c.ChangeID.String()}
		}
		return b.Put(key, payload)
	})
}

// Get implements Store.
func (s *BoltStore) Get(changeID change.ChangeID) (*change.Change, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(changesBucket)
		if b == nil {
			return nil
		}
		v := b.Get([]byte(changeID.String()))
		if v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, &Error{Op: "Get", Err: ErrStoreIO, Msg: err.Error()}
	}
	if raw == nil {
		return nil, nil
	}

	c, err := change.LoadsChange(raw, s.verifier)
	if err != nil {
		s.log.Warn("stored change failed verification on read", "change_id", changeID.String(), "error", err)
		return nil, &Error{Op: "Get", Err: ErrVerification, Msg: changeID.String()}
	}
	return c, nil
}

// IterChanges implements Store: it walks parent_id backward from head,
// stopping at a missing parent, and additionally stopping after
// yielding a reset change when earlyExit is set (invariant 5).
func (s *BoltStore) IterChanges(head change.ChangeID, earlyExit bool, fn func(*change.Change) bool) error {
	current := head
	for !current.IsZero() {
		c, err := s.Get(current)
		if err != nil {
			return err
		}
		if c == nil {
			return nil
		}
		if !fn(c) {
			return nil
		}
		if earlyExit && c.Opcode == change.OpReset {
			return nil
		}
		current = c.ParentID
	}
	return nil
}
