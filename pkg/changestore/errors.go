package changestore

import "errors"

var (
	// ErrStoreIO marks a failure of the underlying storage medium.
	ErrStoreIO = errors.New("store io error")
	// ErrVerification marks a stored change that failed verification on
	// read (§4.4: "invalid signature discovered on read").
	ErrVerification = errors.New("verification error")
	// ErrNotWritable marks a post() attempted on a store not holding the
	// write lock.
	ErrNotWritable = errors.New("store not open for writing")
	// ErrConflict marks an attempt to overwrite an existing change_id
	// with different bytes.
	ErrConflict = errors.New("change id already stored with different payload")
)

// Error wraps a changestore failure with the operation that produced it.
type Error struct {
	Op  string
	Err error
	Msg string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": " + e.Msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
