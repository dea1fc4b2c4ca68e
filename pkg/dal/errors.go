package dal

import "errors"

var (
	// ErrInvalidQuery marks a find/find_one call with no search kwargs.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrCorruptChain marks a head that is not in the store, or a chain
	// that cannot be replayed at all (§4.6: a fatal condition, never
	// silently swallowed).
	ErrCorruptChain = errors.New("corrupt chain")
	// ErrNoAuthoringKey marks an attempt to create or update a document
	// without an authoring key configured.
	ErrNoAuthoringKey = errors.New("no authoring key configured")
)

// Error wraps a DAL failure with the operation that produced it.
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
