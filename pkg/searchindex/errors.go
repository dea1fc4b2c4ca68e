package searchindex

import "errors"

var (
	// ErrInvalidQuery marks a query missing a required field.
	ErrInvalidQuery = errors.New("invalid query")
)

// Error wraps a searchindex failure with the operation that produced it.
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
