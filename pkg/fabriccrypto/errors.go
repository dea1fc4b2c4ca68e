package fabriccrypto

import "errors"

// Sentinel errors for the crypto primitives. Wrapped in Error for
// operation context; callers compare with errors.Is.
var (
	// ErrInvalidAddress is returned when an address string fails to parse.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidKey is returned when a key cannot be loaded or decoded.
	ErrInvalidKey = errors.New("invalid key")
)

// Error wraps a crypto-package failure with the operation that produced
// it, following the {Op, Err, Msg} shape used across this module.
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
