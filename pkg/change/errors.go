package change

import "errors"

// Sentinel errors for the §7 error taxonomy as it applies to the change
// model. Other packages (changestore, dal, dht) define their own
// sentinels for taxonomy kinds that don't originate here, but reuse
// ErrVerification and ErrValidation since "malformed change" and
// "signature mismatch" are properties of a Change wherever it surfaces.
var (
	// ErrValidation marks malformed input at the system boundary.
	ErrValidation = errors.New("validation error")
	// ErrVerification marks a signature or content-hash mismatch.
	ErrVerification = errors.New("verification error")
	// ErrUnsupportedOperation marks an opcode this peer cannot apply.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Error wraps a change-package failure with the operation that produced
// it, in the {Op, Err, Msg} shape used across this module.
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
