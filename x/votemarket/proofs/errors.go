package proofs

import "errors"

var (
	// ErrProofKeyMismatch is returned when the endpoint answers for a
	// different account, block or storage key than the one requested.
	ErrProofKeyMismatch = errors.New("proof key mismatch")

	// ErrCancelled is returned when assembly stops on the caller's
	// context.
	ErrCancelled = errors.New("proof assembly cancelled")
)

// FailureError pairs an assembly error with the stage reason it died
// with. The reason is a stable label for journals, metrics and API
// responses; the wrapped error keeps the full cause chain.
type FailureError struct {
	Reason string
	Err    error
}

func (e *FailureError) Error() string {
	return e.Reason + ": " + e.Err.Error()
}

func (e *FailureError) Unwrap() error {
	return e.Err
}

// FailureReason extracts the stage reason from an assembly error, or ""
// when the error did not come from an assembly run.
func FailureReason(err error) string {
	var fe *FailureError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ""
}
