package numbering

import "fmt"

// VerificationError reports that the target assigned a different number than
// the protocol expected. Once this happens the numbering of everything created
// afterwards would be wrong, so it is always fatal to the migration.
type VerificationError struct {
	Kind     string
	Expected int
	Actual   int
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("%s number verification failed: expected #%d, got #%d - "+
		"the target repository is not in the clean state the migration requires",
		e.Kind, e.Expected, e.Actual)
}

// IsVerificationError checks if the error is a number verification failure
func IsVerificationError(err error) bool {
	_, ok := err.(*VerificationError)
	return ok
}

// SequenceError reports invalid input numbering, such as duplicates or
// numbers below one
type SequenceError struct {
	Kind    string
	Message string
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("%s sequence error: %s", e.Kind, e.Message)
}

// IsSequenceError checks if the error is an invalid-sequence error
func IsSequenceError(err error) bool {
	_, ok := err.(*SequenceError)
	return ok
}
