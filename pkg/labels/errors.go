package labels

import "fmt"

// LabelError represents errors from label translation and migration
type LabelError struct {
	Type    string
	Message string
	Err     error
	Context string
}

func (e *LabelError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (context: %s)", e.Type, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *LabelError) Unwrap() error {
	return e.Err
}

// IsPatternError checks if the error is an invalid translation pattern
func IsPatternError(err error) bool {
	if labelErr, ok := err.(*LabelError); ok {
		return labelErr.Type == "pattern_error"
	}
	return false
}
