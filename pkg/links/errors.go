package links

import "fmt"

// LinkError represents errors from relationship linking
type LinkError struct {
	Type    string
	Message string
	Err     error
	Context string
}

func (e *LinkError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (context: %s)", e.Type, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}

// IsLinkingError checks if the error is a relationship creation failure
func IsLinkingError(err error) bool {
	if linkErr, ok := err.(*LinkError); ok {
		return linkErr.Type == "linking_error"
	}
	return false
}
