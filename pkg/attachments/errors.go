package attachments

import "fmt"

// AttachmentError represents errors from attachment relocation
type AttachmentError struct {
	Type    string
	Message string
	Err     error
	Context string
}

func (e *AttachmentError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (context: %s)", e.Type, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AttachmentError) Unwrap() error {
	return e.Err
}

// IsRelocationError checks if the error is an attachment relocation failure
func IsRelocationError(err error) bool {
	if attErr, ok := err.(*AttachmentError); ok {
		return attErr.Type == "relocation_error"
	}
	return false
}
