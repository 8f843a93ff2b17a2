package target

import "fmt"

// TargetError represents errors from target repository operations
type TargetError struct {
	Type    string
	Message string
	Err     error
	Context string
}

func (e *TargetError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s (context: %s)", e.Type, e.Message, e.Context)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *TargetError) Unwrap() error {
	return e.Err
}

// IsAuthenticationError checks if the error is an authentication failure
func IsAuthenticationError(err error) bool {
	if targetErr, ok := err.(*TargetError); ok {
		return targetErr.Type == "authentication_error"
	}
	return false
}

// IsNotFoundError checks if the error is a missing-resource error
func IsNotFoundError(err error) bool {
	if targetErr, ok := err.(*TargetError); ok {
		return targetErr.Type == "not_found"
	}
	return false
}

// IsUploadError checks if the error is an asset upload failure
func IsUploadError(err error) bool {
	if targetErr, ok := err.(*TargetError); ok {
		return targetErr.Type == "upload_error"
	}
	return false
}
