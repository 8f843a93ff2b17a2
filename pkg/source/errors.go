package source

import "fmt"

// SourceError represents errors that occur during source system operations
type SourceError struct {
	Type    string // Type of error (authentication_error, api_error, not_found, etc.)
	Message string // Human-readable error message
	Err     error  // Underlying error
	Context string // Additional context (project path, issue number, etc.)
}

func (e *SourceError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("source error (%s) for %s: %s", e.Type, e.Context, e.Message)
	}
	return fmt.Sprintf("source error (%s): %s", e.Type, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// IsAuthenticationError checks if the error is related to authentication
func IsAuthenticationError(err error) bool {
	if srcErr, ok := err.(*SourceError); ok {
		return srcErr.Type == "authentication_error"
	}
	return false
}

// IsNotFoundError checks if the error is related to a resource not being found
func IsNotFoundError(err error) bool {
	if srcErr, ok := err.(*SourceError); ok {
		return srcErr.Type == "not_found"
	}
	return false
}

// IsDownloadError checks if the error is related to attachment downloads
func IsDownloadError(err error) bool {
	if srcErr, ok := err.(*SourceError); ok {
		return srcErr.Type == "download_error"
	}
	return false
}
