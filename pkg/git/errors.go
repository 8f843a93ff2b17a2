package git

import "fmt"

// GitError represents errors that occur during Git operations
type GitError struct {
	Type    string // Type of error (invalid_input, clone_error, push_error, etc.)
	Message string // Human-readable error message
	Err     error  // Underlying error
	Context string // Additional context (repository URL, path, etc.)
}

func (e *GitError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("git error (%s) for %s: %s", e.Type, e.Context, e.Message)
	}
	return fmt.Sprintf("git error (%s): %s", e.Type, e.Message)
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// IsCloneError checks if the error occurred while cloning the source
func IsCloneError(err error) bool {
	if gitErr, ok := err.(*GitError); ok {
		return gitErr.Type == "clone_error"
	}
	return false
}

// IsPushError checks if the error occurred while pushing to the target
func IsPushError(err error) bool {
	if gitErr, ok := err.(*GitError); ok {
		return gitErr.Type == "push_error"
	}
	return false
}

// IsInvalidInputError checks if the error is related to invalid input
func IsInvalidInputError(err error) bool {
	if gitErr, ok := err.(*GitError); ok {
		return gitErr.Type == "invalid_input"
	}
	return false
}
