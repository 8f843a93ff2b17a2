package git

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-logr/logr"
)

func TestNewGitMirror(t *testing.T) {
	mirror := NewGitMirror("source-token", "target-token", logr.Discard())

	if mirror == nil {
		t.Fatal("Expected mirror to be created, got nil")
	}

	gitMirror, ok := mirror.(*GitMirror)
	if !ok {
		t.Fatalf("Expected *GitMirror, got %T", mirror)
	}

	if gitMirror.SourceToken != "source-token" {
		t.Errorf("Expected source token 'source-token', got '%s'", gitMirror.SourceToken)
	}

	if gitMirror.TargetToken != "target-token" {
		t.Errorf("Expected target token 'target-token', got '%s'", gitMirror.TargetToken)
	}
}

func TestMirrorRepositoryEmptyTargetURL(t *testing.T) {
	mirror := NewGitMirror("", "token", logr.Discard())

	err := mirror.MirrorRepository("https://gitlab.com/group/project.git", "", "")
	if err == nil {
		t.Fatal("Expected error for empty target URL, got nil")
	}

	if !IsInvalidInputError(err) {
		t.Errorf("Expected invalid_input error, got %v", err)
	}
}

func TestMirrorRepositoryBadLocalClone(t *testing.T) {
	mirror := NewGitMirror("", "token", logr.Discard())

	err := mirror.MirrorRepository("", "https://github.com/owner/repo.git", t.TempDir())
	if err == nil {
		t.Fatal("Expected error for non-repository local clone, got nil")
	}

	if !IsInvalidInputError(err) {
		t.Errorf("Expected invalid_input error, got %v", err)
	}

	if !strings.Contains(err.Error(), "local clone") {
		t.Errorf("Expected error message to mention local clone, got '%s'", err.Error())
	}
}

func TestSourceAuth(t *testing.T) {
	withToken := &GitMirror{SourceToken: "glpat-abc", logger: logr.Discard()}
	if withToken.sourceAuth() == nil {
		t.Error("Expected auth method when source token is set, got nil")
	}

	anonymous := &GitMirror{logger: logr.Discard()}
	if anonymous.sourceAuth() != nil {
		t.Error("Expected nil auth for empty source token")
	}
}

func TestGitErrorFormatting(t *testing.T) {
	withContext := &GitError{
		Type:    "push_error",
		Message: "failed to push refs to target repository",
		Context: "https://github.com/owner/repo.git",
	}
	expected := "git error (push_error) for https://github.com/owner/repo.git: failed to push refs to target repository"
	if withContext.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, withContext.Error())
	}

	withoutContext := &GitError{Type: "invalid_input", Message: "target URL cannot be empty"}
	if withoutContext.Error() != "git error (invalid_input): target URL cannot be empty" {
		t.Errorf("Unexpected error string: '%s'", withoutContext.Error())
	}
}

func TestGitErrorUnwrap(t *testing.T) {
	underlying := errors.New("connection refused")
	gitErr := &GitError{Type: "clone_error", Message: "failed to clone", Err: underlying}

	if !errors.Is(gitErr, underlying) {
		t.Error("Expected errors.Is to find the underlying error")
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		predicate func(error) bool
		expected  bool
	}{
		{"clone error matches", &GitError{Type: "clone_error"}, IsCloneError, true},
		{"push error matches", &GitError{Type: "push_error"}, IsPushError, true},
		{"invalid input matches", &GitError{Type: "invalid_input"}, IsInvalidInputError, true},
		{"wrong type", &GitError{Type: "clone_error"}, IsPushError, false},
		{"plain error", errors.New("boom"), IsCloneError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.predicate(tt.err); result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestMockMirrorRecordsCalls(t *testing.T) {
	mock := NewMockMirror()

	if err := mock.MirrorRepository("src", "dst", "/tmp/clone"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(mock.Calls) != 1 {
		t.Fatalf("Expected 1 recorded call, got %d", len(mock.Calls))
	}

	if mock.Calls[0] != [3]string{"src", "dst", "/tmp/clone"} {
		t.Errorf("Unexpected recorded call: %v", mock.Calls[0])
	}

	mock.MirrorError = errors.New("push failed")
	if err := mock.MirrorRepository("src", "dst", ""); err == nil {
		t.Error("Expected injected error, got nil")
	}
}
