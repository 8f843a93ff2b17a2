// Package git mirrors the full git content of the source repository into the
// target repository: all branches, tags, and history in one push.
package git

import (
	"errors"
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-logr/logr"
)

// mirrorRefSpec pushes every ref as-is, branches and tags alike
const mirrorRefSpec = "+refs/*:refs/*"

// Mirror defines the interface for repository content mirroring
// This enables dependency injection and testing with mock implementations
type Mirror interface {
	// MirrorRepository copies all refs from sourceURL to targetURL. When
	// localClone is non-empty it names an existing local clone to push from,
	// skipping the network clone of the source.
	MirrorRepository(sourceURL, targetURL, localClone string) error
}

// GitMirror implements Mirror using the go-git library
type GitMirror struct {
	// SourceToken authenticates the clone from the source (may be empty for
	// public repositories)
	SourceToken string
	// TargetToken authenticates the push to the target
	TargetToken string

	logger logr.Logger
}

// NewGitMirror creates a repository mirrorer
func NewGitMirror(sourceToken, targetToken string, logger logr.Logger) Mirror {
	return &GitMirror{
		SourceToken: sourceToken,
		TargetToken: targetToken,
		logger:      logger,
	}
}

// MirrorRepository copies all refs from sourceURL to targetURL
func (g *GitMirror) MirrorRepository(sourceURL, targetURL, localClone string) error {
	if targetURL == "" {
		return &GitError{
			Type:    "invalid_input",
			Message: "target URL cannot be empty",
		}
	}

	var repo *gogit.Repository
	var err error

	if localClone != "" {
		repo, err = gogit.PlainOpen(localClone)
		if err != nil {
			return &GitError{
				Type:    "invalid_input",
				Message: "local clone is not a git repository",
				Err:     err,
				Context: localClone,
			}
		}
		g.logger.Info("using existing local clone", "path", localClone)
	} else {
		tmpDir, mkErr := os.MkdirTemp("", "mirror-*")
		if mkErr != nil {
			return &GitError{
				Type:    "filesystem_error",
				Message: "failed to create temporary clone directory",
				Err:     mkErr,
			}
		}
		defer func() { _ = os.RemoveAll(tmpDir) }()

		g.logger.Info("cloning source repository", "url", sourceURL)
		repo, err = gogit.PlainClone(tmpDir, true, &gogit.CloneOptions{
			URL:    sourceURL,
			Mirror: true,
			Auth:   g.sourceAuth(),
		})
		if err != nil {
			if errors.Is(err, transport.ErrEmptyRemoteRepository) {
				g.logger.Info("source repository has no git content, skipping mirror")
				return nil
			}
			return &GitError{
				Type:    "clone_error",
				Message: "failed to clone source repository",
				Err:     err,
				Context: sourceURL,
			}
		}
	}

	g.logger.Info("pushing all refs to target", "url", targetURL)
	err = repo.Push(&gogit.PushOptions{
		RemoteURL: targetURL,
		RefSpecs:  []config.RefSpec{mirrorRefSpec},
		Auth: &githttp.BasicAuth{
			Username: "x-access-token",
			Password: g.TargetToken,
		},
		Force: true,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return &GitError{
			Type:    "push_error",
			Message: "failed to push refs to target repository",
			Err:     err,
			Context: targetURL,
		}
	}

	g.logger.Info("mirrored git content", "target", targetURL)
	return nil
}

// sourceAuth returns clone credentials, or nil for anonymous access
func (g *GitMirror) sourceAuth() transport.AuthMethod {
	if g.SourceToken == "" {
		return nil
	}
	return &githttp.BasicAuth{
		Username: "oauth2",
		Password: g.SourceToken,
	}
}
