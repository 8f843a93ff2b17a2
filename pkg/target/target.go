// Package target manages the destination GitHub repository: repository
// lifecycle, labels, milestones, issues, comments, relationships, and the
// draft release that carries migrated attachments.
package target

import "github.com/flaksit/gitlab-to-github-migrator/pkg/schema"

// IssueHandle identifies a created issue both by its visible number and by
// the node ID the GraphQL API needs for deletion.
type IssueHandle struct {
	Number int
	NodeID string
}

// System defines the interface for the migration target
type System interface {
	// RepoFullName returns the "owner/name" identifier of the target repository
	RepoFullName() string

	// ValidateAccess verifies the configured credentials can reach the API
	ValidateAccess() error

	// RepositoryExists reports whether the target repository already exists
	RepositoryExists() (bool, error)

	// CreateRepository creates the target repository
	CreateRepository(description string, private bool) error

	// DeleteRepository removes the target repository and everything in it
	DeleteRepository() error

	// CloneURL returns the HTTPS clone URL of the target repository
	CloneURL() string

	// ListLabels returns the labels currently defined on the repository
	ListLabels() ([]schema.Label, error)

	// CreateLabel creates one label
	CreateLabel(label schema.Label) error

	// CreateMilestone creates a milestone with the given state and returns
	// its assigned number.
	CreateMilestone(milestone schema.Milestone) (int, error)

	// DeleteMilestone removes a milestone by number
	DeleteMilestone(number int) error

	// ListMilestones returns all milestones regardless of state
	ListMilestones() ([]schema.Milestone, error)

	// CreateIssue creates an issue and returns its handle
	CreateIssue(title, body string, labels []string, milestoneNumber int) (*IssueHandle, error)

	// CloseIssue closes an issue by number
	CloseIssue(number int) error

	// DeleteIssue permanently removes an issue. Returns false without error
	// when the API does not permit deletion, in which case the caller is
	// expected to fall back to closing.
	DeleteIssue(handle *IssueHandle) (bool, error)

	// ListIssues returns all issues (open and closed), excluding pull requests
	ListIssues() ([]schema.Issue, error)

	// CreateComment adds a comment to an issue
	CreateComment(issueNumber int, body string) error

	// AddSubIssue registers child as a sub-issue of parent
	AddSubIssue(parentNumber, childNumber int) error

	// CreateDependency marks issueNumber as blocked by blockedByNumber.
	// Returns false without error when the API does not support dependencies
	// on this repository.
	CreateDependency(issueNumber, blockedByNumber int) (bool, error)

	// EnsureAttachmentsRelease finds or creates the draft release that holds
	// migrated attachments
	EnsureAttachmentsRelease() error

	// UploadAttachmentAsset uploads one file to the attachments release and
	// returns its browser download URL
	UploadAttachmentAsset(name string, content []byte, contentType string) (string, error)
}
