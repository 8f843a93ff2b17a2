package source

import (
	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
)

// System defines the read-only surface the migration consumes from the
// source forge. This enables dependency injection and testing with mock
// implementations, and keeps the orchestrator independent of any one forge.
type System interface {
	// ProjectPath returns the source project identifier (namespace/project).
	ProjectPath() string

	// ValidateAccess verifies API access and credentials before any mutation
	// happens on the target.
	ValidateAccess() error

	// GetProject returns project metadata (description, web URL, clone URL).
	GetProject() (*schema.Project, error)

	// GetLabels returns all labels defined on the project.
	GetLabels() ([]schema.Label, error)

	// GetMilestones returns all milestones (any state) sorted by number ascending.
	GetMilestones() ([]schema.Milestone, error)

	// GetIssues returns all issues (any state) sorted by number ascending.
	GetIssues() ([]schema.Issue, error)

	// GetComments returns the notes of one issue in chronological order.
	GetComments(issueNumber int) ([]schema.Comment, error)

	// GetChildren returns the child work items of one issue (hierarchy).
	GetChildren(issueNumber int) ([]schema.WorkItemChild, error)

	// GetLinks returns the issue-to-issue links of one issue
	// (blocks / is_blocked_by / relates_to).
	GetLinks(issueNumber int) ([]schema.IssueLink, error)

	// DownloadAttachment fetches the bytes of an uploaded file by its secret
	// and filename, using authenticated access. Returns content and the
	// reported content type.
	DownloadAttachment(secret, filename string) ([]byte, string, error)
}
