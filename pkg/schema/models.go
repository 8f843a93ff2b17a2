package schema

import "time"

// Label is a label/tag that can be applied to issues.
type Label struct {
	Name        string `json:"name" yaml:"name"`
	Color       string `json:"color" yaml:"color"` // hex without '#' prefix (e.g. "ff0000")
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Milestone is a milestone for grouping issues, identified by the source
// system's user-visible sequential number.
type Milestone struct {
	Number      int        `json:"number" yaml:"number"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	State       string     `json:"state" yaml:"state"` // "open" or "closed"
	DueDate     *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
}

// User identifies the author of an issue or comment on the source system.
type User struct {
	Name     string `json:"name" yaml:"name"`
	Username string `json:"username" yaml:"username"`
}

// Issue is an issue snapshot from the source system. The body may still
// contain source-specific attachment references; the attachment handler
// rewrites those before the issue is created on the target.
type Issue struct {
	Number          int        `json:"number" yaml:"number"`
	Title           string     `json:"title" yaml:"title"`
	Body            string     `json:"body" yaml:"body"`
	State           string     `json:"state" yaml:"state"` // "open" or "closed"
	Labels          []string   `json:"labels,omitempty" yaml:"labels,omitempty"`
	MilestoneNumber int        `json:"milestone_number,omitempty" yaml:"milestone_number,omitempty"` // 0 = none
	Author          User       `json:"author" yaml:"author"`
	CreatedAt       *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	WebURL          string     `json:"web_url,omitempty" yaml:"web_url,omitempty"`
}

// Comment is a single note on an issue. System notes are audit-log style
// entries produced by the source system rather than a person.
type Comment struct {
	Body      string     `json:"body" yaml:"body"`
	Author    User       `json:"author" yaml:"author"`
	System    bool       `json:"system,omitempty" yaml:"system,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// Link kinds reported by the source system for issue-to-issue links.
const (
	LinkKindBlocks      = "blocks"
	LinkKindIsBlockedBy = "is_blocked_by"
	LinkKindRelatesTo   = "relates_to"
)

// IssueLink is a link from one issue to another as reported by the source.
// Blocking links are reported from both endpoints, so the same unordered
// pair shows up twice with mirrored kinds.
type IssueLink struct {
	Kind          string `json:"kind" yaml:"kind"`
	TargetNumber  int    `json:"target_number" yaml:"target_number"`
	TargetTitle   string `json:"target_title,omitempty" yaml:"target_title,omitempty"`
	TargetProject string `json:"target_project,omitempty" yaml:"target_project,omitempty"`
	TargetWebURL  string `json:"target_web_url,omitempty" yaml:"target_web_url,omitempty"`
	SameProject   bool   `json:"same_project" yaml:"same_project"`
}

// WorkItemChild is a child work item from the source hierarchy query.
type WorkItemChild struct {
	Number int    `json:"number" yaml:"number"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	State  string `json:"state,omitempty" yaml:"state,omitempty"`
	WebURL string `json:"web_url,omitempty" yaml:"web_url,omitempty"`
}

// Project describes the source project being migrated.
type Project struct {
	Path        string `json:"path" yaml:"path"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	WebURL      string `json:"web_url" yaml:"web_url"`
	CloneURL    string `json:"clone_url" yaml:"clone_url"` // HTTPS clone URL for git mirroring
}
