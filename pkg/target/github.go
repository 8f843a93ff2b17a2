package target

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-github/v68/github"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/config"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/ratelimit"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
)

const (
	attachmentsReleaseTag  = "gitlab-issue-attachments"
	attachmentsReleaseName = "GitLab issue attachments"
)

// GitHubTarget implements the System interface using the go-github library
type GitHubTarget struct {
	client *github.Client
	owner  string
	repo   string
	logger logr.Logger

	// login of the authenticated user, cached after first lookup
	login string

	// ID of the draft release holding attachments, 0 until ensured
	attachmentsReleaseID int64
}

// NewGitHubTarget creates a target for one GitHub repository given as
// "owner/name". All requests go through the rate limited transport.
func NewGitHubTarget(cfg *config.Config, repoFullName string, logger logr.Logger) (*GitHubTarget, error) {
	owner, repo, ok := splitFullName(repoFullName)
	if !ok {
		return nil, &TargetError{
			Type:    "configuration_error",
			Message: fmt.Sprintf("invalid repository name %q, expected owner/name", repoFullName),
		}
	}

	rateLimiter := ratelimit.NewRateLimiter(cfg)
	transport := ratelimit.NewTransport(cfg.GitHubToken, ratelimit.AuthBearer, rateLimiter)
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}

	return &GitHubTarget{
		client: github.NewClient(httpClient),
		owner:  owner,
		repo:   repo,
		logger: logger,
	}, nil
}

// RepoFullName returns the "owner/name" identifier of the target repository
func (t *GitHubTarget) RepoFullName() string {
	return t.owner + "/" + t.repo
}

// CloneURL returns the HTTPS clone URL of the target repository
func (t *GitHubTarget) CloneURL() string {
	return fmt.Sprintf("https://github.com/%s/%s.git", t.owner, t.repo)
}

// ValidateAccess verifies the token by resolving the authenticated user
func (t *GitHubTarget) ValidateAccess() error {
	user, resp, err := t.client.Users.Get(context.Background(), "")
	if err != nil {
		return t.handleAPIError(err, resp, "authenticated user")
	}
	t.login = user.GetLogin()
	t.logger.Info("GitHub API access validated", "user", t.login)
	return nil
}

// RepositoryExists reports whether the target repository already exists
func (t *GitHubTarget) RepositoryExists() (bool, error) {
	_, resp, err := t.client.Repositories.Get(context.Background(), t.owner, t.repo)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, t.handleAPIError(err, resp, t.RepoFullName())
	}
	return true, nil
}

// CreateRepository creates the target repository, under the authenticated
// user or under an organization depending on the configured owner
func (t *GitHubTarget) CreateRepository(description string, private bool) error {
	if t.login == "" {
		if err := t.ValidateAccess(); err != nil {
			return err
		}
	}

	org := t.owner
	if strings.EqualFold(org, t.login) {
		org = ""
	}

	repo := &github.Repository{
		Name:        github.Ptr(t.repo),
		Description: github.Ptr(sanitizeDescription(description)),
		Private:     github.Ptr(private),
	}

	_, resp, err := t.client.Repositories.Create(context.Background(), org, repo)
	if err != nil {
		return t.handleAPIError(err, resp, t.RepoFullName())
	}

	t.logger.Info("created repository", "repo", t.RepoFullName(), "private", private)
	return nil
}

// DeleteRepository removes the target repository and everything in it
func (t *GitHubTarget) DeleteRepository() error {
	resp, err := t.client.Repositories.Delete(context.Background(), t.owner, t.repo)
	if err != nil {
		return t.handleAPIError(err, resp, t.RepoFullName())
	}
	t.logger.Info("deleted repository", "repo", t.RepoFullName())
	return nil
}

// ListLabels returns the labels currently defined on the repository
func (t *GitHubTarget) ListLabels() ([]schema.Label, error) {
	opt := &github.ListOptions{PerPage: 100}

	var labels []schema.Label
	for {
		page, resp, err := t.client.Issues.ListLabels(context.Background(), t.owner, t.repo, opt)
		if err != nil {
			return nil, t.handleAPIError(err, resp, "labels")
		}

		for _, l := range page {
			labels = append(labels, schema.Label{
				Name:        l.GetName(),
				Color:       l.GetColor(),
				Description: l.GetDescription(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return labels, nil
}

// CreateLabel creates one label
func (t *GitHubTarget) CreateLabel(label schema.Label) error {
	ghLabel := &github.Label{
		Name:  github.Ptr(label.Name),
		Color: github.Ptr(label.Color),
	}
	if label.Description != "" {
		ghLabel.Description = github.Ptr(truncate(label.Description, 100))
	}

	_, resp, err := t.client.Issues.CreateLabel(context.Background(), t.owner, t.repo, ghLabel)
	if err != nil {
		return t.handleAPIError(err, resp, fmt.Sprintf("label %q", label.Name))
	}
	return nil
}

// CreateMilestone creates a milestone and returns its assigned number.
// The create endpoint accepts the state directly, so closed milestones come
// out closed without a second call.
func (t *GitHubTarget) CreateMilestone(milestone schema.Milestone) (int, error) {
	ghMilestone := &github.Milestone{
		Title: github.Ptr(milestone.Title),
		State: github.Ptr(milestone.State),
	}
	if milestone.Description != "" {
		ghMilestone.Description = github.Ptr(milestone.Description)
	}
	if milestone.DueDate != nil {
		ghMilestone.DueOn = &github.Timestamp{Time: *milestone.DueDate}
	}

	created, resp, err := t.client.Issues.CreateMilestone(context.Background(), t.owner, t.repo, ghMilestone)
	if err != nil {
		return 0, t.handleAPIError(err, resp, fmt.Sprintf("milestone %q", milestone.Title))
	}
	return created.GetNumber(), nil
}

// DeleteMilestone removes a milestone by number
func (t *GitHubTarget) DeleteMilestone(number int) error {
	resp, err := t.client.Issues.DeleteMilestone(context.Background(), t.owner, t.repo, number)
	if err != nil {
		return t.handleAPIError(err, resp, fmt.Sprintf("milestone #%d", number))
	}
	return nil
}

// ListMilestones returns all milestones regardless of state
func (t *GitHubTarget) ListMilestones() ([]schema.Milestone, error) {
	opt := &github.MilestoneListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var milestones []schema.Milestone
	for {
		page, resp, err := t.client.Issues.ListMilestones(context.Background(), t.owner, t.repo, opt)
		if err != nil {
			return nil, t.handleAPIError(err, resp, "milestones")
		}

		for _, m := range page {
			milestone := schema.Milestone{
				Number:      m.GetNumber(),
				Title:       m.GetTitle(),
				Description: m.GetDescription(),
				State:       m.GetState(),
			}
			if m.DueOn != nil {
				due := m.DueOn.Time
				milestone.DueDate = &due
			}
			milestones = append(milestones, milestone)
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return milestones, nil
}

// CreateIssue creates an issue and returns its handle
func (t *GitHubTarget) CreateIssue(title, body string, labels []string, milestoneNumber int) (*IssueHandle, error) {
	req := &github.IssueRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
	}
	if len(labels) > 0 {
		req.Labels = &labels
	}
	if milestoneNumber > 0 {
		req.Milestone = github.Ptr(milestoneNumber)
	}

	issue, resp, err := t.client.Issues.Create(context.Background(), t.owner, t.repo, req)
	if err != nil {
		return nil, t.handleAPIError(err, resp, fmt.Sprintf("issue %q", title))
	}

	return &IssueHandle{
		Number: issue.GetNumber(),
		NodeID: issue.GetNodeID(),
	}, nil
}

// CloseIssue closes an issue by number
func (t *GitHubTarget) CloseIssue(number int) error {
	req := &github.IssueRequest{State: github.Ptr("closed")}
	_, resp, err := t.client.Issues.Edit(context.Background(), t.owner, t.repo, number, req)
	if err != nil {
		return t.handleAPIError(err, resp, fmt.Sprintf("issue #%d", number))
	}
	return nil
}

// deleteIssueMutation permanently removes an issue. Deletion is only exposed
// through GraphQL, the REST API has no equivalent.
const deleteIssueMutation = `
mutation DeleteIssue($issueId: ID!) {
    deleteIssue(input: {issueId: $issueId}) {
        clientMutationId
    }
}
`

// DeleteIssue permanently removes an issue via the GraphQL API. Returns
// false without error when deletion is not permitted, so callers can fall
// back to closing the issue.
func (t *GitHubTarget) DeleteIssue(handle *IssueHandle) (bool, error) {
	payload := map[string]interface{}{
		"query": deleteIssueMutation,
		"variables": map[string]string{
			"issueId": handle.NodeID,
		},
	}

	req, err := t.client.NewRequest(http.MethodPost, "graphql", payload)
	if err != nil {
		return false, &TargetError{
			Type:    "api_error",
			Message: "failed to build issue deletion request",
			Err:     err,
		}
	}

	var result struct {
		Errors []struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"errors"`
	}

	resp, err := t.client.Do(context.Background(), req, &result)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusNotFound) {
			return false, nil
		}
		return false, t.handleAPIError(err, resp, fmt.Sprintf("issue #%d deletion", handle.Number))
	}

	if len(result.Errors) > 0 {
		// FORBIDDEN here means the token lacks delete permission, which is
		// common for fine-grained tokens. Not fatal.
		t.logger.V(1).Info("issue deletion rejected",
			"issue", handle.Number, "reason", result.Errors[0].Message)
		return false, nil
	}

	return true, nil
}

// ListIssues returns all issues (open and closed), excluding pull requests
func (t *GitHubTarget) ListIssues() ([]schema.Issue, error) {
	opt := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var issues []schema.Issue
	for {
		page, resp, err := t.client.Issues.ListByRepo(context.Background(), t.owner, t.repo, opt)
		if err != nil {
			return nil, t.handleAPIError(err, resp, "issues")
		}

		for _, i := range page {
			if i.IsPullRequest() {
				continue
			}
			issue := schema.Issue{
				Number: i.GetNumber(),
				Title:  i.GetTitle(),
				Body:   i.GetBody(),
				State:  i.GetState(),
			}
			for _, l := range i.Labels {
				issue.Labels = append(issue.Labels, l.GetName())
			}
			issues = append(issues, issue)
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return issues, nil
}

// CreateComment adds a comment to an issue
func (t *GitHubTarget) CreateComment(issueNumber int, body string) error {
	comment := &github.IssueComment{Body: github.Ptr(body)}
	_, resp, err := t.client.Issues.CreateComment(context.Background(), t.owner, t.repo, issueNumber, comment)
	if err != nil {
		return t.handleAPIError(err, resp, fmt.Sprintf("comment on issue #%d", issueNumber))
	}
	return nil
}

// issueID resolves an issue number to its database ID, which the sub-issue
// and dependency endpoints require
func (t *GitHubTarget) issueID(number int) (int64, error) {
	issue, resp, err := t.client.Issues.Get(context.Background(), t.owner, t.repo, number)
	if err != nil {
		return 0, t.handleAPIError(err, resp, fmt.Sprintf("issue #%d", number))
	}
	return issue.GetID(), nil
}

// AddSubIssue registers child as a sub-issue of parent
func (t *GitHubTarget) AddSubIssue(parentNumber, childNumber int) error {
	childID, err := t.issueID(childNumber)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("repos/%s/%s/issues/%d/sub_issues", t.owner, t.repo, parentNumber)
	payload := map[string]interface{}{"sub_issue_id": childID}

	req, err := t.client.NewRequest(http.MethodPost, url, payload)
	if err != nil {
		return &TargetError{
			Type:    "api_error",
			Message: "failed to build sub-issue request",
			Err:     err,
		}
	}

	resp, err := t.client.Do(context.Background(), req, nil)
	if err != nil {
		return t.handleAPIError(err, resp, fmt.Sprintf("sub-issue #%d of #%d", childNumber, parentNumber))
	}

	return nil
}

// CreateDependency marks issueNumber as blocked by blockedByNumber. Returns
// false without error when the repository does not support dependencies.
func (t *GitHubTarget) CreateDependency(issueNumber, blockedByNumber int) (bool, error) {
	blockerID, err := t.issueID(blockedByNumber)
	if err != nil {
		return false, err
	}

	url := fmt.Sprintf("repos/%s/%s/issues/%d/dependencies/blocked_by", t.owner, t.repo, issueNumber)
	payload := map[string]interface{}{"issue_id": blockerID}

	req, err := t.client.NewRequest(http.MethodPost, url, payload)
	if err != nil {
		return false, &TargetError{
			Type:    "api_error",
			Message: "failed to build dependency request",
			Err:     err,
		}
	}

	resp, err := t.client.Do(context.Background(), req, nil)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden) {
			t.logger.V(1).Info("issue dependencies not available on this repository",
				"issue", issueNumber, "blockedBy", blockedByNumber)
			return false, nil
		}
		return false, t.handleAPIError(err, resp,
			fmt.Sprintf("dependency #%d blocked by #%d", issueNumber, blockedByNumber))
	}

	return true, nil
}

// EnsureAttachmentsRelease finds or creates the draft release that holds
// migrated attachments. Draft releases cannot be fetched by tag, so lookup
// scans the release list by name.
func (t *GitHubTarget) EnsureAttachmentsRelease() error {
	if t.attachmentsReleaseID != 0 {
		return nil
	}

	opt := &github.ListOptions{PerPage: 100}
	for {
		releases, resp, err := t.client.Repositories.ListReleases(context.Background(), t.owner, t.repo, opt)
		if err != nil {
			return t.handleAPIError(err, resp, "releases")
		}

		for _, r := range releases {
			if r.GetName() == attachmentsReleaseName {
				t.attachmentsReleaseID = r.GetID()
				return nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	release := &github.RepositoryRelease{
		TagName: github.Ptr(attachmentsReleaseTag),
		Name:    github.Ptr(attachmentsReleaseName),
		Body:    github.Ptr("Attachments migrated from GitLab issues."),
		Draft:   github.Ptr(true),
	}

	created, resp, err := t.client.Repositories.CreateRelease(context.Background(), t.owner, t.repo, release)
	if err != nil {
		return t.handleAPIError(err, resp, "attachments release")
	}

	t.attachmentsReleaseID = created.GetID()
	t.logger.Info("created attachments draft release", "id", t.attachmentsReleaseID)
	return nil
}

// UploadAttachmentAsset uploads one file to the attachments release and
// returns its browser download URL. The upload helper only accepts *os.File,
// so the content goes through a temp file.
func (t *GitHubTarget) UploadAttachmentAsset(name string, content []byte, contentType string) (string, error) {
	if err := t.EnsureAttachmentsRelease(); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp("", "attachment-*")
	if err != nil {
		return "", &TargetError{
			Type:    "upload_error",
			Message: "failed to create temporary file",
			Err:     err,
			Context: name,
		}
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(content); err != nil {
		return "", &TargetError{
			Type:    "upload_error",
			Message: "failed to write temporary file",
			Err:     err,
			Context: name,
		}
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		return "", &TargetError{
			Type:    "upload_error",
			Message: "failed to rewind temporary file",
			Err:     err,
			Context: name,
		}
	}

	opt := &github.UploadOptions{Name: name}
	if contentType != "" {
		opt.MediaType = contentType
	}

	asset, _, err := t.client.Repositories.UploadReleaseAsset(
		context.Background(), t.owner, t.repo, t.attachmentsReleaseID, opt, tmp)
	if err != nil {
		return "", &TargetError{
			Type:    "upload_error",
			Message: "asset upload failed",
			Err:     err,
			Context: name,
		}
	}

	return asset.GetBrowserDownloadURL(), nil
}

// ListOwnedRepositories returns the full names of repositories owned by the
// authenticated user. Used by the cleanup utility, not part of the migration
// target contract.
func (t *GitHubTarget) ListOwnedRepositories() ([]string, error) {
	opt := &github.RepositoryListByAuthenticatedUserOptions{
		Affiliation: "owner",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var names []string
	for {
		repos, resp, err := t.client.Repositories.ListByAuthenticatedUser(context.Background(), opt)
		if err != nil {
			return nil, t.handleAPIError(err, resp, "owned repositories")
		}

		for _, r := range repos {
			names = append(names, r.GetFullName())
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return names, nil
}

// handleAPIError creates an appropriate error based on the HTTP response
func (t *GitHubTarget) handleAPIError(err error, resp *github.Response, context string) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return &TargetError{
				Type:    "authentication_error",
				Message: "authentication failed - check GitHub credentials",
				Err:     err,
				Context: context,
			}
		case http.StatusForbidden:
			return &TargetError{
				Type:    "authorization_error",
				Message: "access denied - insufficient permissions",
				Err:     err,
				Context: context,
			}
		case http.StatusNotFound:
			return &TargetError{
				Type:    "not_found",
				Message: "resource not found",
				Err:     err,
				Context: context,
			}
		}
	}

	return &TargetError{
		Type:    "api_error",
		Message: "GitHub API request failed",
		Err:     err,
		Context: context,
	}
}

// sanitizeDescription strips control characters GitHub rejects in repository
// descriptions and collapses newlines to spaces
func sanitizeDescription(description string) string {
	replacer := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")
	cleaned := strings.Join(strings.Fields(replacer.Replace(description)), " ")
	return truncate(cleaned, 350)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func splitFullName(fullName string) (owner, repo string, ok bool) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
