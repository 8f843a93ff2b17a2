package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/xanzy/go-gitlab"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/config"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/ratelimit"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
)

// GitLabSource implements the System interface using the go-gitlab library
type GitLabSource struct {
	client      *gitlab.Client
	httpClient  *http.Client
	projectPath string
	baseURL     string
	logger      logr.Logger

	// Cached project lookup, populated on first GetProject/ValidateAccess
	project *gitlab.Project
}

// NewGitLabSource creates a source for one GitLab project. The HTTP transport
// is rate limited and carries the token, so both API calls and raw attachment
// downloads are authenticated the same way. An empty token falls back to
// anonymous access (public projects only).
func NewGitLabSource(cfg *config.Config, projectPath string, logger logr.Logger) (*GitLabSource, error) {
	rateLimiter := ratelimit.NewRateLimiter(cfg)
	transport := ratelimit.NewTransport(cfg.GitLabToken, ratelimit.AuthPrivateToken, rateLimiter)

	httpClient := &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}

	client, err := gitlab.NewClient(
		cfg.GitLabToken,
		gitlab.WithBaseURL(cfg.GitLabBaseURL),
		gitlab.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, &SourceError{
			Type:    "connection_error",
			Message: "failed to create GitLab client",
			Err:     err,
		}
	}

	return &GitLabSource{
		client:      client,
		httpClient:  httpClient,
		projectPath: projectPath,
		baseURL:     cfg.GitLabBaseURL,
		logger:      logger,
	}, nil
}

// ProjectPath returns the source project identifier
func (s *GitLabSource) ProjectPath() string {
	return s.projectPath
}

// ValidateAccess verifies the project is reachable with the configured credentials
func (s *GitLabSource) ValidateAccess() error {
	if _, err := s.GetProject(); err != nil {
		return err
	}
	s.logger.Info("GitLab API access validated", "project", s.projectPath)
	return nil
}

// GetProject returns project metadata
func (s *GitLabSource) GetProject() (*schema.Project, error) {
	project, err := s.getProject()
	if err != nil {
		return nil, err
	}

	return &schema.Project{
		Path:        project.PathWithNamespace,
		Description: project.Description,
		WebURL:      project.WebURL,
		CloneURL:    project.HTTPURLToRepo,
	}, nil
}

func (s *GitLabSource) getProject() (*gitlab.Project, error) {
	if s.project != nil {
		return s.project, nil
	}

	project, resp, err := s.client.Projects.GetProject(s.projectPath, nil)
	if err != nil {
		return nil, s.handleAPIError(err, resp, s.projectPath)
	}

	s.project = project
	return project, nil
}

// GetLabels returns all labels defined on the project
func (s *GitLabSource) GetLabels() ([]schema.Label, error) {
	opt := &gitlab.ListLabelsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100, Page: 1},
	}

	var labels []schema.Label
	for {
		page, resp, err := s.client.Labels.ListLabels(s.projectPath, opt)
		if err != nil {
			return nil, s.handleAPIError(err, resp, "labels")
		}

		for _, l := range page {
			labels = append(labels, schema.Label{
				Name:        l.Name,
				Color:       trimColorPrefix(l.Color),
				Description: l.Description,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	return labels, nil
}

// GetMilestones returns all milestones sorted by number ascending
func (s *GitLabSource) GetMilestones() ([]schema.Milestone, error) {
	opt := &gitlab.ListMilestonesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100, Page: 1},
	}

	var milestones []schema.Milestone
	for {
		page, resp, err := s.client.Milestones.ListMilestones(s.projectPath, opt)
		if err != nil {
			return nil, s.handleAPIError(err, resp, "milestones")
		}

		for _, m := range page {
			milestone := schema.Milestone{
				Number:      m.IID,
				Title:       m.Title,
				Description: m.Description,
				State:       milestoneState(m.State),
			}
			if m.DueDate != nil {
				due := time.Time(*m.DueDate)
				milestone.DueDate = &due
			}
			milestones = append(milestones, milestone)
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	sort.Slice(milestones, func(i, j int) bool { return milestones[i].Number < milestones[j].Number })
	return milestones, nil
}

// GetIssues returns all issues sorted by number ascending
func (s *GitLabSource) GetIssues() ([]schema.Issue, error) {
	opt := &gitlab.ListProjectIssuesOptions{
		State:       gitlab.Ptr("all"),
		ListOptions: gitlab.ListOptions{PerPage: 100, Page: 1},
	}

	var issues []schema.Issue
	for {
		page, resp, err := s.client.Issues.ListProjectIssues(s.projectPath, opt)
		if err != nil {
			return nil, s.handleAPIError(err, resp, "issues")
		}

		for _, i := range page {
			issues = append(issues, s.convertIssue(i))
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].Number < issues[j].Number })
	return issues, nil
}

// GetComments returns the notes of one issue in chronological order
func (s *GitLabSource) GetComments(issueNumber int) ([]schema.Comment, error) {
	opt := &gitlab.ListIssueNotesOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100, Page: 1},
	}

	var comments []schema.Comment
	for {
		page, resp, err := s.client.Notes.ListIssueNotes(s.projectPath, issueNumber, opt)
		if err != nil {
			return nil, s.handleAPIError(err, resp, fmt.Sprintf("issue #%d notes", issueNumber))
		}

		for _, n := range page {
			comments = append(comments, schema.Comment{
				Body: n.Body,
				Author: schema.User{
					Name:     n.Author.Name,
					Username: n.Author.Username,
				},
				System:    n.System,
				CreatedAt: n.CreatedAt,
				UpdatedAt: n.UpdatedAt,
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt == nil || comments[j].CreatedAt == nil {
			return false
		}
		return comments[i].CreatedAt.Before(*comments[j].CreatedAt)
	})
	return comments, nil
}

// GetLinks returns the issue-to-issue links of one issue
func (s *GitLabSource) GetLinks(issueNumber int) ([]schema.IssueLink, error) {
	project, err := s.getProject()
	if err != nil {
		return nil, err
	}

	relations, resp, err := s.client.IssueLinks.ListIssueRelations(s.projectPath, issueNumber)
	if err != nil {
		return nil, s.handleAPIError(err, resp, fmt.Sprintf("issue #%d links", issueNumber))
	}

	var links []schema.IssueLink
	for _, rel := range relations {
		kind := rel.LinkType
		if kind == "" {
			kind = schema.LinkKindRelatesTo
		}

		link := schema.IssueLink{
			Kind:         kind,
			TargetNumber: rel.IID,
			TargetTitle:  rel.Title,
			TargetWebURL: rel.WebURL,
			SameProject:  rel.ProjectID == project.ID,
		}
		if link.SameProject {
			link.TargetProject = s.projectPath
		} else if rel.References != nil {
			link.TargetProject = projectFromReference(rel.References.Full)
		}
		links = append(links, link)
	}

	return links, nil
}

// workItemChildrenQuery walks the hierarchy widget of the Work Items API.
// go-gitlab has no GraphQL support, so the request is built by hand against
// the instance's /api/graphql endpoint with the same authenticated transport.
const workItemChildrenQuery = `
query GetWorkItemWithChildren($projectPath: ID!, $iid: String!) {
    project(fullPath: $projectPath) {
        workItem(iid: $iid) {
            iid
            widgets {
                type
                ... on WorkItemWidgetHierarchy {
                    children {
                        nodes {
                            iid
                            title
                            state
                            webUrl
                        }
                    }
                }
            }
        }
    }
}
`

type graphQLResponse struct {
	Data struct {
		Project *struct {
			WorkItem *struct {
				IID     string `json:"iid"`
				Widgets []struct {
					Type     string `json:"type"`
					Children *struct {
						Nodes []struct {
							IID    string `json:"iid"`
							Title  string `json:"title"`
							State  string `json:"state"`
							WebURL string `json:"webUrl"`
						} `json:"nodes"`
					} `json:"children"`
				} `json:"widgets"`
			} `json:"workItem"`
		} `json:"project"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// GetChildren returns the child work items of one issue via the GraphQL
// Work Items API.
func (s *GitLabSource) GetChildren(issueNumber int) ([]schema.WorkItemChild, error) {
	payload := map[string]interface{}{
		"query": workItemChildrenQuery,
		"variables": map[string]string{
			"projectPath": s.projectPath,
			"iid":         strconv.Itoa(issueNumber),
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &SourceError{
			Type:    "api_error",
			Message: "failed to encode GraphQL request",
			Err:     err,
		}
	}

	url := s.baseURL + "/api/graphql"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &SourceError{
			Type:    "api_error",
			Message: "failed to build GraphQL request",
			Err:     err,
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &SourceError{
			Type:    "api_error",
			Message: "GraphQL request failed",
			Err:     err,
			Context: fmt.Sprintf("issue #%d children", issueNumber),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &SourceError{
			Type:    "api_error",
			Message: fmt.Sprintf("GraphQL request returned HTTP %d", resp.StatusCode),
			Context: fmt.Sprintf("issue #%d children", issueNumber),
		}
	}

	var result graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &SourceError{
			Type:    "api_error",
			Message: "failed to decode GraphQL response",
			Err:     err,
			Context: fmt.Sprintf("issue #%d children", issueNumber),
		}
	}

	if len(result.Errors) > 0 {
		return nil, &SourceError{
			Type:    "api_error",
			Message: fmt.Sprintf("GraphQL errors: %s", result.Errors[0].Message),
			Context: fmt.Sprintf("issue #%d children", issueNumber),
		}
	}

	if result.Data.Project == nil || result.Data.Project.WorkItem == nil {
		s.logger.V(1).Info("work item not found in GraphQL response", "issue", issueNumber)
		return nil, nil
	}

	var children []schema.WorkItemChild
	for _, widget := range result.Data.Project.WorkItem.Widgets {
		if widget.Type != "HIERARCHY" || widget.Children == nil {
			continue
		}
		for _, node := range widget.Children.Nodes {
			iid, convErr := strconv.Atoi(node.IID)
			if convErr != nil {
				continue
			}
			children = append(children, schema.WorkItemChild{
				Number: iid,
				Title:  node.Title,
				State:  node.State,
				WebURL: node.WebURL,
			})
		}
	}

	s.logger.V(1).Info("found child work items", "issue", issueNumber, "count", len(children))
	return children, nil
}

// DownloadAttachment fetches an uploaded file through the project web URL.
// The authenticated transport avoids the anti-bot blocks that hit anonymous
// requests against upload URLs.
func (s *GitLabSource) DownloadAttachment(secret, filename string) ([]byte, string, error) {
	project, err := s.getProject()
	if err != nil {
		return nil, "", err
	}

	url := fmt.Sprintf("%s/uploads/%s/%s", project.WebURL, secret, filename)
	resp, err := s.httpClient.Get(url)
	if err != nil {
		return nil, "", &SourceError{
			Type:    "download_error",
			Message: "attachment download failed",
			Err:     err,
			Context: url,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &SourceError{
			Type:    "download_error",
			Message: fmt.Sprintf("attachment download returned HTTP %d", resp.StatusCode),
			Context: url,
		}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &SourceError{
			Type:    "download_error",
			Message: "failed to read attachment content",
			Err:     err,
			Context: url,
		}
	}

	return content, resp.Header.Get("Content-Type"), nil
}

// convertIssue converts a go-gitlab issue to the normalized structure
func (s *GitLabSource) convertIssue(issue *gitlab.Issue) schema.Issue {
	converted := schema.Issue{
		Number:    issue.IID,
		Title:     issue.Title,
		Body:      issue.Description,
		State:     issueState(issue.State),
		Labels:    issue.Labels,
		CreatedAt: issue.CreatedAt,
		UpdatedAt: issue.UpdatedAt,
		WebURL:    issue.WebURL,
	}

	if issue.Author != nil {
		converted.Author = schema.User{
			Name:     issue.Author.Name,
			Username: issue.Author.Username,
		}
	}

	if issue.Milestone != nil {
		converted.MilestoneNumber = issue.Milestone.IID
	}

	return converted
}

// handleAPIError creates an appropriate error based on the HTTP response
func (s *GitLabSource) handleAPIError(err error, resp *gitlab.Response, context string) error {
	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return &SourceError{
				Type:    "authentication_error",
				Message: "authentication failed - check GitLab credentials",
				Err:     err,
				Context: context,
			}
		case http.StatusForbidden:
			return &SourceError{
				Type:    "authorization_error",
				Message: "access denied - insufficient permissions",
				Err:     err,
				Context: context,
			}
		case http.StatusNotFound:
			return &SourceError{
				Type:    "not_found",
				Message: "resource not found",
				Err:     err,
				Context: context,
			}
		}
	}

	return &SourceError{
		Type:    "api_error",
		Message: "GitLab API request failed",
		Err:     err,
		Context: context,
	}
}

func milestoneState(state string) string {
	if state == "active" {
		return "open"
	}
	return "closed"
}

func issueState(state string) string {
	if state == "opened" {
		return "open"
	}
	return "closed"
}

func trimColorPrefix(color string) string {
	if len(color) > 0 && color[0] == '#' {
		return color[1:]
	}
	return color
}

// projectFromReference extracts "namespace/project" from a full reference
// like "namespace/project#12".
func projectFromReference(full string) string {
	for i := 0; i < len(full); i++ {
		if full[i] == '#' {
			return full[:i]
		}
	}
	return full
}
