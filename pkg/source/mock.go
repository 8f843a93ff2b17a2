package source

import (
	"fmt"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
)

// MockSource provides a mock implementation of the System interface for testing
type MockSource struct {
	Path       string
	Project    *schema.Project
	Labels     []schema.Label
	Milestones []schema.Milestone
	Issues     []schema.Issue
	Comments   map[int][]schema.Comment
	Children   map[int][]schema.WorkItemChild
	Links      map[int][]schema.IssueLink

	// Attachments maps "secret/filename" to file content
	Attachments map[string][]byte

	// Error injection
	ValidateError error
	IssuesError   error
	DownloadError error

	// Call tracking
	DownloadCalls []string
}

// NewMockSource creates a mock source with empty data
func NewMockSource(path string) *MockSource {
	return &MockSource{
		Path:        path,
		Project:     &schema.Project{Path: path, WebURL: "https://gitlab.example.com/" + path},
		Comments:    make(map[int][]schema.Comment),
		Children:    make(map[int][]schema.WorkItemChild),
		Links:       make(map[int][]schema.IssueLink),
		Attachments: make(map[string][]byte),
	}
}

func (m *MockSource) ProjectPath() string {
	return m.Path
}

func (m *MockSource) ValidateAccess() error {
	return m.ValidateError
}

func (m *MockSource) GetProject() (*schema.Project, error) {
	return m.Project, nil
}

func (m *MockSource) GetLabels() ([]schema.Label, error) {
	return m.Labels, nil
}

func (m *MockSource) GetMilestones() ([]schema.Milestone, error) {
	return m.Milestones, nil
}

func (m *MockSource) GetIssues() ([]schema.Issue, error) {
	if m.IssuesError != nil {
		return nil, m.IssuesError
	}
	return m.Issues, nil
}

func (m *MockSource) GetComments(issueNumber int) ([]schema.Comment, error) {
	return m.Comments[issueNumber], nil
}

func (m *MockSource) GetChildren(issueNumber int) ([]schema.WorkItemChild, error) {
	return m.Children[issueNumber], nil
}

func (m *MockSource) GetLinks(issueNumber int) ([]schema.IssueLink, error) {
	return m.Links[issueNumber], nil
}

func (m *MockSource) DownloadAttachment(secret, filename string) ([]byte, string, error) {
	key := secret + "/" + filename
	m.DownloadCalls = append(m.DownloadCalls, key)

	if m.DownloadError != nil {
		return nil, "", m.DownloadError
	}

	content, exists := m.Attachments[key]
	if !exists {
		return nil, "", &SourceError{
			Type:    "download_error",
			Message: fmt.Sprintf("attachment %s not found", key),
		}
	}
	return content, "application/octet-stream", nil
}
