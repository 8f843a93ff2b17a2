package target

import (
	"fmt"
	"sort"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
)

// MockTarget provides a mock implementation of the System interface for
// testing. Issue and milestone numbers auto-increment the way GitHub assigns
// them, so numbering tests can drive the real protocol against it.
type MockTarget struct {
	FullName string

	Exists            bool
	RepositoryCreated bool
	RepositoryDeleted bool

	Labels     []schema.Label
	Milestones map[int]*schema.Milestone
	Issues     map[int]*schema.Issue
	Comments   map[int][]string

	// SubIssues maps parent number to child numbers in creation order
	SubIssues map[int][]int
	// Dependencies records (blocked, blocker) pairs in creation order
	Dependencies [][2]int

	Assets         map[string][]byte
	ReleaseEnsured bool

	ClosedIssues      []int
	DeletedIssues     []int
	DeletedMilestones []int

	// NextIssueNumber and NextMilestoneNumber are the numbers the next
	// creation will receive. Tests set them to simulate a dirty repository.
	NextIssueNumber     int
	NextMilestoneNumber int

	// DeleteIssueSupported and DependenciesSupported control the soft
	// capability responses
	DeleteIssueSupported  bool
	DependenciesSupported bool

	// Error injection
	CreateIssueError     error
	CreateMilestoneError error
	UploadError          error
	ExistsError          error

	// Call counters
	CreateIssueCalls int
	UploadCalls      int
}

// NewMockTarget creates a mock target for a clean repository
func NewMockTarget(fullName string) *MockTarget {
	return &MockTarget{
		FullName:              fullName,
		Milestones:            make(map[int]*schema.Milestone),
		Issues:                make(map[int]*schema.Issue),
		Comments:              make(map[int][]string),
		SubIssues:             make(map[int][]int),
		Assets:                make(map[string][]byte),
		NextIssueNumber:       1,
		NextMilestoneNumber:   1,
		DeleteIssueSupported:  true,
		DependenciesSupported: true,
	}
}

func (m *MockTarget) RepoFullName() string {
	return m.FullName
}

func (m *MockTarget) CloneURL() string {
	return "https://github.com/" + m.FullName + ".git"
}

func (m *MockTarget) ValidateAccess() error {
	return nil
}

func (m *MockTarget) RepositoryExists() (bool, error) {
	if m.ExistsError != nil {
		return false, m.ExistsError
	}
	return m.Exists, nil
}

func (m *MockTarget) CreateRepository(description string, private bool) error {
	m.Exists = true
	m.RepositoryCreated = true
	return nil
}

func (m *MockTarget) DeleteRepository() error {
	m.Exists = false
	m.RepositoryDeleted = true
	return nil
}

func (m *MockTarget) ListLabels() ([]schema.Label, error) {
	return m.Labels, nil
}

func (m *MockTarget) CreateLabel(label schema.Label) error {
	m.Labels = append(m.Labels, label)
	return nil
}

func (m *MockTarget) CreateMilestone(milestone schema.Milestone) (int, error) {
	if m.CreateMilestoneError != nil {
		return 0, m.CreateMilestoneError
	}

	number := m.NextMilestoneNumber
	m.NextMilestoneNumber++

	created := milestone
	created.Number = number
	m.Milestones[number] = &created
	return number, nil
}

func (m *MockTarget) DeleteMilestone(number int) error {
	if _, exists := m.Milestones[number]; !exists {
		return &TargetError{
			Type:    "not_found",
			Message: fmt.Sprintf("milestone #%d not found", number),
		}
	}
	delete(m.Milestones, number)
	m.DeletedMilestones = append(m.DeletedMilestones, number)
	return nil
}

func (m *MockTarget) ListMilestones() ([]schema.Milestone, error) {
	var milestones []schema.Milestone
	for _, ms := range m.Milestones {
		milestones = append(milestones, *ms)
	}
	sort.Slice(milestones, func(i, j int) bool { return milestones[i].Number < milestones[j].Number })
	return milestones, nil
}

func (m *MockTarget) CreateIssue(title, body string, labels []string, milestoneNumber int) (*IssueHandle, error) {
	m.CreateIssueCalls++
	if m.CreateIssueError != nil {
		return nil, m.CreateIssueError
	}

	number := m.NextIssueNumber
	m.NextIssueNumber++

	m.Issues[number] = &schema.Issue{
		Number:          number,
		Title:           title,
		Body:            body,
		State:           "open",
		Labels:          labels,
		MilestoneNumber: milestoneNumber,
	}

	return &IssueHandle{
		Number: number,
		NodeID: fmt.Sprintf("I_node%d", number),
	}, nil
}

func (m *MockTarget) CloseIssue(number int) error {
	issue, exists := m.Issues[number]
	if !exists {
		return &TargetError{
			Type:    "not_found",
			Message: fmt.Sprintf("issue #%d not found", number),
		}
	}
	issue.State = "closed"
	m.ClosedIssues = append(m.ClosedIssues, number)
	return nil
}

func (m *MockTarget) DeleteIssue(handle *IssueHandle) (bool, error) {
	if !m.DeleteIssueSupported {
		return false, nil
	}
	if _, exists := m.Issues[handle.Number]; !exists {
		return false, &TargetError{
			Type:    "not_found",
			Message: fmt.Sprintf("issue #%d not found", handle.Number),
		}
	}
	delete(m.Issues, handle.Number)
	m.DeletedIssues = append(m.DeletedIssues, handle.Number)
	return true, nil
}

func (m *MockTarget) ListIssues() ([]schema.Issue, error) {
	var issues []schema.Issue
	for _, issue := range m.Issues {
		issues = append(issues, *issue)
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].Number < issues[j].Number })
	return issues, nil
}

func (m *MockTarget) CreateComment(issueNumber int, body string) error {
	if _, exists := m.Issues[issueNumber]; !exists {
		return &TargetError{
			Type:    "not_found",
			Message: fmt.Sprintf("issue #%d not found", issueNumber),
		}
	}
	m.Comments[issueNumber] = append(m.Comments[issueNumber], body)
	return nil
}

func (m *MockTarget) AddSubIssue(parentNumber, childNumber int) error {
	if _, exists := m.Issues[parentNumber]; !exists {
		return &TargetError{
			Type:    "not_found",
			Message: fmt.Sprintf("issue #%d not found", parentNumber),
		}
	}
	if _, exists := m.Issues[childNumber]; !exists {
		return &TargetError{
			Type:    "not_found",
			Message: fmt.Sprintf("issue #%d not found", childNumber),
		}
	}
	m.SubIssues[parentNumber] = append(m.SubIssues[parentNumber], childNumber)
	return nil
}

func (m *MockTarget) CreateDependency(issueNumber, blockedByNumber int) (bool, error) {
	if !m.DependenciesSupported {
		return false, nil
	}
	m.Dependencies = append(m.Dependencies, [2]int{issueNumber, blockedByNumber})
	return true, nil
}

func (m *MockTarget) EnsureAttachmentsRelease() error {
	m.ReleaseEnsured = true
	return nil
}

func (m *MockTarget) UploadAttachmentAsset(name string, content []byte, contentType string) (string, error) {
	m.UploadCalls++
	if m.UploadError != nil {
		return "", m.UploadError
	}
	if !m.ReleaseEnsured {
		m.ReleaseEnsured = true
	}
	m.Assets[name] = content
	return "https://github.com/" + m.FullName + "/releases/download/untagged/" + name, nil
}
