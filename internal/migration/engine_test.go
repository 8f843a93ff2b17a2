package migration

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/git"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/logging"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/numbering"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/source"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/target"
)

func newEngine(src *source.MockSource, tgt *target.MockTarget, opts Options) (*Engine, *git.MockMirror) {
	mirror := git.NewMockMirror()
	return NewEngine(src, tgt, mirror, logging.Discard(), opts), mirror
}

func ts(value string) *time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestRunEmptySource(t *testing.T) {
	src := source.NewMockSource("group/project")
	tgt := target.NewMockTarget("owner/repo")
	engine, mirror := newEngine(src, tgt, Options{})

	report, err := engine.Run()
	require.NoError(t, err)

	assert.True(t, report.Success)
	assert.Equal(t, 0, report.Statistics.SourceIssues.Total)
	assert.Equal(t, 0, report.Statistics.TargetIssues.Total)
	assert.True(t, tgt.RepositoryCreated)
	assert.False(t, tgt.RepositoryDeleted)
	assert.Len(t, mirror.Calls, 1)
}

func TestRunRefusesExistingRepository(t *testing.T) {
	src := source.NewMockSource("group/project")
	tgt := target.NewMockTarget("owner/repo")
	tgt.Exists = true
	engine, _ := newEngine(src, tgt, Options{})

	_, err := engine.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.False(t, tgt.RepositoryCreated)
}

func TestRunMigratesIssuesWithPreservedNumbers(t *testing.T) {
	src := source.NewMockSource("group/project")
	src.Issues = []schema.Issue{
		{
			Number: 1, Title: "First bug", Body: "It breaks", State: "closed",
			Labels: []string{"bug"},
			Author: schema.User{Name: "Alice Smith", Username: "alice"},
			CreatedAt: ts("2024-01-15T10:30:45Z"),
			WebURL:    "https://gitlab.example.com/group/project/-/issues/1",
		},
		{
			Number: 3, Title: "Feature request", Body: "", State: "open",
			Author: schema.User{Name: "Bob Jones", Username: "bob"},
		},
	}
	src.Labels = []schema.Label{{Name: "bug", Color: "d73a4a"}}
	src.Comments[1] = []schema.Comment{
		{Body: "me too", Author: schema.User{Name: "Bob Jones", Username: "bob"},
			CreatedAt: ts("2024-01-16T08:00:00Z")},
	}

	tgt := target.NewMockTarget("owner/repo")
	engine, _ := newEngine(src, tgt, Options{SkipGit: true})

	report, err := engine.Run()
	require.NoError(t, err)
	assert.True(t, report.Success)

	// Issue #1 lands at #1, the gap at #2 is a deleted placeholder, #3 at #3
	require.Contains(t, tgt.Issues, 1)
	require.Contains(t, tgt.Issues, 3)
	assert.NotContains(t, tgt.Issues, 2, "placeholder must be deleted")
	assert.Equal(t, []int{2}, tgt.DeletedIssues)

	assert.Equal(t, "First bug", tgt.Issues[1].Title)
	assert.Equal(t, "closed", tgt.Issues[1].State)
	assert.Equal(t, "open", tgt.Issues[3].State)
	assert.Contains(t, tgt.Issues[1].Body, "**Migrated from GitLab issue #1**")
	assert.Contains(t, tgt.Issues[1].Body, "Alice Smith (@alice)")
	assert.Contains(t, tgt.Issues[1].Body, "2024-01-15 10:30:45Z")
	assert.Contains(t, tgt.Issues[1].Body, "It breaks")
	assert.Equal(t, []string{"bug"}, tgt.Issues[1].Labels)

	require.Len(t, tgt.Comments[1], 1)
	assert.Contains(t, tgt.Comments[1][0], "**Comment by** Bob Jones (@bob)")
	assert.Contains(t, tgt.Comments[1][0], "me too")
	assert.Equal(t, 1, report.Statistics.CommentsCreated)

	assert.Equal(t, 2, report.Statistics.SourceIssues.Total)
	assert.Equal(t, 2, report.Statistics.TargetIssues.Total)
	assert.Equal(t, 1, report.Statistics.SourceIssues.Open)
	assert.Equal(t, 1, report.Statistics.SourceIssues.Closed)
}

func TestRunMilestoneGap(t *testing.T) {
	src := source.NewMockSource("group/project")
	src.Milestones = []schema.Milestone{
		{Number: 1, Title: "v1.0", State: "closed"},
		{Number: 3, Title: "v2.0", State: "open"},
	}
	tgt := target.NewMockTarget("owner/repo")
	engine, _ := newEngine(src, tgt, Options{SkipGit: true})

	report, err := engine.Run()
	require.NoError(t, err)
	assert.True(t, report.Success)

	require.Contains(t, tgt.Milestones, 1)
	require.Contains(t, tgt.Milestones, 3)
	assert.NotContains(t, tgt.Milestones, 2, "placeholder milestone must be deleted")
	assert.Equal(t, []int{2}, tgt.DeletedMilestones)
	assert.Equal(t, "v1.0", tgt.Milestones[1].Title)
	assert.Equal(t, 2, report.Statistics.TargetMilestones.Total)
}

func TestRunNumberMismatchDeletesRepository(t *testing.T) {
	src := source.NewMockSource("group/project")
	src.Issues = []schema.Issue{{Number: 1, Title: "only issue", State: "open"}}

	tgt := target.NewMockTarget("owner/repo")
	// Simulate a dirty numbering space: the first creation will return #4
	tgt.NextIssueNumber = 4
	engine, _ := newEngine(src, tgt, Options{SkipGit: true})

	_, err := engine.Run()
	require.Error(t, err)

	var merr *MigrationError
	require.ErrorAs(t, err, &merr)
	assert.True(t, numbering.IsVerificationError(merr.Err))
	assert.True(t, tgt.RepositoryDeleted, "failed run must delete the created repository")
}

func TestRunClosedPlaceholderFallback(t *testing.T) {
	src := source.NewMockSource("group/project")
	src.Issues = []schema.Issue{{Number: 2, Title: "second", State: "open"}}

	tgt := target.NewMockTarget("owner/repo")
	tgt.DeleteIssueSupported = false
	engine, _ := newEngine(src, tgt, Options{SkipGit: true})

	report, err := engine.Run()
	require.NoError(t, err)

	// Placeholder #1 stays closed with the marker label and does not count
	require.Contains(t, tgt.Issues, 1)
	assert.Equal(t, "closed", tgt.Issues[1].State)
	assert.Contains(t, tgt.Issues[1].Labels, "migration-placeholder")
	assert.True(t, report.Success)
	assert.Equal(t, 1, report.Statistics.TargetIssues.Total)
}

func TestRunRelationships(t *testing.T) {
	src := source.NewMockSource("group/project")
	src.Issues = []schema.Issue{
		{Number: 1, Title: "epic", State: "open"},
		{Number: 2, Title: "task", State: "open"},
		{Number: 3, Title: "blocked", State: "open"},
	}
	src.Children[1] = []schema.WorkItemChild{{Number: 2, Title: "task"}}
	src.Links[1] = []schema.IssueLink{
		{Kind: schema.LinkKindBlocks, TargetNumber: 3, TargetTitle: "blocked", SameProject: true},
	}
	src.Links[3] = []schema.IssueLink{
		{Kind: schema.LinkKindIsBlockedBy, TargetNumber: 1, TargetTitle: "epic", SameProject: true},
		{Kind: schema.LinkKindRelatesTo, TargetNumber: 2, TargetTitle: "task", SameProject: true},
	}

	tgt := target.NewMockTarget("owner/repo")
	engine, _ := newEngine(src, tgt, Options{SkipGit: true})

	report, err := engine.Run()
	require.NoError(t, err)

	assert.Equal(t, []int{2}, tgt.SubIssues[1])
	// blocks + is_blocked_by describe the same dependency, created once
	require.Len(t, tgt.Dependencies, 1)
	assert.Equal(t, [2]int{3, 1}, tgt.Dependencies[0])
	assert.Equal(t, 2, report.Statistics.RelationshipsCreated)

	// The related link renders as text, not a structured relationship
	assert.Contains(t, tgt.Issues[3].Body, "**Related to**: #2 - task")
}

func TestRunRelocatesAttachments(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"
	src := source.NewMockSource("group/project")
	src.Issues = []schema.Issue{
		{Number: 1, Title: "with shot", State: "open",
			Body: "see ![s](/uploads/" + secret + "/shot.png)"},
	}
	src.Comments[1] = []schema.Comment{
		{Body: "again /uploads/" + secret + "/shot.png",
			Author: schema.User{Name: "A", Username: "a"}},
	}
	src.Attachments[secret+"/shot.png"] = []byte("png")

	tgt := target.NewMockTarget("owner/repo")
	engine, _ := newEngine(src, tgt, Options{SkipGit: true})

	report, err := engine.Run()
	require.NoError(t, err)

	assert.Equal(t, 1, report.Statistics.AttachmentsUploaded)
	assert.Equal(t, 2, report.Statistics.AttachmentReferences)
	assert.NotContains(t, tgt.Issues[1].Body, "/uploads/")
	assert.NotContains(t, tgt.Comments[1][0], "/uploads/")
	assert.Contains(t, tgt.Assets, "01234567_shot.png")
}

func TestRunSkipGit(t *testing.T) {
	src := source.NewMockSource("group/project")
	tgt := target.NewMockTarget("owner/repo")
	engine, mirror := newEngine(src, tgt, Options{SkipGit: true})

	_, err := engine.Run()
	require.NoError(t, err)
	assert.Empty(t, mirror.Calls)
}

func TestRunGitFailureDeletesRepository(t *testing.T) {
	src := source.NewMockSource("group/project")
	tgt := target.NewMockTarget("owner/repo")
	engine, mirror := newEngine(src, tgt, Options{})
	mirror.MirrorError = &git.GitError{Type: "push_error", Message: "rejected"}

	_, err := engine.Run()
	require.Error(t, err)
	assert.True(t, tgt.RepositoryDeleted)
}

func TestPrintReport(t *testing.T) {
	report := &schema.Report{
		SourceProject: "group/project",
		TargetRepo:    "owner/repo",
		Success:       false,
		Errors:        []string{"issue count mismatch: source 2, target 1"},
	}
	report.Statistics.SourceIssues = schema.ItemCounts{Total: 2, Open: 1, Closed: 1}

	var buf bytes.Buffer
	PrintReport(&buf, report)

	out := buf.String()
	assert.Contains(t, out, "MIGRATION VALIDATION REPORT")
	assert.Contains(t, out, "✗ Validation Status: FAILED")
	assert.Contains(t, out, "issue count mismatch")
	assert.Contains(t, out, "Total=2, Open=1, Closed=1")
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "", formatTimestamp(nil))
	assert.Equal(t, "2024-01-15 10:30:45Z", formatTimestamp(ts("2024-01-15T10:30:45Z")))
	// Offsets normalize to UTC
	assert.Equal(t, "2024-01-15 09:30:45Z", formatTimestamp(ts("2024-01-15T10:30:45+01:00")))
}
