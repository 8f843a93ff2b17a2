package links

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/logging"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/target"
)

func targetWithIssues(t *testing.T, numbers ...int) (*target.MockTarget, map[int]bool) {
	t.Helper()
	tgt := target.NewMockTarget("owner/repo")
	migrated := make(map[int]bool)
	for _, n := range numbers {
		handle, err := tgt.CreateIssue("issue", "body", nil, 0)
		require.NoError(t, err)
		require.Equal(t, n, handle.Number, "test setup requires contiguous numbers")
		migrated[n] = true
	}
	return tgt, migrated
}

func TestApplyCreatesSubIssues(t *testing.T) {
	tgt, migrated := targetWithIssues(t, 1, 2, 3)
	linker := NewLinker(tgt, logging.Discard())

	relations := []IssueRelations{
		{Number: 1, Children: []schema.WorkItemChild{{Number: 2}, {Number: 3}}},
	}

	result, err := linker.Apply(relations, migrated)
	require.NoError(t, err)

	assert.Equal(t, 2, result.SubIssues)
	assert.Equal(t, []int{2, 3}, tgt.SubIssues[1])
}

func TestApplySkipsMissingChild(t *testing.T) {
	tgt, migrated := targetWithIssues(t, 1)
	linker := NewLinker(tgt, logging.Discard())

	relations := []IssueRelations{
		{Number: 1, Children: []schema.WorkItemChild{{Number: 99}}},
	}

	result, err := linker.Apply(relations, migrated)
	require.NoError(t, err)
	assert.Equal(t, 0, result.SubIssues)
	assert.Equal(t, 1, result.Skipped)
}

func TestApplyDeduplicatesBlockingPair(t *testing.T) {
	// #7 blocks #8, and #8 reports the same dependency as is_blocked_by #7.
	// Exactly one dependency must be created.
	tgt, migrated := targetWithIssues(t, 1, 2, 3, 4, 5, 6, 7, 8)
	linker := NewLinker(tgt, logging.Discard())

	relations := []IssueRelations{
		{Number: 7, Links: []schema.IssueLink{
			{Kind: schema.LinkKindBlocks, TargetNumber: 8, SameProject: true},
		}},
		{Number: 8, Links: []schema.IssueLink{
			{Kind: schema.LinkKindIsBlockedBy, TargetNumber: 7, SameProject: true},
		}},
	}

	result, err := linker.Apply(relations, migrated)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Dependencies)
	require.Len(t, tgt.Dependencies, 1)
	assert.Equal(t, [2]int{8, 7}, tgt.Dependencies[0], "issue 8 is blocked by issue 7")
}

func TestApplyIgnoresRelatedAndCrossProject(t *testing.T) {
	tgt, migrated := targetWithIssues(t, 1, 2)
	linker := NewLinker(tgt, logging.Discard())

	relations := []IssueRelations{
		{Number: 1, Links: []schema.IssueLink{
			{Kind: schema.LinkKindRelatesTo, TargetNumber: 2, SameProject: true},
			{Kind: schema.LinkKindBlocks, TargetNumber: 4, SameProject: false},
		}},
	}

	result, err := linker.Apply(relations, migrated)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total())
	assert.Empty(t, tgt.Dependencies)
}

func TestApplyStopsWhenDependenciesUnsupported(t *testing.T) {
	tgt, migrated := targetWithIssues(t, 1, 2, 3)
	tgt.DependenciesSupported = false
	linker := NewLinker(tgt, logging.Discard())

	relations := []IssueRelations{
		{Number: 1, Links: []schema.IssueLink{
			{Kind: schema.LinkKindBlocks, TargetNumber: 2, SameProject: true},
			{Kind: schema.LinkKindBlocks, TargetNumber: 3, SameProject: true},
		}},
	}

	result, err := linker.Apply(relations, migrated)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Dependencies)
	assert.Equal(t, 2, result.Skipped)
}
