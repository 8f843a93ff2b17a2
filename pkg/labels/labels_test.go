package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flaksit/gitlab-to-github-migrator/pkg/logging"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/schema"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/source"
	"github.com/flaksit/gitlab-to-github-migrator/pkg/target"
)

func TestTranslatorWildcard(t *testing.T) {
	translator, err := NewTranslator([]string{"p_*:priority: *"})
	require.NoError(t, err)

	assert.Equal(t, "priority: high", translator.Translate("p_high"))
	assert.Equal(t, "priority: low", translator.Translate("p_low"))
	assert.Equal(t, "unrelated", translator.Translate("unrelated"))
}

func TestTranslatorExactMatch(t *testing.T) {
	translator, err := NewTranslator([]string{"wontfix:won't fix"})
	require.NoError(t, err)

	assert.Equal(t, "won't fix", translator.Translate("wontfix"))
	assert.Equal(t, "wontfixed", translator.Translate("wontfixed"), "exact rules do not match prefixes")
}

func TestTranslatorFirstRuleWins(t *testing.T) {
	translator, err := NewTranslator([]string{"bug:defect", "bug:problem"})
	require.NoError(t, err)
	assert.Equal(t, "defect", translator.Translate("bug"))
}

func TestTranslatorInvalidPattern(t *testing.T) {
	_, err := NewTranslator([]string{"no-colon-here"})
	require.Error(t, err)
	assert.True(t, IsPatternError(err))
}

func TestTranslatorEscapesRegexMetacharacters(t *testing.T) {
	translator, err := NewTranslator([]string{"a.b*:x*"})
	require.NoError(t, err)

	assert.Equal(t, "x1", translator.Translate("a.b1"))
	assert.Equal(t, "aXb1", translator.Translate("aXb1"), "dot must not act as a regex wildcard")
}

func TestMigrateCreatesAndMaps(t *testing.T) {
	src := source.NewMockSource("group/project")
	src.Labels = []schema.Label{
		{Name: "p_high", Color: "ff0000"},
		{Name: "docs", Color: "00ff00", Description: "documentation"},
	}
	tgt := target.NewMockTarget("owner/repo")

	translator, err := NewTranslator([]string{"p_*:priority: *"})
	require.NoError(t, err)

	result, err := Migrate(src, tgt, translator, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, "priority: high", result.Mapping["p_high"])
	assert.Equal(t, "docs", result.Mapping["docs"])
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Existing)
	assert.Equal(t, 1, result.Translated())
	assert.Len(t, tgt.Labels, 2)
}

func TestMigrateCaseInsensitiveCollision(t *testing.T) {
	src := source.NewMockSource("group/project")
	src.Labels = []schema.Label{{Name: "bug", Color: "d73a4a"}}
	tgt := target.NewMockTarget("owner/repo")
	tgt.Labels = []schema.Label{{Name: "Bug", Color: "d73a4a"}}

	translator, err := NewTranslator(nil)
	require.NoError(t, err)

	result, err := Migrate(src, tgt, translator, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, "Bug", result.Mapping["bug"], "existing canonical name wins")
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Existing)
	assert.Len(t, tgt.Labels, 1, "no duplicate label created")
}

func TestMigrateTranslationCollision(t *testing.T) {
	// Two source labels translating to the same target name must not
	// attempt a duplicate creation.
	src := source.NewMockSource("group/project")
	src.Labels = []schema.Label{
		{Name: "P_high", Color: "ff0000"},
		{Name: "p_High", Color: "ff0000"},
	}
	tgt := target.NewMockTarget("owner/repo")

	translator, err := NewTranslator([]string{"P_*:urgent", "p_*:urgent"})
	require.NoError(t, err)

	result, err := Migrate(src, tgt, translator, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Existing)
	assert.Len(t, tgt.Labels, 1)
}
