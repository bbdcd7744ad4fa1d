package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"discord-warn-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLadderSelectIsMonotonic(t *testing.T) {
	ladder := testCatalog().Ladder()
	require.Equal(t, 3, ladder.Len())

	prev := 0
	for count := 0; count <= 10; count++ {
		tier, ok := ladder.Select(count)
		if !ok {
			assert.Less(t, count, 2)
			continue
		}
		assert.GreaterOrEqual(t, tier.Threshold, prev)
		assert.LessOrEqual(t, tier.Threshold, count)
		prev = tier.Threshold
	}

	tier, _ := ladder.Select(3)
	assert.Equal(t, model.LadderMute, tier.Action)
	tier, _ = ladder.Select(9)
	assert.Equal(t, model.LadderBanPermanent, tier.Action)
	assert.True(t, ladder.ImpliesMute(2))
	assert.False(t, ladder.ImpliesMute(1))
	assert.False(t, ladder.ImpliesMute(4))
}

func TestEmptyLadderSelectsNothing(t *testing.T) {
	_, ok := Ladder{}.Select(100)
	assert.False(t, ok)

	var c *RuleCatalog
	assert.Zero(t, c.Ladder().Len())
	_, found := c.Lookup("1")
	assert.False(t, found)
}

func TestParseDirectiveKind(t *testing.T) {
	assert.Equal(t, DirectiveBan, ParseDirectiveKind("permanent_remove_from_group"))
	assert.Equal(t, DirectiveRevokeAdvisory, ParseDirectiveKind("revoke_role"))
	assert.Equal(t, DirectiveMonitor, ParseDirectiveKind(" Monitor_Only "))
	assert.Equal(t, DirectiveUnknown, ParseDirectiveKind("teleport"))
	assert.Equal(t, "unknown", DirectiveUnknown.String())
}

func TestRenderTemplate(t *testing.T) {
	assert.Equal(t, "累计 3 次 (规则 7)", renderTemplate("累计 {count} 次 (规则 {rule_id})", "x", 3, "7"))
	assert.Equal(t, "违反群规", renderTemplate("  ", "违反群规", 3, ""))
}

func TestParseRuleCatalogSkipsMalformedParts(t *testing.T) {
	c := ParseRuleCatalog([]byte(`{
		"rules": [
			{"id": 1, "text": "numeric id"},
			{"text": "no id"},
			"not an object",
			{"id": "5", "text": "ban", "action_type": "specific_action", "actions": [{"type": "permanent_remove_from_group"}]}
		],
		"general_punishment_ladder": [
			{"threshold": 0, "action": "mute", "duration_minutes": 5},
			{"threshold": "two", "action": "mute"},
			{"threshold": 3, "action": "dance"}
		]
	}`))

	rules := c.Rules()
	require.Len(t, rules, 2)
	r, ok := c.Lookup("1")
	require.True(t, ok)
	assert.Equal(t, model.RuleGeneralViolation, r.ActionType)
	r, ok = c.Lookup("5")
	require.True(t, ok)
	assert.Len(t, r.Actions, 1)

	assert.Equal(t, 1, c.Ladder().Len())
	tier, ok := c.Ladder().Select(3)
	require.True(t, ok)
	assert.Equal(t, model.LadderAction("dance"), tier.Action)
}

func TestParseRuleCatalogDegradesToEmpty(t *testing.T) {
	for _, doc := range []string{`not json`, `[]`, `{}`, `{"rules": {}, "general_punishment_ladder": 3}`} {
		c := ParseRuleCatalog([]byte(doc))
		assert.Empty(t, c.Rules(), doc)
		assert.Zero(t, c.Ladder().Len(), doc)
	}
}

func TestLoadRuleCatalogMissingFile(t *testing.T) {
	c := LoadRuleCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Empty(t, c.Rules())
}

func TestLoadRuleCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"rules": [{"id": "1", "text": "a"}], "general_punishment_ladder": [{"threshold": 2, "action": "mute", "duration_hours": 1}]}`), 0o644))

	c := LoadRuleCatalog(path)
	assert.Len(t, c.Rules(), 1)
	tier, ok := c.Ladder().Select(2)
	require.True(t, ok)
	assert.Equal(t, 60, tier.TotalMinutes())
}

func TestGenerateCaseID(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := GenerateCaseID()
		assert.Regexp(t, `^[A-Z0-9]{5}$`, id)
	}
}

func TestPlatformErrorMatchesKind(t *testing.T) {
	err := NewPlatformError("kick", KindNotFound, nil)
	assert.ErrorIs(t, err, ErrMemberNotFound)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, "找不到该成员", describePlatformError(err))
	assert.Equal(t, "机器人权限不足", describePlatformError(errDenied))
}
