package moderation

import (
	"context"
	"math/rand/v2"
	"testing"

	"discord-warn-bot/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) clear(caseID string) (*ClearResult, error) {
	return h.svc.ClearEntry(context.Background(), ClearRequest{GuildID: testGuild, CaseID: caseID, Operator: moderator})
}

func TestClearLiftsMuteBelowThreshold(t *testing.T) {
	h := newHarness(nil, "AAAAA", "BBBBB")
	h.platform.verified[userID] = true
	_, _ = h.warn("1")
	_, err := h.warn("1")
	require.NoError(t, err)
	require.NotNil(t, h.svc.ledger.Mute(testGuild, userID))

	res, err := h.clear("aaaaa")
	require.NoError(t, err)
	assert.Equal(t, "AAAAA", res.CaseID)
	assert.Equal(t, userID, res.UserID)
	assert.Equal(t, 1, res.TotalWarnings)
	assert.True(t, res.Unmuted)

	rec := h.svc.ledger.User(testGuild, userID)
	assert.Equal(t, 1, rec.TotalWarnings)
	assert.Equal(t, map[string]int{"1": 1}, rec.PerRuleViolations)
	assert.Equal(t, model.StatusCleared, rec.Entries[0].Status)
	assert.Equal(t, model.Snowflake(modID), rec.Entries[0].ClearedByOperatorID)
	assert.Equal(t, h.clock.now.Unix(), rec.Entries[0].ClearedTimestamp)

	assert.Nil(t, h.svc.ledger.Mute(testGuild, userID))
	assert.False(t, h.platform.muted[userID])
	assert.True(t, h.platform.verified[userID])
	assert.Equal(t, 1, h.platform.called("annotate"))
	assert.True(t, containsSubstring(res.Messages, "已解除禁言"))
}

func TestClearUnknownOrClearedCaseFails(t *testing.T) {
	h := newHarness(nil, "AAAAA")
	_, err := h.warn("1")
	require.NoError(t, err)
	_, err = h.clear("AAAAA")
	require.NoError(t, err)

	before := snapshot(t, h.svc)
	saves := h.store.saves

	_, err = h.clear("AAAAA")
	assert.ErrorIs(t, err, ErrCaseNotFound)
	_, err = h.clear("ZZZZZ")
	assert.ErrorIs(t, err, ErrCaseNotFound)

	assert.Equal(t, before, snapshot(t, h.svc))
	assert.Equal(t, saves, h.store.saves)
}

func TestClearRejectsEmptyCaseID(t *testing.T) {
	h := newHarness(nil)
	_, err := h.clear("  ")
	assert.ErrorIs(t, err, ErrInvalidCaseID)
}

func TestClearKeepsMuteWhileStillOverThreshold(t *testing.T) {
	h := newHarness(nil, "AAAAA", "BBBBB", "CCCCC")
	_, _ = h.warn("1")
	_, _ = h.warn("1")
	_, err := h.warn("1")
	require.NoError(t, err)
	mute := h.svc.ledger.Mute(testGuild, userID)
	require.Equal(t, []string{"BBBBB", "CCCCC"}, mute.CaseIDsForMute)
	deadline := mute.UnmuteAt.Time

	res, err := h.clear("CCCCC")
	require.NoError(t, err)
	assert.False(t, res.Unmuted)
	assert.True(t, containsSubstring(res.Messages, "仍处于禁言状态，剩余 2 条有效警告"))

	mute = h.svc.ledger.Mute(testGuild, userID)
	require.NotNil(t, mute)
	assert.Equal(t, []string{"BBBBB"}, mute.CaseIDsForMute)
	assert.Equal(t, deadline, mute.UnmuteAt.Time)
	assert.Zero(t, h.platform.called("unmute"))
}

func TestClearReconcilesDriftedMute(t *testing.T) {
	h := newHarness(nil, "AAAAA", "BBBBB")
	_, _ = h.warn("1")
	_, _ = h.warn("1")
	// Someone removed the role by hand.
	delete(h.platform.muted, userID)

	res, err := h.clear("BBBBB")
	require.NoError(t, err)
	assert.True(t, res.Unmuted)
	assert.Nil(t, h.svc.ledger.Mute(testGuild, userID))
	assert.True(t, containsSubstring(res.Messages, "已移除过期的禁言记录"))
}

func TestClearKeepsMuteWhenRoleRemovalDenied(t *testing.T) {
	h := newHarness(nil, "AAAAA", "BBBBB")
	_, _ = h.warn("1")
	_, _ = h.warn("1")
	h.platform.errs["unmute"] = errDenied

	res, err := h.clear("BBBBB")
	require.NoError(t, err)
	assert.False(t, res.Unmuted)
	assert.NotNil(t, h.svc.ledger.Mute(testGuild, userID))
	assert.True(t, containsSubstring(res.Messages, "无法解除"))
}

func TestClearAnnotateFailureIsIgnored(t *testing.T) {
	h := newHarness(nil, "AAAAA")
	_, _ = h.warn("1")
	h.platform.errs["annotate"] = errDenied

	res, err := h.clear("AAAAA")
	require.NoError(t, err)
	assert.Zero(t, res.TotalWarnings)
}

func TestClearNote(t *testing.T) {
	h := newHarness(nil, "AAAAA", "NOTE1")
	_, _ = h.warn("1")
	note, err := h.svc.AddNote(context.Background(), NoteRequest{GuildID: testGuild, Moderator: moderator, Target: target, Text: "watch this one"})
	require.NoError(t, err)
	assert.Equal(t, "NOTE1", note.CaseID)

	res, err := h.clear("note1")
	require.NoError(t, err)
	assert.Equal(t, model.EntryNote, res.EntryType)
	assert.Equal(t, 1, res.TotalWarnings)
	assert.Zero(t, h.platform.called("annotate"))
	assert.True(t, containsSubstring(res.Messages, "备注"))
}

func TestCountersMatchActiveWarnings(t *testing.T) {
	h := newHarness(nil)
	h.svc.SetCatalog(testCatalogWithoutLadder())
	rng := rand.New(rand.NewPCG(1, 2))
	reasons := []string{"1", "2", "free text", "99"}

	var open []string
	for i := 0; i < 200; i++ {
		if len(open) > 0 && rng.IntN(3) == 0 {
			idx := rng.IntN(len(open))
			_, err := h.clear(open[idx])
			require.NoError(t, err)
			open = append(open[:idx], open[idx+1:]...)
		} else {
			res, err := h.warn(reasons[rng.IntN(len(reasons))])
			require.NoError(t, err)
			open = append(open, res.CaseID)
		}

		rec := h.svc.ledger.User(testGuild, userID)
		total, perRule := RecomputeCounters(rec.Entries)
		require.Equal(t, len(open), rec.TotalWarnings)
		require.Equal(t, total, rec.TotalWarnings)
		require.Equal(t, perRule, rec.PerRuleViolations)
	}
}

// testCatalogWithoutLadder has the same rules minus the ban directive and the
// ladder, so a long run never removes the member.
func testCatalogWithoutLadder() *RuleCatalog {
	return NewRuleCatalog([]model.RuleDefinition{
		{ID: "1", Text: "禁止刷屏", ActionType: model.RuleGeneralViolation},
		{ID: "2", Text: "禁止广告", ActionType: model.RuleGeneralViolation},
	}, nil)
}
