package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"discord-warn-bot/model"

	"github.com/rs/zerolog/log"
)

type ClearRequest struct {
	GuildID  string
	CaseID   string
	Operator Actor
}

type ClearResult struct {
	CaseID              string
	UserID              string
	EntryType           model.EntryType
	TotalWarnings       int
	PersistenceDegraded bool
	Unmuted             bool
	Messages            []string
}

// MuteOutcome is the result of re-checking a mute after a clear.
type MuteOutcome int

const (
	MuteUnchanged MuteOutcome = iota
	MuteRetained
	MuteLifted
	MuteReconciled
	MuteLiftFailed
)

// ClearEntry marks the active entry with the given case ID as cleared. Case
// IDs match case-insensitively. A cleared warning may lift an active mute.
func (s *Service) ClearEntry(ctx context.Context, req ClearRequest) (*ClearResult, error) {
	caseID := strings.ToUpper(strings.TrimSpace(req.CaseID))
	if caseID == "" {
		return nil, ErrInvalidCaseID
	}
	if req.GuildID == "" {
		return nil, ErrMissingGuildID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, entry := s.ledger.findActive(req.GuildID, caseID)
	if entry == nil {
		return nil, ErrCaseNotFound
	}

	entry.Status = model.StatusCleared
	entry.ClearedTimestamp = s.now()
	entry.ClearedByOperatorID = model.Snowflake(req.Operator.ID)
	entry.ClearedByOperatorName = req.Operator.Name
	entriesCleared.WithLabelValues(string(entry.EntryType)).Inc()

	rec := s.ledger.User(req.GuildID, userID)
	res := &ClearResult{CaseID: caseID, UserID: userID, EntryType: entry.EntryType}

	if entry.EntryType == model.EntryWarning {
		refreshCounters(rec)
		if entry.HistoryMessageID != "" {
			annotation := fmt.Sprintf("此警告已于 <t:%d:f> 被 %s 清除。", entry.ClearedTimestamp, req.Operator.Mention())
			if err := s.platform.AnnotateAudit(ctx, req.GuildID, entry.HistoryMessageID.String(), annotation); err != nil {
				log.Warn().Err(err).Str("case", caseID).Msg("Failed to annotate history message")
			}
		}
	}
	res.TotalWarnings = rec.TotalWarnings

	if !s.persist() {
		res.PersistenceDegraded = true
		res.Messages = append(res.Messages, "警告：保存数据时发生错误，清除操作可能不会持久保存。")
	}

	log.Info().Str("guild", req.GuildID).Str("user", userID).Str("case", caseID).
		Str("type", string(entry.EntryType)).Str("operator", req.Operator.ID).Msg("Entry cleared")

	if entry.EntryType != model.EntryWarning {
		res.Messages = append(res.Messages, fmt.Sprintf("已清除 <@%s> 的备注 (Case ID: %s)。", userID, caseID))
		return res, nil
	}

	res.Messages = append(res.Messages, fmt.Sprintf("已清除 <@%s> 的警告 (Case ID: %s)。当前有效警告: %d。", userID, caseID, rec.TotalWarnings))
	outcome, msg := s.reevaluateMute(ctx, req.GuildID, userID, caseID)
	if msg != "" {
		res.Messages = append(res.Messages, msg)
	}
	res.Unmuted = outcome == MuteLifted || outcome == MuteReconciled
	return res, nil
}

// ReevaluateMute checks whether the member's current active warnings still
// warrant their mute and lifts it if not.
func (s *Service) ReevaluateMute(ctx context.Context, guildID, userID, clearedCaseID string) (MuteOutcome, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reevaluateMute(ctx, guildID, userID, clearedCaseID)
}

func (s *Service) reevaluateMute(ctx context.Context, guildID, userID, clearedCaseID string) (MuteOutcome, string) {
	mute := s.ledger.Mute(guildID, userID)
	if mute == nil {
		return MuteUnchanged, ""
	}

	active := 0
	if rec := s.ledger.User(guildID, userID); rec != nil {
		active = rec.TotalWarnings
	}

	if s.catalog.Ladder().ImpliesMute(active) {
		kept := mute.CaseIDsForMute[:0]
		for _, id := range mute.CaseIDsForMute {
			if !strings.EqualFold(id, clearedCaseID) {
				kept = append(kept, id)
			}
		}
		if len(kept) != len(mute.CaseIDsForMute) {
			mute.CaseIDsForMute = kept
			s.persist()
		}
		return MuteRetained, fmt.Sprintf("<@%s> 仍处于禁言状态，剩余 %d 条有效警告。", userID, active)
	}

	reason := fmt.Sprintf("Warning %s cleared", clearedCaseID)
	err := s.platform.RemoveMuteRole(ctx, guildID, userID, reason)
	switch {
	case err == nil:
	case errors.Is(err, ErrRoleNotHeld), errors.Is(err, ErrMemberNotFound):
		s.ledger.deleteMute(guildID, userID)
		s.persist()
		log.Info().Str("guild", guildID).Str("user", userID).Msg("Stale mute record removed")
		return MuteReconciled, fmt.Sprintf("<@%s> 已不再持有禁言身份组，已移除过期的禁言记录。", userID)
	default:
		log.Error().Err(err).Str("guild", guildID).Str("user", userID).Msg("Failed to lift mute after clear")
		return MuteLiftFailed, fmt.Sprintf("无法解除 <@%s> 的禁言: %s。", userID, describePlatformError(err))
	}

	if mute.ShouldRestoreVerifiedRole() {
		if rerr := s.platform.RestoreVerifiedRole(ctx, guildID, userID, reason); rerr != nil {
			log.Warn().Err(rerr).Str("user", userID).Msg("Failed to restore verified role after unmute")
		}
	}
	s.ledger.deleteMute(guildID, userID)
	s.persist()

	s.publishLine(ctx, guildID, fmt.Sprintf("<@%s> (%s) 的禁言因警告 %s 被清除而解除。", userID, userID, clearedCaseID))
	notice := AuditMessage{
		Title:     "您的禁言已解除",
		Color:     ColorCleared,
		Fields:    []AuditField{{Name: "原因", Value: fmt.Sprintf("警告 %s 已被清除", clearedCaseID)}},
		Timestamp: s.clock.Now(),
	}
	if err := s.platform.NotifyUser(ctx, guildID, userID, notice); err != nil {
		log.Debug().Err(err).Str("user", userID).Msg("Could not DM unmuted user")
	}
	log.Info().Str("guild", guildID).Str("user", userID).Str("case", clearedCaseID).Msg("Mute lifted after clear")
	return MuteLifted, fmt.Sprintf("<@%s> 的有效警告已不足以维持禁言，已解除禁言。", userID)
}
